package vecsky

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/bits-and-blooms/bitset"
	"github.com/hupe1980/vecsky/constellation"
	"github.com/hupe1980/vecsky/dimension"
	"github.com/hupe1980/vecsky/resource"
	"github.com/hupe1980/vecsky/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSky(t *testing.T) {
	ctx := context.Background()

	t.Run("Add", func(t *testing.T) {
		sky := New()
		require.NoError(t, sky.Add(ctx, "hello", []float32{1, 2, 3, 4, 5, 6}))

		c, ok := sky.Constellation("hello", dimension.D6)
		require.True(t, ok)
		assert.Equal(t, 1, c.Count())
		assert.Equal(t, 6, c.Dimensions())
	})

	t.Run("Query", func(t *testing.T) {
		values := []float32{1, 2, 3, 4, 5, 6}
		sky := New()
		require.NoError(t, sky.Add(ctx, "hello", values))

		stream, err := sky.Query(ctx, "hello", 0.0, values)
		require.NoError(t, err)

		matches := stream.Collect()
		require.Len(t, matches, 1)
		assert.Equal(t, float32(0), matches[0].Distance)
		assert.Equal(t, values, matches[0].Point)
	})

	t.Run("RoundTripEveryDimension", func(t *testing.T) {
		sky := New()
		rng := testutil.NewRNG(1)

		for _, d := range dimension.All() {
			v := rng.UniformVectors(1, d.Len())[0]
			require.NoError(t, sky.Add(ctx, "hello", v))

			stream, err := sky.Query(ctx, "hello", 0.0, v)
			require.NoError(t, err)

			matches := stream.Collect()
			require.Len(t, matches, 1, d.String())
			assert.Equal(t, float32(0), matches[0].Distance)
			assert.Equal(t, v, matches[0].Point)
		}

		// One collection per dimensionality, all named "hello".
		assert.Len(t, sky.Stats(), len(dimension.All()))
	})

	t.Run("ReportsComputedDistance", func(t *testing.T) {
		sky := New()
		require.NoError(t, sky.Add(ctx, "line", []float32{3, 4}))

		stream, err := sky.Query(ctx, "line", 25, []float32{0, 0})
		require.NoError(t, err)

		matches := stream.Collect()
		require.Len(t, matches, 1)
		assert.Equal(t, float32(25), matches[0].Distance)
	})

	t.Run("QueryAfterAddObservesPoint", func(t *testing.T) {
		sky := New()
		for i := range 50 {
			require.NoError(t, sky.Add(ctx, "seq", []float32{float32(i), 0}))

			stream, err := sky.Query(ctx, "seq", math.MaxFloat32, []float32{0, 0})
			require.NoError(t, err)
			assert.Len(t, stream.Collect(), i+1)
		}
	})
}

func TestSky_InvalidSize(t *testing.T) {
	ctx := context.Background()
	sky := New()

	err := sky.Add(ctx, "x", []float32{1, 2, 3, 4, 5})
	var invalid *ErrInvalidSize
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, 5, invalid.Length)
	assert.ErrorIs(t, err, dimension.ErrUnsupported)
	assert.Contains(t, err.Error(), "valid sizes: "+dimension.Choices())

	_, err = sky.Query(ctx, "x", 1, []float32{1, 2, 3, 4, 5})
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, 5, invalid.Length)

	err = sky.Add(ctx, "x", nil)
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, 0, invalid.Length)

	// Neither call created a collection.
	assert.Empty(t, sky.Stats())
}

func TestSky_NotFound(t *testing.T) {
	ctx := context.Background()
	sky := New()

	_, err := sky.Query(ctx, "nonexistent", 1, []float32{1, 2})
	var notFound *ErrNotFound
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "nonexistent", notFound.Name)
	assert.Equal(t, 2, notFound.Length)

	var invalid *ErrInvalidSize
	assert.False(t, errors.As(err, &invalid))

	// Query never creates a collection.
	assert.Empty(t, sky.Names(dimension.D2))
	assert.Empty(t, sky.Stats())

	// A collection exists only at the dimensionality it was created with.
	require.NoError(t, sky.Add(ctx, "pair", []float32{1, 2}))
	_, err = sky.Query(ctx, "pair", 1, []float32{1, 2, 3})
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, 3, notFound.Length)
}

func TestSky_PartitionsByDimension(t *testing.T) {
	ctx := context.Background()
	sky := New()

	require.NoError(t, sky.Add(ctx, "same", []float32{1}))
	require.NoError(t, sky.Add(ctx, "same", []float32{1, 1}))
	require.NoError(t, sky.Add(ctx, "same", []float32{2, 2}))

	assert.Equal(t, []string{"same"}, sky.Names(dimension.D1))
	assert.Equal(t, []string{"same"}, sky.Names(dimension.D2))
	assert.Empty(t, sky.Names(dimension.D3))
	assert.Nil(t, sky.Names(dimension.Dimension(5)))

	assert.Equal(t, []CollectionStats{
		{Name: "same", Dimension: dimension.D1, Count: 1, MemoryBytes: 4},
		{Name: "same", Dimension: dimension.D2, Count: 2, MemoryBytes: 16},
	}, sky.Stats())

	_, ok := sky.Constellation("same", dimension.Dimension(5))
	assert.False(t, ok)
}

func TestSky_AddBatch(t *testing.T) {
	ctx := context.Background()
	sky := New()

	t.Run("Valid", func(t *testing.T) {
		err := sky.AddBatch(ctx, "batch", [][]float32{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}})
		require.NoError(t, err)

		c, ok := sky.Constellation("batch", dimension.D3)
		require.True(t, ok)
		assert.Equal(t, 3, c.Count())
	})

	t.Run("MixedLengths", func(t *testing.T) {
		err := sky.AddBatch(ctx, "batch", [][]float32{{1, 2, 3}, {1, 2, 3, 4}})
		var invalid *ErrInvalidSize
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, 4, invalid.Length)

		c, _ := sky.Constellation("batch", dimension.D3)
		assert.Equal(t, 3, c.Count())
	})

	t.Run("Empty", func(t *testing.T) {
		require.NoError(t, sky.AddBatch(ctx, "empty", nil))
		_, ok := sky.Constellation("empty", dimension.D1)
		assert.False(t, ok)
	})

	t.Run("CanceledContext", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		err := sky.AddBatch(cctx, "canceled", [][]float32{{1}})
		require.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, sky.Names(dimension.D1))
	})
}

func TestSky_ConcurrentAdd(t *testing.T) {
	const (
		writers   = 8
		batchSize = 125
	)

	ctx := context.Background()
	sky := New()
	rng := testutil.NewRNG(99)

	var wg sync.WaitGroup
	for w := range writers {
		vecs := rng.UniformVectors(batchSize, 8)
		for i, v := range vecs {
			v[0] = float32(w*batchSize + i)
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, v := range vecs {
				assert.NoError(t, sky.Add(ctx, "shared", v))
			}
			// Different names never block each other.
			assert.NoError(t, sky.AddBatch(ctx, "own", vecs))
		}()
	}
	wg.Wait()

	c, ok := sky.Constellation("shared", dimension.D8)
	require.True(t, ok)
	require.Equal(t, writers*batchSize, c.Count())

	stream, err := sky.Query(ctx, "shared", math.MaxFloat32, make([]float32, 8))
	require.NoError(t, err)

	seen := bitset.New(writers * batchSize)
	count := 0
	for m := range stream.All() {
		tag := uint(m.Point[0])
		assert.False(t, seen.Test(tag), "point %d returned twice", tag)
		seen.Set(tag)
		count++
	}
	assert.Equal(t, writers*batchSize, count)
	assert.Equal(t, uint(writers*batchSize), seen.Count())

	own, ok := sky.Constellation("own", dimension.D8)
	require.True(t, ok)
	assert.Equal(t, writers*batchSize, own.Count())
}

func TestSky_ConcurrentAddAndQuery(t *testing.T) {
	ctx := context.Background()
	sky := New()
	require.NoError(t, sky.Add(ctx, "live", []float32{0, 0, 0, 0}))

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for range 200 {
				assert.NoError(t, sky.Add(ctx, "live", []float32{1, 1, 1, 1}))
			}
		}()
		go func() {
			defer wg.Done()
			last := 0
			for range 50 {
				stream, err := sky.Query(ctx, "live", math.MaxFloat32, []float32{0, 0, 0, 0})
				if !assert.NoError(t, err) {
					return
				}
				n := len(stream.Collect())
				// The store only grows.
				assert.GreaterOrEqual(t, n, last)
				last = n
			}
		}()
	}
	wg.Wait()

	c, _ := sky.Constellation("live", dimension.D4)
	assert.Equal(t, 801, c.Count())
}

func TestSky_QueryCloseReleasesScan(t *testing.T) {
	ctx := context.Background()
	sky := New(WithBufferSize(1))

	batch := make([][]float32, 50_000)
	for i := range batch {
		batch[i] = []float32{0, 0}
	}
	require.NoError(t, sky.AddBatch(ctx, "big", batch))

	baseline := runtime.NumGoroutine()

	for range 20 {
		stream, err := sky.Query(ctx, "big", 1, []float32{0, 0})
		require.NoError(t, err)

		_, ok := stream.Next()
		require.True(t, ok)
		stream.Close()
	}

	waitForGoroutines(t, baseline)
}

func TestSky_QueryOptions(t *testing.T) {
	ctx := context.Background()
	sky := New(WithScanWorkers(2), WithLockMode(constellation.LockHeld))

	for i := range 10 {
		require.NoError(t, sky.Add(ctx, "opts", []float32{float32(i)}))
	}

	var got constellation.FindOptions
	statsCh := make(chan constellation.ScanStats, 1)
	stream, err := sky.Query(ctx, "opts", math.MaxFloat32, []float32{0}, func(o *constellation.FindOptions) {
		got = *o
		o.OnComplete = func(st constellation.ScanStats) { statsCh <- st }
	})
	require.NoError(t, err)
	assert.Len(t, stream.Collect(), 10)

	// Sky defaults are applied before per-query overrides.
	assert.Equal(t, 2, got.Workers)
	assert.Equal(t, constellation.LockHeld, got.LockMode)
	assert.Equal(t, constellation.DefaultBufferSize, got.BufferSize)

	// A caller's OnComplete still runs alongside the sky's own hook.
	st := <-statsCh
	assert.Equal(t, 10, st.Matched)
}

func TestSky_MemoryLimit(t *testing.T) {
	ctx := context.Background()
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 64})
	sky := New(WithResourceController(rc))

	// 2 points * 8 dims * 4 bytes = 64 bytes
	require.NoError(t, sky.AddBatch(ctx, "mem", [][]float32{make([]float32, 8), make([]float32, 8)}))
	assert.Equal(t, int64(64), rc.MemoryUsage())

	err := sky.Add(ctx, "mem", make([]float32, 8))
	require.ErrorIs(t, err, ErrMemoryLimitExceeded)

	c, _ := sky.Constellation("mem", dimension.D8)
	assert.Equal(t, 2, c.Count())
	assert.Equal(t, int64(64), rc.MemoryUsage())
}

func TestSky_ScanLimit(t *testing.T) {
	ctx := context.Background()
	rc := resource.NewController(resource.Config{MaxConcurrentScans: 1})
	sky := New(WithResourceController(rc), WithBufferSize(0))

	require.NoError(t, sky.AddBatch(ctx, "gate", [][]float32{{1}, {2}, {3}}))

	first, err := sky.Query(ctx, "gate", math.MaxFloat32, []float32{0})
	require.NoError(t, err)
	_, ok := first.Next()
	require.True(t, ok)
	assert.Equal(t, int64(1), rc.ActiveScans())

	// The second scan waits for the first one's slot.
	second, err := sky.Query(ctx, "gate", math.MaxFloat32, []float32{0})
	require.NoError(t, err)

	select {
	case <-second.C():
		t.Fatal("second scan ran while the first held the only slot")
	case <-time.After(50 * time.Millisecond):
	}

	first.Close()
	assert.Len(t, second.Collect(), 3)
	assert.Equal(t, int64(0), rc.ActiveScans())
}

func TestSky_NameNormalization(t *testing.T) {
	ctx := context.Background()

	composed := "caf\u00e9"
	decomposed := "cafe\u0301"

	t.Run("Enabled", func(t *testing.T) {
		sky := New()
		require.NoError(t, sky.Add(ctx, composed, []float32{1}))

		stream, err := sky.Query(ctx, decomposed, 0, []float32{1})
		require.NoError(t, err)
		assert.Len(t, stream.Collect(), 1)
		assert.Equal(t, []string{composed}, sky.Names(dimension.D1))
	})

	t.Run("Disabled", func(t *testing.T) {
		sky := New(WithNameNormalization(false))
		require.NoError(t, sky.Add(ctx, composed, []float32{1}))

		_, err := sky.Query(ctx, decomposed, 0, []float32{1})
		var notFound *ErrNotFound
		require.ErrorAs(t, err, &notFound)
	})
}

func TestSky_Metrics(t *testing.T) {
	ctx := context.Background()
	metrics := &BasicMetricsCollector{}
	sky := New(WithMetricsCollector(metrics))

	require.NoError(t, sky.AddBatch(ctx, "m", [][]float32{{1, 1}, {2, 2}}))
	require.Error(t, sky.Add(ctx, "m", []float32{1, 2, 3, 4, 5}))

	stream, err := sky.Query(ctx, "m", 2, []float32{1, 1})
	require.NoError(t, err)
	assert.Len(t, stream.Collect(), 2)
	<-stream.Done()

	_, err = sky.Query(ctx, "missing", 2, []float32{1, 1})
	require.Error(t, err)

	stats := metrics.GetStats()
	assert.Equal(t, int64(2), stats.AddCount)
	assert.Equal(t, int64(1), stats.AddErrors)
	assert.Equal(t, int64(2), stats.AddPoints)
	assert.Equal(t, int64(2), stats.QueryCount)
	assert.Equal(t, int64(1), stats.QueryErrors)
	assert.Equal(t, int64(1), stats.ScanCount)
	assert.Equal(t, int64(0), stats.ScanStopped)
	assert.Equal(t, int64(2), stats.ScanScanned)
	assert.Equal(t, int64(2), stats.ScanMatched)
}

func TestSky_Logging(t *testing.T) {
	ctx := context.Background()

	var buf bytes.Buffer
	logger := NewLogger(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	sky := New(WithLogger(logger))

	require.NoError(t, sky.Add(ctx, "logged", []float32{1}))
	require.NoError(t, sky.Add(ctx, "logged", []float32{2}))

	// Only collection creation is logged at info level.
	var entry map[string]any
	dec := json.NewDecoder(&buf)
	require.NoError(t, dec.Decode(&entry))
	assert.Equal(t, "collection created", entry["msg"])
	assert.Equal(t, "logged", entry["collection"])
	assert.Equal(t, float64(1), entry["dimension"])
	assert.False(t, dec.More())
}

// waitForGoroutines fails the test if the goroutine count does not drop back
// to baseline within two seconds.
func waitForGoroutines(t *testing.T, baseline int) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	var final int
	for {
		runtime.GC()
		time.Sleep(10 * time.Millisecond)

		final = runtime.NumGoroutine()
		if final <= baseline || time.Now().After(deadline) {
			break
		}
	}

	assert.LessOrEqual(t, final, baseline, "goroutine leak: started with %d, ended with %d", baseline, final)
}
