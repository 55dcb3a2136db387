package feed

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quietwizar/trading-system/market"
)

var start = time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC)

func sampleBars(n int) []market.Bar {
	bars := make([]market.Bar, n)
	for i := range bars {
		p := 100.0 + float64(i)
		bars[i] = market.Bar{
			Time: start.Add(time.Duration(i) * time.Minute),
			Open: p, High: p + 1, Low: p - 1, Close: p + 0.5, Volume: 1000,
		}
	}
	return bars
}

// drain consumes a feed to exhaustion.
func drain(t *testing.T, f Feed) []market.Bar {
	t.Helper()
	var out []market.Bar
	for {
		b, ok, err := f.Next()
		require.NoError(t, err)
		if !ok {
			return out
		}
		out = append(out, b)
	}
}

func TestSliceFeedYieldsAll(t *testing.T) {
	t.Parallel()

	bars := sampleBars(5)
	got := drain(t, NewSliceFeed(bars))
	assert.Equal(t, bars, got)
}

func TestSliceFeedRejectsRegression(t *testing.T) {
	t.Parallel()

	bars := sampleBars(3)
	bars[2].Time = bars[0].Time // time going backwards

	f := NewSliceFeed(bars)
	_, ok, err := f.Next()
	require.True(t, ok)
	require.NoError(t, err)
	_, ok, err = f.Next()
	require.True(t, ok)
	require.NoError(t, err)

	_, _, err = f.Next()
	var derr *market.DataError
	require.ErrorAs(t, err, &derr)
}

func TestCSVRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bars.csv")
	bars := sampleBars(4)
	require.NoError(t, WriteCSV(path, bars))

	f, err := NewCSVFeed(path, time.Time{}, time.Time{})
	require.NoError(t, err)
	defer f.Close()

	got := drain(t, f)
	require.Len(t, got, 4)
	for i := range got {
		assert.True(t, got[i].Time.Equal(bars[i].Time))
		assert.InDelta(t, bars[i].Close, got[i].Close, 1e-6)
	}
}

func TestCSVWindow(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bars.csv")
	bars := sampleBars(5)
	require.NoError(t, WriteCSV(path, bars))

	// Half-open window: [bar1, bar3)
	f, err := NewCSVFeed(path, bars[1].Time, bars[3].Time)
	require.NoError(t, err)
	defer f.Close()

	got := drain(t, f)
	require.Len(t, got, 2)
	assert.True(t, got[0].Time.Equal(bars[1].Time))
	assert.True(t, got[1].Time.Equal(bars[2].Time))
}

func TestCSVHeaderless(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bars.csv")
	data := "2024-03-01T14:30:00Z,100,101,99,100.5,1000\n" +
		"2024-03-01T14:31:00Z,100.5,102,100,101,900\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	f, err := NewCSVFeed(path, time.Time{}, time.Time{})
	require.NoError(t, err)
	defer f.Close()

	got := drain(t, f)
	assert.Len(t, got, 2)
}

func TestCSVMalformedRows(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		data string
	}{
		{"short row", "time,open,high,low,close,volume\n2024-03-01T14:30:00Z,100,101\n"},
		{"bad time", "not-a-time,100,101,99,100.5,1000\n"},
		{"bad price", "2024-03-01T14:30:00Z,abc,101,99,100.5,1000\n"},
		{"shape violation", "2024-03-01T14:30:00Z,100,99,99,100.5,1000\n"},
		{"duplicate time", "2024-03-01T14:30:00Z,100,101,99,100.5,1000\n2024-03-01T14:30:00Z,100,101,99,100.5,1000\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bars.csv")
			require.NoError(t, os.WriteFile(path, []byte(tc.data), 0o644))

			f, err := NewCSVFeed(path, time.Time{}, time.Time{})
			require.NoError(t, err)
			defer f.Close()

			var derr *market.DataError
			for {
				_, ok, err := f.Next()
				if err != nil {
					require.ErrorAs(t, err, &derr)
					return
				}
				require.True(t, ok, "expected a data error before EOF")
			}
		})
	}
}

func TestParquetRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bars.parquet")
	bars := sampleBars(6)
	require.NoError(t, WriteParquet(path, "TEST", bars))

	f, err := NewParquetFeed(path, time.Time{}, time.Time{})
	require.NoError(t, err)
	defer f.Close()

	got := drain(t, f)
	require.Len(t, got, 6)
	for i := range got {
		assert.True(t, got[i].Time.Equal(bars[i].Time))
		assert.Equal(t, bars[i].Open, got[i].Open)
		assert.Equal(t, bars[i].Volume, got[i].Volume)
	}
}

func TestParquetWindow(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bars.parquet")
	bars := sampleBars(6)
	require.NoError(t, WriteParquet(path, "TEST", bars))

	f, err := NewParquetFeed(path, bars[2].Time, bars[4].Time)
	require.NoError(t, err)
	defer f.Close()

	got := drain(t, f)
	require.Len(t, got, 2)
	assert.True(t, got[0].Time.Equal(bars[2].Time))
}

func TestFeedsAreNonRestartable(t *testing.T) {
	t.Parallel()

	f := NewSliceFeed(sampleBars(2))
	drain(t, f)
	_, ok, err := f.Next()
	assert.False(t, ok)
	assert.NoError(t, err)
}
