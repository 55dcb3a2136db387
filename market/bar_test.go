package market

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validBar() Bar {
	return Bar{
		Time: time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC),
		Open: 100, High: 103, Low: 99, Close: 102, Volume: 1000,
	}
}

func TestValidateAcceptsWellFormedBar(t *testing.T) {
	t.Parallel()
	assert.NoError(t, validBar().Validate())
}

func TestValidateRejections(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*Bar)
	}{
		{"zero time", func(b *Bar) { b.Time = time.Time{} }},
		{"zero price", func(b *Bar) { b.Open = 0 }},
		{"negative price", func(b *Bar) { b.Low = -1 }},
		{"nan price", func(b *Bar) { b.Close = math.NaN() }},
		{"inf price", func(b *Bar) { b.High = math.Inf(1) }},
		{"negative volume", func(b *Bar) { b.Volume = -1 }},
		{"high below close", func(b *Bar) { b.High = 101; b.Close = 102 }},
		{"high below open", func(b *Bar) { b.High = 99.5 }},
		{"low above open", func(b *Bar) { b.Low = 101 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := validBar()
			tc.mutate(&b)
			err := b.Validate()
			assert.Error(t, err)
			var derr *DataError
			assert.ErrorAs(t, err, &derr)
		})
	}
}

func TestParseTimeframe(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]Timeframe{
		"1Min": Min1, "5min": Min5, "15M": Min15, " 1hour ": Hour1, "1d": Day1,
	} {
		got, err := ParseTimeframe(in)
		assert.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseTimeframe("7Min")
	assert.Error(t, err)
}

func TestTimeframeDerivedValues(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 5*time.Minute, Min5.Duration())
	assert.InDelta(t, 252.0, Day1.BarsPerYear(), 1e-9)
	assert.InDelta(t, 252.0*78, Min5.BarsPerYear(), 1e-9)
}
