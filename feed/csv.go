package feed

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/quietwizar/trading-system/market"
)

// CSVFeed reads canonical bar CSV rows:
//
//	time,open,high,low,close,volume
//
// where time is RFC3339 or RFC3339Nano. A header row (first field "time" or
// "datetime") is allowed. Empty rows are skipped; short or unparseable rows
// are malformed data. It optionally filters bars to [From, To) if provided.
type CSVFeed struct {
	f    *os.File
	r    *csv.Reader
	from time.Time
	to   time.Time

	seq      sequencer
	sawFirst bool
}

func NewCSVFeed(path string, from, to time.Time) (*CSVFeed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	return &CSVFeed{f: f, r: r, from: from, to: to}, nil
}

func (f *CSVFeed) Close() error {
	if f.f != nil {
		return f.f.Close()
	}
	return nil
}

func (f *CSVFeed) Next() (market.Bar, bool, error) {
	for {
		row, err := f.r.Read()
		if err == io.EOF {
			return market.Bar{}, false, nil
		}
		if err != nil {
			return market.Bar{}, false, err
		}
		if len(row) == 0 {
			continue
		}

		// Allow a single header row.
		if !f.sawFirst {
			f.sawFirst = true
			first := strings.ToLower(strings.TrimSpace(row[0]))
			if first == "time" || first == "datetime" || first == "timestamp" {
				continue
			}
		}

		b, err := parseBarRow(row)
		if err != nil {
			return market.Bar{}, false, err
		}
		if !inRange(b.Time, f.from, f.to) {
			continue
		}
		if err := f.seq.check(b); err != nil {
			return market.Bar{}, false, err
		}
		return b, true, nil
	}
}

func parseBarRow(row []string) (market.Bar, error) {
	// Need time,open,high,low,close; volume is optional.
	if len(row) < 5 {
		return market.Bar{}, market.DataErrorf("bad row (need at least time,open,high,low,close): %v", row)
	}

	ts := strings.TrimSpace(row[0])
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		t2, err2 := time.Parse(time.RFC3339Nano, ts)
		if err2 != nil {
			return market.Bar{}, market.DataErrorf("bad time %q: %v", ts, err)
		}
		t = t2
	}

	vals := make([]float64, 4)
	for i := 0; i < 4; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(row[i+1]), 64)
		if err != nil {
			return market.Bar{}, market.DataErrorf("bad %s %q: %v", barCol(i), row[i+1], err)
		}
		vals[i] = v
	}

	vol := 0.0
	if len(row) >= 6 && strings.TrimSpace(row[5]) != "" {
		vol, err = strconv.ParseFloat(strings.TrimSpace(row[5]), 64)
		if err != nil {
			return market.Bar{}, market.DataErrorf("bad volume %q: %v", row[5], err)
		}
	}

	return market.Bar{
		Time:   t,
		Open:   vals[0],
		High:   vals[1],
		Low:    vals[2],
		Close:  vals[3],
		Volume: vol,
	}, nil
}

func barCol(i int) string {
	return []string{"open", "high", "low", "close"}[i]
}

// WriteCSV writes bars in the canonical CSV layout, header included. It is
// the inverse of NewCSVFeed and exists mainly so tools can convert datasets.
func WriteCSV(path string, bars []market.Bar) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	rows := [][]string{{"time", "open", "high", "low", "close", "volume"}}
	for _, b := range bars {
		rows = append(rows, []string{
			b.Time.Format(time.RFC3339),
			formatPrice(b.Open),
			formatPrice(b.High),
			formatPrice(b.Low),
			formatPrice(b.Close),
			strconv.FormatFloat(b.Volume, 'f', -1, 64),
		})
	}
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func formatPrice(x float64) string {
	return fmt.Sprintf("%.6f", x)
}
