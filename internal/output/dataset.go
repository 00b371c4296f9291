package output

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/bselens/bselens/internal/exchange"
	"github.com/bselens/bselens/internal/lookup"
	"github.com/bselens/bselens/internal/throttle"
)

// Dataset is a titled grid of cells. Raw keeps the value the grid was built
// from and is what the JSON formatter emits.
type Dataset struct {
	Title   string
	Columns []string
	Rows    [][]string
	Footer  string
	Raw     any
}

// NewDataset creates an empty dataset.
func NewDataset(title string, raw any, columns ...string) *Dataset {
	return &Dataset{Title: title, Columns: columns, Raw: raw}
}

// AddRow appends a row, formatting each value as a cell.
func (d *Dataset) AddRow(values ...any) {
	row := make([]string, len(values))
	for i, v := range values {
		row[i] = Cell(v)
	}
	d.Rows = append(d.Rows, row)
}

// Cell formats a decoded JSON value for display.
func Cell(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(value)
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case time.Time:
		if value.IsZero() {
			return ""
		}
		return value.Format(time.RFC3339)
	case time.Duration:
		return value.String()
	default:
		return fmt.Sprint(value)
	}
}

// Entries renders lookup entries.
func Entries(entries []lookup.Entry) *Dataset {
	d := NewDataset("Lookup results", entries, "Company", "Symbol", "ISIN", "Scrip code")
	for _, e := range entries {
		d.AddRow(e.CompanyName, e.Symbol, e.ISIN, e.BSECode)
	}
	return d
}

// Records renders exchange rows. Without explicit columns the union of row
// keys is used, sorted by name.
func Records(title string, records []exchange.Record, columns ...string) *Dataset {
	if len(columns) == 0 {
		columns = recordColumns(records)
	}
	d := NewDataset(title, records, columns...)
	for _, rec := range records {
		values := make([]any, len(columns))
		for i, col := range columns {
			values[i] = rec[col]
		}
		d.AddRow(values...)
	}
	d.Footer = fmt.Sprintf("%d rows", len(records))
	return d
}

// Payload renders each list-of-objects value in p as its own dataset, in key
// order. Scalar values are collected into a trailing key/value dataset.
func Payload(title string, p exchange.Payload) []*Dataset {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var (
		sets    []*Dataset
		scalars = NewDataset(title, p, "Key", "Value")
	)
	for _, key := range keys {
		rows, ok := asRecords(p[key])
		if !ok {
			scalars.AddRow(key, p[key])
			continue
		}
		sets = append(sets, Records(title+": "+key, rows))
	}
	if len(scalars.Rows) > 0 || len(sets) == 0 {
		sets = append(sets, scalars)
	}

	// JSON output emits the payload once.
	for i, set := range sets {
		if i == 0 {
			set.Raw = p
		} else {
			set.Raw = nil
		}
	}
	return sets
}

// Quote renders an OHLC quote.
func Quote(code string, q *exchange.Quote) *Dataset {
	d := NewDataset("Quote "+code, q, "Prev close", "Open", "High", "Low", "LTP")
	if q != nil {
		d.AddRow(q.PrevClose, q.Open, q.High, q.Low, q.LTP)
	}
	return d
}

// WeeklyHighLow renders 52 week, monthly and weekly extremes.
func WeeklyHighLow(code string, hl *exchange.WeeklyHighLow) *Dataset {
	d := NewDataset("High/low "+code, hl, "Range", "High", "Low")
	if hl != nil {
		d.AddRow("52 week", fmt.Sprintf("%s (%s)", Cell(hl.Fifty2WeekHigh), hl.DateHigh), fmt.Sprintf("%s (%s)", Cell(hl.Fifty2WeekLow), hl.DateLow))
		d.AddRow("month", hl.MonthlyHigh, hl.MonthlyLow)
		d.AddRow("week", hl.WeeklyHigh, hl.WeeklyLow)
	}
	return d
}

// Throttle renders bucket state.
func Throttle(states []throttle.BucketState) *Dataset {
	d := NewDataset("Throttle buckets", states, "Bucket", "Rate/s", "Configured", "Count", "Window start")
	for _, s := range states {
		rate := any(s.Rate)
		if s.Rate <= 0 {
			rate = "unlimited"
		}
		d.AddRow(string(s.Name), rate, s.Configured, s.Count, s.WindowStart)
	}
	return d
}

func recordColumns(records []exchange.Record) []string {
	seen := map[string]struct{}{}
	for _, rec := range records {
		for k := range rec {
			seen[k] = struct{}{}
		}
	}
	columns := make([]string, 0, len(seen))
	for k := range seen {
		columns = append(columns, k)
	}
	sort.Strings(columns)
	return columns
}

func asRecords(v any) ([]exchange.Record, bool) {
	items, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]exchange.Record, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, false
		}
		out = append(out, exchange.Record(m))
	}
	return out, true
}
