package exchange

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Quote holds the OHLC header for a scrip.
type Quote struct {
	PrevClose float64 `json:"prev_close"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	LTP       float64 `json:"ltp"`
}

// WeeklyHighLow holds 52 week, monthly and weekly extremes for a scrip.
type WeeklyHighLow struct {
	Fifty2WeekHigh float64 `json:"fifty2_week_high"`
	DateHigh       string  `json:"date_high"`
	Fifty2WeekLow  float64 `json:"fifty2_week_low"`
	DateLow        string  `json:"date_low"`
	MonthlyHigh    float64 `json:"monthly_high"`
	MonthlyLow     float64 `json:"monthly_low"`
	WeeklyHigh     float64 `json:"weekly_high"`
	WeeklyLow      float64 `json:"weekly_low"`
}

type tablePayload struct {
	Table []Record `json:"Table"`
}

// Announcements returns a page of corporate announcements. The response holds
// the rows under Table and the total row count under Table1[0].ROWCNT.
func (c *Client) Announcements(ctx context.Context, q AnnouncementQuery) (Payload, error) {
	params, err := q.params(c.now())
	if err != nil {
		return nil, err
	}

	var out Payload
	if err := c.getJSON(ctx, "AnnSubCategoryGetData", params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Actions returns forthcoming corporate actions.
func (c *Client) Actions(ctx context.Context, q ActionQuery) ([]Record, error) {
	params, err := q.params()
	if err != nil {
		return nil, err
	}

	var out []Record
	if err := c.getJSON(ctx, "DefaultData", params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ResultCalendar returns forthcoming corporate result dates.
func (c *Client) ResultCalendar(ctx context.Context, q ResultCalendarQuery) ([]Record, error) {
	params, err := q.params()
	if err != nil {
		return nil, err
	}

	var out []Record
	if err := c.getJSON(ctx, "Corpforthresults", params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AdvanceDecline returns advance/decline counts for every index.
func (c *Client) AdvanceDecline(ctx context.Context) ([]Record, error) {
	var out []Record
	if err := c.getJSON(ctx, "advanceDecline", map[string]string{"val": "Index"}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Gainers lists top gainers by percent change.
func (c *Client) Gainers(ctx context.Context, q MoversQuery) ([]Record, error) {
	return c.movers(ctx, q, "gainer")
}

// Losers lists top losers by percent change.
func (c *Client) Losers(ctx context.Context, q MoversQuery) ([]Record, error) {
	return c.movers(ctx, q, "loser")
}

func (c *Client) movers(ctx context.Context, q MoversQuery, kind string) ([]Record, error) {
	params, err := q.params(kind)
	if err != nil {
		return nil, err
	}

	var out tablePayload
	if err := c.getJSON(ctx, "MktRGainerLoserData", params, &out); err != nil {
		return nil, err
	}
	return out.Table, nil
}

// Near52WeekHighLow lists stocks near their 52 week highs and lows under the
// highs and lows keys.
func (c *Client) Near52WeekHighLow(ctx context.Context, q MoversQuery) (Payload, error) {
	params, err := q.highLowParams()
	if err != nil {
		return nil, err
	}

	var out Payload
	if err := c.getJSON(ctx, "MktHighLowData", params, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = Payload{}
	}
	if v, ok := out["Table"]; ok {
		out["highs"] = v
		delete(out, "Table")
	}
	if v, ok := out["Table1"]; ok {
		out["lows"] = v
		delete(out, "Table1")
	}
	return out, nil
}

// Quote returns OHLC values for scripCode.
func (c *Client) Quote(ctx context.Context, scripCode string) (*Quote, error) {
	code := strings.TrimSpace(scripCode)
	if code == "" {
		return nil, ErrMissingScripCode
	}

	var payload struct {
		Header map[string]any `json:"Header"`
	}
	if err := c.getJSON(ctx, "getScripHeaderData", map[string]string{"scripcode": code}, &payload); err != nil {
		return nil, err
	}
	if payload.Header == nil {
		return nil, fmt.Errorf("quote %s: missing header: %w", code, ErrScripNotFound)
	}

	var q Quote
	for key, dst := range map[string]*float64{
		"PrevClose": &q.PrevClose,
		"Open":      &q.Open,
		"High":      &q.High,
		"Low":       &q.Low,
		"LTP":       &q.LTP,
	} {
		value, err := toFloat(payload.Header[key])
		if err != nil {
			return nil, fmt.Errorf("quote %s: %s: %w", code, key, err)
		}
		*dst = value
	}
	return &q, nil
}

// QuoteWeeklyHL returns 52 week, monthly and weekly highs and lows.
func (c *Client) QuoteWeeklyHL(ctx context.Context, scripCode string) (*WeeklyHighLow, error) {
	code := strings.TrimSpace(scripCode)
	if code == "" {
		return nil, ErrMissingScripCode
	}

	var data map[string]any
	params := map[string]string{"Type": "EQ", "flag": "C", "scripcode": code}
	if err := c.getJSON(ctx, "HighLow", params, &data); err != nil {
		return nil, err
	}

	out := &WeeklyHighLow{
		DateHigh: dateField(data["Fifty2WkHigh_adjDt"]),
		DateLow:  dateField(data["Fifty2WkLow_adjDt"]),
	}

	var err error
	if out.Fifty2WeekHigh, err = toFloat(data["Fifty2WkHigh_adj"]); err != nil {
		return nil, fmt.Errorf("52 week high: %w", err)
	}
	if out.Fifty2WeekLow, err = toFloat(data["Fifty2WkLow_adj"]); err != nil {
		return nil, fmt.Errorf("52 week low: %w", err)
	}
	if out.WeeklyHigh, out.WeeklyLow, err = splitHighLow(data["WeekHighLow"]); err != nil {
		return nil, fmt.Errorf("weekly high/low: %w", err)
	}
	if out.MonthlyHigh, out.MonthlyLow, err = splitHighLow(data["MonthHighLow"]); err != nil {
		return nil, fmt.Errorf("monthly high/low: %w", err)
	}
	return out, nil
}

// ListSecurities lists securities with symbol, ISIN, industry and group.
func (c *Client) ListSecurities(ctx context.Context, q SecuritiesQuery) ([]Record, error) {
	params, err := q.params()
	if err != nil {
		return nil, err
	}

	var out []Record
	if err := c.getJSON(ctx, "ListofScripData", params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// IndexSnapshot returns every index's values for a single day.
func (c *Client) IndexSnapshot(ctx context.Context, day time.Time, period IndexPeriod) (Payload, error) {
	if period == "" {
		period = PeriodDaily
	}
	params := map[string]string{
		"fmdt":   day.Format(indexDateFormat),
		"todt":   day.Format(indexDateFormat),
		"index":  "All",
		"period": string(period),
	}

	var out Payload
	if err := c.getJSON(ctx, "IndexArchDailyAll", params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// IndexHistory returns historical values for one index, fetched in 30 day
// chunks and concatenated.
func (c *Client) IndexHistory(ctx context.Context, q IndexHistoryQuery) ([]Record, error) {
	index := strings.TrimSpace(q.Index)
	if index == "" || strings.EqualFold(index, "All") {
		return nil, fmt.Errorf("index name is required; use IndexSnapshot for all indices")
	}
	if q.To.Before(q.From) {
		return nil, ErrInvalidDateRange
	}

	period := q.Period
	if period == "" {
		period = PeriodDaily
	}

	var rows []Record
	for _, chunk := range SplitDateRange(q.From, q.To, DefaultChunkDays) {
		params := map[string]string{
			"fmdt":   chunk.From.Format(indexDateFormat),
			"todt":   chunk.To.Format(indexDateFormat),
			"index":  index,
			"period": string(period),
		}

		var out tablePayload
		if err := c.getJSON(ctx, "IndexArchDaily", params, &out); err != nil {
			return nil, err
		}
		rows = append(rows, out.Table...)
	}
	return rows, nil
}

// IndexNames lists indices accepted by IndexHistory.
func (c *Client) IndexNames(ctx context.Context) (Payload, error) {
	var out Payload
	params := map[string]string{"fmdt": "", "todt": ""}
	if err := c.getJSON(ctx, "FillddlIndex", params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// IndexReportMetadata reports when the index archive was last updated.
func (c *Client) IndexReportMetadata(ctx context.Context) (Payload, error) {
	var out Payload
	if err := c.getJSON(ctx, "Indexarchive_filedownload", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func toFloat(value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case string:
		parsed, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(v), ",", ""), 64)
		if err != nil {
			return 0, fmt.Errorf("invalid number %q", v)
		}
		return parsed, nil
	case nil:
		return 0, fmt.Errorf("missing value")
	default:
		return 0, fmt.Errorf("unexpected value %v", v)
	}
}

// dateField strips the parentheses around dates like "(12/03/2025)". Missing
// or non-string values yield "".
func dateField(value any) string {
	s, ok := value.(string)
	if !ok {
		return ""
	}
	return strings.Trim(s, " ()")
}

// splitHighLow parses values like "1650.00 / 1540.25".
func splitHighLow(value any) (float64, float64, error) {
	s, ok := value.(string)
	if !ok {
		return 0, 0, fmt.Errorf("unexpected value %v", value)
	}
	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid high/low %q", s)
	}
	high, err := toFloat(parts[0])
	if err != nil {
		return 0, 0, err
	}
	low, err := toFloat(parts[1])
	if err != nil {
		return 0, 0, err
	}
	return high, low, nil
}
