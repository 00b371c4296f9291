package exchange

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// ValidGroups lists the exchange's stock groups.
var ValidGroups = []string{
	"A", "B", "E", "F", "FC", "GC", "I", "IF", "IP", "M", "MS", "MT",
	"P", "R", "T", "TS", "W", "X", "XD", "XT", "Y", "Z", "ZP", "ZY",
}

// DefaultIndex is used for index based market movers when none is named.
const DefaultIndex = "S&P BSE SENSEX"

const apiDateFormat = "20060102"

// Segment selects the security segment of a query.
type Segment string

const (
	SegmentEquity Segment = "equity"
	SegmentDebt   Segment = "debt"
	SegmentMFETF  Segment = "mf_etf"
)

// ParseSegment normalizes a segment name. Empty means equity.
func ParseSegment(value string) (Segment, error) {
	switch Segment(strings.ToLower(strings.TrimSpace(value))) {
	case "", SegmentEquity:
		return SegmentEquity, nil
	case SegmentDebt:
		return SegmentDebt, nil
	case SegmentMFETF:
		return SegmentMFETF, nil
	default:
		return "", fmt.Errorf("unsupported segment: %s", value)
	}
}

// IsValidGroup reports whether group is a known stock group.
func IsValidGroup(group string) bool {
	return slices.Contains(ValidGroups, strings.ToUpper(strings.TrimSpace(group)))
}

// AnnouncementQuery filters corporate announcements.
type AnnouncementQuery struct {
	Page        int
	From        time.Time
	To          time.Time
	Segment     Segment
	ScripCode   string
	Category    string
	Subcategory string
}

func (q AnnouncementQuery) params(now time.Time) (map[string]string, error) {
	from, to := q.From, q.To
	if from.IsZero() {
		from = now
	}
	if to.IsZero() {
		to = now
	}
	if from.After(to) {
		return nil, ErrInvalidDateRange
	}

	category := strings.TrimSpace(q.Category)
	if category == "" {
		category = "-1"
	}
	subcategory := strings.TrimSpace(q.Subcategory)
	if subcategory == "" {
		subcategory = "-1"
	}
	if subcategory != "-1" && category == "-1" {
		return nil, fmt.Errorf("%w: %s", ErrSubcategoryWithoutCategory, subcategory)
	}

	page := q.Page
	if page < 1 {
		page = 1
	}

	kind := "C"
	switch q.Segment {
	case SegmentDebt:
		kind = "D"
	case SegmentMFETF:
		kind = "M"
	}

	params := map[string]string{
		"pageno":      fmt.Sprint(page),
		"strCat":      category,
		"subcategory": subcategory,
		"strPrevDate": from.Format(apiDateFormat),
		"strToDate":   to.Format(apiDateFormat),
		"strSearch":   "P",
		"strType":     kind,
	}
	if code := strings.TrimSpace(q.ScripCode); code != "" {
		params["strscrip"] = code
	}
	return params, nil
}

// ActionDate selects which date corporate actions are filtered by.
type ActionDate string

const (
	ActionDateEx      ActionDate = "ex"
	ActionDateRecord  ActionDate = "record"
	ActionDateBCStart ActionDate = "bc_start"
)

// ActionQuery filters forthcoming corporate actions.
type ActionQuery struct {
	Segment     Segment
	From        time.Time
	To          time.Time
	ByDate      ActionDate
	ScripCode   string
	Sector      string
	PurposeCode string
}

func (q ActionQuery) params() (map[string]string, error) {
	segment := "0"
	switch q.Segment {
	case SegmentDebt:
		segment = "1"
	case SegmentMFETF:
		segment = "2"
	}

	by := "E"
	switch q.ByDate {
	case ActionDateRecord:
		by = "R"
	case ActionDateBCStart:
		by = "B"
	}

	params := map[string]string{
		"ddlcategorys": by,
		"ddlindustrys": q.Sector,
		"segment":      segment,
		"strSearch":    "D",
	}

	if !q.From.IsZero() && !q.To.IsZero() {
		if q.From.After(q.To) {
			return nil, ErrInvalidDateRange
		}
		params["Fdate"] = q.From.Format(apiDateFormat)
		params["TDate"] = q.To.Format(apiDateFormat)
	}
	if v := strings.TrimSpace(q.PurposeCode); v != "" {
		params["Purposecode"] = v
	}
	if v := strings.TrimSpace(q.ScripCode); v != "" {
		params["scripcode"] = v
	}
	return params, nil
}

// ResultCalendarQuery filters the corporate results calendar.
type ResultCalendarQuery struct {
	From      time.Time
	To        time.Time
	ScripCode string
}

func (q ResultCalendarQuery) params() (map[string]string, error) {
	params := map[string]string{}
	if !q.From.IsZero() && !q.To.IsZero() {
		if q.From.After(q.To) {
			return nil, ErrInvalidDateRange
		}
		params["fromdate"] = q.From.Format(apiDateFormat)
		params["todate"] = q.To.Format(apiDateFormat)
	}
	if v := strings.TrimSpace(q.ScripCode); v != "" {
		params["scripcode"] = v
	}
	return params, nil
}

// MoversBy selects how market movers are grouped.
type MoversBy string

const (
	MoversByGroup MoversBy = "group"
	MoversByIndex MoversBy = "index"
	MoversByAll   MoversBy = "all"
)

// MoversQuery selects gainers, losers and 52 week high/low lists.
type MoversQuery struct {
	By   MoversBy
	Name string
	// PctChange is one of all, 10, 5, 2, 0.
	PctChange string
}

func (q MoversQuery) by() MoversBy {
	if q.By == "" {
		return MoversByGroup
	}
	return q.By
}

// groupOrIndex resolves the group or index name the query refers to. Index
// names are upper-cased only when upperIndex is set; the high/low endpoint
// takes them as given.
func (q MoversQuery) groupOrIndex(upperIndex bool) (string, error) {
	name := strings.TrimSpace(q.Name)
	switch q.by() {
	case MoversByGroup:
		if name == "" {
			return "A", nil
		}
		if !IsValidGroup(name) {
			return "", fmt.Errorf("%s: %w", name, ErrInvalidGroup)
		}
		return name, nil
	case MoversByIndex:
		if name == "" {
			return DefaultIndex, nil
		}
		if upperIndex {
			return strings.ToUpper(name), nil
		}
		return name, nil
	case MoversByAll:
		return "", nil
	default:
		return "", fmt.Errorf("unsupported grouping: %s", q.By)
	}
}

func (q MoversQuery) params(kind string) (map[string]string, error) {
	value, err := q.groupOrIndex(true)
	if err != nil {
		return nil, err
	}

	pct := strings.TrimSpace(q.PctChange)
	if pct == "" {
		pct = "all"
	}
	if !slices.Contains([]string{"all", "10", "5", "2", "0"}, pct) {
		return nil, fmt.Errorf("unsupported percent change filter: %s", pct)
	}

	params := map[string]string{
		"GLtype":  kind,
		"IndxGrp": string(q.by()),
		"orderby": pct,
	}
	if q.by() != MoversByAll {
		params["IndxGrpval"] = value
	}
	return params, nil
}

func (q MoversQuery) highLowParams() (map[string]string, error) {
	value, err := q.groupOrIndex(false)
	if err != nil {
		return nil, err
	}

	params := map[string]string{
		"HLflag":    "H",
		"Grpcode":   "",
		"indexcode": "",
		"scripcode": "",
	}
	switch q.by() {
	case MoversByGroup:
		params["Grpcode"] = value
	case MoversByIndex:
		params["indexcode"] = value
	}
	return params, nil
}

// SecuritiesQuery filters the list of listed securities.
type SecuritiesQuery struct {
	Industry  string
	ScripCode string
	Group     string
	Segment   string
	Status    string
}

func (q SecuritiesQuery) params() (map[string]string, error) {
	group := strings.ToUpper(strings.TrimSpace(q.Group))
	if group == "" {
		group = "A"
	}
	if !IsValidGroup(group) {
		return nil, fmt.Errorf("%s: %w", group, ErrInvalidGroup)
	}

	segment := q.Segment
	if segment == "" {
		segment = "Equity"
	}
	status := q.Status
	if status == "" {
		status = "Active"
	}

	return map[string]string{
		"scripcode": q.ScripCode,
		"Group":     group,
		"industry":  q.Industry,
		"segment":   segment,
		"status":    status,
	}, nil
}

// IndexPeriod is the aggregation period for historical index data.
type IndexPeriod string

const (
	PeriodDaily   IndexPeriod = "D"
	PeriodMonthly IndexPeriod = "M"
	PeriodYearly  IndexPeriod = "Y"
)

// IndexHistoryQuery selects historical values for a named index.
type IndexHistoryQuery struct {
	Index  string
	From   time.Time
	To     time.Time
	Period IndexPeriod
}
