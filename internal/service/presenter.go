package service

import (
	"path/filepath"
	"time"

	"csx_ticker/internal/domain"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

const (
	// DefaultTopN is the number of quotes shown in the dashboard
	DefaultTopN = 5

	// TimestampLayout renders like "Oct 14, 09:30 AM"
	TimestampLayout = "Jan 2, 03:04 PM"
)

var (
	thousand = decimal.NewFromInt(1_000)
	million  = decimal.NewFromInt(1_000_000)
	billion  = decimal.NewFromInt(1_000_000_000)
)

// Presenter turns a snapshot into a display-ready RenderModel. It holds no mutable state.
type Presenter struct {
	directory domain.CompanyDirectory
	topN      int
	location  *time.Location
}

// NewPresenter creates a presenter. A nil directory falls back to the built-in names,
// a non-positive topN to DefaultTopN and a nil location to time.Local.
func NewPresenter(directory domain.CompanyDirectory, topN int, location *time.Location) *Presenter {
	if directory == nil {
		directory = domain.StaticDirectory{}
	}
	if topN <= 0 {
		topN = DefaultTopN
	}
	if location == nil {
		location = time.Local
	}
	return &Presenter{directory: directory, topN: topN, location: location}
}

// Build renders the top N quotes in source order and the aggregates of the whole snapshot
func (p *Presenter) Build(snap domain.Snapshot) domain.RenderModel {
	top := snap.Top(p.topN)
	rows := make([]domain.Row, 0, len(top))
	for i := range top {
		rows = append(rows, p.row(&top[i]))
	}

	return domain.RenderModel{
		Rows: rows,
		Summary: domain.Summary{
			Volume: FormatLargeNumber(snap.TotalVolume()),
			Value:  FormatLargeNumber(snap.TotalValue()),
		},
		LastUpdated: FormatTimestamp(snap.CreatedAt(), p.location),
	}
}

func (p *Presenter) row(q *domain.Quote) domain.Row {
	company := p.directory.Company(q.Symbol)
	name := company.Name
	if name == "" {
		name = q.Symbol
	}

	var logo string
	if company.LogoPath != "" {
		logo = filepath.Base(company.LogoPath)
	}

	change := q.Change.Raw
	if change == "" {
		change = "0"
	}

	dir := q.Direction()
	return domain.Row{
		Symbol:         q.Symbol,
		Name:           name,
		Logo:           logo,
		Price:          FormatNumber(q.Close),
		Change:         change,
		Percent:        q.ChangePercent(),
		DirectionClass: dir.Class(),
		Arrow:          dir.Arrow(),
	}
}

// FormatNumber renders a grouped decimal with thousands separators and at most three
// fraction digits. Absent values render as "0", malformed ones as their raw text.
func FormatNumber(d domain.GroupedDecimal) string {
	if d.Err != nil {
		return d.Raw
	}
	if !d.Present() {
		return "0"
	}
	return formatGrouped(d.Decimal)
}

// FormatLargeNumber abbreviates with exactly one suffix tier: B, M or K with one decimal.
// Values below one thousand use the grouped form.
func FormatLargeNumber(v decimal.Decimal) string {
	switch {
	case v.GreaterThanOrEqual(billion):
		return v.Div(billion).StringFixed(1) + "B"
	case v.GreaterThanOrEqual(million):
		return v.Div(million).StringFixed(1) + "M"
	case v.GreaterThanOrEqual(thousand):
		return v.Div(thousand).StringFixed(1) + "K"
	default:
		return formatGrouped(v)
	}
}

// FormatTimestamp renders ts in loc. Timestamps without an offset are taken as wall-clock time
// in loc; timestamps in an unknown layout render as their raw text.
func FormatTimestamp(ts domain.Timestamp, loc *time.Location) string {
	if !ts.Parsed() {
		return ts.Raw
	}
	return ts.In(loc).Format(TimestampLayout)
}

func formatGrouped(v decimal.Decimal) string {
	// CommafWithDigits truncates, so round half away from zero first
	f, _ := v.Round(3).Float64()
	return humanize.CommafWithDigits(f, 3)
}
