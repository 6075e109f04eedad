package domain

import (
	"github.com/shopspring/decimal"
)

// Direction is the change direction of a quote relative to its previous close
type Direction string

const (
	DirectionUp        Direction = "up"
	DirectionDown      Direction = "down"
	DirectionUnchanged Direction = "unchanged"
)

// ParseDirection maps the source change token onto a Direction.
// Only the exact tokens "up" and "down" are recognized, anything else is unchanged.
func ParseDirection(token string) Direction {
	switch token {
	case "up":
		return DirectionUp
	case "down":
		return DirectionDown
	default:
		return DirectionUnchanged
	}
}

// Class returns the visual class for a direction: "positive", "negative", or "neutral"
func (d Direction) Class() string {
	switch d {
	case DirectionUp:
		return "positive"
	case DirectionDown:
		return "negative"
	default:
		return "neutral"
	}
}

// Arrow returns a glyph for text renderers
func (d Direction) Arrow() string {
	switch d {
	case DirectionUp:
		return "▲"
	case DirectionDown:
		return "▼"
	default:
		return "–"
	}
}

// Quote is one listed instrument's latest snapshot as published by the exchange
type Quote struct {
	Symbol    string         `json:"stock"`
	Close     GroupedDecimal `json:"close"`
	Change    GroupedDecimal `json:"change"`
	ChangeDir string         `json:"change_up_down"`
	Volume    GroupedDecimal `json:"volume"`
	Value     GroupedDecimal `json:"value"`
	CreatedAt Timestamp      `json:"created_at"`
}

// Direction classifies the quote's change token
func (q *Quote) Direction() Direction {
	return ParseDirection(q.ChangeDir)
}

var hundred = decimal.NewFromInt(100)

// ChangePercent calculates abs(change / open) * 100 where open = close - change.
// Returns "0.00" when either field is missing or the open value is zero.
func (q *Quote) ChangePercent() string {
	if !q.Change.Present() || !q.Close.Present() {
		return "0.00"
	}

	open := q.Close.Decimal.Sub(q.Change.Decimal)
	if open.IsZero() {
		return "0.00"
	}

	return q.Change.Decimal.Div(open).Mul(hundred).Abs().StringFixed(2)
}

// Snapshot is the ordered quote list returned by one fetch
type Snapshot struct {
	Quotes []Quote
}

// CreatedAt returns the first quote's timestamp, which is authoritative for the whole snapshot
func (s *Snapshot) CreatedAt() Timestamp {
	if len(s.Quotes) == 0 {
		return Timestamp{}
	}
	return s.Quotes[0].CreatedAt
}

// Top returns up to n quotes in source order
func (s *Snapshot) Top(n int) []Quote {
	if n <= 0 || n >= len(s.Quotes) {
		return s.Quotes
	}
	return s.Quotes[:n]
}

// TotalVolume sums volume across every quote. Unparseable values count as zero.
func (s *Snapshot) TotalVolume() decimal.Decimal {
	total := decimal.Zero
	for i := range s.Quotes {
		total = total.Add(s.Quotes[i].Volume.Decimal)
	}
	return total
}

// TotalValue sums traded value across every quote. Unparseable values count as zero.
func (s *Snapshot) TotalValue() decimal.Decimal {
	total := decimal.Zero
	for i := range s.Quotes {
		total = total.Add(s.Quotes[i].Value.Decimal)
	}
	return total
}

// ParseErrors collects the numeric fields that failed to parse, for logging
func (s *Snapshot) ParseErrors() []*ParseError {
	var errs []*ParseError
	for i := range s.Quotes {
		q := &s.Quotes[i]
		for _, f := range []struct {
			name string
			d    *GroupedDecimal
		}{
			{"close", &q.Close},
			{"change", &q.Change},
			{"volume", &q.Volume},
			{"value", &q.Value},
		} {
			if f.d.Err != nil {
				errs = append(errs, &ParseError{Symbol: q.Symbol, Field: f.name, Value: f.d.Raw, Err: f.d.Err})
			}
		}
	}
	return errs
}
