package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParseDirection(t *testing.T) {
	cases := map[string]struct {
		dir   Direction
		class string
	}{
		"up":      {DirectionUp, "positive"},
		"down":    {DirectionDown, "negative"},
		"UP":      {DirectionUnchanged, "neutral"},
		" up":     {DirectionUnchanged, "neutral"},
		"":        {DirectionUnchanged, "neutral"},
		"flat":    {DirectionUnchanged, "neutral"},
		"nochang": {DirectionUnchanged, "neutral"},
	}

	for token, want := range cases {
		d := ParseDirection(token)
		if d != want.dir {
			t.Errorf("ParseDirection(%q) = %s, want %s", token, d, want.dir)
		}
		if d.Class() != want.class {
			t.Errorf("Class for %q = %s, want %s", token, d.Class(), want.class)
		}
	}
}

func TestQuote_ChangePercent(t *testing.T) {
	t.Run("Normal Calculation", func(t *testing.T) {
		q := Quote{Close: NewGroupedDecimal("105"), Change: NewGroupedDecimal("5")}
		if got := q.ChangePercent(); got != "5.00" {
			t.Errorf("Expected 5.00, got %s", got)
		}
	})

	t.Run("Negative change is reported as magnitude", func(t *testing.T) {
		q := Quote{Close: NewGroupedDecimal("2,340"), Change: NewGroupedDecimal("-60")}
		if got := q.ChangePercent(); got != "2.50" {
			t.Errorf("Expected 2.50, got %s", got)
		}
	})

	t.Run("Zero change", func(t *testing.T) {
		q := Quote{Close: NewGroupedDecimal("9,999"), Change: NewGroupedDecimal("0")}
		if got := q.ChangePercent(); got != "0.00" {
			t.Errorf("Expected 0.00, got %s", got)
		}
	})

	t.Run("Safety: Zero Open", func(t *testing.T) {
		q := Quote{Close: NewGroupedDecimal("40"), Change: NewGroupedDecimal("40")}
		if got := q.ChangePercent(); got != "0.00" {
			t.Errorf("Expected 0.00 when open is zero, got %s", got)
		}
	})

	t.Run("Safety: Missing fields", func(t *testing.T) {
		q := Quote{Close: NewGroupedDecimal("100")}
		if got := q.ChangePercent(); got != "0.00" {
			t.Errorf("Expected 0.00 for missing change, got %s", got)
		}
	})
}

func TestGroupedDecimal_UnmarshalJSON(t *testing.T) {
	var q Quote
	body := `{"stock":"ABC","close":"10,980","change":-20,"volume":"bad","value":"","created_at":"2024-05-10T08:30:00Z"}`
	if err := json.Unmarshal([]byte(body), &q); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if !q.Close.Equal(decimal.NewFromInt(10980)) {
		t.Errorf("Expected close 10980, got %s", q.Close.String())
	}
	if !q.Change.Equal(decimal.NewFromInt(-20)) {
		t.Errorf("Expected change -20, got %s", q.Change.String())
	}
	if q.Volume.Err == nil || !q.Volume.IsZero() || q.Volume.Raw != "bad" {
		t.Errorf("Malformed volume should read as zero with error, got %+v", q.Volume)
	}
	if q.Value.Present() || q.Value.Err != nil {
		t.Error("Empty value should be absent without error")
	}
	if !q.CreatedAt.Parsed() {
		t.Error("Expected created_at to parse")
	}
}

func TestSnapshot_Aggregates(t *testing.T) {
	snap := Snapshot{Quotes: []Quote{
		{Symbol: "A", Volume: NewGroupedDecimal("1,000"), Value: NewGroupedDecimal("2,500,000")},
		{Symbol: "B", Volume: NewGroupedDecimal("n/a"), Value: NewGroupedDecimal("500,000")},
		{Symbol: "C", Volume: NewGroupedDecimal("500")},
	}}

	if !snap.TotalVolume().Equal(decimal.NewFromInt(1500)) {
		t.Errorf("Expected volume 1500, got %s", snap.TotalVolume())
	}
	if !snap.TotalValue().Equal(decimal.NewFromInt(3000000)) {
		t.Errorf("Expected value 3000000, got %s", snap.TotalValue())
	}

	errs := snap.ParseErrors()
	if len(errs) != 1 || errs[0].Symbol != "B" || errs[0].Field != "volume" {
		t.Errorf("Expected one volume parse error for B, got %v", errs)
	}

	if len(snap.Top(2)) != 2 || snap.Top(2)[1].Symbol != "B" {
		t.Error("Top should keep source order")
	}
	if len(snap.Top(10)) != 3 {
		t.Error("Top larger than snapshot should return everything")
	}
}

func TestTimestamp_Same(t *testing.T) {
	a := ParseTimestamp("2024-05-10T08:30:00Z")
	b := ParseTimestamp("2024-05-10T08:30:00.000Z")
	c := ParseTimestamp("2024-05-10 08:31:00")
	raw := ParseTimestamp("yesterday")

	if !a.Same(b) {
		t.Error("Equal instants with different text should be the same snapshot")
	}
	if a.Same(c) {
		t.Error("Different instants should not be the same snapshot")
	}
	if !a.OlderThan(c) || c.OlderThan(a) {
		t.Error("OlderThan ordering is wrong")
	}
	if raw.Parsed() || !raw.Same(ParseTimestamp("yesterday")) || raw.OlderThan(a) {
		t.Error("Unparsed timestamps compare by raw text only")
	}
	if !(Timestamp{}).IsZero() || a.IsZero() {
		t.Error("IsZero is wrong")
	}
}

func TestStaticDirectory(t *testing.T) {
	dir := StaticDirectory{}

	if got := dir.Company("ABC").Name; got != "ACLEDA Bank PLC" {
		t.Errorf("Expected ACLEDA Bank PLC, got %s", got)
	}
	if got := dir.Company("XYZ").Name; got != "XYZ" {
		t.Errorf("Unknown symbol should render as itself, got %s", got)
	}
}

func TestTimestamp_In(t *testing.T) {
	ict := time.FixedZone("ICT", 7*60*60)

	naive := ParseTimestamp("2024-05-10 08:05:00")
	if got := naive.In(ict); got.Hour() != 8 || got.Location() != ict {
		t.Errorf("Expected 08:05 wall clock in ICT, got %s", got)
	}
	if got := naive.In(ict).UTC().Hour(); got != 1 {
		t.Errorf("Expected 01:05 UTC, got hour %d", got)
	}

	zoned := ParseTimestamp("2024-05-10T08:05:00Z")
	if got := zoned.In(ict); got.Hour() != 15 {
		t.Errorf("Expected 15:05 in ICT, got %s", got)
	}
}
