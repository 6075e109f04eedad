package console

import (
	"fmt"
	"io"
	"sync"

	"csx_ticker/internal/domain"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Renderer prints the market summary as a table on a terminal
type Renderer struct {
	mu    sync.Mutex
	out   io.Writer
	clear bool // Emit ANSI clear-screen before each frame
}

// NewRenderer creates a console renderer. clearScreen should be false when out is not a TTY.
func NewRenderer(out io.Writer, clearScreen bool) *Renderer {
	return &Renderer{out: out, clear: clearScreen}
}

func (r *Renderer) RenderLoading() {
	r.frame("Loading market data...\n")
}

func (r *Renderer) Render(model domain.RenderModel) {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Symbol", "Name", "Price", "Change", "%"})
	for _, row := range model.Rows {
		color := directionColor(row.DirectionClass)
		t.AppendRow(table.Row{
			row.Symbol,
			row.Name,
			row.Price,
			color.Sprint(row.Arrow + " " + row.Change),
			color.Sprint(row.Percent + "%"),
		})
	}
	t.AppendFooter(table.Row{"Volume", model.Summary.Volume, "Value (KHR)", model.Summary.Value, ""})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})

	out := t.Render() + "\n"
	if model.LastUpdated != "" {
		out += "Last updated: " + model.LastUpdated + "\n"
	}
	r.frame(out)
}

func (r *Renderer) RenderError(view domain.ErrorView) {
	r.frame(fmt.Sprintf("%s\n%s\nType r + Enter to try again.\n", view.Title, view.Message))
}

func (r *Renderer) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.clear {
		fmt.Fprint(r.out, "\033[H\033[2J")
	}
}

func (r *Renderer) frame(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.clear {
		fmt.Fprint(r.out, "\033[H\033[2J")
	}
	fmt.Fprint(r.out, s)
}

func directionColor(class string) text.Colors {
	switch class {
	case "positive":
		return text.Colors{text.FgGreen}
	case "negative":
		return text.Colors{text.FgRed}
	default:
		return text.Colors{text.FgHiBlack}
	}
}
