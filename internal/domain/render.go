package domain

// Row is one display-ready quote line
type Row struct {
	Symbol         string `json:"symbol"`
	Name           string `json:"name"`
	Logo           string `json:"logo,omitempty"`
	Price          string `json:"price"`
	Change         string `json:"change"`
	Percent        string `json:"percent"`
	DirectionClass string `json:"direction_class"`
	Arrow          string `json:"arrow"`
}

// Summary holds the aggregates over the whole snapshot
type Summary struct {
	Volume string `json:"volume"`
	Value  string `json:"value"`
}

// RenderModel is handed to renderers after a successful fetch
type RenderModel struct {
	Rows        []Row   `json:"rows"`
	Summary     Summary `json:"summary"`
	LastUpdated string  `json:"last_updated,omitempty"`
}

// ErrorView is handed to renderers after a failed fetch.
// Retry triggers a forced refresh; renderers call it from their own goroutine.
type ErrorView struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Retry   func() `json:"-"`
}

// Renderer is the presentation collaborator of the market ticker.
// Implementations must not call back into the ticker synchronously.
type Renderer interface {
	RenderLoading()
	Render(model RenderModel)
	RenderError(view ErrorView)
	Clear()
}

// MultiRenderer fans every hand-off out to several renderers in order
type MultiRenderer struct {
	renderers []Renderer
}

// NewMultiRenderer skips nil renderers
func NewMultiRenderer(renderers ...Renderer) *MultiRenderer {
	m := &MultiRenderer{}
	for _, r := range renderers {
		if r != nil {
			m.renderers = append(m.renderers, r)
		}
	}
	return m
}

func (m *MultiRenderer) RenderLoading() {
	for _, r := range m.renderers {
		r.RenderLoading()
	}
}

func (m *MultiRenderer) Render(model RenderModel) {
	for _, r := range m.renderers {
		r.Render(model)
	}
}

func (m *MultiRenderer) RenderError(view ErrorView) {
	for _, r := range m.renderers {
		r.RenderError(view)
	}
}

func (m *MultiRenderer) Clear() {
	for _, r := range m.renderers {
		r.Clear()
	}
}
