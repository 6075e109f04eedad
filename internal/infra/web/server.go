package web

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"csx_ticker/internal/infra"
)

// Server exposes the hub, cached logos and health metrics over HTTP
type Server struct {
	srv     *http.Server
	hub     *Hub
	metrics *infra.Metrics
}

// NewServer creates a server on addr. logoDir may be empty to disable /logos/.
func NewServer(addr string, hub *Hub, metrics *infra.Metrics, logoDir string) *Server {
	s := &Server{hub: hub, metrics: metrics}
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.routes(logoDir),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) routes(logoDir string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", s.hub.ServeWS)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	if logoDir != "" {
		mux.Handle("GET /logos/", http.StripPrefix("/logos/", http.FileServer(http.Dir(logoDir))))
	}
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(indexHTML))
	})
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.metrics.Snapshot())
}

// Handler returns the HTTP handler (for tests)
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Start serves in the background until Shutdown
func (s *Server) Start() {
	go func() {
		slog.Info("🌐 Web dashboard listening", slog.String("addr", s.srv.Addr))
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Web server failed", slog.Any("error", err))
		}
	}()
}

// Shutdown disconnects viewers and stops the listener
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.CloseAll()
	return s.srv.Shutdown(ctx)
}

const indexHTML = `<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>CSX Market Summary</title>
<style>
body{font-family:sans-serif;background:#0b1f3a;color:#fff;margin:2rem}
.stock-item{display:flex;justify-content:space-between;padding:.5rem 0;border-bottom:1px solid #234}
.stock-name{font-size:.8rem;opacity:.7}
.positive{color:#3c6}.negative{color:#e55}.neutral{color:#aaa}
.summary-stats{display:flex;gap:2rem;margin-top:1rem}
.last-updated{font-size:.8rem;opacity:.7;margin-top:1rem}
img{width:24px;height:24px;margin-right:.5rem;vertical-align:middle}
</style>
</head>
<body>
<div class="market-indices">Loading market data...</div>
<script>
const box = document.querySelector('.market-indices');
const esc = s => String(s).replace(/[&<>"]/g, c => ({'&':'&amp;','<':'&lt;','>':'&gt;','"':'&quot;'}[c]));
let ws;
function connect() {
  ws = new WebSocket((location.protocol === 'https:' ? 'wss://' : 'ws://') + location.host + '/ws');
  ws.onmessage = ev => {
    const m = JSON.parse(ev.data);
    if (m.type === 'loading') box.innerHTML = 'Loading market data...';
    if (m.type === 'clear') box.innerHTML = '';
    if (m.type === 'error') box.innerHTML = '<h5>' + esc(m.data.title) + '</h5><p>' + esc(m.data.message) +
      '</p><button onclick="ws.send(JSON.stringify({type:\'retry\'}))">Try Again</button>';
    if (m.type === 'render') {
      let html = '';
      for (const r of m.data.rows) {
        const logo = r.logo ? '<img src="/logos/' + esc(r.logo) + '">' : '';
        html += '<div class="stock-item"><div>' + logo + '<b>' + esc(r.symbol) + '</b><div class="stock-name">' +
          esc(r.name) + '</div></div><div><div>' + esc(r.price) + '</div><div class="' + esc(r.direction_class) + '">' +
          esc(r.arrow) + ' ' + esc(r.change) + ' (' + esc(r.percent) + '%)</div></div></div>';
      }
      html += '<div class="summary-stats"><div>Volume<br>' + esc(m.data.summary.volume) + '</div><div>Value (KHR)<br>' +
        esc(m.data.summary.value) + '</div></div>';
      if (m.data.last_updated) html += '<div class="last-updated">Last updated: ' + esc(m.data.last_updated) + '</div>';
      box.innerHTML = html;
    }
  };
  ws.onclose = () => setTimeout(connect, 5000);
}
connect();
</script>
</body>
</html>
`
