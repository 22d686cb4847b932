package server

import (
	"encoding/json"
	"fmt"
	"image/png"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/audth517/Japan-Receipt-Map/pkg/assets"
	"github.com/audth517/Japan-Receipt-Map/pkg/config"
	"github.com/audth517/Japan-Receipt-Map/pkg/place"
	"github.com/audth517/Japan-Receipt-Map/pkg/render"
	"github.com/audth517/Japan-Receipt-Map/pkg/scene"
)

// Server is the local interactive server. REST endpoints read a shared
// scene built at the configured canvas size; every websocket connection
// gets a scene of its own.
type Server struct {
	cfg    *config.SceneConfig
	bundle *assets.Bundle
	port   int

	mu    sync.Mutex
	scene *scene.State

	upgrader websocket.Upgrader
}

// New builds the shared scene and returns a server for it.
func New(cfg *config.SceneConfig, bundle *assets.Bundle, port int) (*Server, error) {
	st, err := newScene(cfg, bundle)
	if err != nil {
		return nil, err
	}
	return &Server{
		cfg:    cfg,
		bundle: bundle,
		port:   port,
		scene:  st,
	}, nil
}

func newScene(cfg *config.SceneConfig, bundle *assets.Bundle) (*scene.State, error) {
	st, err := scene.New(cfg, bundle, cfg.Canvas.Width, cfg.Canvas.Height, place.NewRand(cfg.Placement.Seed))
	if err != nil {
		return nil, fmt.Errorf("building scene: %w", err)
	}
	return st, nil
}

// Handler returns the routing table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/scene", s.handleScene)
	mux.HandleFunc("GET /api/summary", s.handleSummary)
	mux.HandleFunc("GET /api/validation", s.handleValidation)
	mux.HandleFunc("GET /api/render.png", s.handleRender)
	mux.HandleFunc("GET /ws", s.handleWS)
	mux.HandleFunc("GET /", s.handleIndex)

	return mux
}

// Start launches the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	log.Printf("receiptmap server starting on http://localhost%s", addr)
	log.Printf("Receipts: %d, mode: %s", len(s.bundle.Receipts), s.cfg.Placement.Mode)

	return http.ListenAndServe(addr, s.Handler())
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encoding response: %v", err)
	}
}

func (s *Server) handleScene(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	snap := s.scene.Snapshot()
	s.mu.Unlock()
	writeJSON(w, snap)
}

func (s *Server) handleSummary(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	sum := s.scene.Summary()
	s.mu.Unlock()
	writeJSON(w, sum)
}

func (s *Server) handleValidation(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	report := s.scene.Report()
	report.Merge(scene.Validate(s.scene.Snapshot()))
	s.mu.Unlock()
	writeJSON(w, report)
}

func (s *Server) handleRender(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	snap := s.scene.Snapshot()
	s.mu.Unlock()

	img, err := render.Draw(snap, render.Options{Config: s.cfg, Backgrounds: s.bundle.Backgrounds})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	if err := png.Encode(w, img); err != nil {
		log.Printf("encoding png: %v", err)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html")
	fmt.Fprint(w, indexHTML)
}

const indexHTML = `<!DOCTYPE html>
<html><head><title>Japan Receipts</title></head>
<body style="margin:0;background:#f5f5f5;font-family:monospace">
<canvas id="c"></canvas>
<div id="s" style="position:fixed;left:12px;top:8px"></div>
<script>
const c = document.getElementById("c"), g = c.getContext("2d"), s = document.getElementById("s");
const ws = new WebSocket("ws://" + location.host + "/ws");
const send = (type, e) => ws.send(JSON.stringify({type, x: e ? e.offsetX : 0, y: e ? e.offsetY : 0, w: innerWidth, h: innerHeight}));
const resize = () => { c.width = innerWidth; c.height = innerHeight; send("resize"); };
ws.onopen = () => { addEventListener("resize", resize); resize(); };
c.onmousemove = e => send("move", e);
c.onclick = e => send("click", e);
c.ondblclick = e => send("dblclick", e);
ws.onmessage = m => {
  const msg = JSON.parse(m.data);
  if (msg.type !== "snapshot") { s.textContent = msg.error; return; }
  const snap = msg.snapshot, v = snap.view;
  g.fillStyle = "#f5f5f5"; g.fillRect(0, 0, c.width, c.height);
  g.setTransform(v.scale, 0, 0, v.scale, v.offset_x, v.offset_y);
  g.lineWidth = 1 / v.scale;
  for (const r of snap.regions) {
    g.fillStyle = r.focused || snap.fade === 0 ? "#ebebeb" : "#f2f2f2";
    g.fillRect(r.rect.x, r.rect.y, r.rect.w, r.rect.h);
  }
  for (const p of snap.points) {
    g.beginPath();
    if (p.thumb) g.rect(p.thumb.x, p.thumb.y, p.thumb.w, p.thumb.h); else g.arc(p.x, p.y, p.radius, 0, 7);
    g.fillStyle = "#fff"; g.fill(); g.strokeStyle = "#a0a0a0"; g.stroke();
  }
  g.setTransform(1, 0, 0, 1, 0, 0);
  const h = snap.hovered;
  s.textContent = snap.nav.mode + (h ? "  " + h.region + " / " + h.city + "  " + h.id + " (" + h.price + ")" : "");
};
</script>
</body></html>`
