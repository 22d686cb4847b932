package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/audth517/Japan-Receipt-Map/pkg/scene"
)

const (
	sessionReadTimeout = 60 * time.Second
	sessionPingPeriod  = 20 * time.Second
	sessionWriteWait   = 5 * time.Second
)

// Event is one client input. X and Y are screen coordinates; W and H are
// only read by resize.
type Event struct {
	Type string  `json:"type"` // move, click, dblclick, resize, tick
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	W    float64 `json:"w"`
	H    float64 `json:"h"`
}

// Message is what the server sends back.
type Message struct {
	Type     string          `json:"type"` // snapshot or error
	Snapshot *scene.Snapshot `json:"snapshot,omitempty"`
	Error    string          `json:"error,omitempty"`
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	st, err := newScene(s.cfg, s.bundle)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	sess := &session{conn: conn, scene: st, tickHz: s.cfg.Server.TickHz}
	if err := sess.run(r.Context()); err != nil {
		log.Printf("websocket session ended: %v", err)
	}
}

// session drives one scene from one connection. Only run touches the
// scene or writes to the connection; a reader goroutine feeds it events.
type session struct {
	conn   *websocket.Conn
	scene  *scene.State
	tickHz int
	moving bool
}

func (ss *session) readLoop(events chan<- Event, done <-chan struct{}) {
	defer close(events)
	for {
		var ev Event
		if err := ss.conn.ReadJSON(&ev); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("websocket read: %v", err)
			}
			return
		}
		select {
		case events <- ev:
		case <-done:
			return
		}
	}
}

func (ss *session) run(ctx context.Context) error {
	ss.conn.SetReadDeadline(time.Now().Add(sessionReadTimeout))
	ss.conn.SetPongHandler(func(string) error {
		ss.conn.SetReadDeadline(time.Now().Add(sessionReadTimeout))
		return nil
	})

	events := make(chan Event, 16)
	done := make(chan struct{})
	defer close(done)
	go ss.readLoop(events, done)

	hz := ss.tickHz
	if hz <= 0 {
		hz = 60
	}
	ticker := time.NewTicker(time.Second / time.Duration(hz))
	defer ticker.Stop()
	ping := time.NewTicker(sessionPingPeriod)
	defer ping.Stop()

	if err := ss.sendSnapshot(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			ss.conn.SetReadDeadline(time.Now().Add(sessionReadTimeout))
			changed, err := ss.apply(ev)
			if err != nil {
				if werr := ss.write(Message{Type: "error", Error: err.Error()}); werr != nil {
					return werr
				}
				continue
			}
			if changed {
				if err := ss.sendSnapshot(); err != nil {
					return err
				}
			}
		case <-ticker.C:
			if !ss.moving {
				continue
			}
			ss.moving = ss.scene.Tick()
			if err := ss.sendSnapshot(); err != nil {
				return err
			}
		case <-ping.C:
			if err := ss.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(sessionWriteWait)); err != nil {
				return fmt.Errorf("ping: %w", err)
			}
		}
	}
}

// apply feeds one event to the scene and reports whether a new snapshot
// should go out.
func (ss *session) apply(ev Event) (bool, error) {
	st := ss.scene
	switch ev.Type {
	case "move":
		return st.PointerMove(ev.X, ev.Y), nil
	case "click":
		st.Click(ev.X, ev.Y)
	case "dblclick":
		st.DoubleClick(ev.X, ev.Y)
	case "resize":
		if ev.W <= 0 || ev.H <= 0 {
			return false, fmt.Errorf("invalid size %vx%v", ev.W, ev.H)
		}
		st.Resize(ev.W, ev.H)
	case "tick":
		st.Tick()
	default:
		return false, fmt.Errorf("unknown event type %q", ev.Type)
	}
	ss.moving = !st.Camera().Settled()
	return true, nil
}

func (ss *session) sendSnapshot() error {
	return ss.write(Message{Type: "snapshot", Snapshot: ss.scene.Snapshot()})
}

func (ss *session) write(m Message) error {
	ss.conn.SetWriteDeadline(time.Now().Add(sessionWriteWait))
	return ss.conn.WriteJSON(m)
}
