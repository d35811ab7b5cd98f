package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/schema"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"golang.org/x/sync/errgroup"

	"github.com/Vernacular-FR/Bot-1000mines-sub001/internal/grid"
	"github.com/Vernacular-FR/Bot-1000mines-sub001/internal/solver"
)

var decoder = schema.NewDecoder()

func init() {
	decoder.IgnoreUnknownKeys(true)
}

// frame is one cycle's worth of state pushed to debug overlay clients.
type frame struct {
	Cycle   int               `json:"cycle"`
	Actions []solver.Action   `json:"actions"`
	Outcome string            `json:"outcome,omitempty"`
	Cells   []grid.CellExport `json:"cells"`
}

// watcher steps a single game on a ticker and serves its state over
// HTTP and WebSocket for a live overlay.
type watcher struct {
	mu      sync.Mutex
	session *session
	cycle   int
	done    bool
	result  outcome

	upgrader websocket.Upgrader
	clients  map[*websocket.Conn]bool
}

func runWatch(ctx context.Context) error {
	s, err := newSession(config, 0)
	if err != nil {
		return err
	}
	w := &watcher{
		session: s,
		clients: make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}

	router := mux.NewRouter()
	router.Methods("GET").Path("/status").HandlerFunc(
		func(rw http.ResponseWriter, r *http.Request) {
			rw.WriteHeader(http.StatusOK)
			rw.Write([]byte("OK"))
		})
	router.Methods("GET").Path("/state").HandlerFunc(w.handleState)
	router.Methods("GET").Path("/ws").HandlerFunc(w.handleWs)

	server := &http.Server{
		Addr:    config.DebugAddr,
		Handler: cors.Default().Handler(router),
	}

	log.Infof("debug overlay server ready @ %s", config.DebugAddr)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gCtx.Done()
		return server.Shutdown(context.Background())
	})
	g.Go(func() error {
		return w.loop(gCtx)
	})
	return g.Wait()
}

func (w *watcher) loop(ctx context.Context) error {
	delay := config.StepDelay.Duration
	if delay <= 0 {
		delay = 500 * time.Millisecond
	}
	ticker := time.NewTicker(delay)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		w.mu.Lock()
		if w.done {
			w.mu.Unlock()
			continue
		}
		actions, done, result, err := w.session.step()
		w.cycle++
		w.done = done
		w.result = result
		f := w.buildFrame(actions)
		w.mu.Unlock()

		if err != nil {
			log.Error("game aborted: ", err)
		}
		w.broadcast(f)
		if done {
			log.WithField("result", result.String()).Info("watched game finished")
		}
	}
}

func (w *watcher) buildFrame(actions []solver.Action) frame {
	min, max := w.session.field.Bounds()
	f := frame{
		Cycle:   w.cycle,
		Actions: actions,
		Cells:   w.session.brain.Store().Export(min, max),
	}
	if w.done {
		f.Outcome = w.result.String()
	}
	return f
}

type stateParams struct {
	MinX int `schema:"min_x"`
	MinY int `schema:"min_y"`
	MaxX int `schema:"max_x"`
	MaxY int `schema:"max_y"`
}

func (w *watcher) handleState(rw http.ResponseWriter, r *http.Request) {
	min, max := w.session.field.Bounds()
	params := stateParams{MinX: min.X, MinY: min.Y, MaxX: max.X, MaxY: max.Y}
	if err := decoder.Decode(&params, r.URL.Query()); err != nil {
		rw.WriteHeader(http.StatusBadRequest)
		return
	}

	w.mu.Lock()
	cells := w.session.brain.Store().Export(
		grid.Point{X: params.MinX, Y: params.MinY},
		grid.Point{X: params.MaxX, Y: params.MaxY},
	)
	w.mu.Unlock()

	payload, err := json.Marshal(cells)
	if err != nil {
		rw.WriteHeader(http.StatusInternalServerError)
		return
	}
	rw.Header().Add("Content-Type", "application/json")
	rw.Write(payload)
}

func (w *watcher) handleWs(rw http.ResponseWriter, r *http.Request) {
	conn, err := w.upgrader.Upgrade(rw, r, nil)
	if err != nil {
		log.Error("websocket upgrade failed: ", err)
		return
	}
	w.mu.Lock()
	w.clients[conn] = true
	w.mu.Unlock()
}

func (w *watcher) broadcast(f frame) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for conn := range w.clients {
		if err := conn.WriteJSON(f); err != nil {
			conn.Close()
			delete(w.clients, conn)
		}
	}
}
