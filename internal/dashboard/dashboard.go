// Package dashboard serves the battery health session over HTTP.
// It exposes the prediction, status, history, chart and report endpoints,
// streams recorded predictions to browsers over WebSocket and serves the
// Prometheus metrics endpoint.
package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"battery-health/internal/features"
	"battery-health/internal/report"
	"battery-health/internal/session"
	"battery-health/internal/storage"
	"battery-health/internal/views"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Session is the prediction session served by the dashboard.
type Session interface {
	ID() string
	Predict(ctx context.Context, r features.SensorReading) (session.Event, error)
	Snapshot() []session.Event
	Last() (session.Event, bool)
}

// Exporter renders report downloads.
type Exporter interface {
	Export(format, sessionID string, snapshot []session.Event) (*report.Report, error)
	Formats() []string
}

// ReportStore gives read access to archived reports.
type ReportStore interface {
	ListReports(sessionID string) ([]storage.ReportRecord, error)
	GetReport(key string) ([]byte, error)
}

// Update is the WebSocket message pushed to browsers.
type Update struct {
	Type      string         `json:"type"` // "snapshot" on connect, "event" per prediction
	SessionID string         `json:"sessionId"`
	Event     *session.Event `json:"event,omitempty"`
	Charts    views.Charts   `json:"charts"`
}

// Dashboard is the HTTP front end of a session.
type Dashboard struct {
	session          Session
	exporter         Exporter
	reports          ReportStore
	router           *mux.Router
	addr             string
	server           *http.Server
	upgrader         websocket.Upgrader
	clients          map[*websocket.Conn]bool
	clientsMu        sync.Mutex
	broadcastChannel chan session.Event
	stopChannel      chan struct{}
	isRunning        bool
	mu               sync.Mutex
}

// New creates a dashboard listening on port. reports may be nil when no
// archive is configured.
func New(sess Session, exporter Exporter, reports ReportStore, port int) *Dashboard {
	d := &Dashboard{
		session:          sess,
		exporter:         exporter,
		reports:          reports,
		upgrader:         websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		clients:          make(map[*websocket.Conn]bool),
		broadcastChannel: make(chan session.Event, 100),
	}

	r := mux.NewRouter()
	r.HandleFunc("/", d.handlePage).Methods("GET")
	r.HandleFunc("/health", d.handleHealth).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/predict", d.handlePredict).Methods("POST")
	api.HandleFunc("/status", d.handleStatus).Methods("GET")
	api.HandleFunc("/history", d.handleHistory).Methods("GET")
	api.HandleFunc("/charts", d.handleCharts).Methods("GET")
	api.HandleFunc("/report", d.handleReport).Methods("GET")
	api.HandleFunc("/reports", d.handleListReports).Methods("GET")
	api.HandleFunc("/reports/{key}", d.handleGetReport).Methods("GET")

	r.HandleFunc("/ws", d.handleWebSocket).Methods("GET")

	d.router = r
	d.addr = fmt.Sprintf(":%d", port)

	return d
}

// Handler returns the dashboard router.
func (d *Dashboard) Handler() http.Handler { return d.router }

// OnEvent queues a recorded prediction for the WebSocket clients. It is
// called with the session lock held and never blocks.
func (d *Dashboard) OnEvent(sessionID string, e session.Event) {
	select {
	case d.broadcastChannel <- e:
	default:
		log.Warn().Str("session_id", sessionID).Msg("Dashboard broadcast queue full, dropping update")
	}
}

// Start starts the broadcaster and the HTTP server.
func (d *Dashboard) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.isRunning {
		return fmt.Errorf("dashboard is already running")
	}

	// http.Server cannot be restarted after Shutdown
	server := &http.Server{
		Addr:         d.addr,
		Handler:      d.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	d.server = server
	d.stopChannel = make(chan struct{})

	go d.clientBroadcaster(d.stopChannel)

	go func() {
		log.Info().
			Str("address", server.Addr).
			Msg("Starting dashboard server")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("Dashboard server failed")
		}
	}()

	d.isRunning = true
	return nil
}

// Stop disconnects WebSocket clients and shuts the server down.
func (d *Dashboard) Stop(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.isRunning {
		return nil
	}

	d.isRunning = false
	close(d.stopChannel)

	d.clientsMu.Lock()
	for client := range d.clients {
		client.Close()
	}
	d.clients = make(map[*websocket.Conn]bool)
	d.clientsMu.Unlock()

	if err := d.server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to shutdown dashboard server")
		return err
	}

	log.Info().Msg("Dashboard stopped")
	return nil
}

func (d *Dashboard) clientBroadcaster(stop <-chan struct{}) {
	for {
		select {
		case e := <-d.broadcastChannel:
			ev := e
			d.broadcast(Update{
				Type:      "event",
				SessionID: d.session.ID(),
				Event:     &ev,
				Charts:    views.Build(d.session.Snapshot()),
			})
		case <-stop:
			return
		}
	}
}

func (d *Dashboard) broadcast(u Update) {
	data, err := json.Marshal(u)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal dashboard update")
		return
	}

	d.clientsMu.Lock()
	defer d.clientsMu.Unlock()

	for client := range d.clients {
		if err := client.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Debug().Err(err).Msg("Dropping WebSocket client")
			client.Close()
			delete(d.clients, client)
		}
	}
}

func (d *Dashboard) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := d.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}
	defer conn.Close()

	// Snapshot, initial write and registration share one clientsMu section;
	// events queued after the snapshot reach the client once it is registered.
	d.clientsMu.Lock()
	initial := Update{
		Type:      "snapshot",
		SessionID: d.session.ID(),
		Charts:    views.Build(d.session.Snapshot()),
	}
	if err := conn.WriteJSON(initial); err != nil {
		d.clientsMu.Unlock()
		return
	}
	d.clients[conn] = true
	d.clientsMu.Unlock()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	d.clientsMu.Lock()
	delete(d.clients, conn)
	d.clientsMu.Unlock()
}
