package misc

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/notesbox/pkg"
)

const pingTimeout = 2 * time.Second

// Pinger is satisfied by both the pgx pool and the redis client adapter.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a plain func to a Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

type Handler struct {
	versionInfo string
	deps        map[string]Pinger
}

func NewHandler(versionInfo string, deps map[string]Pinger) *Handler {
	return &Handler{
		versionInfo: versionInfo,
		deps:        deps,
	}
}

func (handler *Handler) SetupRoutes(r *mux.Router) {
	r.HandleFunc("/health", handler.HandleHealth).Methods(http.MethodGet).Name("health")
	r.HandleFunc("/version", handler.HandleVersion).Methods(http.MethodGet).Name("version")
}

type healthResponse struct {
	Status string            `json:"status"`
	Deps   map[string]string `json:"deps,omitempty"`
}

// HandleHealth pings every dependency and reports 503 when any of them is down.
func (handler *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	resp := healthResponse{
		Status: "ok",
		Deps:   make(map[string]string, len(handler.deps)),
	}
	status := http.StatusOK
	for name, dep := range handler.deps {
		if err := dep.Ping(ctx); err != nil {
			log.Errorf("health check, ping %s: %s", name, err)
			resp.Deps[name] = "down"
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Deps[name] = "ok"
	}

	respBytes, err := json.Marshal(resp)
	if err != nil {
		log.Errorf("marshal health response: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respBytes, status)
}

func (handler *Handler) HandleVersion(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteTextResponseOK(w, handler.versionInfo)
}
