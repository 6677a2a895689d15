// Package httpapi serves sensor readings over HTTP. Every read is a bus
// request to the sensor loop, which stays the only owner of the hardware.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"pixelit-go/bus"
	"pixelit-go/services/telemetry"

	"github.com/gorilla/mux"
)

const DefaultTimeout = 2 * time.Second

type API struct {
	conn    *bus.Connection
	timeout time.Duration
}

func New(conn *bus.Connection, timeout time.Duration) *API {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &API{conn: conn, timeout: timeout}
}

func (a *API) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", healthHandler).Methods("GET")
	r.HandleFunc("/api/luxsensor", a.read("lux")).Methods("GET")
	r.HandleFunc("/api/dhtsensor", a.read("env")).Methods("GET")
	r.HandleFunc("/api/sensors", a.read("info")).Methods("GET")

	return r
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) read(what string) http.HandlerFunc {
	topic := telemetry.ReadTopic(what)
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), a.timeout)
		defer cancel()
		reply, err := a.conn.RequestWait(ctx, a.conn.NewMessage(topic, nil, false))
		if err != nil {
			writeJSON(w, http.StatusGatewayTimeout, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, reply.Payload)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
