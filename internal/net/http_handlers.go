package net

import (
	"encoding/json"
	"errors"
	"log"
	nethttp "net/http"
	"time"

	"github.com/gorilla/websocket"

	server "duskhollow/server"
	"duskhollow/server/internal/net/ws"
	"duskhollow/server/internal/storage"
)

type HTTPHandlerConfig struct {
	Logger *log.Logger
	// AllowAnyOrigin disables the origin check on the websocket upgrade.
	// Development only.
	AllowAnyOrigin bool
}

// NewHTTPHandler builds the full HTTP surface: health, diagnostics, the item
// catalog export, account registration, and the websocket upgrade.
func NewHTTPHandler(hub *server.Hub, cfg HTTPHandlerConfig) nethttp.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
	if cfg.AllowAnyOrigin {
		upgrader.CheckOrigin = func(*nethttp.Request) bool { return true }
	}
	sessions := ws.NewHandler(hub, logger)

	mux := nethttp.NewServeMux()

	mux.HandleFunc("/health", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("/diagnostics", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		payload := struct {
			Status     string                     `json:"status"`
			ServerTime int64                      `json:"serverTime"`
			Hub        server.DiagnosticsSnapshot `json:"hub"`
		}{
			Status:     "ok",
			ServerTime: time.Now().UnixMilli(),
			Hub:        hub.Diagnostics(),
		}
		writeJSON(w, payload, logger)
	})

	mux.HandleFunc("/catalog", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		export, err := server.ExportCatalog()
		if err != nil {
			logger.Printf("failed to export catalog: %v", err)
			httpError(w, "failed to encode", nethttp.StatusInternalServerError)
			return
		}
		writeJSON(w, export, logger)
	})

	mux.HandleFunc("/register", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodPost {
			httpError(w, "method not allowed", nethttp.StatusMethodNotAllowed)
			return
		}
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
			Name     string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, "malformed request", nethttp.StatusBadRequest)
			return
		}
		record, err := hub.Register(r.Context(), req.Username, req.Password, req.Name)
		if err != nil {
			if errors.Is(err, storage.ErrDuplicate) {
				httpError(w, "username taken", nethttp.StatusConflict)
				return
			}
			httpError(w, "registration failed", nethttp.StatusBadRequest)
			return
		}
		writeJSON(w, struct {
			PlayerID string `json:"playerId"`
			Name     string `json:"name"`
		}{PlayerID: record.ID, Name: record.Name}, logger)
	})

	mux.HandleFunc("/ws", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Printf("websocket upgrade failed: %v", err)
			return
		}
		go sessions.Serve(conn)
	})

	return mux
}

func writeJSON(w nethttp.ResponseWriter, payload any, logger *log.Logger) {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Printf("failed to encode response: %v", err)
		httpError(w, "failed to encode", nethttp.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func httpError(w nethttp.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(struct {
		Error string `json:"error"`
	}{Error: message})
}
