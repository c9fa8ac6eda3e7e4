package server

import (
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"
	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"github.com/opentabletop/tabletop-server-go/internal/config"
	"github.com/opentabletop/tabletop-server-go/internal/game"
)

const qrImageSize = 256

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// NewHTTPServer builds the HTTP listener hosting the websocket endpoint,
// a health check and the session join QR codes.
func NewHTTPServer(cfg config.ServerConfig, registry *game.Registry, hub *Hub, handler *Handler, logger *zap.Logger) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", zap.Error(err))
			return
		}
		client := NewClient(hub, conn)
		hub.Register(client)
		go client.writePump()
		go client.readPump(handler)
	})

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})

	mux.HandleFunc("GET /sessions/{code}/qr", func(w http.ResponseWriter, r *http.Request) {
		code := r.PathValue("code")
		if _, ok := registry.Get(code); !ok {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		joinURL := fmt.Sprintf("%s/join/%s", cfg.PublicURL, code)
		png, err := qrcode.Encode(joinURL, qrcode.Medium, qrImageSize)
		if err != nil {
			logger.Error("qr encoding failed", zap.String("session", code), zap.Error(err))
			http.Error(w, "qr encoding failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(png)
	})

	return &http.Server{
		Addr:    cfg.Address,
		Handler: mux,
	}
}
