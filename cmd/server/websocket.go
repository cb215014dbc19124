package main

import (
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/tecu23/analysis-server/pkg/server"
)

// handleWebSocket upgrades the connection and hands it to the hub.
func (app *application) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if app.Config.AllowedOrigin == "" {
				return true
			}
			return r.Header.Get("Origin") == app.Config.AllowedOrigin
		},
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		app.Logger.Error("failed to upgrade to WebSocket", zap.Error(err))
		return
	}

	conn := server.NewConnection(ws, app.Hub, app.Publisher, app.Logger)
	app.Hub.Register(conn)

	app.Logger.Info("WebSocket connection established",
		zap.String("remote_addr", r.RemoteAddr),
		zap.String("connection_id", conn.ID.String()))

	go conn.WritePump()
	go conn.ReadPump()
}
