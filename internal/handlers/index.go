// Package handlers exposes the chat bot over HTTP: posting messages,
// streaming channel output and joining by QR code.
package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/aaronzipp/wolfden/internal/commands"
	"github.com/aaronzipp/wolfden/internal/sse"
)

// Dispatcher handles one inbound chat message.
type Dispatcher interface {
	Dispatch(ctx context.Context, msg commands.Message) error
}

// Context holds shared application dependencies
type Context struct {
	Router    Dispatcher
	Hub       *sse.Hub
	Logger    *slog.Logger
	PublicURL string
	Upgrader  websocket.Upgrader
}

// Register adds every route to mux.
func (ctx *Context) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", ctx.HandleIndex)
	mux.HandleFunc("GET /healthz", ctx.HandleHealth)
	mux.HandleFunc("POST /identify", ctx.HandleIdentify)
	mux.HandleFunc("POST /channels/{channel}/messages", ctx.HandlePostMessage)
	mux.HandleFunc("POST /direct", ctx.HandleDirectMessage)
	mux.HandleFunc("GET /channels/{channel}/events", ctx.HandleEvents)
	mux.HandleFunc("GET /channels/{channel}/ws", ctx.HandleWebSocket)
	mux.HandleFunc("GET /channels/{channel}/qr.png", ctx.HandleQR)
	mux.HandleFunc("GET /channels/{channel}/listeners", ctx.HandleListeners)
}

// HandleIndex describes the API
func (ctx *Context) HandleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(`wolfden

POST /identify                       form: name
POST /channels/{channel}/messages    json: {"text": "!in"}
POST /direct                         json: {"text": "!kill 3"}
GET  /channels/{channel}/events      server-sent events
GET  /channels/{channel}/ws          websocket
GET  /channels/{channel}/qr.png      join link
GET  /channels/{channel}/listeners   connected clients
`))
}

// HandleHealth reports liveness
func (ctx *Context) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleListeners reports how many clients follow a channel's stream
func (ctx *Context) HandleListeners(w http.ResponseWriter, r *http.Request) {
	channel := r.PathValue("channel")
	writeJSON(w, http.StatusOK, map[string]any{
		"channel":   channel,
		"listeners": ctx.Hub.Subscribers(sse.ChannelTopic(channel)),
	})
}
