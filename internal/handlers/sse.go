package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/aaronzipp/wolfden/internal/sse"
)

// HandleEvents streams a channel's posts, plus the caller's private
// messages when they are identified.
func (ctx *Context) HandleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}
	channel := r.PathValue("channel")
	topics := []string{sse.ChannelTopic(channel)}
	playerID, _, err := playerFrom(r)
	if err == nil {
		topics = append(topics, sse.UserTopic(playerID))
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable buffering in nginx/proxies

	events, unsubscribe := ctx.Hub.Subscribe(topics...)
	defer unsubscribe()
	ctx.Logger.Debug("sse: client connected", "channel", channel, "player", playerID)

	writeEvent(w, sse.EventReady, channel)
	flusher.Flush()

	reqCtx := r.Context()
	for {
		select {
		case <-reqCtx.Done():
			ctx.Logger.Debug("sse: client disconnected", "channel", channel, "player", playerID)
			return
		case msg := <-events:
			writeEvent(w, msg.Event, msg.Data)
			flusher.Flush()
		}
	}
}

// writeEvent frames data as one event; each line gets its own data field.
func writeEvent(w http.ResponseWriter, event, data string) {
	fmt.Fprintf(w, "event: %s\n", event)
	for _, line := range strings.Split(data, "\n") {
		fmt.Fprintf(w, "data: %s\n", line)
	}
	fmt.Fprint(w, "\n")
}
