package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/aaronzipp/wolfden/internal/commands"
	"github.com/aaronzipp/wolfden/internal/sse"
)

const (
	writeWait = 10 * time.Second
	pongWait  = 60 * time.Second
)

type wsInbound struct {
	Text   string `json:"text"`
	Direct bool   `json:"direct"`
}

// HandleWebSocket is a two-way chat connection: inbound frames are
// dispatched as messages, hub events are written back as JSON.
func (ctx *Context) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	playerID, name, err := playerFrom(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	channel := r.PathValue("channel")

	conn, err := ctx.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		ctx.Logger.Warn("websocket upgrade", "player", playerID, "err", err)
		return
	}
	defer conn.Close()

	events, unsubscribe := ctx.Hub.Subscribe(sse.ChannelTopic(channel), sse.UserTopic(playerID))
	defer unsubscribe()

	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(maxMessageBytes)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			var in wsInbound
			if err := conn.ReadJSON(&in); err != nil {
				return
			}
			conn.SetReadDeadline(time.Now().Add(pongWait))
			msg := commands.Message{Actor: playerID, ActorName: name, Text: in.Text, At: time.Now(), Direct: in.Direct}
			if !in.Direct {
				msg.Channel = channel
			}
			if err := ctx.Router.Dispatch(r.Context(), msg); err != nil {
				ctx.Logger.Debug("websocket dispatch", "channel", channel, "player", playerID, "err", err)
			}
		}
	}()

	ping := time.NewTicker(pongWait * 9 / 10)
	defer ping.Stop()
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(sse.Message{Event: sse.EventReady, Topic: sse.ChannelTopic(channel), Data: channel}); err != nil {
		return
	}
	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case msg := <-events:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
