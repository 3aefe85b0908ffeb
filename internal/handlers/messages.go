package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/aaronzipp/wolfden/internal/commands"
)

const maxMessageBytes = 4 << 10

type messageRequest struct {
	Text string `json:"text"`
}

// HandlePostMessage posts a chat line into a channel
func (ctx *Context) HandlePostMessage(w http.ResponseWriter, r *http.Request) {
	ctx.dispatch(w, r, r.PathValue("channel"), false)
}

// HandleDirectMessage sends a chat line privately to the bot
func (ctx *Context) HandleDirectMessage(w http.ResponseWriter, r *http.Request) {
	ctx.dispatch(w, r, "", true)
}

func (ctx *Context) dispatch(w http.ResponseWriter, r *http.Request, channel string, direct bool) {
	playerID, name, err := playerFrom(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if !direct && strings.TrimSpace(channel) == "" {
		http.Error(w, "Channel is required", http.StatusBadRequest)
		return
	}
	var req messageRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxMessageBytes)).Decode(&req); err != nil {
		http.Error(w, "Invalid message", http.StatusBadRequest)
		return
	}

	err = ctx.Router.Dispatch(r.Context(), commands.Message{
		Actor:     playerID,
		ActorName: name,
		Channel:   channel,
		Text:      req.Text,
		At:        time.Now(),
		Direct:    direct,
	})
	status, res := statusFor(err)
	if status == http.StatusInternalServerError {
		ctx.Logger.Error("dispatch failed", "channel", channel, "player", playerID, "err", err)
	}
	writeJSON(w, status, res)
}
