package handlers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// HandleIdentify gives the caller a player identity
func (ctx *Context) HandleIdentify(w http.ResponseWriter, r *http.Request) {
	r.ParseForm()
	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		http.Error(w, "Name is required", http.StatusBadRequest)
		return
	}
	if len(name) > 32 || strings.ContainsAny(name, " \t\r\n;,") {
		http.Error(w, "Name must be a single word of at most 32 characters", http.StatusBadRequest)
		return
	}

	playerID := uuid.New().String()
	for _, c := range []*http.Cookie{
		{Name: playerCookie, Value: playerID},
		{Name: nameCookie, Value: name},
	} {
		c.Path = "/"
		c.HttpOnly = true
		c.SameSite = http.SameSiteLaxMode
		http.SetCookie(w, c)
	}
	ctx.Logger.Info("identified player", "player", playerID, "name", name)
	writeJSON(w, http.StatusOK, map[string]string{"id": playerID, "name": name})
}
