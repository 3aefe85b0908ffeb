package handlers

import (
	"net/http"
	"net/url"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

const qrSize = 256

// HandleQR renders a QR code linking to the channel's event stream, so
// players at a table can follow the game on their phones.
func (ctx *Context) HandleQR(w http.ResponseWriter, r *http.Request) {
	channel := r.PathValue("channel")
	link := strings.TrimRight(ctx.PublicURL, "/") + "/channels/" + url.PathEscape(channel) + "/events"
	png, err := qrcode.Encode(link, qrcode.Medium, qrSize)
	if err != nil {
		ctx.Logger.Error("qr encode", "channel", channel, "err", err)
		http.Error(w, "Could not render QR code", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(png)
}
