// Package web serves the login and chat pages. The pages only talk to the
// JSON API and the websocket; no chat state lives here.
package web

import (
	"embed"
	"html/template"
	"log"
	"net/http"
)

//go:embed templates/*.html
var files embed.FS

var pages = template.Must(template.ParseFS(files, "templates/*.html"))

// NicknameChecker is satisfied by *presence.Registry.
type NicknameChecker interface {
	IsNicknameTaken(name string) bool
}

type Handler struct {
	names NicknameChecker
}

func NewHandler(names NicknameChecker) *Handler {
	return &Handler{names: names}
}

func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	h.render(w, "login.html", nil)
}

// Chat sends the browser back to /login when the nickname is missing or
// already claimed.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	nickname := r.URL.Query().Get("nickname")
	if nickname == "" || h.names.IsNicknameTaken(nickname) {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}
	h.render(w, "chat.html", struct{ Nickname string }{nickname})
}

func (h *Handler) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pages.ExecuteTemplate(w, name, data); err != nil {
		log.Printf("Error rendering %s: %v", name, err)
	}
}
