package peers

import (
	"encoding/json"
	"net/http"
)

type Handler struct {
	directory *Directory
}

func NewHandler(d *Directory) *Handler {
	return &Handler{directory: d}
}

// ListServers answers with the bare JSON array of server URLs.
func (h *Handler) ListServers(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.directory.Servers(r.Context()))
}
