package myMiddleware

import (
	"log"
	"net/http"
	"net/url"
	"strings"
)

// OriginGuard only lets browser requests through from allowed origins.
// Requests with no Origin header (non-browser clients) pass.
type OriginGuard struct {
	allowAll bool
	allowed  map[string]struct{}
}

// NewOriginGuard accepts origins like "http://localhost:5000"; "*" allows any.
func NewOriginGuard(origins []string) *OriginGuard {
	g := &OriginGuard{allowed: make(map[string]struct{})}
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o == "" {
			continue
		}
		if o == "*" {
			g.allowAll = true
			continue
		}
		normalized, ok := normalizeOrigin(o)
		if !ok {
			log.Printf("Ignoring invalid origin in configuration: %q", o)
			continue
		}
		g.allowed[normalized] = struct{}{}
	}
	return g
}

func normalizeOrigin(origin string) (string, bool) {
	parsed, err := url.Parse(origin)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", false
	}
	return strings.ToLower(parsed.Scheme) + "://" + strings.ToLower(parsed.Host), true
}

func (g *OriginGuard) Allowed(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || g.allowAll {
		return true
	}
	normalized, ok := normalizeOrigin(origin)
	if !ok {
		return false
	}
	_, ok = g.allowed[normalized]
	return ok
}

func (g *OriginGuard) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !g.Allowed(r) {
			log.Printf("Blocked request from disallowed origin: %q", r.Header.Get("Origin"))
			http.Error(w, "Origin not allowed", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
