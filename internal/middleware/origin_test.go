package myMiddleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	myMiddleware "roomhub/internal/middleware"
)

func TestOriginGuard(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })

	tests := []struct {
		name    string
		allowed []string
		origin  string
		want    int
	}{
		{"no origin header", []string{"http://localhost:5000"}, "", http.StatusNoContent},
		{"listed origin", []string{"http://localhost:5000"}, "http://localhost:5000", http.StatusNoContent},
		{"case and path ignored", []string{"http://LOCALHOST:5000/chat"}, "http://localhost:5000", http.StatusNoContent},
		{"unlisted origin", []string{"http://localhost:5000"}, "http://evil.example", http.StatusForbidden},
		{"wildcard", []string{"*"}, "http://anything.example", http.StatusNoContent},
		{"garbage origin", []string{"http://localhost:5000"}, "not a url", http.StatusForbidden},
		{"invalid config entry ignored", []string{"nonsense", ""}, "http://localhost:5000", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := myMiddleware.NewOriginGuard(tt.allowed).Handle(ok)
			req := httptest.NewRequest(http.MethodGet, "/ws", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}
