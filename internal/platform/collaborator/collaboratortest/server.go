// Package collaboratortest runs an in-process fake of the user, order, cart
// and notification services.
package collaboratortest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

type Call struct {
	Method string
	Path   string
	Body   map[string]any
}

// Server records every call. Handlers answer 200 unless a status was forced
// with Fail for the "METHOD /prefix" route.
type Server struct {
	*httptest.Server

	mu    sync.Mutex
	calls []Call
	fail  map[string]int
	users map[string]string
}

func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{fail: map[string]int{}, users: map[string]string{}}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// Fail forces status for route, e.g. Fail("PATCH /orders", 503). Status 0 clears it.
func (s *Server) Fail(route string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.fail, route)
		return
	}
	s.fail[route] = status
}

// SetUser registers the raw JSON returned for GET /users/{id}.
func (s *Server) SetUser(id, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[id] = body
}

func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// Count returns the number of calls whose "METHOD path" starts with route.
func (s *Server) Count(route string) int {
	n := 0
	for _, c := range s.Calls() {
		if strings.HasPrefix(c.Method+" "+c.Path, route) {
			n++
		}
	}
	return n
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	call := Call{Method: r.Method, Path: r.URL.Path}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &call.Body)
	}

	s.mu.Lock()
	s.calls = append(s.calls, call)
	var forced int
	for route, status := range s.fail {
		if strings.HasPrefix(r.Method+" "+r.URL.Path, route) {
			forced = status
		}
	}
	user, hasUser := s.users[strings.TrimPrefix(r.URL.Path, "/users/")]
	s.mu.Unlock()

	if forced != 0 {
		http.Error(w, "forced failure", forced)
		return
	}
	if r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/users/") {
		if !hasUser {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, user)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, `{"success":true}`)
}
