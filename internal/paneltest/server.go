// Package paneltest runs an in-memory MASQUE admin API for tests.
package paneltest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"
)

// CookieName is the session cookie the server sets on login.
const CookieName = "masque_admin_sid"

// Default credentials accepted by a new Server.
const (
	Username = "admin"
	Password = "admin"
)

type failure struct {
	status int
	body   string
}

type record struct {
	id        string
	config    string
	createdAt time.Time
}

// Server is a fake control plane backed by httptest.
type Server struct {
	mu        sync.Mutex
	hash      []byte
	sessions  map[string]string // sid -> username
	clients   []record
	online    map[string]bool
	caExists  bool
	serverCfg map[string]any
	failures  map[string]failure
	calls     map[string]int
	noID      bool
	seq       int

	srv *httptest.Server
}

// New starts a server and stops it when the test ends.
func New(t testing.TB) *Server {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	s := &Server{
		hash:      hash,
		sessions:  make(map[string]string),
		online:    make(map[string]bool),
		caExists:  true,
		serverCfg: map[string]any{"server_addr": "", "server_name": "", "mtu": 1413},
		failures:  make(map[string]failure),
		calls:     make(map[string]int),
	}
	s.srv = httptest.NewServer(s.router())
	t.Cleanup(s.srv.Close)
	return s
}

// URL is the server's base URL.
func (s *Server) URL() string { return s.srv.URL }

// Close stops the server; later requests fail at the network level.
func (s *Server) Close() { s.srv.Close() }

// Calls returns how many requests reached path (e.g. "/api/clients").
func (s *Server) Calls(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[path]
}

// Fail makes every request to path answer status with body until Clear.
func (s *Server) Fail(path string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[path] = failure{status: status, body: body}
}

// Clear removes a failure installed by Fail.
func (s *Server) Clear(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, path)
}

// ExpireSessions forgets every session, as a server restart would.
func (s *Server) ExpireSessions() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = make(map[string]string)
}

// SetCA sets whether the CA exists.
func (s *Server) SetCA(exists bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.caExists = exists
}

// OmitCreatedID makes gen_client answer 200 without a client_id.
func (s *Server) OmitCreatedID(omit bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.noID = omit
}

// AddClient inserts a client directly, as another operator would.
func (s *Server) AddClient(id string, online bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients = append(s.clients, record{id: id, createdAt: time.Now().UTC(), config: "# " + id})
	s.online[id] = online
}

// SetOnline flips a client's connection state.
func (s *Server) SetOnline(id string, online bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.online[id] = online
}

// ClientIDs lists the ids the server currently holds, newest first.
func (s *Server) ClientIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.clients))
	for _, c := range s.sorted() {
		ids = append(ids, c.id)
	}
	return ids
}

func (s *Server) router() http.Handler {
	r := mux.NewRouter()
	r.Use(s.count, s.inject)
	r.HandleFunc("/api/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/api/logout", s.handleLogout).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/check", s.handleAuthCheck).Methods(http.MethodGet)
	r.HandleFunc("/api/clients", s.requireAuth(s.handleListClients)).Methods(http.MethodGet)
	r.HandleFunc("/api/gen_client", s.requireAuth(s.handleGenClient)).Methods(http.MethodGet)
	r.HandleFunc("/api/download_client", s.requireAuth(s.handleDownload)).Methods(http.MethodGet)
	r.HandleFunc("/api/delete_client", s.requireAuth(s.handleDelete)).Methods(http.MethodGet)
	r.HandleFunc("/api/ca_status", s.requireAuth(s.handleCAStatus)).Methods(http.MethodGet)
	r.HandleFunc("/api/gen_ca_server", s.requireAuth(s.handleGenCA)).Methods(http.MethodPost)
	r.HandleFunc("/api/server_config", s.requireAuth(s.handleGetServerConfig)).Methods(http.MethodGet)
	r.HandleFunc("/api/server_config", s.requireAuth(s.handleSetServerConfig)).Methods(http.MethodPost)
	return r
}

func (s *Server) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls[r.URL.Path]++
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) inject(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		f, ok := s.failures[r.URL.Path]
		s.mu.Unlock()
		if ok {
			if strings.HasPrefix(f.body, "{") {
				w.Header().Set("Content-Type", "application/json")
			}
			w.WriteHeader(f.status)
			_, _ = w.Write([]byte(f.body))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := s.user(r); !ok {
			http.Error(w, "not logged in or session expired", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (s *Server) user(r *http.Request) (string, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return "", false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	name, ok := s.sessions[c.Value]
	return name, ok
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if req.Username != Username || bcrypt.CompareHashAndPassword(s.hash, []byte(req.Password)) != nil {
		http.Error(w, "invalid username or password", http.StatusUnauthorized)
		return
	}
	sid := uuid.NewString()
	s.mu.Lock()
	s.sessions[sid] = req.Username
	s.mu.Unlock()
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    sid,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	writeJSON(w, map[string]bool{"success": true})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(CookieName); err == nil {
		s.mu.Lock()
		delete(s.sessions, c.Value)
		s.mu.Unlock()
	}
	http.SetCookie(w, &http.Cookie{Name: CookieName, Value: "", Path: "/", MaxAge: -1})
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleAuthCheck(w http.ResponseWriter, r *http.Request) {
	name, ok := s.user(r)
	if !ok {
		writeJSON(w, map[string]any{"loggedIn": false})
		return
	}
	writeJSON(w, map[string]any{"loggedIn": true, "username": name})
}

func (s *Server) sorted() []record {
	out := append([]record(nil), s.clients...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].createdAt.After(out[j].createdAt) })
	return out
}

func (s *Server) handleListClients(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	list := make([]map[string]any, 0, len(s.clients))
	for _, c := range s.sorted() {
		list = append(list, map[string]any{
			"client_id":  c.id,
			"created_at": c.createdAt.Format("2006-01-02 15:04:05"),
			"online":     s.online[c.id],
		})
	}
	s.mu.Unlock()
	writeJSON(w, list)
}

func (s *Server) handleGenClient(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.caExists {
		http.Error(w, "CA certificate missing, generate the CA first", http.StatusInternalServerError)
		return
	}
	if s.noID {
		writeJSON(w, map[string]string{})
		return
	}
	s.seq++
	id := fmt.Sprintf("client-%08d", s.seq)
	cfg := fmt.Sprintf("server_addr = %q\nserver_name = %q\nmtu = %s\ntun_name = %q\n",
		q.Get("server_addr"), q.Get("server_name"), q.Get("mtu"), q.Get("tun_name"))
	s.clients = append(s.clients, record{id: id, config: cfg, createdAt: time.Now().UTC()})
	writeJSON(w, map[string]string{"client_id": id})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "missing id", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.clients {
		if c.id == id {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.Header().Set("Content-Disposition", "attachment; filename=config.client.toml")
			_, _ = w.Write([]byte(c.config))
			return
		}
	}
	http.Error(w, "client not found", http.StatusNotFound)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "missing id", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.clients[:0]
	for _, c := range s.clients {
		if c.id != id {
			kept = append(kept, c)
		}
	}
	s.clients = kept
	delete(s.online, id)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleCAStatus(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	exists := s.caExists
	s.mu.Unlock()
	writeJSON(w, map[string]bool{"exists": exists})
}

func (s *Server) handleGenCA(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	s.caExists = true
	s.mu.Unlock()
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleGetServerConfig(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, s.serverCfg)
}

func (s *Server) handleSetServerConfig(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ServerAddr string `json:"server_addr"`
		ServerName string `json:"server_name"`
		MTU        int    `json:"mtu"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if req.MTU < 576 || req.MTU > 9000 {
		http.Error(w, "invalid MTU", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	s.serverCfg = map[string]any{"server_addr": req.ServerAddr, "server_name": req.ServerName, "mtu": req.MTU}
	s.mu.Unlock()
	_, _ = w.Write([]byte("ok"))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
