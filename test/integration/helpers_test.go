//go:build integration

package integration_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/amtp-labs/amtp-cli/internal/config"
)

// testEnv holds an isolated config file and a running in-memory gateway.
type testEnv struct {
	HomeDir string
	Store   *config.Store
	Gateway *gateway
}

// setupTestEnv sandboxes HOME and every AMTP_* override, then starts a
// gateway for the test.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, f := range config.Fields {
		t.Setenv(f.EnvVar(), "")
	}

	gw := newGateway("gw.test", "admin-secret")
	srv := httptest.NewServer(gw)
	t.Cleanup(srv.Close)
	gw.url = srv.URL

	return &testEnv{
		HomeDir: home,
		Store:   config.NewStore(filepath.Join(home, ".amtp-config.json")),
		Gateway: gw,
	}
}

type storedMessage struct {
	ID        string          `json:"message_id"`
	Sender    string          `json:"sender"`
	Subject   string          `json:"subject,omitempty"`
	Timestamp string          `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// gateway is a minimal pull-mode AMTP gateway: agent registry, inboxes and
// delivery status, all in memory.
type gateway struct {
	domain   string
	adminKey string
	url      string

	mu      sync.Mutex
	seq     int
	keys    map[string]string // address -> api key
	inboxes map[string][]storedMessage
	status  map[string]string
}

func newGateway(domain, adminKey string) *gateway {
	return &gateway{
		domain:   domain,
		adminKey: adminKey,
		keys:     map[string]string{},
		inboxes:  map[string][]storedMessage{},
		status:   map[string]string{},
	}
}

func (g *gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	defer g.mu.Unlock()

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/v1/admin/agents":
		g.register(w, r)
	case r.Method == http.MethodDelete && len(parts) == 4 && parts[1] == "admin":
		if r.Header.Get("X-Admin-Key") != g.adminKey {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "bad admin key")
			return
		}
		addr := parts[3] + "@" + g.domain
		if _, ok := g.keys[addr]; !ok {
			writeError(w, http.StatusNotFound, "AGENT_NOT_FOUND", "no such agent")
			return
		}
		delete(g.keys, addr)
		w.WriteHeader(http.StatusNoContent)
	case r.Method == http.MethodPost && r.URL.Path == "/v1/messages":
		g.send(w, r)
	case r.Method == http.MethodGet && len(parts) == 3 && parts[1] == "inbox":
		if !g.authorized(r, parts[2]) {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "bad api key")
			return
		}
		msgs := g.inboxes[parts[2]]
		writeJSON(w, http.StatusOK, map[string]any{"recipient": parts[2], "messages": msgs, "count": len(msgs)})
	case r.Method == http.MethodDelete && len(parts) == 4 && parts[1] == "inbox":
		if !g.authorized(r, parts[2]) {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "bad api key")
			return
		}
		g.ack(w, parts[2], parts[3])
	case r.Method == http.MethodGet && len(parts) == 4 && parts[1] == "messages" && parts[3] == "status":
		st, ok := g.status[parts[2]]
		if !ok {
			writeError(w, http.StatusNotFound, "MESSAGE_NOT_FOUND", "unknown message")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"message_id": parts[2], "status": st})
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/v1/discovery/agents"):
		agents := []map[string]any{}
		for addr := range g.keys {
			agents = append(agents, map[string]any{"address": addr, "delivery_mode": "pull"})
		}
		writeJSON(w, http.StatusOK, map[string]any{"agents": agents})
	default:
		writeError(w, http.StatusNotFound, "NOT_FOUND", r.URL.Path)
	}
}

func (g *gateway) register(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("X-Admin-Key") != g.adminKey {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "bad admin key")
		return
	}
	var req struct {
		Address      string `json:"address"`
		DeliveryMode string `json:"delivery_mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	addr := req.Address + "@" + g.domain
	if _, ok := g.keys[addr]; ok {
		writeError(w, http.StatusConflict, "AGENT_EXISTS", "agent already registered")
		return
	}
	g.seq++
	key := "key-" + req.Address
	g.keys[addr] = key
	writeJSON(w, http.StatusCreated, map[string]any{"address": addr, "delivery_mode": req.DeliveryMode, "api_key": key})
}

func (g *gateway) send(w http.ResponseWriter, r *http.Request) {
	var msg struct {
		Sender     string          `json:"sender"`
		Recipients []string        `json:"recipients"`
		Subject    string          `json:"subject"`
		Payload    json.RawMessage `json:"payload"`
	}
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	g.seq++
	id := fmt.Sprintf("msg-%d", g.seq)
	recipients := []map[string]string{}
	for _, rcpt := range msg.Recipients {
		g.inboxes[rcpt] = append(g.inboxes[rcpt], storedMessage{
			ID:        id,
			Sender:    msg.Sender,
			Subject:   msg.Subject,
			Timestamp: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC).Format(time.RFC3339),
			Payload:   msg.Payload,
		})
		recipients = append(recipients, map[string]string{"address": rcpt, "status": "pending"})
	}
	g.status[id] = "queued"
	writeJSON(w, http.StatusAccepted, map[string]any{"message_id": id, "status": "queued", "recipients": recipients})
}

func (g *gateway) ack(w http.ResponseWriter, addr, id string) {
	msgs := g.inboxes[addr]
	for i, m := range msgs {
		if m.ID == id {
			g.inboxes[addr] = append(msgs[:i], msgs[i+1:]...)
			g.status[id] = "delivered"
			writeJSON(w, http.StatusOK, map[string]any{"acknowledged": true})
			return
		}
	}
	writeError(w, http.StatusNotFound, "MESSAGE_NOT_FOUND", "not in inbox")
}

func (g *gateway) authorized(r *http.Request, addr string) bool {
	key, ok := g.keys[addr]
	return ok && r.Header.Get("Authorization") == "Bearer "+key
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, map[string]any{"error": map[string]string{"code": code, "message": msg}})
}
