package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"

	"github.com/sgmi/proddash/internal/config"
	"github.com/sgmi/proddash/internal/production"
)

// fakeBackend serves the production API from memory.
type fakeBackend struct {
	t   *testing.T
	srv *httptest.Server

	mu        sync.Mutex
	plans     []production.PlanRequest
	failPlans map[string]bool
	down      bool
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	b := &fakeBackend{t: t, failPlans: map[string]bool{}}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/products", b.products)
	mux.HandleFunc("/api/production/sessions", b.sessions)
	mux.HandleFunc("/api/director/production-totals", b.totals)
	mux.HandleFunc("/api/director/reports/production", b.reports)
	mux.HandleFunc("/api/director/production-plans", b.createPlan)
	mux.HandleFunc("/api/auth/login", b.login)
	mux.HandleFunc("/api/chat", b.chat)
	b.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		down := b.down
		b.mu.Unlock()
		if down {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(b.srv.Close)
	return b
}

func (b *fakeBackend) url() string { return b.srv.URL + "/api" }

func (b *fakeBackend) setDown(down bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.down = down
}

func (b *fakeBackend) createdPlans() []production.PlanRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]production.PlanRequest(nil), b.plans...)
}

func (b *fakeBackend) write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	assert.NoError(b.t, json.NewEncoder(w).Encode(v))
}

func (b *fakeBackend) products(w http.ResponseWriter, r *http.Request) {
	products := []map[string]any{
		{"id": "p1", "name": "Pão Francês", "unit": "kg", "active": true},
		{"id": "p2", "name": "Broa", "unit": "kg", "active": true},
		{"id": "p3", "name": "Bolo de Milho", "unit": "kg", "active": false},
	}
	if r.URL.Query().Get("include_inactive") != "true" {
		products = products[:2]
	}
	b.write(w, http.StatusOK, map[string]any{"data": products})
}

func (b *fakeBackend) sessions(w http.ResponseWriter, _ *http.Request) {
	b.write(w, http.StatusOK, map[string]any{"data": []map[string]any{
		{"date": "11/08/2025", "shift": "Manhã", "product": "Pão Francês", "batches": 4, "totalKg": 60, "duration": 3600},
		{"date": "12/08/2025", "shift": "Tarde", "product": "Broa", "batches": 2, "totalKg": "30.5", "duration": 1800},
	}})
}

func (b *fakeBackend) totals(w http.ResponseWriter, _ *http.Request) {
	b.write(w, http.StatusOK, map[string]any{"data": []map[string]any{
		{"product_name": "Pão Francês", "total_planned": 120},
		{"product_name": "Broa", "total_planned": "45.5"},
	}})
}

func (b *fakeBackend) reports(w http.ResponseWriter, _ *http.Request) {
	b.write(w, http.StatusOK, map[string]any{"data": []map[string]any{
		{"planned_date": "2025-08-11", "shift": "MORNING", "product_name": "Pão Francês", "total_batches": 4, "total_produced": 60},
		{"planned_date": "2025-08-12", "shift": "AFTERNOON", "product_name": "Broa", "total_batches": 2, "total_produced": 30},
	}})
}

func (b *fakeBackend) createPlan(w http.ResponseWriter, r *http.Request) {
	var req production.PlanRequest
	if !assert.NoError(b.t, json.NewDecoder(r.Body).Decode(&req)) {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	b.mu.Lock()
	fail := b.failPlans[req.PlannedDate]
	if !fail {
		b.plans = append(b.plans, req)
	}
	n := len(b.plans)
	b.mu.Unlock()
	if fail {
		b.write(w, http.StatusUnprocessableEntity, map[string]string{"message": "Plano duplicado"})
		return
	}
	b.write(w, http.StatusCreated, map[string]any{"data": map[string]any{"id": fmt.Sprintf("plan-%d", n)}})
}

func (b *fakeBackend) login(w http.ResponseWriter, r *http.Request) {
	var creds production.Credentials
	assert.NoError(b.t, json.NewDecoder(r.Body).Decode(&creds))
	if creds.Password != "segredo" {
		b.write(w, http.StatusUnauthorized, map[string]string{"message": "invalid"})
		return
	}
	b.write(w, http.StatusOK, map[string]any{"data": map[string]any{
		"user":  map[string]string{"id": "u1", "username": creds.Username, "role": "director"},
		"token": map[string]any{"accessToken": "acc", "refreshToken": "ref", "expiresAt": 4102444800000},
	}})
}

func (b *fakeBackend) chat(w http.ResponseWriter, _ *http.Request) {
	b.write(w, http.StatusOK, map[string]string{"role": "assistant", "content": "Produzimos 90 kg."})
}

// useTestConfig points the global config at a temp home and baseURL, with
// the response cache off. It returns the home directory.
func useTestConfig(t *testing.T, baseURL string) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv(config.EnvConfigDir, home)
	cfg := config.New()
	cfg.API.BaseURL = baseURL
	cfg.Cache.Enabled = false
	cfg.Dashboard.PageSize = 10
	config.SetGlobalConfig(cfg)
	logger = zerolog.Nop()
	t.Cleanup(func() { config.SetGlobalConfig(nil) })
	return home
}

// runCmd executes cmd with args and returns its combined output.
func runCmd(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetIn(&bytes.Buffer{})
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(t.Context())
	return buf.String(), err
}
