package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sgmi/proddash/internal/auth"
	"github.com/sgmi/proddash/internal/chat"
	"github.com/sgmi/proddash/internal/engine/cache"
	"github.com/sgmi/proddash/internal/fetch"
	"github.com/sgmi/proddash/internal/production"
)

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	assert.NoError(t, json.NewEncoder(w).Encode(v))
}

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL+"/api", append([]Option{WithHTTPClient(srv.Client())}, opts...)...)
	require.NoError(t, err)
	return c
}

var weekRange = production.Range{From: "2025-08-06T00:00:00Z", To: "2025-08-12T23:59:59Z"}

func TestNew(t *testing.T) {
	c, err := New("https://plant.example.com/api/")
	require.NoError(t, err)
	assert.Equal(t, "https://plant.example.com/api", c.BaseURL())

	for _, bad := range []string{"", "plant.example.com", "ftp://plant", "://x"} {
		_, err := New(bad)
		assert.Error(t, err, bad)
	}
}

func TestClient_Totals(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api"+PathTotals, r.URL.Path)
		assert.Equal(t, weekRange.From, r.URL.Query().Get("from"))
		assert.Equal(t, weekRange.To, r.URL.Query().Get("to"))
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		writeJSON(t, w, http.StatusOK, map[string]any{"data": []map[string]any{
			{"product_name": "Broa", "total_planned": "120.5"},
			{"product_name": "Pão de queijo", "total_planned": 80},
			{"product_name": "Bolo", "total_planned": "n/a"},
		}})
	}, WithTokenSource(StaticToken("tok-123")))

	got, err := c.Totals(context.Background(), weekRange)
	require.NoError(t, err)
	assert.Equal(t, []production.Total{
		{Product: "Broa", TotalKg: 120.5},
		{Product: "Pão de queijo", TotalKg: 80},
		{Product: "Bolo", TotalKg: 0},
	}, got)
}

func TestClient_Reports(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{"data": []map[string]any{
			{"planned_date": "2025-08-11T00:00:00.000Z", "shift": "MORNING", "product_name": "Broa", "total_batches": "4", "total_produced": 52.5},
			{"date": "2025-08-12", "shift": "EVENING", "product_name": "Bolo", "batches_count": 2, "estimated_kg": "30"},
		}})
	})

	got, err := c.Reports(context.Background(), weekRange)
	require.NoError(t, err)
	assert.Equal(t, []production.Report{
		{Date: "11/08/2025", Shift: production.ShiftMorning, Product: "Broa", Batches: 4, TotalKg: 52.5},
		{Date: "12/08/2025", Shift: production.ShiftNight, Product: "Bolo", Batches: 2, TotalKg: 30},
	}, got)
}

func TestClient_Sessions(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api"+PathSessions, r.URL.Path)
		writeJSON(t, w, http.StatusOK, map[string]any{"data": []map[string]any{
			{"date": "12/08/2025", "shift": "Tarde", "product": "Broa", "batches": 3, "totalKg": "45.2", "duration": 5400},
		}})
	})

	got, err := c.Sessions(context.Background(), weekRange)
	require.NoError(t, err)
	assert.Equal(t, []production.Session{{
		Date: "12/08/2025", Shift: production.ShiftAfternoon, Product: "Broa",
		Batches: 3, TotalKg: 45.2, DurationSeconds: 5400,
	}}, got)
}

func TestClient_FilterEndpoints(t *testing.T) {
	filter := production.Filter{ProductID: "3f1c", StartDate: "2025-08-06", EndDate: "2025-08-12"}

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "3f1c", r.URL.Query().Get("product_id"))
		assert.Equal(t, "2025-08-06T00:00:00Z", r.URL.Query().Get("from"))
		switch r.URL.Path {
		case "/api" + PathDailyTrend:
			writeJSON(t, w, http.StatusOK, map[string]any{"data": []map[string]any{
				{"date": "2025-08-06T00:00:00Z", "total_estimated_kg": "10.5"},
				{"date": "2025-08-07", "total_estimated_kg": 20},
			}})
		case "/api" + PathSummary:
			writeJSON(t, w, http.StatusOK, map[string]any{"data": map[string]any{
				"total_estimated_kg": 251, "total_batches": "10", "total_production_minutes": 136,
			}})
		case "/api" + PathTotals:
			writeJSON(t, w, http.StatusOK, map[string]any{"data": []map[string]any{
				{"product_name": "Broa", "total_produced": 75, "total_planned": 10},
				{"product_name": "Bolo", "total_planned": 25},
				{"product_name": "Sonho", "total_planned": 0.1},
			}})
		case "/api" + PathReports:
			writeJSON(t, w, http.StatusOK, map[string]any{"data": []map[string]any{
				{"date": "2025-08-07T00:00:00Z", "shift": "NIGHT", "product_name": "Broa", "batches_count": 2, "estimated_kg": 24},
			}})
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()

	daily, err := c.DailyTrend(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, []production.DailyPoint{{Date: "2025-08-06", Kg: 10.5}, {Date: "2025-08-07", Kg: 20}}, daily)

	trend, err := c.Trend(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, []production.TrendPoint{{Day: "06/08", Kg: 10.5}, {Day: "07/08", Kg: 20}}, trend)

	summary, err := c.Summary(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, production.Summary{TotalKg: 251, TotalBatches: 10, TotalMinutes: 136}, summary)
	assert.Equal(t, 25.0, summary.Metrics().KgPerBatch)

	share, err := c.Share(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, []production.SharePoint{{Name: "Broa", Percent: 75}, {Name: "Bolo", Percent: 25}}, share)

	rows, err := c.ReportTable(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, []production.TableRow{{Date: "07/08/2025", Shift: production.ShiftNight, Product: "Broa", Batches: 2, ApproxKg: 24}}, rows)
}

func TestClient_AllProductsFilterOmitsProductID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.False(t, r.URL.Query().Has("product_id"))
		writeJSON(t, w, http.StatusOK, map[string]any{"data": []any{}})
	})
	got, err := c.DailyTrend(context.Background(), production.Filter{ProductID: production.AllProducts})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestClient_Products(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		items := []map[string]any{
			{"id": "p1", "name": "Broa", "unit": "KG", "type": "BAKERY", "active": true, "createdAt": "2025-01-02T10:00:00Z"},
			{"id": "p2", "name": "Rosca", "unit": "UN", "type": "BAKERY", "active": false, "createdAt": ""},
		}
		writeJSON(t, w, http.StatusOK, map[string]any{"data": items})
	})
	ctx := context.Background()

	all, err := c.Products(ctx, true)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC), all[0].CreatedAt)
	assert.True(t, all[1].CreatedAt.IsZero())

	active, err := c.ActiveProducts(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Broa", active[0].Name)
}

func TestClient_ProductsQuery(t *testing.T) {
	var queries []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		queries = append(queries, r.URL.RawQuery)
		writeJSON(t, w, http.StatusOK, map[string]any{"data": []any{}})
	})
	_, err := c.Products(context.Background(), false)
	require.NoError(t, err)
	_, err = c.Products(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, []string{"", "include_inactive=true"}, queries)
}

func TestClient_CreatePlan(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]any{
			"product_id": "p1", "planned_quantity": 12.5, "shift": "MORNING", "planned_date": "2025-08-13",
		}, body)
		writeJSON(t, w, http.StatusCreated, map[string]any{"data": map[string]any{"id": "plan-9"}})
	})

	id, err := c.CreatePlan(context.Background(), production.PlanRequest{
		ProductID: "p1", PlannedQuantity: 12.5, Shift: production.ShiftMorning, PlannedDate: "2025-08-13",
	})
	require.NoError(t, err)
	assert.Equal(t, "plan-9", id)

	_, err = c.CreatePlan(context.Background(), production.PlanRequest{ProductID: "p1"})
	var verr *production.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestClient_Errors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
		unavailable bool
	}{
		{name: "server error", status: 500, body: `{"message":"db down"}`, wantMessage: "Erro ao carregar totais de produção", unavailable: true},
		{name: "unauthorized", status: 401, body: `{"error":"jwt expired"}`, wantMessage: MsgSessionExpired},
		{name: "bad request", status: 400, body: `not json`, wantMessage: "Erro ao carregar totais de produção"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})
			_, err := c.Totals(context.Background(), weekRange)
			require.Error(t, err)

			var apiErr *Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, StatusCode(err))
			assert.Equal(t, tt.wantMessage, fetch.Message(err, "fallback"))
			assert.Equal(t, tt.unavailable, apiErr.Unavailable())
			assert.Equal(t, tt.status == 401, IsUnauthorized(err))
		})
	}
}

func TestClient_ServerMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, http.StatusUnprocessableEntity, map[string]string{"message": "planned_date in the past"})
	})
	_, err := c.Summary(context.Background(), production.Filter{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 422: planned_date in the past")
}

func TestClient_MissingEnvelope(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, http.StatusOK, []string{"raw"})
	})
	_, err := c.Sessions(context.Background(), weekRange)
	require.Error(t, err)
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(url)
	require.NoError(t, err)
	_, err = c.Sessions(context.Background(), weekRange)
	require.Error(t, err)
	assert.True(t, auth.Unavailable(err))
	assert.Equal(t, "Erro ao carregar sessões de produção", fetch.Message(err, ""))
}

func TestClient_Cache(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.Method == http.MethodPost {
			writeJSON(t, w, http.StatusCreated, map[string]any{"data": map[string]string{"id": "x"}})
			return
		}
		writeJSON(t, w, http.StatusOK, map[string]any{"data": []map[string]any{{"product_name": "Broa", "total_planned": 1}}})
	}, withTestCache(t))
	ctx := context.Background()

	first, err := c.Totals(ctx, weekRange)
	require.NoError(t, err)
	second, err := c.Totals(ctx, weekRange)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), hits.Load(), "second read served from cache")

	_, err = c.Totals(ctx, production.Range{From: "2025-08-01T00:00:00Z"})
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load(), "different query misses")

	_, err = c.CreatePlan(ctx, production.PlanRequest{ProductID: "p1", PlannedQuantity: 1, Shift: production.ShiftNight, PlannedDate: "2025-08-13"})
	require.NoError(t, err)
	_, err = c.Totals(ctx, weekRange)
	require.NoError(t, err)
	assert.Equal(t, int32(4), hits.Load(), "creating a plan drops cached reads")
}

func withTestCache(t *testing.T) Option {
	t.Helper()
	store, err := cache.NewFileStore(cache.Options{Directory: t.TempDir(), Enabled: true, TTL: time.Minute})
	require.NoError(t, err)
	return WithCache(store, "ana")
}

func TestClient_VersionWarning(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(VersionHeader, "2.1.0")
		writeJSON(t, w, http.StatusOK, map[string]any{"data": []any{}})
	}, WithLogger(logger))

	for range 3 {
		_, err := c.Sessions(context.Background(), weekRange)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, strings.Count(buf.String(), "not supported"), "warned once")
}

func TestClient_Login(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var creds production.Credentials
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		if creds.Password != "certa" {
			writeJSON(t, w, http.StatusUnauthorized, map[string]string{"message": "bad credentials"})
			return
		}
		writeJSON(t, w, http.StatusOK, map[string]any{"data": map[string]any{
			"user":  map[string]string{"id": "u1", "username": creds.Username, "role": "director"},
			"token": map[string]any{"accessToken": "a", "refreshToken": "r", "expiresAt": 1754994600000},
		}})
	})
	ctx := context.Background()

	sess, err := c.Login(ctx, production.Credentials{Username: "diretora", Password: "certa"})
	require.NoError(t, err)
	assert.Equal(t, auth.RoleDirector, sess.User.Role)
	assert.Equal(t, time.UnixMilli(1754994600000), sess.Token.ExpiresAt)

	_, err = c.Login(ctx, production.Credentials{Username: "diretora", Password: "errada"})
	require.Error(t, err)
	assert.Equal(t, MsgInvalidCredentials, fetch.Message(err, ""))
	assert.False(t, auth.Unavailable(err))
}

func TestClient_Refresh(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api"+PathRefresh, r.URL.Path)
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		writeJSON(t, w, http.StatusOK, map[string]any{"data": map[string]any{
			"accessToken": "new-" + body["refresh_token"], "refreshToken": "r2", "expiresAt": 1754994600000,
		}})
	})
	tok, err := c.Refresh(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, "new-r1", tok.AccessToken)
	assert.Equal(t, "r2", tok.RefreshToken)
}

func TestClient_Reply(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api"+PathChat, r.URL.Path)
		var body struct {
			Messages []chat.Turn `json:"messages"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if !assert.Len(t, body.Messages, 1) {
			return
		}
		writeJSON(t, w, http.StatusOK, map[string]string{"role": "assistant", "content": "Olá, " + body.Messages[0].Content})
	})

	got, err := c.Reply(context.Background(), []chat.Turn{{Role: chat.RoleUser, Content: "diretor"}})
	require.NoError(t, err)
	assert.Equal(t, "Olá, diretor", got)
}

func TestClient_ReplyFailureFallsBack(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	fb := chat.NewFallbackSender(c, zerolog.Nop())
	fb.Delay = time.Millisecond

	got, err := fb.Reply(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, chat.MockReply, got)
}

func TestNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{`12.5`, 12.5},
		{`"7"`, 7},
		{`" 3.25 "`, 3.25},
		{`null`, 0},
		{`"abc"`, 0},
		{`true`, 0},
	}
	for _, tt := range tests {
		var n number
		require.NoError(t, json.Unmarshal([]byte(tt.in), &n), tt.in)
		assert.InDelta(t, tt.want, n.Float(), 1e-9, tt.in)
	}
}

func TestError(t *testing.T) {
	base := &HTTPError{StatusCode: 503}
	err := wrap("get products", "Erro ao carregar produtos", base)
	assert.Equal(t, "get products: HTTP 503", err.Error())
	assert.True(t, errors.Is(err, base))
	assert.Nil(t, wrap("x", "y", nil))

	canceled := &Error{Op: "x", Err: context.Canceled}
	assert.False(t, canceled.Unavailable())
}
