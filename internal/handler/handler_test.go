package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pricebet/internal/market"
	"pricebet/internal/store/memstore"
)

type fixedSeq struct {
	seq uint64
	ts  uint64
}

func (s *fixedSeq) Sequence() uint64  { return s.seq }
func (s *fixedSeq) Timestamp() uint64 { return s.ts }

func newTestRouter(t *testing.T) (*gin.Engine, *fixedSeq) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	seq := &fixedSeq{seq: 100, ts: 1000}
	eng := market.NewEngine(market.Options{
		Store:  memstore.New(),
		Seq:    seq,
		Logger: zap.NewNop(),
	})
	r := gin.New()
	r.Use(RequirePrincipal())
	(&AdminHandler{Engine: eng}).Register(r)
	(&BetHandler{Engine: eng}).Register(r)
	(&OracleHandler{Engine: eng}).Register(r)
	(&UserHandler{Engine: eng}).Register(r)
	(&HealthHandler{}).Register(r)
	return r, seq
}

func doJSON(t *testing.T, r *gin.Engine, method, path, principal string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if principal != "" {
		req.Header.Set(PrincipalHeader, principal)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestMutationsRequirePrincipal(t *testing.T) {
	r, _ := newTestRouter(t)
	w := doJSON(t, r, http.MethodPost, "/api/v1/admin/windows", "", gin.H{"bet_window": 3, "run_window": 6})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestHealthOpenWithoutPrincipal(t *testing.T) {
	r, _ := newTestRouter(t)
	w := doJSON(t, r, http.MethodGet, "/healthz", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("healthz = %d", w.Code)
	}
	w = doJSON(t, r, http.MethodGet, "/readyz", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("readyz = %d", w.Code)
	}
}

func TestFullRoundOverHTTP(t *testing.T) {
	r, seq := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/admin/initialize", "admin",
		gin.H{"admin": "admin", "oracle": "oracle"})
	if w.Code != http.StatusOK {
		t.Fatalf("initialize = %d: %s", w.Code, w.Body)
	}
	for _, u := range []string{"alice", "bob"} {
		w = doJSON(t, r, http.MethodPost, "/api/v1/users/"+u+"/mint", u, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("mint %s = %d: %s", u, w.Code, w.Body)
		}
	}
	w = doJSON(t, r, http.MethodPost, "/api/v1/admin/rounds", "admin",
		gin.H{"start_price": "1000000", "mode": 0})
	if w.Code != http.StatusOK {
		t.Fatalf("create round = %d: %s", w.Code, w.Body)
	}
	var created struct {
		Data market.Round `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode round: %v", err)
	}

	w = doJSON(t, r, http.MethodPost, "/api/v1/bets", "alice",
		gin.H{"user": "alice", "amount": "1000", "side": "up"})
	if w.Code != http.StatusOK {
		t.Fatalf("alice bet = %d: %s", w.Code, w.Body)
	}
	w = doJSON(t, r, http.MethodPost, "/api/v1/bets", "bob",
		gin.H{"user": "bob", "amount": "1000", "side": "down"})
	if w.Code != http.StatusOK {
		t.Fatalf("bob bet = %d: %s", w.Code, w.Body)
	}

	// Staking for someone else is forbidden.
	w = doJSON(t, r, http.MethodPost, "/api/v1/bets", "alice",
		gin.H{"user": "bob", "amount": "1000", "side": "up"})
	if w.Code != http.StatusForbidden {
		t.Fatalf("cross-user bet = %d", w.Code)
	}

	seq.seq = created.Data.EndMarker
	w = doJSON(t, r, http.MethodPost, "/api/v1/oracle/resolve", "oracle",
		gin.H{"price": "1500000", "timestamp": seq.ts, "round_id": created.Data.StartMarker})
	if w.Code != http.StatusOK {
		t.Fatalf("resolve = %d: %s", w.Code, w.Body)
	}

	w = doJSON(t, r, http.MethodGet, "/api/v1/users/alice/pending", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("pending = %d", w.Code)
	}
	var pending struct {
		Data struct {
			Pending string `json:"pending"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &pending); err != nil {
		t.Fatalf("decode pending: %v", err)
	}
	if pending.Data.Pending != "2000" {
		t.Fatalf("alice pending = %s, want 2000", pending.Data.Pending)
	}

	w = doJSON(t, r, http.MethodPost, "/api/v1/users/alice/claim", "alice", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("claim = %d: %s", w.Code, w.Body)
	}
}

func TestEngineErrorMapping(t *testing.T) {
	r, _ := newTestRouter(t)
	doJSON(t, r, http.MethodPost, "/api/v1/admin/initialize", "admin",
		gin.H{"admin": "admin", "oracle": "oracle"})

	w := doJSON(t, r, http.MethodPost, "/api/v1/admin/initialize", "admin",
		gin.H{"admin": "admin", "oracle": "oracle"})
	if w.Code != http.StatusConflict {
		t.Fatalf("second initialize = %d, want 409", w.Code)
	}
	var resp struct {
		Meta map[string]any `json:"meta"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Meta["error_code"] != "already_initialized" {
		t.Fatalf("error_code = %v", resp.Meta["error_code"])
	}

	w = doJSON(t, r, http.MethodGet, "/api/v1/rounds/active", "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("idle active round = %d, want 404", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/api/v1/admin/rounds", "someone",
		gin.H{"start_price": "1000000", "mode": 0})
	if w.Code != http.StatusForbidden {
		t.Fatalf("non-admin create = %d, want 403", w.Code)
	}
}

func TestPredictionDecimalPrice(t *testing.T) {
	r, _ := newTestRouter(t)
	doJSON(t, r, http.MethodPost, "/api/v1/admin/initialize", "admin",
		gin.H{"admin": "admin", "oracle": "oracle"})
	doJSON(t, r, http.MethodPost, "/api/v1/users/alice/mint", "alice", nil)
	doJSON(t, r, http.MethodPost, "/api/v1/admin/rounds", "admin",
		gin.H{"start_price": "23000", "mode": 1})

	w := doJSON(t, r, http.MethodPost, "/api/v1/predictions", "alice",
		gin.H{"user": "alice", "amount": "500", "predicted_price_decimal": "2.2970"})
	if w.Code != http.StatusOK {
		t.Fatalf("decimal prediction = %d: %s", w.Code, w.Body)
	}

	w = doJSON(t, r, http.MethodGet, "/api/v1/users/alice/prediction", "", nil)
	var resp struct {
		Data struct {
			PredictedPrice string `json:"predicted_price"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.PredictedPrice != "22970" {
		t.Fatalf("predicted price = %s, want 22970", resp.Data.PredictedPrice)
	}

	w = doJSON(t, r, http.MethodPost, "/api/v1/predictions", "bob",
		gin.H{"user": "bob", "amount": "500", "predicted_price_decimal": "2.29705"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("5-decimal price = %d, want 400", w.Code)
	}
}
