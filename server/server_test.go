package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rushteam/newsrec/core"
	"github.com/rushteam/newsrec/dataset"
	"github.com/rushteam/newsrec/filter"
	"github.com/rushteam/newsrec/model"
	"github.com/rushteam/newsrec/policy"
	"github.com/rushteam/newsrec/pool"
	"github.com/rushteam/newsrec/recall"
	"github.com/rushteam/newsrec/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const knownUser = "3b241101-e2bb-4255-8caf-4136c566a962"

type stubLoader struct {
	ds *dataset.Dataset
}

func (l stubLoader) Load(_ context.Context) (*dataset.Dataset, error) {
	return l.ds, nil
}

type stubPolicy struct {
	strategy string
	err      error
}

func (p stubPolicy) Strategy(_ context.Context, _ string) (string, error) {
	return p.strategy, p.err
}

func newTestServer(t *testing.T, pol PolicyResolver) *Server {
	t.Helper()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	ds := &dataset.Dataset{
		Interactions: map[string]map[string]struct{}{
			knownUser: {"read1": {}},
		},
		Articles: map[string]core.Article{
			"read1": {ID: "read1", Timestamp: now},
		},
	}
	for i := 0; i < 30; i++ {
		id := fmt.Sprintf("news%04d1", i)
		ds.Articles[id] = core.Article{
			ID:        id,
			Timestamp: now.Add(-time.Duration(i%24) * time.Hour),
		}
		reader := fmt.Sprintf("reader%02d", i%5)
		if ds.Interactions[reader] == nil {
			ds.Interactions[reader] = map[string]struct{}{}
		}
		ds.Interactions[reader][id] = struct{}{}
	}

	b := &model.Builder{Loader: stubLoader{ds}}
	snap, err := b.Build(context.Background())
	if err != nil {
		t.Fatalf("build model: %v", err)
	}
	handle := model.NewHandle(snap)

	kv := store.NewMemoryStore()
	t.Cleanup(func() { kv.Close() })

	gen := &pool.Generator{
		Model: handle,
		Tiers: []recall.Source{
			&recall.ItemCF{},
			&recall.Hot{},
			&recall.Latest{},
			&recall.RandomNews{Rand: rand.New(rand.NewSource(1))},
		},
		Filters: []filter.Filter{&filter.ExclusionFilter{}},
		Clock:   func() time.Time { return now },
	}
	sess := &pool.Session{
		Store:    kv,
		Pools:    gen,
		Random:   &recall.RandomNews{Rand: rand.New(rand.NewSource(2))},
		PageSize: 10,
		PoolSize: 20,
		Rand:     rand.New(rand.NewSource(3)),
	}

	return &Server{Session: sess, Model: handle, Policy: pol}
}

func postRecommend(t *testing.T, srv *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/recommend", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

func TestRecommendMissingUserID(t *testing.T) {
	srv := newTestServer(t, stubPolicy{strategy: policy.StrategyItemCF})

	for _, body := range []string{`{}`, `{"user_id":""}`, `not json`} {
		w := postRecommend(t, srv, body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want 400", body, w.Code)
		}
	}
}

func TestRecommendMalformedUserID(t *testing.T) {
	srv := newTestServer(t, stubPolicy{strategy: policy.StrategyItemCF})

	w := postRecommend(t, srv, `{"user_id":"not-a-uuid"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if resp["error"] != "invalid user_id" {
		t.Errorf("error = %q, want invalid user_id", resp["error"])
	}
}

func TestRecommendPersonalized(t *testing.T) {
	srv := newTestServer(t, stubPolicy{strategy: policy.StrategyItemCF})

	w := postRecommend(t, srv, fmt.Sprintf(`{"user_id":%q}`, knownUser))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var resp struct {
		UserID          string `json:"user_id"`
		Strategy        string `json:"strategy"`
		Recommendations []struct {
			NewsID string  `json:"news_id"`
			Score  float64 `json:"score"`
		} `json:"recommendations"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if resp.UserID != knownUser {
		t.Errorf("user_id = %q", resp.UserID)
	}
	if resp.Strategy != policy.StrategyItemCF {
		t.Errorf("strategy = %q, want %q", resp.Strategy, policy.StrategyItemCF)
	}
	if len(resp.Recommendations) != 10 {
		t.Fatalf("got %d recommendations, want 10", len(resp.Recommendations))
	}
	for _, rec := range resp.Recommendations {
		if rec.NewsID == "" {
			t.Error("empty news_id in response")
		}
		if rec.NewsID == "read1" {
			t.Error("already-read article in response")
		}
	}
}

func TestRecommendUnknownUserBypassesPool(t *testing.T) {
	// 策略开启但模型不认识该用户：走旁路随机推荐，不建池
	unknown := "00000000-0000-4000-8000-000000000001"
	srv := newTestServer(t, stubPolicy{strategy: policy.StrategyItemCF})

	w := postRecommend(t, srv, fmt.Sprintf(`{"user_id":%q}`, unknown))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	if _, err := srv.Session.Store.Get(context.Background(), "rec_pool:"+unknown); !core.IsStoreNotFound(err) {
		t.Error("bypass path created a pool")
	}
}

func TestRecommendRandomStrategy(t *testing.T) {
	srv := newTestServer(t, stubPolicy{strategy: policy.StrategyRandom})

	w := postRecommend(t, srv, fmt.Sprintf(`{"user_id":%q}`, knownUser))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var resp struct {
		Strategy        string           `json:"strategy"`
		Recommendations []map[string]any `json:"recommendations"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if resp.Strategy != policy.StrategyRandom {
		t.Errorf("strategy = %q, want %q", resp.Strategy, policy.StrategyRandom)
	}
	if len(resp.Recommendations) == 0 {
		t.Error("no recommendations from random strategy")
	}
}

func TestRecommendPolicyFailureFallsBackToRandom(t *testing.T) {
	srv := newTestServer(t, stubPolicy{err: errors.New("db down")})

	w := postRecommend(t, srv, fmt.Sprintf(`{"user_id":%q}`, knownUser))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want single request to survive policy outage", w.Code)
	}

	var resp struct {
		Strategy string `json:"strategy"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if resp.Strategy != policy.StrategyRandom {
		t.Errorf("strategy = %q, want fallback %q", resp.Strategy, policy.StrategyRandom)
	}
}

func TestRound4(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{0.333333333, 0.3333},
		{0.66666666, 0.6667},
		{1.0 / 3.0, 0.3333},
		{2, 2},
		{0, 0},
	}
	for _, tc := range cases {
		if got := round4(tc.in); got != tc.want {
			t.Errorf("round4(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
