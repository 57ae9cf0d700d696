package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/hyperjump/serupa/internal/assets"
	"github.com/hyperjump/serupa/internal/config"
	"github.com/hyperjump/serupa/internal/embedding"
	"github.com/hyperjump/serupa/internal/models"
	"github.com/hyperjump/serupa/internal/preprocess"
	"github.com/hyperjump/serupa/internal/search"
	"github.com/hyperjump/serupa/internal/storage"
	"github.com/hyperjump/serupa/internal/tagger"
	"github.com/hyperjump/serupa/internal/vector"
)

const dims = 32

var corpus = []*models.Record{
	{DataPAID: 1, Title: "aplikasi mobile kasir kotlin firebase", Platform: "mobile", Techs: "kotlin,firebase"},
	{DataPAID: 2, Title: "website toko online laravel", Platform: "website", Techs: "laravel"},
	{DataPAID: 3, Title: "game edukasi unity", Platform: "game/ar/vr", Techs: "unity"},
}

type failingEmbedder struct{}

func (failingEmbedder) Embed(context.Context, string) ([]float32, error) {
	return nil, errors.New("onnxruntime: session crashed")
}
func (failingEmbedder) Dimensions() int { return dims }
func (failingEmbedder) Close() error    { return nil }

func newTestServer(t *testing.T, emb embedding.Embedder, loaded bool) http.Handler {
	t.Helper()
	norm, err := preprocess.NewNormalizer()
	if err != nil {
		t.Fatal(err)
	}
	var a *assets.Assets
	if loaded {
		rules, err := tagger.DefaultRules()
		if err != nil {
			t.Fatal(err)
		}
		mock := embedding.NewMockEmbedder(dims)
		vectors := make([][]float32, len(corpus))
		for i, r := range corpus {
			if vectors[i], err = mock.Embed(context.Background(), norm.Normalize(r.Title)); err != nil {
				t.Fatal(err)
			}
		}
		idx, err := vector.NewMemoryIndex(dims, vectors)
		if err != nil {
			t.Fatal(err)
		}
		a = assets.New(emb, idx, storage.NewMemoryStore(corpus), rules)
	}
	engine := search.NewEngine(norm, a)
	return NewServer(engine, &config.ServerConfig{Port: 5000}, zap.NewNop()).Router()
}

func do(h http.Handler, method, path, contentType, body string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		r.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var out models.ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	return out.Error
}

func TestHandleSearch(t *testing.T) {
	h := newTestServer(t, embedding.NewMockEmbedder(dims), true)
	body := `{"judul_pa":"Aplikasi Mobile","desc_pa":"dibangun dengan Kotlin dan Firebase",
		"platform_aplikasi":"","teknologi_yg_digunakan":["Kotlin","Firebase"],"threshold":0.1}`

	w := do(h, http.MethodPost, "/api/search", "application/json", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type: got %s", ct)
	}
	var resp models.SearchResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Results) == 0 || resp.Results[0].DataPAID != 1 {
		t.Fatalf("results: got %+v", resp.Results)
	}
	if resp.Results[0].Platform != "mobile" || resp.Results[0].Techs != "kotlin,firebase" {
		t.Errorf("result fields: got %+v", resp.Results[0])
	}
	if !contains(resp.DetectedPlatforms, "mobile") {
		t.Errorf("detected_platforms: got %v", resp.DetectedPlatforms)
	}
	if !contains(resp.DetectedTechs, "kotlin") || !contains(resp.DetectedTechs, "firebase") {
		t.Errorf("detected_techs: got %v", resp.DetectedTechs)
	}
}

func TestHandleSearch_StringTechList(t *testing.T) {
	h := newTestServer(t, embedding.NewMockEmbedder(dims), true)
	body := `{"judul_pa":"Website Toko","teknologi_yg_digunakan":"['Laravel']"}`
	w := do(h, http.MethodPost, "/api/search", "application/json; charset=utf-8", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", w.Code, w.Body.String())
	}
}

func TestHandleSearch_BadRequests(t *testing.T) {
	h := newTestServer(t, embedding.NewMockEmbedder(dims), true)
	tests := []struct {
		name        string
		contentType string
		body        string
		want        string
	}{
		{"not json content type", "text/plain", `{"judul_pa":"x"}`, "Request must be JSON"},
		{"missing content type", "", `{"judul_pa":"x"}`, "Request must be JSON"},
		{"malformed body", "application/json", `{"judul_pa":`, "Request must be JSON"},
		{"empty title and description", "application/json",
			`{"judul_pa":"","desc_pa":"","teknologi_yg_digunakan":["kotlin"]}`, search.MsgTextRequired},
		{"empty tech list", "application/json",
			`{"judul_pa":"Aplikasi","teknologi_yg_digunakan":[]}`, search.MsgTechsRequired},
		{"missing tech list", "application/json", `{"desc_pa":"Aplikasi"}`, search.MsgTechsRequired},
		{"threshold out of range", "application/json",
			`{"judul_pa":"Aplikasi","teknologi_yg_digunakan":["kotlin"],"threshold":2}`, search.MsgThresholdRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(h, http.MethodPost, "/api/search", tt.contentType, tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status: got %d, want 400", w.Code)
			}
			if got := decodeError(t, w); got != tt.want {
				t.Errorf("error: got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHandleSearch_ModelNotLoaded(t *testing.T) {
	h := newTestServer(t, nil, false)
	body := `{"judul_pa":"Aplikasi","teknologi_yg_digunakan":["kotlin"]}`
	w := do(h, http.MethodPost, "/api/search", "application/json", body)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status: got %d, want 503", w.Code)
	}
	if got := decodeError(t, w); got != "Model not loaded" {
		t.Errorf("error: got %q", got)
	}
}

func TestHandleSearch_InternalErrorIsOpaque(t *testing.T) {
	h := newTestServer(t, failingEmbedder{}, true)
	body := `{"judul_pa":"Aplikasi","teknologi_yg_digunakan":["kotlin"]}`
	w := do(h, http.MethodPost, "/api/search", "application/json", body)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status: got %d, want 500", w.Code)
	}
	if got := decodeError(t, w); got != "Internal server error" {
		t.Errorf("error: got %q", got)
	}
}

func TestHandleHealth(t *testing.T) {
	for _, loaded := range []bool{true, false} {
		h := newTestServer(t, embedding.NewMockEmbedder(dims), loaded)
		w := do(h, http.MethodGet, "/api/health", "", "")
		if w.Code != http.StatusOK {
			t.Fatalf("status: got %d", w.Code)
		}
		var out models.HealthResponse
		if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
			t.Fatal(err)
		}
		if out.Status != "ok" || out.ModelLoaded != loaded {
			t.Errorf("health: got %+v, want model_loaded=%v", out, loaded)
		}
	}
}

func TestHandleStatus(t *testing.T) {
	h := newTestServer(t, embedding.NewMockEmbedder(dims), true)
	w := do(h, http.MethodGet, "/api/status", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	var out models.StatusResponse
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if !out.ModelLoaded || out.RecordCount != 3 || out.IndexSize != 3 || out.IndexType != "memory" {
		t.Errorf("status: got %+v", out)
	}
}

func TestRoutes(t *testing.T) {
	h := newTestServer(t, embedding.NewMockEmbedder(dims), true)
	if w := do(h, http.MethodGet, "/api/search", "", ""); w.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET /api/search: got %d, want 405", w.Code)
	}
	if w := do(h, http.MethodGet, "/api/v1/search", "", ""); w.Code != http.StatusNotFound {
		t.Errorf("unknown route: got %d, want 404", w.Code)
	}
	w := do(h, http.MethodGet, "/metrics", "", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "serupa_http_requests_total") {
		t.Errorf("/metrics: got %d", w.Code)
	}
}

func TestIsJSON(t *testing.T) {
	tests := map[string]bool{
		"application/json":                true,
		"application/json; charset=utf-8": true,
		"application/vnd.api+json":        true,
		"text/plain":                      false,
		"":                                false,
	}
	for ct, want := range tests {
		if got := isJSON(ct); got != want {
			t.Errorf("isJSON(%q) = %v, want %v", ct, got, want)
		}
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
