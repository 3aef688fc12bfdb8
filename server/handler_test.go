package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/poiesic/recommendit/core"
	"github.com/poiesic/recommendit/recommend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRecommender struct {
	results []core.QueryResult
	err     error
	gotRaw  string
	gotTopK int
}

func (s *stubRecommender) Recommend(ctx context.Context, raw string, topK int) ([]core.QueryResult, error) {
	s.gotRaw = raw
	s.gotTopK = topK
	return s.results, s.err
}

func newTestServer(t *testing.T, rec Recommender) *Server {
	t.Helper()
	srv, err := New(rec, WithAccessLog(false))
	require.NoError(t, err)
	return srv
}

func post(t *testing.T, srv *Server, body string) (*http.Response, []byte) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/recommend", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := srv.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func TestNew_RequiresRecommender(t *testing.T) {
	_, err := New(nil)
	assert.Equal(t, ErrRecommenderRequired, err)
}

func TestRecommend_Matches(t *testing.T) {
	rec := &stubRecommender{results: []core.QueryResult{
		{
			Kind:     core.ResultMatch,
			Rank:     1,
			Distance: 0.25,
			Metadata: core.Metadata{
				Name:          "Verify G+",
				TestType:      "A",
				Duration:      "36 minutes",
				RemoteTesting: "Yes",
				AdaptiveIRT:   "Yes",
				URL:           "https://www.shl.com/verify-g",
			},
		},
	}}
	srv := newTestServer(t, rec)

	resp, body := post(t, srv, `{"query":"I need a cognitive ability test","top_k":1}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got RecommendResponse
	require.NoError(t, json.Unmarshal(body, &got))
	require.Len(t, got.Results, 1)

	r := got.Results[0]
	assert.Equal(t, 1, r.Rank)
	assert.Equal(t, "Verify G+", r.Name)
	assert.Equal(t, "A", r.TestType)
	assert.Equal(t, "36 minutes", r.Duration)
	assert.Equal(t, "Yes", r.RemoteTesting)
	assert.Equal(t, "Yes", r.AdaptiveIRT)
	assert.Equal(t, "https://www.shl.com/verify-g", r.URL)
	require.NotNil(t, r.Distance)
	assert.InDelta(t, 0.25, *r.Distance, 1e-6)
	assert.Equal(t, recommend.Format(rec.results[0]), r.Markdown)
	assert.Empty(t, r.Message)

	assert.Equal(t, "I need a cognitive ability test", rec.gotRaw)
	assert.Equal(t, 1, rec.gotTopK)
}

func TestRecommend_Sentinel(t *testing.T) {
	rec := &stubRecommender{results: []core.QueryResult{
		{Kind: core.ResultNoMatches, Message: recommend.MessageNoMatches},
	}}
	srv := newTestServer(t, rec)

	resp, body := post(t, srv, `{"query":"anything","top_k":3}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"results":[{"message":"No matching assessments found."}]}`, string(body))
}

func TestRecommend_DefaultTopK(t *testing.T) {
	rec := &stubRecommender{}
	srv := newTestServer(t, rec)

	resp, _ := post(t, srv, `{"query":"java developer"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, DefaultTopK, rec.gotTopK)
}

func TestRecommend_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"query":`},
		{"empty query", `{"query":"   ","top_k":3}`},
		{"top_k too small", `{"query":"x","top_k":-1}`},
		{"top_k too large", `{"query":"x","top_k":11}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &stubRecommender{}
			srv := newTestServer(t, rec)

			resp, body := post(t, srv, tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Contains(t, string(body), `"error"`)
			assert.Empty(t, rec.gotRaw, "recommender must not be called")
		})
	}
}

func TestRecommend_InternalError(t *testing.T) {
	srv := newTestServer(t, &stubRecommender{err: errors.New("model unavailable")})

	resp, body := post(t, srv, `{"query":"x","top_k":3}`)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.NotContains(t, string(body), "model unavailable")
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, &stubRecommender{})

	resp, err := srv.App().Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, &stubRecommender{})

	resp, err := srv.App().Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "go_goroutines")
}
