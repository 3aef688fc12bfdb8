package server

import (
	"github.com/poiesic/recommendit/core"
	"github.com/poiesic/recommendit/recommend"
)

// RecommendRequest is the body of POST /api/v1/recommend.
type RecommendRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

// RecommendResult is one ranked assessment, or a sentinel carrying only Message.
type RecommendResult struct {
	Rank          int      `json:"rank,omitempty"`
	Name          string   `json:"name,omitempty"`
	TestType      string   `json:"test_type,omitempty"`
	Duration      string   `json:"duration,omitempty"`
	RemoteTesting string   `json:"remote_testing,omitempty"`
	AdaptiveIRT   string   `json:"adaptive_irt,omitempty"`
	URL           string   `json:"url,omitempty"`
	Distance      *float32 `json:"distance,omitempty"`
	Markdown      string   `json:"markdown,omitempty"`
	Message       string   `json:"message,omitempty"`
}

type RecommendResponse struct {
	Results []RecommendResult `json:"results"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func toResponse(results []core.QueryResult) RecommendResponse {
	items := make([]RecommendResult, 0, len(results))
	for _, r := range results {
		distance := r.Distance
		if r.IsSentinel() {
			items = append(items, RecommendResult{Message: r.Message})
			continue
		}
		items = append(items, RecommendResult{
			Rank:          r.Rank,
			Name:          r.Metadata.Name,
			TestType:      r.Metadata.TestType,
			Duration:      r.Metadata.Duration,
			RemoteTesting: r.Metadata.RemoteTesting,
			AdaptiveIRT:   r.Metadata.AdaptiveIRT,
			URL:           r.Metadata.URL,
			Distance:      &distance,
			Markdown:      recommend.Format(r),
		})
	}
	return RecommendResponse{Results: items}
}
