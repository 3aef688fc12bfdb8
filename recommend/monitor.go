package recommend

import (
	"github.com/poiesic/recommendit/core"
)

// RecommendMonitor provides hooks to observe a recommendation.
// Implement this interface to trace the intermediate steps of a request.
type RecommendMonitor interface {
	Start(query string, topK int)
	AfterResolve(text string, fromURL bool)
	AfterEmbed(vector []float32)
	AfterQuery(matches []*core.Match)
	Finish(results []core.QueryResult)
}

// noopMonitor is a no-op implementation of RecommendMonitor
type noopMonitor struct{}

var _ RecommendMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string, _ int)         {}
func (n *noopMonitor) AfterResolve(_ string, _ bool) {}
func (n *noopMonitor) AfterEmbed(_ []float32)        {}
func (n *noopMonitor) AfterQuery(_ []*core.Match)    {}
func (n *noopMonitor) Finish(_ []core.QueryResult)   {}
