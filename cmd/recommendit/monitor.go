package main

import (
	"fmt"
	"io"

	"github.com/poiesic/recommendit/core"
	"github.com/poiesic/recommendit/recommend"
)

// printMonitor writes each recommendation stage to w.
type printMonitor struct {
	w io.Writer
}

var _ recommend.RecommendMonitor = (*printMonitor)(nil)

func (m *printMonitor) Start(query string, topK int) {
	fmt.Fprintf(m.w, "query (top %d): %q\n", topK, query)
}

func (m *printMonitor) AfterResolve(text string, fromURL bool) {
	if fromURL {
		fmt.Fprintf(m.w, "extracted %d characters from link: %q\n", len([]rune(text)), text)
	}
}

func (m *printMonitor) AfterEmbed(vector []float32) {
	fmt.Fprintf(m.w, "embedded query into %d dimensions\n", len(vector))
}

func (m *printMonitor) AfterQuery(matches []*core.Match) {
	for _, match := range matches {
		fmt.Fprintf(m.w, "  %d %-50s distance=%.4f\n", match.ID, match.Metadata.Name, match.Distance)
	}
}

func (m *printMonitor) Finish(results []core.QueryResult) {
	fmt.Fprintf(m.w, "%d result(s)\n", len(results))
}
