package recommend

import (
	"testing"

	"github.com/poiesic/recommendit/core"
	"github.com/stretchr/testify/assert"
)

func TestFormat_Match(t *testing.T) {
	result := core.QueryResult{
		Kind: core.ResultMatch,
		Rank: 2,
		Metadata: core.Metadata{
			Name:          "Verify G+",
			TestType:      "A",
			Duration:      "36 minutes",
			RemoteTesting: "Yes",
			AdaptiveIRT:   "Yes",
			URL:           "https://www.shl.com/verify-g",
		},
	}

	want := "### 2. Verify G+\n" +
		"- **Test Type**: A\n" +
		"- **Duration**: 36 minutes\n" +
		"- **Remote Testing**: Yes\n" +
		"- **Adaptive/IRT**: Yes\n" +
		"- **URL**: [Link](https://www.shl.com/verify-g)\n"
	assert.Equal(t, want, Format(result))
}

func TestFormat_Sentinel(t *testing.T) {
	result := sentinel(core.ResultNoMatches, MessageNoMatches)
	assert.Equal(t, MessageNoMatches, Format(result))
}

func TestFormatAll(t *testing.T) {
	results := []core.QueryResult{
		{Kind: core.ResultMatch, Rank: 1, Metadata: core.Metadata{Name: "A"}},
		{Kind: core.ResultMatch, Rank: 2, Metadata: core.Metadata{Name: "B"}},
	}
	out := FormatAll(results)
	assert.Contains(t, out, "### 1. A\n")
	assert.Contains(t, out, "\n\n### 2. B\n")
}
