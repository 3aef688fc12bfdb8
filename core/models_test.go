package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIDString(t *testing.T) {
	assert.Equal(t, "0", ID(0).String())
	assert.Equal(t, "9223372036854775815", ID(1<<63+7).String())
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint("Verify G+", "cognitive")
	assert.Equal(t, a, Fingerprint("Verify G+", "cognitive"), "deterministic")
	assert.NotEqual(t, a, Fingerprint("Verify G+", "personality"))
	// Part boundaries matter.
	assert.NotEqual(t, Fingerprint("ab", "c"), Fingerprint("a", "bc"))
}

func TestCatalogRecord_MetadataDropsDescription(t *testing.T) {
	record := &CatalogRecord{
		ID:            3,
		Name:          "Java 8",
		Description:   "Knowledge test for Java programming",
		TestType:      "K",
		Duration:      "18 minutes",
		RemoteTesting: "Yes",
		AdaptiveIRT:   "No",
		URL:           "https://example.com/java-8",
	}

	entry := NewIndexedEntry(record, []float32{1, 2})
	assert.Equal(t, ID(3), entry.ID)
	assert.Equal(t, Metadata{
		Name:          "Java 8",
		TestType:      "K",
		Duration:      "18 minutes",
		RemoteTesting: "Yes",
		AdaptiveIRT:   "No",
		URL:           "https://example.com/java-8",
	}, entry.Metadata)
}

func TestQueryResult_IsSentinel(t *testing.T) {
	assert.False(t, QueryResult{Kind: ResultMatch}.IsSentinel())
	assert.True(t, QueryResult{Kind: ResultNoMatches}.IsSentinel())
	assert.True(t, QueryResult{Kind: ResultExtractionFailed}.IsSentinel())
}
