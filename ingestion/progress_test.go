package ingestion

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildProgress_ShowsReusedRows(t *testing.T) {
	var buf bytes.Buffer
	p := newBuildProgress(&buf, 10, 6, 4, 3)

	p.done(2)
	assert.Empty(t, buf.String(), "below the interval")

	p.done(2)
	assert.Contains(t, buf.String(), "catalog 10 rows: embedded 4/6, reused 4")
}

func TestBuildProgress_FinishEndsLine(t *testing.T) {
	var buf bytes.Buffer
	p := newBuildProgress(&buf, 3, 3, 0, 50)

	p.done(3)
	p.finish()

	out := buf.String()
	assert.Contains(t, out, "embedded 3/3, reused 0")
	assert.True(t, strings.HasPrefix(out, "\r"))
	assert.True(t, strings.HasSuffix(out, "\n"))
}

func TestBuildProgress_ClampsToPending(t *testing.T) {
	var buf bytes.Buffer
	p := newBuildProgress(&buf, 5, 2, 3, 1)

	p.done(7)
	assert.Contains(t, buf.String(), "embedded 2/2")
	assert.NotContains(t, buf.String(), "7/2")
}

func TestBuildProgress_ZeroIntervalReportsEveryBatch(t *testing.T) {
	var buf bytes.Buffer
	p := newBuildProgress(&buf, 2, 2, 0, 0)

	p.done(1)
	assert.Contains(t, buf.String(), "embedded 1/2")
}

func TestBuildProgress_PoolWorkers(t *testing.T) {
	var buf bytes.Buffer
	p := newBuildProgress(&buf, 250, 200, 50, 1000)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 25 {
				p.done(1)
			}
		}()
	}
	wg.Wait()
	p.finish()

	assert.Contains(t, buf.String(), "catalog 250 rows: embedded 200/200, reused 50")
}
