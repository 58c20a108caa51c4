package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestInitIsIdempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		Init()
		Init()
	})
}

func TestObserveCounters(t *testing.T) {
	Init()

	before := testutil.ToFloat64(CacheLookupsTotal.WithLabelValues("data", "hit"))
	ObserveCache("data", "hit")
	assert.Equal(t, before+1, testutil.ToFloat64(CacheLookupsTotal.WithLabelValues("data", "hit")))

	before = testutil.ToFloat64(UpstreamRequestsTotal.WithLabelValues("character", "ok"))
	ObserveUpstream("character", "ok", 0.2)
	assert.Equal(t, before+1, testutil.ToFloat64(UpstreamRequestsTotal.WithLabelValues("character", "ok")))
}
