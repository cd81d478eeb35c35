package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveRecommend(t *testing.T) {
	before := testutil.ToFloat64(RecommendationsServed.WithLabelValues("ok"))

	ObserveRecommend("ok", []int{100, 45}, 3*time.Millisecond)

	assert.Equal(t, before+1, testutil.ToFloat64(RecommendationsServed.WithLabelValues("ok")))
}
