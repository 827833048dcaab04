package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObservePass(t *testing.T) {
	before := testutil.ToFloat64(PassesTotal.WithLabelValues("appearance"))

	ObservePass("appearance", 3*time.Millisecond, 12, 7)

	if got := testutil.ToFloat64(PassesTotal.WithLabelValues("appearance")); got != before+1 {
		t.Errorf("passes = %v, want %v", got, before+1)
	}
	if got := testutil.ToFloat64(ResolvedItems.WithLabelValues("nodes")); got != 12 {
		t.Errorf("resolved nodes = %v, want 12", got)
	}
	if got := testutil.ToFloat64(ResolvedItems.WithLabelValues("edges")); got != 7 {
		t.Errorf("resolved edges = %v, want 7", got)
	}
}
