// internal/common/observability/metrics_test.go
package observability

import (
	"context"
	"testing"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObservability_RecordJob(t *testing.T) {
	reg := promclient.NewRegistry()
	obs, err := New("campaign-workers-test", reg)
	require.NoError(t, err)
	defer obs.Shutdown(context.Background())

	ctx := context.Background()
	obs.RecordJob(ctx, "score-campaign", StatusCompleted, 12*time.Millisecond)
	obs.RecordJob(ctx, "score-campaign", StatusFailed, 3*time.Millisecond)

	families, err := reg.Gather()
	require.NoError(t, err)

	statuses := map[string][]string{}
	for _, f := range families {
		for _, m := range f.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "status" {
					statuses[f.GetName()] = append(statuses[f.GetName()], l.GetValue())
				}
			}
		}
	}
	assert.ElementsMatch(t, []string{StatusCompleted, StatusFailed}, statuses["jobs_processed_total"])
	assert.ElementsMatch(t, []string{StatusCompleted, StatusFailed}, statuses["jobs_duration_milliseconds"])
}

func TestObservability_NilIsNoop(t *testing.T) {
	var obs *Observability
	assert.NotPanics(t, func() {
		obs.RecordJob(context.Background(), "rank-campaigns", StatusCompleted, time.Second)
	})
	assert.NoError(t, obs.Shutdown(context.Background()))
}
