// pkg/registry/registry_test.go
package registry

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"campaign-workers/internal/common/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleActivity(id, taskType string) Activity {
	return Activity{
		ID:                   id,
		DisplayName:          "Score Campaign",
		Description:          "Scores a campaign",
		Category:             "matching",
		Version:              "1.0.0",
		TaskType:             taskType,
		ImplementationStatus: "planned",
		InputSchema: map[string]interface{}{
			"type":     "object",
			"required": []interface{}{"campaign"},
		},
		Timeout: "30s",
		Retries: 3,
	}
}

func sampleRegistry() *ActivityRegistry {
	reg := New()
	reg.Activities = append(reg.Activities,
		sampleActivity("matching.campaign.score", "score-campaign"),
		sampleActivity("matching.campaigns.rank", "rank-campaigns"),
	)
	return reg
}

func valid(t *testing.T, schema *validation.Schema, doc string) bool {
	t.Helper()
	res, err := schema.ValidateJSON(doc)
	require.NoError(t, err)
	return res.Valid
}

// ==========================
// Load / Save Tests
// ==========================

func TestSaveAndLoadRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "registry.json")
	reg := sampleRegistry()

	require.NoError(t, reg.Save(path))

	loaded, err := LoadRegistry(path)
	require.NoError(t, err)
	require.Len(t, loaded.Activities, 2)
	assert.Equal(t, "rank-campaigns", loaded.Activities[1].TaskType)
	assert.Equal(t, "30s", loaded.Activities[0].Timeout)
}

func TestLoadRegistry_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadRegistry(filepath.Join(dir, "missing.json"))
	assert.True(t, os.IsNotExist(err))

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o600))
	_, err = LoadRegistry(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse registry")
}

func TestShippedRegistryIsValid(t *testing.T) {
	reg, err := LoadRegistry("../../configs/activity-registry.json")
	require.NoError(t, err)
	require.NoError(t, reg.Validate())

	schemas, err := reg.InputSchemas()
	require.NoError(t, err)
	for _, taskType := range []string{"score-campaign", "rank-campaigns", "normalize-metrics"} {
		assert.Contains(t, schemas, taskType)
	}

	score := schemas["score-campaign"]
	assert.True(t, valid(t, score, `{"investorId":"inv-1","campaign":{"id":"c-1"}}`))
	assert.False(t, valid(t, score, `{"investorId":"inv-1"}`))
	assert.False(t, valid(t, score, `{"campaign":{"id":"c-1"}}`))

	rank := schemas["rank-campaigns"]
	assert.True(t, valid(t, rank, `{"investorId":"inv-1","minScore":0,"limit":5}`))
	assert.False(t, valid(t, rank, `{"investorId":"inv-1","minScore":101}`))
	assert.False(t, valid(t, rank, `{"investorId":"inv-1","limit":-1}`))

	normalize := schemas["normalize-metrics"]
	assert.True(t, valid(t, normalize, `{"payload":{"revenue":10}}`))
	assert.True(t, valid(t, normalize, `{"payload":"{\"revenue\":10}"}`))
	assert.False(t, valid(t, normalize, `{"campaignId":"c-1"}`))
	assert.True(t, valid(t, normalize, `{"campaignId":"c-1","useCached":true}`))
	assert.False(t, valid(t, normalize, `{"campaignId":"c-1","useCached":false}`))
	assert.False(t, valid(t, normalize, `{"useCached":true}`))
}

// ==========================
// Lookup / Mutation Tests
// ==========================

func TestFindByTaskType(t *testing.T) {
	reg := sampleRegistry()

	a, ok := reg.FindByTaskType("rank-campaigns")
	require.True(t, ok)
	assert.Equal(t, "matching.campaigns.rank", a.ID)

	_, ok = reg.FindByTaskType("send-email")
	assert.False(t, ok)
}

func TestAdd_RejectsDuplicate(t *testing.T) {
	reg := sampleRegistry()

	err := reg.Add(sampleActivity("matching.campaign.score", "other"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	require.NoError(t, reg.Add(sampleActivity("analytics.metrics.normalize", "normalize-metrics")))
	assert.Len(t, reg.Activities, 3)
}

func TestUpdate(t *testing.T) {
	tests := []struct {
		name    string
		field   string
		value   string
		check   func(t *testing.T, a *Activity)
		wantErr string
	}{
		{"status", "status", "completed", func(t *testing.T, a *Activity) {
			assert.Equal(t, "completed", a.ImplementationStatus)
		}, ""},
		{"version", "version", "1.1.0", func(t *testing.T, a *Activity) {
			assert.Equal(t, "1.1.0", a.Version)
		}, ""},
		{"timeout", "timeout", "45s", func(t *testing.T, a *Activity) {
			assert.Equal(t, "45s", a.Timeout)
		}, ""},
		{"retries", "retries", "5", func(t *testing.T, a *Activity) {
			assert.Equal(t, 5, a.Retries)
		}, ""},
		{"bad timeout", "timeout", "soon", nil, "invalid timeout"},
		{"bad status", "status", "done", nil, "invalid status"},
		{"bad retries", "retries", "many", nil, "invalid retries"},
		{"unknown field", "owner", "x", nil, "unknown field"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := sampleRegistry()
			err := reg.Update("matching.campaign.score", tt.field, tt.value)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			a, _ := reg.FindByID("matching.campaign.score")
			tt.check(t, a)
		})
	}
}

func TestUpdate_NotFound(t *testing.T) {
	err := sampleRegistry().Update("matching.campaign.missing", "status", "completed")
	assert.ErrorIs(t, err, ErrActivityNotFound)
}

// ==========================
// Validation Tests
// ==========================

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(r *ActivityRegistry)
		wantErr string
	}{
		{"valid", func(r *ActivityRegistry) {}, ""},
		{"empty", func(r *ActivityRegistry) { r.Activities = nil }, "no activities"},
		{"missing id", func(r *ActivityRegistry) { r.Activities[0].ID = "" }, "field: id"},
		{"duplicate id", func(r *ActivityRegistry) { r.Activities[1].ID = r.Activities[0].ID }, "duplicate activity ID"},
		{"bad naming", func(r *ActivityRegistry) { r.Activities[0].ID = "score-campaign" }, "score-campaign"},
		{"missing display name", func(r *ActivityRegistry) { r.Activities[0].DisplayName = "" }, "displayName"},
		{"missing category", func(r *ActivityRegistry) { r.Activities[0].Category = "" }, "category"},
		{"missing task type", func(r *ActivityRegistry) { r.Activities[0].TaskType = "" }, "taskType"},
		{"duplicate task type", func(r *ActivityRegistry) { r.Activities[1].TaskType = "score-campaign" }, "duplicate task type"},
		{"bad timeout", func(r *ActivityRegistry) { r.Activities[0].Timeout = "later" }, "invalid timeout"},
		{"bad status", func(r *ActivityRegistry) { r.Activities[0].ImplementationStatus = "shipped" }, "invalid status"},
		{"bad schema", func(r *ActivityRegistry) {
			r.Activities[1].InputSchema = map[string]interface{}{"type": 42}
		}, "input schema"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := sampleRegistry()
			tt.modify(reg)
			err := reg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestActivity_TimeoutDuration(t *testing.T) {
	tests := []struct {
		timeout string
		want    time.Duration
		wantErr bool
	}{
		{"", 0, false},
		{"30s", 30 * time.Second, false},
		{"1m30s", 90 * time.Second, false},
		{"soon", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.timeout, func(t *testing.T) {
			got, err := Activity{Timeout: tt.timeout}.TimeoutDuration()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInputSchemas_SkipsEmpty(t *testing.T) {
	reg := sampleRegistry()
	reg.Activities[1].InputSchema = nil

	schemas, err := reg.InputSchemas()
	require.NoError(t, err)
	assert.Len(t, schemas, 1)
	assert.Contains(t, schemas, "score-campaign")
}
