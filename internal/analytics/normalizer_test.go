// internal/analytics/normalizer_test.go
package analytics

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Shape Detection Tests
// ==========================

func TestNormalize_SingleObject(t *testing.T) {
	payload := []byte(`{"mrr": 42000, "active_users": "1,250", "churn": "3.5%", "date": "2024-05"}`)

	res, err := Normalize(payload)
	require.NoError(t, err)

	assert.False(t, res.Multiple)
	require.Len(t, res.Records, 1)
	rec := res.Records[0]
	assert.Equal(t, 42000.0, rec["monthlyRecurringRevenue"])
	assert.Equal(t, 1250.0, rec["activeUsers"])
	assert.Equal(t, 3.5, rec["churnRate"])
	assert.Equal(t, "2024-05", rec["period"])
	assert.Nil(t, rec["revenue"])
	assert.Nil(t, res.Reports)

	_, isRecord := res.Metrics().(Record)
	assert.True(t, isRecord)
}

func TestNormalize_Array(t *testing.T) {
	payload := []byte(`[{"revenue": 100}, {"total_revenue": "$2,500.50"}, "skip-me", {"income": 7}]`)

	res, err := Normalize(payload)
	require.NoError(t, err)

	assert.True(t, res.Multiple)
	require.Len(t, res.Records, 3)
	assert.Equal(t, 100.0, res.Records[0]["revenue"])
	assert.Equal(t, 2500.5, res.Records[1]["revenue"])
	assert.Equal(t, 7.0, res.Records[2]["revenue"])
}

func TestNormalize_DataWrapper(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		multiple bool
		records  int
	}{
		{"object under data", `{"source": "stripe", "data": {"mrr": 10}}`, false, 1},
		{"array under data", `{"data": [{"mrr": 10}, {"mrr": 20}]}`, true, 2},
		{"scalar data is a record key", `{"data": 5, "mrr": 10}`, false, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Normalize([]byte(tt.payload))
			require.NoError(t, err)
			assert.Equal(t, tt.multiple, res.Multiple)
			assert.Len(t, res.Records, tt.records)
			assert.Equal(t, 10.0, res.Records[0]["monthlyRecurringRevenue"])
		})
	}
}

func TestNormalize_NestedPaths(t *testing.T) {
	payload := []byte(`{"financials": {"revenue": 900, "burn": 120}, "users": {"active": 33}, "customers": {"total": 4}}`)

	res, err := Normalize(payload, WithReport())
	require.NoError(t, err)

	rec := res.Records[0]
	assert.Equal(t, 900.0, rec["revenue"])
	assert.Equal(t, 120.0, rec["burnRate"])
	assert.Equal(t, 33.0, rec["activeUsers"])
	assert.Equal(t, 4.0, rec["customerCount"])
	assert.Equal(t, "financials.revenue", res.Reports[0]["revenue"])
	assert.Equal(t, "customers.total", res.Reports[0]["customerCount"])
	assert.Empty(t, res.Unrecognized)
}

func TestNormalize_EmptyAndScalarPayloads(t *testing.T) {
	res, err := Normalize([]byte(`[]`))
	require.NoError(t, err)
	assert.True(t, res.Multiple)
	assert.Empty(t, res.Records)

	res, err = Normalize([]byte(`42`), WithReport())
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	for _, f := range DefaultFieldMap().Fields() {
		assert.Nil(t, res.Records[0][f.Name])
		assert.Equal(t, Unmapped, res.Reports[0][f.Name])
	}
	assert.Empty(t, res.Unrecognized)
}

// ==========================
// Mapping Report Tests
// ==========================

func TestNormalize_Report(t *testing.T) {
	payload := []byte(`{"MRR": 5, "ltv": "n/a", "clv": 300, "extra": true, "another": 1}`)

	res, err := Normalize(payload, WithReport())
	require.NoError(t, err)
	require.Len(t, res.Reports, 1)

	rep := res.Reports[0]
	assert.Equal(t, "MRR", rep["monthlyRecurringRevenue"])
	// unparsable "n/a" falls through to the next candidate
	assert.Equal(t, "clv", rep["lifetimeValue"])
	assert.Equal(t, 300.0, res.Records[0]["lifetimeValue"])
	assert.Equal(t, Unmapped, rep["revenue"])
	assert.Len(t, rep, DefaultFieldMap().Len())
	assert.Equal(t, []string{"another", "extra"}, res.Unrecognized)
}

func TestNormalize_OverflowingNumbers(t *testing.T) {
	payload := []byte(`{"revenue": 1e400, "income": 50, "mrr": "1e400", "churn": -1e400}`)

	res, err := Normalize(payload, WithReport())
	require.NoError(t, err)

	rec, rep := res.Records[0], res.Reports[0]
	// an overflowing literal falls through to the next candidate
	assert.Equal(t, 50.0, rec["revenue"])
	assert.Equal(t, "income", rep["revenue"])
	assert.Nil(t, rec["monthlyRecurringRevenue"])
	assert.Equal(t, Unmapped, rep["monthlyRecurringRevenue"])
	assert.Nil(t, rec["churnRate"])
	assert.Equal(t, Unmapped, rep["churnRate"])

	_, err = json.Marshal(res)
	assert.NoError(t, err)
}

func TestNormalize_MarshalJSON(t *testing.T) {
	single, err := Normalize([]byte(`{"revenue": 1}`), WithReport())
	require.NoError(t, err)
	out, err := json.Marshal(single)
	require.NoError(t, err)

	var obj map[string]any
	require.NoError(t, json.Unmarshal(out, &obj))
	metrics, ok := obj["metrics"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 1.0, metrics["revenue"])
	assert.Contains(t, metrics, "churnRate")
	assert.Nil(t, metrics["churnRate"])
	assert.IsType(t, map[string]any{}, obj["mappingReport"])
	assert.NotContains(t, obj, "unrecognizedFields")

	many, err := Normalize([]byte(`[{"revenue": 1}]`))
	require.NoError(t, err)
	out, err = json.Marshal(many)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(out, &obj))
	assert.IsType(t, []any{}, obj["metrics"])
}

// ==========================
// Idempotence Tests
// ==========================

func TestNormalize_Idempotent(t *testing.T) {
	payloads := []string{
		`{"mrr": "$12,000", "growth": 0.12, "runway": "18", "as_of": "2024-Q1", "junk": 1}`,
		`[{"financials": {"revenue": 900}}, {"cac": 10, "ltv": 90, "month": 202401}]`,
		`{"data": {"customers": 12}}`,
	}

	for _, p := range payloads {
		first, err := Normalize([]byte(p))
		require.NoError(t, err)

		encoded, err := json.Marshal(first.Metrics())
		require.NoError(t, err)

		second, err := Normalize(encoded)
		require.NoError(t, err)

		assert.Equal(t, first.Records, second.Records, p)
		assert.Equal(t, first.Multiple, second.Multiple, p)
		assert.Empty(t, second.Unrecognized, p)
	}
}

// ==========================
// Error & Field Map Tests
// ==========================

func TestNormalize_InvalidJSON(t *testing.T) {
	for _, p := range []string{``, `{`, `{"revenue": }`, `not json`} {
		res, err := Normalize([]byte(p))
		assert.Nil(t, res)
		assert.True(t, errors.Is(err, ErrInvalidPayload), p)
	}
}

func TestFieldMap_Extend(t *testing.T) {
	base := DefaultFieldMap()
	extended := base.Extend("revenue", "", "fin.rev").Extend("arpu", "", "average_revenue_per_user")

	assert.Equal(t, base.Len()+1, extended.Len())
	assert.NotContains(t, base.Fields()[0].Paths, "fin.rev")

	n := NewNormalizer(extended)
	res, err := n.Normalize([]byte(`{"fin": {"rev": 3}, "average_revenue_per_user": "4.5"}`), WithReport())
	require.NoError(t, err)
	assert.Equal(t, 3.0, res.Records[0]["revenue"])
	assert.Equal(t, 4.5, res.Records[0]["arpu"])
	assert.Equal(t, "average_revenue_per_user", res.Reports[0]["arpu"])
	assert.Empty(t, res.Unrecognized)
}

func TestNewNormalizer_EmptyMapUsesDefaults(t *testing.T) {
	n := NewNormalizer(FieldMap{})
	assert.Equal(t, DefaultFieldMap().Len(), n.FieldMap().Len())
}

func TestParseNumeric(t *testing.T) {
	tests := []struct {
		in  string
		out float64
		ok  bool
	}{
		{"1,200", 1200, true},
		{" $3.50 ", 3.5, true},
		{"15%", 15, true},
		{"-2", -2, true},
		{"", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
		{"12k", 0, false},
	}
	for _, tt := range tests {
		f, ok := parseNumeric(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.out, f, tt.in)
	}
}
