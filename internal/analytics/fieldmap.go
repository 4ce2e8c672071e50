// internal/analytics/fieldmap.go
package analytics

import "strings"

type FieldKind string

const (
	KindNumber FieldKind = "number"
	KindString FieldKind = "string"
)

// Field is one internal dashboard field and the external paths it may be
// sourced from, in gjson path syntax.
type Field struct {
	Name  string
	Kind  FieldKind
	Paths []string
}

// candidates returns the lookup order for a field. The internal name always
// comes first so already-normalized records map onto themselves.
func (f Field) candidates() []string {
	out := make([]string, 0, len(f.Paths)+1)
	seen := map[string]bool{}
	for _, p := range append([]string{f.Name}, f.Paths...) {
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

// FieldMap is an ordered set of fields. The zero value is empty; use
// DefaultFieldMap for the built-in table.
type FieldMap struct {
	fields []Field
}

func NewFieldMap(fields ...Field) FieldMap {
	m := FieldMap{}
	for _, f := range fields {
		m = m.Extend(f.Name, f.Kind, f.Paths...)
	}
	return m
}

func DefaultFieldMap() FieldMap {
	return NewFieldMap(
		Field{Name: "revenue", Kind: KindNumber, Paths: []string{"total_revenue", "totalRevenue", "revenue_total", "financials.revenue", "income"}},
		Field{Name: "monthlyRecurringRevenue", Kind: KindNumber, Paths: []string{"mrr", "MRR", "monthly_recurring_revenue", "financials.mrr"}},
		Field{Name: "activeUsers", Kind: KindNumber, Paths: []string{"active_users", "activeUserCount", "users.active", "mau"}},
		Field{Name: "customerCount", Kind: KindNumber, Paths: []string{"customers", "customer_count", "num_customers", "customers.total"}},
		Field{Name: "growthRate", Kind: KindNumber, Paths: []string{"growth", "growth_rate", "mom_growth", "revenue_growth"}},
		Field{Name: "churnRate", Kind: KindNumber, Paths: []string{"churn", "churn_rate", "monthly_churn"}},
		Field{Name: "burnRate", Kind: KindNumber, Paths: []string{"burn", "burn_rate", "monthly_burn", "financials.burn"}},
		Field{Name: "runwayMonths", Kind: KindNumber, Paths: []string{"runway", "runway_months", "months_of_runway"}},
		Field{Name: "customerAcquisitionCost", Kind: KindNumber, Paths: []string{"cac", "CAC", "customer_acquisition_cost"}},
		Field{Name: "lifetimeValue", Kind: KindNumber, Paths: []string{"ltv", "LTV", "clv", "lifetime_value", "customer_lifetime_value"}},
		Field{Name: "period", Kind: KindString, Paths: []string{"date", "month", "reporting_period", "as_of"}},
	)
}

// Extend returns a copy of m where the named field gains extra source paths.
// Unknown names are appended as new fields; an empty kind means number.
// The receiver is never modified.
func (m FieldMap) Extend(name string, kind FieldKind, paths ...string) FieldMap {
	name = strings.TrimSpace(name)
	if name == "" {
		return m
	}
	fields := make([]Field, len(m.fields), len(m.fields)+1)
	for i, f := range m.fields {
		f.Paths = append([]string(nil), f.Paths...)
		fields[i] = f
	}

	for i := range fields {
		if fields[i].Name == name {
			if kind != "" {
				fields[i].Kind = kind
			}
			fields[i].Paths = append(fields[i].Paths, paths...)
			return FieldMap{fields: fields}
		}
	}

	if kind == "" {
		kind = KindNumber
	}
	fields = append(fields, Field{Name: name, Kind: kind, Paths: append([]string(nil), paths...)})
	return FieldMap{fields: fields}
}

func (m FieldMap) Fields() []Field {
	out := make([]Field, len(m.fields))
	copy(out, m.fields)
	return out
}

func (m FieldMap) Len() int { return len(m.fields) }

// topLevelKeys is the set of record keys that some candidate path reads.
func (m FieldMap) topLevelKeys() map[string]bool {
	keys := map[string]bool{}
	for _, f := range m.fields {
		for _, p := range f.candidates() {
			keys[firstSegment(p)] = true
		}
	}
	return keys
}

// firstSegment returns the unescaped first component of a gjson path.
func firstSegment(path string) string {
	var b strings.Builder
	for i := 0; i < len(path); i++ {
		c := path[i]
		if c == '\\' && i+1 < len(path) {
			i++
			b.WriteByte(path[i])
			continue
		}
		if c == '.' || c == '|' || c == '#' {
			break
		}
		b.WriteByte(c)
	}
	return b.String()
}
