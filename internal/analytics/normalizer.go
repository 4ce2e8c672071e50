// internal/analytics/normalizer.go
package analytics

import (
	"encoding/json"
	"errors"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Unmapped marks a field with no usable source value in a mapping report.
const Unmapped = "unmapped"

var ErrInvalidPayload = errors.New("invalid metrics payload")

// Record holds normalized values: float64 for number fields, string for
// string fields, nil when no source value was found.
type Record map[string]any

// Report maps each internal field to the external path it was read from.
type Report map[string]string

type Result struct {
	Records []Record
	// Reports is nil unless WithReport was passed.
	Reports      []Report
	Unrecognized []string
	// Multiple is set when the payload carried an array of records, even a
	// one-element one.
	Multiple bool
}

// Metrics returns the single record for object input, else the slice.
func (r *Result) Metrics() any {
	if !r.Multiple && len(r.Records) == 1 {
		return r.Records[0]
	}
	return r.Records
}

func (r *Result) MappingReport() any {
	if r.Reports == nil {
		return nil
	}
	if !r.Multiple && len(r.Reports) == 1 {
		return r.Reports[0]
	}
	return r.Reports
}

func (r *Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Metrics            any      `json:"metrics"`
		MappingReport      any      `json:"mappingReport,omitempty"`
		UnrecognizedFields []string `json:"unrecognizedFields,omitempty"`
	}{
		Metrics:            r.Metrics(),
		MappingReport:      r.MappingReport(),
		UnrecognizedFields: r.Unrecognized,
	})
}

type options struct {
	report bool
}

type Option func(*options)

// WithReport asks Normalize to fill Result.Reports.
func WithReport() Option {
	return func(o *options) { o.report = true }
}

// Normalizer maps metrics payloads of varying shape onto a FieldMap. It holds
// no mutable state and is safe for concurrent use.
type Normalizer struct {
	fields FieldMap
	known  map[string]bool
}

func NewNormalizer(fields FieldMap) *Normalizer {
	if fields.Len() == 0 {
		fields = DefaultFieldMap()
	}
	return &Normalizer{fields: fields, known: fields.topLevelKeys()}
}

func (n *Normalizer) FieldMap() FieldMap {
	return n.fields
}

// Normalize accepts a single object, an array of objects, or either of those
// under a top-level "data" key. Only malformed JSON is an error; missing or
// unparsable fields become nil.
func (n *Normalizer) Normalize(payload []byte, opts ...Option) (*Result, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	if !gjson.ValidBytes(payload) {
		return nil, ErrInvalidPayload
	}

	records, multiple := splitRecords(gjson.ParseBytes(payload))

	res := &Result{Records: make([]Record, 0, len(records)), Multiple: multiple}
	if o.report {
		res.Reports = make([]Report, 0, len(records))
	}

	unrecognized := map[string]bool{}
	for _, raw := range records {
		rec, rep := n.mapRecord(raw)
		res.Records = append(res.Records, rec)
		if o.report {
			res.Reports = append(res.Reports, rep)
		}
		if !raw.IsObject() {
			continue
		}
		raw.ForEach(func(key, _ gjson.Result) bool {
			if !n.known[key.String()] {
				unrecognized[key.String()] = true
			}
			return true
		})
	}

	for k := range unrecognized {
		res.Unrecognized = append(res.Unrecognized, k)
	}
	sort.Strings(res.Unrecognized)
	return res, nil
}

func splitRecords(root gjson.Result) ([]gjson.Result, bool) {
	if root.IsObject() {
		if data := root.Get("data"); data.IsObject() || data.IsArray() {
			root = data
		}
	}

	if root.IsArray() {
		var out []gjson.Result
		for _, item := range root.Array() {
			if item.IsObject() {
				out = append(out, item)
			}
		}
		return out, true
	}

	// Scalars still yield one record with every field unmapped.
	return []gjson.Result{root}, false
}

func (n *Normalizer) mapRecord(raw gjson.Result) (Record, Report) {
	rec := make(Record, n.fields.Len())
	rep := make(Report, n.fields.Len())

	for _, f := range n.fields.fields {
		rec[f.Name] = nil
		rep[f.Name] = Unmapped
		if !raw.IsObject() {
			continue
		}
		for _, path := range f.candidates() {
			v, ok := coerce(f.Kind, raw.Get(path))
			if !ok {
				continue
			}
			rec[f.Name] = v
			rep[f.Name] = path
			break
		}
	}
	return rec, rep
}

func coerce(kind FieldKind, v gjson.Result) (any, bool) {
	switch kind {
	case KindString:
		switch v.Type {
		case gjson.String:
			return v.Str, true
		case gjson.Number:
			return v.Raw, true
		}
	default:
		switch v.Type {
		case gjson.Number:
			f := v.Float()
			if math.IsInf(f, 0) || math.IsNaN(f) {
				return nil, false
			}
			return f, true
		case gjson.String:
			f, ok := parseNumeric(v.Str)
			if ok {
				return f, true
			}
		}
	}
	return nil, false
}

var numericNoise = strings.NewReplacer("$", "", ",", "", "%", "", " ", "")

// parseNumeric reads strings such as "$1,200.50" or "12%".
func parseNumeric(s string) (float64, bool) {
	cleaned := numericNoise.Replace(strings.TrimSpace(s))
	if cleaned == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

var defaultNormalizer = NewNormalizer(DefaultFieldMap())

// Normalize runs the default field table.
func Normalize(payload []byte, opts ...Option) (*Result, error) {
	return defaultNormalizer.Normalize(payload, opts...)
}
