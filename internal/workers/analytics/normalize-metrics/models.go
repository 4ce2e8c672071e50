// internal/workers/analytics/normalize-metrics/models.go
package normalizemetrics

import "encoding/json"

// Input carries the raw payload either as embedded JSON or as a JSON
// document encoded in a string. With UseCached the stored normalization for
// CampaignID and Source is served when present, and Payload may be omitted.
type Input struct {
	CampaignID    string          `json:"campaignId,omitempty"`
	Source        string          `json:"source,omitempty"`
	Payload       json.RawMessage `json:"payload"`
	IncludeReport bool            `json:"includeReport,omitempty"`
	UseCached     bool            `json:"useCached,omitempty"`
}

type Output struct {
	CampaignID         string      `json:"campaignId,omitempty"`
	Source             string      `json:"source,omitempty"`
	Metrics            interface{} `json:"metrics"`
	MappingReport      interface{} `json:"mappingReport,omitempty"`
	UnrecognizedFields []string    `json:"unrecognizedFields,omitempty"`
	RecordCount        int         `json:"recordCount"`
	Cached             bool        `json:"cached"`
	FromCache          bool        `json:"fromCache"`
}

// cachedResult is the stored form written by analytics.Result.MarshalJSON.
type cachedResult struct {
	Metrics            json.RawMessage `json:"metrics"`
	MappingReport      json.RawMessage `json:"mappingReport"`
	UnrecognizedFields []string        `json:"unrecognizedFields"`
}
