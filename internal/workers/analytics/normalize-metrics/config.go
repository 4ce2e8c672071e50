// internal/workers/analytics/normalize-metrics/config.go
package normalizemetrics

import (
	"time"

	"campaign-workers/internal/analytics"
	"campaign-workers/internal/common/config"
)

type Config struct {
	Timeout  time.Duration
	FieldMap analytics.FieldMap
}

func LoadConfig(cfg *config.Config) *Config {
	wcfg := config.GetWorkerConfig(cfg, TaskType)
	return &Config{
		Timeout:  config.GetDuration(wcfg.Timeout),
		FieldMap: FieldMapFrom(cfg.Analytics.FieldMap),
	}
}

// FieldMapFrom extends the default field map with configured source paths.
func FieldMapFrom(mappings []config.FieldMapping) analytics.FieldMap {
	fm := analytics.DefaultFieldMap()
	for _, m := range mappings {
		fm = fm.Extend(m.Field, analytics.FieldKind(m.Kind), m.Paths...)
	}
	return fm
}
