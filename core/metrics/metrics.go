package metrics

import (
	"fmt"

	"github.com/huangsam/rcqm/internal/contract"
	"github.com/huangsam/rcqm/schema"
)

// New builds the metric selected by name. The tool runner and cache are
// only used by metrics that shell out; cache may be nil.
func New(name schema.MetricName, cfg *contract.Config, runner contract.ToolRunner, cache contract.CacheStore) (contract.Metric, error) {
	switch name {
	case schema.DocumentationMetric:
		if runner == nil {
			runner = contract.NewLocalToolRunner(cfg.DocTool, cfg.DocToolTimeout)
		}
		return NewDocumentation(cfg, runner, cache), nil
	case schema.TagsMetric:
		return NewTags(cfg)
	default:
		return nil, fmt.Errorf("unknown metric: %s", name)
	}
}
