package pipeline

import (
	"fmt"
	"sort"

	"github.com/stonebriar/sagerelay/internal/config"
)

// Builder produces a pipeline definition from configuration and an execution
// role.
type Builder func(cfg *config.PipelineConfig, roleARN string) (*Definition, error)

// ModuleMarketing is the registry name of the marketing classification
// pipeline.
const ModuleMarketing = "marketing"

// builders maps module names to their definition builders. Selecting a
// pipeline goes through this table so an unknown name fails before any API
// call is made.
var builders = map[string]Builder{
	ModuleMarketing: Marketing,
}

// Build resolves a module name and constructs its definition.
func Build(name string, cfg *config.PipelineConfig, roleARN string) (*Definition, error) {
	builder, ok := builders[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %v)", ErrUnknownModule, name, Modules())
	}
	return builder(cfg, roleARN)
}

// Modules lists the registered module names in sorted order.
func Modules() []string {
	names := make([]string, 0, len(builders))
	for name := range builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
