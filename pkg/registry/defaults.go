package registry

import (
	"github.com/chilammps/vizflow/pkg/stages/colorcode"
	"github.com/chilammps/vizflow/pkg/stages/deform"
	"github.com/chilammps/vizflow/pkg/stages/sieve"
)

// RegisterDefaults registers all built-in stage factories.
func (r *Registry) RegisterDefaults() {
	r.RegisterStage(colorcode.NewFactory())
	r.RegisterStage(deform.NewFactory())
	r.RegisterStage(sieve.NewFactory())
}
