package experiment

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"github.com/san-kum/lbmsim/internal/config"
	"github.com/san-kum/lbmsim/internal/integrators"
)

type Registry struct {
	presets map[string]func() *config.Config
	solvers map[string]func() integrators.Solver
}

func NewRegistry() *Registry {
	r := &Registry{
		presets: make(map[string]func() *config.Config),
		solvers: make(map[string]func() integrators.Solver),
	}

	for name, fn := range config.Presets {
		r.presets[name] = fn
	}

	r.solvers["euler"] = func() integrators.Solver { return integrators.NewEuler() }
	r.solvers["heun"] = func() integrators.Solver { return integrators.NewHeun() }
	r.solvers["middle_point"] = func() integrators.Solver { return integrators.NewMiddlePoint() }
	r.solvers["rk4"] = func() integrators.Solver { return integrators.NewRK4() }

	return r
}

func (r *Registry) GetPreset(name string) (*config.Config, error) {
	fn, ok := r.presets[name]
	if !ok {
		return nil, fmt.Errorf("unknown preset: %s", name)
	}
	return fn(), nil
}

func (r *Registry) GetSolver(name string) (integrators.Solver, error) {
	fn, ok := r.solvers[name]
	if !ok {
		return nil, fmt.Errorf("unknown ode solver: %s", name)
	}
	return fn(), nil
}

// Resolve loads arg as a YAML file when it exists and as a preset name
// otherwise.
func (r *Registry) Resolve(arg string) (*config.Config, error) {
	if _, err := os.Stat(arg); err == nil {
		return config.Load(arg)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return r.GetPreset(arg)
}

func (r *Registry) ListPresets() []string {
	return sortedNames(r.presets)
}

func (r *Registry) ListSolvers() []string {
	return sortedNames(r.solvers)
}

func sortedNames[T any](m map[string]T) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
