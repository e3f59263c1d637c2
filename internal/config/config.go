package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultSpaceStep = 1.0 / 128
	DefaultDuration  = 1.0

	GeneratorSerial   = "serial"
	GeneratorParallel = "parallel"

	MethodBounceBack     = "bounce_back"
	MethodAntiBounceBack = "anti_bounce_back"
	MethodNeumann        = "neumann"

	LabelPeriodic = -1
)

var (
	ODESolvers = []string{"euler", "heun", "middle_point", "rk4"}
	Methods    = []string{MethodBounceBack, MethodAntiBounceBack, MethodNeumann}

	ErrInvalid = errors.New("config: invalid configuration")
)

// Expr is a scalar expression kept as source text. In YAML it may be
// written either as a number or as a string.
type Expr string

func (e *Expr) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a scalar expression", node.Line)
	}
	*e = Expr(node.Value)
	return nil
}

func (e Expr) MarshalYAML() (any, error) {
	if v, err := strconv.ParseFloat(string(e), 64); err == nil {
		return v, nil
	}
	return string(e), nil
}

func (e Expr) String() string { return string(e) }

// Labels holds the labels of the box ends. A single integer labels both ends.
type Labels []int

func (l *Labels) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var v int
		if err := node.Decode(&v); err != nil {
			return err
		}
		*l = Labels{v}
		return nil
	case yaml.SequenceNode:
		var vs []int
		if err := node.Decode(&vs); err != nil {
			return err
		}
		*l = Labels(vs)
		return nil
	default:
		return fmt.Errorf("line %d: label must be an integer or a list", node.Line)
	}
}

// Pair returns the left and right labels.
func (l Labels) Pair() [2]int {
	switch len(l) {
	case 0:
		return [2]int{0, 0}
	case 1:
		return [2]int{l[0], l[0]}
	default:
		return [2]int{l[0], l[1]}
	}
}

type Box struct {
	X     [2]float64 `yaml:"x"`
	Label Labels     `yaml:"label,omitempty"`
}

type SchemeConfig struct {
	Velocities           []int           `yaml:"velocities"`
	ConservedMoments     []string        `yaml:"conserved_moments"`
	Polynomials          []Expr          `yaml:"polynomials"`
	Equilibrium          []Expr          `yaml:"equilibrium"`
	RelaxationParameters []Expr          `yaml:"relaxation_parameters"`
	SourceTerms          map[string]Expr `yaml:"source_terms,omitempty"`
	Init                 map[string]Expr `yaml:"init,omitempty"`
}

type BoundaryConfig struct {
	Method string `yaml:"method"`
	Value  Expr   `yaml:"value,omitempty"`
}

type Config struct {
	Name               string                 `yaml:"name,omitempty"`
	Description        string                 `yaml:"description,omitempty"`
	Box                Box                    `yaml:"box"`
	SpaceStep          float64                `yaml:"space_step"`
	SchemeVelocity     Expr                   `yaml:"scheme_velocity"`
	Schemes            []SchemeConfig         `yaml:"schemes"`
	Parameters         map[string]float64     `yaml:"parameters,omitempty"`
	Generator          string                 `yaml:"generator,omitempty"`
	ODESolver          string                 `yaml:"ode_solver,omitempty"`
	BoundaryConditions map[int]BoundaryConfig `yaml:"boundary_conditions,omitempty"`
	Duration           float64                `yaml:"duration"`
	SampleEvery        int                    `yaml:"sample_every,omitempty"`
	Exact              map[string]Expr        `yaml:"exact,omitempty"`
}

// DefaultConfig is a periodic D1Q2 transport scheme of a Gaussian bump.
func DefaultConfig() *Config {
	return &Config{
		Name:           "advection",
		Box:            Box{X: [2]float64{0, 1}, Label: Labels{LabelPeriodic}},
		SpaceStep:      DefaultSpaceStep,
		SchemeVelocity: "LA",
		Schemes: []SchemeConfig{{
			Velocities:           []int{1, 2},
			ConservedMoments:     []string{"u"},
			Polynomials:          []Expr{"1", "LA*X"},
			Equilibrium:          []Expr{"u", "c*u"},
			RelaxationParameters: []Expr{"0", "s"},
			Init:                 map[string]Expr{"u": bump},
		}},
		Parameters: map[string]float64{"LA": 1, "c": 0.25, "s": 1.9, "x0": 0.3, "width": 0.05},
		Generator:  GeneratorSerial,
		ODESolver:  "rk4",
		Duration:   DefaultDuration,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes a YAML document. Fields that are absent keep the values of
// an empty configuration, apart from the duration, space step and solver
// defaults.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{
		SpaceStep: DefaultSpaceStep,
		Duration:  DefaultDuration,
		Generator: GeneratorSerial,
		ODESolver: "rk4",
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := cfg.Marshal()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// Clone returns a deep copy through a YAML round trip.
func (c *Config) Clone() *Config {
	data, err := c.Marshal()
	if err != nil {
		panic(fmt.Sprintf("config: clone: %v", err))
	}
	out, err := Parse(data)
	if err != nil {
		panic(fmt.Sprintf("config: clone: %v", err))
	}
	return out
}

// ConservedMoments lists the conserved moments of every scheme in order.
func (c *Config) ConservedMoments() []string {
	var names []string
	for _, s := range c.Schemes {
		names = append(names, s.ConservedMoments...)
	}
	return names
}

// ParameterNames returns the sorted parameter names.
func (c *Config) ParameterNames() []string {
	names := make([]string, 0, len(c.Parameters))
	for k := range c.Parameters {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// SetParam overrides one parameter.
func (c *Config) SetParam(name string, value float64) {
	if c.Parameters == nil {
		c.Parameters = make(map[string]float64)
	}
	c.Parameters[name] = value
}

// Validate reports every structural problem of the configuration at once.
func (c *Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if c.SpaceStep <= 0 {
		add("space_step must be positive, got %g", c.SpaceStep)
	}
	if c.Box.X[1] <= c.Box.X[0] {
		add("box: x must be increasing, got %v", c.Box.X)
	}
	if c.Duration <= 0 {
		add("duration must be positive, got %g", c.Duration)
	}
	if strings.TrimSpace(string(c.SchemeVelocity)) == "" {
		add("scheme_velocity is required")
	}
	if len(c.Schemes) == 0 {
		add("at least one scheme is required")
	}

	conserved := make(map[string]int)
	for i, s := range c.Schemes {
		n := len(s.Velocities)
		if n == 0 {
			add("scheme %d: velocities are required", i)
		}
		if len(s.Polynomials) != n {
			add("scheme %d: %d polynomials for %d velocities", i, len(s.Polynomials), n)
		}
		if len(s.Equilibrium) != n {
			add("scheme %d: %d equilibrium values for %d velocities", i, len(s.Equilibrium), n)
		}
		if len(s.RelaxationParameters) != n {
			add("scheme %d: %d relaxation parameters for %d velocities", i, len(s.RelaxationParameters), n)
		}
		if len(s.ConservedMoments) == 0 {
			add("scheme %d: at least one conserved moment is required", i)
		}
		for _, name := range s.ConservedMoments {
			if prev, ok := conserved[name]; ok {
				add("scheme %d: conserved moment %q already declared by scheme %d", i, name, prev)
				continue
			}
			conserved[name] = i
		}
	}
	for i, s := range c.Schemes {
		for _, name := range sortedKeys(s.SourceTerms) {
			if _, ok := conserved[name]; !ok {
				add("scheme %d: source term for unknown moment %q", i, name)
			}
		}
		for _, name := range sortedKeys(s.Init) {
			if _, ok := conserved[name]; !ok {
				add("scheme %d: init for unknown moment %q", i, name)
			}
		}
	}
	for _, name := range sortedKeys(c.Exact) {
		if _, ok := conserved[name]; !ok {
			add("exact solution for unknown moment %q", name)
		}
	}

	switch c.Generator {
	case "", GeneratorSerial, GeneratorParallel:
	default:
		add("generator must be %q or %q, got %q", GeneratorSerial, GeneratorParallel, c.Generator)
	}
	if c.ODESolver != "" && !contains(ODESolvers, c.ODESolver) {
		add("ode_solver must be one of %v, got %q", ODESolvers, c.ODESolver)
	}

	if len(c.Box.Label) > 2 {
		add("box: label takes one value or a pair, got %d values", len(c.Box.Label))
	}
	labels := c.Box.Label.Pair()
	if (labels[0] == LabelPeriodic) != (labels[1] == LabelPeriodic) {
		add("box: periodic label must be set on both ends, got %v", labels)
	}
	for _, l := range labels {
		if l < 0 {
			continue
		}
		bc, ok := c.BoundaryConditions[l]
		if !ok {
			add("boundary_conditions: no method for label %d", l)
			continue
		}
		if !contains(Methods, bc.Method) {
			add("boundary_conditions: label %d: unknown method %q", l, bc.Method)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

func sortedKeys(m map[string]Expr) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
