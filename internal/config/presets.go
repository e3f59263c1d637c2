package config

import "sort"

const bump = "exp(-((x - x0)**2) / (2*width**2))"

// Presets are the worked examples shipped with the CLI. Each call returns a
// fresh configuration.
var Presets = map[string]func() *Config{
	"advection": func() *Config {
		cfg := DefaultConfig()
		cfg.Description = "transport of a Gaussian bump: u_t + c u_x = 0"
		cfg.Exact = map[string]Expr{"u": "exp(-((x - c*t - x0)**2) / (2*width**2))"}
		return cfg
	},
	"friction": func() *Config {
		cfg := DefaultConfig()
		cfg.Name = "friction"
		cfg.Description = "advection with a friction term: u_t + c u_x = -alpha u"
		cfg.Schemes[0].SourceTerms = map[string]Expr{"u": "-alpha*u"}
		cfg.SetParam("alpha", 0.5)
		cfg.Exact = map[string]Expr{"u": "exp(-((x - c*t - x0)**2) / (2*width**2)) * exp(-alpha*t)"}
		return cfg
	},
	"source_tx": func() *Config {
		cfg := DefaultConfig()
		cfg.Name = "source_tx"
		cfg.Description = "advection with a space and time dependent source: u_t + c u_x = t x"
		cfg.Box.Label = Labels{1, 2}
		cfg.Schemes[0].SourceTerms = map[string]Expr{"u": "t*x"}
		exact := "exp(-((x - c*t - x0)**2) / (2*width**2)) + t*t*x/2 - c*t**3/6"
		cfg.BoundaryConditions = map[int]BoundaryConfig{
			1: {Method: MethodAntiBounceBack, Value: Expr(exact)},
			2: {Method: MethodNeumann},
		}
		cfg.Exact = map[string]Expr{"u": Expr(exact)}
		return cfg
	},
	"wave": func() *Config {
		cfg := DefaultConfig()
		cfg.Name = "wave"
		cfg.Description = "D1Q2Q2 scheme for the wave equation: u_tt = c^2 u_xx"
		relax := Expr("1/(sigma + 0.5)")
		cfg.Schemes = []SchemeConfig{
			{
				Velocities:           []int{1, 2},
				ConservedMoments:     []string{"u"},
				Polynomials:          []Expr{"1", "LA*X"},
				Equilibrium:          []Expr{"u", "v"},
				RelaxationParameters: []Expr{"0", relax},
				Init:                 map[string]Expr{"u": bump},
			},
			{
				Velocities:           []int{1, 2},
				ConservedMoments:     []string{"v"},
				Polynomials:          []Expr{"1", "LA*X"},
				Equilibrium:          []Expr{"v", "c**2*u"},
				RelaxationParameters: []Expr{"0", relax},
			},
		}
		cfg.Parameters = map[string]float64{"LA": 1, "c": 0.2, "sigma": 1/1.9 - 0.5, "x0": 0.5, "width": 0.05}
		cfg.Exact = map[string]Expr{
			"u": "(exp(-((x - c*t - x0)**2) / (2*width**2)) + exp(-((x + c*t - x0)**2) / (2*width**2))) / 2",
		}
		return cfg
	},
	"bounded": func() *Config {
		cfg := DefaultConfig()
		cfg.Name = "bounded"
		cfg.Description = "transport between two reflecting walls"
		cfg.Box.Label = Labels{0}
		cfg.BoundaryConditions = map[int]BoundaryConfig{
			0: {Method: MethodBounceBack},
		}
		cfg.SetParam("c", 0.5)
		cfg.Duration = 2
		return cfg
	},
}

func GetPreset(name string) *Config {
	fn, ok := Presets[name]
	if !ok {
		return nil
	}
	return fn()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
