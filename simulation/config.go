package simulation

import (
	"fmt"
	"io"
	"strings"

	"fortio.org/safecast"
	"github.com/BurntSushi/toml"

	"github.com/njchilds90/gobamm"
	"github.com/njchilds90/gobamm/discretisation"
	"github.com/njchilds90/gobamm/discretisation/fem"
	"github.com/njchilds90/gobamm/mesh"
	"github.com/njchilds90/gobamm/models"
	"github.com/njchilds90/gobamm/parameters"
)

// Config is a run file:
//
//	[model]
//	name = "reaction-diffusion"
//
//	[mesh]
//	method = "finite-volume"
//	points = { "negative electrode" = 20, separator = 10 }
//
//	[solver]
//	method = "bdf1"
//	tolerance = 1e-6
//
//	[output]
//	stop = 1.0
//	times = 50
//	variables = ["c_e"]
//
//	[parameters]
//	file = "cell.csv"
//	overrides = { "Separator width" = 0.3 }
type Config struct {
	Model      ModelConfig      `toml:"model"`
	Mesh       MeshConfig       `toml:"mesh"`
	Solver     SolverConfig     `toml:"solver"`
	Output     OutputConfig     `toml:"output"`
	Parameters ParametersConfig `toml:"parameters"`
}

type ModelConfig struct {
	Name string `toml:"name"`
}

type MeshConfig struct {
	// Method is "finite-volume" (default) or "finite-element".
	Method string `toml:"method"`
	// Points overrides the number of points per domain.
	Points map[string]int64 `toml:"points"`
}

type SolverConfig struct {
	Method    string  `toml:"method"`
	Tolerance float64 `toml:"tolerance"`
}

type OutputConfig struct {
	Start     float64  `toml:"start"`
	Stop      float64  `toml:"stop"`
	Times     int64    `toml:"times"`
	Path      string   `toml:"path"`
	Variables []string `toml:"variables"`
	// Format is "csv" (default), "json" or "msgpack".
	Format string `toml:"format"`
}

type ParametersConfig struct {
	File      string         `toml:"file"`
	Overrides map[string]any `toml:"overrides"`
}

// LoadConfig reads a run file.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if err := validate(meta, cfg); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// DecodeConfig reads a run file from r.
func DecodeConfig(r io.Reader) (Config, error) {
	var cfg Config
	meta, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse TOML: %w", err)
	}
	if err := validate(meta, cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validate(meta toml.MetaData, cfg Config) error {
	if !meta.IsDefined("model") {
		return fmt.Errorf("%w: missing [model]", gobamm.ErrConfiguration)
	}
	if !meta.IsDefined("model", "name") || strings.TrimSpace(cfg.Model.Name) == "" {
		return fmt.Errorf("%w: missing [model].name", gobamm.ErrConfiguration)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("%w: unknown keys %v", gobamm.ErrConfiguration, undecoded)
	}
	switch cfg.Output.Format {
	case "", "csv", "json", "msgpack":
	default:
		return fmt.Errorf("%w: unknown [output].format %q", gobamm.ErrConfiguration, cfg.Output.Format)
	}
	if cfg.Output.Times < 0 {
		return fmt.Errorf("%w: [output].times must be positive", gobamm.ErrConfiguration)
	}
	return nil
}

// Build resolves cfg against the model's defaults and returns the
// simulation with its output times.
func (cfg Config) Build(opts ...Option) (*Simulation, []float64, error) {
	model, err := models.Get(cfg.Model.Name)
	if err != nil {
		return nil, nil, err
	}

	var extra []Option
	if cfg.Parameters.File != "" || len(cfg.Parameters.Overrides) > 0 {
		var p *parameters.Values
		if cfg.Parameters.File != "" {
			p, err = parameters.Load(cfg.Parameters.File, parameters.WithFunctions(models.Functions()))
		} else {
			p, err = model.Defaults.Parameters()
		}
		if err != nil {
			return nil, nil, err
		}
		if err := p.Update(cfg.Parameters.Overrides); err != nil {
			return nil, nil, err
		}
		extra = append(extra, WithParameters(p))
	}

	if len(cfg.Mesh.Points) > 0 {
		pts, err := submeshPts(model.Defaults.SubmeshPts, cfg.Mesh.Points)
		if err != nil {
			return nil, nil, err
		}
		extra = append(extra, WithSubmeshPts(pts))
	}

	switch cfg.Mesh.Method {
	case "", "finite-volume":
	case "finite-element":
		fe, err := discretisation.NewFiniteElement(fem.P1{})
		if err != nil {
			return nil, nil, err
		}
		extra = append(extra, WithSpatialMethod(fe))
	default:
		return nil, nil, fmt.Errorf("%w: unknown spatial method %q", gobamm.ErrConfiguration, cfg.Mesh.Method)
	}

	if cfg.Solver.Method != "" || cfg.Solver.Tolerance != 0 {
		method, tol := model.Defaults.Solver, model.Defaults.Tolerance
		if cfg.Solver.Method != "" {
			method = cfg.Solver.Method
		}
		if cfg.Solver.Tolerance != 0 {
			tol = cfg.Solver.Tolerance
		}
		extra = append(extra, WithSolver(method, tol))
	}

	times, err := cfg.Output.times()
	if err != nil {
		return nil, nil, err
	}
	sim, err := New(model, append(extra, opts...)...)
	if err != nil {
		return nil, nil, err
	}
	return sim, times, nil
}

// submeshPts overrides the point counts of defaults. Particle domains take
// points in r and all others in x.
func submeshPts(defaults map[string]map[string]int, points map[string]int64) (map[string]map[string]int, error) {
	out := map[string]map[string]int{}
	for domain, vars := range defaults {
		out[domain] = map[string]int{}
		for v, n := range vars {
			out[domain][v] = n
		}
	}
	for domain, n := range points {
		if _, ok := gobamm.Rank(domain); !ok {
			return nil, fmt.Errorf("%w: unknown mesh domain %q", gobamm.ErrDomain, domain)
		}
		npts, err := safecast.Conv[int](n)
		if err != nil || npts < 1 {
			return nil, fmt.Errorf("%w: bad point count %d for %q", gobamm.ErrConfiguration, n, domain)
		}
		v := mesh.X
		if domain == gobamm.NegativeParticle || domain == gobamm.PositiveParticle {
			v = mesh.R
		}
		out[domain] = map[string]int{v: npts}
	}
	return out, nil
}

// times is the output grid; unset fields default to 50 times on [0, 1].
func (o OutputConfig) times() ([]float64, error) {
	stop := o.Stop
	if stop == 0 {
		stop = 1
	}
	n, err := safecast.Conv[int](o.Times)
	if err != nil {
		return nil, fmt.Errorf("%w: [output].times: %v", gobamm.ErrConfiguration, err)
	}
	if n == 0 {
		n = 50
	}
	if !(stop > o.Start) || n < 2 {
		return nil, fmt.Errorf("%w: output needs start < stop and at least two times", gobamm.ErrConfiguration)
	}
	return span(n, o.Start, stop), nil
}
