package simulation

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/njchilds90/gobamm"
	"github.com/njchilds90/gobamm/discretisation"
	"github.com/njchilds90/gobamm/internal/logging"
	"github.com/njchilds90/gobamm/mesh"
	"github.com/njchilds90/gobamm/models"
	"github.com/njchilds90/gobamm/parameters"
	"github.com/njchilds90/gobamm/solver"
)

// Simulation holds a model with everything needed to solve it. Settings not
// given as options come from the model's defaults.
type Simulation struct {
	name       string
	model      *models.Model
	parameters *parameters.Values
	geometry   mesh.Geometry
	mesh       *mesh.Mesh
	disc       *discretisation.Discretisation
	solver     *solver.Solver
	logger     *slog.Logger
}

type settings struct {
	name         string
	parameters   *parameters.Values
	geometry     mesh.Geometry
	submeshTypes map[string]mesh.Generator
	submeshPts   map[string]map[string]int
	method       discretisation.SpatialMethod
	solverName   string
	tolerance    float64
	solverOpts   []solver.Option
	logger       *slog.Logger
}

type Option func(*settings)

func WithName(name string) Option { return func(s *settings) { s.name = name } }

func WithParameters(p *parameters.Values) Option {
	return func(s *settings) { s.parameters = p }
}

func WithGeometry(g mesh.Geometry) Option { return func(s *settings) { s.geometry = g } }

func WithSubmeshTypes(types map[string]mesh.Generator) Option {
	return func(s *settings) { s.submeshTypes = types }
}

func WithSubmeshPts(pts map[string]map[string]int) Option {
	return func(s *settings) { s.submeshPts = pts }
}

func WithSpatialMethod(m discretisation.SpatialMethod) Option {
	return func(s *settings) { s.method = m }
}

// WithSolver chooses the integrator by registered name and tolerance.
func WithSolver(method string, tol float64) Option {
	return func(s *settings) { s.solverName, s.tolerance = method, tol }
}

// WithSolverOptions passes options, such as metrics, to the integrator.
func WithSolverOptions(opts ...solver.Option) Option {
	return func(s *settings) { s.solverOpts = append(s.solverOpts, opts...) }
}

// WithLogger sets the logger shared by every stage.
func WithLogger(l *slog.Logger) Option { return func(s *settings) { s.logger = l } }

// New processes the geometry, builds the mesh and sets up the
// discretisation and integrator.
func New(model *models.Model, opts ...Option) (*Simulation, error) {
	if model == nil || model.Model == nil {
		return nil, fmt.Errorf("%w: simulation needs a model", gobamm.ErrConfiguration)
	}
	d := model.Defaults
	s := settings{
		name:         "unnamed",
		geometry:     d.Geometry,
		submeshTypes: d.SubmeshTypes,
		submeshPts:   d.SubmeshPts,
		solverName:   d.Solver,
		tolerance:    d.Tolerance,
		logger:       logging.NewNop(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	if s.parameters == nil {
		if d.Parameters == nil {
			return nil, fmt.Errorf("%w: model %q has no default parameters", gobamm.ErrConfiguration, model.Name)
		}
		p, err := d.Parameters(parameters.WithLogger(s.logger))
		if err != nil {
			return nil, err
		}
		s.parameters = p
	}

	geometry, err := s.parameters.ProcessGeometry(s.geometry)
	if err != nil {
		return nil, fmt.Errorf("geometry: %w", err)
	}
	m, err := mesh.New(geometry, s.submeshTypes, s.submeshPts)
	if err != nil {
		return nil, fmt.Errorf("mesh: %w", err)
	}
	disc, err := discretisation.New(m, s.method, discretisation.WithLogger(s.logger))
	if err != nil {
		return nil, err
	}
	slv, err := solver.New(s.solverName, s.tolerance, append([]solver.Option{solver.WithLogger(s.logger)}, s.solverOpts...)...)
	if err != nil {
		return nil, err
	}
	return &Simulation{
		name:       s.name,
		model:      model,
		parameters: s.parameters,
		geometry:   geometry,
		mesh:       m,
		disc:       disc,
		solver:     slv,
		logger:     s.logger,
	}, nil
}

func (s *Simulation) String() string { return s.name }

func (s *Simulation) Model() *models.Model                           { return s.model }
func (s *Simulation) Parameters() *parameters.Values                 { return s.parameters }
func (s *Simulation) Mesh() *mesh.Mesh                               { return s.mesh }
func (s *Simulation) Discretisation() *discretisation.Discretisation { return s.disc }
func (s *Simulation) Solver() *solver.Solver                         { return s.solver }

// DefaultTimes is 50 output times on [0, 1].
func DefaultTimes() []float64 { return span(50, 0, 1) }

// span returns n evenly spaced times from start to exactly stop.
func span(n int, start, stop float64) []float64 {
	times := floats.Span(make([]float64, n), start, stop)
	times[n-1] = stop
	return times
}

// Result is a solved simulation.
type Result struct {
	*solver.Solution
	Model       string
	Discretised *discretisation.Discretised
	Elapsed     time.Duration
}

// Run substitutes parameters, discretises and solves. nil tEval means
// DefaultTimes.
func (s *Simulation) Run(ctx context.Context, tEval []float64) (*Result, error) {
	if tEval == nil {
		tEval = DefaultTimes()
	}
	timer := NewTimer()
	processed, err := s.parameters.ProcessModel(s.model.Model)
	if err != nil {
		return nil, fmt.Errorf("%s: parameters: %w", s.name, err)
	}
	disc, err := s.disc.ProcessModel(processed)
	if err != nil {
		return nil, fmt.Errorf("%s: discretisation: %w", s.name, err)
	}
	s.logger.Debug("solving", "simulation", s.name, "unknowns", disc.Size(), "method", s.solver.Method(), "times", len(tEval))
	sol, err := s.solver.Solve(ctx, disc, tEval)
	if err != nil {
		return nil, fmt.Errorf("%s: solver: %w", s.name, err)
	}
	r := &Result{Solution: sol, Model: s.model.Name, Discretised: disc, Elapsed: timer.Time()}
	s.logger.Info("simulation finished", "simulation", s.name, "termination", sol.Termination, "elapsed", Format(r.Elapsed.Seconds()))
	return r, nil
}

// Variable evaluates a named output variable at every output time.
func (r *Result) Variable(name string) (*mat.Dense, error) {
	expr, ok := r.Discretised.Variables[name]
	if !ok {
		names := make([]string, 0, len(r.Discretised.Variables))
		for n := range r.Discretised.Variables {
			names = append(names, n)
		}
		slices.Sort(names)
		return nil, fmt.Errorf("%w: unknown variable %q (known: %v)", gobamm.ErrConfiguration, name, names)
	}
	return r.Observe(expr)
}

// WriteCSV writes one row per output time: t followed by the named
// variables, or by the whole state when no names are given.
func (r *Result) WriteCSV(w io.Writer, names ...string) error {
	header := []string{"t"}
	var columns []*mat.Dense
	if len(names) == 0 {
		_, n := r.Y.Dims()
		for i := 0; i < n; i++ {
			header = append(header, "y"+strconv.Itoa(i))
		}
		columns = append(columns, r.Y)
	}
	for _, name := range names {
		v, err := r.Variable(name)
		if err != nil {
			return err
		}
		_, n := v.Dims()
		for i := 0; i < n; i++ {
			header = append(header, name+"["+strconv.Itoa(i)+"]")
		}
		columns = append(columns, v)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for i, t := range r.T {
		row := []string{strconv.FormatFloat(t, 'g', -1, 64)}
		for _, c := range columns {
			for _, v := range c.RawRowView(i) {
				row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
			}
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
