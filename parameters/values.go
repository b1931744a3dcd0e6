package parameters

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/njchilds90/gobamm"
	"github.com/njchilds90/gobamm/internal/logging"
)

// Entry is the value of one parameter: a number, or the name of a registered
// function when Function is set.
type Entry struct {
	Value    float64
	Function string
}

func Number(v float64) Entry         { return Entry{Value: v} }
func FunctionName(name string) Entry { return Entry{Function: name} }

func (e Entry) IsFunction() bool { return e.Function != "" }

func (e Entry) String() string {
	if e.IsFunction() {
		return e.Function
	}
	return fmt.Sprintf("%g", e.Value)
}

// FunctionRegistry maps function names to elementwise callables.
type FunctionRegistry map[string]gobamm.Func

// Values is a parameter table with the functions its entries may name.
type Values struct {
	entries map[string]Entry
	funcs   FunctionRegistry
	logger  *slog.Logger
}

type Option func(*Values)

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(v *Values) { v.logger = l }
}

// WithFunctions adds callables to the registry.
func WithFunctions(funcs FunctionRegistry) Option {
	return func(v *Values) {
		for name, fn := range funcs {
			v.funcs[name] = fn
		}
	}
}

// New returns a table holding a copy of entries.
func New(entries map[string]Entry, opts ...Option) *Values {
	v := &Values{
		entries: maps.Clone(entries),
		funcs:   FunctionRegistry{},
		logger:  logging.NewNop(),
	}
	if v.entries == nil {
		v.entries = map[string]Entry{}
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Get returns the entry for name or a *gobamm.MissingParameterError.
func (v *Values) Get(name string) (Entry, error) {
	e, ok := v.entries[name]
	if !ok {
		return Entry{}, &gobamm.MissingParameterError{Name: name}
	}
	return e, nil
}

// Set stores one entry.
func (v *Values) Set(name string, e Entry) { v.entries[name] = e }

// Register adds a callable under name.
func (v *Values) Register(name string, fn gobamm.Func) { v.funcs[name] = fn }

// Names lists the parameter names in sorted order.
func (v *Values) Names() []string { return slices.Sorted(maps.Keys(v.entries)) }

func (v *Values) Len() int { return len(v.entries) }

// Update overrides entries from a decoded configuration map. Numbers and
// numeric strings become numbers; other strings name registered functions.
func (v *Values) Update(overrides map[string]any) error {
	for _, name := range slices.Sorted(maps.Keys(overrides)) {
		e, err := entryOf(name, overrides[name])
		if err != nil {
			return err
		}
		v.entries[name] = e
	}
	v.logger.Debug("parameters updated", "count", len(overrides))
	return nil
}

func entryOf(name string, raw any) (Entry, error) {
	switch x := raw.(type) {
	case bool, nil:
		return Entry{}, fmt.Errorf("%w: parameter %q has value %v (%T)", gobamm.ErrTypeUnsupported, name, raw, raw)
	case Entry:
		return x, nil
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return Entry{}, fmt.Errorf("%w: parameter %q is empty", gobamm.ErrConfiguration, name)
		}
		raw = s
	}
	var f float64
	if err := mapstructure.WeakDecode(raw, &f); err == nil {
		return Number(f), nil
	}
	if s, ok := raw.(string); ok {
		return FunctionName(s), nil
	}
	return Entry{}, fmt.Errorf("%w: parameter %q has value %v (%T)", gobamm.ErrTypeUnsupported, name, raw, raw)
}
