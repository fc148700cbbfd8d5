package secrets

import (
	"fmt"
	"log/slog"
	"sort"
)

// Descriptor registers one backend with the selector. Validate and New are
// only called while a selection runs.
type Descriptor struct {
	Name     string
	Priority func(Environment) float64
	Validate func() bool
	New      func() (*Adapter, error)
}

// MechanismDescriptor builds a Descriptor whose Validate probes a freshly
// built mechanism and whose New wraps another fresh one in an Adapter.
func MechanismDescriptor(name string, priority func(Environment) float64, factory func() (Mechanism, error), logger *slog.Logger) Descriptor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return Descriptor{
		Name:     name,
		Priority: priority,
		Validate: func() bool {
			mech, err := factory()
			if err != nil {
				logger.Warn("keyring backend could not be constructed", "backend", name, "error", err)
				return false
			}
			return Probe(mech, logger)
		},
		New: func() (*Adapter, error) {
			mech, err := factory()
			if err != nil {
				return nil, err
			}
			return NewAdapter(mech, logger), nil
		},
	}
}

// FixedPriority returns a priority function that ignores the environment.
func FixedPriority(p float64) func(Environment) float64 {
	return func(Environment) float64 { return p }
}

// Candidate is the evaluation of one descriptor.
type Candidate struct {
	Name     string
	Priority float64
	Usable   bool
}

type ranked struct {
	Descriptor
	priority float64
}

// rank orders descriptors by descending priority. Ties keep registration order.
func rank(env Environment, descriptors []Descriptor) []ranked {
	out := make([]ranked, 0, len(descriptors))
	for _, d := range descriptors {
		p := 0.0
		if d.Priority != nil {
			p = d.Priority(env)
		}
		out = append(out, ranked{Descriptor: d, priority: p})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].priority > out[j].priority
	})
	return out
}

// Select returns an Adapter for the highest-priority candidate that passes
// its probe. Each candidate is probed at most once and probe results are not
// cached between calls.
func Select(env Environment, candidates []Descriptor, logger *slog.Logger) (*Adapter, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	for _, c := range rank(env, candidates) {
		logger.Debug("probing keyring backend", "backend", c.Name, "priority", c.priority)
		if c.Validate == nil || !c.Validate() {
			continue
		}

		adapter, err := c.New()
		if err != nil {
			logger.Warn("keyring backend passed probe but failed to start", "backend", c.Name, "error", err)
			continue
		}

		logger.Debug("selected keyring backend", "backend", c.Name, "priority", c.priority)
		return adapter, nil
	}

	return nil, fmt.Errorf("%w: tried %d backend(s)", ErrNoBackendAvailable, len(candidates))
}

// Registry is the ordered set of backends known to the host application.
type Registry struct {
	descriptors []Descriptor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds d. Names must be unique.
func (r *Registry) Register(d Descriptor) error {
	if d.Name == "" {
		return fmt.Errorf("backend descriptor has no name")
	}
	if d.Validate == nil || d.New == nil {
		return fmt.Errorf("backend %q: validate and constructor are required", d.Name)
	}
	if _, ok := r.Lookup(d.Name); ok {
		return fmt.Errorf("backend %q already registered", d.Name)
	}
	r.descriptors = append(r.descriptors, d)
	return nil
}

// Lookup returns the descriptor registered under name.
func (r *Registry) Lookup(name string) (Descriptor, bool) {
	for _, d := range r.descriptors {
		if d.Name == name {
			return d, true
		}
	}
	return Descriptor{}, false
}

// Names lists registered backends in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.descriptors))
	for i, d := range r.descriptors {
		names[i] = d.Name
	}
	return names
}

// Select runs Select over the registry. A non-empty only restricts the
// candidates to that backend.
func (r *Registry) Select(env Environment, only string, logger *slog.Logger) (*Adapter, error) {
	if only == "" {
		return Select(env, r.descriptors, logger)
	}
	d, ok := r.Lookup(only)
	if !ok {
		return nil, fmt.Errorf("unknown backend %q", only)
	}
	return Select(env, []Descriptor{d}, logger)
}

// Evaluate probes every registered backend, highest priority first.
func (r *Registry) Evaluate(env Environment) []Candidate {
	cands := rank(env, r.descriptors)
	out := make([]Candidate, len(cands))
	for i, c := range cands {
		out[i] = Candidate{Name: c.Name, Priority: c.priority, Usable: c.Validate()}
	}
	return out
}
