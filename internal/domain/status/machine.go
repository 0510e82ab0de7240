package status

import (
	"fmt"
	"sort"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/apperror"
)

// Meta is the derived, display and legality data of a single state.
type Meta struct {
	Label    string
	Color    string
	Terminal bool
	Editable bool
}

// SamePolicy decides what a transition into the current state means.
type SamePolicy int

const (
	// SameNoop treats A -> A as a successful no-op while A is not terminal.
	SameNoop SamePolicy = iota
	// SameReject treats A -> A as an illegal transition.
	SameReject
)

// Option is the {value, label, color} triple handed to presentation.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Color string `json:"color"`
}

// Machine is a static transition table for one entity type.
type Machine[S ~string] struct {
	entity string
	same   SamePolicy
	meta   map[S]Meta
	edges  map[S]map[S]struct{}
	order  []S
}

// NewMachine builds a machine. It panics when an edge references an undeclared
// state, so a broken table fails at package init.
func NewMachine[S ~string](entity string, same SamePolicy, meta map[S]Meta, edges map[S][]S) *Machine[S] {
	m := &Machine[S]{
		entity: entity,
		same:   same,
		meta:   meta,
		edges:  make(map[S]map[S]struct{}, len(edges)),
	}
	for s := range meta {
		m.order = append(m.order, s)
	}
	sort.Slice(m.order, func(i, j int) bool { return m.order[i] < m.order[j] })

	for from, targets := range edges {
		if _, ok := meta[from]; !ok {
			panic(fmt.Sprintf("status: %s edge from undeclared state %q", entity, from))
		}
		if meta[from].Terminal && len(targets) > 0 {
			panic(fmt.Sprintf("status: %s terminal state %q has outgoing edges", entity, from))
		}
		set := make(map[S]struct{}, len(targets))
		for _, to := range targets {
			if _, ok := meta[to]; !ok {
				panic(fmt.Sprintf("status: %s edge to undeclared state %q", entity, to))
			}
			set[to] = struct{}{}
		}
		m.edges[from] = set
	}
	return m
}

func (m *Machine[S]) Entity() string { return m.entity }

// CanTransition reports whether (from, to) is a declared edge.
func (m *Machine[S]) CanTransition(from, to S) bool {
	_, ok := m.edges[from][to]
	return ok
}

// Transition checks a requested move. changed is false for an accepted same-state no-op.
func (m *Machine[S]) Transition(from, to S) (changed bool, err error) {
	if !m.Valid(to) {
		return false, &TransitionError{Entity: m.entity, From: string(from), To: string(to)}
	}
	if from == to && m.same == SameNoop && !m.IsTerminal(from) {
		return false, nil
	}
	if !m.CanTransition(from, to) {
		return false, &TransitionError{Entity: m.entity, From: string(from), To: string(to)}
	}
	return true, nil
}

func (m *Machine[S]) Valid(s S) bool {
	_, ok := m.meta[s]
	return ok
}

// Parse converts raw input into a declared state.
func (m *Machine[S]) Parse(raw string) (S, error) {
	s := S(raw)
	if !m.Valid(s) {
		return s, &UnknownError{Entity: m.entity, Value: raw}
	}
	return s, nil
}

func (m *Machine[S]) IsTerminal(s S) bool { return m.meta[s].Terminal }

func (m *Machine[S]) IsEditable(s S) bool { return m.meta[s].Editable }

func (m *Machine[S]) Label(s S) string {
	if meta, ok := m.meta[s]; ok {
		return meta.Label
	}
	return string(s)
}

func (m *Machine[S]) Color(s S) string { return m.meta[s].Color }

// Targets lists the reachable states from s in stable order.
func (m *Machine[S]) Targets(from S) []S {
	var out []S
	for _, s := range m.order {
		if m.CanTransition(from, s) {
			out = append(out, s)
		}
	}
	return out
}

// States lists all declared states in stable order.
func (m *Machine[S]) States() []S {
	return append([]S(nil), m.order...)
}

// RequireEditable fails when s does not permit content changes.
func (m *Machine[S]) RequireEditable(s S) error {
	if !m.IsEditable(s) {
		return &NotEditableError{Entity: m.entity, Status: string(s)}
	}
	return nil
}

func (m *Machine[S]) Option(s S) Option {
	return Option{Value: string(s), Label: m.Label(s), Color: m.Color(s)}
}

// NextOptions lists the legal targets of from, empty for terminal states.
func (m *Machine[S]) NextOptions(from S) []Option {
	out := make([]Option, 0)
	for _, s := range m.Targets(from) {
		out = append(out, m.Option(s))
	}
	return out
}

func (m *Machine[S]) Options() []Option {
	out := make([]Option, 0, len(m.order))
	for _, s := range m.order {
		out = append(out, m.Option(s))
	}
	return out
}

// TransitionError is returned for any move that is not a declared edge.
type TransitionError struct {
	Entity string
	From   string
	To     string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot change %s status from %s to %s", e.Entity, e.From, e.To)
}

func (e *TransitionError) ErrorKind() apperror.Kind { return apperror.KindInvalidTransition }

// NotEditableError is returned when content changes are attempted in a locked state.
type NotEditableError struct {
	Entity string
	Status string
}

func (e *NotEditableError) Error() string {
	return fmt.Sprintf("%s cannot be modified while %s", e.Entity, e.Status)
}

func (e *NotEditableError) ErrorKind() apperror.Kind { return apperror.KindInvalidTransition }

type UnknownError struct {
	Entity string
	Value  string
}

func (e *UnknownError) Error() string {
	return fmt.Sprintf("unknown %s status %q", e.Entity, e.Value)
}

func (e *UnknownError) ErrorKind() apperror.Kind { return apperror.KindValidation }
