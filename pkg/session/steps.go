package session

import (
	"fmt"
	"strings"
)

// Step is one stage of the attach sequence. Steps are acquired strictly in
// order; each one that holds a resource has a release.
type Step uint8

const (
	StepWiphyAlloc Step = iota + 1
	StepBandAlloc
	StepWiphyRegister
	StepWdevAlloc
	StepNetdevAlloc
	StepBusEnable
	StepNetdevRegister
	StepBindParent

	numSteps = int(StepBindParent)
)

// String returns the step name.
func (s Step) String() string {
	switch s {
	case StepWiphyAlloc:
		return "wiphy-alloc"
	case StepBandAlloc:
		return "band-alloc"
	case StepWiphyRegister:
		return "wiphy-register"
	case StepWdevAlloc:
		return "wdev-alloc"
	case StepNetdevAlloc:
		return "netdev-alloc"
	case StepBusEnable:
		return "bus-enable"
	case StepNetdevRegister:
		return "netdev-register"
	case StepBindParent:
		return "bind-parent"
	default:
		return fmt.Sprintf("step(%d)", uint8(s))
	}
}

// ParseStep returns the step with the given name.
func ParseStep(name string) (Step, error) {
	for _, s := range AttachOrder() {
		if s.String() == strings.ToLower(name) {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown step %q", name)
}

// AttachOrder returns the steps in acquisition order.
func AttachOrder() []Step {
	return []Step{
		StepWiphyAlloc,
		StepBandAlloc,
		StepWiphyRegister,
		StepWdevAlloc,
		StepNetdevAlloc,
		StepBusEnable,
		StepNetdevRegister,
		StepBindParent,
	}
}

// DetachOrder returns the steps in teardown order. The bus device is
// disabled last, after every software resource is gone.
func DetachOrder() []Step {
	return []Step{
		StepBindParent,
		StepNetdevRegister,
		StepNetdevAlloc,
		StepWdevAlloc,
		StepWiphyRegister,
		StepBandAlloc,
		StepWiphyAlloc,
		StepBusEnable,
	}
}

// requires lists, per step, the steps whose resources it depends on.
// A step cannot be released while a step requiring it is still held.
var requires = map[Step][]Step{
	StepBandAlloc:      {StepWiphyAlloc},
	StepWiphyRegister:  {StepWiphyAlloc, StepBandAlloc},
	StepWdevAlloc:      {StepWiphyRegister},
	StepNetdevAlloc:    {StepWdevAlloc},
	StepNetdevRegister: {StepNetdevAlloc, StepBusEnable},
	StepBindParent:     {StepNetdevRegister},
}

type stepSet uint16

func (m stepSet) has(s Step) bool {
	return m&(1<<s) != 0
}

// prefix returns the set of all steps before s.
func prefix(s Step) stepSet {
	var m stepSet
	for i := StepWiphyAlloc; i < s; i++ {
		m |= 1 << i
	}
	return m
}

func (m stepSet) steps() []Step {
	var out []Step
	for _, s := range AttachOrder() {
		if m.has(s) {
			out = append(out, s)
		}
	}
	return out
}

// stack is the acquisition record of a session: which steps are held and
// how to release each. Not safe for concurrent use; the session serializes
// attach and detach.
type stack struct {
	held     stepSet
	releases [numSteps + 1]func() error
}

// push records an acquired step. Acquiring out of order is a programming
// error.
func (st *stack) push(s Step, release func() error) {
	if st.held != prefix(s) {
		panic(fmt.Sprintf("session: acquire %s with held steps %v", s, st.held.steps()))
	}
	st.held |= 1 << s
	st.releases[s] = release
}

// pop releases one step. Releasing a step that is not held is a no-op.
// Releasing a step another held step requires is a programming error.
func (st *stack) pop(s Step) (bool, error) {
	if !st.held.has(s) {
		return false, nil
	}
	for dep, reqs := range requires {
		if !st.held.has(dep) {
			continue
		}
		for _, r := range reqs {
			if r == s {
				panic(fmt.Sprintf("session: release %s while %s is held", s, dep))
			}
		}
	}

	release := st.releases[s]
	st.releases[s] = nil
	st.held &^= 1 << s
	if release == nil {
		return true, nil
	}
	return true, release()
}

// top returns the most recently acquired step, or 0.
func (st *stack) top() Step {
	var last Step
	for _, s := range AttachOrder() {
		if st.held.has(s) {
			last = s
		}
	}
	return last
}
