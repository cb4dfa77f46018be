package vm

import (
	"bytes"
	"fmt"
	"log"

	"github.com/cespare/xxhash/v2"
	"github.com/gofraser/evosuite-sub000/symbolic"
)

// PathConditionCollector receives the constraints produced while shadowing
// an execution.
type PathConditionCollector interface {
	// AppendSupportingConstraint records a constraint that must hold for the
	// concrete path but does not correspond to a branch, such as a non-zero
	// divisor.
	AppendSupportingConstraint(c symbolic.Constraint)

	// AppendArrayAccessCondition records an array bounds check. Negated is
	// set when the concrete access faulted.
	AppendArrayAccessCondition(c symbolic.Constraint, className, methodName string, negated bool)

	// AppendBranchCondition records the outcome of a conditional branch.
	AppendBranchCondition(c symbolic.Constraint, className, methodName string, branchIndex int)
}

// ConditionKind distinguishes branch conditions from bounds checks.
type ConditionKind int

const (
	ConditionKindBranch ConditionKind = iota
	ConditionKindArrayAccess
)

// String returns the string representation of the kind.
func (k ConditionKind) String() string {
	switch k {
	case ConditionKindBranch:
		return "branch"
	case ConditionKindArrayAccess:
		return "array"
	default:
		return fmt.Sprintf("ConditionKind<%d>", k)
	}
}

// BranchCondition is one decision point on the concrete path together with
// the supporting constraints collected since the previous one.
type BranchCondition struct {
	Kind        ConditionKind
	ClassName   string
	MethodName  string
	BranchIndex int
	Negated     bool
	Constraint  symbolic.Constraint
	Supporting  []symbolic.Constraint
}

// PathCondition is the default collector. Constraints are normalized on
// append and duplicate supporting constraints are dropped.
type PathCondition struct {
	conditions []*BranchCondition
	pending    []symbolic.Constraint
	seen       map[uint64]struct{}
}

// NewPathCondition returns an empty path condition.
func NewPathCondition() *PathCondition {
	return &PathCondition{seen: make(map[uint64]struct{})}
}

// AppendSupportingConstraint records c until the next branch condition.
func (pc *PathCondition) AppendSupportingConstraint(c symbolic.Constraint) {
	c = symbolic.Normalize(c)

	h := xxhash.Sum64String(c.String())
	if _, ok := pc.seen[h]; ok {
		return
	}
	pc.seen[h] = struct{}{}
	pc.pending = append(pc.pending, c)
}

// AppendArrayAccessCondition records a bounds check.
func (pc *PathCondition) AppendArrayAccessCondition(c symbolic.Constraint, className, methodName string, negated bool) {
	pc.append(&BranchCondition{
		Kind:        ConditionKindArrayAccess,
		ClassName:   className,
		MethodName:  methodName,
		BranchIndex: -1,
		Negated:     negated,
		Constraint:  symbolic.Normalize(c),
	})
}

// AppendBranchCondition records a branch outcome.
func (pc *PathCondition) AppendBranchCondition(c symbolic.Constraint, className, methodName string, branchIndex int) {
	pc.append(&BranchCondition{
		Kind:        ConditionKindBranch,
		ClassName:   className,
		MethodName:  methodName,
		BranchIndex: branchIndex,
		Constraint:  symbolic.Normalize(c),
	})
}

func (pc *PathCondition) append(cond *BranchCondition) {
	cond.Supporting, pc.pending = pc.pending, nil
	pc.seen = make(map[uint64]struct{})
	pc.conditions = append(pc.conditions, cond)
	log.Printf("[branch] %s %s.%s #%d: %s", cond.Kind, cond.ClassName, cond.MethodName, cond.BranchIndex, cond.Constraint)
}

// Len returns the number of recorded conditions.
func (pc *PathCondition) Len() int { return len(pc.conditions) }

// Conditions returns the recorded conditions in execution order.
func (pc *PathCondition) Conditions() []*BranchCondition {
	return pc.conditions
}

// Pending returns the supporting constraints not yet attached to a
// condition.
func (pc *PathCondition) Pending() []symbolic.Constraint {
	return pc.pending
}

// Constraints returns every constraint in execution order, each condition
// preceded by its supporting constraints and followed by any that are still
// pending.
func (pc *PathCondition) Constraints() []symbolic.Constraint {
	var a []symbolic.Constraint
	for _, cond := range pc.conditions {
		a = append(a, cond.Supporting...)
		a = append(a, cond.Constraint)
	}
	return append(a, pc.pending...)
}

// String returns one constraint per line.
func (pc *PathCondition) String() string {
	var buf bytes.Buffer
	for i, c := range pc.Constraints() {
		fmt.Fprintf(&buf, "%d. %s\n", i, c)
	}
	return buf.String()
}
