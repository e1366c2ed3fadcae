package cpu

import "fmt"

// Outcome tags the four shapes a cycle can end in.
type Outcome int

const (
	// Forward means the instruction completed normally; PC advances by 4.
	Forward Outcome = iota
	// Branch means control transfers to Target instead of PC+4.
	Branch
	// Raised means an architectural exception occurred.
	Raised
	// Faulted means a VM-internal fault occurred — never guest-visible,
	// always a bug in this interpreter or a malformed image.
	Faulted
)

// Next is the sole channel from the decode/execute engine to the driver
// loop: exactly one of its fields is meaningful, selected by Outcome.
type Next struct {
	Outcome Outcome
	Target  uint32    // valid when Outcome == Branch
	Kind    Exception // valid when Outcome == Raised
	Reason  string    // valid when Outcome == Faulted
}

// ForwardNext constructs the normal, PC+4, outcome.
func ForwardNext() Next { return Next{Outcome: Forward} }

// BranchTo constructs a Branch outcome to target.
func BranchTo(target uint32) Next { return Next{Outcome: Branch, Target: target} }

// Raise constructs an architectural exception outcome.
func Raise(kind Exception) Next { return Next{Outcome: Raised, Kind: kind} }

// VMError constructs a VM-internal fault outcome.
func VMError(reason string) Next { return Next{Outcome: Faulted, Reason: reason} }

func (n Next) String() string {
	switch n.Outcome {
	case Forward:
		return "forward"
	case Branch:
		return fmt.Sprintf("branch -> %#08x", n.Target)
	case Raised:
		return fmt.Sprintf("exception: %s", n.Kind)
	case Faulted:
		return fmt.Sprintf("vm error: %s", n.Reason)
	default:
		return "next(unknown)"
	}
}
