package network

import "fmt"

// EdgeLabel classifies an edge relative to the safety perimeter.
type EdgeLabel int

const (
	// Unlabeled edges lie entirely outside the perimeter.
	Unlabeled EdgeLabel = iota
	// Contained edges have both endpoints inside the perimeter.
	Contained
	// SafeCrossing edges enter the perimeter away from the danger zone.
	SafeCrossing
	// DangerCrossing edges enter the perimeter through the danger zone.
	DangerCrossing
	// Filtered crossings were found not to need a blockade.
	Filtered
)

var edgeLabelNames = []string{"unlabeled", "contained", "safe", "danger", "filtered"}

// String returns the lowercase label name.
func (l EdgeLabel) String() string {
	if l < 0 || int(l) >= len(edgeLabelNames) {
		return fmt.Sprintf("EdgeLabel(%d)", int(l))
	}
	return edgeLabelNames[l]
}

// IsCrossing reports whether l is an active crossing label.
func (l EdgeLabel) IsCrossing() bool { return l == SafeCrossing || l == DangerCrossing }

// WasCrossing reports whether the edge straddles the perimeter, active or
// filtered.
func (l EdgeLabel) WasCrossing() bool { return l.IsCrossing() || l == Filtered }

// MarshalText implements encoding.TextMarshaler.
func (l EdgeLabel) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *EdgeLabel) UnmarshalText(b []byte) error {
	for i, name := range edgeLabelNames {
		if name == string(b) {
			*l = EdgeLabel(i)
			return nil
		}
	}
	return fmt.Errorf("unknown edge label %q", b)
}

// NodeLabel marks a junction that needs a blockade.
type NodeLabel int

const (
	// SafeMarked is the inner endpoint of a surviving safe crossing.
	SafeMarked NodeLabel = iota + 1
	// DangerMarked is the outer endpoint of a surviving danger crossing.
	DangerMarked
)

// String returns the lowercase label name.
func (l NodeLabel) String() string {
	switch l {
	case SafeMarked:
		return "safe"
	case DangerMarked:
		return "danger"
	}
	return fmt.Sprintf("NodeLabel(%d)", int(l))
}

// MarshalText implements encoding.TextMarshaler.
func (l NodeLabel) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *NodeLabel) UnmarshalText(b []byte) error {
	switch string(b) {
	case "safe":
		*l = SafeMarked
	case "danger":
		*l = DangerMarked
	default:
		return fmt.Errorf("unknown node label %q", b)
	}
	return nil
}
