package irq

// Trigger is the sensing mode of an interrupt line. SGIs are always
// edge-triggered regardless of configuration.
type Trigger int

const (
	// Level fires while the line is asserted.
	Level Trigger = iota
	// Edge fires on a transition of the line.
	Edge
)

func (t Trigger) String() string {
	if t == Edge {
		return "edge"
	}
	return "level"
}
