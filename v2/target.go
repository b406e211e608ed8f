package v2

import "fmt"

// TargetList is the GICv2 CPU target bitmask: one bit per CPU
// interface, at most eight interfaces.
type TargetList uint8

// NewTargetList builds a TargetList from CPU interface numbers.
// Panics if any number is 8 or above.
func NewTargetList(cpus ...int) TargetList {
	var t TargetList
	for _, cpu := range cpus {
		t = t.With(cpu)
	}
	return t
}

// With returns t with the given CPU interface added.
// Panics if cpu is 8 or above.
func (t TargetList) With(cpu int) TargetList {
	if cpu < 0 || cpu >= 8 {
		panic(fmt.Sprintf("v2: CPU interface %d out of range 0..7", cpu))
	}
	return t | 1<<cpu
}

// CPUs returns the CPU interface numbers present in the mask, in
// ascending order.
func (t TargetList) CPUs() []int {
	var cpus []int
	for i := 0; i < 8; i++ {
		if t&(1<<i) != 0 {
			cpus = append(cpus, i)
		}
	}
	return cpus
}

// SGIFilter selects which CPUs receive a software-generated interrupt.
type SGIFilter uint32

const (
	// FilterTargetList forwards the SGI to the CPUs in the target list.
	FilterTargetList SGIFilter = 0
	// FilterAllOther forwards the SGI to every CPU except the sender.
	FilterAllOther SGIFilter = 1
	// FilterSelf forwards the SGI only to the sending CPU.
	FilterSelf SGIFilter = 2
)

// SGITarget describes the destination of an SGI dispatch.
type SGITarget struct {
	Filter SGIFilter
	List   TargetList // used only with FilterTargetList
}

// SGIToList targets the CPUs in the given list.
func SGIToList(list TargetList) SGITarget {
	return SGITarget{Filter: FilterTargetList, List: list}
}

// SGIToOthers targets every CPU except the sender.
func SGIToOthers() SGITarget { return SGITarget{Filter: FilterAllOther} }

// SGIToSelf targets only the sending CPU.
func SGIToSelf() SGITarget { return SGITarget{Filter: FilterSelf} }
