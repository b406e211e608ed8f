package v3

import "fmt"

// Affinity identifies a core by its four-level affinity coordinates,
// packed as Aff3.Aff2.Aff1.Aff0 in byte lanes 3..0. This matches
// MPIDR_EL1 with the gaps squeezed out.
type Affinity uint32

// MakeAffinity builds an Affinity from the four level values.
func MakeAffinity(aff3, aff2, aff1, aff0 uint8) Affinity {
	return Affinity(uint32(aff3)<<24 | uint32(aff2)<<16 | uint32(aff1)<<8 | uint32(aff0))
}

// AffinityFromMPIDR extracts the affinity coordinates from an
// MPIDR_EL1 value, discarding the non-affinity bits.
func AffinityFromMPIDR(mpidr uint64) Affinity {
	aff3 := uint8(mpidr >> 32)
	return MakeAffinity(aff3, uint8(mpidr>>16), uint8(mpidr>>8), uint8(mpidr))
}

func (a Affinity) Aff0() uint8 { return uint8(a) }
func (a Affinity) Aff1() uint8 { return uint8(a >> 8) }
func (a Affinity) Aff2() uint8 { return uint8(a >> 16) }
func (a Affinity) Aff3() uint8 { return uint8(a >> 24) }

func (a Affinity) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", a.Aff3(), a.Aff2(), a.Aff1(), a.Aff0())
}

// router encodes the affinity into GICD_IROUTER layout.
func (a Affinity) router() uint64 {
	return uint64(a.Aff0())<<irouterAff0Shift |
		uint64(a.Aff1())<<irouterAff1Shift |
		uint64(a.Aff2())<<irouterAff2Shift |
		uint64(a.Aff3())<<irouterAff3Shift
}

// TargetList selects up to 16 cores for an SGI. All cores in a list
// share the same Aff3.Aff2.Aff1 prefix; the list is a bitmap over
// Aff0 values 0..15.
type TargetList struct {
	aff3, aff2, aff1 uint8
	bits             uint16
}

// NewTargetList builds a TargetList from the given cores. All cores
// must share Aff3.Aff2.Aff1 and have Aff0 below 16; it panics
// otherwise, since a mixed list cannot be expressed in one SGI.
func NewTargetList(cores ...Affinity) TargetList {
	if len(cores) == 0 {
		return TargetList{}
	}
	first := cores[0]
	tl := TargetList{aff3: first.Aff3(), aff2: first.Aff2(), aff1: first.Aff1()}
	for _, c := range cores {
		if c.Aff3() != tl.aff3 || c.Aff2() != tl.aff2 || c.Aff1() != tl.aff1 {
			panic(fmt.Sprintf("v3: SGI target %v does not share affinity prefix with %v", c, first))
		}
		if c.Aff0() > 15 {
			panic(fmt.Sprintf("v3: SGI target %v has Aff0 %d, limit is 15", c, c.Aff0()))
		}
		tl.bits |= 1 << c.Aff0()
	}
	return tl
}

// TargetListBits builds a TargetList directly from an Aff0 bitmap
// under the given affinity prefix.
func TargetListBits(aff3, aff2, aff1 uint8, bits uint16) TargetList {
	return TargetList{aff3: aff3, aff2: aff2, aff1: aff1, bits: bits}
}

// Cores returns the listed cores in ascending Aff0 order.
func (t TargetList) Cores() []Affinity {
	var out []Affinity
	for i := uint8(0); i < 16; i++ {
		if t.bits&(1<<i) != 0 {
			out = append(out, MakeAffinity(t.aff3, t.aff2, t.aff1, i))
		}
	}
	return out
}

// SGITarget selects the destination cores of a software-generated
// interrupt: either an explicit TargetList or all cores other than
// the sender.
type SGITarget struct {
	Others bool
	List   TargetList
}

// SGIToList addresses an SGI to an explicit set of cores.
func SGIToList(list TargetList) SGITarget { return SGITarget{List: list} }

// SGIToOthers addresses an SGI to every core except the sender.
func SGIToOthers() SGITarget { return SGITarget{Others: true} }
