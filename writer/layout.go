package writer

import (
	"github.com/dexfmt/dexwriter/format"
	"github.com/dexfmt/dexwriter/program"
)

// layout holds the file offsets of every section. The fixed
// prefix is computed up front from the pool sizes; the mixed tail is
// filled in exactly once as each section is materialized. A section
// that ends up empty keeps offset 0.
type layout struct {
	stringIDsOff    int
	typeIDsOff      int
	protoIDsOff     int
	fieldIDsOff     int
	methodIDsOff    int
	classDefsOff    int
	callSiteIDsOff  int
	methodHandlesOff int
	dataSectionOff  int

	codesOff                 int
	debugInfosOff            int
	typeListsOff             int
	stringDataOff            int
	annotationsOff           int
	classDataOff             int
	encodedArraysOff         int
	annotationSetsOff        int
	annotationSetRefListsOff int
	annotationDirectoriesOff int
	mapOff                   int

	endOfFile int
}

// planFixedLayout computes the index-region offsets from the pool
// sizes, in the prescribed order. The position after the method handle
// table is the start of the data section.
func planFixedLayout(pools *program.Pools) *layout {
	l := &layout{}
	offset := format.HeaderSize

	l.stringIDsOff = offset
	offset += pools.StringCount() * format.StringIDSize
	l.typeIDsOff = offset
	offset += pools.TypeCount() * format.TypeIDSize
	l.protoIDsOff = offset
	offset += pools.ProtoCount() * format.ProtoIDSize
	l.fieldIDsOff = offset
	offset += pools.FieldCount() * format.FieldIDSize
	l.methodIDsOff = offset
	offset += pools.MethodCount() * format.MethodIDSize
	l.classDefsOff = offset
	offset += pools.ClassCount() * format.ClassDefSize
	l.callSiteIDsOff = offset
	offset += pools.CallSiteCount() * format.CallSiteIDSize
	l.methodHandlesOff = offset
	offset += pools.MethodHandleCount() * format.MethodHandleSize
	l.dataSectionOff = offset

	return l
}

// setAligned records a mixed-section offset, enforcing the set-once and
// 4-alignment invariants of the alignable sections.
func setAligned(slot *int, pos int) {
	if *slot != 0 {
		panic("section offset assigned twice")
	}
	if pos%format.DataAlignment != 0 {
		panic("alignable section starts misaligned")
	}
	*slot = pos
}

// setUnaligned records a mixed-section offset for the byte-aligned
// sections.
func setUnaligned(slot *int, pos int) {
	if *slot != 0 {
		panic("section offset assigned twice")
	}
	*slot = pos
}

// offsetOrZero keeps empty sections at offset 0 in the header and map.
func offsetOrZero(offset, count int) uint32 {
	if count == 0 {
		return 0
	}

	return uint32(offset)
}
