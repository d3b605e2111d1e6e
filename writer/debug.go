package writer

import (
	"sort"

	"github.com/dexfmt/dexwriter/encoding"
	"github.com/dexfmt/dexwriter/program"
)

// Debug bytecode opcodes and the special-opcode geometry.
const (
	dbgEndSequence  = 0x00
	dbgAdvancePC    = 0x01
	dbgAdvanceLine  = 0x02
	dbgFirstSpecial = 0x0a
	dbgLineBase     = -4
	dbgLineRange    = 15
)

// DefaultDebugEncoder returns the built-in debug_info_item encoder. It
// emits the line-number state machine for the position table the model
// carries; parameter names resolve through the string pool with
// ULEB128p1 indices.
func DefaultDebugEncoder() DebugInfoEncoder {
	return stateMachineEncoder{}
}

type stateMachineEncoder struct{}

func (stateMachineEncoder) Generate(info *program.DebugInfo, pools *program.Pools, naming NamingLens, _ GraphLens) ([]byte, error) {
	res := &resolver{pools: pools, naming: naming}

	out := make([]byte, 0, 16+4*len(info.Positions))
	out = encoding.AppendULEB128(out, info.LineStart)
	out = encoding.AppendULEB128(out, uint32(len(info.ParameterNames)))
	for _, name := range info.ParameterNames {
		if name == "" {
			out = encoding.AppendULEB128p1(out, -1)
			continue
		}
		out = encoding.AppendULEB128p1(out, int32(res.stringIndex(name)))
	}

	positions := make([]program.PositionEntry, len(info.Positions))
	copy(positions, info.Positions)
	sort.SliceStable(positions, func(i, j int) bool {
		return positions[i].Address < positions[j].Address
	})

	address := uint32(0)
	line := info.LineStart
	for _, pos := range positions {
		pcDelta := int32(pos.Address - address)
		lineDelta := int32(pos.Line) - int32(line)

		if lineDelta < dbgLineBase || lineDelta >= dbgLineBase+dbgLineRange {
			out = append(out, dbgAdvanceLine)
			out = encoding.AppendSLEB128(out, lineDelta)
			lineDelta = 0
		}

		special := int32(dbgFirstSpecial) + (lineDelta - dbgLineBase) + pcDelta*dbgLineRange
		if special > 0xff {
			out = append(out, dbgAdvancePC)
			out = encoding.AppendULEB128(out, uint32(pcDelta))
			special = int32(dbgFirstSpecial) + (lineDelta - dbgLineBase)
		}
		out = append(out, byte(special))

		address = pos.Address
		line = pos.Line
	}
	out = append(out, dbgEndSequence)

	return out, nil
}
