package writer

import (
	"fmt"

	"github.com/dexfmt/dexwriter/encoding"
	"github.com/dexfmt/dexwriter/format"
	"github.com/dexfmt/dexwriter/program"
)

// codeItemHeaderSize covers registers/ins/outs/tries sizes, the debug
// info offset and the instruction word count.
const codeItemHeaderSize = 16

// encodeHandlers serializes the encoded_catch_handler_list of a code
// body and returns the bytes together with each handler's offset
// relative to the list base. Handler types go through the graph lens;
// when record is true each rewritten type is reported to the keep sink.
func (w *FileWriter) encodeHandlers(code *program.Code, record bool) ([]byte, map[*program.TryHandler]int) {
	handlers := code.Handlers()
	out := encoding.AppendULEB128(nil, uint32(len(handlers)))
	offsets := make(map[*program.TryHandler]int, len(handlers))

	for _, h := range handlers {
		offsets[h] = len(out)

		pairs := int32(len(h.Pairs))
		if h.HasCatchAll {
			out = encoding.AppendSLEB128(out, -pairs)
		} else {
			out = encoding.AppendSLEB128(out, pairs)
		}
		for _, pair := range h.Pairs {
			rewritten := w.config.graph.LookupType(pair.Type)
			if record {
				w.config.keep.RecordClass(rewritten)
			}
			out = encoding.AppendULEB128(out, w.res.typeIndex(rewritten))
			out = encoding.AppendULEB128(out, pair.Address)
		}
		if h.HasCatchAll {
			out = encoding.AppendULEB128(out, h.CatchAllAddress)
		}
	}

	return out, offsets
}

// sizeOfCodeItem returns the exact byte size of a code item, using the
// same alignment policy as the emitter. The assembler relies on the sum
// of these sizes (with inter-item padding to 4) matching the emitted
// code region byte for byte.
func (w *FileWriter) sizeOfCodeItem(code *program.Code) int {
	units := w.config.instructions.CodeUnits(code)
	size := codeItemHeaderSize + 2*units
	if code.HasTries() {
		if units%2 != 0 {
			size += 2
		}
		size += len(code.Tries) * format.TryItemSize
		handlerBytes, _ := w.encodeHandlers(code, false)
		size += len(handlerBytes)
	}

	return size
}

// writeCodeItem emits one code_item at the current (4-aligned) cursor
// position and registers its offset.
func (w *FileWriter) writeCodeItem(e *codeEntry) error {
	buf := w.buf
	if !buf.IsAligned(format.DataAlignment) {
		panic("code item emitted at misaligned position")
	}
	e.item.setOffset(buf.Position())

	code := e.code
	buf.PutU16(code.RegistersSize)
	buf.PutU16(code.InsSize)
	buf.PutU16(code.OutsSize)
	buf.PutU16(uint16(len(code.Tries)))
	buf.PutU32(w.debugInfoOffset(code))

	// The instruction word count is backpatched once the delegated
	// encoder has produced the stream.
	insnsSizePos := buf.Position()
	buf.PutU32(0)

	if err := w.config.instructions.Write(buf, code, e.method, w.pools, w.config.keep); err != nil {
		return fmt.Errorf("failed to encode instructions for %s: %w", e.method.Signature(), err)
	}

	insnsBytes := buf.Position() - insnsSizePos - 4
	if insnsBytes%2 != 0 {
		panic("instruction stream is not a whole number of code units")
	}
	buf.RewriteU32(insnsSizePos, uint32(insnsBytes/2))

	if !code.HasTries() {
		return buf.Err()
	}

	if insnsBytes%4 != 0 {
		buf.PutU16(0)
	}

	// Reserve the try table, emit the handler list first so handler
	// offsets are known, then come back for the tries.
	triesPos := buf.Position()
	buf.Forward(len(code.Tries) * format.TryItemSize)

	handlerBytes, handlerOffsets := w.encodeHandlers(code, true)
	buf.PutBytes(handlerBytes)
	endPos := buf.Position()

	buf.MoveTo(triesPos)
	for _, try := range code.Tries {
		buf.PutU32(try.StartAddress)
		buf.PutU16(try.InstructionCount)
		buf.PutU16(uint16(handlerOffsets[try.Handler]))
	}
	buf.MoveTo(endPos)

	return buf.Err()
}

// debugInfoOffset resolves the debug_info_item offset of a code body,
// or 0 when it carries no debug info.
func (w *FileWriter) debugInfoOffset(code *program.Code) uint32 {
	if code.DebugInfo == nil {
		return 0
	}
	e, ok := w.mixed.debugInfos.Lookup(w.keys.debugInfoKey(code.DebugInfo))
	if !ok {
		panic("debug info never registered with the mixed-section table")
	}

	return e.item.fileOffset()
}
