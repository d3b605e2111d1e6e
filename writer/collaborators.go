package writer

import (
	"fmt"

	"github.com/dexfmt/dexwriter/buffer"
	"github.com/dexfmt/dexwriter/program"
)

// InstructionEncoder writes a method's instruction stream at the
// buffer's current cursor position. CodeUnits must return the exact
// number of 2-byte code units Write will produce; the assembler uses it
// to pre-size the code region.
type InstructionEncoder interface {
	CodeUnits(code *program.Code) int
	Write(buf *buffer.OutputBuffer, code *program.Code, method *program.Method, pools *program.Pools, keep KeepSink) error
}

// PreEncodedInstructions returns the built-in encoder for code whose
// instruction stream is already materialized as 2-byte units in
// program.Code.Instructions.
func PreEncodedInstructions() InstructionEncoder {
	return preEncoded{}
}

type preEncoded struct{}

func (preEncoded) CodeUnits(code *program.Code) int {
	return len(code.Instructions)
}

func (preEncoded) Write(buf *buffer.OutputBuffer, code *program.Code, method *program.Method, _ *program.Pools, _ KeepSink) error {
	if code.Instructions == nil {
		return fmt.Errorf("method %s has no pre-encoded instruction stream", method.Signature())
	}
	for _, unit := range code.Instructions {
		buf.PutU16(unit)
	}

	return nil
}

// DebugInfoEncoder produces the debug_info_item bytes for one method
// body. The default encoder handles the line/parameter programs the
// model carries; plug a custom one for richer debug state machines.
type DebugInfoEncoder interface {
	Generate(info *program.DebugInfo, pools *program.Pools, naming NamingLens, graph GraphLens) ([]byte, error)
}

// KeepSink records which desugared-library types and members emitted
// code actually references. Downstream tooling uses the recording to
// decide what to retain.
type KeepSink interface {
	RecordClass(t *program.Type)
	RecordField(f *program.Field)
	RecordMethod(m *program.Method)
	RecordHierarchyOf(c *program.Class)
}

// NopKeepSink returns a sink that records nothing.
func NopKeepSink() KeepSink {
	return nopSink{}
}

type nopSink struct{}

func (nopSink) RecordClass(*program.Type)       {}
func (nopSink) RecordField(*program.Field)      {}
func (nopSink) RecordMethod(*program.Method)    {}
func (nopSink) RecordHierarchyOf(*program.Class) {}
