package writer

import (
	"math"
	"sort"

	"github.com/dexfmt/dexwriter/buffer"
	"github.com/dexfmt/dexwriter/format"
	"github.com/dexfmt/dexwriter/program"
)

// valueWriter emits the encoded_value family: static field values,
// annotation elements and call-site arrays. The header byte packs the
// value type in the low five bits and a size argument in the high
// three.
type valueWriter struct {
	buf *buffer.OutputBuffer
	res *resolver
}

func (w *valueWriter) writeValue(v program.Value) {
	tag := v.Tag()
	switch v := v.(type) {
	case program.ValueByte:
		w.header(tag, 0)
		w.buf.PutU8(uint8(v.Value))
	case program.ValueShort:
		w.writeSigned(tag, int64(v.Value))
	case program.ValueChar:
		w.writeUnsigned(tag, uint64(v.Value))
	case program.ValueInt:
		w.writeSigned(tag, int64(v.Value))
	case program.ValueLong:
		w.writeSigned(tag, v.Value)
	case program.ValueFloat:
		w.writeFloating(tag, uint64(math.Float32bits(v.Value))<<32, 4)
	case program.ValueDouble:
		w.writeFloating(tag, math.Float64bits(v.Value), 8)
	case program.ValueString:
		w.writeUnsigned(tag, uint64(w.res.stringIndex(v.Value)))
	case program.ValueType:
		w.writeUnsigned(tag, uint64(w.res.typeIndex(v.Value)))
	case program.ValueField:
		w.writeUnsigned(tag, uint64(w.res.fieldIndex(v.Value)))
	case program.ValueEnum:
		w.writeUnsigned(tag, uint64(w.res.fieldIndex(v.Value)))
	case program.ValueMethod:
		w.writeUnsigned(tag, uint64(w.res.methodIndex(v.Value)))
	case program.ValueMethodType:
		w.writeUnsigned(tag, uint64(w.res.protoIndex(v.Value)))
	case program.ValueMethodHandle:
		w.writeUnsigned(tag, uint64(w.res.methodHandleIndex(v.Value)))
	case program.ValueArray:
		w.header(tag, 0)
		w.writeEncodedArray(v.Values)
	case program.ValueAnnotation:
		w.header(tag, 0)
		w.writeEncodedAnnotation(v.Value)
	case program.ValueNull:
		w.header(tag, 0)
	case program.ValueBoolean:
		if v.Value {
			w.header(tag, 1)
		} else {
			w.header(tag, 0)
		}
	default:
		panic("unhandled encoded value kind")
	}
}

// writeEncodedArray emits a ULEB128 element count followed by the
// element values. The caller writes the VALUE_ARRAY header when the
// array is nested inside another value.
func (w *valueWriter) writeEncodedArray(values []program.Value) {
	w.buf.PutULEB128(uint32(len(values)))
	for _, v := range values {
		w.writeValue(v)
	}
}

// writeEncodedAnnotation emits type index, element count and the
// elements in ascending element-name string index order.
func (w *valueWriter) writeEncodedAnnotation(a *program.EncodedAnnotation) {
	w.buf.PutULEB128(w.res.typeIndex(a.Type))
	w.buf.PutULEB128(uint32(len(a.Elements)))

	elements := make([]program.AnnotationElement, len(a.Elements))
	copy(elements, a.Elements)
	sort.SliceStable(elements, func(i, j int) bool {
		return w.res.stringIndex(elements[i].Name) < w.res.stringIndex(elements[j].Name)
	})

	for _, elem := range elements {
		w.buf.PutULEB128(w.res.stringIndex(elem.Name))
		w.writeValue(elem.Value)
	}
}

func (w *valueWriter) header(tag format.ValueType, arg int) {
	w.buf.PutU8(uint8(arg)<<5 | uint8(tag))
}

// writeSigned emits the minimal sign-extended little-endian
// representation of v.
func (w *valueWriter) writeSigned(tag format.ValueType, v int64) {
	size := 1
	for size < 8 {
		// The dropped high bytes must be recoverable by sign extension.
		shifted := v >> (8 * size)
		signBit := (v >> (8*size - 1)) & 1
		if (shifted == 0 && signBit == 0) || (shifted == -1 && signBit == 1) {
			break
		}
		size++
	}
	w.header(tag, size-1)
	for i := 0; i < size; i++ {
		w.buf.PutU8(uint8(v >> (8 * i)))
	}
}

// writeUnsigned emits the minimal zero-extended little-endian
// representation of v.
func (w *valueWriter) writeUnsigned(tag format.ValueType, v uint64) {
	size := 1
	for size < 8 && v>>(8*size) != 0 {
		size++
	}
	w.header(tag, size-1)
	for i := 0; i < size; i++ {
		w.buf.PutU8(uint8(v >> (8 * i)))
	}
}

// writeFloating emits the minimal representation of an IEEE value whose
// bits occupy the high-order end of a 64-bit word: low-order zero bytes
// are dropped and the reader re-extends them.
func (w *valueWriter) writeFloating(tag format.ValueType, bits uint64, maxSize int) {
	size := maxSize
	shift := 64 - 8*maxSize
	value := bits >> shift
	for size > 1 && value&0xff == 0 {
		value >>= 8
		size--
	}
	w.header(tag, size-1)
	for i := 0; i < size; i++ {
		w.buf.PutU8(uint8(value >> (8 * i)))
	}
}
