package writer

import (
	"math"

	"github.com/dexfmt/dexwriter/encoding"
	"github.com/dexfmt/dexwriter/program"
)

// keyer builds the canonical byte keys behind structural identity in
// the mixed-section registries. Every variable-length component is
// length-prefixed so concatenation stays unambiguous. Each item kind has
// its own registry, so the keys carry no kind tag.
type keyer struct {
	scratch []byte
}

func newKeyer() *keyer {
	return &keyer{scratch: make([]byte, 0, 256)}
}

func (k *keyer) reset() []byte {
	k.scratch = k.scratch[:0]
	return k.scratch
}

func appendLen(dst []byte, n int) []byte {
	return encoding.AppendULEB128(dst, uint32(n))
}

func appendString(dst []byte, s string) []byte {
	dst = appendLen(dst, len(s))
	return append(dst, s...)
}

func appendU32(dst []byte, v uint32) []byte {
	return append(dst, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

func appendU64(dst []byte, v uint64) []byte {
	dst = appendU32(dst, uint32(v))
	return appendU32(dst, uint32(v>>32))
}

func (k *keyer) typeListKey(types []*program.Type) []byte {
	b := k.reset()
	b = appendLen(b, len(types))
	for _, t := range types {
		b = appendString(b, t.Descriptor)
	}
	k.scratch = b

	return b
}

func (k *keyer) debugInfoKey(info *program.DebugInfo) []byte {
	b := k.reset()
	b = appendU32(b, info.LineStart)
	b = appendLen(b, len(info.ParameterNames))
	for _, name := range info.ParameterNames {
		b = appendString(b, name)
	}
	b = appendLen(b, len(info.Positions))
	for _, pos := range info.Positions {
		b = appendU32(b, pos.Address)
		b = appendU32(b, pos.Line)
	}
	k.scratch = b

	return b
}

func (k *keyer) annotationKey(a *program.Annotation) []byte {
	b := k.reset()
	b = append(b, byte(a.Visibility))
	b = appendEncodedAnnotation(b, a.Annotation)
	k.scratch = b

	return b
}

func (k *keyer) annotationSetKey(set *program.AnnotationSet) []byte {
	b := k.reset()
	if set == nil {
		k.scratch = b
		return b
	}
	b = appendLen(b, len(set.Annotations))
	for _, a := range set.Annotations {
		b = append(b, byte(a.Visibility))
		b = appendEncodedAnnotation(b, a.Annotation)
	}
	k.scratch = b

	return b
}

func (k *keyer) paramListKey(sets []*program.AnnotationSet) []byte {
	b := k.reset()
	b = appendLen(b, len(sets))
	for _, set := range sets {
		if set == nil {
			b = append(b, 0)
			continue
		}
		b = append(b, 1)
		b = appendLen(b, len(set.Annotations))
		for _, a := range set.Annotations {
			b = append(b, byte(a.Visibility))
			b = appendEncodedAnnotation(b, a.Annotation)
		}
	}
	k.scratch = b

	return b
}

func (k *keyer) directoryKey(dir *program.AnnotationDirectory) []byte {
	b := k.reset()
	if dir.ClassAnnotations.IsEmpty() {
		b = append(b, 0)
	} else {
		b = append(b, 1)
		b = appendLen(b, len(dir.ClassAnnotations.Annotations))
		for _, a := range dir.ClassAnnotations.Annotations {
			b = append(b, byte(a.Visibility))
			b = appendEncodedAnnotation(b, a.Annotation)
		}
	}
	b = appendLen(b, len(dir.FieldAnnotations))
	for _, fa := range dir.FieldAnnotations {
		b = appendString(b, fa.Field.Class.Descriptor)
		b = appendString(b, fa.Field.Name)
		b = appendString(b, fa.Field.Type.Descriptor)
		b = appendSetStructure(b, fa.Set)
	}
	b = appendLen(b, len(dir.MethodAnnotations))
	for _, ma := range dir.MethodAnnotations {
		b = appendString(b, ma.Method.Class.Descriptor)
		b = appendString(b, ma.Method.Signature())
		b = appendSetStructure(b, ma.Set)
	}
	b = appendLen(b, len(dir.ParameterAnnotations))
	for _, pa := range dir.ParameterAnnotations {
		b = appendString(b, pa.Method.Class.Descriptor)
		b = appendString(b, pa.Method.Signature())
		b = appendLen(b, len(pa.Sets))
		for _, set := range pa.Sets {
			if set == nil {
				b = append(b, 0)
				continue
			}
			b = append(b, 1)
			b = appendSetStructure(b, set)
		}
	}
	k.scratch = b

	return b
}

func (k *keyer) encodedArrayKey(values []program.Value) []byte {
	b := k.reset()
	b = appendLen(b, len(values))
	for _, v := range values {
		b = appendValue(b, v)
	}
	k.scratch = b

	return b
}

func appendSetStructure(dst []byte, set *program.AnnotationSet) []byte {
	dst = appendLen(dst, len(set.Annotations))
	for _, a := range set.Annotations {
		dst = append(dst, byte(a.Visibility))
		dst = appendEncodedAnnotation(dst, a.Annotation)
	}

	return dst
}

func appendEncodedAnnotation(dst []byte, a *program.EncodedAnnotation) []byte {
	dst = appendString(dst, a.Type.Descriptor)
	dst = appendLen(dst, len(a.Elements))
	for _, elem := range a.Elements {
		dst = appendString(dst, elem.Name)
		dst = appendValue(dst, elem.Value)
	}

	return dst
}

func appendValue(dst []byte, v program.Value) []byte {
	dst = append(dst, byte(v.Tag()))
	switch v := v.(type) {
	case program.ValueByte:
		dst = append(dst, byte(v.Value))
	case program.ValueShort:
		dst = appendU32(dst, uint32(uint16(v.Value)))
	case program.ValueChar:
		dst = appendU32(dst, uint32(v.Value))
	case program.ValueInt:
		dst = appendU32(dst, uint32(v.Value))
	case program.ValueLong:
		dst = appendU64(dst, uint64(v.Value))
	case program.ValueFloat:
		dst = appendU32(dst, math.Float32bits(v.Value))
	case program.ValueDouble:
		dst = appendU64(dst, math.Float64bits(v.Value))
	case program.ValueString:
		dst = appendString(dst, v.Value)
	case program.ValueType:
		dst = appendString(dst, v.Value.Descriptor)
	case program.ValueField:
		dst = appendString(dst, v.Value.Class.Descriptor)
		dst = appendString(dst, v.Value.Name)
		dst = appendString(dst, v.Value.Type.Descriptor)
	case program.ValueEnum:
		dst = appendString(dst, v.Value.Class.Descriptor)
		dst = appendString(dst, v.Value.Name)
		dst = appendString(dst, v.Value.Type.Descriptor)
	case program.ValueMethod:
		dst = appendString(dst, v.Value.Class.Descriptor)
		dst = appendString(dst, v.Value.Signature())
	case program.ValueMethodType:
		dst = appendString(dst, v.Value.ReturnType.Descriptor)
		dst = appendLen(dst, len(v.Value.Parameters))
		for _, p := range v.Value.Parameters {
			dst = appendString(dst, p.Descriptor)
		}
	case program.ValueMethodHandle:
		dst = append(dst, byte(v.Value.Kind))
		if v.Value.Kind.IsFieldHandle() {
			dst = appendString(dst, v.Value.Field.Class.Descriptor)
			dst = appendString(dst, v.Value.Field.Name)
			dst = appendString(dst, v.Value.Field.Type.Descriptor)
		} else {
			dst = appendString(dst, v.Value.Method.Class.Descriptor)
			dst = appendString(dst, v.Value.Method.Signature())
		}
	case program.ValueArray:
		dst = appendLen(dst, len(v.Values))
		for _, elem := range v.Values {
			dst = appendValue(dst, elem)
		}
	case program.ValueAnnotation:
		dst = appendEncodedAnnotation(dst, v.Value)
	case program.ValueBoolean:
		if v.Value {
			dst = append(dst, 1)
		} else {
			dst = append(dst, 0)
		}
	default:
		// ValueNull carries no payload
	}

	return dst
}
