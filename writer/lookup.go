package writer

import (
	"fmt"

	"github.com/dexfmt/dexwriter/program"
)

// resolver turns entity references into pool indices. A miss is an
// internal invariant violation — the pools were built from the same
// program — so lookups panic instead of returning errors.
type resolver struct {
	pools  *program.Pools
	naming NamingLens
	graph  GraphLens
}

func (r *resolver) stringIndex(s string) uint32 {
	idx, ok := r.pools.IndexOfString(s)
	if !ok {
		panic(fmt.Sprintf("string %q missing from string pool", s))
	}

	return idx
}

func (r *resolver) typeIndex(t *program.Type) uint32 {
	idx, ok := r.pools.IndexOfType(t)
	if !ok {
		panic(fmt.Sprintf("type %s missing from type pool", t.Descriptor))
	}

	return idx
}

// descriptorStringIndex resolves the emitted descriptor of a type
// through the naming lens.
func (r *resolver) descriptorStringIndex(t *program.Type) uint32 {
	return r.stringIndex(r.naming.LookupDescriptor(t))
}

func (r *resolver) protoIndex(p *program.Proto) uint32 {
	idx, ok := r.pools.IndexOfProto(p)
	if !ok {
		panic(fmt.Sprintf("proto %s missing from proto pool", program.ShortyOf(p)))
	}

	return idx
}

func (r *resolver) fieldIndex(f *program.Field) uint32 {
	idx, ok := r.pools.IndexOfField(f)
	if !ok {
		panic(fmt.Sprintf("field %s->%s missing from field pool", f.Class.Descriptor, f.Name))
	}

	return idx
}

func (r *resolver) methodIndex(m *program.Method) uint32 {
	idx, ok := r.pools.IndexOfMethod(m)
	if !ok {
		panic(fmt.Sprintf("method %s->%s missing from method pool", m.Class.Descriptor, m.Name))
	}

	return idx
}

func (r *resolver) methodHandleIndex(h *program.MethodHandle) uint32 {
	idx, ok := r.pools.IndexOfMethodHandle(h)
	if !ok {
		panic("method handle missing from method handle pool")
	}

	return idx
}
