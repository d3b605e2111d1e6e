package program

// Pools is the set of ordered, deduplicated index tables the writer
// emits. Indices are zero-based and stable; iteration order is the
// persisted order. Build pools with Builder, which applies the
// canonical DEX sort orders, or assemble them upstream and hand them
// over as-is.
//
// When a renaming lens is in play, pools must be built over the renamed
// strings: the writer resolves lens output against these tables.
type Pools struct {
	strings     []string
	stringIndex map[string]uint32

	types     []*Type
	typeIndex map[string]uint32

	protos     []*Proto
	protoIndex map[string]uint32

	fields     []*Field
	fieldIndex map[string]uint32

	methods     []*Method
	methodIndex map[string]uint32

	classes []*Class

	callSites     []*CallSite
	callSiteIndex map[*CallSite]uint32

	methodHandles     []*MethodHandle
	methodHandleIndex map[string]uint32
}

// StringCount returns the number of string pool entries.
func (p *Pools) StringCount() int { return len(p.strings) }

// StringAt returns the string at index i.
func (p *Pools) StringAt(i int) string { return p.strings[i] }

// IndexOfString returns the pool index of s.
func (p *Pools) IndexOfString(s string) (uint32, bool) {
	idx, ok := p.stringIndex[s]
	return idx, ok
}

// TypeCount returns the number of type pool entries.
func (p *Pools) TypeCount() int { return len(p.types) }

// TypeAt returns the type at index i.
func (p *Pools) TypeAt(i int) *Type { return p.types[i] }

// IndexOfType returns the pool index of the type with t's descriptor.
func (p *Pools) IndexOfType(t *Type) (uint32, bool) {
	idx, ok := p.typeIndex[t.Descriptor]
	return idx, ok
}

// ProtoCount returns the number of proto pool entries.
func (p *Pools) ProtoCount() int { return len(p.protos) }

// ProtoAt returns the proto at index i.
func (p *Pools) ProtoAt(i int) *Proto { return p.protos[i] }

// IndexOfProto returns the pool index of the proto structurally equal
// to pr.
func (p *Pools) IndexOfProto(pr *Proto) (uint32, bool) {
	idx, ok := p.protoIndex[protoKey(pr)]
	return idx, ok
}

// FieldCount returns the number of field pool entries.
func (p *Pools) FieldCount() int { return len(p.fields) }

// FieldAt returns the field at index i.
func (p *Pools) FieldAt(i int) *Field { return p.fields[i] }

// IndexOfField returns the pool index of the field structurally equal
// to f.
func (p *Pools) IndexOfField(f *Field) (uint32, bool) {
	idx, ok := p.fieldIndex[fieldKey(f)]
	return idx, ok
}

// MethodCount returns the number of method pool entries.
func (p *Pools) MethodCount() int { return len(p.methods) }

// MethodAt returns the method at index i.
func (p *Pools) MethodAt(i int) *Method { return p.methods[i] }

// IndexOfMethod returns the pool index of the method structurally equal
// to m.
func (p *Pools) IndexOfMethod(m *Method) (uint32, bool) {
	idx, ok := p.methodIndex[methodKey(m)]
	return idx, ok
}

// ClassCount returns the number of class definitions.
func (p *Pools) ClassCount() int { return len(p.classes) }

// ClassAt returns the class definition at index i.
func (p *Pools) ClassAt(i int) *Class { return p.classes[i] }

// Classes returns the class definitions in pool order. The returned
// slice is owned by the pools.
func (p *Pools) Classes() []*Class { return p.classes }

// CallSiteCount returns the number of call site pool entries.
func (p *Pools) CallSiteCount() int { return len(p.callSites) }

// CallSiteAt returns the call site at index i.
func (p *Pools) CallSiteAt(i int) *CallSite { return p.callSites[i] }

// IndexOfCallSite returns the pool index of cs. Call sites are
// identified by object, not by structure.
func (p *Pools) IndexOfCallSite(cs *CallSite) (uint32, bool) {
	idx, ok := p.callSiteIndex[cs]
	return idx, ok
}

// MethodHandleCount returns the number of method handle pool entries.
func (p *Pools) MethodHandleCount() int { return len(p.methodHandles) }

// MethodHandleAt returns the method handle at index i.
func (p *Pools) MethodHandleAt(i int) *MethodHandle { return p.methodHandles[i] }

// IndexOfMethodHandle returns the pool index of the handle structurally
// equal to h.
func (p *Pools) IndexOfMethodHandle(h *MethodHandle) (uint32, bool) {
	idx, ok := p.methodHandleIndex[methodHandleKey(h)]
	return idx, ok
}
