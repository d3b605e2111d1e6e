package program

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/dexfmt/dexwriter/errs"
)

// Builder collects every entity reachable from a set of classes and
// produces Pools in canonical DEX order: strings by UTF-16 code-unit
// order, types by descriptor, protos by return type then parameters,
// fields and methods by class/name/type triples, classes with
// superclasses and interfaces ahead of their subclasses.
type Builder struct {
	strings map[string]struct{}
	types   map[string]*Type
	protos  map[string]*Proto
	fields  map[string]*Field
	methods map[string]*Method

	classes []*Class

	callSites     []*CallSite
	callSiteSeen  map[*CallSite]struct{}
	methodHandles []*MethodHandle
	handleSeen    map[string]struct{}
}

// NewBuilder creates an empty pool builder.
func NewBuilder() *Builder {
	return &Builder{
		strings:      make(map[string]struct{}),
		types:        make(map[string]*Type),
		protos:       make(map[string]*Proto),
		fields:       make(map[string]*Field),
		methods:      make(map[string]*Method),
		callSiteSeen: make(map[*CallSite]struct{}),
		handleSeen:   make(map[string]struct{}),
	}
}

// AddClass registers a class definition and every entity it references.
func (b *Builder) AddClass(c *Class) {
	b.classes = append(b.classes, c)

	b.addType(c.Type)
	if c.SuperType != nil {
		b.addType(c.SuperType)
	}
	for _, iface := range c.Interfaces {
		b.addType(iface)
	}
	if c.SourceFile != "" {
		b.addString(c.SourceFile)
	}
	b.addAnnotationSet(c.Annotations)

	for _, f := range c.StaticFields {
		b.addEncodedField(f)
	}
	for _, f := range c.InstanceFields {
		b.addEncodedField(f)
	}
	for _, m := range c.DirectMethods {
		b.addEncodedMethod(m)
	}
	for _, m := range c.VirtualMethods {
		b.addEncodedMethod(m)
	}
}

// AddCallSite registers an invoke-custom call site and its bootstrap
// entities.
func (b *Builder) AddCallSite(cs *CallSite) {
	if _, ok := b.callSiteSeen[cs]; ok {
		return
	}
	b.callSiteSeen[cs] = struct{}{}
	b.callSites = append(b.callSites, cs)

	b.AddMethodHandle(cs.Bootstrap)
	b.addString(cs.MethodName)
	b.addProto(cs.MethodType)
	for _, v := range cs.Arguments {
		b.addValue(v)
	}
}

// AddMethodHandle registers a method handle and its target.
func (b *Builder) AddMethodHandle(h *MethodHandle) {
	key := methodHandleKey(h)
	if _, ok := b.handleSeen[key]; ok {
		return
	}
	b.handleSeen[key] = struct{}{}
	b.methodHandles = append(b.methodHandles, h)

	if h.Kind.IsFieldHandle() {
		b.addField(h.Field)
	} else {
		b.addMethod(h.Method)
	}
}

// AddString registers an extra string pool entry, e.g. one referenced
// only from instruction operands.
func (b *Builder) AddString(s string) {
	b.addString(s)
}

// AddType registers an extra type pool entry.
func (b *Builder) AddType(t *Type) {
	b.addType(t)
}

// AddFieldReference registers a field reference that no class in the
// program defines, e.g. one named only by instruction operands.
func (b *Builder) AddFieldReference(f *Field) {
	b.addField(f)
}

// AddMethodReference registers a method reference that no class in the
// program defines.
func (b *Builder) AddMethodReference(m *Method) {
	b.addMethod(m)
}

// Build produces the sorted, index-assigned pools.
func (b *Builder) Build() (*Pools, error) {
	if len(b.types) > math.MaxUint16+1 {
		return nil, fmt.Errorf("%w: %d types", errs.ErrPoolOverflow, len(b.types))
	}
	if len(b.protos) > math.MaxUint16+1 {
		return nil, fmt.Errorf("%w: %d protos", errs.ErrPoolOverflow, len(b.protos))
	}

	p := &Pools{
		stringIndex:       make(map[string]uint32, len(b.strings)),
		typeIndex:         make(map[string]uint32, len(b.types)),
		protoIndex:        make(map[string]uint32, len(b.protos)),
		fieldIndex:        make(map[string]uint32, len(b.fields)),
		methodIndex:       make(map[string]uint32, len(b.methods)),
		callSiteIndex:     make(map[*CallSite]uint32, len(b.callSites)),
		methodHandleIndex: make(map[string]uint32, len(b.methodHandles)),
	}

	p.strings = make([]string, 0, len(b.strings))
	for s := range b.strings {
		p.strings = append(p.strings, s)
	}
	sort.Slice(p.strings, func(i, j int) bool {
		return CompareUTF16(p.strings[i], p.strings[j]) < 0
	})
	for i, s := range p.strings {
		p.stringIndex[s] = uint32(i)
	}

	p.types = make([]*Type, 0, len(b.types))
	for _, t := range b.types {
		p.types = append(p.types, t)
	}
	sort.Slice(p.types, func(i, j int) bool {
		return CompareTypes(p.types[i], p.types[j]) < 0
	})
	for i, t := range p.types {
		p.typeIndex[t.Descriptor] = uint32(i)
	}

	p.protos = make([]*Proto, 0, len(b.protos))
	for _, pr := range b.protos {
		p.protos = append(p.protos, pr)
	}
	sort.Slice(p.protos, func(i, j int) bool {
		return compareProtos(p.protos[i], p.protos[j]) < 0
	})
	for i, pr := range p.protos {
		p.protoIndex[protoKey(pr)] = uint32(i)
	}

	p.fields = make([]*Field, 0, len(b.fields))
	for _, f := range b.fields {
		p.fields = append(p.fields, f)
	}
	sort.Slice(p.fields, func(i, j int) bool {
		return compareFields(p.fields[i], p.fields[j]) < 0
	})
	for i, f := range p.fields {
		p.fieldIndex[fieldKey(f)] = uint32(i)
	}

	p.methods = make([]*Method, 0, len(b.methods))
	for _, m := range b.methods {
		p.methods = append(p.methods, m)
	}
	sort.Slice(p.methods, func(i, j int) bool {
		return compareMethods(p.methods[i], p.methods[j]) < 0
	})
	for i, m := range p.methods {
		p.methodIndex[methodKey(m)] = uint32(i)
	}

	p.classes = sortClassDefs(b.classes)

	p.callSites = b.callSites
	for i, cs := range p.callSites {
		p.callSiteIndex[cs] = uint32(i)
	}

	p.methodHandles = b.methodHandles
	for i, h := range p.methodHandles {
		p.methodHandleIndex[methodHandleKey(h)] = uint32(i)
	}

	return p, nil
}

func (b *Builder) addString(s string) {
	b.strings[s] = struct{}{}
}

func (b *Builder) addType(t *Type) {
	if _, ok := b.types[t.Descriptor]; !ok {
		b.types[t.Descriptor] = t
	}
	b.addString(t.Descriptor)
}

func (b *Builder) addProto(pr *Proto) {
	if pr.Shorty == "" {
		pr.Shorty = ShortyOf(pr)
	}
	b.addString(pr.Shorty)
	b.addType(pr.ReturnType)
	for _, t := range pr.Parameters {
		b.addType(t)
	}
	key := protoKey(pr)
	if _, ok := b.protos[key]; !ok {
		b.protos[key] = pr
	}
}

func (b *Builder) addField(f *Field) {
	b.addType(f.Class)
	b.addType(f.Type)
	b.addString(f.Name)
	key := fieldKey(f)
	if _, ok := b.fields[key]; !ok {
		b.fields[key] = f
	}
}

func (b *Builder) addMethod(m *Method) {
	b.addType(m.Class)
	b.addProto(m.Proto)
	b.addString(m.Name)
	key := methodKey(m)
	if _, ok := b.methods[key]; !ok {
		b.methods[key] = m
	}
}

func (b *Builder) addEncodedField(f *EncodedField) {
	b.addField(f.Field)
	if f.StaticValue != nil {
		b.addValue(f.StaticValue)
	}
	b.addAnnotationSet(f.Annotations)
}

func (b *Builder) addEncodedMethod(m *EncodedMethod) {
	b.addMethod(m.Method)
	b.addAnnotationSet(m.Annotations)
	for _, set := range m.ParameterAnnotations {
		b.addAnnotationSet(set)
	}
	if m.Code == nil {
		return
	}
	for _, try := range m.Code.Tries {
		for _, pair := range try.Handler.Pairs {
			b.addType(pair.Type)
		}
	}
	if di := m.Code.DebugInfo; di != nil {
		for _, name := range di.ParameterNames {
			if name != "" {
				b.addString(name)
			}
		}
	}
}

func (b *Builder) addAnnotationSet(set *AnnotationSet) {
	if set == nil {
		return
	}
	for _, a := range set.Annotations {
		b.addEncodedAnnotation(a.Annotation)
	}
}

func (b *Builder) addEncodedAnnotation(a *EncodedAnnotation) {
	b.addType(a.Type)
	for _, elem := range a.Elements {
		b.addString(elem.Name)
		b.addValue(elem.Value)
	}
}

func (b *Builder) addValue(v Value) {
	switch v := v.(type) {
	case ValueString:
		b.addString(v.Value)
	case ValueType:
		b.addType(v.Value)
	case ValueField:
		b.addField(v.Value)
	case ValueEnum:
		b.addField(v.Value)
	case ValueMethod:
		b.addMethod(v.Value)
	case ValueMethodType:
		b.addProto(v.Value)
	case ValueMethodHandle:
		b.AddMethodHandle(v.Value)
	case ValueArray:
		for _, elem := range v.Values {
			b.addValue(elem)
		}
	case ValueAnnotation:
		b.addEncodedAnnotation(v.Value)
	default:
		// scalar kinds carry no pool references
	}
}

// ShortyOf computes the shorty descriptor of a prototype: one character
// for the return type followed by one per parameter, with every
// reference type collapsed to 'L'.
func ShortyOf(p *Proto) string {
	var sb strings.Builder
	sb.WriteByte(shortyChar(p.ReturnType))
	for _, t := range p.Parameters {
		sb.WriteByte(shortyChar(t))
	}

	return sb.String()
}

func shortyChar(t *Type) byte {
	if t.IsPrimitive() {
		return t.Descriptor[0]
	}

	return 'L'
}

func compareProtos(a, b *Proto) int {
	if c := CompareTypes(a.ReturnType, b.ReturnType); c != 0 {
		return c
	}
	for i := 0; i < len(a.Parameters) && i < len(b.Parameters); i++ {
		if c := CompareTypes(a.Parameters[i], b.Parameters[i]); c != 0 {
			return c
		}
	}

	return len(a.Parameters) - len(b.Parameters)
}

func compareFields(a, b *Field) int {
	if c := CompareTypes(a.Class, b.Class); c != 0 {
		return c
	}
	if c := CompareUTF16(a.Name, b.Name); c != 0 {
		return c
	}

	return CompareTypes(a.Type, b.Type)
}

func compareMethods(a, b *Method) int {
	if c := CompareTypes(a.Class, b.Class); c != 0 {
		return c
	}
	if c := CompareUTF16(a.Name, b.Name); c != 0 {
		return c
	}

	return compareProtos(a.Proto, b.Proto)
}

// sortClassDefs orders class definitions so that superclasses and
// implemented interfaces defined in the program precede their
// subclasses, keeping the incoming order otherwise.
func sortClassDefs(classes []*Class) []*Class {
	byDescriptor := make(map[string]*Class, len(classes))
	for _, c := range classes {
		byDescriptor[c.Type.Descriptor] = c
	}

	ordered := make([]*Class, 0, len(classes))
	state := make(map[string]int, len(classes)) // 0 new, 1 visiting, 2 done

	var visit func(c *Class)
	visit = func(c *Class) {
		switch state[c.Type.Descriptor] {
		case 1:
			// Inheritance cycle; emission order is best-effort here and
			// the verifier rejects the cycle anyway.
			return
		case 2:
			return
		}
		state[c.Type.Descriptor] = 1

		if c.SuperType != nil {
			if super, ok := byDescriptor[c.SuperType.Descriptor]; ok {
				visit(super)
			}
		}
		for _, iface := range c.Interfaces {
			if impl, ok := byDescriptor[iface.Descriptor]; ok {
				visit(impl)
			}
		}

		state[c.Type.Descriptor] = 2
		ordered = append(ordered, c)
	}

	for _, c := range classes {
		visit(c)
	}

	return ordered
}
