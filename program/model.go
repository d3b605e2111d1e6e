package program

import (
	"strings"

	"github.com/dexfmt/dexwriter/format"
)

// Type is a reference to a class, array or primitive type, identified
// by its descriptor (for example "Ljava/lang/Object;", "[I", "V").
type Type struct {
	Descriptor string
}

// NewType creates a type reference for the given descriptor.
func NewType(descriptor string) *Type {
	return &Type{Descriptor: descriptor}
}

// IsPrimitive reports whether the type is a primitive (single-letter
// descriptor).
func (t *Type) IsPrimitive() bool {
	return len(t.Descriptor) == 1
}

// IsArray reports whether the type is an array type.
func (t *Type) IsArray() bool {
	return strings.HasPrefix(t.Descriptor, "[")
}

// SimpleName returns the unqualified class name of a reference type,
// or the descriptor itself for primitives and arrays.
func (t *Type) SimpleName() string {
	d := t.Descriptor
	if !strings.HasPrefix(d, "L") || !strings.HasSuffix(d, ";") {
		return d
	}
	d = d[1 : len(d)-1]
	if i := strings.LastIndexByte(d, '/'); i >= 0 {
		d = d[i+1:]
	}

	return d
}

// Proto is a method prototype: shorty, return type and parameter list.
type Proto struct {
	Shorty     string
	ReturnType *Type
	Parameters []*Type
}

// Field is a field reference.
type Field struct {
	Class *Type
	Type  *Type
	Name  string
}

// Method is a method reference.
type Method struct {
	Class *Type
	Proto *Proto
	Name  string
}

// IsInstanceInitializer reports whether the method is "<init>".
func (m *Method) IsInstanceInitializer() bool {
	return m.Name == "<init>"
}

// IsClassInitializer reports whether the method is "<clinit>".
func (m *Method) IsClassInitializer() bool {
	return m.Name == "<clinit>"
}

// Signature returns the method signature in descriptor form, used as a
// stable sort key for code items.
func (m *Method) Signature() string {
	var sb strings.Builder
	sb.WriteString(m.Name)
	sb.WriteByte('(')
	for _, p := range m.Proto.Parameters {
		sb.WriteString(p.Descriptor)
	}
	sb.WriteByte(')')
	sb.WriteString(m.Proto.ReturnType.Descriptor)

	return sb.String()
}

// MethodHandle is a method_handle_item: a kind plus the field or method
// it targets.
type MethodHandle struct {
	Kind   format.MethodHandleType
	Field  *Field  // set for field handles
	Method *Method // set for method handles
}

// CallSite is a call_site_id_item target. Its encoded form is an
// encoded array of bootstrap handle, method name, method type and any
// extra bootstrap arguments.
type CallSite struct {
	Bootstrap  *MethodHandle
	MethodName string
	MethodType *Proto
	Arguments  []Value
}

// Class is one program class definition.
type Class struct {
	Type        *Type
	AccessFlags format.AccessFlags
	SuperType   *Type // nil for java.lang.Object
	Interfaces  []*Type
	SourceFile  string // "" when unknown

	Annotations *AnnotationSet // class annotations, may be nil

	StaticFields   []*EncodedField
	InstanceFields []*EncodedField
	DirectMethods  []*EncodedMethod
	VirtualMethods []*EncodedMethod
}

// IsInterface reports whether the class is an interface.
func (c *Class) IsInterface() bool {
	return c.AccessFlags.IsInterface()
}

// HasData reports whether the class needs a class_data_item.
func (c *Class) HasData() bool {
	return len(c.StaticFields) > 0 || len(c.InstanceFields) > 0 ||
		len(c.DirectMethods) > 0 || len(c.VirtualMethods) > 0
}

// StaticValues returns the static field values array for the class, or
// nil when every static field holds its default value. Trailing
// defaults are trimmed per the format.
func (c *Class) StaticValues() []Value {
	last := -1
	for i, f := range c.StaticFields {
		if f.StaticValue != nil && !f.StaticValue.IsDefault() {
			last = i
		}
	}
	if last < 0 {
		return nil
	}

	values := make([]Value, last+1)
	for i := 0; i <= last; i++ {
		v := c.StaticFields[i].StaticValue
		if v == nil {
			v = DefaultValueForType(c.StaticFields[i].Field.Type)
		}
		values[i] = v
	}

	return values
}

// EncodedField is a field definition inside a class.
type EncodedField struct {
	Field       *Field
	AccessFlags format.AccessFlags
	StaticValue Value          // nil for instance fields and default statics
	Annotations *AnnotationSet // may be nil
}

// EncodedMethod is a method definition inside a class.
type EncodedMethod struct {
	Method      *Method
	AccessFlags format.AccessFlags
	Code        *Code // nil for abstract and native methods

	Annotations          *AnnotationSet   // may be nil
	ParameterAnnotations []*AnnotationSet // positional, nil entries are missing
}

// HasParameterAnnotations reports whether any parameter position
// carries an annotation set.
func (m *EncodedMethod) HasParameterAnnotations() bool {
	for _, set := range m.ParameterAnnotations {
		if set != nil {
			return true
		}
	}

	return false
}
