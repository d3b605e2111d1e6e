package program

import "github.com/dexfmt/dexwriter/format"

// Value is one encoded_value: a static field initial value, annotation
// element or call-site bootstrap argument. Implementations are the
// Value* types below, one per format.ValueType tag.
type Value interface {
	// Tag returns the encoded_value type tag.
	Tag() format.ValueType

	// IsDefault reports whether the value equals the zero value of its
	// kind, in which case a static field may omit it entirely.
	IsDefault() bool
}

type (
	// ValueByte is a signed 8-bit constant.
	ValueByte struct{ Value int8 }
	// ValueShort is a signed 16-bit constant.
	ValueShort struct{ Value int16 }
	// ValueChar is an unsigned 16-bit constant.
	ValueChar struct{ Value uint16 }
	// ValueInt is a signed 32-bit constant.
	ValueInt struct{ Value int32 }
	// ValueLong is a signed 64-bit constant.
	ValueLong struct{ Value int64 }
	// ValueFloat is a 32-bit IEEE-754 constant.
	ValueFloat struct{ Value float32 }
	// ValueDouble is a 64-bit IEEE-754 constant.
	ValueDouble struct{ Value float64 }
	// ValueString references a string pool entry.
	ValueString struct{ Value string }
	// ValueType references a type pool entry.
	ValueType struct{ Value *Type }
	// ValueField references a field pool entry.
	ValueField struct{ Value *Field }
	// ValueMethod references a method pool entry.
	ValueMethod struct{ Value *Method }
	// ValueEnum references the field holding an enum constant.
	ValueEnum struct{ Value *Field }
	// ValueMethodType references a proto pool entry.
	ValueMethodType struct{ Value *Proto }
	// ValueMethodHandle references a method handle pool entry.
	ValueMethodHandle struct{ Value *MethodHandle }
	// ValueArray is a nested array of values.
	ValueArray struct{ Values []Value }
	// ValueAnnotation is a nested annotation payload.
	ValueAnnotation struct{ Value *EncodedAnnotation }
	// ValueNull is the null reference.
	ValueNull struct{}
	// ValueBoolean is a boolean constant.
	ValueBoolean struct{ Value bool }
)

func (v ValueByte) Tag() format.ValueType         { return format.ValueByte }
func (v ValueShort) Tag() format.ValueType        { return format.ValueShort }
func (v ValueChar) Tag() format.ValueType         { return format.ValueChar }
func (v ValueInt) Tag() format.ValueType          { return format.ValueInt }
func (v ValueLong) Tag() format.ValueType         { return format.ValueLong }
func (v ValueFloat) Tag() format.ValueType        { return format.ValueFloat }
func (v ValueDouble) Tag() format.ValueType       { return format.ValueDouble }
func (v ValueString) Tag() format.ValueType       { return format.ValueString }
func (v ValueType) Tag() format.ValueType         { return format.ValueTypeTag }
func (v ValueField) Tag() format.ValueType        { return format.ValueField }
func (v ValueMethod) Tag() format.ValueType       { return format.ValueMethod }
func (v ValueEnum) Tag() format.ValueType         { return format.ValueEnum }
func (v ValueMethodType) Tag() format.ValueType   { return format.ValueMethodType }
func (v ValueMethodHandle) Tag() format.ValueType { return format.ValueMethodHandle }
func (v ValueArray) Tag() format.ValueType        { return format.ValueArray }
func (v ValueAnnotation) Tag() format.ValueType   { return format.ValueAnnotation }
func (v ValueNull) Tag() format.ValueType         { return format.ValueNull }
func (v ValueBoolean) Tag() format.ValueType      { return format.ValueBoolean }

func (v ValueByte) IsDefault() bool         { return v.Value == 0 }
func (v ValueShort) IsDefault() bool        { return v.Value == 0 }
func (v ValueChar) IsDefault() bool         { return v.Value == 0 }
func (v ValueInt) IsDefault() bool          { return v.Value == 0 }
func (v ValueLong) IsDefault() bool         { return v.Value == 0 }
func (v ValueFloat) IsDefault() bool        { return v.Value == 0 }
func (v ValueDouble) IsDefault() bool       { return v.Value == 0 }
func (v ValueString) IsDefault() bool       { return false }
func (v ValueType) IsDefault() bool         { return false }
func (v ValueField) IsDefault() bool        { return false }
func (v ValueMethod) IsDefault() bool       { return false }
func (v ValueEnum) IsDefault() bool         { return false }
func (v ValueMethodType) IsDefault() bool   { return false }
func (v ValueMethodHandle) IsDefault() bool { return false }
func (v ValueArray) IsDefault() bool        { return false }
func (v ValueAnnotation) IsDefault() bool   { return false }
func (v ValueNull) IsDefault() bool         { return true }
func (v ValueBoolean) IsDefault() bool      { return !v.Value }

// DefaultValueForType returns the zero value a static field of the
// given type holds when no explicit value is recorded.
func DefaultValueForType(t *Type) Value {
	switch t.Descriptor {
	case "Z":
		return ValueBoolean{}
	case "B":
		return ValueByte{}
	case "S":
		return ValueShort{}
	case "C":
		return ValueChar{}
	case "I":
		return ValueInt{}
	case "J":
		return ValueLong{}
	case "F":
		return ValueFloat{}
	case "D":
		return ValueDouble{}
	default:
		return ValueNull{}
	}
}
