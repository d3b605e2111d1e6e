package format

// AccessFlags is the bit set carried by classes, fields and methods.
type AccessFlags uint32

const (
	AccPublic       AccessFlags = 1 << iota // 0x0001
	AccPrivate                              // 0x0002
	AccProtected                            // 0x0004
	AccStatic                               // 0x0008
	AccFinal                                // 0x0010
	AccSynchronized                         // 0x0020
	AccVolatile                             // 0x0040, AccBridge on methods
	AccTransient                            // 0x0080, AccVarargs on methods
	AccNative                               // 0x0100
	AccInterface                            // 0x0200
	AccAbstract                             // 0x0400
	AccStrict                               // 0x0800
	AccSynthetic                            // 0x1000
	AccAnnotation                           // 0x2000
	AccEnum                                 // 0x4000

	AccBridge  = AccVolatile
	AccVarargs = AccTransient

	AccConstructor            AccessFlags = 0x10000
	AccDeclaredSynchronized   AccessFlags = 0x20000
)

// IsPublic reports whether the public bit is set.
func (f AccessFlags) IsPublic() bool { return f&AccPublic != 0 }

// IsPrivate reports whether the private bit is set.
func (f AccessFlags) IsPrivate() bool { return f&AccPrivate != 0 }

// IsProtected reports whether the protected bit is set.
func (f AccessFlags) IsProtected() bool { return f&AccProtected != 0 }

// IsPackagePrivate reports whether none of the visibility bits is set.
func (f AccessFlags) IsPackagePrivate() bool {
	return f&(AccPublic|AccPrivate|AccProtected) == 0
}

// IsStatic reports whether the static bit is set.
func (f AccessFlags) IsStatic() bool { return f&AccStatic != 0 }

// IsInterface reports whether the interface bit is set.
func (f AccessFlags) IsInterface() bool { return f&AccInterface != 0 }

// IsAbstract reports whether the abstract bit is set.
func (f AccessFlags) IsAbstract() bool { return f&AccAbstract != 0 }

// IsNative reports whether the native bit is set.
func (f AccessFlags) IsNative() bool { return f&AccNative != 0 }

// IsConstructor reports whether the constructor bit is set.
func (f AccessFlags) IsConstructor() bool { return f&AccConstructor != 0 }

// AnnotationVisibility is the 1-byte visibility of an annotation item.
type AnnotationVisibility uint8

const (
	VisibilityBuild   AnnotationVisibility = 0x00
	VisibilityRuntime AnnotationVisibility = 0x01
	VisibilitySystem  AnnotationVisibility = 0x02
)

// ValueType is the low-5-bit tag of an encoded_value.
type ValueType uint8

const (
	ValueByte         ValueType = 0x00
	ValueShort        ValueType = 0x02
	ValueChar         ValueType = 0x03
	ValueInt          ValueType = 0x04
	ValueLong         ValueType = 0x06
	ValueFloat        ValueType = 0x10
	ValueDouble       ValueType = 0x11
	ValueMethodType   ValueType = 0x15
	ValueMethodHandle ValueType = 0x16
	ValueString       ValueType = 0x17
	ValueTypeTag      ValueType = 0x18
	ValueField        ValueType = 0x19
	ValueMethod       ValueType = 0x1a
	ValueEnum         ValueType = 0x1b
	ValueArray        ValueType = 0x1c
	ValueAnnotation   ValueType = 0x1d
	ValueNull         ValueType = 0x1e
	ValueBoolean      ValueType = 0x1f
)

// MethodHandleType is the u16 kind discriminator of a method_handle_item.
type MethodHandleType uint16

const (
	HandleStaticPut        MethodHandleType = 0x00
	HandleStaticGet        MethodHandleType = 0x01
	HandleInstancePut      MethodHandleType = 0x02
	HandleInstanceGet      MethodHandleType = 0x03
	HandleInvokeStatic     MethodHandleType = 0x04
	HandleInvokeInstance   MethodHandleType = 0x05
	HandleInvokeConstructor MethodHandleType = 0x06
	HandleInvokeDirect     MethodHandleType = 0x07
	HandleInvokeInterface  MethodHandleType = 0x08
)

// IsFieldHandle reports whether the handle targets a field.
func (t MethodHandleType) IsFieldHandle() bool {
	return t <= HandleInstanceGet
}
