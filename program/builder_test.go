package program

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dexfmt/dexwriter/format"
)

func TestCompareUTF16(t *testing.T) {
	require.Equal(t, 0, CompareUTF16("abc", "abc"))
	require.Equal(t, -1, CompareUTF16("a", "b"))
	require.Equal(t, 1, CompareUTF16("b", "a"))
	require.Equal(t, -1, CompareUTF16("a", "ab"))

	// Supplementary characters sort by their surrogate halves (0xD800+),
	// below U+FFFF — the opposite of Go's native byte order.
	require.Equal(t, -1, CompareUTF16("\U00010000", "￿"))
	require.Equal(t, 1, CompareUTF16("￿", "\U00010000"))
}

func TestShortyOf(t *testing.T) {
	proto := &Proto{
		ReturnType: NewType("V"),
		Parameters: []*Type{NewType("I"), NewType("Ljava/lang/String;"), NewType("[I")},
	}
	require.Equal(t, "VILL", ShortyOf(proto))
}

func TestBuilder_StringAndTypeOrder(t *testing.T) {
	b := NewBuilder()
	b.AddClass(&Class{
		Type:      NewType("Lb/B;"),
		SuperType: NewType("Ljava/lang/Object;"),
	})
	b.AddClass(&Class{
		Type:      NewType("La/A;"),
		SuperType: NewType("Ljava/lang/Object;"),
	})

	pools, err := b.Build()
	require.NoError(t, err)

	require.Equal(t, 3, pools.TypeCount())
	require.Equal(t, "La/A;", pools.TypeAt(0).Descriptor)
	require.Equal(t, "Lb/B;", pools.TypeAt(1).Descriptor)
	require.Equal(t, "Ljava/lang/Object;", pools.TypeAt(2).Descriptor)

	for i := 1; i < pools.StringCount(); i++ {
		require.Negative(t, CompareUTF16(pools.StringAt(i-1), pools.StringAt(i)))
	}

	idx, ok := pools.IndexOfType(NewType("Lb/B;"))
	require.True(t, ok)
	require.Equal(t, uint32(1), idx)
}

func TestBuilder_MemberOrder(t *testing.T) {
	classType := NewType("La/A;")
	objectType := NewType("Ljava/lang/Object;")
	intType := NewType("I")

	fieldB := &Field{Class: classType, Type: intType, Name: "beta"}
	fieldA := &Field{Class: classType, Type: intType, Name: "alpha"}

	voidProto := &Proto{ReturnType: NewType("V")}
	methodZ := &Method{Class: classType, Proto: voidProto, Name: "zeta"}
	methodA := &Method{Class: classType, Proto: voidProto, Name: "alpha"}

	b := NewBuilder()
	b.AddClass(&Class{
		Type:      classType,
		SuperType: objectType,
		InstanceFields: []*EncodedField{
			{Field: fieldB},
			{Field: fieldA},
		},
		VirtualMethods: []*EncodedMethod{
			{Method: methodZ, AccessFlags: format.AccPublic},
			{Method: methodA, AccessFlags: format.AccPublic},
		},
	})

	pools, err := b.Build()
	require.NoError(t, err)

	require.Equal(t, "alpha", pools.FieldAt(0).Name)
	require.Equal(t, "beta", pools.FieldAt(1).Name)
	require.Equal(t, "alpha", pools.MethodAt(0).Name)
	require.Equal(t, "zeta", pools.MethodAt(1).Name)
}

func TestBuilder_ClassDefOrderRespectsHierarchy(t *testing.T) {
	object := NewType("Ljava/lang/Object;")
	superType := NewType("Lz/Super;")
	ifaceType := NewType("Lz/Iface;")

	sub := &Class{Type: NewType("La/Sub;"), SuperType: superType, Interfaces: []*Type{ifaceType}}
	super := &Class{Type: superType, SuperType: object}
	iface := &Class{Type: ifaceType, SuperType: object, AccessFlags: format.AccInterface | format.AccAbstract}

	b := NewBuilder()
	b.AddClass(sub)
	b.AddClass(super)
	b.AddClass(iface)

	pools, err := b.Build()
	require.NoError(t, err)

	order := make(map[string]int)
	for i, c := range pools.Classes() {
		order[c.Type.Descriptor] = i
	}
	require.Less(t, order["Lz/Super;"], order["La/Sub;"])
	require.Less(t, order["Lz/Iface;"], order["La/Sub;"])
}

func TestBuilder_ProtoDeduplication(t *testing.T) {
	classType := NewType("La/A;")
	p1 := &Proto{ReturnType: NewType("V"), Parameters: []*Type{NewType("I")}}
	p2 := &Proto{ReturnType: NewType("V"), Parameters: []*Type{NewType("I")}}

	b := NewBuilder()
	b.AddClass(&Class{Type: classType, SuperType: NewType("Ljava/lang/Object;")})
	b.AddMethodReference(&Method{Class: classType, Proto: p1, Name: "m1"})
	b.AddMethodReference(&Method{Class: classType, Proto: p2, Name: "m2"})

	pools, err := b.Build()
	require.NoError(t, err)
	require.Equal(t, 1, pools.ProtoCount())

	idx1, ok := pools.IndexOfProto(p1)
	require.True(t, ok)
	idx2, ok := pools.IndexOfProto(p2)
	require.True(t, ok)
	require.Equal(t, idx1, idx2)
}

func TestClass_StaticValues(t *testing.T) {
	classType := NewType("La/A;")
	intType := NewType("I")
	stringType := NewType("Ljava/lang/String;")

	class := &Class{
		Type: classType,
		StaticFields: []*EncodedField{
			{Field: &Field{Class: classType, Type: stringType, Name: "s"}, StaticValue: ValueString{Value: "x"}},
			{Field: &Field{Class: classType, Type: intType, Name: "zero"}, StaticValue: ValueInt{Value: 0}},
			{Field: &Field{Class: classType, Type: intType, Name: "one"}, StaticValue: ValueInt{Value: 1}},
			{Field: &Field{Class: classType, Type: intType, Name: "tail"}},
		},
	}

	values := class.StaticValues()
	require.Len(t, values, 3) // trailing default trimmed
	require.Equal(t, ValueString{Value: "x"}, values[0])
	require.Equal(t, ValueInt{Value: 0}, values[1])
	require.Equal(t, ValueInt{Value: 1}, values[2])

	allDefault := &Class{
		Type: classType,
		StaticFields: []*EncodedField{
			{Field: &Field{Class: classType, Type: intType, Name: "zero"}, StaticValue: ValueInt{}},
		},
	}
	require.Nil(t, allDefault.StaticValues())
}
