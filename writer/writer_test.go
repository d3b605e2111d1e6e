package writer

import (
	"crypto/sha1"
	"encoding/binary"
	"hash/adler32"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dexfmt/dexwriter/errs"
	"github.com/dexfmt/dexwriter/format"
	"github.com/dexfmt/dexwriter/program"
	"github.com/dexfmt/dexwriter/section"
)

func generate(t *testing.T, pools *program.Pools, api int, opts ...Option) []byte {
	t.Helper()

	w, err := NewFileWriter(pools, api, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Release() })

	image, err := w.Generate()
	require.NoError(t, err)

	return image
}

func parseHeader(t *testing.T, image []byte) *section.Header {
	t.Helper()
	h := &section.Header{}
	require.NoError(t, h.Parse(image))

	return h
}

func parseMap(t *testing.T, image []byte, h *section.Header) *section.MapList {
	t.Helper()
	m := &section.MapList{}
	require.NoError(t, m.Parse(image[h.MapOff:]))

	return m
}

func mapEntry(m *section.MapList, code format.TypeCode) (section.MapEntry, bool) {
	for _, e := range m.Entries {
		if e.Type == code {
			return e, true
		}
	}

	return section.MapEntry{}, false
}

func verifySeals(t *testing.T, image []byte) {
	t.Helper()

	checksum := binary.LittleEndian.Uint32(image[format.ChecksumOffset:])
	require.Equal(t, adler32.Checksum(image[format.SignatureOffset:]), checksum, "checksum")

	signature := sha1.Sum(image[format.FileSizeOffset:])
	require.Equal(t, signature[:], image[format.SignatureOffset:format.SignatureOffset+20], "signature")
}

func objectType() *program.Type { return program.NewType("Ljava/lang/Object;") }

func voidProto() *program.Proto {
	return &program.Proto{ReturnType: program.NewType("V")}
}

func buildPools(t *testing.T, classes ...*program.Class) *program.Pools {
	t.Helper()
	b := program.NewBuilder()
	for _, c := range classes {
		b.AddClass(c)
	}
	pools, err := b.Build()
	require.NoError(t, err)

	return pools
}

func TestGenerate_EmptyProgram(t *testing.T) {
	pools, err := program.NewBuilder().Build()
	require.NoError(t, err)

	image := generate(t, pools, 26)

	h := parseHeader(t, image)
	require.Equal(t, uint32(len(image)), h.FileSize)
	require.Equal(t, uint32(0), h.StringIDsSize)
	require.Equal(t, uint32(0), h.StringIDsOff)
	require.Equal(t, uint32(0), h.ClassDefsSize)
	require.Equal(t, uint32(0), h.ClassDefsOff)
	require.Equal(t, uint32(format.HeaderSize), h.DataOff)
	require.Equal(t, uint32(len(image)-format.HeaderSize), h.DataSize)

	m := parseMap(t, image, h)
	require.Len(t, m.Entries, 2)
	require.Equal(t, format.TypeHeaderItem, m.Entries[0].Type)
	require.Equal(t, format.TypeMapList, m.Entries[1].Type)
	require.Equal(t, h.MapOff, m.Entries[1].Offset)

	verifySeals(t, image)
}

func TestGenerate_ClassWithMethodReferenceOnly(t *testing.T) {
	classType := program.NewType("La/A;")
	b := program.NewBuilder()
	b.AddClass(&program.Class{Type: classType, SuperType: objectType()})
	b.AddMethodReference(&program.Method{Class: classType, Proto: voidProto(), Name: "main"})
	pools, err := b.Build()
	require.NoError(t, err)

	image := generate(t, pools, 26)
	h := parseHeader(t, image)

	require.Equal(t, uint32(1), h.ProtoIDsSize)
	require.Equal(t, uint32(1), h.MethodIDsSize)
	require.Equal(t, uint32(1), h.ClassDefsSize)

	m := parseMap(t, image, h)
	var codes []format.TypeCode
	for _, e := range m.Entries {
		codes = append(codes, e.Type)
	}
	require.Equal(t, []format.TypeCode{
		format.TypeHeaderItem,
		format.TypeStringIDItem,
		format.TypeTypeIDItem,
		format.TypeProtoIDItem,
		format.TypeMethodIDItem,
		format.TypeClassDefItem,
		format.TypeMapList,
		format.TypeStringDataItem,
	}, codes)

	// class_def_item: no data, no code, no annotations, no statics.
	classDef := image[h.ClassDefsOff : h.ClassDefsOff+format.ClassDefSize]
	require.Equal(t, uint32(0), binary.LittleEndian.Uint32(classDef[12:]))              // interfaces_off
	require.Equal(t, uint32(format.NoIndex), binary.LittleEndian.Uint32(classDef[16:])) // source_file_idx
	require.Equal(t, uint32(0), binary.LittleEndian.Uint32(classDef[20:]))              // annotations_off
	require.Equal(t, uint32(0), binary.LittleEndian.Uint32(classDef[24:]))              // class_data_off
	require.Equal(t, uint32(0), binary.LittleEndian.Uint32(classDef[28:]))              // static_values_off

	verifySeals(t, image)
}

func TestGenerate_ReturnVoidMethod(t *testing.T) {
	classType := program.NewType("La/A;")
	method := &program.Method{Class: classType, Proto: voidProto(), Name: "run"}
	code := &program.Code{RegistersSize: 1, Instructions: []uint16{0x000e}}

	pools := buildPools(t, &program.Class{
		Type:      classType,
		SuperType: objectType(),
		DirectMethods: []*program.EncodedMethod{
			{Method: method, AccessFlags: format.AccPublic | format.AccStatic, Code: code},
		},
	})

	image := generate(t, pools, 26)
	h := parseHeader(t, image)
	m := parseMap(t, image, h)

	codeEntry, ok := mapEntry(m, format.TypeCodeItem)
	require.True(t, ok)
	require.Equal(t, uint32(1), codeEntry.Count)
	require.Zero(t, codeEntry.Offset%format.DataAlignment)

	item := image[codeEntry.Offset:]
	require.Equal(t, uint16(1), binary.LittleEndian.Uint16(item[0:]))  // registers_size
	require.Equal(t, uint16(0), binary.LittleEndian.Uint16(item[2:]))  // ins_size
	require.Equal(t, uint16(0), binary.LittleEndian.Uint16(item[4:]))  // outs_size
	require.Equal(t, uint16(0), binary.LittleEndian.Uint16(item[6:]))  // tries_size
	require.Equal(t, uint32(0), binary.LittleEndian.Uint32(item[8:]))  // debug_info_off
	require.Equal(t, uint32(1), binary.LittleEndian.Uint32(item[12:])) // insns_size in code units
	require.Equal(t, uint16(0x000e), binary.LittleEndian.Uint16(item[16:]))

	// class_data: 0 static fields, 0 instance fields, 1 direct method
	// with delta-index 0, 0 virtual methods.
	dataEntry, ok := mapEntry(m, format.TypeClassDataItem)
	require.True(t, ok)
	classData := image[dataEntry.Offset:]
	require.Equal(t, byte(0), classData[0])
	require.Equal(t, byte(0), classData[1])
	require.Equal(t, byte(1), classData[2])
	require.Equal(t, byte(0), classData[3])
	require.Equal(t, byte(0), classData[4]) // method delta-index 0

	verifySeals(t, image)
}

func TestGenerate_TryCatchWithCatchAll(t *testing.T) {
	classType := program.NewType("La/A;")
	exceptionType := program.NewType("Ljava/lang/Exception;")
	method := &program.Method{Class: classType, Proto: voidProto(), Name: "risky"}

	handler := &program.TryHandler{
		Pairs:           []program.TypeAddrPair{{Type: exceptionType, Address: 5}},
		HasCatchAll:     true,
		CatchAllAddress: 6,
	}
	code := &program.Code{
		RegistersSize: 2,
		Instructions:  []uint16{0, 0, 0, 0, 0, 0, 0, 0x000e},
		Tries: []*program.TryBlock{
			{StartAddress: 0, InstructionCount: 4, Handler: handler},
		},
	}

	pools := buildPools(t, &program.Class{
		Type:      classType,
		SuperType: objectType(),
		DirectMethods: []*program.EncodedMethod{
			{Method: method, AccessFlags: format.AccPublic | format.AccStatic, Code: code},
		},
	})

	image := generate(t, pools, 26)
	h := parseHeader(t, image)
	m := parseMap(t, image, h)

	codeEntry, ok := mapEntry(m, format.TypeCodeItem)
	require.True(t, ok)
	item := image[codeEntry.Offset:]

	require.Equal(t, uint16(1), binary.LittleEndian.Uint16(item[6:]))  // tries_size
	require.Equal(t, uint32(8), binary.LittleEndian.Uint32(item[12:])) // insns_size

	// 8 code units are 16 bytes, even, so tries start right after them.
	tries := item[16+16:]
	require.Equal(t, uint32(0), binary.LittleEndian.Uint32(tries[0:])) // start_addr
	require.Equal(t, uint16(4), binary.LittleEndian.Uint16(tries[4:])) // insn_count
	handlerOff := binary.LittleEndian.Uint16(tries[6:])
	require.Equal(t, uint16(1), handlerOff) // first handler, after the list-size ULEB

	handlers := item[16+16+8:]
	require.Equal(t, byte(0x01), handlers[0]) // one handler in the list
	require.Equal(t, byte(0x7f), handlers[1]) // SLEB128(-1): one pair plus catch-all

	typeIdx, ok := pools.IndexOfType(exceptionType)
	require.True(t, ok)
	require.Equal(t, byte(typeIdx), handlers[2]) // type index (single ULEB byte here)
	require.Equal(t, byte(5), handlers[3])       // handler address
	require.Equal(t, byte(6), handlers[4])       // catch-all address

	verifySeals(t, image)
}

func TestGenerate_DefaultInterfaceMethodBelowN(t *testing.T) {
	ifaceType := program.NewType("La/Iface;")
	method := &program.Method{Class: ifaceType, Proto: voidProto(), Name: "defaultish"}

	pools := buildPools(t, &program.Class{
		Type:        ifaceType,
		AccessFlags: format.AccInterface | format.AccAbstract | format.AccPublic,
		SuperType:   objectType(),
		VirtualMethods: []*program.EncodedMethod{
			{
				Method:      method,
				AccessFlags: format.AccPublic,
				Code:        &program.Code{RegistersSize: 1, Instructions: []uint16{0x000e}},
			},
		},
	})

	reporter := NewCollectingReporter()
	w, err := NewFileWriter(pools, 23, WithReporter(reporter))
	require.NoError(t, err)

	image, err := w.Generate()
	require.ErrorIs(t, err, errs.ErrInterfaceMethodIllegal)
	require.Nil(t, image)
	require.Len(t, reporter.Fatals, 1)
	require.Contains(t, reporter.Fatals[0].Message, "default interface methods")

	// Same program is legal at N.
	image = generate(t, pools, 24)
	require.Equal(t, "037", parseHeader(t, image).Version.String())
}

func TestGenerate_InterfaceMethodRules(t *testing.T) {
	makeInterface := func(m *program.EncodedMethod) *program.Pools {
		return buildPools(t, &program.Class{
			Type:           program.NewType("La/Iface;"),
			AccessFlags:    format.AccInterface | format.AccAbstract,
			SuperType:      objectType(),
			VirtualMethods: []*program.EncodedMethod{m},
			DirectMethods:  nil,
		})
	}

	ifaceType := program.NewType("La/Iface;")

	t.Run("Constructor is always rejected", func(t *testing.T) {
		pools := buildPools(t, &program.Class{
			Type:        ifaceType,
			AccessFlags: format.AccInterface | format.AccAbstract,
			SuperType:   objectType(),
			DirectMethods: []*program.EncodedMethod{{
				Method:      &program.Method{Class: ifaceType, Proto: voidProto(), Name: "<init>"},
				AccessFlags: format.AccPublic | format.AccConstructor,
				Code:        &program.Code{RegistersSize: 1, Instructions: []uint16{0x000e}},
			}},
		})
		w, err := NewFileWriter(pools, 30)
		require.NoError(t, err)
		_, err = w.Generate()
		require.ErrorIs(t, err, errs.ErrInterfaceMethodIllegal)
	})

	t.Run("Package-private method is rejected", func(t *testing.T) {
		pools := makeInterface(&program.EncodedMethod{
			Method:      &program.Method{Class: ifaceType, Proto: voidProto(), Name: "hidden"},
			AccessFlags: format.AccAbstract,
		})
		w, err := NewFileWriter(pools, 30)
		require.NoError(t, err)
		_, err = w.Generate()
		require.ErrorIs(t, err, errs.ErrInterfaceMethodIllegal)
	})

	t.Run("Clinit is always allowed", func(t *testing.T) {
		pools := buildPools(t, &program.Class{
			Type:        ifaceType,
			AccessFlags: format.AccInterface | format.AccAbstract,
			SuperType:   objectType(),
			DirectMethods: []*program.EncodedMethod{{
				Method:      &program.Method{Class: ifaceType, Proto: voidProto(), Name: "<clinit>"},
				AccessFlags: format.AccStatic | format.AccConstructor,
				Code:        &program.Code{RegistersSize: 1, Instructions: []uint16{0x000e}},
			}},
		})
		generate(t, pools, 14)
	})
}

func TestGenerate_TwoAnnotationsSharingType(t *testing.T) {
	annoType := program.NewType("La/Anno;")
	classType := program.NewType("La/A;")

	set := &program.AnnotationSet{Annotations: []*program.Annotation{
		{
			Visibility: format.VisibilityRuntime,
			Annotation: &program.EncodedAnnotation{
				Type:     annoType,
				Elements: []program.AnnotationElement{{Name: "value", Value: program.ValueInt{Value: 1}}},
			},
		},
		{
			Visibility: format.VisibilityRuntime,
			Annotation: &program.EncodedAnnotation{
				Type:     annoType,
				Elements: []program.AnnotationElement{{Name: "value", Value: program.ValueInt{Value: 2}}},
			},
		},
	}}

	pools := buildPools(t, &program.Class{
		Type:        classType,
		SuperType:   objectType(),
		Annotations: set,
	})

	image := generate(t, pools, 26)
	h := parseHeader(t, image)
	m := parseMap(t, image, h)

	annoEntry, ok := mapEntry(m, format.TypeAnnotationItem)
	require.True(t, ok)
	require.Equal(t, uint32(2), annoEntry.Count)

	setEntry, ok := mapEntry(m, format.TypeAnnotationSetItem)
	require.True(t, ok)
	require.Equal(t, uint32(1), setEntry.Count)

	setData := image[setEntry.Offset:]
	require.Equal(t, uint32(2), binary.LittleEndian.Uint32(setData[0:]))
	first := binary.LittleEndian.Uint32(setData[4:])
	second := binary.LittleEndian.Uint32(setData[8:])
	require.Less(t, first, second)

	dirEntry, ok := mapEntry(m, format.TypeAnnotationsDirectoryItem)
	require.True(t, ok)
	dirData := image[dirEntry.Offset:]
	require.Equal(t, setEntry.Offset, binary.LittleEndian.Uint32(dirData[0:]))

	verifySeals(t, image)
}

func TestGenerate_Determinism(t *testing.T) {
	build := func() *program.Pools {
		classType := program.NewType("La/A;")
		method := &program.Method{Class: classType, Proto: voidProto(), Name: "run"}
		return buildPools(t, &program.Class{
			Type:       classType,
			SuperType:  objectType(),
			SourceFile: "A.java",
			DirectMethods: []*program.EncodedMethod{{
				Method:      method,
				AccessFlags: format.AccPublic | format.AccStatic,
				Code:        &program.Code{RegistersSize: 1, Instructions: []uint16{0x000e}},
			}},
		})
	}

	first := generate(t, build(), 26)
	second := generate(t, build(), 26)
	require.Equal(t, first, second)
}

func TestGenerate_StaticValues(t *testing.T) {
	classType := program.NewType("La/A;")
	intType := program.NewType("I")

	pools := buildPools(t, &program.Class{
		Type:      classType,
		SuperType: objectType(),
		StaticFields: []*program.EncodedField{{
			Field:       &program.Field{Class: classType, Type: intType, Name: "answer"},
			AccessFlags: format.AccPublic | format.AccStatic | format.AccFinal,
			StaticValue: program.ValueInt{Value: 42},
		}},
	})

	image := generate(t, pools, 26)
	h := parseHeader(t, image)
	m := parseMap(t, image, h)

	arrayEntry, ok := mapEntry(m, format.TypeEncodedArrayItem)
	require.True(t, ok)
	require.Equal(t, uint32(1), arrayEntry.Count)

	// encoded_array: count 1, VALUE_INT with size arg 0, byte 42.
	data := image[arrayEntry.Offset:]
	require.Equal(t, byte(1), data[0])
	require.Equal(t, byte(format.ValueInt), data[1])
	require.Equal(t, byte(42), data[2])

	classDef := image[h.ClassDefsOff : h.ClassDefsOff+format.ClassDefSize]
	require.Equal(t, arrayEntry.Offset, binary.LittleEndian.Uint32(classDef[28:]))

	verifySeals(t, image)
}

func TestGenerate_EmptyAnnotationSetPolicy(t *testing.T) {
	build := func() *program.Pools {
		return buildPools(t, &program.Class{
			Type:        program.NewType("La/A;"),
			SuperType:   objectType(),
			Annotations: &program.AnnotationSet{},
		})
	}

	t.Run("Elided at J-MR1 and above", func(t *testing.T) {
		image := generate(t, build(), 17)
		h := parseHeader(t, image)
		m := parseMap(t, image, h)

		_, ok := mapEntry(m, format.TypeAnnotationSetItem)
		require.False(t, ok)
		_, ok = mapEntry(m, format.TypeAnnotationsDirectoryItem)
		require.False(t, ok)

		classDef := image[h.ClassDefsOff : h.ClassDefsOff+format.ClassDefSize]
		require.Equal(t, uint32(0), binary.LittleEndian.Uint32(classDef[20:]))
	})

	t.Run("Materialized below J-MR1", func(t *testing.T) {
		image := generate(t, build(), 16)
		h := parseHeader(t, image)
		m := parseMap(t, image, h)

		setEntry, ok := mapEntry(m, format.TypeAnnotationSetItem)
		require.True(t, ok)
		require.Equal(t, uint32(1), setEntry.Count)
		require.Equal(t, uint32(0), binary.LittleEndian.Uint32(image[setEntry.Offset:]))

		dirEntry, ok := mapEntry(m, format.TypeAnnotationsDirectoryItem)
		require.True(t, ok)
		require.Equal(t, setEntry.Offset, binary.LittleEndian.Uint32(image[dirEntry.Offset:]))
	})
}

func TestGenerate_ParameterAnnotationBugCompat(t *testing.T) {
	classType := program.NewType("La/A;")
	annoType := program.NewType("La/Anno;")
	proto := &program.Proto{
		ReturnType: program.NewType("V"),
		Parameters: []*program.Type{program.NewType("I"), program.NewType("J")},
	}
	method := &program.Method{Class: classType, Proto: proto, Name: "run"}

	annotated := &program.AnnotationSet{Annotations: []*program.Annotation{{
		Visibility: format.VisibilityRuntime,
		Annotation: &program.EncodedAnnotation{Type: annoType},
	}}}

	pools := buildPools(t, &program.Class{
		Type:      classType,
		SuperType: objectType(),
		VirtualMethods: []*program.EncodedMethod{{
			Method:      method,
			AccessFlags: format.AccPublic | format.AccAbstract,
			// First position missing, second annotated.
			ParameterAnnotations: []*program.AnnotationSet{nil, annotated},
		}},
	})

	image := generate(t, pools, 26)
	h := parseHeader(t, image)
	m := parseMap(t, image, h)

	refEntry, ok := mapEntry(m, format.TypeAnnotationSetRefList)
	require.True(t, ok)
	require.Equal(t, uint32(1), refEntry.Count)

	// Bug-compat: count holds only the non-missing positions, and only
	// those are written.
	data := image[refEntry.Offset:]
	require.Equal(t, uint32(1), binary.LittleEndian.Uint32(data[0:]))

	setEntry, ok := mapEntry(m, format.TypeAnnotationSetItem)
	require.True(t, ok)
	require.Equal(t, setEntry.Offset, binary.LittleEndian.Uint32(data[4:]))

	verifySeals(t, image)
}

func TestGenerate_InvokeCustom(t *testing.T) {
	classType := program.NewType("La/A;")
	bootstrapMethod := &program.Method{
		Class: program.NewType("Ljava/lang/invoke/Bootstraps;"),
		Proto: voidProto(),
		Name:  "bootstrap",
	}
	callSite := &program.CallSite{
		Bootstrap:  &program.MethodHandle{Kind: format.HandleInvokeStatic, Method: bootstrapMethod},
		MethodName: "target",
		MethodType: voidProto(),
	}

	build := func() *program.Pools {
		b := program.NewBuilder()
		b.AddClass(&program.Class{Type: classType, SuperType: objectType()})
		b.AddCallSite(callSite)
		pools, err := b.Build()
		require.NoError(t, err)

		return pools
	}

	t.Run("Rejected below O", func(t *testing.T) {
		w, err := NewFileWriter(build(), 24)
		require.NoError(t, err)
		_, err = w.Generate()
		require.ErrorIs(t, err, errs.ErrInvokeCustomUnsupported)
	})

	t.Run("Emitted at O", func(t *testing.T) {
		image := generate(t, build(), 26)
		h := parseHeader(t, image)
		m := parseMap(t, image, h)

		csEntry, ok := mapEntry(m, format.TypeCallSiteIDItem)
		require.True(t, ok)
		require.Equal(t, uint32(1), csEntry.Count)

		mhEntry, ok := mapEntry(m, format.TypeMethodHandleItem)
		require.True(t, ok)
		require.Equal(t, uint32(1), mhEntry.Count)

		arrayEntry, ok := mapEntry(m, format.TypeEncodedArrayItem)
		require.True(t, ok)

		// The call site ID points at its encoded array.
		csOff := binary.LittleEndian.Uint32(image[csEntry.Offset:])
		require.Equal(t, arrayEntry.Offset, csOff)

		// method_handle_item: kind, reserved, member index, reserved.
		mh := image[mhEntry.Offset:]
		require.Equal(t, uint16(format.HandleInvokeStatic), binary.LittleEndian.Uint16(mh[0:]))

		verifySeals(t, image)
	})
}

func TestGenerate_DebugInfo(t *testing.T) {
	classType := program.NewType("La/A;")
	method := &program.Method{Class: classType, Proto: voidProto(), Name: "run"}
	code := &program.Code{
		RegistersSize: 1,
		Instructions:  []uint16{0x000e},
		DebugInfo: &program.DebugInfo{
			LineStart: 10,
			Positions: []program.PositionEntry{{Address: 0, Line: 10}},
		},
	}

	pools := buildPools(t, &program.Class{
		Type:      classType,
		SuperType: objectType(),
		SourceFile: "A.java",
		DirectMethods: []*program.EncodedMethod{{
			Method:      method,
			AccessFlags: format.AccPublic | format.AccStatic,
			Code:        code,
		}},
	})

	image := generate(t, pools, 26)
	h := parseHeader(t, image)
	m := parseMap(t, image, h)

	debugEntry, ok := mapEntry(m, format.TypeDebugInfoItem)
	require.True(t, ok)
	require.Equal(t, uint32(1), debugEntry.Count)

	codeEntry, ok := mapEntry(m, format.TypeCodeItem)
	require.True(t, ok)
	debugOff := binary.LittleEndian.Uint32(image[codeEntry.Offset+8:])
	require.Equal(t, debugEntry.Offset, debugOff)

	// line_start 10, no parameters, one special opcode, end sequence.
	debug := image[debugOff:]
	require.Equal(t, byte(10), debug[0])
	require.Equal(t, byte(0), debug[1])
	require.Equal(t, byte(dbgFirstSpecial+4), debug[2]) // pc +0, line +0
	require.Equal(t, byte(dbgEndSequence), debug[3])

	verifySeals(t, image)
}

func TestGenerate_SharedDebugInfoDeduplicated(t *testing.T) {
	classType := program.NewType("La/A;")
	makeMethod := func(name string) *program.EncodedMethod {
		return &program.EncodedMethod{
			Method:      &program.Method{Class: classType, Proto: voidProto(), Name: name},
			AccessFlags: format.AccPublic | format.AccStatic,
			Code: &program.Code{
				RegistersSize: 1,
				Instructions:  []uint16{0x000e},
				DebugInfo:     &program.DebugInfo{LineStart: 1},
			},
		}
	}

	pools := buildPools(t, &program.Class{
		Type:          classType,
		SuperType:     objectType(),
		DirectMethods: []*program.EncodedMethod{makeMethod("a"), makeMethod("b")},
	})

	image := generate(t, pools, 26)
	h := parseHeader(t, image)
	m := parseMap(t, image, h)

	debugEntry, ok := mapEntry(m, format.TypeDebugInfoItem)
	require.True(t, ok)
	require.Equal(t, uint32(1), debugEntry.Count, "structurally equal debug infos share one item")

	codeEntry, ok := mapEntry(m, format.TypeCodeItem)
	require.True(t, ok)
	require.Equal(t, uint32(2), codeEntry.Count)
}

func TestGenerate_NameValidation(t *testing.T) {
	build := func() *program.Pools {
		classType := program.NewType("La/A;")
		return buildPools(t, &program.Class{
			Type:      classType,
			SuperType: objectType(),
			VirtualMethods: []*program.EncodedMethod{{
				Method:      &program.Method{Class: classType, Proto: voidProto(), Name: "bad;name"},
				AccessFlags: format.AccPublic | format.AccAbstract,
			}},
		})
	}

	w, err := NewFileWriter(build(), 26)
	require.NoError(t, err)
	_, err = w.Generate()
	require.ErrorIs(t, err, errs.ErrNameInvalid)

	// The check is skippable, matching release-mode behaviour.
	generate(t, build(), 26, WithSkipNameValidation())
}

func TestGenerate_ForcedVersion(t *testing.T) {
	pools, err := program.NewBuilder().Build()
	require.NoError(t, err)

	image := generate(t, pools, 14, WithForcedVersion(format.VersionV39))
	require.Equal(t, "039", parseHeader(t, image).Version.String())
}

func TestGenerate_CalledTwice(t *testing.T) {
	pools, err := program.NewBuilder().Build()
	require.NoError(t, err)

	w, err := NewFileWriter(pools, 26)
	require.NoError(t, err)
	defer w.Release()

	_, err = w.Generate()
	require.NoError(t, err)

	_, err = w.Generate()
	require.ErrorIs(t, err, errs.ErrStateOrder)
}

func TestGenerate_OffsetsInsideFile(t *testing.T) {
	classType := program.NewType("La/A;")
	method := &program.Method{Class: classType, Proto: voidProto(), Name: "run"}

	pools := buildPools(t, &program.Class{
		Type:       classType,
		SuperType:  objectType(),
		SourceFile: "A.java",
		DirectMethods: []*program.EncodedMethod{{
			Method:      method,
			AccessFlags: format.AccPublic | format.AccStatic,
			Code:        &program.Code{RegistersSize: 1, Instructions: []uint16{0x000e}},
		}},
	})

	image := generate(t, pools, 26)
	h := parseHeader(t, image)
	m := parseMap(t, image, h)

	for i, e := range m.Entries {
		if i > 0 {
			require.Greater(t, e.Type, m.Entries[i-1].Type, "map entries sorted by type code")
		}
		if e.Type == format.TypeHeaderItem {
			continue
		}
		require.GreaterOrEqual(t, e.Offset, uint32(format.HeaderSize))
		require.Less(t, e.Offset, h.FileSize)
	}

	// Every string ID points at parseable string data.
	for i := 0; i < int(h.StringIDsSize); i++ {
		off := binary.LittleEndian.Uint32(image[int(h.StringIDsOff)+4*i:])
		require.GreaterOrEqual(t, off, uint32(format.HeaderSize))
		require.Less(t, off, h.FileSize)
	}
}
