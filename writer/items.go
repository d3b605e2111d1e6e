package writer

import (
	"fmt"
	"sort"

	"github.com/dexfmt/dexwriter/encoding"
	"github.com/dexfmt/dexwriter/format"
	"github.com/dexfmt/dexwriter/program"
)

// Item writers. Every writer records the item's final offset
// in the mixed-section table the moment emission starts, after any
// required alignment, so later sections resolve their cross-references
// through the table.

func (w *FileWriter) writeStringData(index int, s string) {
	w.mixed.stringOffsets[index].setOffset(w.buf.Position())
	w.buf.PutULEB128(uint32(encoding.UTF16Length(s)))
	w.buf.PutBytes(encoding.AppendMUTF8(nil, s))
	w.buf.PutU8(0)
}

func (w *FileWriter) writeTypeList(e *typeListEntry) {
	w.buf.Align(format.DataAlignment)
	e.item.setOffset(w.buf.Position())
	w.buf.PutU32(uint32(len(e.types)))
	for _, t := range e.types {
		w.buf.PutU16(uint16(w.res.typeIndex(t)))
	}
}

func (w *FileWriter) writeAnnotation(e *annotationEntry) {
	e.item.setOffset(w.buf.Position())
	w.buf.PutU8(uint8(e.annotation.Visibility))
	vw := &valueWriter{buf: w.buf, res: w.res}
	vw.writeEncodedAnnotation(e.annotation.Annotation)
}

func (w *FileWriter) writeAnnotationSet(e *annotationSetEntry) {
	w.buf.Align(format.DataAlignment)
	e.item.setOffset(w.buf.Position())

	annotations := make([]*program.Annotation, len(e.set.Annotations))
	copy(annotations, e.set.Annotations)
	sort.SliceStable(annotations, func(i, j int) bool {
		return w.res.typeIndex(annotations[i].Annotation.Type) < w.res.typeIndex(annotations[j].Annotation.Type)
	})

	w.buf.PutU32(uint32(len(annotations)))
	for _, a := range annotations {
		w.buf.PutU32(w.annotationOffset(a))
	}
}

// writeParamList emits an annotation_set_ref_list. The count field
// holds the non-missing count and only the non-missing positions are
// written; positional readers see a shifted list. This reproduces a
// historical runtime bug and must not be "fixed" here.
func (w *FileWriter) writeParamList(e *paramAnnotationsEntry) {
	w.buf.Align(format.DataAlignment)
	e.item.setOffset(w.buf.Position())

	nonMissing := 0
	for _, set := range e.sets {
		if set != nil {
			nonMissing++
		}
	}

	w.buf.PutU32(uint32(nonMissing))
	for _, set := range e.sets {
		if set == nil {
			continue
		}
		w.buf.PutU32(w.annotationSetOffset(set))
	}
}

func (w *FileWriter) writeDirectory(e *directoryEntry) {
	w.buf.Align(format.DataAlignment)
	e.item.setOffset(w.buf.Position())

	dir := e.directory
	if dir.ClassAnnotations == nil {
		w.buf.PutU32(format.NoOffset)
	} else {
		w.buf.PutU32(w.annotationSetOffset(dir.ClassAnnotations))
	}
	w.buf.PutU32(uint32(len(dir.FieldAnnotations)))
	w.buf.PutU32(uint32(len(dir.MethodAnnotations)))
	w.buf.PutU32(uint32(len(dir.ParameterAnnotations)))

	fields := make([]program.FieldAnnotation, len(dir.FieldAnnotations))
	copy(fields, dir.FieldAnnotations)
	sort.SliceStable(fields, func(i, j int) bool {
		return w.res.fieldIndex(fields[i].Field) < w.res.fieldIndex(fields[j].Field)
	})
	for _, fa := range fields {
		w.buf.PutU32(w.res.fieldIndex(fa.Field))
		w.buf.PutU32(w.annotationSetOffset(fa.Set))
	}

	methods := make([]program.MethodAnnotation, len(dir.MethodAnnotations))
	copy(methods, dir.MethodAnnotations)
	sort.SliceStable(methods, func(i, j int) bool {
		return w.res.methodIndex(methods[i].Method) < w.res.methodIndex(methods[j].Method)
	})
	for _, ma := range methods {
		w.buf.PutU32(w.res.methodIndex(ma.Method))
		w.buf.PutU32(w.annotationSetOffset(ma.Set))
	}

	params := make([]program.ParameterAnnotation, len(dir.ParameterAnnotations))
	copy(params, dir.ParameterAnnotations)
	sort.SliceStable(params, func(i, j int) bool {
		return w.res.methodIndex(params[i].Method) < w.res.methodIndex(params[j].Method)
	})
	for _, pa := range params {
		w.buf.PutU32(w.res.methodIndex(pa.Method))
		w.buf.PutU32(w.paramListOffset(pa.Sets))
	}
}

func (w *FileWriter) writeEncodedArrayItem(e *encodedArrayEntry) {
	e.item.setOffset(w.buf.Position())
	vw := &valueWriter{buf: w.buf, res: w.res}
	vw.writeEncodedArray(e.values)
}

func (w *FileWriter) writeDebugInfoItem(e *debugInfoEntry) error {
	e.item.setOffset(w.buf.Position())
	data, err := w.config.debug.Generate(e.info, w.pools, w.config.naming, w.config.graph)
	if err != nil {
		return fmt.Errorf("failed to encode debug info: %w", err)
	}
	w.buf.PutBytes(data)

	return nil
}

// writeClassData emits the four member lists with delta-encoded member
// indices, each list sorted by ascending pool index so the deltas stay
// strictly increasing.
func (w *FileWriter) writeClassData(e *classDataEntry) {
	e.item.setOffset(w.buf.Position())
	class := e.class

	w.buf.PutULEB128(uint32(len(class.StaticFields)))
	w.buf.PutULEB128(uint32(len(class.InstanceFields)))
	w.buf.PutULEB128(uint32(len(class.DirectMethods)))
	w.buf.PutULEB128(uint32(len(class.VirtualMethods)))

	w.writeFieldList(class.StaticFields)
	w.writeFieldList(class.InstanceFields)
	w.writeMethodList(class.DirectMethods)
	w.writeMethodList(class.VirtualMethods)
}

func (w *FileWriter) writeFieldList(fields []*program.EncodedField) {
	sorted := make([]*program.EncodedField, len(fields))
	copy(sorted, fields)
	sort.SliceStable(sorted, func(i, j int) bool {
		return w.res.fieldIndex(sorted[i].Field) < w.res.fieldIndex(sorted[j].Field)
	})

	previous := uint32(0)
	for _, f := range sorted {
		index := w.res.fieldIndex(f.Field)
		w.buf.PutULEB128(index - previous)
		w.buf.PutULEB128(uint32(f.AccessFlags))
		previous = index
	}
}

func (w *FileWriter) writeMethodList(methods []*program.EncodedMethod) {
	sorted := make([]*program.EncodedMethod, len(methods))
	copy(sorted, methods)
	sort.SliceStable(sorted, func(i, j int) bool {
		return w.res.methodIndex(sorted[i].Method) < w.res.methodIndex(sorted[j].Method)
	})

	previous := uint32(0)
	for _, m := range sorted {
		index := w.res.methodIndex(m.Method)
		w.buf.PutULEB128(index - previous)
		w.buf.PutULEB128(uint32(m.AccessFlags))
		if m.Code == nil {
			w.buf.PutULEB128(format.NoOffset)
		} else {
			w.buf.PutULEB128(w.mixed.lookupCode(m.Code).item.fileOffset())
		}
		previous = index
	}
}

// annotationOffset resolves an emitted annotation's offset.
func (w *FileWriter) annotationOffset(a *program.Annotation) uint32 {
	e, ok := w.mixed.annotations.Lookup(w.keys.annotationKey(a))
	if !ok {
		panic("annotation never registered with the mixed-section table")
	}

	return e.item.fileOffset()
}

// annotationSetOffset resolves an emitted annotation set's offset, with
// 0 for elided empty sets.
func (w *FileWriter) annotationSetOffset(set *program.AnnotationSet) uint32 {
	if set.IsEmpty() && w.config.CanElideEmptyAnnotationSets() {
		return format.NoOffset
	}
	e, ok := w.mixed.annotationSets.Lookup(w.keys.annotationSetKey(set))
	if !ok {
		panic("annotation set never registered with the mixed-section table")
	}

	return e.item.fileOffset()
}

func (w *FileWriter) paramListOffset(sets []*program.AnnotationSet) uint32 {
	e, ok := w.mixed.paramLists.Lookup(w.keys.paramListKey(sets))
	if !ok {
		panic("parameter annotation list never registered with the mixed-section table")
	}

	return e.item.fileOffset()
}
