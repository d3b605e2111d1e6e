package program

import "github.com/dexfmt/dexwriter/format"

// EncodedAnnotation is the payload of an annotation: a type and its
// named elements.
type EncodedAnnotation struct {
	Type     *Type
	Elements []AnnotationElement
}

// AnnotationElement is one name/value pair of an annotation.
type AnnotationElement struct {
	Name  string
	Value Value
}

// Annotation is an annotation_item: visibility plus payload.
type Annotation struct {
	Visibility format.AnnotationVisibility
	Annotation *EncodedAnnotation
}

// AnnotationSet is an ordered collection of annotations attached to a
// class, field, method or parameter. Discovery order is preserved; the
// writer sorts entries by annotation type index at emission time.
type AnnotationSet struct {
	Annotations []*Annotation
}

// IsEmpty reports whether the set holds no annotations.
func (s *AnnotationSet) IsEmpty() bool {
	return s == nil || len(s.Annotations) == 0
}

// AnnotationDirectory aggregates every annotation surface of one class.
// Built by the dependency collector; classes that reference no
// annotation set have no directory.
type AnnotationDirectory struct {
	ClassAnnotations *AnnotationSet // may be nil

	FieldAnnotations     []FieldAnnotation
	MethodAnnotations    []MethodAnnotation
	ParameterAnnotations []ParameterAnnotation
}

// IsEmpty reports whether the directory carries no annotations at all.
func (d *AnnotationDirectory) IsEmpty() bool {
	return d.ClassAnnotations.IsEmpty() &&
		len(d.FieldAnnotations) == 0 &&
		len(d.MethodAnnotations) == 0 &&
		len(d.ParameterAnnotations) == 0
}

// FieldAnnotation attaches an annotation set to a field.
type FieldAnnotation struct {
	Field *Field
	Set   *AnnotationSet
}

// MethodAnnotation attaches an annotation set to a method.
type MethodAnnotation struct {
	Method *Method
	Set    *AnnotationSet
}

// ParameterAnnotation attaches a positional annotation set list to a
// method. Nil entries mark parameters without annotations.
type ParameterAnnotation struct {
	Method *Method
	Sets   []*AnnotationSet
}
