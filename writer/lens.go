package writer

import "github.com/dexfmt/dexwriter/program"

// NamingLens maps original type and member references to the names
// emitted into the file. The identity lens is used when no minifier ran;
// a renaming lens must resolve to strings present in the string pool.
type NamingLens interface {
	// LookupDescriptor returns the emitted descriptor for a type.
	LookupDescriptor(t *program.Type) string

	// LookupFieldName returns the emitted name of a field.
	LookupFieldName(f *program.Field) string

	// LookupMethodName returns the emitted name of a method.
	LookupMethodName(m *program.Method) string
}

// GraphLens maps original type references to their rewritten
// references, e.g. after class merging. Applied at every try-handler
// type reference.
type GraphLens interface {
	LookupType(t *program.Type) *program.Type
}

// IdentityNamingLens returns the lens that emits every name unchanged.
func IdentityNamingLens() NamingLens {
	return identityNaming{}
}

// IdentityGraphLens returns the lens that rewrites nothing.
func IdentityGraphLens() GraphLens {
	return identityGraph{}
}

type identityNaming struct{}

func (identityNaming) LookupDescriptor(t *program.Type) string    { return t.Descriptor }
func (identityNaming) LookupFieldName(f *program.Field) string    { return f.Name }
func (identityNaming) LookupMethodName(m *program.Method) string  { return m.Name }

type identityGraph struct{}

func (identityGraph) LookupType(t *program.Type) *program.Type { return t }

// ProguardMap resolves pre-minification names, used to keep the code
// section sort stable across minifier runs.
type ProguardMap interface {
	// OriginalClassName returns the pre-minification name of a type.
	OriginalClassName(t *program.Type) string

	// OriginalMethodSignature returns the pre-minification signature of
	// a method.
	OriginalMethodSignature(m *program.Method) string
}
