package writer

import (
	"github.com/dexfmt/dexwriter/internal/hash"
	"github.com/dexfmt/dexwriter/program"
)

// Mixed-item offsets run through a strict lifecycle: unknown until the
// collector registers the item, pending until the item writer reaches
// it, then the concrete file offset. Reading a non-concrete offset is
// an internal invariant violation.
const (
	offsetUnknown int64 = -1
	offsetPending int64 = -2
)

type mixedItem struct {
	offset int64
}

func newMixedItem() *mixedItem {
	return &mixedItem{offset: offsetPending}
}

// setOffset records the item's final file offset exactly once.
func (mi *mixedItem) setOffset(pos int) {
	if mi.offset != offsetPending {
		panic("mixed item offset assigned twice or never enqueued")
	}
	mi.offset = int64(pos)
}

// fileOffset returns the concrete offset; the item must already be
// emitted.
func (mi *mixedItem) fileOffset() uint32 {
	if mi.offset < 0 {
		panic("mixed item offset read before emission")
	}

	return uint32(mi.offset)
}

// codeEntry pairs a code body with its owning method; the method
// supplies the deterministic sort key of the code section.
type codeEntry struct {
	method *program.Method
	code   *program.Code
	item   *mixedItem
}

type debugInfoEntry struct {
	info *program.DebugInfo
	item *mixedItem
}

type typeListEntry struct {
	types []*program.Type
	item  *mixedItem
}

type annotationEntry struct {
	annotation *program.Annotation
	item       *mixedItem
}

type annotationSetEntry struct {
	set  *program.AnnotationSet
	item *mixedItem
}

type paramAnnotationsEntry struct {
	sets []*program.AnnotationSet
	item *mixedItem
}

type directoryEntry struct {
	class     *program.Class
	directory *program.AnnotationDirectory
	item      *mixedItem
}

type encodedArrayEntry struct {
	values []program.Value
	item   *mixedItem
}

type classDataEntry struct {
	class *program.Class
	item  *mixedItem
}

// mixedSections is the per-kind registry of mixed-section items.
// Kinds differ in identity: code bodies dedup by object,
// class data by class, everything else by structure through
// digest-keyed registries. Insertion order is discovery order and is
// the emission order.
type mixedSections struct {
	codes     []*codeEntry
	codeIndex map[*program.Code]*codeEntry

	debugInfos *hash.Registry[*debugInfoEntry]
	typeLists  *hash.Registry[*typeListEntry]

	annotations    *hash.Registry[*annotationEntry]
	annotationSets *hash.Registry[*annotationSetEntry]
	paramLists     *hash.Registry[*paramAnnotationsEntry]
	directories    *hash.Registry[*directoryEntry]
	encodedArrays  *hash.Registry[*encodedArrayEntry]

	classData      []*classDataEntry
	classDataIndex map[*program.Class]*classDataEntry

	// classDirs maps every class to its (possibly shared) directory.
	classDirs map[*program.Class]*directoryEntry

	// stringData offsets are tracked per string pool index.
	stringOffsets []*mixedItem

	// emptySet is the shared materialized empty annotation set for
	// API levels below J-MR1; nil when empty sets are elided.
	emptySet *annotationSetEntry
}

func newMixedSections(stringCount int) *mixedSections {
	m := &mixedSections{
		codeIndex:      make(map[*program.Code]*codeEntry),
		debugInfos:     hash.NewRegistry[*debugInfoEntry](),
		typeLists:      hash.NewRegistry[*typeListEntry](),
		annotations:    hash.NewRegistry[*annotationEntry](),
		annotationSets: hash.NewRegistry[*annotationSetEntry](),
		paramLists:     hash.NewRegistry[*paramAnnotationsEntry](),
		directories:    hash.NewRegistry[*directoryEntry](),
		encodedArrays:  hash.NewRegistry[*encodedArrayEntry](),
		classDataIndex: make(map[*program.Class]*classDataEntry),
		classDirs:      make(map[*program.Class]*directoryEntry),
		stringOffsets:  make([]*mixedItem, stringCount),
	}
	for i := range m.stringOffsets {
		m.stringOffsets[i] = newMixedItem()
	}

	return m
}

// addCode registers a code body under reference identity.
func (m *mixedSections) addCode(method *program.Method, code *program.Code) *codeEntry {
	if e, ok := m.codeIndex[code]; ok {
		return e
	}
	e := &codeEntry{method: method, code: code, item: newMixedItem()}
	m.codeIndex[code] = e
	m.codes = append(m.codes, e)

	return e
}

func (m *mixedSections) lookupCode(code *program.Code) *codeEntry {
	e, ok := m.codeIndex[code]
	if !ok {
		panic("code body never registered with the mixed-section table")
	}

	return e
}

func (m *mixedSections) addDebugInfo(k *keyer, info *program.DebugInfo) *debugInfoEntry {
	e, _ := m.debugInfos.GetOrInsert(k.debugInfoKey(info), &debugInfoEntry{info: info, item: newMixedItem()})
	return e
}

func (m *mixedSections) addTypeList(k *keyer, types []*program.Type) *typeListEntry {
	e, _ := m.typeLists.GetOrInsert(k.typeListKey(types), &typeListEntry{types: types, item: newMixedItem()})
	return e
}

func (m *mixedSections) addAnnotation(k *keyer, a *program.Annotation) *annotationEntry {
	e, _ := m.annotations.GetOrInsert(k.annotationKey(a), &annotationEntry{annotation: a, item: newMixedItem()})
	return e
}

func (m *mixedSections) addAnnotationSet(k *keyer, set *program.AnnotationSet) *annotationSetEntry {
	e, _ := m.annotationSets.GetOrInsert(k.annotationSetKey(set), &annotationSetEntry{set: set, item: newMixedItem()})
	return e
}

func (m *mixedSections) addParamList(k *keyer, sets []*program.AnnotationSet) *paramAnnotationsEntry {
	e, _ := m.paramLists.GetOrInsert(k.paramListKey(sets), &paramAnnotationsEntry{sets: sets, item: newMixedItem()})
	return e
}

func (m *mixedSections) addDirectory(k *keyer, class *program.Class, dir *program.AnnotationDirectory) *directoryEntry {
	e, _ := m.directories.GetOrInsert(k.directoryKey(dir), &directoryEntry{class: class, directory: dir, item: newMixedItem()})
	m.classDirs[class] = e

	return e
}

func (m *mixedSections) addEncodedArray(k *keyer, values []program.Value) *encodedArrayEntry {
	e, _ := m.encodedArrays.GetOrInsert(k.encodedArrayKey(values), &encodedArrayEntry{values: values, item: newMixedItem()})
	return e
}

func (m *mixedSections) addClassData(class *program.Class) *classDataEntry {
	e := &classDataEntry{class: class, item: newMixedItem()}
	m.classData = append(m.classData, e)
	m.classDataIndex[class] = e

	return e
}
