package writer

import (
	"crypto/sha1"
	"fmt"
	"hash/adler32"
	"sort"

	"github.com/dexfmt/dexwriter/buffer"
	"github.com/dexfmt/dexwriter/errs"
	"github.com/dexfmt/dexwriter/format"
	"github.com/dexfmt/dexwriter/internal/options"
	"github.com/dexfmt/dexwriter/program"
	"github.com/dexfmt/dexwriter/section"
)

// writerState tracks the one-way phase progression of a FileWriter.
type writerState uint8

const (
	stateBuilt writerState = iota
	stateCollected
	statePlanned
	stateEmitted
	stateFinalised
)

// FileWriter assembles one DEX file from a pooled program.
//
// A FileWriter is single-use: create, Generate, then Release (or keep
// the returned bytes and release later). It is not safe for concurrent
// use; emit multiple files with independent writers.
type FileWriter struct {
	pools  *program.Pools
	config *Config

	mixed  *mixedSections
	keys   *keyer
	res    *resolver
	layout *layout
	buf    *buffer.OutputBuffer

	state writerState
}

// NewFileWriter creates a writer for the given pools targeting the
// given minimum API level.
func NewFileWriter(pools *program.Pools, minAPILevel int, opts ...Option) (*FileWriter, error) {
	config := newConfig(minAPILevel)
	if err := options.Apply(config, opts...); err != nil {
		return nil, err
	}

	w := &FileWriter{
		pools:  pools,
		config: config,
		keys:   newKeyer(),
	}
	w.res = &resolver{pools: pools, naming: config.naming, graph: config.graph}

	return w, nil
}

// Generate runs the full pipeline — validate, collect, plan, emit, map,
// header, signature, checksum — and returns the finished image. The
// returned slice aliases the leased storage and stays valid until
// Release; call StealBuffer instead of Release to take ownership.
func (w *FileWriter) Generate() ([]byte, error) {
	if w.state != stateBuilt {
		return nil, fmt.Errorf("%w: Generate called twice", errs.ErrStateOrder)
	}

	if err := w.validate(); err != nil {
		return nil, err
	}
	w.collectItems()
	w.plan()

	if err := w.emit(); err != nil {
		w.releaseOnError()
		return nil, err
	}
	if err := w.finalize(); err != nil {
		w.releaseOnError()
		return nil, err
	}

	return w.buf.Bytes(), nil
}

// Release returns the output storage to its provider. Safe to call more
// than once and after StealBuffer.
func (w *FileWriter) Release() error {
	if w.buf == nil {
		return nil
	}

	return w.buf.Release()
}

// StealBuffer transfers ownership of the finished image to the caller.
// Only valid after a successful Generate.
func (w *FileWriter) StealBuffer() ([]byte, error) {
	if w.state != stateFinalised {
		return nil, fmt.Errorf("%w: StealBuffer before Generate finished", errs.ErrStateOrder)
	}

	return w.buf.StealBuffer(), nil
}

// Reporter returns the configured diagnostics reporter.
func (w *FileWriter) Reporter() Reporter {
	return w.config.reporter
}

func (w *FileWriter) releaseOnError() {
	if w.buf != nil {
		_ = w.buf.Release()
	}
}

func (w *FileWriter) validate() error {
	if err := w.validateInterfaceMethods(); err != nil {
		return err
	}
	if err := w.validateInvokeCustom(); err != nil {
		return err
	}

	return w.validateNames()
}

func (w *FileWriter) collectItems() {
	w.mixed = newMixedSections(w.pools.StringCount())
	newCollector(w.pools, w.mixed, w.keys, w.config).collect()
	w.state = stateCollected
}

func (w *FileWriter) plan() {
	if w.state != stateCollected {
		panic("plan before collect")
	}
	w.layout = planFixedLayout(w.pools)
	w.state = statePlanned
}

func (w *FileWriter) emit() error {
	if w.state != statePlanned {
		panic("emit before plan")
	}

	buf, err := buffer.NewOutputBuffer(w.config.provider, w.layout.dataSectionOff)
	if err != nil {
		return err
	}
	w.buf = buf

	if err := w.emitCodesRegion(); err != nil {
		return err
	}
	w.emitMixedSections()
	w.emitMap()
	w.fillIndexTables()

	w.state = stateEmitted

	return w.buf.Err()
}

// emitCodesRegion writes the code items and their debug infos. Codes
// are 4-aligned but the debug info section that follows them is not, so
// the region is emitted in two passes: skip the precomputed code region
// size, emit the debug infos (making their offsets known), then return
// and emit the code items.
func (w *FileWriter) emitCodesRegion() error {
	w.buf.MoveTo(w.layout.dataSectionOff)

	codes := make([]*codeEntry, len(w.mixed.codes))
	copy(codes, w.mixed.codes)
	sort.SliceStable(codes, func(i, j int) bool {
		return w.codeSortKey(codes[i]) < w.codeSortKey(codes[j])
	})

	if len(codes) == 0 {
		return nil
	}

	codesOff := w.buf.Align(format.DataAlignment)
	setAligned(&w.layout.codesOff, codesOff)

	// Pre-size the code region with the emitter's own size function.
	end := codesOff
	for i, e := range codes {
		if i > 0 {
			end = align(end, format.DataAlignment)
		}
		end += w.sizeOfCodeItem(e.code)
	}

	// Debug infos start right after the last code item, in the same
	// order as the sorted codes.
	w.buf.MoveTo(end)
	debugCount := 0
	for _, e := range codes {
		if e.code.DebugInfo == nil {
			continue
		}
		entry, ok := w.mixed.debugInfos.Lookup(w.keys.debugInfoKey(e.code.DebugInfo))
		if !ok {
			panic("debug info never registered with the mixed-section table")
		}
		if entry.item.offset != offsetPending {
			continue // shared with an earlier method
		}
		if debugCount == 0 {
			setUnaligned(&w.layout.debugInfosOff, w.buf.Position())
		}
		if err := w.writeDebugInfoItem(entry); err != nil {
			return err
		}
		debugCount++
	}

	afterDebug := w.buf.Position()

	// Back to the code region.
	w.buf.MoveTo(codesOff)
	for _, e := range codes {
		w.buf.Align(format.DataAlignment)
		if err := w.writeCodeItem(e); err != nil {
			return err
		}
	}
	if err := w.buf.Err(); err != nil {
		return err
	}
	if w.buf.Position() != end {
		panic("code region size mismatch between size function and emitter")
	}

	w.buf.MoveTo(afterDebug)

	return nil
}

// emitMixedSections writes the remaining mixed sections in dependency
// order. Each non-empty section records its start offset; empty ones
// stay at 0.
func (w *FileWriter) emitMixedSections() {
	if typeLists := w.mixed.typeLists.Values(); len(typeLists) > 0 {
		setAligned(&w.layout.typeListsOff, w.buf.Align(format.DataAlignment))
		for _, e := range typeLists {
			w.writeTypeList(e)
		}
	}

	if w.pools.StringCount() > 0 {
		setUnaligned(&w.layout.stringDataOff, w.buf.Position())
		for i := 0; i < w.pools.StringCount(); i++ {
			w.writeStringData(i, w.pools.StringAt(i))
		}
	}

	if annotations := w.mixed.annotations.Values(); len(annotations) > 0 {
		setUnaligned(&w.layout.annotationsOff, w.buf.Position())
		for _, e := range annotations {
			w.writeAnnotation(e)
		}
	}

	if len(w.mixed.classData) > 0 {
		setUnaligned(&w.layout.classDataOff, w.buf.Position())
		for _, e := range w.mixed.classData {
			w.writeClassData(e)
		}
	}

	if arrays := w.mixed.encodedArrays.Values(); len(arrays) > 0 {
		setUnaligned(&w.layout.encodedArraysOff, w.buf.Position())
		for _, e := range arrays {
			w.writeEncodedArrayItem(e)
		}
	}

	if sets := w.mixed.annotationSets.Values(); len(sets) > 0 {
		setAligned(&w.layout.annotationSetsOff, w.buf.Align(format.DataAlignment))
		for _, e := range sets {
			w.writeAnnotationSet(e)
		}
	}

	if lists := w.mixed.paramLists.Values(); len(lists) > 0 {
		setAligned(&w.layout.annotationSetRefListsOff, w.buf.Align(format.DataAlignment))
		for _, e := range lists {
			w.writeParamList(e)
		}
	}

	if dirs := w.mixed.directories.Values(); len(dirs) > 0 {
		setAligned(&w.layout.annotationDirectoriesOff, w.buf.Align(format.DataAlignment))
		for _, e := range dirs {
			w.writeDirectory(e)
		}
	}
}

// emitMap writes the map list: one entry per non-empty section in
// ascending type code order.
func (w *FileWriter) emitMap() {
	setAligned(&w.layout.mapOff, w.buf.Align(format.DataAlignment))

	entries := w.mapEntries()
	w.buf.PutU32(uint32(len(entries)))
	for _, e := range entries {
		w.buf.PutU16(uint16(e.Type))
		w.buf.PutU16(0)
		w.buf.PutU32(e.Count)
		w.buf.PutU32(e.Offset)
	}

	w.layout.endOfFile = w.buf.Position()
}

func (w *FileWriter) mapEntries() []section.MapEntry {
	var entries []section.MapEntry
	add := func(t format.TypeCode, count, offset int) {
		if count == 0 {
			return
		}
		entries = append(entries, section.MapEntry{Type: t, Count: uint32(count), Offset: uint32(offset)})
	}

	l := w.layout
	add(format.TypeHeaderItem, 1, 0)
	add(format.TypeStringIDItem, w.pools.StringCount(), l.stringIDsOff)
	add(format.TypeTypeIDItem, w.pools.TypeCount(), l.typeIDsOff)
	add(format.TypeProtoIDItem, w.pools.ProtoCount(), l.protoIDsOff)
	add(format.TypeFieldIDItem, w.pools.FieldCount(), l.fieldIDsOff)
	add(format.TypeMethodIDItem, w.pools.MethodCount(), l.methodIDsOff)
	add(format.TypeClassDefItem, w.pools.ClassCount(), l.classDefsOff)
	add(format.TypeCallSiteIDItem, w.pools.CallSiteCount(), l.callSiteIDsOff)
	add(format.TypeMethodHandleItem, w.pools.MethodHandleCount(), l.methodHandlesOff)
	add(format.TypeMapList, 1, l.mapOff)
	add(format.TypeTypeList, w.mixed.typeLists.Len(), l.typeListsOff)
	add(format.TypeAnnotationSetRefList, w.mixed.paramLists.Len(), l.annotationSetRefListsOff)
	add(format.TypeAnnotationSetItem, w.mixed.annotationSets.Len(), l.annotationSetsOff)
	add(format.TypeClassDataItem, len(w.mixed.classData), l.classDataOff)
	add(format.TypeCodeItem, len(w.mixed.codes), l.codesOff)
	add(format.TypeStringDataItem, w.pools.StringCount(), l.stringDataOff)
	add(format.TypeDebugInfoItem, w.mixed.debugInfos.Len(), l.debugInfosOff)
	add(format.TypeAnnotationItem, w.mixed.annotations.Len(), l.annotationsOff)
	add(format.TypeEncodedArrayItem, w.mixed.encodedArrays.Len(), l.encodedArraysOff)
	add(format.TypeAnnotationsDirectoryItem, w.mixed.directories.Len(), l.annotationDirectoriesOff)

	return entries
}

// fillIndexTables seeks back to the end of the header and writes the
// fixed-size ID tables, whose cross-references are all known by now.
func (w *FileWriter) fillIndexTables() {
	w.buf.MoveTo(format.HeaderSize)

	for i := 0; i < w.pools.StringCount(); i++ {
		w.buf.PutU32(w.mixed.stringOffsets[i].fileOffset())
	}

	for i := 0; i < w.pools.TypeCount(); i++ {
		w.buf.PutU32(w.res.descriptorStringIndex(w.pools.TypeAt(i)))
	}

	for i := 0; i < w.pools.ProtoCount(); i++ {
		proto := w.pools.ProtoAt(i)
		w.buf.PutU32(w.res.stringIndex(proto.Shorty))
		w.buf.PutU32(w.res.typeIndex(proto.ReturnType))
		w.buf.PutU32(w.typeListOffset(proto.Parameters))
	}

	for i := 0; i < w.pools.FieldCount(); i++ {
		f := w.pools.FieldAt(i)
		w.buf.PutU16(uint16(w.res.typeIndex(f.Class)))
		w.buf.PutU16(uint16(w.res.typeIndex(f.Type)))
		w.buf.PutU32(w.res.stringIndex(w.config.naming.LookupFieldName(f)))
	}

	for i := 0; i < w.pools.MethodCount(); i++ {
		m := w.pools.MethodAt(i)
		w.buf.PutU16(uint16(w.res.typeIndex(m.Class)))
		w.buf.PutU16(uint16(w.res.protoIndex(m.Proto)))
		w.buf.PutU32(w.res.stringIndex(w.config.naming.LookupMethodName(m)))
	}

	for i := 0; i < w.pools.ClassCount(); i++ {
		w.writeClassDef(w.pools.ClassAt(i))
	}

	for i := 0; i < w.pools.CallSiteCount(); i++ {
		cs := w.pools.CallSiteAt(i)
		entry, ok := w.mixed.encodedArrays.Lookup(w.keys.encodedArrayKey(callSiteValues(cs)))
		if !ok {
			panic("call site array never registered with the mixed-section table")
		}
		w.buf.PutU32(entry.item.fileOffset())
	}

	for i := 0; i < w.pools.MethodHandleCount(); i++ {
		h := w.pools.MethodHandleAt(i)
		w.buf.PutU16(uint16(h.Kind))
		w.buf.PutU16(0)
		if h.Kind.IsFieldHandle() {
			w.buf.PutU16(uint16(w.res.fieldIndex(h.Field)))
		} else {
			w.buf.PutU16(uint16(w.res.methodIndex(h.Method)))
		}
		w.buf.PutU16(0)
	}

	if w.buf.Position() != w.layout.dataSectionOff {
		panic("index tables do not end at the planned data section offset")
	}
}

func (w *FileWriter) writeClassDef(class *program.Class) {
	w.buf.PutU32(w.res.typeIndex(class.Type))
	w.buf.PutU32(uint32(class.AccessFlags))

	if class.SuperType == nil {
		w.buf.PutU32(format.NoIndex)
	} else {
		w.buf.PutU32(w.res.typeIndex(class.SuperType))
	}

	w.buf.PutU32(w.typeListOffset(class.Interfaces))

	if class.SourceFile == "" {
		w.buf.PutU32(format.NoIndex)
	} else {
		w.buf.PutU32(w.res.stringIndex(class.SourceFile))
	}

	w.buf.PutU32(w.directoryOffset(class))
	w.buf.PutU32(w.classDataOffset(class))

	if values := class.StaticValues(); values != nil {
		entry, ok := w.mixed.encodedArrays.Lookup(w.keys.encodedArrayKey(values))
		if !ok {
			panic("static values array never registered with the mixed-section table")
		}
		w.buf.PutU32(entry.item.fileOffset())
	} else {
		w.buf.PutU32(format.NoOffset)
	}
}

func (w *FileWriter) typeListOffset(types []*program.Type) uint32 {
	if len(types) == 0 {
		return format.NoOffset
	}
	entry, ok := w.mixed.typeLists.Lookup(w.keys.typeListKey(types))
	if !ok {
		panic("type list never registered with the mixed-section table")
	}

	return entry.item.fileOffset()
}

func (w *FileWriter) directoryOffset(class *program.Class) uint32 {
	if e, ok := w.mixed.classDirs[class]; ok {
		return e.item.fileOffset()
	}

	return format.NoOffset
}

func (w *FileWriter) classDataOffset(class *program.Class) uint32 {
	if e, ok := w.mixed.classDataIndex[class]; ok {
		return e.item.fileOffset()
	}

	return format.NoOffset
}

// finalize rewrites the header over the finished image and seals it
// with the SHA-1 signature and Adler-32 checksum.
func (w *FileWriter) finalize() error {
	if w.state != stateEmitted {
		panic("finalize before emit")
	}

	l := w.layout
	header := &section.Header{
		Version:  w.config.Version(),
		FileSize: uint32(l.endOfFile),
		MapOff:   uint32(l.mapOff),

		StringIDsSize: uint32(w.pools.StringCount()),
		StringIDsOff:  offsetOrZero(l.stringIDsOff, w.pools.StringCount()),
		TypeIDsSize:   uint32(w.pools.TypeCount()),
		TypeIDsOff:    offsetOrZero(l.typeIDsOff, w.pools.TypeCount()),
		ProtoIDsSize:  uint32(w.pools.ProtoCount()),
		ProtoIDsOff:   offsetOrZero(l.protoIDsOff, w.pools.ProtoCount()),
		FieldIDsSize:  uint32(w.pools.FieldCount()),
		FieldIDsOff:   offsetOrZero(l.fieldIDsOff, w.pools.FieldCount()),
		MethodIDsSize: uint32(w.pools.MethodCount()),
		MethodIDsOff:  offsetOrZero(l.methodIDsOff, w.pools.MethodCount()),
		ClassDefsSize: uint32(w.pools.ClassCount()),
		ClassDefsOff:  offsetOrZero(l.classDefsOff, w.pools.ClassCount()),

		DataSize: uint32(l.endOfFile - l.dataSectionOff),
		DataOff:  uint32(l.dataSectionOff),
	}

	w.buf.MoveTo(0)
	w.buf.PutBytes(header.Bytes())
	if err := w.buf.Err(); err != nil {
		return err
	}

	image := w.buf.Bytes()[:l.endOfFile]

	signature := sha1.Sum(image[format.FileSizeOffset:])
	w.buf.MoveTo(format.SignatureOffset)
	w.buf.PutBytes(signature[:])

	checksum := adler32.Checksum(image[format.SignatureOffset:])
	w.buf.RewriteU32(format.ChecksumOffset, checksum)

	w.state = stateFinalised

	return w.buf.Err()
}

// codeSortKey keys the code section sort: original class name plus
// method signature, resolved through the Proguard map when present so
// the output stays diff-friendly across minifier runs.
func (w *FileWriter) codeSortKey(e *codeEntry) string {
	if pm := w.config.proguardMap; pm != nil {
		return pm.OriginalClassName(e.method.Class) + pm.OriginalMethodSignature(e.method)
	}

	return e.method.Class.Descriptor + e.method.Signature()
}

func align(pos, alignment int) int {
	rem := pos % alignment
	if rem == 0 {
		return pos
	}

	return pos + alignment - rem
}
