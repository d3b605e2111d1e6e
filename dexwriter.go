// Package dexwriter serializes a fully-resolved in-memory Android
// application model into a byte-exact, verifier-compliant .dex file.
//
// The model lives in the program package: classes, methods, fields,
// code bodies, annotations and encoded values, tied together by eight
// ordered index pools. The writer package runs the emission pipeline —
// validation, dependency collection, layout planning, section emission,
// map list, header, SHA-1 signature and Adler-32 checksum.
//
// # Basic Usage
//
//	import (
//	    "github.com/dexfmt/dexwriter"
//	    "github.com/dexfmt/dexwriter/program"
//	)
//
//	builder := program.NewBuilder()
//	builder.AddClass(myClass)
//	pools, _ := builder.Build()
//
//	image, err := dexwriter.Generate(pools, 26)
//	if err != nil {
//	    return err
//	}
//	os.WriteFile("classes.dex", image, 0o644)
//
// For fine-grained control — renaming lenses, a custom instruction
// encoder, an mmap-backed output buffer — use the writer package
// directly.
//
// # Package Structure
//
//   - program: in-memory model and index pools
//   - writer: collection, layout and emission pipeline
//   - buffer: cursor-addressable output buffer and storage providers
//   - section: fixed-layout header and map list structs
//   - encoding: ULEB128/SLEB128/ULEB128p1 and MUTF-8 primitives
//   - format: DEX constants (type codes, access flags, API levels)
package dexwriter

import (
	"os"

	"github.com/dexfmt/dexwriter/program"
	"github.com/dexfmt/dexwriter/writer"
)

// Generate emits a DEX image for the pooled program targeting the given
// minimum API level. The returned slice is owned by the caller.
func Generate(pools *program.Pools, minAPILevel int, opts ...writer.Option) ([]byte, error) {
	w, err := writer.NewFileWriter(pools, minAPILevel, opts...)
	if err != nil {
		return nil, err
	}
	if _, err := w.Generate(); err != nil {
		return nil, err
	}

	return w.StealBuffer()
}

// WriteFile emits a DEX image and writes it to path. Returns the file
// size in bytes.
func WriteFile(path string, pools *program.Pools, minAPILevel int, opts ...writer.Option) (int, error) {
	w, err := writer.NewFileWriter(pools, minAPILevel, opts...)
	if err != nil {
		return 0, err
	}
	defer w.Release()

	image, err := w.Generate()
	if err != nil {
		return 0, err
	}
	if err := os.WriteFile(path, image, 0o644); err != nil {
		return 0, err
	}

	return len(image), nil
}
