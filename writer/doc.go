// Package writer serializes a program.Pools model into a byte-exact
// DEX image.
//
// A FileWriter runs a fixed phase pipeline: validate interface methods,
// collect the mixed-section items reachable from the program, plan the
// fixed index layout, emit the data sections in dependency order while
// registering each item's file offset, write the map list, fill in the
// index tables and header, then seal the image with its SHA-1 signature
// and Adler-32 checksum.
//
// A FileWriter is single-use and not safe for concurrent use; produce
// multiple DEX files with independent writers.
package writer
