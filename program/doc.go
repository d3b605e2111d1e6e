// Package program holds the in-memory application model the DEX writer
// serializes: classes with their members, code bodies, annotations,
// encoded values, and the eight ordered index pools (strings, types,
// protos, fields, methods, class definitions, call sites, method
// handles).
//
// Pools assign stable zero-based indices; iteration order is the order
// persisted in the output. Pools are built before writing — typically
// with Builder, which applies the canonical DEX sort orders — and are
// immutable during emission.
//
// Entities are compared by pointer identity where the format requires
// it (code bodies) and by structure where it does not (type lists,
// annotations); the writer package owns the structural keys.
package program
