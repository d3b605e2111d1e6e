// Package encoding implements the variable-length scalar encodings of
// the DEX format: ULEB128, SLEB128, ULEB128p1 and MUTF-8 string data.
//
// All functions are append-style and allocation-free on the happy path;
// the byte-level writers used during emission live in the buffer
// package and delegate here.
package encoding

// AppendULEB128 appends the unsigned LEB128 encoding of v to dst and
// returns the extended slice.
func AppendULEB128(dst []byte, v uint32) []byte {
	for v >= 0x80 {
		dst = append(dst, byte(v)|0x80)
		v >>= 7
	}

	return append(dst, byte(v))
}

// AppendSLEB128 appends the signed LEB128 encoding of v to dst and
// returns the extended slice.
func AppendSLEB128(dst []byte, v int32) []byte {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0) {
			return append(dst, b)
		}
		dst = append(dst, b|0x80)
	}
}

// AppendULEB128p1 appends the ULEB128 encoding of v+1 to dst. The
// encoding represents -1 as 0 and is used for optional indices.
func AppendULEB128p1(dst []byte, v int32) []byte {
	return AppendULEB128(dst, uint32(v+1))
}

// ULEB128Size returns the number of bytes AppendULEB128 produces for v.
func ULEB128Size(v uint32) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}

	return n
}

// SLEB128Size returns the number of bytes AppendSLEB128 produces for v.
func SLEB128Size(v int32) int {
	n := 0
	for {
		b := byte(v & 0x7f)
		v >>= 7
		n++
		if (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0) {
			return n
		}
	}
}
