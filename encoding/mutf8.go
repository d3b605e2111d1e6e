package encoding

import "unicode/utf16"

// AppendMUTF8 appends the modified-UTF-8 encoding of s to dst and
// returns the extended slice. MUTF-8 differs from standard UTF-8 in two
// ways: U+0000 is written as the two-byte sequence 0xC0 0x80, and
// supplementary characters are written as a CESU-8 surrogate pair, each
// half encoded as a three-byte sequence. The trailing NUL terminator of
// a string_data_item is not appended here.
func AppendMUTF8(dst []byte, s string) []byte {
	for _, r := range s {
		switch {
		case r == 0:
			dst = append(dst, 0xc0, 0x80)
		case r < 0x80:
			dst = append(dst, byte(r))
		case r < 0x800:
			dst = append(dst, byte(0xc0|r>>6), byte(0x80|r&0x3f))
		case r < 0x10000:
			dst = append(dst, byte(0xe0|r>>12), byte(0x80|(r>>6)&0x3f), byte(0x80|r&0x3f))
		default:
			hi, lo := utf16.EncodeRune(r)
			dst = append(dst, byte(0xe0|hi>>12), byte(0x80|(hi>>6)&0x3f), byte(0x80|hi&0x3f))
			dst = append(dst, byte(0xe0|lo>>12), byte(0x80|(lo>>6)&0x3f), byte(0x80|lo&0x3f))
		}
	}

	return dst
}

// UTF16Length returns the number of UTF-16 code units needed to
// represent s. This is the character count a string_data_item carries
// in its ULEB128 prefix.
func UTF16Length(s string) int {
	n := 0
	for _, r := range s {
		n++
		if r >= 0x10000 {
			n++
		}
	}

	return n
}

// MUTF8Size returns the number of bytes AppendMUTF8 produces for s,
// excluding the trailing NUL.
func MUTF8Size(s string) int {
	n := 0
	for _, r := range s {
		switch {
		case r == 0:
			n += 2
		case r < 0x80:
			n++
		case r < 0x800:
			n += 2
		case r < 0x10000:
			n += 3
		default:
			n += 6
		}
	}

	return n
}
