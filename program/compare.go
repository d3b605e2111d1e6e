package program

import "unicode/utf16"

// CompareUTF16 compares two strings by their UTF-16 code-unit
// sequences, the order the DEX format mandates for the string pool.
// This differs from Go's native byte order for supplementary
// characters, whose surrogate halves sort below some BMP code points.
func CompareUTF16(a, b string) int {
	ua := utf16Units(a)
	ub := utf16Units(b)
	for i := 0; i < len(ua) && i < len(ub); i++ {
		if ua[i] != ub[i] {
			if ua[i] < ub[i] {
				return -1
			}

			return 1
		}
	}

	switch {
	case len(ua) < len(ub):
		return -1
	case len(ua) > len(ub):
		return 1
	default:
		return 0
	}
}

func utf16Units(s string) []uint16 {
	units := make([]uint16, 0, len(s))
	for _, r := range s {
		if r < 0x10000 {
			units = append(units, uint16(r))
			continue
		}
		hi, lo := utf16.EncodeRune(r)
		units = append(units, uint16(hi), uint16(lo))
	}

	return units
}

// CompareTypes orders type references by descriptor.
func CompareTypes(a, b *Type) int {
	return CompareUTF16(a.Descriptor, b.Descriptor)
}
