package encoding

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAppendULEB128(t *testing.T) {
	cases := []struct {
		value    uint32
		expected []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{0x7f, []byte{0x7f}},
		{0x80, []byte{0x80, 0x01}},
		{0x3fff, []byte{0xff, 0x7f}},
		{0x4000, []byte{0x80, 0x80, 0x01}},
		{0xffffffff, []byte{0xff, 0xff, 0xff, 0xff, 0x0f}},
	}

	for _, tc := range cases {
		require.Equal(t, tc.expected, AppendULEB128(nil, tc.value), "value %#x", tc.value)
		require.Equal(t, len(tc.expected), ULEB128Size(tc.value), "size of %#x", tc.value)
	}
}

func TestAppendSLEB128(t *testing.T) {
	cases := []struct {
		value    int32
		expected []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{-1, []byte{0x7f}},
		{63, []byte{0x3f}},
		{64, []byte{0xc0, 0x00}},
		{-64, []byte{0x40}},
		{-65, []byte{0xbf, 0x7f}},
		{-128, []byte{0x80, 0x7f}},
		{100, []byte{0xe4, 0x00}},
	}

	for _, tc := range cases {
		require.Equal(t, tc.expected, AppendSLEB128(nil, tc.value), "value %d", tc.value)
		require.Equal(t, len(tc.expected), SLEB128Size(tc.value), "size of %d", tc.value)
	}
}

func TestAppendULEB128p1(t *testing.T) {
	require.Equal(t, []byte{0x00}, AppendULEB128p1(nil, -1))
	require.Equal(t, []byte{0x01}, AppendULEB128p1(nil, 0))
	require.Equal(t, []byte{0x80, 0x01}, AppendULEB128p1(nil, 0x7f))
}
