package pool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestByteBuffer_EnsureLength(t *testing.T) {
	bb := NewByteBuffer(8)
	bb.B = append(bb.B, 1, 2, 3)

	bb.EnsureLength(6)
	require.Equal(t, []byte{1, 2, 3, 0, 0, 0}, bb.Bytes())

	// Shrinking is not EnsureLength's job.
	bb.EnsureLength(2)
	require.Equal(t, 6, bb.Len())
}

func TestByteBuffer_Grow(t *testing.T) {
	bb := NewByteBuffer(4)
	bb.B = append(bb.B, 1, 2)

	bb.Grow(1024)
	require.GreaterOrEqual(t, bb.Cap()-bb.Len(), 1024)
	require.Equal(t, []byte{1, 2}, bb.Bytes())
}

func TestByteBufferPool_Reuse(t *testing.T) {
	p := NewByteBufferPool(16, 1024)

	bb := p.Get()
	require.NotNil(t, bb)
	bb.B = append(bb.B, 0xaa)
	p.Put(bb)

	reused := p.Get()
	require.Equal(t, 0, reused.Len())
}

func TestByteBufferPool_DiscardsOversized(t *testing.T) {
	p := NewByteBufferPool(16, 32)

	bb := p.Get()
	bb.Grow(1024)
	p.Put(bb) // over threshold, dropped

	fresh := p.Get()
	require.LessOrEqual(t, fresh.Cap(), 1024)
}
