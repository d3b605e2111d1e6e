package buffer

import (
	"fmt"

	"github.com/dexfmt/dexwriter/encoding"
	"github.com/dexfmt/dexwriter/endian"
)

// OutputBuffer is a cursor-addressable little-endian byte sink backed by
// provider-leased storage.
//
// The cursor may be moved freely inside the written region for
// backpatching; writing at the cursor extends the logical length as
// needed. Write failures (the provider refusing to grow) are sticky:
// the first error is retained, subsequent writes become no-ops and the
// error surfaces from Err. Alignment violations are programming errors
// and panic.
//
// OutputBuffer is not safe for concurrent use; a buffer belongs to
// exactly one writer.
type OutputBuffer struct {
	storage Storage
	engine  endian.EndianEngine
	pos     int
	end     int // high-water mark of written bytes
	err     error

	scratch []byte // staging area for LEB128 writes
}

// NewOutputBuffer leases storage from the provider and returns a buffer
// positioned at 0.
func NewOutputBuffer(provider Provider, sizeHint int) (*OutputBuffer, error) {
	storage, err := provider.Acquire(sizeHint)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire output storage: %w", err)
	}

	return &OutputBuffer{
		storage: storage,
		engine:  endian.GetLittleEndianEngine(),
		scratch: make([]byte, 0, 16),
	}, nil
}

// Position returns the current cursor position.
func (b *OutputBuffer) Position() int {
	return b.pos
}

// Length returns the high-water mark of written bytes.
func (b *OutputBuffer) Length() int {
	return b.end
}

// Err returns the first write failure, if any.
func (b *OutputBuffer) Err() error {
	return b.err
}

// MoveTo repositions the cursor to pos.
func (b *OutputBuffer) MoveTo(pos int) {
	if pos < 0 {
		panic("OutputBuffer: negative position")
	}
	b.pos = pos
}

// Forward advances the cursor by n bytes.
func (b *OutputBuffer) Forward(n int) {
	b.MoveTo(b.pos + n)
}

// Rewind moves the cursor back by n bytes.
func (b *OutputBuffer) Rewind(n int) {
	b.MoveTo(b.pos - n)
}

// IsAligned reports whether the cursor sits on an n-byte boundary.
func (b *OutputBuffer) IsAligned(n int) bool {
	return b.pos%n == 0
}

// Align advances the cursor to the next n-byte boundary, writing zero
// padding, and returns the aligned position. After a write failure the
// cursor still advances so callers keep their position arithmetic.
func (b *OutputBuffer) Align(n int) int {
	rem := b.pos % n
	switch {
	case rem == 0:
	case b.err != nil:
		b.pos += n - rem
	default:
		for i := rem; i < n; i++ {
			b.PutU8(0)
		}
	}

	return b.pos
}

// ensure grows the logical length so that [0, end) covers the write at
// [pos, pos+n) and returns the backing slice, or nil after a failure.
func (b *OutputBuffer) ensure(n int) []byte {
	if b.err != nil {
		return nil
	}
	if b.pos+n > b.end {
		b.end = b.pos + n
	}
	if err := b.storage.SetLength(b.end); err != nil {
		b.err = err
		return nil
	}

	return b.storage.Bytes()
}

// PutU8 writes one byte at the cursor.
func (b *OutputBuffer) PutU8(v uint8) {
	buf := b.ensure(1)
	if buf == nil {
		return
	}
	buf[b.pos] = v
	b.pos++
}

// PutU16 writes a little-endian uint16 at the cursor.
func (b *OutputBuffer) PutU16(v uint16) {
	buf := b.ensure(2)
	if buf == nil {
		return
	}
	b.engine.PutUint16(buf[b.pos:], v)
	b.pos += 2
}

// PutU32 writes a little-endian uint32 at the cursor.
func (b *OutputBuffer) PutU32(v uint32) {
	buf := b.ensure(4)
	if buf == nil {
		return
	}
	b.engine.PutUint32(buf[b.pos:], v)
	b.pos += 4
}

// PutBytes writes data at the cursor.
func (b *OutputBuffer) PutBytes(data []byte) {
	buf := b.ensure(len(data))
	if buf == nil {
		return
	}
	copy(buf[b.pos:], data)
	b.pos += len(data)
}

// PutULEB128 writes v in unsigned LEB128 form at the cursor.
func (b *OutputBuffer) PutULEB128(v uint32) {
	b.scratch = encoding.AppendULEB128(b.scratch[:0], v)
	b.PutBytes(b.scratch)
}

// PutSLEB128 writes v in signed LEB128 form at the cursor.
func (b *OutputBuffer) PutSLEB128(v int32) {
	b.scratch = encoding.AppendSLEB128(b.scratch[:0], v)
	b.PutBytes(b.scratch)
}

// PutULEB128p1 writes v+1 in unsigned LEB128 form at the cursor.
func (b *OutputBuffer) PutULEB128p1(v int32) {
	b.scratch = encoding.AppendULEB128p1(b.scratch[:0], v)
	b.PutBytes(b.scratch)
}

// RewriteU32 backpatches a little-endian uint32 at pos without moving
// the cursor. The position must already have been written.
func (b *OutputBuffer) RewriteU32(pos int, v uint32) {
	if b.err != nil {
		return
	}
	if pos+4 > b.end {
		panic("OutputBuffer: backpatch outside written region")
	}
	b.engine.PutUint32(b.storage.Bytes()[pos:], v)
}

// Bytes returns the written region [0, Length). The slice aliases the
// leased storage and is invalidated by Release.
func (b *OutputBuffer) Bytes() []byte {
	if b.err != nil {
		return nil
	}

	return b.storage.Bytes()[:b.end]
}

// StealBuffer transfers ownership of the written bytes to the caller
// and detaches the leased storage from the buffer. For heap-backed
// storage the returned slice is the backing memory itself; the storage
// is not returned to its pool.
func (b *OutputBuffer) StealBuffer() []byte {
	if b.err != nil || b.storage == nil {
		return nil
	}
	out := b.storage.Bytes()[:b.end]
	b.storage = nil

	return out
}

// Release returns the leased storage to its provider. Safe to call
// after StealBuffer (no-op) and on all failure paths.
func (b *OutputBuffer) Release() error {
	if b.storage == nil {
		return nil
	}
	storage := b.storage
	b.storage = nil

	return storage.Release()
}
