// Package buffer implements the cursor-addressable little-endian output
// buffer the DEX writer emits into, together with the storage providers
// that lease its backing memory.
//
// The buffer is exclusively owned by one writer from Acquire until
// StealBuffer or Release. Providers decide where the bytes live: the
// default pooled provider hands out heap slices recycled through a
// sync.Pool, the mmap provider maps a pre-sized file.
package buffer

import (
	"fmt"

	"github.com/dexfmt/dexwriter/errs"
	"github.com/dexfmt/dexwriter/internal/pool"
)

// Storage is a leased growable byte region.
//
// Bytes returns the live region; its length is the current logical
// length. SetLength grows or shrinks the logical length, zero-filling
// newly exposed bytes; growing past provider-imposed bounds returns
// errs.ErrBufferExhausted. Release returns the storage to its provider;
// the region must not be touched afterwards.
type Storage interface {
	Bytes() []byte
	SetLength(n int) error
	Release() error
}

// Provider leases Storage for output buffers.
type Provider interface {
	// Acquire leases storage with at least sizeHint bytes of headroom.
	Acquire(sizeHint int) (Storage, error)
}

// PooledProvider leases heap-backed storage recycled through the
// package-level byte buffer pool. The zero limit means unbounded.
type PooledProvider struct {
	// MaxBytes caps the logical length of leased buffers; 0 means no cap.
	MaxBytes int
}

// NewPooledProvider creates a heap-backed provider without a size cap.
func NewPooledProvider() *PooledProvider {
	return &PooledProvider{}
}

// Acquire implements Provider.
func (p *PooledProvider) Acquire(sizeHint int) (Storage, error) {
	bb := pool.GetImageBuffer()
	bb.Grow(sizeHint)

	return &pooledStorage{bb: bb, maxBytes: p.MaxBytes}, nil
}

type pooledStorage struct {
	bb       *pool.ByteBuffer
	maxBytes int
}

func (s *pooledStorage) Bytes() []byte {
	return s.bb.Bytes()
}

func (s *pooledStorage) SetLength(n int) error {
	if s.maxBytes > 0 && n > s.maxBytes {
		return fmt.Errorf("%w: %d bytes requested, provider cap %d", errs.ErrBufferExhausted, n, s.maxBytes)
	}
	if n <= s.bb.Len() {
		s.bb.SetLength(n)
		return nil
	}
	s.bb.EnsureLength(n)

	return nil
}

func (s *pooledStorage) Release() error {
	pool.PutImageBuffer(s.bb)
	s.bb = nil

	return nil
}
