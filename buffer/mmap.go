package buffer

import (
	"fmt"
	"os"

	"github.com/edsrzf/mmap-go"

	"github.com/dexfmt/dexwriter/errs"
)

// MmapProvider leases file-backed storage. The backing file is sized up
// front and memory-mapped read-write; growing past the mapped size
// fails with errs.ErrBufferExhausted. Use it to emit large images
// without holding them on the Go heap.
type MmapProvider struct {
	path    string
	maxSize int
}

// NewMmapProvider creates a provider mapping the file at path with the
// given maximum image size.
func NewMmapProvider(path string, maxSize int) *MmapProvider {
	return &MmapProvider{path: path, maxSize: maxSize}
}

// Acquire implements Provider. The size hint is ignored; the mapping
// always covers the provider's maximum size.
func (p *MmapProvider) Acquire(_ int) (Storage, error) {
	f, err := os.OpenFile(p.path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open mmap backing file: %w", err)
	}
	if err := f.Truncate(int64(p.maxSize)); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to size mmap backing file: %w", err)
	}

	m, err := mmap.Map(f, mmap.RDWR, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to map backing file: %w", err)
	}

	return &mmapStorage{file: f, mapped: m}, nil
}

type mmapStorage struct {
	file   *os.File
	mapped mmap.MMap
	length int
}

func (s *mmapStorage) Bytes() []byte {
	return s.mapped[:s.length]
}

func (s *mmapStorage) SetLength(n int) error {
	if n > len(s.mapped) {
		return fmt.Errorf("%w: %d bytes requested, mapping is %d", errs.ErrBufferExhausted, n, len(s.mapped))
	}
	if n > s.length {
		clear(s.mapped[s.length:n])
	}
	s.length = n

	return nil
}

func (s *mmapStorage) Release() error {
	flushErr := s.mapped.Flush()
	unmapErr := s.mapped.Unmap()
	truncErr := s.file.Truncate(int64(s.length))
	closeErr := s.file.Close()

	for _, err := range []error{flushErr, unmapErr, truncErr, closeErr} {
		if err != nil {
			return fmt.Errorf("failed to release mmap storage: %w", err)
		}
	}

	return nil
}
