package section

import (
	"bytes"
	"fmt"

	"github.com/dexfmt/dexwriter/endian"
	"github.com/dexfmt/dexwriter/errs"
	"github.com/dexfmt/dexwriter/format"
)

// Header is the fixed 112-byte header at the start of every DEX file.
//
// Checksum and Signature are filled by the assembler after the rest of
// the image is final; Bytes leaves their space zeroed when unset.
type Header struct {
	Version   format.Version
	Checksum  uint32
	Signature [20]byte

	FileSize uint32
	MapOff   uint32

	StringIDsSize uint32
	StringIDsOff  uint32
	TypeIDsSize   uint32
	TypeIDsOff    uint32
	ProtoIDsSize  uint32
	ProtoIDsOff   uint32
	FieldIDsSize  uint32
	FieldIDsOff   uint32
	MethodIDsSize uint32
	MethodIDsOff  uint32
	ClassDefsSize uint32
	ClassDefsOff  uint32

	DataSize uint32
	DataOff  uint32
}

// Bytes serializes the header into a fresh 112-byte slice.
func (h *Header) Bytes() []byte {
	b := make([]byte, format.HeaderSize)
	engine := endian.GetLittleEndianEngine()

	copy(b[0:4], format.MagicPrefix[:])
	copy(b[4:8], h.Version[:])
	engine.PutUint32(b[format.ChecksumOffset:], h.Checksum)
	copy(b[format.SignatureOffset:format.SignatureOffset+20], h.Signature[:])
	engine.PutUint32(b[format.FileSizeOffset:], h.FileSize)
	engine.PutUint32(b[36:], format.HeaderSize)
	engine.PutUint32(b[40:], format.EndianTag)
	engine.PutUint32(b[44:], 0) // link_size
	engine.PutUint32(b[48:], 0) // link_off
	engine.PutUint32(b[52:], h.MapOff)
	engine.PutUint32(b[56:], h.StringIDsSize)
	engine.PutUint32(b[60:], h.StringIDsOff)
	engine.PutUint32(b[64:], h.TypeIDsSize)
	engine.PutUint32(b[68:], h.TypeIDsOff)
	engine.PutUint32(b[72:], h.ProtoIDsSize)
	engine.PutUint32(b[76:], h.ProtoIDsOff)
	engine.PutUint32(b[80:], h.FieldIDsSize)
	engine.PutUint32(b[84:], h.FieldIDsOff)
	engine.PutUint32(b[88:], h.MethodIDsSize)
	engine.PutUint32(b[92:], h.MethodIDsOff)
	engine.PutUint32(b[96:], h.ClassDefsSize)
	engine.PutUint32(b[100:], h.ClassDefsOff)
	engine.PutUint32(b[104:], h.DataSize)
	engine.PutUint32(b[108:], h.DataOff)

	return b
}

// Parse reads a header from data.
func (h *Header) Parse(data []byte) error {
	if len(data) < format.HeaderSize {
		return fmt.Errorf("%w: needs %d bytes, got %d", errs.ErrInvalidHeader, format.HeaderSize, len(data))
	}
	if !bytes.Equal(data[0:4], format.MagicPrefix[:]) {
		return fmt.Errorf("%w: bad magic % x", errs.ErrInvalidHeader, data[0:4])
	}

	engine := endian.GetLittleEndianEngine()
	if tag := engine.Uint32(data[40:]); tag != format.EndianTag {
		return fmt.Errorf("%w: unsupported endian tag 0x%08x", errs.ErrInvalidHeader, tag)
	}

	copy(h.Version[:], data[4:8])
	h.Checksum = engine.Uint32(data[format.ChecksumOffset:])
	copy(h.Signature[:], data[format.SignatureOffset:format.SignatureOffset+20])
	h.FileSize = engine.Uint32(data[format.FileSizeOffset:])
	h.MapOff = engine.Uint32(data[52:])
	h.StringIDsSize = engine.Uint32(data[56:])
	h.StringIDsOff = engine.Uint32(data[60:])
	h.TypeIDsSize = engine.Uint32(data[64:])
	h.TypeIDsOff = engine.Uint32(data[68:])
	h.ProtoIDsSize = engine.Uint32(data[72:])
	h.ProtoIDsOff = engine.Uint32(data[76:])
	h.FieldIDsSize = engine.Uint32(data[80:])
	h.FieldIDsOff = engine.Uint32(data[84:])
	h.MethodIDsSize = engine.Uint32(data[88:])
	h.MethodIDsOff = engine.Uint32(data[92:])
	h.ClassDefsSize = engine.Uint32(data[96:])
	h.ClassDefsOff = engine.Uint32(data[100:])
	h.DataSize = engine.Uint32(data[104:])
	h.DataOff = engine.Uint32(data[108:])

	return nil
}
