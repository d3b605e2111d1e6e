package section

import (
	"fmt"

	"github.com/dexfmt/dexwriter/endian"
	"github.com/dexfmt/dexwriter/errs"
	"github.com/dexfmt/dexwriter/format"
)

// MapEntry describes one non-empty section: its type code, item count
// and file offset.
type MapEntry struct {
	Type   format.TypeCode
	Count  uint32
	Offset uint32
}

// MapList is the map_list section: one entry per non-empty section,
// ordered by ascending type code.
type MapList struct {
	Entries []MapEntry
}

// Size returns the serialized size in bytes.
func (m *MapList) Size() int {
	return 4 + len(m.Entries)*format.MapEntrySize
}

// Bytes serializes the map list.
func (m *MapList) Bytes() []byte {
	engine := endian.GetLittleEndianEngine()
	b := make([]byte, 0, m.Size())
	b = engine.AppendUint32(b, uint32(len(m.Entries)))
	for _, e := range m.Entries {
		b = engine.AppendUint16(b, uint16(e.Type))
		b = engine.AppendUint16(b, 0)
		b = engine.AppendUint32(b, e.Count)
		b = engine.AppendUint32(b, e.Offset)
	}

	return b
}

// Parse reads a map list from data.
func (m *MapList) Parse(data []byte) error {
	engine := endian.GetLittleEndianEngine()
	if len(data) < 4 {
		return fmt.Errorf("%w: map list truncated", errs.ErrInvalidHeader)
	}
	count := int(engine.Uint32(data))
	if len(data) < 4+count*format.MapEntrySize {
		return fmt.Errorf("%w: map list needs %d entries, have %d bytes", errs.ErrInvalidHeader, count, len(data))
	}

	m.Entries = make([]MapEntry, count)
	for i := range m.Entries {
		off := 4 + i*format.MapEntrySize
		m.Entries[i] = MapEntry{
			Type:   format.TypeCode(engine.Uint16(data[off:])),
			Count:  engine.Uint32(data[off+4:]),
			Offset: engine.Uint32(data[off+8:]),
		}
	}

	return nil
}
