// Package format defines the constants of the Android DEX container
// format: header geometry, map item type codes, index entry sizes,
// access flags, encoded value tags and API level thresholds.
//
// All values follow the published dex format; nothing in this package
// carries state.
package format

// Header geometry. The header is 112 bytes; the checksum covers
// everything from the signature to the end of the file, the signature
// everything from the file size field to the end of the file.
const (
	HeaderSize = 0x70 // fixed header size in bytes

	MagicOffset     = 0  // 8 bytes: "dex\n" + version + NUL
	ChecksumOffset  = 8  // uint32 Adler-32 over [SignatureOffset, file_size)
	SignatureOffset = 12 // 20 bytes SHA-1 over [FileSizeOffset, file_size)
	FileSizeOffset  = 32 // uint32 total file size

	EndianTag        = 0x12345678 // endian_tag constant for little-endian files
	ReverseEndianTag = 0x78563412

	NoIndex  = 0xffffffff // absent superclass / source file index
	NoOffset = 0          // absent mixed-section reference
)

// MagicPrefix is the first half of the 8-byte magic, "dex\n".
var MagicPrefix = [4]byte{0x64, 0x65, 0x78, 0x0a}

// Version holds the 4-byte version half of the header magic,
// including the trailing NUL.
type Version [4]byte

var (
	VersionV35 = Version{'0', '3', '5', 0}
	VersionV37 = Version{'0', '3', '7', 0}
	VersionV38 = Version{'0', '3', '8', 0}
	VersionV39 = Version{'0', '3', '9', 0}
)

func (v Version) String() string {
	return string(v[:3])
}

// VersionForAPILevel returns the DEX version bytes required by the
// given minimum API level.
func VersionForAPILevel(api int) Version {
	switch {
	case api >= APILevelP:
		return VersionV39
	case api >= APILevelO:
		return VersionV38
	case api >= APILevelN:
		return VersionV37
	default:
		return VersionV35
	}
}

// API level thresholds the writer cares about.
const (
	APILevelB    = 1  // Android 1.0
	APILevelJMR1 = 17 // Android 4.2, empty annotation sets become elidable
	APILevelN    = 24 // Android 7.0, default/static interface methods, v037
	APILevelO    = 26 // Android 8.0, invoke-custom, v038
	APILevelP    = 28 // Android 9.0, v039
)

// TypeCode identifies a section in the map list.
type TypeCode uint16

const (
	TypeHeaderItem              TypeCode = 0x0000
	TypeStringIDItem            TypeCode = 0x0001
	TypeTypeIDItem              TypeCode = 0x0002
	TypeProtoIDItem             TypeCode = 0x0003
	TypeFieldIDItem             TypeCode = 0x0004
	TypeMethodIDItem            TypeCode = 0x0005
	TypeClassDefItem            TypeCode = 0x0006
	TypeCallSiteIDItem          TypeCode = 0x0007
	TypeMethodHandleItem        TypeCode = 0x0008
	TypeMapList                 TypeCode = 0x1000
	TypeTypeList                TypeCode = 0x1001
	TypeAnnotationSetRefList    TypeCode = 0x1002
	TypeAnnotationSetItem       TypeCode = 0x1003
	TypeClassDataItem           TypeCode = 0x2000
	TypeCodeItem                TypeCode = 0x2001
	TypeStringDataItem          TypeCode = 0x2002
	TypeDebugInfoItem           TypeCode = 0x2003
	TypeAnnotationItem          TypeCode = 0x2004
	TypeEncodedArrayItem        TypeCode = 0x2005
	TypeAnnotationsDirectoryItem TypeCode = 0x2006
)

func (t TypeCode) String() string {
	switch t {
	case TypeHeaderItem:
		return "header_item"
	case TypeStringIDItem:
		return "string_id_item"
	case TypeTypeIDItem:
		return "type_id_item"
	case TypeProtoIDItem:
		return "proto_id_item"
	case TypeFieldIDItem:
		return "field_id_item"
	case TypeMethodIDItem:
		return "method_id_item"
	case TypeClassDefItem:
		return "class_def_item"
	case TypeCallSiteIDItem:
		return "call_site_id_item"
	case TypeMethodHandleItem:
		return "method_handle_item"
	case TypeMapList:
		return "map_list"
	case TypeTypeList:
		return "type_list"
	case TypeAnnotationSetRefList:
		return "annotation_set_ref_list"
	case TypeAnnotationSetItem:
		return "annotation_set_item"
	case TypeClassDataItem:
		return "class_data_item"
	case TypeCodeItem:
		return "code_item"
	case TypeStringDataItem:
		return "string_data_item"
	case TypeDebugInfoItem:
		return "debug_info_item"
	case TypeAnnotationItem:
		return "annotation_item"
	case TypeEncodedArrayItem:
		return "encoded_array_item"
	case TypeAnnotationsDirectoryItem:
		return "annotations_directory_item"
	default:
		return "unknown"
	}
}

// Fixed index entry sizes in bytes.
const (
	StringIDSize     = 4
	TypeIDSize       = 4
	ProtoIDSize      = 12
	FieldIDSize      = 8
	MethodIDSize     = 8
	ClassDefSize     = 32
	CallSiteIDSize   = 4
	MethodHandleSize = 8
	MapEntrySize     = 12
	TryItemSize      = 8
)

// DataAlignment is the alignment of code items, type lists, annotation
// sets, annotation set ref lists, annotation directories and the map.
const DataAlignment = 4
