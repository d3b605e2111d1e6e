package program

// Code is one method body: register geometry, the instruction stream
// and the try/handler table. Two Code values are distinct items even
// when byte-identical; the writer deduplicates them by object identity.
type Code struct {
	RegistersSize uint16
	InsSize       uint16
	OutsSize      uint16

	// Instructions is the pre-encoded instruction stream in 2-byte code
	// units. Writers configured with an external instruction encoder may
	// leave it nil and let the encoder produce the stream.
	Instructions []uint16

	Tries []*TryBlock

	DebugInfo *DebugInfo // may be nil
}

// HasTries reports whether the code carries a try/handler table.
func (c *Code) HasTries() bool {
	return len(c.Tries) > 0
}

// Handlers returns the distinct handlers referenced by the try blocks,
// in first-reference order.
func (c *Code) Handlers() []*TryHandler {
	seen := make(map[*TryHandler]struct{}, len(c.Tries))
	handlers := make([]*TryHandler, 0, len(c.Tries))
	for _, try := range c.Tries {
		if _, ok := seen[try.Handler]; ok {
			continue
		}
		seen[try.Handler] = struct{}{}
		handlers = append(handlers, try.Handler)
	}

	return handlers
}

// TryBlock covers [StartAddress, StartAddress+InstructionCount) code
// units and routes exceptions to its handler.
type TryBlock struct {
	StartAddress     uint32
	InstructionCount uint16
	Handler          *TryHandler
}

// TryHandler is one encoded_catch_handler: typed catch pairs plus an
// optional catch-all address. Handlers may be shared between try blocks.
type TryHandler struct {
	Pairs           []TypeAddrPair
	CatchAllAddress uint32
	HasCatchAll     bool
}

// TypeAddrPair routes one exception type to a handler address.
type TypeAddrPair struct {
	Type    *Type
	Address uint32
}

// DebugInfo is the debug information of one method body. Two
// structurally equal debug infos share one debug_info_item.
type DebugInfo struct {
	LineStart      uint32
	ParameterNames []string // "" marks an absent name
	Positions      []PositionEntry
}

// PositionEntry maps a code address to a source line.
type PositionEntry struct {
	Address uint32
	Line    uint32
}
