// Package errs defines the sentinel errors returned by the dexwriter
// library.
//
// Callers should use errors.Is to test for specific conditions:
//
//	image, err := w.Generate()
//	if errors.Is(err, errs.ErrBufferExhausted) {
//	    // provider refused further growth
//	}
package errs

import "errors"

// Validation errors. These are returned before any output bytes are
// written. Interface-method and invoke-custom violations are reported
// through the diagnostics reporter as fatal, invalid names as errors.
var (
	// ErrInterfaceMethodIllegal indicates an interface method that is not
	// representable at the targeted API level (default, static, private,
	// protected or package-private interface methods below the required
	// API, or interface constructors).
	ErrInterfaceMethodIllegal = errors.New("interface method not supported at target API level")

	// ErrInvokeCustomUnsupported indicates a call site or method handle
	// in a program targeting an API level without invoke-custom support.
	ErrInvokeCustomUnsupported = errors.New("invoke-custom not supported at target API level")

	// ErrNameInvalid indicates a class, field or method simple name that
	// is not valid at the targeted API level.
	ErrNameInvalid = errors.New("invalid simple name at target API level")
)

// Emission errors.
var (
	// ErrBufferExhausted indicates the buffer provider refused to grow
	// the output buffer any further.
	ErrBufferExhausted = errors.New("output buffer exhausted")

	// ErrStateOrder indicates a writer phase was invoked out of order.
	ErrStateOrder = errors.New("writer phase invoked out of order")

	// ErrPoolEntryMissing indicates an entity referenced during emission
	// is absent from its index pool.
	ErrPoolEntryMissing = errors.New("referenced entity missing from index pool")

	// ErrPoolOverflow indicates an index pool exceeded the range of its
	// DEX index encoding (e.g. more than 65536 types referenced by u16).
	ErrPoolOverflow = errors.New("index pool exceeds DEX index range")

	// ErrInvalidHeader indicates header bytes that do not parse as a
	// little-endian DEX header.
	ErrInvalidHeader = errors.New("invalid dex header")
)
