package writer

import (
	"fmt"

	"github.com/dexfmt/dexwriter/buffer"
	"github.com/dexfmt/dexwriter/format"
	"github.com/dexfmt/dexwriter/internal/options"
)

// Option configures a FileWriter.
type Option = options.Option[*Config]

// Config holds the writer configuration. Capability flags default from
// the minimum API level and can be forced individually, mirroring the
// runtime capabilities they gate.
type Config struct {
	// MinAPILevel is the minimum Android API level the output targets.
	MinAPILevel int

	// CanUseDefaultAndStaticInterfaceMethods gates default and static
	// interface methods (API 24).
	CanUseDefaultAndStaticInterfaceMethods bool

	// CanUsePrivateInterfaceMethods gates private interface methods
	// (API 24).
	CanUsePrivateInterfaceMethods bool

	// CanUseInvokeCustom gates call sites and method handles (API 26).
	CanUseInvokeCustom bool

	// ForcedVersion overrides the header version bytes; nil derives them
	// from MinAPILevel. Intended for tests.
	ForcedVersion *format.Version

	// SkipNameValidation disables the debug-build simple-name check.
	SkipNameValidation bool

	provider     buffer.Provider
	instructions InstructionEncoder
	debug        DebugInfoEncoder
	keep         KeepSink
	reporter     Reporter
	naming       NamingLens
	graph        GraphLens
	proguardMap  ProguardMap
}

// Version returns the header version bytes for the configuration.
func (c *Config) Version() format.Version {
	if c.ForcedVersion != nil {
		return *c.ForcedVersion
	}

	return format.VersionForAPILevel(c.MinAPILevel)
}

// CanElideEmptyAnnotationSets reports whether empty annotation sets
// resolve to offset 0 instead of a materialized empty set. This is a
// per-writer switch: below API 17 the runtime dereferences the empty
// set, so it must exist in the file.
func (c *Config) CanElideEmptyAnnotationSets() bool {
	return c.MinAPILevel >= format.APILevelJMR1
}

func newConfig(minAPILevel int) *Config {
	return &Config{
		MinAPILevel:                            minAPILevel,
		CanUseDefaultAndStaticInterfaceMethods: minAPILevel >= format.APILevelN,
		CanUsePrivateInterfaceMethods:          minAPILevel >= format.APILevelN,
		CanUseInvokeCustom:                     minAPILevel >= format.APILevelO,
		provider:                               buffer.NewPooledProvider(),
		instructions:                           PreEncodedInstructions(),
		debug:                                  DefaultDebugEncoder(),
		keep:                                   NopKeepSink(),
		reporter:                               NewCollectingReporter(),
		naming:                                 IdentityNamingLens(),
		graph:                                  IdentityGraphLens(),
	}
}

// WithBufferProvider sets the storage provider the output buffer leases
// from.
func WithBufferProvider(p buffer.Provider) Option {
	return options.New(func(c *Config) error {
		if p == nil {
			return fmt.Errorf("buffer provider must not be nil")
		}
		c.provider = p

		return nil
	})
}

// WithInstructionEncoder sets the encoder that writes method
// instruction streams.
func WithInstructionEncoder(enc InstructionEncoder) Option {
	return options.New(func(c *Config) error {
		if enc == nil {
			return fmt.Errorf("instruction encoder must not be nil")
		}
		c.instructions = enc

		return nil
	})
}

// WithDebugInfoEncoder sets the encoder that produces debug_info_item
// bytes.
func WithDebugInfoEncoder(enc DebugInfoEncoder) Option {
	return options.New(func(c *Config) error {
		if enc == nil {
			return fmt.Errorf("debug info encoder must not be nil")
		}
		c.debug = enc

		return nil
	})
}

// WithKeepSink sets the desugared-library keep sink.
func WithKeepSink(sink KeepSink) Option {
	return options.NoError(func(c *Config) {
		c.keep = sink
	})
}

// WithReporter sets the diagnostics reporter.
func WithReporter(r Reporter) Option {
	return options.NoError(func(c *Config) {
		c.reporter = r
	})
}

// WithNamingLens sets the renaming lens.
func WithNamingLens(lens NamingLens) Option {
	return options.NoError(func(c *Config) {
		c.naming = lens
	})
}

// WithGraphLens sets the type-rewriting lens.
func WithGraphLens(lens GraphLens) Option {
	return options.NoError(func(c *Config) {
		c.graph = lens
	})
}

// WithProguardMap sets the map used to sort code items by their
// pre-minification names.
func WithProguardMap(m ProguardMap) Option {
	return options.NoError(func(c *Config) {
		c.proguardMap = m
	})
}

// WithForcedVersion forces the header version bytes.
func WithForcedVersion(v format.Version) Option {
	return options.NoError(func(c *Config) {
		c.ForcedVersion = &v
	})
}

// WithInterfaceMethodCapabilities forces the interface-method
// capability flags independently of the API level.
func WithInterfaceMethodCapabilities(defaultAndStatic, private bool) Option {
	return options.NoError(func(c *Config) {
		c.CanUseDefaultAndStaticInterfaceMethods = defaultAndStatic
		c.CanUsePrivateInterfaceMethods = private
	})
}

// WithInvokeCustom forces the invoke-custom capability flag.
func WithInvokeCustom(enabled bool) Option {
	return options.NoError(func(c *Config) {
		c.CanUseInvokeCustom = enabled
	})
}

// WithSkipNameValidation disables simple-name validation.
func WithSkipNameValidation() Option {
	return options.NoError(func(c *Config) {
		c.SkipNameValidation = true
	})
}
