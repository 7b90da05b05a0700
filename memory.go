package ffi

import "go.uber.org/zap"

// Memory is the linear-memory view a host primitive implementation reads
// and writes through. The JS-variant host primitives are expressed
// purely in terms of this interface plus a Table.
type Memory interface {
	Read(offset uint32, length uint32) ([]byte, error)
	Write(offset uint32, data []byte) error
	ReadU8(offset uint32) (uint8, error)
	ReadU16(offset uint32) (uint16, error)
	ReadU32(offset uint32) (uint32, error)
	ReadU64(offset uint32) (uint64, error)
	WriteU8(offset uint32, value uint8) error
	WriteU16(offset uint32, value uint16) error
	WriteU32(offset uint32, value uint32) error
	WriteU64(offset uint32, value uint64) error
}

// MemorySizer reports the current size of wasm linear memory in bytes.
type MemorySizer interface {
	Size() uint32
}

// Table is the call-indirect function table a host primitive
// implementation installs closures into and dispatches `fn` indices
// through.
type Table interface {
	Len() uint32
	Grow(delta uint32) (previousLen uint32, ok bool)
}

// Config holds tunables shared by the packages under this module: a
// small struct of optional overrides, each with a documented
// zero-value default.
type Config struct {
	// MaxArgs bounds cif.NArgs / cif.NFixedArgs. Zero means the hard
	// limit of 1000 (a wasm host trampoline arity limit); a smaller
	// value tightens the bound, a larger one is clamped to the hard
	// limit.
	MaxArgs int

	// Logger receives diagnostics for fatal aborts and host-primitive
	// failures. Nil means zap.NewNop().
	Logger *zap.Logger
}

// DefaultMaxArgs is the hard cap on cif.NArgs / cif.NFixedArgs.
const DefaultMaxArgs = 1000

// LoggerOrNop returns c.Logger, or a no-op logger if c is nil or c.Logger is unset.
func (c *Config) LoggerOrNop() *zap.Logger {
	if c == nil || c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

// MaxArgsOrDefault returns c.MaxArgs, or DefaultMaxArgs if c is nil or
// c.MaxArgs is zero.
func (c *Config) MaxArgsOrDefault() int {
	if c == nil || c.MaxArgs == 0 {
		return DefaultMaxArgs
	}
	return c.MaxArgs
}
