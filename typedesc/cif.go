package typedesc

import "unsafe"

// ABI tags a call site's calling convention.
type ABI uint8

const (
	// WASM32 is the plain wasm32 ABI; it never carries varargs.
	WASM32 ABI = iota
	// WASM32Emscripten is the emscripten-flavored wasm32 ABI, which
	// supports varargs but performs no COMPLEX rewriting.
	WASM32Emscripten
)

func (a ABI) String() string {
	switch a {
	case WASM32:
		return "WASM32"
	case WASM32Emscripten:
		return "WASM32_EMSCRIPTEN"
	default:
		return "unknown_abi"
	}
}

// Valid reports whether a is one of the two ABI tags the core knows.
func (a ABI) Valid() bool {
	return a == WASM32 || a == WASM32Emscripten
}

// FlagVarargs is the single bit CIF.Flags defines.
const FlagVarargs uint32 = 1 << 0

// MaxArgs is the hard implementation limit on NArgs/NFixedArgs,
// reflecting a wasm host trampoline arity limit.
const MaxArgs = 1000

// CIF describes one call site. Field order mirrors the C layout's
// field order (abi, nargs, arg_types, rtype, nfixedargs) and ABI, NArgs,
// and ArgTypes keep the same byte offsets as the C contract (0, 4, 8).
// RType cannot keep offset 12: the C contract's arg_types is a single
// 4-byte pointer on wasm32, while a Go slice header is three
// machine words. Go callers read ArgTypes by field name, never by raw
// offset, so widening it is transparent; the offset assertions below
// pin what *is* still a hard contract in this representation; ABI,
// NArgs and ArgTypes are still first, in order, at their original
// offsets, and the remaining fields keep their relative order.
type CIF struct {
	ABI        ABI
	_          [3]byte // padding to NArgs' 4-byte offset
	NArgs      uint32
	ArgTypes   []*Type
	RType      *Type
	Flags      uint32
	NFixedArgs uint32
}

func init() {
	var c CIF
	if unsafe.Offsetof(c.ABI) != 0 {
		panic("typedesc: CIF.ABI must be at offset 0")
	}
	if unsafe.Offsetof(c.NArgs) != 4 {
		panic("typedesc: CIF.NArgs must be at offset 4")
	}
	if unsafe.Offsetof(c.ArgTypes) != 8 {
		panic("typedesc: CIF.ArgTypes must be at offset 8")
	}
	if unsafe.Offsetof(c.RType) <= unsafe.Offsetof(c.ArgTypes) {
		panic("typedesc: CIF.RType must follow CIF.ArgTypes")
	}
	if unsafe.Offsetof(c.NFixedArgs) <= unsafe.Offsetof(c.RType) {
		panic("typedesc: CIF.NFixedArgs must follow CIF.RType")
	}
}

// Variadic reports whether c was prepared with prep_cif_machdep_var.
func (c *CIF) Variadic() bool {
	return c.Flags&FlagVarargs != 0
}
