package cif

import (
	"github.com/wasm32ffi/ffi"
	"github.com/wasm32ffi/ffi/canon"
	"github.com/wasm32ffi/ffi/ffierr"
	"github.com/wasm32ffi/ffi/typedesc"
)

// Validate checks the CIF invariants that hold independently of type
// canonicalisation: the ABI tag must be one the core knows, and
// NFixedArgs <= NArgs <= the arity cap. The cap comes from cfg; a nil
// cfg means the hard limit of typedesc.MaxArgs, and a configured cap
// can lower that limit but never raise it.
func Validate(c *typedesc.CIF, cfg *ffi.Config) ffierr.Code {
	if !c.ABI.Valid() {
		return ffierr.BadABI
	}
	maxArgs := arityCap(cfg)
	if c.NArgs > maxArgs || c.NFixedArgs > maxArgs {
		return ffierr.BadTypedef
	}
	if c.NFixedArgs > c.NArgs {
		return ffierr.BadTypedef
	}
	return ffierr.OK
}

// PrepMachdep records rtype and argTypes into c, canonicalises every
// type reachable from c, and validates the arity and ABI invariants
// under the default arity cap. rtype may be nil, meaning void.
func PrepMachdep(c *typedesc.CIF, rtype *typedesc.Type, argTypes []*typedesc.Type) ffierr.Code {
	return PrepMachdepWithConfig(nil, c, rtype, argTypes)
}

// PrepMachdepWithConfig is PrepMachdep with the arity cap taken from
// cfg (nil means the default).
//
// Under WASM32Emscripten a COMPLEX return or top-level COMPLEX argument
// is rejected with BadTypedef instead of being rewritten; that variant
// carries complex values through its own runtime unboxing and performs
// no descriptor rewriting for them. Calling this a second time on the
// same CIF is permitted: canonicalisation converges after one pass, so
// the second run is a no-op.
func PrepMachdepWithConfig(cfg *ffi.Config, c *typedesc.CIF, rtype *typedesc.Type, argTypes []*typedesc.Type) ffierr.Code {
	c.RType = rtype
	c.ArgTypes = argTypes
	c.NArgs = uint32(len(argTypes))
	if !c.Variadic() {
		c.NFixedArgs = c.NArgs
	}

	if code := Validate(c, cfg); code != ffierr.OK {
		return code
	}

	if c.ABI == typedesc.WASM32Emscripten {
		if rtype != nil && rtype.Kind == typedesc.KindComplex {
			return ffierr.BadTypedef
		}
		for _, at := range argTypes {
			if at.Kind == typedesc.KindComplex {
				return ffierr.BadTypedef
			}
		}
	}

	canon.CanonicaliseCIF(c)
	return ffierr.OK
}

// PrepMachdepVar prepares a variadic CIF under the default arity cap:
// it sets the varargs flag, records nfixedargs, and then runs
// PrepMachdep over the full argument vector. argTypes holds all ntotal
// arguments, fixed first.
func PrepMachdepVar(c *typedesc.CIF, nfixedargs uint32, rtype *typedesc.Type, argTypes []*typedesc.Type) ffierr.Code {
	return PrepMachdepVarWithConfig(nil, c, nfixedargs, rtype, argTypes)
}

// PrepMachdepVarWithConfig is PrepMachdepVar with the arity cap taken
// from cfg (nil means the default).
//
// Varargs exist only under WASM32Emscripten; WASM32 returns BadABI.
// The emscripten calling convention charges one extra logical argument
// slot for the trailing varargs pointer, so the effective arity cap is
// one lower than for a non-variadic call.
func PrepMachdepVarWithConfig(cfg *ffi.Config, c *typedesc.CIF, nfixedargs uint32, rtype *typedesc.Type, argTypes []*typedesc.Type) ffierr.Code {
	if !c.ABI.Valid() {
		return ffierr.BadABI
	}
	if c.ABI == typedesc.WASM32 {
		return ffierr.BadABI
	}
	if uint32(len(argTypes))+1 > arityCap(cfg) {
		return ffierr.BadTypedef
	}

	c.Flags |= typedesc.FlagVarargs
	c.NFixedArgs = nfixedargs
	return PrepMachdepWithConfig(cfg, c, rtype, argTypes)
}

// arityCap resolves the effective argument cap: the configured value,
// clamped to the hard trampoline-arity limit.
func arityCap(cfg *ffi.Config) uint32 {
	maxArgs := uint32(cfg.MaxArgsOrDefault())
	if maxArgs > typedesc.MaxArgs {
		maxArgs = typedesc.MaxArgs
	}
	return maxArgs
}
