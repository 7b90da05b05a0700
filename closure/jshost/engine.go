package jshost

import (
	"encoding/binary"
	"unsafe"

	"go.uber.org/zap"

	"github.com/wasm32ffi/ffi"
	"github.com/wasm32ffi/ffi/classify"
	"github.com/wasm32ffi/ffi/ffierr"
	"github.com/wasm32ffi/ffi/typedesc"
)

// Engine is the JS-variant closure engine: each prepared closure gets
// its own trampoline, converted to a table entry under the signature
// computed from its CIF.
type Engine struct {
	rt     *Runtime
	logger *zap.Logger
}

// NewEngine returns an Engine over rt. cfg may be nil.
func NewEngine(rt *Runtime, cfg *ffi.Config) *Engine {
	return &Engine{
		rt:     rt,
		logger: cfg.LoggerOrNop(),
	}
}

// Alloc reserves an empty table slot and returns a fresh closure bound
// to it.
func (e *Engine) Alloc() (*typedesc.Closure, uint32) {
	idx := e.rt.GetEmptyTableSlot()
	return &typedesc.Closure{Ftramp: idx}, idx
}

// Free pushes the closure's slot back onto the free-slot set.
func (e *Engine) Free(c *typedesc.Closure) {
	e.rt.FreeTableSlot(c.Ftramp)
}

// PrepClosureLoc binds (cif, fun, userData) into c, converts a
// trampoline capturing c into a wasm table entry under the signature
// computed from cif, and installs it at codeloc. A conversion failure
// returns BadTypedef.
func (e *Engine) PrepClosureLoc(c *typedesc.Closure, cif *typedesc.CIF, fun typedesc.Handler, userData unsafe.Pointer, codeloc uint32) ffierr.Code {
	if !cif.ABI.Valid() {
		return ffierr.BadABI
	}

	c.CIF = cif
	c.Fun = fun
	c.UserData = userData
	c.Ftramp = codeloc

	sig := Signature(cif)
	entry, err := e.rt.ConvertJsFunctionToWasm(e.trampoline(c), sig)
	if err != nil {
		e.logger.Error("prep_closure: signature conversion failed",
			zap.String("sig", sig), zap.Error(err))
		return ffierr.BadTypedef
	}
	e.rt.SetWasmTableEntry(codeloc, entry)
	return ffierr.OK
}

// trampoline builds the per-closure host function. On each invocation
// it copies the incoming wasm values onto the wasm stack, builds the
// argv vector of typed pointers, runs the user handler, and reads the
// direct result back out of scratch. The stack pointer is restored on
// every exit path.
func (e *Engine) trampoline(c *typedesc.Closure) HostFunc {
	return func(stack []uint64) []uint64 {
		rt := e.rt
		cif := c.CIF

		sp := rt.StackSave()
		defer rt.StackRestore(sp)

		indirect := classify.IndirectReturn(cif.RType)
		cursor := 0
		var resultOff uint32
		if indirect {
			resultOff = uint32(stack[cursor])
			cursor++
		} else {
			resultOff = rt.stackAlloc(8, 8)
		}

		argv := make([]unsafe.Pointer, cif.NArgs)
		for i := uint32(0); i < cif.NFixedArgs; i++ {
			cursor = e.lowerFixedArg(cif.ArgTypes[i], stack, cursor, argv, i)
		}

		if cif.Variadic() && cif.NArgs > cif.NFixedArgs {
			varargs := uint32(stack[cursor])
			for i := cif.NFixedArgs; i < cif.NArgs; i++ {
				varargs = e.lowerVararg(cif.ArgTypes[i], varargs, argv, i)
			}
		}

		rt.alignStack()
		c.Fun(cif, rt.ptr(resultOff), argv, c.UserData)

		if indirect || cif.RType == nil || cif.RType.Kind == typedesc.KindVoid {
			return nil
		}
		if classify.SlotBytes(cif.RType) == 8 {
			return []uint64{binary.LittleEndian.Uint64(rt.mem[resultOff:])}
		}
		return []uint64{uint64(binary.LittleEndian.Uint32(rt.mem[resultOff:]))}
	}
}

// lowerFixedArg copies one incoming fixed argument onto the wasm stack
// and records its address in argv. Returns the advanced value cursor.
func (e *Engine) lowerFixedArg(t *typedesc.Type, stack []uint64, cursor int, argv []unsafe.Pointer, i uint32) int {
	rt := e.rt
	switch unboxKind(t) {
	case typedesc.KindStruct:
		// Structs arrive by pointer and are copied by value.
		src := uint32(stack[cursor])
		cursor++
		align := t.Align
		if align < 4 {
			align = 4
		}
		dst := rt.stackAlloc(t.Size, align)
		copy(rt.mem[dst:dst+t.Size], rt.mem[src:src+t.Size])
		argv[i] = rt.ptr(dst)
	case typedesc.KindLongDouble:
		lo, hi := stack[cursor], stack[cursor+1]
		cursor += 2
		dst := rt.stackAlloc(16, 16)
		binary.LittleEndian.PutUint64(rt.mem[dst:], lo)
		binary.LittleEndian.PutUint64(rt.mem[dst+8:], hi)
		argv[i] = rt.ptr(dst)
	case typedesc.KindUint64, typedesc.KindSint64, typedesc.KindDouble:
		dst := rt.stackAlloc(8, 8)
		binary.LittleEndian.PutUint64(rt.mem[dst:], stack[cursor])
		cursor++
		argv[i] = rt.ptr(dst)
	default:
		// Small ints, pointers, and f32 occupy one 4-byte-aligned cell.
		dst := rt.stackAlloc(4, 4)
		binary.LittleEndian.PutUint32(rt.mem[dst:], uint32(stack[cursor]))
		cursor++
		argv[i] = rt.ptr(dst)
	}
	return cursor
}

// lowerVararg reads one variadic argument from the varargs area at
// offset va, copies it onto the wasm stack, and records its address in
// argv. The cursor advances 4 bytes per vararg regardless of the
// argument's size: values wider than one 4-byte slot are stored
// out-of-line and reached through the pointer the slot holds. Returns
// the advanced cursor.
func (e *Engine) lowerVararg(t *typedesc.Type, va uint32, argv []unsafe.Pointer, i uint32) uint32 {
	rt := e.rt
	switch unboxKind(t) {
	case typedesc.KindStruct:
		// Varargs deliver structs by pointer, so one more dereference.
		src := binary.LittleEndian.Uint32(rt.mem[va:])
		align := t.Align
		if align < 4 {
			align = 4
		}
		dst := rt.stackAlloc(t.Size, align)
		copy(rt.mem[dst:dst+t.Size], rt.mem[src:src+t.Size])
		argv[i] = rt.ptr(dst)
		return va + 4
	case typedesc.KindLongDouble:
		src := binary.LittleEndian.Uint32(rt.mem[va:])
		dst := rt.stackAlloc(16, 16)
		copy(rt.mem[dst:dst+16], rt.mem[src:src+16])
		argv[i] = rt.ptr(dst)
		return va + 4
	case typedesc.KindUint64, typedesc.KindSint64, typedesc.KindDouble:
		src := binary.LittleEndian.Uint32(rt.mem[va:])
		dst := rt.stackAlloc(8, 8)
		copy(rt.mem[dst:dst+8], rt.mem[src:src+8])
		argv[i] = rt.ptr(dst)
		return va + 4
	default:
		dst := rt.stackAlloc(4, 4)
		copy(rt.mem[dst:dst+4], rt.mem[va:va+4])
		argv[i] = rt.ptr(dst)
		return va + 4
	}
}
