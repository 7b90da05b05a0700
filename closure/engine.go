package closure

import (
	"unsafe"

	"go.uber.org/zap"

	"github.com/wasm32ffi/ffi"
	"github.com/wasm32ffi/ffi/classify"
	"github.com/wasm32ffi/ffi/ffierr"
	"github.com/wasm32ffi/ffi/marshal"
	"github.com/wasm32ffi/ffi/typedesc"
)

// BackingFunc is the shared backing function's Go shape: it receives
// the incoming wasm-ABI argument buffer, the outgoing direct-result
// buffer (empty when the return is indirect), and the closure the
// trampoline was bound to.
type BackingFunc func(args []byte, results []byte, c *typedesc.Closure)

// Host is the primitive set the engine consumes from a WASI-like
// runtime: reserve a table slot, install a trampoline into a slot, and
// release a slot. The kind arrays describe the trampoline's wasm-level
// argument and result sequences.
type Host interface {
	ClosureAllocate() (uint32, error)
	ClosurePrepare(backing BackingFunc, fnIndex uint32, argKinds, resultKinds []classify.WasmKind, c *typedesc.Closure) error
	ClosureFree(fnIndex uint32) error
}

// Engine allocates, prepares, and frees closures against one Host.
type Engine struct {
	host   Host
	logger *zap.Logger
}

// NewEngine returns an Engine over host. cfg may be nil.
func NewEngine(host Host, cfg *ffi.Config) *Engine {
	return &Engine{
		host:   host,
		logger: cfg.LoggerOrNop(),
	}
}

// Alloc reserves a table slot and returns a fresh closure bound to it,
// along with the slot index callers hand out as the callable code
// location. The closure owns the slot until Free returns it. A host
// reservation failure is fatal and aborts via panic.
func (e *Engine) Alloc() (*typedesc.Closure, uint32) {
	idx, err := e.host.ClosureAllocate()
	if err != nil {
		e.logger.Error("closure_alloc: host slot reservation failed", zap.Error(err))
		panic(ffierr.New(ffierr.PhaseClosure, ffierr.KindHostPrimitive).
			Detail("closure_alloc: host slot reservation failed").Cause(err).Build().Fatal())
	}
	return &typedesc.Closure{Ftramp: idx}, idx
}

// Free returns the closure's table slot to the host. The closure must
// not be invoked again afterwards. A host release failure is fatal and
// aborts via panic.
func (e *Engine) Free(c *typedesc.Closure) {
	if err := e.host.ClosureFree(c.Ftramp); err != nil {
		e.logger.Error("closure_free: host slot release failed",
			zap.Uint32("slot", c.Ftramp), zap.Error(err))
		panic(ffierr.New(ffierr.PhaseClosure, ffierr.KindHostPrimitive).
			Detail("closure_free: host slot release failed").Cause(err).Build().Fatal())
	}
}

// PrepClosureLoc binds (cif, fun, userData) into c and installs the
// shared backing function at codeloc with the wasm-level argument and
// result kind sequences derived from cif. When the return is indirect
// a hidden i32 result pointer is prepended to the argument sequence
// and the result sequence is left empty.
//
// WASM32Emscripten CIFs are rejected with BadABI; that ABI belongs to
// the JS-variant engine in closure/jshost. A host installation failure
// is fatal and aborts via panic.
func (e *Engine) PrepClosureLoc(c *typedesc.Closure, cif *typedesc.CIF, fun typedesc.Handler, userData unsafe.Pointer, codeloc uint32) ffierr.Code {
	if cif.ABI != typedesc.WASM32 {
		return ffierr.BadABI
	}

	var argKinds []classify.WasmKind
	if classify.IndirectReturn(cif.RType) {
		argKinds = append(argKinds, classify.I32)
	}
	for _, at := range cif.ArgTypes {
		argKinds = append(argKinds, classify.SlotKinds(at)...)
	}
	var resultKinds []classify.WasmKind
	if !classify.IndirectReturn(cif.RType) {
		resultKinds = classify.SlotKinds(cif.RType)
	}

	c.CIF = cif
	c.Fun = fun
	c.UserData = userData
	c.Ftramp = codeloc

	if err := e.host.ClosurePrepare(Invoke, codeloc, argKinds, resultKinds, c); err != nil {
		e.logger.Error("prep_closure: host trampoline installation failed",
			zap.Uint32("slot", codeloc), zap.Error(err))
		panic(ffierr.New(ffierr.PhaseClosure, ffierr.KindHostPrimitive).
			Detail("prep_closure: host trampoline installation failed").Cause(err).Build().Fatal())
	}
	return ffierr.OK
}

// Invoke is the backing function shared by every closure prepared
// through this variant. The host trampoline calls it with the raw
// incoming argument buffer and the outgoing result buffer; it raises
// each slot into a typed pointer and delivers the argv vector to the
// user handler.
func Invoke(args []byte, results []byte, c *typedesc.Closure) {
	cif := c.CIF

	var resultArea unsafe.Pointer
	offset := uint32(0)
	if classify.IndirectReturn(cif.RType) {
		// The hidden first slot carries the caller's result pointer.
		resultArea = marshal.Raise(args, cif.RType)
		offset = 4
	} else if len(results) > 0 {
		resultArea = unsafe.Pointer(&results[0])
	}

	argv := make([]unsafe.Pointer, cif.NArgs)
	for i, at := range cif.ArgTypes {
		argv[i] = marshal.Raise(args[offset:], at)
		offset += classify.SlotBytes(at)
	}

	c.Fun(cif, resultArea, argv, c.UserData)
}
