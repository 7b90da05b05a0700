package wasihost

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wasm32ffi/ffi"
	"github.com/wasm32ffi/ffi/classify"
	"github.com/wasm32ffi/ffi/closure"
	"github.com/wasm32ffi/ffi/typedesc"
)

// valueType re-binds the neutral primitive-kind constants to wazero's
// own value types.
func valueType(k classify.WasmKind) api.ValueType {
	switch k {
	case classify.I32:
		return api.ValueTypeI32
	case classify.I64:
		return api.ValueTypeI64
	case classify.F32:
		return api.ValueTypeF32
	case classify.F64:
		return api.ValueTypeF64
	default:
		panic(fmt.Sprintf("wasihost: unknown wasm kind %d", k))
	}
}

func kindBytes(k classify.WasmKind) uint32 {
	if k == classify.I64 || k == classify.F64 {
		return 8
	}
	return 4
}

func typeBytes(vt api.ValueType) uint32 {
	if vt == api.ValueTypeI64 || vt == api.ValueTypeF64 {
		return 8
	}
	return 4
}

// tableEntry is one slot of the dispatch table: either a guest
// function or a prepared closure trampoline.
type tableEntry struct {
	fn    api.Function
	tramp *trampoline
	valid bool
}

type trampoline struct {
	backing     closure.BackingFunc
	argKinds    []classify.WasmKind
	resultKinds []classify.WasmKind
	bound       *typedesc.Closure
}

// Runtime implements both the dynamic-call primitive consumed by
// call.Call and the slot primitives consumed by closure.Engine, over a
// single shared function table.
type Runtime struct {
	ctx    context.Context
	logger *zap.Logger

	mu      sync.Mutex
	entries []tableEntry
	pool    *closure.SlotPool
}

// NewRuntime returns an empty Runtime. ctx is used for every guest
// function invocation dispatched through CallDynamic. cfg may be nil.
func NewRuntime(ctx context.Context, cfg *ffi.Config) *Runtime {
	return &Runtime{
		ctx:    ctx,
		logger: cfg.LoggerOrNop(),
		pool:   closure.NewSlotPool(0),
	}
}

// RegisterFunction installs a guest function into the dispatch table
// and returns the table index it is callable at.
func (r *Runtime) RegisterFunction(fn api.Function) uint32 {
	idx := r.pool.Get()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.grow(idx)
	r.entries[idx] = tableEntry{fn: fn, valid: true}
	return idx
}

// grow extends entries to cover idx. Caller holds r.mu.
func (r *Runtime) grow(idx uint32) {
	for uint32(len(r.entries)) <= idx {
		r.entries = append(r.entries, tableEntry{})
	}
}

func (r *Runtime) lookup(idx uint32) (tableEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if idx >= uint32(len(r.entries)) || !r.entries[idx].valid {
		return tableEntry{}, fmt.Errorf("wasihost: no function installed at table index %d", idx)
	}
	return r.entries[idx], nil
}

// CallDynamic invokes the function at table index fn with the lowered
// argument buffer args, writing direct-return bytes into results.
// Guest functions have args decoded per their wasm signature; closure
// trampolines receive the buffers untouched.
func (r *Runtime) CallDynamic(fn uint32, args []byte, results []byte) error {
	e, err := r.lookup(fn)
	if err != nil {
		return err
	}

	if e.tramp != nil {
		return r.callTrampoline(e.tramp, args, results)
	}
	return r.callGuest(e.fn, args, results)
}

func (r *Runtime) callTrampoline(tr *trampoline, args []byte, results []byte) error {
	var want uint32
	for _, k := range tr.argKinds {
		want += kindBytes(k)
	}
	if uint32(len(args)) != want {
		return fmt.Errorf("wasihost: trampoline argument buffer is %d bytes, signature needs %d", len(args), want)
	}
	tr.backing(args, results, tr.bound)
	return nil
}

func (r *Runtime) callGuest(fn api.Function, args []byte, results []byte) error {
	def := fn.Definition()
	params := def.ParamTypes()

	stack := make([]uint64, 0, len(params))
	offset := uint32(0)
	for _, pt := range params {
		n := typeBytes(pt)
		if offset+n > uint32(len(args)) {
			return fmt.Errorf("wasihost: argument buffer is %d bytes, signature needs more", len(args))
		}
		if n == 8 {
			stack = append(stack, binary.LittleEndian.Uint64(args[offset:]))
		} else {
			stack = append(stack, uint64(binary.LittleEndian.Uint32(args[offset:])))
		}
		offset += n
	}
	if offset != uint32(len(args)) {
		return fmt.Errorf("wasihost: argument buffer is %d bytes, signature consumed %d", len(args), offset)
	}

	rets, err := fn.Call(r.ctx, stack...)
	if err != nil {
		return err
	}

	offset = 0
	for i, rt := range def.ResultTypes() {
		if offset >= uint32(len(results)) {
			break // indirect return: the callee already stored through the hidden pointer
		}
		if typeBytes(rt) == 8 {
			binary.LittleEndian.PutUint64(results[offset:], rets[i])
		} else {
			binary.LittleEndian.PutUint32(results[offset:], uint32(rets[i]))
		}
		offset += typeBytes(rt)
	}
	return nil
}
