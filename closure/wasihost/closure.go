package wasihost

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/wasm32ffi/ffi/classify"
	"github.com/wasm32ffi/ffi/closure"
	"github.com/wasm32ffi/ffi/typedesc"
)

// ClosureAllocate reserves an empty table slot for a closure. The slot
// stays invalid until ClosurePrepare installs a trampoline into it.
func (r *Runtime) ClosureAllocate() (uint32, error) {
	idx := r.pool.Get()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.grow(idx)
	r.entries[idx] = tableEntry{}
	return idx, nil
}

// ClosurePrepare installs a typed-buffer trampoline at fnIndex: calls
// dispatched to that index invoke backing with the raw argument and
// result buffers plus the bound closure. The kind arrays fix the
// trampoline's wasm-level signature.
func (r *Runtime) ClosurePrepare(backing closure.BackingFunc, fnIndex uint32, argKinds, resultKinds []classify.WasmKind, c *typedesc.Closure) error {
	for _, k := range append(append([]classify.WasmKind(nil), argKinds...), resultKinds...) {
		valueType(k)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if fnIndex >= r.pool.High() {
		return fmt.Errorf("wasihost: table index %d was never reserved", fnIndex)
	}
	r.grow(fnIndex)
	if e := r.entries[fnIndex]; e.valid && e.tramp == nil {
		return fmt.Errorf("wasihost: table index %d holds a guest function", fnIndex)
	}

	r.entries[fnIndex] = tableEntry{
		tramp: &trampoline{
			backing:     backing,
			argKinds:    argKinds,
			resultKinds: resultKinds,
			bound:       c,
		},
		valid: true,
	}
	r.logger.Debug("installed closure trampoline",
		zap.Uint32("slot", fnIndex),
		zap.Int("argSlots", len(argKinds)),
		zap.Int("resultSlots", len(resultKinds)))
	return nil
}

// ClosureFree clears the slot at fnIndex and returns it to the free
// pool for reuse.
func (r *Runtime) ClosureFree(fnIndex uint32) error {
	r.mu.Lock()
	if fnIndex >= uint32(len(r.entries)) {
		r.mu.Unlock()
		return fmt.Errorf("wasihost: table index %d out of range", fnIndex)
	}
	r.entries[fnIndex] = tableEntry{}
	r.mu.Unlock()

	r.pool.Put(fnIndex)
	return nil
}
