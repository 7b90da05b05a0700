package jshost

import (
	"encoding/binary"
	"fmt"
	"sync"
	"unsafe"

	"go.uber.org/zap"

	"github.com/wasm32ffi/ffi"
	"github.com/wasm32ffi/ffi/closure"
)

// HostFunc is the host-language function shape the table stores: it
// receives the call's wasm values and returns the wasm result values
// (empty for void).
type HostFunc func(stack []uint64) []uint64

// TableEntry is one installed table slot: a host function paired with
// the wasm signature it was converted under.
type TableEntry struct {
	Sig string
	Fn  HostFunc
}

// DefaultMemorySize is the linear-memory size NewRuntime allocates
// when the caller does not choose one: a single wasm memory page.
const DefaultMemorySize = 64 * 1024

// Runtime models the JS-side primitives: linear memory, the wasm
// stack, and the call-indirect table with its free-slot set. The stack
// occupies the top of linear memory and grows downward.
type Runtime struct {
	logger *zap.Logger

	mu    sync.Mutex
	mem   []byte
	sp    uint32
	table []*TableEntry
	pool  *closure.SlotPool
}

// NewRuntime returns a Runtime over memSize bytes of linear memory
// (DefaultMemorySize if zero). cfg may be nil.
func NewRuntime(memSize uint32, cfg *ffi.Config) *Runtime {
	if memSize == 0 {
		memSize = DefaultMemorySize
	}
	return &Runtime{
		logger: cfg.LoggerOrNop(),
		mem:    make([]byte, memSize),
		sp:     memSize,
		pool:   closure.NewSlotPool(0),
	}
}

// Size returns the linear-memory size in bytes.
func (r *Runtime) Size() uint32 { return uint32(len(r.mem)) }

func (r *Runtime) check(offset, length uint32) error {
	if uint64(offset)+uint64(length) > uint64(len(r.mem)) {
		return fmt.Errorf("jshost: memory access [%d, %d) out of range (size %d)", offset, offset+length, len(r.mem))
	}
	return nil
}

// Read returns a view of length bytes at offset. The view aliases the
// runtime's memory; writes through it are visible to the guest.
func (r *Runtime) Read(offset uint32, length uint32) ([]byte, error) {
	if err := r.check(offset, length); err != nil {
		return nil, err
	}
	return r.mem[offset : offset+length], nil
}

func (r *Runtime) Write(offset uint32, data []byte) error {
	if err := r.check(offset, uint32(len(data))); err != nil {
		return err
	}
	copy(r.mem[offset:], data)
	return nil
}

func (r *Runtime) ReadU8(offset uint32) (uint8, error) {
	if err := r.check(offset, 1); err != nil {
		return 0, err
	}
	return r.mem[offset], nil
}

func (r *Runtime) ReadU16(offset uint32) (uint16, error) {
	if err := r.check(offset, 2); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(r.mem[offset:]), nil
}

func (r *Runtime) ReadU32(offset uint32) (uint32, error) {
	if err := r.check(offset, 4); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(r.mem[offset:]), nil
}

func (r *Runtime) ReadU64(offset uint32) (uint64, error) {
	if err := r.check(offset, 8); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(r.mem[offset:]), nil
}

func (r *Runtime) WriteU8(offset uint32, value uint8) error {
	if err := r.check(offset, 1); err != nil {
		return err
	}
	r.mem[offset] = value
	return nil
}

func (r *Runtime) WriteU16(offset uint32, value uint16) error {
	if err := r.check(offset, 2); err != nil {
		return err
	}
	binary.LittleEndian.PutUint16(r.mem[offset:], value)
	return nil
}

func (r *Runtime) WriteU32(offset uint32, value uint32) error {
	if err := r.check(offset, 4); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(r.mem[offset:], value)
	return nil
}

func (r *Runtime) WriteU64(offset uint32, value uint64) error {
	if err := r.check(offset, 8); err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(r.mem[offset:], value)
	return nil
}

var _ ffi.Memory = (*Runtime)(nil)
var _ ffi.MemorySizer = (*Runtime)(nil)

// StackSave returns the current wasm stack pointer.
func (r *Runtime) StackSave() uint32 { return r.sp }

// StackRestore resets the wasm stack pointer to a value previously
// returned by StackSave.
func (r *Runtime) StackRestore(sp uint32) { r.sp = sp }

// StackAlloc reserves size bytes of scratch on the wasm stack and
// returns its offset, 16-byte aligned.
func (r *Runtime) StackAlloc(size uint32) uint32 {
	return r.stackAlloc(size, 16)
}

func (r *Runtime) stackAlloc(size, align uint32) uint32 {
	r.sp = (r.sp - size) &^ (align - 1)
	return r.sp
}

// alignStack rounds the stack pointer down to the 16-byte boundary the
// wasm C ABI requires at call sites.
func (r *Runtime) alignStack() {
	r.sp &^= 15
}

// ptr converts a linear-memory offset to a native pointer into the
// backing store, the form argument vectors carry.
func (r *Runtime) ptr(offset uint32) unsafe.Pointer {
	return unsafe.Pointer(&r.mem[offset])
}

// Len returns the current table length.
func (r *Runtime) Len() uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return uint32(len(r.table))
}

// Grow extends the table by delta empty slots, returning the previous
// length.
func (r *Runtime) Grow(delta uint32) (uint32, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev := uint32(len(r.table))
	r.table = append(r.table, make([]*TableEntry, delta)...)
	return prev, true
}

var _ ffi.Table = (*Runtime)(nil)

// GetWasmTableEntry returns the entry installed at index i, or nil.
func (r *Runtime) GetWasmTableEntry(i uint32) *TableEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i >= uint32(len(r.table)) {
		return nil
	}
	return r.table[i]
}

// SetWasmTableEntry installs e at table index i, growing the table as
// needed.
func (r *Runtime) SetWasmTableEntry(i uint32, e *TableEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for uint32(len(r.table)) <= i {
		r.table = append(r.table, nil)
	}
	r.table[i] = e
}

// GetEmptyTableSlot returns a table index with nothing installed,
// preferring previously freed slots.
func (r *Runtime) GetEmptyTableSlot() uint32 {
	idx := r.pool.Get()
	r.SetWasmTableEntry(idx, nil)
	return idx
}

// FreeTableSlot clears index i and pushes it onto the free-slot set.
func (r *Runtime) FreeTableSlot(i uint32) {
	r.SetWasmTableEntry(i, nil)
	r.pool.Put(i)
}

// ConvertJsFunctionToWasm wraps fn as a table-installable entry with
// the given signature string. The signature must be one return letter
// from "vijfd" followed by zero or more argument letters from "ijfd".
func (r *Runtime) ConvertJsFunctionToWasm(fn HostFunc, sig string) (*TableEntry, error) {
	if err := ValidateSignature(sig); err != nil {
		return nil, err
	}
	return &TableEntry{Sig: sig, Fn: fn}, nil
}

// CallDynamic invokes the table entry at index fn with the lowered
// argument buffer args, writing direct-return bytes into results. It
// decodes the buffer into wasm values per the entry's signature.
func (r *Runtime) CallDynamic(fn uint32, args []byte, results []byte) error {
	e := r.GetWasmTableEntry(fn)
	if e == nil {
		return fmt.Errorf("jshost: no function installed at table index %d", fn)
	}

	stack := make([]uint64, 0, len(e.Sig)-1)
	offset := uint32(0)
	for _, c := range e.Sig[1:] {
		n := letterBytes(byte(c))
		if offset+n > uint32(len(args)) {
			return fmt.Errorf("jshost: argument buffer is %d bytes, signature %q needs more", len(args), e.Sig)
		}
		if n == 8 {
			stack = append(stack, binary.LittleEndian.Uint64(args[offset:]))
		} else {
			stack = append(stack, uint64(binary.LittleEndian.Uint32(args[offset:])))
		}
		offset += n
	}
	if offset != uint32(len(args)) {
		return fmt.Errorf("jshost: argument buffer is %d bytes, signature %q consumed %d", len(args), e.Sig, offset)
	}

	rets := e.Fn(stack)
	if e.Sig[0] != 'v' && len(results) > 0 {
		if len(rets) != 1 {
			return fmt.Errorf("jshost: signature %q expects one result, trampoline returned %d", e.Sig, len(rets))
		}
		if letterBytes(e.Sig[0]) == 8 {
			binary.LittleEndian.PutUint64(results, rets[0])
		} else {
			binary.LittleEndian.PutUint32(results, uint32(rets[0]))
		}
	}
	return nil
}
