package call

import (
	"encoding/binary"
	"unsafe"

	"github.com/wasm32ffi/ffi/classify"
	"github.com/wasm32ffi/ffi/ffierr"
	"github.com/wasm32ffi/ffi/marshal"
	"github.com/wasm32ffi/ffi/typedesc"
)

// DynamicCaller is the host primitive Call drives: invoke the
// table-indexed function fn with the lowered argument buffer args,
// writing its direct-return bytes (if any) into results. results has
// length 0 when the callee's return is indirect; the callee has
// already written through the hidden first-argument pointer baked
// into args.
type DynamicCaller interface {
	CallDynamic(fn uint32, args []byte, results []byte) error
}

// Call drives one ffi_call: lower avalue into a wasm-ABI buffer per
// cif, invoke dyn, and raise the result (if direct) back into rvalue.
// avalue must have exactly cif.NArgs entries, each pointing at a
// caller-owned value of the corresponding cif.ArgTypes[i]. rvalue is
// ignored when cif.RType is void.
//
// Every failure is fatal: an unrecognised ABI tag, a variadic call
// under WASM32, or a host-primitive error all panic(*ffierr.Fatal)
// rather than return an error; none of these indicate a recoverable
// runtime condition.
func Call(dyn DynamicCaller, cif *typedesc.CIF, fn uint32, rvalue unsafe.Pointer, avalue []unsafe.Pointer) {
	if !cif.ABI.Valid() {
		panic(ffierr.New(ffierr.PhaseCall, ffierr.KindBadABI).
			Detail("ffi_call: CIF carries unrecognised ABI tag %d", cif.ABI).Build().Fatal())
	}
	if cif.ABI == typedesc.WASM32 && cif.Variadic() {
		Logger().Sugar().Errorw("ffi_call: variadic call under WASM32 is unsupported", "abi", cif.ABI.String())
		panic(ffierr.New(ffierr.PhaseCall, ffierr.KindVariadic).
			Detail("ffi_call: variadic call under WASM32 (non-JS variant) is unsupported").Build().Fatal())
	}

	indirect := classify.IndirectReturn(cif.RType)

	argsSize := uint32(0)
	if indirect {
		argsSize = 4
	}
	for _, at := range cif.ArgTypes {
		argsSize += classify.SlotBytes(at)
	}

	argsBuf := make([]byte, argsSize)
	offset := uint32(0)
	if indirect {
		binary.LittleEndian.PutUint32(argsBuf, uint32(uintptr(rvalue)))
		offset = 4
	}
	for i, at := range cif.ArgTypes {
		offset += marshal.Lower(argsBuf[offset:], at, avalue[i])
	}

	resultSize := uint32(0)
	if !indirect {
		resultSize = classify.SlotBytes(cif.RType)
	}
	resultBuf := make([]byte, resultSize)

	if err := dyn.CallDynamic(fn, argsBuf, resultBuf); err != nil {
		Logger().Sugar().Errorw("ffi_call: host dynamic-call primitive failed", "fn", fn, "error", err)
		panic(ffierr.New(ffierr.PhaseCall, ffierr.KindHostPrimitive).
			Detail("ffi_call: host call_dynamic primitive failed").Cause(err).Build().Fatal())
	}

	if !indirect && resultSize > 0 {
		copy(unsafe.Slice((*byte)(rvalue), resultSize), resultBuf)
	}
}
