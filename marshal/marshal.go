package marshal

import (
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/wasm32ffi/ffi/classify"
	"github.com/wasm32ffi/ffi/ffierr"
	"github.com/wasm32ffi/ffi/typedesc"
)

// Lower writes the value pointed to by v (a caller-owned value of type
// t) into dst in wasm-ABI form and returns the number of bytes
// written; always classify.SlotBytes(t). dst must have at least that
// many bytes available; Lower never reads or writes past that point,
// so the caller may pass a larger buffer and advance its own cursor by
// the returned count. The buffer is treated as unaligned: no padding
// is inserted before or after the written bytes.
func Lower(dst []byte, t *typedesc.Type, v unsafe.Pointer) uint32 {
	n := classify.SlotBytes(t)
	if n == 0 {
		return 0
	}

	switch t.Kind {
	case typedesc.KindUint8:
		binary.LittleEndian.PutUint32(dst, uint32(*(*uint8)(v)))
	case typedesc.KindSint8:
		binary.LittleEndian.PutUint32(dst, uint32(int32(*(*int8)(v))))
	case typedesc.KindUint16:
		binary.LittleEndian.PutUint32(dst, uint32(*(*uint16)(v)))
	case typedesc.KindSint16:
		binary.LittleEndian.PutUint32(dst, uint32(int32(*(*int16)(v))))
	case typedesc.KindUint32:
		binary.LittleEndian.PutUint32(dst, *(*uint32)(v))
	case typedesc.KindSint32, typedesc.KindInt:
		binary.LittleEndian.PutUint32(dst, uint32(*(*int32)(v)))
	case typedesc.KindPointer:
		binary.LittleEndian.PutUint32(dst, uint32(uintptr(*(*unsafe.Pointer)(v))))
	case typedesc.KindStruct:
		// STRUCT is passed by pointer: the slot holds v itself, not
		// the bytes it points to.
		binary.LittleEndian.PutUint32(dst, uint32(uintptr(v)))
	case typedesc.KindUint64:
		binary.LittleEndian.PutUint64(dst, *(*uint64)(v))
	case typedesc.KindSint64:
		binary.LittleEndian.PutUint64(dst, uint64(*(*int64)(v)))
	case typedesc.KindFloat:
		binary.LittleEndian.PutUint32(dst, math.Float32bits(*(*float32)(v)))
	case typedesc.KindDouble:
		binary.LittleEndian.PutUint64(dst, math.Float64bits(*(*float64)(v)))
	case typedesc.KindLongDouble:
		copy(dst[:16], unsafe.Slice((*byte)(v), 16))
	default:
		panic(unknownKind(t))
	}
	return n
}

// Raise reads a wasm-ABI buffer slot for type t and returns a pointer
// suitable for handing to code expecting a t*. For non-STRUCT kinds
// this is a pointer into src itself; for STRUCT the slot contains a
// pointer value, so one extra dereference is performed. The caller
// advances its own cursor by classify.SlotBytes(t); Raise does not
// consume more of src than that.
func Raise(src []byte, t *typedesc.Type) unsafe.Pointer {
	if t == nil || t.Kind == typedesc.KindVoid {
		return nil
	}

	switch t.Kind {
	case typedesc.KindUint8, typedesc.KindSint8, typedesc.KindUint16, typedesc.KindSint16,
		typedesc.KindUint32, typedesc.KindSint32, typedesc.KindInt, typedesc.KindPointer,
		typedesc.KindUint64, typedesc.KindSint64, typedesc.KindFloat, typedesc.KindDouble,
		typedesc.KindLongDouble:
		return unsafe.Pointer(&src[0])
	case typedesc.KindStruct:
		addr := binary.LittleEndian.Uint32(src)
		return unsafe.Pointer(uintptr(addr))
	default:
		panic(unknownKind(t))
	}
}

func unknownKind(t *typedesc.Type) *ffierr.Fatal {
	return ffierr.New(ffierr.PhaseMarshal, ffierr.KindUnknownType).
		Detail("lowerer/raiser reached unrecognised kind %s after canonicalisation", t.Kind).
		Build().Fatal()
}
