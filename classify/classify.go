package classify

import (
	"github.com/wasm32ffi/ffi/ffierr"
	"github.com/wasm32ffi/ffi/typedesc"
)

// WasmKind is a wasm primitive value kind.
type WasmKind uint8

const (
	I32 WasmKind = iota
	I64
	F32
	F64
)

func (k WasmKind) String() string {
	switch k {
	case I32:
		return "i32"
	case I64:
		return "i64"
	case F32:
		return "f32"
	case F64:
		return "f64"
	default:
		return "unknown"
	}
}

// SlotBytes returns t's wasm-ABI size in bytes.
func SlotBytes(t *typedesc.Type) uint32 {
	if t == nil {
		return 0
	}
	switch t.Kind {
	case typedesc.KindVoid:
		return 0
	case typedesc.KindInt, typedesc.KindUint8, typedesc.KindSint8,
		typedesc.KindUint16, typedesc.KindSint16,
		typedesc.KindUint32, typedesc.KindSint32,
		typedesc.KindPointer, typedesc.KindStruct, typedesc.KindFloat:
		return 4
	case typedesc.KindUint64, typedesc.KindSint64, typedesc.KindDouble:
		return 8
	case typedesc.KindLongDouble:
		return 16
	default:
		panic(unknownKind(t))
	}
}

// SlotCount returns the number of wasm primitive slots t occupies.
func SlotCount(t *typedesc.Type) int {
	return len(SlotKinds(t))
}

// SlotKinds returns the wasm primitive-kind sequence t occupies.
func SlotKinds(t *typedesc.Type) []WasmKind {
	if t == nil {
		return nil
	}
	switch t.Kind {
	case typedesc.KindVoid:
		return nil
	case typedesc.KindInt, typedesc.KindUint8, typedesc.KindSint8,
		typedesc.KindUint16, typedesc.KindSint16,
		typedesc.KindUint32, typedesc.KindSint32,
		typedesc.KindPointer, typedesc.KindStruct:
		return []WasmKind{I32}
	case typedesc.KindFloat:
		return []WasmKind{F32}
	case typedesc.KindUint64, typedesc.KindSint64:
		return []WasmKind{I64}
	case typedesc.KindDouble:
		return []WasmKind{F64}
	case typedesc.KindLongDouble:
		return []WasmKind{I64, I64}
	default:
		panic(unknownKind(t))
	}
}

// IndirectReturn reports whether a return of type t is indirect: the
// callee expects a hidden first i32 argument pointing at caller
// allocated result storage. True exactly for canonical KindStruct;
// false for VOID, scalars, pointer, float, double, and i64. A
// canonical CIF never has a LONGDOUBLE return (canon.Canonicalise
// rewrites it to a struct), so this never needs to classify one.
func IndirectReturn(t *typedesc.Type) bool {
	if t == nil {
		return false
	}
	switch t.Kind {
	case typedesc.KindStruct:
		return true
	case typedesc.KindVoid, typedesc.KindInt, typedesc.KindUint8, typedesc.KindSint8,
		typedesc.KindUint16, typedesc.KindSint16, typedesc.KindUint32, typedesc.KindSint32,
		typedesc.KindUint64, typedesc.KindSint64, typedesc.KindFloat, typedesc.KindDouble,
		typedesc.KindPointer:
		return false
	default:
		panic(unknownKind(t))
	}
}

func unknownKind(t *typedesc.Type) *ffierr.Fatal {
	return ffierr.New(ffierr.PhaseClassify, ffierr.KindUnknownType).
		Detail("classifier reached unrecognised kind %s after canonicalisation", t.Kind).
		Build().Fatal()
}
