package cif

import (
	"testing"

	"github.com/wasm32ffi/ffi"
	"github.com/wasm32ffi/ffi/ffierr"
	"github.com/wasm32ffi/ffi/typedesc"
)

func TestPrepMachdepStructCollapse(t *testing.T) {
	// Struct of one int collapses to the int kind.
	c := &typedesc.CIF{ABI: typedesc.WASM32}
	one := typedesc.NewStruct(typedesc.Int32Type())
	if code := PrepMachdep(c, typedesc.VoidType(), []*typedesc.Type{one}); code != ffierr.OK {
		t.Fatalf("PrepMachdep = %v, want OK", code)
	}
	if one.Kind != typedesc.KindInt {
		t.Fatalf("struct of one int: kind = %v, want KindInt", one.Kind)
	}

	// Struct of one int and one zero-size struct collapses likewise.
	c = &typedesc.CIF{ABI: typedesc.WASM32}
	mixed := typedesc.NewStruct(typedesc.Int32Type(), typedesc.NewStruct())
	if code := PrepMachdep(c, typedesc.VoidType(), []*typedesc.Type{mixed}); code != ffierr.OK {
		t.Fatalf("PrepMachdep = %v, want OK", code)
	}
	if mixed.Kind != typedesc.KindInt {
		t.Fatalf("struct of int and empty struct: kind = %v, want KindInt", mixed.Kind)
	}

	// Struct of two ints stays a struct.
	c = &typedesc.CIF{ABI: typedesc.WASM32}
	two := typedesc.NewStruct(typedesc.Int32Type(), typedesc.Int32Type())
	if code := PrepMachdep(c, typedesc.VoidType(), []*typedesc.Type{two}); code != ffierr.OK {
		t.Fatalf("PrepMachdep = %v, want OK", code)
	}
	if two.Kind != typedesc.KindStruct {
		t.Fatalf("struct of two ints: kind = %v, want KindStruct", two.Kind)
	}
}

func TestPrepMachdepArgCap(t *testing.T) {
	over := make([]*typedesc.Type, typedesc.MaxArgs+1)
	for i := range over {
		over[i] = typedesc.Int32Type()
	}
	c := &typedesc.CIF{ABI: typedesc.WASM32}
	if code := PrepMachdep(c, typedesc.Int32Type(), over); code != ffierr.BadTypedef {
		t.Fatalf("PrepMachdep with %d args = %v, want BadTypedef", len(over), code)
	}

	atCap := over[:typedesc.MaxArgs]
	c = &typedesc.CIF{ABI: typedesc.WASM32}
	if code := PrepMachdep(c, typedesc.Int32Type(), atCap); code != ffierr.OK {
		t.Fatalf("PrepMachdep with %d args = %v, want OK", len(atCap), code)
	}
}

func TestPrepMachdepConfiguredCap(t *testing.T) {
	args := []*typedesc.Type{typedesc.Int32Type(), typedesc.Int32Type(), typedesc.Int32Type()}

	cfg := &ffi.Config{MaxArgs: 2}
	c := &typedesc.CIF{ABI: typedesc.WASM32}
	if code := PrepMachdepWithConfig(cfg, c, nil, args); code != ffierr.BadTypedef {
		t.Fatalf("3 args under a cap of 2 = %v, want BadTypedef", code)
	}

	c = &typedesc.CIF{ABI: typedesc.WASM32}
	if code := PrepMachdepWithConfig(cfg, c, nil, args[:2]); code != ffierr.OK {
		t.Fatalf("2 args under a cap of 2 = %v, want OK", code)
	}
}

func TestPrepMachdepConfiguredCapClampedToHardLimit(t *testing.T) {
	over := make([]*typedesc.Type, typedesc.MaxArgs+1)
	for i := range over {
		over[i] = typedesc.Int32Type()
	}
	cfg := &ffi.Config{MaxArgs: typedesc.MaxArgs * 2}
	c := &typedesc.CIF{ABI: typedesc.WASM32}
	if code := PrepMachdepWithConfig(cfg, c, nil, over); code != ffierr.BadTypedef {
		t.Fatalf("a configured cap cannot raise the hard limit; got %v, want BadTypedef", code)
	}
}

func TestPrepMachdepBadABI(t *testing.T) {
	c := &typedesc.CIF{ABI: typedesc.ABI(7)}
	if code := PrepMachdep(c, nil, nil); code != ffierr.BadABI {
		t.Fatalf("PrepMachdep with unknown ABI = %v, want BadABI", code)
	}
}

func TestPrepMachdepNilReturnIsVoid(t *testing.T) {
	c := &typedesc.CIF{ABI: typedesc.WASM32}
	if code := PrepMachdep(c, nil, nil); code != ffierr.OK {
		t.Fatalf("PrepMachdep = %v, want OK", code)
	}
	if c.NArgs != 0 || c.NFixedArgs != 0 {
		t.Fatalf("nargs=%d nfixedargs=%d, want 0/0", c.NArgs, c.NFixedArgs)
	}
}

func TestPrepMachdepForcesNFixedArgs(t *testing.T) {
	c := &typedesc.CIF{ABI: typedesc.WASM32}
	args := []*typedesc.Type{typedesc.Int32Type(), typedesc.DoubleType()}
	if code := PrepMachdep(c, typedesc.Int32Type(), args); code != ffierr.OK {
		t.Fatalf("PrepMachdep = %v, want OK", code)
	}
	if c.NFixedArgs != 2 {
		t.Fatalf("non-variadic NFixedArgs = %d, want 2", c.NFixedArgs)
	}
}

func TestPrepMachdepCanonicalForm(t *testing.T) {
	c := &typedesc.CIF{ABI: typedesc.WASM32}
	args := []*typedesc.Type{
		typedesc.NewComplex(typedesc.DoubleType()),
		typedesc.NewStruct(typedesc.NewComplex(typedesc.FloatType()), typedesc.Int32Type()),
	}
	if code := PrepMachdep(c, typedesc.LongDoubleType(), args); code != ffierr.OK {
		t.Fatalf("PrepMachdep = %v, want OK", code)
	}

	var walk func(ty *typedesc.Type)
	walk = func(ty *typedesc.Type) {
		if ty.Kind == typedesc.KindComplex {
			t.Fatalf("complex kind survived canonicalisation")
		}
		for _, e := range ty.Elements {
			walk(e)
		}
	}
	for _, at := range c.ArgTypes {
		walk(at)
	}
	walk(c.RType)

	if c.RType.Kind != typedesc.KindStruct {
		t.Fatalf("longdouble return kind = %v, want KindStruct", c.RType.Kind)
	}
}

func TestPrepMachdepIdempotent(t *testing.T) {
	c := &typedesc.CIF{ABI: typedesc.WASM32}
	args := []*typedesc.Type{typedesc.NewComplex(typedesc.DoubleType())}
	if code := PrepMachdep(c, typedesc.LongDoubleType(), args); code != ffierr.OK {
		t.Fatalf("first PrepMachdep = %v, want OK", code)
	}
	argKind, retKind := c.ArgTypes[0].Kind, c.RType.Kind
	argSize, retSize := c.ArgTypes[0].Size, c.RType.Size

	if code := PrepMachdep(c, c.RType, c.ArgTypes); code != ffierr.OK {
		t.Fatalf("second PrepMachdep = %v, want OK", code)
	}
	if c.ArgTypes[0].Kind != argKind || c.RType.Kind != retKind ||
		c.ArgTypes[0].Size != argSize || c.RType.Size != retSize {
		t.Fatalf("second PrepMachdep was not a no-op")
	}
}

func TestPrepMachdepEmscriptenRejectsComplex(t *testing.T) {
	c := &typedesc.CIF{ABI: typedesc.WASM32Emscripten}
	code := PrepMachdep(c, typedesc.NewComplex(typedesc.DoubleType()), nil)
	if code != ffierr.BadTypedef {
		t.Fatalf("complex return under emscripten = %v, want BadTypedef", code)
	}

	c = &typedesc.CIF{ABI: typedesc.WASM32Emscripten}
	code = PrepMachdep(c, nil, []*typedesc.Type{typedesc.NewComplex(typedesc.FloatType())})
	if code != ffierr.BadTypedef {
		t.Fatalf("complex argument under emscripten = %v, want BadTypedef", code)
	}
}

func TestPrepMachdepVarWASM32Rejected(t *testing.T) {
	c := &typedesc.CIF{ABI: typedesc.WASM32}
	code := PrepMachdepVar(c, 1, typedesc.Int32Type(), []*typedesc.Type{typedesc.Int32Type(), typedesc.DoubleType()})
	if code != ffierr.BadABI {
		t.Fatalf("PrepMachdepVar under WASM32 = %v, want BadABI", code)
	}
}

func TestPrepMachdepVarEmscripten(t *testing.T) {
	c := &typedesc.CIF{ABI: typedesc.WASM32Emscripten}
	args := []*typedesc.Type{typedesc.Int32Type(), typedesc.DoubleType(), typedesc.DoubleType()}
	if code := PrepMachdepVar(c, 1, typedesc.Int32Type(), args); code != ffierr.OK {
		t.Fatalf("PrepMachdepVar = %v, want OK", code)
	}
	if !c.Variadic() {
		t.Fatalf("varargs flag not set")
	}
	if c.NFixedArgs != 1 || c.NArgs != 3 {
		t.Fatalf("nfixedargs=%d nargs=%d, want 1/3", c.NFixedArgs, c.NArgs)
	}
}

func TestPrepMachdepVarChargesVarargsPointerSlot(t *testing.T) {
	// ntotal+1 must still fit under the arity cap.
	args := make([]*typedesc.Type, typedesc.MaxArgs)
	for i := range args {
		args[i] = typedesc.Int32Type()
	}
	c := &typedesc.CIF{ABI: typedesc.WASM32Emscripten}
	if code := PrepMachdepVar(c, 1, nil, args); code != ffierr.BadTypedef {
		t.Fatalf("PrepMachdepVar at cap = %v, want BadTypedef", code)
	}

	c = &typedesc.CIF{ABI: typedesc.WASM32Emscripten}
	if code := PrepMachdepVar(c, 1, nil, args[:typedesc.MaxArgs-1]); code != ffierr.OK {
		t.Fatalf("PrepMachdepVar one under cap = %v, want OK", code)
	}
}
