package marshal

import (
	"testing"
	"unsafe"

	"github.com/wasm32ffi/ffi/classify"
	"github.com/wasm32ffi/ffi/typedesc"
)

func TestLowerInt32Scenario1(t *testing.T) {
	a := int32(3)
	b := int32(4)
	buf := make([]byte, 8)
	n := Lower(buf, typedesc.Int32Type(), unsafe.Pointer(&a))
	if n != 4 {
		t.Fatalf("got n=%d, want 4", n)
	}
	Lower(buf[4:], typedesc.Int32Type(), unsafe.Pointer(&b))

	want := []byte{0x03, 0x00, 0x00, 0x00, 0x04, 0x00, 0x00, 0x00}
	for i := range want {
		if buf[i] != want[i] {
			t.Fatalf("buf = % x, want % x", buf, want)
		}
	}
}

func TestLowerSignedNarrowWidensWithSignExtend(t *testing.T) {
	v := int16(-1)
	buf := make([]byte, 4)
	Lower(buf, typedesc.Sint16Type(), unsafe.Pointer(&v))
	if buf[0] != 0xFF || buf[1] != 0xFF || buf[2] != 0xFF || buf[3] != 0xFF {
		t.Fatalf("buf = % x, want all 0xFF (sign-extended -1)", buf)
	}
}

func TestLowerUnsignedNarrowZeroExtends(t *testing.T) {
	v := uint8(0xFF)
	buf := make([]byte, 4)
	Lower(buf, typedesc.Uint8Type(), unsafe.Pointer(&v))
	if buf[0] != 0xFF || buf[1] != 0 || buf[2] != 0 || buf[3] != 0 {
		t.Fatalf("buf = % x, want zero-extended 0xFF", buf)
	}
}

func TestRoundTripScalars(t *testing.T) {
	var i32 int32 = -12345
	var u64 uint64 = 0xdeadbeefcafebabe
	var f32 float32 = 2.5
	var f64 float64 = 3.25

	buf := make([]byte, classify.SlotBytes(typedesc.Int32Type()))
	Lower(buf, typedesc.Int32Type(), unsafe.Pointer(&i32))
	got := *(*int32)(Raise(buf, typedesc.Int32Type()))
	if got != i32 {
		t.Fatalf("int32 round-trip: got %d, want %d", got, i32)
	}

	buf = make([]byte, classify.SlotBytes(typedesc.Uint64Type()))
	Lower(buf, typedesc.Uint64Type(), unsafe.Pointer(&u64))
	if gotU := *(*uint64)(Raise(buf, typedesc.Uint64Type())); gotU != u64 {
		t.Fatalf("uint64 round-trip: got %d, want %d", gotU, u64)
	}

	buf = make([]byte, classify.SlotBytes(typedesc.FloatType()))
	Lower(buf, typedesc.FloatType(), unsafe.Pointer(&f32))
	if gotF := *(*float32)(Raise(buf, typedesc.FloatType())); gotF != f32 {
		t.Fatalf("float32 round-trip: got %v, want %v", gotF, f32)
	}

	buf = make([]byte, classify.SlotBytes(typedesc.DoubleType()))
	Lower(buf, typedesc.DoubleType(), unsafe.Pointer(&f64))
	if gotD := *(*float64)(Raise(buf, typedesc.DoubleType())); gotD != f64 {
		t.Fatalf("float64 round-trip: got %v, want %v", gotD, f64)
	}
}

func TestRoundTripLongDouble(t *testing.T) {
	var raw [16]byte
	for i := range raw {
		raw[i] = byte(i + 1)
	}
	buf := make([]byte, 16)
	Lower(buf, typedesc.LongDoubleType(), unsafe.Pointer(&raw))
	got := (*[16]byte)(Raise(buf, typedesc.LongDoubleType()))
	if *got != raw {
		t.Fatalf("longdouble round-trip mismatch: got % x, want % x", *got, raw)
	}
}

func TestLowerStructWritesPointerNotBytes(t *testing.T) {
	type pair struct{ a, b int32 }
	p := pair{1, 2}
	structType := typedesc.NewStruct(typedesc.Int32Type(), typedesc.Int32Type())

	buf := make([]byte, 4)
	Lower(buf, structType, unsafe.Pointer(&p))

	want := uint32(uintptr(unsafe.Pointer(&p)))
	if got := uint32(buf[0]) | uint32(buf[1])<<8 | uint32(buf[2])<<16 | uint32(buf[3])<<24; got != want {
		t.Fatalf("struct slot = %#x, want the value's address %#x", got, want)
	}

	// Dereferencing the raised pointer needs the 32-bit address space
	// the slot width implies.
	if unsafe.Sizeof(uintptr(0)) > 4 {
		return
	}
	raised := (*pair)(Raise(buf, structType))
	if raised.a != 1 || raised.b != 2 {
		t.Fatalf("struct pointer round-trip: got %+v", *raised)
	}
}

func TestLowerVoidIsNoop(t *testing.T) {
	buf := make([]byte, 0)
	if n := Lower(buf, typedesc.VoidType(), nil); n != 0 {
		t.Fatalf("Lower(void) wrote %d bytes, want 0", n)
	}
	if p := Raise(buf, typedesc.VoidType()); p != nil {
		t.Fatalf("Raise(void) = %v, want nil", p)
	}
}

func TestLowerPanicsOnComplexAfterNoCanonicalisation(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic lowering a COMPLEX type")
		}
	}()
	c := typedesc.NewComplex(typedesc.DoubleType())
	buf := make([]byte, 16)
	var v [16]byte
	Lower(buf, c, unsafe.Pointer(&v))
}
