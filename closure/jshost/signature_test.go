package jshost

import (
	"testing"

	"github.com/wasm32ffi/ffi/cif"
	"github.com/wasm32ffi/ffi/ffierr"
	"github.com/wasm32ffi/ffi/typedesc"
)

func sigFor(t *testing.T, variadic bool, nfixed uint32, rtype *typedesc.Type, args ...*typedesc.Type) string {
	t.Helper()
	c := &typedesc.CIF{ABI: typedesc.WASM32Emscripten}
	var code ffierr.Code
	if variadic {
		code = cif.PrepMachdepVar(c, nfixed, rtype, args)
	} else {
		code = cif.PrepMachdep(c, rtype, args)
	}
	if code != ffierr.OK {
		t.Fatalf("prep = %v, want OK", code)
	}
	return Signature(c)
}

func TestSignatureScalars(t *testing.T) {
	cases := []struct {
		want  string
		rtype *typedesc.Type
		args  []*typedesc.Type
	}{
		{"iii", typedesc.Int32Type(), []*typedesc.Type{typedesc.Sint16Type(), typedesc.Sint8Type()}},
		{"ddf", typedesc.DoubleType(), []*typedesc.Type{typedesc.DoubleType(), typedesc.FloatType()}},
		{"jj", typedesc.Sint64Type(), []*typedesc.Type{typedesc.Uint64Type()}},
		{"v", nil, nil},
		{"fi", typedesc.FloatType(), []*typedesc.Type{typedesc.PointerType()}},
	}
	for _, tc := range cases {
		if got := sigFor(t, false, 0, tc.rtype, tc.args...); got != tc.want {
			t.Errorf("signature = %q, want %q", got, tc.want)
		}
	}
}

func TestSignatureIndirectReturn(t *testing.T) {
	pair := typedesc.NewStruct(typedesc.Int32Type(), typedesc.Int32Type())
	if got := sigFor(t, false, 0, pair, pair); got != "vii" {
		t.Errorf("struct-returning signature = %q, want %q", got, "vii")
	}

	// A longdouble return is canonicalised to a struct, so it is
	// likewise indirect.
	if got := sigFor(t, false, 0, typedesc.LongDoubleType(), typedesc.LongDoubleType()); got != "vijj" {
		t.Errorf("longdouble-returning signature = %q, want %q", got, "vijj")
	}
}

func TestSignatureVarargsTrailingPointer(t *testing.T) {
	got := sigFor(t, true, 1, typedesc.Int32Type(),
		typedesc.Int32Type(), typedesc.DoubleType(), typedesc.DoubleType())
	if got != "iii" {
		t.Errorf("variadic signature = %q, want %q (fixed int + varargs pointer)", got, "iii")
	}
}

func TestValidateSignature(t *testing.T) {
	for _, good := range []string{"v", "i", "viijfd", "dji"} {
		if err := ValidateSignature(good); err != nil {
			t.Errorf("ValidateSignature(%q) = %v, want nil", good, err)
		}
	}
	for _, bad := range []string{"", "x", "iv", "i3"} {
		if err := ValidateSignature(bad); err == nil {
			t.Errorf("ValidateSignature(%q) = nil, want error", bad)
		}
	}
}

func TestUnboxSuppressesCollapseAbove16Bytes(t *testing.T) {
	// A collapsed single-element struct keeps its original size; when
	// that size exceeds 16 bytes the trampoline treats it as a struct
	// passed by pointer.
	wide := &typedesc.Type{Kind: typedesc.KindInt, Size: 24, Align: 4}
	if k := unboxKind(wide); k != typedesc.KindStruct {
		t.Fatalf("unboxKind(24-byte int) = %v, want KindStruct", k)
	}
	if k := unboxKind(typedesc.LongDoubleType()); k != typedesc.KindLongDouble {
		t.Fatalf("unboxKind(longdouble) = %v, want KindLongDouble", k)
	}
	if k := unboxKind(typedesc.Int32Type()); k != typedesc.KindInt {
		t.Fatalf("unboxKind(int) = %v, want KindInt", k)
	}
}
