package typedesc

// Kind tags the shape of a Type. The zero value is KindVoid.
type Kind uint8

const (
	KindVoid Kind = iota
	KindInt
	KindUint8
	KindSint8
	KindUint16
	KindSint16
	KindUint32
	KindSint32
	KindUint64
	KindSint64
	KindFloat
	KindDouble
	KindLongDouble
	KindPointer
	KindStruct
	KindComplex
)

func (k Kind) String() string {
	switch k {
	case KindVoid:
		return "void"
	case KindInt:
		return "int"
	case KindUint8:
		return "uint8"
	case KindSint8:
		return "sint8"
	case KindUint16:
		return "uint16"
	case KindSint16:
		return "sint16"
	case KindUint32:
		return "uint32"
	case KindSint32:
		return "sint32"
	case KindUint64:
		return "uint64"
	case KindSint64:
		return "sint64"
	case KindFloat:
		return "float"
	case KindDouble:
		return "double"
	case KindLongDouble:
		return "longdouble"
	case KindPointer:
		return "pointer"
	case KindStruct:
		return "struct"
	case KindComplex:
		return "complex"
	default:
		return "unknown"
	}
}

// Type represents one C type. Elements holds the children of a
// KindStruct or KindComplex descriptor, mirroring the null-terminated
// child vector of the C contract (re-expressed as a Go slice; see CIF's
// doc comment for why the rest of the layout stays closer to the
// literal byte contract than this field does). Canonicalisation
// rewrites Kind in place and leaves Elements as it was, so a struct
// collapsed to a scalar kind keeps its element vector.
type Type struct {
	Size     uint32
	Align    uint32
	Kind     Kind
	Elements []*Type
}

// Scalar returns a non-aggregate Type of the given kind, size, and
// alignment. It panics if kind is KindStruct or KindComplex; use
// NewStruct for those.
func Scalar(kind Kind, size, align uint32) *Type {
	if kind == KindStruct || kind == KindComplex {
		panic("typedesc: Scalar called with aggregate kind " + kind.String())
	}
	return &Type{Kind: kind, Size: size, Align: align}
}

// Well-known scalar descriptors, sized per the wasm32 C ABI.
func VoidType() *Type       { return Scalar(KindVoid, 0, 0) }
func Uint8Type() *Type      { return Scalar(KindUint8, 1, 1) }
func Sint8Type() *Type      { return Scalar(KindSint8, 1, 1) }
func Uint16Type() *Type     { return Scalar(KindUint16, 2, 2) }
func Sint16Type() *Type     { return Scalar(KindSint16, 2, 2) }
func Uint32Type() *Type     { return Scalar(KindUint32, 4, 4) }
func Sint32Type() *Type     { return Scalar(KindSint32, 4, 4) }
func Int32Type() *Type      { return Scalar(KindInt, 4, 4) }
func Uint64Type() *Type     { return Scalar(KindUint64, 8, 8) }
func Sint64Type() *Type     { return Scalar(KindSint64, 8, 8) }
func FloatType() *Type      { return Scalar(KindFloat, 4, 4) }
func DoubleType() *Type     { return Scalar(KindDouble, 8, 8) }
func LongDoubleType() *Type { return Scalar(KindLongDouble, 16, 16) }
func PointerType() *Type    { return Scalar(KindPointer, 4, 4) }

// NewStruct computes size and alignment from elems using the standard
// C aggregate layout rule (each field aligned to its own alignment,
// overall size padded to the struct's alignment) and returns a
// KindStruct Type over them. A zero-element struct has size 0 (the
// Type Canonicaliser rewrites these to KindVoid).
func NewStruct(elems ...*Type) *Type {
	var offset, maxAlign uint32
	for _, e := range elems {
		if e.Align > 0 {
			offset = alignUp(offset, e.Align)
		}
		offset += e.Size
		if e.Align > maxAlign {
			maxAlign = e.Align
		}
	}
	if maxAlign == 0 {
		maxAlign = 1
	}
	size := alignUp(offset, maxAlign)
	return &Type{Kind: KindStruct, Size: size, Align: maxAlign, Elements: elems}
}

// NewComplex returns a KindComplex Type over the given underlying
// float element kind (KindFloat, KindDouble, or KindLongDouble); the
// Type Canonicaliser is the only component permitted to construct the
// two-field struct this rewrites to.
func NewComplex(elem *Type) *Type {
	return &Type{Kind: KindComplex, Size: 2 * elem.Size, Align: elem.Align, Elements: []*Type{elem}}
}

func alignUp(v, align uint32) uint32 {
	if align <= 1 {
		return v
	}
	return (v + align - 1) &^ (align - 1)
}
