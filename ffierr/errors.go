package ffierr

import (
	"fmt"
	"strings"
)

// Code is the declarative-error return type the public contract uses:
// a small integer, with OK and BadTypedef pinned to 0 and 1
// respectively and asserted once at process start below.
type Code int

const (
	OK         Code = 0
	BadTypedef Code = 1
	BadABI     Code = 2
)

func init() {
	if OK != 0 || BadTypedef != 1 {
		panic("ffierr: OK and BadTypedef must be numerically 0 and 1")
	}
}

func (c Code) String() string {
	switch c {
	case OK:
		return "OK"
	case BadTypedef:
		return "BAD_TYPEDEF"
	case BadABI:
		return "BAD_ABI"
	default:
		return fmt.Sprintf("Code(%d)", int(c))
	}
}

// Phase indicates which component raised the error.
type Phase string

const (
	PhaseCanon    Phase = "canon"    // type canonicalisation
	PhaseClassify Phase = "classify" // abi classification
	PhaseMarshal  Phase = "marshal"  // argument lowering/raising
	PhaseCall     Phase = "call"     // ffi_call
	PhaseClosure  Phase = "closure"  // closure alloc/prepare/free
	PhaseCif      Phase = "cif"      // cif preparation
)

// Kind categorizes the error within its Phase.
type Kind string

const (
	KindUnknownType   Kind = "unknown_type"   // kind reached a component after canonicalisation should have removed it
	KindBadABI        Kind = "bad_abi"        // unrecognised or unsupported ABI tag
	KindVariadic      Kind = "variadic"       // variadic call/cif where unsupported
	KindHostPrimitive Kind = "host_primitive" // a wasm host primitive returned an error
	KindArity         Kind = "arity"          // nargs/nfixedargs out of range
)

// Error is the structured declarative-error payload carried alongside
// a Code, and also the payload a Fatal wraps for process-abort
// diagnostics.
type Error struct {
	Phase  Phase
	Kind   Kind
	Detail string
	Cause  error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Cause }

// Fatal wraps e as a process-abort diagnostic.
func (e *Error) Fatal() *Fatal { return &Fatal{Cause: e} }

func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Fatal marks an Error as belonging to the "abort the process" class
// rather than the "declarative, return to caller" class. Core code
// raises these with panic(err.Fatal()); it never recovers its own
// panics; there is no cancellation at this layer.
type Fatal struct {
	Cause *Error
}

func (f *Fatal) Error() string {
	return "fatal: " + f.Cause.Error()
}

func (f *Fatal) Unwrap() error { return f.Cause }

// Builder provides fluent, structured error construction.
type Builder struct {
	err Error
}

// New starts building an Error for the given phase and kind.
func New(phase Phase, kind Kind) *Builder {
	return &Builder{err: Error{Phase: phase, Kind: kind}}
}

func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Build returns the constructed declarative Error.
func (b *Builder) Build() *Error {
	e := b.err
	return &e
}

// Fatal builds the Error and wraps it as a process-abort diagnostic.
func (b *Builder) Fatal() *Fatal {
	return &Fatal{Cause: b.Build()}
}
