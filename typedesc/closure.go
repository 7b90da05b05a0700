package typedesc

import "unsafe"

// Handler is a user-supplied closure callback: it reads its arguments
// from argv (one pointer per declared argument, valid only for the
// duration of the call) and writes its result, if any, to resultArea.
type Handler func(cif *CIF, resultArea unsafe.Pointer, argv []unsafe.Pointer, userData unsafe.Pointer)

// Closure represents one dynamically-constructed callable. Ftramp
// is the opaque wasm table index the trampoline was installed at.
type Closure struct {
	Ftramp   uint32
	CIF      *CIF
	Fun      Handler
	UserData unsafe.Pointer
}
