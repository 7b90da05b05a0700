// Package ffierr provides the two error classes the core distinguishes:
// declarative errors returned as small integer Codes from
// cif.PrepMachdep* and closure.PrepClosureLoc, and fatal errors that
// abort the process with a diagnostic (realized here as panic(*Fatal),
// the idiomatic Go analogue of a process abort: an unrecovered panic
// terminates the program and prints the diagnostic).
//
// Use the Builder for structured fatal diagnostics:
//
//	panic(ffierr.New(ffierr.PhaseCall, ffierr.KindHostPrimitive).
//		Detail("call_dynamic failed for fn index %d", idx).
//		Build().Fatal())
//
// Declarative errors are the bare Code values; callers compare against
// ffierr.OK / ffierr.BadTypedef / ffierr.BadABI.
package ffierr
