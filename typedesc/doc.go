// Package typedesc defines the descriptor layouts the core reads and
// mutates: Type (one C type), CIF (one call site), and Closure (one
// dynamically-constructed callable). These types are owned by the
// generic front end in a full libffi distribution; this module defines
// their shape because the machine-dependent core reads them by layout
// and, for Type, mutates them in place during canonicalisation.
package typedesc
