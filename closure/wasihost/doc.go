// Package wasihost backs the closure engine's host-primitive contract
// with a wazero-style dispatch table: guest functions registered as
// wazero api.Function values and closure trampolines installed as
// typed-buffer entries share one index space, dispatched through
// CallDynamic.
package wasihost
