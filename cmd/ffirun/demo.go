package main

import (
	"context"
	"fmt"
	"strconv"
	"unsafe"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wasm32ffi/ffi"
	"github.com/wasm32ffi/ffi/call"
	"github.com/wasm32ffi/ffi/cif"
	"github.com/wasm32ffi/ffi/closure"
	"github.com/wasm32ffi/ffi/closure/wasihost"
	"github.com/wasm32ffi/ffi/ffierr"
	"github.com/wasm32ffi/ffi/typedesc"
)

// recordingCaller keeps the last lowered values buffer so the demo can
// show what actually crossed the call boundary.
type recordingCaller struct {
	inner call.DynamicCaller
	last  []byte
}

func (r *recordingCaller) CallDynamic(fn uint32, args []byte, results []byte) error {
	r.last = append(r.last[:0], args...)
	return r.inner.CallDynamic(fn, args, results)
}

// demoCall is one runnable call site: a CIF, its table index, and an
// invoke function that parses the two operand strings.
type demoCall struct {
	name      string
	signature string
	cif       *typedesc.CIF
	fn        uint32
	invoke    func(d *demoWorld, c *demoCall, a, b string) (string, error)
}

// demoWorld owns the wazero runtime, the dispatch table, and the demo
// call sites.
type demoWorld struct {
	wrt    wazero.Runtime
	host   *wasihost.Runtime
	caller *recordingCaller
	engine *closure.Engine
	scale  *typedesc.Closure
	calls  []demoCall
	ctx    context.Context
}

func (d *demoWorld) Close() {
	if d.scale != nil {
		d.engine.Free(d.scale)
	}
	d.wrt.Close(d.ctx)
}

func newDemoWorld(ctx context.Context, logger *zap.Logger) (*demoWorld, error) {
	cfg := &ffi.Config{Logger: logger}

	wrt := wazero.NewRuntime(ctx)
	mod, err := wrt.NewHostModuleBuilder("demo").
		NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(func(_ context.Context, _ api.Module, stack []uint64) {
			stack[0] = api.EncodeI32(api.DecodeI32(stack[0]) + api.DecodeI32(stack[1]))
		}), []api.ValueType{api.ValueTypeI32, api.ValueTypeI32}, []api.ValueType{api.ValueTypeI32}).
		Export("add").
		NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(func(_ context.Context, _ api.Module, stack []uint64) {
			x := api.DecodeF64(stack[0])
			y := api.DecodeF32(stack[1])
			stack[0] = api.EncodeF64(x * float64(y))
		}), []api.ValueType{api.ValueTypeF64, api.ValueTypeF32}, []api.ValueType{api.ValueTypeF64}).
		Export("mul").
		Instantiate(ctx)
	if err != nil {
		wrt.Close(ctx)
		return nil, fmt.Errorf("instantiate demo module: %w", err)
	}

	host := wasihost.NewRuntime(ctx, cfg)
	d := &demoWorld{
		wrt:    wrt,
		host:   host,
		caller: &recordingCaller{inner: host},
		engine: closure.NewEngine(host, cfg),
		ctx:    ctx,
	}

	addFn := host.RegisterFunction(mod.ExportedFunction("add"))
	mulFn := host.RegisterFunction(mod.ExportedFunction("mul"))

	addCIF := &typedesc.CIF{ABI: typedesc.WASM32}
	if code := cif.PrepMachdepWithConfig(cfg, addCIF, typedesc.Int32Type(),
		[]*typedesc.Type{typedesc.Int32Type(), typedesc.Int32Type()}); code != ffierr.OK {
		d.Close()
		return nil, fmt.Errorf("prepare add CIF: %v", code)
	}

	mulCIF := &typedesc.CIF{ABI: typedesc.WASM32}
	if code := cif.PrepMachdepWithConfig(cfg, mulCIF, typedesc.DoubleType(),
		[]*typedesc.Type{typedesc.DoubleType(), typedesc.FloatType()}); code != ffierr.OK {
		d.Close()
		return nil, fmt.Errorf("prepare mul CIF: %v", code)
	}

	// A closure installed in the same table: scale(v, by) = v * by,
	// running as Go code behind a table index like any guest function.
	scaleCIF := &typedesc.CIF{ABI: typedesc.WASM32}
	if code := cif.PrepMachdepWithConfig(cfg, scaleCIF, typedesc.Sint64Type(),
		[]*typedesc.Type{typedesc.Sint64Type(), typedesc.Sint32Type()}); code != ffierr.OK {
		d.Close()
		return nil, fmt.Errorf("prepare scale CIF: %v", code)
	}
	scaleCl, scaleFn := d.engine.Alloc()
	handler := func(ci *typedesc.CIF, resultArea unsafe.Pointer, argv []unsafe.Pointer, _ unsafe.Pointer) {
		v := *(*int64)(argv[0])
		by := *(*int32)(argv[1])
		*(*int64)(resultArea) = v * int64(by)
	}
	if code := d.engine.PrepClosureLoc(scaleCl, scaleCIF, handler, nil, scaleFn); code != ffierr.OK {
		d.Close()
		return nil, fmt.Errorf("prepare scale closure: %v", code)
	}
	d.scale = scaleCl

	d.calls = []demoCall{
		{
			name:      "add",
			signature: "int add(int a, int b)",
			cif:       addCIF,
			fn:        addFn,
			invoke: func(d *demoWorld, c *demoCall, aStr, bStr string) (string, error) {
				a, err := parseI32(aStr)
				if err != nil {
					return "", err
				}
				b, err := parseI32(bStr)
				if err != nil {
					return "", err
				}
				var rv int32
				call.Call(d.caller, c.cif, c.fn, unsafe.Pointer(&rv),
					[]unsafe.Pointer{unsafe.Pointer(&a), unsafe.Pointer(&b)})
				return strconv.FormatInt(int64(rv), 10), nil
			},
		},
		{
			name:      "mul",
			signature: "double mul(double x, float y)",
			cif:       mulCIF,
			fn:        mulFn,
			invoke: func(d *demoWorld, c *demoCall, aStr, bStr string) (string, error) {
				x, err := strconv.ParseFloat(aStr, 64)
				if err != nil {
					return "", fmt.Errorf("bad double %q: %w", aStr, err)
				}
				yWide, err := strconv.ParseFloat(bStr, 32)
				if err != nil {
					return "", fmt.Errorf("bad float %q: %w", bStr, err)
				}
				y := float32(yWide)
				var rv float64
				call.Call(d.caller, c.cif, c.fn, unsafe.Pointer(&rv),
					[]unsafe.Pointer{unsafe.Pointer(&x), unsafe.Pointer(&y)})
				return strconv.FormatFloat(rv, 'g', -1, 64), nil
			},
		},
		{
			name:      "scale",
			signature: "long long scale(long long v, int by)  [closure]",
			cif:       scaleCIF,
			fn:        scaleFn,
			invoke: func(d *demoWorld, c *demoCall, aStr, bStr string) (string, error) {
				v, err := strconv.ParseInt(aStr, 10, 64)
				if err != nil {
					return "", fmt.Errorf("bad long long %q: %w", aStr, err)
				}
				by, err := parseI32(bStr)
				if err != nil {
					return "", err
				}
				var rv int64
				call.Call(d.caller, c.cif, c.fn, unsafe.Pointer(&rv),
					[]unsafe.Pointer{unsafe.Pointer(&v), unsafe.Pointer(&by)})
				return strconv.FormatInt(rv, 10), nil
			},
		},
	}
	return d, nil
}

func parseI32(s string) (int32, error) {
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("bad int %q: %w", s, err)
	}
	return int32(v), nil
}
