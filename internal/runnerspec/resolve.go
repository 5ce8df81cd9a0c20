package runnerspec

import (
	"context"
	"fmt"
	"reflect"
)

var (
	ctxType  = reflect.TypeOf((*context.Context)(nil)).Elem()
	errType  = reflect.TypeOf((*error)(nil)).Elem()
	boolType = reflect.TypeOf(false)
)

// Resolve turns a Spec into a concrete Runner. It is called once per worker
// start, at the pool boundary; fallback is the runner substituted for the
// Default variant. All signature and lookup problems surface here, as start
// failures, never inside the worker loop.
func Resolve(spec Spec, cat Catalog, fallback Runner) (Runner, error) {
	switch v := spec.(type) {
	case Func:
		if v.Fn == nil {
			return nil, fmt.Errorf("func spec has nil callable")
		}
		return v.Fn, nil

	case Module:
		if cat == nil {
			return nil, fmt.Errorf("module spec %q: no catalog available", v.Name)
		}
		factory, ok := cat.Runner(v.Name)
		if !ok {
			return nil, fmt.Errorf("module spec %q: runner not registered", v.Name)
		}
		runner, err := factory(v.Args)
		if err != nil {
			return nil, fmt.Errorf("module spec %q: %w", v.Name, err)
		}
		return runner, nil

	case Call:
		return resolveCall(v)

	case Default:
		if fallback == nil {
			return nil, fmt.Errorf("default spec requested but no fallback runner configured")
		}
		return fallback, nil

	case nil:
		return nil, fmt.Errorf("nil spec")

	default:
		return nil, fmt.Errorf("unknown spec variant %T", spec)
	}
}

// resolveCall binds a (receiver, method, fixed-arguments) triple by
// reflection. The method must have the shape
//
//	func (r) Name(ctx context.Context, id string, fixed...) (bool, error)
//
// where fixed... matches the spec's Args positionally.
func resolveCall(c Call) (Runner, error) {
	if c.Recv == nil {
		return nil, fmt.Errorf("call spec %q: nil receiver", c.Method)
	}
	m := reflect.ValueOf(c.Recv).MethodByName(c.Method)
	if !m.IsValid() {
		return nil, fmt.Errorf("call spec: %T has no method %q", c.Recv, c.Method)
	}

	mt := m.Type()
	if mt.NumIn() != 2+len(c.Args) {
		return nil, fmt.Errorf("call spec %q: method takes %d args, spec supplies %d (plus ctx and id)",
			c.Method, mt.NumIn(), len(c.Args))
	}
	if mt.NumOut() != 2 || mt.Out(0) != boolType || mt.Out(1) != errType {
		return nil, fmt.Errorf("call spec %q: method must return (bool, error)", c.Method)
	}
	if !ctxType.AssignableTo(mt.In(0)) || mt.In(1).Kind() != reflect.String {
		return nil, fmt.Errorf("call spec %q: method must take (context.Context, string, ...)", c.Method)
	}

	fixed := make([]reflect.Value, len(c.Args))
	for i, a := range c.Args {
		av := reflect.ValueOf(a)
		want := mt.In(2 + i)
		if !av.IsValid() || !av.Type().AssignableTo(want) {
			return nil, fmt.Errorf("call spec %q: fixed argument %d is %T, method wants %s", c.Method, i, a, want)
		}
		fixed[i] = av
	}

	return func(ctx context.Context, id string) (bool, error) {
		in := make([]reflect.Value, 0, 2+len(fixed))
		in = append(in, reflect.ValueOf(ctx), reflect.ValueOf(id))
		in = append(in, fixed...)
		out := m.Call(in)
		halt := out[0].Bool()
		if errV := out[1].Interface(); errV != nil {
			return halt, errV.(error)
		}
		return halt, nil
	}, nil
}
