package runnerspec

import "context"

// Runner is the resolved unit of work for one worker. The worker loop calls
// it repeatedly; returning halt=true stops the loop, a non-nil error is
// logged and the loop continues after a backoff.
type Runner func(ctx context.Context, id string) (halt bool, err error)

// Factory builds a Runner from declarative arguments. Catalog modules
// register one Factory per runner name.
type Factory func(args Args) (Runner, error)

// Catalog is the subset of the runner catalog the resolver needs. Defined
// here so resolution does not depend on the concrete catalog type.
type Catalog interface {
	Runner(name string) (Factory, bool)
}

// Spec is a polymorphic description of work to execute for a key. It is
// inspected only by Resolve.
type Spec interface {
	isSpec()
}

// Func is a Spec wrapping a callable already bound to its id.
type Func struct {
	Fn Runner
}

// Module is a Spec naming a runner registered in the catalog, plus the
// declarative arguments its Factory is built from.
type Module struct {
	Name string
	Args Args
}

// Call is a Spec naming a method on an arbitrary receiver with fixed
// arguments. The method is looked up by reflection at resolve time; see
// Resolve for the accepted signatures.
type Call struct {
	Recv   any
	Method string
	Args   []any
}

// Default is a Spec selecting the manager's fallback runner. It carries no
// data; the pool substitutes the runner it was constructed with.
type Default struct{}

func (Func) isSpec()    {}
func (Module) isSpec()  {}
func (Call) isSpec()    {}
func (Default) isSpec() {}

// Describe returns a short human-readable tag for logging.
func Describe(s Spec) string {
	switch v := s.(type) {
	case Func:
		return "func"
	case Module:
		return "module:" + v.Name
	case Call:
		return "call:" + v.Method
	case Default:
		return "default"
	default:
		return "unknown"
	}
}
