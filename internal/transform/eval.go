package transform

import (
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/recast-io/recast/internal/value"
)

// eval runs a compiled expression against the value, which is bound as
// `value` in the environment. A runtime failure leaves the input unchanged.
type eval struct {
	program *vm.Program
}

func newEval(code string) (*eval, error) {
	program, err := expr.Compile(code)
	if err != nil {
		return nil, err
	}
	return &eval{program: program}, nil
}

func (e *eval) Apply(v value.Value) value.Value {
	out, err := expr.Run(e.program, map[string]any{"value": v.Interface()})
	if err != nil {
		return v
	}
	res, err := value.FromAny(out)
	if err != nil {
		return v
	}
	return res
}
