package rule

import (
	celgo "github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/common/types/traits"
)

// CELOption configures the CEL engine.
type CELOption func(*celEngine)

// CELWithProgramCache wires a ProgramCache into the CEL engine.
func CELWithProgramCache(cache ProgramCache) CELOption {
	return func(e *celEngine) {
		e.cache = cache
	}
}

// CELWithFunctionRegistry wires a FunctionRegistry into the CEL engine.
// Registered functions are reachable through call("name") and
// call("name", [args]).
func CELWithFunctionRegistry(registry *FunctionRegistry) CELOption {
	return func(e *celEngine) {
		if registry == nil {
			return
		}
		e.registry = registry.Clone()
	}
}

// celEngine executes page rules using cel-go. The environment is fixed, so
// compiled programs are reusable across contexts.
type celEngine struct {
	cache    ProgramCache
	registry *FunctionRegistry
}

// NewCELEvaluator constructs an Evaluator backed by cel-go.
func NewCELEvaluator(opts ...CELOption) Evaluator {
	e := &celEngine{}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

func (e *celEngine) Evaluate(ctx Context, expression string) (any, error) {
	if expression == "" {
		return nil, wrapEvaluationError("cel", expression, errEmptyExpression)
	}
	ctx = ctx.withDefaults()
	program, err := e.loadOrCompile(expression)
	if err != nil {
		return nil, err
	}
	out, _, err := program.Eval(e.activation(ctx))
	if err != nil {
		return nil, wrapEvaluationError("cel", expression, err)
	}
	return out.Value(), nil
}

func (e *celEngine) Compile(expression string) (CompiledRule, error) {
	if expression == "" {
		return nil, wrapEvaluationError("cel", expression, errEmptyExpression)
	}
	program, err := e.loadOrCompile(expression)
	if err != nil {
		return nil, err
	}
	return &celRule{engine: e, program: program, expression: expression}, nil
}

func (e *celEngine) loadOrCompile(expression string) (celgo.Program, error) {
	if e.cache != nil {
		if cached, ok := e.cache.Get(expression); ok {
			if program, ok := cached.(celgo.Program); ok {
				return program, nil
			}
		}
	}

	env, err := e.buildEnv()
	if err != nil {
		return nil, wrapEvaluationError("cel", expression, err)
	}
	ast, issues := env.Parse(expression)
	if issues != nil && issues.Err() != nil {
		return nil, wrapEvaluationError("cel", expression, issues.Err())
	}
	checked, issues := env.Check(ast)
	if issues != nil && issues.Err() != nil {
		return nil, wrapEvaluationError("cel", expression, issues.Err())
	}
	program, err := env.Program(checked)
	if err != nil {
		return nil, wrapEvaluationError("cel", expression, err)
	}
	if e.cache != nil {
		e.cache.Set(expression, program)
	}
	return program, nil
}

func (e *celEngine) buildEnv() (*celgo.Env, error) {
	opts := []celgo.EnvOption{
		celgo.Variable("page", celgo.StringType),
		celgo.Variable("user", celgo.StringType),
		celgo.Variable("effective", celgo.IntType),
		celgo.Variable("now", celgo.TimestampType),
		celgo.Variable("metadata", celgo.DynType),
	}
	if e.registry != nil {
		opts = append(opts,
			celgo.Function("call",
				celgo.Overload("call_string",
					[]*celgo.Type{celgo.StringType},
					celgo.DynType,
					celgo.FunctionBinding(e.callBinding()),
				),
				celgo.Overload("call_string_list",
					[]*celgo.Type{celgo.StringType, celgo.ListType(celgo.DynType)},
					celgo.DynType,
					celgo.FunctionBinding(e.callBinding()),
				),
			),
		)
	}
	return celgo.NewEnv(opts...)
}

func (e *celEngine) activation(ctx Context) map[string]any {
	return ctx.environment()
}

func (e *celEngine) callBinding() func(...ref.Val) ref.Val {
	return func(values ...ref.Val) ref.Val {
		if e.registry == nil {
			return types.NewErr("rule: function registry not configured")
		}
		if len(values) == 0 {
			return types.NewErr("rule: call requires function name")
		}
		name, ok := values[0].Value().(string)
		if !ok {
			return types.NewErr("rule: call name must be string")
		}
		var args []any
		if len(values) > 1 {
			lister, ok := values[1].(traits.Lister)
			if !ok {
				return types.NewErr("rule: call arguments must be a list")
			}
			for it := lister.Iterator(); it.HasNext() == types.True; {
				args = append(args, it.Next().Value())
			}
		}
		result, err := e.registry.Call(name, args...)
		if err != nil {
			return types.NewErr("%s", err.Error())
		}
		if result == nil {
			return types.NullValue
		}
		return types.DefaultTypeAdapter.NativeToValue(result)
	}
}

type celRule struct {
	engine     *celEngine
	program    celgo.Program
	expression string
}

func (r *celRule) Evaluate(ctx Context) (any, error) {
	ctx = ctx.withDefaults()
	out, _, err := r.program.Eval(r.engine.activation(ctx))
	if err != nil {
		return nil, wrapEvaluationError("cel", r.expression, err)
	}
	return out.Value(), nil
}
