package rule

import (
	"errors"
	"testing"
	"time"
)

func TestCELEvaluatorPageRule(t *testing.T) {
	evaluator := NewCELEvaluator()

	result, err := evaluator.Evaluate(Context{Page: "billing"}, `page == "billing"`)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if result != true {
		t.Fatalf("expected true, got %v", result)
	}
}

func TestCELEvaluatorBindings(t *testing.T) {
	pinned := time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC)
	ctx := Context{
		Page:             "reports",
		UserID:           "user-1",
		EffectiveSeconds: 45,
		Now:              &pinned,
		Metadata:         map[string]any{"plan": "free"},
	}

	evaluator := NewCELEvaluator()
	for _, expression := range []string{
		`user == "user-1"`,
		"effective < 60",
		"now.getHours() >= 12",
		`metadata.plan == "free"`,
	} {
		suppress, err := EvaluateBool(evaluator, ctx, expression)
		if err != nil {
			t.Fatalf("evaluate %q: %v", expression, err)
		}
		if !suppress {
			t.Fatalf("expected %q to fire", expression)
		}
	}
}

func TestCELEvaluatorCompileError(t *testing.T) {
	evaluator := NewCELEvaluator()
	_, err := evaluator.Evaluate(Context{}, "page ==")

	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) {
		t.Fatalf("expected EvaluationError, got %v", err)
	}
	if evalErr.Engine != "cel" {
		t.Fatalf("expected engine cel, got %q", evalErr.Engine)
	}
}

func TestCELEvaluatorProgramCache(t *testing.T) {
	cache := NewMemoryCache()
	evaluator := NewCELEvaluator(CELWithProgramCache(cache))

	if _, err := evaluator.Evaluate(Context{Page: "a"}, `page == "a"`); err != nil {
		t.Fatalf("first evaluate: %v", err)
	}
	if _, ok := cache.Get(`page == "a"`); !ok {
		t.Fatalf("expected compiled program in cache")
	}
	result, err := evaluator.Evaluate(Context{Page: "b"}, `page == "a"`)
	if err != nil {
		t.Fatalf("cached evaluate: %v", err)
	}
	if result != false {
		t.Fatalf("cached program rebound stale context: %v", result)
	}
}

func TestCELEvaluatorRegistryCall(t *testing.T) {
	registry := NewFunctionRegistry()
	if err := registry.Register("maintenance", func(args ...any) (any, error) {
		return true, nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := registry.Register("quota", func(args ...any) (any, error) {
		if len(args) != 1 {
			return nil, errors.New("quota expects one argument")
		}
		return args[0], nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	evaluator := NewCELEvaluator(CELWithFunctionRegistry(registry))

	suppress, err := EvaluateBool(evaluator, Context{}, `call("maintenance") == true`)
	if err != nil {
		t.Fatalf("evaluate call: %v", err)
	}
	if !suppress {
		t.Fatalf("expected call dispatch to reach registry")
	}

	suppress, err = EvaluateBool(evaluator, Context{}, `call("quota", [true]) == true`)
	if err != nil {
		t.Fatalf("evaluate call with args: %v", err)
	}
	if !suppress {
		t.Fatalf("expected argument passthrough")
	}
}

func TestCELEvaluatorCompileReuse(t *testing.T) {
	evaluator := NewCELEvaluator()
	compiled, err := evaluator.Compile("effective >= 60")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	result, err := compiled.Evaluate(Context{EffectiveSeconds: 90})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if result != true {
		t.Fatalf("expected true, got %v", result)
	}
}
