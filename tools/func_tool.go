package tools

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/toolbelt/pkg/schema"
)

// Args is the decoded argument bundle of a tool call
type Args map[string]any

// String returns the string value of the argument
func (a Args) String(name string) string {
	switch v := a[name].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// Float returns the numeric value of the argument
func (a Args) Float(name string) (float64, bool) {
	v, ok := a[name].(float64)
	return v, ok
}

// Bool returns the boolean value of the argument
func (a Args) Bool(name string) (bool, bool) {
	v, ok := a[name].(bool)
	return v, ok
}

// Func is the invocation function of FuncTool
type Func func(ctx context.Context, args Args) (string, error)

// FuncTool pairs a static Definition with an invocation function
type FuncTool struct {
	def Definition
	fn  Func
}

var _ ITool = (*FuncTool)(nil)

// NewFuncTool returns a tool for the definition.
// It fails with schema.ErrSchema if the definition can not be described.
func NewFuncTool(def Definition, fn Func) (*FuncTool, error) {
	if fn == nil {
		return nil, errors.Errorf("tool %q: missing function", def.Name)
	}
	if _, err := def.Describe(); err != nil {
		return nil, err
	}
	return &FuncTool{def: def, fn: fn}, nil
}

// Name returns the name of the tool
func (t *FuncTool) Name() string {
	return t.def.Name
}

// Description returns the description of the tool
func (t *FuncTool) Description() string {
	return t.def.Description
}

// Parameters returns the declared parameters
func (t *FuncTool) Parameters() schema.Parameters {
	return t.def.Parameters
}

// Call decodes the input and invokes the function.
// Every declared parameter must be present in the input.
func (t *FuncTool) Call(ctx context.Context, input string) (string, error) {
	args := Args{}
	if err := DecodeArgs(input, &args); err != nil {
		return "", err
	}
	for _, p := range t.def.Parameters {
		if _, ok := args[p.Name]; !ok {
			return "", errors.Wrapf(ErrInvalidArguments, "missing required parameter %q", p.Name)
		}
	}
	return t.fn(ctx, args)
}
