package tools

import (
	"github.com/cockroachdb/errors"
	"github.com/effective-security/toolbelt/pkg/llms"
	"github.com/effective-security/toolbelt/pkg/schema"
)

// Definition is the static declaration of a tool.
type Definition struct {
	Name        string            `json:"name" yaml:"name"`
	Description string            `json:"description" yaml:"description"`
	Parameters  schema.Parameters `json:"parameters" yaml:"parameters"`
}

// Describe returns the function-calling descriptor of the definition.
func (d Definition) Describe() (*llms.Tool, error) {
	if err := schema.ValidateName(d.Name); err != nil {
		return nil, err
	}
	if d.Description == "" {
		return nil, errors.Wrapf(schema.ErrSchema, "tool %q: missing description", d.Name)
	}

	params, err := schema.FunctionParameters(d.Parameters)
	if err != nil {
		return nil, errors.WithMessagef(err, "tool %q", d.Name)
	}

	return &llms.Tool{
		Type: llms.ToolTypeFunction,
		Function: &llms.FunctionDefinition{
			Name:        d.Name,
			Description: d.Description,
			Parameters:  params,
		},
	}, nil
}

// DefinitionOf returns the static declaration of the tool
func DefinitionOf(t ITool) Definition {
	return Definition{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters:  t.Parameters(),
	}
}

// Describe returns the function-calling descriptor of the tool:
//
//	{"type":"function","function":{"name":...,"description":...,
//	 "parameters":{"type":"object","properties":{...},"required":[...]}}}
//
// The output is deterministic for the same tool.
// It fails with schema.ErrSchema if the declaration is incomplete.
func Describe(t ITool) (*llms.Tool, error) {
	return DefinitionOf(t).Describe()
}
