// Package googleai renders tool descriptors as Gemini function declarations.
package googleai

import (
	"github.com/cockroachdb/errors"
	"github.com/effective-security/toolbelt/pkg/llms"
	"github.com/effective-security/toolbelt/pkg/schema"
	"github.com/invopop/jsonschema"
	"google.golang.org/genai"
)

var types = map[string]genai.Type{
	schema.TypeString:  genai.TypeString,
	schema.TypeNumber:  genai.TypeNumber,
	schema.TypeInteger: genai.TypeInteger,
	schema.TypeBoolean: genai.TypeBoolean,
	schema.TypeArray:   genai.TypeArray,
	schema.TypeObject:  genai.TypeObject,
}

// ConvertTools converts tool descriptors to a list of genai tools,
// one function declaration per tool.
func ConvertTools(list []llms.Tool) ([]*genai.Tool, error) {
	res := make([]*genai.Tool, 0, len(list))
	for i, tool := range list {
		if tool.Type != llms.ToolTypeFunction {
			return nil, errors.Errorf("tool [%d]: unsupported type %q, want 'function'", i, tool.Type)
		}
		fn := tool.Function
		if fn == nil {
			return nil, errors.Errorf("tool [%d]: missing function definition", i)
		}

		params, err := ConvertParameters(fn.Parameters)
		if err != nil {
			return nil, errors.WithMessagef(err, "tool %q", fn.Name)
		}

		res = append(res, &genai.Tool{
			FunctionDeclarations: []*genai.FunctionDeclaration{{
				Name:        fn.Name,
				Description: fn.Description,
				Parameters:  params,
			}},
		})
	}
	return res, nil
}

// ConvertParameters converts the flat object schema built by
// schema.FunctionParameters. Nested schemas are rejected with schema.ErrSchema.
func ConvertParameters(params *jsonschema.Schema) (*genai.Schema, error) {
	if params == nil {
		return nil, nil
	}
	if params.Type != schema.TypeObject {
		return nil, errors.Wrapf(schema.ErrSchema, "parameters: type %q, want object", params.Type)
	}

	res := &genai.Schema{
		Type:     genai.TypeObject,
		Required: params.Required,
	}
	if params.Properties == nil {
		return res, nil
	}

	res.Properties = make(map[string]*genai.Schema, params.Properties.Len())
	for pair := params.Properties.Oldest(); pair != nil; pair = pair.Next() {
		prop := pair.Value
		if prop == nil {
			return nil, errors.Wrapf(schema.ErrSchema, "parameter %q: missing schema", pair.Key)
		}
		if isNested(prop) {
			return nil, errors.Wrapf(schema.ErrSchema, "parameter %q: nested schema is not supported", pair.Key)
		}
		typ, err := ConvertType(prop.Type)
		if err != nil {
			return nil, errors.WithMessagef(err, "parameter %q", pair.Key)
		}
		res.Properties[pair.Key] = &genai.Schema{
			Type:        typ,
			Description: prop.Description,
		}
		res.PropertyOrdering = append(res.PropertyOrdering, pair.Key)
	}
	return res, nil
}

// ConvertType returns the genai type for the parameter type
func ConvertType(typ string) (genai.Type, error) {
	if t, ok := types[typ]; ok {
		return t, nil
	}
	return genai.TypeUnspecified, errors.Wrapf(schema.ErrSchema, "unsupported type %q", typ)
}

func isNested(s *jsonschema.Schema) bool {
	return (s.Properties != nil && s.Properties.Len() > 0) ||
		s.Items != nil ||
		s.Ref != "" ||
		len(s.AnyOf) > 0 ||
		len(s.OneOf) > 0 ||
		len(s.AllOf) > 0
}
