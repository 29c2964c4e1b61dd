package googleai_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/toolbelt/pkg/llms"
	"github.com/effective-security/toolbelt/pkg/providers/googleai"
	"github.com/effective-security/toolbelt/pkg/schema"
	"github.com/effective-security/toolbelt/tools"
	"github.com/invopop/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"google.golang.org/genai"
)

func TestConvertTools(t *testing.T) {
	t.Parallel()

	forecast, err := tools.Definition{
		Name:        "forecast",
		Description: "Weather forecast",
		Parameters: schema.Parameters{
			schema.String("city", "City name"),
			{Name: "days", Type: schema.TypeInteger, Description: "Number of days"},
		},
	}.Describe()
	require.NoError(t, err)

	list, err := googleai.ConvertTools([]llms.Tool{*forecast})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Len(t, list[0].FunctionDeclarations, 1)

	decl := list[0].FunctionDeclarations[0]
	assert.Equal(t, "forecast", decl.Name)
	assert.Equal(t, "Weather forecast", decl.Description)
	require.NotNil(t, decl.Parameters)
	assert.Equal(t, genai.TypeObject, decl.Parameters.Type)
	assert.Equal(t, []string{"city", "days"}, decl.Parameters.Required)
	assert.Equal(t, []string{"city", "days"}, decl.Parameters.PropertyOrdering)
	assert.Equal(t, genai.TypeString, decl.Parameters.Properties["city"].Type)
	assert.Equal(t, "City name", decl.Parameters.Properties["city"].Description)
	assert.Equal(t, genai.TypeInteger, decl.Parameters.Properties["days"].Type)

	_, err = googleai.ConvertTools([]llms.Tool{{Type: "retrieval"}})
	assert.EqualError(t, err, `tool [0]: unsupported type "retrieval", want 'function'`)

	_, err = googleai.ConvertTools([]llms.Tool{*forecast, {Type: llms.ToolTypeFunction}})
	assert.EqualError(t, err, "tool [1]: missing function definition")
}

func TestConvertParameters(t *testing.T) {
	t.Parallel()

	sc, err := googleai.ConvertParameters(nil)
	require.NoError(t, err)
	assert.Nil(t, sc)

	empty, err := schema.FunctionParameters(nil)
	require.NoError(t, err)
	sc, err = googleai.ConvertParameters(empty)
	require.NoError(t, err)
	assert.Equal(t, genai.TypeObject, sc.Type)
	assert.Empty(t, sc.Properties)

	_, err = googleai.ConvertParameters(&jsonschema.Schema{Type: "string"})
	assert.True(t, errors.Is(err, schema.ErrSchema))
	assert.EqualError(t, err, `parameters: type "string", want object: invalid tool schema`)

	nested := &jsonschema.Schema{
		Type: "object",
		Properties: orderedmap.New[string, *jsonschema.Schema](
			orderedmap.WithInitialData(
				orderedmap.Pair[string, *jsonschema.Schema]{
					Key:   "tags",
					Value: &jsonschema.Schema{Type: "array", Items: &jsonschema.Schema{Type: "string"}},
				},
			),
		),
	}
	_, err = googleai.ConvertParameters(nested)
	assert.True(t, errors.Is(err, schema.ErrSchema))
	assert.EqualError(t, err, `parameter "tags": nested schema is not supported: invalid tool schema`)

	unknown := &jsonschema.Schema{
		Type: "object",
		Properties: orderedmap.New[string, *jsonschema.Schema](
			orderedmap.WithInitialData(
				orderedmap.Pair[string, *jsonschema.Schema]{
					Key:   "when",
					Value: &jsonschema.Schema{Type: "null", Description: "Nothing"},
				},
			),
		),
	}
	_, err = googleai.ConvertParameters(unknown)
	assert.True(t, errors.Is(err, schema.ErrSchema))
	assert.EqualError(t, err, `parameter "when": unsupported type "null": invalid tool schema`)

	_, err = googleai.ConvertTools([]llms.Tool{{
		Type:     llms.ToolTypeFunction,
		Function: &llms.FunctionDefinition{Name: "broken", Description: "Broken", Parameters: unknown},
	}})
	assert.EqualError(t, err, `tool "broken": parameter "when": unsupported type "null": invalid tool schema`)
}

func TestConvertType(t *testing.T) {
	t.Parallel()

	tcases := map[string]genai.Type{
		schema.TypeObject:  genai.TypeObject,
		schema.TypeString:  genai.TypeString,
		schema.TypeNumber:  genai.TypeNumber,
		schema.TypeInteger: genai.TypeInteger,
		schema.TypeBoolean: genai.TypeBoolean,
		schema.TypeArray:   genai.TypeArray,
	}
	for in, exp := range tcases {
		got, err := googleai.ConvertType(in)
		require.NoError(t, err, in)
		assert.Equal(t, exp, got, in)
	}

	got, err := googleai.ConvertType("")
	assert.Equal(t, genai.TypeUnspecified, got)
	assert.True(t, errors.Is(err, schema.ErrSchema))
}
