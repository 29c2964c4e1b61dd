package schema_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/toolbelt/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFunctionParameters(t *testing.T) {
	t.Parallel()

	t.Run("Single", func(t *testing.T) {
		t.Parallel()
		s, err := schema.FunctionParameters(schema.Parameters{
			schema.String("query", "Input search query"),
		})
		require.NoError(t, err)
		exp := `{
	"properties": {
		"query": {
			"type": "string",
			"description": "Input search query"
		}
	},
	"type": "object",
	"required": [
		"query"
	]
}`
		assert.Equal(t, exp, schema.Stringify(s))
	})

	t.Run("Ordered", func(t *testing.T) {
		t.Parallel()
		params := schema.Parameters{
			{Name: "zeta", Type: schema.TypeString, Description: "last letter"},
			{Name: "alpha", Type: schema.TypeNumber, Description: "first letter"},
			{Name: "mid", Type: schema.TypeBoolean, Description: "middle"},
		}
		s, err := schema.FunctionParameters(params)
		require.NoError(t, err)

		var keys []string
		for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
			keys = append(keys, pair.Key)
			assert.NotEmpty(t, pair.Value.Type)
			assert.NotEmpty(t, pair.Value.Description)
		}
		assert.Equal(t, []string{"zeta", "alpha", "mid"}, keys)
		assert.Equal(t, keys, s.Required)
	})

	t.Run("Empty", func(t *testing.T) {
		t.Parallel()
		s, err := schema.FunctionParameters(nil)
		require.NoError(t, err)
		exp := `{
	"properties": {},
	"type": "object",
	"required": []
}`
		assert.Equal(t, exp, schema.Stringify(s))
	})
}

func TestParameters_Validate(t *testing.T) {
	t.Parallel()

	tcases := []struct {
		name   string
		params schema.Parameters
		expErr string
	}{
		{
			name:   "no_name",
			params: schema.Parameters{{Type: schema.TypeString, Description: "d"}},
			expErr: "parameter [0]: missing name: invalid tool schema",
		},
		{
			name:   "no_type",
			params: schema.Parameters{{Name: "city", Description: "City name"}},
			expErr: `parameter "city": missing type: invalid tool schema`,
		},
		{
			name:   "no_description",
			params: schema.Parameters{{Name: "city", Type: schema.TypeString}},
			expErr: `parameter "city": missing description: invalid tool schema`,
		},
		{
			name:   "bad_type",
			params: schema.Parameters{{Name: "city", Type: "text", Description: "City name"}},
			expErr: `parameter "city": unsupported type "text": invalid tool schema`,
		},
		{
			name: "duplicate",
			params: schema.Parameters{
				schema.String("city", "City name"),
				schema.String("city", "Another"),
			},
			expErr: `parameter "city": declared more than once: invalid tool schema`,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.params.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, schema.ErrSchema))
			assert.EqualError(t, err, tc.expErr)

			_, err = schema.FunctionParameters(tc.params)
			assert.True(t, errors.Is(err, schema.ErrSchema))
		})
	}
}

func TestValidateName(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"weather", "create_image", "web-search", "A1"} {
		assert.NoError(t, schema.ValidateName(name), name)
	}
	for _, name := range []string{"", "has space", "dot.name", string(make([]byte, 65))} {
		err := schema.ValidateName(name)
		assert.True(t, errors.Is(err, schema.ErrSchema), name)
	}
}
