package schema

import (
	"encoding/json"
	"regexp"
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/invopop/jsonschema"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ErrSchema is returned when a tool or parameter declaration can not be
// converted to a function schema.
var ErrSchema = errors.New("invalid tool schema")

// Supported parameter types
const (
	TypeString  = "string"
	TypeNumber  = "number"
	TypeInteger = "integer"
	TypeBoolean = "boolean"
	TypeArray   = "array"
	TypeObject  = "object"
)

var supportedTypes = []string{
	TypeString,
	TypeNumber,
	TypeInteger,
	TypeBoolean,
	TypeArray,
	TypeObject,
}

var nameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

// ParameterSpec declares a single tool parameter.
// Every declared parameter is required.
type ParameterSpec struct {
	Name        string `json:"name" yaml:"name"`
	Type        string `json:"type" yaml:"type"`
	Description string `json:"description" yaml:"description"`
}

// Parameters is the ordered list of parameters of a tool.
type Parameters []ParameterSpec

// String returns a string parameter declaration
func String(name, description string) ParameterSpec {
	return ParameterSpec{Name: name, Type: TypeString, Description: description}
}

// Names returns the parameter names in declaration order
func (p Parameters) Names() []string {
	names := make([]string, 0, len(p))
	for _, s := range p {
		names = append(names, s.Name)
	}
	return names
}

// Validate returns ErrSchema if any of the parameters is incomplete,
// has unsupported type, or is declared more than once.
func (p Parameters) Validate() error {
	seen := make(map[string]struct{}, len(p))
	for i, s := range p {
		if s.Name == "" {
			return errors.Wrapf(ErrSchema, "parameter [%d]: missing name", i)
		}
		if s.Type == "" {
			return errors.Wrapf(ErrSchema, "parameter %q: missing type", s.Name)
		}
		if !slices.Contains(supportedTypes, s.Type) {
			return errors.Wrapf(ErrSchema, "parameter %q: unsupported type %q", s.Name, s.Type)
		}
		if s.Description == "" {
			return errors.Wrapf(ErrSchema, "parameter %q: missing description", s.Name)
		}
		if _, ok := seen[s.Name]; ok {
			return errors.Wrapf(ErrSchema, "parameter %q: declared more than once", s.Name)
		}
		seen[s.Name] = struct{}{}
	}
	return nil
}

// ValidateName returns ErrSchema if the tool name can not be used
// in a function calling request.
func ValidateName(name string) error {
	if !nameRegex.MatchString(name) {
		return errors.Wrapf(ErrSchema, "invalid tool name %q", name)
	}
	return nil
}

// FunctionParameters returns the flat object schema for the parameters:
// each property has only type and description,
// and all of the properties are required, in the declaration order.
func FunctionParameters(params Parameters) (*jsonschema.Schema, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	props := orderedmap.New[string, *jsonschema.Schema]()
	for _, p := range params {
		props.Set(p.Name, &jsonschema.Schema{
			Type:        p.Type,
			Description: p.Description,
		})
	}

	res := &jsonschema.Schema{
		Type:       TypeObject,
		Properties: props,
		Required:   params.Names(),
	}
	if len(params) == 0 {
		// `required` has omitempty in jsonschema.Schema,
		// the empty list must still be present
		res.Extras = map[string]any{"required": []string{}}
	}
	return res, nil
}

// Stringify returns the indented JSON of the schema
func Stringify(s *jsonschema.Schema) string {
	js, _ := json.MarshalIndent(s, "", "\t")
	return string(js)
}
