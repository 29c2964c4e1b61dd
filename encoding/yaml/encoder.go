package yaml

import (
	"bytes"
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/toolbelt/pkg/llmutils"
	"gopkg.in/yaml.v3"
)

// Encoder encodes values as block style YAML.
// The values are converted through their JSON representation,
// so the `json` tags and the order of the JSON keys are kept.
type Encoder struct {
	indent int
}

func NewEncoder() *Encoder {
	return &Encoder{indent: 2}
}

// WithIndent sets the number of spaces for indentation
func (e *Encoder) WithIndent(indent int) *Encoder {
	e.indent = indent
	return e
}

func (e *Encoder) Marshal(v any) ([]byte, error) {
	node, err := ToNode(v)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(e.indent)
	if err = enc.Encode(node); err != nil {
		return nil, errors.WithStack(err)
	}
	if err = enc.Close(); err != nil {
		return nil, errors.WithStack(err)
	}
	return buf.Bytes(), nil
}

func (e *Encoder) Unmarshal(bs []byte, ret any) error {
	data := llmutils.TrimBackticks(string(bs))
	var node yaml.Node
	if err := yaml.Unmarshal([]byte(data), &node); err != nil {
		return errors.WithStack(err)
	}
	// decode through JSON to honor the `json` tags of ret
	var v any
	if err := node.Decode(&v); err != nil {
		return errors.WithStack(err)
	}
	js, err := json.Marshal(v)
	if err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(json.Unmarshal(js, ret))
}

// Wrap returns the content in markdown code block
func (e *Encoder) Wrap(bs []byte) string {
	return llmutils.BackticksYAML(string(bs))
}

// ToNode returns the block style YAML node for the JSON representation of v
func ToNode(v any) (*yaml.Node, error) {
	js, err := json.Marshal(v)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	// JSON is a subset of YAML, the parsed node keeps the key order
	var doc yaml.Node
	if err = yaml.Unmarshal(js, &doc); err != nil {
		return nil, errors.WithStack(err)
	}
	resetStyle(&doc)
	if doc.Kind == yaml.DocumentNode && len(doc.Content) == 1 {
		return doc.Content[0], nil
	}
	return &doc, nil
}

func resetStyle(n *yaml.Node) {
	switch n.Kind {
	case yaml.MappingNode, yaml.SequenceNode:
		// empty collections stay in flow style: {} and []
		if len(n.Content) > 0 {
			n.Style = 0
		}
	case yaml.ScalarNode:
		if n.Style == yaml.DoubleQuotedStyle {
			n.Style = 0
		}
	}
	for _, c := range n.Content {
		resetStyle(c)
	}
}
