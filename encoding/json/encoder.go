package json

import (
	"bytes"
	"encoding/json"

	"github.com/bububa/ljson"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/toolbelt/pkg/llmutils"
)

// Encoder encodes values as indented JSON
type Encoder struct {
	indent string
}

func NewEncoder() *Encoder {
	return &Encoder{indent: "\t"}
}

// WithIndent sets the indent, empty indent produces compact JSON
func (e *Encoder) WithIndent(indent string) *Encoder {
	e.indent = indent
	return e
}

func (e *Encoder) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", e.indent)
	if err := enc.Encode(v); err != nil {
		return nil, errors.WithStack(err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func (e *Encoder) Unmarshal(bs []byte, ret any) error {
	data := llmutils.CleanJSON(bs)
	return ljson.Unmarshal(data, ret)
}

// Wrap returns the content in markdown code block
func (e *Encoder) Wrap(bs []byte) string {
	return llmutils.BackticksJSON(string(bs))
}
