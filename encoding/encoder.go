package encoding

import (
	"strings"

	"github.com/cockroachdb/errors"
	jsonenc "github.com/effective-security/toolbelt/encoding/json"
	yamlenc "github.com/effective-security/toolbelt/encoding/yaml"
	"github.com/effective-security/toolbelt/pkg/llms"
)

// Encoder converts the descriptors to the text format
type Encoder interface {
	Marshal(v any) ([]byte, error)
	Unmarshal([]byte, any) error
	// Wrap returns the content in markdown code block, to be included in the prompt
	Wrap([]byte) string
}

type Mode = string

const (
	ModeJSON Mode = "json"
	ModeYAML Mode = "yaml"
)

var (
	_ Encoder = (*jsonenc.Encoder)(nil)
	_ Encoder = (*yamlenc.Encoder)(nil)
)

// PredefinedEncoder returns the encoder for the mode
func PredefinedEncoder(mode Mode) (Encoder, error) {
	switch strings.ToLower(mode) {
	case ModeJSON:
		return jsonenc.NewEncoder(), nil
	case ModeYAML:
		return yamlenc.NewEncoder(), nil
	default:
		return nil, errors.Errorf("unsupported encoding mode: %q", mode)
	}
}

// MarshalDescriptors returns the descriptors in the mode format,
// the declaration order of the parameters is kept.
func MarshalDescriptors(mode Mode, list []llms.Tool) ([]byte, error) {
	enc, err := PredefinedEncoder(mode)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []llms.Tool{}
	}
	return enc.Marshal(list)
}

// UnmarshalDescriptors parses the descriptors in the mode format
func UnmarshalDescriptors(mode Mode, data []byte) ([]llms.Tool, error) {
	enc, err := PredefinedEncoder(mode)
	if err != nil {
		return nil, err
	}
	var list []llms.Tool
	if err = enc.Unmarshal(data, &list); err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s descriptors", mode)
	}
	return list, nil
}

// FormatDescriptors returns the descriptors in markdown code block,
// to be included in a system prompt of models without native tool calling.
func FormatDescriptors(mode Mode, list []llms.Tool) (string, error) {
	enc, err := PredefinedEncoder(mode)
	if err != nil {
		return "", err
	}
	bs, err := enc.Marshal(list)
	if err != nil {
		return "", err
	}
	return enc.Wrap(bs), nil
}
