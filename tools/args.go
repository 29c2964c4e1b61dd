package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sync"

	"github.com/bububa/ljson"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/toolbelt/pkg/llmutils"
	"github.com/effective-security/xlog"
	"github.com/go-playground/validator/v10"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/toolbelt", "tools")

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// DecodeArgs decodes the JSON arguments produced by LLM into ret,
// and validates `validate` tags if ret is a struct.
// The input is cleaned from the text around the JSON object.
func DecodeArgs(input string, ret any) error {
	data := llmutils.CleanJSON([]byte(input))
	if len(data) == 0 || (data[0] != '{' && data[0] != '[') {
		return errors.WithStack(ErrFailedUnmarshalInput)
	}
	if err := ljson.Unmarshal(data, ret); err != nil {
		logger.KV(xlog.DEBUG, "reason", "unmarshal", "err", err.Error())
		return errors.WithStack(ErrFailedUnmarshalInput)
	}

	v := reflect.ValueOf(ret)
	for v.Kind() == reflect.Pointer && !v.IsNil() {
		v = v.Elem()
	}
	if v.Kind() == reflect.Struct {
		if err := structValidator().Struct(ret); err != nil {
			return errors.Wrap(ErrInvalidArguments, err.Error())
		}
	}
	return nil
}

// Call decodes the input for the typed tool, runs it and returns the output as string.
func Call[I any, O any](ctx context.Context, t Tool[I, O], input string) (string, error) {
	var req I
	if err := DecodeArgs(input, &req); err != nil {
		return "", err
	}
	out, err := t.Run(ctx, &req)
	if err != nil {
		return "", err
	}
	return Stringify(out), nil
}

// Stringify returns the text representation of the tool output
func Stringify(s any) string {
	switch v := s.(type) {
	case fmt.Stringer:
		return v.String()
	case string:
		return v
	}
	bs, _ := json.Marshal(s)
	return string(bs)
}
