package toolbox

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/toolbelt/pkg/llms"
	"github.com/effective-security/toolbelt/pkg/llmutils"
	"github.com/effective-security/toolbelt/pkg/metricskey"
	"github.com/effective-security/toolbelt/pkg/schema"
	"github.com/effective-security/toolbelt/tools"
	"github.com/effective-security/x/values"
	"github.com/effective-security/xlog"
	"github.com/google/uuid"
	"github.com/xeipuuv/gojsonschema"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/toolbelt", "toolbox")

// ErrDuplicateTool is returned when tools with the same name are registered
var ErrDuplicateTool = errors.New("duplicate tool name")

type entry struct {
	tool       tools.ITool
	descriptor llms.Tool
	schema     *gojsonschema.Schema
}

// Registry holds the tools available to the model,
// and dispatches the tool calls emitted by the model.
// Registry is immutable and safe for concurrent use.
type Registry struct {
	entries     []*entry
	byName      map[string]*entry
	names       []string
	fingerprint string
	callback    tools.Callback
}

// New returns the registry for the tools.
// The descriptors are built once, New fails with schema.ErrSchema
// if any of the tools can not be described.
func New(list ...tools.ITool) (*Registry, error) {
	r := &Registry{
		byName: make(map[string]*entry, len(list)),
	}

	for _, tool := range list {
		if tool == nil {
			return nil, errors.New("tool is nil")
		}

		d, err := tools.Describe(tool)
		if err != nil {
			return nil, err
		}

		// use lowercase for the key
		key := strings.ToLower(d.Function.Name)
		if _, ok := r.byName[key]; ok {
			return nil, errors.Wrapf(ErrDuplicateTool, "tool %q", d.Function.Name)
		}

		js, err := json.Marshal(d.Function.Parameters)
		if err != nil {
			return nil, errors.Wrapf(err, "tool %q: failed to marshal parameters", d.Function.Name)
		}
		sc, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(js))
		if err != nil {
			return nil, errors.Wrapf(err, "tool %q: failed to load parameters schema", d.Function.Name)
		}

		e := &entry{
			tool:       tool,
			descriptor: *d,
			schema:     sc,
		}
		r.entries = append(r.entries, e)
		r.byName[key] = e
		r.names = append(r.names, d.Function.Name)

		logger.KV(xlog.DEBUG,
			"tool", d.Function.Name,
			"parameters", schema.Stringify(d.Function.Parameters),
		)
	}

	r.fingerprint = fmt.Sprintf("%016x", xxhash.Sum64String(llmutils.ToJSON(r.Descriptors())))
	return r, nil
}

// WithCallback returns a copy of the registry
// that reports tool execution events to cb.
func (r *Registry) WithCallback(cb tools.Callback) *Registry {
	c := *r
	c.callback = cb
	return &c
}

// Descriptors returns the function-calling descriptors in the registration order
func (r *Registry) Descriptors() []llms.Tool {
	list := make([]llms.Tool, 0, len(r.entries))
	for _, e := range r.entries {
		list = append(list, e.descriptor)
	}
	return list
}

// Names returns the tool names in the registration order
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// Get returns the tool by name, the name is case insensitive
func (r *Registry) Get(name string) (tools.ITool, bool) {
	e, ok := r.byName[strings.ToLower(name)]
	if !ok {
		return nil, false
	}
	return e.tool, true
}

// Fingerprint returns the hash of the advertised descriptors,
// it changes only when a descriptor changes.
func (r *Registry) Fingerprint() string {
	return r.fingerprint
}

// Validate returns tools.ErrInvalidArguments if the arguments
// do not match the advertised parameters of the tool.
func (r *Registry) Validate(name, args string) error {
	e, ok := r.byName[strings.ToLower(name)]
	if !ok {
		return errors.Wrapf(tools.ErrNotFound, "tool %q", name)
	}
	return e.validate(args)
}

func (e *entry) validate(args string) error {
	data := llmutils.CleanJSON([]byte(normalizeArgs(args)))
	if !json.Valid(data) {
		return errors.WithStack(tools.ErrFailedUnmarshalInput)
	}

	res, err := e.schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return errors.Wrap(tools.ErrInvalidArguments, err.Error())
	}
	if !res.Valid() {
		var msgs []string
		for _, desc := range res.Errors() {
			msgs = append(msgs, desc.String())
		}
		return errors.Wrap(tools.ErrInvalidArguments, strings.Join(msgs, "; "))
	}
	return nil
}

// Invoke validates and runs the tool call.
// It never fails: the errors are converted to the content
// of the response, to be returned to the model.
func (r *Registry) Invoke(ctx context.Context, tc llms.ToolCall) llms.ToolCallResponse {
	var name, args string
	if tc.FunctionCall != nil {
		name = tc.FunctionCall.Name
		args = normalizeArgs(tc.FunctionCall.Arguments)
	}

	resp := llms.ToolCallResponse{
		ToolCallID: values.StringsCoalesce(tc.ID, "call_"+uuid.NewString()),
		Name:       name,
	}

	e, ok := r.byName[strings.ToLower(name)]
	if !ok {
		metricskey.StatsToolCallsNotFound.IncrCounter(1, name)
		if r.callback != nil {
			r.callback.OnToolNotFound(ctx, name)
		}

		availableTools := strings.Join(r.names, ", ")
		logger.ContextKV(ctx, xlog.WARNING,
			"status", "tool_not_found",
			"tool_call_id", resp.ToolCallID,
			"tool_name", name,
			"available_tools", availableTools,
		)
		resp.Content = fmt.Sprintf("Tool `%s` not found. Please check the tool name and try again with exact match. Available tools: %s", name, availableTools)
		return resp
	}

	toolName := e.descriptor.Function.Name
	resp.Name = toolName

	if err := e.validate(args); err != nil {
		metricskey.StatsToolCallsInvalidArguments.IncrCounter(1, toolName)
		if r.callback != nil {
			r.callback.OnToolError(ctx, e.tool, args, err)
		}
		logger.ContextKV(ctx, xlog.DEBUG,
			"status", "tool_call_invalid_arguments",
			"tool_call_id", resp.ToolCallID,
			"tool_name", toolName,
			"err", err.Error(),
		)
		resp.Content = fmt.Sprintf("Invalid arguments for tool `%s`: %s. Check the JSON schema and try again.", toolName, err.Error())
		return resp
	}

	if r.callback != nil {
		r.callback.OnToolStart(ctx, e.tool, args)
	}

	started := time.Now()
	res, err := e.tool.Call(ctx, args)
	metricskey.PerfToolCall.MeasureSince(started, toolName)

	if err != nil {
		metricskey.StatsToolCallsFailed.IncrCounter(1, toolName)
		if r.callback != nil {
			r.callback.OnToolError(ctx, e.tool, args, err)
		}
		logger.ContextKV(ctx, xlog.WARNING,
			"status", "tool_call_failed",
			"tool_call_id", resp.ToolCallID,
			"tool_name", toolName,
			"err", err.Error(),
		)
		resp.Content = ErrorText(err)
		return resp
	}

	metricskey.StatsToolCallsSucceeded.IncrCounter(1, toolName)
	metricskey.StatsToolBytesReturned.IncrCounter(float64(len(res)), toolName)
	if r.callback != nil {
		r.callback.OnToolEnd(ctx, e.tool, args, res)
	}

	logger.ContextKV(ctx, xlog.DEBUG,
		"status", "tool_call_response",
		"tool_call_id", resp.ToolCallID,
		"tool_name", toolName,
		"content_length", len(res),
	)
	resp.Content = res
	return resp
}

// InvokeAll runs the tool calls concurrently,
// the responses are returned in the order of the calls.
func (r *Registry) InvokeAll(ctx context.Context, calls []llms.ToolCall) []llms.ToolCallResponse {
	results := make([]llms.ToolCallResponse, len(calls))

	var wg sync.WaitGroup
	wg.Add(len(calls))
	for i, tc := range calls {
		go func(index int, tc llms.ToolCall) {
			defer wg.Done()
			results[index] = r.Invoke(ctx, tc)
		}(i, tc)
	}
	wg.Wait()

	return results
}

// ErrorText returns the text of the tool error to be returned to the model:
// "Error: {code}" for unexpected HTTP status, otherwise "Tool call failed: {err}".
func ErrorText(err error) string {
	if code := tools.StatusCode(err); code != 0 {
		return fmt.Sprintf("Error: %d", code)
	}
	return fmt.Sprintf("Tool call failed: %s", err.Error())
}

// normalizeArgs returns empty object for empty arguments
func normalizeArgs(args string) string {
	return values.StringsCoalesce(strings.TrimSpace(args), "{}")
}
