package weather_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/toolbelt/pkg/llms"
	"github.com/effective-security/toolbelt/toolbox"
	"github.com/effective-security/toolbelt/tools"
	"github.com/effective-security/toolbelt/tools/weather"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "testkey", r.URL.Query().Get("key"))
		assert.Equal(t, "metric", r.URL.Query().Get("unitGroup"))

		city := strings.TrimPrefix(r.URL.Path, "/timeline/")
		switch city {
		case "Berlin":
			_, _ = fmt.Fprint(w, `{"resolvedAddress":"Berlin, Deutschland","days":[{"datetime":"2024-05-01","temp":21.5},{"temp":18}]}`)
		case "New York":
			_, _ = fmt.Fprint(w, `{"days":[{"temp":-3}]}`)
		case "Paris":
			_, _ = fmt.Fprint(w, `{"days":[{"temp":21.0}]}`)
		case "Sun":
			_, _ = fmt.Fprint(w, `{"days":[{"temp":1e21}]}`)
		case "Nowhere":
			_, _ = fmt.Fprint(w, `{"days":[]}`)
		case "Text":
			_, _ = fmt.Fprint(w, `{"days":[{"temp":"warm"}]}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestTool(t *testing.T) {
	ctx := context.Background()
	server := newServer(t)
	defer server.Close()

	tool, err := weather.New(weather.Config{
		APIKey:  "testkey",
		BaseURL: server.URL + "/timeline/",
	}, server.Client())
	require.NoError(t, err)

	assert.Equal(t, "weather", tool.Name())
	assert.Equal(t, "Allows to extract the current temperature in a specific city.", tool.Description())
	assert.Equal(t, []string{"city"}, tool.Parameters().Names())

	out, err := tool.Call(ctx, `{"city":"Berlin"}`)
	require.NoError(t, err)
	assert.Equal(t, "Current temperature in Berlin: 21.5°C", out)

	out, err = tool.Call(ctx, `{"city":"New York"}`)
	require.NoError(t, err)
	assert.Equal(t, "Current temperature in New York: -3°C", out)

	// the number is reported as the service sent it
	out, err = tool.Call(ctx, `{"city":"Paris"}`)
	require.NoError(t, err)
	assert.Equal(t, "Current temperature in Paris: 21.0°C", out)

	out, err = tool.Call(ctx, `{"city":"Sun"}`)
	require.NoError(t, err)
	assert.Equal(t, "Current temperature in Sun: 1e21°C", out)

	res, err := tool.Run(ctx, &weather.Request{City: "Berlin"})
	require.NoError(t, err)
	assert.Equal(t, 21.5, res.Temperature)
	assert.Equal(t, "21.5", res.RawTemperature)

	assert.Equal(t, "Current temperature in Oslo: 4.25°C", (&weather.Result{City: "Oslo", Temperature: 4.25}).String())

	_, err = tool.Call(ctx, `{"city":"Atlantis"}`)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, tools.StatusCode(err))

	_, err = tool.Call(ctx, `{"city":"Nowhere"}`)
	assert.True(t, errors.Is(err, tools.ErrDecode))
	assert.EqualError(t, err, "unexpected weather response: days[0].temp is Null")

	_, err = tool.Call(ctx, `{"city":"Text"}`)
	assert.True(t, errors.Is(err, tools.ErrDecode))

	_, err = tool.Call(ctx, `{"city":""}`)
	assert.True(t, errors.Is(err, tools.ErrInvalidArguments))

	_, err = tool.Run(ctx, &weather.Request{City: " "})
	assert.True(t, errors.Is(err, tools.ErrInvalidArguments))
}

func TestTool_Toolbox(t *testing.T) {
	ctx := context.Background()
	server := newServer(t)
	defer server.Close()

	tool, err := weather.New(weather.Config{APIKey: "testkey", BaseURL: server.URL + "/timeline"}, server.Client())
	require.NoError(t, err)

	box, err := toolbox.New(tool)
	require.NoError(t, err)

	resp := box.Invoke(ctx, llms.ToolCall{
		ID:           "call_1",
		Type:         llms.ToolTypeFunction,
		FunctionCall: &llms.FunctionCall{Name: "weather", Arguments: `{"city":"Berlin"}`},
	})
	assert.Equal(t, "call_1", resp.ToolCallID)
	assert.Equal(t, "Current temperature in Berlin: 21.5°C", resp.Content)

	resp = box.Invoke(ctx, llms.ToolCall{
		ID:           "call_2",
		Type:         llms.ToolTypeFunction,
		FunctionCall: &llms.FunctionCall{Name: "weather", Arguments: `{"city":"Atlantis"}`},
	})
	assert.Equal(t, "Error: 404", resp.Content)
}

func TestNew(t *testing.T) {
	_, err := weather.New(weather.Config{}, nil)
	assert.EqualError(t, err, "weather API key is required")

	tool, err := weather.New(weather.Config{APIKey: "k"}, nil)
	require.NoError(t, err)
	assert.NotNil(t, tool)
}

func TestTool_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	base := server.URL
	server.Close()

	tool, err := weather.New(weather.Config{APIKey: "testkey", BaseURL: base}, nil)
	require.NoError(t, err)

	_, err = tool.Run(context.Background(), &weather.Request{City: "Berlin"})
	assert.True(t, errors.Is(err, tools.ErrNetwork))
}
