package weather

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/toolbelt/pkg/schema"
	"github.com/effective-security/toolbelt/tools"
	"github.com/effective-security/x/values"
	"github.com/effective-security/xlog"
	"github.com/tidwall/gjson"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/toolbelt/tools", "weather")

// ToolName is the name of the weather tool
const ToolName = "weather"

// DefaultBaseURL is the Visual Crossing timeline endpoint
const DefaultBaseURL = "https://weather.visualcrossing.com/VisualCrossingWebServices/rest/services/timeline"

// Request represents the tool input
type Request struct {
	City string `json:"city" yaml:"city" validate:"required"`
}

// Result represents the tool output
type Result struct {
	City        string  `json:"city" yaml:"city"`
	Temperature float64 `json:"temp" yaml:"temp"`

	// RawTemperature is the number as received from the service: 21.0
	RawTemperature string `json:"-" yaml:"-"`
}

func (r *Result) String() string {
	temp := r.RawTemperature
	if temp == "" {
		temp = strconv.FormatFloat(r.Temperature, 'f', -1, 64)
	}
	return fmt.Sprintf("Current temperature in %s: %s°C", r.City, temp)
}

// Config provides the weather service configuration
type Config struct {
	APIKey  string
	BaseURL string
}

// Tool returns the current temperature in a city
type Tool struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

var _ tools.Tool[Request, Result] = (*Tool)(nil)

// New returns the weather tool
func New(cfg Config, httpClient *http.Client) (*Tool, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("weather API key is required")
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Tool{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimSuffix(values.StringsCoalesce(cfg.BaseURL, DefaultBaseURL), "/"),
		httpClient: httpClient,
	}, nil
}

func (t *Tool) Name() string {
	return ToolName
}

func (t *Tool) Description() string {
	return "Allows to extract the current temperature in a specific city."
}

func (t *Tool) Parameters() schema.Parameters {
	return schema.Parameters{
		schema.String("city", "City name"),
	}
}

// Run returns the temperature of the first day in the time series.
// It returns tools.StatusError if the service responds with non-success status,
// and tools.ErrDecode if the response has no temperature.
func (t *Tool) Run(ctx context.Context, req *Request) (*Result, error) {
	// the city is passed as is, the service resolves the location
	city := req.City
	if strings.TrimSpace(city) == "" {
		return nil, errors.Wrap(tools.ErrInvalidArguments, "empty city")
	}

	q := url.Values{}
	q.Set("key", t.apiKey)
	q.Set("unitGroup", "metric")
	u := t.baseURL + "/" + url.PathEscape(city) + "?" + q.Encode()

	hreq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	hreq.Header.Set("Accept", "application/json")

	resp, err := t.httpClient.Do(hreq)
	if err != nil {
		return nil, tools.NetworkError(err, "failed to call weather service")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.ContextKV(ctx, xlog.DEBUG,
			"city", city,
			"status", resp.StatusCode,
		)
		return nil, tools.NewStatusError(resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, tools.NetworkError(err, "failed to read weather response")
	}

	temp := gjson.GetBytes(body, "days.0.temp")
	if temp.Type != gjson.Number {
		return nil, tools.DecodeError(errors.Newf("days[0].temp is %s", temp.Type), "unexpected weather response")
	}

	return &Result{
		City:           city,
		Temperature:    temp.Float(),
		RawTemperature: temp.Raw,
	}, nil
}

func (t *Tool) Call(ctx context.Context, input string) (string, error) {
	return tools.Call[Request, Result](ctx, t, input)
}
