package config

import (
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/toolbelt/toolbox"
	"github.com/effective-security/toolbelt/tools"
	"github.com/effective-security/toolbelt/tools/imagegen"
	"github.com/effective-security/toolbelt/tools/lookup"
	"github.com/effective-security/toolbelt/tools/weather"
	"github.com/effective-security/x/configloader"
	"github.com/effective-security/x/values"
	"github.com/go-playground/validator/v10"
)

// Lookup providers
const (
	ProviderWikipedia = "wikipedia"
	ProviderTavily    = "tavily"
)

// DefaultTimeout is the default timeout of outbound requests
const DefaultTimeout = 60 * time.Second

// Config provides the credentials and endpoints of the tools.
// Config is read-only after it's loaded.
type Config struct {
	// Timeout specifies the timeout of outbound requests, as duration string: 30s
	Timeout string `json:"timeout,omitempty" yaml:"timeout,omitempty"`

	Lookup   LookupConfig   `json:"lookup" yaml:"lookup"`
	Weather  WeatherConfig  `json:"weather" yaml:"weather"`
	ImageGen ImageGenConfig `json:"image_gen" yaml:"image_gen"`
}

// LookupConfig specifies the reference lookup service
type LookupConfig struct {
	// Provider specifies the backend: wikipedia|tavily
	Provider string `json:"provider,omitempty" yaml:"provider,omitempty" validate:"omitempty,oneof=wikipedia tavily"`
	// Name overrides the tool name
	Name    string `json:"name,omitempty" yaml:"name,omitempty"`
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" validate:"omitempty,url"`
	APIKey  string `json:"api_key,omitempty" yaml:"api_key,omitempty" validate:"required_if=Provider tavily"`
	// Language specifies Wikipedia language edition
	Language string `json:"language,omitempty" yaml:"language,omitempty"`
	// MaxChars limits the size of the returned summary
	MaxChars int `json:"max_chars,omitempty" yaml:"max_chars,omitempty" validate:"gte=0"`
}

// WeatherConfig specifies the weather service
type WeatherConfig struct {
	APIKey  string `json:"api_key" yaml:"api_key" validate:"required"`
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" validate:"omitempty,url"`
}

// ImageGenConfig specifies the image generation service
type ImageGenConfig struct {
	Token     string `json:"token" yaml:"token" validate:"required"`
	Endpoint  string `json:"endpoint,omitempty" yaml:"endpoint,omitempty" validate:"omitempty,url"`
	OutputDir string `json:"output_dir,omitempty" yaml:"output_dir,omitempty"`
	Width     int    `json:"width,omitempty" yaml:"width,omitempty" validate:"gte=0"`
	Height    int    `json:"height,omitempty" yaml:"height,omitempty" validate:"gte=0"`
}

// Load returns the configuration from file,
// the environment variables like ${WEATHER_KEY} are expanded.
func Load(file string) (*Config, error) {
	cfg := new(Config)
	err := configloader.UnmarshalAndExpand(file, cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load config %s", file)
	}
	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate returns error if the configuration is not valid
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(err, "invalid config")
	}
	if c.Timeout != "" {
		if _, err := time.ParseDuration(c.Timeout); err != nil {
			return errors.Wrapf(err, "invalid config: timeout")
		}
	}
	return nil
}

// HTTPClient returns the client for outbound requests
func (c *Config) HTTPClient() *http.Client {
	timeout := DefaultTimeout
	if d, err := time.ParseDuration(c.Timeout); err == nil && d > 0 {
		timeout = d
	}
	return &http.Client{Timeout: timeout}
}

// LookupBackend returns the configured lookup backend
func (c *Config) LookupBackend(httpClient *http.Client) (lookup.Backend, error) {
	switch values.StringsCoalesce(c.Lookup.Provider, ProviderWikipedia) {
	case ProviderTavily:
		return lookup.NewTavily(c.Lookup.APIKey, c.Lookup.BaseURL, httpClient)
	case ProviderWikipedia:
		return lookup.NewWikipedia(c.Lookup.BaseURL, c.Lookup.Language, httpClient), nil
	default:
		return nil, errors.Errorf("unsupported lookup provider: %q", c.Lookup.Provider)
	}
}

// Tools returns the lookup, weather and image generation tools,
// the configuration is captured at construction.
// If httpClient is nil, the client from HTTPClient() is used.
func (c *Config) Tools(httpClient *http.Client) ([]tools.ITool, error) {
	if httpClient == nil {
		httpClient = c.HTTPClient()
	}

	backend, err := c.LookupBackend(httpClient)
	if err != nil {
		return nil, err
	}

	opts := []lookup.Option{
		lookup.WithMaxChars(values.NumbersCoalesce(c.Lookup.MaxChars, lookup.DefaultMaxChars)),
	}
	if c.Lookup.Name != "" {
		opts = append(opts, lookup.WithName(c.Lookup.Name))
	}
	lookupTool, err := lookup.New(backend, opts...)
	if err != nil {
		return nil, err
	}

	weatherTool, err := weather.New(weather.Config{
		APIKey:  c.Weather.APIKey,
		BaseURL: c.Weather.BaseURL,
	}, httpClient)
	if err != nil {
		return nil, err
	}

	imageTool, err := imagegen.New(imagegen.Config{
		Token:     c.ImageGen.Token,
		Endpoint:  c.ImageGen.Endpoint,
		OutputDir: c.ImageGen.OutputDir,
		Width:     c.ImageGen.Width,
		Height:    c.ImageGen.Height,
	}, httpClient)
	if err != nil {
		return nil, err
	}

	return []tools.ITool{lookupTool, weatherTool, imageTool}, nil
}

// Toolbox returns the registry of the configured tools
func (c *Config) Toolbox(httpClient *http.Client) (*toolbox.Registry, error) {
	list, err := c.Tools(httpClient)
	if err != nil {
		return nil, err
	}
	return toolbox.New(list...)
}
