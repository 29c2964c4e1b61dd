package config_test

import (
	"testing"
	"time"

	"github.com/effective-security/toolbelt/config"
	"github.com/effective-security/toolbelt/tools/lookup"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("TOOLBELT_WEATHER_KEY", "weather-secret")
	t.Setenv("TOOLBELT_HUGGING_FACE_KEY", "hf-secret")

	cfg, err := config.Load("testdata/tools.yaml")
	require.NoError(t, err)

	assert.Equal(t, "weather-secret", cfg.Weather.APIKey)
	assert.Equal(t, "hf-secret", cfg.ImageGen.Token)
	assert.Equal(t, "generated", cfg.ImageGen.OutputDir)
	assert.Equal(t, 512, cfg.ImageGen.Width)
	assert.Equal(t, 256, cfg.ImageGen.Height)
	assert.Equal(t, "de", cfg.Lookup.Language)
	assert.Equal(t, 30*time.Second, cfg.HTTPClient().Timeout)

	list, err := cfg.Tools(nil)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "wikipedia", list[0].Name())
	assert.Equal(t, "weather", list[1].Name())
	assert.Equal(t, "create_image", list[2].Name())

	backend, err := cfg.LookupBackend(nil)
	require.NoError(t, err)
	wiki, ok := backend.(*lookup.WikipediaBackend)
	require.True(t, ok)
	assert.Equal(t, "https://de.wikipedia.org/w/api.php", wiki.BaseURL())

	box, err := cfg.Toolbox(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"wikipedia", "weather", "create_image"}, box.Names())
}

func TestLoad_Tavily(t *testing.T) {
	t.Setenv("TOOLBELT_TAVILY_KEY", "tavily-secret")

	cfg, err := config.Load("testdata/tavily.yaml")
	require.NoError(t, err)
	assert.Equal(t, "tavily-secret", cfg.Lookup.APIKey)
	assert.Equal(t, config.DefaultTimeout, cfg.HTTPClient().Timeout)

	backend, err := cfg.LookupBackend(nil)
	require.NoError(t, err)
	assert.IsType(t, &lookup.TavilyBackend{}, backend)

	list, err := cfg.Tools(nil)
	require.NoError(t, err)
	assert.Equal(t, "web_search", list[0].Name())
}

func TestLoad_Invalid(t *testing.T) {
	_, err := config.Load("testdata/invalid.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
	assert.Contains(t, err.Error(), "Provider")
	assert.Contains(t, err.Error(), "APIKey")

	_, err = config.Load("testdata/missing.yaml")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := &config.Config{
		Weather:  config.WeatherConfig{APIKey: "k"},
		ImageGen: config.ImageGenConfig{Token: "t"},
	}
	require.NoError(t, cfg.Validate())

	cfg.Timeout = "forever"
	assert.EqualError(t, cfg.Validate(), `invalid config: timeout: time: invalid duration "forever"`)

	cfg.Timeout = ""
	cfg.Lookup = config.LookupConfig{Provider: config.ProviderTavily}
	assert.Error(t, cfg.Validate())

	cfg.Lookup.APIKey = "key"
	require.NoError(t, cfg.Validate())

	cfg.ImageGen.Width = -1
	assert.Error(t, cfg.Validate())
}
