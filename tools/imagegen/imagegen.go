package imagegen

import (
	"bytes"
	"context"
	"image"
	_ "image/gif" // register decoder
	"image/jpeg"
	_ "image/png" // register decoder
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/toolbelt/pkg/schema"
	"github.com/effective-security/toolbelt/tools"
	"github.com/effective-security/x/values"
	"github.com/effective-security/xlog"
	"github.com/tidwall/sjson"
	_ "golang.org/x/image/bmp" // register decoder
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register decoder
)

var logger = xlog.NewPackageLogger("github.com/effective-security/toolbelt/tools", "imagegen")

// ToolName is the name of the image generation tool
const ToolName = "create_image"

// Defaults
const (
	DefaultEndpoint  = "https://api-inference.huggingface.co/models/stabilityai/stable-diffusion-2-1"
	DefaultOutputDir = "images"
	DefaultWidth     = 400
	DefaultHeight    = 400
	DefaultQuality   = jpeg.DefaultQuality
)

// Request represents the tool input
type Request struct {
	Payload string `json:"payload" yaml:"payload" validate:"required"`
}

// Result represents the tool output
type Result struct {
	Path   string `json:"path" yaml:"path"`
	Width  int    `json:"width" yaml:"width"`
	Height int    `json:"height" yaml:"height"`
}

func (r *Result) String() string {
	return r.Path
}

// Config provides the image generation configuration
type Config struct {
	Token     string
	Endpoint  string
	OutputDir string
	Width     int
	Height    int
}

// Tool generates an image for the prompt,
// and returns the path of the saved JPEG file.
type Tool struct {
	token      string
	endpoint   string
	outputDir  string
	width      int
	height     int
	httpClient *http.Client
}

var _ tools.Tool[Request, Result] = (*Tool)(nil)

// New returns the image generation tool
func New(cfg Config, httpClient *http.Client) (*Tool, error) {
	if cfg.Token == "" {
		return nil, errors.New("image generation token is required")
	}
	if cfg.Width < 0 || cfg.Height < 0 {
		return nil, errors.Errorf("invalid image size: %dx%d", cfg.Width, cfg.Height)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Tool{
		token:      cfg.Token,
		endpoint:   values.StringsCoalesce(cfg.Endpoint, DefaultEndpoint),
		outputDir:  values.StringsCoalesce(cfg.OutputDir, DefaultOutputDir),
		width:      values.NumbersCoalesce(cfg.Width, DefaultWidth),
		height:     values.NumbersCoalesce(cfg.Height, DefaultHeight),
		httpClient: httpClient,
	}, nil
}

func (t *Tool) Name() string {
	return ToolName
}

func (t *Tool) Description() string {
	return "Generate an image based on the input text and return its path"
}

func (t *Tool) Parameters() schema.Parameters {
	return schema.Parameters{
		schema.String("payload", "What should be converted into image"),
	}
}

// Run generates the image and writes it to the output folder.
// An existing file for the same prompt is overwritten.
func (t *Tool) Run(ctx context.Context, req *Request) (*Result, error) {
	if strings.TrimSpace(req.Payload) == "" {
		return nil, errors.Wrap(tools.ErrInvalidArguments, "empty payload")
	}

	body, err := sjson.SetBytes([]byte(`{}`), "inputs", req.Payload)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	data, err := t.generate(ctx, body)
	if err != nil {
		return nil, err
	}

	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, tools.DecodeError(err, "failed to decode image")
	}

	// JPEG has no alpha, transparent pixels are composed over white
	dst := image.NewRGBA(image.Rect(0, 0, t.width, t.height))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	if err = os.MkdirAll(t.outputDir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "failed to create folder %s", t.outputDir)
	}

	path := filepath.Join(t.outputDir, FileName(req.Payload))
	var buf bytes.Buffer
	if err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: DefaultQuality}); err != nil {
		return nil, errors.Wrap(err, "failed to encode image")
	}
	if err = os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return nil, errors.Wrapf(err, "failed to write image %s", path)
	}

	logger.ContextKV(ctx, xlog.DEBUG,
		"path", path,
		"format", format,
		"src_size", src.Bounds().Size().String(),
		"bytes", buf.Len(),
	)

	return &Result{
		Path:   path,
		Width:  t.width,
		Height: t.height,
	}, nil
}

func (t *Tool) Call(ctx context.Context, input string) (string, error) {
	return tools.Call[Request, Result](ctx, t, input)
}

func (t *Tool) generate(ctx context.Context, body []byte) ([]byte, error) {
	hreq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	hreq.Header.Set("Authorization", "Bearer "+t.token)
	hreq.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(hreq)
	if err != nil {
		return nil, tools.NetworkError(err, "failed to call image service")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, tools.NetworkError(err, "failed to read image response")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.ContextKV(ctx, xlog.DEBUG,
			"status", resp.StatusCode,
			"body", string(data),
		)
		return nil, tools.NewStatusError(resp.StatusCode)
	}
	return data, nil
}

var fileNameReplacer = strings.NewReplacer(" ", "_", "/", "_", "\\", "_")

// FileName returns the file name for the prompt:
// spaces and path separators are replaced with underscores.
func FileName(prompt string) string {
	return "image_" + fileNameReplacer.Replace(prompt) + ".jpg"
}
