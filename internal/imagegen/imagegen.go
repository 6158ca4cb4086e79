// Package imagegen generates images from text prompts through an
// Imagen-style ":predict" REST endpoint and returns them as data URIs.
package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"sitebuilder/internal/domain"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel   = "imagen-3.0-generate-002"

	MaxCount = 4
)

// ErrNoAPIKey is returned when generation is attempted without credentials.
var ErrNoAPIKey = errors.New("image generation is not configured: missing API key")

// Request asks for Count images matching Prompt.
type Request struct {
	Prompt string `json:"prompt"`
	Count  int    `json:"count"`
}

// Validate rejects an empty prompt and clamps Count to 1..MaxCount.
func (r *Request) Validate() error {
	r.Prompt = strings.TrimSpace(r.Prompt)
	if r.Prompt == "" {
		return &domain.ValidationError{Field: "prompt", Message: "prompt is required"}
	}
	if r.Count < 1 {
		r.Count = 1
	}
	if r.Count > MaxCount {
		r.Count = MaxCount
	}
	return nil
}

// Generator produces images as data URIs, in the order returned by the
// backend.
type Generator interface {
	Generate(ctx context.Context, req Request) ([]string, error)
}

// Client talks to the prediction endpoint.
type Client struct {
	BaseURL    string
	Model      string
	APIKey     string
	HTTPClient *http.Client
}

// NewClient returns a client with default endpoint and model.
func NewClient(apiKey string) *Client {
	return &Client{
		BaseURL:    DefaultBaseURL,
		Model:      DefaultModel,
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: 120 * time.Second},
	}
}

type predictRequest struct {
	Instances  []predictInstance `json:"instances"`
	Parameters predictParams     `json:"parameters"`
}

type predictInstance struct {
	Prompt string `json:"prompt"`
}

type predictParams struct {
	SampleCount int `json:"sampleCount"`
}

type predictResponse struct {
	Predictions []struct {
		BytesBase64Encoded string `json:"bytesBase64Encoded"`
		MimeType           string `json:"mimeType"`
	} `json:"predictions"`
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Generate calls the endpoint once and returns every prediction as a
// data URI. Either all images are returned or an error is.
func (c *Client) Generate(ctx context.Context, req Request) ([]string, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if c.APIKey == "" {
		return nil, ErrNoAPIKey
	}

	body, err := json.Marshal(predictRequest{
		Instances:  []predictInstance{{Prompt: req.Prompt}},
		Parameters: predictParams{SampleCount: req.Count},
	})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:predict", strings.TrimRight(c.BaseURL, "/"), c.Model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.APIKey)

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("call image endpoint: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var ae apiError
		if json.Unmarshal(data, &ae) == nil && ae.Error.Message != "" {
			return nil, fmt.Errorf("image endpoint returned %d: %s", resp.StatusCode, ae.Error.Message)
		}
		return nil, fmt.Errorf("image endpoint returned %d", resp.StatusCode)
	}

	var pr predictResponse
	if err := json.Unmarshal(data, &pr); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	images := make([]string, 0, len(pr.Predictions))
	for _, p := range pr.Predictions {
		if p.BytesBase64Encoded == "" {
			continue
		}
		mime := p.MimeType
		if mime == "" {
			mime = "image/png"
		}
		images = append(images, "data:"+mime+";base64,"+p.BytesBase64Encoded)
	}
	if len(images) == 0 {
		return nil, errors.New("image endpoint returned no images")
	}
	return images, nil
}
