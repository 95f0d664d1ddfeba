package openai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/attendex/internal/domain"
	"github.com/kailas-cloud/attendex/internal/domain/feature"
	"github.com/kailas-cloud/attendex/internal/metrics"
)

// Encoder talks to the face-encoder sidecar over its OpenAI-compatible
// embeddings API. The sidecar takes a base64 image as input and answers
// with one feature vector per detected face; an empty data array means
// no face was found in the frame.
type Encoder struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
	provider   string
	logger     *zap.Logger
}

// Config holds the encoder sidecar settings.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Dimensions int
	Provider   string
	Logger     *zap.Logger
}

// NewEncoder creates an encoder client for an OpenAI-compatible sidecar.
func NewEncoder(cfg *Config) *Encoder {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL

	return &Encoder{
		client:     openai.NewClientWithConfig(clientCfg),
		model:      openai.EmbeddingModel(cfg.Model),
		dimensions: cfg.Dimensions,
		provider:   cfg.Provider,
		logger:     cfg.Logger,
	}
}

// Encode extracts the feature vector of the first face in the image.
// Returns domain.ErrNoFaceDetected when the sidecar finds no face.
func (e *Encoder) Encode(ctx context.Context, image []byte) (feature.Vector, error) {
	req := openai.EmbeddingRequest{
		Input:          []string{base64.StdEncoding.EncodeToString(image)},
		Model:          e.model,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	}
	if e.dimensions > 0 {
		req.Dimensions = e.dimensions
	}

	start := time.Now()
	resp, err := e.client.CreateEmbeddings(ctx, req)
	duration := time.Since(start)

	if err != nil {
		metrics.EncoderRequestsTotal.WithLabelValues(e.provider, "error").Inc()
		return nil, parseAPIError(err)
	}

	if len(resp.Data) == 0 {
		// Not an infrastructure failure: the frame just held no face.
		metrics.EncoderRequestsTotal.WithLabelValues(e.provider, "no_face").Inc()
		metrics.EncoderRequestDuration.WithLabelValues(e.provider).Observe(duration.Seconds())
		return nil, domain.ErrNoFaceDetected
	}

	metrics.EncoderRequestsTotal.WithLabelValues(e.provider, "success").Inc()
	metrics.EncoderRequestDuration.WithLabelValues(e.provider).Observe(duration.Seconds())

	raw := resp.Data[0].Embedding
	values := make([]float64, len(raw))
	for i, v := range raw {
		values[i] = float64(v)
	}

	vec, err := feature.New(values, e.dimensions)
	if err != nil {
		return nil, fmt.Errorf("encoder returned bad vector: %v: %w", err, domain.ErrEncoderError)
	}
	return vec, nil
}

// HealthCheck verifies sidecar availability via ListModels (free endpoint).
func (e *Encoder) HealthCheck(ctx context.Context) error {
	if _, err := e.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// parseAPIError extracts a human-readable error from the API response.
// All errors are wrapped with domain.ErrEncoderError for correct 502 mapping.
func parseAPIError(err error) error {
	wrap := domain.ErrEncoderError

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail != "" {
			return fmt.Errorf("encoder API error %d: %s: %w",
				reqErr.HTTPStatusCode, detail, wrap)
		}
		return fmt.Errorf("encoder API error %d: %s: %w",
			reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("encoder API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("encoder request failed: %w", wrap)
}

// extractDetail extracts the "detail" field from a JSON error body.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
