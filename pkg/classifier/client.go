package classifier

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"
)

// Prediction is the raw classifier output before normalization. Emotions is
// keyed by whatever label strings the classifier emits; the analysis
// gateway projects them onto the canonical label set.
type Prediction struct {
	DominantEmotion string             `json:"dominant_emotion"`
	Emotions        map[string]float64 `json:"emotions"`
}

// Classifier obtains an emotion prediction for one image.
type Classifier interface {
	// Classify sends the raw image bytes for classification. Exactly one
	// attempt is made per call; the caller decides whether to retry.
	Classify(ctx context.Context, image []byte) (*Prediction, error)

	// Close releases client resources.
	Close() error
}

// Config contains configuration for the HTTP classifier client.
type Config struct {
	// BaseURL is the classifier service base URL, e.g. "http://classifier:8500".
	BaseURL string

	// Timeout is the per-request deadline.
	// Default: 10 seconds
	Timeout time.Duration

	// MaxIdleConns is the connection pool size.
	// Default: 20
	MaxIdleConns int

	// MaxIdleConnsPerHost limits idle connections to the classifier host.
	// Default: 20
	MaxIdleConnsPerHost int

	// IdleConnTimeout is how long idle connections are kept.
	// Default: 90 seconds
	IdleConnTimeout time.Duration
}

// DefaultConfig returns the default classifier client configuration.
func DefaultConfig() *Config {
	return &Config{
		Timeout:             10 * time.Second,
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 20,
		IdleConnTimeout:     90 * time.Second,
	}
}

// HTTPClassifier is the production Classifier implementation. It talks to
// the external classifier service over HTTP with a pooled transport.
type HTTPClassifier struct {
	config *Config
	client *http.Client
	logger *slog.Logger
}

// analyzeRequest is the wire format sent to the classifier.
type analyzeRequest struct {
	Image string `json:"image"`
}

// NewHTTPClassifier creates a new HTTP classifier client.
func NewHTTPClassifier(config *Config) (*HTTPClassifier, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.BaseURL == "" {
		return nil, fmt.Errorf("classifier base URL is required")
	}

	transport := &http.Transport{
		MaxIdleConns:        config.MaxIdleConns,
		MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
		IdleConnTimeout:     config.IdleConnTimeout,
		ForceAttemptHTTP2:   true,
	}

	return &HTTPClassifier{
		config: config,
		client: &http.Client{
			Transport: transport,
			Timeout:   config.Timeout,
		},
		logger: slog.Default().With("component", "classifier.http"),
	}, nil
}

// Classify sends the image to the classifier's analyze endpoint and decodes
// the prediction. Network errors, timeouts and 5xx responses come back as
// UnavailableError; 4xx as ResponseError; malformed bodies as ParseError.
func (c *HTTPClassifier) Classify(ctx context.Context, image []byte) (*Prediction, error) {
	url := strings.TrimSuffix(c.config.BaseURL, "/") + "/v1/analyze"

	body, err := json.Marshal(analyzeRequest{
		Image: base64.StdEncoding.EncodeToString(image),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("sending frame to classifier",
		"url", url,
		"image_bytes", len(image),
	)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &UnavailableError{
			Endpoint:          url,
			Timeout:           isTimeout(ctx, err),
			ConfiguredTimeout: c.config.Timeout,
			Cause:             err,
		}
	}
	defer resp.Body.Close()

	responseBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ParseError{
			Endpoint: url,
			Cause:    fmt.Errorf("failed to read response: %w", err),
		}
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		// Fall through to decoding below
	case resp.StatusCode >= 500:
		return nil, &UnavailableError{
			Endpoint:   url,
			StatusCode: resp.StatusCode,
			Cause:      fmt.Errorf("classifier returned status %d", resp.StatusCode),
		}
	default:
		return nil, &ResponseError{
			Endpoint:   url,
			StatusCode: resp.StatusCode,
			Message:    string(responseBytes),
		}
	}

	var prediction Prediction
	if err := json.Unmarshal(responseBytes, &prediction); err != nil {
		return nil, &ParseError{
			Endpoint:    url,
			RawResponse: string(responseBytes),
			Cause:       fmt.Errorf("failed to unmarshal response: %w", err),
		}
	}

	if len(prediction.Emotions) == 0 {
		return nil, &ParseError{
			Endpoint:    url,
			RawResponse: string(responseBytes),
			Cause:       fmt.Errorf("response carries no emotion scores"),
		}
	}

	c.logger.Debug("classifier responded",
		"dominant_emotion", prediction.DominantEmotion,
		"latency", time.Since(start),
	)

	return &prediction, nil
}

// Close releases idle connections held by the transport.
func (c *HTTPClassifier) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

// isTimeout reports whether err represents a deadline expiry rather than a
// plain connection failure.
func isTimeout(ctx context.Context, err error) bool {
	if ctx.Err() == context.DeadlineExceeded || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
