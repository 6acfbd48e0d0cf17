package classifier

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPClassifierClassify(t *testing.T) {
	image := []byte("fake-image-bytes")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/v1/analyze" {
			t.Errorf("path = %s, want /v1/analyze", r.URL.Path)
		}

		var req analyzeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		decoded, err := base64.StdEncoding.DecodeString(req.Image)
		if err != nil {
			t.Errorf("image is not valid base64: %v", err)
		}
		if string(decoded) != string(image) {
			t.Errorf("image payload = %q, want %q", decoded, image)
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"dominant_emotion": "happy",
			"emotions": map[string]float64{
				"angry": 0.5, "disgust": 0.1, "fear": 0.2, "happy": 95.3,
				"sad": 0.4, "surprise": 1.5, "neutral": 2.0,
			},
		})
	}))
	defer server.Close()

	client, err := NewHTTPClassifier(&Config{BaseURL: server.URL, Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("NewHTTPClassifier() error = %v", err)
	}
	defer client.Close()

	prediction, err := client.Classify(context.Background(), image)
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if prediction.DominantEmotion != "happy" {
		t.Errorf("DominantEmotion = %q, want happy", prediction.DominantEmotion)
	}
	if len(prediction.Emotions) != 7 {
		t.Errorf("Emotions has %d entries, want 7", len(prediction.Emotions))
	}
	if prediction.Emotions["happy"] != 95.3 {
		t.Errorf("Emotions[happy] = %v, want 95.3", prediction.Emotions["happy"])
	}
}

func TestHTTPClassifierServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model crashed", http.StatusInternalServerError)
	}))
	defer server.Close()

	client, err := NewHTTPClassifier(&Config{BaseURL: server.URL, Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("NewHTTPClassifier() error = %v", err)
	}
	defer client.Close()

	_, err = client.Classify(context.Background(), []byte("img"))
	var unavailable *UnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("Classify() error = %v, want UnavailableError", err)
	}
	if unavailable.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d, want 500", unavailable.StatusCode)
	}
	if unavailable.Timeout {
		t.Error("Timeout = true for 5xx response")
	}
}

func TestHTTPClassifierRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no face detected", http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	client, err := NewHTTPClassifier(&Config{BaseURL: server.URL, Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("NewHTTPClassifier() error = %v", err)
	}
	defer client.Close()

	_, err = client.Classify(context.Background(), []byte("img"))
	var rejection *ResponseError
	if !errors.As(err, &rejection) {
		t.Fatalf("Classify() error = %v, want ResponseError", err)
	}
	if rejection.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("StatusCode = %d, want 422", rejection.StatusCode)
	}
}

func TestHTTPClassifierMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json at all"))
	}))
	defer server.Close()

	client, err := NewHTTPClassifier(&Config{BaseURL: server.URL, Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("NewHTTPClassifier() error = %v", err)
	}
	defer client.Close()

	_, err = client.Classify(context.Background(), []byte("img"))
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("Classify() error = %v, want ParseError", err)
	}
}

func TestHTTPClassifierEmptyScores(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"dominant_emotion": "happy", "emotions": {}}`))
	}))
	defer server.Close()

	client, err := NewHTTPClassifier(&Config{BaseURL: server.URL, Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("NewHTTPClassifier() error = %v", err)
	}
	defer client.Close()

	_, err = client.Classify(context.Background(), []byte("img"))
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("Classify() error = %v, want ParseError", err)
	}
}

func TestHTTPClassifierTimeout(t *testing.T) {
	block := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer server.Close()
	defer close(block)

	client, err := NewHTTPClassifier(&Config{BaseURL: server.URL, Timeout: 50 * time.Millisecond})
	if err != nil {
		t.Fatalf("NewHTTPClassifier() error = %v", err)
	}
	defer client.Close()

	_, err = client.Classify(context.Background(), []byte("img"))
	var unavailable *UnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("Classify() error = %v, want UnavailableError", err)
	}
	if !unavailable.Timeout {
		t.Error("Timeout = false for deadline expiry")
	}
}

func TestHTTPClassifierContextCancellation(t *testing.T) {
	started := make(chan struct{})
	block := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-block
	}))
	defer server.Close()
	defer close(block)

	client, err := NewHTTPClassifier(&Config{BaseURL: server.URL, Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("NewHTTPClassifier() error = %v", err)
	}
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	_, err = client.Classify(ctx, []byte("img"))
	if err == nil {
		t.Fatal("Classify() error = nil, want cancellation error")
	}
}

func TestNewHTTPClassifierRequiresBaseURL(t *testing.T) {
	if _, err := NewHTTPClassifier(&Config{}); err == nil {
		t.Fatal("NewHTTPClassifier() error = nil, want missing base URL error")
	}
}
