package health

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// Pinger verifies a storage backend is reachable.
// Implemented by the storage backends.
type Pinger interface {
	Ping(ctx context.Context) error
}

// DatabaseCheck probes the storage backend.
func DatabaseCheck(storage Pinger) CheckFunc {
	return func(ctx context.Context) error {
		return storage.Ping(ctx)
	}
}

// ClassifierCheck probes the classifier endpoint. Any HTTP response counts
// as reachable; only transport failures mark the dependency unhealthy, so
// a classifier without a dedicated health route still passes.
func ClassifierCheck(baseURL string, client *http.Client) CheckFunc {
	if client == nil {
		client = http.DefaultClient
	}
	url := strings.TrimSuffix(baseURL, "/") + "/"

	return func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("building classifier probe request: %w", err)
		}
		resp, err := client.Do(req)
		if err != nil {
			return fmt.Errorf("classifier unreachable: %w", err)
		}
		resp.Body.Close()
		return nil
	}
}
