package equation

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Remote calls an HTTP formula-recognition service. The service takes a
// base64 PNG and answers with a LaTeX string; 4xx answers mean the image is
// not a formula, which maps to ErrUnavailable rather than a hard failure.
type Remote struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

// NewRemote builds a Remote pointed at the given endpoint. apiKey may be
// empty for unauthenticated deployments.
func NewRemote(endpoint, apiKey string) *Remote {
	return &Remote{
		endpoint: endpoint,
		apiKey:   apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (r *Remote) Name() string { return "remote" }

type recognizeRequest struct {
	Image  string `json:"image"`
	Format string `json:"format"`
}

type recognizeResponse struct {
	Latex string `json:"latex"`
	Error string `json:"error,omitempty"`
}

// Recognize submits the image and returns the recognized LaTeX.
func (r *Remote) Recognize(ctx context.Context, image []byte) (string, error) {
	body, err := json.Marshal(recognizeRequest{
		Image:  base64.StdEncoding.EncodeToString(image),
		Format: "png",
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if r.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+r.apiKey)
	}

	resp, err := r.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("equation service: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return "", fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("equation service status %d: %s", resp.StatusCode, truncate(respBody, 200))
	}

	var apiResp recognizeResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if apiResp.Error != "" {
		return "", fmt.Errorf("equation service: %s", apiResp.Error)
	}

	latex := strings.TrimSpace(apiResp.Latex)
	if latex == "" {
		return "", ErrUnavailable
	}
	return latex, nil
}

// Close releases pooled connections.
func (r *Remote) Close() {
	r.httpClient.CloseIdleConnections()
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
