package faceid

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"attendance-platform/internal/config"
)

// HTTPProvider talks to the managed face-recognition service over its JSON API.
//
// Expected endpoints:
//   POST {base}/v1/identify  {"image": "<base64>"} -> 200 {"face_token": "...", "similarity": 0.98}
//                                                     404 when no enrolled face matches
//   GET  {base}/healthz      -> 200
type HTTPProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewHTTPProvider(cfg config.FaceConfig) (*HTTPProvider, error) {
	if cfg.APIURL == "" {
		return nil, errors.New("faceid: FACE_API_URL is required")
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPProvider{
		baseURL: cfg.APIURL,
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

func (p *HTTPProvider) Name() string { return "face-http" }

func (p *HTTPProvider) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/healthz", nil)
	if err != nil {
		return err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("faceid: health check returned %d", resp.StatusCode)
	}
	return nil
}

type identifyRequest struct {
	Image string `json:"image"`
}

func (p *HTTPProvider) Identify(ctx context.Context, image []byte) (Identification, error) {
	if len(image) == 0 {
		return Identification{}, errors.New("faceid: empty image")
	}

	body, err := json.Marshal(identifyRequest{Image: base64.StdEncoding.EncodeToString(image)})
	if err != nil {
		return Identification{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/identify", bytes.NewReader(body))
	if err != nil {
		return Identification{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return Identification{}, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var out Identification
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return Identification{}, fmt.Errorf("faceid: decoding response: %w", err)
		}
		if out.FaceToken == "" {
			return Identification{}, errors.New("faceid: provider returned empty face token")
		}
		return out, nil
	case http.StatusNotFound:
		return Identification{}, ErrNoMatch
	default:
		// Do not include the response body; it may echo image data.
		return Identification{}, fmt.Errorf("faceid: provider returned %d", resp.StatusCode)
	}
}
