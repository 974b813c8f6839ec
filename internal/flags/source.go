package flags

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// HTTPSource fetches flag allow-lists from a JSON endpoint of the shape
// {"flags": {"<flag>": ["team-id", ...]}}.
type HTTPSource struct {
	url    string
	apiKey string
	client *http.Client
}

// NewHTTPSource builds a source, or nil when no URL is configured so
// the resolver falls back to its defaults.
func NewHTTPSource(url, apiKey string) Source {
	if url == "" {
		return nil
	}
	return &HTTPSource{
		url:    url,
		apiKey: apiKey,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

type allowListPayload struct {
	Flags map[string][]string `json:"flags"`
}

// AllowLists fetches the per-flag team allow-lists.
func (s *HTTPSource) AllowLists(ctx context.Context) (map[string][]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, err
	}
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("flag source returned status %d", resp.StatusCode)
	}

	var payload allowListPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	if payload.Flags == nil {
		payload.Flags = map[string][]string{}
	}
	return payload.Flags, nil
}
