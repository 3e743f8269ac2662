// Package audio talks to the external audio-hosting provider. The provider
// is an interface-only collaborator: versions store the opaque audio_url it
// hands out, and the backend never touches the audio itself.
package audio

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Embed is the provider's embeddable rendering of one hosted track.
type Embed struct {
	URL   string `json:"url"`
	HTML  string `json:"html"`
	Title string `json:"title,omitempty"`
}

// Host resolves an opaque audio URL into its embeddable form.
type Host interface {
	ResolveEmbed(ctx context.Context, audioURL string) (*Embed, error)
}

// Client is the plain-HTTP Host implementation against the provider's
// oEmbed endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new Client
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// ResolveEmbed fetches the embed document for a hosted track.
func (c *Client) ResolveEmbed(ctx context.Context, audioURL string) (*Embed, error) {
	reqURL := c.baseURL + "/oembed?url=" + url.QueryEscape(audioURL)
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("audio host request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("audio host returned status %d", resp.StatusCode)
	}

	var embed Embed
	if err := json.NewDecoder(resp.Body).Decode(&embed); err != nil {
		return nil, fmt.Errorf("decode embed: %w", err)
	}
	if embed.URL == "" {
		embed.URL = audioURL
	}
	return &embed, nil
}
