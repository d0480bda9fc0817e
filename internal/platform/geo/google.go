package geo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Location is a resolved position with the provider's accuracy estimate.
type Location struct {
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Accuracy float64 `json:"accuracy"`
}

// Client resolves the caller's approximate location through the Google
// Geolocation API. Best effort: callers must tolerate failure.
type Client struct {
	apiKey string
	http   *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		apiKey: apiKey,
		http:   &http.Client{Timeout: 5 * time.Second},
	}
}

func (c *Client) Resolve(ctx context.Context) (*Location, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("geolocation api key not configured")
	}
	body, _ := json.Marshal(map[string]any{"considerIp": true})
	url := "https://www.googleapis.com/geolocation/v1/geolocate?key=" + c.apiKey
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geolocation request failed: %s", resp.Status)
	}

	var out struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
		Accuracy float64 `json:"accuracy"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return &Location{Lat: out.Location.Lat, Lng: out.Location.Lng, Accuracy: out.Accuracy}, nil
}
