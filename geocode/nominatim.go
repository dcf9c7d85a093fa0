// Package geocode converts addresses to coordinates and back using a
// Nominatim compatible service.
package geocode

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/olablt/gio-openmaps/tiles"
	"golang.org/x/text/language"
)

const DefaultBaseURL = "https://nominatim.openstreetmap.org/"

var (
	// ErrEmptyQuery is returned by Search for a blank query. No request is made.
	ErrEmptyQuery = errors.New("geocode: empty query")
	// ErrNotFound is returned when the service answers but has no match.
	ErrNotFound = errors.New("geocode: no results found")
)

// Service is implemented by Client. The map screen depends on this
// interface so tests can swap the network out.
type Service interface {
	Search(ctx context.Context, query string) (tiles.LatLng, error)
	Reverse(ctx context.Context, at tiles.LatLng) (string, error)
}

// Observer is told the outcome of every request, for metrics.
type Observer func(op string, err error)

type Client struct {
	baseURL    string
	userAgent  string
	language   string
	httpClient *http.Client
	logger     *slog.Logger
	observe    Observer
}

type Option func(*Client)

// WithLanguage sets Accept-Language from a BCP 47 tag. Invalid tags are
// rejected by NewClient.
func WithLanguage(tag string) Option {
	return func(c *Client) { c.language = tag }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

func WithObserver(o Observer) Option {
	return func(c *Client) { c.observe = o }
}

// NewClient returns a client for the service at baseURL. Nominatim's usage
// policy requires an identifying userAgent.
func NewClient(baseURL, userAgent string, httpClient *http.Client, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("failed to parse geocoder base URL: %w", err)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	c := &Client{
		baseURL:    baseURL,
		userAgent:  userAgent,
		httpClient: httpClient,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.language != "" {
		tag, err := language.Parse(c.language)
		if err != nil {
			return nil, fmt.Errorf("invalid language %q: %w", c.language, err)
		}
		c.language = tag.String()
	}
	return c, nil
}

// Search returns the coordinate of the best match for a free text address.
func (c *Client) Search(ctx context.Context, query string) (ll tiles.LatLng, err error) {
	defer func() { c.report("search", err) }()

	query = strings.TrimSpace(query)
	if query == "" {
		return tiles.LatLng{}, ErrEmptyQuery
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("addressdetails", "1")

	var places []place
	if err := c.get(ctx, "search", params, &places); err != nil {
		return tiles.LatLng{}, err
	}
	if len(places) == 0 {
		return tiles.LatLng{}, ErrNotFound
	}
	return tiles.LatLng{Lat: float64(places[0].Lat), Lng: float64(places[0].Lon)}, nil
}

// Reverse returns a human readable address for the coordinate.
func (c *Client) Reverse(ctx context.Context, at tiles.LatLng) (addr string, err error) {
	defer func() { c.report("reverse", err) }()

	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(at.Lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(at.Lng, 'f', -1, 64))
	params.Set("format", "json")
	params.Set("addressdetails", "1")

	var res reverseResult
	if err := c.get(ctx, "reverse", params, &res); err != nil {
		return "", err
	}
	if res.Error != "" {
		return "", fmt.Errorf("%w: %s", ErrNotFound, res.Error)
	}
	if name := strings.TrimSpace(res.Address.DisplayName); name != "" {
		return name, nil
	}
	if name := strings.TrimSpace(res.DisplayName); name != "" {
		return name, nil
	}
	return "", ErrNotFound
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	u := c.baseURL + endpoint + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", endpoint, err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.language != "" {
		req.Header.Set("Accept-Language", c.language)
	}

	c.logger.Debug("geocoding request", "endpoint", endpoint, "url", u)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s request returned non-200 status: %s", endpoint, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}
	return nil
}

func (c *Client) report(op string, err error) {
	if err != nil && !errors.Is(err, ErrEmptyQuery) {
		c.logger.Info("geocoding failed", "op", op, "error", err)
	}
	if c.observe != nil {
		c.observe(op, err)
	}
}

// Nominatim's json format quotes coordinates; jsonv2 and some mirrors
// don't. coord accepts both.
type coord float64

func (c *coord) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("invalid coordinate %q: %w", b, err)
	}
	*c = coord(f)
	return nil
}

type place struct {
	Lat         coord  `json:"lat"`
	Lon         coord  `json:"lon"`
	DisplayName string `json:"display_name"`
}

type reverseResult struct {
	DisplayName string `json:"display_name"`
	Address     struct {
		DisplayName string `json:"display_name"`
	} `json:"address"`
	Error string `json:"error"`
}
