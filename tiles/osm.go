package tiles

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
)

const DefaultTileURL = "https://tile.openstreetmap.org/{z}/{x}/{y}.png"

// OSMProvider downloads raster tiles from a slippy-map server.
type OSMProvider struct {
	client      *http.Client
	urlTemplate string
	userAgent   string
	logger      *slog.Logger
}

func NewOSMProvider(client *http.Client, urlTemplate, userAgent string, logger *slog.Logger) *OSMProvider {
	if client == nil {
		client = http.DefaultClient
	}
	if urlTemplate == "" {
		urlTemplate = DefaultTileURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OSMProvider{
		client:      client,
		urlTemplate: urlTemplate,
		userAgent:   userAgent,
		logger:      logger,
	}
}

func (p *OSMProvider) GetTile(ctx context.Context, tile Tile) (image.Image, error) {
	url := p.GetTileURL(tile)
	p.logger.Debug("requesting tile", "url", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request for tile %s: %w", tile.Key(), err)
	}
	// tile.openstreetmap.org rejects requests without an identifying agent
	if p.userAgent != "" {
		req.Header.Set("User-Agent", p.userAgent)
	}
	req.Header.Set("Accept", "image/png,image/jpeg,*/*")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching tile %s: %w", tile.Key(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching tile %s: unexpected status %s", tile.Key(), resp.Status)
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decoding tile %s: %w", tile.Key(), err)
	}
	return img, nil
}

// GetTileURL expands the {z}, {x} and {y} placeholders of the template.
func (p *OSMProvider) GetTileURL(tile Tile) string {
	r := strings.NewReplacer(
		"{z}", strconv.Itoa(tile.Zoom),
		"{x}", strconv.Itoa(tile.X),
		"{y}", strconv.Itoa(tile.Y),
	)
	return r.Replace(p.urlTemplate)
}
