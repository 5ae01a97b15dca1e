package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gamedash/gamedash-server/internal/cache"
)

const (
	// maxImageSize limits download size to prevent memory exhaustion.
	maxImageSize = 10 * 1024 * 1024

	downloadTimeout = 15 * time.Second

	// Placeholders never change for a given URL.
	placeholderTTL = 30 * 24 * time.Hour
)

// ErrEmptyURL is returned for items without a background image.
var ErrEmptyURL = errors.New("empty image URL")

// Placeholders downloads background images and caches their BlurHash by URL.
type Placeholders struct {
	httpClient *http.Client
	cache      *cache.Typed[Placeholder]
	logger     *slog.Logger
}

// NewPlaceholders creates a placeholder service. c may be nil to disable caching.
func NewPlaceholders(c cache.Cache, backend string, logger *slog.Logger) *Placeholders {
	return &Placeholders{
		httpClient: &http.Client{Timeout: downloadTimeout},
		cache:      cache.NewTyped[Placeholder](c, backend, placeholderTTL),
		logger:     logger,
	}
}

// Get returns the placeholder for the image at url, computing it on a cache miss.
func (p *Placeholders) Get(ctx context.Context, url string) (*Placeholder, error) {
	if url == "" {
		return nil, ErrEmptyURL
	}

	key := cache.Key("media:blurhash", url)
	if cached, err := p.cache.Get(ctx, key); err != nil {
		p.logger.Warn("placeholder cache read failed", "error", err)
	} else if cached != nil {
		return cached, nil
	}

	data, err := p.download(ctx, url)
	if err != nil {
		return nil, err
	}

	ph, err := ComputePlaceholder(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	if err := p.cache.Set(ctx, key, ph); err != nil {
		p.logger.Warn("placeholder cache write failed", "error", err)
	}
	p.logger.Debug("computed placeholder", "url", url, "width", ph.Width, "height", ph.Height)
	return ph, nil
}

func (p *Placeholders) download(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, downloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download failed: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("read data: %w", err)
	}
	if len(data) > maxImageSize {
		return nil, fmt.Errorf("image exceeds %d bytes", maxImageSize)
	}
	return data, nil
}
