package ingestion

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonathan/posting-parser/internal/fetch"
	"github.com/jonathan/posting-parser/internal/types"
	"go.uber.org/zap"
)

var (
	// ErrHTTPRequestFailed is returned when HTTP request fails
	ErrHTTPRequestFailed = errors.New("HTTP request failed")
	// ErrContentExtractionFailed is returned when content extraction fails
	ErrContentExtractionFailed = errors.New("content extraction failed")
	// ErrNoContent is returned when a page yields no posting text
	ErrNoContent = errors.New("no posting text found")
)

// URLOptions configures IngestFromURL
type URLOptions struct {
	// Renderer, when set, re-renders pages whose HTTP content is too short.
	Renderer fetch.Renderer
	Fetch    *fetch.Options
	Logger   *zap.Logger
}

// IngestFromURL fetches a posting page, extracts its main text with
// platform-specific selectors and returns it as a raw posting. Pages that
// render client-side fall back to opts.Renderer when one is configured.
func IngestFromURL(ctx context.Context, urlStr string, opts URLOptions) (*types.RawPosting, *Metadata, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	platform := fetch.DetectPlatform(urlStr)
	logger.Debug("ingesting URL", zap.String("url", urlStr), zap.String("platform", string(platform)))

	result, err := fetch.URL(ctx, urlStr, opts.Fetch)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrHTTPRequestFailed, err)
	}
	logger.Debug("fetched HTML", zap.Int("bytes", len(result.HTML)))

	contentSelectors := fetch.PlatformContentSelectors(platform)
	noiseSelectors := fetch.PlatformNoiseSelectors(platform)

	html := result.HTML
	textContent, err := fetch.ExtractMainText(html, contentSelectors, noiseSelectors...)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrContentExtractionFailed, err)
	}

	if opts.Renderer != nil && fetch.ShouldUseBrowser(textContent) {
		logger.Debug("content too short, rendering in browser",
			zap.Int("chars", len(textContent)),
			zap.Int("min", fetch.MinContentLength))

		rendered, renderErr := opts.Renderer.Render(ctx, urlStr)
		if renderErr != nil {
			logger.Warn("browser rendering failed, using HTTP content", zap.Error(renderErr))
		} else if browserText, extractErr := fetch.ExtractMainText(rendered, contentSelectors, noiseSelectors...); extractErr != nil {
			logger.Warn("browser content extraction failed", zap.Error(extractErr))
		} else {
			html = rendered
			textContent = browserText
		}
	}

	text := Normalize(textContent)
	if text == "" {
		return nil, nil, fmt.Errorf("%w: %s", ErrNoContent, urlStr)
	}

	posting := &types.RawPosting{
		Text:   text,
		Title:  fetch.ExtractTitle(html),
		URL:    urlStr,
		Source: SourceURL,
	}

	metadata := NewMetadata(text, urlStr)
	metadata.Source = SourceURL
	metadata.Platform = string(platform)
	metadata.Title = posting.Title

	logger.Debug("ingested URL", zap.Int("chars", len(text)), zap.String("hash", metadata.Hash))
	return posting, metadata, nil
}
