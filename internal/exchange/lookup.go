package exchange

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bselens/bselens/internal/lookup"
	"github.com/bselens/bselens/internal/metrics"
	"github.com/bselens/bselens/internal/throttle"
)

const peerSearchEndpoint = "PeerSmartSearch"

// ScripCache stores resolved lookup entries keyed by code and symbol.
type ScripCache interface {
	GetScrip(ctx context.Context, key string) (*lookup.Entry, error)
	PutScrip(ctx context.Context, entry lookup.Entry, ttl time.Duration) error
}

// Lookup returns the raw peer search fragment for text.
func (c *Client) Lookup(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("lookup text is required")
	}

	resp, err := c.get(ctx, throttle.BucketLookup, peerSearchEndpoint, map[string]string{
		"Type": "SS",
		"text": text,
	})
	if err != nil {
		return "", err
	}
	return lookup.NormalizeFragment(resp.String()), nil
}

// LookupEntries returns every complete entry in the peer search response.
func (c *Client) LookupEntries(ctx context.Context, text string) ([]lookup.Entry, error) {
	markup, err := c.Lookup(ctx, text)
	if err != nil {
		return nil, err
	}
	return lookup.Parse(markup), nil
}

// ScripName resolves a scrip code to its trading symbol, e.g. 500180 to HDFCBANK.
func (c *Client) ScripName(ctx context.Context, scripCode string) (string, error) {
	code := strings.TrimSpace(scripCode)
	if code == "" {
		return "", ErrMissingScripCode
	}

	if entry := c.cachedScrip(ctx, code); entry != nil && entry.BSECode == code && lookup.ValidSymbol(entry.Symbol) {
		return entry.Symbol, nil
	}

	markup, err := c.Lookup(ctx, code)
	if err != nil {
		return "", err
	}

	if entry, ok := lookup.FindByCode(lookup.Parse(markup), code); ok {
		c.storeScrip(ctx, entry)
		return entry.Symbol, nil
	}

	if name, ok := lookup.MatchScripName(markup, code); ok {
		c.storeScrip(ctx, lookup.Entry{Symbol: name, BSECode: code})
		return name, nil
	}

	return "", fmt.Errorf("could not find scrip name for %s: %w", code, ErrScripNotFound)
}

// ScripCode resolves a trading symbol to its scrip code, e.g. HDFCBANK to 500180.
func (c *Client) ScripCode(ctx context.Context, symbol string) (string, error) {
	name := strings.ToUpper(strings.TrimSpace(symbol))
	if name == "" {
		return "", fmt.Errorf("symbol is required")
	}

	if entry := c.cachedScrip(ctx, name); entry != nil && strings.EqualFold(entry.Symbol, name) && lookup.ValidCode(entry.BSECode) {
		return entry.BSECode, nil
	}

	markup, err := c.Lookup(ctx, name)
	if err != nil {
		return "", err
	}

	if entry, ok := lookup.FindBySymbol(lookup.Parse(markup), name); ok {
		c.storeScrip(ctx, entry)
		return entry.BSECode, nil
	}

	if code, ok := lookup.MatchScripCode(markup, name); ok {
		c.storeScrip(ctx, lookup.Entry{Symbol: name, BSECode: code})
		return code, nil
	}

	return "", fmt.Errorf("could not find scrip code for %s: %w", name, ErrScripNotFound)
}

func (c *Client) cachedScrip(ctx context.Context, key string) *lookup.Entry {
	if c.cache == nil {
		return nil
	}
	entry, err := c.cache.GetScrip(ctx, key)
	if err != nil {
		c.debug("scrip cache read failed", zap.String("key", key), zap.Error(err))
		return nil
	}
	metrics.RecordScripCache(entry != nil)
	return entry
}

// storeScrip caches entry when its symbol and code have the expected shapes.
func (c *Client) storeScrip(ctx context.Context, entry lookup.Entry) {
	if c.cache == nil || c.cacheTTL <= 0 {
		return
	}
	if !lookup.ValidSymbol(entry.Symbol) || !lookup.ValidCode(entry.BSECode) {
		c.debug("scrip cache write skipped", zap.String("code", entry.BSECode), zap.String("symbol", entry.Symbol))
		return
	}
	if err := c.cache.PutScrip(ctx, entry, c.cacheTTL); err != nil {
		c.debug("scrip cache write failed", zap.String("code", entry.BSECode), zap.Error(err))
	}
}
