package inventory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	log "github.com/sirupsen/logrus"
)

// DefaultFetchTimeout bounds a remote inventory fetch end to end,
// retries included.
const DefaultFetchTimeout = 30 * time.Second

// maxInventorySize caps a remote inventory download at 32 MiB. Real
// inventories are a few hundred kilobytes.
const maxInventorySize = 32 << 20

// Source describes where to load the inventory from. Path wins over
// URL; URL fetches fall back to CachePath when the network is down or
// Offline is set.
type Source struct {
	Path      string
	URL       string
	CachePath string
	Offline   bool
}

func newFetchClient() *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.Logger = nil
	return client
}

// Fetch downloads and parses a remote inventory.
func Fetch(ctx context.Context, url string) (*Inventory, error) {
	data, err := fetchBytes(ctx, url)
	if err != nil {
		return nil, err
	}
	return Parse(bytes.NewReader(data), url)
}

// FetchToFile downloads a remote inventory, validates it, and writes it
// to cachePath for offline runs. The parsed inventory is returned.
func FetchToFile(ctx context.Context, url, cachePath string) (*Inventory, error) {
	data, err := fetchBytes(ctx, url)
	if err != nil {
		return nil, err
	}

	inv, err := Parse(bytes.NewReader(data), url)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(cachePath), 0o755); err != nil {
		return nil, fmt.Errorf("creating inventory cache directory: %w", err)
	}
	if err := os.WriteFile(cachePath, data, 0o644); err != nil {
		return nil, fmt.Errorf("writing inventory cache: %w", err)
	}
	return inv, nil
}

// Resolve loads the inventory for a source: a local path when
// configured, otherwise the remote URL with the cache as fallback.
func Resolve(ctx context.Context, src Source) (*Inventory, error) {
	if src.Path != "" {
		return Load(src.Path)
	}
	if src.URL == "" {
		return nil, fmt.Errorf("no inventory configured: set inventory.path or inventory.url")
	}

	if src.Offline {
		if src.CachePath == "" {
			return nil, fmt.Errorf("offline mode requires a cached inventory, but none is configured")
		}
		inv, err := Load(src.CachePath)
		if err != nil {
			return nil, fmt.Errorf("offline mode requires a cached inventory: %w", err)
		}
		return inv, nil
	}

	if src.CachePath == "" {
		return Fetch(ctx, src.URL)
	}

	inv, err := FetchToFile(ctx, src.URL, src.CachePath)
	if err != nil {
		cached, cacheErr := Load(src.CachePath)
		if cacheErr != nil {
			return nil, fmt.Errorf("fetching inventory from %s: %w", src.URL, err)
		}
		log.WithError(err).Warnf("inventory fetch failed, using cached copy from %s", src.CachePath)
		return cached, nil
	}
	return inv, nil
}

func fetchBytes(ctx context.Context, url string) ([]byte, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultFetchTimeout)
		defer cancel()
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building inventory request: %w", err)
	}

	resp, err := newFetchClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching inventory from %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching inventory from %s: unexpected status %s", url, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxInventorySize))
	if err != nil {
		return nil, fmt.Errorf("reading inventory response: %w", err)
	}
	return data, nil
}
