// Package netx fetches remote images the CLI attaches by URL.
package netx

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
)

// IsURL reports whether s looks like an http(s) URL rather than a file path.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Download GETs url and returns its body with a display name taken from the
// last path segment. Bodies over maxBytes are rejected; zero disables the
// limit.
func Download(ctx context.Context, client *http.Client, url string, maxBytes int64) (string, []byte, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("download failed: %s", resp.Status)
	}

	var r io.Reader = resp.Body
	if maxBytes > 0 {
		r = io.LimitReader(resp.Body, maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", nil, err
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return "", nil, fmt.Errorf("download failed: body larger than %d bytes", maxBytes)
	}

	name := path.Base(req.URL.Path)
	if name == "/" || name == "." {
		name = req.URL.Host
	}
	return name, data, nil
}
