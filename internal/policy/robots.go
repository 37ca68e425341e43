package policy

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
)

const maxRobotsSize = 512 * 1024

// FromRobots fetches the site's live robots.txt and builds a Policy from
// its Disallow rules. Only plain prefix rules are kept; wildcard patterns
// are skipped, since the policy contract is prefix matching. On any fetch
// or parse problem the caller should keep its static policy.
func FromRobots(ctx context.Context, siteURL string, timeout time.Duration, logger *slog.Logger) (*Policy, error) {
	u, err := url.Parse(siteURL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("robots: invalid site URL %q", siteURL)
	}
	robotsURL := u.Scheme + "://" + u.Host + "/robots.txt"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("robots: build request: %w", err)
	}
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")

	client := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DisableCompression: true, // We handle decompression ourselves (including brotli)
		},
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("robots: fetch %s: %w", robotsURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("robots: fetch %s: HTTP %d", robotsURL, resp.StatusCode)
	}

	reader, err := decompressReader(resp.Header.Get("Content-Encoding"), io.LimitReader(resp.Body, maxRobotsSize))
	if err != nil {
		return nil, fmt.Errorf("robots: decompress: %w", err)
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("robots: read body: %w", err)
	}

	prefixes := ParseDisallowed(string(body))
	if len(prefixes) == 0 {
		return nil, fmt.Errorf("robots: no usable Disallow rules at %s", robotsURL)
	}

	logger.Info("path policy refreshed from robots.txt",
		"url", robotsURL,
		"prefixes", len(prefixes),
	)
	return New(prefixes), nil
}

// ParseDisallowed extracts prefix Disallow rules from robots.txt content,
// honoring the wildcard user-agent section and any gridcrawl section.
func ParseDisallowed(content string) []string {
	var prefixes []string
	inOurSection := false

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if idx := strings.Index(line, "#"); idx >= 0 {
			line = strings.TrimSpace(line[:idx])
		}
		if line == "" {
			continue
		}

		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(strings.ToLower(parts[0]))
		value := strings.TrimSpace(parts[1])

		switch key {
		case "user-agent":
			agent := strings.ToLower(value)
			inOurSection = agent == "*" || strings.Contains(agent, "gridcrawl")
		case "disallow":
			// Wildcard and anchor patterns don't fit prefix matching.
			if inOurSection && value != "" && !strings.ContainsAny(value, "*$") {
				prefixes = append(prefixes, value)
			}
		}
	}

	return prefixes
}

// decompressReader wraps a reader with the decompressor matching the
// response's Content-Encoding. Handles gzip, deflate, and brotli (br).
func decompressReader(encoding string, reader io.Reader) (io.Reader, error) {
	switch encoding {
	case "gzip":
		return gzip.NewReader(reader)
	case "deflate":
		return flate.NewReader(reader), nil
	case "br":
		return brotli.NewReader(reader), nil
	default:
		return reader, nil
	}
}
