package github

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/distantorigin/osb-installer/internal/installerr"
)

// DefaultBaseURL is the web (not API) host used for release redirects
const DefaultBaseURL = "https://github.com"

var tagPattern = regexp.MustCompile(`/tag/(v[\d.]+)$`)

// Client resolves releases of one repository without the REST API
type Client struct {
	owner      string
	repo       string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new release client
func NewClient(owner, repo, baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: 30 * time.Second,
		}
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		owner:      owner,
		repo:       repo,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// LatestReleaseURL is the page GitHub redirects to the newest tag
func (c *Client) LatestReleaseURL() string {
	return fmt.Sprintf("%s/%s/%s/releases/latest", c.baseURL, c.owner, c.repo)
}

// LatestReleaseTag follows the releases/latest redirect with a HEAD request
// and extracts the tag (e.g. v0.1.14) from the final URL
func (c *Client) LatestReleaseTag(ctx context.Context) (string, error) {
	op := "resolve latest release"

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.LatestReleaseURL(), nil)
	if err != nil {
		return "", installerr.New(installerr.Download, op, err)
	}
	req.Header.Set("User-Agent", "osb-installer")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", installerr.New(installerr.Download, op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", installerr.Errorf(installerr.Download, op, "HTTP %d", resp.StatusCode)
	}

	return ParseTagURL(resp.Request.URL.Path)
}

// ParseTagURL extracts the release tag from a .../releases/tag/<tag> path
func ParseTagURL(finalPath string) (string, error) {
	m := tagPattern.FindStringSubmatch(finalPath)
	if m == nil {
		return "", installerr.Errorf(installerr.Download, "resolve latest release", "could not extract release tag from %s", finalPath)
	}
	return m[1], nil
}

// ReleaseAssetURL returns the download URL of an asset attached to tag
func (c *Client) ReleaseAssetURL(tag, asset string) string {
	return fmt.Sprintf("%s/%s/%s/releases/download/%s/%s", c.baseURL, c.owner, c.repo, tag, asset)
}
