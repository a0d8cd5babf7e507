package fetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/algojourney/algojourney/internal/config"
	"github.com/algojourney/algojourney/internal/database/models"
)

const (
	PlatformLeetcode   = "leetcode"
	PlatformCodeforces = "codeforces"
	PlatformGithub     = "github"
)

// Client fetches public profile stats from the supported third-party
// platforms. All fetches are best-effort and retry-free; a failure is
// reported to the caller and treated as "no data".
type Client struct {
	cfg  config.Fetcher
	http *http.Client
}

func NewClient(cfg config.Fetcher) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

const leetcodeQuery = `query userStats($username: String!) {
  matchedUser(username: $username) {
    username
    submitStatsGlobal {
      acSubmissionNum { difficulty count }
    }
    profile { ranking }
  }
}`

// FetchLeetcode queries the LeetCode GraphQL endpoint for a user's accepted
// submission counts and ranking.
func (c *Client) FetchLeetcode(ctx context.Context, username string) (models.JSONMap, error) {
	body, err := json.Marshal(map[string]interface{}{
		"query":     leetcodeQuery,
		"variables": map[string]string{"username": username},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.LeetcodeURL, bytes.NewReader(body))
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
		return nil, fmt.Errorf("leetcode returned status %d", resp.StatusCode)
	}

	var payload struct {
		Data struct {
			MatchedUser models.JSONMap `json:"matchedUser"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	if payload.Data.MatchedUser == nil {
		return nil, fmt.Errorf("leetcode user %q not found", username)
	}
	return payload.Data.MatchedUser, nil
}

// FetchCodeforces calls the Codeforces user.info endpoint.
func (c *Client) FetchCodeforces(ctx context.Context, handle string) (models.JSONMap, error) {
	u := fmt.Sprintf("%s/user.info?handles=%s", c.cfg.CodeforcesURL, url.QueryEscape(handle))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload struct {
		Status  string           `json:"status"`
		Comment string           `json:"comment"`
		Result  []models.JSONMap `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	if payload.Status != "OK" || len(payload.Result) == 0 {
		return nil, fmt.Errorf("codeforces lookup for %q failed: %s", handle, payload.Comment)
	}
	return payload.Result[0], nil
}

// FetchGithub retrieves a user's public GitHub profile.
func (c *Client) FetchGithub(ctx context.Context, username string) (models.JSONMap, error) {
	u := fmt.Sprintf("%s/users/%s", c.cfg.GithubURL, url.PathEscape(username))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github returned status %d for %q", resp.StatusCode, username)
	}

	var profile models.JSONMap
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, err
	}
	return profile, nil
}
