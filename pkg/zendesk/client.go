// Package zendesk is a minimal client for the Zendesk macro listing API.
package zendesk

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// MacroLister 宏列表接口（同步任务依赖）
type MacroLister interface {
	// ListActiveMacros drains every page of the active-macro listing and
	// returns the complete, de-duplicated list.
	ListActiveMacros(ctx context.Context) ([]Macro, error)
}

// Config Zendesk 客户端配置
type Config struct {
	Subdomain string
	Email     string
	APIToken  string
	PageSize  int
	Timeout   time.Duration

	// BaseURL overrides the subdomain-derived URL when set.
	BaseURL string
}

// DefaultConfig returns sensible client defaults; credentials still have to
// come from configuration.
func DefaultConfig() *Config {
	return &Config{
		PageSize: 100,
		Timeout:  30 * time.Second,
	}
}

// Client Zendesk HTTP 客户端
type Client struct {
	baseURL    string
	email      string
	apiToken   string
	pageSize   int
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewClient 创建 Zendesk 客户端
func NewClient(config *Config, logger *logrus.Logger) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	if config.PageSize <= 0 {
		config.PageSize = 100
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = logrus.New()
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.zendesk.com", config.Subdomain)
	}

	return &Client{
		baseURL:  baseURL,
		email:    config.Email,
		apiToken: config.APIToken,
		pageSize: config.PageSize,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		logger: logger,
	}
}

// ListActiveMacros follows the cursor pagination of
// GET /api/v2/macros/active.json until the API reports no more pages.
// Duplicate ids across pages are dropped, first occurrence wins.
func (c *Client) ListActiveMacros(ctx context.Context) ([]Macro, error) {
	url := fmt.Sprintf("%s/api/v2/macros/active.json?page[size]=%d", c.baseURL, c.pageSize)

	var all []Macro
	seen := make(map[int64]bool)

	for url != "" {
		page, err := c.fetchPage(ctx, url)
		if err != nil {
			return nil, err
		}
		for _, macro := range page.Macros {
			if seen[macro.ID] {
				continue
			}
			seen[macro.ID] = true
			all = append(all, macro)
		}

		if page.Meta.HasMore {
			url = page.Links.Next
		} else {
			url = ""
		}
	}

	c.logger.Infof("Fetched %d active macros from Zendesk", len(all))
	return all, nil
}

func (c *Client) fetchPage(ctx context.Context, url string) (*macrosPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	// Zendesk API token auth: "email/token" as the username.
	req.SetBasicAuth(c.email+"/token", c.apiToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	c.logger.Debugf("Zendesk API Response: %d %s", resp.StatusCode, url)

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("zendesk API error [%d]: %s", resp.StatusCode, string(body))
	}

	var page macrosPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &page, nil
}
