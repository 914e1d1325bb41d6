package websearch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gogf/gf/v2/frame/g"

	"github.com/karan3613/ragscope/core/errors"
)

const defaultBaseURL = "https://api.tavily.com"

// SearchResult 单条网络搜索结果
type SearchResult struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// TavilyClient Tavily 搜索服务客户端
type TavilyClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewTavilyClient 创建 Tavily 客户端
// baseURL 为空时使用官方地址
func NewTavilyClient(apiKey string, baseURL string) *TavilyClient {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &TavilyClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   10 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:        10,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
	}
}

// NewTavilyClientFromConfig 从配置文件创建 Tavily 客户端
func NewTavilyClientFromConfig(ctx context.Context) (*TavilyClient, error) {
	apiKey := g.Cfg().MustGet(ctx, "websearch.apiKey", "").String()
	if apiKey == "" {
		return nil, errors.New(errors.ErrWebSearchFailed, "websearch.apiKey is not configured")
	}
	baseURL := g.Cfg().MustGet(ctx, "websearch.baseURL", "").String()
	return NewTavilyClient(apiKey, baseURL), nil
}

type searchRequest struct {
	APIKey     string `json:"api_key"`
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

type searchResponse struct {
	Results []SearchResult `json:"results"`
}

// Search 执行网络搜索，返回最多 maxResults 条结果
func (c *TavilyClient) Search(ctx context.Context, query string, maxResults int) ([]SearchResult, error) {
	if maxResults <= 0 {
		maxResults = 3
	}

	body, err := sonic.Marshal(&searchRequest{
		APIKey:     c.apiKey,
		Query:      query,
		MaxResults: maxResults,
	})
	if err != nil {
		return nil, errors.Newf(errors.ErrWebSearchFailed, "failed to marshal search request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, errors.Newf(errors.ErrWebSearchFailed, "failed to create search request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Newf(errors.ErrWebSearchFailed, "search request failed: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Newf(errors.ErrWebSearchFailed, "failed to read search response: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Newf(errors.ErrWebSearchFailed, "search API returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var result searchResponse
	if err := sonic.Unmarshal(respBody, &result); err != nil {
		return nil, errors.Newf(errors.ErrWebSearchFailed, "failed to parse search response: %v", err)
	}

	g.Log().Infof(ctx, "web search returned %d results for query: %s", len(result.Results), query)
	return result.Results, nil
}

var _ fmt.Stringer = (*TavilyClient)(nil)

// String 隐藏 apiKey，避免日志泄露
func (c *TavilyClient) String() string {
	return fmt.Sprintf("TavilyClient{baseURL: %s}", c.baseURL)
}
