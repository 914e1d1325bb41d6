package websearch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karan3613/ragscope/core/errors"
)

func TestTavilySearch(t *testing.T) {
	ctx := context.Background()

	t.Run("正常搜索", func(t *testing.T) {
		var gotReq searchRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/search", r.URL.Path)
			require.Equal(t, http.MethodPost, r.Method)
			require.NoError(t, sonic.ConfigDefault.NewDecoder(r.Body).Decode(&gotReq))

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"results": [
				{"title": "t1", "url": "https://a.example", "content": "result one", "score": 0.9},
				{"title": "t2", "url": "https://b.example", "content": "result two", "score": 0.7}
			]}`))
		}))
		defer server.Close()

		client := NewTavilyClient("test-key", server.URL)
		results, err := client.Search(ctx, "what is an agent", 3)
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "result one", results[0].Content)
		assert.Equal(t, "https://b.example", results[1].URL)

		assert.Equal(t, "test-key", gotReq.APIKey)
		assert.Equal(t, "what is an agent", gotReq.Query)
		assert.Equal(t, 3, gotReq.MaxResults)
	})

	t.Run("maxResults默认值", func(t *testing.T) {
		var gotReq searchRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, sonic.ConfigDefault.NewDecoder(r.Body).Decode(&gotReq))
			_, _ = w.Write([]byte(`{"results": []}`))
		}))
		defer server.Close()

		client := NewTavilyClient("test-key", server.URL)
		_, err := client.Search(ctx, "q", 0)
		require.NoError(t, err)
		assert.Equal(t, 3, gotReq.MaxResults)
	})

	t.Run("非200状态码返回错误", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error": "invalid api key"}`))
		}))
		defer server.Close()

		client := NewTavilyClient("bad-key", server.URL)
		_, err := client.Search(ctx, "q", 3)
		assert.True(t, errors.IsCode(err, errors.ErrWebSearchFailed))
	})

	t.Run("服务不可达返回错误", func(t *testing.T) {
		client := NewTavilyClient("key", "http://127.0.0.1:1")
		_, err := client.Search(ctx, "q", 3)
		assert.True(t, errors.IsCode(err, errors.ErrWebSearchFailed))
	})

	t.Run("String不暴露apiKey", func(t *testing.T) {
		client := NewTavilyClient("secret-key", "")
		assert.NotContains(t, client.String(), "secret-key")
	})
}
