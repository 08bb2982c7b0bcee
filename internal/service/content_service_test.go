package service

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"gogaku_suite/internal/config"
	"gogaku_suite/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContentTestService(baseURL string) ContentService {
	cfg := &config.Config{}
	cfg.Content.BaseURL = baseURL
	cfg.Content.CategoryID = 5
	return NewContentService(cfg)
}

func TestContentService_FetchPost_ByID(t *testing.T) {
	ctx := context.Background()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><title>文法解説の記事</title></head><body>
			<div class="entry-content">
				<p>本文です。</p>
				<a href="/related">関連記事</a>
				<img src="/images/chart.png">
			</div>
		</body></html>`)
	}))
	defer ts.Close()

	svc := newContentTestService(ts.URL)
	resp, err := svc.FetchPost(ctx, "", 123)
	require.NoError(t, err)

	assert.Equal(t, "文法解説の記事", resp.Title)
	assert.Contains(t, resp.HTML, "本文です。")
	// 相対パスは絶対URLに書き換わる
	assert.Contains(t, resp.HTML, ts.URL+"/related")
	assert.Contains(t, resp.HTML, ts.URL+"/images/chart.png")
	assert.NotContains(t, resp.HTML, `href="/related"`)
}

func TestContentService_FetchPost_FallbackToBody(t *testing.T) {
	ctx := context.Background()

	// どのセレクタにも一致しないテンプレート
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><title>fallback</title></head><body>
			<div class="totally-unknown-layout"><p>セレクタ全滅でもここが返る</p></div>
		</body></html>`)
	}))
	defer ts.Close()

	svc := newContentTestService(ts.URL)
	resp, err := svc.FetchPost(ctx, "", 1)
	require.NoError(t, err)
	assert.Contains(t, resp.HTML, "セレクタ全滅でもここが返る")
}

func TestContentService_FetchPost_BySearch(t *testing.T) {
	ctx := context.Background()

	mux := http.NewServeMux()
	var ts *httptest.Server
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("s") != "" {
			// 検索結果ページ: 最初の記事リンクが拾われる
			fmt.Fprintf(w, `<html><body>
				<article><h2><a href="%s/posts/42">ヒットした記事</a></h2></article>
				<article><h2><a href="%s/posts/43">2番目の記事</a></h2></article>
			</body></html>`, ts.URL, ts.URL)
			return
		}
		fmt.Fprint(w, `<html><head><title>ヒットした記事</title></head><body>
			<article><p>検索経由の本文</p></article>
		</body></html>`)
	})
	ts = httptest.NewServer(mux)
	defer ts.Close()

	svc := newContentTestService(ts.URL)
	resp, err := svc.FetchPost(ctx, "韓国語 文法", 0)
	require.NoError(t, err)
	assert.Equal(t, ts.URL+"/posts/42", resp.PostURL)
	assert.Contains(t, resp.HTML, "検索経由の本文")
}

func TestContentService_FetchPost_NoMatch(t *testing.T) {
	ctx := context.Background()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><p>検索結果なし</p></body></html>`)
	}))
	defer ts.Close()

	svc := newContentTestService(ts.URL)
	_, err := svc.FetchPost(ctx, "存在しないタイトル", 0)
	require.Error(t, err)
	var appErr *model.AppError
	require.ErrorAs(t, err, &appErr)
	assert.ErrorIs(t, appErr.Unwrap(), model.ErrNotFound)
}

func TestContentService_FetchPost_UpstreamError(t *testing.T) {
	ctx := context.Background()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	svc := newContentTestService(ts.URL)
	_, err := svc.FetchPost(ctx, "", 1)
	require.Error(t, err)
	var appErr *model.AppError
	require.ErrorAs(t, err, &appErr)
	assert.ErrorIs(t, appErr.Unwrap(), model.ErrUpstreamFetch)
}
