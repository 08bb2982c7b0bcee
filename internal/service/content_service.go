package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"gogaku_suite/internal/config"
	"gogaku_suite/internal/middleware"
	"gogaku_suite/internal/model"

	"github.com/PuerkitoBio/goquery"
)

// 記事本文の抽出に使うセレクタ。先頭から順に試し、最初に一致したものを使う。
var contentSelectors = []string{
	"div.entry-content",
	"div.post-content",
	"article .content",
	"article",
	"main",
}

type ContentService interface {
	FetchPost(ctx context.Context, title string, postID int) (*model.ContentResponse, error)
}

type contentService struct {
	client *http.Client
	cfg    *config.Config
}

func NewContentService(cfg *config.Config) ContentService {
	return &contentService{
		client: &http.Client{Timeout: 15 * time.Second},
		cfg:    cfg,
	}
}

// FetchPost はタイトル検索または記事IDで上流CMSの記事を取得し、
// 本文フラグメントを抽出して返します。抽出は best-effort で、
// どのセレクタにも一致しない場合は body 全体に落とす。
func (s *contentService) FetchPost(ctx context.Context, title string, postID int) (*model.ContentResponse, error) {
	logger := middleware.GetLogger(ctx)

	var postURL string
	if postID > 0 {
		postURL = fmt.Sprintf("%s/?p=%d", strings.TrimRight(s.cfg.Content.BaseURL, "/"), postID)
	} else {
		found, err := s.searchPostURL(ctx, title)
		if err != nil {
			return nil, err
		}
		postURL = found
	}

	doc, err := s.fetchDocument(ctx, postURL)
	if err != nil {
		logger.Warn("Failed to fetch upstream post", "error", err, "url", postURL)
		return nil, model.NewAppError("UPSTREAM_FETCH_FAILED", "記事の取得に失敗しました。", "", model.ErrUpstreamFetch)
	}

	pageTitle := strings.TrimSpace(doc.Find("title").First().Text())

	var fragment *goquery.Selection
	for _, selector := range contentSelectors {
		if sel := doc.Find(selector).First(); sel.Length() > 0 {
			fragment = sel
			break
		}
	}
	if fragment == nil {
		// テンプレート変更でセレクタが全滅した場合は body 全体を返す
		logger.Warn("No content selector matched, falling back to body", "url", postURL)
		fragment = doc.Find("body").First()
	}

	base, err := url.Parse(postURL)
	if err == nil {
		rewriteRelativeURLs(fragment, base)
	}

	html, err := fragment.Html()
	if err != nil {
		return nil, model.NewAppError("UPSTREAM_FETCH_FAILED", "記事の解析に失敗しました。", "", model.ErrUpstreamFetch)
	}

	return &model.ContentResponse{
		PostURL: postURL,
		Title:   pageTitle,
		HTML:    html,
	}, nil
}

// searchPostURL は固定カテゴリを対象にタイトル検索し、最初に一致した記事URLを返す
func (s *contentService) searchPostURL(ctx context.Context, title string) (string, error) {
	logger := middleware.GetLogger(ctx)

	searchURL := fmt.Sprintf("%s/?s=%s&cat=%d",
		strings.TrimRight(s.cfg.Content.BaseURL, "/"),
		url.QueryEscape(title),
		s.cfg.Content.CategoryID,
	)
	doc, err := s.fetchDocument(ctx, searchURL)
	if err != nil {
		logger.Warn("Failed to search upstream CMS", "error", err, "url", searchURL)
		return "", model.NewAppError("UPSTREAM_FETCH_FAILED", "記事の検索に失敗しました。", "", model.ErrUpstreamFetch)
	}

	var postURL string
	doc.Find("article a, h2.entry-title a, .post-title a").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, ok := sel.Attr("href")
		if !ok || href == "" {
			return true
		}
		postURL = href
		return false
	})
	if postURL == "" {
		return "", model.NewAppError("POST_NOT_FOUND", "該当する記事が見つかりません。", "title", model.ErrNotFound)
	}

	base, err := url.Parse(searchURL)
	if err == nil {
		if resolved, err := base.Parse(postURL); err == nil {
			postURL = resolved.String()
		}
	}
	return postURL, nil
}

func (s *contentService) fetchDocument(ctx context.Context, target string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("upstream returned status %d", resp.StatusCode)
	}
	return goquery.NewDocumentFromReader(resp.Body)
}

// rewriteRelativeURLs はフラグメント内の相対リンク・画像パスを絶対URLに書き換える
func rewriteRelativeURLs(fragment *goquery.Selection, base *url.URL) {
	rewrite := func(sel *goquery.Selection, attr string) {
		val, ok := sel.Attr(attr)
		if !ok || val == "" || strings.HasPrefix(val, "#") || strings.HasPrefix(val, "data:") {
			return
		}
		resolved, err := base.Parse(val)
		if err != nil {
			return
		}
		sel.SetAttr(attr, resolved.String())
	}
	fragment.Find("a[href]").Each(func(_ int, sel *goquery.Selection) { rewrite(sel, "href") })
	fragment.Find("img[src]").Each(func(_ int, sel *goquery.Selection) { rewrite(sel, "src") })
}
