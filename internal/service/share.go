package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/thepenbook/backend/internal/pkg/cache"
	"github.com/thepenbook/backend/internal/pkg/htmltext"
	"github.com/thepenbook/backend/internal/pkg/sharecard"
	"k8s.io/klog/v2"
)

// SnippetLength 分享卡片摘要最大字符数
const SnippetLength = 180

const cardCacheTTL = 24 * time.Hour

// ShareInfo 分享链接信息
type ShareInfo struct {
	ShareURL string `json:"share_url"`
	Title    string `json:"title"`
	Text     string `json:"text"`
	Author   string `json:"author"`
	CardURL  string `json:"card_url"`
}

type ShareOptions struct {
	PublicURL string
	SiteName  string
	Accent    string
}

type ShareService struct {
	writings *WritingService
	settings *SettingService
	store    cache.Store
	opts     ShareOptions
	// 签名变化时整体失效，缓存键带上代数
	gen atomic.Uint64
}

func NewShareService(writings *WritingService, settings *SettingService, store cache.Store, opts ShareOptions) *ShareService {
	if opts.Accent == "" {
		opts.Accent = sharecard.DefaultAccent
	}
	opts.PublicURL = strings.TrimRight(opts.PublicURL, "/")
	return &ShareService{writings: writings, settings: settings, store: store, opts: opts}
}

func (s *ShareService) Info(ctx context.Context, slug string) (*ShareInfo, error) {
	card, err := s.card(ctx, slug)
	if err != nil {
		return nil, err
	}
	return &ShareInfo{
		ShareURL: card.ShareURL,
		Title:    card.Title,
		Text:     card.Snippet,
		Author:   card.Author,
		CardURL:  "/api/share/" + slug + "/card.png",
	}, nil
}

// CardPNG 返回分享卡片 PNG，优先读缓存
func (s *ShareService) CardPNG(ctx context.Context, slug string) ([]byte, error) {
	key := s.cacheKey(slug)
	if data, ok, err := s.store.Get(ctx, key); err != nil {
		klog.Warningf("读取卡片缓存失败: slug=%s, err=%v", slug, err)
	} else if ok {
		return data, nil
	}

	card, err := s.card(ctx, slug)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := sharecard.EncodePNG(&buf, *card); err != nil {
		return nil, fmt.Errorf("render share card: %w", err)
	}
	if err := s.store.Set(ctx, key, buf.Bytes(), cardCacheTTL); err != nil {
		klog.Warningf("写入卡片缓存失败: slug=%s, err=%v", slug, err)
	}
	klog.V(6).Infof("分享卡片已生成: slug=%s, size=%d", slug, buf.Len())
	return buf.Bytes(), nil
}

// Invalidate 清除单个作品的卡片缓存
func (s *ShareService) Invalidate(ctx context.Context, slug string) error {
	if slug == "" {
		return nil
	}
	return s.store.Delete(ctx, s.cacheKey(slug))
}

// InvalidateAll 使所有卡片缓存失效并删除上一代的卡片；
// 代数先递增，之后生成的卡片不会再写入旧前缀
func (s *ShareService) InvalidateAll(ctx context.Context) error {
	old := s.gen.Add(1) - 1
	n, err := s.store.DeletePrefix(ctx, cardKeyPrefix(old))
	if err != nil {
		return fmt.Errorf("delete share cards of generation %d: %w", old, err)
	}
	klog.V(6).Infof("分享卡片缓存已失效: generation=%d, deleted=%d", old, n)
	return nil
}

func (s *ShareService) cacheKey(slug string) string {
	return cardKeyPrefix(s.gen.Load()) + slug
}

func cardKeyPrefix(gen uint64) string {
	return fmt.Sprintf("sharecard:%d:", gen)
}

func (s *ShareService) card(ctx context.Context, slug string) (*sharecard.Card, error) {
	w, err := s.writings.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !w.Published {
		return nil, ErrWritingNotFound
	}
	author, err := s.settings.Signature(ctx)
	if err != nil {
		return nil, err
	}
	if author == "" {
		author = s.opts.SiteName
	}
	accent := s.opts.Accent
	if w.ColorTag != nil && *w.ColorTag != "" {
		accent = *w.ColorTag
	}
	return &sharecard.Card{
		Title:    w.Title,
		Snippet:  htmltext.Snippet(w.Content, SnippetLength),
		Author:   author,
		Accent:   accent,
		ShareURL: s.opts.PublicURL + "/" + w.Slug,
		Brand:    s.opts.SiteName,
	}, nil
}
