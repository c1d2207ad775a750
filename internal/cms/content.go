package cms

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"khojstudio.pk/khoj-web/internal/api"
)

// ErrNotFound is returned when a content resource cannot be located.
var ErrNotFound = errors.New("cms: not found")

const defaultHomepageTTL = 5 * time.Minute

// Service caches backend-managed storefront copy and serves local
// markdown pages. Homepage copy is fetched through a shared anonymous
// API client since the content endpoints need no bearer.
type Service struct {
	client   *api.Client
	logger   *zap.Logger
	ttl      time.Duration
	pagesDir string

	mu       sync.RWMutex
	homepage api.HomepageContent
	expires  time.Time
	pages    map[string]pageCacheEntry
}

// NewService builds a content service. A nil logger is replaced with a
// no-op one and a non-positive ttl falls back to five minutes.
func NewService(client *api.Client, pagesDir string, ttl time.Duration, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = defaultHomepageTTL
	}
	return &Service{
		client:   client,
		logger:   logger,
		ttl:      ttl,
		pagesDir: pagesDir,
		pages:    make(map[string]pageCacheEntry),
	}
}

// Homepage returns landing-page copy with every blank field filled from
// the built-in defaults. Backend failures degrade to the defaults so the
// landing page always renders.
func (s *Service) Homepage(ctx context.Context) api.HomepageContent {
	s.mu.RLock()
	if time.Now().Before(s.expires) {
		cached := s.homepage
		s.mu.RUnlock()
		return cached
	}
	s.mu.RUnlock()

	fetched, err := s.client.Homepage(ctx)
	if err != nil {
		s.logger.Warn("homepage content fetch failed, serving defaults", zap.Error(err))
		return FallbackHomepage()
	}
	merged := mergeHomepage(fetched)

	s.mu.Lock()
	s.homepage = merged
	s.expires = time.Now().Add(s.ttl)
	s.mu.Unlock()
	return merged
}

// Invalidate drops the cached homepage copy. Called after an admin
// content update so the storefront reflects it immediately.
func (s *Service) Invalidate() {
	s.mu.Lock()
	s.expires = time.Time{}
	s.mu.Unlock()
}

// mergeHomepage overlays fetched copy onto the defaults field by field,
// so a partially configured backend never blanks out a section.
func mergeHomepage(in api.HomepageContent) api.HomepageContent {
	out := FallbackHomepage()
	overlay := func(dst *string, src string) {
		if src != "" {
			*dst = src
		}
	}
	overlay(&out.Hero.Image, in.Hero.Image)
	overlay(&out.Hero.Subtitle, in.Hero.Subtitle)
	overlay(&out.Hero.Title, in.Hero.Title)
	overlay(&out.Hero.Description, in.Hero.Description)
	overlay(&out.Hero.CTAText, in.Hero.CTAText)
	overlay(&out.Hero.CTAHref, in.Hero.CTAHref)
	overlay(&out.Lookbook.Image, in.Lookbook.Image)
	overlay(&out.Lookbook.Season, in.Lookbook.Season)
	overlay(&out.Lookbook.Title, in.Lookbook.Title)
	overlay(&out.Lookbook.CTAText, in.Lookbook.CTAText)
	overlay(&out.Lookbook.CTAHref, in.Lookbook.CTAHref)
	overlay(&out.Brand.Subtitle, in.Brand.Subtitle)
	overlay(&out.Brand.Title, in.Brand.Title)
	overlay(&out.Brand.Tagline, in.Brand.Tagline)
	overlay(&out.BackgroundColor, in.BackgroundColor)
	if len(in.CategoryImages) > 0 {
		out.CategoryImages = in.CategoryImages
	}
	return out
}
