package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"tartanmarket/internal/domain"
)

// SearchService runs the naive cross-kind search: fetch a bounded window of
// each item kind, substring-match in memory, merge, and sort newest first.
type SearchService struct {
	mpItems   domain.MarketplaceItemRepository
	commItems domain.CommissionItemRepository

	// fetchLimit bounds how many rows of each kind back one search.
	fetchLimit int
}

func NewSearchService(mpItems domain.MarketplaceItemRepository, commItems domain.CommissionItemRepository, fetchLimit int) *SearchService {
	if fetchLimit <= 0 {
		fetchLimit = 40
	}
	return &SearchService{
		mpItems:    mpItems,
		commItems:  commItems,
		fetchLimit: fetchLimit,
	}
}

// ItemSummary is the flattened listing card used for search results,
// similar-item rails, and favorite lists.
type ItemSummary struct {
	Ref            domain.ItemRef `json:"ref"`
	CompositeID    string         `json:"composite_id"`
	SellerID       string         `json:"seller_id"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	Price          float64        `json:"price"`
	Category       string         `json:"category"`
	Tags           []string       `json:"tags"`
	Images         []string       `json:"images"`
	Available      bool           `json:"available"`
	TurnaroundDays int            `json:"turnaround_days,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}

func summarizeMarketplace(it *domain.MarketplaceItem) ItemSummary {
	ref := domain.ItemRef{Kind: domain.ItemKindMarketplace, ID: it.ID}
	return ItemSummary{
		Ref:         ref,
		CompositeID: ref.String(),
		SellerID:    it.SellerID,
		Title:       it.Title,
		Description: it.Description,
		Price:       it.Price,
		Category:    it.Category,
		Tags:        it.Tags,
		Images:      it.Images,
		Available:   it.Status == domain.ItemStatusAvailable,
		CreatedAt:   it.CreatedAt,
	}
}

func summarizeCommission(it *domain.CommissionItem) ItemSummary {
	ref := domain.ItemRef{Kind: domain.ItemKindCommission, ID: it.ID}
	return ItemSummary{
		Ref:            ref,
		CompositeID:    ref.String(),
		SellerID:       it.SellerID,
		Title:          it.Title,
		Description:    it.Description,
		Price:          it.Price,
		Category:       it.Category,
		Tags:           it.Tags,
		Images:         it.Images,
		Available:      it.IsAvailable,
		TurnaroundDays: it.TurnaroundDays,
		CreatedAt:      it.CreatedAt,
	}
}

// SearchItems matches the query case-insensitively against title,
// description, and tags of both item kinds, merges the hits, and returns
// them sorted by creation time descending, truncated to limit.
func (s *SearchService) SearchItems(ctx context.Context, query string, f domain.ItemFilter, limit int) ([]ItemSummary, error) {
	f.Limit = s.fetchLimit

	mp, err := s.mpItems.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("search marketplace items: %w", err)
	}
	comm, err := s.commItems.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("search commission items: %w", err)
	}

	q := strings.ToLower(strings.TrimSpace(query))
	var results []ItemSummary
	for _, it := range mp {
		if matchesQuery(q, it.Title, it.Description, it.Tags) {
			results = append(results, summarizeMarketplace(it))
		}
	}
	for _, it := range comm {
		if matchesQuery(q, it.Title, it.Description, it.Tags) {
			results = append(results, summarizeCommission(it))
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// SimilarItems scores available items of the same kind by shared tag count,
// breaking ties by recency. The source item itself is excluded.
func (s *SearchService) SimilarItems(ctx context.Context, ref domain.ItemRef, limit int) ([]ItemSummary, error) {
	if limit <= 0 {
		limit = 8
	}

	var baseTags []string
	var candidates []ItemSummary

	switch ref.Kind {
	case domain.ItemKindMarketplace:
		base, err := s.mpItems.GetByID(ctx, ref.ID)
		if err != nil {
			return nil, err
		}
		if base == nil {
			return nil, domain.ErrNotFound
		}
		baseTags = base.Tags
		items, err := s.mpItems.List(ctx, domain.ItemFilter{Limit: s.fetchLimit})
		if err != nil {
			return nil, err
		}
		for _, it := range items {
			if it.ID == ref.ID {
				continue
			}
			candidates = append(candidates, summarizeMarketplace(it))
		}
	case domain.ItemKindCommission:
		base, err := s.commItems.GetByID(ctx, ref.ID)
		if err != nil {
			return nil, err
		}
		if base == nil {
			return nil, domain.ErrNotFound
		}
		baseTags = base.Tags
		items, err := s.commItems.List(ctx, domain.ItemFilter{Limit: s.fetchLimit})
		if err != nil {
			return nil, err
		}
		for _, it := range items {
			if it.ID == ref.ID {
				continue
			}
			candidates = append(candidates, summarizeCommission(it))
		}
	default:
		return nil, fmt.Errorf("%w: unknown item kind %q", domain.ErrInvalidInput, ref.Kind)
	}

	scores := make(map[string]int, len(candidates))
	for _, c := range candidates {
		scores[c.CompositeID] = sharedTags(baseTags, c.Tags)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		si, sj := scores[candidates[i].CompositeID], scores[candidates[j].CompositeID]
		if si != sj {
			return si > sj
		}
		return candidates[i].CreatedAt.After(candidates[j].CreatedAt)
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}

func matchesQuery(q string, title, description string, tags []string) bool {
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(title), q) {
		return true
	}
	if strings.Contains(strings.ToLower(description), q) {
		return true
	}
	for _, tag := range tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

func sharedTags(a, b []string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(a))
	for _, t := range a {
		set[strings.ToLower(t)] = struct{}{}
	}
	count := 0
	for _, t := range b {
		if _, ok := set[strings.ToLower(t)]; ok {
			count++
		}
	}
	return count
}
