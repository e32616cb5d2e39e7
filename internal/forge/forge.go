// Package forge computes burn-and-mint readiness. Readiness is always
// derived live from unburned owned items, never cached, so transfers and
// concurrent forges are reflected immediately.
package forge

import (
	"context"
	"sort"

	"github.com/quizmint/qm-engine/internal/adapter"
	"github.com/quizmint/qm-engine/internal/domain"
	"github.com/quizmint/qm-engine/internal/store"
	"github.com/quizmint/qm-engine/internal/store/schema"
)

// Config holds the forge recipes.
type Config struct {
	// Categories is the full category set a master forge spans
	Categories []domain.Category
	// UltimateInputs is how many same-category items an ultimate consumes
	UltimateInputs int
	// SeasonalInputsPerCategory is how many items per active season
	// category a seasonal forge consumes
	SeasonalInputsPerCategory int
}

// Service computes readiness and selects forge inputs
type Service struct {
	store store.Store
	clock adapter.Clock
	cfg   Config
}

// NewService creates a forge service
func NewService(st store.Store, clock adapter.Clock, cfg Config) *Service {
	return &Service{store: st, clock: clock, cfg: cfg}
}

// Plan is a validated forge: the inputs to burn and the output to mint
type Plan struct {
	OutputTier     domain.Tier
	OutputCategory domain.Category
	SeasonID       string
	InputRefs      []string
}

// eligibleInputs returns the identity's unburned category-tier items,
// oldest first so forges consume the longest-held items deterministically.
func (s *Service) eligibleInputs(ctx context.Context, identityKey string) ([]schema.OwnedItem, error) {
	items, err := s.store.ListOwnedItems(ctx, identityKey)
	if err != nil {
		return nil, err
	}
	inputs := items[:0]
	for _, it := range items {
		if it.Tier == domain.TierCategory {
			inputs = append(inputs, it)
		}
	}
	sort.Slice(inputs, func(i, j int) bool {
		if !inputs[i].CreatedAt.Equal(inputs[j].CreatedAt) {
			return inputs[i].CreatedAt.Before(inputs[j].CreatedAt)
		}
		return inputs[i].ID < inputs[j].ID
	})
	return inputs, nil
}

func byCategory(items []schema.OwnedItem) map[domain.Category][]schema.OwnedItem {
	out := make(map[domain.Category][]schema.OwnedItem)
	for _, it := range items {
		out[it.Category] = append(out[it.Category], it)
	}
	return out
}

// Progress reports live readiness for every forge tier
func (s *Service) Progress(ctx context.Context, identityKey string) ([]domain.ForgeProgress, error) {
	inputs, err := s.eligibleInputs(ctx, identityKey)
	if err != nil {
		return nil, err
	}
	buckets := byCategory(inputs)

	counts := make(map[domain.Category]int, len(buckets))
	for cat, items := range buckets {
		counts[cat] = len(items)
	}

	var out []domain.ForgeProgress

	// Ultimate: best candidate category is the one closest to the recipe.
	var bestCat domain.Category
	best := -1
	for cat, n := range counts {
		if n > best || (n == best && (bestCat == "" || cat < bestCat)) {
			best, bestCat = n, cat
		}
	}
	ultimate := domain.ForgeProgress{
		Tier:     domain.TierUltimate,
		Required: s.cfg.UltimateInputs,
		Owned:    counts,
		Ready:    best >= s.cfg.UltimateInputs,
	}
	if bestCat != "" {
		ultimate.Category = &bestCat
	}
	out = append(out, ultimate)

	masterReady := len(s.cfg.Categories) > 0
	for _, cat := range s.cfg.Categories {
		if counts[cat] == 0 {
			masterReady = false
		}
	}
	out = append(out, domain.ForgeProgress{
		Tier:     domain.TierMaster,
		Required: len(s.cfg.Categories),
		Owned:    counts,
		Ready:    masterReady,
	})

	seasonal := domain.ForgeProgress{
		Tier:     domain.TierSeasonal,
		Required: s.cfg.SeasonalInputsPerCategory,
		Owned:    counts,
	}
	season, err := s.forgeableSeason(ctx)
	if err != nil {
		return nil, err
	}
	if season != nil {
		id := season.ID
		seasonal.SeasonID = &id
		seasonal.Ready = true
		for _, cat := range season.Categories.Data() {
			if counts[cat] < s.cfg.SeasonalInputsPerCategory {
				seasonal.Ready = false
			}
		}
	}
	out = append(out, seasonal)

	return out, nil
}

// forgeableSeason returns the season whose seasonal forge is currently
// open: the active season, or the latest one still inside its grace
// window.
func (s *Service) forgeableSeason(ctx context.Context) (*schema.Season, error) {
	now := s.clock.Now()
	season, err := s.store.GetCurrentSeason(ctx, now)
	if err != nil {
		return nil, err
	}
	if season != nil {
		return season, nil
	}
	latest, err := s.store.GetLatestSeason(ctx)
	if err != nil {
		return nil, err
	}
	if latest != nil && latest.InGraceAt(now) {
		return latest, nil
	}
	return nil, nil
}

// PlanUltimate validates and selects inputs for an ultimate forge in the
// given category.
func (s *Service) PlanUltimate(ctx context.Context, identityKey string, category domain.Category) (*Plan, error) {
	inputs, err := s.eligibleInputs(ctx, identityKey)
	if err != nil {
		return nil, err
	}
	var refs []string
	for _, it := range inputs {
		if it.Category == category {
			refs = append(refs, it.TokenRef)
			if len(refs) == s.cfg.UltimateInputs {
				break
			}
		}
	}
	if len(refs) < s.cfg.UltimateInputs {
		return nil, domain.ErrForgeNotReady
	}
	return &Plan{
		OutputTier:     domain.TierUltimate,
		OutputCategory: category,
		InputRefs:      refs,
	}, nil
}

// PlanMaster validates and selects inputs for a master forge: one item
// from each configured category.
func (s *Service) PlanMaster(ctx context.Context, identityKey string) (*Plan, error) {
	if len(s.cfg.Categories) == 0 {
		return nil, domain.ErrForgeNotReady
	}
	inputs, err := s.eligibleInputs(ctx, identityKey)
	if err != nil {
		return nil, err
	}
	buckets := byCategory(inputs)

	refs := make([]string, 0, len(s.cfg.Categories))
	for _, cat := range s.cfg.Categories {
		items := buckets[cat]
		if len(items) == 0 {
			return nil, domain.ErrForgeNotReady
		}
		refs = append(refs, items[0].TokenRef)
	}
	return &Plan{
		OutputTier: domain.TierMaster,
		InputRefs:  refs,
	}, nil
}

// PlanSeasonal validates and selects inputs for a seasonal forge. Allowed
// during the season or its grace window only.
func (s *Service) PlanSeasonal(ctx context.Context, identityKey string) (*Plan, error) {
	season, err := s.forgeableSeason(ctx)
	if err != nil {
		return nil, err
	}
	if season == nil {
		return nil, domain.ErrSeasonClosed
	}

	inputs, err := s.eligibleInputs(ctx, identityKey)
	if err != nil {
		return nil, err
	}
	buckets := byCategory(inputs)

	var refs []string
	for _, cat := range season.Categories.Data() {
		items := buckets[cat]
		if len(items) < s.cfg.SeasonalInputsPerCategory {
			return nil, domain.ErrForgeNotReady
		}
		for i := 0; i < s.cfg.SeasonalInputsPerCategory; i++ {
			refs = append(refs, items[i].TokenRef)
		}
	}
	if len(refs) == 0 {
		return nil, domain.ErrForgeNotReady
	}
	return &Plan{
		OutputTier: domain.TierSeasonal,
		SeasonID:   season.ID,
		InputRefs:  refs,
	}, nil
}
