package catalog

import (
	"context"
	"hash/fnv"

	"github.com/quizmint/qm-engine/internal/domain"
	"github.com/quizmint/qm-engine/internal/store"
	"github.com/quizmint/qm-engine/internal/store/schema"
)

// Selector picks the catalog item a mint attempt targets. Selection is
// rendezvous hashing keyed on (eligibilityID, itemID): deterministic for a
// given eligibility over a given stock set, so workflow retries re-derive
// the same pick, while concurrent mints with different eligibilities spread
// across stock instead of racing for one item.
type Selector struct {
	store store.Store
}

// NewSelector creates a catalog selector over the durable store
func NewSelector(st store.Store) *Selector {
	return &Selector{store: st}
}

// Pick returns the item the eligibility maps to among current unminted
// stock, or domain.ErrNoStockAvailable.
func (s *Selector) Pick(ctx context.Context, eligibilityID string, category domain.Category, tier domain.Tier) (*schema.CatalogItem, error) {
	items, err := s.store.ListUnmintedItems(ctx, category, tier)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, domain.ErrNoStockAvailable
	}

	best := 0
	bestScore := rendezvousScore(eligibilityID, items[0].ID)
	for i := 1; i < len(items); i++ {
		if score := rendezvousScore(eligibilityID, items[i].ID); score > bestScore {
			best, bestScore = i, score
		}
	}
	return &items[best], nil
}

// rendezvousScore hashes the (seed, item) pair; the highest score wins.
func rendezvousScore(seed, itemID string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(seed))
	h.Write([]byte{0})
	h.Write([]byte(itemID))
	return h.Sum64()
}
