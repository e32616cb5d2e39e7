package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/quizmint/qm-engine/internal/domain"
	"github.com/quizmint/qm-engine/internal/store/schema"
)

type pgStore struct {
	db *gorm.DB
}

// NewPGStore creates a new PostgreSQL store instance. The *gorm.DB must be
// opened with TranslateError enabled so unique-constraint violations map to
// gorm.ErrDuplicatedKey.
func NewPGStore(db *gorm.DB) Store {
	return &pgStore{db: db}
}

// AutoMigrate creates or updates the engine's tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&schema.Session{},
		&schema.Question{},
		&schema.Eligibility{},
		&schema.CatalogItem{},
		&schema.OwnedItem{},
		&schema.MintOperation{},
		&schema.ForgeOperation{},
		&schema.Season{},
		&schema.LeaderboardEntry{},
	)
}

// ConfigureConnectionPool configures the connection pool settings for a
// GORM database connection. Zero values fall back to defaults.
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if maxOpenConns == 0 {
		maxOpenConns = 20
	}
	if maxIdleConns == 0 {
		maxIdleConns = 5
	}
	if connMaxLifetime == 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 10 * time.Minute
	}
	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// =============================================================================
// Sessions
// =============================================================================

// UpsertSession inserts or refreshes a session row
func (s *pgStore) UpsertSession(ctx context.Context, session *schema.Session) error {
	session.UpdatedAt = time.Now()
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"status", "score", "perfect", "questions", "ended_at", "updated_at",
		}),
	}).Create(session).Error
}

// GetSession retrieves a session by id
func (s *pgStore) GetSession(ctx context.Context, id string) (*schema.Session, error) {
	var session schema.Session
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &session, nil
}

// =============================================================================
// Eligibilities
// =============================================================================

// CreateEligibility inserts a new eligibility. The partial unique index on
// (identity, category) WHERE status = 'active' backs the hard cap; a
// duplicate-key rejection reports created=false without error.
func (s *pgStore) CreateEligibility(ctx context.Context, e *schema.Eligibility) (bool, error) {
	err := s.db.WithContext(ctx).Create(e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, fmt.Errorf("failed to create eligibility: %w", err)
	}
	return true, nil
}

// GetEligibility retrieves an eligibility by id
func (s *pgStore) GetEligibility(ctx context.Context, id string) (*schema.Eligibility, error) {
	var e schema.Eligibility
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get eligibility: %w", err)
	}
	return &e, nil
}

// GetActiveEligibility retrieves the single active eligibility for the pair
func (s *pgStore) GetActiveEligibility(ctx context.Context, identityKey string, category domain.Category) (*schema.Eligibility, error) {
	var e schema.Eligibility
	err := s.db.WithContext(ctx).
		Where("identity_key = ? AND category = ? AND status = ?", identityKey, category, domain.EligibilityActive).
		First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get active eligibility: %w", err)
	}
	return &e, nil
}

// ListEligibilities pages an identity's eligibilities, newest first
func (s *pgStore) ListEligibilities(ctx context.Context, identityKey string, limit, offset int) ([]schema.Eligibility, error) {
	var out []schema.Eligibility
	err := s.db.WithContext(ctx).
		Where("identity_key = ?", identityKey).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list eligibilities: %w", err)
	}
	return out, nil
}

// CASEligibilityStatus atomically transitions status from -> to. The
// RowsAffected result is the single arbiter between the mint workflow
// (active -> used) and the expiry sweep (active -> expired).
func (s *pgStore) CASEligibilityStatus(ctx context.Context, id string, from, to domain.EligibilityStatus) (bool, error) {
	res := s.db.WithContext(ctx).Model(&schema.Eligibility{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{"status": to, "updated_at": time.Now()})
	if res.Error != nil {
		return false, fmt.Errorf("failed to transition eligibility status: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

// ListDueEligibilities returns active eligibilities with expiry <= now
func (s *pgStore) ListDueEligibilities(ctx context.Context, now time.Time, limit int) ([]schema.Eligibility, error) {
	var out []schema.Eligibility
	err := s.db.WithContext(ctx).
		Where("status = ? AND expires_at <= ?", domain.EligibilityActive, now).
		Order("expires_at ASC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list due eligibilities: %w", err)
	}
	return out, nil
}

// TransferEligibilities moves active, unexpired, in-window eligibilities
// from a guest key to a wallet key in one statement. Out-of-window rights
// stay behind and lapse on their own schedule, as do rights in categories
// where the wallet already holds an active eligibility: moving those would
// break the one-active-per-category cap.
func (s *pgStore) TransferEligibilities(ctx context.Context, guestKey, walletKey string, now time.Time, guestWindow time.Duration) (int64, error) {
	walletActive := s.db.Model(&schema.Eligibility{}).
		Select("category").
		Where("identity_key = ? AND status = ?", walletKey, domain.EligibilityActive)
	res := s.db.WithContext(ctx).Model(&schema.Eligibility{}).
		Where("identity_key = ? AND status = ? AND expires_at > ? AND created_at > ?",
			guestKey, domain.EligibilityActive, now, now.Add(-guestWindow)).
		Where("category NOT IN (?)", walletActive).
		Updates(map[string]interface{}{
			"identity_key":   walletKey,
			"identity_class": domain.ClassConnected,
			"updated_at":     now,
		})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to transfer eligibilities: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// =============================================================================
// Catalog
// =============================================================================

// ListUnmintedItems returns unminted catalog items for a category/tier
func (s *pgStore) ListUnmintedItems(ctx context.Context, category domain.Category, tier domain.Tier) ([]schema.CatalogItem, error) {
	var out []schema.CatalogItem
	q := s.db.WithContext(ctx).Where("minted = false AND tier = ?", tier)
	if category != "" {
		q = q.Where("category = ?", category)
	}
	if err := q.Order("id ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list unminted items: %w", err)
	}
	return out, nil
}

// GetCatalogItem retrieves a catalog item by id
func (s *pgStore) GetCatalogItem(ctx context.Context, id string) (*schema.CatalogItem, error) {
	var item schema.CatalogItem
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get catalog item: %w", err)
	}
	return &item, nil
}

// SetCatalogContentID records the pinned content id. The conditional WHERE
// keeps the first pin authoritative.
func (s *pgStore) SetCatalogContentID(ctx context.Context, id, contentID string) error {
	err := s.db.WithContext(ctx).Model(&schema.CatalogItem{}).
		Where("id = ? AND (content_id IS NULL OR content_id = '')", id).
		Update("content_id", contentID).Error
	if err != nil {
		return fmt.Errorf("failed to set content id: %w", err)
	}
	return nil
}

// CountUnminted counts remaining stock in a category
func (s *pgStore) CountUnminted(ctx context.Context, category domain.Category) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&schema.CatalogItem{}).
		Where("category = ? AND minted = false", category).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count unminted items: %w", err)
	}
	return n, nil
}

// =============================================================================
// Owned items
// =============================================================================

// ListOwnedItems returns an identity's unburned items
func (s *pgStore) ListOwnedItems(ctx context.Context, identityKey string) ([]schema.OwnedItem, error) {
	var out []schema.OwnedItem
	err := s.db.WithContext(ctx).
		Where("identity_key = ? AND burned = false", identityKey).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list owned items: %w", err)
	}
	return out, nil
}

// GetOwnedByTokenRefs returns the identity's unburned items matching refs
func (s *pgStore) GetOwnedByTokenRefs(ctx context.Context, identityKey string, refs []string) ([]schema.OwnedItem, error) {
	var out []schema.OwnedItem
	err := s.db.WithContext(ctx).
		Where("identity_key = ? AND burned = false AND token_ref IN ?", identityKey, refs).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get owned items by refs: %w", err)
	}
	return out, nil
}

// =============================================================================
// Mint operations
// =============================================================================

// CreateMintOperation opens a pending mint operation row
func (s *pgStore) CreateMintOperation(ctx context.Context, op *schema.MintOperation) error {
	if err := s.db.WithContext(ctx).Create(op).Error; err != nil {
		return fmt.Errorf("failed to create mint operation: %w", err)
	}
	return nil
}

// GetMintOperation retrieves a mint operation by id
func (s *pgStore) GetMintOperation(ctx context.Context, id string) (*schema.MintOperation, error) {
	var op schema.MintOperation
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&op).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get mint operation: %w", err)
	}
	return &op, nil
}

// SetMintSelection records the deterministically selected item
func (s *pgStore) SetMintSelection(ctx context.Context, id, catalogItemID string) error {
	return s.updateOperation(ctx, &schema.MintOperation{}, id, map[string]interface{}{
		"catalog_item_id": catalogItemID,
	})
}

// MarkMintSubmitted transitions pending -> mint_submitted with the tx ref
func (s *pgStore) MarkMintSubmitted(ctx context.Context, id, txRef string) error {
	return s.updateOperation(ctx, &schema.MintOperation{}, id, map[string]interface{}{
		"status":      domain.OperationMintSubmitted,
		"mint_tx_ref": txRef,
	})
}

// FailMintOperation drives a non-terminal operation to failed
func (s *pgStore) FailMintOperation(ctx context.Context, id string, kind domain.FailureKind, lastError string) error {
	return s.updateOperation(ctx, &schema.MintOperation{}, id, map[string]interface{}{
		"status":       domain.OperationFailed,
		"failure_kind": kind,
		"last_error":   lastError,
	})
}

// updateOperation updates a workflow operation row, refusing to mutate
// terminal states.
func (s *pgStore) updateOperation(ctx context.Context, model interface{}, id string, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	res := s.db.WithContext(ctx).Model(model).
		Where("id = ? AND status NOT IN ?", id, []domain.OperationStatus{domain.OperationConfirmed, domain.OperationFailed}).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to update operation: %w", res.Error)
	}
	return nil
}

// CommitMint is the single point where local state becomes authoritative
// for a mint. Everything runs in one transaction; a failure before this
// step leaves no trace of success anywhere in the durable store.
func (s *pgStore) CommitMint(ctx context.Context, commit MintCommit) error {
	now := time.Now()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Stock decrements exactly here, never at grant or selection time.
		res := tx.Model(&schema.CatalogItem{}).
			Where("id = ? AND minted = false", commit.CatalogItemID).
			Updates(map[string]interface{}{
				"minted":    true,
				"minted_at": now,
				"token_ref": commit.OwnedItem.TokenRef,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to mark catalog item minted: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.ErrNoStockAvailable
		}

		res = tx.Model(&schema.Eligibility{}).
			Where("id = ? AND status = ?", commit.EligibilityID, domain.EligibilityActive).
			Updates(map[string]interface{}{"status": domain.EligibilityUsed, "updated_at": now})
		if res.Error != nil {
			return fmt.Errorf("failed to consume eligibility: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			// Lost the status CAS, most likely to the expiry sweep.
			var e schema.Eligibility
			if err := tx.Where("id = ?", commit.EligibilityID).First(&e).Error; err != nil {
				return fmt.Errorf("eligibility vanished during commit: %w", err)
			}
			if e.Status == domain.EligibilityUsed {
				return domain.ErrEligibilityUsed
			}
			return domain.ErrEligibilityExpired
		}

		if err := tx.Create(commit.OwnedItem).Error; err != nil {
			return fmt.Errorf("failed to insert owned item: %w", err)
		}

		if err := bumpMintedCount(tx, commit.OwnedItem.SeasonID, commit.OwnedItem.IdentityKey, now); err != nil {
			return err
		}

		res = tx.Model(&schema.MintOperation{}).
			Where("id = ? AND status NOT IN ?", commit.OperationID,
				[]domain.OperationStatus{domain.OperationConfirmed, domain.OperationFailed}).
			Updates(map[string]interface{}{
				"status":        domain.OperationConfirmed,
				"owned_item_id": commit.OwnedItem.ID,
				"updated_at":    now,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to confirm mint operation: %w", res.Error)
		}
		return nil
	})
}

// bumpMintedCount increments the season's minted counter for an identity,
// creating the entry if the identity has not scored yet.
func bumpMintedCount(tx *gorm.DB, seasonID, identityKey string, now time.Time) error {
	res := tx.Model(&schema.LeaderboardEntry{}).
		Where("season_id = ? AND identity_key = ?", seasonID, identityKey).
		Updates(map[string]interface{}{
			"minted_count": gorm.Expr("minted_count + 1"),
			"updated_at":   now,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to bump minted count: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		entry := schema.LeaderboardEntry{
			SeasonID:      seasonID,
			IdentityKey:   identityKey,
			IdentityClass: domain.ClassConnected,
			MintedCount:   1,
			UpdatedAt:     now,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("failed to create leaderboard entry for mint: %w", err)
		}
	}
	return nil
}

// =============================================================================
// Forge operations
// =============================================================================

// CreateForgeOperation opens a pending forge operation row
func (s *pgStore) CreateForgeOperation(ctx context.Context, op *schema.ForgeOperation) error {
	if err := s.db.WithContext(ctx).Create(op).Error; err != nil {
		return fmt.Errorf("failed to create forge operation: %w", err)
	}
	return nil
}

// GetForgeOperation retrieves a forge operation by id
func (s *pgStore) GetForgeOperation(ctx context.Context, id string) (*schema.ForgeOperation, error) {
	var op schema.ForgeOperation
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&op).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get forge operation: %w", err)
	}
	return &op, nil
}

// MarkForgeBurnSubmitted transitions pending -> burn_submitted
func (s *pgStore) MarkForgeBurnSubmitted(ctx context.Context, id, txRef string) error {
	return s.updateOperation(ctx, &schema.ForgeOperation{}, id, map[string]interface{}{
		"status":      domain.OperationBurnSubmitted,
		"burn_tx_ref": txRef,
	})
}

// MarkForgeBurnConfirmed records the confirmed burn and flags the inputs
// burned in one transaction. The burn is an on-chain fact at this point;
// the local rows just catch up with it.
func (s *pgStore) MarkForgeBurnConfirmed(ctx context.Context, id string, inputRefs []string, at time.Time) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&schema.ForgeOperation{}).
			Where("id = ? AND status = ?", id, domain.OperationBurnSubmitted).
			Updates(map[string]interface{}{"status": domain.OperationBurnConfirmed, "updated_at": at})
		if res.Error != nil {
			return fmt.Errorf("failed to mark burn confirmed: %w", res.Error)
		}
		if err := tx.Model(&schema.OwnedItem{}).
			Where("token_ref IN ?", inputRefs).
			Updates(map[string]interface{}{"burned": true, "burned_at": at}).Error; err != nil {
			return fmt.Errorf("failed to mark inputs burned: %w", err)
		}
		return nil
	})
}

// MarkForgeMintSubmitted transitions burn_confirmed -> mint_submitted
func (s *pgStore) MarkForgeMintSubmitted(ctx context.Context, id, txRef string) error {
	return s.updateOperation(ctx, &schema.ForgeOperation{}, id, map[string]interface{}{
		"status":      domain.OperationMintSubmitted,
		"mint_tx_ref": txRef,
	})
}

// FailForgeOperation drives a non-terminal operation to failed
func (s *pgStore) FailForgeOperation(ctx context.Context, id string, kind domain.FailureKind, lastError string) error {
	return s.updateOperation(ctx, &schema.ForgeOperation{}, id, map[string]interface{}{
		"status":       domain.OperationFailed,
		"failure_kind": kind,
		"last_error":   lastError,
	})
}

// CommitForge finalizes a forge output in one transaction
func (s *pgStore) CommitForge(ctx context.Context, commit ForgeCommit) error {
	now := time.Now()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&schema.CatalogItem{}).
			Where("id = ? AND minted = false", commit.CatalogItemID).
			Updates(map[string]interface{}{
				"minted":    true,
				"minted_at": now,
				"token_ref": commit.OutputItem.TokenRef,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to mark forge output minted: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.ErrNoStockAvailable
		}

		if err := tx.Create(commit.OutputItem).Error; err != nil {
			return fmt.Errorf("failed to insert forged item: %w", err)
		}

		res = tx.Model(&schema.ForgeOperation{}).
			Where("id = ? AND status NOT IN ?", commit.OperationID,
				[]domain.OperationStatus{domain.OperationConfirmed, domain.OperationFailed}).
			Updates(map[string]interface{}{
				"status":         domain.OperationConfirmed,
				"output_item_id": commit.OutputItem.ID,
				"updated_at":     now,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to confirm forge operation: %w", res.Error)
		}
		return nil
	})
}

// =============================================================================
// Seasons
// =============================================================================

// GetCurrentSeason returns the season open at now
func (s *pgStore) GetCurrentSeason(ctx context.Context, now time.Time) (*schema.Season, error) {
	var season schema.Season
	err := s.db.WithContext(ctx).
		Where("starts_at <= ? AND ends_at > ?", now, now).
		Order("starts_at DESC").
		First(&season).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get current season: %w", err)
	}
	return &season, nil
}

// GetSeason retrieves a season by id
func (s *pgStore) GetSeason(ctx context.Context, id string) (*schema.Season, error) {
	var season schema.Season
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&season).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get season: %w", err)
	}
	return &season, nil
}

// GetLatestSeason returns the most recently started season
func (s *pgStore) GetLatestSeason(ctx context.Context) (*schema.Season, error) {
	var season schema.Season
	err := s.db.WithContext(ctx).Order("starts_at DESC").First(&season).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest season: %w", err)
	}
	return &season, nil
}

// CreateSeason opens a new season row
func (s *pgStore) CreateSeason(ctx context.Context, season *schema.Season) error {
	if err := s.db.WithContext(ctx).Create(season).Error; err != nil {
		return fmt.Errorf("failed to create season: %w", err)
	}
	return nil
}

// ListSeasonsDueForArchive returns unarchived seasons past end plus grace
func (s *pgStore) ListSeasonsDueForArchive(ctx context.Context, now time.Time) ([]schema.Season, error) {
	var out []schema.Season
	err := s.db.WithContext(ctx).
		Where("archived = false AND ends_at + grace_period * interval '1 nanosecond' <= ?", now).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list seasons due for archive: %w", err)
	}
	return out, nil
}

// ArchiveSeason marks a season archived
func (s *pgStore) ArchiveSeason(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Model(&schema.Season{}).
		Where("id = ?", id).
		Update("archived", true).Error
	if err != nil {
		return fmt.Errorf("failed to archive season: %w", err)
	}
	return nil
}

// =============================================================================
// Leaderboard
// =============================================================================

// ApplySessionScore upserts a season entry with one session's contribution.
// The row is locked while the running mean is recomputed; counters only
// ever grow.
func (s *pgStore) ApplySessionScore(ctx context.Context, update LeaderboardUpdate) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var entry schema.LeaderboardEntry
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("season_id = ? AND identity_key = ?", update.SeasonID, update.IdentityKey).
			First(&entry).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			entry = schema.LeaderboardEntry{
				SeasonID:      update.SeasonID,
				IdentityKey:   update.IdentityKey,
				IdentityClass: update.IdentityClass,
				Points:        update.Points,
				AvgResponseMS: update.AvgResponseMS,
				SessionsUsed:  1,
				UpdatedAt:     update.CompletedAt,
			}
			if update.Perfect {
				entry.PerfectCount = 1
				t := update.CompletedAt
				entry.FirstAchievementAt = &t
			}
			if err := tx.Create(&entry).Error; err != nil {
				return fmt.Errorf("failed to create leaderboard entry: %w", err)
			}
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to lock leaderboard entry: %w", err)
		}

		// Running mean over sessions used, recomputed under the row lock.
		newAvg := (entry.AvgResponseMS*entry.SessionsUsed + update.AvgResponseMS) / (entry.SessionsUsed + 1)

		updates := map[string]interface{}{
			"points":          entry.Points + update.Points,
			"avg_response_ms": newAvg,
			"sessions_used":   entry.SessionsUsed + 1,
			"identity_class":  update.IdentityClass,
			"updated_at":      update.CompletedAt,
		}
		if update.Perfect {
			updates["perfect_count"] = entry.PerfectCount + 1
			if entry.FirstAchievementAt == nil {
				updates["first_achievement_at"] = update.CompletedAt
			}
		}
		if err := tx.Model(&schema.LeaderboardEntry{}).
			Where("season_id = ? AND identity_key = ?", update.SeasonID, update.IdentityKey).
			Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update leaderboard entry: %w", err)
		}
		return nil
	})
}

// LeaderboardPage returns a page in the deterministic ranking order. The
// ORDER BY mirrors leaderboard.Less exactly; identity_key is the final
// tie-break so pagination is stable under re-query.
func (s *pgStore) LeaderboardPage(ctx context.Context, seasonID string, limit, offset int) ([]schema.LeaderboardEntry, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&schema.LeaderboardEntry{}).
		Where("season_id = ?", seasonID).
		Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count leaderboard entries: %w", err)
	}

	var out []schema.LeaderboardEntry
	err := s.db.WithContext(ctx).
		Where("season_id = ?", seasonID).
		Order("points DESC, minted_count DESC, perfect_count DESC, avg_response_ms ASC, sessions_used ASC, first_achievement_at ASC NULLS LAST, identity_key ASC").
		Limit(limit).Offset(offset).
		Find(&out).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to page leaderboard: %w", err)
	}
	return out, total, nil
}

// =============================================================================
// Questions
// =============================================================================

// SelectQuestions returns up to count questions in a category, favoring
// least-recently-served items and excluding ids already served to the
// caller today.
func (s *pgStore) SelectQuestions(ctx context.Context, category domain.Category, count int, excludeIDs []string) ([]schema.Question, error) {
	var out []schema.Question
	q := s.db.WithContext(ctx).Where("category = ?", category)
	if len(excludeIDs) > 0 {
		q = q.Where("id NOT IN ?", excludeIDs)
	}
	err := q.Order("last_served_at ASC NULLS FIRST, times_served ASC, id ASC").
		Limit(count).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to select questions: %w", err)
	}
	return out, nil
}

// MarkQuestionsServed bumps serve stats for dealt questions
func (s *pgStore) MarkQuestionsServed(ctx context.Context, ids []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).Model(&schema.Question{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{
			"times_served":   gorm.Expr("times_served + 1"),
			"last_served_at": at,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to mark questions served: %w", err)
	}
	return nil
}
