package store

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/datatypes"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/quizmint/qm-engine/internal/domain"
	"github.com/quizmint/qm-engine/internal/store/schema"
)

var (
	testDB      *gorm.DB
	pgContainer *postgres.PostgresContainer
)

// TestMain sets up the test database before running tests
func TestMain(m *testing.M) {
	ctx := context.Background()

	// Check if we should use an external database (for CI or local development)
	dbHost := os.Getenv("TEST_DB_HOST")
	dbPort := os.Getenv("TEST_DB_PORT")
	dbUser := os.Getenv("TEST_DB_USER")
	dbPassword := os.Getenv("TEST_DB_PASSWORD")
	dbName := os.Getenv("TEST_DB_NAME")

	var dsn string
	var err error

	if dbHost != "" {
		if dbPort == "" {
			dbPort = "5432"
		}
		if dbUser == "" {
			dbUser = "postgres"
		}
		if dbPassword == "" {
			dbPassword = "postgres"
		}
		if dbName == "" {
			dbName = "test_db"
		}

		dsn = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			dbHost, dbPort, dbUser, dbPassword, dbName)

		fmt.Printf("Using external database: %s:%s/%s\n", dbHost, dbPort, dbName)
	} else {
		pgContainer, err = postgres.Run(ctx,
			"postgres:18-alpine",
			postgres.WithDatabase("test_db"),
			postgres.WithUsername("postgres"),
			postgres.WithPassword("postgres"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(30*time.Second)),
		)
		if err != nil {
			fmt.Printf("Failed to start PostgreSQL container: %v\n", err)
			os.Exit(1)
		}

		dsn, err = pgContainer.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			fmt.Printf("Failed to get connection string: %v\n", err)
			terminateContainer(ctx)
			os.Exit(1)
		}

		fmt.Printf("Started PostgreSQL container\n")
	}

	// TranslateError maps unique violations to gorm.ErrDuplicatedKey, which
	// CreateEligibility relies on.
	testDB, err = gorm.Open(pgdriver.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		fmt.Printf("Failed to connect to database: %v\n", err)
		terminateContainer(ctx)
		os.Exit(1)
	}

	if err := AutoMigrate(testDB); err != nil {
		fmt.Printf("Failed to migrate database: %v\n", err)
		terminateContainer(ctx)
		os.Exit(1)
	}

	code := m.Run()

	terminateContainer(ctx)
	os.Exit(code)
}

func terminateContainer(ctx context.Context) {
	if pgContainer != nil {
		if err := pgContainer.Terminate(ctx); err != nil {
			fmt.Printf("Failed to terminate PostgreSQL container: %v\n", err)
		}
	}
}

// initPGTestDB returns a store isolated in a transaction that rolls back
// when the test finishes.
func initPGTestDB(t *testing.T) Store {
	tx := testDB.Begin()
	require.NotNil(t, tx)
	require.NoError(t, tx.Error)

	t.Cleanup(func() {
		tx.Rollback()
	})

	return NewPGStore(tx)
}

func seedEligibility(t *testing.T, st Store, id, identityKey string, category domain.Category, expiresAt time.Time) *schema.Eligibility {
	e := &schema.Eligibility{
		ID:            id,
		IdentityKey:   identityKey,
		IdentityClass: domain.ClassConnected,
		Category:      category,
		SeasonID:      "season-1",
		Status:        domain.EligibilityActive,
		SessionID:     "session-1",
		ExpiresAt:     expiresAt,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	created, err := st.CreateEligibility(context.Background(), e)
	require.NoError(t, err)
	require.True(t, created)
	return e
}

func seedCatalogItem(t *testing.T, st Store, id string, category domain.Category, tier domain.Tier) *schema.CatalogItem {
	item := &schema.CatalogItem{
		ID:        id,
		Category:  category,
		Tier:      tier,
		Name:      "Design " + id,
		Metadata:  datatypes.JSON(`{"name":"Design"}`),
		CreatedAt: time.Now(),
	}
	require.NoError(t, st.(*pgStore).db.Create(item).Error)
	return item
}

func TestSessionUpsert(t *testing.T) {
	st := initPGTestDB(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Millisecond)
	session := &schema.Session{
		ID:            "sess-1",
		IdentityKey:   "0xwallet",
		IdentityClass: domain.ClassConnected,
		Category:      "science",
		SeasonID:      "season-1",
		Status:        domain.SessionActive,
		Total:         3,
		Questions: datatypes.NewJSONType([]schema.QuestionEntry{
			{QuestionID: "q1", ServedAt: now, Deadline: now.Add(30 * time.Second)},
		}),
		StartedAt: now,
	}
	require.NoError(t, st.UpsertSession(ctx, session))

	// A second upsert with the same id refreshes the mutable columns.
	session.Status = domain.SessionWon
	session.Score = 3
	session.Perfect = true
	ended := now.Add(time.Minute)
	session.EndedAt = &ended
	require.NoError(t, st.UpsertSession(ctx, session))

	got, err := st.GetSession(ctx, "sess-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, domain.SessionWon, got.Status)
	assert.Equal(t, 3, got.Score)
	assert.True(t, got.Perfect)
	assert.NotNil(t, got.EndedAt)
}

func TestGetSession_Missing(t *testing.T) {
	st := initPGTestDB(t)

	got, err := st.GetSession(context.Background(), "no-such-session")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestEligibilityActiveCap(t *testing.T) {
	st := initPGTestDB(t)
	ctx := context.Background()

	expires := time.Now().Add(time.Hour)
	seedEligibility(t, st, "elig-1", "0xwallet", "science", expires)

	// The partial unique index rejects a second active right in the same
	// category without surfacing an error.
	dup := &schema.Eligibility{
		ID:            "elig-2",
		IdentityKey:   "0xwallet",
		IdentityClass: domain.ClassConnected,
		Category:      "science",
		SeasonID:      "season-1",
		Status:        domain.EligibilityActive,
		SessionID:     "session-2",
		ExpiresAt:     expires,
	}
	created, err := st.CreateEligibility(ctx, dup)
	require.NoError(t, err)
	assert.False(t, created)

	// A different category is a different cap bucket.
	seedEligibility(t, st, "elig-3", "0xwallet", "history", expires)

	// Consuming the first right frees the bucket.
	ok, err := st.CASEligibilityStatus(ctx, "elig-1", domain.EligibilityActive, domain.EligibilityUsed)
	require.NoError(t, err)
	require.True(t, ok)

	created, err = st.CreateEligibility(ctx, dup)
	require.NoError(t, err)
	assert.True(t, created)
}

func TestCASEligibilityStatus_SingleWinner(t *testing.T) {
	st := initPGTestDB(t)
	ctx := context.Background()

	seedEligibility(t, st, "elig-1", "0xwallet", "science", time.Now().Add(time.Hour))

	ok, err := st.CASEligibilityStatus(ctx, "elig-1", domain.EligibilityActive, domain.EligibilityExpired)
	require.NoError(t, err)
	assert.True(t, ok)

	// The losing transition sees zero rows affected.
	ok, err = st.CASEligibilityStatus(ctx, "elig-1", domain.EligibilityActive, domain.EligibilityUsed)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := st.GetEligibility(ctx, "elig-1")
	require.NoError(t, err)
	assert.Equal(t, domain.EligibilityExpired, got.Status)
}

func TestListDueEligibilities(t *testing.T) {
	st := initPGTestDB(t)
	ctx := context.Background()

	now := time.Now()
	seedEligibility(t, st, "elig-due", "0xa", "science", now.Add(-time.Minute))
	seedEligibility(t, st, "elig-live", "0xb", "science", now.Add(time.Hour))

	due, err := st.ListDueEligibilities(ctx, now, 10)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "elig-due", due[0].ID)
}

func TestTransferEligibilities(t *testing.T) {
	st := initPGTestDB(t)
	ctx := context.Background()

	now := time.Now()
	guestWindow := 25 * time.Minute

	seedEligibility(t, st, "elig-in", "guest-1", "science", now.Add(time.Hour))

	// An old grant is outside the guest window and stays behind.
	old := &schema.Eligibility{
		ID:            "elig-old",
		IdentityKey:   "guest-1",
		IdentityClass: domain.ClassGuest,
		Category:      "history",
		SeasonID:      "season-1",
		Status:        domain.EligibilityActive,
		SessionID:     "session-0",
		ExpiresAt:     now.Add(time.Hour),
		CreatedAt:     now.Add(-time.Hour),
	}
	created, err := st.CreateEligibility(ctx, old)
	require.NoError(t, err)
	require.True(t, created)

	moved, err := st.TransferEligibilities(ctx, "guest-1", "0xwallet", now, guestWindow)
	require.NoError(t, err)
	assert.Equal(t, int64(1), moved)

	got, err := st.GetEligibility(ctx, "elig-in")
	require.NoError(t, err)
	assert.Equal(t, "0xwallet", got.IdentityKey)
	assert.Equal(t, domain.ClassConnected, got.IdentityClass)

	got, err = st.GetEligibility(ctx, "elig-old")
	require.NoError(t, err)
	assert.Equal(t, "guest-1", got.IdentityKey)
}

func TestTransferEligibilities_SkipsWalletActiveCategories(t *testing.T) {
	st := initPGTestDB(t)
	ctx := context.Background()

	now := time.Now()
	guestWindow := 25 * time.Minute

	// The wallet already holds an active science right; moving the guest's
	// science right would collide with the active cap.
	seedEligibility(t, st, "elig-wallet", "0xwallet", "science", now.Add(time.Hour))
	seedEligibility(t, st, "elig-guest-sci", "guest-1", "science", now.Add(time.Hour))
	seedEligibility(t, st, "elig-guest-his", "guest-1", "history", now.Add(time.Hour))

	moved, err := st.TransferEligibilities(ctx, "guest-1", "0xwallet", now, guestWindow)
	require.NoError(t, err)
	assert.Equal(t, int64(1), moved)

	got, err := st.GetEligibility(ctx, "elig-guest-his")
	require.NoError(t, err)
	assert.Equal(t, "0xwallet", got.IdentityKey)

	// The colliding right stays with the guest and lapses on its own.
	got, err = st.GetEligibility(ctx, "elig-guest-sci")
	require.NoError(t, err)
	assert.Equal(t, "guest-1", got.IdentityKey)
	assert.Equal(t, domain.EligibilityActive, got.Status)
}

func TestSetCatalogContentID_FirstPinWins(t *testing.T) {
	st := initPGTestDB(t)
	ctx := context.Background()

	seedCatalogItem(t, st, "item-1", "science", domain.TierCategory)

	require.NoError(t, st.SetCatalogContentID(ctx, "item-1", "bafy-first"))
	require.NoError(t, st.SetCatalogContentID(ctx, "item-1", "bafy-second"))

	got, err := st.GetCatalogItem(ctx, "item-1")
	require.NoError(t, err)
	assert.Equal(t, "bafy-first", got.ContentID)
}

func TestCommitMint(t *testing.T) {
	st := initPGTestDB(t)
	ctx := context.Background()

	seedCatalogItem(t, st, "item-1", "science", domain.TierCategory)
	seedEligibility(t, st, "elig-1", "0xwallet", "science", time.Now().Add(time.Hour))
	require.NoError(t, st.CreateMintOperation(ctx, &schema.MintOperation{
		ID:            "op-1",
		EligibilityID: "elig-1",
		IdentityKey:   "0xwallet",
		Category:      "science",
		Status:        domain.OperationMintSubmitted,
	}))

	err := st.CommitMint(ctx, MintCommit{
		OperationID:   "op-1",
		EligibilityID: "elig-1",
		CatalogItemID: "item-1",
		OwnedItem: &schema.OwnedItem{
			ID:            "owned-1",
			IdentityKey:   "0xwallet",
			CatalogItemID: "item-1",
			Category:      "science",
			Tier:          domain.TierCategory,
			Provenance:    domain.ProvenanceMinted,
			SeasonID:      "season-1",
			TokenRef:      "qm:42",
		},
	})
	require.NoError(t, err)

	item, err := st.GetCatalogItem(ctx, "item-1")
	require.NoError(t, err)
	assert.True(t, item.Minted)
	assert.Equal(t, "qm:42", item.TokenRef)

	elig, err := st.GetEligibility(ctx, "elig-1")
	require.NoError(t, err)
	assert.Equal(t, domain.EligibilityUsed, elig.Status)

	owned, err := st.ListOwnedItems(ctx, "0xwallet")
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, "qm:42", owned[0].TokenRef)

	op, err := st.GetMintOperation(ctx, "op-1")
	require.NoError(t, err)
	assert.Equal(t, domain.OperationConfirmed, op.Status)
	assert.Equal(t, "owned-1", op.OwnedItemID)

	entries, total, err := st.LeaderboardPage(ctx, "season-1", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, int64(1), entries[0].MintedCount)
}

func TestCommitMint_NoStock(t *testing.T) {
	st := initPGTestDB(t)
	ctx := context.Background()

	item := seedCatalogItem(t, st, "item-1", "science", domain.TierCategory)
	now := time.Now()
	require.NoError(t, st.(*pgStore).db.Model(item).
		Updates(map[string]interface{}{"minted": true, "minted_at": now}).Error)
	seedEligibility(t, st, "elig-1", "0xwallet", "science", now.Add(time.Hour))

	err := st.CommitMint(ctx, MintCommit{
		OperationID:   "op-1",
		EligibilityID: "elig-1",
		CatalogItemID: "item-1",
		OwnedItem:     &schema.OwnedItem{ID: "owned-1", IdentityKey: "0xwallet", CatalogItemID: "item-1", Category: "science", Tier: domain.TierCategory, Provenance: domain.ProvenanceMinted, SeasonID: "season-1", TokenRef: "qm:42"},
	})
	assert.ErrorIs(t, err, domain.ErrNoStockAvailable)

	// The rejected commit leaves the eligibility untouched.
	elig, err := st.GetEligibility(ctx, "elig-1")
	require.NoError(t, err)
	assert.Equal(t, domain.EligibilityActive, elig.Status)
}

func TestCommitMint_EligibilityLost(t *testing.T) {
	st := initPGTestDB(t)
	ctx := context.Background()

	seedCatalogItem(t, st, "item-1", "science", domain.TierCategory)
	seedEligibility(t, st, "elig-1", "0xwallet", "science", time.Now().Add(time.Hour))
	ok, err := st.CASEligibilityStatus(ctx, "elig-1", domain.EligibilityActive, domain.EligibilityExpired)
	require.NoError(t, err)
	require.True(t, ok)

	commit := MintCommit{
		OperationID:   "op-1",
		EligibilityID: "elig-1",
		CatalogItemID: "item-1",
		OwnedItem:     &schema.OwnedItem{ID: "owned-1", IdentityKey: "0xwallet", CatalogItemID: "item-1", Category: "science", Tier: domain.TierCategory, Provenance: domain.ProvenanceMinted, SeasonID: "season-1", TokenRef: "qm:42"},
	}
	assert.ErrorIs(t, st.CommitMint(ctx, commit), domain.ErrEligibilityExpired)

	// The whole transaction rolled back: the item is still unminted.
	item, err := st.GetCatalogItem(ctx, "item-1")
	require.NoError(t, err)
	assert.False(t, item.Minted)
}

func TestMarkForgeBurnConfirmed(t *testing.T) {
	st := initPGTestDB(t)
	ctx := context.Background()

	for i, ref := range []string{"qm:1", "qm:2", "qm:3"} {
		require.NoError(t, st.(*pgStore).db.Create(&schema.OwnedItem{
			ID:            fmt.Sprintf("owned-%d", i),
			IdentityKey:   "0xwallet",
			CatalogItemID: fmt.Sprintf("item-%d", i),
			Category:      "science",
			Tier:          domain.TierCategory,
			Provenance:    domain.ProvenanceMinted,
			SeasonID:      "season-1",
			TokenRef:      ref,
		}).Error)
	}
	require.NoError(t, st.CreateForgeOperation(ctx, &schema.ForgeOperation{
		ID:          "forge-1",
		IdentityKey: "0xwallet",
		OutputTier:  domain.TierUltimate,
		InputRefs:   datatypes.NewJSONType([]string{"qm:1", "qm:2", "qm:3"}),
		Status:      domain.OperationBurnSubmitted,
	}))

	at := time.Now().UTC().Truncate(time.Millisecond)
	require.NoError(t, st.MarkForgeBurnConfirmed(ctx, "forge-1", []string{"qm:1", "qm:2", "qm:3"}, at))

	op, err := st.GetForgeOperation(ctx, "forge-1")
	require.NoError(t, err)
	assert.Equal(t, domain.OperationBurnConfirmed, op.Status)

	remaining, err := st.ListOwnedItems(ctx, "0xwallet")
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestCommitForge(t *testing.T) {
	st := initPGTestDB(t)
	ctx := context.Background()

	seedCatalogItem(t, st, "design-1", "science", domain.TierUltimate)
	require.NoError(t, st.CreateForgeOperation(ctx, &schema.ForgeOperation{
		ID:             "forge-1",
		IdentityKey:    "0xwallet",
		OutputTier:     domain.TierUltimate,
		OutputCategory: "science",
		InputRefs:      datatypes.NewJSONType([]string{"qm:1", "qm:2", "qm:3"}),
		Status:         domain.OperationMintSubmitted,
	}))

	err := st.CommitForge(ctx, ForgeCommit{
		OperationID:   "forge-1",
		CatalogItemID: "design-1",
		OutputItem: &schema.OwnedItem{
			ID:            "owned-out",
			IdentityKey:   "0xwallet",
			CatalogItemID: "design-1",
			Category:      "science",
			Tier:          domain.TierUltimate,
			Provenance:    domain.ProvenanceForged,
			SeasonID:      "season-1",
			TokenRef:      "qm:100",
		},
	})
	require.NoError(t, err)

	op, err := st.GetForgeOperation(ctx, "forge-1")
	require.NoError(t, err)
	assert.Equal(t, domain.OperationConfirmed, op.Status)
	assert.Equal(t, "owned-out", op.OutputItemID)

	owned, err := st.GetOwnedByTokenRefs(ctx, "0xwallet", []string{"qm:100"})
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, domain.TierUltimate, owned[0].Tier)
}

func TestUpdateOperation_TerminalIsImmutable(t *testing.T) {
	st := initPGTestDB(t)
	ctx := context.Background()

	require.NoError(t, st.CreateMintOperation(ctx, &schema.MintOperation{
		ID:            "op-1",
		EligibilityID: "elig-1",
		IdentityKey:   "0xwallet",
		Category:      "science",
		Status:        domain.OperationPending,
	}))
	require.NoError(t, st.FailMintOperation(ctx, "op-1", domain.FailureNoStock, "no stock"))

	// A late transition against a terminal row is a silent no-op.
	require.NoError(t, st.MarkMintSubmitted(ctx, "op-1", "0xlate"))

	op, err := st.GetMintOperation(ctx, "op-1")
	require.NoError(t, err)
	assert.Equal(t, domain.OperationFailed, op.Status)
	assert.Empty(t, op.MintTxRef)
}

func TestApplySessionScore_RunningMean(t *testing.T) {
	st := initPGTestDB(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Millisecond)
	require.NoError(t, st.ApplySessionScore(ctx, LeaderboardUpdate{
		SeasonID:      "season-1",
		IdentityKey:   "0xwallet",
		IdentityClass: domain.ClassConnected,
		Points:        150,
		Perfect:       true,
		AvgResponseMS: 4000,
		CompletedAt:   now,
	}))
	require.NoError(t, st.ApplySessionScore(ctx, LeaderboardUpdate{
		SeasonID:      "season-1",
		IdentityKey:   "0xwallet",
		IdentityClass: domain.ClassConnected,
		Points:        20,
		Perfect:       false,
		AvgResponseMS: 8000,
		CompletedAt:   now.Add(time.Minute),
	}))

	entries, total, err := st.LeaderboardPage(ctx, "season-1", 10, 0)
	require.NoError(t, err)
	require.Equal(t, int64(1), total)

	entry := entries[0]
	assert.Equal(t, int64(170), entry.Points)
	assert.Equal(t, int64(6000), entry.AvgResponseMS)
	assert.Equal(t, int64(2), entry.SessionsUsed)
	assert.Equal(t, int64(1), entry.PerfectCount)
	require.NotNil(t, entry.FirstAchievementAt)
	assert.WithinDuration(t, now, *entry.FirstAchievementAt, time.Second)
}

func TestLeaderboardPage_Ordering(t *testing.T) {
	st := initPGTestDB(t)
	ctx := context.Background()

	now := time.Now()
	seed := []schema.LeaderboardEntry{
		{SeasonID: "season-1", IdentityKey: "0xa", IdentityClass: domain.ClassConnected, Points: 100, AvgResponseMS: 5000, UpdatedAt: now},
		{SeasonID: "season-1", IdentityKey: "0xb", IdentityClass: domain.ClassConnected, Points: 200, AvgResponseMS: 9000, UpdatedAt: now},
		{SeasonID: "season-1", IdentityKey: "0xc", IdentityClass: domain.ClassConnected, Points: 100, AvgResponseMS: 3000, UpdatedAt: now},
		{SeasonID: "season-2", IdentityKey: "0xd", IdentityClass: domain.ClassConnected, Points: 999, UpdatedAt: now},
	}
	for i := range seed {
		require.NoError(t, st.(*pgStore).db.Create(&seed[i]).Error)
	}

	entries, total, err := st.LeaderboardPage(ctx, "season-1", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, entries, 3)
	// Points first, then the faster mean breaks the 100-point tie.
	assert.Equal(t, "0xb", entries[0].IdentityKey)
	assert.Equal(t, "0xc", entries[1].IdentityKey)
	assert.Equal(t, "0xa", entries[2].IdentityKey)
}

func TestSeasonLifecycle(t *testing.T) {
	st := initPGTestDB(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Millisecond)
	require.NoError(t, st.CreateSeason(ctx, &schema.Season{
		ID:          "season-old",
		Name:        "Season 2026-01",
		Categories:  datatypes.NewJSONType([]domain.Category{"science"}),
		StartsAt:    now.Add(-60 * 24 * time.Hour),
		EndsAt:      now.Add(-30 * 24 * time.Hour),
		GracePeriod: 72 * time.Hour,
	}))
	require.NoError(t, st.CreateSeason(ctx, &schema.Season{
		ID:          "season-now",
		Name:        "Season 2026-03",
		Categories:  datatypes.NewJSONType([]domain.Category{"science", "history"}),
		StartsAt:    now.Add(-time.Hour),
		EndsAt:      now.Add(29 * 24 * time.Hour),
		GracePeriod: 72 * time.Hour,
	}))

	current, err := st.GetCurrentSeason(ctx, now)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, "season-now", current.ID)

	latest, err := st.GetLatestSeason(ctx)
	require.NoError(t, err)
	assert.Equal(t, "season-now", latest.ID)

	due, err := st.ListSeasonsDueForArchive(ctx, now)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "season-old", due[0].ID)

	require.NoError(t, st.ArchiveSeason(ctx, "season-old"))
	due, err = st.ListSeasonsDueForArchive(ctx, now)
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestSelectQuestions(t *testing.T) {
	st := initPGTestDB(t)
	ctx := context.Background()

	now := time.Now()
	recent := now.Add(-time.Minute)
	stale := now.Add(-24 * time.Hour)
	questions := []schema.Question{
		{ID: "q-fresh", Category: "science", Prompt: "?", Options: datatypes.NewJSONType([]string{"a", "b"}), CorrectIndex: 0},
		{ID: "q-recent", Category: "science", Prompt: "?", Options: datatypes.NewJSONType([]string{"a", "b"}), CorrectIndex: 0, TimesServed: 5, LastServedAt: &recent},
		{ID: "q-stale", Category: "science", Prompt: "?", Options: datatypes.NewJSONType([]string{"a", "b"}), CorrectIndex: 1, TimesServed: 2, LastServedAt: &stale},
		{ID: "q-other", Category: "history", Prompt: "?", Options: datatypes.NewJSONType([]string{"a", "b"}), CorrectIndex: 0},
	}
	for i := range questions {
		require.NoError(t, st.(*pgStore).db.Create(&questions[i]).Error)
	}

	// Never-served first, then least recently served.
	got, err := st.SelectQuestions(ctx, "science", 2, nil)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "q-fresh", got[0].ID)
	assert.Equal(t, "q-stale", got[1].ID)

	got, err = st.SelectQuestions(ctx, "science", 3, []string{"q-fresh"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "q-stale", got[0].ID)

	require.NoError(t, st.MarkQuestionsServed(ctx, []string{"q-fresh"}, now))
	q, err := st.SelectQuestions(ctx, "science", 3, []string{"q-recent", "q-stale"})
	require.NoError(t, err)
	require.Len(t, q, 1)
	assert.Equal(t, int64(1), q[0].TimesServed)
}
