package session_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"github.com/golang/mock/gomock"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	"gorm.io/datatypes"

	"github.com/quizmint/qm-engine/internal/adapter"
	"github.com/quizmint/qm-engine/internal/domain"
	"github.com/quizmint/qm-engine/internal/eligibility"
	"github.com/quizmint/qm-engine/internal/logger"
	"github.com/quizmint/qm-engine/internal/mocks"
	"github.com/quizmint/qm-engine/internal/ratelimit"
	"github.com/quizmint/qm-engine/internal/season"
	"github.com/quizmint/qm-engine/internal/session"
	"github.com/quizmint/qm-engine/internal/store/schema"
)

// mirrorState matches the wire shape of the engine's session mirror
type mirrorState struct {
	Session schema.Session `json:"session"`
	Correct []int          `json:"correct"`
}

// EngineTestSuite is the test suite for the session engine
type EngineTestSuite struct {
	suite.Suite

	ctrl      *gomock.Controller
	store     *mocks.MockStore
	redis     *mocks.MockRedisClient
	limiter   *mocks.MockRedisRateLimiter
	questions *mocks.MockQuestionSource
	publisher *mocks.MockPublisher
	clock     *mocks.MockClock
	engine    *session.Engine

	now      time.Time
	identity domain.Identity
}

// SetupTest is called before each test
func (s *EngineTestSuite) SetupTest() {
	// Initialize logger for tests
	_ = logger.Initialize(logger.Config{
		Debug: true,
	})

	s.ctrl = gomock.NewController(s.T())
	s.store = mocks.NewMockStore(s.ctrl)
	s.redis = mocks.NewMockRedisClient(s.ctrl)
	s.limiter = mocks.NewMockRedisRateLimiter(s.ctrl)
	s.questions = mocks.NewMockQuestionSource(s.ctrl)
	s.publisher = mocks.NewMockPublisher(s.ctrl)
	s.clock = mocks.NewMockClock(s.ctrl)

	s.now = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	s.identity = domain.Identity{Key: "0xwallet", Class: domain.ClassConnected}
	s.clock.EXPECT().Now().Return(s.now).AnyTimes()

	s.redis.EXPECT().NewRateLimiter().Return(s.limiter)
	rate := ratelimit.NewStore(s.redis, adapter.NewJSON(), s.clock, 0)
	elig := eligibility.NewManager(s.store, s.clock, eligibility.Config{
		ConnectedWindow: time.Hour,
		GuestWindow:     25 * time.Minute,
	})
	seasons := season.NewManager(s.store, s.clock, season.Config{})

	s.engine = session.NewEngine(s.store, rate, s.questions, elig, seasons, s.publisher, s.clock, session.Config{
		QuestionsPerSession: 3,
		PerQuestionTime:     30 * time.Second,
		WinThreshold:        2,
		DailyCapConnected:   10,
		DailyCapGuest:       5,
		Cooldown:            10 * time.Minute,
		MaxDuration:         15 * time.Minute,
		ThrottlePerMinute:   30,
	})
}

// TearDownTest is called after each test
func (s *EngineTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

// TestEngineTestSuite runs the test suite
func TestEngineTestSuite(t *testing.T) {
	suite.Run(t, new(EngineTestSuite))
}

func (s *EngineTestSuite) boolCmd(v bool) *redis.BoolCmd {
	cmd := redis.NewBoolCmd(context.Background())
	cmd.SetVal(v)
	return cmd
}

func (s *EngineTestSuite) intCmd(n int64) *redis.IntCmd {
	cmd := redis.NewIntCmd(context.Background())
	cmd.SetVal(n)
	return cmd
}

func (s *EngineTestSuite) statusCmd() *redis.StatusCmd {
	cmd := redis.NewStatusCmd(context.Background())
	cmd.SetVal("OK")
	return cmd
}

func (s *EngineTestSuite) evalCmd() *redis.Cmd {
	cmd := redis.NewCmd(context.Background())
	cmd.SetVal(int64(1))
	return cmd
}

func (s *EngineTestSuite) expectThrottleAllowed() {
	s.limiter.EXPECT().
		Allow(gomock.Any(), "throttle:0xwallet", redis_rate.PerMinute(30)).
		Return(&redis_rate.Result{Allowed: 1}, nil)
}

func (s *EngineTestSuite) expectSeason() {
	s.store.EXPECT().
		GetCurrentSeason(gomock.Any(), s.now).
		Return(&schema.Season{ID: "season-1", StartsAt: s.now.Add(-time.Hour), EndsAt: s.now.Add(time.Hour)}, nil)
}

// expectMirrorLoad arranges load to miss the relational store and hit the
// redis mirror with the given state.
func (s *EngineTestSuite) expectMirrorLoad(sessionID string, st mirrorState) {
	s.store.EXPECT().GetSession(gomock.Any(), sessionID).Return(nil, nil)
	blob, err := json.Marshal(st)
	s.Require().NoError(err)
	cmd := redis.NewStringCmd(context.Background())
	cmd.SetVal(string(blob))
	s.redis.EXPECT().Get(gomock.Any(), "session:"+sessionID).Return(cmd)
}

// activeState builds an in-flight session with the first question served
func (s *EngineTestSuite) activeState(sessionID string) mirrorState {
	entries := []schema.QuestionEntry{
		{QuestionID: "q1", ServedAt: s.now.Add(-10 * time.Second), Deadline: s.now.Add(20 * time.Second), Choice: -1},
		{QuestionID: "q2", Choice: -1},
		{QuestionID: "q3", Choice: -1},
	}
	return mirrorState{
		Session: schema.Session{
			ID:            sessionID,
			IdentityKey:   s.identity.Key,
			IdentityClass: s.identity.Class,
			Category:      domain.Category("science"),
			SeasonID:      "season-1",
			Status:        domain.SessionActive,
			Total:         3,
			StartedAt:     s.now.Add(-time.Minute),
			Questions:     datatypes.NewJSONType(entries),
		},
		Correct: []int{2, 1, 0},
	}
}

// ====================================================================================
// Start
// ====================================================================================

func (s *EngineTestSuite) TestStart_Throttled() {
	s.limiter.EXPECT().
		Allow(gomock.Any(), "throttle:0xwallet", redis_rate.PerMinute(30)).
		Return(&redis_rate.Result{Allowed: 0, RetryAfter: time.Second}, nil)

	_, err := s.engine.Start(context.Background(), s.identity, domain.Category("science"))
	s.ErrorIs(err, domain.ErrThrottled)
}

func (s *EngineTestSuite) TestStart_SeasonClosed() {
	s.expectThrottleAllowed()
	s.store.EXPECT().GetCurrentSeason(gomock.Any(), s.now).Return(nil, nil)

	_, err := s.engine.Start(context.Background(), s.identity, domain.Category("science"))
	s.ErrorIs(err, domain.ErrSeasonClosed)
}

func (s *EngineTestSuite) TestStart_AlreadyActive() {
	s.expectThrottleAllowed()
	s.expectSeason()
	s.redis.EXPECT().
		SetNX(gomock.Any(), "lock:identity:0xwallet", gomock.Any(), 15*time.Minute).
		Return(s.boolCmd(false))

	_, err := s.engine.Start(context.Background(), s.identity, domain.Category("science"))
	s.ErrorIs(err, domain.ErrAlreadyActive)
}

func (s *EngineTestSuite) TestStart_DailyLimitReached() {
	guest := domain.Identity{Key: "guest-1", Class: domain.ClassGuest}
	s.limiter.EXPECT().
		Allow(gomock.Any(), "throttle:guest-1", redis_rate.PerMinute(30)).
		Return(&redis_rate.Result{Allowed: 1}, nil)
	s.expectSeason()
	s.redis.EXPECT().
		SetNX(gomock.Any(), "lock:identity:guest-1", gomock.Any(), 15*time.Minute).
		Return(s.boolCmd(true))
	// Guest cap is 5; the sixth increment is rejected and compensated.
	s.redis.EXPECT().Incr(gomock.Any(), "daily:guest-1:2026-03-14").Return(s.intCmd(6))
	s.redis.EXPECT().Decr(gomock.Any(), "daily:guest-1:2026-03-14").Return(s.intCmd(5))
	s.redis.EXPECT().
		Eval(gomock.Any(), gomock.Any(), []string{"lock:identity:guest-1"}, gomock.Any()).
		Return(s.evalCmd())

	_, err := s.engine.Start(context.Background(), guest, domain.Category("science"))
	s.ErrorIs(err, domain.ErrDailyLimitReached)
}

func (s *EngineTestSuite) TestStart_OnCooldown() {
	s.expectThrottleAllowed()
	s.expectSeason()
	s.redis.EXPECT().
		SetNX(gomock.Any(), "lock:identity:0xwallet", gomock.Any(), 15*time.Minute).
		Return(s.boolCmd(true))
	s.redis.EXPECT().Incr(gomock.Any(), "daily:0xwallet:2026-03-14").Return(s.intCmd(2))

	ttlCmd := redis.NewDurationCmd(context.Background(), time.Millisecond)
	ttlCmd.SetVal(4 * time.Minute)
	s.redis.EXPECT().PTTL(gomock.Any(), "cooldown:0xwallet").Return(ttlCmd)

	s.redis.EXPECT().Decr(gomock.Any(), "daily:0xwallet:2026-03-14").Return(s.intCmd(1))
	s.redis.EXPECT().
		Eval(gomock.Any(), gomock.Any(), []string{"lock:identity:0xwallet"}, gomock.Any()).
		Return(s.evalCmd())

	_, err := s.engine.Start(context.Background(), s.identity, domain.Category("science"))
	s.ErrorIs(err, domain.ErrOnCooldown)
}

func (s *EngineTestSuite) TestStart_CooldownAppliesAcrossCategories() {
	s.expectThrottleAllowed()
	s.expectSeason()
	s.redis.EXPECT().
		SetNX(gomock.Any(), "lock:identity:0xwallet", gomock.Any(), 15*time.Minute).
		Return(s.boolCmd(true))
	s.redis.EXPECT().Incr(gomock.Any(), "daily:0xwallet:2026-03-14").Return(s.intCmd(2))

	// The marker armed by a science session carries no category, so a
	// history start hits the same key.
	ttlCmd := redis.NewDurationCmd(context.Background(), time.Millisecond)
	ttlCmd.SetVal(4 * time.Minute)
	s.redis.EXPECT().PTTL(gomock.Any(), "cooldown:0xwallet").Return(ttlCmd)

	s.redis.EXPECT().Decr(gomock.Any(), "daily:0xwallet:2026-03-14").Return(s.intCmd(1))
	s.redis.EXPECT().
		Eval(gomock.Any(), gomock.Any(), []string{"lock:identity:0xwallet"}, gomock.Any()).
		Return(s.evalCmd())

	_, err := s.engine.Start(context.Background(), s.identity, domain.Category("history"))
	s.ErrorIs(err, domain.ErrOnCooldown)
}

func (s *EngineTestSuite) TestStart_FirstOfDaySkipsCooldown() {
	s.expectThrottleAllowed()
	s.expectSeason()
	s.redis.EXPECT().
		SetNX(gomock.Any(), "lock:identity:0xwallet", gomock.Any(), 15*time.Minute).
		Return(s.boolCmd(true))
	// Counter at 1 proves a fresh daily budget; no PTTL lookup happens.
	s.redis.EXPECT().Incr(gomock.Any(), "daily:0xwallet:2026-03-14").Return(s.intCmd(1))
	s.redis.EXPECT().Expire(gomock.Any(), "daily:0xwallet:2026-03-14", gomock.Any()).Return(s.boolCmd(true))

	servedCmd := redis.NewStringSliceCmd(context.Background())
	servedCmd.SetVal([]string{})
	s.redis.EXPECT().SMembers(gomock.Any(), "served:0xwallet:science:2026-03-14").Return(servedCmd)

	dealt := []schema.Question{
		{ID: "q1", Prompt: "boiling point?", Options: datatypes.NewJSONType([]string{"90", "100", "110", "120"}), CorrectIndex: 1},
		{ID: "q2", Prompt: "red planet?", Options: datatypes.NewJSONType([]string{"venus", "mars", "io", "titan"}), CorrectIndex: 1},
		{ID: "q3", Prompt: "H2O?", Options: datatypes.NewJSONType([]string{"water", "salt", "gold", "air"}), CorrectIndex: 0},
	}
	s.questions.EXPECT().
		Deal(gomock.Any(), domain.Category("science"), 3, gomock.Any()).
		Return(dealt, nil)

	s.redis.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any(), 15*time.Minute).Return(s.statusCmd())
	s.redis.EXPECT().SAdd(gomock.Any(), "served:0xwallet:science:2026-03-14", "q1", "q2", "q3").Return(s.intCmd(3))
	s.redis.EXPECT().Expire(gomock.Any(), "served:0xwallet:science:2026-03-14", gomock.Any()).Return(s.boolCmd(true))
	s.redis.EXPECT().ZAdd(gomock.Any(), "sessions:deadlines", gomock.Any()).Return(s.intCmd(1))

	started, err := s.engine.Start(context.Background(), s.identity, domain.Category("science"))
	s.NoError(err)
	s.Require().NotNil(started)
	s.NotEmpty(started.SessionID)
	s.Equal("season-1", started.SeasonID)
	s.Equal(3, started.Total)
	s.Equal(s.now.Add(15*time.Minute), started.Deadline)
	s.Require().Len(started.Questions, 3)
	// Only the first question's countdown is running.
	s.Require().NotNil(started.Questions[0].Deadline)
	s.Equal(s.now.Add(30*time.Second), *started.Questions[0].Deadline)
	s.Nil(started.Questions[1].Deadline)
	s.Equal([]string{"90", "100", "110", "120"}, started.Questions[0].Options)
}

// ====================================================================================
// Answer
// ====================================================================================

func (s *EngineTestSuite) TestAnswer_CorrectAdvancesTimer() {
	st := s.activeState("sess-1")
	s.expectMirrorLoad("sess-1", st)

	var persisted *schema.Session
	s.store.EXPECT().
		UpsertSession(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, row *schema.Session) error {
			persisted = row
			return nil
		})
	s.redis.EXPECT().Set(gomock.Any(), "session:sess-1", gomock.Any(), gomock.Any()).Return(s.statusCmd())

	res, err := s.engine.Answer(context.Background(), s.identity, "sess-1", 0, 2)
	s.NoError(err)
	s.True(res.Correct)
	s.False(res.TimedOut)
	s.Equal(1, res.Score)
	s.Equal(2, res.Remaining)
	s.Equal(int64(10_000), res.ElapsedMS)

	s.Require().NotNil(persisted)
	entries := persisted.Questions.Data()
	s.True(entries[0].Answered)
	s.True(entries[0].Correct)
	// The next question's countdown starts at this answer.
	s.Equal(s.now, entries[1].ServedAt)
	s.Equal(s.now.Add(30*time.Second), entries[1].Deadline)
}

func (s *EngineTestSuite) TestAnswer_LateIsTimeout() {
	st := s.activeState("sess-1")
	entries := st.Session.Questions.Data()
	entries[0].ServedAt = s.now.Add(-45 * time.Second)
	entries[0].Deadline = s.now.Add(-15 * time.Second)
	st.Session.Questions = datatypes.NewJSONType(entries)
	s.expectMirrorLoad("sess-1", st)

	s.store.EXPECT().UpsertSession(gomock.Any(), gomock.Any()).Return(nil)
	s.redis.EXPECT().Set(gomock.Any(), "session:sess-1", gomock.Any(), gomock.Any()).Return(s.statusCmd())

	res, err := s.engine.Answer(context.Background(), s.identity, "sess-1", 0, 2)
	s.NoError(err)
	s.False(res.Correct)
	s.True(res.TimedOut)
	s.Equal(0, res.Score)
	s.Equal(int64(30_000), res.ElapsedMS)
}

func (s *EngineTestSuite) TestAnswer_RepeatReturnsRecorded() {
	st := s.activeState("sess-1")
	entries := st.Session.Questions.Data()
	entries[0].Answered = true
	entries[0].Correct = true
	entries[0].Choice = 2
	entries[0].ElapsedMS = 4_000
	st.Session.Score = 1
	st.Session.Questions = datatypes.NewJSONType(entries)
	s.expectMirrorLoad("sess-1", st)

	// No persist: the recorded result is returned untouched.
	res, err := s.engine.Answer(context.Background(), s.identity, "sess-1", 0, 0)
	s.NoError(err)
	s.True(res.Correct)
	s.Equal(1, res.Score)
	s.Equal(int64(4_000), res.ElapsedMS)
}

func (s *EngineTestSuite) TestAnswer_OutOfOrder() {
	s.expectMirrorLoad("sess-1", s.activeState("sess-1"))

	_, err := s.engine.Answer(context.Background(), s.identity, "sess-1", 1, 0)
	s.ErrorIs(err, domain.ErrBadQuestionIndex)
}

func (s *EngineTestSuite) TestAnswer_IndexOutOfRange() {
	s.expectMirrorLoad("sess-1", s.activeState("sess-1"))

	_, err := s.engine.Answer(context.Background(), s.identity, "sess-1", 3, 0)
	s.ErrorIs(err, domain.ErrBadQuestionIndex)
}

func (s *EngineTestSuite) TestAnswer_WrongIdentity() {
	s.expectMirrorLoad("sess-1", s.activeState("sess-1"))

	other := domain.Identity{Key: "0xother", Class: domain.ClassConnected}
	_, err := s.engine.Answer(context.Background(), other, "sess-1", 0, 2)
	s.ErrorIs(err, domain.ErrSessionNotFound)
}

// ====================================================================================
// Complete / Forfeit
// ====================================================================================

// expectFinalizeCleanup mocks the best-effort ephemeral cleanup
func (s *EngineTestSuite) expectFinalizeCleanup(sessionID string) {
	s.redis.EXPECT().Del(gomock.Any(), "session:"+sessionID).Return(s.intCmd(1))
	s.redis.EXPECT().ZRem(gomock.Any(), "sessions:deadlines", sessionID).Return(s.intCmd(1))
	s.redis.EXPECT().
		Eval(gomock.Any(), gomock.Any(), []string{"lock:identity:0xwallet"}, sessionID).
		Return(s.evalCmd())
	s.redis.EXPECT().
		Set(gomock.Any(), "cooldown:0xwallet", "1", 10*time.Minute).
		Return(s.statusCmd())
}

func (s *EngineTestSuite) TestComplete_PerfectGrantsEligibility() {
	st := s.activeState("sess-1")
	entries := st.Session.Questions.Data()
	for i := range entries {
		entries[i].Answered = true
		entries[i].Correct = true
		entries[i].ElapsedMS = 5_000
	}
	st.Session.Score = 3
	st.Session.Questions = datatypes.NewJSONType(entries)
	s.expectMirrorLoad("sess-1", st)

	var persisted *schema.Session
	s.store.EXPECT().
		UpsertSession(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, row *schema.Session) error {
			persisted = row
			return nil
		})
	s.expectFinalizeCleanup("sess-1")

	var granted *schema.Eligibility
	s.store.EXPECT().
		CreateEligibility(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, e *schema.Eligibility) (bool, error) {
			granted = e
			return true, nil
		})

	var published *domain.SessionCompleted
	s.publisher.EXPECT().
		PublishSessionCompleted(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, event *domain.SessionCompleted) error {
			published = event
			return nil
		})

	res, err := s.engine.Complete(context.Background(), s.identity, "sess-1")
	s.NoError(err)
	s.Equal(domain.SessionWon, res.Status)
	s.True(res.Perfect)
	s.Equal(3, res.Score)
	s.Require().NotNil(res.EligibilityID)

	s.Require().NotNil(persisted)
	s.Equal(domain.SessionWon, persisted.Status)
	s.Require().NotNil(persisted.EndedAt)

	s.Require().NotNil(granted)
	s.Equal(res.EligibilityID, &granted.ID)
	s.Equal(domain.EligibilityActive, granted.Status)
	// Connected identities get the one-hour window.
	s.Equal(s.now.Add(time.Hour), granted.ExpiresAt)

	s.Require().NotNil(published)
	s.True(published.Perfect)
	s.Equal(int64(5_000), published.AvgResponseMS)
}

func (s *EngineTestSuite) TestComplete_BelowThresholdLost() {
	st := s.activeState("sess-1")
	entries := st.Session.Questions.Data()
	entries[0].Answered = true
	entries[0].Correct = true
	entries[0].ElapsedMS = 5_000
	st.Session.Score = 1
	st.Session.Questions = datatypes.NewJSONType(entries)
	s.expectMirrorLoad("sess-1", st)

	var persisted *schema.Session
	s.store.EXPECT().
		UpsertSession(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, row *schema.Session) error {
			persisted = row
			return nil
		})
	s.expectFinalizeCleanup("sess-1")
	s.publisher.EXPECT().PublishSessionCompleted(gomock.Any(), gomock.Any()).Return(nil)

	res, err := s.engine.Complete(context.Background(), s.identity, "sess-1")
	s.NoError(err)
	s.Equal(domain.SessionLost, res.Status)
	s.False(res.Perfect)
	s.Nil(res.EligibilityID)

	// Unanswered questions are recorded as timeouts.
	s.Require().NotNil(persisted)
	for _, en := range persisted.Questions.Data() {
		s.True(en.Answered)
	}
	s.True(persisted.Questions.Data()[1].TimedOut)
	s.Equal(-1, persisted.Questions.Data()[1].Choice)
}

func (s *EngineTestSuite) TestComplete_RepeatReturnsStored() {
	ended := s.now.Add(-time.Minute)
	s.store.EXPECT().GetSession(gomock.Any(), "sess-1").Return(&schema.Session{
		ID:          "sess-1",
		IdentityKey: s.identity.Key,
		Status:      domain.SessionWon,
		Score:       2,
		Total:       3,
		EndedAt:     &ended,
	}, nil)

	res, err := s.engine.Complete(context.Background(), s.identity, "sess-1")
	s.NoError(err)
	s.Equal(domain.SessionWon, res.Status)
	s.Equal(2, res.Score)
	s.Equal(ended, res.CompletedAt)
}

func (s *EngineTestSuite) TestForfeit_IgnoresScore() {
	st := s.activeState("sess-1")
	entries := st.Session.Questions.Data()
	for i := range entries {
		entries[i].Answered = true
		entries[i].Correct = true
	}
	st.Session.Score = 3
	st.Session.Questions = datatypes.NewJSONType(entries)
	s.expectMirrorLoad("sess-1", st)

	s.store.EXPECT().UpsertSession(gomock.Any(), gomock.Any()).Return(nil)
	s.expectFinalizeCleanup("sess-1")
	s.publisher.EXPECT().PublishSessionCompleted(gomock.Any(), gomock.Any()).Return(nil)

	res, err := s.engine.Forfeit(context.Background(), s.identity, "sess-1")
	s.NoError(err)
	s.Equal(domain.SessionForfeit, res.Status)
	s.False(res.Perfect)
	s.Nil(res.EligibilityID)
}

func (s *EngineTestSuite) TestAbandon_IgnoresScore() {
	// A sweeper-abandoned session loses even when the recorded answers
	// already clear the threshold, and a perfect score grants nothing.
	st := s.activeState("sess-1")
	entries := st.Session.Questions.Data()
	for i := range entries {
		entries[i].Answered = true
		entries[i].Correct = true
	}
	st.Session.Score = 3
	st.Session.Questions = datatypes.NewJSONType(entries)
	s.expectMirrorLoad("sess-1", st)

	var persisted *schema.Session
	s.store.EXPECT().
		UpsertSession(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, row *schema.Session) error {
			persisted = row
			return nil
		})
	s.expectFinalizeCleanup("sess-1")
	s.publisher.EXPECT().PublishSessionCompleted(gomock.Any(), gomock.Any()).Return(nil)

	res, err := s.engine.Abandon(context.Background(), "sess-1")
	s.NoError(err)
	s.Equal(domain.SessionLost, res.Status)
	s.False(res.Perfect)
	s.Nil(res.EligibilityID)

	s.Require().NotNil(persisted)
	s.Equal(domain.SessionLost, persisted.Status)
	s.False(persisted.Perfect)
}

func (s *EngineTestSuite) TestComplete_Missing() {
	s.store.EXPECT().GetSession(gomock.Any(), "sess-9").Return(nil, nil)
	cmd := redis.NewStringCmd(context.Background())
	cmd.SetErr(redis.Nil)
	s.redis.EXPECT().Get(gomock.Any(), "session:sess-9").Return(cmd)
	s.redis.EXPECT().ZRem(gomock.Any(), "sessions:deadlines", "sess-9").Return(s.intCmd(0))

	_, err := s.engine.Complete(context.Background(), s.identity, "sess-9")
	s.ErrorIs(err, domain.ErrSessionNotFound)
}

func (s *EngineTestSuite) TestAdoptGuest_TransfersAndMergesCounters() {
	s.store.EXPECT().
		TransferEligibilities(gomock.Any(), "guest-1", "0xwallet", s.now, 25*time.Minute).
		Return(int64(2), nil)

	s.store.EXPECT().
		GetCurrentSeason(gomock.Any(), s.now).
		Return(&schema.Season{
			ID:         "season-1",
			Categories: datatypes.NewJSONType([]domain.Category{"science"}),
			StartsAt:   s.now.Add(-time.Hour),
			EndsAt:     s.now.Add(time.Hour),
		}, nil)

	getCmd := redis.NewStringCmd(context.Background())
	getCmd.SetVal("1")
	s.redis.EXPECT().Get(gomock.Any(), "daily:guest-1:2026-03-14").Return(getCmd)
	s.redis.EXPECT().IncrBy(gomock.Any(), "daily:0xwallet:2026-03-14", int64(1)).Return(s.intCmd(4))
	s.redis.EXPECT().Expire(gomock.Any(), "daily:0xwallet:2026-03-14", 12*time.Hour).Return(s.boolCmd(true))
	s.redis.EXPECT().Del(gomock.Any(), "daily:guest-1:2026-03-14").Return(s.intCmd(1))
	s.redis.EXPECT().
		SUnionStore(gomock.Any(), "served:0xwallet:science:2026-03-14",
			"served:0xwallet:science:2026-03-14", "served:guest-1:science:2026-03-14").
		Return(s.intCmd(3))
	s.redis.EXPECT().Expire(gomock.Any(), "served:0xwallet:science:2026-03-14", 12*time.Hour).Return(s.boolCmd(true))
	s.redis.EXPECT().Del(gomock.Any(), "served:guest-1:science:2026-03-14").Return(s.intCmd(1))

	moved, err := s.engine.AdoptGuest(context.Background(), "guest-1", s.identity)
	s.NoError(err)
	s.Equal(int64(2), moved)
}

func (s *EngineTestSuite) TestAdoptGuest_MergeFailureDoesNotUndoTransfer() {
	s.store.EXPECT().
		TransferEligibilities(gomock.Any(), "guest-1", "0xwallet", s.now, 25*time.Minute).
		Return(int64(1), nil)
	s.store.EXPECT().GetCurrentSeason(gomock.Any(), s.now).Return(nil, nil)

	getCmd := redis.NewStringCmd(context.Background())
	getCmd.SetErr(errors.New("redis down"))
	s.redis.EXPECT().Get(gomock.Any(), "daily:guest-1:2026-03-14").Return(getCmd)

	moved, err := s.engine.AdoptGuest(context.Background(), "guest-1", s.identity)
	s.NoError(err)
	s.Equal(int64(1), moved)
}
