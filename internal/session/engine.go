// Package session runs the trivia session lifecycle: admission, answer
// scoring, completion and abandonment. Admission is arbitrated by a single
// conditional write in the rate store; everything after the first answer
// is durable in the relational store.
package session

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/quizmint/qm-engine/internal/adapter"
	"github.com/quizmint/qm-engine/internal/domain"
	"github.com/quizmint/qm-engine/internal/eligibility"
	"github.com/quizmint/qm-engine/internal/logger"
	"github.com/quizmint/qm-engine/internal/messaging"
	"github.com/quizmint/qm-engine/internal/questions"
	"github.com/quizmint/qm-engine/internal/ratelimit"
	"github.com/quizmint/qm-engine/internal/season"
	"github.com/quizmint/qm-engine/internal/store"
	"github.com/quizmint/qm-engine/internal/store/schema"
)

// Config holds the session rules
type Config struct {
	// QuestionsPerSession is the fixed deal size
	QuestionsPerSession int
	// PerQuestionTime is the answer window per question
	PerQuestionTime time.Duration
	// WinThreshold is the minimum correct answers for a won session
	WinThreshold int
	// DailyCapConnected / DailyCapGuest are per-class session caps per day
	DailyCapConnected int64
	DailyCapGuest     int64
	// Cooldown is the wait between completed sessions
	Cooldown time.Duration
	// MaxDuration bounds a session end to end; it is also the admission
	// lock TTL and the abandon deadline
	MaxDuration time.Duration
	// ThrottlePerMinute is the per-identity start-attempt budget
	ThrottlePerMinute int
}

// state is the full in-flight session: the player-visible session row plus
// the correct answer indexes, which never leave the server.
type state struct {
	Session schema.Session `json:"session"`
	Correct []int          `json:"correct"`
}

// Engine drives sessions end to end
type Engine struct {
	store     store.Store
	rate      *ratelimit.Store
	questions questions.Source
	elig      *eligibility.Manager
	seasons   *season.Manager
	publisher messaging.Publisher
	clock     adapter.Clock
	cfg       Config

	// stripes serialize concurrent submissions to the same session within
	// this process; cross-process callers are serialized by the per-index
	// idempotency check against persisted state
	stripes [64]sync.Mutex
}

// NewEngine creates a session engine
func NewEngine(
	st store.Store,
	rate *ratelimit.Store,
	src questions.Source,
	elig *eligibility.Manager,
	seasons *season.Manager,
	publisher messaging.Publisher,
	clock adapter.Clock,
	cfg Config,
) *Engine {
	return &Engine{
		store:     st,
		rate:      rate,
		questions: src,
		elig:      elig,
		seasons:   seasons,
		publisher: publisher,
		clock:     clock,
		cfg:       cfg,
	}
}

func (e *Engine) stripe(sessionID string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(sessionID))
	return &e.stripes[h.Sum32()%uint32(len(e.stripes))]
}

func (e *Engine) dailyCap(class domain.IdentityClass) int64 {
	if class == domain.ClassGuest {
		return e.cfg.DailyCapGuest
	}
	return e.cfg.DailyCapConnected
}

// QuestionView is a served question with the answer key stripped
type QuestionView struct {
	Index    int        `json:"index"`
	Prompt   string     `json:"prompt"`
	Options  []string   `json:"options"`
	Deadline *time.Time `json:"deadline,omitempty"`
}

// Started is the response to a successful session start
type Started struct {
	SessionID string         `json:"session_id"`
	Category  domain.Category `json:"category"`
	SeasonID  string         `json:"season_id"`
	Total     int            `json:"total"`
	StartedAt time.Time      `json:"started_at"`
	Deadline  time.Time      `json:"deadline"`
	Questions []QuestionView `json:"questions"`
}

// Start admits a new session for the identity. The admission lock is the
// single arbiter: only its holder touches the daily counter and cooldown,
// so two concurrent starts can never both pass the checks.
func (e *Engine) Start(ctx context.Context, identity domain.Identity, category domain.Category) (*Started, error) {
	if err := e.rate.Throttle(ctx, identity.Key, e.cfg.ThrottlePerMinute); err != nil {
		return nil, err
	}

	currentSeason, err := e.seasons.Current(ctx)
	if err != nil {
		return nil, err
	}
	if currentSeason == nil {
		return nil, domain.ErrSeasonClosed
	}

	now := e.clock.Now()
	sessionID := domain.NewID()

	locked, err := e.rate.AcquireSessionLock(ctx, identity.Key, sessionID, e.cfg.MaxDuration)
	if err != nil {
		return nil, err
	}
	if !locked {
		return nil, domain.ErrAlreadyActive
	}

	release := func() {
		if err := e.rate.ReleaseSessionLock(ctx, identity.Key, sessionID); err != nil {
			logger.ErrorCtx(ctx, err, zap.String("session_id", sessionID))
		}
	}

	count, err := e.rate.IncrDailyCount(ctx, identity.Key)
	if err != nil {
		release()
		return nil, err
	}
	if count > e.dailyCap(identity.Class) {
		if err := e.rate.DecrDailyCount(ctx, identity.Key); err != nil {
			logger.ErrorCtx(ctx, err, zap.String("identity", identity.String()))
		}
		release()
		return nil, domain.ErrDailyLimitReached
	}

	// Cooldown is waived for the first session after day rollover: the
	// fresh counter at 1 proves a new daily budget.
	if count > 1 {
		onCooldown, _, err := e.rate.OnCooldown(ctx, identity.Key)
		if err != nil {
			release()
			return nil, err
		}
		if onCooldown {
			if err := e.rate.DecrDailyCount(ctx, identity.Key); err != nil {
				logger.ErrorCtx(ctx, err, zap.String("identity", identity.String()))
			}
			release()
			return nil, domain.ErrOnCooldown
		}
	}

	served, err := e.rate.ServedQuestions(ctx, identity.Key, category)
	if err != nil {
		release()
		return nil, err
	}
	dealt, err := e.questions.Deal(ctx, category, e.cfg.QuestionsPerSession, served)
	if err != nil {
		if derr := e.rate.DecrDailyCount(ctx, identity.Key); derr != nil {
			logger.ErrorCtx(ctx, derr, zap.String("identity", identity.String()))
		}
		release()
		return nil, err
	}

	entries := make([]schema.QuestionEntry, len(dealt))
	correct := make([]int, len(dealt))
	ids := make([]string, len(dealt))
	for i, q := range dealt {
		entries[i] = schema.QuestionEntry{QuestionID: q.ID, Choice: -1}
		correct[i] = q.CorrectIndex
		ids[i] = q.ID
	}
	// The countdown for the first question starts now; later questions
	// start when the previous one resolves.
	entries[0].ServedAt = now
	entries[0].Deadline = now.Add(e.cfg.PerQuestionTime)

	st := state{
		Session: schema.Session{
			ID:            sessionID,
			IdentityKey:   identity.Key,
			IdentityClass: identity.Class,
			Category:      category,
			SeasonID:      currentSeason.ID,
			Status:        domain.SessionActive,
			Total:         len(dealt),
			StartedAt:     now,
			CreatedAt:     now,
			UpdatedAt:     now,
		},
		Correct: correct,
	}
	st.Session.Questions = datatypes.NewJSONType(entries)

	if err := e.rate.MirrorSession(ctx, sessionID, &st, e.cfg.MaxDuration); err != nil {
		if derr := e.rate.DecrDailyCount(ctx, identity.Key); derr != nil {
			logger.ErrorCtx(ctx, derr, zap.String("identity", identity.String()))
		}
		release()
		return nil, err
	}
	if err := e.rate.MarkQuestionsServed(ctx, identity.Key, category, ids); err != nil {
		logger.ErrorCtx(ctx, err, zap.String("session_id", sessionID))
	}
	if err := e.rate.IndexDeadline(ctx, sessionID, now.Add(e.cfg.MaxDuration)); err != nil {
		logger.ErrorCtx(ctx, err, zap.String("session_id", sessionID))
	}

	logger.InfoCtx(ctx, "session started",
		zap.String("session_id", sessionID),
		zap.String("identity", identity.String()),
		zap.String("category", string(category)),
		zap.Int64("daily_count", count))

	views := make([]QuestionView, len(dealt))
	for i, q := range dealt {
		views[i] = QuestionView{Index: i, Prompt: q.Prompt, Options: q.Options.Data()}
	}
	views[0].Deadline = &entries[0].Deadline

	return &Started{
		SessionID: sessionID,
		Category:  category,
		SeasonID:  currentSeason.ID,
		Total:     len(dealt),
		StartedAt: now,
		Deadline:  now.Add(e.cfg.MaxDuration),
		Questions: views,
	}, nil
}

// load resolves current session state: the relational row once one exists,
// else the mirror. Terminal rows win unconditionally.
func (e *Engine) load(ctx context.Context, sessionID string) (*state, bool, error) {
	row, err := e.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, false, err
	}
	if row != nil && row.Status.Terminal() {
		return &state{Session: *row}, true, nil
	}

	var st state
	found, err := e.rate.ActiveSession(ctx, sessionID, &st)
	if err != nil {
		return nil, false, err
	}
	if found {
		return &st, true, nil
	}
	if row != nil {
		// Mirror expired mid-flight; the persisted row still carries the
		// answers but not the keys, so it can only be finalized.
		return &state{Session: *row}, false, nil
	}
	return nil, false, nil
}

// persist writes the state durably and refreshes the mirror
func (e *Engine) persist(ctx context.Context, st *state) error {
	st.Session.UpdatedAt = e.clock.Now()
	if err := e.store.UpsertSession(ctx, &st.Session); err != nil {
		return err
	}
	remaining := st.Session.StartedAt.Add(e.cfg.MaxDuration).Sub(e.clock.Now())
	if remaining <= 0 {
		remaining = time.Second
	}
	return e.rate.MirrorSession(ctx, st.Session.ID, st, remaining)
}

// Answer records the player's choice for one question index. Repeat
// submissions for an answered index return the recorded result untouched;
// late submissions are recorded incorrect with the timeout flag.
func (e *Engine) Answer(ctx context.Context, identity domain.Identity, sessionID string, index, choice int) (*domain.AnswerResult, error) {
	mu := e.stripe(sessionID)
	mu.Lock()
	defer mu.Unlock()

	st, scorable, err := e.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, domain.ErrSessionNotFound
	}
	if st.Session.IdentityKey != identity.Key {
		return nil, domain.ErrSessionNotFound
	}
	if st.Session.Status.Terminal() {
		return nil, domain.ErrSessionFinalized
	}
	if !scorable {
		return nil, domain.ErrSessionFinalized
	}

	entries := st.Session.Questions.Data()
	if index < 0 || index >= len(entries) {
		return nil, domain.ErrBadQuestionIndex
	}

	if entries[index].Answered {
		return e.resultFor(&st.Session, entries, index), nil
	}
	// Questions resolve strictly in order.
	for i := 0; i < index; i++ {
		if !entries[i].Answered {
			return nil, domain.ErrBadQuestionIndex
		}
	}

	now := e.clock.Now()
	entry := &entries[index]
	elapsed := now.Sub(entry.ServedAt)

	entry.Answered = true
	entry.Choice = choice
	entry.ElapsedMS = elapsed.Milliseconds()
	if now.After(entry.Deadline) {
		entry.TimedOut = true
		entry.Correct = false
		entry.ElapsedMS = e.cfg.PerQuestionTime.Milliseconds()
	} else {
		entry.Correct = choice == st.Correct[index]
	}
	if entry.Correct {
		st.Session.Score++
	}

	if index+1 < len(entries) {
		entries[index+1].ServedAt = now
		entries[index+1].Deadline = now.Add(e.cfg.PerQuestionTime)
	}
	st.Session.Questions = datatypes.NewJSONType(entries)

	if err := e.persist(ctx, st); err != nil {
		return nil, err
	}

	return e.resultFor(&st.Session, entries, index), nil
}

func (e *Engine) resultFor(s *schema.Session, entries []schema.QuestionEntry, index int) *domain.AnswerResult {
	remaining := 0
	for _, en := range entries {
		if !en.Answered {
			remaining++
		}
	}
	en := entries[index]
	return &domain.AnswerResult{
		Index:     index,
		Correct:   en.Correct,
		TimedOut:  en.TimedOut,
		Score:     s.Score,
		Remaining: remaining,
		ElapsedMS: en.ElapsedMS,
	}
}

// Complete finalizes a session. Unanswered questions are recorded as
// timeouts; the outcome is won at the threshold, perfect grants an
// eligibility. Repeat completions return the stored result.
func (e *Engine) Complete(ctx context.Context, identity domain.Identity, sessionID string) (*domain.SessionResult, error) {
	return e.finalize(ctx, &identity, sessionID, domain.SessionStatus(""))
}

// Forfeit ends a session early with no win evaluation. The daily slot
// stays consumed and the cooldown still arms.
func (e *Engine) Forfeit(ctx context.Context, identity domain.Identity, sessionID string) (*domain.SessionResult, error) {
	return e.finalize(ctx, &identity, sessionID, domain.SessionForfeit)
}

// Abandon finalizes an overdue session on behalf of the sweeper. The
// outcome is the same as an explicit forfeit: a loss regardless of the
// score so far, and never an eligibility.
func (e *Engine) Abandon(ctx context.Context, sessionID string) (*domain.SessionResult, error) {
	return e.finalize(ctx, nil, sessionID, domain.SessionLost)
}

func (e *Engine) finalize(ctx context.Context, identity *domain.Identity, sessionID string, forced domain.SessionStatus) (*domain.SessionResult, error) {
	mu := e.stripe(sessionID)
	mu.Lock()
	defer mu.Unlock()

	st, _, err := e.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if st == nil {
		// Zero-answer sessions leave no durable row; just clean the
		// ephemeral leftovers.
		if err := e.rate.ClearDeadline(ctx, sessionID); err != nil {
			logger.ErrorCtx(ctx, err, zap.String("session_id", sessionID))
		}
		return nil, domain.ErrSessionNotFound
	}
	if identity != nil && st.Session.IdentityKey != identity.Key {
		return nil, domain.ErrSessionNotFound
	}

	if st.Session.Status.Terminal() {
		return e.storedResult(ctx, &st.Session)
	}

	now := e.clock.Now()
	entries := st.Session.Questions.Data()
	for i := range entries {
		if !entries[i].Answered {
			entries[i].Answered = true
			entries[i].Choice = -1
			entries[i].TimedOut = true
			entries[i].ElapsedMS = e.cfg.PerQuestionTime.Milliseconds()
		}
	}
	st.Session.Questions = datatypes.NewJSONType(entries)

	switch {
	case forced != "":
		st.Session.Status = forced
	case st.Session.Score >= e.cfg.WinThreshold:
		st.Session.Status = domain.SessionWon
	default:
		st.Session.Status = domain.SessionLost
	}
	st.Session.Perfect = st.Session.Status == domain.SessionWon && st.Session.Score == st.Session.Total
	st.Session.EndedAt = &now

	if err := e.store.UpsertSession(ctx, &st.Session); err != nil {
		return nil, err
	}

	// Ephemeral cleanup is best effort; keys age out on their own TTLs.
	if err := e.rate.DropSession(ctx, sessionID); err != nil {
		logger.ErrorCtx(ctx, err, zap.String("session_id", sessionID))
	}
	if err := e.rate.ClearDeadline(ctx, sessionID); err != nil {
		logger.ErrorCtx(ctx, err, zap.String("session_id", sessionID))
	}
	if err := e.rate.ReleaseSessionLock(ctx, st.Session.IdentityKey, sessionID); err != nil {
		logger.ErrorCtx(ctx, err, zap.String("session_id", sessionID))
	}
	if err := e.rate.SetCooldown(ctx, st.Session.IdentityKey, e.cfg.Cooldown); err != nil {
		logger.ErrorCtx(ctx, err, zap.String("session_id", sessionID))
	}

	result := &domain.SessionResult{
		SessionID:   sessionID,
		Status:      st.Session.Status,
		Score:       st.Session.Score,
		Total:       st.Session.Total,
		Perfect:     st.Session.Perfect,
		CompletedAt: now,
	}

	if st.Session.Perfect {
		owner := domain.Identity{Key: st.Session.IdentityKey, Class: st.Session.IdentityClass}
		granted, _, err := e.elig.Grant(ctx, owner, st.Session.Category, st.Session.SeasonID, sessionID)
		if err != nil {
			logger.ErrorCtx(ctx, err, zap.String("session_id", sessionID))
		} else if granted != nil {
			result.EligibilityID = &granted.ID
		}
	}

	e.publish(ctx, &st.Session, now)

	logger.InfoCtx(ctx, "session finalized",
		zap.String("session_id", sessionID),
		zap.String("status", string(st.Session.Status)),
		zap.Int("score", st.Session.Score))

	return result, nil
}

// storedResult rebuilds the stable completion response from a terminal row
func (e *Engine) storedResult(ctx context.Context, s *schema.Session) (*domain.SessionResult, error) {
	result := &domain.SessionResult{
		SessionID: s.ID,
		Status:    s.Status,
		Score:     s.Score,
		Total:     s.Total,
		Perfect:   s.Perfect,
	}
	if s.EndedAt != nil {
		result.CompletedAt = *s.EndedAt
	}
	if s.Perfect {
		elig, err := e.store.GetActiveEligibility(ctx, s.IdentityKey, s.Category)
		if err != nil {
			return nil, err
		}
		if elig != nil && elig.SessionID == s.ID {
			result.EligibilityID = &elig.ID
		}
	}
	return result, nil
}

// avgResponseMS is the mean server-measured response time over all entries
func avgResponseMS(entries []schema.QuestionEntry) int64 {
	if len(entries) == 0 {
		return 0
	}
	var sum int64
	for _, en := range entries {
		sum += en.ElapsedMS
	}
	return sum / int64(len(entries))
}

func (e *Engine) publish(ctx context.Context, s *schema.Session, at time.Time) {
	if e.publisher == nil {
		return
	}
	event := &domain.SessionCompleted{
		SessionID:     s.ID,
		Identity:      domain.Identity{Key: s.IdentityKey, Class: s.IdentityClass},
		Category:      s.Category,
		SeasonID:      s.SeasonID,
		Status:        s.Status,
		Score:         s.Score,
		Total:         s.Total,
		Perfect:       s.Perfect,
		AvgResponseMS: avgResponseMS(s.Questions.Data()),
		CompletedAt:   at,
	}
	if err := e.publisher.PublishSessionCompleted(ctx, event); err != nil {
		// Scoring catches up via redelivery; the player response is
		// already decided.
		logger.ErrorCtx(ctx, err, zap.String("session_id", s.ID))
	}
}

// Get returns the caller's view of a session with answer keys stripped
func (e *Engine) Get(ctx context.Context, identity domain.Identity, sessionID string) (*schema.Session, error) {
	st, _, err := e.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if st == nil || st.Session.IdentityKey != identity.Key {
		return nil, domain.ErrSessionNotFound
	}
	return &st.Session, nil
}

// DueSessions lists sessions past their hard deadline, for the sweeper
func (e *Engine) DueSessions(ctx context.Context, limit int) ([]string, error) {
	return e.rate.DueSessions(ctx, e.clock.Now(), limit)
}

// AdoptGuest moves a guest's live eligibilities onto a wallet and folds the
// guest's daily counter and served-question sets into the wallet's so the
// connected cap and repeat avoidance apply to the combined history. The
// durable transfer is the outcome; the counter merge is best effort.
func (e *Engine) AdoptGuest(ctx context.Context, guestKey string, wallet domain.Identity) (int64, error) {
	moved, err := e.elig.Transfer(ctx, guestKey, wallet.Key)
	if err != nil {
		return 0, err
	}

	var categories []domain.Category
	if currentSeason, err := e.seasons.Current(ctx); err == nil && currentSeason != nil {
		categories = currentSeason.Categories.Data()
	}
	if err := e.rate.MergeIdentity(ctx, guestKey, wallet.Key, categories); err != nil {
		logger.ErrorCtx(ctx, err, zap.String("guest_key", guestKey))
	}

	return moved, nil
}
