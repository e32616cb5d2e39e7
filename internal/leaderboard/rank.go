package leaderboard

import (
	"github.com/quizmint/qm-engine/internal/store/schema"
)

// Less is the ranking order: points, then minted items, then perfect
// sessions, then faster average response, then fewer sessions used, then
// earlier first achievement, and finally identity key so the order is
// total. LeaderboardPage's ORDER BY must stay in lockstep with this.
func Less(a, b *schema.LeaderboardEntry) bool {
	if a.Points != b.Points {
		return a.Points > b.Points
	}
	if a.MintedCount != b.MintedCount {
		return a.MintedCount > b.MintedCount
	}
	if a.PerfectCount != b.PerfectCount {
		return a.PerfectCount > b.PerfectCount
	}
	if a.AvgResponseMS != b.AvgResponseMS {
		return a.AvgResponseMS < b.AvgResponseMS
	}
	if a.SessionsUsed != b.SessionsUsed {
		return a.SessionsUsed < b.SessionsUsed
	}
	if fa, fb := a.FirstAchievementAt, b.FirstAchievementAt; fa != nil || fb != nil {
		switch {
		case fb == nil:
			return true
		case fa == nil:
			return false
		case !fa.Equal(*fb):
			return fa.Before(*fb)
		}
	}
	return a.IdentityKey < b.IdentityKey
}
