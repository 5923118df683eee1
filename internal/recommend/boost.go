// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package recommend

import (
	"time"

	"github.com/pdiddy/paper-recommender/pkg/types"
)

const day = 24 * time.Hour

// DaysSince returns the whole calendar days between published and now,
// both taken as UTC dates. Publication dates after now count as day 0.
func DaysSince(published, now time.Time) int {
	p := truncateToDate(published)
	n := truncateToDate(now)
	if !n.After(p) {
		return 0
	}
	return int(n.Sub(p) / day)
}

func truncateToDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DateBoost returns the recency bonus for a paper days old. It decays
// linearly from cfg.MaxBoost at day 0 to zero at cfg.RecencyWindowDays and
// is zero beyond the window.
func DateBoost(days int, cfg types.RankingConfig) float64 {
	if cfg.RecencyWindowDays <= 0 || days > cfg.RecencyWindowDays {
		return 0
	}
	if days < 0 {
		days = 0
	}
	boost := (1 - float64(days)/float64(cfg.RecencyWindowDays)) * cfg.MaxBoost
	if boost < 0 {
		return 0
	}
	return boost
}
