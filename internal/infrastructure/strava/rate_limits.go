package strava

import (
	"net/http"
	"strconv"
	"strings"
)

// RateLimits is what Strava reports in X-RateLimit-Limit and X-RateLimit-Usage:
// a 15 minute window and a daily window.
type RateLimits struct {
	ShortLimit int
	DailyLimit int
	ShortUsage int
	DailyUsage int
}

// ParseRateLimits reads both headers. ok is false when either is missing or malformed.
func ParseRateLimits(header http.Header) (RateLimits, bool) {
	shortLimit, dailyLimit, ok := parsePair(header.Get("X-RateLimit-Limit"))
	if !ok {
		return RateLimits{}, false
	}
	shortUsage, dailyUsage, ok := parsePair(header.Get("X-RateLimit-Usage"))
	if !ok {
		return RateLimits{}, false
	}

	return RateLimits{
		ShortLimit: shortLimit,
		DailyLimit: dailyLimit,
		ShortUsage: shortUsage,
		DailyUsage: dailyUsage,
	}, true
}

// Exceeded reports whether either window is used up.
func (l RateLimits) Exceeded() bool {
	return (l.ShortLimit > 0 && l.ShortUsage >= l.ShortLimit) ||
		(l.DailyLimit > 0 && l.DailyUsage >= l.DailyLimit)
}

func parsePair(raw string) (int, int, bool) {
	first, second, found := strings.Cut(strings.TrimSpace(raw), ",")
	if !found {
		return 0, 0, false
	}

	a, err := strconv.Atoi(strings.TrimSpace(first))
	if err != nil {
		return 0, 0, false
	}
	b, err := strconv.Atoi(strings.TrimSpace(second))
	if err != nil {
		return 0, 0, false
	}
	return a, b, true
}
