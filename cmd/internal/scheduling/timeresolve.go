package scheduling

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrAmbiguousExpression means the expression carried neither an anchor
// keyword nor a recognizable time pattern. The caller must ask the user to
// fix the time manually; the resolver never invents one.
var ErrAmbiguousExpression = errors.New("time expression cannot be resolved")

// MinDerivedDuration is the floor for durations derived from an hour range
// in the expression itself ("14 do 15").
const MinDerivedDuration = 15 * time.Minute

// Resolution is the outcome of resolving a spoken time expression.
type Resolution struct {
	Start time.Time
	// DerivedDuration is nonzero when the expression implied a duration
	// through an hour range. Used only when the extraction carried no
	// explicit duration of its own.
	DerivedDuration time.Duration
}

var (
	clockPattern = regexp.MustCompile(`(\d{1,2}):(\d{2})`)
	rangePattern = regexp.MustCompile(`(\d{1,2})\s*(?:do|to|–|-)\s*(\d{1,2})`)
)

// Token sets cover the Serbian the assistant is spoken to in, plus English.
var (
	tomorrowTokens = []string{"sutra", "tomorrow"}
	nowTokens      = []string{"sada", "now"}
)

// ResolveExpression turns a relative or partial time expression into an
// absolute start time anchored to now in the user's timezone.
//
// Rules, in order: an RFC3339 input is returned unchanged; a "tomorrow"
// token anchors to midnight of the next calendar day; a "now" token anchors
// to now; an embedded HH:MM is applied to the anchor date; an hour range
// ("14 do 15") supplies the start hour and a derived duration.
func ResolveExpression(expr string, now time.Time, loc *time.Location) (*Resolution, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, ErrAmbiguousExpression
	}

	if t, err := time.Parse(time.RFC3339, expr); err == nil {
		return &Resolution{Start: t}, nil
	}

	lower := strings.ToLower(expr)
	local := now.In(loc)

	anchored := true
	var anchor time.Time
	switch {
	case containsAny(lower, tomorrowTokens):
		anchor = midnight(local.AddDate(0, 0, 1))
	case containsAny(lower, nowTokens):
		anchor = local
	default:
		// No keyword: a bare clock time still resolves against today.
		anchored = false
		anchor = midnight(local)
	}

	if m := clockPattern.FindStringSubmatch(expr); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		if hour <= 23 && minute <= 59 {
			return &Resolution{Start: atClock(anchor, hour, minute)}, nil
		}
	}

	if m := rangePattern.FindStringSubmatch(expr); m != nil {
		from, _ := strconv.Atoi(m[1])
		to, _ := strconv.Atoi(m[2])
		if from <= 23 {
			derived := time.Duration(to-from) * time.Hour
			if derived < MinDerivedDuration {
				derived = MinDerivedDuration
			}
			return &Resolution{Start: atClock(anchor, from, 0), DerivedDuration: derived}, nil
		}
	}

	if !anchored {
		return nil, ErrAmbiguousExpression
	}
	return &Resolution{Start: anchor}, nil
}

// UserLocation resolves an IANA timezone name, falling back to UTC when the
// stored name is empty or unknown.
func UserLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// DayWindow returns the epoch-millis bounds of the calendar day containing t.
func DayWindow(t time.Time) (int64, int64) {
	start := midnight(t)
	return start.UnixMilli(), start.AddDate(0, 0, 1).UnixMilli()
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func atClock(anchor time.Time, hour, minute int) time.Time {
	y, m, d := anchor.Date()
	return time.Date(y, m, d, hour, minute, 0, 0, anchor.Location())
}

func containsAny(s string, tokens []string) bool {
	for _, tok := range tokens {
		if strings.Contains(s, tok) {
			return true
		}
	}
	return false
}
