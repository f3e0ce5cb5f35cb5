// Package leveling maps cumulative experience to levels.
//
// Advancing from level L-1 to L costs floor(100 * L^1.3) XP; level 1 is free.
// All functions are pure.
package leveling

import "math"

const (
	baseCost = 100.0
	exponent = 1.3
)

// Progress is the position of a cumulative XP total on the level curve.
type Progress struct {
	Level           int   `json:"level"`
	XPIntoLevel     int64 `json:"xp_into_level"`
	XPToNextLevel   int64 `json:"xp_to_next_level"`
	ProgressPercent int   `json:"progress_percent"`
}

// Gain is the outcome of adding XP to a running total.
type Gain struct {
	NewTotalXP int64 `json:"new_total_xp"`
	LeveledUp  bool  `json:"leveled_up"`
	NewLevel   int   `json:"new_level"`
	OldLevel   int   `json:"old_level"`
}

// XPRequiredForLevel returns the incremental cost of reaching level from level-1.
func XPRequiredForLevel(level int) int64 {
	if level <= 1 {
		return 0
	}
	return int64(math.Floor(baseCost * math.Pow(float64(level), exponent)))
}

// CumulativeXPForLevel returns the total XP needed to stand at level.
func CumulativeXPForLevel(level int) int64 {
	var total int64
	for i := 2; i <= level; i++ {
		total += XPRequiredForLevel(i)
	}
	return total
}

// LevelFromXP locates totalXP on the curve. Negative totals are outside the
// contract and resolve to level 1. The search stops at the last level whose
// cumulative cost still fits in an int64.
func LevelFromXP(totalXP int64) Progress {
	level := 1
	floor := int64(0)
	for {
		cost := XPRequiredForLevel(level + 1)
		if cost > math.MaxInt64-floor {
			break
		}
		next := floor + cost
		if totalXP < next {
			break
		}
		floor = next
		level++
	}

	into := totalXP - floor
	span := XPRequiredForLevel(level + 1)

	return Progress{
		Level:           level,
		XPIntoLevel:     into,
		XPToNextLevel:   span,
		ProgressPercent: int(math.Round(float64(into) / float64(span) * 100)),
	}
}

// ApplyXPGain adds gained to current and reports the level change. Zero and
// negative gains are computed, not rejected. Totals saturate at the int64
// bounds instead of wrapping.
func ApplyXPGain(current, gained int64) Gain {
	newTotal := saturatingAdd(current, gained)
	oldLevel := LevelFromXP(current).Level
	newLevel := LevelFromXP(newTotal).Level

	return Gain{
		NewTotalXP: newTotal,
		LeveledUp:  newLevel > oldLevel,
		NewLevel:   newLevel,
		OldLevel:   oldLevel,
	}
}

func saturatingAdd(a, b int64) int64 {
	if b > 0 && a > math.MaxInt64-b {
		return math.MaxInt64
	}
	if b < 0 && a < math.MinInt64-b {
		return math.MinInt64
	}
	return a + b
}
