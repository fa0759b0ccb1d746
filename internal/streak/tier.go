package streak

import "math"

// MaxTier is the highest badge tier a habit can earn.
const MaxTier = 5

// TierThresholds holds the week streak needed to reach tiers 1..MaxTier.
var TierThresholds = [MaxTier]int{1, 3, 12, 26, 52}

// TierFor maps a week streak onto its badge tier. Negative streaks map to tier 0.
func TierFor(weekStreak int) int {
	tier := 0
	for _, threshold := range TierThresholds {
		if weekStreak < threshold {
			break
		}
		tier++
	}
	return tier
}

// BadgeProgress returns how far, in percent, the streak is towards each tier.
// Reached tiers report 100; unreached tiers are capped at 99 so a badge is
// never shown as complete before it is earned.
func BadgeProgress(weekStreak int) [MaxTier]int {
	var progress [MaxTier]int
	for i, threshold := range TierThresholds {
		if weekStreak >= threshold {
			progress[i] = 100
			continue
		}
		if weekStreak <= 0 {
			continue
		}
		pct := int(math.Round(float64(weekStreak) / float64(threshold) * 100))
		progress[i] = min(99, pct)
	}
	return progress
}
