package services

import (
	"sort"
	"time"

	"kindling_server/models"
)

// MatchPolicy decides whether a reciprocally-interested pair becomes a
// match, and produces the compatibility metrics reported to both users.
type MatchPolicy interface {
	Evaluate(a, b *models.UserProfile, now time.Time) (models.CompatibilityMetrics, bool)
}

// InterestOverlapPolicy is the reference policy: the proportion of shared
// declared interests (size of the intersection over the size of the union)
// must clear MinOverlap. Age proximity is reported but does not gate.
type InterestOverlapPolicy struct {
	MinOverlap float64
}

func (p InterestOverlapPolicy) Evaluate(a, b *models.UserProfile, now time.Time) (models.CompatibilityMetrics, bool) {
	metrics := models.CompatibilityMetrics{
		AgeProximity: ageProximity(a, b, now),
	}

	if a != nil && b != nil {
		metrics.InterestOverlap, metrics.SharedInterests = interestOverlap(a.Interests, b.Interests)
	}

	return metrics, metrics.InterestOverlap >= p.MinOverlap
}

func interestOverlap(a, b []string) (float64, []string) {
	if len(a) == 0 && len(b) == 0 {
		return 0, nil
	}

	seen := map[string]bool{}
	for _, interest := range a {
		seen[interest] = true
	}

	union := map[string]bool{}
	for _, interest := range append(append([]string(nil), a...), b...) {
		union[interest] = true
	}

	var shared []string
	for _, interest := range b {
		if seen[interest] && !contains(shared, interest) {
			shared = append(shared, interest)
		}
	}
	sort.Strings(shared)

	return float64(len(shared)) / float64(len(union)), shared
}

// ageProximity maps the age gap onto (0, 1]: equal ages score 1, each year
// of difference decays the score. Zero when either age is unknown.
func ageProximity(a, b *models.UserProfile, now time.Time) float64 {
	if a == nil || b == nil {
		return 0
	}
	ageA, ageB := a.Age(now), b.Age(now)
	if ageA < 0 || ageB < 0 {
		return 0
	}

	diff := ageA - ageB
	if diff < 0 {
		diff = -diff
	}
	return 1 / (1 + float64(diff))
}
