package models

// CompatibilityMetrics is computed by the match policy when reciprocal
// interest is detected and is returned to both callers whether or not the
// pair cleared the threshold.
type CompatibilityMetrics struct {
	InterestOverlap float64  `dynamodbav:"interestOverlap" json:"interestOverlap"`
	SharedInterests []string `dynamodbav:"sharedInterests,omitempty" json:"sharedInterests,omitempty"`
	AgeProximity    float64  `dynamodbav:"ageProximity" json:"ageProximity"`
}

// Match is materialized exactly once per unordered user pair. PairKey is the
// canonical pair key and the table's partition key, mirroring the
// conversation table's uniqueness discipline.
type Match struct {
	PairKey string `dynamodbav:"pairKey" json:"pairKey"`
	ID      string `dynamodbav:"id" json:"id"`
	User1ID string `dynamodbav:"user1Id" json:"user1Id"`
	User2ID string `dynamodbav:"user2Id" json:"user2Id"`

	Compatibility CompatibilityMetrics `dynamodbav:"compatibility" json:"compatibility"`

	CreatedAt        string `dynamodbav:"createdAt" json:"createdAt"`
	LastInteractedAt string `dynamodbav:"lastInteractedAt" json:"lastInteractedAt"`
}

// Involves reports whether userID is one side of the match.
func (m *Match) Involves(userID string) bool {
	return m.User1ID == userID || m.User2ID == userID
}
