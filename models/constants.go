package models

// DynamoDB table names
const (
	ConversationsTable = "Conversations"
	SwipesTable        = "Swipes"
	MatchesTable       = "Matches"
	UserProfilesTable  = "UserProfiles"
)

// GSI names
const (
	// MatchUser1Index and MatchUser2Index index matches by each side of the
	// pair so "matches for user X" never needs a full scan.
	MatchUser1Index = "user1Id-index"
	MatchUser2Index = "user2Id-index"
)
