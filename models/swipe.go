package models

// SwipeAction is the directional action an actor takes on a target.
type SwipeAction string

const (
	SwipeActionPass      SwipeAction = "pass"
	SwipeActionLike      SwipeAction = "like"
	SwipeActionSuperlike SwipeAction = "superlike"
)

// Valid reports whether the action is one of the known values.
func (a SwipeAction) Valid() bool {
	switch a {
	case SwipeActionPass, SwipeActionLike, SwipeActionSuperlike:
		return true
	}
	return false
}

// IsInterest reports whether the action expresses interest and can therefore
// form one half of a reciprocal pair.
func (a SwipeAction) IsInterest() bool {
	return a == SwipeActionLike || a == SwipeActionSuperlike
}

// Swipe records one directional action. The (ActorID, TargetID) pair is the
// table's composite key, so at most one swipe per ordered pair can ever be
// persisted.
type Swipe struct {
	ActorID   string      `dynamodbav:"actorId" json:"actorId"`
	TargetID  string      `dynamodbav:"targetId" json:"targetId"`
	Action    SwipeAction `dynamodbav:"action" json:"action"`
	CreatedAt string      `dynamodbav:"createdAt" json:"createdAt"`
}
