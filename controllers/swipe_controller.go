package controllers

import (
	"net/http"

	"kindling_server/models"
	"kindling_server/services"
)

// SwipeController handles swipe recording and match listing.
type SwipeController struct {
	Swipes *services.SwipeService
}

func NewSwipeController(swipes *services.SwipeService) *SwipeController {
	return &SwipeController{Swipes: swipes}
}

// HandleRecordSwipe - record a directional action; reports whether it
// completed a match
func (c *SwipeController) HandleRecordSwipe(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}

	var request struct {
		TargetID string             `json:"targetId"`
		Action   models.SwipeAction `json:"action"`
	}
	if !decodeBody(w, r, &request) {
		return
	}

	result, err := c.Swipes.RecordSwipe(r.Context(), caller, request.TargetID, request.Action)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// HandleListSwiped - ids the caller already acted on (discovery exclusion)
func (c *SwipeController) HandleListSwiped(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}

	targets, err := c.Swipes.SwipedTargets(r.Context(), caller)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, targets)
}

// HandleListMatches - the caller's materialized matches
func (c *SwipeController) HandleListMatches(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}

	matches, err := c.Swipes.MatchesFor(r.Context(), caller)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, matches)
}
