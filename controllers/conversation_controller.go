package controllers

import (
	"net/http"

	"kindling_server/services"

	"github.com/gorilla/mux"
)

// ConversationController handles conversation lifecycle endpoints. The
// other participant is addressed in the path; the caller comes from the
// auth header, so a pair can only ever be addressed by its members.
type ConversationController struct {
	Conversations *services.ConversationService
}

func NewConversationController(conversations *services.ConversationService) *ConversationController {
	return &ConversationController{Conversations: conversations}
}

// HandleCreateOrGet - idempotently opens the conversation with another user
func (c *ConversationController) HandleCreateOrGet(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}
	otherID := mux.Vars(r)["otherUserId"]

	conv, created, err := c.Conversations.CreateOrGet(r.Context(), caller, otherID)
	if err != nil {
		writeError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, conv)
}

// HandleList - conversations visible to the caller with their unread counts
func (c *ConversationController) HandleList(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}

	views, err := c.Conversations.List(r.Context(), caller)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// HandleAccept - accept a pending chat request
func (c *ConversationController) HandleAccept(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}

	if err := c.Conversations.Accept(r.Context(), caller, mux.Vars(r)["otherUserId"]); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "accepted"})
}

// HandleBlock - block the conversation regardless of its current state
func (c *ConversationController) HandleBlock(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}

	if err := c.Conversations.Block(r.Context(), caller, mux.Vars(r)["otherUserId"]); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "blocked"})
}

// HandleDelete - soft delete for the caller; erases once both sides deleted
func (c *ConversationController) HandleDelete(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}

	if err := c.Conversations.Delete(r.Context(), caller, mux.Vars(r)["otherUserId"]); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
