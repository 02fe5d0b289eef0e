package controllers

import (
	"net/http"
	"strconv"

	"kindling_server/models"
	"kindling_server/services"

	"github.com/gorilla/mux"
)

// MessageController handles the ledger endpoints of a conversation.
type MessageController struct {
	Messages *services.MessageService
}

func NewMessageController(messages *services.MessageService) *MessageController {
	return &MessageController{Messages: messages}
}

// HandleSend - append a message to the conversation with the other user
func (c *MessageController) HandleSend(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}

	var request struct {
		Text  string                  `json:"text"`
		Media *models.MediaDescriptor `json:"media"`
	}
	if !decodeBody(w, r, &request) {
		return
	}

	msg, err := c.Messages.Append(r.Context(), caller, mux.Vars(r)["otherUserId"], request.Text, request.Media)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

// HandleGetMessages - ledger in timestamp order, optionally the newest N
func (c *MessageController) HandleGetMessages(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit < 0 {
		limit = 0
	}

	msgs, svcErr := c.Messages.Messages(r.Context(), caller, mux.Vars(r)["otherUserId"], limit)
	if svcErr != nil {
		writeError(w, svcErr)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

// HandleEdit - sender-only message edit
func (c *MessageController) HandleEdit(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}

	var request struct {
		Text string `json:"text"`
	}
	if !decodeBody(w, r, &request) {
		return
	}

	vars := mux.Vars(r)
	msg, err := c.Messages.Edit(r.Context(), caller, vars["otherUserId"], vars["messageId"], request.Text)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, msg)
}

// HandleDelete - sender-only hard delete of a message
func (c *MessageController) HandleDelete(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}

	vars := mux.Vars(r)
	if err := c.Messages.Delete(r.Context(), caller, vars["otherUserId"], vars["messageId"]); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// HandleMarkRead - mark one received message as read
func (c *MessageController) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}

	vars := mux.Vars(r)
	if err := c.Messages.MarkRead(r.Context(), caller, vars["otherUserId"], vars["messageId"]); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "read"})
}

// HandleMarkAllRead - mark everything received as read, zero the badge
func (c *MessageController) HandleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}

	if err := c.Messages.MarkAllRead(r.Context(), caller, mux.Vars(r)["otherUserId"]); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "read"})
}

// HandleFlag - moderation overlay on a message
func (c *MessageController) HandleFlag(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}

	var request struct {
		Reason string `json:"reason"`
	}
	if !decodeBody(w, r, &request) {
		return
	}

	vars := mux.Vars(r)
	if err := c.Messages.Flag(r.Context(), caller, vars["otherUserId"], vars["messageId"], request.Reason); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "flagged"})
}
