package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"kindling_server/models"
	"kindling_server/services"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testRouter wires the controllers against in-memory stores, mirroring the
// production route layout.
func testRouter() *mux.Router {
	store := services.NewMemoryConversationStore()
	convSvc := services.NewConversationService(store, services.NopNotifier{})
	msgSvc := services.NewMessageService(store, nil, services.NopNotifier{})

	convController := NewConversationController(convSvc)
	msgController := NewMessageController(msgSvc)

	r := mux.NewRouter()
	sub := r.PathPrefix("/api/conversations").Subrouter()
	sub.HandleFunc("", convController.HandleList).Methods("GET")
	sub.HandleFunc("/{otherUserId}", convController.HandleCreateOrGet).Methods("POST")
	sub.HandleFunc("/{otherUserId}/accept", convController.HandleAccept).Methods("POST")
	sub.HandleFunc("/{otherUserId}/messages", msgController.HandleSend).Methods("POST")
	sub.HandleFunc("/{otherUserId}/messages", msgController.HandleGetMessages).Methods("GET")
	return r
}

func doRequest(t *testing.T, r *mux.Router, method, path, caller string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if caller != "" {
		req.Header.Set(CallerHeader, caller)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestCreateOrGetStatusCodes(t *testing.T) {
	r := testRouter()

	rec := doRequest(t, r, http.MethodPost, "/api/conversations/bob", "alice", nil)
	assert.Equal(t, http.StatusCreated, rec.Code)

	var created models.Conversation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "alice#bob", created.ConversationKey)

	// The other side resolves to the same row with 200.
	rec = doRequest(t, r, http.MethodPost, "/api/conversations/alice", "bob", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var existing models.Conversation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &existing))
	assert.Equal(t, created.ID, existing.ID)
}

func TestMissingCallerHeader(t *testing.T) {
	r := testRouter()

	rec := doRequest(t, r, http.MethodPost, "/api/conversations/bob", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateOrGetSelfPair(t *testing.T) {
	r := testRouter()

	rec := doRequest(t, r, http.MethodPost, "/api/conversations/alice", "alice", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSendAndFetchMessages(t *testing.T) {
	r := testRouter()

	rec := doRequest(t, r, http.MethodPost, "/api/conversations/bob", "alice", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, r, http.MethodPost, "/api/conversations/bob/messages", "alice",
		map[string]string{"text": "hello"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, r, http.MethodGet, "/api/conversations/alice/messages", "bob", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var msgs []models.Message
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &msgs))
	require.Len(t, msgs, 1)
	assert.Equal(t, "hello", msgs[0].Text)
	assert.Equal(t, "alice", msgs[0].SenderID)
}

func TestSendEmptyMessage(t *testing.T) {
	r := testRouter()

	doRequest(t, r, http.MethodPost, "/api/conversations/bob", "alice", nil)
	rec := doRequest(t, r, http.MethodPost, "/api/conversations/bob/messages", "alice",
		map[string]string{"text": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSendToNonParticipantConversation(t *testing.T) {
	r := testRouter()

	rec := doRequest(t, r, http.MethodPost, "/api/conversations/dave/messages", "alice",
		map[string]string{"text": "hi"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
