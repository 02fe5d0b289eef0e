package routes

import (
	"kindling_server/controllers"
	"kindling_server/services"

	"github.com/gorilla/mux"
)

// RegisterConversationRoutes sets up conversation lifecycle and message
// ledger routes under /api/conversations
func RegisterConversationRoutes(r *mux.Router, conversations *services.ConversationService, messages *services.MessageService) {
	convController := controllers.NewConversationController(conversations)
	msgController := controllers.NewMessageController(messages)

	convRouter := r.PathPrefix("/api/conversations").Subrouter()

	convRouter.HandleFunc("", convController.HandleList).Methods("GET")
	convRouter.HandleFunc("/{otherUserId}", convController.HandleCreateOrGet).Methods("POST")
	convRouter.HandleFunc("/{otherUserId}", convController.HandleDelete).Methods("DELETE")
	convRouter.HandleFunc("/{otherUserId}/accept", convController.HandleAccept).Methods("POST")
	convRouter.HandleFunc("/{otherUserId}/block", convController.HandleBlock).Methods("POST")

	convRouter.HandleFunc("/{otherUserId}/messages", msgController.HandleSend).Methods("POST")
	convRouter.HandleFunc("/{otherUserId}/messages", msgController.HandleGetMessages).Methods("GET")
	convRouter.HandleFunc("/{otherUserId}/messages/read-all", msgController.HandleMarkAllRead).Methods("POST")
	convRouter.HandleFunc("/{otherUserId}/messages/{messageId}", msgController.HandleEdit).Methods("PATCH")
	convRouter.HandleFunc("/{otherUserId}/messages/{messageId}", msgController.HandleDelete).Methods("DELETE")
	convRouter.HandleFunc("/{otherUserId}/messages/{messageId}/read", msgController.HandleMarkRead).Methods("POST")
	convRouter.HandleFunc("/{otherUserId}/messages/{messageId}/flag", msgController.HandleFlag).Methods("POST")
}
