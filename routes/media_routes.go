package routes

import (
	"kindling_server/controllers"
	"kindling_server/services"

	"github.com/gorilla/mux"
)

// RegisterMediaRoutes sets up presigned URL routes for message attachments
func RegisterMediaRoutes(r *mux.Router, media *services.MediaService) {
	controller := controllers.NewMediaController(media)

	mediaRouter := r.PathPrefix("/api/media").Subrouter()
	mediaRouter.HandleFunc("/upload-url", controller.HandleUploadURL).Methods("POST")
	mediaRouter.HandleFunc("/read-url", controller.HandleReadURL).Methods("GET")
}
