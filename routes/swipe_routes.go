package routes

import (
	"kindling_server/controllers"
	"kindling_server/services"

	"github.com/gorilla/mux"
)

// RegisterSwipeRoutes sets up swipe recording and match listing routes
func RegisterSwipeRoutes(r *mux.Router, swipes *services.SwipeService) {
	controller := controllers.NewSwipeController(swipes)

	swipeRouter := r.PathPrefix("/api/swipes").Subrouter()
	swipeRouter.HandleFunc("", controller.HandleRecordSwipe).Methods("POST")
	swipeRouter.HandleFunc("", controller.HandleListSwiped).Methods("GET")

	r.HandleFunc("/api/matches", controller.HandleListMatches).Methods("GET")
}
