package routes

import (
	"database/sql"

	"github.com/gorilla/mux"
	"quillbox.dev/project-quillbox/handlers"
)

func CreateAuthRoutes(db *sql.DB, router *mux.Router, protected *mux.Router) {
	router.HandleFunc("/auth/register", handlers.Register(db)).Methods("POST")
	router.HandleFunc("/auth/login", handlers.Login(db)).Methods("POST")

	protected.HandleFunc("/auth/device-token", handlers.RegisterDeviceToken(db)).Methods("POST")
}
