package routes

import (
	"database/sql"

	"github.com/gorilla/mux"
	"quillbox.dev/project-quillbox/handlers"
)

func CreatePublicRoutes(db *sql.DB, router *mux.Router) {
	router.HandleFunc("/public/feed", handlers.GetPublicFeed(db)).Methods("GET")
	router.HandleFunc("/public/blogs/{slug}", handlers.GetPublicPostBySlug(db)).Methods("GET")
	router.HandleFunc("/blogs/{blogId:[0-9]+}/comments", handlers.GetPostComments(db)).Methods("GET")
}
