package routes

import (
	"database/sql"

	"github.com/gorilla/mux"
	"quillbox.dev/project-quillbox/handlers"
	"quillbox.dev/project-quillbox/services"
)

func CreatePostRoutes(db *sql.DB, queue services.JobPublisher, protected *mux.Router) {
	protected.HandleFunc("/blogs", handlers.CreatePost(db, queue)).Methods("POST")
	protected.HandleFunc("/blogs/me", handlers.GetMyPosts(db)).Methods("GET")
	protected.HandleFunc("/blogs/{id:[0-9]+}", handlers.UpdatePost(db, queue)).Methods("PATCH")
	protected.HandleFunc("/blogs/{id:[0-9]+}", handlers.DeletePost(db)).Methods("DELETE")

	protected.HandleFunc("/blogs/{blogId:[0-9]+}/like", handlers.LikePost(db)).Methods("POST")
	protected.HandleFunc("/blogs/{blogId:[0-9]+}/like", handlers.UnlikePost(db)).Methods("DELETE")
	protected.HandleFunc("/blogs/{blogId:[0-9]+}/comments", handlers.CreateComment(db)).Methods("POST")
}
