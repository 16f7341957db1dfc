package handlers

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"quillbox.dev/project-quillbox/middleware"
	"quillbox.dev/project-quillbox/models"
)

func LikePost(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserIDFrom(r)
		if !ok {
			http.Error(w, "Authentication required", http.StatusUnauthorized)
			return
		}

		vars := mux.Vars(r)
		postID, err := strconv.Atoi(vars["blogId"])
		if err != nil {
			http.Error(w, "Invalid post ID", http.StatusBadRequest)
			return
		}

		exists, err := postExists(db, postID)
		if err != nil {
			http.Error(w, "Database query failed", http.StatusInternalServerError)
			log.Println("LikePost exists check error:", err)
			return
		}
		if !exists {
			http.Error(w, "Post not found", http.StatusNotFound)
			return
		}

		// Duplicate likes are rejected by the (user_id, post_id) unique
		// constraint rather than a read-then-write check, so concurrent
		// requests cannot slip through.
		var like models.Like
		err = db.QueryRow(`
			INSERT INTO likes (user_id, post_id, created_at)
			VALUES ($1, $2, NOW())
			RETURNING id, post_id, user_id, created_at`,
			userID, postID,
		).Scan(&like.ID, &like.PostID, &like.UserID, &like.CreatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				http.Error(w, "You have already liked this post", http.StatusConflict)
				return
			}
			http.Error(w, "Failed to like post", http.StatusInternalServerError)
			log.Println("LikePost error:", err)
			return
		}

		go notifyPostAuthor(db, postID, userID, "like", "")

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"message": "Post liked successfully",
			"like":    like,
		})
	}
}

func UnlikePost(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserIDFrom(r)
		if !ok {
			http.Error(w, "Authentication required", http.StatusUnauthorized)
			return
		}

		vars := mux.Vars(r)
		postID, err := strconv.Atoi(vars["blogId"])
		if err != nil {
			http.Error(w, "Invalid post ID", http.StatusBadRequest)
			return
		}

		res, err := db.Exec(`DELETE FROM likes WHERE user_id = $1 AND post_id = $2`,
			userID, postID)
		if err != nil {
			http.Error(w, "Failed to unlike post", http.StatusInternalServerError)
			log.Println("UnlikePost error:", err)
			return
		}

		affected, err := res.RowsAffected()
		if err != nil {
			http.Error(w, "Failed to unlike post", http.StatusInternalServerError)
			log.Println("UnlikePost rows affected error:", err)
			return
		}
		if affected == 0 {
			http.Error(w, "Like not found", http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"message": "Post unliked successfully",
		})
	}
}
