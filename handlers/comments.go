package handlers

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"quillbox.dev/project-quillbox/middleware"
	"quillbox.dev/project-quillbox/models"
	"quillbox.dev/project-quillbox/services"
)

const maxCommentLen = 500

func postExists(db *sql.DB, postID int) (bool, error) {
	var exists bool
	err := db.QueryRow(`SELECT EXISTS (SELECT 1 FROM posts WHERE id = $1)`, postID).
		Scan(&exists)
	return exists, err
}

func CreateComment(db *sql.DB) http.HandlerFunc {
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

		var req struct {
			Content string `json:"content"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		if req.Content == "" {
			http.Error(w, "Comment content is required", http.StatusBadRequest)
			return
		}
		if len(req.Content) > maxCommentLen {
			http.Error(w, "Comment must be at most 500 characters", http.StatusBadRequest)
			return
		}

		// Commenting on drafts is allowed; only existence is checked.
		exists, err := postExists(db, postID)
		if err != nil {
			http.Error(w, "Database query failed", http.StatusInternalServerError)
			log.Println("CreateComment exists check error:", err)
			return
		}
		if !exists {
			http.Error(w, "Post not found", http.StatusNotFound)
			return
		}

		var c models.CommentWithAuthor
		err = db.QueryRow(`
			INSERT INTO comments (post_id, user_id, content, created_at)
			VALUES ($1, $2, $3, NOW())
			RETURNING id, post_id, user_id, content, created_at`,
			postID, userID, req.Content,
		).Scan(&c.ID, &c.PostID, &c.UserID, &c.Content, &c.CreatedAt)
		if err != nil {
			http.Error(w, "Failed to create comment", http.StatusInternalServerError)
			log.Println("CreateComment error:", err)
			return
		}

		err = db.QueryRow(`SELECT id, email FROM users WHERE id = $1`, userID).
			Scan(&c.Author.ID, &c.Author.Email)
		if err != nil {
			http.Error(w, "Failed to load comment author", http.StatusInternalServerError)
			log.Println("CreateComment author error:", err)
			return
		}

		go notifyPostAuthor(db, postID, userID, "comment", c.Content)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(c)
	}
}

func GetPostComments(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		postID, err := strconv.Atoi(vars["blogId"])
		if err != nil {
			http.Error(w, "Invalid post ID", http.StatusBadRequest)
			return
		}

		exists, err := postExists(db, postID)
		if err != nil {
			http.Error(w, "Database query failed", http.StatusInternalServerError)
			log.Println("GetPostComments exists check error:", err)
			return
		}
		if !exists {
			http.Error(w, "Post not found", http.StatusNotFound)
			return
		}

		rows, err := db.Query(`
			SELECT c.id, c.post_id, c.user_id, c.content, c.created_at,
			       u.id, u.email
			FROM comments c
			JOIN users u ON c.user_id = u.id
			WHERE c.post_id = $1
			ORDER BY c.created_at DESC`,
			postID)
		if err != nil {
			http.Error(w, "Failed to fetch comments", http.StatusInternalServerError)
			log.Println("GetPostComments error:", err)
			return
		}
		defer rows.Close()

		comments := []models.CommentWithAuthor{}
		for rows.Next() {
			var c models.CommentWithAuthor
			if err := rows.Scan(&c.ID, &c.PostID, &c.UserID, &c.Content, &c.CreatedAt,
				&c.Author.ID, &c.Author.Email); err != nil {
				http.Error(w, "Error scanning comments", http.StatusInternalServerError)
				log.Println("GetPostComments scan error:", err)
				return
			}
			comments = append(comments, c)
		}
		if err := rows.Err(); err != nil {
			http.Error(w, "Error iterating comments", http.StatusInternalServerError)
			log.Println("GetPostComments rows error:", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(comments)
	}
}

// notifyPostAuthor pushes a best-effort notification to a post's author when
// someone likes or comments. Self-engagement is not notified.
func notifyPostAuthor(db *sql.DB, postID, actorID int, event, detail string) {
	if !services.NotificationsEnabled() {
		return
	}

	var authorID int
	var title string
	err := db.QueryRow(`SELECT user_id, title FROM posts WHERE id = $1`, postID).
		Scan(&authorID, &title)
	if err != nil {
		log.Printf("notifyPostAuthor: failed to load post %d: %v", postID, err)
		return
	}
	if authorID == actorID {
		return
	}

	var actorEmail string
	if err := db.QueryRow(`SELECT email FROM users WHERE id = $1`, actorID).
		Scan(&actorEmail); err != nil {
		log.Printf("notifyPostAuthor: failed to load actor %d: %v", actorID, err)
		return
	}

	var notifTitle, body string
	switch event {
	case "like":
		notifTitle = fmt.Sprintf("%s liked your post", actorEmail)
		body = title
	case "comment":
		notifTitle = fmt.Sprintf("%s commented on your post", actorEmail)
		body = detail
		if r := []rune(body); len(r) > 100 {
			body = string(r[:97]) + "..."
		}
	default:
		return
	}

	data := map[string]string{
		"type":    event,
		"post_id": strconv.Itoa(postID),
	}

	if err := services.NotifyUser(db, authorID, notifTitle, body, data); err != nil {
		log.Printf("notifyPostAuthor: push to user %d failed: %v", authorID, err)
	}
}
