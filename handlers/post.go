package handlers

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"quillbox.dev/project-quillbox/middleware"
	"quillbox.dev/project-quillbox/models"
	"quillbox.dev/project-quillbox/services"
)

const maxTitleLen = 200

func CreatePost(db *sql.DB, queue services.JobPublisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserIDFrom(r)
		if !ok {
			http.Error(w, "Authentication required", http.StatusUnauthorized)
			return
		}

		var req struct {
			Title       string `json:"title"`
			Content     string `json:"content"`
			IsPublished bool   `json:"is_published"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		if req.Title == "" {
			http.Error(w, "title is required", http.StatusBadRequest)
			return
		}
		if len(req.Title) > maxTitleLen {
			http.Error(w, "title must be at most 200 characters", http.StatusBadRequest)
			return
		}
		if req.Content == "" {
			http.Error(w, "content is required", http.StatusBadRequest)
			return
		}

		slug := services.GenerateSlug(req.Title)

		var p models.Post
		err := db.QueryRow(`
			INSERT INTO posts (user_id, title, content, slug, is_published, created_at)
			VALUES ($1, $2, $3, $4, $5, NOW())
			RETURNING id, user_id, title, content, slug, is_published, summary, created_at`,
			userID, req.Title, req.Content, slug, req.IsPublished,
		).Scan(&p.ID, &p.UserID, &p.Title, &p.Content, &p.Slug,
			&p.IsPublished, &p.Summary, &p.CreatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				http.Error(w, "A post with this slug already exists", http.StatusConflict)
				return
			}
			http.Error(w, "Failed to create post", http.StatusInternalServerError)
			log.Println("CreatePost error:", err)
			return
		}

		if p.IsPublished {
			enqueueSummary(queue, p.ID, p.Content)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(p)
	}
}

// enqueueSummary schedules summary generation for a just-published post.
// The post is already persisted, so enqueue failures must not fail the
// request; the summary stays absent until the post is re-published.
func enqueueSummary(queue services.JobPublisher, postID int, content string) {
	err := queue.EnqueueSummaryJob(models.SummaryJob{
		PostID:  postID,
		Content: content,
	})
	if err != nil {
		log.Printf("Failed to enqueue summary job for post %d: %v", postID, err)
	}
}

func GetMyPosts(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserIDFrom(r)
		if !ok {
			http.Error(w, "Authentication required", http.StatusUnauthorized)
			return
		}

		rows, err := db.Query(`
			SELECT id, user_id, title, content, slug, is_published, summary, created_at
			FROM posts
			WHERE user_id = $1
			ORDER BY created_at DESC`,
			userID)
		if err != nil {
			http.Error(w, "Database query failed", http.StatusInternalServerError)
			log.Println("GetMyPosts error:", err)
			return
		}
		defer rows.Close()

		posts := []models.Post{}
		for rows.Next() {
			var p models.Post
			if err := rows.Scan(&p.ID, &p.UserID, &p.Title, &p.Content, &p.Slug,
				&p.IsPublished, &p.Summary, &p.CreatedAt); err != nil {
				http.Error(w, "Error scanning posts", http.StatusInternalServerError)
				log.Println("GetMyPosts scan error:", err)
				return
			}
			posts = append(posts, p)
		}
		if err := rows.Err(); err != nil {
			http.Error(w, "Error iterating posts", http.StatusInternalServerError)
			log.Println("GetMyPosts rows error:", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(posts)
	}
}

func UpdatePost(db *sql.DB, queue services.JobPublisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserIDFrom(r)
		if !ok {
			http.Error(w, "Authentication required", http.StatusUnauthorized)
			return
		}

		vars := mux.Vars(r)
		postID, err := strconv.Atoi(vars["id"])
		if err != nil {
			http.Error(w, "Invalid post ID", http.StatusBadRequest)
			return
		}

		var req struct {
			Title       *string `json:"title"`
			Content     *string `json:"content"`
			IsPublished *bool   `json:"is_published"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		var existing models.Post
		err = db.QueryRow(`
			SELECT id, user_id, is_published FROM posts WHERE id = $1`, postID).
			Scan(&existing.ID, &existing.UserID, &existing.IsPublished)
		if err != nil {
			if err == sql.ErrNoRows {
				http.Error(w, "Post not found", http.StatusNotFound)
			} else {
				http.Error(w, "Database query failed", http.StatusInternalServerError)
				log.Println("UpdatePost lookup error:", err)
			}
			return
		}

		if existing.UserID != userID {
			http.Error(w, "You can only edit your own posts", http.StatusForbidden)
			return
		}

		setClauses := []string{}
		args := []interface{}{}
		i := 1

		if req.Title != nil {
			if *req.Title == "" {
				http.Error(w, "title cannot be empty", http.StatusBadRequest)
				return
			}
			setClauses = append(setClauses, "title = $"+strconv.Itoa(i))
			args = append(args, *req.Title)
			i++
		}
		if req.Content != nil {
			if *req.Content == "" {
				http.Error(w, "content cannot be empty", http.StatusBadRequest)
				return
			}
			setClauses = append(setClauses, "content = $"+strconv.Itoa(i))
			args = append(args, *req.Content)
			i++
		}
		if req.IsPublished != nil {
			setClauses = append(setClauses, "is_published = $"+strconv.Itoa(i))
			args = append(args, *req.IsPublished)
			i++
		}

		if len(setClauses) == 0 {
			http.Error(w, "No fields provided for update", http.StatusBadRequest)
			return
		}

		sqlStr := "UPDATE posts SET " + strings.Join(setClauses, ", ") +
			" WHERE id = $" + strconv.Itoa(i) +
			" RETURNING id, user_id, title, content, slug, is_published, summary, created_at"
		args = append(args, postID)

		var updated models.Post
		err = db.QueryRow(sqlStr, args...).
			Scan(&updated.ID, &updated.UserID, &updated.Title, &updated.Content,
				&updated.Slug, &updated.IsPublished, &updated.Summary, &updated.CreatedAt)
		if err != nil {
			http.Error(w, "Database update failed", http.StatusInternalServerError)
			log.Println("UpdatePost error:", err)
			return
		}

		// Summary generation triggers on the draft-to-published transition,
		// detected by comparing stored state against the updated row. The
		// snapshot is the post-patch content.
		if updated.IsPublished && !existing.IsPublished {
			enqueueSummary(queue, updated.ID, updated.Content)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(updated)
	}
}

func DeletePost(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserIDFrom(r)
		if !ok {
			http.Error(w, "Authentication required", http.StatusUnauthorized)
			return
		}

		vars := mux.Vars(r)
		postID, err := strconv.Atoi(vars["id"])
		if err != nil {
			http.Error(w, "Invalid post ID", http.StatusBadRequest)
			return
		}

		var ownerID int
		err = db.QueryRow(`SELECT user_id FROM posts WHERE id = $1`, postID).Scan(&ownerID)
		if err != nil {
			if err == sql.ErrNoRows {
				http.Error(w, "Post not found", http.StatusNotFound)
			} else {
				http.Error(w, "Database query failed", http.StatusInternalServerError)
				log.Println("DeletePost lookup error:", err)
			}
			return
		}

		if ownerID != userID {
			http.Error(w, "You can only delete your own posts", http.StatusForbidden)
			return
		}

		if _, err := db.Exec(`DELETE FROM posts WHERE id = $1`, postID); err != nil {
			http.Error(w, "Failed to delete post", http.StatusInternalServerError)
			log.Println("DeletePost error:", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"message": "Post deleted successfully",
		})
	}
}
