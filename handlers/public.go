package handlers

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"quillbox.dev/project-quillbox/models"
)

const (
	defaultFeedPage  = 1
	defaultFeedLimit = 10
	maxFeedLimit     = 100
)

func feedTotalPages(total, limit int) int {
	if total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

func queryIntParam(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return fallback
	}
	return v
}

func GetPublicFeed(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := queryIntParam(r, "page", defaultFeedPage)
		limit := queryIntParam(r, "limit", defaultFeedLimit)
		if limit > maxFeedLimit {
			limit = maxFeedLimit
		}

		offset := (page - 1) * limit

		var total int
		if err := db.QueryRow(`SELECT COUNT(*) FROM posts WHERE is_published = TRUE`).
			Scan(&total); err != nil {
			http.Error(w, "Database query failed", http.StatusInternalServerError)
			log.Println("GetPublicFeed count error:", err)
			return
		}

		rows, err := db.Query(`
			SELECT p.id, p.user_id, p.title, p.content, p.slug, p.is_published,
			       p.summary, p.created_at,
			       u.id, u.email,
			       COALESCE((SELECT COUNT(*) FROM likes WHERE post_id = p.id), 0) as like_count,
			       COALESCE((SELECT COUNT(*) FROM comments WHERE post_id = p.id), 0) as comment_count
			FROM posts p
			JOIN users u ON p.user_id = u.id
			WHERE p.is_published = TRUE
			ORDER BY p.created_at DESC
			LIMIT $1 OFFSET $2`,
			limit, offset)
		if err != nil {
			http.Error(w, "Database query failed", http.StatusInternalServerError)
			log.Println("GetPublicFeed query error:", err)
			return
		}
		defer rows.Close()

		feed := []models.PostWithAuthor{}
		for rows.Next() {
			var p models.PostWithAuthor
			if err := rows.Scan(&p.ID, &p.UserID, &p.Title, &p.Content, &p.Slug,
				&p.IsPublished, &p.Summary, &p.CreatedAt,
				&p.Author.ID, &p.Author.Email,
				&p.LikeCount, &p.CommentCount); err != nil {
				http.Error(w, "Error scanning feed", http.StatusInternalServerError)
				log.Println("GetPublicFeed scan error:", err)
				return
			}
			feed = append(feed, p)
		}
		if err := rows.Err(); err != nil {
			http.Error(w, "Error iterating feed", http.StatusInternalServerError)
			log.Println("GetPublicFeed rows error:", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.FeedResponse{
			Data: feed,
			Meta: models.FeedMeta{
				Total:      total,
				Page:       page,
				Limit:      limit,
				TotalPages: feedTotalPages(total, limit),
			},
		})
	}
}

func GetPublicPostBySlug(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		slug := vars["slug"]

		var p models.PostWithAuthor
		err := db.QueryRow(`
			SELECT p.id, p.user_id, p.title, p.content, p.slug, p.is_published,
			       p.summary, p.created_at,
			       u.id, u.email,
			       COALESCE((SELECT COUNT(*) FROM likes WHERE post_id = p.id), 0) as like_count,
			       COALESCE((SELECT COUNT(*) FROM comments WHERE post_id = p.id), 0) as comment_count
			FROM posts p
			JOIN users u ON p.user_id = u.id
			WHERE p.slug = $1 AND p.is_published = TRUE`,
			slug,
		).Scan(&p.ID, &p.UserID, &p.Title, &p.Content, &p.Slug,
			&p.IsPublished, &p.Summary, &p.CreatedAt,
			&p.Author.ID, &p.Author.Email,
			&p.LikeCount, &p.CommentCount)
		if err != nil {
			// Drafts never resolve here, whether or not the slug exists.
			if err == sql.ErrNoRows {
				http.Error(w, "Post not found", http.StatusNotFound)
			} else {
				http.Error(w, "Database query failed", http.StatusInternalServerError)
				log.Println("GetPublicPostBySlug error:", err)
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(p)
	}
}
