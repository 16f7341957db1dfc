package models

import "time"

type Post struct {
	ID          int       `json:"id"`
	UserID      int       `json:"user_id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Slug        string    `json:"slug"`
	IsPublished bool      `json:"is_published"`
	Summary     *string   `json:"summary"`
	CreatedAt   time.Time `json:"created_at"`
}

type PostWithAuthor struct {
	Post
	Author       Author `json:"user"`
	LikeCount    int    `json:"like_count"`
	CommentCount int    `json:"comment_count"`
}

type FeedMeta struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

type FeedResponse struct {
	Data []PostWithAuthor `json:"data"`
	Meta FeedMeta         `json:"meta"`
}
