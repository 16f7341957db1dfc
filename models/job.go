package models

// SummaryJob is the message enqueued when a post is published. Content is a
// snapshot taken at publish time; the worker never re-reads the post before
// generating the summary.
type SummaryJob struct {
	PostID  int    `json:"post_id"`
	Content string `json:"content"`
}
