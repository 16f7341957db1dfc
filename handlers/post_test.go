package handlers

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gorilla/mux"
	"quillbox.dev/project-quillbox/middleware"
	"quillbox.dev/project-quillbox/models"
)

type fakeQueue struct {
	jobs []models.SummaryJob
}

func (f *fakeQueue) EnqueueSummaryJob(job models.SummaryJob) error {
	f.jobs = append(f.jobs, job)
	return nil
}

func authedRequest(method, target, body string, userID int) *http.Request {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	return req.WithContext(middleware.WithUserID(req.Context(), userID))
}

func postRow(id, userID int, published bool, content string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "user_id", "title", "content", "slug", "is_published", "summary", "created_at",
	}).AddRow(id, userID, "A Title", content, "a-title-x1y2z3", published, nil, time.Now())
}

func TestCreatePostPublishedEnqueuesOneJob(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("INSERT INTO posts").
		WillReturnRows(postRow(7, 42, true, "published body"))

	queue := &fakeQueue{}
	req := authedRequest("POST", "/blogs",
		`{"title":"A Title","content":"published body","is_published":true}`, 42)
	rec := httptest.NewRecorder()

	CreatePost(db, queue)(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d (body: %s)", rec.Code, http.StatusCreated, rec.Body.String())
	}
	if len(queue.jobs) != 1 {
		t.Fatalf("enqueued %d jobs, want 1", len(queue.jobs))
	}
	if queue.jobs[0].PostID != 7 || queue.jobs[0].Content != "published body" {
		t.Errorf("job = %+v, want post 7 with snapshot of the published body", queue.jobs[0])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestCreatePostDraftEnqueuesNothing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("INSERT INTO posts").
		WillReturnRows(postRow(8, 42, false, "draft body"))

	queue := &fakeQueue{}
	req := authedRequest("POST", "/blogs",
		`{"title":"A Title","content":"draft body"}`, 42)
	rec := httptest.NewRecorder()

	CreatePost(db, queue)(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusCreated)
	}
	if len(queue.jobs) != 0 {
		t.Errorf("enqueued %d jobs for a draft, want 0", len(queue.jobs))
	}
}

func TestUpdatePostPublishTransitionEnqueuesOneJob(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT id, user_id, is_published FROM posts").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "is_published"}).
			AddRow(1, 42, false))
	mock.ExpectQuery("UPDATE posts SET").
		WillReturnRows(postRow(1, 42, true, "now public"))

	queue := &fakeQueue{}
	req := authedRequest("PATCH", "/blogs/1", `{"is_published":true}`, 42)
	req = mux.SetURLVars(req, map[string]string{"id": "1"})
	rec := httptest.NewRecorder()

	UpdatePost(db, queue)(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body: %s)", rec.Code, http.StatusOK, rec.Body.String())
	}
	if len(queue.jobs) != 1 {
		t.Fatalf("enqueued %d jobs, want exactly 1 for the draft-to-published transition", len(queue.jobs))
	}
	if queue.jobs[0].PostID != 1 || queue.jobs[0].Content != "now public" {
		t.Errorf("job = %+v, want post 1 with the post-patch content", queue.jobs[0])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestUpdatePostAlreadyPublishedEnqueuesNothing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT id, user_id, is_published FROM posts").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "is_published"}).
			AddRow(1, 42, true))
	mock.ExpectQuery("UPDATE posts SET").
		WillReturnRows(postRow(1, 42, true, "edited body"))

	queue := &fakeQueue{}
	req := authedRequest("PATCH", "/blogs/1", `{"content":"edited body","is_published":true}`, 42)
	req = mux.SetURLVars(req, map[string]string{"id": "1"})
	rec := httptest.NewRecorder()

	UpdatePost(db, queue)(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if len(queue.jobs) != 0 {
		t.Errorf("enqueued %d jobs without a transition, want 0", len(queue.jobs))
	}
}

func TestUpdatePostDraftStaysDraftEnqueuesNothing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT id, user_id, is_published FROM posts").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "is_published"}).
			AddRow(1, 42, false))
	mock.ExpectQuery("UPDATE posts SET").
		WillReturnRows(postRow(1, 42, false, "still a draft"))

	queue := &fakeQueue{}
	req := authedRequest("PATCH", "/blogs/1", `{"content":"still a draft"}`, 42)
	req = mux.SetURLVars(req, map[string]string{"id": "1"})
	rec := httptest.NewRecorder()

	UpdatePost(db, queue)(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if len(queue.jobs) != 0 {
		t.Errorf("enqueued %d jobs for a draft edit, want 0", len(queue.jobs))
	}
}

func TestUpdatePostNonOwnerForbidden(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT id, user_id, is_published FROM posts").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "is_published"}).
			AddRow(1, 99, false))

	queue := &fakeQueue{}
	req := authedRequest("PATCH", "/blogs/1", `{"is_published":true}`, 42)
	req = mux.SetURLVars(req, map[string]string{"id": "1"})
	rec := httptest.NewRecorder()

	UpdatePost(db, queue)(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
	if len(queue.jobs) != 0 {
		t.Errorf("enqueued %d jobs on a forbidden update, want 0", len(queue.jobs))
	}
}

func TestUpdatePostMissingNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT id, user_id, is_published FROM posts").
		WithArgs(1).
		WillReturnError(sql.ErrNoRows)

	queue := &fakeQueue{}
	req := authedRequest("PATCH", "/blogs/1", `{"is_published":true}`, 42)
	req = mux.SetURLVars(req, map[string]string{"id": "1"})
	rec := httptest.NewRecorder()

	UpdatePost(db, queue)(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestDeletePostNonOwnerForbidden(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT user_id FROM posts").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(99))

	req := authedRequest("DELETE", "/blogs/1", "", 42)
	req = mux.SetURLVars(req, map[string]string{"id": "1"})
	rec := httptest.NewRecorder()

	DeletePost(db)(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestDeletePostMissingNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT user_id FROM posts").
		WithArgs(1).
		WillReturnError(sql.ErrNoRows)

	req := authedRequest("DELETE", "/blogs/1", "", 42)
	req = mux.SetURLVars(req, map[string]string{"id": "1"})
	rec := httptest.NewRecorder()

	DeletePost(db)(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}
