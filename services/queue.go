package services

import (
	"encoding/json"
	"log"
	"os"
	"time"

	"github.com/nats-io/nats.go"
	"quillbox.dev/project-quillbox/models"
)

const (
	SummaryStream   = "SUMMARY_JOBS"
	SummarySubject  = "jobs.summary"
	SummaryConsumer = "summary-worker"
	summaryQueue    = "summary-workers"
)

// ConnectQueue connects to NATS and makes sure the summary job stream
// exists. Both the API server and the worker call this on startup.
func ConnectQueue() (*nats.Conn, nats.JetStreamContext, error) {
	url := os.Getenv("NATS_URL")
	if url == "" {
		url = nats.DefaultURL
	}

	nc, err := nats.Connect(url,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second))
	if err != nil {
		return nil, nil, err
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, nil, err
	}

	if err := ensureSummaryStream(js); err != nil {
		nc.Close()
		return nil, nil, err
	}

	return nc, js, nil
}

func ensureSummaryStream(js nats.JetStreamContext) error {
	_, err := js.StreamInfo(SummaryStream)
	if err == nil {
		return nil
	}
	if err != nats.ErrStreamNotFound {
		return err
	}

	_, err = js.AddStream(&nats.StreamConfig{
		Name:      SummaryStream,
		Subjects:  []string{SummarySubject},
		Retention: nats.WorkQueuePolicy,
		Storage:   nats.FileStorage,
	})
	return err
}

// JobPublisher is what the HTTP layer needs from the queue: fire-and-forget
// scheduling of summary generation.
type JobPublisher interface {
	EnqueueSummaryJob(job models.SummaryJob) error
}

// Queue is the NATS-backed JobPublisher.
type Queue struct {
	js nats.JetStreamContext
}

func NewQueue(js nats.JetStreamContext) *Queue {
	return &Queue{js: js}
}

// EnqueueSummaryJob publishes a summary job for a freshly published post.
// Callers treat a failure as log-and-continue: the post is already saved and
// the request must not fail because the summary could not be scheduled.
func (q *Queue) EnqueueSummaryJob(job models.SummaryJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}

	if _, err := q.js.Publish(SummarySubject, data); err != nil {
		return err
	}

	log.Printf("[Queue] Enqueued summary job for post %d", job.PostID)
	return nil
}
