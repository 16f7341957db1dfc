package services

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"
	"quillbox.dev/project-quillbox/models"
)

const (
	summaryPrefixLen = 150
	summaryMarker    = "... (Auto-Generated Summary)"

	// Stand-in for an external text-processing call.
	summaryLatency = 3 * time.Second
)

// GenerateSummary derives a summary from the content snapshot carried in the
// job message. Deterministic, so reprocessing the same message converges.
// Truncation counts runes, not bytes, so multi-byte content keeps a full
// 150-character prefix and never ends mid-rune.
func GenerateSummary(content string) string {
	prefix := content
	if r := []rune(content); len(r) > summaryPrefixLen {
		prefix = string(r[:summaryPrefixLen])
	}
	return prefix + summaryMarker
}

// ProcessSummaryJob runs one job to completion: simulated enrichment latency,
// then an unconditional summary write keyed by post id. The write is
// idempotent, so duplicate deliveries are safe. A post deleted while the job
// was in flight updates zero rows; that is treated as a no-op rather than a
// failure, since redelivery could never succeed.
func ProcessSummaryJob(db *sql.DB, job models.SummaryJob) error {
	log.Printf("[SummaryWorker] Processing summary generation for post %d", job.PostID)

	time.Sleep(summaryLatency)

	summary := GenerateSummary(job.Content)

	res, err := db.Exec(`UPDATE posts SET summary = $1 WHERE id = $2`,
		summary, job.PostID)
	if err != nil {
		return fmt.Errorf("saving summary for post %d: %w", job.PostID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		log.Printf("[SummaryWorker] Post %d no longer exists, skipping summary", job.PostID)
		return nil
	}

	log.Printf("[SummaryWorker] Summary saved for post %d", job.PostID)
	return nil
}

// RunSummaryWorker subscribes a durable queue consumer to the summary job
// stream. Failures are Nak'd so the stream's redelivery policy governs
// retries; the worker itself never loops.
func RunSummaryWorker(db *sql.DB, js nats.JetStreamContext) (*nats.Subscription, error) {
	return js.QueueSubscribe(SummarySubject, summaryQueue, func(msg *nats.Msg) {
		var job models.SummaryJob
		if err := json.Unmarshal(msg.Data, &job); err != nil {
			log.Printf("[SummaryWorker] Dropping malformed job message: %v", err)
			msg.Term()
			return
		}

		if err := ProcessSummaryJob(db, job); err != nil {
			log.Printf("[SummaryWorker] Failed to generate summary for post %d: %v", job.PostID, err)
			msg.Nak()
			return
		}

		msg.Ack()
	},
		nats.Durable(SummaryConsumer),
		nats.ManualAck(),
		nats.AckWait(30*time.Second),
	)
}
