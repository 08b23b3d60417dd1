package export

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"rollbook/internal/attendance"
	"rollbook/internal/metrics"
	"rollbook/internal/queue"
	"rollbook/internal/store"
)

// Job asks the worker to write one report file.
type Job struct {
	ID          string                  `json:"id"`
	Format      Format                  `json:"format"`
	Filter      attendance.ReportFilter `json:"filter"`
	Language    string                  `json:"language"`
	RequestedAt time.Time               `json:"requested_at"`
}

// Enqueue assigns the job an id when it has none and publishes it.
func Enqueue(ctx context.Context, q queue.Queue, job Job) (Job, error) {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.RequestedAt.IsZero() {
		job.RequestedAt = time.Now().UTC()
	}
	body, err := json.Marshal(job)
	if err != nil {
		return Job{}, fmt.Errorf("encode job: %w", err)
	}
	if err := q.Publish(ctx, queue.Message{Type: queue.TypeExport, Body: body}); err != nil {
		return Job{}, fmt.Errorf("publish job: %w", err)
	}
	return job, nil
}

// DecodeJob parses an export message.
func DecodeJob(msg queue.Message) (Job, error) {
	if msg.Type != queue.TypeExport {
		return Job{}, fmt.Errorf("unexpected message type %q", msg.Type)
	}
	var job Job
	if err := json.Unmarshal(msg.Body, &job); err != nil {
		return Job{}, fmt.Errorf("decode job: %w", err)
	}
	if _, err := ParseFormat(string(job.Format)); err != nil {
		return Job{}, err
	}
	return job, nil
}

// Runner executes export jobs against the persisted snapshot.
type Runner struct {
	KV  store.KV
	Dir string
	Log *zap.Logger
	Now func() time.Time
}

// Run writes the job's report under Dir/<job id>/ and returns the file path.
func (r *Runner) Run(ctx context.Context, job Job) (string, error) {
	path, err := r.run(ctx, job)
	result := metrics.OK
	if err != nil {
		result = metrics.Failed
	}
	metrics.Exports.WithLabelValues(string(job.Format), result).Inc()
	return path, err
}

func (r *Runner) run(ctx context.Context, job Job) (string, error) {
	snap, err := store.Load(ctx, r.KV, r.Log)
	if err != nil {
		return "", err
	}
	lang := job.Language
	if lang == "" {
		lang = snap.Prefs.Language
	}
	tracker := attendance.New(snap.Students, snap.Sections, snap.Records)
	today := r.now()
	doc, err := Build(tracker.Report(job.Filter), lang, today)
	if err != nil {
		return "", err
	}

	dir := filepath.Join(r.Dir, job.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(dir, Filename(job.Format, today))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create export file: %w", err)
	}
	if err := Write(f, job.Format, doc); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close export file: %w", err)
	}
	return path, nil
}

// Serve consumes export messages until ctx is done. Failed jobs are logged
// and dropped.
func (r *Runner) Serve(ctx context.Context, q queue.Queue) error {
	msgs, err := q.Consume(ctx)
	if err != nil {
		return fmt.Errorf("queue consume init failed: %w", err)
	}
	for msg := range msgs {
		job, err := DecodeJob(msg)
		if err != nil {
			r.log().Warn("skipping message", zap.String("type", msg.Type), zap.Error(err))
			continue
		}
		log := r.log().With(zap.String("job_id", job.ID), zap.String("format", string(job.Format)))
		log.Info("processing export")
		path, err := r.Run(ctx, job)
		if err != nil {
			log.Error("export failed", zap.Error(err))
			continue
		}
		log.Info("export written", zap.String("path", path))
	}
	return nil
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *Runner) log() *zap.Logger {
	if r.Log != nil {
		return r.Log
	}
	return zap.NewNop()
}
