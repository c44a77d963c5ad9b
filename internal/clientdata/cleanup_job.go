package clientdata

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// CleanupJob removes cache entries that expired longer than the retention
// window ago. Entries inside the window stay available to GetOrFetch as a
// stale fallback.
type CleanupJob struct {
	repo      *Repository
	retention time.Duration
	log       zerolog.Logger

	mu   sync.Mutex
	last map[string]int64
}

// NewCleanupJob creates a new client data cleanup job. A non-positive
// retention falls back to DefaultStaleRetention.
func NewCleanupJob(repo *Repository, retention time.Duration, log zerolog.Logger) *CleanupJob {
	if retention <= 0 {
		retention = DefaultStaleRetention
	}
	return &CleanupJob{
		repo:      repo,
		retention: retention,
		log:       log.With().Str("job", "client_data_cleanup").Logger(),
	}
}

// Name returns the job name for scheduling and logging.
func (j *CleanupJob) Name() string {
	return "client_data_cleanup"
}

// Run deletes the entries past retention from every cache table.
func (j *CleanupJob) Run() error {
	results, err := j.repo.DeleteAllExpired(j.retention)
	if err != nil {
		j.log.Error().Err(err).Msg("Failed to delete expired client data")
		return err
	}

	var total int64
	for _, count := range results {
		total += count
	}

	j.mu.Lock()
	j.last = results
	j.mu.Unlock()

	j.log.Info().
		Int64("deleted", total).
		Dur("retention", j.retention).
		Msg("Client data cleanup completed")

	return nil
}

// Report returns the rows deleted per table by the last successful run.
func (j *CleanupJob) Report() map[string]int64 {
	j.mu.Lock()
	defer j.mu.Unlock()

	report := make(map[string]int64, len(j.last))
	for table, count := range j.last {
		report[table] = count
	}
	return report
}
