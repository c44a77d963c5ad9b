// Package reliability keeps the local SQLite databases healthy.
package reliability

import (
	"fmt"
	"time"

	"github.com/aristath/yieldrouter/internal/database"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/disk"
)

// Disk space thresholds for the data directory.
const (
	CriticalFreeBytes = 100 << 20 // 100 MB
	LowFreeBytes      = 1 << 30   // 1 GB

	// VacuumFreelistRatio triggers a VACUUM once this share of pages is free.
	VacuumFreelistRatio = 0.5
)

// DiskUsageFunc reports free bytes on the filesystem holding path.
type DiskUsageFunc func(path string) (uint64, error)

func gopsutilFree(path string) (uint64, error) {
	usage, err := disk.Usage(path)
	if err != nil {
		return 0, err
	}
	return usage.Free, nil
}

// MaintenanceJob performs periodic database maintenance:
// integrity check, WAL checkpoint, opportunistic VACUUM and a disk space check.
type MaintenanceJob struct {
	databases []*database.DB
	dataDir   string
	freeBytes DiskUsageFunc
	log       zerolog.Logger
}

// NewMaintenanceJob creates a new maintenance job over databases stored in dataDir.
func NewMaintenanceJob(databases []*database.DB, dataDir string, log zerolog.Logger) *MaintenanceJob {
	return &MaintenanceJob{
		databases: databases,
		dataDir:   dataDir,
		freeBytes: gopsutilFree,
		log:       log.With().Str("job", "database_maintenance").Logger(),
	}
}

// WithDiskUsage replaces the disk usage probe.
func (j *MaintenanceJob) WithDiskUsage(fn DiskUsageFunc) *MaintenanceJob {
	j.freeBytes = fn
	return j
}

// Name returns the job name for scheduler
func (j *MaintenanceJob) Name() string {
	return "database_maintenance"
}

// Run executes the maintenance job
func (j *MaintenanceJob) Run() error {
	j.log.Info().Msg("Starting database maintenance")
	startTime := time.Now()

	// Step 1: Integrity check (halts on corruption)
	for _, db := range j.databases {
		if err := db.IntegrityCheck(); err != nil {
			j.log.Error().Str("database", db.Name()).Err(err).Msg("CRITICAL: Database integrity check failed")
			return err
		}
	}

	// Step 2: WAL checkpoint and growth metrics
	for _, db := range j.databases {
		if err := db.WALCheckpoint("TRUNCATE"); err != nil {
			j.log.Warn().Str("database", db.Name()).Err(err).Msg("WAL checkpoint failed")
		}
		j.vacuumIfFragmented(db)
	}

	// Step 3: Disk space
	if err := j.checkDiskSpace(); err != nil {
		return err
	}

	j.log.Info().
		Dur("duration_ms", time.Since(startTime)).
		Msg("Database maintenance completed successfully")

	return nil
}

func (j *MaintenanceJob) vacuumIfFragmented(db *database.DB) {
	stats, err := db.GetStats()
	if err != nil {
		j.log.Error().Str("database", db.Name()).Err(err).Msg("Failed to get metrics")
		return
	}

	j.log.Info().
		Str("database", db.Name()).
		Int64("size_bytes", stats.SizeBytes).
		Int64("wal_size_bytes", stats.WALSizeBytes).
		Int64("freelist_count", stats.FreelistCount).
		Msg("Database metrics")

	if stats.PageCount == 0 || float64(stats.FreelistCount)/float64(stats.PageCount) < VacuumFreelistRatio {
		return
	}

	j.log.Info().Str("database", db.Name()).Msg("Running VACUUM")
	if err := db.Vacuum(); err != nil {
		j.log.Error().Str("database", db.Name()).Err(err).Msg("VACUUM failed")
	}
}

// checkDiskSpace fails when the data directory is nearly full.
func (j *MaintenanceJob) checkDiskSpace() error {
	free, err := j.freeBytes(j.dataDir)
	if err != nil {
		return fmt.Errorf("failed to stat filesystem: %w", err)
	}

	availableGB := float64(free) / 1e9
	j.log.Debug().Float64("available_gb", availableGB).Msg("Disk space check")

	if free < CriticalFreeBytes {
		j.log.Error().Float64("available_gb", availableGB).Msg("CRITICAL: Insufficient disk space")
		return fmt.Errorf("CRITICAL: only %.2f GB free in %s", availableGB, j.dataDir)
	}
	if free < LowFreeBytes {
		j.log.Warn().Float64("available_gb", availableGB).Msg("Disk space running low")
	}

	return nil
}
