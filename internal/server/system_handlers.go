package server

import (
	"net/http"
	"runtime"
	"time"

	"github.com/aristath/yieldrouter/internal/database"
	"github.com/aristath/yieldrouter/internal/di"
	"github.com/aristath/yieldrouter/internal/events"
	"github.com/aristath/yieldrouter/internal/scheduler"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// cpuSampleInterval keeps the status endpoint responsive.
const cpuSampleInterval = 100 * time.Millisecond

// SystemHandlers serves process status and manual job triggers.
type SystemHandlers struct {
	container *di.Container
	jobs      map[string]scheduler.Job
	startedAt time.Time
	log       zerolog.Logger
}

// NewSystemHandlers creates the system handlers. jobs may be nil.
func NewSystemHandlers(container *di.Container, jobs *di.JobInstances, log zerolog.Logger) *SystemHandlers {
	h := &SystemHandlers{
		container: container,
		jobs:      make(map[string]scheduler.Job),
		startedAt: time.Now(),
		log:       log.With().Str("handler", "system").Logger(),
	}
	if jobs != nil {
		if jobs.CatalogRefresh != nil {
			h.jobs["catalog-refresh"] = jobs.CatalogRefresh
		}
		if jobs.CacheCleanup != nil {
			h.jobs["cache-cleanup"] = jobs.CacheCleanup
		}
		if jobs.Maintenance != nil {
			h.jobs["maintenance"] = jobs.Maintenance
		}
	}
	return h
}

// RegisterRoutes registers system routes
func (h *SystemHandlers) RegisterRoutes(r chi.Router) {
	r.Get("/system/status", h.HandleSystemStatus)
	r.Post("/jobs/{name}", h.HandleTriggerJob)
}

// SystemStatus is the body of GET /api/system/status
type SystemStatus struct {
	Status           string                    `json:"status"`
	UptimeSeconds    float64                   `json:"uptime_seconds"`
	CPUPercent       float64                   `json:"cpu_percent"`
	MemoryPercent    float64                   `json:"memory_percent"`
	Goroutines       int                       `json:"goroutines"`
	ScheduledJobs    int                       `json:"scheduled_jobs"`
	EventSubscribers map[string]int            `json:"event_subscribers"`
	Databases        map[string]database.Stats `json:"databases"`
}

// HandleSystemStatus handles GET /api/system/status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	cpuPercent, memPercent := h.getSystemStats()

	status := SystemStatus{
		Status:           "healthy",
		UptimeSeconds:    time.Since(h.startedAt).Seconds(),
		CPUPercent:       cpuPercent,
		MemoryPercent:    memPercent,
		Goroutines:       runtime.NumGoroutine(),
		EventSubscribers: make(map[string]int),
		Databases:        make(map[string]database.Stats),
	}

	if h.container != nil {
		if h.container.Scheduler != nil {
			status.ScheduledJobs = h.container.Scheduler.Entries()
		}
		if h.container.EventBus != nil {
			for _, t := range events.AllEventTypes {
				if n := h.container.EventBus.SubscriberCount(t); n > 0 {
					status.EventSubscribers[string(t)] = n
				}
			}
		}
		for _, db := range []*database.DB{h.container.ClientDataDB, h.container.StrategiesDB} {
			if db == nil {
				continue
			}
			stats, err := db.GetStats()
			if err != nil {
				h.log.Warn().Err(err).Str("database", db.Name()).Msg("Failed to get database stats")
				status.Status = "degraded"
				continue
			}
			status.Databases[db.Name()] = *stats
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": status,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}, h.log)
}

// HandleTriggerJob runs a registered job immediately in the background
// POST /api/jobs/{name}
func (h *SystemHandlers) HandleTriggerJob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	job, ok := h.jobs[name]
	if !ok {
		writeError(w, http.StatusNotFound, "Unknown job "+name, h.log)
		return
	}
	if h.container == nil || h.container.Scheduler == nil {
		writeError(w, http.StatusServiceUnavailable, "Scheduler not available", h.log)
		return
	}

	h.log.Info().Str("job", name).Msg("Manual job triggered")

	go func() {
		// Outcome is reported through job events.
		_ = h.container.Scheduler.RunNow(job)
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{
		"status":  "success",
		"message": job.Name() + " triggered",
	}, h.log)
}

// getSystemStats returns CPU and RAM usage percentages
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(cpuSampleInterval, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}
