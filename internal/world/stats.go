package world

import "time"

// Stats содержит снимок состояния мира, публикуемый в конце каждого тика
type Stats struct {
	Tick                 uint64         `json:"tick"`
	Chunks               int            `json:"chunks"`
	ChunksByState        map[string]int `json:"chunks_by_state"`
	PendingDestroy       int            `json:"pending_destroy"`
	InFlightJobs         int64          `json:"in_flight_jobs"`
	QueuedJobs           int            `json:"queued_jobs"`
	Trackers             int            `json:"trackers"`
	ApplicationsThisTick int            `json:"applications_this_tick"`
	DeferredThisTick     int            `json:"deferred_this_tick"`
	TickDuration         time.Duration  `json:"tick_duration_ns"`
}
