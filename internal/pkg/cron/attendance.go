package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// NoShowMarker stores no-show for assignments never checked in whose shift
// ended before cutoff.
type NoShowMarker interface {
	MarkNoShows(ctx context.Context, cutoff time.Time) (int64, error)
}

type AttendanceJobs struct {
	attendanceRepo NoShowMarker
	interval       time.Duration
	noShowAfter    time.Duration
	now            func() time.Time
}

func NewAttendanceJobs(attendanceRepo NoShowMarker, interval, noShowAfter time.Duration) *AttendanceJobs {
	return &AttendanceJobs{
		attendanceRepo: attendanceRepo,
		interval:       interval,
		noShowAfter:    noShowAfter,
		now:            time.Now,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("mark_no_show_assignments", j.interval, j.MarkNoShowAssignments)
}

// MarkNoShowAssignments only changes the stored assignment status. Review
// state is left for a manager.
func (j *AttendanceJobs) MarkNoShowAssignments(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.noShowAfter)
	slog.Info("Cron: Starting mark no-show assignments job", "cutoff", cutoff)

	marked, err := j.attendanceRepo.MarkNoShows(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to mark no-show assignments: %w", err)
	}

	slog.Info("Cron: Marked no-show assignments", "count", marked)
	return nil
}
