package refresh

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"chandana/internal/snapshot"
)

// Refresher is satisfied by *snapshot.Cache.
type Refresher interface {
	Refresh(ctx context.Context) *snapshot.Snapshot
}

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ParseSchedule accepts a standard 5-field cron expression or a descriptor
// such as "@every 5m" or "@hourly".
func ParseSchedule(expr string) (cron.Schedule, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("empty schedule")
	}
	return parser.Parse(expr)
}

// Start launches a goroutine that refreshes the snapshot on schedule until
// ctx is done. An empty or invalid schedule disables auto-refresh.
func Start(ctx context.Context, schedule string, loc *time.Location, r Refresher) bool {
	schedule = strings.TrimSpace(schedule)
	if schedule == "" {
		log.Println("Auto-refresh disabled (auto_refresh_schedule not set)")
		return false
	}
	sched, err := ParseSchedule(schedule)
	if err != nil {
		log.Printf("Invalid auto_refresh_schedule '%s': %v; auto-refresh disabled", schedule, err)
		return false
	}
	if loc == nil {
		loc = time.Local
	}
	log.Printf("Auto-refresh scheduled (cron: %s)", schedule)

	go func() {
		for {
			now := time.Now().In(loc)
			next := sched.Next(now)
			wait := next.Sub(now)
			log.Printf("Next auto-refresh at %s (in %s)", next.Format("Mon Jan 2 15:04:05"), wait.Round(time.Second))

			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				log.Println("Auto-refresh stopped")
				return
			case <-timer.C:
			}

			snap := r.Refresh(ctx)
			log.Printf("Auto-refresh complete: %s", strings.ReplaceAll(snapshot.FormatLoadSummary(snap), "\n", " | "))
		}
	}()
	return true
}
