package jobs

import (
	"context"
	"time"

	"github.com/BruksfildServices01/salon-scheduler/internal/auth"
	"github.com/BruksfildServices01/salon-scheduler/internal/usecase/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/usecase/salon"
)

const (
	PurgeBlacklist      = "purge_blacklist"
	OverdueSubscription = "overdue_subscriptions"
	NoShows             = "no_shows"
	Reminders           = "reminders"
)

type Deps struct {
	Blacklist *auth.Blacklist
	Salons    *salon.Service
	NoShows   *appointment.MarkNoShows
	Reminders *appointment.SendReminders
}

// Register adds the standard maintenance jobs. Nil dependencies are
// skipped.
func Register(s *Scheduler, d Deps) error {
	var jobs []Job

	if d.Blacklist != nil {
		jobs = append(jobs, Job{
			Name: PurgeBlacklist,
			Spec: "@hourly",
			Task: func(ctx context.Context) (int64, error) {
				return d.Blacklist.PurgeExpired(ctx, time.Now())
			},
		})
	}
	if d.Salons != nil {
		jobs = append(jobs, Job{
			Name: OverdueSubscription,
			Spec: "5 0 * * *",
			Task: d.Salons.MarkOverdue,
		})
	}
	if d.NoShows != nil {
		jobs = append(jobs, Job{
			Name: NoShows,
			Spec: "*/5 * * * *",
			Task: d.NoShows.Execute,
		})
	}
	if d.Reminders != nil {
		jobs = append(jobs, Job{
			Name: Reminders,
			Spec: "* * * * *",
			Task: func(ctx context.Context) (int64, error) {
				n, err := d.Reminders.Execute(ctx)
				return int64(n), err
			},
		})
	}

	for _, j := range jobs {
		if err := s.Add(j); err != nil {
			return err
		}
	}
	return nil
}
