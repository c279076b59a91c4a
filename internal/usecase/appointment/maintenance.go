package appointment

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/timezone"
)

const (
	ReminderLead = 30 * time.Minute
	NoShowGrace  = 20 * time.Minute
)

// Notifier sends a short text message to a phone number.
type Notifier interface {
	Send(ctx context.Context, to string, body string) error
}

// ======================================================
// Reminders
// ======================================================

type SendReminders struct {
	repo     domain.Repository
	notifier Notifier
	clock    timezone.Clock
	log      *zap.Logger
}

func NewSendReminders(
	repo domain.Repository,
	notifier Notifier,
	clock timezone.Clock,
	log *zap.Logger,
) *SendReminders {
	return &SendReminders{
		repo:     repo,
		notifier: notifier,
		clock:    clock,
		log:      log,
	}
}

// Execute messages clients whose appointment starts within ReminderLead.
// Each appointment is reminded at most once.
func (uc *SendReminders) Execute(ctx context.Context) (int, error) {
	now := uc.clock.Now()

	apps, err := uc.repo.ListUpcomingWithoutReminder(ctx, now, now.Add(ReminderLead))
	if err != nil {
		return 0, err
	}

	sent := 0
	for i := range apps {
		ap := &apps[i]
		if ap.Client == nil || ap.Client.Phone == nil || *ap.Client.Phone == "" {
			continue
		}

		serviceName := "seu horário"
		if ap.Service != nil {
			serviceName = ap.Service.Name
		}

		body := fmt.Sprintf(
			"Olá %s! Lembrete: %s às %s.",
			ap.Client.Name,
			serviceName,
			ap.AppointmentDatetime.In(uc.clock.Location()).Format("15:04"),
		)

		if err := uc.notifier.Send(ctx, *ap.Client.Phone, body); err != nil {
			uc.log.Warn("reminder not sent", zap.Uint("appointment_id", ap.ID), zap.Error(err))
			continue
		}

		if err := uc.repo.MarkReminderSent(ctx, ap.ID, now); err != nil {
			return sent, err
		}
		sent++
	}

	return sent, nil
}

// ======================================================
// No-shows
// ======================================================

type MarkNoShows struct {
	repo  domain.Repository
	clock timezone.Clock
}

func NewMarkNoShows(repo domain.Repository, clock timezone.Clock) *MarkNoShows {
	return &MarkNoShows{repo: repo, clock: clock}
}

// Execute closes scheduled appointments that started more than NoShowGrace
// ago. Confirmed ones are left for the owner to settle.
func (uc *MarkNoShows) Execute(ctx context.Context) (int64, error) {
	return uc.repo.MarkNoShowBefore(ctx, uc.clock.Now().Add(-NoShowGrace))
}
