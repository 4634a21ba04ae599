package notification

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"zeena/config"
	"zeena/utils"
)

// Asynq task types consumed by the delivery worker.
const (
	TaskBookingEvent    = "booking:event"
	TaskBookingReminder = "booking:reminder"
)

// AsynqDispatcher enqueues events onto the redis-backed queue. Enqueueing
// happens after the database commit and outside of it; a full queue or a
// redis outage costs a notification, never a booking.
type AsynqDispatcher struct {
	client *asynq.Client
}

func NewAsynqDispatcher() *AsynqDispatcher {
	return &AsynqDispatcher{
		client: asynq.NewClient(asynq.RedisClientOpt{
			Addr:     config.AppConfig.RedisAddr,
			Password: config.AppConfig.RedisPassword,
			DB:       config.AppConfig.RedisQueueDB,
		}),
	}
}

func (d *AsynqDispatcher) Dispatch(ctx context.Context, ev Event) {
	logger := utils.GetLogger()

	payload, err := json.Marshal(ev)
	if err != nil {
		logger.Error("notification: failed to marshal event",
			zap.String("type", ev.Type), zap.Error(err))
		return
	}

	task := asynq.NewTask(TaskBookingEvent, payload)
	if _, err := d.client.EnqueueContext(ctx, task); err != nil {
		logger.Error("notification: failed to enqueue event",
			zap.String("type", ev.Type),
			zap.String("bookingId", ev.BookingID),
			zap.Error(err))
		return
	}

	logger.Debug("notification: event enqueued",
		zap.String("type", ev.Type), zap.String("bookingId", ev.BookingID))
}

func (d *AsynqDispatcher) ScheduleReminder(ctx context.Context, ev Event, at time.Time) {
	logger := utils.GetLogger()

	payload, err := json.Marshal(ev)
	if err != nil {
		logger.Error("notification: failed to marshal reminder",
			zap.String("bookingId", ev.BookingID), zap.Error(err))
		return
	}

	task := asynq.NewTask(TaskBookingReminder, payload)
	if _, err := d.client.EnqueueContext(ctx, task, asynq.ProcessAt(at)); err != nil {
		logger.Error("notification: failed to schedule reminder",
			zap.String("bookingId", ev.BookingID),
			zap.Time("at", at),
			zap.Error(err))
		return
	}

	logger.Debug("notification: reminder scheduled",
		zap.String("bookingId", ev.BookingID), zap.Time("at", at))
}

// Close releases the underlying asynq client.
func (d *AsynqDispatcher) Close() error {
	return d.client.Close()
}
