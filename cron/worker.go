package cron

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"firebase.google.com/go/v4/messaging"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"zeena/config"
	bookingRepo "zeena/database/repository/booking"
	"zeena/models"
	"zeena/services/notification"
	"zeena/utils"
)

// InitEventWorker runs the async delivery worker in background. It drains
// the booking event queue and fans each event out as push notifications to
// both parties, and fires scheduled upcoming-appointment reminders.
// Delivery is at-least-once; asynq retries failed tasks.
func InitEventWorker(bookings bookingRepo.BookingRepository) {
	logger := utils.GetLogger()

	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(notification.TaskBookingEvent, handleBookingEvent)
	mux.HandleFunc(notification.TaskBookingReminder, handleBookingReminder(bookings))

	go monitorQueueConnection()

	go func() {
		logger.Info("event worker starting")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				logger.Error("event worker failed to start",
					zap.Int("attempt", attempts), zap.Error(err))
				if attempts == maxAttempts {
					logger.Fatal("event worker: max retry attempts reached")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
}

func handleBookingEvent(ctx context.Context, task *asynq.Task) error {
	logger := utils.GetLogger()

	var ev notification.Event
	if err := json.Unmarshal(task.Payload(), &ev); err != nil {
		logger.Error("event worker: invalid payload", zap.Error(err))
		return err
	}

	title, body := describeEvent(ev)
	data := map[string]string{
		"type":      ev.Type,
		"bookingId": ev.BookingID,
		"date":      ev.Date,
		"start":     strconv.Itoa(ev.Start),
	}
	if ev.OldBookingID != "" {
		data["oldBookingId"] = ev.OldBookingID
	}

	var firstErr error
	for _, topic := range []string{
		"customer-" + ev.CustomerID,
		"provider-" + ev.ProviderID,
	} {
		if err := sendPush(ctx, topic, title, body, data); err != nil {
			logger.Error("event worker: push delivery failed",
				zap.String("topic", topic),
				zap.String("bookingId", ev.BookingID),
				zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// handleBookingReminder fires a scheduled reminder. The booking is re-read
// first: a reminder enqueued before a cancellation must stay silent.
func handleBookingReminder(bookings bookingRepo.BookingRepository) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		logger := utils.GetLogger()

		var ev notification.Event
		if err := json.Unmarshal(task.Payload(), &ev); err != nil {
			logger.Error("event worker: invalid reminder payload", zap.Error(err))
			return err
		}

		b, err := bookings.GetByID(ctx, ev.BookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrNotFound) {
				return nil
			}
			return err
		}
		if b.Status.IsTerminal() {
			logger.Debug("event worker: reminder skipped, booking terminal",
				zap.String("bookingId", b.ID), zap.String("status", string(b.Status)))
			return nil
		}

		when := fmt.Sprintf("%s at %s", b.Date, models.FormatMinutes(b.Start))
		data := map[string]string{
			"type":      notification.EventBookingReminder,
			"bookingId": b.ID,
			"date":      b.Date,
			"start":     strconv.Itoa(b.Start),
		}

		if err := sendPush(ctx, "customer-"+b.CustomerID,
			"Upcoming appointment", "Your appointment is on "+when, data); err != nil {
			return err
		}
		return sendPush(ctx, "provider-"+b.ProviderID,
			"Upcoming appointment", "You have an appointment on "+when, data)
	}
}

func describeEvent(ev notification.Event) (title, body string) {
	when := fmt.Sprintf("%s at %s", ev.Date, models.FormatMinutes(ev.Start))
	switch ev.Type {
	case notification.EventBookingCreated:
		return "Booking requested", "A new booking was requested for " + when
	case notification.EventBookingConfirmed:
		return "Booking confirmed", "Your booking on " + when + " is confirmed"
	case notification.EventBookingCancelled:
		return "Booking cancelled", "The booking on " + when + " was cancelled"
	case notification.EventBookingCompleted:
		return "Booking completed", "The booking on " + when + " was marked completed"
	case notification.EventBookingNoShow:
		return "Missed appointment", "The booking on " + when + " was marked as a no-show"
	case notification.EventBookingRescheduled:
		return "Booking rescheduled", "Your booking was moved to " + when
	default:
		return "Booking update", "Your booking on " + when + " was updated"
	}
}

func sendPush(ctx context.Context, topic, title, body string, data map[string]string) error {
	if utils.FCMClient == nil {
		// Push delivery is optional in development.
		utils.GetLogger().Debug("event worker: FCM not configured, dropping push",
			zap.String("topic", topic))
		return nil
	}
	msg := &messaging.Message{
		Topic: topic,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}
	_, err := utils.FCMClient.Send(ctx, msg)
	return err
}

// monitorQueueConnection pings the queue redis periodically to surface
// outages in the logs before asynq's own backoff masks them.
func monitorQueueConnection() {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})

	ctx := context.Background()
	logger := utils.GetLogger()

	for {
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn("event worker: queue redis unreachable", zap.Error(err))
		}
		time.Sleep(10 * time.Second)
	}
}
