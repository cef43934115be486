// Package cron runs the deferred hold-expiry tasks: a booked appointment that
// stays unpaid past its hold window gets released so the slot opens up again.
package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"curaconnect/config"
	"curaconnect/services/booking"
	"curaconnect/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const TypeHoldExpire = "hold:expire"

type holdExpirePayload struct {
	AppointmentID string `json:"appointmentId"`
}

func queueRedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// HoldEnqueuer schedules hold-expiry tasks on the asynq queue. It implements
// booking.HoldScheduler.
type HoldEnqueuer struct {
	client *asynq.Client
}

func NewHoldEnqueuer() *HoldEnqueuer {
	return &HoldEnqueuer{client: asynq.NewClient(queueRedisOpt())}
}

func (e *HoldEnqueuer) ScheduleExpiry(appointmentID string, delay time.Duration) error {
	payload, err := json.Marshal(holdExpirePayload{AppointmentID: appointmentID})
	if err != nil {
		return err
	}
	task := asynq.NewTask(TypeHoldExpire, payload)
	_, err = e.client.Enqueue(task, asynq.ProcessIn(delay), asynq.MaxRetry(3))
	return err
}

func (e *HoldEnqueuer) Close() error {
	return e.client.Close()
}

// InitHoldExpiryWorker runs the async worker in background.
func InitHoldExpiryWorker(bookingSvc booking.BookingService) {
	srv := asynq.NewServer(
		queueRedisOpt(),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeHoldExpire, handleHoldExpireTask(bookingSvc))

	// Holds whose queued task was lost (queue flushed, long downtime) are
	// released on startup.
	go func() {
		if released, err := bookingSvc.SweepExpiredHolds(); err != nil {
			utils.GetLogger().Error("stale hold sweep failed", zap.Error(err))
		} else if released > 0 {
			utils.GetLogger().Info("released stale holds", zap.Int("count", released))
		}
	}()

	go func() {
		log.Println("[HoldExpiryWorker] Starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[HoldExpiryWorker] Attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[HoldExpiryWorker] Max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
}

func handleHoldExpireTask(bookingSvc booking.BookingService) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p holdExpirePayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			utils.GetLogger().Error("invalid hold-expiry payload", zap.Error(err))
			return err
		}

		if err := bookingSvc.ExpireHold(p.AppointmentID); err != nil {
			utils.GetLogger().Error("failed to expire hold",
				zap.String("appointmentId", p.AppointmentID), zap.Error(err))
			return err
		}
		return nil
	}
}
