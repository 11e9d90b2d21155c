// Package notify dispatches registration confirmations off the request path.
// A Notifier never reports failure to its caller and never blocks it; outcomes
// are only visible in logs and metrics.
package notify

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"anveshan/internal/dto"
	"anveshan/internal/metrics"
	"anveshan/internal/model"
)

//go:generate mockgen -source=notify.go -destination=mocks/mocks.go -package=mocks Notifier

type Notifier interface {
	Notify(reg model.Registration)
}

type Sender interface {
	SendRegistrationEmail(reg model.Registration) error
}

type Publisher interface {
	Publish(ctx context.Context, message []byte) error
}

// Async sends each confirmation directly from its own goroutine.
type Async struct {
	sender  Sender
	log     *zerolog.Logger
	metrics *metrics.Metrics
	wg      sync.WaitGroup
}

func NewAsync(sender Sender, log *zerolog.Logger, m *metrics.Metrics) *Async {
	return &Async{sender: sender, log: log, metrics: m}
}

func (a *Async) Notify(reg model.Registration) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.sender.SendRegistrationEmail(reg); err != nil {
			a.log.Warn().Err(err).
				Int64("registration_id", reg.ID).
				Msg("failed to send confirmation e-mail")
			a.metrics.IncNotification(metrics.OutcomeFailed)
			return
		}
		a.metrics.IncNotification(metrics.OutcomeSent)
	}()
}

// Wait blocks until in-flight sends finish.
func (a *Async) Wait() {
	a.wg.Wait()
}

// Shutdown waits for in-flight sends until ctx is done. Sends still running
// after that are abandoned, not cancelled.
func (a *Async) Shutdown(ctx context.Context) error {
	return waitContext(ctx, &a.wg)
}

// Queued hands the registration id to RabbitMQ; consumerWorker does the send.
type Queued struct {
	pub     Publisher
	log     *zerolog.Logger
	metrics *metrics.Metrics
	wg      sync.WaitGroup
}

func NewQueued(pub Publisher, log *zerolog.Logger, m *metrics.Metrics) *Queued {
	return &Queued{pub: pub, log: log, metrics: m}
}

func (q *Queued) Notify(reg model.Registration) {
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()

		payload, err := json.Marshal(dto.NotificationMessage{
			RegistrationID: reg.ID,
			QueuedAt:       time.Now().UTC(),
		})
		if err != nil {
			q.log.Error().Err(err).Int64("registration_id", reg.ID).Msg("failed to marshal notification message")
			q.metrics.IncNotification(metrics.OutcomeFailed)
			return
		}

		if err := q.pub.Publish(context.Background(), payload); err != nil {
			q.log.Warn().Err(err).Int64("registration_id", reg.ID).Msg("failed to queue notification")
			q.metrics.IncNotification(metrics.OutcomeFailed)
			return
		}
		q.metrics.IncNotification(metrics.OutcomeQueued)
	}()
}

func (q *Queued) Wait() {
	q.wg.Wait()
}

func (q *Queued) Shutdown(ctx context.Context) error {
	return waitContext(ctx, &q.wg)
}

func waitContext(ctx context.Context, wg *sync.WaitGroup) error {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Noop is used when no mail credential is configured.
type Noop struct {
	log     *zerolog.Logger
	metrics *metrics.Metrics
}

func NewNoop(log *zerolog.Logger, m *metrics.Metrics) *Noop {
	return &Noop{log: log, metrics: m}
}

func (n *Noop) Notify(reg model.Registration) {
	n.log.Debug().Int64("registration_id", reg.ID).Msg("notifications disabled, skipping confirmation")
	n.metrics.IncNotification(metrics.OutcomeDisabled)
}
