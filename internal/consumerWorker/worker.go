package consumerWorker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"anveshan/internal/dto"
	"anveshan/internal/metrics"
	"anveshan/internal/notify"
	"anveshan/internal/repo"
)

type Consumer interface {
	Consume(handler func([]byte) error) error
}

type Reader struct {
	RMQ     Consumer
	repo    repo.Repository
	sender  notify.Sender
	metrics *metrics.Metrics
	log     *zerolog.Logger
	done    chan struct{}
	cancel  context.CancelFunc
}

func NewReader(rmq Consumer, repo repo.Repository, sender notify.Sender, m *metrics.Metrics, log *zerolog.Logger) *Reader {
	return &Reader{
		RMQ:     rmq,
		repo:    repo,
		sender:  sender,
		metrics: m,
		log:     log,
		done:    make(chan struct{}),
	}
}

// Start subscribes to the queue and returns once consuming has begun. It
// keeps running until ctx is done or Stop is called.
func (r *Reader) Start(ctx context.Context) error {
	cctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	if err := r.RMQ.Consume(func(body []byte) error { return r.handle(cctx, body) }); err != nil {
		cancel()
		close(r.done)
		return fmt.Errorf("start consuming: %w", err)
	}
	r.log.Info().Msg("🐇 RabbitMQ Reader started")

	go func() {
		defer close(r.done)
		<-cctx.Done()
		r.log.Info().Msg("🛑 RabbitMQ Reader stopped by context")
	}()
	return nil
}

// handle makes a single delivery attempt. Only undecodable payloads are
// reported back so the client drops them.
func (r *Reader) handle(ctx context.Context, body []byte) error {
	var msg dto.NotificationMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		r.log.Error().Err(err).Msgf("Failed to unmarshal message: %s", string(body))
		r.metrics.IncNotification(metrics.OutcomeFailed)
		return err
	}

	r.log.Debug().Int64("registration_id", msg.RegistrationID).Msg("📩 Received message from RabbitMQ")

	reg, err := r.repo.GetRegistrationByID(ctx, msg.RegistrationID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			r.log.Info().Int64("registration_id", msg.RegistrationID).Msg("registration removed before notification, skipping")
			return nil
		}
		r.log.Error().Err(err).Int64("registration_id", msg.RegistrationID).Msg("Failed to get registration from DB in worker")
		r.metrics.IncNotification(metrics.OutcomeFailed)
		return nil
	}

	if err := r.sender.SendRegistrationEmail(*reg); err != nil {
		r.log.Warn().Err(err).Int64("registration_id", reg.ID).Msg("Failed to send notification on e-mail")
		r.metrics.IncNotification(metrics.OutcomeFailed)
		return nil
	}

	r.log.Info().Str("email", reg.Email).Int64("registration_id", reg.ID).Msg("📧 Confirmation email sent successfully")
	r.metrics.IncNotification(metrics.OutcomeSent)
	return nil
}

func (r *Reader) Stop() {
	if r.cancel != nil {
		r.cancel()
		<-r.done
	}
}
