package service

import (
	"errors"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/ginext"

	"anveshan/internal/dto"
	"anveshan/internal/metrics"
	"anveshan/internal/notify"
	"anveshan/internal/repo"
	"anveshan/internal/rules"
)

type Service interface {
	Register(ctx *ginext.Context)
	ListRegistrations(ctx *ginext.Context)
	DeleteRegistration(ctx *ginext.Context)
	Health(ctx *ginext.Context)
	DBHealth(ctx *ginext.Context)
}

type service struct {
	repo     repo.Repository
	rules    *rules.Rules
	notifier notify.Notifier
	metrics  *metrics.Metrics
	log      *zerolog.Logger
	name     string
}

func NewService(
	repo repo.Repository,
	rules *rules.Rules,
	notifier notify.Notifier,
	m *metrics.Metrics,
	logger *zerolog.Logger,
	serviceName string,
) Service {
	return &service{
		repo:     repo,
		rules:    rules,
		notifier: notifier,
		metrics:  m,
		log:      logger,
		name:     serviceName,
	}
}

var validationMessages = map[rules.Kind]string{
	rules.KindMissingFields:             dto.MsgMissingFields,
	rules.KindMissingPresentationFields: dto.MsgMissingPresentationFields,
	rules.KindInvalidEmail:              dto.MsgInvalidEmail,
	rules.KindInvalidMobile:             dto.MsgInvalidMobile,
}

func (s *service) Register(ctx *ginext.Context) {
	var req rules.Submission
	if err := ctx.ShouldBindJSON(&req); err != nil {
		s.log.Debug().Err(err).Msg("failed to parse registration request")
		s.metrics.IncRegistration(metrics.OutcomeInvalid)
		dto.BadRequest(ctx, dto.KindInvalidJSON, dto.MsgInvalidJSON)
		return
	}

	reg, err := s.rules.Validate(ctx.Request.Context(), req)
	if err != nil {
		var verr *rules.ValidationError
		if !errors.As(err, &verr) {
			s.log.Error().Err(err).Msg("unexpected validation failure")
			s.metrics.IncRegistration(metrics.OutcomeError)
			dto.InternalServerError(ctx, dto.MsgInternalError)
			return
		}
		s.log.Info().Str("kind", string(verr.Kind)).Strs("fields", verr.Fields).Msg("registration rejected")
		s.metrics.IncRegistration(metrics.OutcomeInvalid)

		switch verr.Kind {
		case rules.KindMissingFields, rules.KindMissingPresentationFields:
			dto.ValidationFailed(ctx, string(verr.Kind), validationMessages[verr.Kind], verr.Fields, "")
		default:
			dto.ValidationFailed(ctx, string(verr.Kind), validationMessages[verr.Kind], nil, verr.Fields[0])
		}
		return
	}

	id, createdAt, err := s.repo.CreateRegistration(ctx.Request.Context(), reg)
	if err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			s.log.Info().Str("email", reg.Email).Msg("duplicate registration rejected")
			s.metrics.IncRegistration(metrics.OutcomeConflict)
			dto.DuplicateEmailError(ctx)
			return
		}
		s.log.Error().Err(err).Msg("failed to store registration")
		s.metrics.IncRegistration(metrics.OutcomeError)
		dto.InternalServerError(ctx, dto.MsgInternalError)
		return
	}

	reg.ID = id
	reg.CreatedAt = createdAt
	s.log.Info().Int64("registration_id", id).Str("participation_type", reg.ParticipationType).Msg("registration saved")
	s.metrics.IncRegistration(metrics.OutcomeCreated)

	s.notifier.Notify(*reg)

	dto.SuccessCreatedResponse(ctx, id)
}

func (s *service) ListRegistrations(ctx *ginext.Context) {
	regs, err := s.repo.ListRegistrations(ctx.Request.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list registrations")
		dto.InternalServerError(ctx, dto.MsgFetchFailed)
		return
	}

	dto.SuccessListResponse(ctx, regs)
}

func (s *service) DeleteRegistration(ctx *ginext.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		dto.BadRequest(ctx, dto.KindInvalidID, dto.MsgInvalidID)
		return
	}

	found, err := s.repo.DeleteRegistration(ctx.Request.Context(), id)
	if err != nil {
		s.log.Error().Err(err).Int64("registration_id", id).Msg("failed to delete registration")
		dto.InternalServerError(ctx, dto.MsgInternalError)
		return
	}
	if !found {
		dto.NotFoundError(ctx)
		return
	}

	s.log.Info().Int64("registration_id", id).Msg("registration deleted")
	s.metrics.IncDeletion()
	dto.SuccessMessageResponse(ctx, dto.MsgDeleted)
}

func (s *service) Health(ctx *ginext.Context) {
	dto.HealthOK(ctx, s.name)
}

func (s *service) DBHealth(ctx *ginext.Context) {
	if err := s.repo.Ping(ctx.Request.Context()); err != nil {
		s.log.Warn().Err(err).Msg("database health check failed")
		dto.UnavailableError(ctx)
		return
	}
	dto.HealthOK(ctx, s.name)
}
