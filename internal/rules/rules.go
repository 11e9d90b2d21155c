// Package rules decides whether a registration submission is acceptable and
// produces the normalized record that gets persisted.
package rules

import (
	"context"
	"strings"

	"anveshan/internal/model"
	"anveshan/pkg/validator"
)

type Kind string

const (
	KindMissingFields             Kind = "missing_fields"
	KindMissingPresentationFields Kind = "missing_presentation_fields"
	KindInvalidEmail              Kind = "invalid_email"
	KindInvalidMobile             Kind = "invalid_mobile"
)

// ValidationError names the rule that failed and the offending fields.
type ValidationError struct {
	Kind   Kind
	Fields []string
}

func (e *ValidationError) Error() string {
	return string(e.Kind) + ": " + strings.Join(e.Fields, ", ")
}

// Submission is the raw registration form. Absent JSON keys decode to "".
type Submission struct {
	ParticipantName      string `json:"participantName"`
	Email                string `json:"email"`
	Mobile               string `json:"mobile"`
	Institute            string `json:"institute"`
	State                string `json:"state"`
	District             string `json:"district"`
	PciID                string `json:"pciId"`
	ParticipationType    string `json:"participationType"`
	PresentationCategory string `json:"presentationCategory"`
	PresentationTitle    string `json:"presentationTitle"`
	Abstract             string `json:"abstract"`
	PracticalApplication string `json:"practicalApplication"`
	PatentStatus         string `json:"patentStatus"`
}

type baseFields struct {
	ParticipantName   string `json:"participantName" validate:"notblank"`
	Email             string `json:"email" validate:"notblank"`
	Mobile            string `json:"mobile" validate:"notblank"`
	Institute         string `json:"institute" validate:"notblank"`
	State             string `json:"state" validate:"notblank"`
	District          string `json:"district" validate:"notblank"`
	ParticipationType string `json:"participationType" validate:"notblank"`
}

type presentationFields struct {
	PresentationCategory string `json:"presentationCategory" validate:"notblank"`
	PresentationTitle    string `json:"presentationTitle" validate:"notblank"`
	Abstract             string `json:"abstract" validate:"notblank"`
	PracticalApplication string `json:"practicalApplication" validate:"notblank"`
}

// contactFields is checked after normalization; email is reported before mobile.
type contactFields struct {
	Email  string `json:"email" validate:"simpleemail"`
	Mobile string `json:"mobile" validate:"mobile"`
}

var formatKinds = map[string]Kind{
	"email":  KindInvalidEmail,
	"mobile": KindInvalidMobile,
}

// Rules holds the role classification used to decide whether presentation
// details are mandatory.
type Rules struct {
	nonPresenter map[string]struct{}
}

func New(nonPresenterTypes map[string]struct{}) *Rules {
	return &Rules{nonPresenter: nonPresenterTypes}
}

// Default classifies roles with model.NonPresenterTypes.
func Default() *Rules {
	return New(model.NonPresenterTypes)
}

// IsPresenter reports whether participationType must supply presentation details.
func (r *Rules) IsPresenter(participationType string) bool {
	_, ok := r.nonPresenter[strings.TrimSpace(participationType)]
	return !ok
}

// Validate checks s and returns the normalized record, or a *ValidationError.
func (r *Rules) Validate(ctx context.Context, s Submission) (*model.Registration, error) {
	base := baseFields{
		ParticipantName:   s.ParticipantName,
		Email:             s.Email,
		Mobile:            s.Mobile,
		Institute:         s.Institute,
		State:             s.State,
		District:          s.District,
		ParticipationType: s.ParticipationType,
	}
	if missing := failedFields(ctx, base); len(missing) > 0 {
		return nil, &ValidationError{Kind: KindMissingFields, Fields: missing}
	}

	presenter := r.IsPresenter(s.ParticipationType)
	if presenter {
		pres := presentationFields{
			PresentationCategory: s.PresentationCategory,
			PresentationTitle:    s.PresentationTitle,
			Abstract:             s.Abstract,
			PracticalApplication: s.PracticalApplication,
		}
		if missing := failedFields(ctx, pres); len(missing) > 0 {
			return nil, &ValidationError{Kind: KindMissingPresentationFields, Fields: missing}
		}
	}

	email := strings.ToLower(strings.TrimSpace(s.Email))
	mobile := strings.TrimSpace(s.Mobile)
	if bad := failedFields(ctx, contactFields{Email: email, Mobile: mobile}); len(bad) > 0 {
		return nil, &ValidationError{Kind: formatKinds[bad[0]], Fields: bad[:1]}
	}

	reg := &model.Registration{
		ParticipantName:   strings.TrimSpace(s.ParticipantName),
		Email:             email,
		Mobile:            mobile,
		Institute:         strings.TrimSpace(s.Institute),
		State:             strings.TrimSpace(s.State),
		District:          strings.TrimSpace(s.District),
		ParticipationType: strings.TrimSpace(s.ParticipationType),
		PciID:             optional(s.PciID),
		PatentStatus:      optional(s.PatentStatus),
	}
	if presenter {
		reg.PresentationCategory = optional(s.PresentationCategory)
		reg.PresentationTitle = optional(s.PresentationTitle)
		reg.Abstract = optional(s.Abstract)
		reg.PracticalApplication = optional(s.PracticalApplication)
	}
	return reg, nil
}

func failedFields(ctx context.Context, structure any) []string {
	failures := validator.Check(ctx, structure)
	if len(failures) == 0 {
		return nil
	}
	fields := make([]string, 0, len(failures))
	for _, f := range failures {
		fields = append(fields, f.Field)
	}
	return fields
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
