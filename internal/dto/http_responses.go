package dto

import (
	"net/http"
	"time"

	"github.com/wb-go/wbf/ginext"

	"anveshan/internal/model"
)

const (
	KindInvalidJSON = "invalid_json"
	KindInvalidID   = "invalid_id"

	MsgMissingFields             = "Please fill in all required fields."
	MsgMissingPresentationFields = "Please fill in all presentation details."
	MsgInvalidEmail              = "Please enter a valid email address."
	MsgInvalidMobile             = "Please enter a valid mobile number (10-15 digits)."
	MsgInvalidJSON               = "Request body must be a JSON object."
	MsgDuplicateEmail            = "This email is already registered. Please use a different email."
	MsgRegistered                = "Registration successful! A confirmation will be sent to your email."
	MsgInternalError             = "Something went wrong. Please try again later."
	MsgFetchFailed               = "Failed to fetch registrations."
	MsgDeleted                   = "Registration deleted."
	MsgNotFound                  = "Registration not found."
	MsgInvalidID                 = "Registration id must be a positive integer."
	MsgUnauthorized              = "Admin token required."
	MsgTooManyRequests           = "Too many requests. Please try again shortly."
	MsgUnavailable               = "Service is currently unavailable."
)

// NotificationMessage is the RabbitMQ payload asking for a confirmation e-mail.
type NotificationMessage struct {
	RegistrationID int64     `json:"registration_id"`
	QueuedAt       time.Time `json:"queued_at"`
}

type ErrorResponse struct {
	Success       bool     `json:"success"`
	Message       string   `json:"message"`
	Error         string   `json:"error,omitempty"`
	Field         string   `json:"field,omitempty"`
	MissingFields []string `json:"missingFields,omitempty"`
}

type RegisterResponse struct {
	Success        bool   `json:"success"`
	RegistrationID int64  `json:"registrationId"`
	Message        string `json:"message"`
}

type ListResponse struct {
	Success bool                 `json:"success"`
	Count   int                  `json:"count"`
	Data    []model.Registration `json:"data"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

func abort(c *ginext.Context, code int, resp ErrorResponse) {
	c.AbortWithStatusJSON(code, resp)
}

func BadRequest(c *ginext.Context, kind, message string) {
	abort(c, http.StatusBadRequest, ErrorResponse{Message: message, Error: kind})
}

// ValidationFailed reports a rejected submission. Missing-field kinds carry the
// full list; format kinds carry the single offending field.
func ValidationFailed(c *ginext.Context, kind, message string, missing []string, field string) {
	abort(c, http.StatusBadRequest, ErrorResponse{Message: message, Error: kind, MissingFields: missing, Field: field})
}

func DuplicateEmailError(c *ginext.Context) {
	abort(c, http.StatusConflict, ErrorResponse{Message: MsgDuplicateEmail, Error: "duplicate_email", Field: "email"})
}

func NotFoundError(c *ginext.Context) {
	abort(c, http.StatusNotFound, ErrorResponse{Message: MsgNotFound})
}

func UnauthorizedError(c *ginext.Context) {
	abort(c, http.StatusUnauthorized, ErrorResponse{Message: MsgUnauthorized})
}

func TooManyRequestsError(c *ginext.Context) {
	abort(c, http.StatusTooManyRequests, ErrorResponse{Message: MsgTooManyRequests})
}

// InternalServerError never echoes the underlying error.
func InternalServerError(c *ginext.Context, message string) {
	abort(c, http.StatusInternalServerError, ErrorResponse{Message: message})
}

func UnavailableError(c *ginext.Context) {
	abort(c, http.StatusServiceUnavailable, ErrorResponse{Message: MsgUnavailable})
}

func SuccessCreatedResponse(c *ginext.Context, id int64) {
	c.JSON(http.StatusCreated, RegisterResponse{Success: true, RegistrationID: id, Message: MsgRegistered})
}

func SuccessListResponse(c *ginext.Context, regs []model.Registration) {
	if regs == nil {
		regs = []model.Registration{}
	}
	c.JSON(http.StatusOK, ListResponse{Success: true, Count: len(regs), Data: regs})
}

func SuccessMessageResponse(c *ginext.Context, message string) {
	c.JSON(http.StatusOK, MessageResponse{Success: true, Message: message})
}

func HealthOK(c *ginext.Context, service string) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok", Service: service})
}
