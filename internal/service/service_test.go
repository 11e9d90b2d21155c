package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"anveshan/internal/dto"
	"anveshan/internal/metrics"
	"anveshan/internal/model"
	notifymocks "anveshan/internal/notify/mocks"
	"anveshan/internal/repo"
	repomocks "anveshan/internal/repo/mocks"
	"anveshan/internal/rules"
)

type ServiceSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	repo     *repomocks.MockRepository
	notifier *notifymocks.MockNotifier
	metrics  *metrics.Metrics
	router   *gin.Engine
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.ctrl = gomock.NewController(s.T())
	s.repo = repomocks.NewMockRepository(s.ctrl)
	s.notifier = notifymocks.NewMockNotifier(s.ctrl)
	s.metrics = metrics.New(prometheus.NewRegistry())
	log := zerolog.Nop()

	svc := NewService(s.repo, rules.Default(), s.notifier, s.metrics, &log, "Pharma Anveshan 2026 API")
	s.router = gin.New()
	s.router.GET("/", svc.Health)
	s.router.GET("/healthz/db", svc.DBHealth)
	s.router.POST("/api/register", svc.Register)
	s.router.GET("/api/registrations", svc.ListRegistrations)
	s.router.DELETE("/api/registrations/:id", svc.DeleteRegistration)
}

func (s *ServiceSuite) do(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		s.Require().NoError(json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](s *ServiceSuite, rec *httptest.ResponseRecorder) T {
	var out T
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func ashaPayload() map[string]string {
	return map[string]string{
		"participantName":      "Asha Rao",
		"email":                " Asha@Test.com ",
		"mobile":               "9876543210",
		"institute":            "XYZ College",
		"state":                "Karnataka",
		"district":             "Bangalore",
		"participationType":    "ug_student",
		"presentationCategory": "poster",
		"presentationTitle":    "Title",
		"abstract":             "Abstract text",
		"practicalApplication": "Use case",
	}
}

func (s *ServiceSuite) registrations(outcome string) float64 {
	return testutil.ToFloat64(s.metrics.Registrations.WithLabelValues(outcome))
}

func (s *ServiceSuite) TestRegisterCreatesAndNotifies() {
	createdAt := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	s.repo.EXPECT().CreateRegistration(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, reg *model.Registration) (int64, time.Time, error) {
			s.Equal("asha@test.com", reg.Email)
			s.Equal("Asha Rao", reg.ParticipantName)
			s.Require().NotNil(reg.PresentationTitle)
			s.Equal("Title", *reg.PresentationTitle)
			return 17, createdAt, nil
		})
	s.notifier.EXPECT().Notify(gomock.Any()).Do(func(reg model.Registration) {
		s.Equal(int64(17), reg.ID)
		s.Equal(createdAt, reg.CreatedAt)
	})

	rec := s.do(http.MethodPost, "/api/register", ashaPayload())
	s.Equal(http.StatusCreated, rec.Code)

	resp := decode[dto.RegisterResponse](s, rec)
	s.True(resp.Success)
	s.Equal(int64(17), resp.RegistrationID)
	s.Equal(dto.MsgRegistered, resp.Message)
	s.Equal(1.0, s.registrations(metrics.OutcomeCreated))
}

func (s *ServiceSuite) TestNonPresenterStoredWithoutPresentation() {
	payload := ashaPayload()
	payload["participationType"] = "principal"

	s.repo.EXPECT().CreateRegistration(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, reg *model.Registration) (int64, time.Time, error) {
			s.Nil(reg.PresentationCategory)
			s.Nil(reg.PresentationTitle)
			s.Nil(reg.Abstract)
			s.Nil(reg.PracticalApplication)
			return 1, time.Now(), nil
		})
	s.notifier.EXPECT().Notify(gomock.Any())

	s.Equal(http.StatusCreated, s.do(http.MethodPost, "/api/register", payload).Code)
}

func (s *ServiceSuite) TestValidationFailuresNeverReachStore() {
	cases := []struct {
		name    string
		mutate  func(map[string]string)
		kind    string
		missing []string
		field   string
	}{
		{
			name:    "missing base fields",
			mutate:  func(p map[string]string) { delete(p, "mobile"); p["state"] = "  " },
			kind:    string(rules.KindMissingFields),
			missing: []string{"mobile", "state"},
		},
		{
			name:    "missing presentation field",
			mutate:  func(p map[string]string) { delete(p, "abstract") },
			kind:    string(rules.KindMissingPresentationFields),
			missing: []string{"abstract"},
		},
		{
			name:   "invalid email",
			mutate: func(p map[string]string) { p["email"] = "asha@test" },
			kind:   string(rules.KindInvalidEmail),
			field:  "email",
		},
		{
			name:   "invalid mobile",
			mutate: func(p map[string]string) { p["mobile"] = "12345" },
			kind:   string(rules.KindInvalidMobile),
			field:  "mobile",
		},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			payload := ashaPayload()
			tc.mutate(payload)

			rec := s.do(http.MethodPost, "/api/register", payload)
			s.Equal(http.StatusBadRequest, rec.Code)

			resp := decode[dto.ErrorResponse](s, rec)
			s.False(resp.Success)
			s.Equal(tc.kind, resp.Error)
			s.Equal(tc.missing, resp.MissingFields)
			s.Equal(tc.field, resp.Field)
		})
	}
}

func (s *ServiceSuite) TestMalformedJSON() {
	rec := s.do(http.MethodPost, "/api/register", "{not json")
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal(dto.KindInvalidJSON, decode[dto.ErrorResponse](s, rec).Error)
}

func (s *ServiceSuite) TestDuplicateEmailIsConflict() {
	s.repo.EXPECT().CreateRegistration(gomock.Any(), gomock.Any()).Return(int64(0), time.Time{}, repo.ErrDuplicateEmail)

	rec := s.do(http.MethodPost, "/api/register", ashaPayload())
	s.Equal(http.StatusConflict, rec.Code)

	resp := decode[dto.ErrorResponse](s, rec)
	s.Equal("email", resp.Field)
	s.Equal(1.0, s.registrations(metrics.OutcomeConflict))
}

func (s *ServiceSuite) TestEmailCaseVariantIsConflict() {
	var stored []string
	gomock.InOrder(
		s.repo.EXPECT().CreateRegistration(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, reg *model.Registration) (int64, time.Time, error) {
				stored = append(stored, reg.Email)
				return 1, time.Now(), nil
			}),
		s.repo.EXPECT().CreateRegistration(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, reg *model.Registration) (int64, time.Time, error) {
				stored = append(stored, reg.Email)
				return 0, time.Time{}, repo.ErrDuplicateEmail
			}),
	)
	s.notifier.EXPECT().Notify(gomock.Any()).Times(1)

	first := ashaPayload()
	first["email"] = "A@b.com"
	s.Equal(http.StatusCreated, s.do(http.MethodPost, "/api/register", first).Code)

	second := ashaPayload()
	second["email"] = "a@B.com"
	rec := s.do(http.MethodPost, "/api/register", second)
	s.Equal(http.StatusConflict, rec.Code)
	s.Equal("email", decode[dto.ErrorResponse](s, rec).Field)

	s.Require().Len(stored, 2)
	s.Equal("a@b.com", stored[0])
	s.Equal(stored[0], stored[1])
}

func (s *ServiceSuite) TestStoreErrorDoesNotLeakDetail() {
	s.repo.EXPECT().CreateRegistration(gomock.Any(), gomock.Any()).
		Return(int64(0), time.Time{}, errors.New(`pq: relation "registrations" does not exist`))

	rec := s.do(http.MethodPost, "/api/register", ashaPayload())
	s.Equal(http.StatusInternalServerError, rec.Code)
	s.NotContains(rec.Body.String(), "relation")
	s.Equal(dto.MsgInternalError, decode[dto.ErrorResponse](s, rec).Message)
}

func (s *ServiceSuite) TestListRegistrations() {
	regs := []model.Registration{{ID: 2, Email: "b@test.com"}, {ID: 1, Email: "a@test.com"}}
	s.repo.EXPECT().ListRegistrations(gomock.Any()).Return(regs, nil)

	rec := s.do(http.MethodGet, "/api/registrations", nil)
	s.Equal(http.StatusOK, rec.Code)

	resp := decode[dto.ListResponse](s, rec)
	s.True(resp.Success)
	s.Equal(2, resp.Count)
	s.Equal(int64(2), resp.Data[0].ID)
}

func (s *ServiceSuite) TestListEmptyIsArray() {
	s.repo.EXPECT().ListRegistrations(gomock.Any()).Return(nil, nil)

	rec := s.do(http.MethodGet, "/api/registrations", nil)
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `"data":[]`)
}

func (s *ServiceSuite) TestListFailure() {
	s.repo.EXPECT().ListRegistrations(gomock.Any()).Return(nil, errors.New("conn reset"))

	rec := s.do(http.MethodGet, "/api/registrations", nil)
	s.Equal(http.StatusInternalServerError, rec.Code)
	s.Equal(dto.MsgFetchFailed, decode[dto.ErrorResponse](s, rec).Message)
}

func (s *ServiceSuite) TestDeleteRegistration() {
	gomock.InOrder(
		s.repo.EXPECT().DeleteRegistration(gomock.Any(), int64(5)).Return(true, nil),
		s.repo.EXPECT().DeleteRegistration(gomock.Any(), int64(5)).Return(false, nil),
	)

	rec := s.do(http.MethodDelete, "/api/registrations/5", nil)
	s.Equal(http.StatusOK, rec.Code)
	s.True(decode[dto.MessageResponse](s, rec).Success)

	rec = s.do(http.MethodDelete, "/api/registrations/5", nil)
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *ServiceSuite) TestDeleteInvalidID() {
	for _, id := range []string{"abc", "0", "-3"} {
		rec := s.do(http.MethodDelete, "/api/registrations/"+id, nil)
		s.Equal(http.StatusBadRequest, rec.Code, id)
	}
}

func (s *ServiceSuite) TestHealth() {
	rec := s.do(http.MethodGet, "/", nil)
	s.Equal(http.StatusOK, rec.Code)
	resp := decode[dto.HealthResponse](s, rec)
	s.Equal("ok", resp.Status)
	s.Equal("Pharma Anveshan 2026 API", resp.Service)
}

func (s *ServiceSuite) TestDBHealth() {
	s.repo.EXPECT().Ping(gomock.Any()).Return(nil)
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/healthz/db", nil).Code)

	s.repo.EXPECT().Ping(gomock.Any()).Return(errors.New("dial tcp"))
	s.Equal(http.StatusServiceUnavailable, s.do(http.MethodGet, "/healthz/db", nil).Code)
}
