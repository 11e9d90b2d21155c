package consumerWorker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

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
)

type fakeConsumer struct {
	handler func([]byte) error
	err     error
}

func (f *fakeConsumer) Consume(handler func([]byte) error) error {
	f.handler = handler
	return f.err
}

type ReaderSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	repo     *repomocks.MockRepository
	sender   *notifymocks.MockSender
	consumer *fakeConsumer
	metrics  *metrics.Metrics
	reader   *Reader
}

func TestReaderSuite(t *testing.T) {
	suite.Run(t, new(ReaderSuite))
}

func (s *ReaderSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.repo = repomocks.NewMockRepository(s.ctrl)
	s.sender = notifymocks.NewMockSender(s.ctrl)
	s.consumer = &fakeConsumer{}
	s.metrics = metrics.New(prometheus.NewRegistry())
	log := zerolog.Nop()
	s.reader = NewReader(s.consumer, s.repo, s.sender, s.metrics, &log)
	s.Require().NoError(s.reader.Start(context.Background()))
}

func (s *ReaderSuite) TearDownTest() {
	s.reader.Stop()
}

func (s *ReaderSuite) deliver(id int64) error {
	body, err := json.Marshal(dto.NotificationMessage{RegistrationID: id, QueuedAt: time.Now()})
	s.Require().NoError(err)
	return s.consumer.handler(body)
}

func (s *ReaderSuite) notifications(outcome string) float64 {
	return testutil.ToFloat64(s.metrics.Notifications.WithLabelValues(outcome))
}

func (s *ReaderSuite) TestSendsStoredRegistration() {
	reg := &model.Registration{ID: 9, Email: "asha@test.com"}
	s.repo.EXPECT().GetRegistrationByID(gomock.Any(), int64(9)).Return(reg, nil)
	s.sender.EXPECT().SendRegistrationEmail(*reg).Return(nil)

	s.NoError(s.deliver(9))
	s.Equal(1.0, s.notifications(metrics.OutcomeSent))
}

func (s *ReaderSuite) TestSendFailureIsAckedOnce() {
	reg := &model.Registration{ID: 10}
	s.repo.EXPECT().GetRegistrationByID(gomock.Any(), int64(10)).Return(reg, nil)
	s.sender.EXPECT().SendRegistrationEmail(gomock.Any()).Return(errors.New("smtp down")).Times(1)

	s.NoError(s.deliver(10))
	s.Equal(1.0, s.notifications(metrics.OutcomeFailed))
}

func (s *ReaderSuite) TestDeletedRegistrationIsSkipped() {
	s.repo.EXPECT().GetRegistrationByID(gomock.Any(), int64(11)).Return(nil, repo.ErrNotFound)

	s.NoError(s.deliver(11))
	s.Equal(0.0, s.notifications(metrics.OutcomeFailed))
}

func (s *ReaderSuite) TestMalformedPayloadIsRejected() {
	s.Error(s.consumer.handler([]byte("{not json")))
	s.Equal(1.0, s.notifications(metrics.OutcomeFailed))
}

func TestStartFailsWhenConsumeFails(t *testing.T) {
	log := zerolog.Nop()
	r := NewReader(&fakeConsumer{err: errors.New("no channel")}, nil, nil, nil, &log)
	if err := r.Start(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	r.Stop()
}
