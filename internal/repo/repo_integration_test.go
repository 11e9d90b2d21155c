//go:build integration

package repo_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/wb-go/wbf/dbpg"

	"anveshan/internal/model"
	"anveshan/internal/repo"
)

const migrationsDir = "../../migrations/postgres"

type PostgresRepoSuite struct {
	suite.Suite
	container *tcpostgres.PostgresContainer
	db        *dbpg.DB
	repo      repo.Repository
}

func TestPostgresRepoSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresRepoSuite))
}

func (s *PostgresRepoSuite) SetupSuite() {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("anveshan"),
		tcpostgres.WithUsername("anveshan"),
		tcpostgres.WithPassword("anveshan"),
		tcpostgres.BasicWaitStrategies(),
	)
	s.Require().NoError(err)
	s.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	s.Require().NoError(err)

	s.db, err = dbpg.New(dsn, nil, &dbpg.Options{MaxOpenConns: 20, MaxIdleConns: 5, ConnMaxLifetime: time.Minute})
	s.Require().NoError(err)

	log := zerolog.Nop()
	s.repo, err = repo.NewRepository(s.db, &log)
	s.Require().NoError(err)
	s.Require().NoError(s.repo.MigrateUp(migrationsDir))
}

func (s *PostgresRepoSuite) TearDownSuite() {
	if s.db != nil {
		_ = s.db.Master.Close()
	}
	if s.container != nil {
		_ = testcontainers.TerminateContainer(s.container)
	}
}

func (s *PostgresRepoSuite) SetupTest() {
	_, err := s.db.ExecContext(context.Background(), `TRUNCATE registrations RESTART IDENTITY`)
	s.Require().NoError(err)
}

func strPtr(v string) *string { return &v }

func newRegistration(email string) *model.Registration {
	return &model.Registration{
		ParticipantName:      "Asha Rao",
		Email:                email,
		Mobile:               "9876543210",
		Institute:            "XYZ College",
		State:                "Karnataka",
		District:             "Bangalore",
		ParticipationType:    model.TypeUGStudent,
		PresentationCategory: strPtr("poster"),
		PresentationTitle:    strPtr("Title"),
		Abstract:             strPtr("Abstract text"),
		PracticalApplication: strPtr("Use case"),
	}
}

func (s *PostgresRepoSuite) TestCreateAndList() {
	ctx := context.Background()

	firstID, firstAt, err := s.repo.CreateRegistration(ctx, newRegistration("first@test.com"))
	s.Require().NoError(err)
	s.NotZero(firstID)
	s.False(firstAt.IsZero())

	principal := newRegistration("second@test.com")
	principal.ParticipationType = model.TypePrincipal
	principal.PresentationCategory, principal.PresentationTitle, principal.Abstract, principal.PracticalApplication = nil, nil, nil, nil
	secondID, _, err := s.repo.CreateRegistration(ctx, principal)
	s.Require().NoError(err)

	regs, err := s.repo.ListRegistrations(ctx)
	s.Require().NoError(err)
	s.Require().Len(regs, 2)
	s.Equal(secondID, regs[0].ID)
	s.Equal(firstID, regs[1].ID)
	s.Nil(regs[0].PresentationTitle)
	s.Require().NotNil(regs[1].PresentationTitle)
	s.Equal("Title", *regs[1].PresentationTitle)

	got, err := s.repo.GetRegistrationByID(ctx, firstID)
	s.Require().NoError(err)
	s.Equal("first@test.com", got.Email)
}

func (s *PostgresRepoSuite) TestDuplicateEmailIsConflict() {
	ctx := context.Background()

	_, _, err := s.repo.CreateRegistration(ctx, newRegistration("dup@test.com"))
	s.Require().NoError(err)

	_, _, err = s.repo.CreateRegistration(ctx, newRegistration("dup@test.com"))
	s.True(errors.Is(err, repo.ErrDuplicateEmail))

	regs, err := s.repo.ListRegistrations(ctx)
	s.Require().NoError(err)
	s.Len(regs, 1)
}

func (s *PostgresRepoSuite) TestConcurrentSameEmailOneWinner() {
	ctx := context.Background()
	const goroutines = 25

	var wg sync.WaitGroup
	var successCount, conflictCount atomic.Int32
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := s.repo.CreateRegistration(ctx, newRegistration("race@test.com"))
			switch {
			case err == nil:
				successCount.Add(1)
			case errors.Is(err, repo.ErrDuplicateEmail):
				conflictCount.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), successCount.Load(), "exactly one insert should succeed")
	s.Equal(int32(goroutines-1), conflictCount.Load(), "all others should observe a conflict")
}

func (s *PostgresRepoSuite) TestDelete() {
	ctx := context.Background()

	id, _, err := s.repo.CreateRegistration(ctx, newRegistration("gone@test.com"))
	s.Require().NoError(err)

	found, err := s.repo.DeleteRegistration(ctx, id+100)
	s.Require().NoError(err)
	s.False(found)

	found, err = s.repo.DeleteRegistration(ctx, id)
	s.Require().NoError(err)
	s.True(found)

	found, err = s.repo.DeleteRegistration(ctx, id)
	s.Require().NoError(err)
	s.False(found)

	_, err = s.repo.GetRegistrationByID(ctx, id)
	s.True(errors.Is(err, repo.ErrNotFound))
}
