package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/dbpg"

	"anveshan/internal/model"
)

//go:generate mockgen -source=repo.go -destination=mocks/mocks.go -package=mocks Repository

var (
	ErrNotFound       = errors.New("registration not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

// uniqueViolation is the Postgres SQLSTATE raised by the email constraint.
const uniqueViolation = pq.ErrorCode("23505")

type Repository interface {
	CreateRegistration(ctx context.Context, reg *model.Registration) (int64, time.Time, error)
	GetRegistrationByID(ctx context.Context, id int64) (*model.Registration, error)
	ListRegistrations(ctx context.Context) ([]model.Registration, error)
	DeleteRegistration(ctx context.Context, id int64) (bool, error)
	Ping(ctx context.Context) error
	MigrateUp(migrationsDir string) error
	MigrateDown(migrationsDir string) error
}

// All statements go to db.Master so reads observe acknowledged writes.
type repository struct {
	db  *dbpg.DB
	log *zerolog.Logger
}

func NewRepository(db *dbpg.DB, log *zerolog.Logger) (Repository, error) {
	if db == nil {
		return nil, fmt.Errorf("db cannot be nil")
	}
	if err := db.Master.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}
	return &repository{db: db, log: log}, nil
}

func (r *repository) MigrateUp(migrationsDir string) error {
	return r.applyMigrations(migrationsDir, "*.up.sql", false)
}

func (r *repository) MigrateDown(migrationsDir string) error {
	return r.applyMigrations(migrationsDir, "*.down.sql", true)
}

func (r *repository) applyMigrations(migrationsDir, pattern string, reverse bool) error {
	files, err := filepath.Glob(filepath.Join(migrationsDir, pattern))
	if err != nil {
		return fmt.Errorf("failed to read migration files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no migrations matching %s in %s", pattern, migrationsDir)
	}
	if reverse {
		sort.Sort(sort.Reverse(sort.StringSlice(files)))
	}

	for _, file := range files {
		sqlBytes, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", file, err)
		}

		if _, err := r.db.Master.ExecContext(context.Background(), string(sqlBytes)); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", file, err)
		}
		r.log.Debug().Str("file", filepath.Base(file)).Msg("migration applied")
	}

	r.log.Info().Msgf("Migrations %s applied from %s", pattern, migrationsDir)
	return nil
}

func (r *repository) Ping(ctx context.Context) error {
	return r.db.Master.PingContext(ctx)
}

func (r *repository) CreateRegistration(ctx context.Context, reg *model.Registration) (int64, time.Time, error) {
	query := `
		INSERT INTO registrations
			(participant_name, email, mobile, institute, state, district, pci_id,
			 participation_type, presentation_category, presentation_title,
			 abstract, practical_application, patent_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at
	`

	var (
		id        int64
		createdAt time.Time
	)
	err := r.db.Master.QueryRowContext(ctx, query,
		reg.ParticipantName, reg.Email, reg.Mobile, reg.Institute, reg.State, reg.District, reg.PciID,
		reg.ParticipationType, reg.PresentationCategory, reg.PresentationTitle,
		reg.Abstract, reg.PracticalApplication, reg.PatentStatus,
	).Scan(&id, &createdAt)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, time.Time{}, ErrDuplicateEmail
		}
		return 0, time.Time{}, fmt.Errorf("failed to insert registration: %w", err)
	}
	return id, createdAt, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

const selectColumns = `
	SELECT id, participant_name, email, mobile, institute, state, district, pci_id,
	       participation_type, presentation_category, presentation_title,
	       abstract, practical_application, patent_status, created_at
	FROM registrations
`

type scanner interface {
	Scan(dest ...any) error
}

func scanRegistration(row scanner, reg *model.Registration) error {
	return row.Scan(
		&reg.ID,
		&reg.ParticipantName,
		&reg.Email,
		&reg.Mobile,
		&reg.Institute,
		&reg.State,
		&reg.District,
		&reg.PciID,
		&reg.ParticipationType,
		&reg.PresentationCategory,
		&reg.PresentationTitle,
		&reg.Abstract,
		&reg.PracticalApplication,
		&reg.PatentStatus,
		&reg.CreatedAt,
	)
}

func (r *repository) GetRegistrationByID(ctx context.Context, id int64) (*model.Registration, error) {
	row := r.db.Master.QueryRowContext(ctx, selectColumns+` WHERE id = $1`, id)

	var reg model.Registration
	if err := scanRegistration(row, &reg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get registration %d: %w", id, err)
	}
	return &reg, nil
}

func (r *repository) ListRegistrations(ctx context.Context) ([]model.Registration, error) {
	rows, err := r.db.Master.QueryContext(ctx, selectColumns+` ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations: %w", err)
	}
	defer rows.Close()

	regs := make([]model.Registration, 0)
	for rows.Next() {
		var reg model.Registration
		if err := scanRegistration(rows, &reg); err != nil {
			return nil, fmt.Errorf("failed to scan registration: %w", err)
		}
		regs = append(regs, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate registrations: %w", err)
	}

	return regs, nil
}

func (r *repository) DeleteRegistration(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.Master.ExecContext(ctx, `DELETE FROM registrations WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete registration %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n > 0, nil
}
