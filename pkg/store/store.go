package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ethpandaops/parkoor/pkg/auth"
	"github.com/ethpandaops/parkoor/pkg/config"
	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Store provides persistence for users, vehicles and violations. Every
// vehicle and violation method takes the site code explicitly; there is no
// cross-site query.
type Store interface {
	Start(ctx context.Context) error
	Stop() error

	// Users.
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	CreateUser(ctx context.Context, user *User) error
	UpdateUserPassword(ctx context.Context, username, hash string) error

	// Vehicles.
	GetVehicle(ctx context.Context, siteCode, plate string) (*Vehicle, error)
	UpsertVehicle(ctx context.Context, v *Vehicle) error
	ListRecentVehicles(ctx context.Context, siteCode string, limit int) ([]Vehicle, error)

	// Violations.
	CreateViolation(ctx context.Context, v *Violation) error
	ListRecentViolations(ctx context.Context, siteCode string, limit int) ([]Violation, error)

	// Seeding.
	SeedUsers(ctx context.Context, users []config.LocalUser) error
	SeedDemo(ctx context.Context, siteCode string) error
}

// Compile-time interface check.
var _ Store = (*store)(nil)

type store struct {
	log logrus.FieldLogger
	cfg *config.DatabaseConfig
	db  *gorm.DB
	now func() time.Time
}

// NewStore creates a new Store backed by the configured database driver.
func NewStore(
	log logrus.FieldLogger,
	cfg *config.DatabaseConfig,
) Store {
	return &store{
		log: log.WithField("component", "store"),
		cfg: cfg,
		now: time.Now,
	}
}

// Start opens the database connection and runs migrations.
func (s *store) Start(ctx context.Context) error {
	var (
		dialector gorm.Dialector
		err       error
	)

	gormCfg := &gorm.Config{
		Logger: logger.Discard,
	}

	switch s.cfg.Driver {
	case "sqlite":
		if dir := filepath.Dir(s.cfg.SQLite.Path); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("creating database directory: %w", err)
			}
		}

		dialector = sqlite.Open(s.cfg.SQLite.Path)
	case "postgres":
		dsn := fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			s.cfg.Postgres.Host,
			s.cfg.Postgres.Port,
			s.cfg.Postgres.User,
			s.cfg.Postgres.Password,
			s.cfg.Postgres.Database,
			s.cfg.Postgres.SSLMode,
		)
		dialector = postgres.Open(dsn)
	default:
		return fmt.Errorf("unsupported database driver: %s", s.cfg.Driver)
	}

	s.db, err = gorm.Open(dialector, gormCfg)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}

	if err := s.db.WithContext(ctx).AutoMigrate(
		&User{},
		&Vehicle{},
		&Violation{},
	); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	s.log.WithField("driver", s.cfg.Driver).Info("Database connected")

	return nil
}

// Stop closes the underlying database connection.
func (s *store) Stop() error {
	if s.db == nil {
		return nil
	}

	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("getting underlying db: %w", err)
	}

	return sqlDB.Close()
}

// --- Users ---

func (s *store) GetUserByUsername(
	ctx context.Context, username string,
) (*User, error) {
	var user User
	if err := s.db.WithContext(ctx).
		Where("username = ?", username).
		First(&user).Error; err != nil {
		return nil, fmt.Errorf("getting user by username: %w", notFound(err))
	}

	return &user, nil
}

func (s *store) CreateUser(ctx context.Context, user *User) error {
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(user)
	if result.Error != nil {
		return fmt.Errorf("creating user: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("creating user %q: %w", user.Username, ErrAlreadyExists)
	}

	return nil
}

func (s *store) UpdateUserPassword(
	ctx context.Context, username, hash string,
) error {
	result := s.db.WithContext(ctx).
		Model(&User{}).
		Where("username = ?", username).
		Update("password_hash", hash)
	if result.Error != nil {
		return fmt.Errorf("updating user password: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("updating user password %q: %w", username, ErrNotFound)
	}

	return nil
}

// --- Vehicles ---

func (s *store) GetVehicle(
	ctx context.Context, siteCode, plate string,
) (*Vehicle, error) {
	var v Vehicle
	if err := s.db.WithContext(ctx).
		Where("site_code = ? AND plate = ?", siteCode, plate).
		First(&v).Error; err != nil {
		return nil, fmt.Errorf("getting vehicle: %w", notFound(err))
	}

	return &v, nil
}

// UpsertVehicle inserts v or replaces every mutable column of the existing
// (site, plate) row.
func (s *store) UpsertVehicle(ctx context.Context, v *Vehicle) error {
	if v.SiteCode == "" || v.Plate == "" {
		return errors.New("upserting vehicle: site code and plate are required")
	}

	if v.UpdatedAt.IsZero() {
		v.UpdatedAt = s.now().UTC()
	}

	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "site_code"}, {Name: "plate"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"unit", "owner_name", "status", "valid_from", "valid_to", "note", "updated_at",
		}),
	}).Create(v).Error; err != nil {
		return fmt.Errorf("upserting vehicle: %w", err)
	}

	return nil
}

func (s *store) ListRecentVehicles(
	ctx context.Context, siteCode string, limit int,
) ([]Vehicle, error) {
	var vehicles []Vehicle
	if err := s.db.WithContext(ctx).
		Where("site_code = ?", siteCode).
		Order("updated_at DESC").
		Order("plate ASC").
		Limit(limit).
		Find(&vehicles).Error; err != nil {
		return nil, fmt.Errorf("listing vehicles: %w", err)
	}

	return vehicles, nil
}

// --- Violations ---

func (s *store) CreateViolation(ctx context.Context, v *Violation) error {
	if v.SiteCode == "" || v.Plate == "" {
		return errors.New("creating violation: site code and plate are required")
	}

	// Ids are always assigned by the database.
	v.ID = 0

	if v.CreatedAt.IsZero() {
		v.CreatedAt = s.now().UTC()
	}

	if err := s.db.WithContext(ctx).Create(v).Error; err != nil {
		return fmt.Errorf("creating violation: %w", err)
	}

	return nil
}

func (s *store) ListRecentViolations(
	ctx context.Context, siteCode string, limit int,
) ([]Violation, error) {
	var violations []Violation
	if err := s.db.WithContext(ctx).
		Where("site_code = ?", siteCode).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&violations).Error; err != nil {
		return nil, fmt.Errorf("listing violations: %w", err)
	}

	return violations, nil
}

// --- Seeding ---

// SeedUsers creates config-sourced users that do not exist yet. For users
// that do exist, the password hash is refreshed when the configured
// password no longer verifies; the role is never changed.
func (s *store) SeedUsers(
	ctx context.Context, users []config.LocalUser,
) error {
	var created int

	for _, u := range users {
		username := strings.TrimSpace(u.Username)

		role, err := auth.ParseRole(u.Role)
		if err != nil {
			return fmt.Errorf("seeding user %q: %w", username, err)
		}

		existing, err := s.GetUserByUsername(ctx, username)

		switch {
		case err == nil:
			if existing.Role != string(role) {
				s.log.WithField("username", username).
					Warn("Seeded role differs from stored role, keeping stored role")
			}

			if auth.VerifyPassword(u.Password, existing.PasswordHash) {
				continue
			}

			hash, err := auth.HashPassword(u.Password)
			if err != nil {
				return fmt.Errorf("hashing password for %q: %w", username, err)
			}

			if err := s.UpdateUserPassword(ctx, username, hash); err != nil {
				return err
			}
		case errors.Is(err, ErrNotFound):
			hash, err := auth.HashPassword(u.Password)
			if err != nil {
				return fmt.Errorf("hashing password for %q: %w", username, err)
			}

			err = s.CreateUser(ctx, &User{
				Username:     username,
				PasswordHash: hash,
				Role:         string(role),
			})
			switch {
			case err == nil:
				created++
			case !errors.Is(err, ErrAlreadyExists):
				return fmt.Errorf("seeding user %q: %w", username, err)
			}
		default:
			return err
		}
	}

	s.log.WithField("count", created).Info("Seeded users from config")

	return nil
}

// SeedDemo inserts the demo vehicles into siteCode unless they already
// exist.
func (s *store) SeedDemo(ctx context.Context, siteCode string) error {
	now := s.now().UTC()

	for _, v := range DemoVehicles(siteCode) {
		v.UpdatedAt = now

		if err := s.db.WithContext(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&v).Error; err != nil {
			return fmt.Errorf("seeding demo vehicle %q: %w", v.Plate, err)
		}
	}

	s.log.WithField("site", siteCode).Info("Seeded demo vehicles")

	return nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}

	return err
}
