// Package storage implements the durable message log behind the chat hub,
// backed by GORM. SQLite (pure Go driver) is the default; Postgres can be
// selected through configuration.
package storage

import (
	"errors"
	"strings"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"chatrelay/backend/internal/models"
)

// Storage is the message-log contract consumed by the hub.
type Storage interface {
	// AppendMessage persists msg and fills msg.ID. When the client offset
	// already exists the call succeeds with inserted=false and msg.ID set
	// to the previously stored row's id.
	AppendMessage(msg *models.ChatMessage) (inserted bool, err error)

	// MessagesSince returns the messages of one room with id > lastID,
	// in ascending id order.
	MessagesSince(room string, lastID uint) ([]models.ChatMessage, error)
}

// Service is the GORM-backed Storage implementation.
type Service struct {
	DB  *gorm.DB
	log zerolog.Logger
}

func NewService(db *gorm.DB, log zerolog.Logger) *Service {
	return &Service{
		DB:  db,
		log: log.With().Str("component", "storage").Logger(),
	}
}

// Open connects to the configured database. driver is "sqlite" or "postgres";
// dsn is a file path for sqlite and a connection string for postgres.
func Open(driver, dsn string) (*gorm.DB, error) {
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}

	switch driver {
	case "postgres":
		return gorm.Open(postgres.Open(dsn), cfg)
	case "sqlite":
		db, err := gorm.Open(sqlite.Open(dsn), cfg)
		if err != nil {
			return nil, err
		}
		db.Exec("PRAGMA journal_mode=WAL;")
		db.Exec("PRAGMA busy_timeout=5000;")
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.SetMaxOpenConns(10)
			sqlDB.SetConnMaxIdleTime(5 * time.Minute)
		}
		return db, nil
	default:
		return nil, errors.New("unsupported db driver: " + driver)
	}
}

// AutoMigrate creates the message table.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.ChatMessage{})
}

// AppendMessage inserts the message, treating a duplicate client offset as
// "already delivered" rather than an error.
func (s *Service) AppendMessage(msg *models.ChatMessage) (bool, error) {
	err := s.DB.Create(msg).Error
	if err == nil {
		return true, nil
	}
	if !isUniqueViolation(err) {
		s.log.Error().Err(err).Str("room", msg.Room).Msg("failed to append message")
		return false, err
	}

	// Retried send: recover the id of the row the first attempt stored.
	var existing models.ChatMessage
	if ferr := s.DB.Where("client_offset = ?", msg.ClientOffset).First(&existing).Error; ferr != nil {
		return false, ferr
	}
	msg.ID = existing.ID
	s.log.Debug().
		Str("client_offset", msg.ClientOffset).
		Uint("id", existing.ID).
		Msg("duplicate client offset, reusing stored row")
	return false, nil
}

// MessagesSince loads the replay window for one room.
func (s *Service) MessagesSince(room string, lastID uint) ([]models.ChatMessage, error) {
	var msgs []models.ChatMessage
	err := s.DB.
		Where("room = ? AND id > ?", room, lastID).
		Order("id asc").
		Find(&msgs).Error
	if err != nil {
		s.log.Error().Err(err).Str("room", room).Uint("last_id", lastID).Msg("failed to load replay window")
		return nil, err
	}
	return msgs, nil
}

// isUniqueViolation matches unique-constraint failures across both drivers.
// glebarez/sqlite often reports these as plain-text errors.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "unique constraint failed") ||
		strings.Contains(low, "constraint failed: unique") ||
		strings.Contains(low, "duplicate key value")
}
