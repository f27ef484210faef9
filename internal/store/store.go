package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/NazahX/TOPCELL-WEIGHBRIDGE/internal/model"
)

// Store defines the interface for all database operations.
type Store interface {
	CreateTicket(ctx context.Context, t *model.Ticket) error
	SaveTicket(ctx context.Context, t *model.Ticket) error
	TicketByID(ctx context.Context, id uint) (*model.Ticket, error)
	ListTickets(ctx context.Context, limit int) ([]model.Ticket, error)
	NextTicketSeq(ctx context.Context, prefix string) (int, error)

	CreateSyncEntry(ctx context.Context, e *model.SyncQueue) error
	SaveSyncEntry(ctx context.Context, e *model.SyncQueue) error
	SyncEntryByID(ctx context.Context, id uint) (*model.SyncQueue, error)
	PendingSyncEntries(ctx context.Context) ([]model.SyncQueue, error)
	ListSyncEntries(ctx context.Context) ([]model.SyncQueue, error)

	SerialSettings(ctx context.Context) (*model.SerialSettings, error)
	SaveSerialSettings(ctx context.Context, s *model.SerialSettings) error
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db              *gorm.DB
	defaultSimulate bool
}

// NewGormStore creates a new GORM-backed store. defaultSimulate seeds the
// singleton serial settings row on first access.
func NewGormStore(db *gorm.DB, defaultSimulate bool) Store {
	return &gormStore{db: db, defaultSimulate: defaultSimulate}
}

func (s *gormStore) CreateTicket(ctx context.Context, t *model.Ticket) error {
	if err := s.db.WithContext(ctx).Create(t).Error; err != nil {
		return fmt.Errorf("failed to create ticket: %w", err)
	}
	return nil
}

func (s *gormStore) SaveTicket(ctx context.Context, t *model.Ticket) error {
	if err := s.db.WithContext(ctx).Save(t).Error; err != nil {
		return fmt.Errorf("failed to save ticket %d: %w", t.ID, err)
	}
	return nil
}

func (s *gormStore) TicketByID(ctx context.Context, id uint) (*model.Ticket, error) {
	var t model.Ticket
	err := s.db.WithContext(ctx).First(&t, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ticket %d: %w", id, err)
	}
	return &t, nil
}

func (s *gormStore) ListTickets(ctx context.Context, limit int) ([]model.Ticket, error) {
	if limit <= 0 {
		limit = 50
	}
	var tickets []model.Ticket
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&tickets).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	return tickets, nil
}

// NextTicketSeq returns the next per-day sequence for the given number
// prefix, derived from the highest existing suffix. A malformed suffix
// restarts the sequence at 1.
func (s *gormStore) NextTicketSeq(ctx context.Context, prefix string) (int, error) {
	var last model.Ticket
	err := s.db.WithContext(ctx).
		Where("ticket_no LIKE ?", prefix+"%").
		Order("ticket_no DESC").
		First(&last).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 1, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to query last ticket number: %w", err)
	}
	if last.TicketNo == nil {
		return 1, nil
	}
	parts := strings.Split(*last.TicketNo, "-")
	seq, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil {
		return 1, nil
	}
	return seq + 1, nil
}

func (s *gormStore) CreateSyncEntry(ctx context.Context, e *model.SyncQueue) error {
	if err := s.db.WithContext(ctx).Create(e).Error; err != nil {
		return fmt.Errorf("failed to create sync entry: %w", err)
	}
	return nil
}

func (s *gormStore) SaveSyncEntry(ctx context.Context, e *model.SyncQueue) error {
	if err := s.db.WithContext(ctx).Save(e).Error; err != nil {
		return fmt.Errorf("failed to save sync entry %d: %w", e.ID, err)
	}
	return nil
}

func (s *gormStore) SyncEntryByID(ctx context.Context, id uint) (*model.SyncQueue, error) {
	var e model.SyncQueue
	err := s.db.WithContext(ctx).First(&e, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sync entry %d: %w", id, err)
	}
	return &e, nil
}

// PendingSyncEntries returns pending entries oldest first, the drain order.
func (s *gormStore) PendingSyncEntries(ctx context.Context) ([]model.SyncQueue, error) {
	var entries []model.SyncQueue
	err := s.db.WithContext(ctx).
		Where("status = ?", model.SyncStatusPending).
		Order("created_at ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pending sync entries: %w", err)
	}
	return entries, nil
}

func (s *gormStore) ListSyncEntries(ctx context.Context) ([]model.SyncQueue, error) {
	var entries []model.SyncQueue
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list sync entries: %w", err)
	}
	return entries, nil
}

// SerialSettings returns the singleton settings row, creating it with
// defaults on first access.
func (s *gormStore) SerialSettings(ctx context.Context) (*model.SerialSettings, error) {
	var settings model.SerialSettings
	err := s.db.WithContext(ctx).First(&settings, model.SerialSettingsID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		settings = model.SerialSettings{
			ID:       model.SerialSettingsID,
			BaudRate: 9600,
			ByteSize: 8,
			Parity:   "N",
			StopBits: 1,
			Simulate: s.defaultSimulate,
		}
		if err := s.db.WithContext(ctx).Create(&settings).Error; err != nil {
			return nil, fmt.Errorf("failed to create serial settings: %w", err)
		}
		return &settings, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch serial settings: %w", err)
	}
	return &settings, nil
}

func (s *gormStore) SaveSerialSettings(ctx context.Context, settings *model.SerialSettings) error {
	if err := s.db.WithContext(ctx).Save(settings).Error; err != nil {
		return fmt.Errorf("failed to save serial settings: %w", err)
	}
	return nil
}
