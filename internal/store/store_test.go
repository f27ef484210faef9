package store

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/NazahX/TOPCELL-WEIGHBRIDGE/internal/model"
)

// A helper function to create a mock database connection.
func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func TestPendingSyncEntriesOrderedOldestFirst(t *testing.T) {
	gormDB, mock := newTestDB(t)
	s := NewGormStore(gormDB, false)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "sync_queues" WHERE status = $1 ORDER BY created_at ASC`)).
		WithArgs(model.SyncStatusPending).
		WillReturnRows(sqlmock.NewRows([]string{"id", "ticket_id", "payload", "status", "attempts", "created_at"}).
			AddRow(1, 10, `{}`, "pending", 0, now.Add(-2*time.Minute)).
			AddRow(2, 11, `{}`, "pending", 0, now.Add(-time.Minute)))

	entries, err := s.PendingSyncEntries(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, uint(1), entries[0].ID)
	assert.Equal(t, uint(2), entries[1].ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListSyncEntriesNewestFirst(t *testing.T) {
	gormDB, mock := newTestDB(t)
	s := NewGormStore(gormDB, false)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "sync_queues" ORDER BY created_at DESC`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "ticket_id", "payload", "status", "attempts"}).
			AddRow(2, 11, `{}`, "sent", 1))

	entries, err := s.ListSyncEntries(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "sent", entries[0].Status)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNextTicketSeq(t *testing.T) {
	testCases := []struct {
		name     string
		ticketNo any
		noRows   bool
		expected int
	}{
		{"continues existing sequence", "WB20240101-0002", false, 3},
		{"first ticket of the day", nil, true, 1},
		{"malformed suffix restarts", "WB20240101-abcd", false, 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gormDB, mock := newTestDB(t)
			s := NewGormStore(gormDB, false)

			rows := sqlmock.NewRows([]string{"id", "ticket_no"})
			if !tc.noRows {
				rows.AddRow(1, tc.ticketNo)
			}
			mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "tickets" WHERE ticket_no LIKE `)).
				WillReturnRows(rows)

			seq, err := s.NextTicketSeq(context.Background(), "WB20240101")
			require.NoError(t, err)
			assert.Equal(t, tc.expected, seq)

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSerialSettingsReturnsStoredRow(t *testing.T) {
	gormDB, mock := newTestDB(t)
	s := NewGormStore(gormDB, true)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "serial_settings"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "port", "baud_rate", "byte_size", "parity", "stop_bits", "simulate"}).
			AddRow(1, "/dev/ttyUSB0", 19200, 8, "N", 1.0, false))

	settings, err := s.SerialSettings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB0", settings.Port)
	assert.Equal(t, 19200, settings.BaudRate)
	assert.False(t, settings.Simulate)

	assert.NoError(t, mock.ExpectationsWereMet())
}
