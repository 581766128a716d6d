package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	v1 "github.com/agritrace-lab/agritrace/internal/api/v1"
	"github.com/agritrace-lab/agritrace/internal/core/storage"
)

func newMockAdapter(t *testing.T) (*Adapter, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	return &Adapter{
		db:              db,
		stmtInsertBatch: mustPrepareStmt(t, db, mock, queryInsertBatch),
		stmtGetBatch:    mustPrepareStmt(t, db, mock, queryGetBatch),
		stmtListBatches: mustPrepareStmt(t, db, mock, queryListBatches),
		stmtInsertEvent: mustPrepareStmt(t, db, mock, queryInsertEvent),
		stmtListEvents:  mustPrepareStmt(t, db, mock, queryListEvents),
	}, mock, db
}

func mustPrepareStmt(t *testing.T, db *sql.DB, mock sqlmock.Sqlmock, query string) *sql.Stmt {
	t.Helper()

	mock.ExpectPrepare(regexp.QuoteMeta(query))
	stmt, err := db.Prepare(query)
	require.NoError(t, err)
	return stmt
}

func batchRowColumns() []string {
	return []string{
		"id", "producer_id", "crop", "variety", "quantity",
		"origin_description", "harvest_timestamp", "created_at",
	}
}

func eventRowColumns() []string {
	return []string{
		"id", "batch_id", "actor_role", "actor_name", "occurred_at",
		"latitude", "longitude", "payload", "content_hash", "ledger_ref", "seq",
	}
}

func TestAdapter_InsertBatch(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	batch := &v1.Batch{
		ID:                "batch-1",
		ProducerID:        "producer-1",
		Crop:              "Coffee",
		Variety:           "Arabica",
		Quantity:          "500kg",
		OriginDescription: "Plot 4",
		HarvestTimestamp:  now,
	}

	t.Run("success populates created_at", func(t *testing.T) {
		adapter, mock, db := newMockAdapter(t)
		defer db.Close()

		mock.ExpectQuery(regexp.QuoteMeta(queryInsertBatch)).
			WithArgs(
				batch.ID,
				batch.ProducerID,
				batch.Crop,
				batch.Variety,
				batch.Quantity,
				batch.OriginDescription,
				batch.HarvestTimestamp,
			).
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now.Add(time.Hour)))

		b := *batch
		require.NoError(t, adapter.InsertBatch(context.Background(), &b))
		require.Equal(t, now.Add(time.Hour), b.CreatedAt)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate maps to ErrDuplicate", func(t *testing.T) {
		adapter, mock, db := newMockAdapter(t)
		defer db.Close()

		mock.ExpectQuery(regexp.QuoteMeta(queryInsertBatch)).
			WithArgs(
				batch.ID,
				batch.ProducerID,
				batch.Crop,
				batch.Variety,
				batch.Quantity,
				batch.OriginDescription,
				batch.HarvestTimestamp,
			).
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}))

		b := *batch
		require.ErrorIs(t, adapter.InsertBatch(context.Background(), &b), storage.ErrDuplicate)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAdapter_GetBatch(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	t.Run("found", func(t *testing.T) {
		adapter, mock, db := newMockAdapter(t)
		defer db.Close()

		mock.ExpectQuery(regexp.QuoteMeta(queryGetBatch)).
			WithArgs("batch-1").
			WillReturnRows(sqlmock.NewRows(batchRowColumns()).
				AddRow("batch-1", "producer-1", "Coffee", "Arabica", "500kg", "Plot 4", now, now))

		b, err := adapter.GetBatch(context.Background(), "batch-1")
		require.NoError(t, err)
		require.Equal(t, "producer-1", b.ProducerID)
		require.Equal(t, "Coffee", b.Crop)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing maps to ErrNotFound", func(t *testing.T) {
		adapter, mock, db := newMockAdapter(t)
		defer db.Close()

		mock.ExpectQuery(regexp.QuoteMeta(queryGetBatch)).
			WithArgs("nope").
			WillReturnRows(sqlmock.NewRows(batchRowColumns()))

		_, err := adapter.GetBatch(context.Background(), "nope")
		require.ErrorIs(t, err, storage.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAdapter_InsertEvent(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	lat, lng := 52.52, 13.405

	event := &v1.Event{
		ID:          "evt-1",
		BatchID:     "batch-1",
		ActorRole:   v1.RoleCarrier,
		ActorName:   "Fast-Track Logistics",
		Timestamp:   now,
		Latitude:    &lat,
		Longitude:   &lng,
		Payload:     map[string]interface{}{"action": "pickup"},
		ContentHash: "abc123",
		LedgerRef:   "0xdef456",
	}

	t.Run("success populates seq", func(t *testing.T) {
		adapter, mock, db := newMockAdapter(t)
		defer db.Close()

		payloadJSON, err := json.Marshal(event.Payload)
		require.NoError(t, err)

		mock.ExpectQuery(regexp.QuoteMeta(queryInsertEvent)).
			WithArgs(
				event.ID,
				event.BatchID,
				string(event.ActorRole),
				event.ActorName,
				event.Timestamp,
				event.Latitude,
				event.Longitude,
				payloadJSON,
				event.ContentHash,
				event.LedgerRef,
			).
			WillReturnRows(sqlmock.NewRows([]string{"seq"}).AddRow(int64(42)))

		e := *event
		require.NoError(t, adapter.InsertEvent(context.Background(), &e))
		require.Equal(t, int64(42), e.Seq)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate maps to ErrDuplicate", func(t *testing.T) {
		adapter, mock, db := newMockAdapter(t)
		defer db.Close()

		mock.ExpectQuery(regexp.QuoteMeta(queryInsertEvent)).
			WithArgs(
				event.ID,
				event.BatchID,
				string(event.ActorRole),
				event.ActorName,
				event.Timestamp,
				event.Latitude,
				event.Longitude,
				sqlmock.AnyArg(),
				event.ContentHash,
				event.LedgerRef,
			).
			WillReturnRows(sqlmock.NewRows([]string{"seq"}))

		e := *event
		require.ErrorIs(t, adapter.InsertEvent(context.Background(), &e), storage.ErrDuplicate)
		require.Equal(t, int64(0), e.Seq)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAdapter_ListEvents(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	adapter, mock, db := newMockAdapter(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(queryListEvents)).
		WithArgs("batch-1").
		WillReturnRows(sqlmock.NewRows(eventRowColumns()).
			AddRow("e1", "batch-1", "PRODUCER", "Alice Farm Co.", now,
				nil, nil, []byte(`{"action":"registration"}`), "hash1", "0xref1", int64(1)).
			AddRow("e2", "batch-1", "CARRIER", "Fast-Track Logistics", now.Add(time.Hour),
				52.52, 13.405, []byte(`{"action":"pickup"}`), "hash2", "0xref2", int64(2)))

	events, err := adapter.ListEvents(context.Background(), "batch-1")
	require.NoError(t, err)
	require.Len(t, events, 2)

	require.Equal(t, v1.RoleProducer, events[0].ActorRole)
	require.Nil(t, events[0].Latitude)
	require.Nil(t, events[0].Longitude)
	require.Equal(t, "registration", events[0].Action())

	require.Equal(t, v1.RoleCarrier, events[1].ActorRole)
	require.NotNil(t, events[1].Latitude)
	require.Equal(t, 52.52, *events[1].Latitude)
	require.Equal(t, int64(2), events[1].Seq)

	require.NoError(t, mock.ExpectationsWereMet())
}
