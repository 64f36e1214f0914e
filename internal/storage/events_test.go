package storage_test

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/jonesrussell/linktrack/internal/domain"
	"github.com/jonesrussell/linktrack/internal/logger"
	"github.com/jonesrussell/linktrack/internal/storage"
)

func newTestEvent(t *testing.T) domain.ClickEvent {
	t.Helper()

	return domain.ClickEvent{
		IP:        "203.0.113.7",
		Country:   "CA",
		UserAgent: "Mozilla/5.0",
		Source:    "facebook",
		Site:      "example",
		ArticleID: "abc",
		Kind:      domain.KindClick,
		CreatedAt: time.Now(),
	}
}

func TestBuffer_Send(t *testing.T) {
	buf := storage.NewBuffer(10)
	defer buf.Close()

	if !buf.Send(newTestEvent(t)) {
		t.Fatal("expected Send to succeed on non-full buffer")
	}
	if buf.Len() != 1 {
		t.Fatalf("Len = %d, want 1", buf.Len())
	}
}

func TestBuffer_SendFull(t *testing.T) {
	buf := storage.NewBuffer(1)
	defer buf.Close()

	event := newTestEvent(t)

	if !buf.Send(event) {
		t.Fatal("expected first Send to succeed")
	}

	// Second send should fail (non-blocking).
	if buf.Send(event) {
		t.Fatal("expected Send to return false when buffer is full")
	}
}

func TestBuffer_CloseIsIdempotent(t *testing.T) {
	buf := storage.NewBuffer(1)
	buf.Close()
	buf.Close()
}

func TestEventStore_FlushesOnStop(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer func() { _ = db.Close() }()

	mock.ExpectExec("INSERT INTO click_events").
		WillReturnResult(sqlmock.NewResult(0, 2))

	buf := storage.NewBuffer(10)
	store := storage.NewEventStore(db, buf, logger.NewNop(), time.Hour, 100)

	buf.Send(newTestEvent(t))
	event := newTestEvent(t)
	event.Country = "" // stored as NULL
	event.Kind = domain.KindPreview
	buf.Send(event)

	store.Start()
	store.Stop()

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEventStore_ThresholdFlush(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer func() { _ = db.Close() }()

	// Threshold flush for the first two, drain flush for the third.
	mock.ExpectExec("INSERT INTO click_events").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO click_events").
		WillReturnResult(sqlmock.NewResult(0, 1))

	buf := storage.NewBuffer(10)
	store := storage.NewEventStore(db, buf, logger.NewNop(), time.Hour, 2)
	store.Start()

	for i := 0; i < 2; i++ {
		buf.Send(newTestEvent(t))
	}

	// Give the flush loop a moment to hit the threshold before the third
	// event arrives.
	time.Sleep(50 * time.Millisecond)
	buf.Send(newTestEvent(t))

	store.Stop()

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
