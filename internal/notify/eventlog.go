// Package notify records engine transitions (course completed, quiz graded)
// in an append-only event log. Notification dispatch itself lives outside
// this repository; dispatchers tail the log.
package notify

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"
	"time"
)

const (
	EventCourseCompleted = "CourseCompleted"
	EventLessonCompleted = "LessonCompleted"
	EventQuizGraded      = "QuizGraded"
)

type Event struct {
	Offset    int64
	Type      string
	Key       string // natural key: courseID|userID, quizID|userID, ...
	DataJSON  string
	CreatedAt int64
}

// Sink receives engine events. Implementations must tolerate repeated
// appends for the same key; consumers deduplicate.
type Sink interface {
	Append(ctx context.Context, typ, key string, data interface{}) error
}

type EventRepo struct{ db *sql.DB }

func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

func (r *EventRepo) Append(ctx context.Context, typ, key string, data interface{}) error {
	buf, err := json.Marshal(data)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO event_log (typ, key, data, created_at) VALUES ($1,$2,$3,$4)`,
		typ, key, string(buf), time.Now().Unix())
	return err
}

// MemorySink collects events in memory, for tests and offline mode.
type MemorySink struct {
	mu     sync.Mutex
	events []Event
}

func NewMemorySink() *MemorySink { return &MemorySink{} }

func (m *MemorySink) Append(_ context.Context, typ, key string, data interface{}) error {
	buf, err := json.Marshal(data)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, Event{
		Offset:    int64(len(m.events) + 1),
		Type:      typ,
		Key:       key,
		DataJSON:  string(buf),
		CreatedAt: time.Now().Unix(),
	})
	return nil
}

func (m *MemorySink) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}
