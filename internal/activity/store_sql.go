package activity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SQLStore persists activity records in the activity_log table. The table
// carries UNIQUE(subject_id, actor_id, activity_type), so Record is a single
// ON CONFLICT upsert: a race between two identical submissions resolves to
// one row, last write wins, and the conflict never surfaces to the caller.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) Record(ctx context.Context, subject, actor string, typ Type, value string) (string, error) {
	id := uuid.NewString()
	now := time.Now().Unix()
	row := s.db.QueryRowContext(ctx,
		`INSERT INTO activity_log (id, subject_id, actor_id, activity_type, value, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6)
		 ON CONFLICT (subject_id, actor_id, activity_type)
		 DO UPDATE SET value=EXCLUDED.value, created_at=EXCLUDED.created_at
		 RETURNING id`,
		id, subject, actor, string(typ), value, now)
	var got string
	if err := row.Scan(&got); err != nil {
		return "", err
	}
	return got, nil
}

func (s *SQLStore) GetValue(ctx context.Context, subject, actor string, typ Type) (string, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT value FROM activity_log WHERE subject_id=$1 AND actor_id=$2 AND activity_type=$3`,
		subject, actor, string(typ))
	var v string
	if err := row.Scan(&v); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return v, true, nil
}

func (s *SQLStore) Exists(ctx context.Context, subject, actor string, typ Type) (bool, error) {
	_, ok, err := s.GetValue(ctx, subject, actor, typ)
	return ok, err
}

func (s *SQLStore) Query(ctx context.Context, f Filter) ([]Record, error) {
	q := `SELECT id, subject_id, actor_id, activity_type, value, created_at FROM activity_log WHERE 1=1`
	args := make([]interface{}, 0, 3)
	add := func(clause, val string) {
		args = append(args, val)
		q += fmt.Sprintf("%s$%d", clause, len(args))
	}
	if f.SubjectID != "" {
		add(` AND subject_id=`, f.SubjectID)
	}
	if f.ActorID != "" {
		add(` AND actor_id=`, f.ActorID)
	}
	if f.Type != "" {
		add(` AND activity_type=`, string(f.Type))
	}
	q += ` ORDER BY seq`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		var typ string
		if err := rows.Scan(&r.ID, &r.SubjectID, &r.ActorID, &typ, &r.Value, &r.CreatedAt); err != nil {
			return nil, err
		}
		r.Type = Type(typ)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLStore) Remove(ctx context.Context, subject, actor string, typ Type) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM activity_log WHERE subject_id=$1 AND actor_id=$2 AND activity_type=$3`,
		subject, actor, string(typ))
	return err
}
