package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
)

//go:embed schema.sql
var schema string

const uniqueViolation = "23505"

// Postgres is the lib/pq backed Store.
type Postgres struct {
	db  *sql.DB
	now func() time.Time
}

// NewPostgres opens a pool and verifies the connection.
func NewPostgres(ctx context.Context, dsn string, maxOpen, maxIdle int) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if maxOpen > 0 {
		db.SetMaxOpenConns(maxOpen)
	}
	if maxIdle > 0 {
		db.SetMaxIdleConns(maxIdle)
	}
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &Postgres{db: db, now: time.Now}, nil
}

// Migrate creates the tables if they do not exist.
func (s *Postgres) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (s *Postgres) Close() error {
	return s.db.Close()
}

func (s *Postgres) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Postgres) CreateOwner(ctx context.Context, o *Owner) error {
	assignID(&o.ID)
	o.Email = strings.ToLower(strings.TrimSpace(o.Email))
	if o.CreatedAt.IsZero() {
		o.CreatedAt = s.now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO owners (id, username, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, o.ID, o.Username, o.Email, o.PasswordHash, o.CreatedAt)
	if isUniqueViolation(err) {
		return ErrConflict
	}
	return err
}

func (s *Postgres) GetOwner(ctx context.Context, id string) (*Owner, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	return s.scanOwner(s.db.QueryRowContext(ctx, `
		SELECT id, username, email, password_hash, created_at FROM owners WHERE id = $1
	`, id))
}

func (s *Postgres) GetOwnerByEmail(ctx context.Context, email string) (*Owner, error) {
	return s.scanOwner(s.db.QueryRowContext(ctx, `
		SELECT id, username, email, password_hash, created_at FROM owners WHERE email = $1
	`, strings.ToLower(strings.TrimSpace(email))))
}

func (s *Postgres) scanOwner(row *sql.Row) (*Owner, error) {
	var o Owner
	err := row.Scan(&o.ID, &o.Username, &o.Email, &o.PasswordHash, &o.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// DeleteOwner relies on ON DELETE CASCADE for templates and distributions.
func (s *Postgres) DeleteOwner(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrNotFound
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM owners WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Postgres) CreateTemplate(ctx context.Context, t *Template) error {
	assignID(&t.ID)
	if t.CreatedAt.IsZero() {
		t.CreatedAt = s.now().UTC()
	}
	attendees := t.Attendees
	if attendees == nil {
		attendees = []string{}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO templates (
			id, owner_id, title, content, source, meeting_topic, speaker_name,
			meeting_date, meeting_time, duration, meeting_link, location, attendees,
			additional_notes, agenda, meeting_type, priority, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`, t.ID, t.OwnerID, t.Title, t.Content, t.Source, t.MeetingTopic, t.SpeakerName,
		t.MeetingDate, t.MeetingTime, t.Duration, t.MeetingLink, t.Location, pq.Array(attendees),
		t.AdditionalNotes, t.Agenda, t.MeetingType, t.Priority, t.CreatedAt)
	return err
}

const templateColumns = `
	id, owner_id, title, content, source, meeting_topic, speaker_name,
	meeting_date, meeting_time, duration, meeting_link, location, attendees,
	additional_notes, agenda, meeting_type, priority, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanTemplate(row scanner) (*Template, error) {
	var t Template
	err := row.Scan(&t.ID, &t.OwnerID, &t.Title, &t.Content, &t.Source, &t.MeetingTopic, &t.SpeakerName,
		&t.MeetingDate, &t.MeetingTime, &t.Duration, &t.MeetingLink, &t.Location, pq.Array(&t.Attendees),
		&t.AdditionalNotes, &t.Agenda, &t.MeetingType, &t.Priority, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Postgres) GetTemplate(ctx context.Context, ownerID, id string) (*Template, error) {
	if !validID(id) || !validID(ownerID) {
		return nil, ErrNotFound
	}
	t, err := scanTemplate(s.db.QueryRowContext(ctx,
		`SELECT `+templateColumns+` FROM templates WHERE id = $1 AND owner_id = $2`, id, ownerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return t, err
}

func (s *Postgres) ListTemplates(ctx context.Context, ownerID string) ([]Template, error) {
	if !validID(ownerID) {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+templateColumns+` FROM templates WHERE owner_id = $1 ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

// CreateDistribution only inserts when the template belongs to the same owner.
func (s *Postgres) CreateDistribution(ctx context.Context, d *Distribution) error {
	if !validID(d.TemplateID) || !validID(d.OwnerID) {
		return ErrNotFound
	}
	assignID(&d.ID)
	if d.CreatedAt.IsZero() {
		d.CreatedAt = s.now().UTC()
	}
	recipients, err := json.Marshal(d.Recipients)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO distributions (id, owner_id, template_id, method, recipients, status, sent_at, created_at)
		SELECT $1::uuid, $2::uuid, $3::uuid, $4::text, $5::jsonb, $6::text, $7::timestamptz, $8::timestamptz
		WHERE EXISTS (SELECT 1 FROM templates WHERE id = $3 AND owner_id = $2)
	`, d.ID, d.OwnerID, d.TemplateID, string(d.Method), string(recipients), string(d.Status), d.SentAt, d.CreatedAt)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Postgres) ListDistributions(ctx context.Context, ownerID string, limit int) ([]Distribution, error) {
	if !validID(ownerID) {
		return nil, nil
	}
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, template_id, method, recipients, status, sent_at, created_at
		FROM distributions WHERE owner_id = $1
		ORDER BY created_at DESC LIMIT $2
	`, ownerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Distribution
	for rows.Next() {
		var (
			d          Distribution
			method     string
			status     string
			recipients []byte
			sentAt     sql.NullTime
		)
		if err := rows.Scan(&d.ID, &d.OwnerID, &d.TemplateID, &method, &recipients, &status, &sentAt, &d.CreatedAt); err != nil {
			return nil, err
		}
		d.Method = Method(method)
		d.Status = Status(status)
		if sentAt.Valid {
			t := sentAt.Time
			d.SentAt = &t
		}
		if err := json.Unmarshal(recipients, &d.Recipients); err != nil {
			return nil, fmt.Errorf("decode recipients of %s: %w", d.ID, err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Postgres) RecentActivity(ctx context.Context, ownerID string, limit int) ([]Activity, error) {
	if !validID(ownerID) {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT d.id, COALESCE(t.title, ''), d.method, d.status, COALESCE(d.sent_at, d.created_at)
		FROM distributions d
		LEFT JOIN templates t ON t.id = d.template_id
		WHERE d.owner_id = $1
		ORDER BY d.created_at DESC LIMIT $2
	`, ownerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Activity
	for rows.Next() {
		var (
			a      Activity
			method string
			status string
		)
		if err := rows.Scan(&a.DistributionID, &a.TemplateTitle, &method, &status, &a.Timestamp); err != nil {
			return nil, err
		}
		a.Method = Method(method)
		a.Status = Status(status)
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Postgres) Stats(ctx context.Context, ownerID string) (Stats, error) {
	var st Stats
	if !validID(ownerID) {
		return st, nil
	}
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM templates WHERE owner_id = $1),
			(SELECT COUNT(*) FROM distributions WHERE owner_id = $1 AND status = 'sent'),
			(SELECT COALESCE(SUM(jsonb_array_length(recipients)), 0) FROM distributions WHERE owner_id = $1),
			(SELECT COUNT(*) FROM distributions WHERE owner_id = $1 AND method = 'calendar'),
			(SELECT COUNT(*) FROM distributions WHERE owner_id = $1)
	`, ownerID).Scan(&st.TemplatesGenerated, &st.InvitationsSent, &st.TotalRecipients, &st.CalendarEvents, &st.TotalDistributions)
	return st, err
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
