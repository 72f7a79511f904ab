package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"practice-agenda/internal/domain/entries"
)

type EntriesRepo struct {
	db *sql.DB
}

func NewEntriesRepo(db *sql.DB) *EntriesRepo {
	return &EntriesRepo{db: db}
}

// date es DATE; se lee con to_char para no depender de la zona de la sesión.
const entryColumns = `
	id, owner_user_id, to_char(date, 'YYYY-MM-DD'), kind,
	title, description, mood, phone, service,
	client_id, client_name, procedure, consultation_type, address,
	start_time, end_time,
	created_at, updated_at`

func (r *EntriesRepo) Create(ctx context.Context, e entries.DayEntry) error {
	f := e.Fields()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO day_entries (
			id, owner_user_id, date, kind,
			title, description, mood, phone, service,
			client_id, client_name, procedure, consultation_type, address,
			start_time, end_time,
			created_at, updated_at
		) VALUES ($1,$2,$3::date,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
	`,
		f.ID, f.OwnerUserID, f.Date, f.Kind,
		f.Title, f.Description, f.Mood, f.Phone, f.Service,
		nullString(f.ClientID), f.ClientName, f.Procedure, f.ConsultationType, f.Address,
		nullTime(f.StartTime), nullTime(f.EndTime),
		f.CreatedAt, f.UpdatedAt,
	)
	return err
}

func (r *EntriesRepo) Update(ctx context.Context, e entries.DayEntry) error {
	f := e.Fields()
	res, err := r.db.ExecContext(ctx, `
		UPDATE day_entries
		SET
			kind = $2,
			title = $3,
			description = $4,
			mood = $5,
			phone = $6,
			service = $7,
			procedure = $8,
			consultation_type = $9,
			address = $10,
			start_time = $11,
			end_time = $12,
			updated_at = $13
		WHERE id = $1
	`,
		f.ID, f.Kind,
		f.Title, f.Description, f.Mood, f.Phone, f.Service,
		f.Procedure, f.ConsultationType, f.Address,
		nullTime(f.StartTime), nullTime(f.EndTime),
		f.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return entries.ErrNotFound
	}
	return nil
}

func (r *EntriesRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM day_entries WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return entries.ErrNotFound
	}
	return nil
}

func (r *EntriesRepo) GetByID(ctx context.Context, id string) (entries.DayEntry, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entries.DayEntry{}, entries.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM day_entries WHERE id = $1`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return entries.DayEntry{}, entries.ErrNotFound
	}
	return e, err
}

func (r *EntriesRepo) ListByDateRange(ctx context.Context, ownerUserID, from, to string) ([]entries.DayEntry, error) {
	return r.list(ctx, `
		SELECT `+entryColumns+`
		FROM day_entries
		WHERE owner_user_id = $1 AND date >= $2::date AND date <= $3::date
		ORDER BY date ASC, created_at ASC
	`, ownerUserID, from, to)
}

func (r *EntriesRepo) ListByDate(ctx context.Context, ownerUserID, date string) ([]entries.DayEntry, error) {
	return r.list(ctx, `
		SELECT `+entryColumns+`
		FROM day_entries
		WHERE owner_user_id = $1 AND date = $2::date
		ORDER BY created_at DESC
	`, ownerUserID, date)
}

func (r *EntriesRepo) CountByClientName(ctx context.Context, ownerUserID, clientName string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT count(*) FROM day_entries
		WHERE owner_user_id = $1 AND client_name = $2 AND client_name <> ''
	`, ownerUserID, strings.TrimSpace(clientName)).Scan(&n)
	return n, err
}

func (r *EntriesRepo) LastDateByClientName(ctx context.Context, ownerUserID, clientName string) (string, error) {
	var last sql.NullString
	err := r.db.QueryRowContext(ctx, `
		SELECT to_char(max(date), 'YYYY-MM-DD') FROM day_entries
		WHERE owner_user_id = $1 AND client_name = $2 AND client_name <> ''
	`, ownerUserID, strings.TrimSpace(clientName)).Scan(&last)
	if err != nil {
		return "", err
	}
	return last.String, nil
}

func (r *EntriesRepo) NextConsultation(ctx context.Context, ownerUserID, clientID, fromDate string) (entries.DayEntry, bool, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+entryColumns+`
		FROM day_entries
		WHERE owner_user_id = $1 AND client_id = $2 AND date >= $3::date
		ORDER BY date ASC, start_time ASC NULLS LAST
		LIMIT 1
	`, ownerUserID, clientID, fromDate)

	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return entries.DayEntry{}, false, nil
	}
	if err != nil {
		return entries.DayEntry{}, false, err
	}
	return e, true, nil
}

func (r *EntriesRepo) list(ctx context.Context, query string, args ...any) ([]entries.DayEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]entries.DayEntry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (entries.DayEntry, error) {
	var (
		f        entries.Fields
		kind     sql.NullString
		clientID sql.NullString
		start    sql.NullTime
		end      sql.NullTime
	)
	if err := s.Scan(
		&f.ID, &f.OwnerUserID, &f.Date, &kind,
		&f.Title, &f.Description, &f.Mood, &f.Phone, &f.Service,
		&clientID, &f.ClientName, &f.Procedure, &f.ConsultationType, &f.Address,
		&start, &end,
		&f.CreatedAt, &f.UpdatedAt,
	); err != nil {
		return entries.DayEntry{}, err
	}
	f.Kind = kind.String
	f.ClientID = clientID.String
	f.StartTime = timePtr(start)
	f.EndTime = timePtr(end)
	return entries.FromFields(f), nil
}
