package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"practice-agenda/internal/domain/clients"
)

type ClientsRepo struct {
	db *sql.DB
}

func NewClientsRepo(db *sql.DB) *ClientsRepo {
	return &ClientsRepo{db: db}
}

const clientColumns = `
	id, owner_user_id,
	name, phone, email, birth_date, address,
	created_at, updated_at`

func (r *ClientsRepo) Create(ctx context.Context, c clients.Client) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO clients (`+clientColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		c.ID, c.OwnerUserID,
		c.Name, c.Phone, c.Email, nullTime(c.BirthDate), c.Address,
		c.CreatedAt, c.UpdatedAt,
	)
	return err
}

func (r *ClientsRepo) Update(ctx context.Context, c clients.Client) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE clients
		SET
			name = $2,
			phone = $3,
			email = $4,
			birth_date = $5,
			address = $6,
			updated_at = $7
		WHERE id = $1
	`,
		c.ID, c.Name, c.Phone, c.Email, nullTime(c.BirthDate), c.Address, c.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return clients.ErrNotFound
	}
	return nil
}

func (r *ClientsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return clients.ErrNotFound
	}
	return nil
}

func (r *ClientsRepo) GetByID(ctx context.Context, id string) (clients.Client, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return clients.Client{}, clients.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, id)
	c, err := scanClient(row)
	if errors.Is(err, sql.ErrNoRows) {
		return clients.Client{}, clients.ErrNotFound
	}
	return c, err
}

func (r *ClientsRepo) ListByOwner(ctx context.Context, ownerUserID, query string) ([]clients.Client, error) {
	ownerUserID = strings.TrimSpace(ownerUserID)
	if ownerUserID == "" {
		return []clients.Client{}, nil
	}

	q := `SELECT ` + clientColumns + ` FROM clients WHERE owner_user_id = $1`
	args := []any{ownerUserID}
	if query = strings.TrimSpace(query); query != "" {
		q += ` AND name ILIKE $2`
		args = append(args, "%"+escapeLike(query)+"%")
	}
	q += ` ORDER BY lower(name) ASC`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]clients.Client, 0)
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanClient(s scanner) (clients.Client, error) {
	var c clients.Client
	var bd sql.NullTime
	if err := s.Scan(
		&c.ID, &c.OwnerUserID,
		&c.Name, &c.Phone, &c.Email, &bd, &c.Address,
		&c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return clients.Client{}, err
	}
	c.BirthDate = timePtr(bd)
	return c, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
