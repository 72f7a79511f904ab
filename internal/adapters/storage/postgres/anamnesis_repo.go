package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"practice-agenda/internal/domain/anamnesis"
)

type AnamnesisRepo struct {
	db *sql.DB
}

func NewAnamnesisRepo(db *sql.DB) *AnamnesisRepo {
	return &AnamnesisRepo{db: db}
}

const anamnesisColumns = `
	id, owner_user_id, client_id,
	title, description,
	chief_complaint, medical_history, current_medical_treatment,
	previous_procedures, medications, recent_symptoms,
	pain_location, additional_observations,
	created_at, updated_at`

func (r *AnamnesisRepo) Create(ctx context.Context, a anamnesis.Anamnesis) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO anamnesis (`+anamnesisColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
	`,
		a.ID, a.OwnerUserID, a.ClientID,
		a.Title, a.Description,
		a.ChiefComplaint, a.MedicalHistory, a.CurrentMedicalTreatment,
		a.PreviousProcedures, a.Medications, a.RecentSymptoms,
		a.PainLocation, a.AdditionalObservations,
		a.CreatedAt, a.UpdatedAt,
	)
	return err
}

func (r *AnamnesisRepo) GetByID(ctx context.Context, id string) (anamnesis.Anamnesis, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return anamnesis.Anamnesis{}, anamnesis.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `SELECT `+anamnesisColumns+` FROM anamnesis WHERE id = $1`, id)
	a, err := scanAnamnesis(row)
	if errors.Is(err, sql.ErrNoRows) {
		return anamnesis.Anamnesis{}, anamnesis.ErrNotFound
	}
	return a, err
}

func (r *AnamnesisRepo) ListByClient(ctx context.Context, ownerUserID, clientID string) ([]anamnesis.Anamnesis, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+anamnesisColumns+`
		FROM anamnesis
		WHERE owner_user_id = $1 AND client_id = $2
		ORDER BY created_at DESC
	`, ownerUserID, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]anamnesis.Anamnesis, 0)
	for rows.Next() {
		a, err := scanAnamnesis(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *AnamnesisRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM anamnesis WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return anamnesis.ErrNotFound
	}
	return nil
}

func (r *AnamnesisRepo) DeleteByClient(ctx context.Context, ownerUserID, clientID string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM anamnesis WHERE owner_user_id = $1 AND client_id = $2
	`, ownerUserID, clientID)
	return err
}

func scanAnamnesis(s scanner) (anamnesis.Anamnesis, error) {
	var a anamnesis.Anamnesis
	err := s.Scan(
		&a.ID, &a.OwnerUserID, &a.ClientID,
		&a.Title, &a.Description,
		&a.ChiefComplaint, &a.MedicalHistory, &a.CurrentMedicalTreatment,
		&a.PreviousProcedures, &a.Medications, &a.RecentSymptoms,
		&a.PainLocation, &a.AdditionalObservations,
		&a.CreatedAt, &a.UpdatedAt,
	)
	return a, err
}
