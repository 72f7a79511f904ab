package sqlite

import (
	"context"
	"errors"

	"practice-agenda/internal/domain/anamnesis"

	"gorm.io/gorm"
)

type AnamnesisRepo struct {
	db *gorm.DB
}

func NewAnamnesisRepo(db *gorm.DB) *AnamnesisRepo {
	return &AnamnesisRepo{db: db}
}

func (r *AnamnesisRepo) Create(ctx context.Context, a anamnesis.Anamnesis) error {
	row := anamnesisToRow(a)
	return r.db.WithContext(ctx).Create(&row).Error
}

func (r *AnamnesisRepo) GetByID(ctx context.Context, id string) (anamnesis.Anamnesis, error) {
	var row anamnesisRow
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return anamnesis.Anamnesis{}, anamnesis.ErrNotFound
	}
	if err != nil {
		return anamnesis.Anamnesis{}, err
	}
	return row.toDomain(), nil
}

func (r *AnamnesisRepo) ListByClient(ctx context.Context, ownerUserID, clientID string) ([]anamnesis.Anamnesis, error) {
	var rows []anamnesisRow
	err := r.db.WithContext(ctx).
		Where("owner_user_id = ? AND client_id = ?", ownerUserID, clientID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]anamnesis.Anamnesis, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *AnamnesisRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&anamnesisRow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return anamnesis.ErrNotFound
	}
	return nil
}

func (r *AnamnesisRepo) DeleteByClient(ctx context.Context, ownerUserID, clientID string) error {
	return r.db.WithContext(ctx).
		Where("owner_user_id = ? AND client_id = ?", ownerUserID, clientID).
		Delete(&anamnesisRow{}).Error
}
