package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"practice-agenda/internal/domain/entries"

	"gorm.io/gorm"
)

type EntriesRepo struct {
	db *gorm.DB
}

func NewEntriesRepo(db *gorm.DB) *EntriesRepo {
	return &EntriesRepo{db: db}
}

func (r *EntriesRepo) Create(ctx context.Context, e entries.DayEntry) error {
	row := entryToRow(e)
	return r.db.WithContext(ctx).Create(&row).Error
}

func (r *EntriesRepo) Update(ctx context.Context, e entries.DayEntry) error {
	row := entryToRow(e)
	res := r.db.WithContext(ctx).Model(&entryRow{}).Where("id = ?", row.ID).Updates(map[string]any{
		"kind":              row.Kind,
		"title":             row.Title,
		"description":       row.Description,
		"mood":              row.Mood,
		"phone":             row.Phone,
		"service":           row.Service,
		"procedure":         row.Procedure,
		"consultation_type": row.ConsultationType,
		"address":           row.Address,
		"start_time":        row.StartTime,
		"end_time":          row.EndTime,
		"updated_at":        row.UpdatedAt,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return entries.ErrNotFound
	}
	return nil
}

func (r *EntriesRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entryRow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return entries.ErrNotFound
	}
	return nil
}

func (r *EntriesRepo) GetByID(ctx context.Context, id string) (entries.DayEntry, error) {
	var row entryRow
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return entries.DayEntry{}, entries.ErrNotFound
	}
	if err != nil {
		return entries.DayEntry{}, err
	}
	return row.toDomain(), nil
}

func (r *EntriesRepo) ListByDateRange(ctx context.Context, ownerUserID, from, to string) ([]entries.DayEntry, error) {
	var rows []entryRow
	err := r.db.WithContext(ctx).
		Where("owner_user_id = ? AND date >= ? AND date <= ?", ownerUserID, from, to).
		Order("date ASC, created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toEntries(rows), nil
}

func (r *EntriesRepo) ListByDate(ctx context.Context, ownerUserID, date string) ([]entries.DayEntry, error) {
	var rows []entryRow
	err := r.db.WithContext(ctx).
		Where("owner_user_id = ? AND date = ?", ownerUserID, date).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toEntries(rows), nil
}

func (r *EntriesRepo) CountByClientName(ctx context.Context, ownerUserID, clientName string) (int, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entryRow{}).
		Where("owner_user_id = ? AND client_name = ? AND client_name <> ''", ownerUserID, clientName).
		Count(&n).Error
	return int(n), err
}

func (r *EntriesRepo) LastDateByClientName(ctx context.Context, ownerUserID, clientName string) (string, error) {
	var last sql.NullString
	err := r.db.WithContext(ctx).Model(&entryRow{}).
		Select("max(date)").
		Where("owner_user_id = ? AND client_name = ? AND client_name <> ''", ownerUserID, clientName).
		Row().Scan(&last)
	if err != nil {
		return "", err
	}
	return last.String, nil
}

func (r *EntriesRepo) NextConsultation(ctx context.Context, ownerUserID, clientID, fromDate string) (entries.DayEntry, bool, error) {
	var row entryRow
	err := r.db.WithContext(ctx).
		Where("owner_user_id = ? AND client_id = ? AND date >= ?", ownerUserID, clientID, fromDate).
		Order("date ASC, start_time IS NULL, start_time ASC").
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return entries.DayEntry{}, false, nil
	}
	if err != nil {
		return entries.DayEntry{}, false, err
	}
	return row.toDomain(), true, nil
}

func toEntries(rows []entryRow) []entries.DayEntry {
	out := make([]entries.DayEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out
}
