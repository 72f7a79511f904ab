package sqlite

import (
	"context"
	"errors"
	"strings"

	"practice-agenda/internal/domain/clients"

	"gorm.io/gorm"
)

type ClientsRepo struct {
	db *gorm.DB
}

func NewClientsRepo(db *gorm.DB) *ClientsRepo {
	return &ClientsRepo{db: db}
}

func (r *ClientsRepo) Create(ctx context.Context, c clients.Client) error {
	row := clientToRow(c)
	return r.db.WithContext(ctx).Create(&row).Error
}

func (r *ClientsRepo) Update(ctx context.Context, c clients.Client) error {
	res := r.db.WithContext(ctx).Model(&clientRow{}).Where("id = ?", c.ID).Updates(map[string]any{
		"name":       c.Name,
		"phone":      c.Phone,
		"email":      c.Email,
		"birth_date": c.BirthDate,
		"address":    c.Address,
		"updated_at": c.UpdatedAt,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return clients.ErrNotFound
	}
	return nil
}

func (r *ClientsRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&clientRow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return clients.ErrNotFound
	}
	return nil
}

func (r *ClientsRepo) GetByID(ctx context.Context, id string) (clients.Client, error) {
	var row clientRow
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return clients.Client{}, clients.ErrNotFound
	}
	if err != nil {
		return clients.Client{}, err
	}
	return row.toDomain(), nil
}

func (r *ClientsRepo) ListByOwner(ctx context.Context, ownerUserID, query string) ([]clients.Client, error) {
	q := r.db.WithContext(ctx).Where("owner_user_id = ?", ownerUserID)
	if query = strings.TrimSpace(query); query != "" {
		q = q.Where(`lower(name) LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(query))+"%")
	}

	var rows []clientRow
	if err := q.Order("lower(name) ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]clients.Client, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
