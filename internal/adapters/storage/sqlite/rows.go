package sqlite

import (
	"time"

	"practice-agenda/internal/domain/anamnesis"
	"practice-agenda/internal/domain/clients"
	"practice-agenda/internal/domain/entries"
)

type clientRow struct {
	ID          string `gorm:"primaryKey"`
	OwnerUserID string `gorm:"not null;index"`
	Name        string `gorm:"not null"`
	Phone       string
	Email       string
	BirthDate   *time.Time
	Address     string
	CreatedAt   time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime:false"`
}

func (clientRow) TableName() string { return "clients" }

func clientToRow(c clients.Client) clientRow {
	return clientRow{
		ID:          c.ID,
		OwnerUserID: c.OwnerUserID,
		Name:        c.Name,
		Phone:       c.Phone,
		Email:       c.Email,
		BirthDate:   c.BirthDate,
		Address:     c.Address,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func (r clientRow) toDomain() clients.Client {
	return clients.Client{
		ID:          r.ID,
		OwnerUserID: r.OwnerUserID,
		Name:        r.Name,
		Phone:       r.Phone,
		Email:       r.Email,
		BirthDate:   r.BirthDate,
		Address:     r.Address,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// entryRow guarda date como texto YYYY-MM-DD; compara bien como string.
type entryRow struct {
	ID          string  `gorm:"primaryKey"`
	OwnerUserID string  `gorm:"not null;index:idx_entries_owner_date,priority:1"`
	Date        string  `gorm:"not null;index:idx_entries_owner_date,priority:2"`
	Kind        *string // nil en filas legadas

	Title       string
	Description string
	Mood        string
	Phone       string
	Service     string

	ClientID         *string `gorm:"index"`
	ClientName       string  `gorm:"index"`
	Procedure        string
	ConsultationType string
	Address          string
	StartTime        *time.Time
	EndTime          *time.Time

	CreatedAt time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:false"`
}

func (entryRow) TableName() string { return "day_entries" }

func entryToRow(e entries.DayEntry) entryRow {
	f := e.Fields()
	return entryRow{
		ID:               f.ID,
		OwnerUserID:      f.OwnerUserID,
		Date:             f.Date,
		Kind:             strPtr(f.Kind),
		Title:            f.Title,
		Description:      f.Description,
		Mood:             f.Mood,
		Phone:            f.Phone,
		Service:          f.Service,
		ClientID:         strPtr(f.ClientID),
		ClientName:       f.ClientName,
		Procedure:        f.Procedure,
		ConsultationType: f.ConsultationType,
		Address:          f.Address,
		StartTime:        f.StartTime,
		EndTime:          f.EndTime,
		CreatedAt:        f.CreatedAt,
		UpdatedAt:        f.UpdatedAt,
	}
}

func (r entryRow) toDomain() entries.DayEntry {
	return entries.FromFields(entries.Fields{
		ID:               r.ID,
		OwnerUserID:      r.OwnerUserID,
		Date:             r.Date,
		Kind:             deref(r.Kind),
		Title:            r.Title,
		Description:      r.Description,
		Mood:             r.Mood,
		Phone:            r.Phone,
		Service:          r.Service,
		ClientID:         deref(r.ClientID),
		ClientName:       r.ClientName,
		Procedure:        r.Procedure,
		ConsultationType: r.ConsultationType,
		Address:          r.Address,
		StartTime:        r.StartTime,
		EndTime:          r.EndTime,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	})
}

type anamnesisRow struct {
	ID          string `gorm:"primaryKey"`
	OwnerUserID string `gorm:"not null;index:idx_anamnesis_client,priority:1"`
	ClientID    string `gorm:"not null;index:idx_anamnesis_client,priority:2"`

	Title       string `gorm:"not null"`
	Description string

	ChiefComplaint          string
	MedicalHistory          string
	CurrentMedicalTreatment string
	PreviousProcedures      string
	Medications             string
	RecentSymptoms          string
	PainLocation            string
	AdditionalObservations  string

	CreatedAt time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:false"`
}

func (anamnesisRow) TableName() string { return "anamnesis" }

func anamnesisToRow(a anamnesis.Anamnesis) anamnesisRow {
	return anamnesisRow(a)
}

func (r anamnesisRow) toDomain() anamnesis.Anamnesis {
	return anamnesis.Anamnesis(r)
}
