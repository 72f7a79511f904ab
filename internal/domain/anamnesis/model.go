package anamnesis

import "time"

// Anamnesis es la ficha de anamnese de un cliente.
// No tiene flujo de edición: se crea y se borra.
type Anamnesis struct {
	ID          string
	OwnerUserID string
	ClientID    string

	Title       string
	Description string

	ChiefComplaint          string
	MedicalHistory          string
	CurrentMedicalTreatment string
	PreviousProcedures      string
	Medications             string
	RecentSymptoms          string
	PainLocation            string
	AdditionalObservations  string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Section es un campo de texto libre con su etiqueta.
type Section struct {
	Label string
	Value string
}

// Sections devuelve los campos libres en el orden de la ficha impresa,
// omitiendo los vacíos.
func (a Anamnesis) Sections() []Section {
	all := []Section{
		{Label: "Descrição", Value: a.Description},
		{Label: "Queixa Principal", Value: a.ChiefComplaint},
		{Label: "Histórico de Doenças e Lesões", Value: a.MedicalHistory},
		{Label: "Tratamento Médico Atual", Value: a.CurrentMedicalTreatment},
		{Label: "Procedimentos Anteriores", Value: a.PreviousProcedures},
		{Label: "Medicamentos", Value: a.Medications},
		{Label: "Sintomas Recentes", Value: a.RecentSymptoms},
		{Label: "Região com Dor/Desconforto", Value: a.PainLocation},
		{Label: "Observações Adicionais", Value: a.AdditionalObservations},
	}

	out := make([]Section, 0, len(all))
	for _, s := range all {
		if s.Value != "" {
			out = append(out, s)
		}
	}
	return out
}
