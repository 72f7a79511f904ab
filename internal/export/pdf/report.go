// Package pdf genera la ficha del cliente (datos + sesiones de anamnese).
package pdf

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
)

const notAvailable = "N/A"

// Report es todo lo que la ficha necesita; el renderer no consulta el store.
type Report struct {
	GeneratedAt time.Time
	Client      ClientInfo
	Sessions    []Session
}

type ClientInfo struct {
	Name      string
	Phone     string
	Email     string
	BirthDate string // DD/MM/YYYY o vacío
	Address   string
	Visits    int
	LastVisit string // DD/MM/YYYY o vacío
}

// Session es una anamnese en la ficha.
type Session struct {
	Title  string
	Date   string // DD/MM/YYYY
	Fields []Field
}

type Field struct {
	Label string
	Value string
}

type Renderer struct {
	theme Theme
}

func NewRenderer(theme Theme) *Renderer {
	if theme.Font == "" {
		theme.Font = DefaultTheme().Font
	}
	return &Renderer{theme: theme}
}

// Render escribe la ficha con la paleta por defecto.
func Render(w io.Writer, r Report) error {
	return NewRenderer(DefaultTheme()).Render(w, r)
}

func (rd *Renderer) Render(w io.Writer, r Report) error {
	doc, err := rd.document(r)
	if err != nil {
		return err
	}
	return doc.Output(w)
}

const (
	margin       = 20.0
	headerHeight = 35.0
	footerSpace  = 20.0
)

func (rd *Renderer) document(r Report) (*fpdf.Fpdf, error) {
	if strings.TrimSpace(r.Client.Name) == "" {
		return nil, errors.New("pdf: client name is required")
	}

	doc := fpdf.New("P", "mm", "A4", "")
	tr := doc.UnicodeTranslatorFromDescriptor("")
	th := rd.theme

	doc.SetMargins(margin, margin, margin)
	doc.SetAutoPageBreak(true, footerSpace)
	doc.SetTitle(tr("Ficha do Cliente - "+r.Client.Name), false)
	doc.SetCreator("practice-agenda", false)
	if !r.GeneratedAt.IsZero() {
		doc.SetCreationDate(r.GeneratedAt)
	}

	doc.AliasNbPages("{nb}")
	doc.SetFooterFunc(func() {
		doc.SetY(-15)
		doc.SetFont(th.Font, "I", 8)
		setText(doc, th.Muted)
		doc.CellFormat(0, 10, tr(fmt.Sprintf("Página %d de {nb} - %s", doc.PageNo(), r.Client.Name)), "", 0, "C", false, 0, "")
	})

	doc.AddPage()
	pageW, _ := doc.GetPageSize()
	contentW := pageW - 2*margin

	// Encabezado
	setFill(doc, th.Primary)
	doc.Rect(0, 0, pageW, headerHeight, "F")
	setText(doc, th.OnPrimary)
	doc.SetFont(th.Font, "B", 22)
	doc.SetXY(margin, 15)
	doc.CellFormat(contentW/2, 10, tr("Ficha do Cliente"), "", 0, "L", false, 0, "")
	doc.SetFont(th.Font, "", 9)
	generated := r.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}
	doc.CellFormat(contentW/2, 10, tr("Gerado em: "+generated.Format("02/01/2006")), "", 1, "R", false, 0, "")

	// Datos del cliente
	doc.SetY(headerHeight + 12)
	doc.SetFont(th.Font, "B", 12)
	setText(doc, th.Primary)
	doc.CellFormat(contentW, 8, tr("Informações do Cliente"), "", 1, "L", false, 0, "")
	doc.Ln(2)

	for _, f := range clientFields(r.Client) {
		doc.SetFont(th.Font, "B", 9)
		setText(doc, th.Label)
		doc.CellFormat(43, 6, tr(strings.ToUpper(f.Label)), "", 0, "L", false, 0, "")
		doc.SetFont(th.Font, "", 11)
		setText(doc, th.Text)
		doc.MultiCell(contentW-43, 6, tr(f.Value), "", "L", false)
		doc.Ln(2)
	}

	y := doc.GetY() + 2
	setDraw(doc, th.Divider)
	doc.Line(margin, y, pageW-margin, y)
	doc.SetY(y + 10)

	// Sesiones
	if len(r.Sessions) > 0 {
		doc.SetFont(th.Font, "B", 14)
		setText(doc, th.Primary)
		doc.CellFormat(contentW, 8, tr("Acompanhamento de sessões"), "", 1, "L", false, 0, "")
		doc.Ln(6)

		_, pageH := doc.GetPageSize()
		for _, s := range r.Sessions {
			if doc.GetY() > pageH-50 {
				doc.AddPage()
			}
			rd.session(doc, tr, s, contentW)
		}
	}

	if err := doc.Error(); err != nil {
		return nil, fmt.Errorf("pdf: %w", err)
	}
	return doc, nil
}

func (rd *Renderer) session(doc *fpdf.Fpdf, tr func(string) string, s Session, contentW float64) {
	th := rd.theme
	y := doc.GetY()

	setFill(doc, th.SessionFill)
	doc.Rect(margin, y, contentW, 12, "F")
	setFill(doc, th.Primary)
	doc.Rect(margin, y, 2, 12, "F")

	doc.SetXY(margin+5, y+2)
	doc.SetFont(th.Font, "B", 11)
	setText(doc, RGB{50, 50, 50})
	doc.CellFormat(contentW-40, 8, tr(s.Title), "", 0, "L", false, 0, "")
	doc.SetFont(th.Font, "", 9)
	setText(doc, th.Label)
	doc.CellFormat(30, 8, tr(s.Date), "", 1, "R", false, 0, "")
	doc.SetY(y + 16)

	for _, f := range s.Fields {
		if strings.TrimSpace(f.Value) == "" {
			continue
		}
		doc.SetX(margin + 5)
		doc.SetFont(th.Font, "B", 11)
		setText(doc, th.Text)
		doc.CellFormat(contentW-5, 6, tr(f.Label+":"), "", 1, "L", false, 0, "")

		doc.SetX(margin + 10)
		doc.SetFont(th.Font, "", 9)
		doc.MultiCell(contentW-10, 4, tr(f.Value), "", "L", false)
		doc.Ln(3)
	}
	doc.Ln(4)
}

func clientFields(c ClientInfo) []Field {
	return []Field{
		{Label: "Nome:", Value: c.Name},
		{Label: "Telefone:", Value: orNA(c.Phone)},
		{Label: "Email:", Value: orNA(c.Email)},
		{Label: "Data de Nascimento:", Value: orNA(c.BirthDate)},
		{Label: "Endereço:", Value: orNA(c.Address)},
		{Label: "Total de Visitas:", Value: strconv.Itoa(c.Visits)},
		{Label: "Última Visita:", Value: orNA(c.LastVisit)},
	}
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return notAvailable
	}
	return s
}

func setText(doc *fpdf.Fpdf, c RGB) { doc.SetTextColor(c.R, c.G, c.B) }
func setFill(doc *fpdf.Fpdf, c RGB) { doc.SetFillColor(c.R, c.G, c.B) }
func setDraw(doc *fpdf.Fpdf, c RGB) { doc.SetDrawColor(c.R, c.G, c.B) }
