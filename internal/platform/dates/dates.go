// Package dates agrupa los helpers de calendario usados por el store y las vistas.
//
// Todas las claves de fecha son strings "YYYY-MM-DD" construidas a partir de
// año/mes/día explícitos, nunca parseando un timestamp, para que un cambio de
// zona horaria no desplace un día en los bordes de mes.
package dates

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Layout es el formato canónico de las claves de fecha.
const Layout = "2006-01-02"

var ErrInvalidDate = errors.New("date must be YYYY-MM-DD")

// DaysInMonth devuelve la cantidad de días del mes (día 0 del mes siguiente).
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// StartingWeekday devuelve el día de semana del día 1 (0 = domingo).
func StartingWeekday(year int, month time.Month) int {
	return int(time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Weekday())
}

// ISODate arma la clave "YYYY-MM-DD" con ceros a la izquierda.
func ISODate(year int, month time.Month, day int) string {
	return fmt.Sprintf("%04d-%02d-%02d", year, int(month), day)
}

// MonthBounds devuelve el primer y el último día del mes, ambos inclusivos.
func MonthBounds(year int, month time.Month) (string, string) {
	return ISODate(year, month, 1), ISODate(year, month, DaysInMonth(year, month))
}

// AddMonths mueve (year, month) delta meses, ajustando el año en los bordes.
func AddMonths(year int, month time.Month, delta int) (int, time.Month) {
	t := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, delta, 0)
	return t.Year(), t.Month()
}

// Parse valida una clave "YYYY-MM-DD" y la devuelve como medianoche UTC.
func Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) != len(Layout) {
		return time.Time{}, ErrInvalidDate
	}
	t, err := time.Parse(Layout, s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// Valid indica si s es una clave de fecha válida.
func Valid(s string) bool {
	_, err := Parse(s)
	return err == nil
}

// ParseMonth acepta "YYYY-MM".
func ParseMonth(s string) (int, time.Month, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return 0, 0, errors.New("month must be YYYY-MM")
	}
	return t.Year(), t.Month(), nil
}

// FromTime devuelve la clave del día de t en loc.
func FromTime(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return ISODate(y, m, d)
}

// Today devuelve la clave de hoy en la zona horaria del consultorio.
func Today(loc *time.Location) string {
	return FromTime(time.Now(), loc)
}

// Combine une una clave de fecha con una hora "HH:MM" en loc.
func Combine(date, clock string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	d, err := Parse(date)
	if err != nil {
		return time.Time{}, err
	}
	c, err := time.Parse("15:04", strings.TrimSpace(clock))
	if err != nil {
		return time.Time{}, errors.New("time must be HH:MM")
	}
	return time.Date(d.Year(), d.Month(), d.Day(), c.Hour(), c.Minute(), 0, 0, loc), nil
}

// Display convierte una clave "YYYY-MM-DD" a "DD/MM/YYYY".
// Devuelve s sin cambios si no es una clave válida.
func Display(s string) string {
	t, err := Parse(s)
	if err != nil {
		return s
	}
	return t.Format("02/01/2006")
}
