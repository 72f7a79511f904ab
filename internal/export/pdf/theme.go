package pdf

// RGB es un color 0-255 por canal.
type RGB struct {
	R, G, B int
}

// Theme es la paleta de la ficha. Se pasa por valor al renderer; nadie la
// modifica en runtime.
type Theme struct {
	Font string

	Primary     RGB // franja del encabezado, títulos de sección
	OnPrimary   RGB // texto sobre Primary
	Text        RGB
	Label       RGB
	Muted       RGB // fecha de cada sesión, pie de página
	SessionFill RGB // fondo del encabezado de cada sesión
	Divider     RGB
}

// DefaultTheme es la paleta del consultorio (tonos tierra).
func DefaultTheme() Theme {
	return Theme{
		Font:        "Helvetica",
		Primary:     RGB{0x45, 0x29, 0x25},
		OnPrimary:   RGB{255, 255, 255},
		Text:        RGB{0, 0, 0},
		Label:       RGB{100, 100, 100},
		Muted:       RGB{150, 150, 150},
		SessionFill: RGB{248, 248, 248},
		Divider:     RGB{230, 230, 230},
	}
}
