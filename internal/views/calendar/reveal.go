package calendar

import (
	"context"
	"time"
)

// DefaultRevealInterval es el escalonado entre días al aparecer el mes.
const DefaultRevealInterval = 30 * time.Millisecond

// RevealSchedule devuelve el retraso de cada día: el día i (1-based)
// aparece a i*interval. out[0] es el día 1.
func RevealSchedule(days int, interval time.Duration) []time.Duration {
	if days <= 0 {
		return nil
	}
	if interval < 0 {
		interval = 0
	}
	out := make([]time.Duration, days)
	for i := range out {
		out[i] = time.Duration(i+1) * interval
	}
	return out
}

// Revealer marca los días como visibles uno por vez. Es sólo presentación:
// los datos ya están cargados cuando arranca.
type Revealer struct {
	interval time.Duration
}

func NewRevealer(interval time.Duration) *Revealer {
	if interval <= 0 {
		interval = DefaultRevealInterval
	}
	return &Revealer{interval: interval}
}

func (r *Revealer) Interval() time.Duration { return r.interval }

// Run llama reveal(1..days) respetando el intervalo. Vuelve cuando terminó
// o cuando se cancela ctx.
func (r *Revealer) Run(ctx context.Context, days int, reveal func(day int)) {
	if days <= 0 {
		return
	}

	t := time.NewTicker(r.interval)
	defer t.Stop()

	for d := 1; d <= days; d++ {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			reveal(d)
		}
	}
}
