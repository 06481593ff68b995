package system

import (
	"context"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/roach88/sqlecs/internal/store"
)

const printerSQL = `
	SELECT e.id, p.x, p.y, v.x, v.y
	FROM entity e
	JOIN position p ON p.id = e.id
	JOIN velocity v ON v.id = e.id
	ORDER BY e.id`

// Printer periodically writes the position and velocity of every moving
// entity. It only reads the store.
type Printer struct {
	stmt      *store.Statement
	out       io.Writer
	interval  float64
	remaining float64
}

// NewPrinter prepares the dump query. interval is in seconds; 0 prints on
// every tick.
func NewPrinter(ctx context.Context, st *store.Store, interval float64, out io.Writer) (*Printer, error) {
	stmt, err := st.Prepare(ctx, printerSQL)
	if err != nil {
		return nil, err
	}
	return &Printer{
		stmt:      stmt,
		out:       out,
		interval:  interval,
		remaining: interval,
	}, nil
}

func (p *Printer) Name() string { return "printer" }

// SetInterval restarts the countdown with a new interval.
func (p *Printer) SetInterval(seconds float64) {
	p.interval = seconds
	p.remaining = seconds
}

// Remaining returns the seconds left before the next dump.
func (p *Printer) Remaining() float64 {
	return p.remaining
}

// Tick counts down by delta, clamped at zero, and dumps when it gets there.
func (p *Printer) Tick(ctx context.Context, delta float64) error {
	p.remaining -= delta
	if p.remaining < 0 {
		p.remaining = 0
	}
	if p.remaining > 0 {
		return nil
	}

	p.remaining = p.interval
	return p.dump(ctx)
}

func (p *Printer) dump(ctx context.Context) (err error) {
	if err := p.stmt.Reset(); err != nil {
		return err
	}
	defer func() {
		if err != nil {
			p.stmt.Reset()
		}
	}()

	for {
		state, err := p.stmt.Step(ctx)
		if err != nil {
			return err
		}
		if state == store.StateDone {
			return nil
		}

		id, err := p.stmt.ReadInt(0)
		if err != nil {
			return err
		}
		var v [4]float64
		for i := range v {
			if v[i], err = p.stmt.ReadFloat(i + 1); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(p.out, "%d { pos: (%s, %s), vel: (%s, %s) }\n",
			id, formatFloat(v[0]), formatFloat(v[1]), formatFloat(v[2]), formatFloat(v[3])); err != nil {
			return fmt.Errorf("write diagnostics: %w", err)
		}
	}
}

// formatFloat renders v with the shortest digits that round-trip. Integral
// values keep a ".0"; magnitudes of 1e16 and up or below 1e-4 use an
// exponent, as in 1e20 or 2.5e-7.
func formatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}

	if a := math.Abs(v); a != 0 && (a >= 1e16 || a < 1e-4) {
		s := strconv.FormatFloat(v, 'e', -1, 64)
		mant, exp, _ := strings.Cut(s, "e")
		n, _ := strconv.Atoi(exp)
		return mant + "e" + strconv.Itoa(n)
	}

	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func (p *Printer) Close() error {
	return p.stmt.Close()
}
