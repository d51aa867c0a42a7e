package diagnostic

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidSubmission indica que no queda ningun evento valido para puntuar.
	ErrInvalidSubmission = errors.New("select at least one event")
	// ErrUnknownEvent solo se devuelve en modo estricto.
	ErrUnknownEvent = errors.New("unknown stress event")
	// ErrCatalogUnavailable lo usan los colaboradores que cargan el catalogo.
	ErrCatalogUnavailable = errors.New("stress event catalog unavailable")
)

// Result es el resultado inmutable de una evaluacion.
type Result struct {
	TotalScore     int           `json:"total_score"`
	RiskTier       RiskTier      `json:"risk_tier"`
	RiskLabel      string        `json:"risk_label"`
	Interpretation string        `json:"interpretation"`
	SelectedEvents []StressEvent `json:"selected_events"`
	CreatedAt      time.Time     `json:"created_at"`
}

// EventIDs devuelve los ids resueltos en orden de seleccion.
func (r Result) EventIDs() []int {
	ids := make([]int, len(r.SelectedEvents))
	for i, ev := range r.SelectedEvents {
		ids[i] = ev.ID
	}
	return ids
}

// Engine puntua selecciones contra un catalogo. Es seguro para uso concurrente.
type Engine struct {
	strict bool
	now    func() time.Time
}

type Option func(*Engine)

// WithStrictIDs rechaza la seleccion completa si contiene ids desconocidos.
func WithStrictIDs(strict bool) Option {
	return func(e *Engine) {
		e.strict = strict
	}
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		now: func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Strict() bool {
	return e.strict
}

// Score resuelve los ids, suma los pesos y asigna la banda de riesgo.
// Los ids repetidos se cuentan una sola vez.
func (e *Engine) Score(selectedIDs []int, catalog *Catalog) (Result, error) {
	if len(selectedIDs) == 0 {
		return Result{}, ErrInvalidSubmission
	}

	seen := make(map[int]struct{}, len(selectedIDs))
	resolved := make([]StressEvent, 0, len(selectedIDs))
	total := 0
	for _, id := range selectedIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		ev, ok := catalog.Lookup(id)
		if !ok {
			if e.strict {
				return Result{}, fmt.Errorf("%w: %d", ErrUnknownEvent, id)
			}
			continue
		}
		resolved = append(resolved, ev)
		total += ev.Weight
	}
	if len(resolved) == 0 {
		return Result{}, ErrInvalidSubmission
	}

	tier := TierFor(total)
	return Result{
		TotalScore:     total,
		RiskTier:       tier,
		RiskLabel:      tier.Label(),
		Interpretation: tier.Interpretation(),
		SelectedEvents: resolved,
		CreatedAt:      e.now(),
	}, nil
}

var defaultEngine = NewEngine()

// Score usa el motor por defecto (ids desconocidos ignorados).
func Score(selectedIDs []int, catalog *Catalog) (Result, error) {
	return defaultEngine.Score(selectedIDs, catalog)
}
