package diagnostic

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrInvalidEvent   = errors.New("invalid stress event")
	ErrDuplicateEvent = errors.New("duplicate stress event id")
)

// Catalog es una vista inmutable de los eventos conocidos, indexada por id.
type Catalog struct {
	byID    map[int]StressEvent
	ordered []StressEvent
}

// NewCatalog valida los eventos y construye el indice.
func NewCatalog(events []StressEvent) (*Catalog, error) {
	c := &Catalog{
		byID:    make(map[int]StressEvent, len(events)),
		ordered: make([]StressEvent, 0, len(events)),
	}
	for _, ev := range events {
		if err := ValidateEvent(ev); err != nil {
			return nil, err
		}
		if _, ok := c.byID[ev.ID]; ok {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateEvent, ev.ID)
		}
		c.byID[ev.ID] = ev
		c.ordered = append(c.ordered, ev)
	}
	SortEvents(c.ordered)
	return c, nil
}

// ValidateEvent comprueba los invariantes de un evento del catalogo.
func ValidateEvent(ev StressEvent) error {
	if ev.Weight <= 0 {
		return fmt.Errorf("%w: event %d weight must be positive", ErrInvalidEvent, ev.ID)
	}
	if strings.TrimSpace(ev.Label) == "" {
		return fmt.Errorf("%w: event %d label is empty", ErrInvalidEvent, ev.ID)
	}
	if !ev.Category.Valid() {
		return fmt.Errorf("%w: event %d category %q", ErrInvalidEvent, ev.ID, ev.Category)
	}
	return nil
}

// SortEvents ordena por categoria y luego por peso descendente.
func SortEvents(events []StressEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		ri, rj := events[i].Category.rank(), events[j].Category.rank()
		if ri != rj {
			return ri < rj
		}
		if events[i].Weight != events[j].Weight {
			return events[i].Weight > events[j].Weight
		}
		return events[i].ID < events[j].ID
	})
}

func (c *Catalog) Lookup(id int) (StressEvent, bool) {
	if c == nil {
		return StressEvent{}, false
	}
	ev, ok := c.byID[id]
	return ev, ok
}

// Events devuelve una copia ordenada para presentar el cuestionario.
func (c *Catalog) Events() []StressEvent {
	if c == nil {
		return nil
	}
	out := make([]StressEvent, len(c.ordered))
	copy(out, c.ordered)
	return out
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.byID)
}
