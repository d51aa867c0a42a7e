package diagnostic

// Category agrupa eventos del cuestionario. Solo afecta el orden de presentacion.
type Category string

const (
	CategoryFamily   Category = "famille"
	CategoryWork     Category = "travail"
	CategoryHealth   Category = "sante"
	CategoryFinance  Category = "finances"
	CategoryPersonal Category = "vie_personnelle"
	CategorySocial   Category = "vie_sociale"
)

var categoryOrder = []Category{
	CategoryFamily,
	CategoryWork,
	CategoryHealth,
	CategoryFinance,
	CategoryPersonal,
	CategorySocial,
}

var categoryLabels = map[Category]string{
	CategoryFamily:   "Famille",
	CategoryWork:     "Travail",
	CategoryHealth:   "Santé",
	CategoryFinance:  "Finances",
	CategoryPersonal: "Vie personnelle",
	CategorySocial:   "Vie sociale",
}

// Categories devuelve el conjunto cerrado de categorias en orden de presentacion.
func Categories() []Category {
	out := make([]Category, len(categoryOrder))
	copy(out, categoryOrder)
	return out
}

func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

func (c Category) Label() string {
	return categoryLabels[c]
}

func (c Category) rank() int {
	for i, cat := range categoryOrder {
		if cat == c {
			return i
		}
	}
	return len(categoryOrder)
}

// StressEvent es un evento de vida ponderado segun la escala Holmes-Rahe.
type StressEvent struct {
	ID       int      `json:"id"`
	Label    string   `json:"label"`
	Weight   int      `json:"weight"`
	Category Category `json:"category"`
}
