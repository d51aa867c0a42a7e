package diagnostic

// RiskTier es la banda de riesgo derivada del puntaje total.
type RiskTier string

const (
	RiskLow      RiskTier = "LOW"
	RiskModerate RiskTier = "MODERATE"
	RiskHigh     RiskTier = "HIGH"
)

// Umbrales Holmes-Rahe. El borde inferior de cada banda es inclusivo.
const (
	ModerateThreshold = 150
	HighThreshold     = 300
)

type tierInfo struct {
	label          string
	interpretation string
}

var tiers = map[RiskTier]tierInfo{
	RiskLow: {
		label:          "Faible risque",
		interpretation: "Risque faible : moins de 30 % de risque de développer un problème de santé lié au stress dans les deux prochaines années.",
	},
	RiskModerate: {
		label:          "Risque modéré",
		interpretation: "Risque modéré : entre 30 % et 50 % de risque de développer un problème de santé lié au stress dans les deux prochaines années.",
	},
	RiskHigh: {
		label:          "Risque élevé",
		interpretation: "Risque élevé : plus de 80 % de risque de développer un problème de santé lié au stress dans les deux prochaines années.",
	},
}

// TierFor asigna la banda para un puntaje total.
func TierFor(totalScore int) RiskTier {
	switch {
	case totalScore < ModerateThreshold:
		return RiskLow
	case totalScore < HighThreshold:
		return RiskModerate
	default:
		return RiskHigh
	}
}

func (t RiskTier) Valid() bool {
	_, ok := tiers[t]
	return ok
}

// Label devuelve la etiqueta visible para el usuario.
func (t RiskTier) Label() string {
	return tiers[t].label
}

func (t RiskTier) Interpretation() string {
	return tiers[t].interpretation
}
