package domain

import "time"

// Emotion es una de las emociones de base del diario.
type Emotion string

const (
	EmotionJoy      Emotion = "JOIE"
	EmotionAnger    Emotion = "COLERE"
	EmotionFear     Emotion = "PEUR"
	EmotionSadness  Emotion = "TRISTESSE"
	EmotionSurprise Emotion = "SURPRISE"
	EmotionDisgust  Emotion = "DEGOUT"
)

func (e Emotion) Valid() bool {
	switch e {
	case EmotionJoy, EmotionAnger, EmotionFear, EmotionSadness, EmotionSurprise, EmotionDisgust:
		return true
	}
	return false
}

const (
	MinIntensity = 1
	MaxIntensity = 5
)

type EmotionEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Emotion   Emotion   `json:"emotion"`
	Intensity int       `json:"intensity"`
	Note      string    `json:"note,omitempty"`
	EntryDate time.Time `json:"entry_date"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EmotionSummary agrega las entradas de un periodo por emocion.
type EmotionSummary struct {
	Emotion          Emotion `json:"emotion"`
	Count            int     `json:"count"`
	AverageIntensity float64 `json:"average_intensity"`
}
