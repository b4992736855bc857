package domain

type Emotion string

const (
	EmotionFunny     Emotion = "funny"
	EmotionHappy     Emotion = "happy"
	EmotionSurprised Emotion = "surprised"
	EmotionCry       Emotion = "cry"
	EmotionAngry     Emotion = "angry"
)

func (e Emotion) IsValid() bool {
	switch e {
	case EmotionFunny, EmotionHappy, EmotionSurprised, EmotionCry, EmotionAngry:
		return true
	}
	return false
}

type EmotionInput struct {
	Emotion Emotion `json:"emotion" validate:"required,oneof=funny happy surprised cry angry"`
}

// Emoted is the (from, to, emotion) record returned by reaction mutations.
type Emoted struct {
	From    *User   `json:"from"`
	To      *Post   `json:"to"`
	Emotion Emotion `json:"emotion"`
}
