package voxsense

import (
	"fmt"
	"strings"
)

// Emotion is a discrete emotional category produced by a Model.
type Emotion string

// Labels of the built-in model, in priority order. Priority breaks probability ties.
const (
	EmotionCalm     Emotion = "Calm"
	EmotionStressed Emotion = "Stressed"
	EmotionAngry    Emotion = "Angry"
	EmotionFearful  Emotion = "Fearful"
)

func (e Emotion) String() string {
	return string(e)
}

// Emotions returns the labels of the built-in model in priority order.
func Emotions() []Emotion {
	return []Emotion{EmotionCalm, EmotionStressed, EmotionAngry, EmotionFearful}
}

// ParseEmotion converts a case-insensitive label name to a built-in Emotion.
func ParseEmotion(s string) (Emotion, error) {
	for _, emotion := range Emotions() {
		if strings.EqualFold(strings.TrimSpace(s), string(emotion)) {
			return emotion, nil
		}
	}

	return "", fmt.Errorf("unknown emotion %q (valid: calm, stressed, angry, fearful)", s)
}

// EmotionInfo is presentation metadata for a label. The scorer never reads it.
type EmotionInfo struct {
	Emoji   string `json:"emoji"`
	Scripts string `json:"scripts"` // Bengali / Hindi / Punjabi renderings
	Color   string `json:"color"`
}

// Info returns the display metadata for the built-in labels, and a zero EmotionInfo for anything else.
func (e Emotion) Info() EmotionInfo {
	switch e {
	case EmotionCalm:
		return EmotionInfo{Emoji: "😌", Scripts: "শান্ত / शांत / ਸ਼ਾਂਤ", Color: "#2ea043"}
	case EmotionStressed:
		return EmotionInfo{Emoji: "😰", Scripts: "চাপে আছি / तनावग्रस्त / ਤਣਾਅ", Color: "#f85149"}
	case EmotionAngry:
		return EmotionInfo{Emoji: "😠", Scripts: "রাগান্বিত / क्रोधित / ਗੁੱਸੇ", Color: "#ff7b72"}
	case EmotionFearful:
		return EmotionInfo{Emoji: "😨", Scripts: "ভয়ার্ত / भयभीत / ਡਰਿਆ", Color: "#a371f7"}
	}

	return EmotionInfo{}
}
