package play

import (
	"math/rand"
	"strings"
	"unicode/utf8"
)

const maxNameLength = 32

var (
	nameAdjectives = []string{"Clever", "Brilliant", "Quick", "Smart", "Amazing", "Super", "Awesome"}
	nameNouns      = []string{"Player", "Quizzer", "Champion", "Master", "Genius", "Mind", "Star"}
)

// GeneratePlayerName returns a display name such as "Quick Genius".
func GeneratePlayerName() string {
	return nameAdjectives[rand.Intn(len(nameAdjectives))] + " " + nameNouns[rand.Intn(len(nameNouns))]
}

// PlayerName cleans a requested display name, generating one when blank.
func PlayerName(requested string) string {
	name := strings.Join(strings.Fields(requested), " ")
	if name == "" {
		return GeneratePlayerName()
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		name = string([]rune(name)[:maxNameLength])
	}
	return name
}
