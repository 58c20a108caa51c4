package view

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/user/character-explorer/internal/entity"
)

const siteName = "Rick and Morty Explorer"

var episodeIDPattern = regexp.MustCompile(`/(\d+)$`)

// StatusLabel is the display text for a status.
func StatusLabel(status entity.CharacterStatus) string {
	switch strings.ToLower(string(status)) {
	case "alive":
		return "🟢 Alive"
	case "dead":
		return "🔴 Dead"
	case "unknown":
		return "⚪ Unknown"
	default:
		return string(status)
	}
}

// StatusClass is the CSS modifier for a status badge.
func StatusClass(status entity.CharacterStatus) string {
	switch strings.ToLower(string(status)) {
	case "alive":
		return "status-alive"
	case "dead":
		return "status-dead"
	default:
		return "status-unknown"
	}
}

// GenderLabel is the display text for a gender.
func GenderLabel(gender entity.CharacterGender) string {
	switch strings.ToLower(string(gender)) {
	case "male":
		return "♂️ Male"
	case "female":
		return "♀️ Female"
	case "genderless":
		return "⚫ Genderless"
	case "unknown":
		return "❓ Unknown"
	default:
		return string(gender)
	}
}

// EpisodeID extracts the trailing numeric id of an episode URL.
func EpisodeID(episodeURL string) string {
	m := episodeIDPattern.FindStringSubmatch(episodeURL)
	if m == nil {
		return ""
	}
	return m[1]
}

// EpisodeCount renders "1 episode" or "N episodes".
func EpisodeCount(episodes []string) string {
	if len(episodes) == 1 {
		return "1 episode"
	}
	return fmt.Sprintf("%d episodes", len(episodes))
}

// Metadata is the document title and social preview data.
type Metadata struct {
	Title       string
	Description string
	Image       string
}

// CharacterMetadata builds the metadata of a detail page.
func CharacterMetadata(ch *entity.Character) Metadata {
	return Metadata{
		Title: fmt.Sprintf("%s | %s", ch.Name, siteName),
		Description: fmt.Sprintf("Meet %s, %s from %s. Status: %s, Gender: %s",
			ch.Name, ch.Species, ch.Origin.Name, ch.Status, ch.Gender),
		Image: ch.Image,
	}
}

func pageMetadata(title, description string) Metadata {
	if title == "" {
		title = siteName
	} else {
		title = fmt.Sprintf("%s | %s", title, siteName)
	}
	return Metadata{Title: title, Description: description}
}
