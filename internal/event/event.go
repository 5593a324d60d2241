// Package event defines the canonical event model built from spreadsheet
// rows. This is the domain model shared by catalog, filter, schedule, api
// and store packages.
package event

import "strings"

// Placeholder values used when the sheet leaves a required field blank.
const (
	FallbackName     = "Evento sem nome"
	FallbackDate     = "Data a confirmar"
	FallbackLocation = "Local a confirmar"
)

// Event is one normalized party listing. Date keeps the raw DD/MM/YYYY
// string from the sheet; the schedule package re-parses it on demand.
type Event struct {
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	Date         string `json:"date"`
	Location     string `json:"location"`
	StartTime    string `json:"start_time,omitempty"`
	EndTime      string `json:"end_time,omitempty"`
	Attractions  string `json:"attractions,omitempty"`
	Producer     string `json:"producer,omitempty"`
	ImageURL     string `json:"image_url,omitempty"`
	Genres       string `json:"genres,omitempty"`
	TicketInfo   string `json:"ticket_info,omitempty"`
	InstagramURL string `json:"instagram_url,omitempty"`
	Coupon       string `json:"coupon,omitempty"`
}

// GenreTokens splits the comma-separated genre field into trimmed,
// lower-cased tokens.
func (e Event) GenreTokens() []string {
	if strings.TrimSpace(e.Genres) == "" {
		return nil
	}
	parts := strings.Split(e.Genres, ",")
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.ToLower(strings.TrimSpace(p)); t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// FreeTicket reports whether the ticket field holds one of the sentinel
// values the sheet uses for non-link entries.
func (e Event) FreeTicket() bool {
	switch strings.ToLower(strings.TrimSpace(e.TicketInfo)) {
	case "gratuito", "couvert":
		return true
	}
	return false
}
