package event

import (
	"strings"

	"github.com/pvsaraivar/Planilha-festas/internal/sheet"
)

// Normalizer maps raw sheet records into canonical events, applying the
// per-event image override table. The zero value works without overrides.
type Normalizer struct {
	overrides map[string]string
}

// NewNormalizer creates a Normalizer with the given name-to-asset image
// override table. Keys are matched against the lower-cased, trimmed event
// name; exact matches only. Duplicate keys follow map semantics: the last
// definition wins.
func NewNormalizer(overrides map[string]string) *Normalizer {
	m := make(map[string]string, len(overrides))
	for k, v := range overrides {
		m[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return &Normalizer{overrides: m}
}

// Normalize converts every visible record into an Event. It is total over
// its input: rows missing fields fall back to placeholders, rows marked
// hidden are dropped, and the record slice is never modified.
func (n *Normalizer) Normalize(records []sheet.Record) []Event {
	events := make([]Event, 0, len(records))
	for _, r := range records {
		if hidden(r) {
			continue
		}
		events = append(events, n.normalizeRecord(r))
	}
	return events
}

// hidden reports whether the sheet editor flagged the row as hidden.
func hidden(r sheet.Record) bool {
	v, _ := r.Get("Oculto")
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "sim", "true":
		return true
	}
	return false
}

func (n *Normalizer) normalizeRecord(r sheet.Record) Event {
	name := r.First("Evento", "Nome")
	if name == "" {
		name = FallbackName
	}

	date := r.First("Data", "Date")
	if date == "" {
		date = FallbackDate
	}

	location := r.First("Local")
	if location == "" {
		location = FallbackLocation
	}

	ev := Event{
		Name:         name,
		Slug:         Slug(name),
		Date:         date,
		Location:     location,
		StartTime:    r.First("Início", "Inicio"),
		EndTime:      r.First("Fim", "Término", "Termino"),
		Attractions:  r.First("Atrações", "Atracoes"),
		Producer:     r.First("Produtora", "Produtor"),
		ImageURL:     r.First("Imagem (URL)", "Imagem"),
		Genres:       r.First("Gêneros", "Generos", "Gênero", "Genero"),
		TicketInfo:   r.First("Ingressos (URL)", "Ingressos"),
		InstagramURL: r.First("Instagram (URL)", "Instagram"),
		Coupon:       r.First("Cupom", "Cupom de Desconto"),
	}

	if asset, ok := n.overrides[strings.ToLower(strings.TrimSpace(name))]; ok {
		ev.ImageURL = asset
	}

	return ev
}
