package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/pvsaraivar/Planilha-festas/internal/appinfo"
	"github.com/pvsaraivar/Planilha-festas/internal/event"
	"github.com/pvsaraivar/Planilha-festas/internal/filter"
	"github.com/pvsaraivar/Planilha-festas/internal/schedule"
)

// handleCalendar handles GET /api/v1/events.ics
// The feed carries the upcoming events only, so subscribed calendars
// stay in sync with the listing.
func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	items, err := s.events.List(r.Context(), filter.FromQuery(r.URL.Query()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error", err)
		return
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//" + appinfo.AppName + "//PT")

	stamp := time.Now().UTC()
	for _, ev := range items {
		date, ok := schedule.ParseLocalDate(ev.Date, s.loc)
		if !ok {
			// "Data a confirmar" rows have no calendar representation.
			continue
		}

		ve := cal.AddEvent(ev.Slug + "@" + appinfo.DirName)
		ve.SetDtStampTime(stamp)
		ve.SetSummary(ev.Name)
		if ev.Location != "" && ev.Location != event.FallbackLocation {
			ve.SetLocation(ev.Location)
		}
		if desc := calendarDescription(ev); desc != "" {
			ve.SetDescription(desc)
		}
		if strings.HasPrefix(ev.InstagramURL, "http") {
			ve.SetURL(ev.InstagramURL)
		}

		if hour, minute, hasStart := schedule.ParseClock(ev.StartTime); hasStart {
			start := time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, s.loc)
			ve.SetStartAt(start)
			if end, ok := schedule.EffectiveEnd(ev, s.loc); ok {
				ve.SetEndAt(end)
			}
		} else {
			// No start time: render as an all-day entry.
			ve.SetAllDayStartAt(date)
			ve.SetAllDayEndAt(date.AddDate(0, 0, 1))
		}
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+appinfo.DirName+`.ics"`)
	fmt.Fprint(w, cal.Serialize())
}

// calendarDescription folds the secondary fields into the VEVENT
// description, one per line.
func calendarDescription(ev event.Event) string {
	var lines []string
	if ev.Attractions != "" {
		lines = append(lines, "Atrações: "+ev.Attractions)
	}
	if ev.Producer != "" {
		lines = append(lines, "Produtora: "+ev.Producer)
	}
	if ev.Genres != "" {
		lines = append(lines, "Gêneros: "+ev.Genres)
	}
	if ev.TicketInfo != "" {
		lines = append(lines, "Ingressos: "+ev.TicketInfo)
	}
	if ev.Coupon != "" {
		lines = append(lines, "Cupom: "+ev.Coupon)
	}
	return strings.Join(lines, "\n")
}
