package notify

import (
	"fmt"
	"strings"

	"github.com/skybridge-va/flightwatch/internal/domain"
)

// Format renders a flight event as a Discord Markdown message.
func Format(event domain.FlightEvent) string {
	f := event.Flight

	switch event.Kind {
	case domain.EventDeparted:
		return fmt.Sprintf("🛫 **%s** departed %s bound for %s%s",
			title(f), airport(f.Departure), airport(f.Arrival), pilotSuffix(f))
	case domain.EventArrived:
		return fmt.Sprintf("🛬 **%s** arrived at %s%s",
			title(f), airport(f.Arrival), pilotSuffix(f))
	case domain.EventCompleted:
		msg := fmt.Sprintf("✅ **%s** completed: %s → %s%s",
			title(f), airport(f.Departure), airport(f.Arrival), pilotSuffix(f))
		if remark := landingRemark(f.LandingRate); remark != "" {
			msg += "\n" + remark
		}
		return msg
	case domain.EventCancelled:
		return fmt.Sprintf("🚫 **%s** was cancelled", title(f))
	default:
		return fmt.Sprintf("**%s**: %s", title(f), event.Kind)
	}
}

// title picks the most descriptive identifier available.
func title(f domain.FlightSummary) string {
	switch {
	case f.Callsign != "" && f.FlightNumber != "" && f.Callsign != f.FlightNumber:
		return f.Callsign + " (" + f.FlightNumber + ")"
	case f.Callsign != "":
		return f.Callsign
	case f.FlightNumber != "":
		return f.FlightNumber
	default:
		return f.FlightID
	}
}

func airport(a domain.Airport) string {
	switch {
	case a.ICAO != "" && a.Name != "":
		return fmt.Sprintf("**%s** (%s)", a.ICAO, a.Name)
	case a.ICAO != "":
		return "**" + a.ICAO + "**"
	case a.Name != "":
		return a.Name
	default:
		return "an unknown airport"
	}
}

func pilotSuffix(f domain.FlightSummary) string {
	var parts []string
	if f.PilotName != "" {
		parts = append(parts, "flown by "+f.PilotName)
	}
	if f.Aircraft != "" {
		parts = append(parts, "in a "+f.Aircraft)
	}
	if len(parts) == 0 {
		return ""
	}
	return ", " + strings.Join(parts, " ")
}

// landingRemark turns a touchdown rate into the obligatory butter joke.
func landingRemark(rate *float64) string {
	if rate == nil {
		return ""
	}
	fpm := *rate
	if fpm > 0 {
		fpm = -fpm
	}
	switch {
	case fpm >= -60:
		return fmt.Sprintf("🧈 Touchdown at %.0f fpm. Pure butter.", fpm)
	case fpm >= -180:
		return fmt.Sprintf("Touchdown at %.0f fpm. Smooth.", fpm)
	case fpm >= -400:
		return fmt.Sprintf("Touchdown at %.0f fpm. Firm, but the gear forgives.", fpm)
	case fpm >= -700:
		return fmt.Sprintf("💥 Touchdown at %.0f fpm. The passengers noticed.", fpm)
	default:
		return fmt.Sprintf("💥 Touchdown at %.0f fpm. Maintenance has been notified.", fpm)
	}
}
