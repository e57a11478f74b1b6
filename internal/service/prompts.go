package service

import (
	"fmt"
	"strings"

	"github.com/pageza/vinoteca/backend/internal/types"
)

const noProbeMatches = "[No matching wines found for this food pairing]"

const sommelierPrompt = `You are an expert sommelier who is given a user's current cuisine or flavor they're in the mood for.
Based on the following wines in our database that match what the user wants:
%s
If there are no wines above, then say that we don't have any wines in our database that will pair well with what you want, but still give a recommendation for a wine that pairs well with what the user wants along with descriptions of the flavor and taste of the wine and do not mention the wine id.
End your answer with a final line that starts with ` + FilterSentinel + ` followed by one JSON object describing the wine you recommend. Use only these optional keys: wine_type, food, grape, region, country, year, classification, appellation, name.`

const wineInfoPrompt = `You are an expert sommelier. Given the wine "%s", return detailed advice in **valid JSON**.

Format:
{
  "storage": {
    "temperature_celsius": "10-15",
    "humidity_percent": "60-70",
    "position": "horizontal",
    "ageing_potential": "drink now or store up to 3 years"
  },
  "serving": {
    "drink_temp_celsius": "8-10",
    "needs_decanting": "no",
    "decant_time_minutes": 0
  },
  "pairings": ["seafood", "light pasta", "soft cheeses"],
  "tasting_notes": "Aromatic and crisp, with notes of lemon, apple, and mineral finish."
}`

// BuildSommelierPrompt embeds the keyword probe results, one "- name (ID: id)" line per
// wine, into the system prompt.
func BuildSommelierPrompt(probe []types.EnrichedWine) string {
	list := noProbeMatches
	if len(probe) > 0 {
		lines := make([]string, 0, len(probe))
		for _, w := range probe {
			lines = append(lines, fmt.Sprintf("- %s (ID: %d)", w.Name, w.ID))
		}
		list = strings.Join(lines, "\n")
	}
	return fmt.Sprintf(sommelierPrompt, list)
}

func BuildWineInfoPrompt(wineName string) string {
	return fmt.Sprintf(wineInfoPrompt, wineName)
}
