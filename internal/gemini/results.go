package gemini

import (
	"encoding/json"
	"strings"
)

// DentistPick is the structured shape requested from the suggestion prompt.
type DentistPick struct {
	DentistName string `json:"dentist_name"`
	Reason      string `json:"reason"`
	Explanation string `json:"explanation"`
}

// Suggestion is a permissive recommendation result: Structured is set when
// the model honored the JSON instruction, Raw always holds the reply text.
type Suggestion struct {
	Structured *DentistPick
	Raw        string
}

// Text returns the reply to show the user.
func (s Suggestion) Text() string {
	return s.Raw
}

// BookingFields is the structured shape requested from the extraction prompt.
type BookingFields struct {
	Symptoms          string `json:"symptoms"`
	PreferredDate     string `json:"preferred_date"`
	PreferredTime     string `json:"preferred_time"`
	DentistPreference string `json:"dentist_preference"`
	Urgency           string `json:"urgency"`
}

// BookingInfo is a permissive extraction result, same tagging as Suggestion.
type BookingInfo struct {
	Structured *BookingFields
	Raw        string
}

func parseSuggestion(text string) Suggestion {
	out := Suggestion{Raw: text}
	var pick DentistPick
	if err := json.Unmarshal([]byte(stripFences(text)), &pick); err == nil && pick.DentistName != "" {
		out.Structured = &pick
	}
	return out
}

func parseBookingInfo(text string) BookingInfo {
	out := BookingInfo{Raw: text}
	var fields BookingFields
	if err := json.Unmarshal([]byte(stripFences(text)), &fields); err == nil {
		out.Structured = &fields
	}
	return out
}

// stripFences removes a markdown code fence the model often wraps JSON in.
func stripFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
