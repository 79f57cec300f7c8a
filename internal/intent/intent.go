package intent

import "context"

// Label is one of the fixed intent labels the router dispatches on.
type Label string

const (
	LabelBookAppointment   Label = "book_appointment"
	LabelPaymentHelp       Label = "payment_help"
	LabelDentistSuggestion Label = "dentist_suggestion"
	LabelViewAppointments  Label = "view_appointments"
	LabelXrayAnalysis      Label = "xray_analysis"
	LabelDentalAdvice      Label = "dental_advice"
	LabelGeneralQuery      Label = "general_query"
)

// Labels is the closed candidate set sent to the classification backend.
// Classification results never carry a label outside this set.
var Labels = []Label{
	LabelBookAppointment,
	LabelPaymentHelp,
	LabelDentistSuggestion,
	LabelViewAppointments,
	LabelXrayAnalysis,
	LabelDentalAdvice,
	LabelGeneralQuery,
}

// Result is a ranked classification of one message.
type Result struct {
	Intent     Label             `json:"intent"`
	Confidence float64           `json:"confidence"`
	Scores     map[Label]float64 `json:"all_scores"`
}

// Classifier ranks a message against the fixed label set. Implementations
// must not return errors; backend failure degrades to Fallback().
type Classifier interface {
	Classify(ctx context.Context, message string) Result
}

// Fallback is the neutral result used whenever the backend is unavailable.
func Fallback() Result {
	return Result{
		Intent:     LabelGeneralQuery,
		Confidence: 0.5,
		Scores:     map[Label]float64{},
	}
}

var descriptions = map[Label]string{
	LabelBookAppointment:   "User wants to book a dental appointment",
	LabelPaymentHelp:       "User needs help with payment or billing",
	LabelDentistSuggestion: "User wants dentist recommendation",
	LabelViewAppointments:  "User wants to see their appointments",
	LabelXrayAnalysis:      "User wants X-ray or document analysis",
	LabelDentalAdvice:      "User has dental health questions",
	LabelGeneralQuery:      "General question or conversation",
}

// Describe returns the human-readable description for a label.
func Describe(label Label) string {
	if d, ok := descriptions[label]; ok {
		return d
	}
	return "Unknown intent"
}

// valid reports whether the backend returned a label from the fixed set.
func valid(label Label) bool {
	_, ok := descriptions[label]
	return ok
}
