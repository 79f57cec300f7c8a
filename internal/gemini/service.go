package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dentalcareconnect/chatbot-backend/internal/observability/metrics"
	"github.com/dentalcareconnect/chatbot-backend/pkg/logging"
)

const systemPrompt = `You are a helpful dental assistant chatbot for DentalCareConnect.
Your role is to:
1. Help patients book appointments
2. Answer dental health questions
3. Provide information about dentists and services
4. Analyze dental X-rays and documents when provided
5. Assist with payment and billing questions

Be professional, empathetic, and concise. Always prioritize patient safety and recommend
seeing a dentist for serious concerns.`

// Fallback replies, one per call site. The caller of a degraded backend gets
// these instead of an error.
const (
	FallbackChat     = "I apologize, but I'm having trouble processing your request. Please try again."
	FallbackXray     = "I apologize, but I couldn't analyze the X-ray image. Please ensure it's a valid image file."
	FallbackDocument = "I apologize, but I couldn't analyze the PDF document. Please ensure it's a valid PDF file."

	FallbackSuggestion = "I recommend consulting with a general dentist first."
)

// documentTextBudget bounds how much extracted document text is embedded in
// a prompt, respecting backend input limits.
const documentTextBudget = 4000

// historyTurns is how many recent conversation turns a prompt carries.
const historyTurns = 5

// Turn is one prior message rendered into a prompt.
type Turn struct {
	Role    string
	Content string
}

// ChatContext carries the per-request context a reply prompt is built from.
type ChatContext struct {
	UserName           string
	UserRole           string
	RecentAppointments int
	History            []Turn
}

// DentistProfile is the slice of a dentist record a recommendation needs.
type DentistProfile struct {
	Name           string
	Specialization string
	Rating         float64
}

// Service builds prompts and contains backend failures behind fixed
// fallback text.
type Service struct {
	llm     LLM
	logger  *logging.Logger
	metrics *metrics.ChatMetrics
}

// NewService creates the generation service. metrics may be nil.
func NewService(llm LLM, logger *logging.Logger, m *metrics.ChatMetrics) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{llm: llm, logger: logger, metrics: m}
}

// GenerateReply produces a conversational reply to the user's message.
func (s *Service) GenerateReply(ctx context.Context, message string, chatCtx ChatContext) string {
	prompt := buildChatPrompt(message, chatCtx)
	text, err := s.generate(ctx, "generate_reply", prompt)
	if err != nil {
		s.logger.Error("gemini: reply generation failed", "error", err)
		return FallbackChat
	}
	return text
}

// AnalyzeXray analyzes a dental X-ray image, optionally steered by a patient
// question.
func (s *Service) AnalyzeXray(ctx context.Context, image []byte, mimeType, query string) string {
	var prompt strings.Builder
	prompt.WriteString(`Analyze this dental X-ray image and provide:
1. Visible dental structures
2. Any potential issues or abnormalities
3. Recommendations for the patient

Important: This is an AI analysis and should not replace professional dental examination.
Always recommend consulting with a dentist for accurate diagnosis.`)
	if query != "" {
		fmt.Fprintf(&prompt, "\n\nPatient's specific question: %s", query)
	}

	start := time.Now()
	text, err := s.llm.GenerateWithImage(ctx, prompt.String(), image, mimeType)
	s.metrics.ObserveLLMLatency("analyze_xray", time.Since(start).Seconds())
	if err != nil {
		s.logger.Error("gemini: x-ray analysis failed", "error", err)
		return FallbackXray
	}
	return text
}

// AnalyzeDocument summarizes extracted document text, truncated to the
// prompt budget.
func (s *Service) AnalyzeDocument(ctx context.Context, text, query string) string {
	if len(text) > documentTextBudget {
		text = text[:documentTextBudget]
	}

	var prompt strings.Builder
	fmt.Fprintf(&prompt, `Analyze this dental document and provide a summary:

Document Content:
%s

Please provide:
1. Document type (e.g., treatment plan, medical history, prescription)
2. Key information and findings
3. Any recommendations or follow-up actions

Important: This is an AI analysis. Always verify with your dentist.`, text)
	if query != "" {
		fmt.Fprintf(&prompt, "\n\nPatient's specific question: %s", query)
	}

	out, err := s.generate(ctx, "analyze_document", prompt.String())
	if err != nil {
		s.logger.Error("gemini: document analysis failed", "error", err)
		return FallbackDocument
	}
	return out
}

// SuggestDentist asks the backend to pick a dentist for the given symptoms.
// The structured variant is filled when the model honors the JSON shape;
// Raw always carries the full recommendation text.
func (s *Service) SuggestDentist(ctx context.Context, symptoms string, dentists []DentistProfile) Suggestion {
	var roster strings.Builder
	for _, d := range dentists {
		fmt.Fprintf(&roster, "- %s (%s) - Rating: %.1f/5\n", d.Name, d.Specialization, d.Rating)
	}

	prompt := fmt.Sprintf(`Based on these symptoms: %q

Available dentists:
%s
Which dentist would be most appropriate? Provide:
1. Recommended dentist name
2. Reason for recommendation
3. Brief explanation of why this specialization matches the symptoms

Format your response as JSON with keys: dentist_name, reason, explanation`, symptoms, roster.String())

	text, err := s.generate(ctx, "suggest_dentist", prompt)
	if err != nil {
		s.logger.Error("gemini: dentist suggestion failed", "error", err)
		return Suggestion{Raw: FallbackSuggestion}
	}
	return parseSuggestion(text)
}

// ExtractBookingInfo asks the backend to pull booking details out of the
// last turns of a conversation.
func (s *Service) ExtractBookingInfo(ctx context.Context, history []Turn) BookingInfo {
	if len(history) > 10 {
		history = history[len(history)-10:]
	}
	var conv strings.Builder
	for _, turn := range history {
		fmt.Fprintf(&conv, "%s: %s\n", turn.Role, turn.Content)
	}

	prompt := fmt.Sprintf(`From this conversation, extract booking information:

%s
Extract and return as JSON:
{
    "symptoms": "patient's symptoms or reason for visit",
    "preferred_date": "date if mentioned",
    "preferred_time": "time if mentioned",
    "dentist_preference": "any dentist preference",
    "urgency": "urgent/normal/routine"
}

If information is not mentioned, use null.`, conv.String())

	text, err := s.generate(ctx, "extract_booking", prompt)
	if err != nil {
		s.logger.Error("gemini: booking extraction failed", "error", err)
		return BookingInfo{}
	}
	return parseBookingInfo(text)
}

func (s *Service) generate(ctx context.Context, operation, prompt string) (string, error) {
	start := time.Now()
	text, err := s.llm.Generate(ctx, prompt)
	s.metrics.ObserveLLMLatency(operation, time.Since(start).Seconds())
	return text, err
}

// buildChatPrompt prepends the persona and renders the known context ahead
// of the patient's message.
func buildChatPrompt(message string, chatCtx ChatContext) string {
	var prompt strings.Builder
	prompt.WriteString(systemPrompt)
	prompt.WriteString("\n\n")

	if chatCtx.UserName != "" {
		fmt.Fprintf(&prompt, "Patient Name: %s\n", chatCtx.UserName)
	}
	if chatCtx.RecentAppointments > 0 {
		fmt.Fprintf(&prompt, "Recent Appointments: %d\n", chatCtx.RecentAppointments)
	}
	if len(chatCtx.History) > 0 {
		history := chatCtx.History
		if len(history) > historyTurns {
			history = history[len(history)-historyTurns:]
		}
		prompt.WriteString("Recent Conversation:\n")
		for _, turn := range history {
			fmt.Fprintf(&prompt, "%s: %s\n", turn.Role, turn.Content)
		}
		prompt.WriteString("\n")
	}

	fmt.Fprintf(&prompt, "Patient: %s\nAssistant:", message)
	return prompt.String()
}
