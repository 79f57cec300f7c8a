package store

import "time"

// User is a resolved chat user. Read-only to this service; rows are owned by
// the auth/profile tables.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
	Role  string `json:"role"`
}

// Appointment is a booked visit as stored by the scheduling tables.
type Appointment struct {
	ID       string `json:"id"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Status   string `json:"status"`
	Type     string `json:"type"`
	Dentist  string `json:"dentist"`
	Symptoms string `json:"symptoms,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

// Dentist is a practitioner profile used for recommendations.
type Dentist struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	Specialization string  `json:"specialization"`
	Bio            string  `json:"bio,omitempty"`
	Rating         float64 `json:"rating"`
	Reviews        int     `json:"reviews"`
}

// AvailabilitySlot is a bookable window in a dentist's weekly schedule.
type AvailabilitySlot struct {
	ID        string `json:"id"`
	Day       string `json:"day"`
	Start     string `json:"start"`
	End       string `json:"end"`
	Available bool   `json:"available"`
}

// ChatMessage is one turn in a patient's conversation log.
type ChatMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// UploadRecord is the persisted metadata for an uploaded file.
type UploadRecord struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	FilePath  string    `json:"file_path"`
	Analysis  string    `json:"analysis,omitempty"`
	Analyzed  bool      `json:"analyzed"`
	CreatedAt time.Time `json:"created_at"`
}
