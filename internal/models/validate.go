package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError describes user input that cannot become an Entry.
// Message is safe to show to the user as-is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// EntryInput carries raw user input for a new entry
type EntryInput struct {
	Title         string `json:"title" validate:"required"`
	Status        string `json:"status" validate:"required,entry_status"`
	Preference    string `json:"preference" validate:"required,entry_preference"`
	TotalEpisodes int    `json:"total_episodes" validate:"gt=0"`
	Genre         string `json:"genre"`
	SourceLink    string `json:"source_link" validate:"omitempty,url"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterValidation("entry_status", func(fl validator.FieldLevel) bool {
		_, ok := ParseStatus(fl.Field().String())
		return ok
	})
	v.RegisterValidation("entry_preference", func(fl validator.FieldLevel) bool {
		_, ok := ParsePreference(fl.Field().String())
		return ok
	})
	return v
}

// Build validates the input and returns the resulting Entry.
// The returned error is always a *ValidationError.
func (in EntryInput) Build() (Entry, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Status = strings.TrimSpace(in.Status)
	in.Preference = strings.TrimSpace(in.Preference)
	in.Genre = strings.TrimSpace(in.Genre)
	in.SourceLink = strings.TrimSpace(in.SourceLink)

	if err := validate.Struct(in); err != nil {
		return Entry{}, toValidationError(err)
	}

	status, _ := ParseStatus(in.Status)
	preference, _ := ParsePreference(in.Preference)

	entry := NewEntry(in.Title, status, preference, in.TotalEpisodes)
	if in.Genre != "" {
		entry.Genre = in.Genre
	}
	if in.SourceLink != "" {
		entry.SourceLink = StringPtr(in.SourceLink)
	}
	return entry, nil
}

func toValidationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &ValidationError{Message: err.Error()}
	}

	fe := fieldErrs[0]
	switch fe.Field() {
	case "Title":
		return &ValidationError{Field: "title", Message: "Title cannot be empty!"}
	case "Status":
		return &ValidationError{Field: "status", Message: InvalidStatusMessage()}
	case "Preference":
		return &ValidationError{Field: "preference", Message: InvalidPreferenceMessage()}
	case "TotalEpisodes":
		return &ValidationError{Field: "total_episodes", Message: "Total episodes must be positive!"}
	case "SourceLink":
		return &ValidationError{Field: "source_link", Message: "Source link must be a valid URL!"}
	default:
		return &ValidationError{Field: fe.Field(), Message: fmt.Sprintf("Invalid %s!", fe.Field())}
	}
}

// ParseStatus matches s against the known statuses, ignoring case
func ParseStatus(s string) (Status, bool) {
	s = strings.TrimSpace(s)
	for _, status := range Statuses {
		if strings.EqualFold(s, string(status)) {
			return status, true
		}
	}
	return "", false
}

// ParsePreference matches s against the known preferences, ignoring case
func ParsePreference(s string) (Preference, bool) {
	s = strings.TrimSpace(s)
	for _, p := range Preferences {
		if strings.EqualFold(s, string(p)) {
			return p, true
		}
	}
	return "", false
}

// InvalidStatusMessage is shown when a status is not recognised
func InvalidStatusMessage() string {
	names := make([]string, len(Statuses))
	for i, s := range Statuses {
		names[i] = string(s)
	}
	return "Invalid status! Must be one of: " + strings.Join(names, ", ")
}

// InvalidPreferenceMessage is shown when a preference is not recognised
func InvalidPreferenceMessage() string {
	names := make([]string, len(Preferences))
	for i, p := range Preferences {
		names[i] = string(p)
	}
	return "Invalid preference! Must be one of: " + strings.Join(names, ", ")
}
