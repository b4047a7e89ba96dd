package model

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

const (
	MaxNameLength        = 100
	MaxDescriptionLength = 500
	MaxIconLength        = 10
	MinPasswordLength    = 8
	MaxPasswordLength    = 128
	MaxEstimatedMinutes  = 480
)

var (
	reColor   = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)
	reEmail   = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reDueTime = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)$`)
)

type ValidationError struct {
	Field string
	Msg   string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Msg)
}

func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ValidationError{Field: "name", Msg: "required"}
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return ValidationError{Field: "name", Msg: fmt.Sprintf("longer than %d characters", MaxNameLength)}
	}
	return nil
}

func ValidateDescription(desc string) error {
	if utf8.RuneCountInString(desc) > MaxDescriptionLength {
		return ValidationError{Field: "description", Msg: fmt.Sprintf("longer than %d characters", MaxDescriptionLength)}
	}
	return nil
}

// NormalizeColor validates a #RRGGBB color and returns it uppercased.
// Empty input is allowed and passes through.
func NormalizeColor(color string) (string, error) {
	color = strings.TrimSpace(color)
	if color == "" {
		return "", nil
	}
	if !reColor.MatchString(color) {
		return "", ValidationError{Field: "color", Msg: "must match #RRGGBB"}
	}
	return strings.ToUpper(color), nil
}

func ValidateIcon(icon string) error {
	if utf8.RuneCountInString(icon) > MaxIconLength {
		return ValidationError{Field: "icon", Msg: fmt.Sprintf("longer than %d characters", MaxIconLength)}
	}
	return nil
}

// NormalizeEmail lowercases and validates an email address.
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !reEmail.MatchString(email) {
		return "", ValidationError{Field: "email", Msg: "not a valid address"}
	}
	return email, nil
}

// ValidatePassword enforces the account password policy: length bounds
// plus at least one upper, lower, digit, and special character.
func ValidatePassword(pw string) error {
	n := utf8.RuneCountInString(pw)
	if n < MinPasswordLength {
		return ValidationError{Field: "password", Msg: fmt.Sprintf("shorter than %d characters", MinPasswordLength)}
	}
	if n > MaxPasswordLength {
		return ValidationError{Field: "password", Msg: fmt.Sprintf("longer than %d characters", MaxPasswordLength)}
	}
	var upper, lower, digit, special bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		default:
			special = true
		}
	}
	if !upper || !lower || !digit || !special {
		return ValidationError{Field: "password", Msg: "needs upper, lower, digit, and special characters"}
	}
	return nil
}

func ValidateImportance(n int) error {
	if n < 1 || n > 5 {
		return ValidationError{Field: "importance", Msg: "must be between 1 and 5"}
	}
	return nil
}

func ValidateTimeAllocationPct(n int) error {
	if n < 0 || n > 100 {
		return ValidationError{Field: "timeAllocationPct", Msg: "must be between 0 and 100"}
	}
	return nil
}

func ValidateDueTime(s string) error {
	if s == "" {
		return nil
	}
	if !reDueTime.MatchString(s) {
		return ValidationError{Field: "dueTime", Msg: "must be HH:MM (24h)"}
	}
	return nil
}

// ValidateEstimatedMinutes accepts 0 (unset) or a duration of 1..480 minutes.
func ValidateEstimatedMinutes(n int) error {
	if n == 0 {
		return nil
	}
	if n < 1 || n > MaxEstimatedMinutes {
		return ValidationError{Field: "estimatedMinutes", Msg: fmt.Sprintf("must be between 1 and %d", MaxEstimatedMinutes)}
	}
	return nil
}

// ParseDate validates YYYY-MM-DD and returns a Date.
func ParseDate(s string) (*Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return nil, ValidationError{Field: "date", Msg: "must be YYYY-MM-DD"}
	}
	return &Date{Date: s}, nil
}

func ParsePriority(s string) (Priority, error) {
	switch Priority(strings.ToLower(strings.TrimSpace(s))) {
	case PriorityLow:
		return PriorityLow, nil
	case PriorityMedium, "":
		return PriorityMedium, nil
	case PriorityHigh:
		return PriorityHigh, nil
	}
	return "", ValidationError{Field: "priority", Msg: "must be low, medium, or high"}
}

func ParseTaskStatus(s string) (TaskStatus, error) {
	switch TaskStatus(strings.ToLower(strings.TrimSpace(s))) {
	case TaskStatusTodo, "":
		return TaskStatusTodo, nil
	case TaskStatusInProgress:
		return TaskStatusInProgress, nil
	case TaskStatusDone:
		return TaskStatusDone, nil
	}
	return "", ValidationError{Field: "status", Msg: "must be todo, in_progress, or done"}
}

func ParseProjectStatus(s string) (ProjectStatus, error) {
	switch ProjectStatus(strings.ToLower(strings.TrimSpace(s))) {
	case ProjectStatusNotStarted, "":
		return ProjectStatusNotStarted, nil
	case ProjectStatusInProgress:
		return ProjectStatusInProgress, nil
	case ProjectStatusCompleted:
		return ProjectStatusCompleted, nil
	case ProjectStatusOnHold:
		return ProjectStatusOnHold, nil
	}
	return "", ValidationError{Field: "status", Msg: "must be not_started, in_progress, completed, or on_hold"}
}

func ParseMood(s string) (Mood, error) {
	switch Mood(strings.ToLower(strings.TrimSpace(s))) {
	case MoodOptimistic:
		return MoodOptimistic, nil
	case MoodInspired:
		return MoodInspired, nil
	case MoodReflective, "":
		return MoodReflective, nil
	case MoodChallenging:
		return MoodChallenging, nil
	}
	return "", ValidationError{Field: "mood", Msg: "must be optimistic, inspired, reflective, or challenging"}
}

func ParseParentType(s string) (ParentType, error) {
	switch ParentType(strings.ToLower(strings.TrimSpace(s))) {
	case ParentTypeTask:
		return ParentTypeTask, nil
	case ParentTypeProject:
		return ParentTypeProject, nil
	case ParentTypeJournalEntry:
		return ParentTypeJournalEntry, nil
	}
	return "", ValidationError{Field: "parentType", Msg: "must be task, project, or journal_entry"}
}
