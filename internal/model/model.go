package model

import "time"

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
)

type ProjectStatus string

const (
	ProjectStatusNotStarted ProjectStatus = "not_started"
	ProjectStatusInProgress ProjectStatus = "in_progress"
	ProjectStatusCompleted  ProjectStatus = "completed"
	ProjectStatusOnHold     ProjectStatus = "on_hold"
)

type Mood string

const (
	MoodOptimistic  Mood = "optimistic"
	MoodInspired    Mood = "inspired"
	MoodReflective  Mood = "reflective"
	MoodChallenging Mood = "challenging"
)

type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	PasswordHash string `json:"passwordHash,omitempty"`

	Level            int    `json:"level"`
	TotalPoints      int    `json:"totalPoints"`
	CurrentStreak    int    `json:"currentStreak"`
	LastActivityDate string `json:"lastActivityDate,omitempty"` // YYYY-MM-DD

	HasCompletedOnboarding bool      `json:"hasCompletedOnboarding"`
	CreatedAt              time.Time `json:"createdAt"`
}

type Pillar struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`

	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`
	Color       string `json:"color,omitempty"` // #RRGGBB
	Rank        string `json:"rank,omitempty"`

	TimeAllocationPct     int `json:"timeAllocationPct"`
	TimeTargetMinutesWeek int `json:"timeTargetMinutesWeek,omitempty"`
	TimeSpentMinutes      int `json:"timeSpentMinutes,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Archived  bool      `json:"archived"`
}

type Area struct {
	ID       string `json:"id"`
	UserID   string `json:"userId"`
	PillarID string `json:"pillarId"`

	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`
	Color       string `json:"color,omitempty"`
	Rank        string `json:"rank,omitempty"`

	// Importance weights alignment scoring; 1 (low) to 5 (critical).
	Importance int `json:"importance"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Archived  bool      `json:"archived"`
}

type Project struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`
	AreaID string `json:"areaId"`

	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Status      ProjectStatus `json:"status"`
	Priority    Priority      `json:"priority"`
	Deadline    *Date         `json:"deadline,omitempty"`
	Rank        string        `json:"rank,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Archived  bool      `json:"archived"`
}

type Task struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	ProjectID string `json:"projectId"`

	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Status      TaskStatus `json:"status"`
	Priority    Priority   `json:"priority"`
	Rank        string     `json:"rank,omitempty"`

	Due              *Date   `json:"due,omitempty"`
	DueTime          *string `json:"dueTime,omitempty"` // HH:MM
	EstimatedMinutes int     `json:"estimatedMinutes,omitempty"`

	CompletedAt *time.Time `json:"completedAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Archived  bool      `json:"archived"`
}

// Date is a calendar date without time-of-day semantics.
type Date struct {
	Date string `json:"date"` // YYYY-MM-DD
}

// Time returns the date at midnight UTC, or the zero time when the date is
// empty or malformed.
func (d Date) Time() time.Time {
	t, err := time.Parse("2006-01-02", d.Date)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

func (d Date) String() string { return d.Date }

type JournalEntry struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`

	Title   string   `json:"title"`
	Content string   `json:"content,omitempty"`
	Mood    Mood     `json:"mood,omitempty"`
	Tags    []string `json:"tags,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ParentType string

const (
	ParentTypeTask         ParentType = "task"
	ParentTypeProject      ParentType = "project"
	ParentTypeJournalEntry ParentType = "journal_entry"
)

// FileClass buckets attachments by extension for on-disk layout.
type FileClass string

const (
	FileClassDocuments FileClass = "documents"
	FileClassImages    FileClass = "images"
	FileClassArchives  FileClass = "archives"
	FileClassOther     FileClass = "other"
)

type Attachment struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`

	ParentType ParentType `json:"parentType"`
	ParentID   string     `json:"parentId"`

	Filename  string    `json:"filename"`
	MimeType  string    `json:"mimeType,omitempty"`
	SizeBytes int64     `json:"sizeBytes"`
	SHA256    string    `json:"sha256,omitempty"`
	Class     FileClass `json:"class,omitempty"`
	// Path is relative to the store dir.
	Path string `json:"path,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

type Event struct {
	ID       string    `json:"id"`
	TS       time.Time `json:"ts"`
	UserID   string    `json:"userId"`
	Type     string    `json:"type"`
	EntityID string    `json:"entityId"`
	Payload  any       `json:"payload"`
}
