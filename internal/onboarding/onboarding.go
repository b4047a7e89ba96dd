// Package onboarding seeds a fresh account with a persona's starter
// hierarchy.
//
// Templates instantiate through the mutate layer, so every seeded entity
// gets fresh ids, correct parent refs, and ranks exactly as if the user
// had created them by hand.
package onboarding

import (
	"fmt"
	"strings"

	"aurum-life/internal/mutate"
	"aurum-life/internal/store"
)

type AlreadyOnboardedError struct {
	UserID string
}

func (e AlreadyOnboardedError) Error() string {
	return fmt.Sprintf("user already onboarded: %s", e.UserID)
}

type UnknownPersonaError struct {
	ID string
}

func (e UnknownPersonaError) Error() string {
	return fmt.Sprintf("unknown persona: %s", e.ID)
}

// Persona is one starter template.
type Persona struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Pillars     []PillarTemplate `json:"pillars"`
}

type PillarTemplate struct {
	Name              string         `json:"name"`
	Description       string         `json:"description,omitempty"`
	Icon              string         `json:"icon,omitempty"`
	Color             string         `json:"color,omitempty"`
	TimeAllocationPct int            `json:"timeAllocationPct,omitempty"`
	Areas             []AreaTemplate `json:"areas,omitempty"`
}

type AreaTemplate struct {
	Name       string            `json:"name"`
	Icon       string            `json:"icon,omitempty"`
	Importance int               `json:"importance,omitempty"`
	Projects   []ProjectTemplate `json:"projects,omitempty"`
}

type ProjectTemplate struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Priority    string         `json:"priority,omitempty"`
	Tasks       []TaskTemplate `json:"tasks,omitempty"`
}

type TaskTemplate struct {
	Name             string `json:"name"`
	Priority         string `json:"priority,omitempty"`
	EstimatedMinutes int    `json:"estimatedMinutes,omitempty"`
}

// Personas lists the built-in templates. The slice is freshly built per
// call, so callers may modify their copy freely.
func Personas() []Persona {
	return []Persona{
		{
			ID:          "wellness",
			Name:        "Wellness",
			Description: "Health first: movement, rest, and what you eat.",
			Pillars: []PillarTemplate{
				{
					Name: "Health", Icon: "💪", Color: "#4CAF50", TimeAllocationPct: 40,
					Areas: []AreaTemplate{
						{
							Name: "Fitness", Icon: "🏃", Importance: 5,
							Projects: []ProjectTemplate{
								{
									Name: "Build a running habit", Priority: "high",
									Tasks: []TaskTemplate{
										{Name: "Run 20 minutes", Priority: "high", EstimatedMinutes: 20},
										{Name: "Stretch after the run", EstimatedMinutes: 10},
									},
								},
							},
						},
						{
							Name: "Nutrition", Icon: "🥗", Importance: 4,
							Projects: []ProjectTemplate{
								{
									Name: "Cook more at home", Priority: "medium",
									Tasks: []TaskTemplate{
										{Name: "Plan three dinners", EstimatedMinutes: 15},
										{Name: "Grocery run", EstimatedMinutes: 45},
									},
								},
							},
						},
					},
				},
				{
					Name: "Rest", Icon: "😴", Color: "#7E57C2", TimeAllocationPct: 20,
					Areas: []AreaTemplate{
						{
							Name: "Sleep", Icon: "🌙", Importance: 4,
							Projects: []ProjectTemplate{
								{
									Name: "Fix the sleep schedule", Priority: "medium",
									Tasks: []TaskTemplate{
										{Name: "Screens off by 22:00"},
									},
								},
							},
						},
					},
				},
			},
		},
		{
			ID:          "builder",
			Name:        "Builder",
			Description: "Ship a side project without letting the rest slip.",
			Pillars: []PillarTemplate{
				{
					Name: "Craft", Icon: "🛠️", Color: "#FF7043", TimeAllocationPct: 35,
					Areas: []AreaTemplate{
						{
							Name: "Side project", Icon: "🚀", Importance: 5,
							Projects: []ProjectTemplate{
								{
									Name: "Ship the MVP", Priority: "high",
									Tasks: []TaskTemplate{
										{Name: "Write the one-page plan", Priority: "high", EstimatedMinutes: 60},
										{Name: "Set up the repo", EstimatedMinutes: 30},
										{Name: "First vertical slice", Priority: "high", EstimatedMinutes: 240},
									},
								},
							},
						},
						{
							Name: "Learning", Icon: "📚", Importance: 3,
							Projects: []ProjectTemplate{
								{
									Name: "One course this quarter", Priority: "medium",
									Tasks: []TaskTemplate{
										{Name: "Pick the course", EstimatedMinutes: 30},
									},
								},
							},
						},
					},
				},
				{
					Name: "Health", Icon: "💪", Color: "#4CAF50", TimeAllocationPct: 25,
					Areas: []AreaTemplate{
						{
							Name: "Movement", Icon: "🏃", Importance: 4,
							Projects: []ProjectTemplate{
								{
									Name: "Counterbalance the desk", Priority: "medium",
									Tasks: []TaskTemplate{
										{Name: "Walk 30 minutes", EstimatedMinutes: 30},
									},
								},
							},
						},
					},
				},
			},
		},
		{
			ID:          "student",
			Name:        "Student",
			Description: "Coursework, deadlines, and a life outside the library.",
			Pillars: []PillarTemplate{
				{
					Name: "Studies", Icon: "🎓", Color: "#42A5F5", TimeAllocationPct: 45,
					Areas: []AreaTemplate{
						{
							Name: "Coursework", Icon: "📝", Importance: 5,
							Projects: []ProjectTemplate{
								{
									Name: "Stay ahead of deadlines", Priority: "high",
									Tasks: []TaskTemplate{
										{Name: "List all due dates this term", Priority: "high", EstimatedMinutes: 30},
										{Name: "Block weekly review slot", EstimatedMinutes: 15},
									},
								},
							},
						},
						{
							Name: "Exams", Icon: "📖", Importance: 4,
							Projects: []ProjectTemplate{
								{
									Name: "Spaced revision", Priority: "medium",
									Tasks: []TaskTemplate{
										{Name: "Make flashcards for week 1", EstimatedMinutes: 45},
									},
								},
							},
						},
					},
				},
				{
					Name: "Life", Icon: "🌱", Color: "#66BB6A", TimeAllocationPct: 25,
					Areas: []AreaTemplate{
						{
							Name: "Social", Icon: "🎉", Importance: 3,
							Projects: []ProjectTemplate{
								{
									Name: "Keep one evening free", Priority: "low",
									Tasks: []TaskTemplate{
										{Name: "Plan something for Friday"},
									},
								},
							},
						},
					},
				},
			},
		},
	}
}

// Find returns one persona by id.
func Find(id string) (Persona, bool) {
	id = strings.ToLower(strings.TrimSpace(id))
	for _, p := range Personas() {
		if p.ID == id {
			return p, true
		}
	}
	return Persona{}, false
}

// ApplyResult reports what a persona instantiated.
type ApplyResult struct {
	Persona  string         `json:"persona"`
	Pillars  int            `json:"pillars"`
	Areas    int            `json:"areas"`
	Projects int            `json:"projects"`
	Tasks    int            `json:"tasks"`
	Payload  map[string]any `json:"-"`
}

// Apply instantiates a persona for the user and marks onboarding done.
// A second apply fails with AlreadyOnboardedError unless force is set.
// The caller saves db and appends the onboarding.applied event.
func Apply(db *store.DB, userID, personaID string, force bool) (ApplyResult, error) {
	userID = strings.TrimSpace(userID)
	u, ok := db.FindUser(userID)
	if !ok {
		return ApplyResult{}, mutate.NotFoundError{Kind: "user", ID: userID}
	}
	if u.HasCompletedOnboarding && !force {
		return ApplyResult{}, AlreadyOnboardedError{UserID: userID}
	}
	persona, ok := Find(personaID)
	if !ok {
		return ApplyResult{}, UnknownPersonaError{ID: strings.TrimSpace(personaID)}
	}

	res := ApplyResult{Persona: persona.ID}
	for _, pt := range persona.Pillars {
		pr, err := mutate.CreatePillar(db, userID, mutate.CreatePillarParams{
			Name:              pt.Name,
			Description:       pt.Description,
			Icon:              pt.Icon,
			Color:             pt.Color,
			TimeAllocationPct: pt.TimeAllocationPct,
		})
		if err != nil {
			return ApplyResult{}, err
		}
		res.Pillars++
		for _, at := range pt.Areas {
			ar, err := mutate.CreateArea(db, userID, mutate.CreateAreaParams{
				PillarID:   pr.Pillar.ID,
				Name:       at.Name,
				Icon:       at.Icon,
				Importance: at.Importance,
			})
			if err != nil {
				return ApplyResult{}, err
			}
			res.Areas++
			for _, jt := range at.Projects {
				jr, err := mutate.CreateProject(db, userID, mutate.CreateProjectParams{
					AreaID:      ar.Area.ID,
					Name:        jt.Name,
					Description: jt.Description,
					Priority:    jt.Priority,
				})
				if err != nil {
					return ApplyResult{}, err
				}
				res.Projects++
				for _, tt := range jt.Tasks {
					if _, err := mutate.CreateTask(db, userID, mutate.CreateTaskParams{
						ProjectID:        jr.Project.ID,
						Name:             tt.Name,
						Priority:         tt.Priority,
						EstimatedMinutes: tt.EstimatedMinutes,
					}); err != nil {
						return ApplyResult{}, err
					}
					res.Tasks++
				}
			}
		}
	}

	u.HasCompletedOnboarding = true
	db.MarkDirty()

	res.Payload = map[string]any{
		"persona":  res.Persona,
		"pillars":  res.Pillars,
		"areas":    res.Areas,
		"projects": res.Projects,
		"tasks":    res.Tasks,
		"force":    force,
	}
	return res, nil
}
