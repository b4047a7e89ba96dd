// Package score holds the prioritization rules: task scores blend priority
// with due-date urgency, and completed tasks earn alignment points that feed
// the user's level and streak.
package score

import (
	"math"
	"time"

	"aurum-life/internal/model"
)

const (
	weightHigh   = 100
	weightMedium = 60
	weightLow    = 30

	// Alignment points for completing a task.
	basePoints          = 5
	taskHighBonus       = 10
	projectHighBonus    = 15
	criticalAreaBonus   = 20
	maxPointsPerTask    = 50
	criticalImportance  = 5
	urgencyDecayPerDay  = 10
	priorityScoreWeight = 0.6
	urgencyScoreWeight  = 0.4
)

func PriorityWeight(p model.Priority) int {
	switch p {
	case model.PriorityHigh:
		return weightHigh
	case model.PriorityLow:
		return weightLow
	default:
		return weightMedium
	}
}

// UrgencyScore rates a due date from 0 to 100. Overdue and due-today tasks
// score 100; the score decays by 10 per day of slack. Tasks without a due
// date score 0. Dates are compared in UTC.
func UrgencyScore(due *model.Date, now time.Time) int {
	if due == nil {
		return 0
	}
	d := due.Time()
	if d.IsZero() {
		return 0
	}
	today := midnightUTC(now)
	days := int(d.Sub(today).Hours() / 24)
	if days <= 0 {
		return 100
	}
	s := 100 - urgencyDecayPerDay*days
	if s < 0 {
		return 0
	}
	return s
}

// TaskScore is the blended ordering score used by the today view and task
// listings, rounded to two decimals.
func TaskScore(t model.Task, now time.Time) float64 {
	s := priorityScoreWeight*float64(PriorityWeight(t.Priority)) +
		urgencyScoreWeight*float64(UrgencyScore(t.Due, now))
	return math.Round(s*100) / 100
}

// AlignmentPoints computes the reward for completing a task: a base award
// plus bonuses when the task or its project is high priority and when the
// area is rated critical, capped per task.
func AlignmentPoints(taskPriority, projectPriority model.Priority, areaImportance int) int {
	points := basePoints
	if taskPriority == model.PriorityHigh {
		points += taskHighBonus
	}
	if projectPriority == model.PriorityHigh {
		points += projectHighBonus
	}
	if areaImportance == criticalImportance {
		points += criticalAreaBonus
	}
	if points > maxPointsPerTask {
		points = maxPointsPerTask
	}
	return points
}

// LevelForPoints maps lifetime points to a level, one level per hundred
// points starting at level 1.
func LevelForPoints(totalPoints int) int {
	if totalPoints < 0 {
		totalPoints = 0
	}
	return totalPoints/100 + 1
}

func midnightUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
