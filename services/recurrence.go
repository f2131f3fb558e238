package services

import (
	"time"

	"trello-project/microservices/task-manager/models"
)

// NextDueDate advances from by one cadence step. Unknown cadences leave it unchanged.
func NextDueDate(from time.Time, pattern models.RecurrencePattern) time.Time {
	switch pattern {
	case models.RecurrenceDaily:
		return from.Add(24 * time.Hour)
	case models.RecurrenceWeekly:
		return from.AddDate(0, 0, 7)
	case models.RecurrenceFortnight:
		return from.AddDate(0, 0, 14)
	case models.RecurrenceMonthly:
		return from.AddDate(0, 1, 0)
	}
	return from
}

func calendarDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// reachedEnd reports whether due falls on (or past) the calendar day of end.
func reachedEnd(due, end time.Time) bool {
	return !calendarDay(due).Before(calendarDay(end))
}

// planCompletion applies the rollover rules to next, the task with the update
// already merged in. It only acts when the update moves a not-yet-done task to
// done. On rollover it restores status and priority from prev, advances the
// due date and returns the completion entry to append; on finalization next
// keeps status done and the returned entry is nil.
func planCompletion(prev, next *models.Task, now time.Time, completedBy string) (*models.CompletionEntry, bool) {
	if next.Status != models.StatusDone || prev.Status == models.StatusDone {
		return nil, false
	}

	pattern := next.RecurrencePattern
	if !next.RollsOver() {
		if !prev.RollsOver() {
			return nil, false
		}
		pattern = prev.RecurrencePattern
	}

	if next.DueDate != nil && next.RecurrenceEndDate != nil && reachedEnd(*next.DueDate, *next.RecurrenceEndDate) {
		return nil, false
	}

	base := now
	if next.DueDate != nil {
		base = *next.DueDate
	}
	due := NextDueDate(base, pattern)

	next.Status = prev.Status
	next.Priority = prev.Priority
	next.DueDate = &due

	return &models.CompletionEntry{CompletedAt: now, CompletedBy: completedBy}, true
}
