package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"trello-project/microservices/task-manager/logging"
	"trello-project/microservices/task-manager/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReminderScanner periodically emails the people responsible for tasks due
// within the configured window. It owns its ticker goroutine; Start and Stop
// are tied to the process lifecycle.
type ReminderScanner struct {
	tasks     TaskStore
	teams     TeamStore
	users     UserStore
	reminders ReminderStore
	mailer    Mailer
	notifier  Notifier
	window    time.Duration
	interval  time.Duration
	now       func() time.Time

	// pass serializes scan passes between the ticker and manual triggers.
	pass sync.Mutex

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewReminderScanner(tasks TaskStore, teams TeamStore, users UserStore, reminders ReminderStore, mailer Mailer, notifier Notifier, window, interval time.Duration) *ReminderScanner {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &ReminderScanner{
		tasks:     tasks,
		teams:     teams,
		users:     users,
		reminders: reminders,
		mailer:    mailer,
		notifier:  notifier,
		window:    window,
		interval:  interval,
		now:       time.Now,
	}
}

// Start runs one pass immediately and then one per interval until Stop is
// called or ctx is cancelled. Calling Start on a running scanner is a no-op.
func (s *ReminderScanner) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	logging.Logger.Infof("Event ID: REMINDERS_STARTED, Description: Reminder scanner started (window %s, interval %s)", s.window, s.interval)

	go func(done chan struct{}) {
		defer close(done)
		s.Scan(ctx)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.Scan(ctx)
			case <-ctx.Done():
				logging.Logger.Info("Event ID: REMINDERS_STOPPED, Description: Reminder scanner stopped")
				return
			}
		}
	}(s.done)
}

// Stop cancels the ticker and waits for an in-flight pass to finish.
func (s *ReminderScanner) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Scan runs one reminder pass and returns the tasks it matched. Errors never
// leave this method; a failed query yields an empty result.
func (s *ReminderScanner) Scan(ctx context.Context) []models.ReminderMatch {
	s.pass.Lock()
	defer s.pass.Unlock()

	start := s.now()
	defer func() { reminderPassDuration.Observe(time.Since(start).Seconds()) }()

	tasks, err := s.tasks.FindDueBetween(ctx, start, start.Add(s.window))
	if err != nil {
		logging.Logger.Errorf("Event ID: REMINDER_QUERY_FAILED, Description: Failed to load due tasks: %v", err)
		return []models.ReminderMatch{}
	}

	matches := make([]models.ReminderMatch, 0, len(tasks))
	for i := range tasks {
		task := &tasks[i]
		if task.Status == models.StatusDone || task.DueDate == nil {
			continue
		}
		match := models.ReminderMatch{
			TaskID:     task.ID,
			Title:      task.Title,
			DueDate:    *task.DueDate,
			IsTeamTask: task.IsTeamTask,
		}
		if task.AssignedTo != nil {
			match.RemindersSent += s.remindUser(ctx, task, *task.AssignedTo, models.ReminderDueSoon)
		}
		if task.IsTeamTask && task.AssignedTeam != nil {
			match.RemindersSent += s.remindTeam(ctx, task, *task.AssignedTeam)
		}
		matches = append(matches, match)
	}

	if len(matches) > 0 {
		logging.Logger.Infof("Event ID: REMINDER_PASS_DONE, Description: %d due tasks matched", len(matches))
	}
	return matches
}

func (s *ReminderScanner) remindTeam(ctx context.Context, task *models.Task, teamID primitive.ObjectID) int {
	team, err := s.teams.FindByID(ctx, teamID)
	if err != nil {
		logging.Logger.Warnf("Event ID: REMINDER_TEAM_LOOKUP_FAILED, Description: Team %s for task %s: %v", teamID.Hex(), task.ID.Hex(), err)
		return 0
	}
	sent := 0
	for _, memberID := range team.Members {
		sent += s.remindUser(ctx, task, memberID, models.ReminderDueSoonTeam)
	}
	return sent
}

// remindUser runs the check, send, record cycle for one recipient and
// returns 1 when an email went out.
func (s *ReminderScanner) remindUser(ctx context.Context, task *models.Task, userID primitive.ObjectID, kind models.ReminderType) int {
	exists, err := s.reminders.Exists(ctx, task.ID, userID, kind)
	if err != nil {
		logging.Logger.Warnf("Event ID: REMINDER_LOOKUP_FAILED, Description: Task %s user %s: %v", task.ID.Hex(), userID.Hex(), err)
		remindersTotal.WithLabelValues(string(kind), outcomeFailed).Inc()
		return 0
	}
	if exists {
		remindersTotal.WithLabelValues(string(kind), outcomeSkipped).Inc()
		return 0
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		logging.Logger.Warnf("Event ID: REMINDER_USER_LOOKUP_FAILED, Description: User %s: %v", userID.Hex(), err)
		remindersTotal.WithLabelValues(string(kind), outcomeFailed).Inc()
		return 0
	}
	if user.Email == "" {
		return 0
	}

	subject, body := reminderMessage(task, user, kind)
	if err := s.mailer.Send(ctx, user.Email, subject, body); err != nil {
		logging.Logger.Errorf("Event ID: REMINDER_SEND_FAILED, Description: Reminder for task %s to %s: %v", task.ID.Hex(), user.Email, err)
		remindersTotal.WithLabelValues(string(kind), outcomeFailed).Inc()
		return 0
	}

	reminder := &models.Reminder{
		ID:     primitive.NewObjectID(),
		TaskID: task.ID,
		UserID: userID,
		Type:   kind,
		SentAt: s.now(),
	}
	if err := s.reminders.Create(ctx, reminder); err != nil {
		if errors.Is(err, models.ErrDuplicate) {
			remindersTotal.WithLabelValues(string(kind), outcomeDuplicate).Inc()
		} else {
			logging.Logger.Errorf("Event ID: REMINDER_RECORD_FAILED, Description: Task %s user %s: %v", task.ID.Hex(), userID.Hex(), err)
		}
	}
	remindersTotal.WithLabelValues(string(kind), outcomeSent).Inc()
	s.notifier.Notify(*user, subject)
	return 1
}

func reminderMessage(task *models.Task, user *models.User, kind models.ReminderType) (string, string) {
	due := task.DueDate.Format("02 Jan 2006 15:04 MST")
	// Titles are free text; the subject must stay a single header line.
	subject := fmt.Sprintf("Reminder: task '%s' is due soon", strings.Join(strings.Fields(task.Title), " "))
	body := fmt.Sprintf("Hello %s,\n\nThe task '%s' is due on %s.", user.Username, task.Title, due)
	if kind == models.ReminderDueSoonTeam {
		body = fmt.Sprintf("Hello %s,\n\nYour team task '%s' is due on %s.", user.Username, task.Title, due)
	}
	if task.Priority == models.PriorityHigh {
		body += "\nThis task has high priority."
	}
	return subject, body + "\n"
}
