package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"trello-project/microservices/task-manager/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type reminderFixture struct {
	scanner   *ReminderScanner
	tasks     *fakeTaskStore
	teams     *fakeTeamStore
	users     *fakeUserStore
	reminders *fakeReminderStore
	mailer    *fakeMailer
	notifier  *recordingNotifier
	now       time.Time
}

func newReminderFixture() *reminderFixture {
	f := &reminderFixture{
		tasks:     newFakeTaskStore(),
		teams:     newFakeTeamStore(),
		users:     newFakeUserStore(),
		reminders: newFakeReminderStore(),
		mailer:    &fakeMailer{fail: map[string]error{}},
		notifier:  &recordingNotifier{},
		now:       time.Date(2024, 4, 10, 8, 0, 0, 0, time.UTC),
	}
	f.scanner = NewReminderScanner(f.tasks, f.teams, f.users, f.reminders, f.mailer, f.notifier, 24*time.Hour, time.Hour)
	f.scanner.now = func() time.Time { return f.now }
	return f
}

func (f *reminderFixture) addUser(name string) models.User {
	u := models.User{ID: primitive.NewObjectID(), Username: name, Email: name + "@example.com", Role: models.RoleUser}
	f.users.users[u.ID] = u
	return u
}

func (f *reminderFixture) addTask(due time.Time, mutate func(*models.Task)) models.Task {
	t := models.Task{ID: primitive.NewObjectID(), Title: "Deploy", Status: models.StatusTodo, DueDate: &due}
	if mutate != nil {
		mutate(&t)
	}
	f.tasks.tasks[t.ID] = t
	return t
}

func TestScanSendsOneReminderPerPair(t *testing.T) {
	f := newReminderFixture()
	ana := f.addUser("ana")
	task := f.addTask(f.now.Add(3*time.Hour), func(t *models.Task) { t.AssignedTo = ptrID(ana.ID) })

	matches := f.scanner.Scan(context.Background())
	if len(matches) != 1 || matches[0].TaskID != task.ID || matches[0].RemindersSent != 1 {
		t.Fatalf("unexpected matches %+v", matches)
	}
	if f.mailer.count() != 1 {
		t.Fatalf("sent %d emails, want 1", f.mailer.count())
	}

	again := f.scanner.Scan(context.Background())
	if f.mailer.count() != 1 {
		t.Errorf("second pass sent another email (total %d)", f.mailer.count())
	}
	if len(again) != 1 || again[0].RemindersSent != 0 {
		t.Errorf("unexpected second pass %+v", again)
	}
	if f.reminders.count() != 1 {
		t.Errorf("recorded %d reminders, want 1", f.reminders.count())
	}
	if len(f.notifier.messages["ana"]) != 1 {
		t.Errorf("in-app notifications = %v", f.notifier.messages)
	}
}

func TestScanIgnoresTasksOutsideWindowOrDone(t *testing.T) {
	f := newReminderFixture()
	ana := f.addUser("ana")
	assign := func(t *models.Task) { t.AssignedTo = ptrID(ana.ID) }
	f.addTask(f.now.Add(48*time.Hour), assign)
	f.addTask(f.now.Add(-time.Hour), assign)
	f.addTask(f.now.Add(time.Hour), func(t *models.Task) {
		assign(t)
		t.Status = models.StatusDone
	})

	if matches := f.scanner.Scan(context.Background()); len(matches) != 0 {
		t.Errorf("expected no matches, got %+v", matches)
	}
	if f.mailer.count() != 0 {
		t.Errorf("sent %d emails", f.mailer.count())
	}
}

func TestScanRemindsEveryTeamMember(t *testing.T) {
	f := newReminderFixture()
	ana, ivan, lead := f.addUser("ana"), f.addUser("ivan"), f.addUser("lead")
	team := models.Team{ID: primitive.NewObjectID(), Name: "Core", Members: []primitive.ObjectID{ana.ID, ivan.ID}, Managers: []primitive.ObjectID{lead.ID}}
	f.teams.teams[team.ID] = team
	task := f.addTask(f.now.Add(time.Hour), func(t *models.Task) {
		t.IsTeamTask = true
		t.AssignedTeam = ptrID(team.ID)
		t.AssignedTo = ptrID(ana.ID)
	})

	matches := f.scanner.Scan(context.Background())
	if len(matches) != 1 || matches[0].RemindersSent != 3 {
		t.Fatalf("unexpected matches %+v", matches)
	}
	// ana gets both the individual and the team reminder
	for _, key := range []reminderKey{
		{task.ID, ana.ID, models.ReminderDueSoon},
		{task.ID, ana.ID, models.ReminderDueSoonTeam},
		{task.ID, ivan.ID, models.ReminderDueSoonTeam},
	} {
		if _, ok := f.reminders.records[key]; !ok {
			t.Errorf("missing reminder %+v", key)
		}
	}
	if f.mailer.count() != 3 {
		t.Errorf("sent %d emails, want 3", f.mailer.count())
	}
}

func TestScanSwallowsDuplicateOnRecord(t *testing.T) {
	f := newReminderFixture()
	ana := f.addUser("ana")
	task := f.addTask(f.now.Add(time.Hour), func(t *models.Task) { t.AssignedTo = ptrID(ana.ID) })
	f.reminders.records[reminderKey{task.ID, ana.ID, models.ReminderDueSoon}] = models.Reminder{}
	f.reminders.hideExisting = true

	matches := f.scanner.Scan(context.Background())
	if len(matches) != 1 {
		t.Fatalf("unexpected matches %+v", matches)
	}
	if f.reminders.count() != 1 {
		t.Errorf("records = %d, want 1", f.reminders.count())
	}
}

func TestScanContainsErrors(t *testing.T) {
	t.Run("query failure yields empty result", func(t *testing.T) {
		f := newReminderFixture()
		f.tasks.dueErr = errStorage
		matches := f.scanner.Scan(context.Background())
		if matches == nil || len(matches) != 0 {
			t.Errorf("expected empty non-nil result, got %#v", matches)
		}
	})

	t.Run("mail failure does not abort the pass", func(t *testing.T) {
		f := newReminderFixture()
		ana, ivan := f.addUser("ana"), f.addUser("ivan")
		f.mailer.fail[ana.Email] = errors.New("smtp down")
		f.addTask(f.now.Add(time.Hour), func(t *models.Task) { t.AssignedTo = ptrID(ana.ID) })
		f.addTask(f.now.Add(2*time.Hour), func(t *models.Task) { t.AssignedTo = ptrID(ivan.ID) })

		matches := f.scanner.Scan(context.Background())
		if len(matches) != 2 {
			t.Fatalf("matches = %d, want 2", len(matches))
		}
		if f.mailer.count() != 1 || f.reminders.count() != 1 {
			t.Errorf("emails=%d records=%d, want 1/1", f.mailer.count(), f.reminders.count())
		}
	})

	t.Run("record failure is logged", func(t *testing.T) {
		f := newReminderFixture()
		ana := f.addUser("ana")
		f.reminders.createErr = fmt.Errorf("write: %w", errStorage)
		f.addTask(f.now.Add(time.Hour), func(t *models.Task) { t.AssignedTo = ptrID(ana.ID) })

		if matches := f.scanner.Scan(context.Background()); len(matches) != 1 {
			t.Fatalf("matches = %d, want 1", len(matches))
		}
	})

	t.Run("missing team is skipped", func(t *testing.T) {
		f := newReminderFixture()
		f.addTask(f.now.Add(time.Hour), func(t *models.Task) {
			t.IsTeamTask = true
			t.AssignedTeam = ptrID(primitive.NewObjectID())
		})
		if matches := f.scanner.Scan(context.Background()); len(matches) != 1 || matches[0].RemindersSent != 0 {
			t.Errorf("unexpected matches %+v", matches)
		}
	})
}

func TestScannerStartStop(t *testing.T) {
	f := newReminderFixture()
	ana := f.addUser("ana")
	due := time.Now().Add(time.Hour)
	f.addTask(due, func(t *models.Task) { t.AssignedTo = ptrID(ana.ID) })
	f.scanner.now = time.Now
	f.scanner.interval = 10 * time.Millisecond

	f.scanner.Start(context.Background())
	f.scanner.Start(context.Background())

	deadline := time.Now().Add(2 * time.Second)
	for f.mailer.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	f.scanner.Stop()
	f.scanner.Stop()

	if f.mailer.count() != 1 {
		t.Errorf("sent %d emails, want 1", f.mailer.count())
	}
}

func TestReminderSubjectIsSingleLine(t *testing.T) {
	due := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	task := &models.Task{Title: "Fix bug\r\nBcc: victim@evil.example", DueDate: &due, Priority: models.PriorityLow}
	user := &models.User{Username: "ana"}

	subject, body := reminderMessage(task, user, models.ReminderDueSoon)
	if strings.ContainsAny(subject, "\r\n") {
		t.Fatalf("subject spans lines: %q", subject)
	}
	if subject != "Reminder: task 'Fix bug Bcc: victim@evil.example' is due soon" {
		t.Errorf("subject = %q", subject)
	}
	if !strings.HasPrefix(body, "Hello ana,") {
		t.Errorf("body = %q", body)
	}
}
