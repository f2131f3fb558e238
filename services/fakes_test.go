package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"trello-project/microservices/task-manager/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var errStorage = errors.New("storage unavailable")

type fakeTaskStore struct {
	mu        sync.Mutex
	tasks     map[primitive.ObjectID]models.Task
	saves     int
	findErr   error
	dueErr    error
	lastEntry *models.CompletionEntry
}

func newFakeTaskStore(tasks ...models.Task) *fakeTaskStore {
	s := &fakeTaskStore{tasks: map[primitive.ObjectID]models.Task{}}
	for _, t := range tasks {
		s.tasks[t.ID] = t
	}
	return s
}

func (s *fakeTaskStore) Create(_ context.Context, task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[task.ID] = *task
	return nil
}

func (s *fakeTaskStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &t, nil
}

func (s *fakeTaskStore) FindAll(context.Context) ([]models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}
	out := make([]models.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t)
	}
	return out, nil
}

func (s *fakeTaskStore) FindDueBetween(_ context.Context, from, to time.Time) ([]models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dueErr != nil {
		return nil, s.dueErr
	}
	var out []models.Task
	for _, t := range s.tasks {
		if t.DueDate == nil || t.Status == models.StatusDone {
			continue
		}
		if !t.DueDate.Before(from) && !t.DueDate.After(to) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *fakeTaskStore) Save(_ context.Context, task *models.Task, completion *models.CompletionEntry) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	stored, ok := s.tasks[task.ID]
	if !ok {
		return nil, models.ErrNotFound
	}
	saved := *task
	saved.CompletionLog = append([]models.CompletionEntry(nil), stored.CompletionLog...)
	if completion != nil {
		saved.CompletionLog = append(saved.CompletionLog, *completion)
		s.lastEntry = completion
	}
	s.tasks[task.ID] = saved
	return &saved, nil
}

func (s *fakeTaskStore) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[id]; !ok {
		return models.ErrNotFound
	}
	delete(s.tasks, id)
	return nil
}

func (s *fakeTaskStore) modify(id primitive.ObjectID, fn func(*models.Task)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return models.ErrNotFound
	}
	fn(&t)
	s.tasks[id] = t
	return nil
}

func (s *fakeTaskStore) AddComment(_ context.Context, taskID primitive.ObjectID, comment models.Comment) error {
	return s.modify(taskID, func(t *models.Task) { t.Comments = append(t.Comments, comment) })
}

func (s *fakeTaskStore) UpdateComment(_ context.Context, taskID, commentID primitive.ObjectID, text string, at time.Time) error {
	return s.modify(taskID, func(t *models.Task) {
		for i := range t.Comments {
			if t.Comments[i].ID == commentID {
				t.Comments[i].Text = text
				t.Comments[i].UpdatedAt = at
			}
		}
	})
}

func (s *fakeTaskStore) DeleteComment(_ context.Context, taskID, commentID primitive.ObjectID) error {
	return s.modify(taskID, func(t *models.Task) {
		kept := t.Comments[:0]
		for _, c := range t.Comments {
			if c.ID != commentID {
				kept = append(kept, c)
			}
		}
		t.Comments = kept
	})
}

func (s *fakeTaskStore) AddAttachment(_ context.Context, taskID primitive.ObjectID, attachment models.Attachment) error {
	return s.modify(taskID, func(t *models.Task) { t.Attachments = append(t.Attachments, attachment) })
}

func (s *fakeTaskStore) DeleteAttachment(_ context.Context, taskID, attachmentID primitive.ObjectID) error {
	return s.modify(taskID, func(t *models.Task) {
		kept := t.Attachments[:0]
		for _, a := range t.Attachments {
			if a.ID != attachmentID {
				kept = append(kept, a)
			}
		}
		t.Attachments = kept
	})
}

type fakeTeamStore struct {
	mu    sync.Mutex
	teams map[primitive.ObjectID]models.Team
}

func newFakeTeamStore(teams ...models.Team) *fakeTeamStore {
	s := &fakeTeamStore{teams: map[primitive.ObjectID]models.Team{}}
	for _, t := range teams {
		s.teams[t.ID] = t
	}
	return s
}

func (s *fakeTeamStore) Create(_ context.Context, team *models.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.teams {
		if t.Name == team.Name {
			return models.ErrDuplicate
		}
	}
	s.teams[team.ID] = *team
	return nil
}

func (s *fakeTeamStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.teams[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &t, nil
}

func (s *fakeTeamStore) FindAll(context.Context) ([]models.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Team, 0, len(s.teams))
	for _, t := range s.teams {
		out = append(out, t)
	}
	return out, nil
}

func (s *fakeTeamStore) FindByUser(_ context.Context, userID primitive.ObjectID) ([]models.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Team
	for _, t := range s.teams {
		if t.HasMember(userID) || t.HasManager(userID) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *fakeTeamStore) Update(_ context.Context, team *models.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.teams[team.ID]; !ok {
		return models.ErrNotFound
	}
	s.teams[team.ID] = *team
	return nil
}

func (s *fakeTeamStore) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.teams, id)
	return nil
}

func (s *fakeTeamStore) modify(id primitive.ObjectID, fn func(*models.Team)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.teams[id]
	if !ok {
		return models.ErrNotFound
	}
	fn(&t)
	s.teams[id] = t
	return nil
}

func addID(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}

func removeID(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	out := []primitive.ObjectID{}
	for _, existing := range ids {
		if existing != id {
			out = append(out, existing)
		}
	}
	return out
}

func (s *fakeTeamStore) AddMember(_ context.Context, teamID, userID primitive.ObjectID) error {
	return s.modify(teamID, func(t *models.Team) { t.Members = addID(t.Members, userID) })
}

func (s *fakeTeamStore) RemoveMember(_ context.Context, teamID, userID primitive.ObjectID) error {
	return s.modify(teamID, func(t *models.Team) { t.Members = removeID(t.Members, userID) })
}

func (s *fakeTeamStore) AddManager(_ context.Context, teamID, userID primitive.ObjectID) error {
	return s.modify(teamID, func(t *models.Team) { t.Managers = addID(t.Managers, userID) })
}

func (s *fakeTeamStore) RemoveManager(_ context.Context, teamID, userID primitive.ObjectID) error {
	return s.modify(teamID, func(t *models.Team) { t.Managers = removeID(t.Managers, userID) })
}

type fakeUserStore struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]models.User
}

func newFakeUserStore(users ...models.User) *fakeUserStore {
	s := &fakeUserStore{users: map[primitive.ObjectID]models.User{}}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *fakeUserStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == user.Username || u.Email == user.Email {
			return models.ErrDuplicate
		}
	}
	s.users[user.ID] = *user
	return nil
}

func (s *fakeUserStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &u, nil
}

func (s *fakeUserStore) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.User
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *fakeUserStore) FindByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, models.ErrNotFound
}

func (s *fakeUserStore) FindByRole(_ context.Context, role models.Role) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.User
	for _, u := range s.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *fakeUserStore) FindAll(context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	return out, nil
}

type reminderKey struct {
	task, user primitive.ObjectID
	kind       models.ReminderType
}

type fakeReminderStore struct {
	mu        sync.Mutex
	records   map[reminderKey]models.Reminder
	existsErr error
	createErr error
	// hideExisting makes Exists report false so Create hits the unique constraint.
	hideExisting bool
}

func newFakeReminderStore() *fakeReminderStore {
	return &fakeReminderStore{records: map[reminderKey]models.Reminder{}}
}

func (s *fakeReminderStore) Exists(_ context.Context, taskID, userID primitive.ObjectID, kind models.ReminderType) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.existsErr != nil {
		return false, s.existsErr
	}
	if s.hideExisting {
		return false, nil
	}
	_, ok := s.records[reminderKey{taskID, userID, kind}]
	return ok, nil
}

func (s *fakeReminderStore) Create(_ context.Context, r *models.Reminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	key := reminderKey{r.TaskID, r.UserID, r.Type}
	if _, ok := s.records[key]; ok {
		return models.ErrDuplicate
	}
	s.records[key] = *r
	return nil
}

func (s *fakeReminderStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

type fakeActivityStore struct {
	mu         sync.Mutex
	activities []models.Activity
	err        error
}

func (s *fakeActivityStore) Create(_ context.Context, a *models.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.activities = append(s.activities, *a)
	return nil
}

func (s *fakeActivityStore) List(_ context.Context, taskID *primitive.ObjectID, limit int64) ([]models.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Activity
	for _, a := range s.activities {
		if taskID != nil && (a.TaskID == nil || *a.TaskID != *taskID) {
			continue
		}
		out = append(out, a)
		if int64(len(out)) == limit {
			break
		}
	}
	return out, nil
}

func (s *fakeActivityStore) actions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.activities))
	for _, a := range s.activities {
		out = append(out, a.Action)
	}
	return out
}

type sentMail struct {
	to, subject, body string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	fail map[string]error
}

func (m *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail[to]; err != nil {
		return err
	}
	m.sent = append(m.sent, sentMail{to, subject, body})
	return nil
}

func (m *fakeMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages map[string][]string
}

func (n *recordingNotifier) Notify(user models.User, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.messages == nil {
		n.messages = map[string][]string{}
	}
	n.messages[user.Username] = append(n.messages[user.Username], message)
}

type fakeMessageStore struct {
	messages []models.Message
}

func (s *fakeMessageStore) Create(_ context.Context, m *models.Message) error {
	s.messages = append(s.messages, *m)
	return nil
}

func (s *fakeMessageStore) ListByTeam(_ context.Context, teamID primitive.ObjectID, limit int64) ([]models.Message, error) {
	var out []models.Message
	for _, m := range s.messages {
		if m.TeamID == teamID {
			out = append(out, m)
		}
	}
	if int64(len(out)) > limit {
		out = out[int64(len(out))-limit:]
	}
	return out, nil
}

func ptrTime(t time.Time) *time.Time { return &t }

func ptrID(id primitive.ObjectID) *primitive.ObjectID { return &id }
