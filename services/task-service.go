package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"trello-project/microservices/task-manager/logging"
	"trello-project/microservices/task-manager/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TaskService struct {
	tasks      TaskStore
	teams      TeamStore
	users      UserStore
	activities *ActivityService
	notifier   Notifier
	now        func() time.Time
}

func NewTaskService(tasks TaskStore, teams TeamStore, users UserStore, activities *ActivityService, notifier Notifier) *TaskService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &TaskService{
		tasks:      tasks,
		teams:      teams,
		users:      users,
		activities: activities,
		notifier:   notifier,
		now:        time.Now,
	}
}

// parseDate accepts RFC3339 timestamps and plain calendar dates.
func parseDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, validationf("invalid date %q", value)
	}
	return &t, nil
}

func parseOptionalID(value string) (*primitive.ObjectID, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	id, err := primitive.ObjectIDFromHex(value)
	if err != nil {
		return nil, validationf("invalid id %q", value)
	}
	return &id, nil
}

func (s *TaskService) actorTeams(ctx context.Context, actor Actor) (map[primitive.ObjectID]models.Team, error) {
	teams, err := s.teams.FindByUser(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load teams for user: %w", err)
	}
	byID := make(map[primitive.ObjectID]models.Team, len(teams))
	for _, t := range teams {
		byID[t.ID] = t
	}
	return byID, nil
}

func canView(task *models.Task, actor Actor, teams map[primitive.ObjectID]models.Team) bool {
	if actor.IsAdmin() || task.CreatedBy == actor.ID {
		return true
	}
	if task.AssignedTo != nil && *task.AssignedTo == actor.ID {
		return true
	}
	if task.IsPrivate || task.AssignedTeam == nil {
		return false
	}
	team, ok := teams[*task.AssignedTeam]
	return ok && (team.HasMember(actor.ID) || team.HasManager(actor.ID))
}

func canDelete(task *models.Task, actor Actor, teams map[primitive.ObjectID]models.Team) bool {
	if actor.IsAdmin() || task.CreatedBy == actor.ID {
		return true
	}
	if task.AssignedTeam == nil {
		return false
	}
	team, ok := teams[*task.AssignedTeam]
	return ok && team.HasManager(actor.ID)
}

// resolveAssignment validates assignee and team references for a create or update.
func (s *TaskService) resolveAssignment(ctx context.Context, actor Actor, assignee, team *primitive.ObjectID) (*models.User, error) {
	var user *models.User
	if assignee != nil {
		u, err := s.users.FindByID(ctx, *assignee)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return nil, validationf("assignee %s does not exist", assignee.Hex())
			}
			return nil, err
		}
		user = u
	}
	if team != nil {
		t, err := s.teams.FindByID(ctx, *team)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return nil, validationf("team %s does not exist", team.Hex())
			}
			return nil, err
		}
		if !actor.IsAdmin() && !t.HasManager(actor.ID) && !t.HasMember(actor.ID) {
			return nil, fmt.Errorf("%w: not a member of team %s", ErrForbidden, t.Name)
		}
	}
	return user, nil
}

func (s *TaskService) CreateTask(ctx context.Context, actor Actor, in models.NewTask) (*models.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, validationf("title is required")
	}
	if in.Status == "" {
		in.Status = models.StatusTodo
	}
	if !in.Status.Valid() {
		return nil, validationf("invalid status %q", in.Status)
	}
	if in.Priority == "" {
		in.Priority = models.PriorityMedium
	}
	if !in.Priority.Valid() {
		return nil, validationf("invalid priority %q", in.Priority)
	}
	if in.RecurrencePattern == "" {
		in.RecurrencePattern = models.RecurrenceNone
	}
	if !in.RecurrencePattern.Valid() {
		return nil, validationf("invalid recurrence pattern %q", in.RecurrencePattern)
	}

	dueDate, err := parseDate(in.DueDate)
	if err != nil {
		return nil, err
	}
	assignee, err := parseOptionalID(in.AssignedTo)
	if err != nil {
		return nil, err
	}
	team, err := parseOptionalID(in.AssignedTeam)
	if err != nil {
		return nil, err
	}
	if in.IsTeamTask && team == nil {
		return nil, validationf("team task requires assignedTeam")
	}
	assignedUser, err := s.resolveAssignment(ctx, actor, assignee, team)
	if err != nil {
		return nil, err
	}

	now := s.now()
	task := &models.Task{
		ID:                primitive.NewObjectID(),
		Title:             title,
		Description:       in.Description,
		Status:            in.Status,
		Priority:          in.Priority,
		DueDate:           dueDate,
		CreatedAt:         now,
		UpdatedAt:         now,
		CreatedBy:         actor.ID,
		AssignedTo:        assignee,
		AssignedTeam:      team,
		IsTeamTask:        team != nil,
		IsRecurrent:       in.IsRecurrent,
		RecurrencePattern: models.RecurrenceNone,
		CompletionLog:     []models.CompletionEntry{},
		Comments:          []models.Comment{},
		Attachments:       []models.Attachment{},
		IsPrivate:         in.IsPrivate,
	}
	if in.IsRecurrent {
		task.RecurrencePattern = in.RecurrencePattern
		if task.RecurrenceEndDate, err = parseDate(in.RecurrenceEndDate); err != nil {
			return nil, err
		}
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	logging.Logger.Infof("Event ID: TASK_CREATED, Description: Task %s '%s' created by %s", task.ID.Hex(), task.Title, actor.DisplayName())

	s.activities.Record(ctx, actor, models.ActionCreated, task, "task created")
	if assignedUser != nil && assignedUser.ID != actor.ID {
		s.notifier.Notify(*assignedUser, fmt.Sprintf("You have been assigned to task '%s'", task.Title))
	}
	return task, nil
}

func (s *TaskService) ListTasks(ctx context.Context, actor Actor) ([]models.Task, error) {
	all, err := s.tasks.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve tasks: %w", err)
	}
	if actor.IsAdmin() {
		return all, nil
	}
	teams, err := s.actorTeams(ctx, actor)
	if err != nil {
		return nil, err
	}
	visible := make([]models.Task, 0, len(all))
	for i := range all {
		if canView(&all[i], actor, teams) {
			visible = append(visible, all[i])
		}
	}
	return visible, nil
}

// loadForActor fetches a task and checks the caller may see it.
func (s *TaskService) loadForActor(ctx context.Context, actor Actor, id primitive.ObjectID) (*models.Task, map[primitive.ObjectID]models.Team, error) {
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("task %s: %w", id.Hex(), err)
	}
	teams, err := s.actorTeams(ctx, actor)
	if err != nil {
		return nil, nil, err
	}
	if !canView(task, actor, teams) {
		return nil, nil, ErrForbidden
	}
	return task, teams, nil
}

func (s *TaskService) GetTask(ctx context.Context, actor Actor, id primitive.ObjectID) (*models.Task, error) {
	task, _, err := s.loadForActor(ctx, actor, id)
	return task, err
}

// applyUpdate merges upd into task. Recurrence fields only change while the
// task is (or becomes) recurrent.
func (s *TaskService) applyUpdate(ctx context.Context, actor Actor, task *models.Task, upd models.TaskUpdate) (*models.User, error) {
	if upd.Title != nil {
		title := strings.TrimSpace(*upd.Title)
		if title == "" {
			return nil, validationf("title cannot be empty")
		}
		task.Title = title
	}
	if upd.Description != nil {
		task.Description = *upd.Description
	}
	if upd.Status != nil {
		if !upd.Status.Valid() {
			return nil, validationf("invalid status %q", *upd.Status)
		}
		task.Status = *upd.Status
	}
	if upd.Priority != nil {
		if !upd.Priority.Valid() {
			return nil, validationf("invalid priority %q", *upd.Priority)
		}
		task.Priority = *upd.Priority
	}
	if upd.DueDate != nil {
		due, err := parseDate(*upd.DueDate)
		if err != nil {
			return nil, err
		}
		task.DueDate = due
	}
	if upd.IsPrivate != nil {
		task.IsPrivate = *upd.IsPrivate
	}

	var newAssignee *models.User
	if upd.AssignedTo != nil || upd.AssignedTeam != nil {
		assignee, team := task.AssignedTo, task.AssignedTeam
		var err error
		if upd.AssignedTo != nil {
			if assignee, err = parseOptionalID(*upd.AssignedTo); err != nil {
				return nil, err
			}
		}
		if upd.AssignedTeam != nil {
			if team, err = parseOptionalID(*upd.AssignedTeam); err != nil {
				return nil, err
			}
		}
		changedAssignee := assignee != nil && (task.AssignedTo == nil || *task.AssignedTo != *assignee)
		changedTeam := team != nil && (task.AssignedTeam == nil || *task.AssignedTeam != *team)
		var checkUser, checkTeam *primitive.ObjectID
		if changedAssignee {
			checkUser = assignee
		}
		if changedTeam {
			checkTeam = team
		}
		if newAssignee, err = s.resolveAssignment(ctx, actor, checkUser, checkTeam); err != nil {
			return nil, err
		}
		task.AssignedTo, task.AssignedTeam = assignee, team
	}
	if upd.IsTeamTask != nil {
		if *upd.IsTeamTask && task.AssignedTeam == nil {
			return nil, validationf("team task requires assignedTeam")
		}
		task.IsTeamTask = *upd.IsTeamTask
	} else {
		task.IsTeamTask = task.AssignedTeam != nil
	}

	if upd.IsRecurrent != nil {
		task.IsRecurrent = *upd.IsRecurrent
	}
	if task.IsRecurrent {
		if upd.RecurrencePattern != nil {
			if !upd.RecurrencePattern.Valid() {
				return nil, validationf("invalid recurrence pattern %q", *upd.RecurrencePattern)
			}
			task.RecurrencePattern = *upd.RecurrencePattern
		}
		if upd.RecurrenceEndDate != nil {
			end, err := parseDate(*upd.RecurrenceEndDate)
			if err != nil {
				return nil, err
			}
			task.RecurrenceEndDate = end
		}
	}
	return newAssignee, nil
}

// UpdateTask applies a partial update. Moving a recurring task to done rolls it
// over to its next occurrence instead, unless its due date reached the
// recurrence end date.
func (s *TaskService) UpdateTask(ctx context.Context, actor Actor, id primitive.ObjectID, upd models.TaskUpdate) (*models.Task, error) {
	prev, _, err := s.loadForActor(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	next := *prev
	newAssignee, err := s.applyUpdate(ctx, actor, &next, upd)
	if err != nil {
		return nil, err
	}

	now := s.now()
	completedBy := strings.TrimSpace(upd.CompletedBy)
	if completedBy == "" {
		completedBy = actor.DisplayName()
	}
	completion, rolled := planCompletion(prev, &next, now, completedBy)
	next.UpdatedAt = now

	saved, err := s.tasks.Save(ctx, &next, completion)
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	if rolled {
		rolloversTotal.Inc()
		logging.Logger.Infof("Event ID: TASK_ROLLED_OVER, Description: Recurring task %s completed by %s, next due %s", saved.ID.Hex(), completedBy, saved.DueDate.Format(time.RFC3339))
	}
	if saved.Status != prev.Status {
		s.activities.Record(ctx, actor, models.ActionUpdated, saved, fmt.Sprintf("status changed from %s to %s", prev.Status, saved.Status))
	}
	if newAssignee != nil && newAssignee.ID != actor.ID {
		s.notifier.Notify(*newAssignee, fmt.Sprintf("You have been assigned to task '%s'", saved.Title))
	}
	return saved, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, actor Actor, id primitive.ObjectID) error {
	task, teams, err := s.loadForActor(ctx, actor, id)
	if err != nil {
		return err
	}
	if !canDelete(task, actor, teams) {
		return ErrForbidden
	}
	if err := s.tasks.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	logging.Logger.Infof("Event ID: TASK_DELETED, Description: Task %s deleted by %s", id.Hex(), actor.DisplayName())
	s.activities.Record(ctx, actor, models.ActionDeleted, task, "task deleted")
	return nil
}

func (s *TaskService) AddComment(ctx context.Context, actor Actor, taskID primitive.ObjectID, text string) (*models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, validationf("comment text is required")
	}
	task, _, err := s.loadForActor(ctx, actor, taskID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	comment := models.Comment{
		ID:         primitive.NewObjectID(),
		AuthorID:   actor.ID,
		AuthorName: actor.DisplayName(),
		Role:       actor.Role,
		Text:       text,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.tasks.AddComment(ctx, taskID, comment); err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}
	s.activities.Record(ctx, actor, models.ActionCommented, task, text)
	return &comment, nil
}

func findComment(task *models.Task, id primitive.ObjectID) *models.Comment {
	for i := range task.Comments {
		if task.Comments[i].ID == id {
			return &task.Comments[i]
		}
	}
	return nil
}

func (s *TaskService) UpdateComment(ctx context.Context, actor Actor, taskID, commentID primitive.ObjectID, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return validationf("comment text is required")
	}
	task, _, err := s.loadForActor(ctx, actor, taskID)
	if err != nil {
		return err
	}
	comment := findComment(task, commentID)
	if comment == nil {
		return fmt.Errorf("comment %s: %w", commentID.Hex(), models.ErrNotFound)
	}
	if comment.AuthorID != actor.ID && !actor.IsAdmin() {
		return ErrForbidden
	}
	return s.tasks.UpdateComment(ctx, taskID, commentID, text, s.now())
}

func (s *TaskService) DeleteComment(ctx context.Context, actor Actor, taskID, commentID primitive.ObjectID) error {
	task, _, err := s.loadForActor(ctx, actor, taskID)
	if err != nil {
		return err
	}
	comment := findComment(task, commentID)
	if comment == nil {
		return fmt.Errorf("comment %s: %w", commentID.Hex(), models.ErrNotFound)
	}
	if comment.AuthorID != actor.ID && !actor.IsAdmin() {
		return ErrForbidden
	}
	return s.tasks.DeleteComment(ctx, taskID, commentID)
}

func (s *TaskService) AddAttachment(ctx context.Context, actor Actor, taskID primitive.ObjectID, filename, contentType string, data []byte) (*models.Attachment, error) {
	if strings.TrimSpace(filename) == "" {
		return nil, validationf("filename is required")
	}
	if len(data) == 0 {
		return nil, validationf("attachment is empty")
	}
	task, _, err := s.loadForActor(ctx, actor, taskID)
	if err != nil {
		return nil, err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	attachment := models.Attachment{
		ID:          primitive.NewObjectID(),
		Filename:    filename,
		ContentType: contentType,
		Size:        int64(len(data)),
		Data:        data,
		UploadedBy:  actor.ID,
		UploadedAt:  s.now(),
	}
	if err := s.tasks.AddAttachment(ctx, taskID, attachment); err != nil {
		return nil, fmt.Errorf("failed to store attachment: %w", err)
	}
	s.activities.Record(ctx, actor, models.ActionAttached, task, filename)
	return &attachment, nil
}

func (s *TaskService) GetAttachment(ctx context.Context, actor Actor, taskID, attachmentID primitive.ObjectID) (*models.Attachment, error) {
	task, _, err := s.loadForActor(ctx, actor, taskID)
	if err != nil {
		return nil, err
	}
	for i := range task.Attachments {
		if task.Attachments[i].ID == attachmentID {
			return &task.Attachments[i], nil
		}
	}
	return nil, fmt.Errorf("attachment %s: %w", attachmentID.Hex(), models.ErrNotFound)
}

func (s *TaskService) DeleteAttachment(ctx context.Context, actor Actor, taskID, attachmentID primitive.ObjectID) error {
	attachment, err := s.GetAttachment(ctx, actor, taskID, attachmentID)
	if err != nil {
		return err
	}
	if attachment.UploadedBy != actor.ID && !actor.IsAdmin() {
		return ErrForbidden
	}
	return s.tasks.DeleteAttachment(ctx, taskID, attachmentID)
}
