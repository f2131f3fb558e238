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
	"golang.org/x/exp/slices"
)

type TeamService struct {
	teams TeamStore
	users UserStore
	now   func() time.Time
}

func NewTeamService(teams TeamStore, users UserStore) *TeamService {
	return &TeamService{teams: teams, users: users, now: time.Now}
}

func (s *TeamService) parseUserIDs(ctx context.Context, raw []string) ([]primitive.ObjectID, error) {
	ids := make([]primitive.ObjectID, 0, len(raw))
	for _, value := range raw {
		id, err := primitive.ObjectIDFromHex(strings.TrimSpace(value))
		if err != nil {
			return nil, validationf("invalid user id %q", value)
		}
		if !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return ids, nil
	}
	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve users: %w", err)
	}
	if len(users) != len(ids) {
		return nil, validationf("one or more users do not exist")
	}
	return ids, nil
}

// canManage: admins bypass; otherwise the actor must be in the team's manager set.
func canManage(team *models.Team, actor Actor) bool {
	return actor.IsAdmin() || team.HasManager(actor.ID)
}

func (s *TeamService) CreateTeam(ctx context.Context, actor Actor, in models.TeamInput) (*models.Team, error) {
	if actor.Role != models.RoleTeamManager && !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: only team managers and admins can create teams", ErrForbidden)
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, validationf("team name is required")
	}
	members, err := s.parseUserIDs(ctx, in.Members)
	if err != nil {
		return nil, err
	}
	managers, err := s.parseUserIDs(ctx, in.Managers)
	if err != nil {
		return nil, err
	}
	if actor.Role == models.RoleTeamManager && !slices.Contains(managers, actor.ID) {
		managers = append(managers, actor.ID)
	}

	now := s.now()
	team := &models.Team{
		ID:          primitive.NewObjectID(),
		Name:        name,
		Description: in.Description,
		Members:     members,
		Managers:    managers,
		CreatedBy:   actor.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.teams.Create(ctx, team); err != nil {
		if errors.Is(err, models.ErrDuplicate) {
			return nil, validationf("team %q already exists", name)
		}
		return nil, fmt.Errorf("failed to create team: %w", err)
	}
	logging.Logger.Infof("Event ID: TEAM_CREATED, Description: Team '%s' (%s) created by %s", team.Name, team.ID.Hex(), actor.DisplayName())
	return team, nil
}

// ListTeams returns every team for admins and the caller's teams otherwise.
func (s *TeamService) ListTeams(ctx context.Context, actor Actor) ([]models.Team, error) {
	var (
		teams []models.Team
		err   error
	)
	if actor.IsAdmin() {
		teams, err = s.teams.FindAll(ctx)
	} else {
		teams, err = s.teams.FindByUser(ctx, actor.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	return teams, nil
}

func (s *TeamService) GetTeam(ctx context.Context, actor Actor, id primitive.ObjectID) (*models.Team, error) {
	team, err := s.teams.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("team %s: %w", id.Hex(), err)
	}
	if !actor.IsAdmin() && !team.HasMember(actor.ID) && !team.HasManager(actor.ID) {
		return nil, ErrForbidden
	}
	return team, nil
}

func (s *TeamService) UpdateTeam(ctx context.Context, actor Actor, id primitive.ObjectID, in models.TeamInput) (*models.Team, error) {
	team, err := s.teams.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("team %s: %w", id.Hex(), err)
	}
	if !canManage(team, actor) {
		return nil, ErrForbidden
	}
	if name := strings.TrimSpace(in.Name); name != "" {
		team.Name = name
	}
	team.Description = in.Description
	if in.Members != nil {
		if team.Members, err = s.parseUserIDs(ctx, in.Members); err != nil {
			return nil, err
		}
	}
	if in.Managers != nil {
		if team.Managers, err = s.parseUserIDs(ctx, in.Managers); err != nil {
			return nil, err
		}
	}
	team.UpdatedAt = s.now()
	if err := s.teams.Update(ctx, team); err != nil {
		return nil, fmt.Errorf("failed to update team: %w", err)
	}
	return team, nil
}

func (s *TeamService) DeleteTeam(ctx context.Context, actor Actor, id primitive.ObjectID) error {
	team, err := s.teams.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("team %s: %w", id.Hex(), err)
	}
	if !actor.IsAdmin() && team.CreatedBy != actor.ID {
		return ErrForbidden
	}
	if err := s.teams.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete team: %w", err)
	}
	logging.Logger.Infof("Event ID: TEAM_DELETED, Description: Team %s deleted by %s", id.Hex(), actor.DisplayName())
	return nil
}

type membershipOp func(ctx context.Context, teamID, userID primitive.ObjectID) error

func (s *TeamService) changeMembership(ctx context.Context, actor Actor, teamID, userID primitive.ObjectID, op membershipOp, checkUser bool) error {
	team, err := s.teams.FindByID(ctx, teamID)
	if err != nil {
		return fmt.Errorf("team %s: %w", teamID.Hex(), err)
	}
	if !canManage(team, actor) {
		return ErrForbidden
	}
	if checkUser {
		if _, err := s.users.FindByID(ctx, userID); err != nil {
			return fmt.Errorf("user %s: %w", userID.Hex(), err)
		}
	}
	return op(ctx, teamID, userID)
}

func (s *TeamService) AddMember(ctx context.Context, actor Actor, teamID, userID primitive.ObjectID) error {
	return s.changeMembership(ctx, actor, teamID, userID, s.teams.AddMember, true)
}

func (s *TeamService) RemoveMember(ctx context.Context, actor Actor, teamID, userID primitive.ObjectID) error {
	return s.changeMembership(ctx, actor, teamID, userID, s.teams.RemoveMember, false)
}

func (s *TeamService) AddManager(ctx context.Context, actor Actor, teamID, userID primitive.ObjectID) error {
	return s.changeMembership(ctx, actor, teamID, userID, s.teams.AddManager, true)
}

func (s *TeamService) RemoveManager(ctx context.Context, actor Actor, teamID, userID primitive.ObjectID) error {
	return s.changeMembership(ctx, actor, teamID, userID, s.teams.RemoveManager, false)
}
