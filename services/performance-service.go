package services

import (
	"context"
	"fmt"

	"trello-project/microservices/task-manager/logging"
	"trello-project/microservices/task-manager/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PerformanceService ranks teams and members. Every call reads fresh data and
// fails as a whole on any storage error.
type PerformanceService struct {
	tasks TaskStore
	teams TeamStore
	users UserStore
}

func NewPerformanceService(tasks TaskStore, teams TeamStore, users UserStore) *PerformanceService {
	return &PerformanceService{tasks: tasks, teams: teams, users: users}
}

func (s *PerformanceService) TeamLeaderboard(ctx context.Context) ([]models.TeamPerformance, error) {
	teams, err := s.teams.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load teams: %w", err)
	}
	tasks, err := s.tasks.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}
	users, err := s.users.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}

	byID := make(map[primitive.ObjectID]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	board := buildTeamLeaderboard(teams, tasks, byID)
	logging.Logger.Debugf("Event ID: TEAM_LEADERBOARD_COMPUTED, Description: Ranked %d teams over %d tasks", len(board), len(tasks))
	return board, nil
}

func (s *PerformanceService) MemberLeaderboard(ctx context.Context) ([]models.MemberPerformance, error) {
	users, err := s.users.FindByRole(ctx, models.RoleUser)
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	tasks, err := s.tasks.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}
	teams, err := s.teams.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load teams: %w", err)
	}

	board := buildMemberLeaderboard(users, teams, tasks)
	logging.Logger.Debugf("Event ID: MEMBER_LEADERBOARD_COMPUTED, Description: Ranked %d members over %d tasks", len(board), len(tasks))
	return board, nil
}

// TeamMemberBreakdown scores every member of one team over that team's tasks.
func (s *PerformanceService) TeamMemberBreakdown(ctx context.Context, teamID primitive.ObjectID) ([]models.TeamMemberBreakdown, error) {
	team, err := s.teams.FindByID(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("team %s: %w", teamID.Hex(), err)
	}
	members, err := s.users.FindByIDs(ctx, team.Members)
	if err != nil {
		return nil, fmt.Errorf("failed to load team members: %w", err)
	}
	tasks, err := s.tasks.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}
	return buildTeamBreakdown(*team, members, tasks), nil
}
