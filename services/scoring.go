package services

import (
	"math"
	"strings"
	"time"

	"trello-project/microservices/task-manager/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slices"
)

const (
	teamWeightCompletion   = 0.4
	teamWeightHighPriority = 0.3
	teamWeightOnTime       = 0.3

	memberWeightCompletion   = 0.3
	memberWeightHighPriority = 0.3
	memberWeightOnTime       = 0.25
	memberWeightWorkload     = 0.15
)

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return round2(float64(part) / float64(whole) * 100)
}

// computeStats derives the leaderboard metrics over one attributed task set.
func computeStats(tasks []models.Task) models.TaskStats {
	var s models.TaskStats
	var onTime int
	var completionTime time.Duration

	for _, t := range tasks {
		s.TotalTasks++
		switch t.Status {
		case models.StatusDone:
			s.CompletedTasks++
			completionTime += t.UpdatedAt.Sub(t.CreatedAt)
			// no due date never counts as on time
			if t.DueDate != nil && !t.UpdatedAt.After(*t.DueDate) {
				onTime++
			}
		case models.StatusInProgress:
			s.InProgressTasks++
		}
		if t.Priority == models.PriorityHigh {
			s.HighPriorityTasks++
			if t.Status == models.StatusDone {
				s.HighPriorityCompleted++
			}
		}
	}

	s.CompletionRate = percent(s.CompletedTasks, s.TotalTasks)
	s.OnTimeRate = percent(onTime, s.CompletedTasks)
	if s.CompletedTasks > 0 {
		s.AvgCompletionTime = int64(math.Round(completionTime.Hours() / float64(s.CompletedTasks)))
	}
	return s
}

// highPriorityRatio treats zero high-priority tasks as a denominator of 1.
func highPriorityRatio(s models.TaskStats) float64 {
	denominator := s.HighPriorityTasks
	if denominator == 0 {
		denominator = 1
	}
	return float64(s.HighPriorityCompleted) / float64(denominator)
}

func teamScore(s models.TaskStats) float64 {
	return round2(teamWeightCompletion*s.CompletionRate +
		teamWeightHighPriority*highPriorityRatio(s)*100 +
		teamWeightOnTime*s.OnTimeRate)
}

func memberScore(s models.TaskStats) float64 {
	if s.TotalTasks == 0 {
		return 0
	}
	workload := math.Min(float64(s.InProgressTasks)/float64(s.TotalTasks), 1)
	return round2(memberWeightCompletion*s.CompletionRate +
		memberWeightHighPriority*highPriorityRatio(s)*100 +
		memberWeightOnTime*s.OnTimeRate +
		memberWeightWorkload*(1-workload)*100)
}

// attributedTo reports whether task counts toward user: direct assignee, or any
// completion-log entry closed by the user's id, username or email.
func attributedTo(task models.Task, user models.User) bool {
	if task.AssignedTo != nil && *task.AssignedTo == user.ID {
		return true
	}
	for _, entry := range task.CompletionLog {
		by := strings.TrimSpace(entry.CompletedBy)
		if by == "" {
			continue
		}
		if by == user.ID.Hex() || by == user.Username || (user.Email != "" && strings.EqualFold(by, user.Email)) {
			return true
		}
	}
	return false
}

// teamTasks is the task set attributed to a team: tasks assigned to the team plus
// tasks individually assigned to one of its members.
func teamTasks(team models.Team, tasks []models.Task) []models.Task {
	var out []models.Task
	for _, t := range tasks {
		if t.AssignedTeam != nil && *t.AssignedTeam == team.ID {
			out = append(out, t)
			continue
		}
		if t.AssignedTo != nil && slices.Contains(team.Members, *t.AssignedTo) {
			out = append(out, t)
		}
	}
	return out
}

func userTasks(user models.User, tasks []models.Task) []models.Task {
	var out []models.Task
	for _, t := range tasks {
		if attributedTo(t, user) {
			out = append(out, t)
		}
	}
	return out
}

func memberRefs(ids []primitive.ObjectID, users map[primitive.ObjectID]models.User) []models.MemberRef {
	refs := make([]models.MemberRef, 0, len(ids))
	for _, id := range ids {
		u, ok := users[id]
		if !ok {
			continue
		}
		refs = append(refs, models.MemberRef{ID: u.ID, Username: u.Username, Email: u.Email})
	}
	return refs
}

func byScoreThenName(scoreA, scoreB float64, nameA, nameB string) int {
	switch {
	case scoreA > scoreB:
		return -1
	case scoreA < scoreB:
		return 1
	}
	return strings.Compare(nameA, nameB)
}

func buildTeamLeaderboard(teams []models.Team, tasks []models.Task, users map[primitive.ObjectID]models.User) []models.TeamPerformance {
	board := make([]models.TeamPerformance, 0, len(teams))
	for _, team := range teams {
		stats := computeStats(teamTasks(team, tasks))
		board = append(board, models.TeamPerformance{
			TeamID:           team.ID,
			Name:             team.Name,
			Members:          memberRefs(team.Members, users),
			PerformanceScore: teamScore(stats),
			TaskStats:        stats,
		})
	}
	slices.SortStableFunc(board, func(a, b models.TeamPerformance) int {
		return byScoreThenName(a.PerformanceScore, b.PerformanceScore, a.Name, b.Name)
	})
	return board
}

func buildMemberLeaderboard(users []models.User, teams []models.Team, tasks []models.Task) []models.MemberPerformance {
	board := make([]models.MemberPerformance, 0, len(users))
	for _, user := range users {
		if user.Role != models.RoleUser {
			continue
		}
		stats := computeStats(userTasks(user, tasks))
		board = append(board, models.MemberPerformance{
			UserID:           user.ID,
			Username:         user.Username,
			Email:            user.Email,
			Teams:            []models.TeamRef{},
			PerformanceScore: memberScore(stats),
			TaskStats:        stats,
		})
	}

	// second pass: annotate team membership
	for i := range board {
		for _, team := range teams {
			if team.HasMember(board[i].UserID) {
				board[i].Teams = append(board[i].Teams, models.TeamRef{ID: team.ID, Name: team.Name})
			}
		}
	}

	slices.SortStableFunc(board, func(a, b models.MemberPerformance) int {
		return byScoreThenName(a.PerformanceScore, b.PerformanceScore, a.Username, b.Username)
	})
	return board
}

func buildTeamBreakdown(team models.Team, members []models.User, tasks []models.Task) []models.TeamMemberBreakdown {
	scoped := teamTasks(team, tasks)
	breakdown := make([]models.TeamMemberBreakdown, 0, len(members))
	for _, member := range members {
		stats := computeStats(userTasks(member, scoped))
		breakdown = append(breakdown, models.TeamMemberBreakdown{
			UserID:           member.ID,
			Username:         member.Username,
			Email:            member.Email,
			PerformanceScore: memberScore(stats),
			TaskStats:        stats,
		})
	}
	slices.SortStableFunc(breakdown, func(a, b models.TeamMemberBreakdown) int {
		return byScoreThenName(a.PerformanceScore, b.PerformanceScore, a.Username, b.Username)
	})
	return breakdown
}
