package services

import (
	"context"
	"errors"
	"testing"

	"trello-project/microservices/task-manager/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestTeamMemberBreakdownNotFound(t *testing.T) {
	svc := NewPerformanceService(newFakeTaskStore(), newFakeTeamStore(), newFakeUserStore())
	_, err := svc.TeamMemberBreakdown(context.Background(), primitive.NewObjectID())
	if !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLeaderboardsPropagateStorageErrors(t *testing.T) {
	tasks := newFakeTaskStore()
	tasks.findErr = errStorage
	svc := NewPerformanceService(tasks, newFakeTeamStore(), newFakeUserStore())

	if _, err := svc.TeamLeaderboard(context.Background()); !errors.Is(err, errStorage) {
		t.Errorf("TeamLeaderboard: expected storage error, got %v", err)
	}
	if _, err := svc.MemberLeaderboard(context.Background()); !errors.Is(err, errStorage) {
		t.Errorf("MemberLeaderboard: expected storage error, got %v", err)
	}
}

func TestPerformanceServiceEndToEnd(t *testing.T) {
	ana := models.User{ID: primitive.NewObjectID(), Username: "ana", Email: "ana@example.com", Role: models.RoleUser}
	ivan := models.User{ID: primitive.NewObjectID(), Username: "ivan", Email: "ivan@example.com", Role: models.RoleUser}
	admin := models.User{ID: primitive.NewObjectID(), Username: "root", Role: models.RoleAdmin}
	core := models.Team{ID: primitive.NewObjectID(), Name: "Core", Members: []primitive.ObjectID{ana.ID, ivan.ID}}
	ops := models.Team{ID: primitive.NewObjectID(), Name: "Ops"}

	done := doneTask(core.ID, models.PriorityHigh, true)
	done.AssignedTo = ptrID(ana.ID)
	open := openTask(core.ID, models.StatusInProgress)
	open.AssignedTo = ptrID(ivan.ID)

	svc := NewPerformanceService(
		newFakeTaskStore(done, open),
		newFakeTeamStore(core, ops),
		newFakeUserStore(ana, ivan, admin),
	)

	teams, err := svc.TeamLeaderboard(context.Background())
	if err != nil {
		t.Fatalf("TeamLeaderboard: %v", err)
	}
	if len(teams) != 2 || teams[0].Name != "Core" {
		t.Fatalf("unexpected team board %+v", teams)
	}
	if len(teams[0].Members) != 2 {
		t.Errorf("members = %d, want 2", len(teams[0].Members))
	}
	if teams[1].TotalTasks != 0 || teams[1].PerformanceScore != 0 {
		t.Errorf("empty team should score 0, got %+v", teams[1])
	}

	members, err := svc.MemberLeaderboard(context.Background())
	if err != nil {
		t.Fatalf("MemberLeaderboard: %v", err)
	}
	if len(members) != 2 || members[0].Username != "ana" {
		t.Fatalf("unexpected member board %+v", members)
	}

	breakdown, err := svc.TeamMemberBreakdown(context.Background(), core.ID)
	if err != nil {
		t.Fatalf("TeamMemberBreakdown: %v", err)
	}
	if len(breakdown) != 2 || breakdown[0].Username != "ana" {
		t.Errorf("unexpected breakdown %+v", breakdown)
	}
}
