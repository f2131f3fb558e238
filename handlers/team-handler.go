package handlers

import (
	"context"
	"net/http"

	"trello-project/microservices/task-manager/models"
	"trello-project/microservices/task-manager/services"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TeamHandler struct {
	service *services.TeamService
	chat    *services.ChatService
}

func NewTeamHandler(service *services.TeamService, chat *services.ChatService) *TeamHandler {
	return &TeamHandler{service: service, chat: chat}
}

func (h *TeamHandler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	caller, ok := actor(w, r)
	if !ok {
		return
	}
	var in models.TeamInput
	if !decodeJSON(w, r, &in) {
		return
	}
	team, err := h.service.CreateTeam(r.Context(), caller, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, team)
}

func (h *TeamHandler) GetTeams(w http.ResponseWriter, r *http.Request) {
	caller, ok := actor(w, r)
	if !ok {
		return
	}
	teams, err := h.service.ListTeams(r.Context(), caller)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, teams)
}

func (h *TeamHandler) GetTeam(w http.ResponseWriter, r *http.Request) {
	caller, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	team, err := h.service.GetTeam(r.Context(), caller, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, team)
}

func (h *TeamHandler) UpdateTeam(w http.ResponseWriter, r *http.Request) {
	caller, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var in models.TeamInput
	if !decodeJSON(w, r, &in) {
		return
	}
	team, err := h.service.UpdateTeam(r.Context(), caller, id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, team)
}

func (h *TeamHandler) DeleteTeam(w http.ResponseWriter, r *http.Request) {
	caller, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteTeam(r.Context(), caller, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type membershipOp func(ctx context.Context, a services.Actor, teamID, userID primitive.ObjectID) error

func (h *TeamHandler) changeMembership(w http.ResponseWriter, r *http.Request, op membershipOp) {
	caller, ok := actor(w, r)
	if !ok {
		return
	}
	teamID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	userID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}
	if err := op(r.Context(), caller, teamID, userID); err != nil {
		writeError(w, r, err)
		return
	}
	team, err := h.service.GetTeam(r.Context(), caller, teamID)
	if err != nil {
		// a caller who just removed themselves can no longer read the team
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, team)
}

func (h *TeamHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	h.changeMembership(w, r, h.service.AddMember)
}

func (h *TeamHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	h.changeMembership(w, r, h.service.RemoveMember)
}

func (h *TeamHandler) AddManager(w http.ResponseWriter, r *http.Request) {
	h.changeMembership(w, r, h.service.AddManager)
}

func (h *TeamHandler) RemoveManager(w http.ResponseWriter, r *http.Request) {
	h.changeMembership(w, r, h.service.RemoveManager)
}

type messageRequest struct {
	Text string `json:"text"`
}

func (h *TeamHandler) PostMessage(w http.ResponseWriter, r *http.Request) {
	caller, ok := actor(w, r)
	if !ok {
		return
	}
	teamID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req messageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	msg, err := h.chat.PostMessage(r.Context(), caller, teamID, req.Text)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

func (h *TeamHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	caller, ok := actor(w, r)
	if !ok {
		return
	}
	teamID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	messages, err := h.chat.ListMessages(r.Context(), caller, teamID, queryLimit(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messages)
}
