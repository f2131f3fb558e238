package handlers

import (
	"net/http"

	"trello-project/microservices/task-manager/services"
)

type PerformanceHandler struct {
	service *services.PerformanceService
}

func NewPerformanceHandler(service *services.PerformanceService) *PerformanceHandler {
	return &PerformanceHandler{service: service}
}

func (h *PerformanceHandler) TeamLeaderboard(w http.ResponseWriter, r *http.Request) {
	board, err := h.service.TeamLeaderboard(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

func (h *PerformanceHandler) MemberLeaderboard(w http.ResponseWriter, r *http.Request) {
	board, err := h.service.MemberLeaderboard(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

func (h *PerformanceHandler) TeamBreakdown(w http.ResponseWriter, r *http.Request) {
	teamID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	breakdown, err := h.service.TeamMemberBreakdown(r.Context(), teamID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, breakdown)
}
