package handlers

import (
	"encoding/json"
	"net/http"

	"omcounter/internal/service"
)

// GroupHandler handles chanting circle endpoints
type GroupHandler struct {
	groupService   *service.GroupService
	insightService *service.InsightService
}

// NewGroupHandler creates a new group handler
func NewGroupHandler(groupService *service.GroupService, insightService *service.InsightService) *GroupHandler {
	return &GroupHandler{
		groupService:   groupService,
		insightService: insightService,
	}
}

// Create handles POST /api/groups
func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var req struct {
		Name       string `json:"name"`
		Intention  string `json:"intention"`
		MantraText string `json:"mantraText"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", nil)
		return
	}

	// An empty intention gets an AI-suggested one, best effort
	if req.Intention == "" {
		req.Intention = h.insightService.SuggestGroupDescription(r.Context(), req.Name, req.MantraText)
	}

	group, err := h.groupService.CreateGroup(user.ID, user.Name, req.Name, req.Intention, req.MantraText)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	view, err := h.groupService.ViewGroup(group.ID, user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, view)
}

// List handles GET /api/groups
func (h *GroupHandler) List(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	views, err := h.groupService.ListMyGroups(user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if views == nil {
		views = []service.GroupView{}
	}

	respondJSON(w, http.StatusOK, views)
}

// Get handles GET /api/groups/{id}
func (h *GroupHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	view, err := h.groupService.ViewGroup(r.PathValue("id"), user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, view)
}

// Join handles POST /api/groups/{id}/join
func (h *GroupHandler) Join(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	groupID := r.PathValue("id")

	_, nearLimit, err := h.groupService.JoinGroup(groupID, user.ID, user.Name)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	view, err := h.groupService.ViewGroup(groupID, user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	view.NearCapacity = nearLimit

	respondJSON(w, http.StatusOK, view)
}

// Increment handles POST /api/groups/{id}/increment
func (h *GroupHandler) Increment(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	groupID := r.PathValue("id")

	var req struct {
		Amount int64 `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", nil)
		return
	}
	if req.Amount == 0 {
		req.Amount = 1
	}

	if _, err := h.groupService.RecordGroupIncrement(groupID, user.ID, user.Name, req.Amount); err != nil {
		respondServiceError(w, err)
		return
	}

	view, err := h.groupService.ViewGroup(groupID, user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, view)
}

// PostAnnouncement handles POST /api/groups/{id}/announcements
func (h *GroupHandler) PostAnnouncement(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	groupID := r.PathValue("id")

	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", nil)
		return
	}

	group, err := h.groupService.PostAnnouncement(groupID, user.ID, user.Name, req.Text)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, group.Announcements)
}

// Leaderboard handles GET /api/groups/{id}/leaderboard
func (h *GroupHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	ranked, err := h.groupService.Leaderboard(r.PathValue("id"), user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, ranked)
}
