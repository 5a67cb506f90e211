package team

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/eproba/server/internal/transport"
	"github.com/eproba/server/internal/user"
	"github.com/eproba/server/pkg/logger"
	"github.com/go-chi/chi"
	"github.com/google/uuid"
)

type ServiceAPI interface {
	GetTeam(id uuid.UUID) (*Team, error)
	ListTeams() ([]*Team, error)
	CreateTeam(actor *user.User, dto CreateTeamDTO) (*Team, error)
	CreatePatrol(actor *user.User, teamID uuid.UUID, dto CreatePatrolDTO) (*Patrol, error)
	DeletePatrol(actor *user.User, patrolID uuid.UUID) error
}

type ActorResolver func(r *http.Request) (*user.User, bool)

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
	actor   ActorResolver
}

func NewHandler(service ServiceAPI, actor ActorResolver) *Handler {
	lg := logger.L()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
		actor:       actor,
	}
}

func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.Service.ListTeams()
	if err != nil {
		h.Logger.Error("ListTeams: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"teams": teams})
}

func (h *Handler) GetTeam(w http.ResponseWriter, r *http.Request) {
	teamID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.Logger.Error("GetTeam: invalid team ID", "id", chi.URLParam(r, "id"))
		h.WriteError(w, http.StatusBadRequest, "invalid team ID")
		return
	}

	t, err := h.Service.GetTeam(teamID)
	if err != nil {
		h.Logger.Error("GetTeam: service error", "error", err, "team_id", teamID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, t)
}

func (h *Handler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		h.Logger.Error("CreateTeam: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreateTeamDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CreateTeam: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	t, err := h.Service.CreateTeam(actor, dto)
	if err != nil {
		h.Logger.Error("CreateTeam: service error", "error", err, "actor_id", actor.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, t)
}

func (h *Handler) CreatePatrol(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		h.Logger.Error("CreatePatrol: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	teamID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.Logger.Error("CreatePatrol: invalid team ID", "id", chi.URLParam(r, "id"))
		h.WriteError(w, http.StatusBadRequest, "invalid team ID")
		return
	}

	var dto CreatePatrolDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CreatePatrol: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.Service.CreatePatrol(actor, teamID, dto)
	if err != nil {
		h.Logger.Error("CreatePatrol: service error", "error", err, "team_id", teamID, "actor_id", actor.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, p)
}

func (h *Handler) DeletePatrol(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		h.Logger.Error("DeletePatrol: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	patrolID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.Logger.Error("DeletePatrol: invalid patrol ID", "id", chi.URLParam(r, "id"))
		h.WriteError(w, http.StatusBadRequest, "invalid patrol ID")
		return
	}

	if err := h.Service.DeletePatrol(actor, patrolID); err != nil {
		h.Logger.Error("DeletePatrol: service error", "error", err, "patrol_id", patrolID, "actor_id", actor.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("DeletePatrol: patrol deleted", "patrol_id", patrolID, "actor_id", actor.ID)
	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
