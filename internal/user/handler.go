package user

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/eproba/server/internal/transport"
	"github.com/eproba/server/pkg/logger"
	"github.com/go-chi/chi"
	"github.com/google/uuid"
)

type ServiceAPI interface {
	GetUser(id uuid.UUID) (*User, error)
	GetTeamMembers(actor *User) ([]*User, error)
	UpdateUser(actor *User, targetID uuid.UUID, dto UpdateUserDTO) (*User, error)
}

// ActorResolver pulls the authenticated user out of the request context. The
// auth package provides the implementation; the indirection avoids an import
// cycle between auth and user.
type ActorResolver func(r *http.Request) (*User, bool)

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

func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		h.Logger.Error("GetMe: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	h.WriteJSON(w, http.StatusOK, ToResponse(actor))
}

func (h *Handler) GetTeamMembers(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		h.Logger.Error("GetTeamMembers: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	members, err := h.Service.GetTeamMembers(actor)
	if err != nil {
		h.Logger.Error("GetTeamMembers: service error", "error", err, "user_id", actor.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"users": ToResponseSlice(members),
	})
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		h.Logger.Error("UpdateUser: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	targetID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.Logger.Error("UpdateUser: invalid user ID", "id", chi.URLParam(r, "id"))
		h.WriteError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	var dto UpdateUserDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("UpdateUser: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.Service.UpdateUser(actor, targetID, dto)
	if err != nil {
		h.Logger.Error("UpdateUser: service error", "error", err, "target_id", targetID, "actor_id", actor.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ToResponse(updated))
}
