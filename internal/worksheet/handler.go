package worksheet

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/eproba/server/internal/transport"
	"github.com/eproba/server/internal/user"
	"github.com/eproba/server/pkg/logger"
	"github.com/go-chi/chi"
	"github.com/google/uuid"
)

type ServiceAPI interface {
	CreateWorksheet(actor *user.User, dto CreateWorksheetDTO) (*Worksheet, error)
	GetWorksheet(actor *user.User, id uuid.UUID) (*Worksheet, error)
	ListWorksheets(actor *user.User, opts ListOptions) ([]*Worksheet, error)
	UpdateWorksheet(actor *user.User, id uuid.UUID, dto UpdateWorksheetDTO) (*Worksheet, error)
	DeleteWorksheet(actor *user.User, id uuid.UUID) error
	SubmitTask(actor *user.User, worksheetID, taskID uuid.UUID, dto SubmitTaskDTO) (*Worksheet, bool, error)
	UnsubmitTask(actor *user.User, worksheetID, taskID uuid.UUID) (*Worksheet, error)
	AcceptTask(actor *user.User, worksheetID, taskID uuid.UUID) (*Worksheet, error)
	RejectTask(actor *user.User, worksheetID, taskID uuid.UUID) (*Worksheet, error)
	ForceAcceptTask(actor *user.User, worksheetID, taskID uuid.UUID) (*Worksheet, error)
	ForceRejectTask(actor *user.User, worksheetID, taskID uuid.UUID) (*Worksheet, error)
	ClearTaskStatus(actor *user.User, worksheetID, taskID uuid.UUID) (*Worksheet, error)
	TasksToApprove(actor *user.User) ([]*Worksheet, error)
	ApproverCandidates(actor *user.User, worksheetID uuid.UUID) ([]*user.User, error)
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

func (h *Handler) ListWorksheets(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		h.Logger.Error("ListWorksheets: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	opts := ListOptions{
		Archived:  r.URL.Query().Get("archived") == "true",
		Templates: r.URL.Query().Get("templates") == "true",
	}
	if raw := r.URL.Query().Get("user"); raw != "" {
		ownerID, err := uuid.Parse(raw)
		if err != nil {
			h.Logger.Error("ListWorksheets: invalid user filter", "user", raw)
			h.WriteError(w, http.StatusBadRequest, "user must be a valid ID")
			return
		}
		opts.ForUserID = &ownerID
	}
	if raw := r.URL.Query().Get("last_sync"); raw != "" {
		secs, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.Logger.Error("ListWorksheets: invalid last_sync", "last_sync", raw)
			h.WriteError(w, http.StatusBadRequest, "last_sync must be a unix timestamp")
			return
		}
		ts := time.Unix(secs, 0)
		opts.LastSync = &ts
	}

	sheets, err := h.Service.ListWorksheets(actor, opts)
	if err != nil {
		h.Logger.Error("ListWorksheets: service error", "error", err, "user_id", actor.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"worksheets": ToResponseSlice(sheets),
	})
}

func (h *Handler) CreateWorksheet(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		h.Logger.Error("CreateWorksheet: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreateWorksheetDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CreateWorksheet: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sheet, err := h.Service.CreateWorksheet(actor, dto)
	if err != nil {
		h.Logger.Error("CreateWorksheet: service error", "error", err, "user_id", actor.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("CreateWorksheet: worksheet created",
		"worksheet_id", sheet.ID,
		"user_id", actor.ID)
	h.WriteJSON(w, http.StatusCreated, ToResponse(sheet))
}

func (h *Handler) GetWorksheet(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		h.Logger.Error("GetWorksheet: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	worksheetID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.Logger.Error("GetWorksheet: invalid worksheet ID", "id", chi.URLParam(r, "id"))
		h.WriteError(w, http.StatusBadRequest, "invalid worksheet ID")
		return
	}

	sheet, err := h.Service.GetWorksheet(actor, worksheetID)
	if err != nil {
		h.Logger.Error("GetWorksheet: service error", "error", err, "worksheet_id", worksheetID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ToResponse(sheet))
}

func (h *Handler) UpdateWorksheet(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		h.Logger.Error("UpdateWorksheet: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	worksheetID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.Logger.Error("UpdateWorksheet: invalid worksheet ID", "id", chi.URLParam(r, "id"))
		h.WriteError(w, http.StatusBadRequest, "invalid worksheet ID")
		return
	}

	var dto UpdateWorksheetDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("UpdateWorksheet: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sheet, err := h.Service.UpdateWorksheet(actor, worksheetID, dto)
	if err != nil {
		h.Logger.Error("UpdateWorksheet: service error", "error", err, "worksheet_id", worksheetID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ToResponse(sheet))
}

func (h *Handler) DeleteWorksheet(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		h.Logger.Error("DeleteWorksheet: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	worksheetID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.Logger.Error("DeleteWorksheet: invalid worksheet ID", "id", chi.URLParam(r, "id"))
		h.WriteError(w, http.StatusBadRequest, "invalid worksheet ID")
		return
	}

	if err := h.Service.DeleteWorksheet(actor, worksheetID); err != nil {
		h.Logger.Error("DeleteWorksheet: service error", "error", err, "worksheet_id", worksheetID)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("DeleteWorksheet: worksheet deleted", "worksheet_id", worksheetID, "user_id", actor.ID)
	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) SubmitTask(w http.ResponseWriter, r *http.Request) {
	actor, worksheetID, taskID, ok := h.taskRequest(w, r, "SubmitTask")
	if !ok {
		return
	}

	var dto SubmitTaskDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("SubmitTask: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sheet, alreadyApproved, err := h.Service.SubmitTask(actor, worksheetID, taskID, dto)
	if err != nil {
		h.Logger.Error("SubmitTask: service error", "error", err, "task_id", taskID)
		h.HandleServiceError(w, err)
		return
	}

	if alreadyApproved {
		h.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"status":    "already_approved",
			"worksheet": ToResponse(sheet),
		})
		return
	}

	h.WriteJSON(w, http.StatusOK, ToResponse(sheet))
}

func (h *Handler) UnsubmitTask(w http.ResponseWriter, r *http.Request) {
	h.taskAction(w, r, "UnsubmitTask", h.Service.UnsubmitTask)
}

func (h *Handler) AcceptTask(w http.ResponseWriter, r *http.Request) {
	h.taskAction(w, r, "AcceptTask", h.Service.AcceptTask)
}

func (h *Handler) RejectTask(w http.ResponseWriter, r *http.Request) {
	h.taskAction(w, r, "RejectTask", h.Service.RejectTask)
}

func (h *Handler) ForceAcceptTask(w http.ResponseWriter, r *http.Request) {
	h.taskAction(w, r, "ForceAcceptTask", h.Service.ForceAcceptTask)
}

func (h *Handler) ForceRejectTask(w http.ResponseWriter, r *http.Request) {
	h.taskAction(w, r, "ForceRejectTask", h.Service.ForceRejectTask)
}

func (h *Handler) ClearTaskStatus(w http.ResponseWriter, r *http.Request) {
	h.taskAction(w, r, "ClearTaskStatus", h.Service.ClearTaskStatus)
}

func (h *Handler) TasksToApprove(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		h.Logger.Error("TasksToApprove: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	sheets, err := h.Service.TasksToApprove(actor)
	if err != nil {
		h.Logger.Error("TasksToApprove: service error", "error", err, "user_id", actor.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"worksheets": ToResponseSlice(sheets),
	})
}

func (h *Handler) ApproverCandidates(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		h.Logger.Error("ApproverCandidates: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	worksheetID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.Logger.Error("ApproverCandidates: invalid worksheet ID", "id", chi.URLParam(r, "id"))
		h.WriteError(w, http.StatusBadRequest, "invalid worksheet ID")
		return
	}

	candidates, err := h.Service.ApproverCandidates(actor, worksheetID)
	if err != nil {
		h.Logger.Error("ApproverCandidates: service error", "error", err, "worksheet_id", worksheetID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"users": user.ToResponseSlice(candidates),
	})
}

func (h *Handler) taskRequest(w http.ResponseWriter, r *http.Request, op string) (*user.User, uuid.UUID, uuid.UUID, bool) {
	actor, ok := h.actor(r)
	if !ok {
		h.Logger.Error(op+": user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return nil, uuid.Nil, uuid.Nil, false
	}

	worksheetID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.Logger.Error(op+": invalid worksheet ID", "id", chi.URLParam(r, "id"))
		h.WriteError(w, http.StatusBadRequest, "invalid worksheet ID")
		return nil, uuid.Nil, uuid.Nil, false
	}

	taskID, err := uuid.Parse(chi.URLParam(r, "taskId"))
	if err != nil {
		h.Logger.Error(op+": invalid task ID", "task_id", chi.URLParam(r, "taskId"))
		h.WriteError(w, http.StatusBadRequest, "invalid task ID")
		return nil, uuid.Nil, uuid.Nil, false
	}

	return actor, worksheetID, taskID, true
}

func (h *Handler) taskAction(w http.ResponseWriter, r *http.Request, op string, action func(*user.User, uuid.UUID, uuid.UUID) (*Worksheet, error)) {
	actor, worksheetID, taskID, ok := h.taskRequest(w, r, op)
	if !ok {
		return
	}

	sheet, err := action(actor, worksheetID, taskID)
	if err != nil {
		h.Logger.Error(op+": service error", "error", err, "worksheet_id", worksheetID, "task_id", taskID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ToResponse(sheet))
}
