package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"familytree/internal/family/models"
	id "familytree/pkg/domain"
	dErrors "familytree/pkg/domain-errors"
	"familytree/pkg/platform/httputil"
	"familytree/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks

// Service is the family graph engine as seen by the transport.
type Service interface {
	ListFamily(ctx context.Context, owner id.UserID) ([]*models.FamilyMember, error)
	GetMember(ctx context.Context, personID id.PersonID) (*models.FamilyMember, error)
	CreateMember(ctx context.Context, actor id.UserID, req *models.PersonRequest) (*models.MemberResult, error)
	UpdateMember(ctx context.Context, actor id.UserID, personID id.PersonID, req *models.PersonRequest) (*models.MemberResult, error)
	DeleteMember(ctx context.Context, personID id.PersonID) (*models.DeleteResult, error)
	CreateRelationship(ctx context.Context, req *models.CreateRelationshipRequest) (*models.Relationship, bool, error)
	ListRelationships(ctx context.Context, filter models.RelationshipFilter) ([]*models.Relationship, error)
}

type memberResponse struct {
	Message  string               `json:"message"`
	Data     *models.FamilyMember `json:"data"`
	Warnings []string             `json:"warnings,omitempty"`
}

type deleteResponse struct {
	Message  string      `json:"message"`
	ID       id.PersonID `json:"id"`
	Warnings []string    `json:"warnings,omitempty"`
}

type relationshipRef struct {
	ID id.RelationshipID `json:"id"`
}

type relationshipResponse struct {
	Message string          `json:"message"`
	Data    relationshipRef `json:"data"`
}

// Handler serves the family and relationship routes. Every route expects
// RequireAuth to have run.
type Handler struct {
	family Service
	logger *slog.Logger
}

func New(family Service, logger *slog.Logger) *Handler {
	return &Handler{family: family, logger: logger}
}

// Register mounts the family routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Route("/family", func(r chi.Router) {
		r.Get("/", h.handleListFamily)
		r.Post("/", h.handleCreateMember)
		r.Get("/{id}", h.handleGetMember)
		r.Put("/{id}", h.handleUpdateMember)
		r.Delete("/{id}", h.handleDeleteMember)
	})
	r.Get("/relationships", h.handleListRelationships)
	r.Post("/relationship", h.handleCreateRelationship)
}

func (h *Handler) handleListFamily(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	members, err := h.family.ListFamily(ctx, requestcontext.UserID(ctx))
	if err != nil {
		h.fail(ctx, w, "failed to list family", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, members)
}

func (h *Handler) handleGetMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	personID, err := id.ParsePersonID(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(ctx, w, "invalid person id", err)
		return
	}
	member, err := h.family.GetMember(ctx, personID)
	if err != nil {
		h.fail(ctx, w, "failed to get family member", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, member)
}

func (h *Handler) handleCreateMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req models.PersonRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.fail(ctx, w, "invalid family member request", err)
		return
	}
	res, err := h.family.CreateMember(ctx, requestcontext.UserID(ctx), &req)
	if err != nil {
		h.fail(ctx, w, "failed to create family member", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, memberResponse{
		Message:  "Family member added",
		Data:     res.Member,
		Warnings: res.Warnings,
	})
}

func (h *Handler) handleUpdateMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	personID, err := id.ParsePersonID(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(ctx, w, "invalid person id", err)
		return
	}
	var req models.PersonRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.fail(ctx, w, "invalid family member request", err)
		return
	}
	res, err := h.family.UpdateMember(ctx, requestcontext.UserID(ctx), personID, &req)
	if err != nil {
		h.fail(ctx, w, "failed to update family member", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, memberResponse{
		Message:  "Family member updated",
		Data:     res.Member,
		Warnings: res.Warnings,
	})
}

func (h *Handler) handleDeleteMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	personID, err := id.ParsePersonID(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(ctx, w, "invalid person id", err)
		return
	}
	res, err := h.family.DeleteMember(ctx, personID)
	if err != nil {
		h.fail(ctx, w, "failed to delete family member", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, deleteResponse{
		Message:  "Family member deleted",
		ID:       res.ID,
		Warnings: res.Warnings,
	})
}

func (h *Handler) handleListRelationships(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var filter models.RelationshipFilter
	q := r.URL.Query()
	if raw := q.Get("person_id"); raw != "" {
		pid, err := id.ParsePersonID(raw)
		if err != nil {
			h.fail(ctx, w, "invalid person_id", err)
			return
		}
		filter.SubjectID = &pid
	}
	if raw := q.Get("related_person_id"); raw != "" {
		pid, err := id.ParsePersonID(raw)
		if err != nil {
			h.fail(ctx, w, "invalid related_person_id", err)
			return
		}
		filter.ObjectID = &pid
	}
	rels, err := h.family.ListRelationships(ctx, filter)
	if err != nil {
		h.fail(ctx, w, "failed to list relationships", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rels)
}

func (h *Handler) handleCreateRelationship(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req models.CreateRelationshipRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.fail(ctx, w, "invalid relationship request", err)
		return
	}
	rel, created, err := h.family.CreateRelationship(ctx, &req)
	if err != nil {
		h.fail(ctx, w, "failed to create relationship", err)
		return
	}
	status, msg := http.StatusCreated, "Relationship created"
	if !created {
		status, msg = http.StatusOK, "Relationship already exists"
	}
	httputil.WriteJSON(w, status, relationshipResponse{Message: msg, Data: relationshipRef{ID: rel.ID}})
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	requestID := requestcontext.RequestID(ctx)
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg, "error", err, "request_id", requestID)
	} else {
		h.logger.WarnContext(ctx, msg, "error", err, "request_id", requestID)
	}
	httputil.WriteError(w, err)
}
