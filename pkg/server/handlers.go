package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/goliatone/go-formbuilder/pkg/controls"
	"github.com/goliatone/go-formbuilder/pkg/editor"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/render"
)

type addFieldRequest struct {
	ID         string                      `json:"id,omitempty"`
	Type       model.InputType             `json:"type"`
	Label      string                      `json:"label,omitempty"`
	ParentID   string                      `json:"parentId,omitempty"`
	Value      any                         `json:"value,omitempty"`
	Validators []model.ValidatorDefinition `json:"validators,omitempty"`
	Options    []model.FieldOption         `json:"options,omitempty"`
}

type labelRequest struct {
	Label string `json:"label"`
}

type valueRequest struct {
	Value any `json:"value"`
}

type valueResponse struct {
	ID     string                     `json:"id"`
	Valid  bool                       `json:"valid"`
	Errors []controls.ValidationError `json:"errors"`
}

type moveRequest struct {
	From     int    `json:"from"`
	To       int    `json:"to"`
	ParentID string `json:"parentId,omitempty"`
}

type dragStartRequest struct {
	ID string `json:"id"`
}

type dropRequest struct {
	TargetIndex int    `json:"targetIndex"`
	ParentID    string `json:"parentId,omitempty"`
}

type dragState struct {
	Dragging bool   `json:"dragging"`
	ID       string `json:"id,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGetForm(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, NewFormData(s.session.Snapshot()))
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.session.Reset(r.Context()); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddField(w http.ResponseWriter, r *http.Request) {
	var req addFieldRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if !req.Type.Valid() {
		s.writeError(w, r, fmt.Errorf("%w: %q", model.ErrInvalidFieldType, req.Type))
		return
	}
	f, err := s.session.AddField(r.Context(), model.FieldConfig{
		ID:         req.ID,
		Type:       req.Type,
		Label:      req.Label,
		Value:      req.Value,
		Validators: req.Validators,
		Options:    req.Options,
	}, req.ParentID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, f)
}

func (s *Server) handleUpdateField(w http.ResponseWriter, r *http.Request) {
	var patch editor.FieldPatch
	if err := decodeJSON(r, &patch); err != nil {
		s.writeError(w, r, err)
		return
	}
	f, err := s.session.UpdateField(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, f)
}

func (s *Server) handleSetValue(w http.ResponseWriter, r *http.Request) {
	var req valueRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	id := chi.URLParam(r, "id")
	errs, err := s.session.SetValue(id, req.Value)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if errs == nil {
		errs = []controls.ValidationError{}
	}
	s.writeJSON(w, http.StatusOK, valueResponse{ID: id, Valid: len(errs) == 0, Errors: errs})
}

func (s *Server) handleFieldUngroup(w http.ResponseWriter, r *http.Request) {
	s.noContent(w, r, s.session.FieldUngroup(r.Context(), chi.URLParam(r, "id")))
}

func (s *Server) handleAddGroup(w http.ResponseWriter, r *http.Request) {
	var req labelRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	g, err := s.session.AddGroup(r.Context(), req.Label)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, g)
}

func (s *Server) handleRenameGroup(w http.ResponseWriter, r *http.Request) {
	var req labelRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.noContent(w, r, s.session.RenameGroup(r.Context(), chi.URLParam(r, "id"), req.Label))
}

func (s *Server) handleUngroup(w http.ResponseWriter, r *http.Request) {
	s.noContent(w, r, s.session.Ungroup(r.Context(), chi.URLParam(r, "id")))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	s.noContent(w, r, s.session.Delete(r.Context(), chi.URLParam(r, "id")))
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.noContent(w, r, s.session.Move(r.Context(), req.From, req.To, req.ParentID))
}

func (s *Server) handleDragStart(w http.ResponseWriter, r *http.Request) {
	var req dragStartRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.session.StartDrag(req.ID); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeDragState(w)
}

func (s *Server) handleDragCancel(w http.ResponseWriter, _ *http.Request) {
	s.session.CancelDrag()
	s.writeDragState(w)
}

func (s *Server) handleDrop(w http.ResponseWriter, r *http.Request) {
	var req dropRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.noContent(w, r, s.session.DropOnElement(r.Context(), req.TargetIndex, req.ParentID))
}

func (s *Server) handleReorder(w http.ResponseWriter, r *http.Request) {
	var req dropRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.noContent(w, r, s.session.DropAsReorder(r.Context(), req.TargetIndex, req.ParentID))
}

func (s *Server) handleListFormats(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string][]string{"formats": s.renderers.List()})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, strings.ToLower(chi.URLParam(r, "format")))
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, render.FormatPreview)
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, format string) {
	query := r.URL.Query()
	opts := render.RenderOptions{
		Subset: render.ParseSubset(query.Get("subset")),
		Title:  query.Get("title"),
	}
	if opts.Title == "" {
		opts.Title = s.title
	}

	out, contentType, err := s.renderers.Render(r.Context(), format, s.session.Definition(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

func (s *Server) writeDragState(w http.ResponseWriter) {
	id, ok := s.session.Dragging()
	s.writeJSON(w, http.StatusOK, dragState{Dragging: ok, ID: id})
}

func (s *Server) noContent(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
