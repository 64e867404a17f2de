// Package handler serves the read-only REST surface: loaded form
// definitions, journaled submissions, and telemetry insights. The live
// session surface lives in internal/host/ws. Definitions are CUE-backed
// and carry no wire tags, so the handlers project them onto response
// shapes here.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hearthbot/hearth/internal/formdef"
)

// FormHandler implements HTTP handlers over the definition registry.
type FormHandler struct {
	registry *formdef.Registry
}

// NewFormHandler creates a new FormHandler.
func NewFormHandler(registry *formdef.Registry) *FormHandler {
	return &FormHandler{registry: registry}
}

// FormSummary is one definition in a listing.
type FormSummary struct {
	Name        string   `json:"name"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	FieldCount  int      `json:"field_count"`
	Access      []string `json:"access,omitempty"`
}

// FormDetail is one definition with its field metadata.
type FormDetail struct {
	Name        string      `json:"name"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Access      []string    `json:"access,omitempty"`
	Fields      []FieldMeta `json:"fields"`
}

// FieldMeta describes one field of a definition.
type FieldMeta struct {
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	Label    string `json:"label"`
	Required bool   `json:"required,omitempty"`
	Appear   string `json:"appear,omitempty"`

	Choices []string `json:"choices,omitempty"`

	// Fields lists the sub-fields of an infos field.
	Fields []FieldMeta `json:"fields,omitempty"`

	Default any `json:"default,omitempty"`
}

// HandleListForms returns every loaded definition.
// GET /api/forms
func (h *FormHandler) HandleListForms(w http.ResponseWriter, r *http.Request) {
	defs := h.registry.All()
	resp := struct {
		Forms      []FormSummary `json:"forms"`
		TotalCount int           `json:"total_count"`
	}{
		Forms:      make([]FormSummary, 0, len(defs)),
		TotalCount: len(defs),
	}
	for _, d := range defs {
		resp.Forms = append(resp.Forms, FormSummary{
			Name:        d.Name,
			Title:       d.Title,
			Description: d.Description,
			FieldCount:  len(d.Fields),
			Access:      d.Access,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleGetForm returns one definition with field metadata.
// GET /api/forms/{name}
func (h *FormHandler) HandleGetForm(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	d, ok := h.registry.Get(name)
	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "no form named "+name)
		return
	}
	writeJSON(w, http.StatusOK, FormDetail{
		Name:        d.Name,
		Title:       d.Title,
		Description: d.Description,
		Access:      d.Access,
		Fields:      fieldMeta(d.Fields),
	})
}

func fieldMeta(fields []formdef.FieldDef) []FieldMeta {
	out := make([]FieldMeta, 0, len(fields))
	for _, fd := range fields {
		meta := FieldMeta{
			Name:     fd.Name,
			Kind:     string(fd.Kind),
			Label:    fd.Label,
			Required: fd.Required,
			Appear:   fd.Appear,
			Default:  fd.Default,
		}
		for _, c := range fd.Choices {
			meta.Choices = append(meta.Choices, c.Label)
		}
		if len(fd.Fields) > 0 {
			meta.Fields = fieldMeta(fd.Fields)
		}
		out = append(out, meta)
	}
	return out
}
