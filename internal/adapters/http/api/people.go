package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/okian/dutyrota/internal/domain/model"
)

// PeopleDependencies defines the roster operations used by PeopleHandler.
type PeopleDependencies interface {
	ListPeople(ctx context.Context) (model.Roster, error)
	GetPerson(ctx context.Context, name string) (model.Person, error)
	AddPerson(ctx context.Context, p model.Person) (model.Person, error)
	UpdatePerson(ctx context.Context, name string, p model.Person) (model.Person, error)
	DeletePerson(ctx context.Context, name string) error
}

// personRequest mirrors the OpenAPI schema for POST /people and PUT /people/{name}.
type personRequest struct {
	Name        string   `json:"name"`
	Eligibility []string `json:"eligibility"`
}

func (p personRequest) person() model.Person {
	out := model.Person{Name: p.Name, Eligibility: make([]model.SlotID, 0, len(p.Eligibility))}
	for _, s := range p.Eligibility {
		out.Eligibility = append(out.Eligibility, model.SlotID(strings.TrimSpace(s)))
	}
	return out
}

// PeopleHandler handles roster requests.
type PeopleHandler struct {
	deps PeopleDependencies
}

// NewPeopleHandler creates a new people handler.
func NewPeopleHandler(deps PeopleDependencies) *PeopleHandler {
	return &PeopleHandler{deps: deps}
}

// HandlePeople handles GET /people and POST /people.
func (h *PeopleHandler) HandlePeople(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		people, err := h.deps.ListPeople(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, people)
	case http.MethodPost:
		var req personRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeServiceError(w, err)
			return
		}
		p, err := h.deps.AddPerson(r.Context(), req.person())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, p)
	default:
		methodNotAllowed(w, "GET, POST")
	}
}

// HandlePerson handles GET, PUT and DELETE /people/{name}.
func (h *PeopleHandler) HandlePerson(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/people/")
	if name == "" || strings.Contains(name, "/") {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		p, err := h.deps.GetPerson(r.Context(), name)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	case http.MethodPut:
		var req personRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeServiceError(w, err)
			return
		}
		// An omitted name keeps the current one.
		if strings.TrimSpace(req.Name) == "" {
			req.Name = name
		}
		p, err := h.deps.UpdatePerson(r.Context(), name, req.person())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	case http.MethodDelete:
		if err := h.deps.DeletePerson(r.Context(), name); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w, "GET, PUT, DELETE")
	}
}
