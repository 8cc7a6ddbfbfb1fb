package server

import (
	"net/http"
	"strings"
)

// createTicketRequest is the POST /api/tickets payload.
type createTicketRequest struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// handleTickets lists the user's tickets or creates a new one.
func (s *Server) handleTickets(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		tickets, err := s.tickets.List(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{"tickets": tickets})

	case http.MethodPost:
		var req createTicketRequest
		if !DecodeJSON(w, r, &req) {
			return
		}
		ticket, err := s.tickets.Create(r.Context(), req.Subject, req.Body)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		WriteJSON(w, http.StatusCreated, ticket)

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

// patchTicketRequest is the PATCH /api/tickets/{id} payload. Either a new
// message, a status change, or both.
type patchTicketRequest struct {
	Author string `json:"author,omitempty"`
	Body   string `json:"body,omitempty"`
	Status string `json:"status,omitempty"`
}

// handleTicketByID returns or updates one ticket.
func (s *Server) handleTicketByID(w http.ResponseWriter, r *http.Request) {
	id := PathParam(r, "/api/tickets/", "")
	if id == "" {
		WriteError(w, http.StatusBadRequest, "Ticket ID is required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		ticket, err := s.tickets.Get(r.Context(), id)
		if err != nil {
			WriteError(w, http.StatusNotFound, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, ticket)

	case http.MethodPatch:
		var req patchTicketRequest
		if !DecodeJSON(w, r, &req) {
			return
		}
		if strings.TrimSpace(req.Body) == "" && req.Status == "" {
			WriteError(w, http.StatusBadRequest, "A message or status is required")
			return
		}

		if strings.TrimSpace(req.Body) != "" {
			author := req.Author
			if author == "" {
				author = "user"
			}
			if _, err := s.tickets.AddMessage(r.Context(), id, author, req.Body); err != nil {
				WriteError(w, http.StatusBadRequest, err.Error())
				return
			}
		}
		if req.Status != "" {
			if _, err := s.tickets.SetStatus(r.Context(), id, req.Status); err != nil {
				WriteError(w, http.StatusBadRequest, err.Error())
				return
			}
		}

		ticket, err := s.tickets.Get(r.Context(), id)
		if err != nil {
			WriteError(w, http.StatusNotFound, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, ticket)

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPatch)
	}
}
