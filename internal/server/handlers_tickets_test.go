package server

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresilva/b3folio/internal/models"
)

func TestTicketLifecycle(t *testing.T) {
	handler, _ := newTestServer(t, testServerOptions{})

	// Create
	var ticket models.Ticket
	rec := doJSON(t, handler, http.MethodPost, "/api/tickets", createTicketRequest{
		Subject: "Importação falhou",
		Body:    "O extrato não foi reconhecido.",
	}, &ticket)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotEmpty(t, ticket.ID)
	assert.Equal(t, models.TicketOpen, ticket.Status)

	// List
	var listResp struct {
		Tickets []models.Ticket `json:"tickets"`
	}
	rec = doJSON(t, handler, http.MethodGet, "/api/tickets", nil, &listResp)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, listResp.Tickets, 1)

	// Support reply moves it to answered
	var updated models.Ticket
	rec = doJSON(t, handler, http.MethodPatch, "/api/tickets/"+ticket.ID, patchTicketRequest{
		Author: "support",
		Body:   "Tente enviar o extrato em texto puro.",
	}, &updated)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.TicketAnswered, updated.Status)
	assert.Len(t, updated.Messages, 2)

	// Close
	rec = doJSON(t, handler, http.MethodPatch, "/api/tickets/"+ticket.ID, patchTicketRequest{
		Status: models.TicketClosed,
	}, &updated)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.TicketClosed, updated.Status)
}

func TestCreateTicketWithoutSubject(t *testing.T) {
	handler, _ := newTestServer(t, testServerOptions{})
	rec := doJSON(t, handler, http.MethodPost, "/api/tickets", createTicketRequest{Body: "corpo"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetMissingTicket(t *testing.T) {
	handler, _ := newTestServer(t, testServerOptions{})
	rec := doJSON(t, handler, http.MethodGet, "/api/tickets/nao-existe", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPatchTicketRequiresPayload(t *testing.T) {
	handler, _ := newTestServer(t, testServerOptions{})

	var ticket models.Ticket
	doJSON(t, handler, http.MethodPost, "/api/tickets", createTicketRequest{Subject: "Dúvida"}, &ticket)

	rec := doJSON(t, handler, http.MethodPatch, "/api/tickets/"+ticket.ID, patchTicketRequest{}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
