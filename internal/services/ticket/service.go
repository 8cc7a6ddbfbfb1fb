// Package ticket manages support tickets stored as user records.
package ticket

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/andresilva/b3folio/internal/common"
	"github.com/andresilva/b3folio/internal/interfaces"
	"github.com/andresilva/b3folio/internal/models"
)

// subjectTicket is the UserRecord subject for tickets.
const subjectTicket = "ticket"

// Compile-time interface check
var _ interfaces.TicketService = (*Service)(nil)

// Service implements TicketService.
type Service struct {
	storage interfaces.StorageManager
	logger  *common.Logger
}

// NewService creates a new ticket service.
func NewService(storage interfaces.StorageManager, logger *common.Logger) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Service{storage: storage, logger: logger}
}

// Create opens a new ticket with the initial user message.
func (s *Service) Create(ctx context.Context, subject, body string) (*models.Ticket, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return nil, fmt.Errorf("ticket subject is required")
	}

	now := time.Now()
	ticket := &models.Ticket{
		ID:        uuid.NewString(),
		Subject:   subject,
		Status:    models.TicketOpen,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if body = strings.TrimSpace(body); body != "" {
		ticket.Messages = append(ticket.Messages, models.TicketMessage{
			Author:    "user",
			Body:      body,
			CreatedAt: now,
		})
	}

	if err := s.save(ctx, ticket); err != nil {
		return nil, err
	}
	s.logger.Info().Str("ticket_id", ticket.ID).Msg("Ticket created")
	return ticket, nil
}

// Get returns one ticket by ID.
func (s *Service) Get(ctx context.Context, id string) (*models.Ticket, error) {
	userID := common.ResolveUserID(ctx)
	rec, err := s.storage.UserDataStore().Get(ctx, userID, subjectTicket, id)
	if err != nil {
		return nil, fmt.Errorf("ticket '%s' not found", id)
	}
	var ticket models.Ticket
	if err := json.Unmarshal([]byte(rec.Value), &ticket); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ticket '%s': %w", id, err)
	}
	return &ticket, nil
}

// List returns the user's tickets, newest first.
func (s *Service) List(ctx context.Context) ([]*models.Ticket, error) {
	userID := common.ResolveUserID(ctx)
	records, err := s.storage.UserDataStore().List(ctx, userID, subjectTicket)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	tickets := make([]*models.Ticket, 0, len(records))
	for _, rec := range records {
		var ticket models.Ticket
		if err := json.Unmarshal([]byte(rec.Value), &ticket); err != nil {
			s.logger.Warn().Str("key", rec.Key).Err(err).Msg("Skipping unreadable ticket record")
			continue
		}
		tickets = append(tickets, &ticket)
	}
	sort.Slice(tickets, func(i, j int) bool {
		return tickets[i].UpdatedAt.After(tickets[j].UpdatedAt)
	})
	return tickets, nil
}

// AddMessage appends a message to the conversation. A support reply moves an
// open ticket to answered; a user reply reopens an answered one.
func (s *Service) AddMessage(ctx context.Context, id, author, body string) (*models.Ticket, error) {
	if author != "user" && author != "support" {
		return nil, fmt.Errorf("invalid message author '%s'", author)
	}
	if body = strings.TrimSpace(body); body == "" {
		return nil, fmt.Errorf("message body is required")
	}

	ticket, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if ticket.Status == models.TicketClosed {
		return nil, fmt.Errorf("ticket '%s' is closed", id)
	}

	now := time.Now()
	ticket.Messages = append(ticket.Messages, models.TicketMessage{
		Author:    author,
		Body:      body,
		CreatedAt: now,
	})
	if author == "support" {
		ticket.Status = models.TicketAnswered
	} else {
		ticket.Status = models.TicketOpen
	}
	ticket.UpdatedAt = now

	if err := s.save(ctx, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

// SetStatus transitions a ticket to the given status.
func (s *Service) SetStatus(ctx context.Context, id, status string) (*models.Ticket, error) {
	if !models.ValidTicketStatus(status) {
		return nil, fmt.Errorf("invalid ticket status '%s'", status)
	}

	ticket, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	ticket.Status = status
	ticket.UpdatedAt = time.Now()

	if err := s.save(ctx, ticket); err != nil {
		return nil, err
	}
	s.logger.Info().Str("ticket_id", id).Str("status", status).Msg("Ticket status changed")
	return ticket, nil
}

func (s *Service) save(ctx context.Context, ticket *models.Ticket) error {
	payload, err := json.Marshal(ticket)
	if err != nil {
		return fmt.Errorf("failed to marshal ticket: %w", err)
	}
	rec := &models.UserRecord{
		UserID:  common.ResolveUserID(ctx),
		Subject: subjectTicket,
		Key:     ticket.ID,
		Value:   string(payload),
	}
	if err := s.storage.UserDataStore().Put(ctx, rec); err != nil {
		return fmt.Errorf("failed to save ticket '%s': %w", ticket.ID, err)
	}
	return nil
}
