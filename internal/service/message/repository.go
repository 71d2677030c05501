package message

import (
	"context"
	"errors"

	"helpdesk-backend/internal/database"
	"helpdesk-backend/internal/model"
)

var ErrNotFound = errors.New("message repository: not found")

type Repository interface {
	GetTicket(ctx context.Context, ticketID int64) (model.TicketItem, error)
	CreateMessage(ctx context.Context, message model.MessageItem) error
	NextMessageID(ctx context.Context) (int64, error)
}

type DynamoRepository struct {
	db *database.Database
}

func NewDynamoRepository(db *database.Database) Repository {
	return &DynamoRepository{db: db}
}

func (r *DynamoRepository) GetTicket(ctx context.Context, ticketID int64) (model.TicketItem, error) {
	var ticket model.TicketItem
	err := r.db.Client.GetItem(
		ctx,
		model.TicketsTable,
		database.NumberKey("ticketId", ticketID),
		&ticket,
	)
	if err != nil {
		if errors.Is(err, database.ErrItemNotFound) {
			return model.TicketItem{}, ErrNotFound
		}
		return model.TicketItem{}, err
	}
	return ticket, nil
}

func (r *DynamoRepository) CreateMessage(ctx context.Context, message model.MessageItem) error {
	return r.db.Client.PutItem(ctx, model.MessagesTable, message)
}

func (r *DynamoRepository) NextMessageID(ctx context.Context) (int64, error) {
	return r.db.Client.NextSequence(ctx, model.CountersTable, model.MessageSequence)
}
