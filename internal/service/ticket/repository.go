package ticket

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"helpdesk-backend/internal/database"
	"helpdesk-backend/internal/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

var (
	ErrNotFound = errors.New("ticket repository: not found")
	// ErrStale means a conditional update lost against a concurrent writer.
	ErrStale = errors.New("ticket repository: stale update")
)

// TicketPatch carries the fields an update may change. Nil means untouched.
type TicketPatch struct {
	StatusID   *int
	AssigneeID *int64
}

type Repository interface {
	GetTicket(ctx context.Context, ticketID int64) (model.TicketItem, error)
	FindActiveTicketByChat(ctx context.Context, chatID int64) (model.TicketItem, error)
	CreateTicket(ctx context.Context, ticket model.TicketItem) error
	UpdateTicket(ctx context.Context, ticketID int64, patch TicketPatch, updatedAt string) (model.TicketItem, error)
	ListTickets(ctx context.Context, statusID int, assigneeID int64, limit int) ([]model.TicketItem, error)
	ListMessages(ctx context.Context, ticketID int64, limit int) ([]model.MessageItem, error)
	GetUser(ctx context.Context, userID int64) (model.UserItem, error)
	NextTicketID(ctx context.Context) (int64, error)
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

// FindActiveTicketByChat returns the chat's ticket still in open or in-work
// state. Closed tickets are ignored so a new inbound message starts a fresh
// one.
func (r *DynamoRepository) FindActiveTicketByChat(ctx context.Context, chatID int64) (model.TicketItem, error) {
	filter := "statusId = :open OR statusId = :inwork"
	items, err := r.db.Client.QueryItemsWithFilter(
		ctx,
		model.TicketsTable,
		aws.String("byChat"),
		"chatId = :chatId",
		&filter,
		map[string]types.AttributeValue{
			":chatId": &types.AttributeValueMemberN{Value: strconv.FormatInt(chatID, 10)},
			":open":   &types.AttributeValueMemberN{Value: strconv.Itoa(model.StatusOpen)},
			":inwork": &types.AttributeValueMemberN{Value: strconv.Itoa(model.StatusInWork)},
		},
		nil,
		nil,
	)
	if err != nil {
		return model.TicketItem{}, err
	}
	if len(items) == 0 {
		return model.TicketItem{}, ErrNotFound
	}

	var ticket model.TicketItem
	if err := attributevalue.UnmarshalMap(items[0], &ticket); err != nil {
		return model.TicketItem{}, err
	}
	return ticket, nil
}

func (r *DynamoRepository) CreateTicket(ctx context.Context, ticket model.TicketItem) error {
	return r.db.Client.PutItem(ctx, model.TicketsTable, ticket)
}

// UpdateTicket writes the patch under a condition expression: the ticket must
// exist, and a transition into in-work only applies while no other staff
// member holds the claim. Losing the condition surfaces as ErrStale.
func (r *DynamoRepository) UpdateTicket(ctx context.Context, ticketID int64, patch TicketPatch, updatedAt string) (model.TicketItem, error) {
	updateExpr := "SET #updatedAt = :updatedAt"
	exprValues := map[string]types.AttributeValue{
		":updatedAt": &types.AttributeValueMemberS{Value: updatedAt},
	}
	attrNames := map[string]string{
		"#updatedAt": "updatedAt",
		"#ticketId":  "ticketId",
	}

	if patch.StatusID != nil {
		updateExpr += ", #statusId = :statusId"
		exprValues[":statusId"] = &types.AttributeValueMemberN{Value: strconv.Itoa(*patch.StatusID)}
		attrNames["#statusId"] = "statusId"
	}
	if patch.AssigneeID != nil {
		updateExpr += ", #assigneeId = :assigneeId"
		exprValues[":assigneeId"] = &types.AttributeValueMemberN{Value: strconv.FormatInt(*patch.AssigneeID, 10)}
		attrNames["#assigneeId"] = "assigneeId"
	}

	condition := "attribute_exists(#ticketId)"
	if patch.StatusID != nil && *patch.StatusID == model.StatusInWork && patch.AssigneeID != nil {
		condition += " AND (#statusId <> :claimGuard OR #assigneeId = :assigneeId)"
		exprValues[":claimGuard"] = &types.AttributeValueMemberN{Value: strconv.Itoa(model.StatusInWork)}
		attrNames["#statusId"] = "statusId"
		attrNames["#assigneeId"] = "assigneeId"
	}

	var ticket model.TicketItem
	err := r.db.Client.UpdateItemConditional(
		ctx,
		model.TicketsTable,
		database.NumberKey("ticketId", ticketID),
		updateExpr,
		aws.String(condition),
		exprValues,
		attrNames,
		&ticket,
	)
	if err != nil {
		if errors.Is(err, database.ErrConditionFailed) {
			return model.TicketItem{}, ErrStale
		}
		return model.TicketItem{}, err
	}
	return ticket, nil
}

func (r *DynamoRepository) ListTickets(ctx context.Context, statusID int, assigneeID int64, limit int) ([]model.TicketItem, error) {
	var filterParts []string
	exprValues := map[string]types.AttributeValue{}
	attrNames := map[string]string{}

	if statusID != 0 {
		filterParts = append(filterParts, "#statusId = :statusId")
		exprValues[":statusId"] = &types.AttributeValueMemberN{Value: strconv.Itoa(statusID)}
		attrNames["#statusId"] = "statusId"
	}
	if assigneeID != 0 {
		filterParts = append(filterParts, "#assigneeId = :assigneeId")
		exprValues[":assigneeId"] = &types.AttributeValueMemberN{Value: strconv.FormatInt(assigneeID, 10)}
		attrNames["#assigneeId"] = "assigneeId"
	}

	var filterExpr *string
	if len(filterParts) > 0 {
		joined := filterParts[0]
		for _, part := range filterParts[1:] {
			joined += " AND " + part
		}
		filterExpr = &joined
	} else {
		exprValues = nil
		attrNames = nil
	}

	items, err := r.db.Client.ScanItems(ctx, model.TicketsTable, filterExpr, exprValues, attrNames, limit)
	if err != nil {
		return nil, err
	}

	tickets := make([]model.TicketItem, 0, len(items))
	for _, item := range items {
		var ticket model.TicketItem
		if err := attributevalue.UnmarshalMap(item, &ticket); err != nil {
			return nil, fmt.Errorf("unmarshal ticket: %w", err)
		}
		tickets = append(tickets, ticket)
	}
	return tickets, nil
}

func (r *DynamoRepository) ListMessages(ctx context.Context, ticketID int64, limit int) ([]model.MessageItem, error) {
	forward := true
	items, err := r.db.Client.QueryItems(
		ctx,
		model.MessagesTable,
		nil,
		"ticketId = :ticketId",
		map[string]types.AttributeValue{
			":ticketId": &types.AttributeValueMemberN{Value: strconv.FormatInt(ticketID, 10)},
		},
		nil,
		&forward,
	)
	if err != nil {
		return nil, err
	}

	messages := make([]model.MessageItem, 0, len(items))
	for _, item := range items {
		var message model.MessageItem
		if err := attributevalue.UnmarshalMap(item, &message); err != nil {
			return nil, fmt.Errorf("unmarshal message: %w", err)
		}
		messages = append(messages, message)
	}
	if limit > 0 && len(messages) > limit {
		messages = messages[:limit]
	}
	return messages, nil
}

func (r *DynamoRepository) GetUser(ctx context.Context, userID int64) (model.UserItem, error) {
	var user model.UserItem
	err := r.db.Client.GetItem(
		ctx,
		model.UsersTable,
		database.NumberKey("userId", userID),
		&user,
	)
	if err != nil {
		if errors.Is(err, database.ErrItemNotFound) {
			return model.UserItem{}, ErrNotFound
		}
		return model.UserItem{}, err
	}
	return user, nil
}

func (r *DynamoRepository) NextTicketID(ctx context.Context) (int64, error) {
	return r.db.Client.NextSequence(ctx, model.CountersTable, model.TicketSequence)
}
