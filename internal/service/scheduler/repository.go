package scheduler

import (
	"context"
	"errors"

	"helpdesk-backend/internal/database"
	"helpdesk-backend/internal/model"
)

var (
	ErrNotFound = errors.New("scheduler repository: not found")
	ErrConflict = errors.New("scheduler repository: conflict")
)

type Repository interface {
	GetRule(ctx context.Context, chatID int64) (model.AssignmentRuleItem, error)
	CreateRule(ctx context.Context, rule model.AssignmentRuleItem) error
	DeleteRule(ctx context.Context, chatID int64) (bool, error)
	NextRuleID(ctx context.Context) (int64, error)
}

type DynamoRepository struct {
	db *database.Database
}

func NewDynamoRepository(db *database.Database) Repository {
	return &DynamoRepository{db: db}
}

func (r *DynamoRepository) GetRule(ctx context.Context, chatID int64) (model.AssignmentRuleItem, error) {
	var rule model.AssignmentRuleItem
	err := r.db.Client.GetItem(
		ctx,
		model.AssignmentRulesTable,
		database.NumberKey("chatId", chatID),
		&rule,
	)
	if err != nil {
		if errors.Is(err, database.ErrItemNotFound) {
			return model.AssignmentRuleItem{}, ErrNotFound
		}
		return model.AssignmentRuleItem{}, err
	}
	return rule, nil
}

// CreateRule relies on a conditional put so the chat id stays unique without
// a separate existence check.
func (r *DynamoRepository) CreateRule(ctx context.Context, rule model.AssignmentRuleItem) error {
	err := r.db.Client.PutItemIfNotExists(ctx, model.AssignmentRulesTable, rule, "chatId")
	if errors.Is(err, database.ErrConditionFailed) {
		return ErrConflict
	}
	return err
}

func (r *DynamoRepository) DeleteRule(ctx context.Context, chatID int64) (bool, error) {
	return r.db.Client.DeleteItem(
		ctx,
		model.AssignmentRulesTable,
		database.NumberKey("chatId", chatID),
	)
}

func (r *DynamoRepository) NextRuleID(ctx context.Context) (int64, error) {
	return r.db.Client.NextSequence(ctx, model.CountersTable, model.RuleSequence)
}
