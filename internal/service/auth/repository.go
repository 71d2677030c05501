package auth

import (
	"context"
	"errors"

	"helpdesk-backend/internal/database"
	"helpdesk-backend/internal/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

var ErrNotFound = errors.New("auth repository: not found")

type Repository interface {
	CreateUser(ctx context.Context, user model.UserItem) error
	FindUserByUsername(ctx context.Context, username string) (model.UserItem, error)
	NextUserID(ctx context.Context) (int64, error)
}

type DynamoRepository struct {
	db *database.Database
}

func NewDynamoRepository(db *database.Database) Repository {
	return &DynamoRepository{db: db}
}

func (r *DynamoRepository) CreateUser(ctx context.Context, user model.UserItem) error {
	return r.db.Client.PutItem(ctx, model.UsersTable, user)
}

func (r *DynamoRepository) FindUserByUsername(ctx context.Context, username string) (model.UserItem, error) {
	items, err := r.db.Client.QueryItems(
		ctx,
		model.UsersTable,
		aws.String("byUsername"),
		"username = :username",
		map[string]types.AttributeValue{
			":username": &types.AttributeValueMemberS{Value: username},
		},
		nil,
		nil,
	)
	if err != nil {
		return model.UserItem{}, err
	}
	if len(items) == 0 {
		return model.UserItem{}, ErrNotFound
	}

	var user model.UserItem
	if err := attributevalue.UnmarshalMap(items[0], &user); err != nil {
		return model.UserItem{}, err
	}
	return user, nil
}

func (r *DynamoRepository) NextUserID(ctx context.Context) (int64, error) {
	return r.db.Client.NextSequence(ctx, model.CountersTable, model.UserSequence)
}
