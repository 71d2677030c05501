package database

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

var (
	ErrItemNotFound    = errors.New("item not found")
	ErrConditionFailed = errors.New("condition failed")
)

func attrNumber(value int64) types.AttributeValue {
	return &types.AttributeValueMemberN{Value: strconv.FormatInt(value, 10)}
}

func NumberKey(name string, value int64) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{name: attrNumber(value)}
}

func StringKey(name, value string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{name: &types.AttributeValueMemberS{Value: value}}
}

func (c *DynamoDBClient) PutItem(
	ctx context.Context,
	tableName string,
	item interface{},
) error {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("marshal item: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(tableName),
		Item:      av,
	}

	_, err = c.svc.PutItem(ctx, input)
	if err != nil {
		return fmt.Errorf("put item %s: %w", tableName, err)
	}
	return nil
}

// PutItemIfNotExists writes the item only when no item with the same key is
// stored yet. Returns ErrConditionFailed when the key is already taken.
func (c *DynamoDBClient) PutItemIfNotExists(
	ctx context.Context,
	tableName string,
	item interface{},
	keyAttr string,
) error {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("marshal item: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName:                aws.String(tableName),
		Item:                     av,
		ConditionExpression:      aws.String("attribute_not_exists(#key)"),
		ExpressionAttributeNames: map[string]string{"#key": keyAttr},
	}

	_, err = c.svc.PutItem(ctx, input)
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return ErrConditionFailed
		}
		return fmt.Errorf("put item %s: %w", tableName, err)
	}
	return nil
}

func (c *DynamoDBClient) GetItem(
	ctx context.Context,
	tableName string,
	key map[string]types.AttributeValue,
	out interface{},
) error {
	input := &dynamodb.GetItemInput{
		TableName: aws.String(tableName),
		Key:       key,
	}

	res, err := c.svc.GetItem(ctx, input)
	if err != nil {
		return fmt.Errorf("get item %s: %w", tableName, err)
	}
	if res.Item == nil {
		return fmt.Errorf("%w in %s", ErrItemNotFound, tableName)
	}

	if err := attributevalue.UnmarshalMap(res.Item, out); err != nil {
		return fmt.Errorf("unmarshal item: %w", err)
	}
	return nil
}

// UpdateItemConditional applies the update only while conditionExpr holds,
// making a read-check-write on a single item atomic. Returns
// ErrConditionFailed when the stored item no longer satisfies the condition.
func (c *DynamoDBClient) UpdateItemConditional(
	ctx context.Context,
	tableName string,
	key map[string]types.AttributeValue,
	updateExpr string,
	conditionExpr *string,
	exprAttrValues map[string]types.AttributeValue,
	exprAttrNames map[string]string,
	out interface{},
) error {
	input := &dynamodb.UpdateItemInput{
		TableName:                 aws.String(tableName),
		Key:                       key,
		UpdateExpression:          aws.String(updateExpr),
		ExpressionAttributeValues: exprAttrValues,
		ExpressionAttributeNames:  exprAttrNames,
		ReturnValues:              types.ReturnValueAllNew,
	}
	if conditionExpr != nil {
		input.ConditionExpression = conditionExpr
	}

	res, err := c.svc.UpdateItem(ctx, input)
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return ErrConditionFailed
		}
		return fmt.Errorf("update item %s: %w", tableName, err)
	}

	if out != nil {
		if err := attributevalue.UnmarshalMap(res.Attributes, out); err != nil {
			return fmt.Errorf("unmarshal updated item: %w", err)
		}
	}
	return nil
}

// DeleteItem removes the item and reports whether one was stored under key.
func (c *DynamoDBClient) DeleteItem(
	ctx context.Context,
	tableName string,
	key map[string]types.AttributeValue,
) (bool, error) {
	input := &dynamodb.DeleteItemInput{
		TableName:    aws.String(tableName),
		Key:          key,
		ReturnValues: types.ReturnValueAllOld,
	}

	res, err := c.svc.DeleteItem(ctx, input)
	if err != nil {
		return false, fmt.Errorf("delete item %s: %w", tableName, err)
	}
	return len(res.Attributes) > 0, nil
}

func (c *DynamoDBClient) QueryItems(
	ctx context.Context,
	tableName string,
	indexName *string,
	keyCondExpr string,
	exprAttrValues map[string]types.AttributeValue,
	exprAttrNames map[string]string,
	scanIndexForward *bool,
) ([]map[string]types.AttributeValue, error) {
	return c.QueryItemsWithFilter(ctx, tableName, indexName, keyCondExpr, nil, exprAttrValues, exprAttrNames, scanIndexForward)
}

func (c *DynamoDBClient) QueryItemsWithFilter(
	ctx context.Context,
	tableName string,
	indexName *string,
	keyCondExpr string,
	filterExpr *string,
	exprAttrValues map[string]types.AttributeValue,
	exprAttrNames map[string]string,
	scanIndexForward *bool,
) ([]map[string]types.AttributeValue, error) {
	input := &dynamodb.QueryInput{
		TableName:                 aws.String(tableName),
		KeyConditionExpression:    aws.String(keyCondExpr),
		ExpressionAttributeValues: exprAttrValues,
	}
	if indexName != nil {
		input.IndexName = indexName
	}
	if filterExpr != nil {
		input.FilterExpression = filterExpr
	}
	if exprAttrNames != nil {
		input.ExpressionAttributeNames = exprAttrNames
	}
	if scanIndexForward != nil {
		input.ScanIndexForward = aws.Bool(*scanIndexForward)
	}

	out, err := c.svc.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("query %s[%s]: %w", tableName, aws.ToString(indexName), err)
	}
	return out.Items, nil
}

func (c *DynamoDBClient) ScanItems(
	ctx context.Context,
	tableName string,
	filterExpr *string,
	exprAttrValues map[string]types.AttributeValue,
	exprAttrNames map[string]string,
	limit int,
) ([]map[string]types.AttributeValue, error) {
	input := &dynamodb.ScanInput{
		TableName: aws.String(tableName),
	}
	if filterExpr != nil {
		input.FilterExpression = filterExpr
		input.ExpressionAttributeValues = exprAttrValues
	}
	if exprAttrNames != nil {
		input.ExpressionAttributeNames = exprAttrNames
	}
	if limit > 0 {
		input.Limit = aws.Int32(int32(limit))
	}

	out, err := c.svc.Scan(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", tableName, err)
	}
	return out.Items, nil
}

// NextSequence atomically increments the named counter and returns the new
// value. Backs the integer ids handed out for users, tickets, messages and
// assignment rules.
func (c *DynamoDBClient) NextSequence(
	ctx context.Context,
	tableName string,
	name string,
) (int64, error) {
	input := &dynamodb.UpdateItemInput{
		TableName:                 aws.String(tableName),
		Key:                       StringKey("name", name),
		UpdateExpression:          aws.String("ADD #value :one"),
		ExpressionAttributeNames:  map[string]string{"#value": "value"},
		ExpressionAttributeValues: map[string]types.AttributeValue{":one": attrNumber(1)},
		ReturnValues:              types.ReturnValueUpdatedNew,
	}

	res, err := c.svc.UpdateItem(ctx, input)
	if err != nil {
		return 0, fmt.Errorf("next sequence %s/%s: %w", tableName, name, err)
	}

	var counter struct {
		Value int64 `dynamodbav:"value"`
	}
	if err := attributevalue.UnmarshalMap(res.Attributes, &counter); err != nil {
		return 0, fmt.Errorf("unmarshal sequence value: %w", err)
	}
	return counter.Value, nil
}
