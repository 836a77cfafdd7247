package dynamo

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jobboard-api/internal/domain"
)

// TicketRepo stores recovery tickets.
// PK: user_id, SK: type. expires_at is the table TTL attribute.
type TicketRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewTicketRepo(client *dynamodb.Client, tableName string) *TicketRepo {
	return &TicketRepo{client: client, tableName: tableName}
}

// Save writes t if the stored version still equals prevVersion (0 means absent).
// A lost race returns ErrConflict.
func (r *TicketRepo) Save(ctx context.Context, t *domain.RecoveryTicket, prevVersion int64) error {
	in, err := putTicketInput(r.tableName, t, prevVersion)
	if err != nil {
		return err
	}
	_, err = r.client.PutItem(ctx, in)
	if isConditionFailed(err) {
		return fmt.Errorf("ticket changed concurrently: %w", domain.ErrConflict)
	}
	return err
}

func putTicketInput(table string, t *domain.RecoveryTicket, prevVersion int64) (*dynamodb.PutItemInput, error) {
	item, err := attributevalue.MarshalMap(t)
	if err != nil {
		return nil, fmt.Errorf("marshal ticket: %w", err)
	}
	in := &dynamodb.PutItemInput{
		TableName: aws.String(table),
		Item:      item,
	}
	if prevVersion == 0 {
		in.ConditionExpression = aws.String("attribute_not_exists(#id)")
		in.ExpressionAttributeNames = map[string]string{"#id": fieldUserID}
		return in, nil
	}
	in.ConditionExpression = aws.String("#ver = :prev")
	in.ExpressionAttributeNames = map[string]string{"#ver": fieldVersion}
	in.ExpressionAttributeValues = versionValue(":prev", prevVersion)
	return in, nil
}

func (r *TicketRepo) Get(ctx context.Context, userID, ticketType string) (*domain.RecoveryTicket, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            compositeKey(fieldUserID, userID, fieldType, ticketType),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("ticket not found: %w", domain.ErrNotFound)
	}
	var t domain.RecoveryTicket
	if err := attributevalue.UnmarshalMap(out.Item, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Delete removes the ticket only if it is still at version. Losing that race
// means somebody else consumed it, reported as ErrNotFound.
func (r *TicketRepo) Delete(ctx context.Context, userID, ticketType string, version int64) error {
	_, err := r.client.DeleteItem(ctx, deleteTicketInput(r.tableName, userID, ticketType, version))
	if isConditionFailed(err) {
		return fmt.Errorf("ticket already consumed: %w", domain.ErrNotFound)
	}
	return err
}

func deleteTicketInput(table, userID, ticketType string, version int64) *dynamodb.DeleteItemInput {
	return &dynamodb.DeleteItemInput{
		TableName:                 aws.String(table),
		Key:                       compositeKey(fieldUserID, userID, fieldType, ticketType),
		ConditionExpression:       aws.String("#ver = :v"),
		ExpressionAttributeNames:  map[string]string{"#ver": fieldVersion},
		ExpressionAttributeValues: versionValue(":v", version),
	}
}

func versionValue(placeholder string, version int64) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		placeholder: &types.AttributeValueMemberN{Value: strconv.FormatInt(version, 10)},
	}
}
