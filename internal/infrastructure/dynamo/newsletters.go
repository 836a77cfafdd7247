package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jobboard-api/internal/domain"
)

// NewsletterRepo provides typed DynamoDB operations for the newsletters table.
type NewsletterRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewNewsletterRepo(client *dynamodb.Client, tableName string) *NewsletterRepo {
	return &NewsletterRepo{client: client, tableName: tableName}
}

func (r *NewsletterRepo) Put(ctx context.Context, n *domain.Newsletter) error {
	item, err := attributevalue.MarshalMap(n)
	if err != nil {
		return fmt.Errorf("marshal newsletter: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *NewsletterRepo) Get(ctx context.Context, id string) (*domain.Newsletter, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("newsletter_id", id),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("newsletter not found: %w", domain.ErrNotFound)
	}
	var n domain.Newsletter
	if err := attributevalue.UnmarshalMap(out.Item, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *NewsletterRepo) Update(ctx context.Context, id string, updates map[string]any) error {
	delete(updates, fieldCreatedBy)
	updates[fieldUpdatedAt] = time.Now().UTC()
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	ue.Names["#id"] = "newsletter_id"
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("newsletter_id", id),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("attribute_exists(#id)"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	if isConditionFailed(err) {
		return fmt.Errorf("newsletter not found: %w", domain.ErrNotFound)
	}
	return err
}

func (r *NewsletterRepo) Delete(ctx context.Context, id string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                aws.String(r.tableName),
		Key:                      strKey("newsletter_id", id),
		ConditionExpression:      aws.String("attribute_exists(#id)"),
		ExpressionAttributeNames: map[string]string{"#id": "newsletter_id"},
	})
	if isConditionFailed(err) {
		return fmt.Errorf("newsletter not found: %w", domain.ErrNotFound)
	}
	return err
}

// List pushes the visibility predicate down to DynamoDB. When authorID is set
// the author index is queried newest first; otherwise the table is scanned.
// The caller still applies the predicate in memory and sorts.
func (r *NewsletterRepo) List(ctx context.Context, authorID, viewerID string, publicOnly bool) ([]domain.Newsletter, error) {
	f := visibilityFilter(viewerID, publicOnly)

	var pages interface {
		HasMorePages() bool
	}
	var next func(context.Context) ([]map[string]types.AttributeValue, error)

	if authorID != "" {
		in := &dynamodb.QueryInput{
			TableName:                 aws.String(r.tableName),
			IndexName:                 aws.String(indexCreatedByCreated),
			KeyConditionExpression:    aws.String("#author = :author"),
			ExpressionAttributeNames:  map[string]string{"#author": fieldCreatedBy},
			ExpressionAttributeValues: map[string]types.AttributeValue{":author": &types.AttributeValueMemberS{Value: authorID}},
			ScanIndexForward:          aws.Bool(false),
		}
		if f != nil {
			in.FilterExpression = aws.String(f.expr)
			f.mergeInto(in.ExpressionAttributeNames, in.ExpressionAttributeValues)
		}
		p := dynamodb.NewQueryPaginator(r.client, in)
		pages = p
		next = func(ctx context.Context) ([]map[string]types.AttributeValue, error) {
			out, err := p.NextPage(ctx)
			if err != nil {
				return nil, err
			}
			return out.Items, nil
		}
	} else {
		in := &dynamodb.ScanInput{TableName: aws.String(r.tableName)}
		if f != nil {
			in.FilterExpression = aws.String(f.expr)
			in.ExpressionAttributeNames = map[string]string{}
			in.ExpressionAttributeValues = map[string]types.AttributeValue{}
			f.mergeInto(in.ExpressionAttributeNames, in.ExpressionAttributeValues)
		}
		p := dynamodb.NewScanPaginator(r.client, in)
		pages = p
		next = func(ctx context.Context) ([]map[string]types.AttributeValue, error) {
			out, err := p.NextPage(ctx)
			if err != nil {
				return nil, err
			}
			return out.Items, nil
		}
	}

	var items []domain.Newsletter
	for pages.HasMorePages() {
		raw, err := next(ctx)
		if err != nil {
			return nil, err
		}
		var batch []domain.Newsletter
		if err := attributevalue.UnmarshalListOfMaps(raw, &batch); err != nil {
			return nil, err
		}
		items = append(items, batch...)
	}
	return items, nil
}

type filterExpr struct {
	expr   string
	names  map[string]string
	values map[string]types.AttributeValue
}

func (f *filterExpr) mergeInto(names map[string]string, values map[string]types.AttributeValue) {
	for k, v := range f.names {
		names[k] = v
	}
	for k, v := range f.values {
		values[k] = v
	}
}

// visibilityFilter returns nil when every item is visible.
func visibilityFilter(viewerID string, publicOnly bool) *filterExpr {
	notPrivate := map[string]types.AttributeValue{":f": &types.AttributeValueMemberBOOL{Value: false}}
	switch {
	case publicOnly:
		return &filterExpr{
			expr:   "#p = :f",
			names:  map[string]string{"#p": fieldIsPrivate},
			values: notPrivate,
		}
	case viewerID != "":
		notPrivate[":viewer"] = &types.AttributeValueMemberS{Value: viewerID}
		return &filterExpr{
			expr:   "(#p = :f OR #c = :viewer)",
			names:  map[string]string{"#p": fieldIsPrivate, "#c": fieldCreatedBy},
			values: notPrivate,
		}
	default:
		return nil
	}
}
