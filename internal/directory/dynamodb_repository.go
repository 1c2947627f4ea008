package directory

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoDBClient defines the interface for DynamoDB operations.
type DynamoDBClient interface {
	GetItem(ctx context.Context, input *dynamodb.GetItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Query(ctx context.Context, input *dynamodb.QueryInput, opts ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	PutItem(ctx context.Context, input *dynamodb.PutItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// DynamoDBRepository implements Repository using DynamoDB.
//
// The table is keyed by AccountEmail, with two global secondary indexes:
// AccountName-Enum-Index (AccountName partition key, Enum sort key) and
// AccountId-Index (AccountId partition key).
type DynamoDBRepository struct {
	client    DynamoDBClient
	tableName string
}

// NewDynamoDBRepository creates a new DynamoDBRepository.
func NewDynamoDBRepository(client DynamoDBClient, tableName string) *DynamoDBRepository {
	return &DynamoDBRepository{
		client:    client,
		tableName: tableName,
	}
}

// GetByEmail retrieves the record keyed by the given account email.
func (r *DynamoDBRepository) GetByEmail(ctx context.Context, accountEmail string) (*AccountRecord, error) {
	output, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			AttrAccountEmail: &types.AttributeValueMemberS{Value: accountEmail},
		},
	})
	if err != nil {
		return nil, err
	}

	if output.Item == nil {
		return nil, ErrAccountNotFound
	}

	return unmarshalRecord(output.Item)
}

// GetOwnerAddress returns the registered owner for an account email, or the
// empty string when no record exists. Absence is not an error here: the mail
// router treats an unknown address as a catch-all candidate.
func (r *DynamoDBRepository) GetOwnerAddress(ctx context.Context, accountEmail string) (string, error) {
	output, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			AttrAccountEmail: &types.AttributeValueMemberS{Value: accountEmail},
		},
		ProjectionExpression: aws.String(AttrOwnerAddress),
	})
	if err != nil {
		return "", err
	}

	if output.Item == nil {
		return "", nil
	}

	if v, ok := output.Item[AttrOwnerAddress].(*types.AttributeValueMemberS); ok {
		return v.Value, nil
	}
	return "", nil
}

// GetByNamePrefix retrieves all records sharing a base name. baseName must not
// carry the trailing sequence.
func (r *DynamoDBRepository) GetByNamePrefix(ctx context.Context, baseName string) ([]*AccountRecord, error) {
	output, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(AccountEnumIndex),
		KeyConditionExpression: aws.String("AccountName = :name"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":name": &types.AttributeValueMemberS{Value: baseName},
		},
	})
	if err != nil {
		return nil, err
	}

	records := make([]*AccountRecord, 0, len(output.Items))
	for _, item := range output.Items {
		record, err := unmarshalRecord(item)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

// GetByFullName retrieves the single record matching a base name and sequence.
func (r *DynamoDBRepository) GetByFullName(ctx context.Context, baseName, enum string) (*AccountRecord, error) {
	output, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(AccountEnumIndex),
		KeyConditionExpression: aws.String("AccountName = :name AND #enum = :enum"),
		ExpressionAttributeNames: map[string]string{
			"#enum": AttrEnum,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":name": &types.AttributeValueMemberS{Value: baseName},
			":enum": &types.AttributeValueMemberS{Value: enum},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return nil, err
	}

	if len(output.Items) == 0 {
		return nil, ErrAccountNotFound
	}

	return unmarshalRecord(output.Items[0])
}

// GetByAccountID retrieves a record by its allocated account id.
func (r *DynamoDBRepository) GetByAccountID(ctx context.Context, accountID string) (*AccountRecord, error) {
	output, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(AccountIDIndex),
		KeyConditionExpression: aws.String("AccountId = :id"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":id": &types.AttributeValueMemberS{Value: accountID},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return nil, err
	}

	if len(output.Items) == 0 {
		return nil, ErrAccountNotFound
	}

	return unmarshalRecord(output.Items[0])
}

// Put stores a record, overwriting any existing record with the same email.
func (r *DynamoDBRepository) Put(ctx context.Context, record *AccountRecord) error {
	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return fmt.Errorf("marshalling account record: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// PutIfAbsent stores a record only if no record with the same email exists.
// The conditional write is the actual uniqueness guard for allocation; the
// collision lookups performed earlier are a fast path only.
func (r *DynamoDBRepository) PutIfAbsent(ctx context.Context, record *AccountRecord) error {
	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return fmt.Errorf("marshalling account record: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(AccountEmail)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return ErrAccountExists
		}
		return err
	}
	return nil
}

func unmarshalRecord(item map[string]types.AttributeValue) (*AccountRecord, error) {
	record := &AccountRecord{}
	if err := attributevalue.UnmarshalMap(item, record); err != nil {
		return nil, fmt.Errorf("unmarshalling account record: %w", err)
	}
	return record, nil
}
