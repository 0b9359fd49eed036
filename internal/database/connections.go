package database

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/imyashkale/helmwizard/internal/logger"
	"github.com/imyashkale/helmwizard/internal/models"
)

var (
	// ErrConnectionNotFound is returned when a connection does not exist
	ErrConnectionNotFound = errors.New("connection not found")
	// ErrConnectionAlreadyExists is returned when creating a connection whose id is taken
	ErrConnectionAlreadyExists = errors.New("connection already exists")
	// ErrConnectionChanged is returned when a check result no longer matches the stored token
	ErrConnectionChanged = errors.New("connection was changed or removed")
)

// ConnectionsDB handles DynamoDB operations for saved PAT connections
type ConnectionsDB struct {
	client    *Client
	tableName string
}

// NewConnectionsDB creates a new ConnectionsDB instance
func NewConnectionsDB(client *Client, tableName string) *ConnectionsDB {
	return &ConnectionsDB{
		client:    client,
		tableName: tableName,
	}
}

// CreateConnection stores a new connection, failing if the id is already taken
func (db *ConnectionsDB) CreateConnection(ctx context.Context, conn *models.Connection) error {
	av, err := attributevalue.MarshalMap(conn)
	if err != nil {
		return fmt.Errorf("failed to marshal connection: %w", err)
	}

	_, err = db.client.DynamoDB.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(db.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(Id)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return ErrConnectionAlreadyExists
		}
		logger.WithFields(map[string]interface{}{
			"connection_id": conn.Id,
			"error":         err.Error(),
		}).Error("Failed to create connection in DynamoDB")
		return fmt.Errorf("failed to create connection: %w", err)
	}

	logger.WithFields(map[string]interface{}{
		"connection_id": conn.Id,
		"user_id":       conn.UserId,
	}).Info("Connection created successfully in DynamoDB")

	return nil
}

// UpdateConnection overwrites an existing connection
func (db *ConnectionsDB) UpdateConnection(ctx context.Context, conn *models.Connection) error {
	av, err := attributevalue.MarshalMap(conn)
	if err != nil {
		return fmt.Errorf("failed to marshal connection: %w", err)
	}

	_, err = db.client.DynamoDB.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(db.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_exists(Id)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return ErrConnectionNotFound
		}
		return fmt.Errorf("failed to update connection: %w", err)
	}

	return nil
}

// UpdateConnectionStatus records a token check without touching the rest of the item.
// The write only applies while the stored token is still checkedToken.
func (db *ConnectionsDB) UpdateConnectionStatus(ctx context.Context, id, checkedToken string, check models.ConnectionCheck) error {
	checkedAt, err := attributevalue.Marshal(check.CheckedAt)
	if err != nil {
		return fmt.Errorf("failed to marshal check time: %w", err)
	}

	names := map[string]string{"#status": "Status"}
	values := map[string]types.AttributeValue{
		":status":  &types.AttributeValueMemberS{Value: check.Status},
		":checked": checkedAt,
		":token":   &types.AttributeValueMemberS{Value: checkedToken},
	}
	update := "SET #status = :status, LastCheckedAt = :checked"

	if check.User != nil {
		user, err := attributevalue.Marshal(*check.User)
		if err != nil {
			return fmt.Errorf("failed to marshal connection user: %w", err)
		}
		scopes, err := attributevalue.Marshal(check.Scopes)
		if err != nil {
			return fmt.Errorf("failed to marshal scopes: %w", err)
		}
		names["#user"] = "User"
		values[":user"] = user
		values[":scopes"] = scopes
		update += ", #user = :user, Scopes = :scopes"
	}

	_, err = db.client.DynamoDB.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(db.tableName),
		Key: map[string]types.AttributeValue{
			"Id": &types.AttributeValueMemberS{Value: id},
		},
		UpdateExpression:          aws.String(update),
		ConditionExpression:       aws.String("attribute_exists(Id) AND EncryptedToken = :token"),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return ErrConnectionChanged
		}
		return fmt.Errorf("failed to update connection status: %w", err)
	}

	return nil
}

// GetConnection retrieves a connection by ID
func (db *ConnectionsDB) GetConnection(ctx context.Context, id string) (*models.Connection, error) {
	logger.WithField("connection_id", id).Debug("Retrieving connection from DynamoDB")

	result, err := db.client.DynamoDB.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(db.tableName),
		Key: map[string]types.AttributeValue{
			"Id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get connection: %w", err)
	}

	if result.Item == nil {
		return nil, ErrConnectionNotFound
	}

	var conn models.Connection
	if err := attributevalue.UnmarshalMap(result.Item, &conn); err != nil {
		return nil, fmt.Errorf("failed to unmarshal connection: %w", err)
	}

	return &conn, nil
}

// ListConnectionsByUser returns a user's connections, newest first
func (db *ConnectionsDB) ListConnectionsByUser(ctx context.Context, userId string) ([]*models.Connection, error) {
	items, err := db.scan(ctx, &dynamodb.ScanInput{
		TableName:        aws.String(db.tableName),
		FilterExpression: aws.String("UserId = :userId"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":userId": &types.AttributeValueMemberS{Value: userId},
		},
	})
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"user_id": userId,
			"error":   err.Error(),
		}).Error("Failed to scan connections from DynamoDB")
		return nil, err
	}

	return items, nil
}

// ListAllConnections returns every stored connection
func (db *ConnectionsDB) ListAllConnections(ctx context.Context) ([]*models.Connection, error) {
	return db.scan(ctx, &dynamodb.ScanInput{
		TableName: aws.String(db.tableName),
	})
}

// DeleteConnection removes a connection by ID
func (db *ConnectionsDB) DeleteConnection(ctx context.Context, id string) error {
	_, err := db.client.DynamoDB.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(db.tableName),
		Key: map[string]types.AttributeValue{
			"Id": &types.AttributeValueMemberS{Value: id},
		},
		ConditionExpression: aws.String("attribute_exists(Id)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return ErrConnectionNotFound
		}
		return fmt.Errorf("failed to delete connection: %w", err)
	}

	logger.WithField("connection_id", id).Info("Connection deleted from DynamoDB")
	return nil
}

// scan follows pagination and returns the matching connections sorted newest first
func (db *ConnectionsDB) scan(ctx context.Context, input *dynamodb.ScanInput) ([]*models.Connection, error) {
	conns := make([]*models.Connection, 0)

	for {
		result, err := db.client.DynamoDB.Scan(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to scan connections: %w", err)
		}

		for _, item := range result.Items {
			var conn models.Connection
			if err := attributevalue.UnmarshalMap(item, &conn); err != nil {
				return nil, fmt.Errorf("failed to unmarshal connection: %w", err)
			}
			conns = append(conns, &conn)
		}

		if len(result.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = result.LastEvaluatedKey
	}

	sort.SliceStable(conns, func(i, j int) bool {
		return conns[i].NewerThan(conns[j])
	})

	return conns, nil
}
