package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/imyashkale/helmwizard/internal/logger"
	"github.com/imyashkale/helmwizard/internal/models"
)

// ErrWizardConfigNotFound is returned when a user has not started the wizard yet
var ErrWizardConfigNotFound = errors.New("wizard config not found")

// WizardDB handles DynamoDB operations for per-user wizard state
type WizardDB struct {
	client    *Client
	tableName string
}

// NewWizardDB creates a new WizardDB instance
func NewWizardDB(client *Client, tableName string) *WizardDB {
	return &WizardDB{
		client:    client,
		tableName: tableName,
	}
}

// GetWizardConfig retrieves the wizard state of a user
func (db *WizardDB) GetWizardConfig(ctx context.Context, userId string) (*models.WizardConfig, error) {
	result, err := db.client.DynamoDB.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(db.tableName),
		Key: map[string]types.AttributeValue{
			"UserId": &types.AttributeValueMemberS{Value: userId},
		},
	})
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"user_id": userId,
			"error":   err.Error(),
		}).Error("Failed to get wizard config from DynamoDB")
		return nil, fmt.Errorf("failed to get wizard config: %w", err)
	}

	if result.Item == nil {
		return nil, ErrWizardConfigNotFound
	}

	var cfg models.WizardConfig
	if err := attributevalue.UnmarshalMap(result.Item, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal wizard config: %w", err)
	}

	return &cfg, nil
}

// PutWizardConfig stores the full wizard state of a user
func (db *WizardDB) PutWizardConfig(ctx context.Context, cfg *models.WizardConfig) error {
	av, err := attributevalue.MarshalMap(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal wizard config: %w", err)
	}

	_, err = db.client.DynamoDB.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(db.tableName),
		Item:      av,
	})
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"user_id": cfg.UserId,
			"error":   err.Error(),
		}).Error("Failed to put wizard config in DynamoDB")
		return fmt.Errorf("failed to put wizard config: %w", err)
	}

	logger.WithField("user_id", cfg.UserId).Debug("Wizard config stored in DynamoDB")
	return nil
}
