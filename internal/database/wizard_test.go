package database

import (
	"context"
	"testing"
	"time"

	"github.com/imyashkale/helmwizard/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWizardDB_RoundTrip(t *testing.T) {
	db := NewWizardDB(&Client{DynamoDB: newFakeDynamo("UserId")}, "WizardConfigs")
	ctx := context.Background()

	_, err := db.GetWizardConfig(ctx, "u1")
	assert.ErrorIs(t, err, ErrWizardConfigNotFound)

	cfg := &models.WizardConfig{
		UserId:   "u1",
		Owner:    "acme",
		RepoName: "Helm-booking",
		AppName:  "booking",
		Teams: []models.SelectedTeam{
			{Slug: "platform", Name: "Platform", Permission: models.PermissionMaintain},
		},
		Variables: map[string]interface{}{"APP_NAME": "booking", "REPLICAS": 2, "DEBUG": true},
		VarDefs: []models.VarDef{
			{Key: "APP_NAME", Files: []string{"values.yaml"}, Type: models.VarTypeString, Required: true},
		},
		UpdatedAt: time.Unix(1700000000, 0),
	}
	require.NoError(t, db.PutWizardConfig(ctx, cfg))

	got, err := db.GetWizardConfig(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "acme", got.Owner)
	assert.Equal(t, cfg.Teams, got.Teams)
	assert.Equal(t, "booking", got.Variables["APP_NAME"])
	assert.Equal(t, float64(2), got.Variables["REPLICAS"])
	assert.Equal(t, true, got.Variables["DEBUG"])
	require.Len(t, got.VarDefs, 1)
	assert.True(t, got.VarDefs[0].Required)
}
