package audit

import (
	"encoding/json"
	"net/http"
	"testing"

	"harvestease-backend/internal/database"
	"harvestease-backend/internal/models"
	"harvestease-backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteLogCapturesBeforeAndAfter(t *testing.T) {
	testutil.SetupDB(t)

	type snapshot struct {
		Amount float64 `json:"amount"`
	}

	err := WriteLog(LogOptions{
		UserID:      3,
		UserName:    "Sunil",
		EntityType:  "expense",
		EntityID:    7,
		Action:      models.AuditActionUpdate,
		Description: "Expense updated: Fertilizer - 150.00",
		Before:      snapshot{Amount: 100},
		After:       snapshot{Amount: 150},
	})
	require.NoError(t, err)

	var entry models.AuditLog
	require.NoError(t, database.DB.First(&entry).Error)

	var before, after snapshot
	require.NoError(t, json.Unmarshal(entry.BeforeData, &before))
	require.NoError(t, json.Unmarshal(entry.AfterData, &after))
	assert.Equal(t, 100.0, before.Amount)
	assert.Equal(t, 150.0, after.Amount)
	assert.Equal(t, "Sunil", entry.UserName)
}

func TestWriteLogNilSnapshotsStoredAsNull(t *testing.T) {
	testutil.SetupDB(t)

	require.NoError(t, WriteLog(LogOptions{
		UserID:     1,
		EntityType: "sale",
		EntityID:   1,
		Action:     models.AuditActionDelete,
	}))

	var entry models.AuditLog
	require.NoError(t, database.DB.First(&entry).Error)
	assert.JSONEq(t, "null", string(entry.BeforeData))
	assert.JSONEq(t, "null", string(entry.AfterData))
}

func TestListAuditLogsFilters(t *testing.T) {
	testutil.SetupDB(t)

	for i := 1; i <= 3; i++ {
		require.NoError(t, WriteLog(LogOptions{
			UserID:     1,
			EntityType: "sale",
			EntityID:   uint(i),
			Action:     models.AuditActionCreate,
		}))
	}
	require.NoError(t, WriteLog(LogOptions{
		UserID:     1,
		EntityType: "expense",
		EntityID:   1,
		Action:     models.AuditActionCreate,
	}))

	app := testutil.NewApp()
	app.Use(testutil.AsUser(1, models.RoleAdmin))
	app.Get("/audit-logs", ListAuditLogsHandler())

	var logs []models.AuditLog
	status := testutil.DoJSON(t, app, "GET", "/audit-logs", nil, &logs)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, logs, 4)

	status = testutil.DoJSON(t, app, "GET", "/audit-logs?entity_type=sale", nil, &logs)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, logs, 3)

	status = testutil.DoJSON(t, app, "GET", "/audit-logs?entity_type=sale&entity_id=2", nil, &logs)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, logs, 1)
	assert.Equal(t, uint(2), logs[0].EntityID)

	status = testutil.DoJSON(t, app, "GET", "/audit-logs?limit=2", nil, &logs)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, logs, 2)
}
