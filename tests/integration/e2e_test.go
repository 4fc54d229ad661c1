//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pennypilot/pennypilot-backend/internal/adapter/repository/postgres"
)

var (
	db         *postgres.DB
	baseURL    string
	apiToken   string
	testUserID uuid.UUID
	httpClient = &http.Client{Timeout: 10 * time.Second}
)

// TestMain sets up the test environment: a live database connection for
// verification queries and a fresh user so runs never interfere.
func TestMain(m *testing.M) {
	ctx := context.Background()

	var err error
	db, err = postgres.NewDB(getDBConnectionString())
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to database: %v", err))
	}
	defer db.Close()

	baseURL = getEnvDefault("API_BASE_URL", "http://localhost:8080")
	apiToken = getEnvDefault("API_TOKEN", "dev-token")
	testUserID = uuid.New()

	code := m.Run()

	cleanupTestUser(ctx)
	os.Exit(code)
}

// cleanupTestUser removes every row the run created
func cleanupTestUser(ctx context.Context) {
	for _, table := range []string{"transactions", "budgets", "notifications", "goals", "categories"} {
		_, _ = db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE user_id = $1", table), testUserID)
	}
}

func getDBConnectionString() string {
	if connStr := os.Getenv("DB_CONN_STR"); connStr != "" {
		return connStr
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		getEnvDefault("DB_HOST", "localhost"),
		getEnvDefault("DB_PORT", "5432"),
		getEnvDefault("DB_USER", "postgres"),
		getEnvDefault("DB_PASSWORD", "postgres"),
		getEnvDefault("DB_NAME", "pennypilot"),
	)
}

func getEnvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// doRequest issues an authenticated API call and decodes the JSON body
func doRequest(t *testing.T, method, path string, body any) (int, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err, "Should be able to marshal request body")
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, baseURL+path, reader)
	require.NoError(t, err, "Should be able to build request")
	req.Header.Set("Authorization", "Bearer "+apiToken)
	req.Header.Set("X-User-ID", testUserID.String())
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	require.NoError(t, err, "Request should reach the server")
	defer resp.Body.Close()

	var decoded map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp.StatusCode, decoded
}

// TestEndToEndFlow exercises the budget consumption path: seed categories,
// create a budget, record expenses, and verify the spent counter plus the
// threshold notifications.
func TestEndToEndFlow(t *testing.T) {
	ctx := context.Background()

	// Step A: Seed the default category set
	status, body := doRequest(t, http.MethodPost, "/api/v1/categories/defaults", nil)
	require.Equal(t, http.StatusOK, status, "Seeding defaults should succeed")
	assert.Greater(t, body["created"].(float64), float64(0), "Fresh user should get categories created")

	// Step B: Create a monthly Groceries budget of 100.00 with the default
	// 80% alert threshold
	status, body = doRequest(t, http.MethodPost, "/api/v1/budgets", map[string]any{
		"category_name": "Groceries",
		"budget_amount": "100.00",
		"frequency":     "MONTHLY",
		"period_start":  time.Now().UTC().Format("2006-01-02"),
	})
	require.Equal(t, http.StatusCreated, status, "Budget creation should succeed")
	budgetID := body["id"].(string)
	require.NotEmpty(t, budgetID, "Budget ID should be returned")
	assert.Equal(t, "0.00", body["amount_spent"], "New budget starts unspent")

	// Step C: Record an expense below the warning band; no alerts yet
	status, _ = doRequest(t, http.MethodPost, "/api/v1/transactions", map[string]any{
		"type":          "EXPENSE",
		"category_name": "Groceries",
		"description":   "Weekly shop",
		"amount":        "50.00",
		"date":          time.Now().UTC().Format("2006-01-02"),
	})
	require.Equal(t, http.StatusCreated, status, "Expense creation should succeed")

	var spent string
	err := db.QueryRowContext(ctx,
		`SELECT amount_spent FROM budgets WHERE id = $1`, budgetID).Scan(&spent)
	require.NoError(t, err, "Should be able to query budget spent counter")
	spentDec, err := decimal.NewFromString(spent)
	require.NoError(t, err)
	assert.True(t, spentDec.Equal(decimal.RequireFromString("50")),
		"Spent counter should match the expense: got %s", spent)

	var alertCount int
	err = db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND title IN ('BUDGET_WARNING', 'BUDGET_EXCEEDED')`,
		testUserID).Scan(&alertCount)
	require.NoError(t, err)
	assert.Equal(t, 0, alertCount, "No threshold alerts below the warning band")

	// Step D: Cross into the warning band (50 + 35 = 85 >= 80)
	status, _ = doRequest(t, http.MethodPost, "/api/v1/transactions", map[string]any{
		"type":          "EXPENSE",
		"category_name": "Groceries",
		"description":   "Top-up shop",
		"amount":        "35.00",
		"date":          time.Now().UTC().Format("2006-01-02"),
	})
	require.Equal(t, http.StatusCreated, status)

	var warningCount int
	err = db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND title = 'BUDGET_WARNING'`,
		testUserID).Scan(&warningCount)
	require.NoError(t, err)
	assert.Equal(t, 1, warningCount, "Crossing the warning threshold should notify once")

	// Step E: Cross the limit (85 + 30 = 115 > 100)
	status, _ = doRequest(t, http.MethodPost, "/api/v1/transactions", map[string]any{
		"type":          "EXPENSE",
		"category_name": "Groceries",
		"description":   "Party supplies",
		"amount":        "30.00",
		"date":          time.Now().UTC().Format("2006-01-02"),
	})
	require.Equal(t, http.StatusCreated, status)

	var exceededCount int
	err = db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND title = 'BUDGET_EXCEEDED'`,
		testUserID).Scan(&exceededCount)
	require.NoError(t, err)
	assert.Equal(t, 1, exceededCount, "Crossing the limit should notify once")

	// Step F: The budget endpoint reflects the final counter
	status, body = doRequest(t, http.MethodGet, "/api/v1/budgets/"+budgetID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "115.00", body["amount_spent"], "Budget endpoint should show the accumulated spend")

	// Step G: The notification feed lists both alerts as unread
	status, body = doRequest(t, http.MethodGet, "/api/v1/notifications", nil)
	require.Equal(t, http.StatusOK, status)
	assert.GreaterOrEqual(t, body["unread"].(float64), float64(2), "Both alerts should be unread")
}

// TestNegativeScenarios verifies the API rejects what it should
func TestNegativeScenarios(t *testing.T) {
	t.Run("missing token", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodGet, baseURL+"/api/v1/budgets", nil)
		require.NoError(t, err)
		req.Header.Set("X-User-ID", testUserID.String())

		resp, err := httpClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("budget for unknown category", func(t *testing.T) {
		status, _ := doRequest(t, http.MethodPost, "/api/v1/budgets", map[string]any{
			"category_name": "No Such Category",
			"budget_amount": "100.00",
			"frequency":     "MONTHLY",
			"period_start":  time.Now().UTC().Format("2006-01-02"),
		})
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("transaction with invalid type", func(t *testing.T) {
		status, _ := doRequest(t, http.MethodPost, "/api/v1/transactions", map[string]any{
			"type":          "TRANSFER",
			"category_name": "Groceries",
			"amount":        "10.00",
			"date":          time.Now().UTC().Format("2006-01-02"),
		})
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("get budget of another user", func(t *testing.T) {
		otherUser := uuid.New()
		req, err := http.NewRequest(http.MethodGet, baseURL+"/api/v1/budgets", nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+apiToken)
		req.Header.Set("X-User-ID", otherUser.String())

		resp, err := httpClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Empty(t, body["budgets"], "Another user must not see this user's budgets")
	})
}
