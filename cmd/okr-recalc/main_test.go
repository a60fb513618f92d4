package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/okr-performance-api/internal/models"
)

func TestResolveMonth(t *testing.T) {
	now := time.Date(2024, 1, 20, 15, 0, 0, 0, time.UTC)

	month, err := resolveMonth("", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC), month)

	month, err = resolveMonth("2024-03-09", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), month)

	_, err = resolveMonth("March", now)
	require.Error(t, err)
}

func TestPrintRanking(t *testing.T) {
	rows := []models.RankingRow{
		{Rank: 1, UserID: "u1", UserName: "Ana", Department: models.DepartmentHardware, FinalScore: decimal.RequireFromString("71.5")},
		{Rank: 2, UserID: "u2", UserName: "Budi", Department: models.DepartmentSoftware, FinalScore: decimal.RequireFromString("64")},
	}

	var buf bytes.Buffer
	require.NoError(t, printRanking(&buf, rows, false))
	out := buf.String()
	assert.Contains(t, out, "RANK")
	assert.Contains(t, out, "71.50")
	assert.Contains(t, out, "64.00")

	buf.Reset()
	require.NoError(t, printRanking(&buf, rows, true))
	assert.Contains(t, buf.String(), `"user_id": "u1"`)
}
