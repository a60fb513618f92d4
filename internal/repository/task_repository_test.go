package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/okr-performance-api/internal/models"
)

var taskRowColumns = []string{"id", "title", "difficulty_score", "revenue_amount", "status", "owner_id", "collaborator_ids",
	"started_at", "completed_at", "postponed_at", "postpone_reason", "created_at", "updated_at"}

func TestTaskFindByIDLoadsCollaborators(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTaskRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(taskRowColumns).
		AddRow("t1", "Launch", 8, "15000.00", "completed", "u1", "{u2,u3}", now, now, now, "blocked", now, now)
	mock.ExpectQuery("SELECT t.id, t.title .* FROM tasks t WHERE t.id = \\$1").
		WithArgs("t1").
		WillReturnRows(rows)

	task, err := repo.FindByID(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, 8, task.DifficultyScore)
	assert.Equal(t, []string{"u2", "u3"}, []string(task.CollaboratorIDs))
	assert.True(t, task.WasEverPostponed())
	assert.Equal(t, "15000", task.RevenueAmount.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskUpdateStatus(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTaskRepository(db)

	mock.ExpectExec("UPDATE tasks SET status").WillReturnResult(sqlmock.NewResult(0, 1))

	now := time.Now().UTC()
	task := &models.Task{ID: "t1", Status: models.TaskStatusCompleted, CompletedAt: &now}
	require.NoError(t, repo.UpdateStatus(context.Background(), task))
	assert.False(t, task.UpdatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskListForParticipantInMonth(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTaskRepository(db)

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	rows := sqlmock.NewRows(taskRowColumns).
		AddRow("t1", "A", 5, "0", "completed", "u1", "{}", nil, start, nil, "", start, start).
		AddRow("t2", "B", 3, "0", "in_progress", "u2", "{u1}", start, nil, nil, "", start, start)
	mock.ExpectQuery("FROM tasks t\\s+WHERE \\(t.owner_id = \\$1").
		WithArgs("u1", start, end).
		WillReturnRows(rows)

	tasks, err := repo.ListForParticipantInMonth(context.Background(), "u1", start, end)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.True(t, tasks[1].IsParticipant("u1"))
	assert.Empty(t, tasks[0].CollaboratorIDs)
	assert.NoError(t, mock.ExpectationsWereMet())
}
