package services

import (
	"context"
	"testing"
	"time"

	"macromate/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newFeedbackTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:feedback_service_" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.Feedback{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return db
}

func TestFeedbackCreateRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     FeedbackCreateRequest
		wantErr error
	}{
		{
			name: "positive without written feedback",
			req: FeedbackCreateRequest{
				TicketID:       42,
				FeedbackType:   models.FeedbackPositive,
				GenerationType: models.GenerationMacro,
			},
		},
		{
			name: "negative with written feedback",
			req: FeedbackCreateRequest{
				TicketID:        42,
				FeedbackType:    models.FeedbackNegative,
				GenerationType:  models.GenerationAI,
				WrittenFeedback: "Reply was off-topic",
			},
		},
		{
			name: "missing ticket id",
			req: FeedbackCreateRequest{
				FeedbackType:   models.FeedbackPositive,
				GenerationType: models.GenerationMacro,
			},
			wantErr: ErrTicketIDRequired,
		},
		{
			name: "unknown feedback type",
			req: FeedbackCreateRequest{
				TicketID:       42,
				FeedbackType:   "meh",
				GenerationType: models.GenerationMacro,
			},
			wantErr: ErrInvalidFeedbackType,
		},
		{
			name: "unknown generation type",
			req: FeedbackCreateRequest{
				TicketID:       42,
				FeedbackType:   models.FeedbackPositive,
				GenerationType: "human",
			},
			wantErr: ErrInvalidGenerationType,
		},
		{
			name: "negative requires written feedback",
			req: FeedbackCreateRequest{
				TicketID:        42,
				FeedbackType:    models.FeedbackNegative,
				GenerationType:  models.GenerationMacro,
				WrittenFeedback: "   ",
			},
			wantErr: ErrWrittenFeedbackRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFeedbackService_Create_JoinsPresets(t *testing.T) {
	db := newFeedbackTestDB(t)
	svc := NewFeedbackService(db, nil)

	created, err := svc.Create(context.Background(), &FeedbackCreateRequest{
		TicketID:        100,
		FeedbackType:    models.FeedbackNegative,
		FeedbackPresets: []string{"tone", "too long"},
		WrittenFeedback: "Rework the opening",
		GenerationType:  models.GenerationAI,
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "tone,too long", created.FeedbackPresets)

	var stored models.Feedback
	require.NoError(t, db.First(&stored, created.ID).Error)
	assert.Equal(t, "tone,too long", stored.FeedbackPresets)
	assert.False(t, stored.CreatedAt.IsZero())
}

func TestFeedbackService_Create_RejectsInvalid(t *testing.T) {
	db := newFeedbackTestDB(t)
	svc := NewFeedbackService(db, nil)

	_, err := svc.Create(context.Background(), &FeedbackCreateRequest{
		TicketID:       100,
		FeedbackType:   models.FeedbackNegative,
		GenerationType: models.GenerationMacro,
	})
	assert.ErrorIs(t, err, ErrWrittenFeedbackRequired)

	var count int64
	require.NoError(t, db.Model(&models.Feedback{}).Count(&count).Error)
	assert.Zero(t, count, "nothing is written when validation fails")
}

func seedFeedback(t *testing.T, db *gorm.DB, rows []models.Feedback) {
	t.Helper()
	for i := range rows {
		require.NoError(t, db.Create(&rows[i]).Error)
	}
}

func TestFeedbackService_Query_FiltersAreConjunctive(t *testing.T) {
	db := newFeedbackTestDB(t)
	svc := NewFeedbackService(db, nil)

	seedFeedback(t, db, []models.Feedback{
		{TicketID: 1, FeedbackType: models.FeedbackPositive, GenerationType: models.GenerationMacro},
		{TicketID: 2, FeedbackType: models.FeedbackPositive, GenerationType: models.GenerationAI},
		{TicketID: 3, FeedbackType: models.FeedbackNegative, GenerationType: models.GenerationAI, WrittenFeedback: "x"},
	})

	rows, err := svc.Query(context.Background(), &FeedbackFilter{
		FeedbackType:   models.FeedbackPositive,
		GenerationType: models.GenerationAI,
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(2), rows[0].TicketID)
}

func TestFeedbackService_Query_DateRangeInclusive(t *testing.T) {
	db := newFeedbackTestDB(t)
	svc := NewFeedbackService(db, nil)

	day := func(d string) time.Time {
		ts, err := time.Parse("2006-01-02 15:04", d)
		require.NoError(t, err)
		return ts
	}
	seedFeedback(t, db, []models.Feedback{
		{TicketID: 1, FeedbackType: models.FeedbackPositive, GenerationType: models.GenerationMacro, CreatedAt: day("2026-03-01 09:00")},
		{TicketID: 2, FeedbackType: models.FeedbackPositive, GenerationType: models.GenerationMacro, CreatedAt: day("2026-03-02 23:30")},
		{TicketID: 3, FeedbackType: models.FeedbackPositive, GenerationType: models.GenerationMacro, CreatedAt: day("2026-03-03 00:10")},
	})

	rows, err := svc.Query(context.Background(), &FeedbackFilter{
		StartDate: "2026-03-02",
		EndDate:   "2026-03-02",
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(2), rows[0].TicketID)
}

func TestFeedbackService_Query_InvalidDate(t *testing.T) {
	db := newFeedbackTestDB(t)
	svc := NewFeedbackService(db, nil)

	_, err := svc.Query(context.Background(), &FeedbackFilter{StartDate: "03/02/2026"})
	assert.ErrorIs(t, err, ErrInvalidDateRange)
}

func TestFeedbackService_Query_OldestFirst(t *testing.T) {
	db := newFeedbackTestDB(t)
	svc := NewFeedbackService(db, nil)

	seedFeedback(t, db, []models.Feedback{
		{TicketID: 10, FeedbackType: models.FeedbackPositive, GenerationType: models.GenerationMacro},
		{TicketID: 20, FeedbackType: models.FeedbackPositive, GenerationType: models.GenerationMacro},
	})

	rows, err := svc.Query(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(10), rows[0].TicketID)
	assert.Equal(t, int64(20), rows[1].TicketID)
}
