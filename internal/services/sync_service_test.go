package services

import (
	"context"
	"errors"
	"testing"

	"macromate/internal/cache"
	"macromate/internal/models"
	"macromate/pkg/zendesk"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMacroLister struct {
	macros []zendesk.Macro
	err    error
	calls  int
}

func (f *fakeMacroLister) ListActiveMacros(ctx context.Context) ([]zendesk.Macro, error) {
	f.calls++
	return f.macros, f.err
}

func TestSyncService_Run_KeepsOnlyCommentMacros(t *testing.T) {
	db := newMacroTestDB(t)
	macros := NewMacroService(db, cache.NewMemoryStore(), nil)
	lister := &fakeMacroLister{macros: []zendesk.Macro{
		{
			ID:    1,
			Title: "Greeting",
			Actions: []zendesk.Action{
				{Field: "comment_value", Value: "Hello {{name}}"},
			},
		},
		{
			ID:    2,
			Title: "Close ticket",
			Actions: []zendesk.Action{
				{Field: "status", Value: "solved"},
			},
		},
	}}
	svc := NewSyncService(lister, macros, nil)

	require.NoError(t, svc.Run(context.Background()))

	stored, err := macros.List(context.Background())
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, int64(1), stored[0].ID)
	assert.Equal(t, "Greeting", stored[0].Title)
}

func TestSyncService_Run_Idempotent(t *testing.T) {
	db := newMacroTestDB(t)
	macros := NewMacroService(db, cache.NewMemoryStore(), nil)
	lister := &fakeMacroLister{macros: []zendesk.Macro{
		{
			ID:    1,
			Title: "Greeting",
			Actions: []zendesk.Action{
				{Field: "comment_value", Value: "Hello"},
			},
		},
	}}
	svc := NewSyncService(lister, macros, nil)
	ctx := context.Background()

	require.NoError(t, svc.Run(ctx))
	require.NoError(t, svc.Run(ctx))
	assert.Equal(t, 2, lister.calls)

	var count int64
	require.NoError(t, db.Model(&models.Macro{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSyncService_Run_ListerError(t *testing.T) {
	db := newMacroTestDB(t)
	macros := NewMacroService(db, cache.NewMemoryStore(), nil)
	lister := &fakeMacroLister{err: errors.New("zendesk unavailable")}
	svc := NewSyncService(lister, macros, nil)

	err := svc.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "zendesk unavailable")
}

func TestFilterCommentMacros(t *testing.T) {
	in := []zendesk.Macro{
		{ID: 1, Actions: []zendesk.Action{{Field: "comment_value", Value: "a"}}},
		{ID: 2, Actions: []zendesk.Action{{Field: "priority", Value: "high"}}},
		{ID: 3, Actions: []zendesk.Action{
			{Field: "status", Value: "open"},
			{Field: "comment_value", Value: "b"},
		}},
	}

	out := FilterCommentMacros(in)
	require.Len(t, out, 2)
	assert.Equal(t, int64(1), out[0].ID)
	assert.Equal(t, int64(3), out[1].ID)
}
