package service

import (
	"context"
	"testing"

	"github.com/alexanderramin/casetree/internal/domain"
	"github.com/alexanderramin/casetree/internal/repository"
	"github.com/alexanderramin/casetree/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProjectService(t *testing.T) ProjectService {
	t.Helper()
	return NewProjectService(repository.NewSQLiteProjectRepo(testutil.NewTestDB(t)))
}

func TestProjectService_Create_NormalizesShortID(t *testing.T) {
	svc := newProjectService(t)
	ctx := context.Background()

	p := &domain.Project{Name: "  Mobile App  ", ShortID: " mob01 "}
	require.NoError(t, svc.Create(ctx, p))
	assert.NotEmpty(t, p.ID, "UUID should be generated")
	assert.Equal(t, "MOB01", p.ShortID)
	assert.Equal(t, "Mobile App", p.Name)

	fetched, err := svc.GetByShortID(ctx, "MOB01")
	require.NoError(t, err)
	assert.Equal(t, p.ID, fetched.ID)
}

func TestProjectService_Create_Rejects(t *testing.T) {
	svc := newProjectService(t)
	ctx := context.Background()

	assert.ErrorIs(t, svc.Create(ctx, &domain.Project{Name: " ", ShortID: "ABC"}), ErrEmptyName)
	assert.ErrorIs(t, svc.Create(ctx, &domain.Project{Name: "x", ShortID: "A"}), ErrInvalidProject, "short id too short")
	assert.ErrorIs(t, svc.Create(ctx, &domain.Project{Name: "x", ShortID: "AB-1"}), ErrInvalidProject)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestProjectService_DuplicateShortID(t *testing.T) {
	svc := newProjectService(t)
	ctx := context.Background()

	require.NoError(t, svc.Create(ctx, &domain.Project{Name: "One", ShortID: "DUP"}))
	assert.ErrorIs(t, svc.Create(ctx, &domain.Project{Name: "Two", ShortID: "dup"}), ErrInvalidProject)
}

func TestProjectService_Delete(t *testing.T) {
	svc := newProjectService(t)
	ctx := context.Background()

	p := &domain.Project{Name: "Gone", ShortID: "GONE"}
	require.NoError(t, svc.Create(ctx, p))
	require.NoError(t, svc.Delete(ctx, p.ID))

	_, err := svc.GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, p.ID), repository.ErrNotFound)
}
