package repositories_test

import (
	"context"
	"testing"

	"agenda/internal/database"
	"agenda/internal/models"
	"agenda/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContactRepo(t *testing.T) *repositories.GORMContactRepository {
	t.Helper()
	db, err := database.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(db) })
	return repositories.NewGORMContactRepository(db)
}

func sampleContact(name string) *models.Contact {
	return &models.Contact{
		FullName: name,
		Phone:    "19987654321",
		Email:    "renan.marques3@fatec.sp.gov.br",
		Note:     "teste",
	}
}

func TestGORMContactRepository_CreateAndGetAll(t *testing.T) {
	repo := newContactRepo(t)
	ctx := context.Background()

	first := sampleContact("Renan Marques")
	second := sampleContact("Maria Silva")
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))
	assert.NotZero(t, first.ID)
	assert.Greater(t, second.ID, first.ID)

	contacts, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, contacts, 2)
	assert.Equal(t, "Renan Marques", contacts[0].FullName)
	assert.Equal(t, "Maria Silva", contacts[1].FullName)
}

func TestGORMContactRepository_CreateIgnoresCallerID(t *testing.T) {
	repo := newContactRepo(t)
	ctx := context.Background()

	contact := sampleContact("Renan Marques")
	contact.ID = 42
	require.NoError(t, repo.Create(ctx, contact))
	assert.Equal(t, uint(1), contact.ID)
}

func TestGORMContactRepository_GetAllEmpty(t *testing.T) {
	repo := newContactRepo(t)

	contacts, err := repo.GetAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, contacts)
}

func TestGORMContactRepository_GetByID(t *testing.T) {
	repo := newContactRepo(t)
	ctx := context.Background()

	contact := sampleContact("Renan Marques")
	require.NoError(t, repo.Create(ctx, contact))

	found, err := repo.GetByID(ctx, contact.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renan Marques - renan.marques3@fatec.sp.gov.br", found.String())

	_, err = repo.GetByID(ctx, 9999)
	assert.ErrorIs(t, err, repositories.ErrContactNotFound)
}

func TestGORMContactRepository_Update(t *testing.T) {
	repo := newContactRepo(t)
	ctx := context.Background()

	contact := sampleContact("Renan Marques")
	require.NoError(t, repo.Create(ctx, contact))

	contact.FullName = "Nome Editado"
	contact.Note = ""
	require.NoError(t, repo.Update(ctx, contact))

	found, err := repo.GetByID(ctx, contact.ID)
	require.NoError(t, err)
	assert.Equal(t, "Nome Editado", found.FullName)
	assert.Empty(t, found.Note)

	missing := sampleContact("Ninguem")
	missing.ID = 9999
	err = repo.Update(ctx, missing)
	assert.ErrorIs(t, err, repositories.ErrContactNotFound)
}

func TestGORMContactRepository_Delete(t *testing.T) {
	repo := newContactRepo(t)
	ctx := context.Background()

	contact := sampleContact("Renan Marques")
	require.NoError(t, repo.Create(ctx, contact))

	require.NoError(t, repo.Delete(ctx, contact.ID))
	_, err := repo.GetByID(ctx, contact.ID)
	assert.ErrorIs(t, err, repositories.ErrContactNotFound)

	err = repo.Delete(ctx, contact.ID)
	assert.ErrorIs(t, err, repositories.ErrContactNotFound)
}
