package repo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blog-platform/backend/internal/models"
)

func TestUserRepo_Create_EmailCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	users := &UserRepo{DB: initTestDB(t)}

	user := models.User{Name: "Alice", Email: "Alice@X.com", PasswordHash: "h", Role: models.RoleAuthor}
	require.NoError(t, users.Create(ctx, &user))
	assert.Equal(t, "alice@x.com", user.Email)

	dup := models.User{Name: "Other", Email: "ALICE@x.COM", PasswordHash: "h", Role: models.RoleAuthor}
	err := users.Create(ctx, &dup)
	assert.ErrorIs(t, err, ErrEmailTaken)

	found, err := users.ByEmail(ctx, "aLiCe@x.CoM")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
}

func TestUserRepo_ByID_NotFound(t *testing.T) {
	ctx := context.Background()
	users := &UserRepo{DB: initTestDB(t)}

	_, err := users.ByID(ctx, 999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserRepo_List_FilterAndSearch(t *testing.T) {
	ctx := context.Background()
	users := &UserRepo{DB: initTestDB(t)}

	seed := []models.User{
		{Name: "Alice Smith", Email: "alice@x.com", PasswordHash: "h", Role: models.RoleAuthor},
		{Name: "Bob Jones", Email: "bob@x.com", PasswordHash: "h", Role: models.RoleAdmin},
		{Name: "Carol Smith", Email: "carol@y.com", PasswordHash: "h", Role: models.RoleAuthor},
	}
	for i := range seed {
		require.NoError(t, users.Create(ctx, &seed[i]))
	}

	all, total, err := users.List(ctx, "", "", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, all, 3)

	admins, total, err := users.List(ctx, models.RoleAdmin, "", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, admins, 1)
	assert.Equal(t, "bob@x.com", admins[0].Email)

	smiths, total, err := users.List(ctx, "", "smith", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, smiths, 2)
}
