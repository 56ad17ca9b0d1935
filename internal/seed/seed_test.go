package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"item-catalog/internal/core/database"
	"item-catalog/internal/domain"
	"item-catalog/internal/repo"
)

func TestLoad(t *testing.T) {
	ctx := context.Background()
	db, err := database.OpenMemory(t.Name())
	require.NoError(t, err)

	require.NoError(t, Load(ctx, db))

	cats, err := repo.NewCategoryRepo(db).List(ctx)
	require.NoError(t, err)
	require.Len(t, cats, len(Categories))

	baseball, err := repo.NewCategoryRepo(db).FindByName(ctx, "Baseball")
	require.NoError(t, err)
	items, err := repo.NewItemRepo(db).ListByCategory(ctx, baseball.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "Bat", items[0].Name)

	owner, err := repo.NewUserRepo(db).FindByEmail(ctx, Owner.Email)
	require.NoError(t, err)
	require.Equal(t, owner.ID, baseball.UserID)
	require.Equal(t, owner.ID, items[0].UserID)
}

func TestLoad_TwiceRollsBack(t *testing.T) {
	ctx := context.Background()
	db, err := database.OpenMemory(t.Name())
	require.NoError(t, err)
	require.NoError(t, Load(ctx, db))

	require.ErrorIs(t, Load(ctx, db), domain.ErrConflict)

	var n int64
	require.NoError(t, db.Model(&domain.User{}).Count(&n).Error)
	require.EqualValues(t, 1, n)
}
