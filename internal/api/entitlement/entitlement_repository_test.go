package entitlement

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assinadoc/assinadoc-api/internal/types"
)

func TestPostgresEntitlementRepo_GetSignupDate(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("returns stamped signup date", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()

		signup := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
		mockPool.ExpectQuery(`SELECT signup_date FROM users WHERE id = \$1`).
			WithArgs(userID).
			WillReturnRows(pgxmock.NewRows([]string{"signup_date"}).AddRow(&signup))

		repo := NewPostgresEntitlementRepo(mockPool)
		got, err := repo.GetSignupDate(ctx, userID)

		require.NoError(t, err)
		require.NotNil(t, got)
		assert.True(t, got.Equal(signup))
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("returns nil for unstamped user", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()

		mockPool.ExpectQuery(`SELECT signup_date FROM users WHERE id = \$1`).
			WithArgs(userID).
			WillReturnRows(pgxmock.NewRows([]string{"signup_date"}).AddRow((*time.Time)(nil)))

		repo := NewPostgresEntitlementRepo(mockPool)
		got, err := repo.GetSignupDate(ctx, userID)

		require.NoError(t, err)
		assert.Nil(t, got)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("maps missing user to ErrNotFound", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()

		mockPool.ExpectQuery(`SELECT signup_date FROM users WHERE id = \$1`).
			WithArgs(userID).
			WillReturnRows(pgxmock.NewRows([]string{"signup_date"}))

		repo := NewPostgresEntitlementRepo(mockPool)
		_, err = repo.GetSignupDate(ctx, userID)

		require.Error(t, err)
		assert.ErrorIs(t, err, types.ErrNotFound)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("wraps database errors", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()

		mockPool.ExpectQuery(`SELECT signup_date FROM users WHERE id = \$1`).
			WithArgs(userID).
			WillReturnError(errors.New("connection reset"))

		repo := NewPostgresEntitlementRepo(mockPool)
		_, err = repo.GetSignupDate(ctx, userID)

		require.Error(t, err)
		assert.NotErrorIs(t, err, types.ErrNotFound)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestPostgresEntitlementRepo_HasActiveUserPlan(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	query := `SELECT EXISTS \(SELECT 1 FROM user_plans WHERE user_id = \$1 AND status = \$2\)`

	t.Run("true when an active row exists", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()

		mockPool.ExpectQuery(query).
			WithArgs(userID, types.UserPlanStatusActive).
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

		repo := NewPostgresEntitlementRepo(mockPool)
		got, err := repo.HasActiveUserPlan(ctx, userID)

		require.NoError(t, err)
		assert.True(t, got)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("false when none", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()

		mockPool.ExpectQuery(query).
			WithArgs(userID, types.UserPlanStatusActive).
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

		repo := NewPostgresEntitlementRepo(mockPool)
		got, err := repo.HasActiveUserPlan(ctx, userID)

		require.NoError(t, err)
		assert.False(t, got)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("surfaces query errors", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()

		mockPool.ExpectQuery(query).
			WithArgs(userID, types.UserPlanStatusActive).
			WillReturnError(errors.New("timeout"))

		repo := NewPostgresEntitlementRepo(mockPool)
		got, err := repo.HasActiveUserPlan(ctx, userID)

		require.Error(t, err)
		assert.False(t, got)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}
