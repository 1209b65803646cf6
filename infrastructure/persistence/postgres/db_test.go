package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTxManager_CommitsOnSuccess(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	manager := NewTxManager(db)
	repo := NewPermissionRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM permissions").WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err = manager.WithinTx(ctx, func(ctx context.Context) error {
		return repo.DeleteByUser(ctx, 1)
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTxManager_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	manager := NewTxManager(db)
	repo := NewPermissionRepository(db)
	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM permissions").WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	err = manager.WithinTx(ctx, func(ctx context.Context) error {
		if err := repo.DeleteByUser(ctx, 1); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTxManager_NestedJoinsOuterTransaction(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	manager := NewTxManager(db)
	repo := NewPermissionRepository(db)

	// a single Begin/Commit pair even though WithinTx nests
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM permissions").WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM permissions").WithArgs(int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err = manager.WithinTx(ctx, func(ctx context.Context) error {
		if err := repo.DeleteByUser(ctx, 1); err != nil {
			return err
		}
		return manager.WithinTx(ctx, func(ctx context.Context) error {
			return repo.DeleteByUser(ctx, 2)
		})
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
