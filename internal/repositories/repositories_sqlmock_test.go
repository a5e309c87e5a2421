package repositories

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/gw-leaf-classifier/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

var (
	userColumns       = []string{"id", "name", "email", "hashed_password", "created_at"}
	predictionColumns = []string{"id", "user_id", "image_url", "predicted_label", "confidence", "model_version", "created_at"}
	feedbackColumns   = []string{"id", "user_id", "prediction_id", "rating", "is_correct", "comment", "created_at"}
)

func TestUserReadRepository_GetByEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserReadRepository(db, nil)
	ctx := context.Background()
	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery(`SELECT .* FROM users WHERE email = \$1`).
		WithArgs("alice@x.com").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(int64(1), "Alice", "alice@x.com", "hash", created))

	user, err := repo.GetByEmail(ctx, "alice@x.com")
	require.NoError(t, err)
	want := &models.UserDB{ID: 1, Name: "Alice", Email: "alice@x.com", HashedPassword: "hash", CreatedAt: created}
	if diff := cmp.Diff(want, user); diff != "" {
		t.Errorf("user mismatch (-want +got):\n%s", diff)
	}

	mock.ExpectQuery(`SELECT .* FROM users WHERE email = \$1`).
		WithArgs("nobody@x.com").
		WillReturnError(sql.ErrNoRows)

	user, err = repo.GetByEmail(ctx, "nobody@x.com")
	assert.NoError(t, err)
	assert.Nil(t, user)

	mock.ExpectQuery(`SELECT .* FROM users WHERE id = \$1`).
		WithArgs(int64(9)).
		WillReturnError(sql.ErrConnDone)

	user, err = repo.GetByID(ctx, 9)
	assert.ErrorIs(t, err, sql.ErrConnDone)
	assert.Nil(t, user)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserWriteRepository_Save(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserWriteRepository(db, nil)
	ctx := context.Background()
	insert := regexp.QuoteMeta(`INSERT INTO users (name, email, hashed_password, created_at)`)

	mock.ExpectQuery(insert).
		WithArgs("Alice", "alice@x.com", "hash").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(int64(5), "Alice", "alice@x.com", "hash", time.Now()))

	user, err := repo.Save(ctx, "Alice", "alice@x.com", "hash")
	require.NoError(t, err)
	assert.Equal(t, int64(5), user.ID)

	mock.ExpectQuery(insert).
		WithArgs("Alice", "alice@x.com", "hash").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	user, err = repo.Save(ctx, "Alice", "alice@x.com", "hash")
	assert.ErrorIs(t, err, models.ErrDuplicate)
	assert.Nil(t, user)

	mock.ExpectQuery(insert).
		WillReturnError(errors.New("connection refused"))

	_, err = repo.Save(ctx, "Bob", "bob@x.com", "hash")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, models.ErrDuplicate)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPredictionRepositories(t *testing.T) {
	db, mock := newMockDB(t)
	writer := NewPredictionWriteRepository(db, TxFromContext)
	reader := NewPredictionReadRepository(db, TxFromContext)
	ctx := context.Background()
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO predictions`)).
		WithArgs(int64(1), "https://b.s3.us-east-1.amazonaws.com/frogeye/a.jpg", "frogeye", 0.9, "resnet50_v1").
		WillReturnRows(sqlmock.NewRows(predictionColumns).
			AddRow(int64(10), int64(1), "https://b.s3.us-east-1.amazonaws.com/frogeye/a.jpg", "frogeye", 0.9, "resnet50_v1", now))

	saved, err := writer.Save(ctx, &models.PredictionDB{
		UserID:         1,
		ImageURL:       "https://b.s3.us-east-1.amazonaws.com/frogeye/a.jpg",
		PredictedLabel: "frogeye",
		Confidence:     0.9,
		ModelVersion:   "resnet50_v1",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(10), saved.ID)
	assert.Equal(t, now, saved.CreatedAt)

	mock.ExpectQuery(`FROM predictions WHERE user_id = \$1 ORDER BY created_at DESC, id DESC`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(predictionColumns).
			AddRow(int64(11), int64(1), "u2", "healthy", 0.7, "resnet50_v1", now).
			AddRow(int64(10), int64(1), "u1", "frogeye", 0.9, "resnet50_v1", now.Add(-time.Minute)))

	list, err := reader.ListByUserID(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, int64(11), list[0].ID)

	mock.ExpectQuery(`FROM predictions WHERE user_id = \$1`).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows(predictionColumns))

	list, err = reader.ListByUserID(ctx, 2)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	mock.ExpectQuery(`FROM predictions WHERE id = \$1`).
		WithArgs(int64(404)).
		WillReturnError(sql.ErrNoRows)

	p, err := reader.GetByID(ctx, 404)
	assert.NoError(t, err)
	assert.Nil(t, p)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedbackRepositories(t *testing.T) {
	db, mock := newMockDB(t)
	writer := NewFeedbackWriteRepository(db, TxFromContext)
	reader := NewFeedbackReadRepository(db)
	ctx := context.Background()
	rating := 4
	correct := true

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO feedbacks`)).
		WithArgs(int64(1), int64(10), &rating, &correct, nil).
		WillReturnRows(sqlmock.NewRows(feedbackColumns).
			AddRow(int64(3), int64(1), int64(10), int64(4), true, nil, time.Now()))

	saved, err := writer.Save(ctx, &models.FeedbackDB{UserID: 1, PredictionID: 10, Rating: &rating, IsCorrect: &correct})
	require.NoError(t, err)
	assert.Equal(t, int64(3), saved.ID)
	require.NotNil(t, saved.Rating)
	assert.Equal(t, 4, *saved.Rating)
	assert.Nil(t, saved.Comment)

	mock.ExpectQuery(`FROM feedbacks WHERE user_id = \$1 ORDER BY created_at DESC, id DESC`).
		WithArgs(int64(1)).
		WillReturnError(sql.ErrConnDone)

	_, err = reader.ListByUserID(ctx, 1)
	assert.ErrorIs(t, err, sql.ErrConnDone)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTxManager_Do(t *testing.T) {
	t.Run("commit", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO predictions`)).
			WillReturnRows(sqlmock.NewRows(predictionColumns).
				AddRow(int64(1), int64(1), "u", "healthy", 0.5, "v", time.Now()))
		mock.ExpectCommit()

		writer := NewPredictionWriteRepository(db, TxFromContext)
		err := NewTxManager(db).Do(context.Background(), func(ctx context.Context) error {
			assert.NotNil(t, TxFromContext(ctx))
			_, err := writer.Save(ctx, &models.PredictionDB{UserID: 1, ImageURL: "u", PredictedLabel: "healthy", Confidence: 0.5, ModelVersion: "v"})
			return err
		})
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rollback on error", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectRollback()

		boom := errors.New("boom")
		err := NewTxManager(db).Do(context.Background(), func(ctx context.Context) error { return boom })
		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("begin error", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin().WillReturnError(sql.ErrConnDone)

		called := false
		err := NewTxManager(db).Do(context.Background(), func(ctx context.Context) error {
			called = true
			return nil
		})
		assert.ErrorIs(t, err, sql.ErrConnDone)
		assert.False(t, called)
	})

	t.Run("commit error", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectCommit().WillReturnError(sql.ErrConnDone)

		err := NewTxManager(db).Do(context.Background(), func(ctx context.Context) error { return nil })
		assert.ErrorIs(t, err, sql.ErrConnDone)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rollback on panic", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectRollback()

		assert.Panics(t, func() {
			_ = NewTxManager(db).Do(context.Background(), func(ctx context.Context) error { panic("test panic") })
		})
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("joins outer transaction", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin()

		tx, err := db.Beginx()
		require.NoError(t, err)
		ctx := ContextWithTx(context.Background(), tx)

		err = NewTxManager(db).Do(ctx, func(inner context.Context) error {
			assert.Same(t, tx, TxFromContext(inner))
			return nil
		})
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
