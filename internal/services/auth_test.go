package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/sbilibin2017/gw-leaf-classifier/internal/models"
	"github.com/sbilibin2017/gw-leaf-classifier/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_Register(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockReader := services.NewMockUserReader(ctrl)
	mockWriter := services.NewMockUserWriter(ctrl)
	mockCreds := services.NewMockCredentials(ctrl)

	svc := services.NewAuthService(mockReader, mockWriter, mockCreds)

	tests := []struct {
		name         string
		userName     string
		email        string
		password     string
		existingUser *models.UserDB
		readerErr    error
		writerErr    error
		expectSave   bool
		wantErr      error
	}{
		{
			name:       "successful registration",
			userName:   "alice",
			email:      "  Alice@X.com ",
			password:   "pw123",
			expectSave: true,
		},
		{
			name:         "email already registered",
			userName:     "bob",
			email:        "bob@x.com",
			password:     "pw123",
			existingUser: &models.UserDB{ID: 7},
			wantErr:      services.ErrConflict,
		},
		{
			name:       "unique violation on insert",
			userName:   "carol",
			email:      "carol@x.com",
			password:   "pw123",
			writerErr:  models.ErrDuplicate,
			expectSave: true,
			wantErr:    services.ErrConflict,
		},
		{
			name:      "reader error",
			userName:  "eve",
			email:     "eve@x.com",
			password:  "pw123",
			readerErr: errors.New("db error"),
			wantErr:   services.ErrPersistenceFailed,
		},
		{
			name:       "writer error",
			userName:   "dan",
			email:      "dan@x.com",
			password:   "pw123",
			writerErr:  errors.New("save error"),
			expectSave: true,
			wantErr:    services.ErrPersistenceFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			email := services.NormalizeEmail(tt.email)

			mockReader.EXPECT().
				GetByEmail(gomock.Any(), email).
				Return(tt.existingUser, tt.readerErr)

			if tt.expectSave {
				mockCreds.EXPECT().Hash(tt.password).Return("hashed", nil)
				saved := &models.UserDB{ID: 1, Name: tt.userName, Email: email, HashedPassword: "hashed"}
				if tt.writerErr != nil {
					saved = nil
				}
				mockWriter.EXPECT().
					Save(gomock.Any(), tt.userName, email, "hashed").
					Return(saved, tt.writerErr)
			}

			user, err := svc.Register(context.Background(), tt.userName, tt.email, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "alice@x.com", user.Email)
		})
	}
}

func TestAuthService_RegisterInvalidInput(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := services.NewAuthService(
		services.NewMockUserReader(ctrl),
		services.NewMockUserWriter(ctrl),
		services.NewMockCredentials(ctrl),
	)

	tests := []struct {
		name     string
		userName string
		email    string
		password string
	}{
		{name: "missing name", email: "a@x.com", password: "pw"},
		{name: "missing password", userName: "a", email: "a@x.com"},
		{name: "bad email", userName: "a", email: "not-an-email", password: "pw"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.userName, tt.email, tt.password)
			assert.ErrorIs(t, err, services.ErrInvalidInput)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockReader := services.NewMockUserReader(ctrl)
	mockWriter := services.NewMockUserWriter(ctrl)
	mockCreds := services.NewMockCredentials(ctrl)

	svc := services.NewAuthService(mockReader, mockWriter, mockCreds)

	alice := &models.UserDB{ID: 3, Email: "alice@x.com", HashedPassword: "hash"}

	tests := []struct {
		name        string
		user        *models.UserDB
		readerErr   error
		passwordOK  bool
		tokenErr    error
		expectToken string
		wantErr     error
	}{
		{
			name:        "successful login",
			user:        alice,
			passwordOK:  true,
			expectToken: "token123",
		},
		{
			name:    "unknown email",
			wantErr: services.ErrInvalidCredentials,
		},
		{
			name:    "wrong password",
			user:    alice,
			wantErr: services.ErrInvalidCredentials,
		},
		{
			name:      "reader error",
			readerErr: errors.New("db error"),
			wantErr:   services.ErrPersistenceFailed,
		},
		{
			name:       "token error",
			user:       alice,
			passwordOK: true,
			tokenErr:   errors.New("jwt error"),
			wantErr:    errors.New("jwt error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockReader.EXPECT().
				GetByEmail(gomock.Any(), "alice@x.com").
				Return(tt.user, tt.readerErr)

			if tt.user != nil {
				mockCreds.EXPECT().Verify("pw", tt.user.HashedPassword).Return(tt.passwordOK)
			}
			if tt.passwordOK {
				mockCreds.EXPECT().IssueToken(gomock.Any(), tt.user.ID).Return(tt.expectToken, tt.tokenErr)
			}

			token, err := svc.Login(context.Background(), "Alice@x.com", "pw")
			if tt.wantErr != nil {
				if errors.Is(tt.wantErr, services.ErrInvalidCredentials) || errors.Is(tt.wantErr, services.ErrPersistenceFailed) {
					assert.ErrorIs(t, err, tt.wantErr)
				} else {
					assert.EqualError(t, err, tt.wantErr.Error())
				}
				assert.Empty(t, token)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectToken, token)
		})
	}
}

func TestAuthService_GetUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockReader := services.NewMockUserReader(ctrl)
	svc := services.NewAuthService(mockReader, services.NewMockUserWriter(ctrl), services.NewMockCredentials(ctrl))

	mockReader.EXPECT().GetByID(gomock.Any(), int64(1)).Return(&models.UserDB{ID: 1, Name: "alice"}, nil)
	mockReader.EXPECT().GetByID(gomock.Any(), int64(2)).Return(nil, nil)
	mockReader.EXPECT().GetByID(gomock.Any(), int64(3)).Return(nil, errors.New("db down"))

	user, err := svc.GetUser(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Name)

	_, err = svc.GetUser(context.Background(), 2)
	assert.ErrorIs(t, err, services.ErrNotFound)

	_, err = svc.GetUser(context.Background(), 3)
	assert.ErrorIs(t, err, services.ErrPersistenceFailed)
}
