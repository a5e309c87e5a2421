package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/golang/mock/gomock"
	"github.com/sbilibin2017/gw-leaf-classifier/internal/middlewares"
	"github.com/sbilibin2017/gw-leaf-classifier/internal/models"
	"github.com/sbilibin2017/gw-leaf-classifier/internal/services"
	"github.com/stretchr/testify/assert"
)

// withURLParam attaches a chi route parameter to req.
func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// asUser marks req as authenticated for userID.
func asUser(req *http.Request, userID int64) *http.Request {
	return req.WithContext(middlewares.ContextWithUserID(req.Context(), userID))
}

func TestMeHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := NewMockUserGetter(ctrl)
	mockSvc.EXPECT().GetUser(gomock.Any(), int64(7)).Return(&models.UserDB{ID: 7, Name: "Alice", Email: "a@x.com"}, nil)

	handler := NewMeHandler(mockSvc)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, asUser(httptest.NewRequest(http.MethodGet, "/me", nil), 7))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"email":"a@x.com"`)

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestGetUserHandler(t *testing.T) {
	tests := []struct {
		name           string
		param          string
		setupMock      func(m *MockUserGetter)
		expectedStatus int
	}{
		{
			name:  "found",
			param: "3",
			setupMock: func(m *MockUserGetter) {
				m.EXPECT().GetUser(gomock.Any(), int64(3)).Return(&models.UserDB{ID: 3}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:  "not found",
			param: "4",
			setupMock: func(m *MockUserGetter) {
				m.EXPECT().GetUser(gomock.Any(), int64(4)).Return(nil, services.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "bad id",
			param:          "abc",
			setupMock:      func(m *MockUserGetter) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "zero id",
			param:          "0",
			setupMock:      func(m *MockUserGetter) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockSvc := NewMockUserGetter(ctrl)
			tt.setupMock(mockSvc)

			req := withURLParam(httptest.NewRequest(http.MethodGet, "/users/"+tt.param, nil), "user_id", tt.param)
			rr := httptest.NewRecorder()

			NewGetUserHandler(mockSvc).ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
		})
	}
}
