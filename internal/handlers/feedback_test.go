package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/sbilibin2017/gw-leaf-classifier/internal/models"
	"github.com/sbilibin2017/gw-leaf-classifier/internal/services"
	"github.com/stretchr/testify/assert"
)

func TestCreateFeedbackHandler(t *testing.T) {
	rating := 5

	tests := []struct {
		name           string
		body           string
		setupMock      func(m *MockFeedbackSubmitter)
		expectedStatus int
	}{
		{
			name: "created",
			body: `{"prediction_id":3,"rating":5}`,
			setupMock: func(m *MockFeedbackSubmitter) {
				m.EXPECT().Submit(gomock.Any(), int64(7), models.FeedbackCreate{PredictionID: 3, Rating: &rating}).
					Return(&models.FeedbackDB{ID: 1, UserID: 7, PredictionID: 3, Rating: &rating}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "bad json",
			body:           `{"prediction_id":`,
			setupMock:      func(m *MockFeedbackSubmitter) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "rating out of range",
			body: `{"prediction_id":3,"rating":9}`,
			setupMock: func(m *MockFeedbackSubmitter) {
				m.EXPECT().Submit(gomock.Any(), int64(7), gomock.Any()).Return(nil, services.ErrInvalidInput)
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "unknown prediction",
			body: `{"prediction_id":99}`,
			setupMock: func(m *MockFeedbackSubmitter) {
				m.EXPECT().Submit(gomock.Any(), int64(7), gomock.Any()).Return(nil, services.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "foreign prediction",
			body: `{"prediction_id":4}`,
			setupMock: func(m *MockFeedbackSubmitter) {
				m.EXPECT().Submit(gomock.Any(), int64(7), gomock.Any()).Return(nil, services.ErrForbidden)
			},
			expectedStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockSvc := NewMockFeedbackSubmitter(ctrl)
			tt.setupMock(mockSvc)

			req := asUser(httptest.NewRequest(http.MethodPost, "/feedback/", strings.NewReader(tt.body)), 7)
			rr := httptest.NewRecorder()

			NewCreateFeedbackHandler(mockSvc).ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
		})
	}
}

func TestListFeedbackHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := NewMockFeedbackLister(ctrl)
	mockSvc.EXPECT().ListByUser(gomock.Any(), int64(7)).Return([]models.FeedbackDB{{ID: 1, UserID: 7, PredictionID: 3}}, nil)

	rr := httptest.NewRecorder()
	NewListFeedbackHandler(mockSvc).ServeHTTP(rr, asUser(httptest.NewRequest(http.MethodGet, "/feedback/me", nil), 7))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"prediction_id":3`)
}
