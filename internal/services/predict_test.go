package services_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/sbilibin2017/gw-leaf-classifier/internal/classifier"
	"github.com/sbilibin2017/gw-leaf-classifier/internal/models"
	"github.com/sbilibin2017/gw-leaf-classifier/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtensionFromFilename(t *testing.T) {
	tests := map[string]string{
		"leaf.PNG":     ".png",
		"leaf.jpeg":    ".jpeg",
		"a/b/leaf.gif": ".gif",
		"leaf":         ".jpg",
		"leaf.txt":     ".jpg",
		"":             ".jpg",
	}
	for in, want := range tests {
		assert.Equal(t, want, services.ExtensionFromFilename(in), in)
	}
}

func TestIsImageContentType(t *testing.T) {
	assert.True(t, services.IsImageContentType("image/jpeg"))
	assert.True(t, services.IsImageContentType("IMAGE/PNG"))
	assert.True(t, services.IsImageContentType("image/png; charset=binary"))
	assert.False(t, services.IsImageContentType("text/plain"))
	assert.False(t, services.IsImageContentType(""))
	assert.False(t, services.IsImageContentType("image"))
}

type predictMocks struct {
	resolver   *services.MockTokenResolver
	classifier *services.MockImageClassifier
	storer     *services.MockImageStorer
	recorder   *services.MockRecorder
}

func newPredictService(ctrl *gomock.Controller) (*services.PredictService, predictMocks) {
	m := predictMocks{
		resolver:   services.NewMockTokenResolver(ctrl),
		classifier: services.NewMockImageClassifier(ctrl),
		storer:     services.NewMockImageStorer(ctrl),
		recorder:   services.NewMockRecorder(ctrl),
	}
	svc := services.NewPredictService(m.resolver, m.classifier, m.storer, m.recorder, "resnet50_v1")
	return svc, m
}

func TestPredictService_HandlePredictRequest(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m := newPredictService(ctrl)
	data := []byte("jpeg bytes")

	gomock.InOrder(
		m.resolver.EXPECT().Resolve(gomock.Any(), "tok").Return(int64(9), nil),
		m.classifier.EXPECT().Classify(gomock.Any(), data).Return("rust", 0.87, nil),
		m.storer.EXPECT().Store(gomock.Any(), data, "rust", ".png", "image/png").Return("https://b/rust/1.png", nil),
		m.recorder.EXPECT().
			Record(gomock.Any(), int64(9), "https://b/rust/1.png", "rust", 0.87, "resnet50_v1").
			Return(&models.PredictionDB{ID: 1, UserID: 9, PredictedLabel: "rust", Confidence: 0.87}, nil),
	)

	p, err := svc.HandlePredictRequest(context.Background(), "tok", data, "image/png", "leaf.png")
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.ID)
	assert.Equal(t, "rust", p.PredictedLabel)
}

func TestPredictService_StageFailures(t *testing.T) {
	data := []byte("jpeg bytes")

	tests := []struct {
		name        string
		contentType string
		data        []byte
		setup       func(m predictMocks)
		wantErr     error
	}{
		{
			name:        "unauthenticated",
			contentType: "image/jpeg",
			data:        data,
			setup: func(m predictMocks) {
				m.resolver.EXPECT().Resolve(gomock.Any(), "tok").Return(int64(0), services.ErrUnauthenticated)
			},
			wantErr: services.ErrUnauthenticated,
		},
		{
			name:        "not an image content type",
			contentType: "text/plain",
			data:        data,
			setup: func(m predictMocks) {
				m.resolver.EXPECT().Resolve(gomock.Any(), "tok").Return(int64(9), nil)
			},
			wantErr: services.ErrInvalidInput,
		},
		{
			name:        "empty upload",
			contentType: "image/jpeg",
			data:        nil,
			setup: func(m predictMocks) {
				m.resolver.EXPECT().Resolve(gomock.Any(), "tok").Return(int64(9), nil)
			},
			wantErr: services.ErrInvalidInput,
		},
		{
			name:        "undecodable image",
			contentType: "image/jpeg",
			data:        data,
			setup: func(m predictMocks) {
				m.resolver.EXPECT().Resolve(gomock.Any(), "tok").Return(int64(9), nil)
				m.classifier.EXPECT().Classify(gomock.Any(), data).
					Return("", 0.0, fmt.Errorf("%w: unknown format", classifier.ErrInvalidImage))
			},
			wantErr: services.ErrInvalidImage,
		},
		{
			name:        "model failure",
			contentType: "image/jpeg",
			data:        data,
			setup: func(m predictMocks) {
				m.resolver.EXPECT().Resolve(gomock.Any(), "tok").Return(int64(9), nil)
				m.classifier.EXPECT().Classify(gomock.Any(), data).Return("", 0.0, errors.New("onnx"))
			},
			wantErr: services.ErrClassificationFailed,
		},
		{
			name:        "storage failure",
			contentType: "image/jpeg",
			data:        data,
			setup: func(m predictMocks) {
				m.resolver.EXPECT().Resolve(gomock.Any(), "tok").Return(int64(9), nil)
				m.classifier.EXPECT().Classify(gomock.Any(), data).Return("rust", 0.5, nil)
				m.storer.EXPECT().Store(gomock.Any(), data, "rust", ".jpg", "image/jpeg").Return("", errors.New("s3 down"))
			},
			wantErr: services.ErrStorageUnavailable,
		},
		{
			name:        "record failure",
			contentType: "image/jpeg",
			data:        data,
			setup: func(m predictMocks) {
				m.resolver.EXPECT().Resolve(gomock.Any(), "tok").Return(int64(9), nil)
				m.classifier.EXPECT().Classify(gomock.Any(), data).Return("rust", 0.5, nil)
				m.storer.EXPECT().Store(gomock.Any(), data, "rust", ".jpg", "image/jpeg").Return("ref", nil)
				m.recorder.EXPECT().Record(gomock.Any(), int64(9), "ref", "rust", 0.5, "resnet50_v1").
					Return(nil, errors.New("db down"))
			},
			wantErr: services.ErrPersistenceFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			svc, m := newPredictService(ctrl)
			tt.setup(m)

			p, err := svc.HandlePredictRequest(context.Background(), "tok", tt.data, tt.contentType, "leaf")
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, p)
		})
	}
}

func TestPredictService_UndecodableImageIsAlsoClassificationFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m := newPredictService(ctrl)
	m.resolver.EXPECT().Resolve(gomock.Any(), "tok").Return(int64(9), nil)
	m.classifier.EXPECT().Classify(gomock.Any(), gomock.Any()).Return("", 0.0, classifier.ErrInvalidImage)

	_, err := svc.HandlePredictRequest(context.Background(), "tok", []byte("x"), "image/jpeg", "x.jpg")
	assert.ErrorIs(t, err, services.ErrInvalidImage)
	assert.ErrorIs(t, err, services.ErrClassificationFailed)
}

func TestPredictService_IgnoresCancellationAfterAuth(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m := newPredictService(ctrl)
	ctx, cancel := context.WithCancel(context.Background())

	m.resolver.EXPECT().Resolve(gomock.Any(), "tok").
		DoAndReturn(func(context.Context, string) (int64, error) {
			cancel()
			return 9, nil
		})
	m.classifier.EXPECT().Classify(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ []byte) (string, float64, error) {
			assert.NoError(t, ctx.Err())
			return "healthy", 0.99, nil
		})
	m.storer.EXPECT().Store(gomock.Any(), gomock.Any(), "healthy", ".jpg", "image/jpeg").
		DoAndReturn(func(ctx context.Context, _ []byte, _, _, _ string) (string, error) {
			assert.NoError(t, ctx.Err())
			return "ref", nil
		})
	m.recorder.EXPECT().Record(gomock.Any(), int64(9), "ref", "healthy", 0.99, "resnet50_v1").
		Return(&models.PredictionDB{ID: 3}, nil)

	p, err := svc.HandlePredictRequest(ctx, "tok", []byte("x"), "image/jpeg", "leaf.jpg")
	require.NoError(t, err)
	assert.Equal(t, int64(3), p.ID)
}

func TestPredictService_StageFailuresKeepTheirCause(t *testing.T) {
	modelErr := errors.New("onnx session closed")
	s3Err := errors.New("SlowDown")
	dbErr := errors.New("connection reset")

	tests := []struct {
		name    string
		setup   func(m predictMocks)
		wantErr error
		cause   error
	}{
		{
			name: "classify",
			setup: func(m predictMocks) {
				m.classifier.EXPECT().Classify(gomock.Any(), gomock.Any()).Return("", 0.0, modelErr)
			},
			wantErr: services.ErrClassificationFailed,
			cause:   modelErr,
		},
		{
			name: "store",
			setup: func(m predictMocks) {
				m.classifier.EXPECT().Classify(gomock.Any(), gomock.Any()).Return("frogeye", 0.6, nil)
				m.storer.EXPECT().Store(gomock.Any(), gomock.Any(), "frogeye", ".jpg", "image/jpeg").Return("", s3Err)
			},
			wantErr: services.ErrStorageUnavailable,
			cause:   s3Err,
		},
		{
			name: "record",
			setup: func(m predictMocks) {
				m.classifier.EXPECT().Classify(gomock.Any(), gomock.Any()).Return("frogeye", 0.6, nil)
				m.storer.EXPECT().Store(gomock.Any(), gomock.Any(), "frogeye", ".jpg", "image/jpeg").Return("ref", nil)
				m.recorder.EXPECT().Record(gomock.Any(), int64(4), "ref", "frogeye", 0.6, "resnet50_v1").Return(nil, dbErr)
			},
			wantErr: services.ErrPredictionNotSaved,
			cause:   dbErr,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			svc, m := newPredictService(ctrl)
			tt.setup(m)

			_, err := svc.Predict(context.Background(), 4, []byte("x"), "image/jpeg", "leaf.jpg")
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, tt.cause)
		})
	}
}

func TestPredictService_AuthenticateOnlyResolves(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m := newPredictService(ctrl)
	m.resolver.EXPECT().Resolve(gomock.Any(), "expired").Return(int64(0), services.ErrUnauthenticated)

	userID, err := svc.Authenticate(context.Background(), "expired")
	assert.ErrorIs(t, err, services.ErrUnauthenticated)
	assert.Zero(t, userID)
}
