package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sbilibin2017/gw-blog/internal/models"
	"github.com/sbilibin2017/gw-blog/internal/password"
	"github.com/sbilibin2017/gw-blog/internal/services"
)

func TestRegisterHandler(t *testing.T) {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	saved := &models.UserDB{
		ID:          1,
		FirstName:   "John",
		LastName:    "Doe",
		Username:    "john",
		Email:       "john@example.com",
		Password:    "$2a$10$digest",
		DateCreated: created,
	}

	tests := []struct {
		name         string
		body         string
		mockSetup    func(m *MockRegisterer)
		expectedCode int
		expectedBody string
	}{
		{
			name: "success",
			body: `{"firstName":"John","lastName":"Doe","username":"john","email":"john@example.com","password":"secret"}`,
			mockSetup: func(m *MockRegisterer) {
				m.EXPECT().
					Register(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, req models.RegisterRequest) (*models.UserDB, error) {
						assert.Equal(t, "secret", *req.Password)
						return saved, nil
					})
			},
			expectedCode: http.StatusCreated,
			expectedBody: `{"id":1,"firstName":"John","lastName":"Doe","username":"john","email":"john@example.com","dateCreated":"2024-03-01T10:00:00Z"}`,
		},
		{
			name: "password omitted",
			body: `{"firstName":"John","lastName":"Doe","username":"john","email":"john@example.com"}`,
			mockSetup: func(m *MockRegisterer) {
				m.EXPECT().
					Register(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, req models.RegisterRequest) (*models.UserDB, error) {
						assert.Nil(t, req.Password)
						return saved, nil
					})
			},
			expectedCode: http.StatusCreated,
		},
		{
			name:         "missing fields are all named",
			body:         `{"firstName":"John"}`,
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"lastName, username, email must be in the request body"}`,
		},
		{
			name:         "empty body",
			body:         ``,
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"firstName, lastName, username, email must be in the request body"}`,
		},
		{
			name:         "invalid json",
			body:         `{"firstName":`,
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"Invalid JSON body"}`,
		},
		{
			name: "user already exists",
			body: `{"firstName":"A","lastName":"B","username":"alice","email":"alice@example.com"}`,
			mockSetup: func(m *MockRegisterer) {
				m.EXPECT().Register(gomock.Any(), gomock.Any()).Return(nil, services.ErrUserAlreadyExists)
			},
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"A user with that username and/or email already exists"}`,
		},
		{
			name: "password too long",
			body: `{"firstName":"A","lastName":"B","username":"alice","email":"alice@example.com"}`,
			mockSetup: func(m *MockRegisterer) {
				m.EXPECT().Register(gomock.Any(), gomock.Any()).Return(nil, fmt.Errorf("hash password: %w", password.ErrTooLong))
			},
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"Password must be at most 72 bytes long"}`,
		},
		{
			name: "internal server error",
			body: `{"firstName":"A","lastName":"B","username":"bob","email":"bob@example.com"}`,
			mockSetup: func(m *MockRegisterer) {
				m.EXPECT().Register(gomock.Any(), gomock.Any()).Return(nil, errors.New("database failure"))
			},
			expectedCode: http.StatusInternalServerError,
			expectedBody: `{"error":"Internal server error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockSvc := NewMockRegisterer(ctrl)
			if tt.mockSetup != nil {
				tt.mockSetup(mockSvc)
			}

			req := httptest.NewRequest(http.MethodPost, "/users", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rr := httptest.NewRecorder()

			NewRegisterHandler(mockSvc).ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedCode, rr.Code)
			if tt.expectedBody != "" {
				assert.JSONEq(t, tt.expectedBody, rr.Body.String())
			}
		})
	}
}

func TestRegisterHandler_NeverLeaksCredentials(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	token := "secret-token"
	mockSvc := NewMockRegisterer(ctrl)
	mockSvc.EXPECT().Register(gomock.Any(), gomock.Any()).Return(&models.UserDB{
		ID:       3,
		Username: "eve",
		Password: "$2a$10$digest",
		Token:    &token,
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/users", bytes.NewBufferString(`{"firstName":"E","lastName":"V","username":"eve","email":"eve@example.com"}`))
	rr := httptest.NewRecorder()
	NewRegisterHandler(mockSvc).ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.NotContains(t, body, "password")
	assert.NotContains(t, body, "token")
	assert.NotContains(t, rr.Body.String(), "digest")
}
