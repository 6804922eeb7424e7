package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	usecase "user-record-service/internal/usecase/user"
	pkgerrors "user-record-service/pkg/errors"
)

// MockUserUsecase is a mock implementation of user.UserUsecase
type MockUserUsecase struct {
	mock.Mock
}

func (m *MockUserUsecase) ListUsers(ctx context.Context) (*usecase.ListUsersResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.ListUsersResponse), args.Error(1)
}

func (m *MockUserUsecase) CreateUser(ctx context.Context, req usecase.CreateUserRequest) (*usecase.ListUsersResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.ListUsersResponse), args.Error(1)
}

func (m *MockUserUsecase) UpdateUserEmail(ctx context.Context, req usecase.UpdateUserEmailRequest) (*usecase.ListUsersResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.ListUsersResponse), args.Error(1)
}

func (m *MockUserUsecase) GetUser(ctx context.Context, req usecase.GetUserRequest) (*usecase.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.User), args.Error(1)
}

func (m *MockUserUsecase) UpdateUser(ctx context.Context, req usecase.UpdateUserRequest) (*usecase.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.User), args.Error(1)
}

func (m *MockUserUsecase) DeleteUser(ctx context.Context, req usecase.DeleteUserRequest) (*usecase.ListUsersResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.ListUsersResponse), args.Error(1)
}

func setupTest(t *testing.T) (*gin.Engine, *MockUserUsecase) {
	gin.SetMode(gin.TestMode)
	mockUsecase := new(MockUserUsecase)
	handler := NewUserHandler(mockUsecase, zaptest.NewLogger(t))

	r := gin.New()
	r.GET("/api/users/", handler.ListUsers)
	r.POST("/api/users/", handler.CreateUser)
	r.PUT("/api/users/", handler.UpdateUserEmail)
	r.GET("/api/user/:id", handler.GetUser)
	r.PATCH("/api/user/:id", handler.UpdateUser)
	r.DELETE("/api/user/:id", handler.DeleteUser)
	return r, mockUsecase
}

func doJSON(r *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

var alice = usecase.User{ID: 1, Name: "alice", Email: "a@x.com"}

func TestListUsers(t *testing.T) {
	t.Run("Empty Store Yields Empty Array", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		mockUsecase.On("ListUsers", mock.Anything).Return(&usecase.ListUsersResponse{}, nil)

		w := doJSON(r, http.MethodGet, "/api/users/", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
	})

	t.Run("Success", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		mockUsecase.On("ListUsers", mock.Anything).Return(&usecase.ListUsersResponse{Users: []usecase.User{alice}}, nil)

		w := doJSON(r, http.MethodGet, "/api/users/", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[{"id":1,"name":"alice","email":"a@x.com"}]`, w.Body.String())
	})

	t.Run("Usecase Error", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		mockUsecase.On("ListUsers", mock.Anything).Return(nil, pkgerrors.NewInternalError("failed to list users", errors.New("db down")))

		w := doJSON(r, http.MethodGet, "/api/users/", "")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "db down")
	})
}

func TestCreateUser(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		mockUsecase.On("CreateUser", mock.Anything, usecase.CreateUserRequest{Name: "alice", Email: "a@x.com"}).
			Return(&usecase.ListUsersResponse{Users: []usecase.User{alice}}, nil)

		w := doJSON(r, http.MethodPost, "/api/users/", `{"name":"alice","email":"a@x.com"}`)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.JSONEq(t, `[{"id":1,"name":"alice","email":"a@x.com"}]`, w.Body.String())
		mockUsecase.AssertExpectations(t)
	})

	t.Run("Form Body", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		mockUsecase.On("CreateUser", mock.Anything, usecase.CreateUserRequest{Name: "alice", Email: "a@x.com"}).
			Return(&usecase.ListUsersResponse{Users: []usecase.User{alice}}, nil)

		form := url.Values{"name": {"alice"}, "email": {"a@x.com"}}
		req := httptest.NewRequest(http.MethodPost, "/api/users/", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("Non String Field", func(t *testing.T) {
		r, mockUsecase := setupTest(t)

		w := doJSON(r, http.MethodPost, "/api/users/", `{"name":123,"email":"a@x.com"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeError(t, w)
		assert.Equal(t, "validation_error", resp.Error)
		assert.Equal(t, "name", resp.Field)
		assert.Contains(t, resp.Message, "name must be a string")
		mockUsecase.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
	})

	t.Run("Malformed JSON", func(t *testing.T) {
		r, _ := setupTest(t)

		w := doJSON(r, http.MethodPost, "/api/users/", `invalid json`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "validation_error", decodeError(t, w).Error)
	})

	t.Run("Empty Body Reaches Validation", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		mockUsecase.On("CreateUser", mock.Anything, usecase.CreateUserRequest{}).
			Return(nil, pkgerrors.NewValidationError("name", "cannot be blank"))

		w := doJSON(r, http.MethodPost, "/api/users/", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeError(t, w)
		assert.Equal(t, "name", resp.Field)
		assert.Equal(t, "validation failed: name cannot be blank", resp.Message)
	})

	t.Run("Duplicate Name", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		mockUsecase.On("CreateUser", mock.Anything, mock.Anything).
			Return(nil, pkgerrors.NewAlreadyExistsError("user", usecase.MsgUserNameTaken))

		w := doJSON(r, http.MethodPost, "/api/users/", `{"name":"alice","email":"a@x.com"}`)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "already_exists", decodeError(t, w).Error)
	})

	t.Run("Untyped Error", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		mockUsecase.On("CreateUser", mock.Anything, mock.Anything).Return(nil, errors.New("boom"))

		w := doJSON(r, http.MethodPost, "/api/users/", `{"name":"alice","email":"a@x.com"}`)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "internal_error", decodeError(t, w).Error)
	})
}

func TestUpdateUserEmail(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		updated := usecase.User{ID: 1, Name: "alice", Email: "new@x.com"}
		mockUsecase.On("UpdateUserEmail", mock.Anything, usecase.UpdateUserEmailRequest{Name: "alice", Email: "new@x.com"}).
			Return(&usecase.ListUsersResponse{Users: []usecase.User{updated}}, nil)

		w := doJSON(r, http.MethodPut, "/api/users/", `{"name":"alice","email":"new@x.com"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[{"id":1,"name":"alice","email":"new@x.com"}]`, w.Body.String())
	})

	t.Run("Name Not Found", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		mockUsecase.On("UpdateUserEmail", mock.Anything, mock.Anything).
			Return(nil, pkgerrors.NewNotFoundError("user", usecase.MsgUserNameNotFound))

		w := doJSON(r, http.MethodPut, "/api/users/", `{"name":"ghost","email":"g@x.com"}`)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, ErrorResponse{Error: "not_found", Message: "user name not found"}, decodeError(t, w))
	})
}

func TestGetUser(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		mockUsecase.On("GetUser", mock.Anything, usecase.GetUserRequest{ID: 1}).Return(&alice, nil)

		w := doJSON(r, http.MethodGet, "/api/user/1", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"id":1,"name":"alice","email":"a@x.com"}`, w.Body.String())
	})

	t.Run("Not Found", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		mockUsecase.On("GetUser", mock.Anything, usecase.GetUserRequest{ID: 2}).
			Return(nil, pkgerrors.NewNotFoundError("user", usecase.MsgUserNotFound))

		w := doJSON(r, http.MethodGet, "/api/user/2", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "user not found", decodeError(t, w).Message)
	})

	for _, id := range []string{"abc", "0", "-3", "99999999999999999999"} {
		t.Run("Unaddressable ID "+id, func(t *testing.T) {
			r, mockUsecase := setupTest(t)

			w := doJSON(r, http.MethodGet, "/api/user/"+id, "")

			assert.Equal(t, http.StatusNotFound, w.Code)
			assert.Equal(t, "user not found", decodeError(t, w).Message)
			mockUsecase.AssertNotCalled(t, "GetUser", mock.Anything, mock.Anything)
		})
	}
}

func TestUpdateUser(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		updated := usecase.User{ID: 1, Name: "alicia", Email: "al@x.com"}
		mockUsecase.On("UpdateUser", mock.Anything, usecase.UpdateUserRequest{ID: 1, Name: "alicia", Email: "al@x.com"}).
			Return(&updated, nil)

		w := doJSON(r, http.MethodPatch, "/api/user/1", `{"name":"alicia","email":"al@x.com"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"id":1,"name":"alicia","email":"al@x.com"}`, w.Body.String())
	})

	t.Run("Invalid ID", func(t *testing.T) {
		r, _ := setupTest(t)

		w := doJSON(r, http.MethodPatch, "/api/user/abc", `{"name":"alicia","email":"al@x.com"}`)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "user id not found", decodeError(t, w).Message)
	})

	t.Run("Non String Email", func(t *testing.T) {
		r, _ := setupTest(t)

		w := doJSON(r, http.MethodPatch, "/api/user/1", `{"name":"alicia","email":["x"]}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "email", decodeError(t, w).Field)
	})
}

func TestDeleteUser(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		mockUsecase.On("DeleteUser", mock.Anything, usecase.DeleteUserRequest{ID: 1}).
			Return(&usecase.ListUsersResponse{Users: []usecase.User{}}, nil)

		w := doJSON(r, http.MethodDelete, "/api/user/1", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
	})

	t.Run("Not Found", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		mockUsecase.On("DeleteUser", mock.Anything, usecase.DeleteUserRequest{ID: 5}).
			Return(nil, pkgerrors.NewNotFoundError("user", usecase.MsgUserIDNotFound))

		w := doJSON(r, http.MethodDelete, "/api/user/5", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "user id not found", decodeError(t, w).Message)
	})
}
