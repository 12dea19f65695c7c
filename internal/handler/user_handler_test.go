package handler

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gojenga/gojenga/internal/command"
	"github.com/gojenga/gojenga/internal/store"
	"github.com/gojenga/gojenga/shared/cqrs"
	"github.com/gojenga/gojenga/shared/middleware"
	"github.com/gojenga/gojenga/shared/models"
	"github.com/gojenga/gojenga/shared/utils"
)

type mockUserCommander struct {
	createFn func(cqrs.CreateUserCommand) (store.Outcome, error)
	updateFn func(cqrs.UpdateUserCommand) (store.Outcome, error)
	deleteFn func(cqrs.DeleteUserCommand) (store.Outcome, error)
}

func (m *mockUserCommander) CreateUser(_ context.Context, cmd cqrs.CreateUserCommand) (store.Outcome, error) {
	if m.createFn != nil {
		return m.createFn(cmd)
	}
	return store.OutcomeNotApplied, fmt.Errorf("not configured")
}
func (m *mockUserCommander) UpdateUser(_ context.Context, cmd cqrs.UpdateUserCommand) (store.Outcome, error) {
	if m.updateFn != nil {
		return m.updateFn(cmd)
	}
	return store.OutcomeNotApplied, fmt.Errorf("not configured")
}
func (m *mockUserCommander) DeleteUser(_ context.Context, cmd cqrs.DeleteUserCommand) (store.Outcome, error) {
	if m.deleteFn != nil {
		return m.deleteFn(cmd)
	}
	return store.OutcomeNotApplied, fmt.Errorf("not configured")
}

type mockUserQuerier struct {
	getFn func(cqrs.GetUserQuery) (*models.UserView, error)
}

func (m *mockUserQuerier) GetUser(_ context.Context, q cqrs.GetUserQuery) (*models.UserView, error) {
	if m.getFn != nil {
		return m.getFn(q)
	}
	return nil, fmt.Errorf("not configured")
}

func newUserTestRouter(cmds UserCommander, qrys UserQuerier, authUser string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.TestModeMiddleware(), fakeAuth(authUser))
	h := NewUserHandler(cmds, qrys)
	r.POST("/user", h.CreateUser)
	r.GET("/user/:username", h.GetUser)
	r.PUT("/user/:username", h.UpdateUser)
	r.DELETE("/user/:username", h.DeleteUser)
	return r
}

func TestCreateUser(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		createFn       func(cqrs.CreateUserCommand) (store.Outcome, error)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "success - register user",
			body: map[string]interface{}{"name": "kovax", "password": "5182"},
			createFn: func(cmd cqrs.CreateUserCommand) (store.Outcome, error) {
				if !cmd.IsTest {
					return store.OutcomeNotApplied, fmt.Errorf("expected test mode")
				}
				return store.OutcomeInserted, nil
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"response":"insert item success"}`,
		},
		{
			name:           "unprocessable - missing password",
			body:           map[string]interface{}{"name": "kovax"},
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name: "conflict - name already registered",
			body: map[string]interface{}{"name": "David", "password": "attacker"},
			createFn: func(cmd cqrs.CreateUserCommand) (store.Outcome, error) {
				return store.OutcomeNotApplied, &command.ApplicationError{Op: "create user", Err: command.ErrUserExists}
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `{"detail":"create user: user already exists"}`,
		},
		{
			name: "partial content - special characters",
			body: map[string]interface{}{"name": "kov@x", "password": "5182"},
			createFn: func(cmd cqrs.CreateUserCommand) (store.Outcome, error) {
				return store.OutcomeNotApplied, utils.ErrIllegalCharacters
			},
			expectedStatus: http.StatusPartialContent,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newUserTestRouter(&mockUserCommander{createFn: tt.createFn}, &mockUserQuerier{}, "")
			w := doRequest(router, http.MethodPost, "/user", tt.body)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
			if tt.expectedBody != "" && w.Body.String() != tt.expectedBody {
				t.Errorf("[%s] expected body %s got %s", tt.name, tt.expectedBody, w.Body.String())
			}
		})
	}
}

func TestGetUser(t *testing.T) {
	tests := []struct {
		name           string
		getFn          func(cqrs.GetUserQuery) (*models.UserView, error)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "success - password is not exposed",
			getFn:          func(q cqrs.GetUserQuery) (*models.UserView, error) { return &models.UserView{Name: q.Name}, nil },
			expectedStatus: http.StatusOK,
			expectedBody:   `{"response":{"name":"kovax"}}`,
		},
		{
			name:           "not found - user does not exist",
			getFn:          func(q cqrs.GetUserQuery) (*models.UserView, error) { return nil, store.ErrNotFound },
			expectedStatus: http.StatusNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newUserTestRouter(&mockUserCommander{}, &mockUserQuerier{getFn: tt.getFn}, "kovax")
			w := doRequest(router, http.MethodGet, "/user/kovax", nil)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
			if tt.expectedBody != "" && w.Body.String() != tt.expectedBody {
				t.Errorf("[%s] expected body %s got %s", tt.name, tt.expectedBody, w.Body.String())
			}
		})
	}
}

func TestUpdateAndDeleteUser(t *testing.T) {
	cmds := &mockUserCommander{
		updateFn: func(cmd cqrs.UpdateUserCommand) (store.Outcome, error) { return store.OutcomeUpdated, nil },
		deleteFn: func(cmd cqrs.DeleteUserCommand) (store.Outcome, error) { return store.OutcomeDeleted, nil },
	}

	w := doRequest(newUserTestRouter(cmds, &mockUserQuerier{}, "david"), http.MethodPut, "/user/david",
		map[string]interface{}{"name": "david", "password": "0000"})
	if w.Body.String() != `{"response":"update item success"}` {
		t.Errorf("unexpected update response %d: %s", w.Code, w.Body.String())
	}
	w = doRequest(newUserTestRouter(cmds, &mockUserQuerier{}, "zala"), http.MethodDelete, "/user/zala", nil)
	if w.Body.String() != `{"response":"delete item success"}` {
		t.Errorf("unexpected delete response %d: %s", w.Code, w.Body.String())
	}
}

func TestUserRoutes_Forbidden(t *testing.T) {
	cmds := &mockUserCommander{
		updateFn: func(cmd cqrs.UpdateUserCommand) (store.Outcome, error) { return store.OutcomeUpdated, nil },
		deleteFn: func(cmd cqrs.DeleteUserCommand) (store.Outcome, error) { return store.OutcomeDeleted, nil },
	}
	qrys := &mockUserQuerier{
		getFn: func(q cqrs.GetUserQuery) (*models.UserView, error) { return &models.UserView{Name: q.Name}, nil },
	}
	tests := []struct {
		name   string
		method string
		url    string
		body   interface{}
	}{
		{name: "forbidden - view another user", method: http.MethodGet, url: "/user/david"},
		{name: "forbidden - change another user's password", method: http.MethodPut, url: "/user/david", body: map[string]interface{}{"password": "0000"}},
		{name: "forbidden - delete another user", method: http.MethodDelete, url: "/user/david"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(newUserTestRouter(cmds, qrys, "kovax"), tt.method, tt.url, tt.body)
			if w.Code != http.StatusForbidden {
				t.Errorf("[%s] expected 403 got %d; body: %s", tt.name, w.Code, w.Body.String())
			}
		})
	}
}

func TestUserRoutes_SubjectMatchesCaseInsensitively(t *testing.T) {
	router := newUserTestRouter(&mockUserCommander{}, &mockUserQuerier{
		getFn: func(q cqrs.GetUserQuery) (*models.UserView, error) { return &models.UserView{Name: "kovax"}, nil },
	}, "kovax")
	w := doRequest(router, http.MethodGet, "/user/Kovax", nil)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 got %d; body: %s", w.Code, w.Body.String())
	}
}
