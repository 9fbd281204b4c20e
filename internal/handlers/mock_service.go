package handlers

import (
	"context"
	"net/http"

	"car_market/internal/models"
	"car_market/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	user      models.User
	token     string
	signUpErr error
	loginErr  error
	authErr   error

	lastSignUpName  string
	lastSignUpEmail string
	lastLoginEmail  string
	lastAuthToken   string
	logoutTokens    []string
}

func (m *mockAuth) SignUp(ctx context.Context, name, email, password string) (models.User, string, error) {
	m.lastSignUpName = name
	m.lastSignUpEmail = email
	if m.signUpErr != nil {
		return models.User{}, "", m.signUpErr
	}
	return m.user, m.token, nil
}

func (m *mockAuth) Login(ctx context.Context, email, password string) (models.User, string, error) {
	m.lastLoginEmail = email
	if m.loginErr != nil {
		return models.User{}, "", m.loginErr
	}
	return m.user, m.token, nil
}

func (m *mockAuth) Authenticate(ctx context.Context, token string) (models.User, error) {
	m.lastAuthToken = token
	if m.authErr != nil {
		return models.User{}, m.authErr
	}
	return m.user, nil
}

func (m *mockAuth) Logout(token string) {
	m.logoutTokens = append(m.logoutTokens, token)
}

type mockCars struct {
	car  models.Car
	cars []models.Car
	err  error

	lastOwner    int
	lastID       string
	lastQuery    string
	lastImageURL string
	lastCreate   service.CreateCarInput
	lastUpdate   service.UpdateCarInput
	deleteCalls  int
}

func (m *mockCars) Create(ctx context.Context, owner int, in service.CreateCarInput) (models.Car, error) {
	m.lastOwner = owner
	m.lastCreate = in
	return m.car, m.err
}

func (m *mockCars) List(ctx context.Context, owner int) ([]models.Car, error) {
	m.lastOwner = owner
	return m.cars, m.err
}

func (m *mockCars) Get(ctx context.Context, owner int, id string) (models.Car, error) {
	m.lastOwner = owner
	m.lastID = id
	return m.car, m.err
}

func (m *mockCars) Update(ctx context.Context, owner int, id string, in service.UpdateCarInput) (models.Car, error) {
	m.lastOwner = owner
	m.lastID = id
	m.lastUpdate = in
	return m.car, m.err
}

func (m *mockCars) Delete(ctx context.Context, owner int, id string) error {
	m.lastOwner = owner
	m.lastID = id
	m.deleteCalls++
	return m.err
}

func (m *mockCars) RemoveImage(ctx context.Context, owner int, id, imageURL string) (models.Car, error) {
	m.lastOwner = owner
	m.lastID = id
	m.lastImageURL = imageURL
	return m.car, m.err
}

func (m *mockCars) Search(ctx context.Context, owner int, query string) ([]models.Car, error) {
	m.lastOwner = owner
	m.lastQuery = query
	return m.cars, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil, "")
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
