package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	userapp "github.com/oksasatya/api-profiles/internal/application"
	"github.com/oksasatya/api-profiles/internal/domain/entity"
	repo "github.com/oksasatya/api-profiles/internal/domain/repository"
	"github.com/oksasatya/api-profiles/internal/interface/middleware"
	"github.com/oksasatya/api-profiles/pkg/helpers"
	"github.com/oksasatya/api-profiles/pkg/validation"
)

type memRepo struct {
	mu      sync.Mutex
	byEmail map[string]*entity.User
}

func newMemRepo() *memRepo { return &memRepo{byEmail: map[string]*entity.User{}} }

func (m *memRepo) Create(u *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[u.Email]; ok {
		return repo.ErrDuplicateEmail
	}
	u.ID = uuid.NewString()
	u.DateJoined = time.Now().UTC()
	cp := *u
	m.byEmail[u.Email] = &cp
	return nil
}

func (m *memRepo) GetByID(id string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byEmail {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (m *memRepo) GetByEmail(email string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byEmail[email]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memRepo) ExistsByEmail(email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.byEmail[email]
	return ok, nil
}

func (m *memRepo) Update(u *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[u.Email]; !ok {
		return repo.ErrNotFound
	}
	cp := *u
	m.byEmail[u.Email] = &cp
	return nil
}

func (m *memRepo) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for email, u := range m.byEmail {
		if u.ID == id {
			delete(m.byEmail, email)
			return nil
		}
	}
	return repo.ErrNotFound
}

type nopPublisher struct{}

func (nopPublisher) PublishJSON(ctx context.Context, body any) error { return nil }

type apiEnvelope struct {
	Status  int            `json:"status"`
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data"`
	Error   any            `json:"error"`
}

type testAPI struct {
	engine *gin.Engine
	mr     *miniredis.Miniredis
	jwt    *helpers.JWTManager
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validation.Init()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	store := userapp.NewOTPStore(rdb, 180*time.Second)
	dispatcher := userapp.NewOTPDispatcher(store, nopPublisher{}, nil, true)
	jwt := helpers.NewJWTManager("testsecret", time.Hour)
	svc := userapp.NewService(newMemRepo(), store, dispatcher, jwt, nil)

	authH := NewAuthHandler(svc, nil)
	userH := NewUserHandler(svc, nil)

	r := gin.New()
	api := r.Group("/api")
	api.POST("/register", authH.Register)
	api.POST("/login", authH.Login)
	protected := api.Group("/")
	protected.Use(middleware.Auth(jwt))
	{
		protected.GET("/profile/:email", userH.GetProfile)
		protected.PUT("/profile/:email", userH.UpdateProfile)
		protected.PATCH("/profile/:email", userH.PatchProfile)
		protected.DELETE("/profile/:email", userH.DeleteProfile)
	}

	return &testAPI{engine: r, mr: mr, jwt: jwt}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, apiEnvelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	var env apiEnvelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func (a *testAPI) storedCode(t *testing.T, email string) string {
	t.Helper()
	code, err := a.mr.Get(helpers.KeyLoginOTP(email))
	require.NoError(t, err)
	return code
}

// register completes the two-step flow and returns the issued access token.
func (a *testAPI) register(t *testing.T, email, password string) string {
	t.Helper()
	payload := gin.H{"email": email, "password": password}

	w, env := a.do(t, http.MethodPost, "/api/register", "", payload)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "OTP sent to your email", env.Message)

	payload["otp"] = a.storedCode(t, userapp.NormalizeEmail(email))
	w, env = a.do(t, http.MethodPost, "/api/register", "", payload)
	require.Equal(t, http.StatusCreated, w.Code)
	token, _ := env.Data["access_token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestRegisterEndpointScenario(t *testing.T) {
	api := newTestAPI(t)

	// Step 1: no otp, the request only triggers a dispatch.
	w, env := api.do(t, http.MethodPost, "/api/register", "", gin.H{"email": "a@x.com", "password": "Testpass1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "OTP sent to your email", env.Message)

	// Step 2: resubmit with the dispatched code.
	code := api.storedCode(t, "a@x.com")
	w, env = api.do(t, http.MethodPost, "/api/register", "", gin.H{"email": "a@x.com", "password": "Testpass1", "otp": code})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "User registered successfully", env.Message)
	assert.NotEmpty(t, env.Data["access_token"])

	user, ok := env.Data["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "a@x.com", user["email"])
	assert.NotContains(t, user, "password_hash")

	// The account is live: a login with the right password reaches the OTP gate.
	w, env = api.do(t, http.MethodPost, "/api/login", "", gin.H{"email": "a@x.com", "password": "Testpass1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "OTP sent to your email", env.Message)
}

func TestRegisterValidationDetails(t *testing.T) {
	api := newTestAPI(t)

	w, env := api.do(t, http.MethodPost, "/api/register", "", gin.H{"email": "not-an-email", "password": "Testpass1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	details, ok := env.Error.(map[string]any)
	require.True(t, ok)
	assert.Contains(t, details, "email")

	w, env = api.do(t, http.MethodPost, "/api/register", "", gin.H{"email": "a@x.com", "password": "short"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	details, ok = env.Error.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Password must be at least 9 characters long.", details["password"])
}

func TestLoginEndpointErrors(t *testing.T) {
	api := newTestAPI(t)
	api.register(t, "a@x.com", "Testpass1")

	// Wrong password on an existing account: invalid credentials, not unknown email.
	w, env := api.do(t, http.MethodPost, "/api/login", "", gin.H{"email": "a@x.com", "password": "wrongpass"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid login credentials", env.Message)

	w, env = api.do(t, http.MethodPost, "/api/login", "", gin.H{"email": "ghost@x.com", "password": "Testpass1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "user with this email does not exist", env.Message)
}

func TestLoginEndpointSuccess(t *testing.T) {
	api := newTestAPI(t)
	api.register(t, "a@x.com", "Testpass1")

	w, env := api.do(t, http.MethodPost, "/api/login", "", gin.H{"email": "a@x.com", "password": "Testpass1"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "OTP sent to your email", env.Message)

	code := api.storedCode(t, "a@x.com")
	w, env = api.do(t, http.MethodPost, "/api/login", "", gin.H{"email": "a@x.com", "password": "Testpass1", "otp": code})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "User authorized successfully", env.Message)
	assert.NotEmpty(t, env.Data["access_token"])
}

func TestProfileRequiresBearerToken(t *testing.T) {
	api := newTestAPI(t)

	w, _ := api.do(t, http.MethodGet, "/api/profile/a@x.com", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = api.do(t, http.MethodGet, "/api/profile/a@x.com", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProfileReadAndMutationRules(t *testing.T) {
	api := newTestAPI(t)
	tokenA := api.register(t, "a@x.com", "Testpass1")
	api.register(t, "b@x.com", "Testpass1")

	// Any authenticated user may read any profile.
	w, env := api.do(t, http.MethodGet, "/api/profile/b@x.com", tokenA, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "b@x.com", env.Data["email"])

	// Mutations on someone else's record are forbidden regardless of verb.
	for _, verb := range []string{http.MethodPut, http.MethodPatch, http.MethodDelete} {
		var body any
		if verb != http.MethodDelete {
			body = gin.H{"first_name": "Mallory"}
		}
		w, env = api.do(t, verb, "/api/profile/b@x.com", tokenA, body)
		assert.Equal(t, http.StatusForbidden, w.Code, "verb %s", verb)
	}

	// Unknown target is a 404 for reads.
	w, _ = api.do(t, http.MethodGet, "/api/profile/ghost@x.com", tokenA, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProfileUpdateOwn(t *testing.T) {
	api := newTestAPI(t)
	token := api.register(t, "a@x.com", "Testpass1")

	w, env := api.do(t, http.MethodPut, "/api/profile/a@x.com", token, gin.H{"first_name": "Alice", "last_name": "Smith"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Alice", env.Data["first_name"])
	assert.Equal(t, "Smith", env.Data["last_name"])

	// PATCH keeps absent fields.
	w, env = api.do(t, http.MethodPatch, "/api/profile/a@x.com", token, gin.H{"last_name": "Jones"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Alice", env.Data["first_name"])
	assert.Equal(t, "Jones", env.Data["last_name"])

	// Invalid name is rejected with a field detail.
	w, env = api.do(t, http.MethodPatch, "/api/profile/a@x.com", token, gin.H{"last_name": "Jones9"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProfileDeleteOwn(t *testing.T) {
	api := newTestAPI(t)
	token := api.register(t, "a@x.com", "Testpass1")

	w, _ := api.do(t, http.MethodDelete, "/api/profile/a@x.com", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = api.do(t, http.MethodGet, "/api/profile/a@x.com", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
