package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kurdotex/order-intake/internal/middleware/auth"
	"github.com/kurdotex/order-intake/internal/models"
	"github.com/kurdotex/order-intake/internal/repo"
	"github.com/kurdotex/order-intake/internal/service"
)

const testWebhookSecret = "whsec_test"

type testEnv struct {
	T         *testing.T
	E         *echo.Echo
	DB        *gorm.DB
	JWTSecret []byte
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Order{}, &models.OrderItem{}, &models.WebhookEvent{}))

	gormRepo := &repo.GormRepo{DB: db}
	env := &testEnv{
		T:         t,
		E:         echo.New(),
		DB:        db,
		JWTSecret: []byte("test-jwt-secret"),
	}

	Register(env.E, &Deps{
		OrderHandler:   &OrderHTTP{Svc: &service.OrderService{Repo: gormRepo}},
		WebhookHandler: &WebhookHTTP{Svc: &service.WebhookService{Repo: gormRepo, Secret: testWebhookSecret}},
		JWTSecret:      env.JWTSecret,
	})

	return env
}

func (env *testEnv) bearer(userID uint) string {
	token, err := auth.SignAccessToken(userID, env.JWTSecret, time.Now().Add(15*time.Minute).Unix())
	require.NoError(env.T, err)
	return "Bearer " + token
}

func (env *testEnv) doJSON(method, path string, body interface{}, header http.Header) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) doRaw(method, path string, body []byte, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}
