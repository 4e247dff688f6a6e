package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"recipegram-backend/internal/middleware"
	"recipegram-backend/internal/models"
	"recipegram-backend/internal/service"
)

// testEnv holds the wired application plus direct service handles for
// seeding.
type testEnv struct {
	router  *gin.Engine
	db      *gorm.DB
	auth    *service.AuthService
	recipes *service.RecipeService
}

var testDBSeq atomic.Int64

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:apitest%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(models.All()...))

	logger := zap.NewNop()
	auth := service.NewAuthService(db, nil, logger, "test-secret")
	users := service.NewUserService(db)
	catalog := service.NewCatalogService(db)
	recipes := service.NewRecipeService(db, logger)
	shoppingList := service.NewShoppingListService(db)
	favorites := service.NewFavoriteRelation(db, logger)
	carts := service.NewShoppingCartRelation(db, logger)
	follows := service.NewFollowRelation(db, logger)

	limiter := middleware.NewRateLimiter(nil, middleware.RateLimitConfig{})

	router := gin.New()
	v1 := router.Group("/api/v1")
	NewAuthHandler(auth, limiter).RegisterRoutes(v1)
	NewUserHandler(users, follows, auth).RegisterRoutes(v1)
	NewCatalogHandler(catalog).RegisterRoutes(v1)
	NewRecipeHandler(recipes, shoppingList, favorites, carts, follows, nil, auth).RegisterRoutes(v1)

	return &testEnv{router: router, db: db, auth: auth, recipes: recipes}
}

// registerUser creates an account through the service and returns its token
// and user record.
func (e *testEnv) registerUser(t *testing.T, username string) (string, *models.User) {
	t.Helper()
	token, user, err := e.auth.Register(context.Background(),
		username, username+"@example.com", "", "", "password123")
	require.NoError(t, err)
	return token, user
}

func (e *testEnv) request(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

func (e *testEnv) seedIngredient(t *testing.T, name, unit string) *models.Ingredient {
	t.Helper()
	ing := models.Ingredient{Name: name, MeasurementUnit: unit}
	require.NoError(t, e.db.Create(&ing).Error)
	return &ing
}

func (e *testEnv) seedTag(t *testing.T, name, color, slug string) *models.Tag {
	t.Helper()
	tag := models.Tag{Name: name, Color: color, Slug: slug}
	require.NoError(t, e.db.Create(&tag).Error)
	return &tag
}
