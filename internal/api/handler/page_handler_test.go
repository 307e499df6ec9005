package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/ceb/config"
	"github.com/d60-Lab/ceb/internal/model"
	"github.com/d60-Lab/ceb/internal/repository"
	"github.com/d60-Lab/ceb/internal/service"
	"github.com/d60-Lab/ceb/internal/testutil"
	"github.com/d60-Lab/ceb/web"
)

func init() { gin.SetMode(gin.TestMode) }

type fixture struct {
	engine  *gin.Engine
	handler *Handler
	html    *testutil.HTMLRecorder
	t1      repository.Table1Repository
	t2      repository.Table2Repository
	auth    service.AuthService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	t1 := repository.NewTable1Repository(db)
	t2 := repository.NewTable2Repository(db)
	listing := service.NewListingService(t1, t2, nil)
	records := service.NewRecordService(t1, t2, service.NewFileMediaStore(t.TempDir()), listing)
	auth := service.NewAuthService(repository.NewUserRepository(db), config.JWTConfig{Secret: "k", Expire: time.Hour})
	h := New(listing, records, auth, Options{CookieName: "sess"})

	html := &testutil.HTMLRecorder{}
	r := gin.New()
	r.HTMLRender = html
	r.GET("/login", h.LoginPage)
	r.POST("/login", h.Login)
	r.POST("/logout", h.Logout)
	r.GET("/", h.Index)
	r.GET("/api/v1/records", h.ListRecords)
	return &fixture{engine: r, handler: h, html: html, t1: t1, t2: t2, auth: auth}
}

func TestLoginPage_NoData(t *testing.T) {
	f := newFixture(t)
	rec := testutil.Do(f.engine, httptest.NewRequest(http.MethodGet, "/login", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	call, ok := f.html.Last()
	require.True(t, ok)
	assert.Equal(t, web.LoginTemplate, call.Name)
}

func TestLoginPage_IndependentOfStoredData(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.t1.Create(context.Background(), &model.Table1{Title: "A", Body: "x"}))

	rec := testutil.Do(f.engine, httptest.NewRequest(http.MethodGet, "/login", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	call, _ := f.html.Last()
	assert.Equal(t, web.LoginTemplate, call.Name)
	assert.Empty(t, call.Data)
}

func TestIndex_EmptyStore(t *testing.T) {
	f := newFixture(t)
	rec := testutil.Do(f.engine, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	call, ok := f.html.Last()
	require.True(t, ok)
	assert.Equal(t, web.IndexTemplate, call.Name)
	data := call.Data.(map[string]any)
	require.Len(t, data, 2)
	assert.Equal(t, []model.Table1{}, data[model.ContextKeyTable1])
	assert.Equal(t, []model.Table2{}, data[model.ContextKeyTable2])
}

func TestIndex_OneRecordOfEachKind(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.t1.Create(ctx, &model.Table1{Title: "A", Body: "x"}))
	require.NoError(t, f.t2.Create(ctx, &model.Table2{Title: "B", Body: "y", Image: "img.png"}))

	rec := testutil.Do(f.engine, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	call, _ := f.html.Last()
	data := call.Data.(map[string]any)
	tabL := data[model.ContextKeyTable1].([]model.Table1)
	tabList := data[model.ContextKeyTable2].([]model.Table2)
	require.Len(t, tabL, 1)
	require.Len(t, tabList, 1)
	assert.Equal(t, "A", tabL[0].Title)
	assert.Equal(t, "B", tabList[0].Title)
	assert.Equal(t, "img.png", tabList[0].Image)
}

func TestIndex_ReflectsFullStoreAtRequestTime(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.NoError(t, f.t1.Create(ctx, &model.Table1{Title: "a", Body: "x"}))
	}
	testutil.Do(f.engine, httptest.NewRequest(http.MethodGet, "/", nil))
	call, _ := f.html.Last()
	assert.Len(t, call.Data.(map[string]any)[model.ContextKeyTable1], 3)

	require.NoError(t, f.t1.Delete(ctx, 1))
	require.NoError(t, f.t2.Create(ctx, &model.Table2{Title: "b", Body: "y", Image: "i.png"}))
	testutil.Do(f.engine, httptest.NewRequest(http.MethodGet, "/", nil))
	call, _ = f.html.Last()
	data := call.Data.(map[string]any)
	assert.Len(t, data[model.ContextKeyTable1], 2)
	assert.Len(t, data[model.ContextKeyTable2], 1)
}

type brokenListing struct{}

func (brokenListing) Index(context.Context) (*model.Listing, error) { return nil, errors.New("db down") }
func (brokenListing) Invalidate(context.Context)                    {}

func TestIndex_StorageFailureIs500(t *testing.T) {
	h := New(brokenListing{}, nil, nil, Options{})
	r := gin.New()
	r.HTMLRender = &testutil.HTMLRecorder{}
	r.GET("/", h.Index)

	rec := testutil.Do(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestListRecordsJSON(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.t1.Create(context.Background(), &model.Table1{Title: "A", Body: "x"}))

	rec, resp := testutil.MakeJSONRequest(f.engine, http.MethodGet, "/api/v1/records", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	data := resp["data"].(map[string]any)
	assert.Len(t, data["tab_L"], 1)
	assert.Len(t, data["tab_list"], 0)
}

func postLogin(f *fixture, username, password string) *httptest.ResponseRecorder {
	form := url.Values{"username": {username}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return testutil.Do(f.engine, req)
}

func TestLoginFlow(t *testing.T) {
	f := newFixture(t)
	_, err := f.auth.CreateUser(context.Background(), "admin", "password123", true)
	require.NoError(t, err)

	rec := postLogin(f, "admin", "wrong-pass")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	call, _ := f.html.Last()
	assert.Equal(t, web.LoginTemplate, call.Name)
	assert.Equal(t, "admin", call.Data.(gin.H)["username"])

	rec = postLogin(f, "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postLogin(f, "admin", "password123")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	var session *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "sess" {
			session = c
		}
	}
	require.NotNil(t, session)
	assert.True(t, session.HttpOnly)
	claims, err := f.auth.ParseToken(session.Value)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)

	rec = testutil.Do(f.engine, httptest.NewRequest(http.MethodPost, "/logout", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "sess=;")
}
