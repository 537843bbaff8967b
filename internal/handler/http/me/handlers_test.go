package me

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsportal/internal/domain/entity"
	"newsportal/internal/handler/http/auth"
	"newsportal/internal/infra/adapter/persistence/memory"
	principalUC "newsportal/internal/usecase/principal"
)

func setup(t *testing.T) (*http.ServeMux, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	mux := http.NewServeMux()
	Register(mux, principalUC.NewService(store.Repositories().Principals, store, 4))
	return mux, store
}

func create(t *testing.T, store *memory.Store, name string, role entity.Role) *entity.Principal {
	t.Helper()
	p := &entity.Principal{Username: name, Email: name + "@example.com", Role: role}
	require.NoError(t, store.Repositories().Principals.Create(context.Background(), p))
	return p
}

func do(mux *http.ServeMux, method, path, body string, as *entity.Principal) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if as != nil {
		req = req.WithContext(auth.WithPrincipal(req.Context(), as))
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestGetHandler(t *testing.T) {
	mux, store := setup(t)
	p := create(t, store, "rita", entity.RoleReader)

	rec := do(mux, http.MethodGet, "/api/me", "", p)
	require.Equal(t, http.StatusOK, rec.Code)
	var dto auth.PrincipalDTO
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&dto))
	assert.Equal(t, "rita", dto.Username)
	assert.Equal(t, "Reader", dto.Group)
	assert.Equal(t, []string{"view_article"}, dto.Permissions)
	assert.Nil(t, dto.Newsletter)
	assert.NotContains(t, rec.Body.String(), "published_articles")

	assert.Equal(t, http.StatusUnauthorized, do(mux, http.MethodGet, "/api/me", "", nil).Code)
}

func TestRoleHandler_JournalistToReaderClearsNewsletter(t *testing.T) {
	mux, store := setup(t)
	p := create(t, store, "jane", entity.RoleJournalist)

	rec := do(mux, http.MethodPut, "/api/me/newsletter", `{"newsletter":"Weekly courts digest"}`, p)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "Weekly courts digest")

	rec = do(mux, http.MethodPut, "/api/me/role", `{"role":"reader"}`, p)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var dto auth.PrincipalDTO
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&dto))
	assert.Equal(t, "reader", dto.Role)
	assert.Nil(t, dto.Newsletter)
}

func TestRoleHandler_Errors(t *testing.T) {
	mux, store := setup(t)
	p := create(t, store, "rita", entity.RoleReader)

	assert.Equal(t, http.StatusBadRequest, do(mux, http.MethodPut, "/api/me/role", `{"role":"admin"}`, p).Code)
	assert.Equal(t, http.StatusBadRequest, do(mux, http.MethodPut, "/api/me/role", `{`, p).Code)
	assert.Equal(t, http.StatusUnauthorized, do(mux, http.MethodPut, "/api/me/role", `{"role":"editor"}`, nil).Code)
}

func TestNewsletterHandler_ReaderForbidden(t *testing.T) {
	mux, store := setup(t)
	p := create(t, store, "rita", entity.RoleReader)

	rec := do(mux, http.MethodPut, "/api/me/newsletter", `{"newsletter":"x"}`, p)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGetHandler_JournalistPublishedCount(t *testing.T) {
	mux, store := setup(t)
	ctx := context.Background()
	j := create(t, store, "jane", entity.RoleJournalist)
	repos := store.Repositories()
	require.NoError(t, repos.Principals.AddToPortfolio(ctx, j.ID, 11))
	require.NoError(t, repos.Principals.AddToPortfolio(ctx, j.ID, 12))

	rec := do(mux, http.MethodGet, "/api/me", "", j)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Permissions       []string `json:"permissions"`
		PublishedArticles *int     `json:"published_articles"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.NotNil(t, body.PublishedArticles)
	assert.Equal(t, 2, *body.PublishedArticles)
	assert.Contains(t, body.Permissions, "add_article")
}

func TestGetHandler_PortfolioError(t *testing.T) {
	mux, store := setup(t)
	j := create(t, store, "jane", entity.RoleJournalist)
	store.FailOn("Principals.PortfolioSize", assert.AnError)

	rec := do(mux, http.MethodGet, "/api/me", "", j)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
