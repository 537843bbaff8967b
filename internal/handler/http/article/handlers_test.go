package article

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsportal/internal/domain/entity"
	"newsportal/internal/handler/http/auth"
	"newsportal/internal/infra/adapter/persistence/memory"
	artUC "newsportal/internal/usecase/article"
)

/* ───────── スタブ実装 ───────── */

type recordingHook struct {
	mu     sync.Mutex
	events []entity.ApprovalEvent
}

func (h *recordingHook) ApprovalCommitted(_ context.Context, ev entity.ApprovalEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, ev)
	return nil
}

/* ───────── テスト用フィクスチャ ───────── */

type fixture struct {
	mux        *http.ServeMux
	store      *memory.Store
	hook       *recordingHook
	acme       *entity.Publisher
	globe      *entity.Publisher
	journalist *entity.Principal
	editor     *entity.Principal
	reader     *entity.Principal
	approved   *entity.Article
	pending    *entity.Article
	offTopic   *entity.Article
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	repos := store.Repositories()

	mk := func(name string, role entity.Role) *entity.Principal {
		p := &entity.Principal{Username: name, Email: name + "@example.com", Role: role}
		require.NoError(t, repos.Principals.Create(ctx, p))
		return p
	}
	f := &fixture{
		store:      store,
		hook:       &recordingHook{},
		acme:       &entity.Publisher{Name: "Acme Daily"},
		globe:      &entity.Publisher{Name: "Globe"},
		journalist: mk("jane", entity.RoleJournalist),
		editor:     mk("ed", entity.RoleEditor),
		reader:     mk("rita", entity.RoleReader),
	}
	require.NoError(t, repos.Publishers.Create(ctx, f.acme))
	require.NoError(t, repos.Publishers.Create(ctx, f.globe))
	require.NoError(t, repos.Subscriptions.SubscribePublisher(ctx, f.reader.ID, f.acme.ID))

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	f.approved = &entity.Article{Title: "Budget passes", Body: "b", PublisherID: f.acme.ID, JournalistID: f.journalist.ID, Approved: true, CreatedAt: base}
	f.pending = &entity.Article{Title: "Draft", Body: "b", PublisherID: f.acme.ID, JournalistID: f.journalist.ID, CreatedAt: base.Add(time.Hour)}
	f.offTopic = &entity.Article{Title: "Elsewhere", Body: "b", PublisherID: f.globe.ID, JournalistID: f.journalist.ID, Approved: true, CreatedAt: base.Add(2 * time.Hour)}
	store.Seed(f.approved)
	store.Seed(f.pending)
	store.Seed(f.offTopic)

	svc := &artUC.Service{Tx: store, Articles: repos.Articles, Publishers: repos.Publishers, Hook: f.hook}
	f.mux = http.NewServeMux()
	Register(f.mux, svc, &artUC.Resolver{Articles: repos.Articles})
	return f
}

func (f *fixture) do(t *testing.T, method, path, body string, as *entity.Principal) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if as != nil {
		req = req.WithContext(auth.WithPrincipal(req.Context(), as))
	}
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), rec.Body.String())
	return v
}

func ids(list []DTO) []int64 {
	out := make([]int64, 0, len(list))
	for _, a := range list {
		out = append(out, a.ID)
	}
	return out
}

/* ───────── 一覧・詳細 ───────── */

func TestListHandler_Visibility(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		as   *entity.Principal
		want []int64
	}{
		{name: "anonymous sees every approved article", as: nil, want: []int64{f.offTopic.ID, f.approved.ID}},
		{name: "editor sees every approved article", as: f.editor, want: []int64{f.offTopic.ID, f.approved.ID}},
		{name: "reader sees subscriptions only", as: f.reader, want: []int64{f.approved.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, http.MethodGet, "/api/articles", "", tt.as)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.want, ids(decode[[]DTO](t, rec)))
		})
	}
}

func TestListHandler_ReaderWithoutSubscriptionsGetsEmptyArray(t *testing.T) {
	f := newFixture(t)
	lonely := &entity.Principal{Username: "lonely", Email: "l@example.com", Role: entity.RoleReader}
	require.NoError(t, f.store.Repositories().Principals.Create(context.Background(), lonely))

	rec := f.do(t, http.MethodGet, "/api/articles", "", lonely)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestGetHandler(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name       string
		path       string
		as         *entity.Principal
		wantStatus int
	}{
		{"visible", "/api/articles/" + itoa(f.approved.ID), f.reader, http.StatusOK},
		{"pending is hidden", "/api/articles/" + itoa(f.pending.ID), f.editor, http.StatusNotFound},
		{"outside subscriptions", "/api/articles/" + itoa(f.offTopic.ID), f.reader, http.StatusNotFound},
		{"unknown id", "/api/articles/999", nil, http.StatusNotFound},
		{"bad id", "/api/articles/abc", nil, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, http.MethodGet, tt.path, "", tt.as)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

/* ───────── 投稿・承認 ───────── */

func TestCreateHandler(t *testing.T) {
	f := newFixture(t)
	body := `{"title":"Council votes","body":"Details","publisher_id":` + itoa(f.acme.ID) + `}`

	t.Run("journalist submits a pending article", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/api/articles", body, f.journalist)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		got := decode[DTO](t, rec)
		assert.False(t, got.Approved)
		assert.Equal(t, f.journalist.ID, got.JournalistID)
		assert.Equal(t, "/api/articles/"+itoa(got.ID), rec.Header().Get("Location"))
	})

	tests := []struct {
		name       string
		body       string
		as         *entity.Principal
		wantStatus int
	}{
		{"anonymous", body, nil, http.StatusUnauthorized},
		{"reader", body, f.reader, http.StatusForbidden},
		{"editor", body, f.editor, http.StatusForbidden},
		{"missing title", `{"body":"x","publisher_id":` + itoa(f.acme.ID) + `}`, f.journalist, http.StatusBadRequest},
		{"unknown publisher", `{"title":"t","body":"x","publisher_id":999}`, f.journalist, http.StatusNotFound},
		{"malformed", `{`, f.journalist, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, "/api/articles", tt.body, tt.as)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
		})
	}
}

func TestApproveHandler(t *testing.T) {
	f := newFixture(t)
	path := "/api/articles/" + itoa(f.pending.ID) + "/approve"

	rec := f.do(t, http.MethodPost, path, "", f.reader)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, f.hook.events)

	rec = f.do(t, http.MethodPost, path, "", f.editor)
	require.Equal(t, http.StatusOK, rec.Code)
	first := decode[approveResponse](t, rec)
	assert.True(t, first.Transitioned)
	assert.True(t, first.Article.Approved)
	require.NotNil(t, first.Article.ApprovedAt)

	// 二回目は冪等でフックも呼ばれない
	rec = f.do(t, http.MethodPost, path, "", f.editor)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[approveResponse](t, rec).Transitioned)

	require.Len(t, f.hook.events, 1)
	assert.Equal(t, f.pending.ID, f.hook.events[0].ArticleID)

	rec = f.do(t, http.MethodPost, "/api/articles/999/approve", "", f.editor)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

/* ───────── 編集キュー・記者ダッシュボード ───────── */

func TestPendingHandler(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/editor/pending", "", f.editor)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []int64{f.pending.ID}, ids(decode[[]DTO](t, rec)))

	rec = f.do(t, http.MethodGet, "/api/editor/pending", "", f.journalist)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/editor/pending", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDashboardHandler(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/journalist/dashboard", "", f.journalist)
	require.Equal(t, http.StatusOK, rec.Code)
	d := decode[DashboardDTO](t, rec)
	assert.True(t, d.HasPending)
	assert.Equal(t, []int64{f.pending.ID}, ids(d.Pending))
	assert.ElementsMatch(t, []int64{f.approved.ID, f.offTopic.ID}, ids(d.Approved))

	rec = f.do(t, http.MethodGet, "/api/journalist/dashboard", "", f.editor)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }
