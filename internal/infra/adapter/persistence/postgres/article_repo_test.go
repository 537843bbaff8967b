package postgres_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"

	"newsportal/internal/domain/entity"
	pg "newsportal/internal/infra/adapter/persistence/postgres"
)

/* ─────────────────────────── ヘルパ ─────────────────────────── */

var articleCols = []string{
	"id", "title", "body", "publisher_id", "journalist_id",
	"approved", "approved_at", "created_at",
}

func artRows(arts ...*entity.Article) *sqlmock.Rows {
	rows := sqlmock.NewRows(articleCols)
	for _, a := range arts {
		var approvedAt any
		if a.ApprovedAt != nil {
			approvedAt = *a.ApprovedAt
		}
		rows.AddRow(a.ID, a.Title, a.Body, a.PublisherID, a.JournalistID,
			a.Approved, approvedAt, a.CreatedAt)
	}
	return rows
}

/* ─────────────────────────── 1. Get ─────────────────────────── */

func TestArticleRepo_Get(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	now := time.Date(2025, 7, 19, 0, 0, 0, 0, time.UTC)
	want := &entity.Article{
		ID: 1, Title: "Approved Article", Body: "body",
		PublisherID: 2, JournalistID: 3,
		Approved: true, ApprovedAt: &now, CreatedAt: now,
	}

	mock.ExpectQuery(regexp.QuoteMeta("SELECT a.id")).
		WithArgs(int64(1)).
		WillReturnRows(artRows(want))

	repo := pg.NewArticleRepo(db)
	got, err := repo.Get(context.Background(), 1)
	if err != nil {
		t.Fatalf("Get err=%v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestArticleRepo_Get_NotFound(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("FROM articles").
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows(articleCols))

	got, err := pg.NewArticleRepo(db).Get(context.Background(), 99)
	if err != nil || got != nil {
		t.Fatalf("Get want (nil,nil) got (%v,%v)", got, err)
	}
}

/* ─────────────────────────── 2. ListApproved ─────────────────────────── */

func TestArticleRepo_ListApproved(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("WHERE a.approved = TRUE")).
		WillReturnRows(artRows(&entity.Article{
			ID: 1, Title: "x", Body: "y", PublisherID: 1, JournalistID: 2,
			Approved: true, ApprovedAt: &now, CreatedAt: now,
		}))

	got, err := pg.NewArticleRepo(db).ListApproved(context.Background())
	if err != nil || len(got) != 1 {
		t.Fatalf("ListApproved err=%v len=%d", err, len(got))
	}
	if !got[0].Approved || got[0].ApprovedAt == nil {
		t.Fatalf("approved fields not scanned: %+v", got[0])
	}
}

/* ─────────────────────────── 3. ListApprovedForReader ─────────────────────────── */

func TestArticleRepo_ListApprovedForReader(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("reader_journalist_subscriptions WHERE reader_id = $1")).
		WithArgs(int64(7)).
		WillReturnRows(artRows(
			&entity.Article{ID: 2, Title: "b", Body: "b", PublisherID: 1, JournalistID: 3, Approved: true, ApprovedAt: &now, CreatedAt: now},
			&entity.Article{ID: 1, Title: "a", Body: "a", PublisherID: 1, JournalistID: 3, Approved: true, ApprovedAt: &now, CreatedAt: now},
		))

	got, err := pg.NewArticleRepo(db).ListApprovedForReader(context.Background(), 7)
	if err != nil {
		t.Fatalf("ListApprovedForReader err=%v", err)
	}
	if len(got) != 2 || got[0].ID != 2 || got[1].ID != 1 {
		t.Fatalf("unexpected order: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

/* ─────────────────────────── 4. ListPending / ListByJournalist ─────────────────────────── */

func TestArticleRepo_ListPending(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("WHERE a.approved = FALSE")).
		WillReturnRows(artRows(&entity.Article{ID: 5, Title: "Pending Article", Body: "b", PublisherID: 1, JournalistID: 2, CreatedAt: now}))

	got, err := pg.NewArticleRepo(db).ListPending(context.Background())
	if err != nil || len(got) != 1 || got[0].Approved || got[0].ApprovedAt != nil {
		t.Fatalf("ListPending err=%v got=%+v", err, got)
	}
}

func TestArticleRepo_ListByJournalist(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE a.journalist_id = $1")).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(articleCols)) // 空集合で OK

	got, err := pg.NewArticleRepo(db).ListByJournalist(context.Background(), 3)
	if err != nil || len(got) != 0 {
		t.Fatalf("ListByJournalist err=%v len=%d", err, len(got))
	}
}

/* ─────────────────────────── 5. Create ─────────────────────────── */

func TestArticleRepo_Create(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO articles")).
		WithArgs("title", "body", int64(1), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(10), now))

	art := &entity.Article{Title: "title", Body: "body", PublisherID: 1, JournalistID: 2, Approved: true}
	if err := pg.NewArticleRepo(db).Create(context.Background(), art); err != nil {
		t.Fatalf("Create err=%v", err)
	}
	if art.ID != 10 || !art.CreatedAt.Equal(now) || art.Approved {
		t.Fatalf("Create did not fill returned fields: %+v", art)
	}
}

/* ─────────────────────────── 6. MarkApproved ─────────────────────────── */

func TestArticleRepo_MarkApproved(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name     string
		affected int64
		want     bool
	}{
		{name: "pending article transitions", affected: 1, want: true},
		{name: "already approved is a no-op", affected: 0, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, _ := sqlmock.New()
			defer func() { _ = db.Close() }()

			mock.ExpectExec(regexp.QuoteMeta("WHERE id = $1 AND approved = FALSE")).
				WithArgs(int64(4), now).
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			got, err := pg.NewArticleRepo(db).MarkApproved(context.Background(), 4, now)
			if err != nil {
				t.Fatalf("MarkApproved err=%v", err)
			}
			if got != tt.want {
				t.Fatalf("MarkApproved = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestArticleRepo_MarkApproved_Error(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectExec("UPDATE articles").WillReturnError(errors.New("conn reset"))

	if _, err := pg.NewArticleRepo(db).MarkApproved(context.Background(), 1, time.Now()); err == nil {
		t.Fatal("expected error")
	}
}
