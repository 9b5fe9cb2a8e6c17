// internal/site/store_test.go
//
// Unit-tests for the site store using sqlmock.
//
// Run: go test ./internal/site -v

package site

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

var siteCols = []string{
	"tenant_id", "subdomain", "template_id", "site_data",
	"is_published", "created_at", "updated_at",
}

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewStore(sqlx.NewDb(db, "sqlmock")), mock
}

func rowFor(t *testing.T, tenantID, subdomain string, content Content, published bool) *sqlmock.Rows {
	t.Helper()
	data, err := json.Marshal(content)
	if err != nil {
		t.Fatalf("marshal content: %v", err)
	}
	now := time.Now()
	return sqlmock.NewRows(siteCols).
		AddRow(tenantID, subdomain, "classic", data, published, now, now)
}

func TestGetBySubdomain(t *testing.T) {
	store, mock := newMockStore(t)
	content := Content{BusinessName: "Bella's", Services: []Service{{Name: "Facial", Price: 120}}}

	mock.ExpectQuery(`SELECT .+ FROM\s+site\s+WHERE\s+subdomain = \?`).
		WithArgs("bellas").
		WillReturnRows(rowFor(t, "t1", "bellas", content, true))

	rec, err := store.GetBySubdomain(context.Background(), "bellas")
	if err != nil {
		t.Fatalf("GetBySubdomain: %v", err)
	}
	if rec.TenantID != "t1" || !rec.IsPublished {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if len(rec.Content.Services) != 1 || rec.Content.Services[0].Name != "Facial" {
		t.Fatalf("content not scanned from JSON column: %+v", rec.Content)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestGetBySubdomain_Missing(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT .+ FROM\s+site\s+WHERE\s+subdomain = \?`).
		WithArgs("nosuchtenant").
		WillReturnRows(sqlmock.NewRows(siteCols))

	_, err := store.GetBySubdomain(context.Background(), "nosuchtenant")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestGet_TransientRetriesOnce(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT .+ FROM\s+site\s+WHERE\s+tenant_id = \?`).
		WithArgs("t1").
		WillReturnError(errors.New("invalid connection"))
	mock.ExpectQuery(`SELECT .+ FROM\s+site\s+WHERE\s+tenant_id = \?`).
		WithArgs("t1").
		WillReturnRows(rowFor(t, "t1", "bellas", Content{BusinessName: "Bella's"}, false))

	rec, err := store.Get(context.Background(), "t1")
	if err != nil {
		t.Fatalf("Get after retry: %v", err)
	}
	if rec.Subdomain != "bellas" {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestGet_TransientSurfacesAsUnavailable(t *testing.T) {
	store, mock := newMockStore(t)

	for i := 0; i < 2; i++ {
		mock.ExpectQuery(`SELECT .+ FROM\s+site\s+WHERE\s+tenant_id = \?`).
			WithArgs("t1").
			WillReturnError(errors.New("invalid connection"))
	}

	_, err := store.Get(context.Background(), "t1")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}

func TestCreate_DuplicateSubdomain(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`INSERT INTO site`).
		WillReturnError(errors.New("Error 1062: Duplicate entry 'bellas' for key 'subdomain'"))

	err := store.Create(context.Background(), "t2", "bellas", "classic", Content{BusinessName: "Other"})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
}

func TestUpsertContent_MergeAndPersist(t *testing.T) {
	store, mock := newMockStore(t)
	stored := Content{
		BusinessName: "Bella's",
		Tagline:      "Old tagline",
		Services:     []Service{{Name: "Facial", Price: 120}},
	}

	mock.ExpectQuery(`SELECT .+ FROM\s+site\s+WHERE\s+tenant_id = \?`).
		WithArgs("t1").
		WillReturnRows(rowFor(t, "t1", "bellas", stored, true))
	mock.ExpectExec(`UPDATE site\s+SET\s+site_data = \?, updated_at = NOW\(\)`).
		WithArgs(sqlmock.AnyArg(), "t1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	tagline := "New tagline"
	rec, err := store.UpsertContent(context.Background(), "t1", Patch{Tagline: &tagline})
	if err != nil {
		t.Fatalf("UpsertContent: %v", err)
	}
	if rec.Content.Tagline != "New tagline" || rec.Content.BusinessName != "Bella's" {
		t.Fatalf("merge wrong: %+v", rec.Content)
	}
	if len(rec.Content.Services) != 1 {
		t.Fatalf("nil services patch must not touch the list: %+v", rec.Content.Services)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestSetPublished_Idempotent(t *testing.T) {
	store, mock := newMockStore(t)

	// Already published: only the SELECT runs, no UPDATE.
	mock.ExpectQuery(`SELECT .+ FROM\s+site\s+WHERE\s+tenant_id = \?`).
		WithArgs("t1").
		WillReturnRows(rowFor(t, "t1", "bellas", Content{BusinessName: "Bella's"}, true))

	rec, err := store.SetPublished(context.Background(), "t1", true)
	if err != nil {
		t.Fatalf("SetPublished: %v", err)
	}
	if !rec.IsPublished {
		t.Fatalf("record should remain published")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("idempotent publish must not issue an UPDATE: %v", err)
	}
}

func TestSetPublished_Flip(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT .+ FROM\s+site\s+WHERE\s+tenant_id = \?`).
		WithArgs("t1").
		WillReturnRows(rowFor(t, "t1", "bellas", Content{BusinessName: "Bella's"}, false))
	mock.ExpectExec(`UPDATE site\s+SET\s+is_published = \?, updated_at = NOW\(\)`).
		WithArgs(true, "t1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec, err := store.SetPublished(context.Background(), "t1", true)
	if err != nil {
		t.Fatalf("SetPublished: %v", err)
	}
	if !rec.IsPublished {
		t.Fatalf("flag not flipped on returned record")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestSetPublished_MissingRecord(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT .+ FROM\s+site\s+WHERE\s+tenant_id = \?`).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(siteCols))

	_, err := store.SetPublished(context.Background(), "ghost", true)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
