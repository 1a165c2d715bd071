package store

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	liteerr "github.com/structlite/structlite/core/errors"
	"github.com/structlite/structlite/core/schema"
	"github.com/structlite/structlite/core/sqlite"
)

type Book struct {
	Title  string `lite:"primary"`
	Author string `lite:"primary"`
	Pages  int
	Rating float64
}

type Note struct {
	ID   int64 `lite:"rowid"`
	Body string
	Done bool
}

type Account struct {
	ID     int64 `lite:"rowid"`
	Number int   `lite:"unique"`
	Owner  string
}

func tempPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "test.db")
}

func mustBind[T any](t *testing.T, loc Locator, opts ...Option) *Store[T] {
	t.Helper()
	s, err := Bind[T](loc, opts...)
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestBindIdempotent(t *testing.T) {
	path := tempPath(t)

	first := mustBind[Book](t, Path(path))
	rec := Book{Title: "dune", Author: "herbert", Pages: 412}
	if err := first.Create(&rec); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Re-binding the same record type must neither fail nor touch the
	// existing table or its rows.
	second := mustBind[Book](t, Path(path))
	all, err := second.All()
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(all) != 1 || all[0] != rec {
		t.Errorf("All = %v, want the original row", all)
	}
}

func TestCreateRoundTripSyntheticKey(t *testing.T) {
	s := mustBind[Note](t, Path(tempPath(t)))

	rec := Note{Body: "first", Done: true}
	if err := s.Create(&rec); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.ID <= 0 {
		t.Fatalf("Create must write back the generated row id, got %d", rec.ID)
	}

	got, err := s.Get(rec.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if *got != rec {
		t.Errorf("Get = %+v, want %+v", *got, rec)
	}
}

func TestCreateRoundTripExplicitKey(t *testing.T) {
	s := mustBind[Book](t, Path(tempPath(t)))

	rec := Book{Title: "dune", Author: "herbert", Pages: 412, Rating: 4.5}
	if err := s.Create(&rec); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := s.Get("dune", "herbert")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if *got != rec {
		t.Errorf("Get = %+v, want %+v", *got, rec)
	}

	// The explicit-key table must not carry a synthetic key column.
	cols, err := sqlite.TableColumns(s.DB(), "book")
	if err != nil {
		t.Fatalf("TableColumns: %v", err)
	}
	for _, c := range cols {
		if c == schema.RowIDColumn {
			t.Errorf("table book must not have a %s column", schema.RowIDColumn)
		}
	}
}

func TestGetNotFound(t *testing.T) {
	s := mustBind[Note](t, Path(tempPath(t)))
	if _, err := s.Get(int64(99)); !errors.Is(err, liteerr.ErrNotFound) {
		t.Fatalf("Get on missing key = %v, want ErrNotFound", err)
	}
}

func TestGetValidatesKey(t *testing.T) {
	s := mustBind[Book](t, Path(tempPath(t)))
	if _, err := s.Get("dune"); !errors.Is(err, liteerr.ErrInvalidKey) {
		t.Fatalf("short key = %v, want ErrInvalidKey", err)
	}
	if _, err := s.Get("dune", struct{}{}); !errors.Is(err, liteerr.ErrInvalidKey) {
		t.Fatalf("non-primitive key = %v, want ErrInvalidKey", err)
	}
}

func TestUpdate(t *testing.T) {
	s := mustBind[Note](t, Path(tempPath(t)))

	rec := Note{Body: "draft"}
	if err := s.Create(&rec); err != nil {
		t.Fatalf("Create: %v", err)
	}

	rec.Body = "final"
	rec.Done = true
	if err := s.Update(&rec); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := s.Get(rec.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Body != "final" || !got.Done {
		t.Errorf("Get after update = %+v", *got)
	}
}

func TestUpdateMissingKeyAffectsNothing(t *testing.T) {
	s := mustBind[Note](t, Path(tempPath(t)))

	ghost := Note{ID: 12345, Body: "never created"}
	if err := s.Update(&ghost); err != nil {
		t.Fatalf("Update of a missing key must not error, got %v", err)
	}
	all, err := s.All()
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("table should still be empty, got %v", all)
	}
}

func TestDelete(t *testing.T) {
	s := mustBind[Note](t, Path(tempPath(t)))

	rec := Note{Body: "gone soon"}
	if err := s.Create(&rec); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := s.Delete(&rec); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(rec.ID); !errors.Is(err, liteerr.ErrNotFound) {
		t.Fatalf("Get after delete = %v, want ErrNotFound", err)
	}
}

func TestDeleteKeyWithoutInstance(t *testing.T) {
	s := mustBind[Book](t, Path(tempPath(t)))

	rec := Book{Title: "dune", Author: "herbert"}
	if err := s.Create(&rec); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := s.DeleteKey("dune", "herbert"); err != nil {
		t.Fatalf("DeleteKey: %v", err)
	}
	if _, err := s.Get("dune", "herbert"); !errors.Is(err, liteerr.ErrNotFound) {
		t.Fatalf("Get after DeleteKey = %v, want ErrNotFound", err)
	}

	if err := s.DeleteKey("dune"); !errors.Is(err, liteerr.ErrInvalidKey) {
		t.Fatalf("DeleteKey with short key = %v, want ErrInvalidKey", err)
	}
}

func TestTransientInstanceHasNoKey(t *testing.T) {
	type Bare struct {
		Body string
	}
	s := mustBind[Bare](t, Path(tempPath(t)))

	rec := Bare{Body: "x"}
	if err := s.Create(&rec); err != nil {
		t.Fatalf("Create: %v", err)
	}
	// Without a rowid carrier the instance cannot address its own row.
	if err := s.Update(&rec); !errors.Is(err, liteerr.ErrMissingRowID) {
		t.Fatalf("Update = %v, want ErrMissingRowID", err)
	}
	if err := s.Delete(&rec); !errors.Is(err, liteerr.ErrMissingRowID) {
		t.Fatalf("Delete = %v, want ErrMissingRowID", err)
	}
}

func TestUniqueConstraint(t *testing.T) {
	s := mustBind[Account](t, Path(tempPath(t)))

	first := Account{Number: 7, Owner: "ada"}
	if err := s.Create(&first); err != nil {
		t.Fatalf("Create: %v", err)
	}

	dup := Account{Number: 7, Owner: "bob"}
	err := s.Create(&dup)
	var cv *liteerr.ConstraintViolationError
	if !errors.As(err, &cv) {
		t.Fatalf("duplicate create = %v, want ConstraintViolationError", err)
	}
	if !errors.Is(err, liteerr.ErrConstraint) {
		t.Error("expected errors.Is(err, ErrConstraint)")
	}

	all, err := s.All()
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("no partial row may be visible, got %d rows", len(all))
	}
}

func TestDuplicateExplicitKey(t *testing.T) {
	s := mustBind[Book](t, Path(tempPath(t)))

	rec := Book{Title: "dune", Author: "herbert"}
	if err := s.Create(&rec); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := s.Create(&rec); !errors.Is(err, liteerr.ErrConstraint) {
		t.Fatalf("duplicate key create = %v, want ErrConstraint", err)
	}
}

func TestCreateMany(t *testing.T) {
	s := mustBind[Note](t, Path(tempPath(t)))

	batch := []Note{{Body: "a"}, {Body: "b"}, {Body: "c"}}
	if err := s.CreateMany(batch); err != nil {
		t.Fatalf("CreateMany: %v", err)
	}

	all, err := s.All()
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("All returned %d rows, want 3", len(all))
	}
	bodies := map[string]int{}
	for _, n := range all {
		bodies[n.Body]++
	}
	for _, want := range []string{"a", "b", "c"} {
		if bodies[want] != 1 {
			t.Errorf("body %q appears %d times, want exactly once", want, bodies[want])
		}
	}
}

func TestCreateManyEmpty(t *testing.T) {
	s := mustBind[Note](t, Path(tempPath(t)))
	if err := s.CreateMany(nil); !errors.Is(err, liteerr.ErrEmptyCollection) {
		t.Fatalf("CreateMany(nil) = %v, want ErrEmptyCollection", err)
	}
}

func TestCreateManyAtomicOnConstraint(t *testing.T) {
	s := mustBind[Account](t, Path(tempPath(t)))

	batch := []Account{
		{Number: 1, Owner: "ada"},
		{Number: 2, Owner: "bob"},
		{Number: 1, Owner: "eve"}, // duplicate unique value
	}
	if err := s.CreateMany(batch); !errors.Is(err, liteerr.ErrConstraint) {
		t.Fatalf("CreateMany = %v, want ErrConstraint", err)
	}

	all, err := s.All()
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("failed batch must apply nothing, got %d rows", len(all))
	}
}

func TestCopyMany(t *testing.T) {
	src := mustBind[Note](t, Path(tempPath(t)))
	dstPath := filepath.Join(t.TempDir(), "copy.db")

	batch := []Note{{Body: "a"}, {Body: "b"}}
	if err := src.CreateMany(batch); err != nil {
		t.Fatalf("CreateMany: %v", err)
	}
	if err := src.CopyMany(batch, Path(dstPath)); err != nil {
		t.Fatalf("CopyMany: %v", err)
	}

	dst := mustBind[Note](t, Path(dstPath))
	copied, err := dst.All()
	if err != nil {
		t.Fatalf("All on target: %v", err)
	}
	if len(copied) != 2 {
		t.Errorf("target has %d rows, want 2", len(copied))
	}

	// The source is untouched.
	orig, err := src.All()
	if err != nil {
		t.Fatalf("All on source: %v", err)
	}
	if len(orig) != 2 {
		t.Errorf("source has %d rows, want 2", len(orig))
	}
}

func TestSharedHandle(t *testing.T) {
	db := sqlite.MustOpen(tempPath(t))
	defer db.Close()

	notes := mustBind[Note](t, Handle(db))
	books := mustBind[Book](t, Handle(db))

	if err := notes.Create(&Note{Body: "x"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := books.Create(&Book{Title: "dune", Author: "herbert"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Close on an adopted handle must not close the shared connection.
	if err := notes.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := books.All(); err != nil {
		t.Fatalf("shared handle was closed: %v", err)
	}
}

func TestTypeTableOverride(t *testing.T) {
	type Timer struct {
		ID      int64 `lite:"rowid"`
		Name    string
		Elapsed time.Duration
	}

	// time.Duration is unmapped by default.
	if _, err := Bind[Timer](Path(tempPath(t))); !errors.Is(err, liteerr.ErrUnmappedType) {
		t.Fatalf("Bind without override = %v, want ErrUnmappedType", err)
	}

	override := schema.TypeTable{
		reflect.TypeOf(time.Duration(0)): {Storage: schema.Integer},
	}
	s := mustBind[Timer](t, Path(tempPath(t)), WithTypes(override))

	rec := Timer{Name: "boil", Elapsed: 3 * time.Minute}
	if err := s.Create(&rec); err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := s.Get(rec.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Elapsed != 3*time.Minute {
		t.Errorf("Elapsed = %v, want 3m", got.Elapsed)
	}
}

func TestProgrammaticConstraints(t *testing.T) {
	type Plain struct {
		Code string
		Name string
	}
	s := mustBind[Plain](t, Path(tempPath(t)),
		WithConstraint("Code", schema.Constraint{Primary: true}),
		WithDefault("Name", "unnamed"))

	if s.Schema().Synthetic() {
		t.Fatal("Code should be the primary key")
	}
	rec := Plain{Code: "x1", Name: "one"}
	if err := s.Create(&rec); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := s.Create(&Plain{Code: "x1"}); !errors.Is(err, liteerr.ErrConstraint) {
		t.Fatalf("duplicate programmatic key = %v, want ErrConstraint", err)
	}
}

func TestDrop(t *testing.T) {
	s := mustBind[Note](t, Path(tempPath(t)))
	if err := s.Drop(); err != nil {
		t.Fatalf("Drop: %v", err)
	}
	exists, err := sqlite.TableExists(s.DB(), "note")
	if err != nil {
		t.Fatalf("TableExists: %v", err)
	}
	if exists {
		t.Error("table note should be gone after Drop")
	}
}
