package config

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide"
	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/catalog"
	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/model"
	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/sparql"
	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/store"
	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/store/memstore"
)

const miniCatalog = `
domains:
  - {id: D_Astro, label: Astronomie}
courses:
  - {code: AST-101, name: Le Ciel, domain: D_Astro, level: Débutant}
  - {code: AST-201, name: Les Galaxies, domain: D_Astro, level: Intermédiaire, prerequisites: [AST-101]}
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoaderDefaultsToSample(t *testing.T) {
	comp, err := (&Loader{}).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer comp.Close()

	if comp.Config.Store.Backend != BackendMemory {
		t.Errorf("backend = %q", comp.Config.Store.Backend)
	}
	courses, err := comp.Guide.Search(context.Background(), courseguide.Query{CourseCode: "IA-101"})
	if err != nil || len(courses) != 1 {
		t.Fatalf("sample should be seeded: %v %v", courses, err)
	}

	families, err := comp.Registry.Gather()
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == "courseguide_store_queries_total" {
			found = true
		}
	}
	if !found {
		t.Error("store queries should be observed")
	}
}

func TestLoaderWithCatalogAndSQLite(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	cfgPath := writeFile(t, "config.yaml", "store:\n  backend: sqlite\n  sqlite_path: "+filepath.Join(dir, "g.db")+"\n")
	catPath := writeFile(t, "catalog.yaml", miniCatalog)

	comp, err := (&Loader{ConfigPath: cfgPath, CatalogPath: catPath}).Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	path, err := comp.Guide.LearningPath(ctx, "astro")
	if err != nil {
		t.Fatal(err)
	}
	if got := model.Codes(path); len(got) != 2 || got[0] != "AST-101" || got[1] != "AST-201" {
		t.Errorf("path = %v", got)
	}
	comp.Close()

	// Reopening a populated database does not seed again.
	comp, err = (&Loader{ConfigPath: cfgPath, CatalogPath: catPath}).Load(ctx)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	defer comp.Close()
	all, err := comp.Guide.Search(ctx, courseguide.Query{})
	if err != nil || len(all) != 2 {
		t.Errorf("courses after reopen = %v, %v", model.Codes(all), err)
	}
}

func TestLoaderErrors(t *testing.T) {
	ctx := context.Background()

	if _, err := (&Loader{ConfigPath: "/nonexistent/config.yaml"}).Load(ctx); err == nil {
		t.Error("missing config should fail")
	}
	if _, err := (&Loader{CatalogPath: "/nonexistent/catalog.yaml"}).Load(ctx); err == nil {
		t.Error("missing catalog should fail")
	}
	bad := writeFile(t, "bad.yaml", "courses:\n  - {code: X-1, name: X, prerequisites: [Y-9]}\n")
	if _, err := (&Loader{CatalogPath: bad}).Load(ctx); err == nil {
		t.Error("dangling prerequisite should fail")
	}
}

func TestReloadCatalogReplacesStatements(t *testing.T) {
	ctx := context.Background()
	comp, err := (&Loader{}).Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer comp.Close()

	if _, err := comp.Guide.Search(ctx, courseguide.Query{Domain: "Astronomie"}); err != nil {
		t.Fatal(err)
	}
	if err := comp.ReloadCatalog(ctx, writeFile(t, "catalog.yaml", miniCatalog)); err != nil {
		t.Fatalf("ReloadCatalog: %v", err)
	}

	all, err := comp.Guide.Search(ctx, courseguide.Query{})
	if err != nil {
		t.Fatal(err)
	}
	if got := model.Codes(all); len(got) != 2 || got[0] != "AST-101" {
		t.Errorf("courses after reload = %v", got)
	}
	astro, err := comp.Guide.Search(ctx, courseguide.Query{Domain: "Astronomie"})
	if err != nil {
		t.Fatal(err)
	}
	if len(astro) != 2 {
		t.Errorf("cached negative lookup should be invalidated, got %v", model.Codes(astro))
	}
	if stats := comp.Guide.Reasoner().CacheStats(); stats.Size != 1 {
		t.Errorf("cache size = %d, want 1", stats.Size)
	}
}

var errInsert = errors.New("insert rejected")

// rejectInserts fails every update that inserts. When partial is set, the
// operations of a batch are forwarded one at a time until the first insert,
// like a backend without transactions.
type rejectInserts struct {
	store.Store
	partial bool
}

func (r rejectInserts) Update(ctx context.Context, u sparql.Update) error {
	batch, ok := u.(sparql.Batch)
	if !ok {
		batch = sparql.Batch{u}
	}
	for _, op := range batch {
		if _, ok := op.(sparql.InsertData); ok {
			return errInsert
		}
		if r.partial {
			if err := r.Store.Update(ctx, op); err != nil {
				return err
			}
		}
	}
	if r.partial {
		return nil
	}
	return r.Store.Update(ctx, u)
}

// sampleComponents seeds the sample into memory and builds the guide on the
// store returned by wrap.
func sampleComponents(t *testing.T, wrap func(store.Store) store.Store) *Components {
	t.Helper()
	inner := memstore.New()
	if err := catalog.Seed(context.Background(), inner, catalog.Sample()); err != nil {
		t.Fatal(err)
	}
	st := wrap(inner)
	return &Components{
		Config: Default(),
		Store:  st,
		Guide:  courseguide.New(courseguide.Options{Store: st}),
		logger: slog.Default(),
		seeded: catalog.Sample(),
	}
}

func countCourses(t *testing.T, comp *Components, q courseguide.Query) int {
	t.Helper()
	courses, err := comp.Guide.Search(context.Background(), q)
	if err != nil {
		t.Fatal(err)
	}
	return len(courses)
}

func TestReloadCatalogFailureKeepsGraph(t *testing.T) {
	ctx := context.Background()
	comp := sampleComponents(t, func(st store.Store) store.Store { return rejectInserts{Store: st} })
	ml := courseguide.Query{Domain: "Machine Learning"}
	if n := countCourses(t, comp, ml); n != 4 {
		t.Fatalf("ML courses = %d, want 4", n)
	}

	err := comp.ReloadCatalog(ctx, writeFile(t, "catalog.yaml", miniCatalog))
	if !errors.Is(err, errInsert) {
		t.Fatalf("want insert error, got %v", err)
	}
	if n := countCourses(t, comp, courseguide.Query{}); n != 8 {
		t.Errorf("courses after failed reload = %d, want 8", n)
	}
	if n := countCourses(t, comp, ml); n != 4 {
		t.Errorf("ML courses after failed reload = %d, want 4", n)
	}
	if comp.seeded == nil || len(comp.seeded.Courses) != 8 {
		t.Error("seeded catalogue should stay the previous one")
	}
}

func TestReloadCatalogPartialFailureClearsCache(t *testing.T) {
	ctx := context.Background()
	comp := sampleComponents(t, func(st store.Store) store.Store { return rejectInserts{Store: st, partial: true} })
	ml := courseguide.Query{Domain: "Machine Learning"}
	if n := countCourses(t, comp, ml); n != 4 {
		t.Fatalf("ML courses = %d, want 4", n)
	}

	if err := comp.ReloadCatalog(ctx, writeFile(t, "catalog.yaml", miniCatalog)); !errors.Is(err, errInsert) {
		t.Fatalf("want insert error, got %v", err)
	}
	if n := countCourses(t, comp, courseguide.Query{}); n != 0 {
		t.Fatalf("courses after partial reload = %d, want 0", n)
	}
	if n := countCourses(t, comp, ml); n != 0 {
		t.Errorf("cached domain lookup should be dropped, got %d courses", n)
	}
}

func TestReloadCatalogUsesOneUpdate(t *testing.T) {
	ctx := context.Background()
	rec := &recordUpdates{}
	comp := sampleComponents(t, func(st store.Store) store.Store {
		rec.Store = st
		return rec
	})

	if err := comp.ReloadCatalog(ctx, writeFile(t, "catalog.yaml", miniCatalog)); err != nil {
		t.Fatalf("ReloadCatalog: %v", err)
	}
	if len(rec.updates) != 1 {
		t.Fatalf("updates = %d, want 1", len(rec.updates))
	}
	batch, ok := rec.updates[0].(sparql.Batch)
	if !ok || len(batch) != 2 {
		t.Fatalf("want a delete+insert batch, got %T", rec.updates[0])
	}
}

type recordUpdates struct {
	store.Store
	updates []sparql.Update
}

func (r *recordUpdates) Update(ctx context.Context, u sparql.Update) error {
	r.updates = append(r.updates, u)
	return r.Store.Update(ctx, u)
}
