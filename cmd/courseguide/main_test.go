package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide"
	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/model"
	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/recommend"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd(&out)
	root.SetArgs(args)
	root.SetErr(&bytes.Buffer{})
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSearchCommand(t *testing.T) {
	out, err := execute(t, "search", "--domain", "web")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if !strings.Contains(out, "WEB-101: Fondamentaux du Web") || !strings.Contains(out, "WEB-201") {
		t.Errorf("output = %q", out)
	}
}

func TestJSONOutput(t *testing.T) {
	out, err := execute(t, "--json", "path", "IA-301")
	if err != nil {
		t.Fatalf("path: %v", err)
	}
	var path []model.Course
	if err := json.Unmarshal([]byte(out), &path); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if got := strings.Join(model.Codes(path), ","); got != "IA-101,IA-201,IA-301" {
		t.Errorf("path = %s", got)
	}

	out, err = execute(t, "--json", "plan", "STU-001", "IA-401")
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	var plan recommend.Plan
	if err := json.Unmarshal([]byte(out), &plan); err != nil {
		t.Fatal(err)
	}
	if plan.TotalCredits != 12 || len(plan.NextCourses) != 1 {
		t.Errorf("plan = %+v", plan)
	}
}

func TestStudentCommands(t *testing.T) {
	out, err := execute(t, "eligibility", "STU-001", "IA-401")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "not eligible") || !strings.Contains(out, "IA-301") {
		t.Errorf("eligibility output = %q", out)
	}

	out, err = execute(t, "recommend", "STU-001", "-n", "1")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "IA-301") || !strings.Contains(out, "Matches your interest: Machine Learning") {
		t.Errorf("recommend output = %q", out)
	}

	for _, args := range [][]string{
		{"level", "STU-001"},
		{"competencies", "STU-001"},
		{"stats", "IA-401"},
		{"similar", "IA-201"},
		{"skills", "python"},
		{"info", "IA-101"},
		{"prereqs", "DATA-201"},
		{"path", "--domain", "web"},
	} {
		if _, err := execute(t, args...); err != nil {
			t.Errorf("%v: %v", args, err)
		}
	}
}

func TestCommandErrors(t *testing.T) {
	if _, err := execute(t, "prereqs", "NOPE-1"); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("unknown course should fail with not found, got %v", err)
	}
	if _, err := execute(t, "plan", "STU-001"); err == nil {
		t.Error("plan needs two arguments")
	}
	if _, err := execute(t, "--config", "/nonexistent/config.yaml", "search"); err == nil {
		t.Error("missing config should fail")
	}
	if _, err := execute(t, "seed"); err == nil {
		t.Error("seed without a catalogue should fail")
	}
}

func TestSeedIntoSQLite(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	cfg := "store:\n  backend: sqlite\n  sqlite_path: " + filepath.Join(dir, "guide.db") + "\n"
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "--config", cfgPath, "search")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "No course found.") {
		t.Errorf("fresh database should be empty, got %q", out)
	}

	if _, err := execute(t, "--config", cfgPath, "seed", "--sample"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	out, err = execute(t, "--config", cfgPath, "search", "--code", "IA-401")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Vision par Ordinateur") {
		t.Errorf("seeded course missing: %q", out)
	}
}

func TestWatchCatalogReloads(t *testing.T) {
	dir := t.TempDir()
	catPath := filepath.Join(dir, "catalog.yaml")
	write := func(code string) {
		t.Helper()
		data := "courses:\n  - {code: " + code + ", name: Course " + code + "}\n"
		if err := os.WriteFile(catPath, []byte(data), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("OLD-1")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	a := &app{out: &bytes.Buffer{}, catalogPath: catPath}
	comp, err := a.components(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer comp.Close()
	stop, err := watchCatalog(ctx, comp, a.logger)
	if err != nil {
		t.Fatal(err)
	}
	defer stop()

	write("NEW-1")
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		all, err := comp.Guide.Search(ctx, courseguide.Query{})
		if err == nil && len(all) == 1 && all[0].Code == "NEW-1" {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("catalogue change was not picked up")
}

func TestServeShutsDownOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	a := &app{out: &bytes.Buffer{}}
	comp, err := a.components(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer comp.Close()

	h := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
	errc := make(chan error, 1)
	go func() { errc <- serve(ctx, "127.0.0.1:0", h, a.logger) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errc:
		if err != nil {
			t.Errorf("serve: %v", err)
		}
	case <-time.After(shutdownTimeout + time.Second):
		t.Fatal("serve did not stop")
	}
}
