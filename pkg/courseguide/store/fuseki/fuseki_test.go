package fuseki

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/internalerr"
	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/sparql"
	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/vocab"
)

const resultsJSON = `{
  "head": {"vars": ["code", "credits"]},
  "results": {"bindings": [
    {"code": {"type": "literal", "value": "IA-101"},
     "credits": {"type": "literal", "datatype": "http://www.w3.org/2001/XMLSchema#integer", "value": "4"}}
  ]}
}`

func TestQuerySendsFormAndDecodes(t *testing.T) {
	var gotPath, gotQuery, gotAccept, gotUser string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAccept = r.Header.Get("Accept")
		gotUser, _, _ = r.BasicAuth()
		body, _ := io.ReadAll(r.Body)
		form, _ := url.ParseQuery(string(body))
		gotQuery = form.Get("query")
		w.Header().Set("Content-Type", acceptResults)
		io.WriteString(w, resultsJSON)
	}))
	defer srv.Close()

	c, err := New(Config{URL: srv.URL, Dataset: "courses", Username: "admin", Password: "pw"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	q := &sparql.Select{
		Name:  "test",
		Vars:  []sparql.Var{"code", "credits"},
		Where: sparql.Group{sparql.T(sparql.Var("c"), vocab.CourseCode, sparql.Var("code"))},
	}
	rows, err := c.Query(context.Background(), q)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}

	if gotPath != "/courses/query" {
		t.Errorf("unexpected path %q", gotPath)
	}
	if gotAccept != acceptResults {
		t.Errorf("unexpected Accept %q", gotAccept)
	}
	if gotUser != "admin" {
		t.Errorf("expected basic auth user admin, got %q", gotUser)
	}
	if !strings.Contains(gotQuery, "SELECT") || !strings.Contains(gotQuery, "codeCours") {
		t.Errorf("unexpected query text %q", gotQuery)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if n, _ := rows[0].Int("credits"); n != 4 {
		t.Errorf("expected credits 4, got %d", n)
	}
}

func TestUpdatePostsToUpdateEndpoint(t *testing.T) {
	var gotPath, gotUpdate string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		r.ParseForm()
		gotUpdate = r.PostForm.Get("update")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c, err := New(Config{URL: srv.URL + "/", Dataset: "courses"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	tr := sparql.Triple{S: vocab.Entity("IA-201"), P: vocab.HasPrerequisite, O: vocab.Entity("IA-101")}
	if err := c.Update(context.Background(), sparql.InsertData{Triples: []sparql.Triple{tr}}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if gotPath != "/courses/update" {
		t.Errorf("unexpected path %q", gotPath)
	}
	if !strings.HasPrefix(gotUpdate, "INSERT DATA") {
		t.Errorf("unexpected update text %q", gotUpdate)
	}
}

func TestServerErrorIsStoreUnavailable(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, _ := New(Config{URL: srv.URL, Dataset: "courses"})
	_, err := c.Query(context.Background(), &sparql.Select{Vars: []sparql.Var{"x"}})
	if !errors.Is(err, internalerr.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	var herr *HTTPError
	if !errors.As(err, &herr) || herr.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected wrapped HTTPError with status 500, got %v", err)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("expected a single attempt, got %d", n)
	}
}

func TestUnreachableServer(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	c, _ := New(Config{URL: addr, Dataset: "courses"})
	_, err := c.Query(context.Background(), &sparql.Select{Vars: []sparql.Var{"x"}})
	if !errors.Is(err, internalerr.ErrStoreUnavailable) {
		t.Errorf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestNewRequiresURLAndDataset(t *testing.T) {
	if _, err := New(Config{Dataset: "x"}); !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}
