package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/internalerr"
	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/sparql"
	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/store/memstore"
	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/vocab"
)

func TestSampleParses(t *testing.T) {
	c := Sample()
	if len(c.Courses) != 8 {
		t.Fatalf("expected 8 sample courses, got %d", len(c.Courses))
	}
	if len(c.Students) != 3 {
		t.Fatalf("expected 3 sample students, got %d", len(c.Students))
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	data := []byte(`
domains:
  - id: D1
    label: Domain One
courses:
  - code: C-1
    name: First
    domain: D1
  - code: C-2
    name: Second
    prerequisites: [C-1]
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(c.Courses) != 2 || c.Courses[1].Prerequisites[0] != "C-1" {
		t.Errorf("unexpected catalogue: %+v", c.Courses)
	}
}

func TestParseRejectsDanglingReferences(t *testing.T) {
	cases := map[string]string{
		"missing name":   "courses:\n  - code: C-1\n",
		"unknown domain": "courses:\n  - code: C-1\n    name: A\n    domain: Nope\n",
		"unknown prereq": "courses:\n  - code: C-1\n    name: A\n    prerequisites: [C-9]\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			if !errors.Is(err, internalerr.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestTriplesCoverCourseAttributes(t *testing.T) {
	c := &Catalog{
		Domains: []Entity{{ID: "D1", Label: "Domain One"}},
		Courses: []Course{{
			Code: "C-1", Name: "First", Credits: 5, Domain: "D1", Level: "Débutant",
			Description: "<p>Hello <b>world</b></p>",
		}},
	}
	want := []sparql.Triple{
		{S: vocab.Entity("C-1"), P: vocab.Credits, O: sparql.Integer(5)},
		{S: vocab.Entity("C-1"), P: vocab.Description, O: sparql.Literal("Hello world")},
		{S: vocab.Entity("C-1"), P: vocab.InDomain, O: vocab.Entity("D1")},
		{S: vocab.Entity("C-1"), P: vocab.HasLevel, O: vocab.Entity("Debutant")},
		{S: vocab.Entity("Debutant"), P: vocab.Label, O: sparql.Literal("Débutant")},
	}
	got := c.Triples()
	for _, w := range want {
		found := false
		for _, g := range got {
			if g == w {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("missing triple %s", w)
		}
	}
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain   text", "plain text"},
		{"<p>Les <b>bases</b></p>", "Les bases"},
		{"a &amp; b", "a & b"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := StripHTML(tt.in); got != tt.want {
			t.Errorf("StripHTML(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSeed(t *testing.T) {
	st := memstore.New()
	if err := Seed(context.Background(), st, Sample()); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if st.Len() != len(Sample().Triples()) {
		t.Errorf("expected %d triples, got %d", len(Sample().Triples()), st.Len())
	}
}
