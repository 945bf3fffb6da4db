// Package catalog turns a YAML course catalogue into ontology triples and
// seeds a store with them. It is used for fixtures and local development;
// production graphs are populated by external tooling.
package catalog

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"golang.org/x/net/html"
	"gopkg.in/yaml.v3"

	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/internalerr"
	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/sparql"
	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/store"
	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/vocab"
)

// Catalog is the seed file layout.
type Catalog struct {
	Domains  []Entity  `yaml:"domains"`
	Skills   []Entity  `yaml:"skills"`
	Courses  []Course  `yaml:"courses"`
	Students []Student `yaml:"students"`
}

// Entity is a labelled node (domain or skill).
type Entity struct {
	ID    string `yaml:"id"`
	Label string `yaml:"label"`
}

// Course is one course entry. Domain, Skills and Prerequisites reference
// other entries by ID; a course ID defaults to its code.
type Course struct {
	ID            string   `yaml:"id"`
	Code          string   `yaml:"code"`
	Name          string   `yaml:"name"`
	Credits       int      `yaml:"credits"`
	Duration      int      `yaml:"duration"`
	Difficulty    int      `yaml:"difficulty"`
	Description   string   `yaml:"description"`
	Domain        string   `yaml:"domain"`
	Level         string   `yaml:"level"`
	Skills        []string `yaml:"skills"`
	Prerequisites []string `yaml:"prerequisites"`
}

// Student is one student entry.
type Student struct {
	ID        string   `yaml:"id"`
	Name      string   `yaml:"name"`
	Interests []string `yaml:"interests"`
	Skills    []string `yaml:"skills"`
	Completed []string `yaml:"completed"`
}

//go:embed sample.yaml
var sampleYAML []byte

// Sample returns the built-in demo catalogue.
func Sample() *Catalog {
	c, err := Parse(sampleYAML)
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded sample: %v", err))
	}
	return c
}

// Load reads a catalogue from a YAML file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes and checks a catalogue.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	if err := c.check(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) check() error {
	ids := make(map[string]bool)
	for _, d := range c.Domains {
		ids[d.ID] = true
	}
	for _, s := range c.Skills {
		ids[s.ID] = true
	}
	courses := make(map[string]bool)
	for _, co := range c.Courses {
		if co.Code == "" || co.Name == "" {
			return fmt.Errorf("catalog: course %q needs code and name: %w", co.ID, internalerr.ErrInvalidInput)
		}
		courses[co.id()] = true
	}
	for _, co := range c.Courses {
		if co.Domain != "" && !ids[co.Domain] {
			return fmt.Errorf("catalog: course %s: unknown domain %q: %w", co.Code, co.Domain, internalerr.ErrInvalidInput)
		}
		for _, p := range co.Prerequisites {
			if !courses[p] {
				return fmt.Errorf("catalog: course %s: unknown prerequisite %q: %w", co.Code, p, internalerr.ErrInvalidInput)
			}
		}
	}
	return nil
}

func (co Course) id() string {
	if co.ID != "" {
		return co.ID
	}
	return co.Code
}

// Triples renders the catalogue as ontology statements.
func (c *Catalog) Triples() []sparql.Triple {
	var out []sparql.Triple
	add := func(s, p, o sparql.Term) {
		out = append(out, sparql.Triple{S: s, P: p, O: o})
	}

	for _, d := range c.Domains {
		n := vocab.Entity(d.ID)
		add(n, vocab.Type, vocab.Domain)
		add(n, vocab.Label, sparql.Literal(d.Label))
	}
	for _, s := range c.Skills {
		n := vocab.Entity(s.ID)
		add(n, vocab.Type, vocab.Skill)
		add(n, vocab.Label, sparql.Literal(s.Label))
	}

	levels := make(map[string]bool)
	for _, co := range c.Courses {
		if co.Level == "" || levels[co.Level] {
			continue
		}
		levels[co.Level] = true
		n := levelNode(co.Level)
		add(n, vocab.Type, vocab.Level)
		add(n, vocab.Label, sparql.Literal(co.Level))
	}

	for _, co := range c.Courses {
		n := vocab.Entity(co.id())
		add(n, vocab.Type, vocab.Course)
		add(n, vocab.CourseCode, sparql.Literal(co.Code))
		add(n, vocab.CourseName, sparql.Literal(co.Name))
		if co.Credits > 0 {
			add(n, vocab.Credits, sparql.Integer(co.Credits))
		}
		if co.Duration > 0 {
			add(n, vocab.Duration, sparql.Integer(co.Duration))
		}
		if co.Difficulty > 0 {
			add(n, vocab.Difficulty, sparql.Integer(co.Difficulty))
		}
		if desc := StripHTML(co.Description); desc != "" {
			add(n, vocab.Description, sparql.Literal(desc))
		}
		if co.Domain != "" {
			add(n, vocab.InDomain, vocab.Entity(co.Domain))
		}
		if co.Level != "" {
			add(n, vocab.HasLevel, levelNode(co.Level))
		}
		for _, s := range co.Skills {
			add(n, vocab.TeachesSkill, vocab.Entity(s))
		}
		for _, p := range co.Prerequisites {
			add(n, vocab.HasPrerequisite, vocab.Entity(p))
		}
	}

	for _, st := range c.Students {
		n := vocab.Entity(st.ID)
		add(n, vocab.Type, vocab.Student)
		if st.Name != "" {
			add(n, vocab.StudentName, sparql.Literal(st.Name))
		}
		for _, d := range st.Interests {
			add(n, vocab.InterestedIn, vocab.Entity(d))
		}
		for _, s := range st.Skills {
			add(n, vocab.HasSkill, vocab.Entity(s))
		}
		for _, co := range st.Completed {
			add(n, vocab.Completed, vocab.Entity(co))
		}
	}
	return out
}

func levelNode(label string) sparql.Term {
	return vocab.Entity(vocab.LevelLocalName(vocab.LevelName(label)))
}

// Seed inserts the catalogue into st in one update.
func Seed(ctx context.Context, st store.Store, c *Catalog) error {
	if err := st.Update(ctx, sparql.InsertData{Triples: c.Triples()}); err != nil {
		return fmt.Errorf("catalog: seed: %w", err)
	}
	return nil
}

// StripHTML returns the text content of s with markup removed and runs of
// whitespace collapsed.
func StripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.Join(strings.Fields(s), " ")
	}
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}

	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
			buf.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return strings.Join(strings.Fields(buf.String()), " ")
}
