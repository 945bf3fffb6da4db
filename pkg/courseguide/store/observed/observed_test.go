package observed

import (
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/metrics"
	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/sparql"
	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/store/memstore"
)

func TestQueriesAreCounted(t *testing.T) {
	reg := prometheus.NewRegistry()
	st := Wrap(memstore.New(), metrics.New(reg))
	defer st.Close()

	ctx := context.Background()
	q := &sparql.Select{Name: "probe", Vars: []sparql.Var{"s"}, Where: sparql.Group{
		sparql.T(sparql.Var("s"), sparql.IRI("http://example.org/p"), sparql.Var("o")),
	}}
	if _, err := st.Query(ctx, q); err != nil {
		t.Fatalf("Query: %v", err)
	}
	if err := st.Update(ctx, sparql.InsertData{}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	expected := `
# HELP courseguide_store_queries_total Graph store requests by query shape and outcome
# TYPE courseguide_store_queries_total counter
courseguide_store_queries_total{outcome="ok",query="probe"} 1
courseguide_store_queries_total{outcome="ok",query="update"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "courseguide_store_queries_total"); err != nil {
		t.Error(err)
	}
}
