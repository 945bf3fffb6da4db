package reasoner

import (
	"context"
	"sort"
	"strings"

	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/model"
)

// AllPrerequisitesRecursive expands the prerequisite graph depth-first from
// courseCode. Every direct edge of an expanded course contributes a row, so a
// prerequisite shared by two courses appears twice, but each course is
// expanded at most once per call. That visited set makes the walk terminate
// on cyclic data; it also means rows below an already-expanded course are not
// repeated for the second path that reaches it.
func (r *Reasoner) AllPrerequisitesRecursive(ctx context.Context, courseCode string) ([]model.PrerequisiteRow, error) {
	code, err := requireArg("course code", courseCode)
	if err != nil {
		return nil, err
	}

	var out []model.PrerequisiteRow
	visited := make(map[string]bool)

	// expand emits the direct rows of code and returns the codes to descend
	// into, or false if code was already expanded.
	expand := func(code string) ([]string, bool, error) {
		if visited[code] {
			return nil, false, nil
		}
		visited[code] = true
		direct, err := r.direct(ctx, code)
		if err != nil {
			return nil, false, err
		}
		out = append(out, direct...)
		next := make([]string, len(direct))
		for i, p := range direct {
			next[i] = p.Code
		}
		return next, true, nil
	}

	first, _, err := expand(code)
	if err != nil {
		return nil, err
	}
	// Each stack entry holds the siblings still to expand at one depth.
	stack := [][]string{first}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		top := len(stack) - 1
		if len(stack[top]) == 0 {
			stack = stack[:top]
			continue
		}
		next := stack[top][0]
		stack[top] = stack[top][1:]

		children, ok, err := expand(next)
		if err != nil {
			return nil, err
		}
		if ok && len(children) > 0 {
			stack = append(stack, children)
		}
	}
	if out == nil {
		out = []model.PrerequisiteRow{}
	}
	return out, nil
}

// ComputeLearningPath orders targetCourse and its transitive prerequisites so
// every course comes after its prerequisites. An unknown course yields an
// empty path.
func (r *Reasoner) ComputeLearningPath(ctx context.Context, targetCourse string) ([]model.Course, error) {
	code, err := requireArg("course code", targetCourse)
	if err != nil {
		return nil, err
	}
	return r.PathFor(ctx, []string{code})
}

// PathFor orders the given courses together with all their transitive
// prerequisites. Nodes are seeded in the order given, then prerequisites
// in code order; ties in the topological order follow that seeding.
func (r *Reasoner) PathFor(ctx context.Context, codes []string) ([]model.Course, error) {
	var nodes []string
	inSet := make(map[string]bool)
	addNode := func(c string) {
		if c != "" && !inSet[c] {
			inSet[c] = true
			nodes = append(nodes, c)
		}
	}
	for _, c := range codes {
		addNode(strings.TrimSpace(c))
	}
	seeds := append([]string(nil), nodes...)
	var prereqs []string
	for _, c := range seeds {
		trans, err := r.inference.TransitivePrerequisites(ctx, c)
		if err != nil {
			return nil, err
		}
		prereqs = append(prereqs, trans...)
	}
	sort.Strings(prereqs)
	for _, c := range prereqs {
		addNode(c)
	}

	requires := make(map[string][]string, len(nodes))
	for _, c := range nodes {
		direct, err := r.direct(ctx, c)
		if err != nil {
			return nil, err
		}
		for _, p := range direct {
			requires[c] = append(requires[c], p.Code)
		}
	}

	ordered := r.topoOrder(nodes, requires)

	path := make([]model.Course, 0, len(ordered))
	for _, c := range ordered {
		course, ok, err := r.CourseByCode(ctx, c)
		if err != nil {
			return nil, err
		}
		if ok {
			path = append(path, course)
		}
	}
	return path, nil
}

// topoOrder is Kahn's algorithm with a FIFO ready queue. A node's in-degree
// is the number of its prerequisites inside nodes; edges leaving the set are
// ignored. Nodes on a cycle never become ready and are dropped.
func (r *Reasoner) topoOrder(nodes []string, requires map[string][]string) []string {
	inSet := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		inSet[n] = true
	}

	inDegree := make(map[string]int, len(nodes))
	dependents := make(map[string][]string, len(nodes))
	for _, n := range nodes {
		seen := make(map[string]bool)
		for _, p := range requires[n] {
			if !inSet[p] || seen[p] {
				continue
			}
			seen[p] = true
			inDegree[n]++
			dependents[p] = append(dependents[p], n)
		}
	}

	queue := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if inDegree[n] == 0 {
			queue = append(queue, n)
		}
	}

	order := make([]string, 0, len(nodes))
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		order = append(order, n)
		for _, d := range dependents[n] {
			inDegree[d]--
			if inDegree[d] == 0 {
				queue = append(queue, d)
			}
		}
	}

	if len(order) < len(nodes) {
		var stuck []string
		for _, n := range nodes {
			if inDegree[n] > 0 {
				stuck = append(stuck, n)
			}
		}
		r.logger.Warn("reasoner: prerequisite cycle, courses left out of path", "courses", stuck)
	}
	return order
}
