package filters_test

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"testing"

	"github.com/projectdesk/filters"
	"github.com/projectdesk/models"
	"github.com/projectdesk/repositories"
	"github.com/projectdesk/testutil"
	"github.com/projectdesk/validators"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeResolver map[string]models.Attribute

func (f fakeResolver) FindByName(_ context.Context, name string) (*models.Attribute, error) {
	attribute, ok := f[name]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &attribute, nil
}

var testAttributes = fakeResolver{
	"department": {ID: 1, Name: "department", Type: models.AttributeTypeText},
	"budget":     {ID: 2, Name: "budget", Type: models.AttributeTypeNumber},
}

func compile(t *testing.T, raw map[string]map[string]string) *filters.Predicate {
	t.Helper()
	f, err := filters.FromMap(raw)
	require.NoError(t, err)
	p, err := filters.Compile(context.Background(), f, testAttributes)
	require.NoError(t, err)
	return p
}

func TestCompileNativeColumns(t *testing.T) {
	p := compile(t, map[string]map[string]string{
		"name":   {"LIKE": "Pro_ject 100%"},
		"status": {"!=": "completed"},
	})

	sql, args := p.SQL()
	assert.Equal(t, `(LOWER(projects.name) LIKE ? ESCAPE '\') AND (projects.status <> ?)`, sql)
	assert.Equal(t, []interface{}{`%pro\_ject 100\%%`, "completed"}, args)
}

func TestCompileTextAttribute(t *testing.T) {
	p := compile(t, map[string]map[string]string{"department": {"=": "Engineering"}})

	clauses := p.Clauses()
	require.Len(t, clauses, 1)
	assert.Equal(t,
		"EXISTS (SELECT 1 FROM attribute_values av JOIN attributes a ON a.id = av.attribute_id "+
			"WHERE av.project_id = projects.id AND a.name = ? AND av.value = ?)",
		clauses[0].SQL)
	assert.Equal(t, []interface{}{"department", "Engineering"}, clauses[0].Args)
}

func TestCompileNumberAttribute(t *testing.T) {
	p := compile(t, map[string]map[string]string{"budget": {">=": "1000"}})

	clauses := p.Clauses()
	require.Len(t, clauses, 1)
	assert.Contains(t, clauses[0].SQL, "(CASE WHEN a.type = ? THEN CAST(av.value AS NUMERIC) END) >= ?")
	assert.Equal(t, []interface{}{"budget", "number", float64(1000)}, clauses[0].Args)
}

func TestCompileNumberAttributeWithNonNumericLiteralMatchesNothing(t *testing.T) {
	p := compile(t, map[string]map[string]string{"budget": {">": "lots"}})

	sql, args := p.SQL()
	assert.Equal(t, "(1 = 0)", sql)
	assert.Empty(t, args)
}

func TestCompileNumberAttributeLikeComparesText(t *testing.T) {
	p := compile(t, map[string]map[string]string{"budget": {"LIKE": "15"}})

	clauses := p.Clauses()
	require.Len(t, clauses, 1)
	assert.Contains(t, clauses[0].SQL, "LOWER(av.value) LIKE ?")
	assert.Equal(t, []interface{}{"budget", "%15%"}, clauses[0].Args)
}

func TestCompileUnknownFieldStillEmitsExists(t *testing.T) {
	p := compile(t, map[string]map[string]string{"color": {"=": "red"}})

	clauses := p.Clauses()
	require.Len(t, clauses, 1)
	assert.Contains(t, clauses[0].SQL, "EXISTS")
	assert.Equal(t, []interface{}{"color", "red"}, clauses[0].Args)
}

func TestCompileIsDeterministic(t *testing.T) {
	raw := map[string]map[string]string{
		"status":     {"=": "active"},
		"department": {"LIKE": "a", "!=": "b"},
		"budget":     {"<": "5", ">": "1"},
		"name":       {"=": "x"},
	}
	first, firstArgs := compile(t, raw).SQL()
	for i := 0; i < 20; i++ {
		sql, args := compile(t, raw).SQL()
		assert.Equal(t, first, sql)
		assert.Equal(t, firstArgs, args)
	}
}

func TestCompileEmptyFilter(t *testing.T) {
	p, err := filters.Compile(context.Background(), filters.Filter{}, testAttributes)
	require.NoError(t, err)

	sql, args := p.SQL()
	assert.Empty(t, sql)
	assert.Empty(t, args)
}

type failingResolver struct{}

func (failingResolver) FindByName(context.Context, string) (*models.Attribute, error) {
	return nil, errors.New("connection reset")
}

func TestCompilePropagatesResolverFailures(t *testing.T) {
	f, err := filters.FromMap(map[string]map[string]string{"department": {"=": "x"}})
	require.NoError(t, err)

	_, err = filters.Compile(context.Background(), f, failingResolver{})
	assert.ErrorContains(t, err, "connection reset")

	// native columns never hit the resolver
	f, err = filters.FromMap(map[string]map[string]string{"name": {"=": "x"}})
	require.NoError(t, err)
	_, err = filters.Compile(context.Background(), f, failingResolver{})
	assert.NoError(t, err)
}

type filterFixture struct {
	db         *gorm.DB
	projects   *repositories.ProjectRepository
	attributes *repositories.AttributeRepository
	ids        map[string]uint
}

func newFilterFixture(t *testing.T) filterFixture {
	db := testutil.NewDB(t)
	department := testutil.CreateAttribute(t, db, "department", models.AttributeTypeText)
	startDate := testutil.CreateAttribute(t, db, "start_date", models.AttributeTypeDate)
	budget := testutil.CreateAttribute(t, db, "budget", models.AttributeTypeNumber)

	ids := map[string]uint{}
	ids["Project A"] = testutil.CreateProject(t, db, "Project A", models.ProjectStatusActive, map[uint]string{
		department.ID: "Engineering",
		startDate.ID:  "2025-01-01",
		budget.ID:     "1500",
	}).ID
	ids["Project B"] = testutil.CreateProject(t, db, "Project B", models.ProjectStatusInactive, map[uint]string{
		department.ID: "Marketing",
		startDate.ID:  "2025-03-01",
		budget.ID:     "900",
	}).ID
	ids["Project C"] = testutil.CreateProject(t, db, "Project C", models.ProjectStatusCompleted, nil).ID
	ids["Platform 100%"] = testutil.CreateProject(t, db, "Platform 100%", models.ProjectStatusActive, map[uint]string{
		department.ID: "engineering ops",
	}).ID

	return filterFixture{
		db:         db,
		projects:   repositories.NewProjectRepository(db),
		attributes: repositories.NewAttributeRepository(db),
		ids:        ids,
	}
}

func (f filterFixture) query(t *testing.T, raw map[string]map[string]string) ([]string, filters.Filter) {
	t.Helper()
	ctx := context.Background()

	filter, err := filters.FromMap(raw)
	require.NoError(t, err)
	predicate, err := filters.Compile(ctx, filter, f.attributes)
	require.NoError(t, err)

	found, err := f.projects.FindAll(ctx, predicate)
	require.NoError(t, err)

	names := make([]string, 0, len(found))
	for _, p := range found {
		names = append(names, p.Name)
	}
	sort.Strings(names)
	return names, filter
}

func TestFilterAgainstDatabase(t *testing.T) {
	fx := newFilterFixture(t)

	tests := []struct {
		name string
		raw  map[string]map[string]string
		want []string
	}{
		{"attribute equality", map[string]map[string]string{"department": {"=": "Engineering"}}, []string{"Project A"}},
		{"attribute like is case-insensitive", map[string]map[string]string{"department": {"LIKE": "Engin"}}, []string{"Platform 100%", "Project A"}},
		{"inequality skips projects without the attribute", map[string]map[string]string{"department": {"!=": "Engineering"}}, []string{"Platform 100%", "Project B"}},
		{"number compares numerically", map[string]map[string]string{"budget": {"<": "1000"}}, []string{"Project B"}},
		{"number range", map[string]map[string]string{"budget": {">": "100", "<=": "1500"}}, []string{"Project A", "Project B"}},
		{"number with text literal", map[string]map[string]string{"budget": {">": "abc"}}, nil},
		{"date as text", map[string]map[string]string{"start_date": {">=": "2025-02-01"}}, []string{"Project B"}},
		{"unknown attribute", map[string]map[string]string{"color": {"=": "red"}}, nil},
		{"native and attribute", map[string]map[string]string{"status": {"=": "active"}, "department": {"LIKE": "ops"}}, []string{"Platform 100%"}},
		{"like escapes wildcards", map[string]map[string]string{"name": {"LIKE": "100%"}}, []string{"Platform 100%"}},
		{"percent alone is literal", map[string]map[string]string{"name": {"LIKE": "%"}}, []string{"Platform 100%"}},
		{"native comparison", map[string]map[string]string{"name": {">=": "Project B"}}, []string{"Project B", "Project C"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := fx.query(t, tt.raw)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

// Every database result must agree with a plain in-memory evaluation of the same filter.
func TestFilterMatchesInMemoryEvaluation(t *testing.T) {
	fx := newFilterFixture(t)
	all, err := fx.projects.FindAll(context.Background(), nil)
	require.NoError(t, err)

	queries := []map[string]map[string]string{
		{"department": {"=": "Engineering"}},
		{"department": {"=": "Marketing"}},
		{"department": {"=": "engineering ops"}},
		{"department": {"LIKE": "ENG"}},
		{"budget": {"=": "900"}},
		{"budget": {">=": "900", "!=": "1500"}},
		{"start_date": {"<": "2025-06-01"}},
		{"status": {"!=": "active"}},
		{"name": {"LIKE": "project"}},
		{"color": {"LIKE": ""}},
	}

	for _, raw := range queries {
		got, filter := fx.query(t, raw)

		var want []string
		for _, project := range all {
			if matchProject(filter, project) {
				want = append(want, project.Name)
			}
		}
		sort.Strings(want)

		if len(want) == 0 {
			assert.Empty(t, got, "%v", raw)
			continue
		}
		assert.Equal(t, want, got, "%v", raw)
	}
}

// matchProject evaluates filter against a project loaded with its attribute
// values and their attributes.
func matchProject(filter filters.Filter, project models.Project) bool {
	for _, field := range filter.Fields {
		for _, cond := range field.Conditions {
			if !matchField(field.Name, cond, project) {
				return false
			}
		}
	}
	return true
}

func matchField(name string, cond filters.Condition, project models.Project) bool {
	switch name {
	case "name":
		return compareText(project.Name, cond)
	case "status":
		return compareText(string(project.Status), cond)
	}

	for _, av := range project.AttributeValues {
		if av.Attribute == nil || av.Attribute.Name != name {
			continue
		}
		if av.Attribute.Type == models.AttributeTypeNumber && cond.Operator != filters.OpLike {
			if !validators.IsNumeric(cond.Literal) {
				return false
			}
			literal, _ := strconv.ParseFloat(strings.TrimSpace(cond.Literal), 64)
			stored, err := strconv.ParseFloat(strings.TrimSpace(av.Value), 64)
			if err == nil && compareNumber(stored, cond.Operator, literal) {
				return true
			}
			continue
		}
		if compareText(av.Value, cond) {
			return true
		}
	}
	return false
}

func compareText(value string, cond filters.Condition) bool {
	switch cond.Operator {
	case filters.OpEqual:
		return value == cond.Literal
	case filters.OpNotEqual:
		return value != cond.Literal
	case filters.OpLess:
		return value < cond.Literal
	case filters.OpLessEqual:
		return value <= cond.Literal
	case filters.OpGreater:
		return value > cond.Literal
	case filters.OpGreaterEqual:
		return value >= cond.Literal
	case filters.OpLike:
		return strings.Contains(strings.ToLower(value), strings.ToLower(cond.Literal))
	}
	return false
}

func compareNumber(value float64, op filters.Operator, literal float64) bool {
	switch op {
	case filters.OpEqual:
		return value == literal
	case filters.OpNotEqual:
		return value != literal
	case filters.OpLess:
		return value < literal
	case filters.OpLessEqual:
		return value <= literal
	case filters.OpGreater:
		return value > literal
	case filters.OpGreaterEqual:
		return value >= literal
	}
	return false
}
