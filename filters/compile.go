package filters

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/projectdesk/models"
	"github.com/projectdesk/validators"
	"github.com/spf13/cast"
	"gorm.io/gorm"
)

// Native project columns addressable by filters. Every other field name is an
// EAV attribute name.
var nativeColumns = map[string]string{
	"name":   "projects.name",
	"status": "projects.status",
}

// AttributeResolver resolves EAV field names to declared attributes. A missing
// attribute is reported as gorm.ErrRecordNotFound.
type AttributeResolver interface {
	FindByName(ctx context.Context, name string) (*models.Attribute, error)
}

// Clause is one parameterized SQL condition
type Clause struct {
	SQL  string
	Args []interface{}
}

// Predicate is a compiled filter. Apply narrows a projects query.
type Predicate struct {
	clauses []Clause
}

const unsatisfiable = "1 = 0"

const eavExists = "EXISTS (SELECT 1 FROM attribute_values av JOIN attributes a ON a.id = av.attribute_id " +
	"WHERE av.project_id = projects.id AND a.name = ? AND %s)"

// Compile resolves field names and builds the predicate. It never fails on
// unknown fields or mistyped literals; those conditions simply match nothing.
func Compile(ctx context.Context, filter Filter, resolver AttributeResolver) (*Predicate, error) {
	p := &Predicate{}
	for _, field := range filter.Fields {
		if column, ok := nativeColumns[field.Name]; ok {
			for _, cond := range field.Conditions {
				p.addNative(column, cond)
			}
			continue
		}

		attribute, err := resolver.FindByName(ctx, field.Name)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("resolve filter field %q: %w", field.Name, err)
		}
		if err != nil {
			attribute = nil
		}
		for _, cond := range field.Conditions {
			p.addAttribute(field.Name, attribute, cond)
		}
	}
	return p, nil
}

// Clauses returns the compiled conditions in field order
func (p *Predicate) Clauses() []Clause {
	return p.clauses
}

// SQL joins every clause with AND. An empty predicate yields an empty string.
func (p *Predicate) SQL() (string, []interface{}) {
	parts := make([]string, 0, len(p.clauses))
	var args []interface{}
	for _, c := range p.clauses {
		parts = append(parts, "("+c.SQL+")")
		args = append(args, c.Args...)
	}
	return strings.Join(parts, " AND "), args
}

// Apply adds every clause to a query over the projects table
func (p *Predicate) Apply(db *gorm.DB) *gorm.DB {
	for _, c := range p.clauses {
		db = db.Where(c.SQL, c.Args...)
	}
	return db
}

func (p *Predicate) addNative(column string, cond Condition) {
	if cond.Operator == OpLike {
		p.clauses = append(p.clauses, Clause{
			SQL:  "LOWER(" + column + ") LIKE ? ESCAPE '\\'",
			Args: []interface{}{likePattern(cond.Literal)},
		})
	} else {
		p.clauses = append(p.clauses, Clause{
			SQL:  column + " " + sqlOperator(cond.Operator) + " ?",
			Args: []interface{}{cond.Literal},
		})
	}
}

func (p *Predicate) addAttribute(name string, attribute *models.Attribute, cond Condition) {
	numeric := attribute != nil && attribute.Type == models.AttributeTypeNumber && cond.Operator != OpLike

	var number float64
	if numeric {
		literal := strings.TrimSpace(cond.Literal)
		if !validators.IsNumeric(literal) {
			p.clauses = append(p.clauses, Clause{SQL: unsatisfiable})
			return
		}
		var err error
		if number, err = cast.ToFloat64E(literal); err != nil {
			p.clauses = append(p.clauses, Clause{SQL: unsatisfiable})
			return
		}
	}

	switch {
	case cond.Operator == OpLike:
		p.clauses = append(p.clauses, Clause{
			SQL:  fmt.Sprintf(eavExists, "LOWER(av.value) LIKE ? ESCAPE '\\'"),
			Args: []interface{}{name, likePattern(cond.Literal)},
		})
	case numeric:
		// a.type is checked inside CASE so the cast never sees another attribute's text
		p.clauses = append(p.clauses, Clause{
			SQL: fmt.Sprintf(eavExists, "(CASE WHEN a.type = ? THEN CAST(av.value AS NUMERIC) END) "+
				sqlOperator(cond.Operator)+" ?"),
			Args: []interface{}{name, string(models.AttributeTypeNumber), number},
		})
	default:
		p.clauses = append(p.clauses, Clause{
			SQL:  fmt.Sprintf(eavExists, "av.value "+sqlOperator(cond.Operator)+" ?"),
			Args: []interface{}{name, cond.Literal},
		})
	}
}

func sqlOperator(op Operator) string {
	if op == OpNotEqual {
		return "<>"
	}
	return string(op)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern wraps the literal in wildcards. Wildcards inside the literal are
// matched verbatim.
func likePattern(literal string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(literal)) + "%"
}
