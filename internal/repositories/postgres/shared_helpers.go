package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/curio-learn/profile-service/internal/repositories"
)

const accountTable = "auth_user"

type columnKind int

const (
	kindText columnKind = iota
	kindInt
	kindDate
)

type column struct {
	expr string
	kind columnKind
	join bool // needs the auth_user join
}

// columnSet whitelists the admin field names a table exposes and maps them
// to qualified SQL expressions.
type columnSet struct {
	table   string
	columns map[string]column
}

func newRecordColumns(table string, textFields, intFields, dateFields []string) columnSet {
	cs := columnSet{
		table: table,
		columns: map[string]column{
			"id":             {expr: table + ".id", kind: kindInt},
			"user":           {expr: table + ".user_id", kind: kindInt},
			"user__username": {expr: accountTable + ".username", kind: kindText, join: true},
		},
	}
	for _, f := range textFields {
		cs.columns[f] = column{expr: table + "." + f, kind: kindText}
	}
	for _, f := range intFields {
		cs.columns[f] = column{expr: table + "." + f, kind: kindInt}
	}
	for _, f := range dateFields {
		cs.columns[f] = column{expr: table + "." + f, kind: kindDate}
	}
	return cs
}

func (cs columnSet) lookup(field string) (column, error) {
	col, ok := cs.columns[field]
	if !ok {
		return column{}, fmt.Errorf("%w: %s has no field %q", repositories.ErrInvalidLookup, cs.table, field)
	}
	return col, nil
}

func (cs columnSet) joinClause() string {
	return fmt.Sprintf("JOIN %s ON %s.id = %s.user_id", accountTable, accountTable, cs.table)
}

// applyChangeListFilters applies search and filters of q. The returned query
// still selects the whole row set; ordering and paging come later.
func applyChangeListFilters(query *gorm.DB, cs columnSet, q repositories.ChangeListQuery) (*gorm.DB, error) {
	needsJoin := false

	for _, term := range strings.Fields(q.Search) {
		if len(q.SearchFields) == 0 {
			break
		}
		clauses := make([]string, 0, len(q.SearchFields))
		args := make([]interface{}, 0, len(q.SearchFields))
		pattern := "%" + escapeLike(strings.ToLower(term)) + "%"

		for _, field := range q.SearchFields {
			col, err := cs.lookup(field)
			if err != nil {
				return nil, err
			}
			if col.kind != kindText {
				return nil, fmt.Errorf("%w: %s is not searchable", repositories.ErrInvalidLookup, field)
			}
			needsJoin = needsJoin || col.join
			clauses = append(clauses, fmt.Sprintf(`LOWER(%s) LIKE ? ESCAPE '\'`, col.expr))
			args = append(args, pattern)
		}
		query = query.Where("("+strings.Join(clauses, " OR ")+")", args...)
	}

	for _, f := range q.Filters {
		col, err := cs.lookup(f.Field)
		if err != nil {
			return nil, err
		}
		needsJoin = needsJoin || col.join

		if f.IsNull {
			if f.Value == "0" || strings.EqualFold(f.Value, "false") {
				query = query.Where(col.expr + " IS NOT NULL")
			} else {
				query = query.Where(col.expr + " IS NULL")
			}
			continue
		}

		value, err := convertFilterValue(col, f)
		if err != nil {
			return nil, err
		}
		query = query.Where(col.expr+" = ?", value)
	}

	for _, o := range q.Ordering {
		if col, ok := cs.columns[strings.TrimPrefix(o, "-")]; ok && col.join {
			needsJoin = true
		}
	}

	if needsJoin {
		query = query.Joins(cs.joinClause())
	}

	return query, nil
}

func convertFilterValue(col column, f repositories.FieldFilter) (interface{}, error) {
	switch col.kind {
	case kindInt:
		n, err := strconv.Atoi(f.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: %s expects an integer, got %q", repositories.ErrInvalidLookup, f.Field, f.Value)
		}
		return n, nil
	case kindDate:
		t, err := time.Parse("2006-01-02", f.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: %s expects YYYY-MM-DD, got %q", repositories.ErrInvalidLookup, f.Field, f.Value)
		}
		return datatypes.Date(t), nil
	default:
		return f.Value, nil
	}
}

// applyOrderingAndPage orders by q.Ordering, appending the primary key
// descending so pages are stable, then applies limit and offset. Unknown
// ordering fields are ignored.
func applyOrderingAndPage(query *gorm.DB, cs columnSet, q repositories.ChangeListQuery) *gorm.DB {
	hasPK := false
	for _, o := range q.Ordering {
		name := strings.TrimPrefix(o, "-")
		col, ok := cs.columns[name]
		if !ok {
			continue
		}
		if name == "id" {
			hasPK = true
		}
		query = query.Order(clause.OrderByColumn{
			Column: clause.Column{Name: col.expr, Raw: true},
			Desc:   strings.HasPrefix(o, "-"),
		})
	}
	if !hasPK {
		query = query.Order(clause.OrderByColumn{
			Column: clause.Column{Name: cs.table + ".id", Raw: true},
			Desc:   true,
		})
	}

	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}
	if q.Offset > 0 {
		query = query.Offset(q.Offset)
	}
	return query
}

// changeList runs the count and page queries for model into dest.
func changeList(ctx context.Context, db *gorm.DB, model interface{}, cs columnSet, q repositories.ChangeListQuery, dest interface{}) (int64, error) {
	base, err := applyChangeListFilters(db.WithContext(ctx).Model(model), cs, q)
	if err != nil {
		return 0, err
	}
	base = base.Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return 0, handleDBError(err, "count "+cs.table)
	}

	page := applyOrderingAndPage(base.Select(cs.table+".*").Preload("User"), cs, q)
	if err := page.Find(dest).Error; err != nil {
		return 0, handleDBError(err, "list "+cs.table)
	}

	return total, nil
}

// filterChoices returns the distinct non-null values of field. The user
// field lists owning accounts labelled by username.
func filterChoices(ctx context.Context, db *gorm.DB, cs columnSet, field string) ([]repositories.FilterChoice, error) {
	col, err := cs.lookup(field)
	if err != nil {
		return nil, err
	}

	var choices []repositories.FilterChoice
	query := db.WithContext(ctx).Table(cs.table)

	switch {
	case field == "user":
		query = query.Joins(cs.joinClause()).
			Select(accountTable + ".id AS value, " + accountTable + ".username AS label").
			Group(accountTable + ".id, " + accountTable + ".username").
			Order("label")
	case col.kind == kindDate:
		return nil, fmt.Errorf("%w: %s cannot be used as a list filter", repositories.ErrInvalidLookup, field)
	default:
		if col.join {
			query = query.Joins(cs.joinClause())
		}
		query = query.Select("DISTINCT " + col.expr + " AS value").
			Where(col.expr + " IS NOT NULL").
			Order("value")
	}

	if err := query.Scan(&choices).Error; err != nil {
		return nil, handleDBError(err, "filter choices for "+field)
	}

	for i := range choices {
		if choices[i].Label == "" {
			choices[i].Label = choices[i].Value
		}
	}
	return choices, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// handleDBError wraps err with the failed operation, mapping driver errors
// onto the repository sentinels.
func handleDBError(err error, operation string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s failed: %w", operation, repositories.ClassifyError(err))
}
