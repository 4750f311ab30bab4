package shared

import (
	"strconv"
	"strings"
)

// Where accumulates SQL predicates with positional arguments.
type Where struct {
	clauses []string
	Args    []any
}

// Add appends a predicate. Each "?" in clause is replaced by the next
// positional placeholder bound to args in order.
func (w *Where) Add(clause string, args ...any) {
	for _, a := range args {
		w.Args = append(w.Args, a)
		clause = strings.Replace(clause, "?", "$"+strconv.Itoa(len(w.Args)), 1)
	}
	w.clauses = append(w.clauses, clause)
}

// SQL renders the WHERE clause, or an empty string when no predicates exist.
func (w *Where) SQL() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

// Page appends LIMIT/OFFSET placeholders and returns the suffix with its args.
func (w *Where) Page(f ListFilters) (string, []any) {
	args := append(append([]any(nil), w.Args...), f.Limit, f.Offset())
	n := len(args)
	return " LIMIT $" + strconv.Itoa(n-1) + " OFFSET $" + strconv.Itoa(n), args
}
