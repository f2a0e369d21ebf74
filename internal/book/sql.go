package book

import (
	"fmt"
	"strconv"
	"strings"
)

// dialect captures the few places where PostgreSQL and SQLite differ.
type dialect struct {
	placeholder func(n int) string
	likeOp      string
}

var (
	postgresDialect = dialect{
		placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
		likeOp:      "ILIKE",
	}
	// SQLite LIKE is case-insensitive for ASCII.
	sqliteDialect = dialect{
		placeholder: func(int) string { return "?" },
		likeOp:      "LIKE",
	}
)

const bookColumns = "id, title, author, year"

type listStatement struct {
	countSQL  string
	countArgs []any
	dataSQL   string
	dataArgs  []any
}

type argList struct {
	d    dialect
	args []any
}

func (a *argList) add(v any) string {
	a.args = append(a.args, v)
	return a.d.placeholder(len(a.args))
}

// buildList renders the count and page queries for q. q must be valid.
// Ties on the sort column are broken by id in the same direction, so a
// descending listing is the exact reverse of the ascending one.
func buildList(q Query, d dialect) listStatement {
	args := &argList{d: d}
	var clauses []string

	if q.Year != nil {
		clauses = append(clauses, "year = "+args.add(*q.Year))
	}
	if q.Title != "" {
		clauses = append(clauses, fmt.Sprintf(`title %s %s ESCAPE '\'`, d.likeOp, args.add(containsPattern(q.Title))))
	}
	if q.Author != "" {
		clauses = append(clauses, fmt.Sprintf(`author %s %s ESCAPE '\'`, d.likeOp, args.add(containsPattern(q.Author))))
	}

	where := ""
	if len(clauses) > 0 {
		where = " WHERE " + strings.Join(clauses, " AND ")
	}

	direction := "ASC"
	if q.Order == OrderDesc {
		direction = "DESC"
	}
	column := sortColumns[q.SortBy]

	countArgs := append([]any(nil), args.args...)
	limit := args.add(q.Limit)
	offset := args.add(q.Skip)

	return listStatement{
		countSQL:  "SELECT COUNT(*) FROM books" + where,
		countArgs: countArgs,
		dataSQL: fmt.Sprintf("SELECT %s FROM books%s ORDER BY %s %s, id %s LIMIT %s OFFSET %s",
			bookColumns, where, column, direction, direction, limit, offset),
		dataArgs: args.args,
	}
}

// containsPattern escapes LIKE metacharacters so s matches literally.
func containsPattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

func buildInsert(d dialect, in Input) (string, []any) {
	return fmt.Sprintf("INSERT INTO books (title, author, year) VALUES (%s, %s, %s) RETURNING id",
		d.placeholder(1), d.placeholder(2), d.placeholder(3)), []any{in.Title, in.Author, in.Year}
}

func buildSelectByID(d dialect, id int64) (string, []any) {
	return fmt.Sprintf("SELECT %s FROM books WHERE id = %s", bookColumns, d.placeholder(1)), []any{id}
}

func buildReplace(d dialect, id int64, in Input) (string, []any) {
	query := fmt.Sprintf("UPDATE books SET title = %s, author = %s, year = %s WHERE id = %s RETURNING %s",
		d.placeholder(1), d.placeholder(2), d.placeholder(3), d.placeholder(4), bookColumns)
	return query, []any{in.Title, in.Author, in.Year, id}
}

// buildPatch renders an UPDATE touching only the supplied fields. p must not be empty.
func buildPatch(d dialect, id int64, p Patch) (string, []any) {
	args := &argList{d: d}
	var sets []string
	if p.Title.Set {
		sets = append(sets, "title = "+args.add(p.Title.Value))
	}
	if p.Author.Set {
		sets = append(sets, "author = "+args.add(p.Author.Value))
	}
	if p.Year.Set {
		sets = append(sets, "year = "+args.add(p.Year.Value))
	}
	where := args.add(id)
	return fmt.Sprintf("UPDATE books SET %s WHERE id = %s RETURNING %s",
		strings.Join(sets, ", "), where, bookColumns), args.args
}

func buildDelete(d dialect, id int64) (string, []any) {
	return "DELETE FROM books WHERE id = " + d.placeholder(1), []any{id}
}
