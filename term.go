package reql

import (
	"errors"

	"github.com/pior/reql/encoding"
	"github.com/pior/reql/ql2"
)

// Term is one node of a query under construction. Terms are built fluently
// and are immutable values; an invalid argument anywhere in the chain is
// remembered and surfaced when the query runs.
//
//	q := reql.DB("app").Table("users").Filter(map[string]any{"active": true}).Limit(10)
type Term struct {
	term *ql2.Term
	err  error
}

func (t Term) build() (*ql2.Term, error) {
	if t.err != nil {
		return nil, t.err
	}
	if t.term == nil {
		return nil, errors.New("reql: empty query term")
	}
	return t.term, nil
}

// Expr wraps a Go value as a constant term.
func Expr(v any) Term {
	if t, ok := v.(Term); ok {
		return t
	}
	d, err := encoding.ToDatum(v)
	if err != nil {
		return Term{err: err}
	}
	return Term{term: ql2.DatumTerm(d)}
}

func newTerm(tt ql2.TermType, args ...Term) Term {
	node := &ql2.Term{Type: tt}
	for _, a := range args {
		if a.err != nil {
			return Term{err: a.err}
		}
		node.Args = append(node.Args, a.term)
	}
	return Term{term: node}
}

// chain builds a term with the receiver as first argument.
func (t Term) chain(tt ql2.TermType, args ...Term) Term {
	if t.err != nil {
		return t
	}
	return newTerm(tt, append([]Term{t}, args...)...)
}

// DB references a database.
func DB(name string) Term {
	return newTerm(ql2.TermDB, Expr(name))
}

// DBCreate creates a database.
func DBCreate(name string) Term {
	return newTerm(ql2.TermDBCreate, Expr(name))
}

// DBDrop drops a database.
func DBDrop(name string) Term {
	return newTerm(ql2.TermDBDrop, Expr(name))
}

// DBList lists database names.
func DBList() Term {
	return newTerm(ql2.TermDBList)
}

// Table references a table in the database.
func (t Term) Table(name string) Term {
	return t.chain(ql2.TermTable, Expr(name))
}

// TableCreate creates a table.
func (t Term) TableCreate(name string) Term {
	return t.chain(ql2.TermTableCreate, Expr(name))
}

// TableDrop drops a table.
func (t Term) TableDrop(name string) Term {
	return t.chain(ql2.TermTableDrop, Expr(name))
}

// TableList lists table names.
func (t Term) TableList() Term {
	return t.chain(ql2.TermTableList)
}

// Get fetches a document by primary key.
func (t Term) Get(key any) Term {
	return t.chain(ql2.TermGet, Expr(key))
}

// Insert inserts one or more documents. Documents are encoded at build time;
// an unencodable value fails the whole chain.
func (t Term) Insert(docs ...any) Term {
	if len(docs) == 1 {
		return t.chain(ql2.TermInsert, Expr(docs[0]))
	}
	elems := make([]Term, len(docs))
	for i, doc := range docs {
		elems[i] = Expr(doc)
	}
	return t.chain(ql2.TermInsert, newTerm(ql2.TermMakeArray, elems...))
}

// Update applies the given attributes to every selected document.
func (t Term) Update(doc any) Term {
	return t.chain(ql2.TermUpdate, Expr(doc))
}

// Replace substitutes whole documents.
func (t Term) Replace(doc any) Term {
	return t.chain(ql2.TermReplace, Expr(doc))
}

// Delete removes the selected documents.
func (t Term) Delete() Term {
	return t.chain(ql2.TermDelete)
}

// Filter keeps documents matching the predicate object.
func (t Term) Filter(predicate any) Term {
	return t.chain(ql2.TermFilter, Expr(predicate))
}

// Field extracts a single attribute from each document.
func (t Term) Field(name string) Term {
	return t.chain(ql2.TermGetField, Expr(name))
}

// Pluck keeps only the named attributes.
func (t Term) Pluck(names ...string) Term {
	return t.chain(ql2.TermPluck, strTerms(names)...)
}

// Without drops the named attributes.
func (t Term) Without(names ...string) Term {
	return t.chain(ql2.TermWithout, strTerms(names)...)
}

// Merge overlays the given object onto each document.
func (t Term) Merge(doc any) Term {
	return t.chain(ql2.TermMerge, Expr(doc))
}

// Count counts the elements of a sequence.
func (t Term) Count() Term {
	return t.chain(ql2.TermCount)
}

// Limit truncates a sequence after n elements.
func (t Term) Limit(n int) Term {
	return t.chain(ql2.TermLimit, Expr(n))
}

// Skip drops the first n elements of a sequence.
func (t Term) Skip(n int) Term {
	return t.chain(ql2.TermSkip, Expr(n))
}

// Nth picks the n-th element of a sequence.
func (t Term) Nth(n int) Term {
	return t.chain(ql2.TermNth, Expr(n))
}

// OrderBy sorts a sequence. Keys are field names or Asc/Desc terms.
func (t Term) OrderBy(keys ...any) Term {
	terms := make([]Term, len(keys))
	for i, k := range keys {
		terms[i] = Expr(k)
	}
	return t.chain(ql2.TermOrderBy, terms...)
}

// Asc marks an OrderBy key as ascending.
func Asc(field string) Term {
	return newTerm(ql2.TermAsc, Expr(field))
}

// Desc marks an OrderBy key as descending.
func Desc(field string) Term {
	return newTerm(ql2.TermDesc, Expr(field))
}

// Between selects documents whose primary key lies in [lower, upper).
func (t Term) Between(lower, upper any) Term {
	return t.chain(ql2.TermBetween, Expr(lower), Expr(upper))
}

// Contains tests whether a sequence contains the value.
func (t Term) Contains(v any) Term {
	return t.chain(ql2.TermContains, Expr(v))
}

func strTerms(names []string) []Term {
	terms := make([]Term, len(names))
	for i, name := range names {
		terms[i] = Expr(name)
	}
	return terms
}
