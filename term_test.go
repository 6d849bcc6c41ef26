package reql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pior/reql/ql2"
)

func TestTermTableChain(t *testing.T) {
	term, err := DB("app").Table("users").build()
	require.NoError(t, err)

	assert.Equal(t, ql2.TermTable, term.Type)
	require.Len(t, term.Args, 2)
	assert.Equal(t, ql2.TermDB, term.Args[0].Type)
	assert.Equal(t, "app", term.Args[0].Args[0].Datum.Str)
	assert.Equal(t, "users", term.Args[1].Datum.Str)
}

func TestTermGet(t *testing.T) {
	term, err := DB("app").Table("users").Get("id-1").build()
	require.NoError(t, err)

	assert.Equal(t, ql2.TermGet, term.Type)
	assert.Equal(t, "id-1", term.Args[1].Datum.Str)
}

func TestTermInsertSingleDocument(t *testing.T) {
	term, err := DB("app").Table("users").Insert(map[string]any{"name": "ada"}).build()
	require.NoError(t, err)

	assert.Equal(t, ql2.TermInsert, term.Type)
	require.Len(t, term.Args, 2)
	doc := term.Args[1].Datum
	name, ok := doc.Field("name")
	require.True(t, ok)
	assert.Equal(t, "ada", name.Str)
}

func TestTermInsertMultipleDocuments(t *testing.T) {
	term, err := DB("app").Table("users").
		Insert(map[string]any{"n": 1}, map[string]any{"n": 2}).
		build()
	require.NoError(t, err)

	require.Len(t, term.Args, 2)
	assert.Equal(t, ql2.TermMakeArray, term.Args[1].Type)
	assert.Len(t, term.Args[1].Args, 2)
}

func TestTermFilterPipeline(t *testing.T) {
	term, err := DB("app").Table("users").
		Filter(map[string]any{"active": true}).
		OrderBy("name", Desc("age")).
		Limit(10).
		build()
	require.NoError(t, err)

	assert.Equal(t, ql2.TermLimit, term.Type)
	orderBy := term.Args[0]
	assert.Equal(t, ql2.TermOrderBy, orderBy.Type)
	require.Len(t, orderBy.Args, 3)
	assert.Equal(t, ql2.TermFilter, orderBy.Args[0].Type)
	assert.Equal(t, "name", orderBy.Args[1].Datum.Str)
	assert.Equal(t, ql2.TermDesc, orderBy.Args[2].Type)
}

func TestTermAdminOperations(t *testing.T) {
	term, err := DBCreate("app").build()
	require.NoError(t, err)
	assert.Equal(t, ql2.TermDBCreate, term.Type)

	term, err = DB("app").TableCreate("users").build()
	require.NoError(t, err)
	assert.Equal(t, ql2.TermTableCreate, term.Type)

	term, err = DBList().build()
	require.NoError(t, err)
	assert.Equal(t, ql2.TermDBList, term.Type)
	assert.Empty(t, term.Args)
}

func TestTermEncodingErrorPropagates(t *testing.T) {
	// An unencodable document poisons the whole chain, surfacing at build.
	_, err := DB("app").Table("users").Insert(make(chan int)).Count().build()
	require.Error(t, err)
}

func TestTermEmptyBuildFails(t *testing.T) {
	_, err := Term{}.build()
	require.Error(t, err)
}

func TestExprPassesTermsThrough(t *testing.T) {
	inner := DB("app").Table("t")
	outer := Expr(inner)
	assert.Equal(t, inner, outer)
}
