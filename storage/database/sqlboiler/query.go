package boiledrepos

import (
	"database/sql"

	"github.com/google/uuid"
	"github.com/volatiletech/sqlboiler/v4/drivers"
	"github.com/volatiletech/sqlboiler/v4/queries"
	"github.com/volatiletech/sqlboiler/v4/queries/qm"
)

// psqlDialect is the dialect sqlboiler's psql driver generates queries with.
var psqlDialect = drivers.Dialect{
	LQ: '"',
	RQ: '"',

	UseIndexPlaceholders: true,
	UseDefaultKeyword:    true,
}

func newQuery(mods ...qm.QueryMod) *queries.Query {
	q := &queries.Query{}
	queries.SetDialect(q, &psqlDialect)
	qm.Apply(q, mods...)
	return q
}

// whereIDIn restricts `column` to `ids`. `ok` is false when no row can match:
// the set is empty or holds no valid uuid.
func whereIDIn(column string, ids []string) (mod qm.QueryMod, ok bool) {
	args := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		if validID(id) {
			args = append(args, id)
		}
	}
	if len(args) == 0 {
		return nil, false
	}
	return qm.WhereIn(column+" IN ?", args...), true
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func isNoRows(err error) bool {
	return err == sql.ErrNoRows
}

type idEq struct {
	column string
	id     *string
}

// whereIDsEq appends an equality clause for every non-nil id.
// `ok` is false when an id is not a valid uuid, as no row can match it.
func whereIDsEq(mods []qm.QueryMod, eqs ...idEq) ([]qm.QueryMod, bool) {
	for _, eq := range eqs {
		if eq.id == nil {
			continue
		}
		if !validID(*eq.id) {
			return nil, false
		}
		mods = append(mods, qm.Where(eq.column+" = ?", *eq.id))
	}
	return mods, true
}
