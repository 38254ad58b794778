package relationship

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"familytree/internal/family/models"
	id "familytree/pkg/domain"
	"familytree/pkg/platform/sentinel"
	"familytree/pkg/platform/tx"

	"github.com/lib/pq"
)

// PostgresStore persists relationship rows in PostgreSQL.
type PostgresStore struct {
	db tx.Querier
}

// NewPostgres constructs a PostgreSQL-backed relationship store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// NewPostgresTx binds the store to an open transaction.
func NewPostgresTx(sqlTx *sql.Tx) *PostgresStore {
	return &PostgresStore{db: sqlTx}
}

func (s *PostgresStore) Find(ctx context.Context, filter models.RelationshipFilter) ([]*models.Relationship, error) {
	where, args := whereClause(filter)
	q := tx.QuerierFrom(ctx, s.db)
	rows, err := q.QueryContext(ctx, `
		SELECT id, person_id, related_person_id, relationship_type
		FROM relationships`+where+`
		ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("find relationships: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Relationship, 0)
	for rows.Next() {
		var (
			rid, subject, object int64
			relType              string
		)
		if err := rows.Scan(&rid, &subject, &object, &relType); err != nil {
			return nil, fmt.Errorf("scan relationship: %w", err)
		}
		out = append(out, &models.Relationship{
			ID:        id.RelationshipID(rid),
			SubjectID: id.PersonID(subject),
			ObjectID:  id.PersonID(object),
			Type:      models.RelationshipType(relType),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate relationships: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Create(ctx context.Context, r *models.Relationship) error {
	q := tx.QuerierFrom(ctx, s.db)
	var rid int64
	err := q.QueryRowContext(ctx, `
		INSERT INTO relationships (person_id, related_person_id, relationship_type)
		VALUES ($1, $2, $3)
		RETURNING id
	`, int64(r.SubjectID), int64(r.ObjectID), string(r.Type)).Scan(&rid)
	if err != nil {
		return fmt.Errorf("create relationship: %w", err)
	}
	r.ID = id.RelationshipID(rid)
	return nil
}

func (s *PostgresStore) DeleteWhere(ctx context.Context, filter models.RelationshipFilter) (int64, error) {
	if filter.IsEmpty() {
		return 0, sentinel.ErrInvalidState
	}
	where, args := whereClause(filter)
	q := tx.QuerierFrom(ctx, s.db)
	res, err := q.ExecContext(ctx, `DELETE FROM relationships`+where, args...)
	if err != nil {
		return 0, fmt.Errorf("delete relationships: %w", err)
	}
	return rowsAffected(res)
}

func (s *PostgresStore) DeleteTouching(ctx context.Context, personID id.PersonID) (int64, error) {
	q := tx.QuerierFrom(ctx, s.db)
	res, err := q.ExecContext(ctx,
		`DELETE FROM relationships WHERE person_id = $1 OR related_person_id = $1`, int64(personID))
	if err != nil {
		return 0, fmt.Errorf("delete relationships touching person: %w", err)
	}
	return rowsAffected(res)
}

func whereClause(f models.RelationshipFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.SubjectID != nil {
		add("person_id = $%d", int64(*f.SubjectID))
	}
	if f.ObjectID != nil {
		add("related_person_id = $%d", int64(*f.ObjectID))
	}
	if f.Type != nil {
		add("relationship_type = $%d", string(*f.Type))
	}
	if f.SubjectIDs != nil {
		ids := make([]int64, len(f.SubjectIDs))
		for i, sid := range f.SubjectIDs {
			ids[i] = int64(sid)
		}
		add("person_id = ANY($%d::bigint[])", pq.Array(ids))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func rowsAffected(res sql.Result) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}
