package person

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"familytree/internal/family/models"
	id "familytree/pkg/domain"
	"familytree/pkg/platform/sentinel"
	"familytree/pkg/platform/tx"

	"github.com/google/uuid"
)

// PostgresStore persists persons in PostgreSQL. Methods join the transaction
// carried by ctx when there is one.
type PostgresStore struct {
	db tx.Querier
}

// NewPostgres constructs a PostgreSQL-backed person store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// NewPostgresTx binds the store to an open transaction.
func NewPostgresTx(sqlTx *sql.Tx) *PostgresStore {
	return &PostgresStore{db: sqlTx}
}

const personColumns = `id, name, email, gender, born, photo, fid, mid, user_id`

func (s *PostgresStore) Create(ctx context.Context, p *models.Person) error {
	q := tx.QuerierFrom(ctx, s.db)
	var newID int64
	err := q.QueryRowContext(ctx, `
		INSERT INTO persons (name, email, gender, born, photo, fid, mid, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, p.Name, nullString(p.Email), string(p.Gender), nullDate(p.Born), nullString(p.Photo),
		nullID(p.FatherID), nullID(p.MotherID), uuid.UUID(p.UserID)).Scan(&newID)
	if err != nil {
		return fmt.Errorf("create person: %w", err)
	}
	p.ID = id.PersonID(newID)
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, personID id.PersonID) (*models.Person, error) {
	q := tx.QuerierFrom(ctx, s.db)
	row := q.QueryRowContext(ctx, `SELECT `+personColumns+` FROM persons WHERE id = $1`, int64(personID))
	p, err := scanPerson(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find person by id: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) ListByOwner(ctx context.Context, owner id.UserID) ([]*models.Person, error) {
	q := tx.QuerierFrom(ctx, s.db)
	rows, err := q.QueryContext(ctx, `SELECT `+personColumns+` FROM persons WHERE user_id = $1 ORDER BY id`, uuid.UUID(owner))
	if err != nil {
		return nil, fmt.Errorf("list persons by owner: %w", err)
	}
	defer rows.Close()

	persons := make([]*models.Person, 0)
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("scan person: %w", err)
		}
		persons = append(persons, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate persons: %w", err)
	}
	return persons, nil
}

func (s *PostgresStore) Update(ctx context.Context, p *models.Person) error {
	q := tx.QuerierFrom(ctx, s.db)
	res, err := q.ExecContext(ctx, `
		UPDATE persons
		SET name = $2, email = $3, gender = $4, born = $5, photo = $6, fid = $7, mid = $8, user_id = $9
		WHERE id = $1
	`, int64(p.ID), p.Name, nullString(p.Email), string(p.Gender), nullDate(p.Born), nullString(p.Photo),
		nullID(p.FatherID), nullID(p.MotherID), uuid.UUID(p.UserID))
	if err != nil {
		return fmt.Errorf("update person: %w", err)
	}
	return requireAffected(res)
}

func (s *PostgresStore) Delete(ctx context.Context, personID id.PersonID) error {
	q := tx.QuerierFrom(ctx, s.db)
	res, err := q.ExecContext(ctx, `DELETE FROM persons WHERE id = $1`, int64(personID))
	if err != nil {
		return fmt.Errorf("delete person: %w", err)
	}
	return requireAffected(res)
}

func (s *PostgresStore) ClearParentReferences(ctx context.Context, parentID id.PersonID, role models.ParentRole) (int64, error) {
	column := "fid"
	if role == models.RoleMother {
		column = "mid"
	}
	q := tx.QuerierFrom(ctx, s.db)
	res, err := q.ExecContext(ctx, `UPDATE persons SET `+column+` = NULL WHERE `+column+` = $1`, int64(parentID))
	if err != nil {
		return 0, fmt.Errorf("clear %s references: %w", role, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clear %s references: %w", role, err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPerson(row scanner) (*models.Person, error) {
	var (
		pid    int64
		name   string
		email  sql.NullString
		gender string
		born   sql.NullTime
		photo  sql.NullString
		fid    sql.NullInt64
		mid    sql.NullInt64
		owner  uuid.UUID
	)
	if err := row.Scan(&pid, &name, &email, &gender, &born, &photo, &fid, &mid, &owner); err != nil {
		return nil, err
	}
	p := &models.Person{
		ID:     id.PersonID(pid),
		Name:   name,
		Gender: models.Gender(gender),
		UserID: id.UserID(owner),
	}
	if email.Valid {
		p.Email = &email.String
	}
	if photo.Valid {
		p.Photo = &photo.String
	}
	if born.Valid {
		d := models.NewDate(born.Time.Year(), born.Time.Month(), born.Time.Day())
		p.Born = &d
	}
	if fid.Valid {
		v := id.PersonID(fid.Int64)
		p.FatherID = &v
	}
	if mid.Valid {
		v := id.PersonID(mid.Int64)
		p.MotherID = &v
	}
	return p, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullDate(d *models.Date) sql.NullTime {
	if d == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC), Valid: true}
}

func nullID(p *id.PersonID) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}
