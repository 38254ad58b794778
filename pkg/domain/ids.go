// Package domain holds typed identifiers shared across the family and auth
// packages. Parsing happens once at the trust boundary; everything past it
// works with typed values.
package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/google/uuid"

	dErrors "familytree/pkg/domain-errors"
)

// UserID identifies an account. Persons are owned by a UserID.
type UserID uuid.UUID

// PersonID identifies a node of the family graph. Values are generated by
// the person store and are always positive.
type PersonID int64

// RelationshipID identifies a stored directed edge.
type RelationshipID int64

// NewUserID returns a fresh random UserID.
func NewUserID() UserID {
	return UserID(uuid.New())
}

// ParseUserID parses a non-nil UUID.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return UserID{}, err
	}
	return UserID(u), nil
}

func parseUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must be a valid UUID")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must not be nil")
	}
	return u, nil
}

func (id UserID) String() string { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

func (id UserID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *UserID) UnmarshalText(b []byte) error {
	u, err := uuid.ParseBytes(b)
	if err != nil {
		return dErrors.New(dErrors.CodeInvalidInput, "id must be a valid UUID")
	}
	*id = UserID(u)
	return nil
}

// ParsePersonID parses a positive decimal person id.
func ParsePersonID(s string) (PersonID, error) {
	n, err := parsePositiveInt(s)
	if err != nil {
		return 0, err
	}
	return PersonID(n), nil
}

func parsePositiveInt(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "id is required")
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "id must be a number")
	}
	if n <= 0 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "id must be positive")
	}
	return n, nil
}

func (id PersonID) String() string { return strconv.FormatInt(int64(id), 10) }

// UnmarshalJSON accepts both 42 and "42"; browsers post form values as strings.
func (id *PersonID) UnmarshalJSON(b []byte) error {
	n, err := unmarshalFlexibleInt(b)
	if err != nil {
		return err
	}
	*id = PersonID(n)
	return nil
}

func (id RelationshipID) String() string { return strconv.FormatInt(int64(id), 10) }

func (id *RelationshipID) UnmarshalJSON(b []byte) error {
	n, err := unmarshalFlexibleInt(b)
	if err != nil {
		return err
	}
	*id = RelationshipID(n)
	return nil
}

func unmarshalFlexibleInt(b []byte) (int64, error) {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return 0, err
		}
		return parsePositiveInt(s)
	}
	var n int64
	if err := json.Unmarshal(b, &n); err != nil {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "id must be a number")
	}
	return n, nil
}
