package models

import (
	"bytes"
	"encoding/json"
	"strings"

	id "familytree/pkg/domain"
	dErrors "familytree/pkg/domain-errors"
)

// ParentRef is a request-side parent id. Browsers send missing parents as
// null, "null", "" or 0; all of them mean absent.
type ParentRef struct {
	id  id.PersonID
	set bool
}

// ParentOf builds a present reference.
func ParentOf(pid id.PersonID) ParentRef {
	return ParentRef{id: pid, set: pid > 0}
}

// Get returns the referenced id and whether one was supplied.
func (p ParentRef) Get() (id.PersonID, bool) {
	return p.id, p.set
}

// Ptr returns the id as a nullable column value.
func (p ParentRef) Ptr() *id.PersonID {
	if !p.set {
		return nil
	}
	v := p.id
	return &v
}

func (p ParentRef) MarshalJSON() ([]byte, error) {
	if !p.set {
		return []byte("null"), nil
	}
	return json.Marshal(p.id)
}

func (p *ParentRef) UnmarshalJSON(b []byte) error {
	*p = ParentRef{}
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" || s == "null" || s == "0" {
			return nil
		}
		pid, err := id.ParsePersonID(s)
		if err != nil {
			return dErrors.New(dErrors.CodeValidation, "parent id must be a positive number or null")
		}
		*p = ParentOf(pid)
		return nil
	}
	var n int64
	if err := json.Unmarshal(b, &n); err != nil {
		return dErrors.New(dErrors.CodeValidation, "parent id must be a positive number or null")
	}
	if n < 0 {
		return dErrors.New(dErrors.CodeValidation, "parent id must be a positive number or null")
	}
	*p = ParentOf(id.PersonID(n))
	return nil
}

// PersonRequest carries the attributes for creating or fully updating a
// person. Pids nil means "not supplied"; an empty slice clears all spouses on
// update.
type PersonRequest struct {
	Name     string        `json:"name"`
	Email    *string       `json:"email"`
	Gender   string        `json:"gender"`
	Born     *Date         `json:"born"`
	Photo    *string       `json:"photo"`
	FatherID ParentRef     `json:"fid"`
	MotherID ParentRef     `json:"mid"`
	Pids     []id.PersonID `json:"pids"`
}

// Normalize trims text fields and folds empty optionals to nil. Photo is left
// alone: an empty photo on update means "remove it".
func (r *PersonRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	if r.Email != nil {
		e := strings.TrimSpace(*r.Email)
		if e == "" {
			r.Email = nil
		} else {
			r.Email = &e
		}
	}
	if r.Born != nil && r.Born.IsZero() {
		r.Born = nil
	}
	if r.Photo != nil {
		p := strings.TrimSpace(*r.Photo)
		r.Photo = &p
	}
}

// Validate checks field-level rules. It does not look at the graph.
func (r *PersonRequest) Validate() error {
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if len(r.Name) > 255 {
		return dErrors.New(dErrors.CodeValidation, "name must be at most 255 characters")
	}
	if _, err := ParseGender(r.Gender); err != nil {
		return err
	}
	for _, pid := range r.Pids {
		if pid <= 0 {
			return dErrors.New(dErrors.CodeValidation, "pids must contain positive ids")
		}
	}
	return nil
}

// CreateRelationshipRequest is the payload for a direct edge insert.
type CreateRelationshipRequest struct {
	PersonID        id.PersonID      `json:"person_id"`
	RelatedPersonID id.PersonID      `json:"related_person_id"`
	Type            RelationshipType `json:"relationship_type"`
}

func (r *CreateRelationshipRequest) Validate() error {
	if r.PersonID <= 0 || r.RelatedPersonID <= 0 {
		return dErrors.New(dErrors.CodeValidation, "person_id and related_person_id are required")
	}
	if r.PersonID == r.RelatedPersonID {
		return dErrors.New(dErrors.CodeValidation, "a person cannot be related to itself")
	}
	if _, err := ParseRelationshipType(string(r.Type)); err != nil {
		return err
	}
	return nil
}

// MemberResult is returned by create and update. Warnings lists degraded,
// non-fatal side effects such as a photo that could not be removed.
type MemberResult struct {
	Member   *FamilyMember
	Warnings []string
}

// DeleteResult confirms a deletion.
type DeleteResult struct {
	ID       id.PersonID
	Warnings []string
}
