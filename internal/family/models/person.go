package models

import (
	"strings"

	id "familytree/pkg/domain"
	dErrors "familytree/pkg/domain-errors"
)

// Gender is the closed set of genders a person can be recorded with.
type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderUnknown Gender = "unknown"
)

// ParseGender normalizes user input. An empty value means unknown.
func ParseGender(s string) (Gender, error) {
	switch g := Gender(strings.ToLower(strings.TrimSpace(s))); g {
	case "":
		return GenderUnknown, nil
	case GenderMale, GenderFemale, GenderUnknown:
		return g, nil
	default:
		return "", dErrors.New(dErrors.CodeValidation, "gender must be one of male, female, unknown")
	}
}

// ParentRole selects which back-reference of a Person is meant.
type ParentRole string

const (
	RoleFather ParentRole = "father"
	RoleMother ParentRole = "mother"
)

// Person is a node of the family graph.
//
// Invariants:
//   - ID is assigned by the person store and never changes
//   - Name is non-empty
//   - FatherID and MotherID are weak back-references; a person never owns
//     its parents. Dangling references are healed on update by synthesizing
//     placeholder ancestors and cleared when the parent is deleted.
type Person struct {
	ID       id.PersonID  `json:"id"`
	Name     string       `json:"name"`
	Email    *string      `json:"email"`
	Gender   Gender       `json:"gender"`
	Born     *Date        `json:"born"`
	Photo    *string      `json:"photo"`
	FatherID *id.PersonID `json:"fid"`
	MotherID *id.PersonID `json:"mid"`
	UserID   id.UserID    `json:"userId"`
}

// Parent returns the back-reference for role.
func (p *Person) Parent(role ParentRole) *id.PersonID {
	if role == RoleMother {
		return p.MotherID
	}
	return p.FatherID
}

// ClearParent drops the back-reference for role.
func (p *Person) ClearParent(role ParentRole) {
	if role == RoleMother {
		p.MotherID = nil
		return
	}
	p.FatherID = nil
}

// PhotoValue returns the stored photo location or "" when there is none.
func (p *Person) PhotoValue() string {
	if p.Photo == nil {
		return ""
	}
	return *p.Photo
}

// Clone returns a deep copy so stores never hand out shared pointers.
func (p *Person) Clone() *Person {
	if p == nil {
		return nil
	}
	c := *p
	c.Email = cloneString(p.Email)
	c.Photo = cloneString(p.Photo)
	if p.Born != nil {
		b := *p.Born
		c.Born = &b
	}
	c.FatherID = cloneID(p.FatherID)
	c.MotherID = cloneID(p.MotherID)
	return &c
}

// NewPlaceholderParent builds the record synthesized when an update points at
// a parent that does not exist. The placeholder belongs to the acting user.
func NewPlaceholderParent(role ParentRole, owner id.UserID) *Person {
	p := &Person{UserID: owner}
	switch role {
	case RoleMother:
		p.Name = "Unknown Mother"
		p.Gender = GenderFemale
	default:
		p.Name = "Unknown Father"
		p.Gender = GenderMale
	}
	return p
}

// FamilyMember is the denormalized view returned to clients: the stored
// person plus the ids of its current spouses.
type FamilyMember struct {
	Person
	Pids []id.PersonID `json:"pids"`
}

// NewFamilyMember pairs p with its spouse ids. Pids is never nil.
func NewFamilyMember(p *Person, pids []id.PersonID) *FamilyMember {
	if pids == nil {
		pids = []id.PersonID{}
	}
	return &FamilyMember{Person: *p.Clone(), Pids: pids}
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneID(p *id.PersonID) *id.PersonID {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
