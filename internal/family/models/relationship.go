package models

import (
	id "familytree/pkg/domain"
	dErrors "familytree/pkg/domain-errors"
)

// RelationshipType names the kind of edge. Only spouse is in use.
type RelationshipType string

const RelationshipSpouse RelationshipType = "spouse"

// ParseRelationshipType validates t against the known types.
func ParseRelationshipType(t string) (RelationshipType, error) {
	switch rt := RelationshipType(t); rt {
	case RelationshipSpouse:
		return rt, nil
	case "":
		return "", dErrors.New(dErrors.CodeValidation, "relationship_type is required")
	default:
		return "", dErrors.New(dErrors.CodeValidation, "unsupported relationship_type: "+t)
	}
}

// Symmetric reports whether an edge of this type must be mirrored.
func (t RelationshipType) Symmetric() bool {
	return t == RelationshipSpouse
}

// Relationship is a directed, typed edge between two persons. Spouse edges
// are stored as two rows, one per direction.
type Relationship struct {
	ID        id.RelationshipID `json:"id"`
	SubjectID id.PersonID       `json:"person_id"`
	ObjectID  id.PersonID       `json:"related_person_id"`
	Type      RelationshipType  `json:"relationship_type"`
}

// Reverse returns the mirrored edge without an ID.
func (r *Relationship) Reverse() *Relationship {
	return &Relationship{SubjectID: r.ObjectID, ObjectID: r.SubjectID, Type: r.Type}
}

// Touches reports whether personID is either end of the edge.
func (r *Relationship) Touches(personID id.PersonID) bool {
	return r.SubjectID == personID || r.ObjectID == personID
}

// Edge builds an unsaved relationship.
func Edge(subject, object id.PersonID, t RelationshipType) *Relationship {
	return &Relationship{SubjectID: subject, ObjectID: object, Type: t}
}

// RelationshipFilter selects relationships. Nil fields do not constrain.
// SubjectIDs, when non-nil, restricts the subject to the listed ids; an
// empty non-nil slice matches nothing.
type RelationshipFilter struct {
	SubjectID  *id.PersonID
	ObjectID   *id.PersonID
	Type       *RelationshipType
	SubjectIDs []id.PersonID
}

// Matches evaluates the filter against r.
func (f RelationshipFilter) Matches(r *Relationship) bool {
	if f.SubjectID != nil && r.SubjectID != *f.SubjectID {
		return false
	}
	if f.ObjectID != nil && r.ObjectID != *f.ObjectID {
		return false
	}
	if f.Type != nil && r.Type != *f.Type {
		return false
	}
	if f.SubjectIDs != nil {
		for _, sid := range f.SubjectIDs {
			if sid == r.SubjectID {
				return true
			}
		}
		return false
	}
	return true
}

// IsEmpty reports whether the filter matches every row.
func (f RelationshipFilter) IsEmpty() bool {
	return f.SubjectID == nil && f.ObjectID == nil && f.Type == nil && f.SubjectIDs == nil
}

// EdgeFilter matches exactly the (subject, object, type) triple.
func EdgeFilter(subject, object id.PersonID, t RelationshipType) RelationshipFilter {
	return RelationshipFilter{SubjectID: &subject, ObjectID: &object, Type: &t}
}

// SpousesOf matches the outgoing spouse edges of subject.
func SpousesOf(subject id.PersonID) RelationshipFilter {
	t := RelationshipSpouse
	return RelationshipFilter{SubjectID: &subject, Type: &t}
}
