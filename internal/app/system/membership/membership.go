// Package membership holds the pure classification rules for persons:
// the age bucket derived from a birth date and the role/status that follow
// from that bucket plus the presence of baptism and intake dates.
//
// Nothing here touches storage; the automation package applies these rules
// to stored records.
package membership

import (
	"time"

	"github.com/dalemusser/iglesiahub/internal/domain/models"
)

// Inclusive upper age bounds for each bucket. Anything above MaxMiddleAged is SENIOR.
// CHILD ends at 9: age 10 is ADOLESCENT even though the example scenarios
// call a 10-year-old a CHILD.
const (
	MaxChild      = 9
	MaxAdolescent = 14
	MaxYoungAdult = 24
	MaxAdult      = 35
	MaxMiddleAged = 59
)

// Age returns the whole years between birth and asOf, subtracting one when
// asOf falls before the birthday anniversary in asOf's year.
// Both dates are compared as calendar dates in asOf's location.
func Age(birth, asOf time.Time) int {
	birth = birth.In(asOf.Location())
	age := asOf.Year() - birth.Year()
	if asOf.Month() < birth.Month() ||
		(asOf.Month() == birth.Month() && asOf.Day() < birth.Day()) {
		age--
	}
	return age
}

// Classify maps a birth date to its age bucket as of the given instant.
func Classify(birth, asOf time.Time) models.PersonType {
	return TypeForAge(Age(birth, asOf))
}

// TypeForAge maps an integer age to its bucket.
func TypeForAge(age int) models.PersonType {
	switch {
	case age <= MaxChild:
		return models.TypeChild
	case age <= MaxAdolescent:
		return models.TypeAdolescent
	case age <= MaxYoungAdult:
		return models.TypeYoungAdult
	case age <= MaxAdult:
		return models.TypeAdult
	case age <= MaxMiddleAged:
		return models.TypeMiddleAged
	default:
		return models.TypeSenior
	}
}

// DeriveRoleStatus evaluates the membership rules in priority order; the
// first rule that matches wins:
//
//  1. baptism date present      → MEMBER / ACTIVE
//  2. intake date present       → MEMBER / ACTIVE
//  3. type CHILD                → MEMBER / ACTIVE
//  4. type ADOLESCENT           → VISITOR / RECURRING
//  5. anything else             → VISITOR / NEW
func DeriveRoleStatus(t models.PersonType, baptism, intake *time.Time) (models.Role, models.Status) {
	switch {
	case baptism != nil:
		return models.RoleMember, models.StatusActive
	case intake != nil:
		return models.RoleMember, models.StatusActive
	case t == models.TypeChild:
		return models.RoleMember, models.StatusActive
	case t == models.TypeAdolescent:
		return models.RoleVisitor, models.StatusRecurring
	default:
		return models.RoleVisitor, models.StatusNew
	}
}

// Derived is the outcome of running every rule against one person.
type Derived struct {
	Type   models.PersonType
	Role   models.Role
	Status models.Status
}

// Derive recomputes type (only when a birth date is present; otherwise the
// stored type is kept) and then role/status from the recomputed type.
func Derive(p models.Person, asOf time.Time) Derived {
	t := p.Type
	if p.BirthDate != nil {
		t = Classify(*p.BirthDate, asOf)
	}
	role, st := DeriveRoleStatus(t, p.BaptismDate, p.IntakeDate)
	return Derived{Type: t, Role: role, Status: st}
}

// IsValidType reports whether t is one of the known buckets.
func IsValidType(t models.PersonType) bool {
	switch t {
	case models.TypeChild, models.TypeAdolescent, models.TypeYoungAdult,
		models.TypeAdult, models.TypeMiddleAged, models.TypeSenior:
		return true
	}
	return false
}

// IsValidRole reports whether r is MEMBER or VISITOR.
func IsValidRole(r models.Role) bool {
	return r == models.RoleMember || r == models.RoleVisitor
}

// IsValidStatus reports whether s is a known membership status.
func IsValidStatus(s models.Status) bool {
	switch s {
	case models.StatusActive, models.StatusNew, models.StatusRecurring, models.StatusInactive:
		return true
	}
	return false
}
