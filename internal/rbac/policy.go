// Package rbac evaluates declarative per-operation access policies.
package rbac

import (
	"sort"
	"strings"

	"github.com/ppl-hub/practicum/internal/shared"
)

// RoleSet is an unordered set of roles.
type RoleSet map[shared.Role]struct{}

// Roles builds a RoleSet.
func Roles(roles ...shared.Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

// Has reports membership. Roles have no hierarchy.
func (s RoleSet) Has(role shared.Role) bool {
	_, ok := s[role]
	return ok
}

func (s RoleSet) String() string {
	names := make([]string, 0, len(s))
	for r := range s {
		names = append(names, string(r))
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}

// Policy declares who may perform one operation.
type Policy struct {
	Name  string
	Roles RoleSet
	// AllowOwner also admits the identity that owns the target record.
	AllowOwner bool
}

var anyRole = Roles(shared.RoleAdmin, shared.RoleStudent, shared.RoleMentor, shared.RoleSupervisor)

// Operation policies.
var (
	Authenticated = Policy{Name: "authenticated", Roles: anyRole}

	UsersManage = Policy{Name: "users.manage", Roles: Roles(shared.RoleAdmin)}

	SchoolsRead  = Policy{Name: "schools.read", Roles: anyRole}
	SchoolsWrite = Policy{Name: "schools.write", Roles: Roles(shared.RoleAdmin)}

	StudentsList   = Policy{Name: "students.list", Roles: Roles(shared.RoleAdmin, shared.RoleMentor, shared.RoleSupervisor)}
	StudentsRead   = Policy{Name: "students.read", Roles: Roles(shared.RoleAdmin, shared.RoleMentor, shared.RoleSupervisor), AllowOwner: true}
	StudentsUpdate = Policy{Name: "students.update", Roles: Roles(shared.RoleAdmin), AllowOwner: true}
	StudentsAssign = Policy{Name: "students.assign", Roles: Roles(shared.RoleAdmin)}

	PersonnelRead   = Policy{Name: "personnel.read", Roles: anyRole}
	PersonnelUpdate = Policy{Name: "personnel.update", Roles: Roles(shared.RoleAdmin), AllowOwner: true}

	// Submission policies cover practicum records and lesson plans.
	SubmissionsList     = Policy{Name: "submissions.list", Roles: anyRole}
	SubmissionsCreate   = Policy{Name: "submissions.create", Roles: Roles(shared.RoleStudent)}
	SubmissionsRead     = Policy{Name: "submissions.read", Roles: Roles(shared.RoleAdmin, shared.RoleMentor, shared.RoleSupervisor), AllowOwner: true}
	SubmissionsEdit     = Policy{Name: "submissions.edit", Roles: Roles(), AllowOwner: true}
	SubmissionsReview   = Policy{Name: "submissions.review", Roles: Roles(shared.RoleMentor, shared.RoleSupervisor)}
	SubmissionsFeedback = Policy{Name: "submissions.feedback", Roles: Roles(shared.RoleMentor, shared.RoleSupervisor)}
	SubmissionsDelete   = Policy{Name: "submissions.delete", Roles: Roles(shared.RoleAdmin), AllowOwner: true}

	EvaluationsList   = Policy{Name: "evaluations.list", Roles: anyRole}
	EvaluationsCreate = Policy{Name: "evaluations.create", Roles: Roles(shared.RoleAdmin, shared.RoleMentor, shared.RoleSupervisor)}
	EvaluationsRead   = Policy{Name: "evaluations.read", Roles: Roles(shared.RoleAdmin, shared.RoleMentor, shared.RoleSupervisor), AllowOwner: true}
	EvaluationsUpdate = Policy{Name: "evaluations.update", Roles: Roles(shared.RoleAdmin), AllowOwner: true}
	EvaluationsDelete = Policy{Name: "evaluations.delete", Roles: Roles(shared.RoleAdmin)}

	AnnouncementsCreate = Policy{Name: "announcements.create", Roles: Roles(shared.RoleAdmin, shared.RoleSupervisor)}
	AnnouncementsModify = Policy{Name: "announcements.modify", Roles: Roles(shared.RoleAdmin), AllowOwner: true}

	MessagesUse  = Policy{Name: "messages.use", Roles: anyRole}
	MessagesRead = Policy{Name: "messages.read", Roles: Roles(), AllowOwner: true}

	ReportsSummary      = Policy{Name: "reports.summary", Roles: Roles(shared.RoleAdmin, shared.RoleSupervisor)}
	ReportsStudentHours = Policy{Name: "reports.student_hours", Roles: Roles(shared.RoleAdmin, shared.RoleMentor, shared.RoleSupervisor), AllowOwner: true}

	OperationsMonitor = Policy{Name: "operations.monitor", Roles: Roles(shared.RoleAdmin)}
)
