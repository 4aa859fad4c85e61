package service

import (
	"github.com/google/uuid"

	"github.com/smkdev-id/simagang-api/internal/models"
)

// Actor is the authenticated caller of a core operation, supplied by the
// identity provider through the token middleware. Services take it as an
// explicit parameter; there is no ambient request state.
type Actor struct {
	UserID uuid.UUID
	Role   models.Role
}

// Operation names a core operation gated by the access policy.
type Operation string

// Gated operations.
const (
	OpPlacementApply    Operation = "placement.apply"
	OpPlacementApprove  Operation = "placement.approve"
	OpPlacementComplete Operation = "placement.complete"
	OpPlacementCancel   Operation = "placement.cancel"
	OpPlacementScore    Operation = "placement.score"
	OpPlacementDelete   Operation = "placement.delete"
	OpPlacementRead     Operation = "placement.read"
	OpJournalSubmit     Operation = "journal.submit"
	OpJournalReview     Operation = "journal.review"
	OpJournalList       Operation = "journal.list"
	OpActivityRecord    Operation = "activity.record"
	OpActivityQuery     Operation = "activity.query"
	OpActivityManage    Operation = "activity.manage"
	OpDashboardView     Operation = "dashboard.view"
	OpCompanyRead       Operation = "company.read"
)

// Ownership carries the relationship between the actor and the entity an
// operation targets, for operations scoped to the owning student or the
// assigned supervisor.
type Ownership struct {
	IsOwner      bool
	IsSupervisor bool
}

// Can reports whether an actor role may invoke the operation. It is a pure
// function over the closed role and operation sets; every service method
// consults it before touching state and fails with ErrForbidden otherwise.
func Can(role models.Role, op Operation, own Ownership) bool {
	switch op {
	case OpPlacementApply:
		return role == models.RoleSiswa
	case OpPlacementApprove, OpPlacementDelete, OpActivityRecord, OpActivityQuery, OpActivityManage:
		return role == models.RoleAdmin
	case OpPlacementComplete, OpPlacementScore, OpJournalReview:
		return role == models.RoleGuru && own.IsSupervisor
	case OpPlacementCancel:
		return role == models.RoleAdmin || (role == models.RoleGuru && own.IsSupervisor)
	case OpJournalSubmit:
		return role == models.RoleSiswa && own.IsOwner
	case OpPlacementRead:
		switch role {
		case models.RoleAdmin:
			return true
		case models.RoleGuru:
			return own.IsSupervisor
		case models.RoleSiswa:
			return own.IsOwner
		}
		return false
	case OpJournalList, OpDashboardView, OpCompanyRead:
		return role.Valid()
	}
	return false
}
