package domain

import "time"

type JourneyMethod string

const (
	MethodAdminAssigned        JourneyMethod = "admin_assigned"
	MethodAdminConfirmed       JourneyMethod = "admin_confirmed"
	MethodStaffConfirmed       JourneyMethod = "staff_confirmed"
	MethodBulkCSVImport        JourneyMethod = "bulk_csv_import"
	MethodAdminUnassigned      JourneyMethod = "admin_unassigned"
	MethodAdminReassigned      JourneyMethod = "admin_reassigned"
	MethodAdminCancelled       JourneyMethod = "admin_cancelled"
	MethodAdminNoShow          JourneyMethod = "admin_no_show"
	MethodAdminDisputed        JourneyMethod = "admin_disputed"
	MethodAdminDisputeReverted JourneyMethod = "admin_dispute_reverted"
	MethodAdminClosure         JourneyMethod = "admin_closure"
	MethodAutomated            JourneyMethod = "automated"
)

// JourneyEntry is one row of a shift's append-only audit trail. Seq and
// RecordedAt are assigned by the store on append.
type JourneyEntry struct {
	ShiftID    int64         `json:"shiftID"`
	Seq        int32         `json:"seq"`
	State      ShiftStatus   `json:"state"`
	RecordedAt time.Time     `json:"recordedAt"`
	ActorID    *int64        `json:"actorID"`
	StaffID    *int64        `json:"staffID"`
	Method     JourneyMethod `json:"method"`
	Notes      string        `json:"notes"`
}
