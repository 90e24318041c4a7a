package domain

import (
	"time"
)

// UserRole is the role carried in an access token.
type UserRole string

const (
	UserRoleAgencyAdmin UserRole = "agency_admin"
	UserRoleManager     UserRole = "manager"
	UserRoleStaff       UserRole = "staff"
)

type StaffRole string

const (
	StaffRoleNurse               StaffRole = "nurse"
	StaffRoleHealthcareAssistant StaffRole = "healthcare_assistant"
	StaffRoleSeniorCareWorker    StaffRole = "senior_care_worker"
	StaffRoleSupportWorker       StaffRole = "support_worker"
)

var StaffRoles = []StaffRole{
	StaffRoleNurse,
	StaffRoleHealthcareAssistant,
	StaffRoleSeniorCareWorker,
	StaffRoleSupportWorker,
}

type StaffStatus string

const (
	StaffStatusActive    StaffStatus = "active"
	StaffStatusInactive  StaffStatus = "inactive"
	StaffStatusSuspended StaffStatus = "suspended"
)

type Staff struct {
	ID        int64       `json:"id"`
	AgencyID  int64       `json:"agencyID"`
	UserID    *int64      `json:"userID"`
	FirstName string      `json:"firstName"`
	LastName  string      `json:"lastName"`
	Email     string      `json:"email"`
	Phone     string      `json:"phone"`
	Role      StaffRole   `json:"role"`
	Status    StaffStatus `json:"status"`
	CreatedAt time.Time   `json:"createdAt"`
	Version   int32       `json:"-"`
}

func (s *Staff) FullName() string {
	return s.FirstName + " " + s.LastName
}

func (s *Staff) IsActive() bool {
	return s.Status == StaffStatusActive
}

type Client struct {
	ID        int64     `json:"id"`
	AgencyID  int64     `json:"agencyID"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"createdAt"`
	Version   int32     `json:"-"`
}
