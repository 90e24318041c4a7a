package handler

type ContextKey string

var (
	RoleCtxKey    ContextKey = "role"
	SubCtxKey     ContextKey = "sub"
	AgencyCtxKey  ContextKey = "agency"
	MyStaffCtx    ContextKey = "myStaff"
	StaffInfoCtx  ContextKey = "staffInfo"
	ClientInfoCtx ContextKey = "clientInfo"
	ShiftCtx      ContextKey = "shift"
)
