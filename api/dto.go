/*
dto.go - Request/response data structures for the REST API

PURPOSE:
  Defines the JSON shapes exchanged with clients, separate from the
  domain types. Dates cross the wire as YYYY-MM-DD strings; balances
  are whole days.

SEE ALSO:
  - handlers.go: Where these are populated
*/
package api

// ErrorResponse is the JSON body returned on any error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// AUTH
// =============================================================================

type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token  string `json:"token"`
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
}

type CreateUserRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type UpdateRoleRequest struct {
	Role string `json:"role"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// UserDTO never carries the password.
type UserDTO struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
	Role  string `json:"role"`
}

// =============================================================================
// EMPLOYEES
// =============================================================================

type CreateEmployeeRequest struct {
	Matricule string `json:"matricule"`
	Name      string `json:"name"`
	Surname   string `json:"surname"`
	Service   string `json:"service"`
	// Balance is optional; empty means the default starting balance.
	Balance string `json:"balance,omitempty"`
}

type UpdateBalanceRequest struct {
	Balance string `json:"balance"`
}

type EmployeeDTO struct {
	ID        int64  `json:"id"`
	Matricule string `json:"matricule"`
	Name      string `json:"name"`
	Surname   string `json:"surname"`
	Service   string `json:"service"`
	Balance   int    `json:"balance"`
}

// =============================================================================
// LEAVE REQUESTS
// =============================================================================

type SubmitRequestRequest struct {
	Start   string `json:"start_date"`
	End     string `json:"end_date"`
	Type    string `json:"type"`
	Comment string `json:"comment,omitempty"`
	Motif   string `json:"motif,omitempty"`
}

type RequestDTO struct {
	ID         int64  `json:"id"`
	EmployeeID int64  `json:"employee_id"`
	Matricule  string `json:"matricule"`
	Employee   string `json:"employee"`
	Start      string `json:"start_date"`
	End        string `json:"end_date"`
	Type       string `json:"type"`
	Status     string `json:"status"`
	Days       int    `json:"days"`
	Comment    string `json:"comment,omitempty"`
	Motif      string `json:"motif,omitempty"`
}
