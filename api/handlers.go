/*
handlers.go - HTTP API handlers for the leave management system

PURPOSE:
  Exposes the leave engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Auth:
    POST   /api/auth/login             Exchange credentials for a token
    POST   /api/auth/password          Change own password
    GET    /api/auth/users             List user accounts (HR)
    POST   /api/auth/users             Create user account (HR)
    PUT    /api/auth/users/{id}/role   Change a user's role (HR)
    DELETE /api/auth/users/{id}        Delete a user account (HR)

  Employees:
    GET    /api/employees              List all employees
    POST   /api/employees              Create employee (HR)
    GET    /api/employees/{id}         Get employee details
    PUT    /api/employees/{id}/balance Set leave balance (HR)
    DELETE /api/employees/{id}         Delete employee (HR)
    GET    /api/employees/{id}/requests Requests for one employee
    POST   /api/employees/{id}/requests Submit a leave request

  Requests:
    GET    /api/requests               List requests, ?status= filter (HR)
    GET    /api/requests/pending       Pending queue (HR)
    GET    /api/requests/{id}          Get one request
    POST   /api/requests/{id}/approve  Approve (HR)
    POST   /api/requests/{id}/reject   Reject (HR)

  Dev:
    POST   /api/seed                   Load demo fixture (HR)

ERROR HANDLING:
  Domain errors map to HTTP status codes:
  - 400: Malformed input (dates, matricule, balance, unknown type)
  - 401: Missing/invalid credentials or token
  - 403: Caller lacks the HR role
  - 404: Employee, request or user not found
  - 409: Duplicates; decision on a non-pending request
  - 422: A leave rule rejected the request
  - 500: Storage failures

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - seed.go: Demo fixture loader
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/warp/leave-engine/auth"
	"github.com/warp/leave-engine/leave"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Leave  *leave.Service
	Auth   *auth.Service
	Tokens *TokenService
	Log    zerolog.Logger
}

func NewHandler(leaveSvc *leave.Service, authSvc *auth.Service, tokens *TokenService, log zerolog.Logger) *Handler {
	return &Handler{
		Leave:  leaveSvc,
		Auth:   authSvc,
		Tokens: tokens,
		Log:    log,
	}
}

// =============================================================================
// AUTH HANDLERS
// =============================================================================

// Login exchanges credentials for a signed access token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err)
		return
	}

	user, err := h.Auth.Authenticate(r.Context(), req.Login, req.Password)
	if err != nil {
		h.respondError(w, err, "Login failed")
		return
	}

	token, err := h.Tokens.Generate(user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to issue token", err)
		return
	}

	h.Log.Info().Str("login", user.Login).Str("role", string(user.Role)).Msg("user logged in")
	writeJSON(w, http.StatusOK, LoginResponse{Token: token, UserID: user.ID, Role: string(user.Role)})
}

// CreateUser registers a new user account.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err)
		return
	}

	id, err := h.Auth.CreateUser(r.Context(), req.Login, req.Password, auth.Role(req.Role))
	if err != nil {
		h.respondError(w, err, "Failed to create user")
		return
	}

	writeJSON(w, http.StatusCreated, UserDTO{ID: id, Login: req.Login, Role: req.Role})
}

// ListUsers returns all user accounts.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Auth.ListUsers(r.Context())
	if err != nil {
		h.respondError(w, err, "Failed to list users")
		return
	}

	dtos := make([]UserDTO, len(users))
	for i := range users {
		dtos[i] = toUserDTO(&users[i])
	}
	writeJSON(w, http.StatusOK, dtos)
}

// UpdateUserRole changes a user's role.
func (h *Handler) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err)
		return
	}

	if err := h.Auth.UpdateRole(r.Context(), id, auth.Role(req.Role)); err != nil {
		h.respondError(w, err, "Failed to update role")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"updated": true})
}

// DeleteUser removes a user account.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.Auth.DeleteUser(r.Context(), id); err != nil {
		h.respondError(w, err, "Failed to delete user")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
}

// ChangePassword updates the caller's own password.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	caller, ok := ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err)
		return
	}

	if err := h.Auth.ChangePassword(r.Context(), caller.UserID, req.OldPassword, req.NewPassword); err != nil {
		h.respondError(w, err, "Failed to change password")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"updated": true})
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns all employees.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Leave.ListEmployees(r.Context())
	if err != nil {
		h.respondError(w, err, "Failed to list employees")
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(&e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateEmployee registers a new employee record.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err)
		return
	}

	balance := -1 // service substitutes the default
	if req.Balance != "" {
		parsed, err := leave.ValidateBalance(req.Balance)
		if err != nil {
			h.respondError(w, err, "Invalid balance")
			return
		}
		balance = parsed
	}

	id, err := h.Leave.AddEmployee(r.Context(), req.Matricule, req.Name, req.Surname, req.Service, balance)
	if err != nil {
		h.respondError(w, err, "Failed to create employee")
		return
	}

	employee, err := h.Leave.EmployeeByID(r.Context(), id)
	if err != nil {
		h.respondError(w, err, "Failed to load employee")
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeDTO(employee))
}

// GetEmployee returns a single employee.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	employee, err := h.Leave.EmployeeByID(r.Context(), id)
	if err != nil {
		h.respondError(w, err, "Failed to get employee")
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(employee))
}

// SetBalance overwrites an employee's leave balance.
func (h *Handler) SetBalance(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateBalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err)
		return
	}

	balance, err := leave.ValidateBalance(req.Balance)
	if err != nil {
		h.respondError(w, err, "Invalid balance")
		return
	}

	if err := h.Leave.SetBalance(r.Context(), id, balance); err != nil {
		h.respondError(w, err, "Failed to update balance")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"updated": true, "balance": balance})
}

// DeleteEmployee removes an employee record.
func (h *Handler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.Leave.DeleteEmployee(r.Context(), id); err != nil {
		h.respondError(w, err, "Failed to delete employee")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
}

// =============================================================================
// LEAVE REQUEST HANDLERS
// =============================================================================

// SubmitRequest files a leave request for an employee.
func (h *Handler) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req SubmitRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err)
		return
	}

	id, err := h.Leave.SubmitRequest(r.Context(), employeeID, req.Start, req.End, req.Type, req.Comment, req.Motif)
	if err != nil {
		h.respondError(w, err, "Failed to submit request")
		return
	}

	h.Log.Info().Int64("request_id", id).Int64("employee_id", employeeID).
		Str("leave_type", req.Type).Msg("leave request submitted")
	writeJSON(w, http.StatusCreated, map[string]any{"id": id, "status": string(leave.StatusPending)})
}

// ListEmployeeRequests returns the request history for one employee.
func (h *Handler) ListEmployeeRequests(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	requests, err := h.Leave.RequestsByEmployee(r.Context(), employeeID)
	if err != nil {
		h.respondError(w, err, "Failed to list requests")
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTOs(requests))
}

// ListRequests returns all requests, optionally filtered by ?status=.
func (h *Handler) ListRequests(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")

	var (
		requests []leave.HydratedRequest
		err      error
	)
	if status == "" {
		requests, err = h.Leave.AllRequests(r.Context())
	} else {
		requests, err = h.Leave.RequestsByStatus(r.Context(), leave.Status(status))
	}
	if err != nil {
		h.respondError(w, err, "Failed to list requests")
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTOs(requests))
}

// ListPendingRequests returns the pending approval queue.
func (h *Handler) ListPendingRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.Leave.PendingRequests(r.Context())
	if err != nil {
		h.respondError(w, err, "Failed to list pending requests")
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTOs(requests))
}

// GetRequest returns a single request.
func (h *Handler) GetRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	row, err := h.Leave.RequestByID(r.Context(), id)
	if err != nil {
		h.respondError(w, err, "Failed to get request")
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTO(row))
}

// ApproveRequest approves a pending request and deducts the balance
// when the leave type consumes days.
func (h *Handler) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.Leave.ApproveRequest(r.Context(), id); err != nil {
		h.respondError(w, err, "Failed to approve request")
		return
	}

	h.Log.Info().Int64("request_id", id).Msg("leave request approved")
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "status": string(leave.StatusApproved)})
}

// RejectRequest rejects a pending request. The balance is untouched.
func (h *Handler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.Leave.RejectRequest(r.Context(), id); err != nil {
		h.respondError(w, err, "Failed to reject request")
		return
	}

	h.Log.Info().Int64("request_id", id).Msg("leave request rejected")
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "status": string(leave.StatusRejected)})
}

// =============================================================================
// DTO CONVERSION
// =============================================================================

func toUserDTO(u *auth.User) UserDTO {
	return UserDTO{ID: u.ID, Login: u.Login, Role: string(u.Role)}
}

func toEmployeeDTO(e *leave.Employee) EmployeeDTO {
	return EmployeeDTO{
		ID:        e.ID,
		Matricule: e.Matricule,
		Name:      e.Name,
		Surname:   e.Surname,
		Service:   e.Service,
		Balance:   e.Balance,
	}
}

func toRequestDTO(req *leave.HydratedRequest) RequestDTO {
	dto := RequestDTO{
		ID:         req.ID,
		EmployeeID: req.EmployeeID,
		Matricule:  req.Employee.Matricule,
		Employee:   req.Employee.Name + " " + req.Employee.Surname,
		Start:      req.Start.Format(leave.DateFormat),
		End:        req.End.Format(leave.DateFormat),
		Type:       req.Type,
		Status:     string(req.Request.Status),
		Comment:    req.Comment,
		Motif:      req.Motif,
	}
	if req.Rule != nil {
		dto.Days = req.Rule.Days()
	}
	return dto
}

func toRequestDTOs(requests []leave.HydratedRequest) []RequestDTO {
	dtos := make([]RequestDTO, len(requests))
	for i := range requests {
		dtos[i] = toRequestDTO(&requests[i])
	}
	return dtos
}

// =============================================================================
// HELPERS
// =============================================================================

func pathID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid id", err)
		return 0, false
	}
	return id, true
}

// respondError maps domain errors to HTTP status codes.
func (h *Handler) respondError(w http.ResponseWriter, err error, message string) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, leave.ErrInvalidFormat),
		errors.Is(err, leave.ErrInvalidPeriod),
		errors.Is(err, leave.ErrInvalidMatricule),
		errors.Is(err, leave.ErrInvalidBalance),
		errors.Is(err, leave.ErrUnknownLeaveType),
		errors.Is(err, auth.ErrInvalidRole),
		errors.Is(err, auth.ErrEmptyCredentials):
		status = http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, leave.ErrEmployeeNotFound),
		errors.Is(err, leave.ErrRequestNotFound),
		errors.Is(err, auth.ErrUserNotFound):
		status = http.StatusNotFound
	case errors.Is(err, leave.ErrDuplicateMatricule),
		errors.Is(err, auth.ErrDuplicateLogin),
		errors.Is(err, leave.ErrStatusNotPending):
		status = http.StatusConflict
	case errors.Is(err, leave.ErrRuleRejected):
		status = http.StatusUnprocessableEntity
	}

	if status == http.StatusInternalServerError {
		h.Log.Error().Err(err).Msg(message)
	}
	writeError(w, status, message, err)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
