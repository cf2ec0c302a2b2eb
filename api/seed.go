/*
seed.go - Demo fixture loader for testing and demonstrations

PURPOSE:
  Populates the store with a small realistic data set: a handful of
  employees and a mix of requests across the leave types, some already
  decided and some pending. Useful for demos and manual API testing.

NOTE:
  The fixture does not reset existing data; loading it twice fails on
  the duplicate matricules. Only use in development environments.

SEE ALSO:
  - server.go: POST /api/seed route (HR only)
*/
package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/warp/leave-engine/leave"
)

type seedEmployee struct {
	matricule string
	name      string
	surname   string
	service   string
	balance   int
}

type seedRequest struct {
	matricule string
	start     string
	end       string
	leaveType string
	motif     string
	approve   bool
	decided   bool
}

var seedEmployees = []seedEmployee{
	{"EMP001", "Alice", "Martin", "Engineering", -1},
	{"EMP002", "Bruno", "Keller", "Engineering", 10},
	{"EMP003", "Chloe", "Durand", "Finance", -1},
	{"EMP004", "David", "Osei", "Operations", 2},
}

var seedRequests = []seedRequest{
	// Approved annual leave, balance already deducted on approval.
	{"EMP001", "2026-07-06", "2026-07-10", leave.TypeAnnual, "", true, true},
	// Rejected annual leave, balance untouched.
	{"EMP002", "2026-08-03", "2026-08-07", leave.TypeAnnual, "", false, true},
	// Sick leave long enough to require a justification document.
	{"EMP003", "2026-03-02", "2026-03-06", leave.TypeSick, "", true, true},
	// Pending queue.
	{"EMP001", "2026-09-14", "2026-09-15", leave.TypeAnnual, "", false, false},
	{"EMP003", "2026-10-05", "2026-10-08", leave.TypeExceptional, "marriage", false, false},
	{"EMP004", "2026-11-02", "2026-11-06", leave.TypeUnpaid, "", false, false},
}

// LoadSeed populates the store with the demo fixture.
func (h *Handler) LoadSeed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ids := make(map[string]int64, len(seedEmployees))
	for _, e := range seedEmployees {
		id, err := h.Leave.AddEmployee(ctx, e.matricule, e.name, e.surname, e.service, e.balance)
		if err != nil {
			h.respondError(w, err, fmt.Sprintf("Failed to seed employee %s", e.matricule))
			return
		}
		ids[e.matricule] = id
	}

	requests := 0
	for _, req := range seedRequests {
		if err := h.seedRequest(ctx, ids[req.matricule], req); err != nil {
			h.respondError(w, err, "Failed to seed leave request")
			return
		}
		requests++
	}

	h.Log.Info().Int("employees", len(ids)).Int("requests", requests).Msg("demo fixture loaded")
	writeJSON(w, http.StatusOK, map[string]any{
		"employees": len(ids),
		"requests":  requests,
	})
}

func (h *Handler) seedRequest(ctx context.Context, employeeID int64, req seedRequest) error {
	id, err := h.Leave.SubmitRequest(ctx, employeeID, req.start, req.end, req.leaveType, "", req.motif)
	if err != nil {
		return err
	}
	if !req.decided {
		return nil
	}
	if req.approve {
		return h.Leave.ApproveRequest(ctx, id)
	}
	return h.Leave.RejectRequest(ctx, id)
}
