package api

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/okian/dutyrota/internal/domain/types"
)

// AllocationDependencies defines the interface for running allocations.
type AllocationDependencies interface {
	Allocate(ctx context.Context, req types.AllocateRequest) (types.Allocation, error)
}

// AllocationHandler handles allocation requests.
type AllocationHandler struct {
	deps AllocationDependencies
}

// NewAllocationHandler creates a new allocation handler.
func NewAllocationHandler(deps AllocationDependencies) *AllocationHandler {
	return &AllocationHandler{deps: deps}
}

// HandlePostAllocation handles POST /allocations. An empty body means
// nobody is absent. A replayed request_id answers 200 instead of 201.
func (h *AllocationHandler) HandlePostAllocation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}

	var req types.AllocateRequest
	if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeServiceError(w, err)
		return
	}
	if req.RequestID == "" {
		req.RequestID = r.Header.Get("Idempotency-Key")
	}

	alloc, err := h.deps.Allocate(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	status := http.StatusCreated
	if alloc.Replayed {
		status = http.StatusOK
	}
	writeJSON(w, status, alloc)
}
