package nucleus

import (
	"context"
	"log/slog"

	"github.com/roach88/nucleus/internal/action"
	"github.com/roach88/nucleus/internal/engine"
	"github.com/roach88/nucleus/internal/ir"
	"github.com/roach88/nucleus/internal/runtime"
	"github.com/roach88/nucleus/internal/state"
)

// ValidateEntry runs the application's validation of entry against data.
// The future fails with the ribosome's error, a ValidationFailed carrying
// the application's reason for rejected entries.
func ValidateEntry(ctx context.Context, rc *runtime.Context, entry ir.Entry, data ir.ValidationData) *engine.Future[struct{}] {
	requestID := rc.Engine().NewRequestID()
	fut := engine.NewFuture(rc.Engine(), func(s *state.State) engine.Poll[struct{}] {
		result := s.Nucleus().ValidationResult(requestID)
		if result == nil {
			return engine.Pending[struct{}]()
		}
		if _, err := result.Unwrap(); err != nil {
			return engine.Failed[struct{}](err)
		}
		return engine.Ready(struct{}{})
	}).OnLatch(func(engine.Poll[struct{}]) {
		rc.Engine().Dispatch(action.ForgetValidation{RequestID: requestID})
	})

	slog.Debug("validating entry",
		"request_id", requestID,
		"entry_type", entry.Type,
		"lifecycle", data.Lifecycle,
	)
	err := rc.Pool().Submit(ctx, func(jobCtx context.Context) {
		err := rc.Ribosome().ValidateEntry(jobCtx, entry, data)
		rc.Engine().Dispatch(action.ReturnValidationResult{RequestID: requestID, Err: ir.AsError(err)})
	})
	if err != nil {
		rc.Engine().Dispatch(action.ReturnValidationResult{RequestID: requestID, Err: ir.AsError(err)})
	}
	return fut
}
