package threadcontrol

import "time"

// pausePollInterval is how often StopIfPause re-checks WaitForResume while
// paused, mirroring the original's `while not wait_for_resume(1.0): pass`.
const pausePollInterval = time.Second

// CommandHandler offers StopIfPause (block while paused, return on resume or
// shutdown) and ManageLoop (same, but returns IsActive() so a worker loop can
// be written as `for handler.ManageLoop() { work() }`).
type CommandHandler struct {
	controller *ReadOnlyController
}

// NewCommandHandler attaches a handler to a read-only controller view.
func NewCommandHandler(controller *ReadOnlyController) *CommandHandler {
	return &CommandHandler{controller: controller}
}

// StopIfPause blocks while the controller reports paused, polling at
// pausePollInterval, returning once resumed or shut down.
func (h *CommandHandler) StopIfPause() {
	for !h.controller.WaitForResume(pausePollInterval) {
	}
}

// ManageLoop blocks while paused (via StopIfPause) then returns whether the
// system is still active, so a worker's run loop reads `for handler.ManageLoop() { ... }`.
func (h *CommandHandler) ManageLoop() bool {
	h.StopIfPause()
	return h.controller.IsActive()
}
