package panel

import (
	"context"
)

// Action is one guarded backend call: validate the inputs, show progress,
// call, then render the outcome. Actions are built from a snapshot of the
// form, so the values validated are the values sent.
type Action struct {
	Name string
	// Validate returns a *model.ValidationError when inputs are missing.
	// Nil means the action needs no input.
	Validate func() error
	Progress string
	Call     func(ctx context.Context) error
	// Success is the status text after Call returns nil.
	Success string
	// Fallback is used when the server fails without an error message.
	Fallback string
	// OnSuccess runs under the controller lock after a successful call.
	OnSuccess func(c *Controller)
}

// Begin validates a and, if that passes, sets the progress status. A
// non-nil error means validation failed, the warning is already shown, and
// no call should be made.
func (c *Controller) Begin(a Action) error {
	if a.Validate != nil {
		if err := a.Validate(); err != nil {
			c.logger.Debug("action rejected", "action", a.Name, "reason", err)
			c.setStatus(warning(err.Error()))
			return err
		}
	}
	c.setStatus(progress(a.Progress))
	return nil
}

// Finish renders the result of a's call into the status line.
func (c *Controller) Finish(a Action, err error) {
	if err != nil {
		c.logger.Warn("action failed", "action", a.Name, "error", err)
		c.setStatus(failure(err, a.Fallback))
		return
	}
	c.logger.Debug("action succeeded", "action", a.Name)
	c.mu.Lock()
	if a.OnSuccess != nil {
		a.OnSuccess(c)
	}
	c.status = success(a.Success)
	c.mu.Unlock()
}

// Run drives a from validation through to its rendered outcome and returns
// the call's error, or the validation error if it never got that far.
func (c *Controller) Run(ctx context.Context, a Action) error {
	if err := c.Begin(a); err != nil {
		return err
	}
	err := a.Call(ctx)
	c.Finish(a, err)
	return err
}
