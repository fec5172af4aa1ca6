package engine

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/nathoo/prologot/types"
)

// fail stores err as the last error, prefixed with the operation, and
// presents it according to the on-error policy.
func (e *Engine) fail(op string, err error) {
	e.lastErr = fmt.Errorf("%s: %w", op, err)
	e.present(types.SeverityError, e.lastErr)
}

// warn stores a warning in the last-error slot and presents it according to
// the on-warning policy.
func (e *Engine) warn(op, msg string) {
	e.lastErr = fmt.Errorf("%s: %s", op, msg)
	e.present(types.SeverityWarning, e.lastErr)
}

func (e *Engine) present(sev types.Severity, err error) {
	policy := e.cfg.OnError
	log := e.logger.Error
	if sev == types.SeverityWarning {
		policy = e.cfg.OnWarning
		log = e.logger.Warn
	}
	switch policy {
	case types.PolicyStatus:
	case types.PolicyHalt:
		// The host process is never terminated from here.
		log(err.Error(), zap.String("policy", string(policy)), zap.Bool("halted", false))
	default:
		log(err.Error())
	}
}
