package resolution

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/intake-engine/internal/domain"
)

// ExecutionStatus is the result state of an automated action.
type ExecutionStatus string

const (
	ExecutionSuccess ExecutionStatus = "success"
	ExecutionFailed  ExecutionStatus = "failed"
)

// Requester identifies who the action runs for.
type Requester struct {
	ID    string
	Email string
	Name  string
}

// ExecutionResult describes what an action did.
type ExecutionResult struct {
	ActionType string            `json:"action_type"`
	Status     ExecutionStatus   `json:"status"`
	Message    string            `json:"message"`
	Details    map[string]string `json:"details,omitempty"`
}

// Succeeded reports whether the action completed.
func (r ExecutionResult) Succeeded() bool {
	return r.Status == ExecutionSuccess
}

type actionHandler func(ctx context.Context, action domain.AutomatedAction, who Requester) ExecutionResult

// Executor dispatches automated actions to their handlers. The handlers
// acknowledge and log the request; the directory, VPN and mail backends
// that would carry them out sit outside this service.
type Executor struct {
	handlers map[string]actionHandler
	logger   *zap.Logger
}

// NewExecutor registers the built-in handlers.
func NewExecutor(logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Executor{logger: logger.Named("automation")}
	e.handlers = map[string]actionHandler{
		"password_reset":    e.passwordReset,
		"unlock_account":    e.unlockAccount,
		"vpn_reconnect":     e.vpnReconnect,
		"email_quota_check": e.emailQuotaCheck,
		"restart_service":   e.restartService,
	}
	return e
}

// Supports reports whether actionType has a handler.
func (e *Executor) Supports(actionType string) bool {
	_, ok := e.handlers[actionType]
	return ok
}

// Execute runs action for who. It never returns an error; failures are
// reported through the result status.
func (e *Executor) Execute(ctx context.Context, action domain.AutomatedAction, who Requester) ExecutionResult {
	handler, ok := e.handlers[action.ActionType]
	if !ok {
		e.logger.Warn("no handler for automated action", zap.String("action_type", action.ActionType))
		return ExecutionResult{
			ActionType: action.ActionType,
			Status:     ExecutionFailed,
			Message:    fmt.Sprintf("No handler found for action type: %s", action.ActionType),
		}
	}
	if err := ctx.Err(); err != nil {
		return ExecutionResult{ActionType: action.ActionType, Status: ExecutionFailed, Message: err.Error()}
	}

	result := handler(ctx, action, who)
	result.ActionType = action.ActionType
	if result.Succeeded() && action.SuccessMessage != "" {
		result.Message = action.SuccessMessage
	}
	if !result.Succeeded() && action.FailureMessage != "" {
		result.Message = action.FailureMessage
	}

	e.logger.Info("automated action executed",
		zap.String("action_type", action.ActionType),
		zap.String("status", string(result.Status)),
		zap.String("requester", who.ID),
	)
	return result
}

func (e *Executor) passwordReset(_ context.Context, _ domain.AutomatedAction, who Requester) ExecutionResult {
	if who.Email == "" || who.Email == domain.UnknownUserEmail {
		return ExecutionResult{Status: ExecutionFailed, Message: "Cannot reset password: no user email provided"}
	}
	return ExecutionResult{
		Status:  ExecutionSuccess,
		Message: fmt.Sprintf("Password reset initiated for %s. Temporary password sent via email.", who.Email),
		Details: map[string]string{"email": who.Email},
	}
}

func (e *Executor) unlockAccount(_ context.Context, _ domain.AutomatedAction, who Requester) ExecutionResult {
	return ExecutionResult{
		Status:  ExecutionSuccess,
		Message: "Account unlock initiated. User should try logging in after 5 minutes.",
		Details: map[string]string{"user_id": who.ID},
	}
}

func (e *Executor) vpnReconnect(context.Context, domain.AutomatedAction, Requester) ExecutionResult {
	return ExecutionResult{
		Status:  ExecutionSuccess,
		Message: "VPN troubleshooting steps initiated. User will receive updated connection profile.",
		Details: map[string]string{"server_status_checked": "true"},
	}
}

func (e *Executor) emailQuotaCheck(context.Context, domain.AutomatedAction, Requester) ExecutionResult {
	return ExecutionResult{
		Status:  ExecutionSuccess,
		Message: "Email quota checked. Cleanup recommendations sent to user.",
	}
}

func (e *Executor) restartService(_ context.Context, action domain.AutomatedAction, _ Requester) ExecutionResult {
	service := action.Parameters["service_name"]
	if service == "" {
		service = "unknown"
	}
	return ExecutionResult{
		Status:  ExecutionSuccess,
		Message: fmt.Sprintf("Service '%s' restart initiated.", service),
		Details: map[string]string{"service_name": service},
	}
}
