package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"fleetops/internal/domain"
	"fleetops/internal/tenant"
)

// Validator is the pure predicate stage. It must not touch any repository;
// multiple failures are coalesced into one space-joined message.
type Validator interface {
	Validate() error
}

// Authorizer decides whether the principal may issue the request. It runs
// after validation and before execution; a denial short-circuits execution.
type Authorizer func(p domain.ContextPrincipal, req any) error

// Handler is the effectful execution stage, bound to the resolved tenant
// scope. All data access goes through repositories constructed from the
// scope or its units of work.
type Handler[Req, Res any] func(ctx context.Context, scope *tenant.Scope, req Req) (Res, error)

// Pipeline resolves the tenant scope and runs requests through
// validate → authorize → execute, normalizing every failure.
type Pipeline struct {
	resolver  *tenant.Resolver
	authorize Authorizer
	logger    *slog.Logger
}

// New creates a pipeline. authorize may be nil when no delegated
// authorization step applies.
func New(resolver *tenant.Resolver, authorize Authorizer, logger *slog.Logger) *Pipeline {
	return &Pipeline{resolver: resolver, authorize: authorize, logger: logger}
}

const internalFailure = "an internal error occurred while handling the request"

// Run takes a request through the pipeline on behalf of the principal in
// ctx. The request's tenant is the principal's tenant; resolution failure,
// validation failure, and authorization denial each abort before execution.
// A cancelled context aborts promptly and never commits.
func Run[Req, Res any](ctx context.Context, p *Pipeline, req Req, handle Handler[Req, Res]) Result[Res] {
	principal, ok := domain.PrincipalFromContext(ctx)
	if !ok {
		return Fail[Res]("authentication required")
	}

	if err := ctx.Err(); err != nil {
		return Fail[Res]("request cancelled")
	}

	scope, err := p.resolver.Resolve(ctx, principal.TenantID)
	if err != nil {
		return failFrom[Res](p, err)
	}

	// Validation runs strictly before any data access.
	if v, ok := any(req).(Validator); ok {
		if err := v.Validate(); err != nil {
			return Fail[Res](err.Error())
		}
	}

	if p.authorize != nil {
		if err := p.authorize(principal, req); err != nil {
			return failFrom[Res](p, err)
		}
	}

	if err := ctx.Err(); err != nil {
		return Fail[Res]("request cancelled")
	}

	return execute(ctx, p, scope, req, handle)
}

// execute runs the handler with panic containment. A handler panic is
// converted to a generic failure result before crossing the boundary.
func execute[Req, Res any](ctx context.Context, p *Pipeline, scope *tenant.Scope, req Req, handle Handler[Req, Res]) (result Result[Res]) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("handler panic", "tenant", scope.Tenant().ID, "panic", r)
			result = Fail[Res](internalFailure)
		}
	}()

	res, err := handle(ctx, scope, req)
	if err != nil {
		return failFrom[Res](p, err)
	}
	return OK(res)
}

// failFrom normalizes an error into a failure result. Typed domain errors
// surface their message verbatim; anything else becomes a generic failure
// and is logged.
func failFrom[Res any](p *Pipeline, err error) Result[Res] {
	var (
		notFound   *domain.NotFoundError
		validation *domain.ValidationError
		denied     *domain.AccessDeniedError
		conflict   *domain.ConflictError
		persist    *domain.PersistenceError
	)
	switch {
	case errors.As(err, &notFound),
		errors.As(err, &validation),
		errors.As(err, &denied),
		errors.As(err, &conflict),
		errors.As(err, &persist):
		return Fail[Res](err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return Fail[Res]("request cancelled")
	default:
		p.logger.Error("unexpected handler error", "error", err)
		return Fail[Res](internalFailure)
	}
}
