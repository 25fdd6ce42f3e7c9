// Package flow runs one authorization code redemption: catch the redirect,
// exchange the code with the provider, then log into the backend.
package flow

import (
	"context"
	"errors"
	"fmt"

	"github.com/brizzai/swagger-token/internal/auth/providers"
	"github.com/brizzai/swagger-token/internal/backend"
	"github.com/brizzai/swagger-token/internal/browser"
	"github.com/brizzai/swagger-token/internal/callback"
	"github.com/brizzai/swagger-token/internal/config"
	"github.com/brizzai/swagger-token/internal/logger"
	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Params holds the dependencies of a Flow
type Params struct {
	fx.In

	Config    *config.CallbackConfig
	Provider  providers.Provider
	Backend   backend.LoginClient
	Browser   browser.Launcher
	Listeners callback.Factory
	Observer  Observer `optional:"true"`
}

// Result is the outcome of a successful run
type Result struct {
	ServiceToken string
	RefreshToken string
	NewUser      *bool
	StatusCode   int
	Login        *backend.LoginResult
}

// Flow sequences the redemption. It holds no per-run state, so Run may be
// called repeatedly and every call is independent.
type Flow struct {
	cfg       *config.CallbackConfig
	provider  providers.Provider
	backend   backend.LoginClient
	browser   browser.Launcher
	listeners callback.Factory
	observer  Observer
}

func New(p Params) *Flow {
	observer := p.Observer
	if observer == nil {
		observer = nopObserver{}
	}
	return &Flow{
		cfg:       p.Config,
		provider:  p.Provider,
		backend:   p.Backend,
		browser:   p.Browser,
		listeners: p.Listeners,
		observer:  observer,
	}
}

// Run performs one redemption. Every step is attempted exactly once; any
// failure is returned as *Error.
func (f *Flow) Run(ctx context.Context) (*Result, error) {
	r := &run{
		flow: f,
		log:  logger.With(zap.String("provider", f.provider.Name())),
	}
	return r.execute(ctx)
}

// run carries the state of a single Run call
type run struct {
	flow  *Flow
	log   *zap.Logger
	state State
}

func (r *run) enter(state State, detail string) {
	r.log.Debug("flow state", zap.Stringer("from", r.state), zap.Stringer("to", state))
	r.state = state
	r.flow.observer.OnState(state, detail)
}

func (r *run) fail(kind, cause error) error {
	err := &Error{State: r.state, Kind: kind, Err: cause}
	r.log.Error("flow failed", zap.Stringer("state", r.state), zap.Error(err))
	r.enter(StateFailed, err.Error())
	return err
}

func (r *run) execute(ctx context.Context) (*Result, error) {
	f := r.flow

	r.enter(StateListenerStarting, f.cfg.Addr())
	receiver := f.listeners()
	if err := receiver.Start(); err != nil {
		return nil, r.fail(ErrBind, err)
	}
	defer func() { _ = receiver.Close() }()

	var state string
	if f.cfg.StateCheck {
		state = uuid.NewString()
	}
	authURL := f.provider.GetAuthURL(state)

	// Start returned, so the listener is bound before the browser is pointed at it
	r.enter(StateWaitingForRedirect, authURL)
	if err := f.browser.Open(authURL); err != nil {
		f.observer.OnBrowserError(authURL, err)
	}

	res, err := r.wait(ctx, receiver)
	if err != nil {
		return nil, err
	}
	if res.Code == "" {
		return nil, r.fail(ErrNoCodeReceived, providerError(res))
	}
	if state != "" && res.State != state {
		return nil, r.fail(ErrStateMismatch, fmt.Errorf("expected %q, got %q", state, res.State))
	}
	r.enter(StateCodeCaptured, "")

	r.enter(StateExchangingToken, "")
	providerToken, err := f.provider.ExchangeCode(ctx, res.Code)
	if err != nil {
		return nil, r.fail(ErrExchange, err)
	}
	if providerToken == "" {
		return nil, r.fail(ErrExchange, providers.ErrEmptyAccessToken)
	}

	r.enter(StateLoggingIntoBackend, "")
	resp, err := f.backend.SocialLogin(ctx, f.provider.Name(), providerToken)
	if err != nil {
		return nil, r.fail(ErrBackend, &BackendError{ProviderToken: providerToken, Err: err})
	}
	serviceToken := resp.Result.GetAccessToken()
	if !resp.Success() || serviceToken == "" {
		return nil, r.fail(ErrBackend, &BackendError{
			StatusCode:    resp.StatusCode,
			Result:        resp.Result,
			ProviderToken: providerToken,
		})
	}

	r.enter(StateDone, "")
	return &Result{
		ServiceToken: serviceToken,
		RefreshToken: resp.Result.GetRefreshToken(),
		NewUser:      resp.Result.GetNewUser(),
		StatusCode:   resp.StatusCode,
		Login:        resp.Result,
	}, nil
}

// wait blocks for the redirect, bounded by the configured timeout if any
func (r *run) wait(ctx context.Context, receiver callback.Receiver) (callback.Result, error) {
	waitCtx := ctx
	if timeout := r.flow.cfg.Timeout; timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	res, err := receiver.Wait(waitCtx)
	if err == nil {
		return res, nil
	}
	if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		return res, r.fail(ErrTimeout, fmt.Errorf("no redirect within %s", r.flow.cfg.Timeout))
	}
	return res, r.fail(ErrNoCodeReceived, err)
}

// providerError explains a redirect without a code, nil when there is nothing to say
func providerError(res callback.Result) error {
	switch {
	case res.Error != "" && res.ErrorDescription != "":
		return fmt.Errorf("provider returned %s: %s", res.Error, res.ErrorDescription)
	case res.Error != "":
		return fmt.Errorf("provider returned %s", res.Error)
	default:
		return nil
	}
}
