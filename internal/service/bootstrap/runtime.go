package bootstrap

import (
	"context"
	"fmt"

	"github.com/oshokin/winget-bootstrap/internal/domain/provision"
	"github.com/oshokin/winget-bootstrap/internal/logger"
)

// runtimeInstaller drives the runtime install state machine:
//
//	NotNeeded                          (runtime present)
//	OfflineInstall        -> Installed | Failed
//	PrimaryRemoteInstall  -> Installed | FallbackRemoteInstall
//	FallbackRemoteInstall -> Installed | Failed
//
// Each remote endpoint is tried exactly once.
type runtimeInstaller struct {
	*sourceInstaller

	// policy enables the developer unlock flag before installing.
	policy Policy
	// processes closes running runtime instances before installing.
	processes ProcessTerminator
	// transitions records every state entered, in order.
	transitions []provision.RuntimeState
}

// Install runs the state machine to a terminal state. present tells whether the
// locator already found the runtime. The returned error is set only for StateFailed.
func (ri *runtimeInstaller) Install(ctx context.Context, a provision.Artifact, present bool) (provision.RuntimeState, error) {
	if present {
		ri.enter(ctx, provision.StateNotNeeded)
		return provision.StateNotNeeded, nil
	}

	ri.prepare(ctx)

	state := provision.StatePrimaryRemoteInstall
	if _, ok := ri.offlineSource(a); ok {
		state = provision.StateOfflineInstall
	}

	var err error

	ri.enter(ctx, state)

	for !state.Terminal() {
		state, err = ri.step(ctx, a, state)
		ri.enter(ctx, state)
	}

	return state, err
}

// Transitions returns the states entered by the last Install call.
func (ri *runtimeInstaller) Transitions() []provision.RuntimeState {
	return ri.transitions
}

// step performs the install attempt of state and returns the next state.
func (ri *runtimeInstaller) step(
	ctx context.Context,
	a provision.Artifact,
	state provision.RuntimeState,
) (provision.RuntimeState, error) {
	switch state {
	case provision.StateOfflineInstall:
		source, _ := ri.offlineSource(a)
		if err := ri.install(ctx, a, source); err != nil {
			return provision.StateFailed, fmt.Errorf("%w: %w", errOfflineRuntimeInstall, err)
		}

		return provision.StateInstalled, nil
	case provision.StatePrimaryRemoteInstall:
		if err := ri.install(ctx, a, provision.RemoteURL(a.URL)); err != nil {
			logger.WarnKV(ctx, "Primary runtime endpoint failed, trying the fallback endpoint",
				"url", a.URL, "error", err)

			return provision.StateFallbackRemoteInstall, nil
		}

		return provision.StateInstalled, nil
	case provision.StateFallbackRemoteInstall:
		if a.FallbackURL == "" {
			return provision.StateFailed, fmt.Errorf("%w: no fallback endpoint configured; %s",
				errRuntimeInstall, offlineHint)
		}

		if err := ri.install(ctx, a, provision.RemoteURL(a.FallbackURL)); err != nil {
			return provision.StateFailed, fmt.Errorf("%w: %w; %s", errRuntimeInstall, err, offlineHint)
		}

		return provision.StateInstalled, nil
	default:
		return provision.StateFailed, fmt.Errorf("%w: %s", errUnexpectedState, state)
	}
}

// prepare runs the best-effort steps that precede any runtime install attempt.
func (ri *runtimeInstaller) prepare(ctx context.Context) {
	if err := ri.policy.EnableDeveloperMode(ctx); err != nil {
		logger.WarnKV(ctx, "Could not enable developer mode, continuing", "error", err)
	} else {
		logger.Info(ctx, "Developer mode enabled")
	}

	killed, err := ri.processes.Terminate(ctx, RuntimeCommand)
	if err != nil {
		logger.WarnKV(ctx, "Could not close running runtime instances", "error", err)
	} else if killed > 0 {
		logger.InfoKV(ctx, "Closed running runtime instances", "count", killed)
	}
}

func (ri *runtimeInstaller) enter(ctx context.Context, state provision.RuntimeState) {
	ri.transitions = append(ri.transitions, state)
	logger.DebugKV(ctx, "Runtime install state", "state", state.String())
}
