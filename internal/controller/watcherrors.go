package controller

import (
	"sync"
	"time"

	"github.com/go-logr/logr"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	toolscache "k8s.io/client-go/tools/cache"
)

// WatchAction is what the manager's watch loop should do in response to a
// classified watch error (spec §4.8).
type WatchAction string

const (
	WatchActionLogAndWait     WatchAction = "LogAndWait"
	WatchActionTolerate       WatchAction = "Tolerate"
	WatchActionRestart        WatchAction = "Restart"
	WatchActionBackoffRestart WatchAction = "BackoffRestart"
)

// WatchBackoffFloor/Ceiling bound the 429 backoff ladder for watch restarts.
const (
	WatchBackoffFloor   = time.Second
	WatchBackoffCeiling = 30 * time.Second
)

// ClassifyWatchError maps a watch error to the action the controller
// runtime should take: 401 waits and logs (credentials likely rotating),
// 404 is tolerated (object raced with deletion), 410 forces a watch
// restart (resourceVersion too old), 429 restarts with exponential
// backoff, anything else restarts unconditionally.
func ClassifyWatchError(err error) WatchAction {
	switch {
	case apierrors.IsUnauthorized(err):
		return WatchActionLogAndWait
	case apierrors.IsNotFound(err):
		return WatchActionTolerate
	case apierrors.IsResourceExpired(err):
		return WatchActionRestart
	case apierrors.IsTooManyRequests(err):
		return WatchActionBackoffRestart
	default:
		return WatchActionRestart
	}
}

// NextWatchBackoff computes the next exponential backoff delay for a
// BackoffRestart action, clamped to WatchBackoffCeiling.
func NextWatchBackoff(previous time.Duration) time.Duration {
	if previous <= 0 {
		return WatchBackoffFloor
	}
	next := previous * 2
	if next > WatchBackoffCeiling {
		return WatchBackoffCeiling
	}
	return next
}

// watchBackoffTracker remembers the last BackoffRestart delay per reflector
// name, so repeated 429s from the same watch keep climbing the ladder
// instead of restarting the delay at the floor on every call.
type watchBackoffTracker struct {
	mu    sync.Mutex
	delay map[string]time.Duration
}

// NewWatchErrorHandler builds a client-go watch-error handler that applies
// ClassifyWatchError/NextWatchBackoff (spec §4.8) to every dropped watch
// connection the manager's cache reflectors report, logging at a severity
// matching the classified action and sleeping out a BackoffRestart before
// letting the reflector's own restart loop take over.
func NewWatchErrorHandler(log logr.Logger) toolscache.WatchErrorHandler {
	tracker := &watchBackoffTracker{delay: make(map[string]time.Duration)}
	return func(r *toolscache.Reflector, err error) {
		name := r.Name()
		action := ClassifyWatchError(err)
		switch action {
		case WatchActionLogAndWait:
			log.Info("watch unauthorized, waiting for credential rotation", "reflector", name, "error", err)
		case WatchActionTolerate:
			log.V(1).Info("watch object not found, tolerating", "reflector", name, "error", err)
		case WatchActionRestart:
			log.Info("watch expired or failed, restarting", "reflector", name, "error", err)
			tracker.mu.Lock()
			delete(tracker.delay, name)
			tracker.mu.Unlock()
		case WatchActionBackoffRestart:
			tracker.mu.Lock()
			delay := NextWatchBackoff(tracker.delay[name])
			tracker.delay[name] = delay
			tracker.mu.Unlock()
			log.Info("watch rate-limited, backing off before restart", "reflector", name, "delay", delay, "error", err)
			time.Sleep(delay)
		}
	}
}
