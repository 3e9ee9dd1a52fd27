package core

import (
	"time"

	"github.com/rs/zerolog/log"
)

// LoggingMiddleware logs every action before it reaches the reducer.
// Failures are logged at warn level, everything else at debug.
func LoggingMiddleware() Middleware {
	lg := log.With().Str("module", "core.middleware").Logger()
	return func(api MiddlewareAPI) func(Dispatcher) Dispatcher {
		return func(next Dispatcher) Dispatcher {
			return func(action Action) {
				if err := actionError(action); err != nil {
					lg.Warn().Err(err).Str("action", Name(action)).Msg("dispatch")
				} else {
					lg.Debug().Str("action", Name(action)).Msg("dispatch")
				}
				next(action)
			}
		}
	}
}

func actionError(action Action) error {
	switch a := action.(type) {
	case FatalErrorUpdated:
		return a.InternalError
	case StatusErrorAndCallReset:
		return a.InternalError
	case CameraOnFailed:
		return a.Err
	case CameraOffFailed:
		return a.Err
	case CameraPausedFailed:
		return a.Err
	case CameraSwitchFailed:
		return a.Err
	case MicrophoneOnFailed:
		return a.Err
	case MicrophoneOffFailed:
		return a.Err
	case AudioDeviceChangeFailed:
		return a.Err
	case CaptionsFailed:
		return a.Err
	}
	return nil
}

// DefaultThrottleWindow is long enough for a drawer animation to finish.
const DefaultThrottleWindow = 300 * time.Millisecond

// ThrottleKey groups actions that share one throttle window. Actions for
// which ok is false pass through untouched.
type ThrottleKey func(Action) (key string, ok bool)

// DrawerThrottleKey throttles the overlay toggles users tend to tap repeatedly.
func DrawerThrottleKey(action Action) (string, bool) {
	switch action.(type) {
	case ShowSupportForm:
		return "SupportFormDrawer", true
	case ShowMoreOptions:
		return "MoreOptionsDrawer", true
	case ShowAudioSelection:
		return "AudioSelectionDrawer", true
	case ShowEndCallConfirmation:
		return "EndCallDrawer", true
	case ShowSupportShare:
		return "SupportShareDrawer", true
	case HideDrawer:
		return "HideDrawer", true
	}
	return "", false
}

// ThrottleMiddleware drops an action when another with the same key passed
// less than window ago.
func ThrottleMiddleware(window time.Duration, key ThrottleKey) Middleware {
	return throttleMiddleware(window, key, time.Now)
}

func throttleMiddleware(window time.Duration, key ThrottleKey, now func() time.Time) Middleware {
	return func(api MiddlewareAPI) func(Dispatcher) Dispatcher {
		// Only touched from the store goroutine.
		last := make(map[string]time.Time)
		lg := log.With().Str("module", "core.throttle").Logger()
		return func(next Dispatcher) Dispatcher {
			return func(action Action) {
				k, ok := key(action)
				if !ok {
					next(action)
					return
				}
				t := now()
				if prev, seen := last[k]; seen && t.Sub(prev) < window {
					lg.Debug().Str("action", Name(action)).Str("key", k).Msg("throttled")
					return
				}
				last[k] = t
				next(action)
			}
		}
	}
}
