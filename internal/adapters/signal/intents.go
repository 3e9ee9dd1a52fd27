package signal

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dkeye/Composite/internal/core"
	"github.com/dkeye/Composite/internal/domain"
)

var (
	ErrUnknownIntent = errors.New("unknown intent")
	ErrBadPayload    = errors.New("bad payload")
)

// Envelope is the wire form of an intent. Type is the action name; the
// remaining fields are used by the intents that need them.
type Envelope struct {
	Type    string `json:"type"`
	Device  string `json:"device,omitempty"`
	Name    string `json:"name,omitempty"`
	Text    string `json:"text,omitempty"`
	Status  string `json:"status,omitempty"`
	Button  string `json:"button,omitempty"`
	Visible *bool  `json:"visible,omitempty"`
	Enabled *bool  `json:"enabled,omitempty"`
}

var simpleIntents = map[string]core.Action{}

func init() {
	for _, a := range []core.Action{
		core.CallStartRequested{}, core.CallEndRequested{}, core.SetupCall{}, core.DismissSetup{},
		core.CallingViewLaunched{}, core.HoldRequested{}, core.ResumeRequested{},
		core.CameraPreviewOnTriggered{}, core.CameraOnTriggered{}, core.CameraOffTriggered{},
		core.CameraSwitchTriggered{},
		core.MicrophoneOnTriggered{}, core.MicrophoneOffTriggered{},
		core.MicrophonePreviewOn{}, core.MicrophonePreviewOff{},
		core.ForegroundEntered{}, core.BackgroundEntered{},
		core.AudioPermissionGranted{}, core.AudioPermissionDenied{},
		core.CameraPermissionGranted{}, core.CameraPermissionDenied{},
		core.ShowEndCallConfirmation{}, core.ShowAudioSelection{}, core.ShowMoreOptions{},
		core.ShowSupportForm{}, core.ShowSupportShare{}, core.ShowParticipants{}, core.HideDrawer{},
		core.CaptionsStartRequested{}, core.ToastDismissed{},
		core.ChatViewLaunched{}, core.ChatViewHeadless{}, core.CompositeExit{},
	} {
		simpleIntents[core.Name(a)] = a
	}
}

// DecodeIntent turns a wire intent into the action it names.
func DecodeIntent(data []byte) (core.Action, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	return env.Action()
}

func (env Envelope) Action() (core.Action, error) {
	if a, ok := simpleIntents[env.Type]; ok {
		return a, nil
	}
	switch env.Type {
	case "AudioDeviceChangeRequested":
		d, ok := domain.ParseAudioDevice(env.Device)
		if !ok {
			return nil, fmt.Errorf("%w: audio device %q", ErrBadPayload, env.Device)
		}
		return core.AudioDeviceChangeRequested{Device: d}, nil
	case "DisplayNameUpdated":
		name, err := domain.NormalizeDisplayName(env.Name)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBadPayload, err)
		}
		return core.DisplayNameUpdated{Name: name}, nil
	case "RttSendRequested":
		if env.Text == "" {
			return nil, fmt.Errorf("%w: empty text", ErrBadPayload)
		}
		return core.RttSendRequested{Text: env.Text}, nil
	case "StateUpdated":
		return core.StateUpdated{Status: domain.ParseCallingStatus(env.Status)}, nil
	case "ButtonVisibilityUpdated":
		if env.Button == "" || env.Visible == nil {
			return nil, fmt.Errorf("%w: button and visible are required", ErrBadPayload)
		}
		return core.ButtonVisibilityUpdated{Button: core.Button(env.Button), Visible: *env.Visible}, nil
	case "ButtonEnabledUpdated":
		if env.Button == "" || env.Enabled == nil {
			return nil, fmt.Errorf("%w: button and enabled are required", ErrBadPayload)
		}
		return core.ButtonEnabledUpdated{Button: core.Button(env.Button), Enabled: *env.Enabled}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownIntent, env.Type)
}
