package core

import (
	"maps"
	"time"

	"github.com/dkeye/Composite/internal/domain"
)

// AppState is the root snapshot. It is a plain aggregate of slices and is
// always replaced wholesale by the store.
type AppState struct {
	CallingState            CallingState            `json:"callingState"`
	LocalUserState          LocalUserState          `json:"localUserState"`
	DefaultUserState        DefaultUserState        `json:"defaultUserState"`
	PermissionState         PermissionState         `json:"permissionState"`
	LifeCycleState          LifeCycleState          `json:"lifeCycleState"`
	AudioSessionState       AudioSessionState       `json:"audioSessionState"`
	NavigationState         NavigationState         `json:"navigationState"`
	ErrorState              ErrorState              `json:"errorState"`
	RemoteParticipantsState RemoteParticipantsState `json:"remoteParticipantsState"`
	DiagnosticsState        DiagnosticsState        `json:"diagnosticsState"`
	CaptionsState           CaptionsState           `json:"captionsState"`
	RttState                RttState                `json:"rttState"`
	ToastState              ToastState              `json:"toastState"`
	ButtonViewDataState     ButtonViewDataState     `json:"buttonViewDataState"`
}

// InitialOptions seeds the first snapshot of a composite.
type InitialOptions struct {
	DisplayName           string
	StartWithCameraOn     bool
	StartWithMicrophoneOn bool
	SkipSetup             bool
	Role                  domain.ParticipantRole
	HiddenButtons         []Button
}

func NewAppState(opts InitialOptions) AppState {
	local := NewLocalUserState()
	local.DisplayName = opts.DisplayName
	local.ParticipantRole = opts.Role

	calling := CallingState{Status: domain.CallingStatusNone}
	nav := NavigationState{Status: NavigationSetup}
	if opts.SkipSetup {
		calling.OperationStatus = OperationSkipSetupRequested
		nav.Status = NavigationInCall
	}

	buttons := NewButtonViewDataState()
	for _, b := range opts.HiddenButtons {
		buttons = buttons.with(b, func(s ButtonState) ButtonState {
			s.Visible = false
			return s
		})
	}

	return AppState{
		CallingState:        calling,
		LocalUserState:      local,
		DefaultUserState:    DefaultUserState{CameraOn: opts.StartWithCameraOn, MicrophoneOn: opts.StartWithMicrophoneOn},
		PermissionState:     PermissionState{AudioPermission: PermissionNotAsked, CameraPermission: PermissionNotAsked},
		LifeCycleState:      LifeCycleState{CurrentStatus: AppForeground},
		AudioSessionState:   AudioSessionState{Status: AudioSessionActive},
		NavigationState:     nav,
		ErrorState:          ErrorState{ErrorCategory: ErrorCategoryNone},
		DiagnosticsState:    DiagnosticsState{NetworkQuality: domain.NetworkQualityGood},
		CaptionsState:       CaptionsState{Status: CaptionsOff},
		ButtonViewDataState: buttons,
	}
}

// OperationStatus marks how the call was entered.
type OperationStatus string

const (
	OperationNone               OperationStatus = "none"
	OperationSkipSetupRequested OperationStatus = "skipSetupRequested"
)

// DefaultUserState holds the device preferences the composite was launched
// with. They become preview intents once the composite starts; the live
// operation state only changes when the engine reports back.
type DefaultUserState struct {
	CameraOn     bool `json:"cameraOn"`
	MicrophoneOn bool `json:"microphoneOn"`
}

type CallingState struct {
	Status                domain.CallingStatus `json:"status"`
	OperationStatus       OperationStatus      `json:"operationStatus,omitempty"`
	IsRecordingActive     bool                 `json:"isRecordingActive"`
	IsTranscriptionActive bool                 `json:"isTranscriptionActive"`
	CallID                string               `json:"callId,omitempty"`
	CallStartDate         time.Time            `json:"callStartDate,omitzero"`
}

type PermissionStatus string

const (
	PermissionNotAsked   PermissionStatus = "notAsked"
	PermissionRequesting PermissionStatus = "requesting"
	PermissionGranted    PermissionStatus = "granted"
	PermissionDenied     PermissionStatus = "denied"
)

type PermissionState struct {
	AudioPermission  PermissionStatus `json:"audioPermission"`
	CameraPermission PermissionStatus `json:"cameraPermission"`
}

type AppStatus string

const (
	AppForeground AppStatus = "foreground"
	AppBackground AppStatus = "background"
)

type LifeCycleState struct {
	CurrentStatus AppStatus `json:"currentStatus"`
}

type AudioSessionStatus string

const (
	AudioSessionActive      AudioSessionStatus = "active"
	AudioSessionInterrupted AudioSessionStatus = "interrupted"
)

type AudioSessionState struct {
	Status AudioSessionStatus `json:"status"`
}

type NavigationStatus string

const (
	NavigationSetup    NavigationStatus = "setup"
	NavigationInCall   NavigationStatus = "inCall"
	NavigationInChat   NavigationStatus = "inChat"
	NavigationHeadless NavigationStatus = "headless"
	NavigationExit     NavigationStatus = "exit"
)

type NavigationState struct {
	Status                     NavigationStatus             `json:"status"`
	SupportFormVisible         bool                         `json:"supportFormVisible"`
	SupportShareSheetVisible   bool                         `json:"supportShareSheetVisible"`
	EndCallConfirmationVisible bool                         `json:"endCallConfirmationVisible"`
	AudioSelectionVisible      bool                         `json:"audioSelectionVisible"`
	MoreOptionsVisible         bool                         `json:"moreOptionsVisible"`
	ParticipantsVisible        bool                         `json:"participantsVisible"`
	ParticipantActionsVisible  bool                         `json:"participantActionsVisible"`
	SelectedParticipant        *domain.ParticipantInfoModel `json:"selectedParticipant,omitempty"`
}

// DrawerVisible reports whether any overlay is shown.
func (n NavigationState) DrawerVisible() bool {
	return n.SupportFormVisible || n.SupportShareSheetVisible || n.EndCallConfirmationVisible ||
		n.AudioSelectionVisible || n.MoreOptionsVisible || n.ParticipantsVisible || n.ParticipantActionsVisible
}

type ErrorCategory string

const (
	ErrorCategoryNone      ErrorCategory = "none"
	ErrorCategoryFatal     ErrorCategory = "fatal"
	ErrorCategoryCallState ErrorCategory = "callState"
)

type ErrorState struct {
	InternalError domain.InternalError `json:"internalError,omitempty"`
	Error         error                `json:"-"`
	ErrorCategory ErrorCategory        `json:"errorCategory"`
}

type RemoteParticipantsState struct {
	ParticipantInfoList []domain.ParticipantInfoModel `json:"participantInfoList"`
	// LastUpdateTimeStamp changes on every roster replacement. Consumers
	// treat an unchanged stamp as "no new roster".
	LastUpdateTimeStamp time.Time `json:"lastUpdateTimeStamp"`

	DominantSpeakers                  []string  `json:"dominantSpeakers,omitempty"`
	DominantSpeakersModifiedTimestamp time.Time `json:"dominantSpeakersModifiedTimestamp,omitzero"`
}

// Participant looks a remote participant up by identifier.
func (r RemoteParticipantsState) Participant(id string) (domain.ParticipantInfoModel, bool) {
	for _, p := range r.ParticipantInfoList {
		if p.UserIdentifier == id {
			return p, true
		}
	}
	return domain.ParticipantInfoModel{}, false
}

type DiagnosticsState struct {
	NetworkQuality domain.NetworkQuality    `json:"networkQuality"`
	Active         []domain.MediaDiagnostic `json:"active,omitempty"`
}

type CaptionsStatus string

const (
	CaptionsOff      CaptionsStatus = "off"
	CaptionsStarting CaptionsStatus = "starting"
	CaptionsOn       CaptionsStatus = "on"
	CaptionsFailure  CaptionsStatus = "failed"
)

// MaxCaptionEntries bounds the caption and real-time text history kept in state.
const MaxCaptionEntries = 50

type Caption struct {
	SpeakerID   string    `json:"speakerId"`
	SpeakerName string    `json:"speakerName"`
	Text        string    `json:"text"`
	IsFinal     bool      `json:"isFinal"`
	At          time.Time `json:"at"`
}

func (c Caption) equal(o Caption) bool {
	return c.SpeakerID == o.SpeakerID && c.SpeakerName == o.SpeakerName &&
		c.Text == o.Text && c.IsFinal == o.IsFinal && c.At.Equal(o.At)
}

type CaptionsState struct {
	Status  CaptionsStatus `json:"status"`
	Entries []Caption      `json:"entries,omitempty"`
	Error   error          `json:"-"`
}

type RttMessage struct {
	SenderID string    `json:"senderId"`
	Text     string    `json:"text"`
	IsFinal  bool      `json:"isFinal"`
	IsLocal  bool      `json:"isLocal"`
	At       time.Time `json:"at"`
}

func (m RttMessage) equal(o RttMessage) bool {
	return m.SenderID == o.SenderID && m.Text == o.Text &&
		m.IsFinal == o.IsFinal && m.IsLocal == o.IsLocal && m.At.Equal(o.At)
}

type RttState struct {
	Messages []RttMessage `json:"messages,omitempty"`
}

type ToastKind string

const (
	ToastInfo    ToastKind = "info"
	ToastWarning ToastKind = "warning"
	ToastError   ToastKind = "error"
)

type ToastNotification struct {
	Kind    ToastKind `json:"kind"`
	Message string    `json:"message"`
}

type ToastState struct {
	Notification *ToastNotification `json:"notification,omitempty"`
}

type Button string

const (
	ButtonCamera       Button = "camera"
	ButtonMicrophone   Button = "microphone"
	ButtonAudioDevice  Button = "audioDevice"
	ButtonParticipants Button = "participants"
	ButtonMoreOptions  Button = "moreOptions"
	ButtonEndCall      Button = "endCall"
	ButtonCaptions     Button = "captions"
)

var allButtons = []Button{
	ButtonCamera, ButtonMicrophone, ButtonAudioDevice, ButtonParticipants,
	ButtonMoreOptions, ButtonEndCall, ButtonCaptions,
}

type ButtonState struct {
	Visible bool `json:"visible"`
	Enabled bool `json:"enabled"`
}

type ButtonViewDataState struct {
	Buttons map[Button]ButtonState `json:"buttons"`
}

func NewButtonViewDataState() ButtonViewDataState {
	m := make(map[Button]ButtonState, len(allButtons))
	for _, b := range allButtons {
		m[b] = ButtonState{Visible: true, Enabled: true}
	}
	return ButtonViewDataState{Buttons: m}
}

// with returns a copy with one button changed; the receiver's map is not touched.
func (s ButtonViewDataState) with(b Button, fn func(ButtonState) ButtonState) ButtonViewDataState {
	next := maps.Clone(s.Buttons)
	if next == nil {
		next = make(map[Button]ButtonState, 1)
	}
	cur, ok := next[b]
	if !ok {
		cur = ButtonState{Visible: true, Enabled: true}
	}
	next[b] = fn(cur)
	return ButtonViewDataState{Buttons: next}
}
