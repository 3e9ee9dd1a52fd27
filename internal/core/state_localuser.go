package core

import "github.com/dkeye/Composite/internal/domain"

type CameraOperationalStatus string

const (
	CameraOff     CameraOperationalStatus = "off"
	CameraOn      CameraOperationalStatus = "on"
	CameraPaused  CameraOperationalStatus = "paused"
	CameraPending CameraOperationalStatus = "pending"
	// CameraError is left only by a fresh on/off/preview trigger.
	CameraError CameraOperationalStatus = "error"
)

type CameraDeviceSelectionStatus string

const (
	CameraDeviceFront     CameraDeviceSelectionStatus = "front"
	CameraDeviceBack      CameraDeviceSelectionStatus = "back"
	CameraDeviceSwitching CameraDeviceSelectionStatus = "switching"
)

type CameraTransmissionStatus string

const (
	TransmissionLocal  CameraTransmissionStatus = "local"
	TransmissionRemote CameraTransmissionStatus = "remote"
)

type AudioOperationalStatus string

const (
	AudioOff     AudioOperationalStatus = "off"
	AudioOn      AudioOperationalStatus = "on"
	AudioPending AudioOperationalStatus = "pending"
)

type AudioDeviceSelectionStatus string

const (
	SpeakerSelected     AudioDeviceSelectionStatus = "speakerSelected"
	SpeakerRequested    AudioDeviceSelectionStatus = "speakerRequested"
	ReceiverSelected    AudioDeviceSelectionStatus = "receiverSelected"
	ReceiverRequested   AudioDeviceSelectionStatus = "receiverRequested"
	BluetoothSelected   AudioDeviceSelectionStatus = "bluetoothSelected"
	BluetoothRequested  AudioDeviceSelectionStatus = "bluetoothRequested"
	HeadphonesSelected  AudioDeviceSelectionStatus = "headphonesSelected"
	HeadphonesRequested AudioDeviceSelectionStatus = "headphonesRequested"
	AudioDeviceError    AudioDeviceSelectionStatus = "error"
)

// RequestedStatus returns the "<device>Requested" status for a device.
func RequestedStatus(d domain.AudioDeviceType) AudioDeviceSelectionStatus {
	switch d {
	case domain.AudioDeviceSpeaker:
		return SpeakerRequested
	case domain.AudioDeviceBluetooth:
		return BluetoothRequested
	case domain.AudioDeviceHeadphones:
		return HeadphonesRequested
	default:
		return ReceiverRequested
	}
}

// SelectedStatus returns the "<device>Selected" status for a device.
func SelectedStatus(d domain.AudioDeviceType) AudioDeviceSelectionStatus {
	switch d {
	case domain.AudioDeviceSpeaker:
		return SpeakerSelected
	case domain.AudioDeviceBluetooth:
		return BluetoothSelected
	case domain.AudioDeviceHeadphones:
		return HeadphonesSelected
	default:
		return ReceiverSelected
	}
}

// Requested reports the device a "<device>Requested" status asks for.
func (s AudioDeviceSelectionStatus) Requested() (domain.AudioDeviceType, bool) {
	switch s {
	case SpeakerRequested:
		return domain.AudioDeviceSpeaker, true
	case ReceiverRequested:
		return domain.AudioDeviceReceiver, true
	case BluetoothRequested:
		return domain.AudioDeviceBluetooth, true
	case HeadphonesRequested:
		return domain.AudioDeviceHeadphones, true
	}
	return "", false
}

// Selected reports the device of a "<device>Selected" status.
func (s AudioDeviceSelectionStatus) Selected() (domain.AudioDeviceType, bool) {
	switch s {
	case SpeakerSelected:
		return domain.AudioDeviceSpeaker, true
	case ReceiverSelected:
		return domain.AudioDeviceReceiver, true
	case BluetoothSelected:
		return domain.AudioDeviceBluetooth, true
	case HeadphonesSelected:
		return domain.AudioDeviceHeadphones, true
	}
	return "", false
}

type CameraState struct {
	Operation    CameraOperationalStatus     `json:"operation"`
	Device       CameraDeviceSelectionStatus `json:"device"`
	Transmission CameraTransmissionStatus    `json:"transmission"`
	Error        error                       `json:"-"`
}

type AudioState struct {
	Operation AudioOperationalStatus     `json:"operation"`
	Device    AudioDeviceSelectionStatus `json:"device"`
	Error     error                      `json:"-"`
}

type LocalUserState struct {
	CameraState                CameraState            `json:"cameraState"`
	AudioState                 AudioState             `json:"audioState"`
	DisplayName                string                 `json:"displayName,omitempty"`
	LocalVideoStreamIdentifier string                 `json:"localVideoStreamIdentifier,omitempty"`
	ParticipantRole            domain.ParticipantRole `json:"participantRole,omitempty"`
}

func NewLocalUserState() LocalUserState {
	return LocalUserState{
		CameraState: CameraState{
			Operation:    CameraOff,
			Device:       CameraDeviceFront,
			Transmission: TransmissionLocal,
		},
		AudioState: AudioState{
			Operation: AudioOff,
			Device:    ReceiverSelected,
		},
	}
}
