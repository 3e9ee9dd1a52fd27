package domain

type CallingStatus string

const (
	CallingStatusNone          CallingStatus = "none"
	CallingStatusEarlyMedia    CallingStatus = "earlyMedia"
	CallingStatusConnecting    CallingStatus = "connecting"
	CallingStatusRinging       CallingStatus = "ringing"
	CallingStatusConnected     CallingStatus = "connected"
	CallingStatusLocalHold     CallingStatus = "localHold"
	CallingStatusRemoteHold    CallingStatus = "remoteHold"
	CallingStatusInLobby       CallingStatus = "inLobby"
	CallingStatusDisconnecting CallingStatus = "disconnecting"
	CallingStatusDisconnected  CallingStatus = "disconnected"
)

var callingStatuses = map[string]CallingStatus{
	string(CallingStatusNone):          CallingStatusNone,
	string(CallingStatusEarlyMedia):    CallingStatusEarlyMedia,
	string(CallingStatusConnecting):    CallingStatusConnecting,
	string(CallingStatusRinging):       CallingStatusRinging,
	string(CallingStatusConnected):     CallingStatusConnected,
	string(CallingStatusLocalHold):     CallingStatusLocalHold,
	string(CallingStatusRemoteHold):    CallingStatusRemoteHold,
	string(CallingStatusInLobby):       CallingStatusInLobby,
	string(CallingStatusDisconnecting): CallingStatusDisconnecting,
	string(CallingStatusDisconnected):  CallingStatusDisconnected,
}

// ParseCallingStatus maps an engine status string; unknown values become none.
func ParseCallingStatus(s string) CallingStatus {
	if st, ok := callingStatuses[s]; ok {
		return st
	}
	return CallingStatusNone
}

type AudioDeviceType string

const (
	AudioDeviceSpeaker    AudioDeviceType = "speaker"
	AudioDeviceReceiver   AudioDeviceType = "receiver"
	AudioDeviceBluetooth  AudioDeviceType = "bluetooth"
	AudioDeviceHeadphones AudioDeviceType = "headphones"
)

func ParseAudioDevice(s string) (AudioDeviceType, bool) {
	switch d := AudioDeviceType(s); d {
	case AudioDeviceSpeaker, AudioDeviceReceiver, AudioDeviceBluetooth, AudioDeviceHeadphones:
		return d, true
	}
	return "", false
}

type CameraDevice string

const (
	CameraFront CameraDevice = "front"
	CameraBack  CameraDevice = "back"
)

type ParticipantRole string

const (
	RoleUnknown   ParticipantRole = ""
	RoleAttendee  ParticipantRole = "attendee"
	RolePresenter ParticipantRole = "presenter"
	RoleOrganizer ParticipantRole = "organizer"
	RoleConsumer  ParticipantRole = "consumer"
)

type NetworkQuality string

const (
	NetworkQualityGood NetworkQuality = "good"
	NetworkQualityPoor NetworkQuality = "poor"
	NetworkQualityBad  NetworkQuality = "bad"
)

type MediaDiagnostic string

const (
	DiagnosticSpeakerNotFunctioning    MediaDiagnostic = "speakerNotFunctioning"
	DiagnosticSpeakerMuted             MediaDiagnostic = "speakerMuted"
	DiagnosticMicrophoneNotFunctioning MediaDiagnostic = "microphoneNotFunctioning"
	DiagnosticMicrophoneMutedUnexpect  MediaDiagnostic = "microphoneMutedUnexpectedly"
	DiagnosticCameraFrozen             MediaDiagnostic = "cameraFrozen"
	DiagnosticNetworkReconnecting      MediaDiagnostic = "networkReconnectionQuality"
)
