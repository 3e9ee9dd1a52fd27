package domain

import (
	"errors"
	"fmt"
)

// InternalError is the normalized kind of a failure inside the composite.
type InternalError string

const (
	InternalErrorNone             InternalError = ""
	CallTokenFailed               InternalError = "callTokenFailed"
	CallJoinFailed                InternalError = "callJoinFailed"
	CallJoinConnectionFailed      InternalError = "callJoinConnectionFailed"
	CallJoinFailedByMicPermission InternalError = "callJoinFailedByMicPermission"
	CallEndFailed                 InternalError = "callEndFailed"
	CallHoldFailed                InternalError = "callHoldFailed"
	CallResumeFailed              InternalError = "callResumeFailed"
	CallEvicted                   InternalError = "callEvicted"
	CallDenied                    InternalError = "callDenied"
	CameraOnFailed                InternalError = "cameraOnFailed"
	CameraOffFailed               InternalError = "cameraOffFailed"
	CameraPauseFailed             InternalError = "cameraPauseFailed"
	CameraSwitchFailed            InternalError = "cameraSwitchFailed"
	MicrophoneOnFailed            InternalError = "microphoneOnFailed"
	MicrophoneOffFailed           InternalError = "microphoneOffFailed"
	AudioDeviceSwitchFailed       InternalError = "audioDeviceSwitchFailed"
	DeviceManagerFailed           InternalError = "deviceManagerFailed"
	NetworkConnectionNotAvailable InternalError = "networkConnectionNotAvailable"
)

func (e InternalError) Error() string { return string(e) }

func (e InternalError) Code() string { return string(e) }

func (e InternalError) IsFatal() bool {
	switch e {
	case DeviceManagerFailed,
		CallTokenFailed,
		CallJoinFailed,
		CallJoinFailedByMicPermission,
		NetworkConnectionNotAvailable,
		CallEndFailed:
		return true
	}
	return false
}

// ErrorCode reports whether the kind is surfaced to the host and with which code.
func (e InternalError) ErrorCode() (ErrorCode, bool) {
	switch e {
	case DeviceManagerFailed, CameraOnFailed, CameraOffFailed, CameraPauseFailed:
		return ErrorCodeCameraFailure, true
	case CallTokenFailed:
		return ErrorCodeTokenExpired, true
	case CallJoinFailed, CallJoinConnectionFailed:
		return ErrorCodeCallJoin, true
	case CallEndFailed:
		return ErrorCodeCallEnd, true
	case CallJoinFailedByMicPermission:
		return ErrorCodeMicrophonePermissionNotGranted, true
	case NetworkConnectionNotAvailable:
		return ErrorCodeNetworkConnectionNotAvailable, true
	case MicrophoneOnFailed, MicrophoneOffFailed:
		return ErrorCodeMicrophoneFailure, true
	case AudioDeviceSwitchFailed:
		return ErrorCodeAudioDeviceFailure, true
	}
	return "", false
}

// ErrorCode is the stable string hosting applications key their UI off.
type ErrorCode string

const (
	ErrorCodeNone                           ErrorCode = ""
	ErrorCodeCallJoin                       ErrorCode = "callJoin"
	ErrorCodeCallEnd                        ErrorCode = "callEnd"
	ErrorCodeTokenExpired                   ErrorCode = "tokenExpired"
	ErrorCodeCameraFailure                  ErrorCode = "cameraFailure"
	ErrorCodeMicrophoneFailure              ErrorCode = "microphoneFailure"
	ErrorCodeAudioDeviceFailure             ErrorCode = "audioDeviceFailure"
	ErrorCodeMicrophonePermissionNotGranted ErrorCode = "microphonePermissionNotGranted"
	ErrorCodeNetworkConnectionNotAvailable  ErrorCode = "networkConnectionNotAvailable"

	// Internal-only end reasons, never handed to the host as-is.
	ErrorCodeCallEvicted ErrorCode = "callEvicted"
	ErrorCodeCallDenied  ErrorCode = "callDenied"
)

// InternalError maps an end-reason code back into the internal taxonomy.
func (c ErrorCode) InternalError() InternalError {
	switch c {
	case ErrorCodeTokenExpired:
		return CallTokenFailed
	case ErrorCodeCallJoin:
		return CallJoinFailed
	case ErrorCodeCallEnd:
		return CallEndFailed
	case ErrorCodeCallEvicted:
		return CallEvicted
	case ErrorCodeCallDenied:
		return CallDenied
	case ErrorCodeNetworkConnectionNotAvailable:
		return NetworkConnectionNotAvailable
	}
	return InternalErrorNone
}

// CompositeError is what the host's events handler receives.
type CompositeError struct {
	Code ErrorCode `json:"code"`
	Err  error     `json:"-"`
}

func (e CompositeError) Error() string {
	if e.Err == nil {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %v", e.Code, e.Err)
}

func (e CompositeError) Unwrap() error { return e.Err }

// FailureError wraps a platform error behind a normalized kind.
type FailureError struct {
	Kind  InternalError
	Cause error
}

func NewFailure(kind InternalError, cause error) error {
	return &FailureError{Kind: kind, Cause: cause}
}

func (e *FailureError) Error() string {
	if e.Cause == nil {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
}

func (e *FailureError) Unwrap() error { return e.Cause }

func (e *FailureError) Code() string { return string(e.Kind) }

const unknownCode = "unknown"

// CodeOf returns the stable code used to compare errors carried by actions.
func CodeOf(err error) string {
	if err == nil {
		return ""
	}
	var coded interface{ Code() string }
	if errors.As(err, &coded) {
		return coded.Code()
	}
	return unknownCode
}
