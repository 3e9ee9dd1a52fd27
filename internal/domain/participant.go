package domain

import "time"

type ParticipantStatus string

const (
	ParticipantStatusUnknown      ParticipantStatus = ""
	ParticipantStatusIdle         ParticipantStatus = "idle"
	ParticipantStatusConnecting   ParticipantStatus = "connecting"
	ParticipantStatusRinging      ParticipantStatus = "ringing"
	ParticipantStatusConnected    ParticipantStatus = "connected"
	ParticipantStatusHold         ParticipantStatus = "hold"
	ParticipantStatusInLobby      ParticipantStatus = "inLobby"
	ParticipantStatusDisconnected ParticipantStatus = "disconnected"
)

type MediaStreamType string

const (
	MediaStreamCameraVideo   MediaStreamType = "cameraVideo"
	MediaStreamScreenSharing MediaStreamType = "screenSharing"
)

type VideoStreamInfoModel struct {
	VideoStreamIdentifier string          `json:"videoStreamIdentifier"`
	MediaStreamType       MediaStreamType `json:"mediaStreamType"`
}

// ParticipantInfoModel is one remote participant as last reported by the
// calling engine. Values are replaced wholesale on every roster push.
type ParticipantInfoModel struct {
	UserIdentifier              string                `json:"userIdentifier"`
	DisplayName                 string                `json:"displayName"`
	IsSpeaking                  bool                  `json:"isSpeaking"`
	IsMuted                     bool                  `json:"isMuted"`
	IsRemoteUser                bool                  `json:"isRemoteUser"`
	RecentSpeakingStamp         time.Time             `json:"recentSpeakingStamp"`
	Status                      ParticipantStatus     `json:"status,omitempty"`
	ScreenShareVideoStreamModel *VideoStreamInfoModel `json:"screenShareVideoStreamModel,omitempty"`
	CameraVideoStreamModel      *VideoStreamInfoModel `json:"cameraVideoStreamModel,omitempty"`
}

func (p ParticipantInfoModel) IsScreenSharing() bool {
	return p.ScreenShareVideoStreamModel != nil
}

// VideoStream returns the stream a cell should render: screen share wins over camera.
func (p ParticipantInfoModel) VideoStream() *VideoStreamInfoModel {
	if p.ScreenShareVideoStreamModel != nil {
		return p.ScreenShareVideoStreamModel
	}
	return p.CameraVideoStreamModel
}

func (p ParticipantInfoModel) Equal(o ParticipantInfoModel) bool {
	return p.UserIdentifier == o.UserIdentifier &&
		p.DisplayName == o.DisplayName &&
		p.IsSpeaking == o.IsSpeaking &&
		p.IsMuted == o.IsMuted &&
		p.IsRemoteUser == o.IsRemoteUser &&
		p.RecentSpeakingStamp.Equal(o.RecentSpeakingStamp) &&
		p.Status == o.Status &&
		streamEqual(p.ScreenShareVideoStreamModel, o.ScreenShareVideoStreamModel) &&
		streamEqual(p.CameraVideoStreamModel, o.CameraVideoStreamModel)
}

func streamEqual(a, b *VideoStreamInfoModel) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// ParticipantViewData is host-supplied presentation data for a participant.
type ParticipantViewData struct {
	DisplayName string `json:"displayName,omitempty"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
}
