package rtc

import (
	"context"
	"time"

	"github.com/pion/rtp"
	"github.com/pion/sdp/v3"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog"
)

const (
	// Audio levels are -dBov, 0 is loudest and 127 silence.
	DefaultSpeakingThreshold uint8 = 50
	DefaultSpeakingHold            = 600 * time.Millisecond
)

// audioLevel extracts the RFC 6464 level from pkt. ok is false when the
// packet carries no such extension.
func audioLevel(pkt *rtp.Packet, extID uint8) (level uint8, ok bool) {
	if extID == 0 {
		return 0, false
	}
	raw := pkt.Header.GetExtension(extID)
	if raw == nil {
		return 0, false
	}
	var ext rtp.AudioLevelExtension
	if err := ext.Unmarshal(raw); err != nil {
		return 0, false
	}
	return ext.Level, true
}

func audioLevelExtensionID(receiver *webrtc.RTPReceiver) uint8 {
	if receiver == nil {
		return 0
	}
	for _, ext := range receiver.GetParameters().HeaderExtensions {
		if ext.URI == sdp.AudioLevelURI {
			return uint8(ext.ID)
		}
	}
	return 0
}

// speakingDetector turns a stream of levels into speaking edges. Speech
// starts on the first loud packet and ends once no loud packet arrived for
// the hold period.
type speakingDetector struct {
	threshold uint8
	hold      time.Duration

	speaking bool
	lastLoud time.Time
}

func (d *speakingDetector) observe(level uint8, at time.Time) (speaking, changed bool) {
	if level <= d.threshold {
		d.lastLoud = at
	}
	now := !d.lastLoud.IsZero() && at.Sub(d.lastLoud) < d.hold
	changed = now != d.speaking
	d.speaking = now
	return now, changed
}

// monitorTrack drains a remote track until it ends. Audio packets feed the
// speaking detector; onSpeaking runs on every edge.
func monitorTrack(
	ctx context.Context,
	track *webrtc.TrackRemote,
	receiver *webrtc.RTPReceiver,
	onSpeaking func(speaking bool),
	now func() time.Time,
	logger *zerolog.Logger,
) {
	extID := audioLevelExtensionID(receiver)
	det := speakingDetector{threshold: DefaultSpeakingThreshold, hold: DefaultSpeakingHold}
	isAudio := track.Kind() == webrtc.RTPCodecTypeAudio
	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("monitor ctx done")
			return
		default:
		}
		pkt, _, err := track.ReadRTP()
		if err != nil {
			logger.Debug().Err(err).Msg("monitor read RTP stopped")
			if isAudio && det.speaking {
				onSpeaking(false)
			}
			return
		}
		if !isAudio {
			continue
		}
		level, ok := audioLevel(pkt, extID)
		if !ok {
			continue
		}
		if speaking, changed := det.observe(level, now()); changed {
			onSpeaking(speaking)
		}
	}
}
