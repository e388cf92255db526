// Package streaming talks to the streaming-avatar provider. It shapes the
// loosely typed start request coming from the browser into the provider's
// strict payload and folds the provider's varying response shapes into a
// single Session.
package streaming

import (
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Fixed parts of every new-session payload.
const (
	PayloadVersion       = "v2"
	PayloadVideoEncoding = "H264"
	PayloadSource        = "sdk"

	DefaultSTTProvider   = "deepgram"
	DefaultSTTConfidence = 0.55

	// LiveKitTransport is the voiceChatTransport value that selects LiveKit.
	LiveKitTransport = "LIVEKIT"
)

// StartRequest is the session configuration sent by the client. Every
// field is optional on the wire; BuildSessionPayload decides which ones
// are required. The last three fields are kept raw because clients send
// them as strings, numbers or booleans interchangeably.
type StartRequest struct {
	AvatarName          *string         `json:"avatarName,omitempty"`
	AvatarID            *string         `json:"avatar_id,omitempty"`
	Quality             *string         `json:"quality,omitempty"`
	Voice               *VoiceSettings  `json:"voice,omitempty"`
	KnowledgeID         *string         `json:"knowledgeId,omitempty"`
	KnowledgeBase       *string         `json:"knowledgeBase,omitempty"`
	STTSettings         *STTSettings    `json:"sttSettings,omitempty"`
	Language            *string         `json:"language,omitempty"`
	VoiceChatTransport  json.RawMessage `json:"voiceChatTransport,omitempty"`
	UseSilencePrompt    json.RawMessage `json:"useSilencePrompt,omitempty"`
	ActivityIdleTimeout json.RawMessage `json:"activityIdleTimeout,omitempty"`
}

type VoiceSettings struct {
	VoiceID            *string         `json:"voiceId,omitempty"`
	Rate               *float64        `json:"rate,omitempty"`
	Emotion            *string         `json:"emotion,omitempty"`
	ElevenLabsSettings json.RawMessage `json:"elevenlabsSettings,omitempty"`
}

type STTSettings struct {
	Provider   *string  `json:"provider,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// SessionPayload is the body of the provider's new-session call. Optional
// members are omitted, never sent as null or empty.
type SessionPayload struct {
	Version             string        `json:"version"`
	VideoEncoding       string        `json:"video_encoding"`
	Source              string        `json:"source"`
	AvatarName          string        `json:"avatar_name"`
	Quality             string        `json:"quality"`
	Voice               *VoicePayload `json:"voice,omitempty"`
	KnowledgeBaseID     string        `json:"knowledge_base_id,omitempty"`
	KnowledgeBase       string        `json:"knowledge_base,omitempty"`
	STTSettings         *STTPayload   `json:"stt_settings,omitempty"`
	Language            string        `json:"language,omitempty"`
	LiveKitTransport    *bool         `json:"ia_is_livekit_transport,omitempty"`
	SilenceResponse     *bool         `json:"silence_response,omitempty"`
	ActivityIdleTimeout *float64      `json:"activity_idle_timeout,omitempty"`
}

type VoicePayload struct {
	VoiceID            string          `json:"voice_id,omitempty"`
	Rate               *float64        `json:"rate,omitempty"`
	Emotion            string          `json:"emotion,omitempty"`
	ElevenLabsSettings json.RawMessage `json:"elevenlabs_settings,omitempty"`
}

type STTPayload struct {
	Provider   string  `json:"provider"`
	Confidence float64 `json:"confidence"`
}

// BuildSessionPayload maps a start request onto the provider payload.
//
// It performs no I/O. A missing avatar (avatarName, falling back to
// avatar_id) or quality is reported as *ValidationError, as is an
// activityIdleTimeout that is not a number.
func BuildSessionPayload(req StartRequest) (*SessionPayload, error) {
	avatar := firstNonEmpty(req.AvatarName, req.AvatarID)
	if avatar == "" {
		return nil, &ValidationError{Field: "avatarName", Reason: "avatarName or avatar_id is required"}
	}
	quality := deref(req.Quality)
	if quality == "" {
		return nil, &ValidationError{Field: "quality", Reason: "quality is required"}
	}

	p := &SessionPayload{
		Version:       PayloadVersion,
		VideoEncoding: PayloadVideoEncoding,
		Source:        PayloadSource,
		AvatarName:    avatar,
		Quality:       quality,
	}

	p.Voice = buildVoice(req.Voice)
	p.KnowledgeBaseID = deref(req.KnowledgeID)
	p.KnowledgeBase = deref(req.KnowledgeBase)

	if s := req.STTSettings; s != nil {
		provider := strings.ToLower(deref(s.Provider))
		if provider == "" {
			provider = DefaultSTTProvider
		}
		confidence := DefaultSTTConfidence
		if s.Confidence != nil {
			confidence = *s.Confidence
		}
		p.STTSettings = &STTPayload{Provider: provider, Confidence: confidence}
	}

	p.Language = deref(req.Language)

	if present(req.VoiceChatTransport) {
		livekit := strings.ToUpper(rawString(req.VoiceChatTransport)) == LiveKitTransport
		p.LiveKitTransport = &livekit
	}

	if present(req.UseSilencePrompt) {
		silence := truthy(req.UseSilencePrompt)
		p.SilenceResponse = &silence
	}

	if present(req.ActivityIdleTimeout) {
		n, ok := rawNumber(req.ActivityIdleTimeout)
		if !ok {
			return nil, &ValidationError{Field: "activityIdleTimeout", Reason: "must be a number"}
		}
		// 0, "" and false mean no timeout.
		if n != 0 {
			p.ActivityIdleTimeout = &n
		}
	}

	return p, nil
}

// buildVoice copies only what was sent. A rate of 0 counts as sent.
func buildVoice(v *VoiceSettings) *VoicePayload {
	if v == nil {
		return nil
	}
	voiceID, emotion := deref(v.VoiceID), deref(v.Emotion)
	if voiceID == "" && v.Rate == nil && emotion == "" {
		return nil
	}

	out := &VoicePayload{VoiceID: voiceID, Emotion: emotion}
	if v.Rate != nil {
		rate := *v.Rate
		out.Rate = &rate
	}
	if present(v.ElevenLabsSettings) {
		out.ElevenLabsSettings = v.ElevenLabsSettings
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func firstNonEmpty(values ...*string) string {
	for _, v := range values {
		if s := deref(v); s != "" {
			return s
		}
	}
	return ""
}

// present reports whether a raw field was sent with a non-null value.
func present(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return s != "" && s != "null"
}

func decodeRaw(raw json.RawMessage) any {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return v
}

// rawString renders a scalar the way a string conversion would.
func rawString(raw json.RawMessage) string {
	switch v := decodeRaw(raw).(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return strings.TrimSpace(string(raw))
	}
}

// truthy follows the usual loose boolean rules: false, 0, "" and null are
// false; everything else, including empty objects and arrays, is true.
func truthy(raw json.RawMessage) bool {
	switch v := decodeRaw(raw).(type) {
	case nil:
		return false
	case bool:
		return v
	case float64:
		return v != 0
	case string:
		return v != ""
	default:
		return true
	}
}

// rawNumber accepts numbers, numeric strings and booleans.
func rawNumber(raw json.RawMessage) (float64, bool) {
	switch v := decodeRaw(raw).(type) {
	case float64:
		return v, true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, true
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
