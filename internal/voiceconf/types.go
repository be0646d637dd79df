// Package voiceconf holds the daemon's core value types: engine identity,
// prosody, voice configuration and the per-request record that flows from
// the HTTP layer down to the audio queue.
package voiceconf

// Engine is the closed set of TTS back-end variants. It is selected once at
// start-up and never revised mid-run.
type Engine int

const (
	EngineNone Engine = iota
	EngineCloud
	EngineNeuralCPU
	EngineNeuralGPU
	EngineOSTTS
)

func (e Engine) String() string {
	switch e {
	case EngineCloud:
		return "cloud"
	case EngineNeuralCPU:
		return "neural-cpu"
	case EngineNeuralGPU:
		return "neural-gpu"
	case EngineOSTTS:
		return "os-tts"
	default:
		return "none"
	}
}

// Format tags the shape of audio a back-end produces.
type Format int

const (
	FormatNone Format = iota
	FormatCompressed
	FormatUncompressed
)

func (f Format) String() string {
	switch f {
	case FormatCompressed:
		return "compressed"
	case FormatUncompressed:
		return "uncompressed"
	default:
		return "none"
	}
}

// Extension returns the file extension used for temporary audio files of
// this format.
func (f Format) Extension() string {
	switch f {
	case FormatCompressed:
		return "mp3"
	case FormatUncompressed:
		return "wav"
	default:
		return ""
	}
}

// Prosody carries the numeric voice parameters sent by the cloud back-end;
// Volume sets the player volume. The local back-ends ignore it. Zero values are not meaningful here — use
// DefaultProsody and Merge to fill in unset fields.
type Prosody struct {
	Stability       *float64 `json:"stability,omitempty"`
	SimilarityBoost *float64 `json:"similarity_boost,omitempty"`
	Style           *float64 `json:"style,omitempty"`
	Speed           *float64 `json:"speed,omitempty"`
	UseSpeakerBoost *bool    `json:"use_speaker_boost,omitempty"`
	Volume          *float64 `json:"volume,omitempty"`
}

func f64(v float64) *float64 { return &v }
func b(v bool) *bool         { return &v }

// DefaultProsody returns the hardcoded prosody defaults from the external
// interface spec.
func DefaultProsody() Prosody {
	return Prosody{
		Stability:       f64(0.5),
		SimilarityBoost: f64(0.75),
		Style:           f64(0.0),
		Speed:           f64(1.0),
		UseSpeakerBoost: b(true),
		Volume:          f64(1.0),
	}
}

// Merge layers override on top of base: fields explicitly set in override
// replace the corresponding field in base; unset override fields keep
// base's value.
func (base Prosody) Merge(override Prosody) Prosody {
	out := base
	if override.Stability != nil {
		out.Stability = override.Stability
	}
	if override.SimilarityBoost != nil {
		out.SimilarityBoost = override.SimilarityBoost
	}
	if override.Style != nil {
		out.Style = override.Style
	}
	if override.Speed != nil {
		out.Speed = override.Speed
	}
	if override.UseSpeakerBoost != nil {
		out.UseSpeakerBoost = override.UseSpeakerBoost
	}
	if override.Volume != nil {
		out.Volume = override.Volume
	}
	return out
}

// Resolve merges default prosody, a looked-up voice config, and per-request
// overrides in that precedence order (lowest to highest).
func Resolve(voiceConfig, requestOverride Prosody) Prosody {
	return DefaultProsody().Merge(voiceConfig).Merge(requestOverride)
}

// VoiceConfig is one entry of the voice-personalities file: a named voice
// with its prosody and a free-text description.
type VoiceConfig struct {
	Prosody     Prosody `json:"prosody"`
	Description string  `json:"description,omitempty"`
}

// VoicePersonalities is the parsed shape of the voice-personalities
// markdown file's fenced JSON block.
type VoicePersonalities struct {
	Voices map[string]VoiceConfig `json:"voices"`
}

// PronunciationMap maps a case-insensitive whole-word term to its spoken
// replacement.
type PronunciationMap map[string]string

// NotifyRequest is the HTTP layer's decoded body for /notify and /pai.
type NotifyRequest struct {
	Title         string   `json:"title"`
	Message       string   `json:"message"`
	VoiceEnabled  *bool    `json:"voice_enabled,omitempty"`
	VoiceID       string   `json:"voice_id,omitempty"`
	VoiceName     string   `json:"voice_name,omitempty"`
	VoiceSettings *Prosody `json:"voice_settings,omitempty"`
	Volume        *float64 `json:"volume,omitempty"`
}

const (
	DefaultTitle   = "PAI Notification"
	DefaultMessage = "Task completed"
)

// VoiceEnabledOrDefault returns the request's voice_enabled flag, defaulting
// to true when absent.
func (r NotifyRequest) VoiceEnabledOrDefault() bool {
	if r.VoiceEnabled == nil {
		return true
	}
	return *r.VoiceEnabled
}

// ResolvedVoiceID applies the voice_id-over-voice_name precedence rule.
func (r NotifyRequest) ResolvedVoiceID() string {
	if r.VoiceID != "" {
		return r.VoiceID
	}
	return r.VoiceName
}
