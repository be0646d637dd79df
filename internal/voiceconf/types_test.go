package voiceconf

import "testing"

func TestResolvePrecedence(t *testing.T) {
	voiceCfg := Prosody{Stability: f64(0.9)}
	override := Prosody{Speed: f64(2.0)}

	got := Resolve(voiceCfg, override)

	if *got.Stability != 0.9 {
		t.Errorf("voice-config value not applied: stability = %v", *got.Stability)
	}
	if *got.Speed != 2.0 {
		t.Errorf("request override not applied: speed = %v", *got.Speed)
	}
	if *got.SimilarityBoost != 0.75 {
		t.Errorf("default not applied for unset field: similarity_boost = %v", *got.SimilarityBoost)
	}
}

func TestMergeOnlyReplacesSetFields(t *testing.T) {
	base := DefaultProsody()
	override := Prosody{Style: f64(0.5)}

	got := base.Merge(override)

	if *got.Style != 0.5 {
		t.Errorf("expected override style, got %v", *got.Style)
	}
	if *got.Stability != *base.Stability {
		t.Errorf("expected base stability preserved, got %v", *got.Stability)
	}
}

func TestResolvedVoiceIDPrecedence(t *testing.T) {
	r := NotifyRequest{VoiceID: "v1", VoiceName: "v2"}
	if got := r.ResolvedVoiceID(); got != "v1" {
		t.Errorf("expected voice_id to win, got %q", got)
	}

	r2 := NotifyRequest{VoiceName: "v2"}
	if got := r2.ResolvedVoiceID(); got != "v2" {
		t.Errorf("expected voice_name fallback, got %q", got)
	}
}

func TestVoiceEnabledDefaultsTrue(t *testing.T) {
	r := NotifyRequest{}
	if !r.VoiceEnabledOrDefault() {
		t.Error("expected voice_enabled to default to true")
	}

	disabled := false
	r2 := NotifyRequest{VoiceEnabled: &disabled}
	if r2.VoiceEnabledOrDefault() {
		t.Error("expected explicit false to be honoured")
	}
}

func TestEngineString(t *testing.T) {
	cases := map[Engine]string{
		EngineCloud:     "cloud",
		EngineNeuralCPU: "neural-cpu",
		EngineNeuralGPU: "neural-gpu",
		EngineOSTTS:     "os-tts",
		EngineNone:      "none",
	}
	for e, want := range cases {
		if got := e.String(); got != want {
			t.Errorf("Engine(%d).String() = %q, want %q", e, got, want)
		}
	}
}

func TestFormatExtension(t *testing.T) {
	if FormatCompressed.Extension() != "mp3" {
		t.Error("expected compressed format extension mp3")
	}
	if FormatUncompressed.Extension() != "wav" {
		t.Error("expected uncompressed format extension wav")
	}
}
