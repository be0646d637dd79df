package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/pai-voice/paivoiced/internal/daemonerr"
	"github.com/pai-voice/paivoiced/internal/voiceconf"
)

const defaultCloudBaseURL = "https://api.elevenlabs.io"

// Cloud issues one HTTPS POST per request to the upstream text-to-speech
// API. No retries; the HTTP client's default timeout applies.
type Cloud struct {
	APIKey  string
	BaseURL string
	Client  *http.Client
}

func NewCloud(apiKey string) *Cloud {
	return &Cloud{APIKey: apiKey, BaseURL: defaultCloudBaseURL, Client: http.DefaultClient}
}

type cloudVoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	Speed           float64 `json:"speed"`
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
}

type cloudRequest struct {
	Text          string             `json:"text"`
	ModelID       string             `json:"model_id"`
	VoiceSettings cloudVoiceSettings `json:"voice_settings"`
}

func (c *Cloud) Synthesize(ctx context.Context, text string, prosody voiceconf.Prosody) ([]byte, voiceconf.Format, error) {
	return c.SynthesizeVoice(ctx, "", text, prosody)
}

// SynthesizeVoice is the same call with an explicit voice id, since the
// cloud API embeds the voice id in the URL path rather than the body.
func (c *Cloud) SynthesizeVoice(ctx context.Context, voiceID, text string, prosody voiceconf.Prosody) ([]byte, voiceconf.Format, error) {
	body := cloudRequest{
		Text:    text,
		ModelID: "eleven_turbo_v2",
		VoiceSettings: cloudVoiceSettings{
			Stability:       deref(prosody.Stability, 0.5),
			SimilarityBoost: deref(prosody.SimilarityBoost, 0.75),
			Style:           deref(prosody.Style, 0.0),
			Speed:           deref(prosody.Speed, 1.0),
			UseSpeakerBoost: derefBool(prosody.UseSpeakerBoost, true),
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, voiceconf.FormatNone, fmt.Errorf("marshal cloud request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/text-to-speech/%s", c.BaseURL, voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, voiceconf.FormatNone, fmt.Errorf("build cloud request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("xi-api-key", c.APIKey)

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, voiceconf.FormatNone, fmt.Errorf("cloud request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, voiceconf.FormatNone, &daemonerr.UpstreamRejected{
			Engine: "cloud",
			Status: resp.StatusCode,
			Body:   string(respBody),
		}
	}

	return respBody, voiceconf.FormatCompressed, nil
}

func deref(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

func derefBool(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}
