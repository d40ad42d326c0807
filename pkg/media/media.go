// Package media generates images and synthesizes speech for the function
// service through the OpenAI (or Azure OpenAI) images and audio APIs.
package media

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/openai/openai-go"
)

// Defaults used when OpenAI leaves a model or voice empty.
const (
	DefaultImageModel  = "dall-e-3"
	DefaultSpeechModel = "tts-1"
	DefaultVoice       = "alloy"
)

// ErrNoImage is returned when the images API answers without image data.
var ErrNoImage = errors.New("media: no image returned")

// OpenAI implements image generation with Images.Generate and speech with
// Audio.Speech.
type OpenAI struct {
	Client *openai.Client

	// ImageModel is the image model, or the deployment name on Azure.
	ImageModel string

	// SpeechModel is the text-to-speech model, or the deployment name on
	// Azure.
	SpeechModel string

	Voice string

	// HTTPClient downloads images returned by URL. Default
	// http.DefaultClient.
	HTTPClient *http.Client
}

// GenerateImage returns the encoded image generated for prompt.
func (m *OpenAI) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	res, err := m.Client.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt:         prompt,
		Model:          openai.ImageModel(or(m.ImageModel, DefaultImageModel)),
		N:              openai.Int(1),
		ResponseFormat: openai.ImageGenerateParamsResponseFormatB64JSON,
	})
	if err != nil {
		return nil, fmt.Errorf("media: generate image: %w", err)
	}
	if len(res.Data) == 0 {
		return nil, ErrNoImage
	}
	img := res.Data[0]
	switch {
	case img.B64JSON != "":
		data, err := base64.StdEncoding.DecodeString(img.B64JSON)
		if err != nil {
			return nil, fmt.Errorf("media: decode image: %w", err)
		}
		return data, nil
	case img.URL != "":
		return m.download(ctx, img.URL)
	default:
		return nil, ErrNoImage
	}
}

func (m *OpenAI) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("media: download image: %w", err)
	}
	hc := m.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("media: download image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("media: download image: status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("media: download image: %w", err)
	}
	return data, nil
}

// Synthesize renders text as WAV audio.
func (m *OpenAI) Synthesize(ctx context.Context, text string) ([]byte, error) {
	resp, err := m.Client.Audio.Speech.New(ctx, openai.AudioSpeechNewParams{
		Model:          openai.SpeechModel(or(m.SpeechModel, DefaultSpeechModel)),
		Input:          text,
		Voice:          openai.AudioSpeechNewParamsVoice(or(m.Voice, DefaultVoice)),
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatWAV,
	})
	if err != nil {
		return nil, fmt.Errorf("media: synthesize: %w", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("media: read speech: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("media: empty speech response")
	}
	return data, nil
}

func or(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
