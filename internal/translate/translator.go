// Package translate defines the fulfillment capability behind the paid
// endpoints. The only implementation today is a mock that returns
// canned text after an artificial delay; a real engine can be swapped
// in without touching the gateway's authorization or metering logic.
package translate

import (
	"time"
)

// DefaultTargetLang is used when a request does not name a target
// language.
const DefaultTargetLang = "English"

// Translator is the capability interface the gateway dispatches to.
type Translator interface {
	// TranslateText translates a plain text snippet.
	TranslateText(text, targetLang string) string

	// TranslateDocument translates text extracted from an uploaded
	// document.
	TranslateDocument(text, targetLang string) string

	// Transcribe converts uploaded audio to text and translates the
	// transcription.
	Transcribe(audio []byte, targetLang string) (transcription, translation string)
}

// Mock is a stand-in translation engine. Responses are hard-coded
// templates and each call sleeps to simulate upstream latency.
type Mock struct {
	// Latency is the base artificial delay. Zero disables sleeping
	// (tests set it to zero).
	Latency time.Duration
}

// NewMock returns a mock engine with the given base latency.
func NewMock(latency time.Duration) *Mock {
	return &Mock{Latency: latency}
}

func (m *Mock) sleep(scale time.Duration) {
	if m.Latency > 0 {
		time.Sleep(m.Latency * scale / 2)
	}
}

func (m *Mock) TranslateText(text, targetLang string) string {
	m.sleep(2) // ~1x base
	return "[Mocked B2B translation for '" + truncate(text, 20) + "...' to " + targetLang + "]"
}

func (m *Mock) TranslateDocument(text, targetLang string) string {
	m.sleep(3) // ~1.5x base
	return "[This is a mocked translation for the DOCX file into " + targetLang + "]\n\n" +
		"Original text started with: \"" + truncate(text, 100) + "...\""
}

func (m *Mock) Transcribe(_ []byte, targetLang string) (string, string) {
	m.sleep(4) // ~2x base
	transcription := "This is a mock transcription of the uploaded audio file."
	translation := "This is the mocked translation of the transcription into " + targetLang + "."
	return transcription, translation
}

// truncate shortens s to at most n runes, never splitting a multi-byte
// sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
