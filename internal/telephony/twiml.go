package telephony

import (
	"encoding/xml"
	"fmt"
	"strconv"
)

// TwiML verb types. The provider executes verbs in document order, so
// Response keeps them as an ordered list.

type Say struct {
	XMLName xml.Name `xml:"Say"`
	Text    string   `xml:",chardata"`
}

type Play struct {
	XMLName xml.Name `xml:"Play"`
	URL     string   `xml:",chardata"`
}

type Gather struct {
	XMLName       xml.Name `xml:"Gather"`
	Input         string   `xml:"input,attr"`
	Action        string   `xml:"action,attr"`
	Timeout       string   `xml:"timeout,attr,omitempty"`
	SpeechTimeout string   `xml:"speechTimeout,attr,omitempty"`
}

type Hangup struct {
	XMLName xml.Name `xml:"Hangup"`
}

// VoiceResponse is the instruction document returned to the provider
// after each webhook.
type VoiceResponse struct {
	XMLName xml.Name `xml:"Response"`
	Verbs   []any
}

func NewVoiceResponse() *VoiceResponse {
	return &VoiceResponse{}
}

func (r *VoiceResponse) Say(text string) *VoiceResponse {
	r.Verbs = append(r.Verbs, Say{Text: text})
	return r
}

func (r *VoiceResponse) Play(url string) *VoiceResponse {
	r.Verbs = append(r.Verbs, Play{URL: url})
	return r
}

// GatherSpeech collects spoken input and posts the transcript to action.
func (r *VoiceResponse) GatherSpeech(action string, timeoutSeconds int) *VoiceResponse {
	r.Verbs = append(r.Verbs, Gather{
		Input:         "speech",
		Action:        action,
		Timeout:       strconv.Itoa(timeoutSeconds),
		SpeechTimeout: "auto",
	})
	return r
}

func (r *VoiceResponse) Hangup() *VoiceResponse {
	r.Verbs = append(r.Verbs, Hangup{})
	return r
}

// Render serializes the document with the XML declaration the provider
// expects.
func (r *VoiceResponse) Render() (string, error) {
	body, err := xml.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("twiml: marshal response: %w", err)
	}
	return xml.Header + string(body), nil
}
