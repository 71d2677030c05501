package websocket

import "strings"

// CredentialPrefix is the in-band marker the chat front end sends because it
// cannot attach headers when opening the socket. A text frame starting with
// it carries a bearer credential; every other text frame is message content.
// The prefix is a wire contract; existing clients depend on it.
const CredentialPrefix = "Authorization: "

type FrameKind int

const (
	FrameContent FrameKind = iota
	FrameCredential
)

type Frame struct {
	Kind       FrameKind
	Content    string
	Credential string
}

// ParseFrame classifies a text frame so the session only ever deals with
// credential or content events.
func ParseFrame(text string) Frame {
	if strings.HasPrefix(text, CredentialPrefix) {
		return Frame{
			Kind:       FrameCredential,
			Credential: strings.TrimSpace(text[len(CredentialPrefix):]),
		}
	}
	return Frame{
		Kind:    FrameContent,
		Content: text,
	}
}
