// Package bus carries the typed messages exchanged between the host
// application and the hosted document context.
package bus

import (
	"encoding/json"
	"fmt"
)

// Kind is the message discriminator, serialized as "type".
type Kind string

// Message kinds.
const (
	KindLoad             Kind = "load"
	KindHTMLUpdate       Kind = "HTML_UPDATE"
	KindGenerateDownload Kind = "GENERATE_DOWNLOAD"
	KindDownloadReady    Kind = "DOWNLOAD_READY"
	KindDownloadError    Kind = "DOWNLOAD_ERROR"
)

// Format is a download format.
type Format string

// Download formats.
const (
	FormatHTML Format = "html"
	FormatPNG  Format = "png"
	FormatPDF  Format = "pdf"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatHTML, FormatPNG, FormatPDF:
		return f, nil
	}
	return "", fmt.Errorf("unsupported format %q", s)
}

// Message is implemented by every bus message.
type Message interface {
	Kind() Kind
}

// Load reports that the hosted document finished loading new markup.
type Load struct {
	Seq uint64 `json:"seq,omitempty"`
}

// HTMLUpdate carries a full snapshot of the hosted document after an edit.
type HTMLUpdate struct {
	HTML string `json:"html"`
}

// GenerateDownload asks the hosted context to rasterize itself.
type GenerateDownload struct {
	ID       string `json:"id"`
	Format   Format `json:"format"`
	FileName string `json:"fileName"`
}

// DownloadReady answers a GenerateDownload with the captured image.
type DownloadReady struct {
	ID       string `json:"id"`
	Format   Format `json:"format"`
	DataURL  string `json:"dataUrl"`
	FileName string `json:"fileName"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

// DownloadError answers a GenerateDownload that failed.
type DownloadError struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

func (Load) Kind() Kind             { return KindLoad }
func (HTMLUpdate) Kind() Kind       { return KindHTMLUpdate }
func (GenerateDownload) Kind() Kind { return KindGenerateDownload }
func (DownloadReady) Kind() Kind    { return KindDownloadReady }
func (DownloadError) Kind() Kind    { return KindDownloadError }

// Marshal encodes msg as a flat JSON object with a "type" discriminator.
func Marshal(msg Message) ([]byte, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	kind, _ := json.Marshal(msg.Kind())
	fields["type"] = kind
	return json.Marshal(fields)
}

// Unmarshal decodes a message produced by Marshal or posted by the hosted
// document. Unknown types are an error.
func Unmarshal(data []byte) (Message, error) {
	var head struct {
		Type Kind `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("invalid message: %w", err)
	}
	var msg Message
	var err error
	switch head.Type {
	case KindLoad:
		var m Load
		err = json.Unmarshal(data, &m)
		msg = m
	case KindHTMLUpdate:
		var m HTMLUpdate
		err = json.Unmarshal(data, &m)
		msg = m
	case KindGenerateDownload:
		var m GenerateDownload
		err = json.Unmarshal(data, &m)
		msg = m
	case KindDownloadReady:
		var m DownloadReady
		err = json.Unmarshal(data, &m)
		msg = m
	case KindDownloadError:
		var m DownloadError
		err = json.Unmarshal(data, &m)
		msg = m
	default:
		return nil, fmt.Errorf("unknown message type %q", head.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid %s message: %w", head.Type, err)
	}
	return msg, nil
}
