package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"
)

// reconnectDelay is the retry hint sent when a stream opens.
const reconnectDelay = 3 * time.Second

var errStreamingUnsupported = errors.New("streaming not supported")

// eventStream writes Server-Sent Events. Every event carries an increasing
// id so clients can tell frames apart after a reconnect.
type eventStream struct {
	w       http.ResponseWriter
	flusher http.Flusher
	seq     int
	buf     bytes.Buffer
}

// openEventStream sends the stream headers and the reconnect hint.
func openEventStream(w http.ResponseWriter) (*eventStream, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, errStreamingUnsupported
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	es := &eventStream{w: w, flusher: flusher}
	es.buf.WriteString("retry: " + strconv.FormatInt(reconnectDelay.Milliseconds(), 10) + "\n\n")
	return es, es.flush()
}

// send writes one named event with data encoded as JSON.
func (es *eventStream) send(name string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	es.seq++
	es.buf.WriteString("id: " + strconv.Itoa(es.seq) + "\n")
	es.buf.WriteString("event: " + name + "\n")
	es.buf.WriteString("data: ")
	es.buf.Write(payload)
	es.buf.WriteString("\n\n")
	return es.flush()
}

// ping writes a comment line; clients ignore it but proxies see traffic.
func (es *eventStream) ping() error {
	es.buf.WriteString(": ping\n\n")
	return es.flush()
}

// closed tells the client the session ended. The stream is done after it.
func (es *eventStream) closed(sessionID string) error {
	return es.send("closed", map[string]string{"session_id": sessionID})
}

func (es *eventStream) flush() error {
	defer es.buf.Reset()
	if _, err := es.w.Write(es.buf.Bytes()); err != nil {
		return err
	}
	es.flusher.Flush()
	return nil
}
