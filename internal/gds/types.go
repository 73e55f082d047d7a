package gds

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Timestamp mirrors the ground data system's wire time format: an epoch base
// plus seconds and microseconds since that base.
type Timestamp struct {
	Base         int   `json:"time_base"`
	Context      int   `json:"context"`
	Seconds      int64 `json:"seconds"`
	Microseconds int64 `json:"microseconds"`
}

// Time converts the wire timestamp into a time.Time.
func (t Timestamp) Time() time.Time {
	return time.Unix(t.Seconds, t.Microseconds*int64(time.Microsecond))
}

// Before reports whether t is strictly earlier than other.
func (t Timestamp) Before(other Timestamp) bool {
	if t.Seconds != other.Seconds {
		return t.Seconds < other.Seconds
	}
	return t.Microseconds < other.Microseconds
}

// String renders the timestamp in the dashboard's display format.
func (t Timestamp) String() string {
	return t.Time().Local().Format("2006-01-02 15:04:05.000")
}

// ChannelSample is one telemetry channel reading from /channels.
type ChannelSample struct {
	ID          uint32    `json:"id"`
	Name        string    `json:"name"`
	Time        Timestamp `json:"time"`
	Val         any       `json:"val"`
	DisplayText string    `json:"display_text"`
}

// Key returns the stable identifier used for last-writer-wins merging.
func (c ChannelSample) Key() string {
	return strconv.FormatUint(uint64(c.ID), 10)
}

// EventRecord is one event from /events.
type EventRecord struct {
	ID          uint32    `json:"id"`
	Name        string    `json:"name"`
	Time        Timestamp `json:"time"`
	Severity    string    `json:"severity"`
	DisplayText string    `json:"display_text"`
}

// SeverityClass strips the wire prefix ("EventSeverity.WARNING_HI" becomes
// "WARNING_HI") so severities can be tallied and styled uniformly.
func (e EventRecord) SeverityClass() string {
	if idx := strings.LastIndex(e.Severity, "."); idx >= 0 {
		return e.Severity[idx+1:]
	}
	return e.Severity
}

// CommandRecord is one entry of the command history from /commands.
type CommandRecord struct {
	ID   uint32    `json:"id"`
	Name string    `json:"name"`
	Time Timestamp `json:"time"`
	Args []any     `json:"args"`
}

// TransferFile describes one file uplink or downlink in progress.
type TransferFile struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
	State       string `json:"state"`
	Current     int64  `json:"current"`
	Total       int64  `json:"total"`
	Percent     int    `json:"percent"`
}

// FileSet mirrors /upload/files and /download/files.
type FileSet struct {
	Files   []TransferFile `json:"files"`
	Running bool           `json:"running"`
}

// LogList mirrors /logdata: the names of log files the server exposes.
type LogList struct {
	Logs []string `json:"logs"`
}

// Stats is the /stats blob: section name to counter name to value.
type Stats map[string]map[string]int64

// StatRow is one flattened stats entry for display.
type StatRow struct {
	Section string
	Name    string
	Value   int64
}

// Rows flattens the stats blob into display rows. Map iteration order is not
// deterministic; callers sort as needed.
func (s Stats) Rows() []StatRow {
	rows := make([]StatRow, 0, len(s)*4)
	for section, counters := range s {
		for name, value := range counters {
			rows = append(rows, StatRow{Section: section, Name: name, Value: value})
		}
	}
	return rows
}

// History is the polled-endpoint envelope. SeenCount carries the server's
// monotonic per-session item counter, or -1 when the server does not track one.
type History[T any] struct {
	Items     []T
	SeenCount int64
	Errors    []string
}

// UnmarshalJSON decodes the wire envelope {"history": ..., "validation": ...,
// "errors": ...}. Server errors may be strings or structured objects; either
// way they are carried forward as strings.
func (h *History[T]) UnmarshalJSON(data []byte) error {
	var raw struct {
		History    []T               `json:"history"`
		Validation *int64            `json:"validation"`
		Errors     []json.RawMessage `json:"errors"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	h.Items = raw.History
	h.SeenCount = -1
	if raw.Validation != nil {
		h.SeenCount = *raw.Validation
	}
	h.Errors = h.Errors[:0]
	for _, msg := range raw.Errors {
		var text string
		if err := json.Unmarshal(msg, &text); err != nil {
			text = string(msg)
		}
		h.Errors = append(h.Errors, text)
	}
	return nil
}

// HasSeenCount reports whether the server supplied a usable counter.
func (h History[T]) HasSeenCount() bool {
	return h.SeenCount >= 0
}

func (h History[T]) String() string {
	return fmt.Sprintf("history(%d items, seen=%d, %d errors)", len(h.Items), h.SeenCount, len(h.Errors))
}
