package types

import (
	"encoding/json"
	"fmt"
)

// EventKind names the single key carried by a stream line.
type EventKind string

const (
	EventText             EventKind = "text"
	EventWines            EventKind = "wines"
	EventCompleteResponse EventKind = "completeResponse"
	EventError            EventKind = "error"
	EventPartial          EventKind = "partial"
	EventWineInfo         EventKind = "wineInfo"
)

// StreamEvent is one NDJSON line of a streamed response. Exactly one payload field is
// meaningful, selected by Kind.
type StreamEvent struct {
	Kind     EventKind
	Text     string
	Wines    []EnrichedWine
	WineInfo json.RawMessage
}

func TextEvent(text string) StreamEvent {
	return StreamEvent{Kind: EventText, Text: text}
}

func WinesEvent(wines []EnrichedWine) StreamEvent {
	return StreamEvent{Kind: EventWines, Wines: wines}
}

func CompleteResponseEvent(text string) StreamEvent {
	return StreamEvent{Kind: EventCompleteResponse, Text: text}
}

func ErrorEvent(msg string) StreamEvent {
	return StreamEvent{Kind: EventError, Text: msg}
}

func PartialEvent(piece string) StreamEvent {
	return StreamEvent{Kind: EventPartial, Text: piece}
}

func WineInfoEvent(info json.RawMessage) StreamEvent {
	return StreamEvent{Kind: EventWineInfo, WineInfo: info}
}

// MarshalJSON renders the event as a single-key object, e.g. {"text":"..."}. A wine batch
// is always an array, never null.
func (e StreamEvent) MarshalJSON() ([]byte, error) {
	switch e.Kind {
	case EventWines:
		wines := e.Wines
		if wines == nil {
			wines = []EnrichedWine{}
		}
		return json.Marshal(map[string][]EnrichedWine{string(e.Kind): wines})
	case EventWineInfo:
		info := e.WineInfo
		if len(info) == 0 {
			info = json.RawMessage("null")
		}
		return json.Marshal(map[string]json.RawMessage{string(e.Kind): info})
	case EventText, EventCompleteResponse, EventError, EventPartial:
		return json.Marshal(map[string]string{string(e.Kind): e.Text})
	default:
		return nil, fmt.Errorf("unknown stream event kind %q", e.Kind)
	}
}

// UnmarshalJSON recognizes the first known key in the object.
func (e *StreamEvent) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	for _, kind := range []EventKind{EventWines, EventWineInfo, EventText, EventCompleteResponse, EventError, EventPartial} {
		payload, ok := raw[string(kind)]
		if !ok {
			continue
		}
		*e = StreamEvent{Kind: kind}
		switch kind {
		case EventWines:
			return json.Unmarshal(payload, &e.Wines)
		case EventWineInfo:
			e.WineInfo = append(json.RawMessage(nil), payload...)
			return nil
		default:
			return json.Unmarshal(payload, &e.Text)
		}
	}
	return fmt.Errorf("stream event has no recognized key")
}
