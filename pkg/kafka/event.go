package kafka

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// TopicPrefix namespaces every topic this service writes to.
const TopicPrefix = "storefront"

// SchemaVersion is bumped when an event payload changes incompatibly.
const SchemaVersion = 1

// Topic builds a topic name such as "storefront.cart.updated".
func Topic(aggregate, action string) string {
	return TopicPrefix + "." + aggregate + "." + action
}

// Event is the envelope written to every topic. Data holds the
// aggregate-specific payload.
type Event struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	AggregateID   string          `json:"aggregate_id"`
	AggregateType string          `json:"aggregate_type"`
	Version       int             `json:"version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Source        string          `json:"source"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent creates a new event with a generated ID and current timestamp.
func NewEvent(eventType, aggregateID, aggregateType, source string, data any) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		Version:       SchemaVersion,
		OccurredAt:    time.Now().UTC(),
		Source:        source,
		Data:          dataBytes,
	}, nil
}

func (e *Event) WithCorrelationID(id string) *Event {
	e.CorrelationID = id
	return e
}

func (e *Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// UnmarshalData decodes the payload into target.
func (e *Event) UnmarshalData(target any) error {
	return json.Unmarshal(e.Data, target)
}

// message builds the kafka message for topic. The aggregate ID is the
// partition key so one user's events stay ordered.
func (e *Event) message(topic string) (kafka.Message, error) {
	value, err := e.Marshal()
	if err != nil {
		return kafka.Message{}, err
	}

	headers := []kafka.Header{
		{Key: "event_type", Value: []byte(e.EventType)},
		{Key: "source", Value: []byte(e.Source)},
	}
	if e.CorrelationID != "" {
		headers = append(headers, kafka.Header{Key: "correlation_id", Value: []byte(e.CorrelationID)})
	}

	return kafka.Message{
		Topic:   topic,
		Key:     []byte(e.AggregateID),
		Value:   value,
		Headers: headers,
	}, nil
}
