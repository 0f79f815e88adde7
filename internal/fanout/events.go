// Package fanout projects coordinator snapshots onto outward-facing
// signals: bus events and geo points. Every projector keeps its own
// TTL-windowed dedup state and never mutates the snapshot it observes.
package fanout

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	nats "github.com/nats-io/nats.go"

	"github.com/oref-monitor/orefmon/internal/alert"
	"github.com/oref-monitor/orefmon/internal/areas"
	"github.com/oref-monitor/orefmon/internal/category"
	"github.com/oref-monitor/orefmon/internal/coordinator"
	"github.com/oref-monitor/orefmon/internal/metrics"
	"github.com/oref-monitor/orefmon/internal/schema"
	"github.com/oref-monitor/orefmon/internal/window"
)

// Event is the outward bus event emitted per new record.
type Event struct {
	Area      string  `json:"area"`
	Distance  float64 `json:"distance"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Category  int     `json:"category"`
	Title     string  `json:"title"`
	Icon      string  `json:"icon"`
	Emoji     string  `json:"emoji"`

	// Type tags the record class on the unified channel (alert/update).
	Type string `json:"type"`

	// Channel tags the source channel that produced the event.
	Channel string `json:"channel"`
}

// Publisher sends an encoded event to a bus subject.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// NATSPublisher publishes events on a NATS connection.
type NATSPublisher struct {
	nc *nats.Conn
}

// NewNATSPublisher wraps an established NATS connection.
func NewNATSPublisher(nc *nats.Conn) *NATSPublisher {
	return &NATSPublisher{nc: nc}
}

// Publish implements Publisher.
func (p *NATSPublisher) Publish(subject string, data []byte) error {
	return p.nc.Publish(subject, data)
}

// dedupKey identifies "the same event" for notification suppression:
// area plus category. Synthetic records add their timestamp so a
// re-injected simulation fires again even when area and category repeat.
type dedupKey struct {
	area     string
	category int
	stamp    string
}

func keyFor(r alert.Record) dedupKey {
	k := dedupKey{area: r.Area, category: r.Category}
	if r.Synthetic {
		k.stamp = r.Date
	}
	return k
}

// EventManager listens for snapshots and emits one bus event per new
// relevant record on two channels: type-specific and unified.
type EventManager struct {
	publisher     Publisher
	classifier    *schema.Classifier
	subjectPrefix string
	sourceChannel string
	homeLat       float64
	homeLon       float64
	watchAreas    map[string]bool // nil means whole snapshot
	seen          *window.Window[dedupKey]
	logger        *slog.Logger
}

// NewEventManager creates an event manager for one source channel
// ("poll" for coordinator snapshots, "push" for the websocket feed).
// watchAreas nil or empty with allAreas selects the whole snapshot; the
// TTL of the dedup window defaults to the coordinator's active window.
func NewEventManager(
	publisher Publisher,
	classifier *schema.Classifier,
	subjectPrefix string,
	sourceChannel string,
	homeLat, homeLon float64,
	watchAreas []string,
	allAreas bool,
	ttl time.Duration,
	logger *slog.Logger,
) *EventManager {
	m := &EventManager{
		publisher:     publisher,
		classifier:    classifier,
		subjectPrefix: subjectPrefix,
		sourceChannel: sourceChannel,
		homeLat:       homeLat,
		homeLon:       homeLon,
		seen:          window.New[dedupKey](ttl),
		logger:        logger,
	}
	if !allAreas {
		m.watchAreas = make(map[string]bool, len(watchAreas))
		for _, a := range watchAreas {
			m.watchAreas[a] = true
		}
	}
	return m
}

// OnSnapshot implements coordinator.Listener.
func (m *EventManager) OnSnapshot(snap coordinator.Snapshot) {
	for _, record := range snap.Active(snap.Taken) {
		m.OnRecord(record)
	}
}

// OnRecord runs a single record through the relevance filter, the dedup
// window, and the schema classifier, emitting at most one event pair.
// The websocket listener feeds records here directly.
func (m *EventManager) OnRecord(record alert.Record) {
	if !m.relevant(record) {
		return
	}

	key := keyFor(record)
	if m.alreadySeen(key) {
		return
	}

	recordType, ok := m.classifier.Classify(record)
	if !ok {
		m.logger.Warn("Record matched no schema rule, skipping event",
			"area", record.Area,
			"category", record.Category)
		return
	}

	m.seen.Add(key)
	m.emit(record, recordType)
}

func (m *EventManager) relevant(record alert.Record) bool {
	if m.watchAreas == nil {
		return true
	}
	if areas.IsWholeCountry(record.Area) {
		return true
	}
	return m.watchAreas[record.Area]
}

func (m *EventManager) alreadySeen(key dedupKey) bool {
	for _, k := range m.seen.Items() {
		if k == key {
			return true
		}
	}
	return false
}

// emit publishes the event on the type-specific subject and the unified
// subject. Publish failures degrade the notification channel only; they
// are logged and never propagate.
func (m *EventManager) emit(record alert.Record, recordType string) {
	meta := category.MetadataFor(record.Category)

	event := Event{
		Area:     record.Area,
		Category: record.Category,
		Title:    record.Title,
		Icon:     meta.Icon,
		Emoji:    meta.Emoji,
		Type:     channelFor(recordType),
		Channel:  m.sourceChannel,
	}

	if ref, ok := areas.Lookup(record.Area); ok {
		event.Latitude = ref.Lat
		event.Longitude = ref.Lon
		event.Distance = Distance(m.homeLat, m.homeLon, ref.Lat, ref.Lon)
	}

	data, err := json.Marshal(event)
	if err != nil {
		m.logger.Error("Failed to encode bus event", "error", err)
		return
	}

	typeSubject := fmt.Sprintf("%s.%s", m.subjectPrefix, event.Type)
	unifiedSubject := fmt.Sprintf("%s.all", m.subjectPrefix)

	for _, subject := range []string{typeSubject, unifiedSubject} {
		if err := m.publisher.Publish(subject, data); err != nil {
			m.logger.Warn("Failed to publish bus event", "subject", subject, "error", err)
			continue
		}
		metrics.BusEvents.WithLabelValues(subject).Inc()
	}
}

// channelFor collapses the three record types onto the two outward
// channels: primary alerts on "alert", pre-alert and end on "update".
func channelFor(recordType string) string {
	if recordType == schema.TypeAlert {
		return "alert"
	}
	return "update"
}
