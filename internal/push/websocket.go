package push

import (
	"encoding/json"
	"log/slog"
	"math/rand"
	"time"

	"github.com/gorilla/websocket"

	"github.com/oref-monitor/orefmon/internal/alert"
	"github.com/oref-monitor/orefmon/internal/category"
	"github.com/oref-monitor/orefmon/internal/metrics"
)

// Reconnect jitter bounds. A random delay in this range avoids a
// thundering herd when the upstream drops all connections at once.
const (
	reconnectMin = 5 * time.Second
	reconnectMax = 15 * time.Second
)

// Message is the wire shape of a push notification: the vendor's threat
// identifier plus the affected area.
type Message struct {
	ThreatID int    `json:"threat"`
	Area     string `json:"area"`
	Title    string `json:"title"`
}

// RecordHandler receives records translated from push messages.
type RecordHandler func(alert.Record)

// Listener maintains a persistent websocket connection to the push
// channel, translating incoming messages into normalized records.
type Listener struct {
	url     string
	handler RecordHandler
	logger  *slog.Logger

	dialer *websocket.Dialer
	now    func() time.Time

	stop chan struct{}
	done chan struct{}
}

// NewListener creates a websocket listener. The handler is called on the
// listener goroutine for each translatable message.
func NewListener(url string, handler RecordHandler, logger *slog.Logger) *Listener {
	return &Listener{
		url:     url,
		handler: handler,
		logger:  logger,
		dialer:  websocket.DefaultDialer,
		now:     time.Now,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start launches the connect/read/reconnect loop.
func (l *Listener) Start() {
	go l.loop()
}

// Stop signals the loop to exit and waits for the in-flight close to
// finish.
func (l *Listener) Stop() {
	close(l.stop)
	<-l.done
}

func (l *Listener) loop() {
	defer close(l.done)

	for {
		select {
		case <-l.stop:
			return
		default:
		}

		if err := l.listenOnce(); err != nil {
			l.logger.Warn("Websocket connection lost", "error", err)
		}

		delay := reconnectMin + time.Duration(rand.Int63n(int64(reconnectMax-reconnectMin)))
		metrics.WSReconnects.Inc()
		l.logger.Debug("Scheduling websocket reconnect", "delay", delay.String())

		select {
		case <-time.After(delay):
		case <-l.stop:
			return
		}
	}
}

// listenOnce dials and reads until the connection drops or Stop is
// called. Stop closes the connection, which unblocks the read.
func (l *Listener) listenOnce() error {
	conn, _, err := l.dialer.Dial(l.url, nil)
	if err != nil {
		return err
	}

	closed := make(chan struct{})
	defer close(closed)
	go func() {
		select {
		case <-l.stop:
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			_ = conn.Close()
		case <-closed:
			_ = conn.Close()
		}
	}()

	l.logger.Info("Websocket connected", "url", l.url)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-l.stop:
				return nil
			default:
				return err
			}
		}
		l.handleMessage(data)
	}
}

// handleMessage translates one push message into a record. Untranslatable
// messages are logged and dropped, never fatal.
func (l *Listener) handleMessage(data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		l.logger.Warn("Malformed push message", "error", err)
		return
	}

	historyCode, ok := category.VendorAToHistory(msg.ThreatID)
	if !ok {
		l.logger.Warn("No history mapping for push threat id", "threatId", msg.ThreatID)
		return
	}

	title := msg.Title
	if title == "" {
		title = "Push alert"
	}

	l.handler(alert.Record{
		Date:     l.now().In(alert.LocalZone).Format(alert.TimeLayout),
		Title:    title,
		Area:     msg.Area,
		Category: historyCode,
	})
}
