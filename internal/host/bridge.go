package host

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the bridge
	writeWait = 5 * time.Second

	// Time allowed to establish a connection
	dialTimeout = 5 * time.Second

	sendBuffer = 32
)

// Message is one notification sent over the bridge.
type Message struct {
	Type    string `json:"type"`
	Outcome string `json:"outcome,omitempty"`
	Kind    string `json:"kind,omitempty"`
	Score   int    `json:"score,omitempty"`
	Text    string `json:"text,omitempty"`
}

// BridgeNotifier sends notifications as JSON messages over a websocket. The
// connection is dialled lazily and re-dialled after a failed write. When the
// send buffer is full new messages are dropped.
type BridgeNotifier struct {
	url    string
	dialer *websocket.Dialer
	logger *log.Logger

	send      chan Message
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewBridgeNotifier starts the writer for url.
func NewBridgeNotifier(url string, logger *log.Logger) *BridgeNotifier {
	b := &BridgeNotifier{
		url:    url,
		dialer: websocket.DefaultDialer,
		logger: logger.WithPrefix("host").With("url", url),
		send:   make(chan Message, sendBuffer),
		done:   make(chan struct{}),
	}
	b.wg.Add(1)
	go b.writePump()
	return b
}

func (b *BridgeNotifier) NotifyOutcome(outcome string, score int) {
	b.enqueue(Message{Type: "outcome", Outcome: outcome, Score: score})
}

func (b *BridgeNotifier) Haptic(kind string) {
	b.enqueue(Message{Type: "haptic", Kind: kind})
}

func (b *BridgeNotifier) ShareScore(score int) {
	b.enqueue(Message{Type: "share", Score: score, Text: ShareText(score)})
}

func (b *BridgeNotifier) enqueue(msg Message) {
	select {
	case <-b.done:
		return
	default:
	}
	select {
	case b.send <- msg:
	default:
		b.logger.Debug("Bridge buffer full, dropping message", "type", msg.Type)
	}
}

// Close flushes queued messages and closes the connection.
func (b *BridgeNotifier) Close() error {
	b.closeOnce.Do(func() {
		close(b.done)
	})
	b.wg.Wait()
	return nil
}

func (b *BridgeNotifier) writePump() {
	defer b.wg.Done()
	var conn *websocket.Conn
	defer func() {
		if conn != nil {
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			_ = conn.Close()
		}
	}()

	for {
		select {
		case msg := <-b.send:
			conn = b.write(conn, msg)
		case <-b.done:
			for {
				select {
				case msg := <-b.send:
					conn = b.write(conn, msg)
				default:
					return
				}
			}
		}
	}
}

// write delivers msg and returns the connection to use next time, nil after a failure.
func (b *BridgeNotifier) write(conn *websocket.Conn, msg Message) *websocket.Conn {
	if conn == nil {
		ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
		c, _, err := b.dialer.DialContext(ctx, b.url, nil)
		cancel()
		if err != nil {
			b.logger.Warn("Bridge dial failed", "error", err, "type", msg.Type)
			return nil
		}
		conn = c
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(msg); err != nil {
		b.logger.Warn("Bridge write failed", "error", err, "type", msg.Type)
		_ = conn.Close()
		return nil
	}
	return conn
}
