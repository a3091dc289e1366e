package fastview

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	channerics "github.com/niceyeti/channerics/channels"
	"golang.org/x/sync/errgroup"
)

const (
	// writeWait is the time allowed to write a message to the peer.
	writeWait = 1 * time.Second
	// maxMessageSize is the maximum message size allowed from peer.
	maxMessageSize = 8192

	// pubResolution throttles how often a new generation's render is
	// pushed, so a fast driver does not flood a slow browser.
	pubResolution  = time.Millisecond * 100
	pingResolution = time.Millisecond * 200
	// pongWait encompasses the number of pings tolerated before the peer
	// is considered gone.
	pongWait = pingResolution * 4
)

var upgrader = websocket.Upgrader{}

// Client publishes a stream of idempotent updates (each one fully
// describing the desired state — here, a rendered grid generation) to a
// single browser tab over a websocket. Grounded on
// tabular/server/fastview/client.go; generic over the published type T.
type Client[T any] struct {
	updates <-chan T
	ws      *websock
	rootCtx context.Context
}

// NewClient upgrades the request to a websocket and returns a publisher
// that will stream items from updates to it.
func NewClient[T any](
	updates <-chan T,
	w http.ResponseWriter,
	r *http.Request,
) (*Client[T], error) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return nil, err
	}

	ws.SetReadLimit(maxMessageSize)

	return &Client[T]{
		updates: updates,
		ws:      newWebSocket(ws),
		rootCtx: r.Context(),
	}, nil
}

// Sync runs the read-pump, ping/pong liveness check, and publish loop
// concurrently, returning when the client disconnects or an unexpected
// error occurs.
func (cli *Client[T]) Sync() error {
	group, groupCtx := errgroup.WithContext(cli.rootCtx)

	group.Go(func() error {
		return cli.readMessages(groupCtx)
	})
	group.Go(func() error {
		return cli.pingPong(groupCtx)
	})
	group.Go(func() error {
		return cli.publish(groupCtx)
	})

	return group.Wait()
}

// ErrPongDeadlineExceeded indicates the peer stopped responding to pings.
var ErrPongDeadlineExceeded = errors.New("client disconnect, pong deadline exceeded")

func (cli *Client[T]) pingPong(ctx context.Context) error {
	pong := make(chan struct{})
	defer close(pong)
	cli.ws.Conn().SetPongHandler(func(_ string) error {
		pong <- struct{}{}
		return nil
	})

	pinger := channerics.NewTicker(ctx.Done(), pingResolution)
	lastPong := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-pinger:
			if time.Since(lastPong) > pongWait {
				return ErrPongDeadlineExceeded
			}
			if err := cli.ping(ctx); err != nil {
				return err
			}
		case <-pong:
			lastPong = time.Now()
		}
	}
}

func (cli *Client[T]) ping(ctx context.Context) error {
	return cli.ws.Write(ctx, func(ws *websocket.Conn) (err error) {
		if err = ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
			if isError(err) {
				err = fmt.Errorf("ping failed: %T %v", err, err)
			}
		}
		return
	})
}

// readMessages drives the websocket's read loop so ping/pong control
// frames get handled; errors from Read are permanent and tear the client
// down.
func (cli *Client[T]) readMessages(ctx context.Context) error {
	for {
		err := cli.ws.Read(ctx, func(ws *websocket.Conn) (readErr error) {
			_, _, readErr = ws.ReadMessage()
			return
		})
		if err != nil {
			return err
		}
	}
}

func (cli *Client[T]) publish(ctx context.Context) error {
	lastSync := time.Now()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-cli.updates:
			if !ok {
				return nil
			}
			if time.Since(lastSync) < pubResolution {
				break
			}
			lastSync = time.Now()

			err := cli.ws.Write(ctx, func(ws *websocket.Conn) (writeErr error) {
				if writeErr = ws.SetWriteDeadline(time.Now().Add(writeWait)); writeErr != nil {
					writeErr = fmt.Errorf("failed to set deadline: %T %w", writeErr, writeErr)
					return
				}
				if writeErr = ws.WriteJSON(update); writeErr != nil {
					if isError(writeErr) {
						writeErr = fmt.Errorf("publish failed: %T %v", writeErr, writeErr)
					}
				}
				return
			})
			if err != nil {
				return err
			}
		}
	}
}

func isError(err error) bool {
	return err != nil && websocket.IsUnexpectedCloseError(
		err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway)
}

// ErrSockCongestion indicates too many waiters on the socket for a given
// operation.
var ErrSockCongestion = errors.New("sock op failed due to congestion")

const (
	readDeadline     = time.Second
	writeDeadline    = time.Second
	closeGracePeriod = 10 * time.Second
)

// websock serializes reads and writes to the underlying websocket, which
// permits only one concurrent reader and one concurrent writer.
type websock struct {
	readSem  chan struct{}
	writeSem chan struct{}
	ws       *websocket.Conn
}

func newWebSocket(ws *websocket.Conn) *websock {
	return &websock{
		readSem:  make(chan struct{}, 1),
		writeSem: make(chan struct{}, 1),
		ws:       ws,
	}
}

// Conn returns the underlying websocket; only safe to use non-concurrently
// for setup (e.g. registering handlers).
func (sock *websock) Conn() *websocket.Conn {
	return sock.ws
}

// Read serializes read operations on the socket.
func (sock *websock) Read(
	ctx context.Context,
	readFn func(*websocket.Conn) error,
) error {
	select {
	case <-ctx.Done():
		return nil
	case sock.readSem <- struct{}{}:
		defer func() { <-sock.readSem }()
		return readFn(sock.ws)
	case <-time.After(readDeadline):
		return ErrSockCongestion
	}
}

// Write serializes write operations on the socket.
func (sock *websock) Write(
	ctx context.Context,
	writeFn func(*websocket.Conn) error,
) error {
	select {
	case <-ctx.Done():
		return nil
	case sock.writeSem <- struct{}{}:
		defer func() { <-sock.writeSem }()
		return writeFn(sock.ws)
	case <-time.After(writeDeadline):
		return ErrSockCongestion
	}
}

// Close sends a close control frame and gives the peer a hundredth of
// closeGracePeriod to finish its own close handshake before it closes the
// connection.
func (sock *websock) Close() error {
	_ = sock.ws.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
	time.Sleep(closeGracePeriod / 100)
	return sock.ws.Close()
}
