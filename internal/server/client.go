package server

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
	// Time allowed to write a message to the peer.
	writeWait = 1 * time.Second

	// The rate at which element updates are sent to the browser tab, so a
	// fast-training run doesn't flood it with one frame per episode.
	pubResolution  = time.Millisecond * 100
	pingResolution = time.Millisecond * 200
	pongWait       = pingResolution * 4
)

var upgrader = websocket.Upgrader{}

// wsClient publishes dashboard updates to one connected browser tab over
// websocket: the merged view-update channel feeds updates in, and wsClient
// pushes the latest one out at a bounded rate.
type wsClient struct {
	updates <-chan []EleUpdate
	ws      *websock
	rootCtx context.Context
}

// newWSClient upgrades r to a websocket and returns a publisher for it.
// Items arriving on updates should be idempotent (a reward-curve snapshot
// is: only the latest value matters to a freshly-drawn chart), so that
// updates arriving faster than the publish rate can simply be dropped.
func newWSClient(
	updates <-chan []EleUpdate,
	w http.ResponseWriter,
	r *http.Request,
) (*wsClient, error) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return nil, err
	}

	return &wsClient{
		updates: updates,
		ws:      newWebSocket(ws),
		rootCtx: r.Context(),
	}, nil
}

// sync runs the read/ping/publish loops for this connection until the
// client disconnects or one of them errors.
func (cli *wsClient) sync() error {
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

var errPongDeadlineExceeded = errors.New("dashboard client disconnect: pong deadline exceeded")

// pingPong runs the liveness check for the connection.
// NOTE: requires readMessages to be running, since that's what dispatches
// the pong handler.
func (cli *wsClient) pingPong(ctx context.Context) error {
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
				return errPongDeadlineExceeded
			}
			if err := cli.ping(ctx); err != nil {
				return err
			}
		case <-pong:
			lastPong = time.Now()
		}
	}
}

func (cli *wsClient) ping(ctx context.Context) error {
	return cli.ws.Write(
		ctx,
		func(ws *websocket.Conn) (err error) {
			if err = ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				if isError(err) {
					err = fmt.Errorf("dashboard ping failed: %T %v", err, err)
				}
			}
			return
		})
}

// readMessages drains (and discards) any message the browser tab sends;
// the dashboard is push-only, but a websocket read pump must still run for
// the pong handler above to ever fire.
func (cli *wsClient) readMessages(ctx context.Context) error {
	for {
		err := cli.ws.Read(
			ctx,
			func(ws *websocket.Conn) (readErr error) {
				_, _, readErr = ws.ReadMessage()
				return
			})
		if err != nil {
			return err
		}
	}
}

func (cli *wsClient) publish(ctx context.Context) error {
	lastSync := time.Now()

	for {
		select {
		case <-ctx.Done():
			return nil
		case updates, ok := <-cli.updates:
			if !ok {
				return nil
			}
			if time.Since(lastSync) < pubResolution {
				break
			}
			lastSync = time.Now()

			err := cli.ws.Write(
				ctx,
				func(ws *websocket.Conn) (writeErr error) {
					if writeErr = ws.SetWriteDeadline(time.Now().Add(writeWait)); writeErr != nil {
						writeErr = fmt.Errorf("dashboard: failed to set deadline: %T %w", writeErr, writeErr)
						return
					}
					if writeErr = ws.WriteJSON(updates); writeErr != nil {
						if isError(writeErr) {
							writeErr = fmt.Errorf("dashboard publish failed: %T %v", writeErr, writeErr)
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

const (
	readDeadline  = time.Second
	writeDeadline = time.Second
)

var errSockCongestion = errors.New("dashboard socket op failed due to congestion")

// websock serializes reads and writes to the underlying connection, whose
// requirement is that there be only one concurrent reader and one
// concurrent writer at a time.
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

func (sock *websock) Conn() *websocket.Conn {
	return sock.ws
}

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
		return errSockCongestion
	}
}

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
		return errSockCongestion
	}
}
