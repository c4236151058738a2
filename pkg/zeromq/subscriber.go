package zeromq

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pebbe/zmq4"

	"github.com/SofaDefrost/prefab.MobileTrunk/pkg/config"
	customlog "github.com/SofaDefrost/prefab.MobileTrunk/pkg/log"
	"github.com/SofaDefrost/prefab.MobileTrunk/pkg/wire"
)

// Subscriber receives [topic, envelope] frames from the gateway's PUB
// socket and routes them inbound.
type Subscriber struct {
	socket  *zmq4.Socket
	poller  *zmq4.Poller
	router  EnvelopeRouter
	logger  customlog.Logger
	running atomic.Bool
	wg      *sync.WaitGroup

	received atomic.Int64
	rejected atomic.Int64
}

func newSubscriber(ctx *zmq4.Context, cfg config.ZeroMQBootstrap, topics []string, router EnvelopeRouter, logger customlog.Logger, wg *sync.WaitGroup) (*Subscriber, error) {
	socket, err := ctx.NewSocket(zmq4.SUB)
	if err != nil {
		return nil, fmt.Errorf("failed to create SUB socket: %w", err)
	}

	fail := func(what string, err error) (*Subscriber, error) {
		socket.Close()
		return nil, fmt.Errorf("%s: %w", what, err)
	}

	if err := socket.SetLinger(0); err != nil {
		return fail("failed to set linger option", err)
	}
	if cfg.MessageBufferSize > 0 {
		if err := socket.SetRcvhwm(cfg.MessageBufferSize); err != nil {
			return fail("failed to set receive high water mark", err)
		}
	}
	if cfg.ReconnectIntervalMs > 0 {
		if err := socket.SetReconnectIvl(time.Duration(cfg.ReconnectIntervalMs) * time.Millisecond); err != nil {
			return fail("failed to set reconnect interval", err)
		}
	}
	if len(topics) == 0 {
		logger.Warnf("No inbound topics mapped, subscribing to everything")
		topics = []string{""}
	}
	for _, topic := range topics {
		if err := socket.SetSubscribe(topic); err != nil {
			return fail(fmt.Sprintf("failed to subscribe to '%s'", topic), err)
		}
	}
	if err := socket.Connect(cfg.SubscribeConnectAddress); err != nil {
		return fail(fmt.Sprintf("failed to connect to %s", cfg.SubscribeConnectAddress), err)
	}

	poller := zmq4.NewPoller()
	poller.Add(socket, zmq4.POLLIN)

	logger.Infof("Subscriber connected to %s for %d topics", cfg.SubscribeConnectAddress, len(topics))

	return &Subscriber{
		socket: socket,
		poller: poller,
		router: router,
		logger: logger,
		wg:     wg,
	}, nil
}

// Start begins the receive loop
func (l *Subscriber) Start() {
	if !l.running.CompareAndSwap(false, true) {
		return
	}
	l.wg.Add(1)
	go l.receiveLoop()
}

// Stop ends the receive loop within one poll timeout
func (l *Subscriber) Stop() {
	l.running.Store(false)
}

func (l *Subscriber) close() {
	if l.socket != nil {
		l.socket.Close()
		l.socket = nil
	}
	l.logger.Infof("Subscriber closed: received=%d rejected=%d", l.received.Load(), l.rejected.Load())
}

func (l *Subscriber) receiveLoop() {
	defer l.wg.Done()

	for l.running.Load() {
		sockets, err := l.poller.Poll(pollTimeout)
		if err != nil {
			if l.running.Load() {
				l.logger.Errorf("Error polling subscriber: %v", err)
			}
			continue
		}
		if len(sockets) == 0 {
			continue
		}

		frames, err := l.socket.RecvMessageBytes(0)
		if err != nil {
			if l.running.Load() {
				l.logger.Errorf("Error receiving message: %v", err)
			}
			continue
		}
		if err := l.handleFrames(frames); err != nil {
			l.logger.Warnf("Dropping inbound message: %v", err)
		}
	}
}

// handleFrames decodes one multipart message and routes it. The topic
// frame wins over the topic stored in the envelope.
func (l *Subscriber) handleFrames(frames [][]byte) error {
	l.received.Add(1)
	if len(frames) != 2 {
		l.rejected.Add(1)
		return fmt.Errorf("%w: expected 2 frames, got %d", ErrInvalidMessage, len(frames))
	}

	topic := string(frames[0])
	env, err := wire.DecodeEnvelope(frames[1])
	if err != nil {
		l.rejected.Add(1)
		return fmt.Errorf("topic '%s': %w", topic, err)
	}
	if env.Topic != topic {
		l.logger.Warnf("Envelope topic '%s' differs from frame topic '%s'", env.Topic, topic)
		env.Topic = topic
	}

	if l.router == nil {
		return nil
	}
	if err := l.router.RouteMessage(&env); err != nil {
		l.rejected.Add(1)
		return fmt.Errorf("routing topic '%s': %w", topic, err)
	}
	return nil
}
