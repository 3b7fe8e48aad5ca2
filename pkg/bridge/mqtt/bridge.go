package mqtt

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/iolink/pkg/framework"
	"github.com/robotalks/iolink/pkg/l0/link"
	"github.com/robotalks/iolink/pkg/l0/wire"
)

// Topics relative to <prefix><device>/.
const (
	TopicConnected = "connected"
	TopicPin       = "pin/"
	TopicSetSuffix = "/set"
)

// shutdownTimeout bounds waiting for the final retained state on exit.
const shutdownTimeout = time.Second

// Bridge publishes the connection state and pin reports of a Link, and
// sets digital outputs on request:
//
//	<prefix><device>/connected   retained connection event
//	<prefix><device>/pin/<n>     report event
//	<prefix><device>/pin/<n>/set payload 0 or 1
type Bridge struct {
	DeviceID string
	Encoding Encoding
	Queue    *Queue

	link *link.Link
}

// New creates a Bridge for l. The broker gets a retained disconnected event
// as last will.
func New(ep *Endpoint, deviceID string, l *link.Link) (*Bridge, error) {
	will, err := ep.Encoding.Encode(ConnectionEvent(deviceID, l.Name(), false))
	if err != nil {
		return nil, err
	}
	ep.Options.SetBinaryWill(ep.TopicPrefix+deviceID+"/"+TopicConnected, will, 1, true)
	if ep.Options.ClientID == "" {
		ep.Options.SetClientID("iolink:" + deviceID)
	}
	return newBridge(NewQueue(ep.Options, ep.TopicPrefix), ep.Encoding, deviceID, l), nil
}

// NewFromURL parses brokerURL and creates a Bridge.
func NewFromURL(brokerURL, deviceID string, l *link.Link) (*Bridge, error) {
	ep, err := ParseURL(brokerURL)
	if err != nil {
		return nil, err
	}
	return New(ep, deviceID, l)
}

func newBridge(q *Queue, enc Encoding, deviceID string, l *link.Link) *Bridge {
	b := &Bridge{DeviceID: deviceID, Encoding: enc, Queue: q, link: l}
	q.OnConnect = func(*Queue) {
		if err := b.publishConnection(l.Connected()); err != nil {
			glog.Errorf("mqtt bridge: %v", err)
		}
	}
	return b
}

// Name implements framework.Named.
func (b *Bridge) Name() string {
	return "mqtt-bridge"
}

// AddToLoop implements framework.LoopAdder.
func (b *Bridge) AddToLoop(loop *fx.Loop) {
	loop.AddRunnable(b)
}

// Run implements framework.Runnable.
func (b *Bridge) Run(ctx context.Context) error {
	connSub := b.link.OnConnectionChanged(b.publishConnection)
	defer connSub.Close()
	dataSub := b.link.OnData(b.publishReport)
	defer dataSub.Close()
	setSub := b.Queue.Sub(b.topic(TopicPin+"+"+TopicSetSuffix), b.handleSet)
	defer setSub.Close()

	token := b.Queue.Connect()
	if token.Wait(); token.Error() != nil {
		return fmt.Errorf("mqtt connect: %w", token.Error())
	}
	defer b.Queue.Close()

	<-ctx.Done()
	if payload, err := b.Encoding.Encode(ConnectionEvent(b.DeviceID, b.link.Name(), false)); err == nil {
		b.Queue.PubWith(b.topic(TopicConnected), payload, 1, true).WaitTimeout(shutdownTimeout)
	}
	return ctx.Err()
}

func (b *Bridge) topic(suffix string) string {
	return b.DeviceID + "/" + suffix
}

func (b *Bridge) publishConnection(connected bool) error {
	payload, err := b.Encoding.Encode(ConnectionEvent(b.DeviceID, b.link.Name(), connected))
	if err != nil {
		return err
	}
	b.Queue.PubWith(b.topic(TopicConnected), payload, 1, true)
	return nil
}

func (b *Bridge) publishReport(r link.Report) error {
	payload, err := b.Encoding.Encode(ReportEvent(b.DeviceID, b.link.Name(), r))
	if err != nil {
		return err
	}
	b.Queue.Pub(b.topic(TopicPin+strconv.Itoa(r.Pin)), payload)
	return nil
}

func (b *Bridge) handleSet(topic string, payload []byte) {
	pin, state, err := b.parseSet(topic, payload)
	if err != nil {
		glog.Warningf("mqtt bridge: %s: %v", topic, err)
		return
	}
	if err := b.link.SetDigital(pin, state); err != nil {
		glog.Warningf("mqtt bridge: set pin %d: %v", pin, err)
	}
}

func (b *Bridge) parseSet(topic string, payload []byte) (int, wire.State, error) {
	prefix := b.topic(TopicPin)
	if !strings.HasPrefix(topic, prefix) || !strings.HasSuffix(topic, TopicSetSuffix) {
		return 0, wire.Low, fmt.Errorf("unexpected topic")
	}
	pin, err := strconv.Atoi(topic[len(prefix) : len(topic)-len(TopicSetSuffix)])
	if err != nil {
		return 0, wire.Low, fmt.Errorf("invalid pin: %w", err)
	}
	switch strings.TrimSpace(string(payload)) {
	case "0":
		return pin, wire.Low, nil
	case "1":
		return pin, wire.High, nil
	}
	return 0, wire.Low, fmt.Errorf("invalid state %q, expect 0 or 1", payload)
}
