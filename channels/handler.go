package channels

import (
	"fmt"
	"reflect"

	"github.com/unbreakablehf/xnio/errors"
)

// Handler receives the lifecycle events of one channel. HandleOpened runs on
// the provider's executor once the channel is usable; the handler owns all
// reads and writes from then on. HandleClosed runs exactly once after the
// channel is closed by either side.
//
// A provider's default executor is a shared, bounded pool. A handler that
// keeps the channel busy for its whole life, such as a copy loop, must not
// block HandleOpened on that pool; pass a goroutine-per-task executor when
// creating the server or start its own goroutine.
type Handler[C any] interface {
	HandleOpened(ch C)
	HandleClosed(ch C)
}

// HandlerFuncs builds a Handler from optional callbacks.
type HandlerFuncs[C any] struct {
	Opened func(ch C)
	Closed func(ch C)
}

// HandleOpened implements Handler.
func (h HandlerFuncs[C]) HandleOpened(ch C) {
	if h.Opened != nil {
		h.Opened(ch)
	}
}

// HandleClosed implements Handler.
func (h HandlerFuncs[C]) HandleClosed(ch C) {
	if h.Closed != nil {
		h.Closed(ch)
	}
}

// HandlerFactory produces one handler per accepted or established channel.
type HandlerFactory[C any] interface {
	CreateHandler() Handler[C]
}

// HandlerFactoryFunc adapts a function to HandlerFactory.
type HandlerFactoryFunc[C any] func() Handler[C]

// CreateHandler implements HandlerFactory.
func (f HandlerFactoryFunc[C]) CreateHandler() Handler[C] { return f() }

// Shared returns a factory that hands out the same handler for every channel.
func Shared[C any](h Handler[C]) HandlerFactory[C] {
	return HandlerFactoryFunc[C](func() Handler[C] { return h })
}

// Contravariant lets a factory for a broader channel kind S serve a narrower
// kind C, e.g. a StreamChannel handler factory used for a TCP server:
//
//	hf, err := channels.Contravariant[channels.TCPChannel, channels.StreamChannel](streamFactory)
//
// It fails with INVALID_INPUT when C does not implement S. A nil handler
// from f becomes a handler that ignores both events.
func Contravariant[C, S any](f HandlerFactory[S]) (HandlerFactory[C], error) {
	narrow, broad := reflect.TypeFor[C](), reflect.TypeFor[S]()
	if narrow != broad && (broad.Kind() != reflect.Interface || !narrow.Implements(broad)) {
		return nil, errors.InvalidInput("handler_factory", fmt.Sprintf("%s does not implement %s", narrow, broad))
	}
	if f == nil {
		return nil, errors.InvalidInput("handler_factory", "must not be nil")
	}
	return HandlerFactoryFunc[C](func() Handler[C] {
		inner := f.CreateHandler()
		if inner == nil {
			return HandlerFuncs[C]{}
		}
		return widened[C, S]{inner: inner}
	}), nil
}

type widened[C, S any] struct {
	inner Handler[S]
}

func (w widened[C, S]) HandleOpened(ch C) { w.inner.HandleOpened(any(ch).(S)) }
func (w widened[C, S]) HandleClosed(ch C) { w.inner.HandleClosed(any(ch).(S)) }
