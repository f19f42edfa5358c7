package flutterhost

import (
	"errors"

	"github.com/gogpu/flutterhost/codec"
	"github.com/gogpu/flutterhost/engine"
	"github.com/gogpu/flutterhost/textinput"
)

// Channel names served or used by the Application.
const (
	ChannelPlatform    = "flutter/platform"
	ChannelMouseCursor = "flutter/mousecursor"
	ChannelLifecycle   = "flutter/lifecycle"
	ChannelSettings    = "flutter/settings"
)

// MessageHandler serves one platform channel. HandleMessage returns the
// reply payload; nil sends an empty reply.
type MessageHandler interface {
	HandleMessage(message []byte) []byte
}

// MessageHandlerFunc adapts a function to MessageHandler.
type MessageHandlerFunc func(message []byte) []byte

func (f MessageHandlerFunc) HandleMessage(message []byte) []byte { return f(message) }

// MethodHandlerFunc serves one decoded method call.
type MethodHandlerFunc func(call codec.MethodCall) (codec.Value, error)

// MethodChannel serves a channel of method calls framed by Codec.
//
// Results are encoded as success envelopes. A *codec.MethodError becomes
// an error envelope; codec.ErrMethodNotImplemented and undecodable calls
// get the empty reply, which the framework reads as not implemented. Any
// other error becomes an error envelope with code "error".
type MethodChannel struct {
	Name    string
	Codec   codec.MethodCodec
	Handler MethodHandlerFunc
}

func (c *MethodChannel) HandleMessage(message []byte) []byte {
	call, err := c.Codec.DecodeMethodCall(message)
	if err != nil {
		slogger().Warn("flutterhost: undecodable method call", "channel", c.Name, "err", err)
		return nil
	}
	slogger().Debug("flutterhost: method call", "channel", c.Name, "method", call.Method)
	result, err := c.Handler(call)
	var merr *codec.MethodError
	switch {
	case err == nil:
		if result == nil {
			result = codec.Nil{}
		}
		return c.Codec.EncodeSuccessEnvelope(result)
	case errors.Is(err, codec.ErrMethodNotImplemented):
		slogger().Debug("flutterhost: method not implemented", "channel", c.Name, "method", call.Method)
		return nil
	case errors.As(err, &merr):
		return c.Codec.EncodeErrorEnvelope(merr.Code, merr.Message, merr.Details)
	default:
		slogger().Warn("flutterhost: method failed", "channel", c.Name, "method", call.Method, "err", err)
		return c.Codec.EncodeErrorEnvelope("error", err.Error(), codec.Nil{})
	}
}

// Handle installs h for channel, replacing any previous handler. It must
// be called on the UI thread.
func (a *Application) Handle(channel string, h MessageHandler) {
	if h == nil {
		delete(a.channels, channel)
		return
	}
	a.channels[channel] = h
}

// HandleMethods installs a method channel for channel.
func (a *Application) HandleMethods(channel string, c codec.MethodCodec, f MethodHandlerFunc) {
	a.Handle(channel, &MethodChannel{Name: channel, Codec: c, Handler: f})
}

// dispatch routes msg to its handler and replies exactly once when the
// engine expects a reply.
func (a *Application) dispatch(msg engine.PlatformMessage) {
	var reply []byte
	if h, ok := a.channels[msg.Channel]; ok {
		reply = h.HandleMessage(msg.Message)
	} else {
		slogger().Debug("flutterhost: unhandled channel", "channel", msg.Channel, "bytes", len(msg.Message))
	}
	if msg.Response == 0 {
		return
	}
	engine.Must(a.engine.SendPlatformMessageResponse(msg.Response, reply))
}

// Send posts message on channel without expecting a reply.
func (a *Application) Send(channel string, message []byte) {
	engine.Must(a.engine.SendPlatformMessage(channel, message))
}

// SendTextInput implements textinput.Sender.
func (a *Application) SendTextInput(call codec.MethodCall) {
	a.Send(textinput.Channel, codec.JSONMethodCodec{}.EncodeMethodCall(call))
}
