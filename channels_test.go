package flutterhost

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/flutterhost/codec"
	"github.com/gogpu/flutterhost/engine"
)

func TestMethodChannelReplies(t *testing.T) {
	tests := []struct {
		name    string
		result  codec.Value
		err     error
		want    codec.Value
		wantErr *codec.MethodError
		empty   bool
	}{
		{name: "success", result: codec.String("ok"), want: codec.String("ok")},
		{name: "nil result", want: codec.Nil{}},
		{name: "not implemented", err: codec.ErrMethodNotImplemented, empty: true},
		{
			name:    "method error",
			err:     &codec.MethodError{Code: "busy", Message: "try later", Details: codec.Int32(3)},
			wantErr: &codec.MethodError{Code: "busy", Message: "try later", Details: codec.Int32(3)},
		},
		{
			name:    "plain error",
			err:     errors.New("boom"),
			wantErr: &codec.MethodError{Code: "error", Message: "boom", Details: codec.Nil{}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := codec.StandardMethodCodec{}
			ch := &MethodChannel{Name: "test", Codec: c, Handler: func(call codec.MethodCall) (codec.Value, error) {
				assert.Equal(t, "ping", call.Method)
				return tt.result, tt.err
			}}
			reply := ch.HandleMessage(c.EncodeMethodCall(codec.MethodCall{Method: "ping", Args: codec.Nil{}}))
			if tt.empty {
				assert.Empty(t, reply)
				return
			}
			got, err := c.DecodeEnvelope(reply)
			if tt.wantErr != nil {
				var merr *codec.MethodError
				require.ErrorAs(t, err, &merr)
				assert.Equal(t, tt.wantErr, merr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMethodChannelUndecodable(t *testing.T) {
	called := false
	ch := &MethodChannel{Name: "test", Codec: codec.JSONMethodCodec{}, Handler: func(codec.MethodCall) (codec.Value, error) {
		called = true
		return nil, nil
	}}
	assert.Nil(t, ch.HandleMessage([]byte("not json")))
	assert.False(t, called)
}

func TestDispatchRepliesOnce(t *testing.T) {
	a, e, _, _ := newTestApp(t)
	echo := MessageHandlerFunc(func(m []byte) []byte { return append([]byte("re:"), m...) })
	a.Handle("echo", echo)

	a.HandlePlatformMessage(engine.PlatformMessage{Channel: "echo", Message: []byte("a"), Response: 1})
	a.HandlePlatformMessage(engine.PlatformMessage{Channel: "echo", Message: []byte("b")})
	a.HandlePlatformMessage(engine.PlatformMessage{Channel: "nobody", Message: []byte("c"), Response: 2})
	assert.Zero(t, e.replies, "messages wait for Drain")
	assert.Equal(t, 3, a.Drain())

	assert.Equal(t, 2, e.replies)
	assert.Equal(t, []byte("re:a"), e.responses[1])
	assert.Empty(t, e.responses[2])

	a.Handle("echo", nil)
	a.HandlePlatformMessage(engine.PlatformMessage{Channel: "echo", Message: []byte("d"), Response: 3})
	a.Drain()
	assert.Empty(t, e.responses[3])
}

func TestSendTextInput(t *testing.T) {
	a, e, _, _ := newTestApp(t)

	a.SendTextInput(codec.MethodCall{Method: "TextInputClient.performAction", Args: codec.List{codec.Int64(1), codec.String("TextInputAction.done")}})
	msgs := e.on("flutter/textinput")
	require.Len(t, msgs, 1)
	call, err := codec.JSONMethodCodec{}.DecodeMethodCall(msgs[0])
	require.NoError(t, err)
	assert.Equal(t, "TextInputClient.performAction", call.Method)
}
