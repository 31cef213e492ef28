package resp

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tonycui/spatio/internal/reply"
)

func TestReadRequestParsesArrayOfBulkStrings(t *testing.T) {
	raw := "*3\r\n$3\r\nSET\r\n$5\r\nfleet\r\n$6\r\ntruck1\r\n"
	dec := NewReader(bytes.NewBufferString(raw))

	req, err := dec.ReadRequest()
	require.NoError(t, err)
	assert.Equal(t, "SET", req.Name)
	assert.Equal(t, []string{"fleet", "truck1"}, req.Args)
}

func TestReadRequestRejectsNonArrayFrame(t *testing.T) {
	dec := NewReader(bytes.NewBufferString("+PING\r\n"))
	_, err := dec.ReadRequest()
	assert.Error(t, err)
}

func TestWriteReplyEncodesEveryType(t *testing.T) {
	cases := []struct {
		name string
		in   reply.Reply
		want string
	}{
		{"simple string", reply.SimpleString("OK"), "+OK\r\n"},
		{"bulk string", reply.BulkString("hi"), "$2\r\nhi\r\n"},
		{"integer", reply.Integer(42), ":42\r\n"},
		{"nil", reply.Nil(), "$-1\r\n"},
		{"error", reply.Error("ERR boom"), "-ERR boom\r\n"},
		{
			"array",
			reply.Array([]reply.Reply{reply.BulkString("a"), reply.Integer(1)}),
			"*2\r\n$1\r\na\r\n:1\r\n",
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var buf bytes.Buffer
			enc := NewWriter(&buf)
			require.NoError(t, enc.WriteReply(c.in))
			assert.Equal(t, c.want, buf.String())
		})
	}
}

func TestRoundTripRequestThenReply(t *testing.T) {
	raw := "*2\r\n$4\r\nPING\r\n$0\r\n\r\n"
	dec := NewReader(bytes.NewBufferString(raw))
	req, err := dec.ReadRequest()
	require.NoError(t, err)
	assert.Equal(t, "PING", req.Name)
	assert.Equal(t, []string{""}, req.Args)
}
