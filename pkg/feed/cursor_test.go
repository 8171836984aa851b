package feed_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/keshavrajbux/AgentTube/pkg/feed"
)

func TestCursorCodec_Decode(t *testing.T) {
	var codec feed.CursorCodec

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{name: "empty token", token: "", want: 0},
		{name: "zero", token: "0", want: 0},
		{name: "positive offset", token: "30", want: 30},
		{name: "negative offset", token: "-5", want: 0},
		{name: "not a number", token: "abc", want: 0},
		{name: "float", token: "12.5", want: 0},
		{name: "trailing garbage", token: "10x", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, codec.Decode(tt.token))
		})
	}
}

func TestCursorCodec_Encode(t *testing.T) {
	var codec feed.CursorCodec

	assert.Equal(t, "0", codec.Encode(0))
	assert.Equal(t, "30", codec.Encode(30))
	assert.Equal(t, "0", codec.Encode(-7))
}

func TestCursorCodec_RoundTrip(t *testing.T) {
	var codec feed.CursorCodec

	for _, offset := range []int{0, 1, 10, 50, 1000} {
		assert.Equal(t, offset, codec.Decode(codec.Encode(offset)))
	}
}
