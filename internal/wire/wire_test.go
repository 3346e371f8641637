package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageForEvent(t *testing.T) {
	tests := []struct {
		event   string
		want    string
		wantErr bool
	}{
		{EventQuestionShown, TypeContentReplaced, false},
		{EventAnswerShown, TypeContentReplaced, false},
		{EventContentResized, TypeContentResized, false},
		{"card.flipped", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.event, func(t *testing.T) {
			msg, err := MessageForEvent(tt.event)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, msg.Type)

			var p ContentPayload
			require.NoError(t, msg.Decode(&p))
			assert.Equal(t, tt.event, p.Event)
		})
	}
}

func TestDecodeEmptyPayload(t *testing.T) {
	var p ContentPayload
	assert.Error(t, (&Message{Type: TypeContentResized}).Decode(&p))
}
