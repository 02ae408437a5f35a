package amtp

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutboundMessageValidate(t *testing.T) {
	tests := []struct {
		name    string
		msg     OutboundMessage
		wantErr bool
	}{
		{
			name: "minimal",
			msg:  OutboundMessage{Sender: "bot@gw", Recipients: []string{"peer@gw"}},
		},
		{
			name: "with payload and subject",
			msg: OutboundMessage{
				Sender:     "bot@gw",
				Recipients: []string{"peer@gw", "other"},
				Subject:    "hello",
				Payload:    json.RawMessage(`[1, "two", {"three": 3}]`),
			},
		},
		{
			name: "address shape is left to the gateway",
			msg:  OutboundMessage{Sender: "bot@gw", Recipients: []string{"ops team@example.com", "team/alpha@example.com"}},
		},
		{
			name: "long subject",
			msg:  OutboundMessage{Sender: "bot@gw", Recipients: []string{"peer@gw"}, Subject: strings.Repeat("s", 2000)},
		},
		{
			name: "repeated recipient",
			msg:  OutboundMessage{Sender: "bot@gw", Recipients: []string{"peer@gw", "peer@gw"}},
		},
		{
			name:    "no recipients",
			msg:     OutboundMessage{Sender: "bot@gw", Recipients: []string{}},
			wantErr: true,
		},
		{
			name:    "empty recipient",
			msg:     OutboundMessage{Sender: "bot@gw", Recipients: []string{""}},
			wantErr: true,
		},
		{
			name:    "empty sender",
			msg:     OutboundMessage{Recipients: []string{"peer@gw"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.msg.Validate()
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}

			var schemaErr *SchemaError
			require.ErrorAs(t, err, &schemaErr)
			assert.NotEmpty(t, schemaErr.Issues)
			assert.True(t, strings.HasPrefix(schemaErr.Error(), "invalid message: "), schemaErr.Error())
		})
	}
}
