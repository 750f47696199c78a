package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCommand(t *testing.T) {
	cases := []struct {
		input    string
		wantType CommandType
		wantArgs []string
	}{
		{input: "/weigh TAG-7 342.5", wantType: CommandWeigh, wantArgs: []string{"TAG-7", "342.5"}},
		{input: "Weight tag-7 300", wantType: CommandWeigh, wantArgs: []string{"tag-7", "300"}},
		{input: "  /FEED abc 120 ", wantType: CommandFeed, wantArgs: []string{"abc", "120"}},
		{input: "/stock", wantType: CommandStock},
		{input: "summary", wantType: CommandSummary},
		{input: "/vaccinate 12", wantType: CommandUnknown, wantArgs: []string{"12"}},
		{input: "   ", wantType: CommandUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			cmd := ParseCommand(tc.input)
			assert.Equal(t, tc.wantType, cmd.Type)
			assert.Equal(t, tc.wantArgs, cmd.Args)
			assert.Equal(t, tc.input, cmd.Raw)
		})
	}
}
