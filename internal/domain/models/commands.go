package models

import "strings"

// CommandType enumerates supported field-worker command categories.
type CommandType string

const (
	CommandWeigh   CommandType = "weigh"
	CommandFeed    CommandType = "feed"
	CommandStock   CommandType = "stock"
	CommandSummary CommandType = "summary"
	CommandHelp    CommandType = "help"
	CommandUnknown CommandType = "unknown"
)

// Command represents a parsed worker instruction extracted from WhatsApp text.
type Command struct {
	Type CommandType
	Raw  string
	Args []string
}

// ParseCommand derives a Command instance from free-form text messages.
// Arguments keep their original case since cattle tags and material ids are case-sensitive.
func ParseCommand(message string) Command {
	tokens := strings.Fields(strings.TrimSpace(message))
	cmd := Command{Raw: message}

	if len(tokens) == 0 {
		cmd.Type = CommandUnknown
		return cmd
	}

	head := strings.ToLower(strings.TrimPrefix(tokens[0], "/"))
	switch head {
	case string(CommandWeigh), "weight":
		cmd.Type = CommandWeigh
	case string(CommandFeed):
		cmd.Type = CommandFeed
	case string(CommandStock):
		cmd.Type = CommandStock
	case string(CommandSummary):
		cmd.Type = CommandSummary
	case string(CommandHelp):
		cmd.Type = CommandHelp
	default:
		cmd.Type = CommandUnknown
	}

	if len(tokens) > 1 {
		cmd.Args = tokens[1:]
	}

	return cmd
}
