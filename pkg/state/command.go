package state

import (
	"strings"
)

type CommandType string

const (
	CmdQuit     CommandType = "quit"
	CmdGenerate CommandType = "generate"
	CmdSelect   CommandType = "select"
	CmdCopy     CommandType = "copy"
	CmdNone     CommandType = "" // Key has no meaning in the game
)

// Command is what a single key press asks the game to do.
type Command struct {
	Type   CommandType
	Option int  // 1-based option number for CmdSelect; 0 is never valid
	Force  bool // quit requested with ctrl+c, honored in every state
}

// ParseKey maps a key name, as reported by the terminal event source, to a Command.
// Digits always map to CmdSelect so that out-of-range choices can be reported.
func ParseKey(key string) Command {
	switch key {
	case "ctrl+c":
		return Command{Type: CmdQuit, Force: true}
	}

	trimmed := strings.ToLower(key)
	switch trimmed {
	case "q":
		return Command{Type: CmdQuit}
	case "g":
		return Command{Type: CmdGenerate}
	case "c":
		return Command{Type: CmdCopy}
	}

	if len(trimmed) == 1 && trimmed[0] >= '0' && trimmed[0] <= '9' {
		return Command{Type: CmdSelect, Option: int(trimmed[0] - '0')}
	}

	return Command{Type: CmdNone}
}
