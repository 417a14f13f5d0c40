package codec

import (
	"strings"

	"main/pkg/exception"

	"github.com/bytedance/sonic"
)

// Command is a protocol request kind. On the wire each request is the
// command tag immediately followed by its encoded arguments, no separator.
type Command uint8

const (
	_command_beg Command = iota
	CommandLaunch
	CommandTick
	CommandPostOrder
	CommandCancelOrder
	CommandClosePosition
	CommandGetAccountInfo
	CommandClose
	_command_end
)

func (c Command) IsAvailable() bool {
	return c > _command_beg && c < _command_end
}

// Tag returns the ASCII prefix token of the command.
func (c Command) Tag() string {
	switch c {
	case CommandLaunch:
		return "LAUNCH_BACKTEST"
	case CommandTick:
		return "TICK"
	case CommandPostOrder:
		return "POST_ORDER"
	case CommandCancelOrder:
		return "CANCEL_ORDER"
	case CommandClosePosition:
		return "CLOSE_POSITION"
	case CommandGetAccountInfo:
		return "GET_ACCOUNT_INFO"
	case CommandClose:
		return "CLOSE"
	default:
		return ""
	}
}

// CommandOf identifies the command a raw request carries by its tag prefix.
// Longer tags win, CLOSE_POSITION is not CLOSE.
func CommandOf(request []byte) (Command, bool) {
	message := string(request)
	best := _command_beg
	for cmd := _command_beg + 1; cmd < _command_end; cmd++ {
		tag := cmd.Tag()
		if strings.HasPrefix(message, tag) && len(tag) > len(best.Tag()) {
			best = cmd
		}
	}
	if best == _command_beg {
		return 0, false
	}
	return best, true
}

// EncodeCommand builds a tagged request with a JSON argument body.
func EncodeCommand(cmd Command, body any) ([]byte, error) {
	if !cmd.IsAvailable() {
		return nil, exception.ErrInvalidArgument
	}

	tag := cmd.Tag()
	if body == nil {
		return []byte(tag), nil
	}

	encoded, err := sonic.ConfigFastest.Marshal(body)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(tag)+len(encoded))
	out = append(out, tag...)
	out = append(out, encoded...)
	return out, nil
}

// EncodeCommandRaw builds a tagged request with a raw string argument,
// used by commands whose argument is not JSON (cancel carries the bare cid,
// tick optionally carries the session id).
func EncodeCommandRaw(cmd Command, arg string) ([]byte, error) {
	if !cmd.IsAvailable() {
		return nil, exception.ErrInvalidArgument
	}

	tag := cmd.Tag()
	out := make([]byte, 0, len(tag)+len(arg))
	out = append(out, tag...)
	out = append(out, arg...)
	return out, nil
}
