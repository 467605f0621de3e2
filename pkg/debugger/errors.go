package debugger

import "errors"

var (
	// ErrUnknownCommand indicates a token that resolves to no command.
	ErrUnknownCommand = errors.New("debugger: unknown command")

	// ErrMissingArgument indicates a required command argument is absent.
	ErrMissingArgument = errors.New("debugger: missing argument")

	// ErrInvalidArgument indicates an argument that could not be parsed.
	ErrInvalidArgument = errors.New("debugger: invalid argument")

	// ErrUnknownVariable indicates both the name and its sigil-stripped form are not defined.
	ErrUnknownVariable = errors.New("debugger: unknown variable")

	// ErrUnknownTarget indicates a target name or location the host does not know.
	ErrUnknownTarget = errors.New("debugger: unknown target")

	// ErrNoHost indicates the session is not attached to a build engine.
	ErrNoHost = errors.New("debugger: no build engine attached")

	// ErrInternal indicates a fault raised while dispatching a command.
	ErrInternal = errors.New("debugger: internal error")
)
