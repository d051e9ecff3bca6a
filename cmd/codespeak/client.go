package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codespeak-dev/codespeak/internal/bus"
)

// send delivers one control request and prints the reply.
func send(cmd byte, arg, what string) error {
	resp, err := bus.SendCommand(cmd, arg)
	if errors.Is(err, bus.ErrNotRunning) {
		return fmt.Errorf("failed to %s: daemon not running (start it with codespeak serve)", what)
	}
	if err != nil {
		return fmt.Errorf("failed to %s: %w", what, err)
	}
	if err := bus.ReplyError(resp); err != nil {
		return fmt.Errorf("failed to %s: %w", what, err)
	}
	fmt.Println(resp)
	return nil
}

func toggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle",
		Short: "Start or finish a recording in the running daemon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return send(bus.CmdToggle, "", "toggle recording")
		},
	}
}

func cancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel",
		Short: "Discard the recording in progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return send(bus.CmdCancel, "", "cancel recording")
		},
	}
}

func pressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "press <key>",
		Short: "Deliver a key press to a daemon using the socket hotkey source",
		Long: `Deliver a key press to the running daemon as if it came from the keyboard.
Bind this to your compositor's keybinds with [hotkey] source = "socket".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return send(bus.CmdPress, args[0], "press "+args[0])
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the daemon's session state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return send(bus.CmdStatus, "", "get status")
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the client version and the daemon's protocol version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("codespeak %s (protocol %s)\n", version, bus.ProtoVer)
			resp, err := bus.SendCommand(bus.CmdVersion, "")
			if err != nil {
				return nil
			}
			fmt.Println("daemon:", resp)
			return nil
		},
	}
}

func stopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the daemon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return send(bus.CmdQuit, "", "stop daemon")
		},
	}
}
