// Package deps checks for the external programs codespeak shells out to.
package deps

import (
	"context"
	"os/exec"
	"strings"
	"time"
)

// Status represents the installation status of a dependency
type Status struct {
	Installed bool
	Path      string
	Version   string
}

// Tool is an external program and what it is needed for.
type Tool struct {
	Name        string
	Purpose     string
	VersionArgs []string
}

var (
	PwRecord   = Tool{Name: "pw-record", Purpose: "audio capture", VersionArgs: []string{"--version"}}
	Ydotool    = Tool{Name: "ydotool", Purpose: "typing via uinput (Wayland and X11)"}
	Wtype      = Tool{Name: "wtype", Purpose: "typing on Wayland"}
	Xdotool    = Tool{Name: "xdotool", Purpose: "typing on X11", VersionArgs: []string{"--version"}}
	WhisperCli = Tool{Name: "whisper-cli", Purpose: "local transcription (whisper-cpp)", VersionArgs: []string{"--version"}}
	NotifySend = Tool{Name: "notify-send", Purpose: "desktop notifications", VersionArgs: []string{"--version"}}
	WlCopy     = Tool{Name: "wl-copy", Purpose: "clipboard backend on Wayland", VersionArgs: []string{"--version"}}
)

// Tools lists everything doctor reports on.
var Tools = []Tool{PwRecord, Ydotool, Wtype, Xdotool, WhisperCli, NotifySend, WlCopy}

const versionTimeout = 2 * time.Second

// Check looks the tool up on PATH and asks it for a version when it knows
// how. The first non-empty output line is taken as the version.
func Check(t Tool) Status {
	path, err := exec.LookPath(t.Name)
	if err != nil {
		return Status{Installed: false}
	}
	status := Status{Installed: true, Path: path}
	if len(t.VersionArgs) == 0 {
		return status
	}

	ctx, cancel := context.WithTimeout(context.Background(), versionTimeout)
	defer cancel()
	output, err := exec.CommandContext(ctx, path, t.VersionArgs...).CombinedOutput()
	if err != nil {
		return status
	}
	for _, line := range strings.Split(string(output), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			status.Version = line
			break
		}
	}
	return status
}

type Result struct {
	Tool   Tool
	Status Status
}

func CheckAll() []Result {
	out := make([]Result, len(Tools))
	for i, t := range Tools {
		out[i] = Result{Tool: t, Status: Check(t)}
	}
	return out
}
