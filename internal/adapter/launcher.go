package adapter

import (
	"log/slog"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// Launcher opens trailer URLs in an external player or the system browser
type Launcher struct {
	command string   // configured player command, empty for system default
	args    []string // additional arguments for the player
	goos    string
	logger  *slog.Logger

	// Overridable for tests
	lookPath func(file string) (string, error)
	start    func(name string, args ...string) error
}

// guiApps are players that on macOS are usually installed as app bundles
// rather than on PATH, keyed by command name
var guiApps = map[string]string{
	"iina": "IINA",
	"vlc":  "VLC",
	"mpv":  "mpv",
}

// NewLauncher creates a new Launcher. An empty command opens URLs with the
// system default handler, which for video sites is the browser.
func NewLauncher(command string, args []string, logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Launcher{
		command:  command,
		args:     args,
		goos:     runtime.GOOS,
		logger:   logger,
		lookPath: exec.LookPath,
		start: func(name string, args ...string) error {
			return exec.Command(name, args...).Start()
		},
	}
}

// Launch opens url in the configured player or the system default
func (l *Launcher) Launch(url string) error {
	if l.command != "" {
		return l.launchConfigured(url)
	}
	return l.launchDefault(url)
}

// launchConfigured launches the URL using the configured player
func (l *Launcher) launchConfigured(url string) error {
	args := append([]string{}, l.args...)

	// On macOS, launch GUI apps with 'open -a' when the command is not in PATH
	if l.goos == "darwin" {
		if _, err := l.lookPath(l.command); err != nil {
			app := l.command
			base := strings.ToLower(strings.TrimSuffix(filepath.Base(l.command), filepath.Ext(l.command)))
			if name, ok := guiApps[base]; ok {
				app = name
			}

			cmdArgs := []string{"-a", app}
			if len(args) > 0 {
				cmdArgs = append(cmdArgs, "--args")
				cmdArgs = append(cmdArgs, args...)
			}
			cmdArgs = append(cmdArgs, url)
			l.logger.Info("using macOS 'open -a' to launch GUI app", "app", app, "args", cmdArgs)
			return l.start("open", cmdArgs...)
		}
	}

	l.logger.Info("launching player", "command", l.command, "args", args, "url", url)
	return l.start(l.command, append(args, url)...)
}

// launchDefault opens the URL using the system default handler
func (l *Launcher) launchDefault(url string) error {
	l.logger.Info("launching with system default", "os", l.goos, "url", url)

	switch l.goos {
	case "darwin":
		return l.start("open", url)
	case "windows":
		return l.start("cmd", "/c", "start", "", url)
	default:
		// Linux and other Unix-like systems
		return l.start("xdg-open", url)
	}
}
