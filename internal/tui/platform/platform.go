package platform

import (
	"errors"
	"fmt"
	"net/url"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// ValidateImageURL accepts absolute http(s) URLs only.
func ValidateImageURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("post has no image URL")
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("invalid URL format")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("unsupported URL scheme: %s", parsed.Scheme)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("invalid URL host")
	}
	return trimmed, nil
}

func browserCommand(goos, url string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{url}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}
	default:
		return "xdg-open", []string{url}
	}
}

var clipboardCommands = [][]string{
	{"pbcopy"},
	{"wl-copy"},
	{"xclip", "-selection", "clipboard"},
	{"xsel", "--clipboard", "--input"},
	{"clip"},
}

// installedClipboardCommands keeps the order of clipboardCommands.
func installedClipboardCommands(lookPath func(string) (string, error)) [][]string {
	var found [][]string
	for _, c := range clipboardCommands {
		if _, err := lookPath(c[0]); err == nil {
			found = append(found, c)
		}
	}
	return found
}

// Launcher hands image URLs to the desktop: a browser or the clipboard.
type Launcher struct {
	GOOS     string
	LookPath func(string) (string, error)
	Run      func(name string, args []string, stdin string) error
}

func SystemLauncher() Launcher {
	return Launcher{GOOS: runtime.GOOS, LookPath: exec.LookPath, Run: runCommand}
}

func runCommand(name string, args []string, stdin string) error {
	cmd := exec.Command(name, args...)
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}
	return cmd.Run()
}

func (l Launcher) Open(url string) error {
	name, args := browserCommand(l.GOOS, url)
	if err := l.Run(name, args, ""); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// Copy tries each installed clipboard tool in turn until one accepts text.
func (l Launcher) Copy(text string) error {
	candidates := installedClipboardCommands(l.LookPath)
	if len(candidates) == 0 {
		return fmt.Errorf("no clipboard command available")
	}
	var errs []error
	for _, c := range candidates {
		err := l.Run(c[0], c[1:], text)
		if err == nil {
			return nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", c[0], err))
	}
	return fmt.Errorf("copy to clipboard: %w", errors.Join(errs...))
}

func OpenURLInBrowser(url string) error {
	return SystemLauncher().Open(url)
}

func CopyURLToClipboard(url string) error {
	return SystemLauncher().Copy(url)
}

// SnapshotPath names a PNG in dir after the capture time.
func SnapshotPath(dir string, at time.Time) string {
	return filepath.Join(dir, "photowall-"+at.Format("20060102-150405")+".png")
}
