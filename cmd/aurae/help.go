// ABOUTME: Help and startup output for the aurae CLI, styled with lipgloss.
// ABOUTME: printHelp lists flags and environment; printStartup reports the resolved config on launch.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/2389-research/aurae/site"
	"github.com/charmbracelet/lipgloss"
)

const auraeASCII = `
   ___  __  _____  ___  ____
  / _ |/ / / / _ \/ _ |/ __/
 / __ / /_/ / , _/ __ / _/
/_/ |_\____/_/|_/_/ |_/___/`

var (
	bannerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA064")).Bold(true)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
)

func banner() string {
	return bannerStyle.Render(auraeASCII)
}

// printHelp writes a formatted help message to w.
func printHelp(w io.Writer, ver string) {
	fmt.Fprintln(w, banner())
	fmt.Fprintf(w, "aurae %s: studio site development server\n", ver)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  aurae [flags]")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Flags:")
	fmt.Fprintf(w, "  -addr <host:port>     Listen address (default: %s)\n", site.DefaultAddr)
	fmt.Fprintln(w, "  -variant <name>       local or vercel (default: local)")
	fmt.Fprintln(w, "  -config <path>        YAML config file")
	fmt.Fprintln(w, "  -reload               Reload templates when files change")
	fmt.Fprintln(w, "  -version              Print version and exit")
	fmt.Fprintln(w, "  -help                 Show this help")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  aurae -reload")
	fmt.Fprintln(w, "  aurae -variant vercel -addr 127.0.0.1:3000")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment:")
	for _, key := range []string{
		"AURAE_ADDR",
		"AURAE_VARIANT",
		"AURAE_LOCATION",
		"AURAE_TEMPLATE_DIR",
		"AURAE_STATIC_DIR",
		"AURAE_CONTENT_DIR",
	} {
		fmt.Fprintf(w, "  %-20s  %s\n", key, envStatus(key))
	}
}

// printStartup reports where the server listens and which assets it uses.
func printStartup(w io.Writer, cfg site.Config, dirs site.AssetDirs) {
	fmt.Fprintln(w, banner())
	fmt.Fprintf(w, "%s http://%s\n", labelStyle.Render("listening on"), cfg.Addr)
	fmt.Fprintf(w, "%s %s (%s)\n", labelStyle.Render("variant     "), cfg.Variant, cfg.Location)
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("templates   "), dirs.Templates)
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("static      "), dirs.Static)
	if cfg.Reload {
		fmt.Fprintf(w, "%s on\n", labelStyle.Render("reload      "))
	}
}

// envStatus returns "[set]" if the named environment variable is non-empty,
// or "[not set]" otherwise.
func envStatus(key string) string {
	if os.Getenv(key) != "" {
		return "[set]"
	}
	return "[not set]"
}
