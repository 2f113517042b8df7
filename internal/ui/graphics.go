package ui

import (
	"context"
	"image"
	"os"
	"strings"
	"time"

	"github.com/qeesung/image2ascii/convert"

	tea "github.com/charmbracelet/bubbletea"
)

// Icon art size in terminal cells.
const (
	iconArtWidth  = 20
	iconArtHeight = 8

	iconFetchTimeout = 5 * time.Second
)

// IconFetcher downloads condition icons by code, e.g. "10d".
type IconFetcher interface {
	FetchIcon(ctx context.Context, code string) (image.Image, error)
}

type iconLoadedMsg struct {
	code string
	art  string
	err  error
}

// TerminalCapabilities describes how icon art can be drawn.
type TerminalCapabilities struct {
	Colored bool
}

// DetectTerminalCapabilities inspects the environment for colour support.
func DetectTerminalCapabilities() TerminalCapabilities {
	term := os.Getenv("TERM")
	_, noColor := os.LookupEnv("NO_COLOR")
	return TerminalCapabilities{
		Colored: !noColor && term != "dumb",
	}
}

func fetchIconCmd(fetcher IconFetcher, code string, caps TerminalCapabilities) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), iconFetchTimeout)
		defer cancel()

		img, err := fetcher.FetchIcon(ctx, code)
		if err != nil {
			return iconLoadedMsg{code: code, err: err}
		}
		return iconLoadedMsg{code: code, art: convertToASCII(img, iconArtWidth, iconArtHeight, caps.Colored)}
	}
}

// convertToASCII converts an image to ASCII art.
func convertToASCII(img image.Image, targetWidth, targetHeight int, colored bool) string {
	converter := convert.NewImageConverter()

	opts := convert.DefaultOptions
	opts.FixedWidth = targetWidth
	opts.FixedHeight = targetHeight
	opts.Colored = colored
	opts.Ratio = 0.5 // terminal cells are about twice as tall as wide

	return strings.TrimRight(converter.Image2ASCIIString(img, &opts), "\n")
}
