package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"nimbus/internal/ui"
)

// errNoAPIKey is returned when no key is configured and none can be asked for.
var errNoAPIKey = errors.New("no OpenWeather API key: set NIMBUS_API_KEY or pass --api-key")

func apiKeyPath(configDir string) string {
	return filepath.Join(configDir, "api_key")
}

func saveAPIKey(configDir, key string) error {
	if strings.TrimSpace(key) == "" {
		return nil
	}
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return err
	}
	// Owner read/write only.
	return os.WriteFile(apiKeyPath(configDir), []byte(strings.TrimSpace(key)+"\n"), 0600)
}

func loadAPIKey(configDir string) (string, error) {
	data, err := os.ReadFile(apiKeyPath(configDir))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// resolveAPIKey returns the stored key, or asks for one when running on a
// terminal.
func resolveAPIKey(configDir string, interactive bool) (string, error) {
	key, err := loadAPIKey(configDir)
	if err != nil {
		return "", fmt.Errorf("failed to load stored API key: %w", err)
	}
	if key != "" {
		return key, nil
	}
	if !interactive || !stdinIsTerminal() {
		return "", errNoAPIKey
	}

	key, err = runOnboarding(configDir)
	if err != nil {
		return "", fmt.Errorf("failed to run onboarding: %w", err)
	}
	if key == "" {
		return "", errNoAPIKey
	}
	return key, nil
}

func stdinIsTerminal() bool {
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

type onboardingStep int

const (
	stepKey onboardingStep = iota
	stepDone
)

type onboardingModel struct {
	step        onboardingStep
	keyInput    textinput.Model
	capturedKey string
	status      string
	width       int
	height      int
}

var keyInputStyle = lipgloss.NewStyle().
	BorderStyle(lipgloss.NormalBorder()).
	BorderForeground(ui.ColorAccent).
	Padding(0, 1)

func newOnboardingModel() onboardingModel {
	in := textinput.New()
	in.Placeholder = "Paste OpenWeather API key here"
	in.CharLimit = 128
	in.Prompt = "key> "
	in.EchoMode = textinput.EchoPassword
	in.TextStyle = lipgloss.NewStyle().Foreground(ui.ColorText)
	in.PlaceholderStyle = lipgloss.NewStyle().Foreground(ui.ColorMuted)
	in.Cursor.Style = lipgloss.NewStyle().Foreground(ui.ColorText).Background(ui.ColorAccent)
	in.Focus()

	return onboardingModel{
		step:     stepKey,
		keyInput: in,
	}
}

func (m onboardingModel) Init() tea.Cmd { return textinput.Blink }

func (m onboardingModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		if m.step != stepKey {
			return m, nil
		}
		switch msg.String() {
		case "enter":
			key := strings.TrimSpace(m.keyInput.Value())
			if key == "" {
				m.status = "A key is required to fetch weather."
				return m, nil
			}
			m.capturedKey = key
			m.status = "API key saved."
			m.step = stepDone
			return m, tea.Quit
		case "esc", "ctrl+c":
			m.status = "Setup canceled."
			m.step = stepDone
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.keyInput, cmd = m.keyInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m onboardingModel) View() string {
	width := m.width
	height := m.height
	if width <= 0 {
		width = 100
	}
	if height <= 0 {
		height = 28
	}

	header := m.renderHeader(width)
	footer := ui.FooterStyle.Width(width).Render("enter save  esc cancel")

	contentHeight := max(8, height-4)
	content := m.renderContent(width, contentHeight)

	return lipgloss.NewStyle().
		Foreground(ui.ColorText).
		Width(width).
		Height(height).
		Render(lipgloss.JoinVertical(lipgloss.Left, header, content, footer))
}

func (m onboardingModel) renderHeader(width int) string {
	left := "  " + ui.LabelStyle.Render("nimbus") + " " + ui.BreadcrumbStyle.Render("› Setup")
	right := ui.BreadcrumbStyle.Render(time.Now().Format("Mon 02 Jan")) + "  "
	padding := max(0, width-lipgloss.Width(left)-lipgloss.Width(right))
	return ui.TitleStyle.Width(width).Render(left + strings.Repeat(" ", padding) + right)
}

func (m onboardingModel) renderContent(width, height int) string {
	cardWidth := min(92, width-6)
	if cardWidth < 40 {
		cardWidth = width - 2
	}

	var body string
	switch m.step {
	case stepKey:
		input := keyInputStyle.Width(max(30, cardWidth-14)).Render(m.keyInput.View())
		lines := []string{
			ui.LabelStyle.Render("Get an OpenWeather API key:"),
			"",
			ui.BreadcrumbStyle.Render("1) https://home.openweathermap.org/users/sign_up"),
			ui.BreadcrumbStyle.Render("2) Subscribe to One Call API 3.0"),
			ui.BreadcrumbStyle.Render("3) Copy the key from the API keys tab"),
			"",
			ui.LabelStyle.Render("OpenWeather API Key"),
			input,
			"",
			ui.BreadcrumbStyle.Render("The key is stored in ~/.nimbus/api_key (owner read/write only)."),
		}
		if m.status != "" {
			lines = append(lines, "", ui.ErrorStyle.Render(m.status))
		}
		body = lipgloss.JoinVertical(lipgloss.Left, lines...)
	default:
		body = lipgloss.JoinVertical(lipgloss.Left, ui.LabelStyle.Render("Setup complete"), "", ui.BreadcrumbStyle.Render(m.status))
	}

	card := ui.PanelStyle.Width(cardWidth).Render(body)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top, card)
}

func runOnboarding(configDir string) (string, error) {
	prog := tea.NewProgram(newOnboardingModel(), tea.WithAltScreen())
	finalModel, err := prog.Run()
	if err != nil {
		return "", fmt.Errorf("onboarding tui failed: %w", err)
	}
	m, ok := finalModel.(onboardingModel)
	if !ok {
		return "", fmt.Errorf("unexpected onboarding model type")
	}
	if err := saveAPIKey(configDir, m.capturedKey); err != nil {
		return "", err
	}
	return m.capturedKey, nil
}
