// Package settings provides the settings configuration view for the TUI.
package settings

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kush-lhmm/sampann-search/internal/adapters/driving/tui/messages"
	"github.com/kush-lhmm/sampann-search/internal/adapters/driving/tui/styles"
	"github.com/kush-lhmm/sampann-search/internal/core/domain"
	"github.com/kush-lhmm/sampann-search/internal/core/ports/driving"
)

// ErrNoSettingsService indicates that no settings service was provided.
var ErrNoSettingsService = errors.New("settings service not available")

// Key constants for key handling.
const (
	keyDown  = "down"
	keyEnter = "enter"
	keyEsc   = "esc"
)

// Check is the outcome of one provider validation.
type Check struct {
	Name string
	Err  error
}

// validated carries provider check results back to the view.
type validated struct {
	checks []Check
}

// View is the settings configuration view.
type View struct {
	styles          *styles.Styles
	settingsService driving.SettingsService

	settings *domain.AppSettings
	keys     []string
	err      error
	notice   string
	checks   []Check

	selected int
	editing  bool
	editor   textinput.Model

	width  int
	height int
	ready  bool
}

// NewView creates a new settings view.
func NewView(s *styles.Styles, settingsService driving.SettingsService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	editor := textinput.New()
	editor.CharLimit = 512

	v := &View{
		styles:          s,
		settingsService: settingsService,
		editor:          editor,
		width:           80,
		height:          24,
	}
	if settingsService != nil {
		v.keys = settingsService.Keys()
	}
	return v
}

// Init initialises the view and loads settings.
func (v *View) Init() tea.Cmd {
	return v.loadSettings()
}

func (v *View) loadSettings() tea.Cmd {
	return func() tea.Msg {
		if v.settingsService == nil {
			return messages.SettingsLoaded{Err: ErrNoSettingsService}
		}
		settings, err := v.settingsService.Get()
		return messages.SettingsLoaded{Settings: settings, Err: err}
	}
}

// Update handles messages for the settings view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.SettingsLoaded:
		if msg.Err != nil {
			v.err = msg.Err
		} else {
			v.settings = msg.Settings
			v.err = nil
		}
		return v, nil

	case messages.SettingsSaved:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		v.notice = "Saved " + msg.Key
		return v, v.loadSettings()

	case validated:
		v.checks = msg.checks
		v.notice = ""
		return v, nil

	case tea.KeyMsg:
		if v.editing {
			return v.handleEditKeys(msg)
		}
		return v.handleListKeys(msg)
	}

	return v, nil
}

func (v *View) handleListKeys(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case keyEsc:
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	case "up", "k":
		if v.selected > 0 {
			v.selected--
		}
	case keyDown, "j":
		if v.selected < len(v.keys)-1 {
			v.selected++
		}
	case keyEnter:
		if v.settings == nil || len(v.keys) == 0 {
			return v, nil
		}
		key := v.keys[v.selected]
		v.editing = true
		v.err = nil
		v.notice = ""
		if IsSecret(key) {
			v.editor.EchoMode = textinput.EchoPassword
			v.editor.SetValue("")
		} else {
			v.editor.EchoMode = textinput.EchoNormal
			v.editor.SetValue(Value(v.settings, key))
		}
		v.editor.Placeholder = key
		return v, v.editor.Focus()
	case "v":
		v.notice = "Validating providers..."
		return v, v.validate()
	}
	return v, nil
}

func (v *View) handleEditKeys(msg tea.KeyMsg) (*View, tea.Cmd) {
	//nolint:exhaustive // handling only relevant key types
	switch msg.Type {
	case tea.KeyEsc:
		v.stopEditing()
		return v, nil
	case tea.KeyEnter:
		key := v.keys[v.selected]
		value := strings.TrimSpace(v.editor.Value())
		v.stopEditing()
		return v, v.set(key, value)
	}

	var cmd tea.Cmd
	v.editor, cmd = v.editor.Update(msg)
	return v, cmd
}

func (v *View) stopEditing() {
	v.editing = false
	v.editor.SetValue("")
	v.editor.Blur()
}

func (v *View) set(key, value string) tea.Cmd {
	return func() tea.Msg {
		if v.settingsService == nil {
			return messages.SettingsSaved{Key: key, Err: ErrNoSettingsService}
		}
		return messages.SettingsSaved{Key: key, Err: v.settingsService.Set(key, value)}
	}
}

func (v *View) validate() tea.Cmd {
	return func() tea.Msg {
		if v.settingsService == nil {
			return validated{checks: []Check{{Name: "Settings", Err: ErrNoSettingsService}}}
		}
		return validated{checks: []Check{
			{Name: "Embedding", Err: v.settingsService.ValidateEmbeddingConfig()},
			{Name: "Re-ranker", Err: v.settingsService.ValidateRerankerConfig()},
			{Name: "LLM", Err: v.settingsService.ValidateLLMConfig()},
		}}
	}
}

// View renders the settings view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Settings"))
	b.WriteString("\n\n")

	if v.err != nil {
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
		b.WriteString("\n\n")
	}

	if v.settings == nil {
		b.WriteString(v.styles.Muted.Render("Loading settings..."))
		return b.String()
	}

	b.WriteString(v.renderKeys())

	if v.editing {
		b.WriteString("\n")
		b.WriteString(v.styles.Subtitle.Render(v.keys[v.selected] + ":"))
		b.WriteString("\n")
		b.WriteString(v.styles.InputField.Render(v.editor.View()))
		b.WriteString("\n")
	}

	if v.notice != "" {
		b.WriteString("\n")
		b.WriteString(v.styles.Success.Render(v.notice))
		b.WriteString("\n")
	}

	if len(v.checks) > 0 {
		b.WriteString("\n")
		for _, c := range v.checks {
			if c.Err != nil {
				b.WriteString(v.styles.Warning.Render(fmt.Sprintf("%s: %v", c.Name, c.Err)))
			} else {
				b.WriteString(v.styles.Success.Render(c.Name + ": OK"))
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(v.renderHelp())
	return b.String()
}

func (v *View) renderKeys() string {
	var b strings.Builder

	// Scroll the key list so the selection stays in view.
	visible := v.height - 12
	if visible < 5 {
		visible = 5
	}
	start := 0
	if v.selected >= visible {
		start = v.selected - visible + 1
	}
	end := start + visible
	if end > len(v.keys) {
		end = len(v.keys)
	}

	width := 0
	for _, k := range v.keys {
		if len(k) > width {
			width = len(k)
		}
	}

	for i := start; i < end; i++ {
		key := v.keys[i]
		value := Value(v.settings, key)
		if IsSecret(key) {
			value = Mask(value)
		}
		if value == "" {
			value = "-"
		}

		indicator := "  "
		if i == v.selected {
			indicator = "> "
		}
		line := fmt.Sprintf("%s%-*s  %s", indicator, width, key, value)
		if i == v.selected {
			b.WriteString(v.styles.Selected.Render(line))
		} else {
			b.WriteString(v.styles.Normal.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (v *View) renderHelp() string {
	if v.editing {
		return v.styles.Help.Render("[enter] save  [esc] cancel")
	}
	return v.styles.Help.Render("[j/k] navigate  [enter] edit  [v] validate  [esc] back")
}

// IsSecret reports whether key holds a credential.
func IsSecret(key string) bool {
	return strings.HasSuffix(key, ".api_key") || strings.HasSuffix(key, ".password") || key == "storage.dsn"
}

// Mask hides all but the edges of a secret.
func Mask(s string) string {
	switch {
	case s == "":
		return ""
	case len(s) <= 8:
		return "****"
	default:
		return s[:4] + "..." + s[len(s)-4:]
	}
}

// Value renders the current value of a dotted settings key.
//
//nolint:gocyclo // flat key dispatch
func Value(s *domain.AppSettings, key string) string {
	switch key {
	case "search.k":
		return strconv.Itoa(s.Search.K)
	case "search.ce_k":
		return strconv.Itoa(s.Search.CEK)
	case "search.ce_model":
		return s.Search.CEModel
	case "search.ranker":
		return string(s.Search.Ranker)
	case "search.sort":
		return string(s.Search.Sort)
	case "search.browse_max_distance":
		return formatFloat(s.Search.BrowseMaxDistance)
	case "embedding.provider":
		return string(s.Embedding.Provider)
	case "embedding.model":
		return s.Embedding.Model
	case "embedding.base_url":
		return s.Embedding.BaseURL
	case "embedding.api_key":
		return s.Embedding.APIKey
	case "embedding.model_dir":
		return s.Embedding.ModelDir
	case "embedding.requests_per_second":
		return formatFloat(s.Embedding.RequestsPerSecond)
	case "reranker.provider":
		return string(s.Reranker.Provider)
	case "reranker.model":
		return s.Reranker.Model
	case "reranker.base_url":
		return s.Reranker.BaseURL
	case "llm.provider":
		return string(s.LLM.Provider)
	case "llm.model":
		return s.LLM.Model
	case "llm.base_url":
		return s.LLM.BaseURL
	case "llm.api_key":
		return s.LLM.APIKey
	case "llm.temperature":
		return formatFloat(s.LLM.Temperature)
	case "storage.backend":
		return string(s.Storage.Backend)
	case "storage.data_dir":
		return s.Storage.DataDir
	case "storage.dsn":
		return s.Storage.DSN
	case "cache.redis_addr":
		return s.Cache.RedisAddr
	case "cache.password":
		return s.Cache.Password
	case "cache.db":
		return strconv.Itoa(s.Cache.DB)
	case "cache.ttl_seconds":
		return strconv.Itoa(int(s.Cache.TTL / time.Second))
	case "server.addr":
		return s.Server.Addr
	case "server.request_timeout_seconds":
		return strconv.Itoa(int(s.Server.RequestTimeout / time.Second))
	default:
		return ""
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Editing reports whether a value is being edited.
func (v *View) Editing() bool {
	return v.editing
}

// Selected returns the index of the selected key.
func (v *View) Selected() int {
	return v.selected
}

// Reset resets the view to initial state.
func (v *View) Reset() {
	v.selected = 0
	v.err = nil
	v.notice = ""
	v.checks = nil
	v.stopEditing()
}
