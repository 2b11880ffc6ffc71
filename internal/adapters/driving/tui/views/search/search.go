// Package search provides the product search view for the TUI.
package search

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kush-lhmm/sampann-search/internal/adapters/driving/tui/components/input"
	"github.com/kush-lhmm/sampann-search/internal/adapters/driving/tui/components/list"
	"github.com/kush-lhmm/sampann-search/internal/adapters/driving/tui/components/status"
	"github.com/kush-lhmm/sampann-search/internal/adapters/driving/tui/keymap"
	"github.com/kush-lhmm/sampann-search/internal/adapters/driving/tui/messages"
	"github.com/kush-lhmm/sampann-search/internal/adapters/driving/tui/styles"
	"github.com/kush-lhmm/sampann-search/internal/core/domain"
	"github.com/kush-lhmm/sampann-search/internal/core/ports/driving"
)

// sortCycle is the order the sort key steps through.
var sortCycle = []domain.SortMode{
	domain.SortRelevance,
	domain.SortPriceAsc,
	domain.SortPriceDesc,
	domain.SortTitleAsc,
}

// View represents the search view with input, results list, and status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.Prompt
	list      *list.ResultList
	statusbar *status.Bar

	searchService driving.SearchService
	ctx           context.Context

	sort        domain.SortMode
	rerank      bool
	lastQuery   string
	showDetails bool

	width      int
	height     int
	ready      bool
	err        error
	focusInput bool // true = input mode (typing), false = results mode (navigating)
}

// NewView creates a new search view.
func NewView(s *styles.Styles, km *keymap.KeyMap, searchService driving.SearchService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	v := &View{
		styles:        s,
		keymap:        km,
		input:         input.NewSearchInput(s),
		list:          list.NewResultList(s),
		statusbar:     status.NewBar(s, km),
		searchService: searchService,
		ctx:           context.Background(),
		sort:          domain.SortRelevance,
		width:         80,
		height:        24,
		focusInput:    true,
	}
	v.updateMode()
	return v
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the search view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.SearchCompleted:
		v.handleSearchCompleted(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		if v.showDetails {
			v.showDetails = false
			return v, nil
		}
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}

	if v.focusInput {
		if msg.Type == tea.KeyEnter {
			query := strings.TrimSpace(v.input.Value())
			if query == "" {
				return v, nil
			}
			v.focusInput = false
			v.input.Blur()
			return v, v.performSearch(query)
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	// Results mode.
	if msg.Type == tea.KeyEnter {
		if v.list.SelectedHit() != nil {
			v.showDetails = !v.showDetails
		}
		return v, nil
	}

	switch {
	case keymap.Matches(msg.String(), v.keymap.Up):
		v.list.MoveUp()
	case keymap.Matches(msg.String(), v.keymap.Down):
		v.list.MoveDown()
	case keymap.Matches(msg.String(), v.keymap.NewSearch):
		v.focusInput = true
		v.showDetails = false
		v.input.SetValue("")
		return v, v.input.Focus()
	case keymap.Matches(msg.String(), v.keymap.Sort):
		v.sort = nextSort(v.sort)
		v.updateMode()
		return v, v.rerun()
	case keymap.Matches(msg.String(), v.keymap.Rerank):
		v.rerank = !v.rerank
		v.updateMode()
		return v, v.rerun()
	}
	return v, nil
}

func nextSort(current domain.SortMode) domain.SortMode {
	for i, m := range sortCycle {
		if m == current {
			return sortCycle[(i+1)%len(sortCycle)]
		}
	}
	return domain.SortRelevance
}

func (v *View) rerun() tea.Cmd {
	if v.lastQuery == "" {
		return nil
	}
	return v.performSearch(v.lastQuery)
}

// Request builds the search request for query under the current modes.
func (v *View) Request(query string) domain.SearchRequest {
	req := domain.SearchRequest{
		Query:         query,
		DistinctBySKU: true,
		Sort:          v.sort,
		Ranker:        domain.RankerNone,
	}
	if v.rerank {
		req.Ranker = domain.RankerCrossEncoder
	}
	return req
}

func (v *View) performSearch(query string) tea.Cmd {
	v.lastQuery = query
	v.showDetails = false
	v.statusbar.SetState(status.StateSearching)
	v.statusbar.SetMessage("")
	req := v.Request(query)
	return func() tea.Msg {
		if v.searchService == nil {
			return messages.ErrorOccurred{Err: ErrNoSearchService}
		}
		result, err := v.searchService.Search(v.ctx, req)
		return messages.SearchCompleted{Query: query, Result: result, Err: err}
	}
}

func (v *View) handleSearchCompleted(msg messages.SearchCompleted) {
	if msg.Err != nil {
		v.setError(msg.Err)
		return
	}

	v.err = nil
	var hits []domain.Hit
	if msg.Result != nil {
		hits = msg.Result.Hits
	}
	v.list.SetHits(hits)
	v.statusbar.SetState(status.StateResults)
	v.statusbar.SetMessage("")
	v.statusbar.SetResultCount(len(hits))

	v.focusInput = false
	v.input.Blur()
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

func (v *View) updateMode() {
	mode := string(v.sort)
	if v.rerank {
		mode += " · re-rank"
	}
	v.statusbar.SetMode(mode)
}

// View renders the search view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 10)
	sections = append(sections, v.styles.Title.Render("Tata Sampann"), "", v.input.View(), "")

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	if v.showDetails {
		sections = append(sections, v.renderDetails())
	} else {
		sections = append(sections, v.list.View())
	}

	sections = append(sections, "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (v *View) renderDetails() string {
	hit := v.list.SelectedHit()
	if hit == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(v.styles.Subtitle.Render(hit.Title))
	b.WriteString("\n\n")
	row := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("%-10s", label)))
		b.WriteString(v.styles.Normal.Render(value))
		b.WriteString("\n")
	}
	row("SKU", hit.SKUID)
	row("Category", hit.Category)
	row("Price", list.FormatPrice(hit.Price))
	if hit.Weight != nil {
		row("Pack", fmt.Sprintf("%g %s", hit.Weight.Value, hit.Weight.Unit))
	}
	row("Score", list.FormatScore(hit))
	row("Link", hit.Link)
	if hit.Text != "" {
		b.WriteString("\n")
		label := hit.Section
		if label == "" {
			label = "passage"
		}
		b.WriteString(v.styles.Muted.Render(label + ":"))
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Width(v.width - 4).Render(hit.Text))
		b.WriteString("\n")
	}

	return v.styles.Border.Padding(0, 1).Render(strings.TrimRight(b.String(), "\n"))
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.list.SetDimensions(width, height-10) // Reserve space for header, input, status
	v.statusbar.SetWidth(width)
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Query returns the current search query.
func (v *View) Query() string {
	return v.input.Value()
}

// SetQuery sets the search query.
func (v *View) SetQuery(query string) {
	v.input.SetValue(query)
}

// Hits returns the current hits.
func (v *View) Hits() []domain.Hit {
	return v.list.Hits()
}

// SelectedIndex returns the index of the selected hit.
func (v *View) SelectedIndex() int {
	return v.list.Selected()
}

// Sort returns the active sort mode.
func (v *View) Sort() domain.SortMode {
	return v.sort
}

// Rerank reports whether the re-ranker is requested.
func (v *View) Rerank() bool {
	return v.rerank
}

// ShowingDetails reports whether the detail pane is open.
func (v *View) ShowingDetails() bool {
	return v.showDetails
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// Reset resets the view to initial input mode.
func (v *View) Reset() {
	v.focusInput = true
	v.showDetails = false
	v.lastQuery = ""
	v.input.Focus()
	v.input.SetValue("")
	v.list.SetHits(nil)
	v.err = nil
	v.statusbar.Clear()
}

// InputFocused returns whether the input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}
