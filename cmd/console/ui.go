package main

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/muesli/reflow/wordwrap"

	"github.com/chimera-director/chimera/pkg/game"
)

const (
	AgentName       = "Director"
	PlaceHolderText = "What do you do next?"
)

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config        *ConsoleConfig
	client        *http.Client
	session       *SessionResponse
	storyViewport viewport.Model
	metaViewport  viewport.Model
	textarea      textarea.Model
	ready         bool
	width         int
	height        int
	err           error
	loading       bool

	// Onboarding state: character name entry before the story starts
	showOnboarding bool
	creating       bool

	// Quit confirmation state
	showQuitModal bool

	// Transient lines shown below the story log
	statusLines []string

	// Snapshot list cached for /load by number
	snapshots []game.Snapshot

	// Progress bar state
	progressTick int
}

type sessionMsg struct {
	session *SessionResponse
	err     error
}

type sessionCreatedMsg struct {
	session *SessionResponse
	err     error
}

type suggestionsMsg struct {
	suggestions []string
	err         error
}

type snapshotsMsg struct {
	snapshots []game.Snapshot
	err       error
}

type saveCopiedMsg struct {
	err error
}

type notificationsMsg struct {
	notifications []string
}

type progressTickMsg struct{}

var (
	storyPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	directorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	imageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("176")) // lavender

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)
)

var separatorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240")) // dark grey

func NewConsoleUI(cfg *ConsoleConfig, client *http.Client) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 1000
	ta.SetWidth(50)
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	storyVp := viewport.New(50, 20)
	storyVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	return ConsoleUI{
		config:         cfg,
		client:         client,
		textarea:       ta,
		storyViewport:  storyVp,
		metaViewport:   metaVp,
		ready:          false,
		showOnboarding: true,
		creating:       true,
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	return tea.Batch(m.createSession(), textarea.Blink)
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showOnboarding {
		return m.updateOnboarding(msg)
	}

	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		// Pass mouse events to all components; each ignores events outside
		// its bounds.
		m.storyViewport, vpCmd = m.storyViewport.Update(msg)
		m.textarea, tiCmd = m.textarea.Update(msg)
		m.metaViewport, mvCmd = m.metaViewport.Update(msg)
		return m, tea.Batch(tiCmd, vpCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.writeStoryContent()
		if m.session != nil {
			m.metaViewport.SetContent(writeMetadata(m.session))
		}

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyEnter:
			if m.loading {
				return m, nil
			}

			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}

			if strings.HasPrefix(input, "/") {
				return m.handleCommand(input)
			}

			m.textarea.Reset()
			m.loading = true
			m.progressTick = 0
			m.statusLines = nil

			// Show the action immediately; the server echoes it back in
			// the story log once the turn settles.
			if m.session != nil && m.session.State != nil {
				m.session.State.GameState.StoryLog = append(m.session.State.GameState.StoryLog, game.StoryLogEntry{
					Kind:    game.EntryPlayer,
					Content: input,
				})
			}
			m.writeStoryContent()

			return m, tea.Batch(m.submitAction(input), progressTick())
		}

	case sessionMsg:
		m.loading = false
		if msg.err != nil {
			m.statusLines = append(m.statusLines, errorStyle.Render("Error: "+msg.err.Error()))
			m.writeStoryContent()
			return m, m.refreshSession()
		}
		m.session = msg.session
		m.writeStoryContent()
		m.metaViewport.SetContent(writeMetadata(m.session))
		m.storyViewport.GotoBottom()
		return m, m.pollNotifications()

	case suggestionsMsg:
		m.loading = false
		if msg.err != nil {
			m.statusLines = append(m.statusLines, errorStyle.Render("Error: "+msg.err.Error()))
		} else {
			m.statusLines = append(m.statusLines, titleStyle.Render("Suggestions:"))
			for _, s := range msg.suggestions {
				m.statusLines = append(m.statusLines, "  • "+s)
			}
		}
		m.writeStoryContent()
		return m, m.refreshSession()

	case snapshotsMsg:
		m.loading = false
		if msg.err != nil {
			m.statusLines = append(m.statusLines, errorStyle.Render("Error: "+msg.err.Error()))
		} else {
			m.snapshots = msg.snapshots
			m.statusLines = append(m.statusLines, titleStyle.Render("Snapshots:"))
			if len(msg.snapshots) == 0 {
				m.statusLines = append(m.statusLines, "  None yet. Create one with /snapshot <name>.")
			}
			for i, snap := range msg.snapshots {
				m.statusLines = append(m.statusLines, fmt.Sprintf("  %d - %s (%s)", i+1, snap.Name, snap.CreatedAt.Format(time.RFC822)))
			}
		}
		m.writeStoryContent()

	case saveCopiedMsg:
		m.loading = false
		if msg.err != nil {
			m.statusLines = append(m.statusLines, errorStyle.Render("Error: "+msg.err.Error()))
		} else {
			m.statusLines = append(m.statusLines, loadingStyle.Render("Save copied to clipboard."))
		}
		m.writeStoryContent()

	case notificationsMsg:
		for _, n := range msg.notifications {
			m.statusLines = append(m.statusLines, loadingStyle.Render(n))
		}
		if len(msg.notifications) > 0 {
			m.writeStoryContent()
		}

	case progressTickMsg:
		if m.loading {
			m.progressTick++
			m.writeStoryContent()
			return m, progressTick()
		}
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.storyViewport, vpCmd = m.storyViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

func (m *ConsoleUI) resize() {
	storyWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - storyWidth - 6

	m.storyViewport.Width = storyWidth - 2
	m.storyViewport.Height = m.height - 7
	m.metaViewport.Width = metaWidth - 2
	m.metaViewport.Height = m.height - 4
	m.textarea.SetWidth(storyWidth - 4)
	m.ready = true
}

// writeStoryContent rebuilds the story viewport from the session state for
// the current viewport width.
func (m *ConsoleUI) writeStoryContent() {
	storyWidth := m.storyViewport.Width - 6
	if storyWidth < 10 {
		storyWidth = 10
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render("CHIMERA") + "\n\n")
	content.WriteString("Type your actions below to shape the story.\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", storyWidth-6)) + "\n\n")

	if m.session != nil && m.session.State != nil {
		for _, entry := range m.session.State.GameState.StoryLog {
			switch entry.Kind {
			case game.EntryPlayer:
				content.WriteString(userStyle.Render("You: ") + wordwrap.String(entry.Content, storyWidth-6) + "\n\n")
			case game.EntryNarrative:
				content.WriteString(formatDirectorResponse(entry.Content, storyWidth) + "\n\n")
			case game.EntryImage:
				content.WriteString(imageStyle.Render("[Image] ") + wordwrap.String(imageCaption(entry), storyWidth-10) + "\n\n")
			case game.EntrySystem:
				content.WriteString(separatorStyle.Render(wordwrap.String(entry.Content, storyWidth)) + "\n\n")
			}
		}
	}

	for _, line := range m.statusLines {
		content.WriteString(line + "\n")
	}
	if len(m.statusLines) > 0 {
		content.WriteString("\n")
	}

	if m.loading {
		content.WriteString(m.renderProgressBar())
	}

	m.storyViewport.SetContent(content.String())
	m.storyViewport.GotoBottom()
}

// imageCaption summarizes an image entry for a text terminal.
func imageCaption(entry game.StoryLogEntry) string {
	switch entry.Content {
	case "generating...":
		return "generating..."
	case "Image generation failed.", "Insufficient credits.":
		return entry.Content
	}
	if entry.Prompt != "" {
		return entry.Prompt
	}
	return "(image ready)"
}

func writeMetadata(s *SessionResponse) string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("SESSION") + "\n\n")

	content.WriteString("Session ID:\n")
	content.WriteString(s.SessionID.String()[:8] + "...\n\n")

	content.WriteString("Credits:\n")
	content.WriteString(fmt.Sprintf("%d / %d\n\n", s.Credits.Balance, s.Credits.Max))

	if s.State != nil {
		c := s.State.Character
		if c.Name != "" {
			content.WriteString("Character:\n")
			content.WriteString(c.Name + "\n\n")
		}
		if len(c.Inventory) > 0 {
			content.WriteString("Inventory:\n")
			for _, item := range c.Inventory {
				content.WriteString("• " + item + "\n")
			}
			content.WriteString("\n")
		}
		if len(c.Status) > 0 {
			content.WriteString("Status:\n")
			for k, v := range c.Status {
				content.WriteString(fmt.Sprintf("• %s: %s\n", k, v))
			}
			content.WriteString("\n")
		}
		if len(s.State.World.NPCs) > 0 {
			content.WriteString("Characters met:\n")
			for _, npc := range s.State.World.NPCs {
				content.WriteString("• " + npc.Name + "\n")
			}
			content.WriteString("\n")
		}
	}

	content.WriteString("History:\n")
	content.WriteString(fmt.Sprintf("undo %v / redo %v\n\n", s.CanUndo, s.CanRedo))

	content.WriteString("Commands:\n")
	content.WriteString("• Enter: Send\n")
	content.WriteString("• /suggest: Ideas\n")
	content.WriteString("• /undo, /redo\n")
	content.WriteString("• /snapshot <name>\n")
	content.WriteString("• /snapshots, /load <n>\n")
	content.WriteString("• /copy: Save to clipboard\n")
	content.WriteString("• /help: Help\n")
	content.WriteString("• Ctrl+C: Quit\n")

	return content.String()
}

func formatDirectorResponse(response string, width int) string {
	prefix := AgentName + ": "
	wrapped := wordwrap.String(response, width-len(prefix))
	return directorStyle.Render(prefix) + wrapped
}

func (m ConsoleUI) handleCommand(input string) (tea.Model, tea.Cmd) {
	m.textarea.Reset()
	m.statusLines = nil

	fields := strings.Fields(input)
	cmd := strings.ToLower(fields[0])

	switch cmd {
	case "/help":
		m.statusLines = append(m.statusLines,
			titleStyle.Render("Help:"),
			"  • Type actions and press Enter. The director responds and",
			"    updates your character, inventory and world.",
			"  • /suggest asks for action ideas (costs credits).",
			"  • /undo and /redo step through turns.",
			"  • /snapshot <name> saves a branch point; /snapshots lists",
			"    them; /load <n> returns to one.",
			"  • /copy puts the full save file on the clipboard.",
		)
		m.writeStoryContent()
		return m, nil

	case "/undo":
		m.loading = true
		return m, tea.Batch(m.doUndo(), progressTick())

	case "/redo":
		m.loading = true
		return m, tea.Batch(m.doRedo(), progressTick())

	case "/suggest":
		m.loading = true
		return m, tea.Batch(m.doSuggest(), progressTick())

	case "/snapshot":
		if len(fields) < 2 {
			m.statusLines = append(m.statusLines, errorStyle.Render("Usage: /snapshot <name>"))
			m.writeStoryContent()
			return m, nil
		}
		name := strings.Join(fields[1:], " ")
		m.loading = true
		return m, tea.Batch(m.doCreateSnapshot(name), progressTick())

	case "/snapshots":
		m.loading = true
		return m, tea.Batch(m.doListSnapshots(), progressTick())

	case "/load":
		if len(fields) != 2 {
			m.statusLines = append(m.statusLines, errorStyle.Render("Usage: /load <number> (see /snapshots)"))
			m.writeStoryContent()
			return m, nil
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil || n < 1 || n > len(m.snapshots) {
			m.statusLines = append(m.statusLines, errorStyle.Render("Unknown snapshot number. Run /snapshots first."))
			m.writeStoryContent()
			return m, nil
		}
		m.loading = true
		return m, tea.Batch(m.doLoadSnapshot(m.snapshots[n-1].ID), progressTick())

	case "/copy":
		m.loading = true
		return m, tea.Batch(m.doCopySave(), progressTick())

	default:
		m.statusLines = append(m.statusLines, errorStyle.Render("Unknown command. Try /help."))
		m.writeStoryContent()
		return m, nil
	}
}

func (m ConsoleUI) createSession() tea.Cmd {
	return func() tea.Msg {
		s, err := createSession(m.client, m.config.APIBaseURL)
		return sessionCreatedMsg{s, err}
	}
}

func (m ConsoleUI) submitAction(action string) tea.Cmd {
	return func() tea.Msg {
		s, err := sendAction(m.client, m.config.APIBaseURL, m.session.SessionID, action)
		return sessionMsg{s, err}
	}
}

func (m ConsoleUI) refreshSession() tea.Cmd {
	return func() tea.Msg {
		s, err := getSession(m.client, m.config.APIBaseURL, m.session.SessionID)
		return sessionMsg{s, err}
	}
}

func (m ConsoleUI) doUndo() tea.Cmd {
	return func() tea.Msg {
		s, err := undoTurn(m.client, m.config.APIBaseURL, m.session.SessionID)
		return sessionMsg{s, err}
	}
}

func (m ConsoleUI) doRedo() tea.Cmd {
	return func() tea.Msg {
		s, err := redoTurn(m.client, m.config.APIBaseURL, m.session.SessionID)
		return sessionMsg{s, err}
	}
}

func (m ConsoleUI) doSuggest() tea.Cmd {
	return func() tea.Msg {
		suggestions, err := requestSuggestions(m.client, m.config.APIBaseURL, m.session.SessionID)
		return suggestionsMsg{suggestions, err}
	}
}

func (m ConsoleUI) doCreateSnapshot(name string) tea.Cmd {
	return func() tea.Msg {
		if _, err := createSnapshot(m.client, m.config.APIBaseURL, m.session.SessionID, name); err != nil {
			return snapshotsMsg{nil, err}
		}
		snaps, err := listSnapshots(m.client, m.config.APIBaseURL, m.session.SessionID)
		return snapshotsMsg{snaps, err}
	}
}

func (m ConsoleUI) doListSnapshots() tea.Cmd {
	return func() tea.Msg {
		snaps, err := listSnapshots(m.client, m.config.APIBaseURL, m.session.SessionID)
		return snapshotsMsg{snaps, err}
	}
}

func (m ConsoleUI) doLoadSnapshot(snapshotID uuid.UUID) tea.Cmd {
	return func() tea.Msg {
		s, err := loadSnapshot(m.client, m.config.APIBaseURL, m.session.SessionID, snapshotID)
		return sessionMsg{s, err}
	}
}

func (m ConsoleUI) doCopySave() tea.Cmd {
	return func() tea.Msg {
		doc, err := exportSave(m.client, m.config.APIBaseURL, m.session.SessionID)
		if err != nil {
			return saveCopiedMsg{err}
		}
		return saveCopiedMsg{clipboard.WriteAll(doc)}
	}
}

func (m ConsoleUI) pollNotifications() tea.Cmd {
	return func() tea.Msg {
		notifications, err := fetchNotifications(m.client, m.config.APIBaseURL, m.session.SessionID)
		if err != nil {
			return notificationsMsg{nil}
		}
		return notificationsMsg{notifications}
	}
}

func (m ConsoleUI) startGameCmd(name string) tea.Cmd {
	return func() tea.Msg {
		s, err := startGame(m.client, m.config.APIBaseURL, m.session.SessionID, name, "")
		return sessionMsg{s, err}
	}
}

func (m ConsoleUI) updateOnboarding(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case sessionCreatedMsg:
		m.creating = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.session = msg.session
		}

	case sessionMsg:
		// Game started; switch to the main view.
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.session = msg.session
		m.showOnboarding = false
		m.textarea.Reset()
		m.textarea.Placeholder = PlaceHolderText
		m.textarea.Focus()
		m.writeStoryContent()
		m.metaViewport.SetContent(writeMetadata(m.session))
		return m, textarea.Blink

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			if m.creating || m.loading || m.err != nil || m.session == nil {
				return m, nil
			}
			name := strings.TrimSpace(m.textarea.Value())
			if name == "" {
				return m, nil
			}
			m.loading = true
			return m, m.startGameCmd(name)
		}
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				m.textarea.Focus()
				return m, textarea.Blink
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderOnboarding() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	if m.creating {
		content.WriteString(modalTitleStyle.Render("Connecting..."))
		content.WriteString("\n\n")
		content.WriteString(loadingStyle.Render("Creating your session..."))
	} else if m.err != nil {
		content.WriteString(modalTitleStyle.Render("Error"))
		content.WriteString("\n\n")
		content.WriteString(errorStyle.Render(m.err.Error()))
		content.WriteString("\n\n")
		content.WriteString("Press Ctrl+C to exit")
	} else if m.loading {
		content.WriteString(modalTitleStyle.Render("Starting..."))
		content.WriteString("\n\n")
		content.WriteString(loadingStyle.Render("Setting the stage..."))
	} else {
		content.WriteString(modalTitleStyle.Render("Who are you?"))
		content.WriteString("\n\n")
		content.WriteString("Name your character to begin the story.")
		content.WriteString("\n\n")
		content.WriteString(m.textarea.View())
		content.WriteString("\n")
		content.WriteString(promptStyle.Render("Press Enter to begin, Ctrl+C to exit"))
	}

	modal := modalStyle.Width(60).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit?"))
	content.WriteString("\n\n")
	content.WriteString("Your story is saved and can be resumed later.")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showOnboarding {
		return m.renderOnboarding()
	}

	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	storyWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - storyWidth - 6

	storyPanel := storyPanelStyle.Width(storyWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.storyViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", storyWidth-4)),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, storyPanel, metaPanel)
}

// renderProgressBar creates an animated progress bar for loading states.
func (m ConsoleUI) renderProgressBar() string {
	usable := m.storyViewport.Width - 6
	if usable <= 0 {
		usable = 30
	}
	if usable > 80 {
		usable = 80
	} else if usable < 10 {
		usable = 10
	}

	const totalFrames = 40
	frame := m.progressTick % totalFrames
	filled := (frame * usable) / totalFrames

	var bar strings.Builder
	for i := 0; i < usable; i++ {
		if i < filled {
			bar.WriteString("█")
		} else if i == filled && frame%4 < 2 {
			bar.WriteString("▓")
		} else {
			bar.WriteString("░")
		}
	}
	return separatorStyle.Render(bar.String())
}

func progressTick() tea.Cmd {
	return tea.Tick(time.Millisecond*200, func(time.Time) tea.Msg {
		return progressTickMsg{}
	})
}
