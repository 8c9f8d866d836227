package main

import (
	"errors"
	"log"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pes18fan/amai/config"
	"github.com/pes18fan/amai/library"
	"github.com/pes18fan/amai/metadata"
	"github.com/pes18fan/amai/player"
	"github.com/pes18fan/amai/termimg"
)

const (
	seekStep   = 5 * time.Second
	volumeStep = 0.05
)

type model struct {
	termWidth  int
	termHeight int

	cfg          config.Config
	engine       player.Engine
	track        *player.CurrentTrack
	readMetadata func(path string) (metadata.Metadata, error)

	musicDir    string
	library     library.List
	visible     []library.Track
	cursor      int
	playingPath string

	search    textinput.Model
	searching bool

	position time.Duration
	ticking  bool
	info     AudioInfoUpdate
	err      error

	changes <-chan struct{}

	positionBar progress.Model
	volumeBar   progress.Model
	help        help.Model
	keys        keyMap
}

func initialModel(
	cfg config.Config,
	engine player.Engine,
	musicDir string,
	list library.List,
	changes <-chan struct{},
) model {
	search := textinput.New()
	search.Placeholder = "Search Music"
	search.Prompt = "/ "

	m := model{
		cfg:          cfg,
		engine:       engine,
		track:        player.NewCurrentTrackAt(cfg.Volume),
		readMetadata: metadata.Read,
		musicDir:     musicDir,
		search:       search,
		changes:      changes,
		positionBar:  progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		volumeBar:    progress.New(progress.WithSolidFill("86"), progress.WithoutPercentage()),
		help:         help.New(),
		keys:         defaultKeyMap(),
	}
	m.setLibrary(list)
	return m
}

func listenForFinished(track *player.CurrentTrack) tea.Cmd {
	return func() tea.Msg {
		return StatusMsg(TrackFinished{Index: <-track.Finished()})
	}
}

func listenForChanges(changes <-chan struct{}) tea.Cmd {
	if changes == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		return StatusMsg(LibraryChanged{})
	}
}

func tickPosition(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return positionTick{}
	})
}

func rescan(dir string, exts []string) tea.Cmd {
	return func() tea.Msg {
		list, err := library.Scan(dir, exts)
		return StatusMsg(LibraryUpdate{List: list, Err: err})
	}
}

func loadInfo(path string, coverArt bool, read func(string) (metadata.Metadata, error)) tea.Cmd {
	return func() tea.Msg {
		md, err := read(path)
		if err != nil {
			return StatusMsg(ErrorUpdate{Err: err})
		}

		info := AudioInfoUpdate{
			Path:     path,
			Title:    md.Title,
			Artist:   md.Artist,
			Album:    md.Album,
			Duration: md.Duration,
		}
		if coverArt && md.HasArt {
			art, err := termimg.Encode(md.Art)
			if err != nil {
				log.Println("failed to read artwork:", err)
			} else {
				info.Art = art
			}
		}
		return StatusMsg(info)
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(listenForFinished(m.track), listenForChanges(m.changes))
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.termHeight = msg.Height
		m.termWidth = msg.Width
		m.positionBar.Width = max(10, msg.Width-24)
		m.volumeBar.Width = max(10, msg.Width/4)
		m.help.Width = msg.Width
		return m, nil

	case positionTick:
		m.position = m.track.Position()
		if m.track.Snapshot().Playing {
			return m, tickPosition(m.cfg.PositionInterval)
		}
		m.ticking = false
		return m, nil

	case StatusMsg:
		return m.updateStatus(msg)

	case tea.KeyMsg:
		if m.searching && msg.Type != tea.KeyCtrlC {
			return m.updateSearch(msg)
		}
		return m.updateKeys(msg)
	}

	return m, nil
}

func (m model) updateStatus(msg StatusMsg) (tea.Model, tea.Cmd) {
	switch status := msg.(type) {
	case TrackFinished:
		log.Println("finished playing track", status.Index)
		// a newer track may already be loaded
		if !m.track.Snapshot().Loaded {
			m.position = 0
			m.playingPath = ""
			m.info = AudioInfoUpdate{}
		}
		return m, listenForFinished(m.track)
	case AudioInfoUpdate:
		// drop info for a track that is no longer the current one
		if status.Path == m.playingPath {
			m.info = status
		}
		log.Println("audio info updated")
	case LibraryChanged:
		return m, tea.Batch(rescan(m.musicDir, m.cfg.Extensions), listenForChanges(m.changes))
	case LibraryUpdate:
		if status.Err != nil {
			m.err = status.Err
			return m, nil
		}
		m.setLibrary(status.List)
		log.Println("library rescanned:", len(status.List.Tracks), "tracks")
	case ErrorUpdate:
		m.err = status.Err
	}
	return m, nil
}

func (m model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.search.SetValue("")
		m.search.Blur()
		m.searching = false
		m.refilter()
		return m, nil
	case tea.KeyEnter:
		m.search.Blur()
		m.searching = false
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.refilter()
	return m, cmd
}

func (m model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		if err := m.track.Stop(); err != nil && !errors.Is(err, player.ErrNoTrack) {
			log.Println("failed to stop track:", err)
		}
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.visible)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Play):
		return m.playSelected()

	case key.Matches(msg, m.keys.Toggle):
		if err := m.track.Toggle(); err != nil {
			m.setErr(err)
			return m, nil
		}
		cmd := m.ensureTicking()
		return m, cmd

	case key.Matches(msg, m.keys.SeekBack):
		m.seek(m.track.Position() - seekStep)

	case key.Matches(msg, m.keys.SeekAhead):
		m.seek(m.track.Position() + seekStep)

	case key.Matches(msg, m.keys.VolumeUp):
		m.setErr(m.track.SetVolume(m.track.Snapshot().Volume + volumeStep))

	case key.Matches(msg, m.keys.VolumeDown):
		m.setErr(m.track.SetVolume(m.track.Snapshot().Volume - volumeStep))

	case key.Matches(msg, m.keys.Search):
		m.searching = true
		cmd := m.search.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.Rescan):
		return m, rescan(m.musicDir, m.cfg.Extensions)
	}

	return m, nil
}

func (m *model) playSelected() (tea.Model, tea.Cmd) {
	if m.cursor < 0 || m.cursor >= len(m.visible) {
		return *m, nil
	}
	selected := m.visible[m.cursor]

	m.position = 0
	m.info = AudioInfoUpdate{}
	if err := m.track.Play(m.engine, m.library.Paths(), selected.ID); err != nil {
		m.playingPath = ""
		m.err = err
		return *m, nil
	}
	m.playingPath = selected.Path
	m.err = nil

	cmd := tea.Batch(
		loadInfo(selected.Path, m.cfg.CoverArt, m.readMetadata),
		m.ensureTicking(),
	)
	return *m, cmd
}

func (m *model) seek(position time.Duration) {
	landed, err := m.track.Seek(position)
	if err != nil {
		m.setErr(err)
		return
	}
	m.position = landed
}

// ensureTicking starts the position ticker unless one is already pending.
func (m *model) ensureTicking() tea.Cmd {
	if m.ticking || !m.track.Snapshot().Playing {
		return nil
	}
	m.ticking = true
	return tickPosition(m.cfg.PositionInterval)
}

// setErr shows err unless it only says there is nothing to act on.
func (m *model) setErr(err error) {
	if err == nil || errors.Is(err, player.ErrNoTrack) {
		return
	}
	m.err = err
}

func (m *model) setLibrary(list library.List) {
	m.library = list
	m.refilter()
}

func (m *model) refilter() {
	m.visible = library.Filter(m.library.Tracks, m.search.Value())
	if m.cursor >= len(m.visible) {
		m.cursor = len(m.visible) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}
