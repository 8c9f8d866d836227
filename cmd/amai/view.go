package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// rows taken by everything except the track list
const chromeHeight = 16

var (
	nowPlayingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	cursorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	dimStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

func (m model) View() string {
	headingStyle := lipgloss.NewStyle().
		Width(m.termWidth).
		Align(lipgloss.Center).
		Foreground(lipgloss.Color("86"))
	s := headingStyle.Render("Amai")
	s += "\n\n"

	if m.searching || m.search.Value() != "" {
		s += m.search.View() + "\n\n"
	}

	s += m.listView()
	s += "\n"

	infoStyle := lipgloss.NewStyle().
		Width(m.termWidth).
		Align(lipgloss.Center).
		Foreground(lipgloss.Color("87"))
	if !m.info.Art.Empty() {
		// the image is drawn from the cursor, so pad it to the middle
		if pad := (m.termWidth - m.info.Art.Cols) / 2; pad > 0 {
			s += strings.Repeat(" ", pad)
		}
		s += m.info.Art.Data + "\n"
	}
	title, artist, album := m.nowPlaying()
	s += infoStyle.Render(fmt.Sprintf("%s\n%s\n%s", title, artist, album))
	s += "\n\n"

	state := m.track.Snapshot()
	length := m.trackLength(state.Duration)
	var ratio float64
	if length > 0 {
		ratio = min(1, float64(m.position)/float64(length))
	}
	s += m.positionBar.ViewAs(ratio) + " " + formatDuration(m.position) + " / " + formatDuration(length) + "\n"
	s += "Volume " + m.volumeBar.ViewAs(state.Volume) + fmt.Sprintf(" %3.0f%%", state.Volume*100) + "\n"
	s += "Status: " + playbackStatus(state.Loaded, state.Playing) + "\n\n"

	if m.err != nil {
		s += errStyle.Render("error: "+m.err.Error()) + "\n\n"
	}

	s += m.help.View(m.keys)
	return s
}

func (m model) listView() string {
	if len(m.library.Tracks) == 0 {
		return dimStyle.Render("No music found in "+m.musicDir) + "\n"
	}
	if len(m.visible) == 0 {
		return dimStyle.Render("Nothing matches "+m.search.Value()) + "\n"
	}

	start, end := window(m.cursor, len(m.visible), m.listHeight())

	var b strings.Builder
	for i := start; i < end; i++ {
		t := m.visible[i]
		prefix := "  "
		if i == m.cursor {
			prefix = cursorStyle.Render("> ")
		}
		name := t.Name
		if t.Path == m.playingPath {
			name = nowPlayingStyle.Render("♪ " + name)
		}
		b.WriteString(prefix + name + "\n")
	}
	return b.String()
}

// nowPlaying falls back to the file name when the track has no title tag.
func (m model) nowPlaying() (title, artist, album string) {
	if m.playingPath == "" {
		return "Nothing playing", "", ""
	}
	title = m.info.Title
	if title == "" {
		name := filepath.Base(m.playingPath)
		title = strings.TrimSuffix(name, filepath.Ext(name))
	}
	return title, m.info.Artist, m.info.Album
}

// trackLength prefers the engine's length and falls back to the one
// read from the tags.
func (m model) trackLength(engine time.Duration) time.Duration {
	if engine > 0 || m.playingPath == "" || m.info.Path != m.playingPath {
		return engine
	}
	return m.info.Duration
}

// listHeight is how many rows the track list gets once the rest of the
// view and the cover art are drawn.
func (m model) listHeight() int {
	return max(3, m.termHeight-chromeHeight-m.info.Art.Rows)
}

// window returns the slice bounds of at most height rows that keep cursor
// in view.
func window(cursor, total, height int) (int, int) {
	if total <= height {
		return 0, total
	}
	start := cursor - height/2
	if start < 0 {
		start = 0
	}
	if start+height > total {
		start = total - height
	}
	return start, start + height
}

func playbackStatus(loaded, playing bool) string {
	switch {
	case playing:
		return "Playing"
	case loaded:
		return "Paused"
	default:
		return "Stopped"
	}
}

func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d.Round(time.Second) / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
