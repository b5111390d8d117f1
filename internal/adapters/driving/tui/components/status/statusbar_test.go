package status

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gmacarthur/innersync-desktop/internal/adapters/driving/tui/keymap"
	"github.com/gmacarthur/innersync-desktop/internal/adapters/driving/tui/styles"
)

func TestNewBar(t *testing.T) {
	bar := NewBar(styles.DefaultStyles(), keymap.DefaultKeyMap())

	require.NotNil(t, bar)
	assert.Equal(t, LevelInfo, bar.Level())
	assert.Equal(t, "", bar.Message())
	assert.Equal(t, 80, bar.Width())
}

func TestNewBar_NilStyles(t *testing.T) {
	bar := NewBar(nil, nil)

	require.NotNil(t, bar)
	assert.NotNil(t, bar.styles)
	assert.NotNil(t, bar.keymap)
}

func TestStatusBar_InitAndUpdate(t *testing.T) {
	bar := NewBar(nil, nil)

	assert.Nil(t, bar.Init())

	updated, cmd := bar.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, bar, updated)
	assert.Nil(t, cmd)
}

func TestStatusBar_SetInfoAndError(t *testing.T) {
	bar := NewBar(nil, nil)

	bar.SetError("upload: unauthorized")
	assert.Equal(t, LevelError, bar.Level())
	assert.Equal(t, "upload: unauthorized", bar.Message())

	bar.SetInfo("Sync finished: success")
	assert.Equal(t, LevelInfo, bar.Level())
	assert.Equal(t, "Sync finished: success", bar.Message())

	bar.Clear()
	assert.Equal(t, LevelInfo, bar.Level())
	assert.Empty(t, bar.Message())
}

func TestStatusBar_View(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(*Bar)
		contains []string
	}{
		{
			name:     "ready",
			setup:    func(*Bar) {},
			contains: []string{"Ready", "s: sync now", "q: quit"},
		},
		{
			name:     "info",
			setup:    func(b *Bar) { b.SetInfo("Paused") },
			contains: []string{"Paused"},
		},
		{
			name:     "error",
			setup:    func(b *Bar) { b.SetError("boom") },
			contains: []string{"Error: boom"},
		},
		{
			name:     "error without message",
			setup:    func(b *Bar) { b.SetError("") },
			contains: []string{"Error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := NewBar(nil, nil)
			bar.SetWidth(120)
			tt.setup(bar)

			view := bar.View()
			for _, s := range tt.contains {
				assert.Contains(t, view, s)
			}
		})
	}
}

func TestStatusBar_NarrowWidth(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetWidth(10)

	assert.NotEmpty(t, bar.View())
	assert.Equal(t, 10, bar.Width())
}
