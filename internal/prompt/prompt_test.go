package prompt

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type soundLog struct{ played []string }

func (s *soundLog) Play(name string)      { s.played = append(s.played, name) }
func (s *soundLog) PlayAsync(name string) { s.played = append(s.played, name) }

func newTestPrompter(input string) (*Prompter, *bytes.Buffer) {
	var out bytes.Buffer
	return New(strings.NewReader(input), &out), &out
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		def   bool
		want  bool
	}{
		{"y\n", false, true},
		{"YES\n", false, true},
		{"n\n", true, false},
		{"\n", true, true},
		{"\n", false, false},
		{"maybe\n", true, false},
		{"", true, false},
	}

	for _, tt := range tests {
		p, _ := newTestPrompter(tt.input)
		assert.Equal(t, tt.want, p.Confirm("Launch OpenStarbound now?", tt.def), "input %q", tt.input)
	}
}

func TestConfirm_NonInteractiveTakesDefault(t *testing.T) {
	p, out := newTestPrompter("")
	p.NonInteractive = true
	assert.True(t, p.Confirm("Launch?", true))
	assert.False(t, p.Confirm("Launch?", false))
	assert.Empty(t, out.String())
}

func TestAskPath(t *testing.T) {
	p, out := newTestPrompter("\n")
	got, err := p.AskPath("Where should OpenStarbound go?", `C:\Games\OpenStarbound`)
	require.NoError(t, err)
	assert.Equal(t, `C:\Games\OpenStarbound`, got)
	assert.Contains(t, out.String(), `[C:\Games\OpenStarbound]`)

	p, _ = newTestPrompter("\"D:\\Starbound\"\n")
	got, err = p.AskPath("Starbound folder?", "")
	require.NoError(t, err)
	assert.Equal(t, `D:\Starbound`, got)
}

func TestAskPath_RequiresAnswerWithoutDefault(t *testing.T) {
	p, out := newTestPrompter("\n/opt/starbound\n")
	got, err := p.AskPath("Starbound folder?", "")
	require.NoError(t, err)
	assert.Equal(t, "/opt/starbound", got)
	assert.Contains(t, out.String(), "A path is required.")
}

func TestAskPath_EOF(t *testing.T) {
	p, _ := newTestPrompter("")
	_, err := p.AskPath("Starbound folder?", "")
	assert.Error(t, err)
}

func TestBaseInstallMenu(t *testing.T) {
	sounds := &soundLog{}
	p, out := newTestPrompter("3\n2\n")
	p.Sound = sounds

	assert.Equal(t, ChoiceFresh, p.BaseInstallMenu(`D:\SteamLibrary\steamapps\common\Starbound`))
	assert.Contains(t, out.String(), "Detected Starbound at")
	assert.Contains(t, out.String(), "Invalid choice")
	assert.Equal(t, []string{"select"}, sounds.played)

	p, _ = newTestPrompter("")
	assert.Equal(t, ChoiceCancel, p.BaseInstallMenu(""))
}

func TestBaseInstallMenu_NonInteractive(t *testing.T) {
	p, _ := newTestPrompter("")
	p.NonInteractive = true
	assert.Equal(t, ChoiceExisting, p.BaseInstallMenu("/games/Starbound"))
	assert.Equal(t, ChoiceFresh, p.BaseInstallMenu(""))
}
