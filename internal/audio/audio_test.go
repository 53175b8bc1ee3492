package audio

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pcmWAV builds a mono 16-bit PCM WAV of n silent samples
func pcmWAV(n int) []byte {
	var buf bytes.Buffer
	dataLen := uint32(n * 2)
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, 36+dataLen)
	buf.WriteString("WAVEfmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1))     // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(1))     // channels
	binary.Write(&buf, binary.LittleEndian, uint32(22050)) // sample rate
	binary.Write(&buf, binary.LittleEndian, uint32(44100)) // byte rate
	binary.Write(&buf, binary.LittleEndian, uint16(2))     // block align
	binary.Write(&buf, binary.LittleEndian, uint16(16))    // bits per sample
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, dataLen)
	buf.Write(make([]byte, dataLen))
	return buf.Bytes()
}

func TestDecodeSound(t *testing.T) {
	streamer, format, err := DecodeSound(pcmWAV(100))
	require.NoError(t, err)
	require.NotNil(t, streamer)
	defer streamer.Close()

	assert.Equal(t, 1, format.NumChannels)
	assert.Equal(t, 100, streamer.Len())
}

func TestDecodeSound_Empty(t *testing.T) {
	streamer, _, err := DecodeSound(nil)
	assert.NoError(t, err)
	assert.Nil(t, streamer)
}

func TestDecodeSound_Garbage(t *testing.T) {
	_, _, err := DecodeSound([]byte("definitely not a wav file"))
	assert.Error(t, err)
}

func TestNewPlayer_LoadsWavFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Success.WAV"), pcmWAV(10), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "error.wav"), pcmWAV(10), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("x"), 0644))

	p := NewPlayer(dir, false)
	assert.True(t, p.Has(CueSuccess))
	assert.True(t, p.Has(CueError))
	assert.False(t, p.Has("readme"))
	assert.False(t, p.Has(CueDownloading))
}

func TestNewPlayer_QuietOrMissingDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "success.wav"), pcmWAV(10), 0644))

	assert.False(t, NewPlayer(dir, true).Has(CueSuccess))
	assert.False(t, NewPlayer(filepath.Join(dir, "missing"), false).Has(CueSuccess))

	// unknown and silenced cues return without touching the speaker
	p := NewPlayer("", false)
	p.Play(CueSuccess)
	p.PlayAsync(CueError)

	var nilPlayer *Player
	nilPlayer.PlayAsync(CueError)
}
