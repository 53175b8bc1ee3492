package audio

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"
	"github.com/gopxl/beep/wav"
	log "github.com/sirupsen/logrus"
)

// Cue names looked up as <name>.wav in the sounds directory
const (
	CueStart       = "start"
	CueSelect      = "select"
	CueDownloading = "downloading"
	CueInstalling  = "installing"
	CueError       = "error"
	CueSuccess     = "success"
)

var (
	speakerOnce  sync.Once
	speakerReady bool
)

func ensureSpeakerInitialized(format beep.Format) {
	speakerOnce.Do(func() {
		log.Debug("setting up audio")
		if err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10)); err != nil {
			log.Debugf("audio unavailable: %v", err)
			return
		}
		speakerReady = true
	})
}

// DecodeSound decodes WAV sound data into a streamer
func DecodeSound(soundData []byte) (beep.StreamSeekCloser, beep.Format, error) {
	if len(soundData) == 0 {
		return nil, beep.Format{}, nil
	}

	streamer, format, err := wav.Decode(bytes.NewReader(soundData))
	if err != nil {
		return nil, beep.Format{}, err
	}

	return streamer, format, nil
}

// Player plays named cues loaded from a directory of WAV files
type Player struct {
	Quiet    bool
	VolumeDB float64

	mu     sync.Mutex
	sounds map[string][]byte
}

// NewPlayer loads every *.wav in dir. A missing directory yields a silent player.
func NewPlayer(dir string, quiet bool) *Player {
	p := &Player{Quiet: quiet, sounds: map[string][]byte{}}
	if dir == "" || quiet {
		return p
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Debugf("no sounds loaded from %s: %v", dir, err)
		return p
	}
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".wav") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			log.Debugf("failed to read sound %s: %v", e.Name(), err)
			continue
		}
		name := strings.ToLower(strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())))
		p.sounds[name] = data
	}
	return p
}

// Has reports whether a cue was loaded
func (p *Player) Has(name string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.sounds[name]
	return ok
}

func (p *Player) stream(name string) (beep.StreamSeekCloser, bool) {
	if p == nil || p.Quiet {
		return nil, false
	}
	p.mu.Lock()
	data := p.sounds[name]
	p.mu.Unlock()

	streamer, format, err := DecodeSound(data)
	if err != nil {
		log.Debugf("sound %s couldn't be decoded: %v", name, err)
		return nil, false
	}
	if streamer == nil {
		return nil, false
	}

	ensureSpeakerInitialized(format)
	if !speakerReady {
		streamer.Close()
		return nil, false
	}
	return streamer, true
}

func (p *Player) volume(s beep.Streamer) *effects.Volume {
	return &effects.Volume{Streamer: s, Base: 2, Volume: p.VolumeDB}
}

// Play plays a cue and blocks until it finishes
func (p *Player) Play(name string) {
	streamer, ok := p.stream(name)
	if !ok {
		return
	}
	defer streamer.Close()

	done := make(chan struct{})
	speaker.Play(beep.Seq(p.volume(streamer), beep.Callback(func() {
		close(done)
	})))
	<-done
}

// PlayAsync starts a cue and returns immediately
func (p *Player) PlayAsync(name string) {
	p.playAsync(name, false)
}

// PlayLoop repeats a cue until StopAll
func (p *Player) PlayLoop(name string) {
	p.playAsync(name, true)
}

func (p *Player) playAsync(name string, loop bool) {
	streamer, ok := p.stream(name)
	if !ok {
		return
	}

	var s beep.Streamer = streamer
	if loop {
		s = beep.Loop(-1, streamer)
	}
	speaker.Play(beep.Seq(p.volume(s), beep.Callback(func() {
		streamer.Close()
	})))
}

// StopAll stops all currently playing sounds
func StopAll() {
	if !speakerReady {
		return
	}
	speaker.Clear()
}
