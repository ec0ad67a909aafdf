package core

import "github.com/remind-me-later/gbcore/internal/apu"

// Option configures a Core at construction time.
type Option func(*config)

type config struct {
	bootROM    []byte
	sink       apu.AudioSink
	sampleRate uint32
	batteryRAM []byte
	rtcSeconds int64
	forceModel *bool // nil: infer CGB support from the header; true/false: force
}

// WithBootROM supplies the real DMG or CGB boot ROM image. Its
// copyrighted bytes cannot be embedded in this module, so callers that
// want authentic boot-up behavior (scrolling logo, header checksum
// lockup on a bad cartridge) must load one from their own distribution
// and pass it here; without one the core jumps straight to $0100 with
// the documented post-boot register state.
func WithBootROM(rom []byte) Option {
	return func(c *config) { c.bootROM = rom }
}

// WithAudioSink installs the sink that receives mixed stereo samples at
// sampleRate Hz as RunFrame advances the APU.
func WithAudioSink(sink apu.AudioSink, sampleRate uint32) Option {
	return func(c *config) {
		c.sink = sink
		c.sampleRate = sampleRate
	}
}

// WithBatteryRAM preloads a cartridge's battery-backed RAM from a
// previous session. A length mismatch against the header's declared RAM
// size is not treated as fatal - New falls back to a zeroed buffer and
// reports ErrPersistenceMismatch through the returned error, letting the
// caller decide whether to proceed with a fresh save.
func WithBatteryRAM(data []byte) Option {
	return func(c *config) { c.batteryRAM = data }
}

// WithRTCSeconds seeds the cartridge's real-time clock (MBC3 only) with
// the number of wall-clock seconds elapsed since it was last saved, so
// a resumed session catches the clock up to the present.
func WithRTCSeconds(seconds int64) Option {
	return func(c *config) { c.rtcSeconds = seconds }
}

// WithModel forces DMG or CGB behavior regardless of what the cartridge
// header requests. Without this option the core runs in CGB mode only
// if the header's CGB flag allows it.
func WithModel(cgb bool) Option {
	return func(c *config) {
		v := cgb
		c.forceModel = &v
	}
}
