// Package core wires the CPU, PPU, APU, timer, joypad, serial port and
// cartridge together into a runnable Game Boy: it owns the 64KiB address
// space, the DMA/HDMA engines that share it, and the per-M-cycle
// ordering the real hardware enforces between them.
package core

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/remind-me-later/gbcore/internal/apu"
	"github.com/remind-me-later/gbcore/internal/cartridge"
	"github.com/remind-me-later/gbcore/internal/cpu"
	"github.com/remind-me-later/gbcore/internal/interrupt"
	"github.com/remind-me-later/gbcore/internal/joypad"
	"github.com/remind-me-later/gbcore/internal/model"
	"github.com/remind-me-later/gbcore/internal/ppu"
	"github.com/remind-me-later/gbcore/internal/serial"
	"github.com/remind-me-later/gbcore/internal/timer"
)

// ErrPersistenceMismatch is reported (not returned as a hard failure)
// when battery RAM supplied through WithBatteryRAM does not match the
// cartridge header's declared RAM size; the core falls back to a
// zeroed buffer of the correct size.
var ErrPersistenceMismatch = errors.New("core: battery RAM size does not match cartridge header")

// Core is a complete, runnable Game Boy: the CPU plus every subsystem
// it drives through the bus.
type Core struct {
	model  model.Model
	log    *logrus.Logger
	busLog *logrus.Entry

	cpu  *cpu.CPU
	ppu  *ppu.PPU
	apu  *apu.APU
	tmr  *timer.Controller
	irq  *interrupt.Controller
	pad  *joypad.State
	sio  *serial.Controller
	cart *cartridge.Cartridge

	wram     [8][0x1000]byte
	wramBank uint8
	hram     [0x7F]byte

	bootROM     []byte
	bootROMDone bool

	key1        uint8
	doubleSpeed bool
}

// New constructs a Core for rom, applying opts in order. A malformed or
// unsupported header is the only hard failure: it returns a nil Core and
// the error. A battery buffer of the wrong size yields a usable Core
// together with an error wrapping ErrPersistenceMismatch.
func New(rom []byte, opts ...Option) (*Core, error) {
	cfg := config{sampleRate: 44100}
	for _, opt := range opts {
		opt(&cfg)
	}

	battery := cfg.batteryRAM
	cart, err := cartridge.New(rom, nil)
	if err != nil {
		return nil, fmt.Errorf("core: %w", err)
	}

	log := logrus.New()
	log.SetLevel(logrus.WarnLevel)
	log.Formatter = &logrus.TextFormatter{DisableTimestamp: true}
	coreLog := log.WithField("component", "core")
	cart.SetLogger(log.WithField("component", "cartridge"))

	var warn error
	if len(battery) > 0 && len(battery) != cart.Header.RAMSize {
		warn = fmt.Errorf("%w: got %d bytes, want %d", ErrPersistenceMismatch, len(battery), cart.Header.RAMSize)
		coreLog.Warn(warn)
		battery = nil
	}
	if len(battery) > 0 {
		copy(cart.SaveRAM(), battery)
	}
	if cfg.rtcSeconds > 0 {
		cart.TickRTC(int(cfg.rtcSeconds))
	}

	m := cart.Header.PreferredModel()
	if cfg.forceModel != nil {
		if *cfg.forceModel {
			m = model.CGB
		} else {
			m = model.DMG
		}
	}

	c := &Core{
		model:   m,
		log:     log,
		busLog:  log.WithField("component", "bus"),
		irq:     interrupt.New(),
		cart:    cart,
		bootROM: cfg.bootROM,
	}
	c.ppu = ppu.New(c.irq, m.IsCGB())
	c.apu = apu.New(cfg.sampleRate, cfg.sink)
	c.tmr = timer.New(c.irq)
	c.pad = joypad.New(c.irq)
	c.sio = serial.New(c.irq)
	c.cpu = cpu.New(c)

	if c.bootROM == nil {
		c.bootROMDone = true
		c.cpu.LoadPostBootState(m.IsCGB())
		c.ppu.WriteRegister(ppu.AddrLCDC, 0x91)
	}

	return c, warn
}

// Model reports which hardware revision this Core is emulating.
func (c *Core) Model() model.Model { return c.model }

// SerialOutput returns every byte shifted out the serial port so far,
// in order - the surface test-ROM harnesses use to read Blargg-style
// PASS/FAIL reports with no link cable attached.
func (c *Core) SerialOutput() []byte { return c.sio.Output }

// PixelData returns the current 160x144 RGBA8 framebuffer. The slice
// aliases the PPU's internal buffer and is only valid until the next
// RunFrame call.
func (c *Core) PixelData() []byte { return c.ppu.Frame[:] }

// Press and Release forward a button event to the joypad.
func (c *Core) Press(b joypad.Button)   { c.pad.Press(b) }
func (c *Core) Release(b joypad.Button) { c.pad.Release(b) }

// SaveRAM returns the cartridge's live battery-backed RAM buffer, for
// the caller to persist between sessions.
func (c *Core) SaveRAM() []byte { return c.cart.SaveRAM() }

// RTCState returns the cartridge's real-time clock snapshot (the zero
// value for cartridges without one), for the caller to persist.
func (c *Core) RTCState() cartridge.Snapshot { return c.cart.RTCState() }

// CPUStopped reports whether the CPU has executed an undefined opcode
// and permanently halted - the spec's IllegalOpcode error kind, which
// is never a hard failure from RunFrame's point of view.
func (c *Core) CPUStopped() bool { return c.cpu.Stopped() }

// CheckAndResetLDBBBreakpoint reports whether a LD B,B (the test-ROM
// breakpoint convention) has executed since the last call. The flag is
// only set after EnableDebugBreakpoint; without it this always reports
// false.
func (c *Core) CheckAndResetLDBBBreakpoint() bool { return c.cpu.CheckAndResetLDBBBreakpoint() }

// EnableDebugBreakpoint arms the LD B,B breakpoint convention.
func (c *Core) EnableDebugBreakpoint() { c.cpu.Debug = true }

// RunFrame steps the CPU until the PPU has completed one full 154-line
// frame (it returns once LY wraps from 153 back to 0), driving every subsystem through
// the bus exactly as real hardware's shared clock would.
func (c *Core) RunFrame() {
	target := c.ppu.FrameCount() + 1
	for c.ppu.FrameCount() < target {
		c.cpu.Step()
	}
}
