package ppu

// fetcherState is the background/window pixel fetcher's state machine,
// matching the four states real hardware's fetcher cycles through:
// each of GetTile/GetTileDataLow/GetTileDataHigh takes two dots, and
// Push retries every dot until the background FIFO is empty.
type fetcherState uint8

const (
	fetchGetTile fetcherState = iota
	fetchGetTileDataLow
	fetchGetTileDataHigh
	fetchPush
)

// bgPixel is one entry in the background/window FIFO: a 2-bit color
// index, the CGB BG palette (0-7, always 0 on DMG), and the CGB
// BG-to-OBJ priority attribute bit.
type bgPixel struct {
	color      uint8
	palette    uint8
	bgPriority bool
}

// objPixel is one entry in the sprite FIFO, which is popped together with
// the background FIFO. Padding keeps it at least as long as the
// background FIFO after a push; a sprite fetch pads it to 8 entries, which
// can leave it longer.
type objPixel struct {
	present  bool
	color    uint8
	palette  uint8
	priority bool // OAM attribute bit 7: true = behind BG colors 1-3
}

// scanOAM walks all 40 sprites in OAM order and keeps the first 10 whose
// Y range covers the current scanline, preserving OAM order - exactly
// the rule real hardware's OAM-scan phase applies.
func (p *PPU) scanOAM() {
	p.visibleSprites = p.visibleSprites[:0]
	height := uint8(8)
	if p.LCDC&lcdcOBJSize != 0 {
		height = 16
	}
	if p.LCDC&lcdcOBJEnable == 0 {
		return
	}
	for i := 0; i < 40 && len(p.visibleSprites) < 10; i++ {
		base := i * 4
		y := p.oam[base]
		top := int(y) - 16
		if int(p.LY) < top || int(p.LY) >= top+int(height) {
			continue
		}
		p.visibleSprites = append(p.visibleSprites, spriteEntry{
			oamIndex: i,
			y:        y,
			x:        p.oam[base+1],
			tile:     p.oam[base+2],
			attr:     p.oam[base+3],
		})
	}
}

// beginTransfer resets the fetcher/FIFO pipeline for a new scanline.
// Mode 3's length is never assigned here: it falls out of however many
// dots transferStep actually takes to push 160 pixels, per-scanline.
func (p *PPU) beginTransfer() {
	p.mode = ModeTransfer

	p.bgFIFO = p.bgFIFO[:0]
	p.objFIFO = p.objFIFO[:0]
	p.fetchState = fetchGetTile
	p.fetchSubDot = 0
	p.fetchTileX = 0
	p.lineX = 0
	p.discardPixels = int(p.SCX % 8)
	p.fetchingWindow = false
	p.windowUsedThisLine = false
	p.spritesPending = p.spritesPending[:0]
	for i := range p.visibleSprites {
		p.spritesPending = append(p.spritesPending, i)
	}
	sortSpritesPendingByX(p.spritesPending, p.visibleSprites)
	p.spriteFetchDotsLeft = 0
	p.pendingSpriteIdx = -1

	p.checkStatInterrupts()
}

// sortSpritesPendingByX orders pending sprite indices by screen X (then
// OAM order for ties), the order in which the fetcher's X position
// triggers their fetch as the background pipeline advances.
func sortSpritesPendingByX(idx []int, sprites []spriteEntry) {
	for i := 1; i < len(idx); i++ {
		for j := i; j > 0; j-- {
			a, b := sprites[idx[j-1]], sprites[idx[j]]
			if a.x < b.x || (a.x == b.x && sprites[idx[j-1]].oamIndex <= sprites[idx[j]].oamIndex) {
				break
			}
			idx[j-1], idx[j] = idx[j], idx[j-1]
		}
	}
}

// transferStep runs exactly one dot of mode 3: it may be consumed by an
// in-progress sprite fetch (which pauses the background fetcher), a
// background/window fetch step, or a pixel pop-and-output. When the
// 160th pixel is pushed to Frame, it transitions to H-blank itself -
// mode 3's length is whatever this took, never a fixed constant.
func (p *PPU) transferStep() {
	if p.maybeStartSpriteFetch() {
		return
	}
	if p.spriteFetchDotsLeft > 0 {
		p.spriteFetchDotsLeft--
		if p.spriteFetchDotsLeft == 0 {
			p.finishSpriteFetch()
		}
		return
	}

	p.stepBackgroundFetcher()
	p.popAndOutputPixel()
}

// windowTriggerX is the lineX value at which the window tilemap should
// take over the background fetcher, per WX/WY activation rules.
func (p *PPU) windowTriggerX() int {
	x := int(p.WX) - 7
	if x < 0 {
		x = 0
	}
	return x
}

func (p *PPU) windowActiveNow() bool {
	return p.LCDC&lcdcWindowEnable != 0 && p.wyTriggeredThisFrame && p.WX <= 166
}

// maybeStartSpriteFetch checks whether the sprite at the front of
// spritesPending should preempt the background fetcher at the current
// output position, and if so starts its (approximated) fetch, which
// takes this dot plus 6 more before finishSpriteFetch runs.
func (p *PPU) maybeStartSpriteFetch() bool {
	if len(p.spritesPending) == 0 || p.spriteFetchDotsLeft > 0 {
		return false
	}
	if len(p.bgFIFO) == 0 {
		return false // nothing pushed yet this line; let the first tile land first
	}
	next := p.spritesPending[0]
	s := p.visibleSprites[next]
	if int(s.x)-8 > p.lineX {
		return false
	}
	p.pendingSpriteIdx = next
	p.spritesPending = p.spritesPending[1:]
	p.spriteFetchDotsLeft = 6
	return true
}

// finishSpriteFetch reads the sprite's pattern bytes and merges its
// pixels into objFIFO at the front (the pixels about to be displayed
// next), matching the hardware rule that an already-opaque sprite pixel
// at a given screen column is never overwritten by a later sprite.
func (p *PPU) finishSpriteFetch() {
	s := p.visibleSprites[p.pendingSpriteIdx]
	p.pendingSpriteIdx = -1

	height := 8
	if p.LCDC&lcdcOBJSize != 0 {
		height = 16
	}
	row := int(p.LY) - (int(s.y) - 16)
	if s.attr&0x40 != 0 { // Y flip
		row = height - 1 - row
	}
	tile := s.tile
	if height == 16 {
		tile &^= 1
		if row >= 8 {
			tile |= 1
			row -= 8
		}
	}
	bank := 0
	if p.isCGB && s.attr&0x08 != 0 {
		bank = 1
	}
	tileAddr := uint16(tile)*16 + uint16(row)*2
	lo := p.vram[bank][tileAddr&0x1FFF]
	hi := p.vram[bank][(tileAddr+1)&0x1FFF]

	xFlip := s.attr&0x20 != 0
	palette := uint8(0)
	if p.isCGB {
		palette = s.attr & 0x07
	} else if s.attr&0x10 != 0 {
		palette = 1
	}
	priority := s.attr&0x80 != 0

	for len(p.objFIFO) < 8 {
		p.objFIFO = append(p.objFIFO, objPixel{})
	}
	for col := 0; col < 8; col++ {
		bit := col
		if !xFlip {
			bit = 7 - col
		}
		color := (hi>>bit&1)<<1 | (lo >> bit & 1)
		existing := p.objFIFO[col]
		if existing.present && existing.color != 0 {
			continue // an earlier, higher-priority sprite already owns this pixel
		}
		if color == 0 {
			if !existing.present {
				p.objFIFO[col] = objPixel{present: true}
			}
			continue
		}
		p.objFIFO[col] = objPixel{present: true, color: color, palette: palette, priority: priority}
	}
}

// stepBackgroundFetcher advances the background/window fetcher state
// machine by one dot. GetTile/GetTileDataLow/GetTileDataHigh each take
// two dots; Push retries every dot until the FIFO is empty, matching the
// fetcher's documented stall behavior.
func (p *PPU) stepBackgroundFetcher() {
	if p.windowActiveNow() && !p.fetchingWindow && p.lineX == p.windowTriggerX() {
		p.fetchingWindow = true
		p.windowUsedThisLine = true
		p.bgFIFO = p.bgFIFO[:0]
		p.fetchState = fetchGetTile
		p.fetchSubDot = 0
		p.fetchTileX = 0
	}

	switch p.fetchState {
	case fetchGetTile, fetchGetTileDataLow, fetchGetTileDataHigh:
		p.fetchSubDot++
		if p.fetchSubDot < 2 {
			return
		}
		p.fetchSubDot = 0
		switch p.fetchState {
		case fetchGetTile:
			p.fetchTileNum, p.fetchAttr = p.currentTileAndAttr()
			p.fetchState = fetchGetTileDataLow
		case fetchGetTileDataLow:
			p.fetchLo = p.tileDataByte(false)
			p.fetchState = fetchGetTileDataHigh
		case fetchGetTileDataHigh:
			p.fetchHi = p.tileDataByte(true)
			p.fetchState = fetchPush
		}
	case fetchPush:
		if len(p.bgFIFO) > 0 {
			return // FIFO still has a previous row queued; retry next dot
		}
		xFlip := p.isCGB && p.fetchAttr&0x20 != 0
		for col := 0; col < 8; col++ {
			bit := col
			if !xFlip {
				bit = 7 - col
			}
			color := (p.fetchHi>>bit&1)<<1 | (p.fetchLo >> bit & 1)
			p.bgFIFO = append(p.bgFIFO, bgPixel{
				color:      color,
				palette:    p.fetchAttr & 0x07,
				bgPriority: p.isCGB && p.fetchAttr&0x80 != 0,
			})
		}
		for len(p.objFIFO) < len(p.bgFIFO) {
			p.objFIFO = append(p.objFIFO, objPixel{})
		}
		p.fetchTileX++
		p.fetchState = fetchGetTile
	}
}

// currentTileAndAttr resolves the tile number and CGB attribute byte
// for the fetcher's current tile-map column, sourced from the window
// map while fetchingWindow is set or the background map otherwise.
func (p *PPU) currentTileAndAttr() (uint8, uint8) {
	var mapBase uint16
	var tileCol, tileRow int
	if p.fetchingWindow {
		if p.LCDC&lcdcWindowTileMap != 0 {
			mapBase = 0x1C00
		} else {
			mapBase = 0x1800
		}
		tileCol = p.fetchTileX
		tileRow = int(p.windowLineCounter) / 8
	} else {
		if p.LCDC&lcdcBGTileMap != 0 {
			mapBase = 0x1C00
		} else {
			mapBase = 0x1800
		}
		tileCol = (int(p.SCX)/8 + p.fetchTileX) & 0x1F
		tileRow = ((int(p.LY) + int(p.SCY)) & 0xFF) / 8
	}
	mapAddr := mapBase + uint16(tileRow)*32 + uint16(tileCol&0x1F)
	tileNum := p.vram[0][mapAddr&0x1FFF]
	attr := uint8(0)
	if p.isCGB {
		attr = p.vram[1][mapAddr&0x1FFF]
	}
	return tileNum, attr
}

// tileDataByte reads the low or high pattern byte for the tile/attr the
// fetcher last latched in GetTile, honoring CGB Y-flip and VRAM bank.
func (p *PPU) tileDataByte(high bool) uint8 {
	bank := 0
	yFlip := false
	if p.isCGB {
		bank = int(p.fetchAttr>>3) & 1
		yFlip = p.fetchAttr&0x40 != 0
	}
	var fineY int
	if p.fetchingWindow {
		fineY = int(p.windowLineCounter) % 8
	} else {
		fineY = (int(p.LY) + int(p.SCY)) % 8
	}
	if yFlip {
		fineY = 7 - fineY
	}

	var tileAddr uint16
	if p.LCDC&lcdcTileData != 0 {
		tileAddr = uint16(p.fetchTileNum) * 16
	} else {
		tileAddr = uint16(0x1000 + int(int8(p.fetchTileNum))*16)
	}
	tileAddr += uint16(fineY) * 2
	if high {
		tileAddr++
	}
	return p.vram[bank][tileAddr&0x1FFF]
}

// popAndOutputPixel pops the front of both FIFOs (when the background
// one is non-empty), discards the first SCX%8 pixels of the line per
// the fine-x scroll rule, merges in any sprite pixel per the BG/OBJ
// priority rules, and writes the result to Frame. Reaching pixel 160
// ends mode 3 for this line, whatever dot count that took.
func (p *PPU) popAndOutputPixel() {
	if len(p.bgFIFO) == 0 {
		return
	}
	bg := p.bgFIFO[0]
	p.bgFIFO = p.bgFIFO[1:]
	var obj objPixel
	if len(p.objFIFO) > 0 {
		obj = p.objFIFO[0]
		p.objFIFO = p.objFIFO[1:]
	}

	if p.discardPixels > 0 {
		p.discardPixels--
		return
	}
	if p.lineX >= ScreenWidth {
		return
	}

	bgEnabled := p.LCDC&lcdcBGWindowEnable != 0 || p.isCGB
	color, attr := bg.color, bg.palette
	if !bgEnabled {
		color = 0
	}
	isSprite := false
	if p.LCDC&lcdcOBJEnable != 0 && obj.present && obj.color != 0 {
		bgOpaque := bgEnabled && color != 0
		bgHasPriority := p.isCGB && bg.bgPriority
		if (!obj.priority && !bgHasPriority) || !bgOpaque {
			color, attr = obj.color, obj.palette
			isSprite = true
		}
	}

	p.writePixel(p.lineX, color, attr, isSprite)
	p.lineX++
	if p.lineX >= ScreenWidth {
		if p.windowUsedThisLine {
			p.windowLineCounter++
		}
		p.beginHBlank()
	}
}

// writePixel resolves a composed (color, attr) pair to RGBA8 and stores
// it into Frame at (x, LY). isSprite selects OBP0/OBP1 or the OBJ
// palette RAM; otherwise BGP or the BG palette RAM is used.
func (p *PPU) writePixel(x int, color, attr uint8, isSprite bool) {
	var rgba [4]uint8
	if p.isCGB {
		pal := attr & 0x07
		if isSprite {
			rgba = p.objPalette.rgba(pal, color)
		} else {
			rgba = p.bgPalette.rgba(pal, color)
		}
	} else {
		if isSprite {
			pb := p.obp0Byte
			if attr&0x01 != 0 {
				pb = p.obp1Byte
			}
			rgba = byteToMonoPalette(pb).rgba(color)
		} else {
			rgba = byteToMonoPalette(p.bgpByte).rgba(color)
		}
	}
	idx := (int(p.LY)*ScreenWidth + x) * 4
	copy(p.Frame[idx:idx+4], rgba[:])
}
