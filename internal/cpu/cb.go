package cpu

// executeCB decodes and runs one CB-prefixed opcode. The entire $100-
// entry table is regular: bits 6-7 select the operation family
// (rotate/shift group, BIT, RES, SET), bits 3-5 select the bit index
// (for BIT/RES/SET) or the rotate/shift variant, and bits 0-2 select
// the r8/(HL) operand exactly as in the unprefixed set.
func (c *CPU) executeCB(opcode uint8) {
	x := opcode >> 6
	y := (opcode >> 3) & 0x07
	z := opcode & 0x07

	if x == 0 {
		v := c.readOperand8(z)
		var result uint8
		switch y {
		case 0:
			result = c.rlc(v)
		case 1:
			result = c.rrc(v)
		case 2:
			result = c.rl(v)
		case 3:
			result = c.rr(v)
		case 4:
			result = c.sla(v)
		case 5:
			result = c.sra(v)
		case 6:
			result = c.swap(v)
		case 7:
			result = c.srl(v)
		}
		c.writeOperand8(z, result)
		return
	}

	if x == 1 { // BIT y,r8
		c.bit(y, c.readOperand8(z))
		return
	}

	v := c.readOperand8(z)
	if x == 2 { // RES y,r8
		c.writeOperand8(z, c.res(y, v))
	} else { // SET y,r8
		c.writeOperand8(z, c.set(y, v))
	}
}
