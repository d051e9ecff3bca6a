package keys

import "strconv"

// Linux input event codes (linux/input-event-codes.h), US layout.
var evdevKeys = map[uint16]Key{
	1:  NamedKey("esc"),
	2:  PrintableKey('1'),
	3:  PrintableKey('2'),
	4:  PrintableKey('3'),
	5:  PrintableKey('4'),
	6:  PrintableKey('5'),
	7:  PrintableKey('6'),
	8:  PrintableKey('7'),
	9:  PrintableKey('8'),
	10: PrintableKey('9'),
	11: PrintableKey('0'),
	12: PrintableKey('-'),
	13: PrintableKey('='),
	14: NamedKey("backspace"),
	15: NamedKey("tab"),
	16: PrintableKey('q'),
	17: PrintableKey('w'),
	18: PrintableKey('e'),
	19: PrintableKey('r'),
	20: PrintableKey('t'),
	21: PrintableKey('y'),
	22: PrintableKey('u'),
	23: PrintableKey('i'),
	24: PrintableKey('o'),
	25: PrintableKey('p'),
	26: PrintableKey('['),
	27: PrintableKey(']'),
	28: NamedKey("enter"),
	29: NamedKey("ctrl_l"),
	30: PrintableKey('a'),
	31: PrintableKey('s'),
	32: PrintableKey('d'),
	33: PrintableKey('f'),
	34: PrintableKey('g'),
	35: PrintableKey('h'),
	36: PrintableKey('j'),
	37: PrintableKey('k'),
	38: PrintableKey('l'),
	39: PrintableKey(';'),
	40: PrintableKey('\''),
	41: PrintableKey('`'),
	42: NamedKey("shift_l"),
	43: PrintableKey('\\'),
	44: PrintableKey('z'),
	45: PrintableKey('x'),
	46: PrintableKey('c'),
	47: PrintableKey('v'),
	48: PrintableKey('b'),
	49: PrintableKey('n'),
	50: PrintableKey('m'),
	51: PrintableKey(','),
	52: PrintableKey('.'),
	53: PrintableKey('/'),
	54: NamedKey("shift_r"),
	55: NamedKey("kp_multiply"),
	56: NamedKey("alt_l"),
	57: NamedKey("space"),
	58: NamedKey("caps_lock"),
	59: NamedKey("f1"),
	60: NamedKey("f2"),
	61: NamedKey("f3"),
	62: NamedKey("f4"),
	63: NamedKey("f5"),
	64: NamedKey("f6"),
	65: NamedKey("f7"),
	66: NamedKey("f8"),
	67: NamedKey("f9"),
	68: NamedKey("f10"),
	69: NamedKey("num_lock"),
	70: NamedKey("scroll_lock"),
	71: NamedKey("kp_7"),
	72: NamedKey("kp_8"),
	73: NamedKey("kp_9"),
	74: NamedKey("kp_subtract"),
	75: NamedKey("kp_4"),
	76: NamedKey("kp_5"),
	77: NamedKey("kp_6"),
	78: NamedKey("kp_add"),
	79: NamedKey("kp_1"),
	80: NamedKey("kp_2"),
	81: NamedKey("kp_3"),
	82: NamedKey("kp_0"),
	83: NamedKey("kp_decimal"),
	87: NamedKey("f11"),
	88: NamedKey("f12"),
	96: NamedKey("kp_enter"),
	97: NamedKey("ctrl_r"),
	98: NamedKey("kp_divide"),
	99: NamedKey("print_screen"),
	100: NamedKey("alt_gr"),
	102: NamedKey("home"),
	103: NamedKey("up"),
	104: NamedKey("page_up"),
	105: NamedKey("left"),
	106: NamedKey("right"),
	107: NamedKey("end"),
	108: NamedKey("down"),
	109: NamedKey("page_down"),
	110: NamedKey("insert"),
	111: NamedKey("delete"),
	113: NamedKey("media_volume_mute"),
	114: NamedKey("media_volume_down"),
	115: NamedKey("media_volume_up"),
	119: NamedKey("pause"),
	125: NamedKey("cmd_l"),
	126: NamedKey("cmd_r"),
	127: NamedKey("menu"),
}

var evdevCodes = func() map[string]uint16 {
	m := make(map[string]uint16, len(evdevKeys)+12)
	for code, k := range evdevKeys {
		m[k.String()] = code
	}
	// F13-F24 are contiguous from 183.
	for n := 13; n <= 24; n++ {
		m["f"+strconv.Itoa(n)] = uint16(183 + n - 13)
	}
	m["cmd"] = 125
	return m
}()

// FromEvdev maps a Linux key code to a Key. Unknown codes become RawCode keys.
func FromEvdev(code uint16) Key {
	if k, ok := evdevKeys[code]; ok {
		return k
	}
	if code >= 183 && code <= 194 {
		return NamedKey("f" + strconv.Itoa(int(code)-183+13))
	}
	return RawKey(int(code))
}

// EvdevCode is the inverse of FromEvdev for a canonical identifier.
func EvdevCode(id string) (uint16, bool) {
	k, err := Parse(id)
	if err != nil {
		return 0, false
	}
	if k.Kind == RawCode {
		if k.Code < 0 || k.Code > 0xffff {
			return 0, false
		}
		return uint16(k.Code), true
	}
	code, ok := evdevCodes[k.String()]
	return code, ok
}
