package hotkey

import (
	"encoding/binary"
	"fmt"
	"strconv"
)

// Linux input_event: struct timeval, __u16 type, __u16 code, __s32 value.
const (
	timevalSize = 2 * (strconv.IntSize / 8)
	eventSize   = timevalSize + 8

	evKey = 0x01

	keyUp     = 0
	keyDown   = 1
	keyRepeat = 2
)

type inputEvent struct {
	Type  uint16
	Code  uint16
	Value int32
}

func decodeEvent(buf []byte) (inputEvent, error) {
	if len(buf) < eventSize {
		return inputEvent{}, fmt.Errorf("short input event: %d bytes", len(buf))
	}
	b := buf[timevalSize:]
	return inputEvent{
		Type:  binary.LittleEndian.Uint16(b[0:2]),
		Code:  binary.LittleEndian.Uint16(b[2:4]),
		Value: int32(binary.LittleEndian.Uint32(b[4:8])),
	}, nil
}

// isPress reports key-down events; auto-repeat is ignored so holding the
// push-to-talk key toggles once.
func (e inputEvent) isPress() bool {
	return e.Type == evKey && e.Value == keyDown
}
