package sample

import (
	"strconv"
	"time"
)

// AppendLine appends the telemetry line for one reading: unix_micros,raw.
// The firmware prints these over USB serial.
func AppendLine(dst []byte, ts time.Time, raw uint32) []byte {
	dst = strconv.AppendInt(dst, ts.UnixMicro(), 10)
	dst = append(dst, ',')
	return strconv.AppendUint(dst, uint64(raw), 10)
}
