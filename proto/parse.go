package proto

import (
	"strings"
)

// Command is one accepted channel position request.
type Command struct {
	Channel int `json:"channel"`
	Angle   int `json:"angle"`
}

// Batch is the result of parsing one line: accepted commands in
// encounter order plus a count of rejected segments. Later commands
// for the same channel win, because they are applied in order.
type Batch struct {
	Commands []Command
	Rejected int
}

// Parser validates segments against the configured channel count and
// angle limits. The zero value rejects everything; populate it from
// the bank's geometry.
type Parser struct {
	Channels int
	MinAngle int
	MaxAngle int
	Events   EventSink
}

// Parse splits a line into semicolon-separated segments and each
// segment at its first comma. Empty segments are skipped. A segment
// without a comma, or with a channel or angle out of range, is
// rejected without affecting the rest of the line.
func (p Parser) Parse(line string) Batch {
	events := p.Events
	if events == nil {
		events = NopSink{}
	}
	var batch Batch
	for _, seg := range strings.Split(line, ";") {
		if seg == "" {
			continue
		}
		comma := strings.IndexByte(seg, ',')
		if comma < 0 {
			events.Rejected(RejectMalformed, seg)
			batch.Rejected++
			continue
		}
		ch := atoi(seg[:comma])
		angle := atoi(seg[comma+1:])
		if ch < 0 || ch >= p.Channels {
			events.Rejected(RejectChannel, seg)
			batch.Rejected++
			continue
		}
		if angle < p.MinAngle || angle > p.MaxAngle {
			events.Rejected(RejectAngle, seg)
			batch.Rejected++
			continue
		}
		cmd := Command{Channel: ch, Angle: angle}
		events.Accepted(cmd)
		batch.Commands = append(batch.Commands, cmd)
	}
	return batch
}

// atoi converts with C atoi semantics: optional leading whitespace and
// sign, then consecutive digits. The first non-digit ends the number
// and wholly unparseable input reads as 0, so "abc,10" addresses
// channel 0. strconv.Atoi would reject such segments instead.
func atoi(s string) int {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	neg := false
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		neg = s[i] == '-'
		i++
	}
	n := 0
	for ; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		n = n*10 + int(s[i]-'0')
	}
	if neg {
		return -n
	}
	return n
}
