package proto

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

type recordedEvent struct {
	Cmd     Command
	Reason  RejectReason
	Segment string
	Ok      bool
}

type recordSink struct {
	events []recordedEvent
}

func (r *recordSink) Accepted(cmd Command) {
	r.events = append(r.events, recordedEvent{Cmd: cmd, Ok: true})
}

func (r *recordSink) Rejected(reason RejectReason, segment string) {
	r.events = append(r.events, recordedEvent{Reason: reason, Segment: segment})
}

var testParser = Parser{Channels: 18, MinAngle: -140, MaxAngle: 140}

func TestParse(t *testing.T) {
	for _, test := range []struct {
		input string
		want  Batch
	}{
		{"0,10;1,-20;", Batch{Commands: []Command{{0, 10}, {1, -20}}}},
		{"5,999", Batch{Rejected: 1}},
		{"99,0", Batch{Rejected: 1}},
		{"-1,0", Batch{Rejected: 1}},
		{"18,0", Batch{Rejected: 1}},
		{"17,140", Batch{Commands: []Command{{17, 140}}}},
		{"0,-140", Batch{Commands: []Command{{0, -140}}}},
		{"0,-141", Batch{Rejected: 1}},
		{"3,50;3,-50", Batch{Commands: []Command{{3, 50}, {3, -50}}}},
		{"7", Batch{Rejected: 1}},
		{";;;", Batch{}},
		{"", Batch{}},
		{"0,10;junk;1,20", Batch{Commands: []Command{{0, 10}, {1, 20}}, Rejected: 1}},
		// atoi semantics: leading non-digits read as 0, trailing junk
		// after the digits is ignored.
		{"abc,10", Batch{Commands: []Command{{0, 10}}}},
		{"+3,+15", Batch{Commands: []Command{{3, 15}}}},
		{" 5 , 20", Batch{Commands: []Command{{5, 20}}}},
		{"1,2,3", Batch{Commands: []Command{{1, 2}}}},
		{"4,-0", Batch{Commands: []Command{{4, 0}}}},
	} {
		t.Run(test.input, func(t *testing.T) {
			got := testParser.Parse(test.input)
			if diff := cmp.Diff(got, test.want); diff != "" {
				t.Errorf("unexpected batch: got(-)/want(+):\n%s", diff)
			}
		})
	}
}

func TestParseEvents(t *testing.T) {
	sink := &recordSink{}
	p := testParser
	p.Events = sink
	p.Parse("0,5;x;99,0;0,999")
	want := []recordedEvent{
		{Cmd: Command{0, 5}, Ok: true},
		{Reason: RejectMalformed, Segment: "x"},
		{Reason: RejectChannel, Segment: "99,0"},
		{Reason: RejectAngle, Segment: "0,999"},
	}
	if diff := cmp.Diff(sink.events, want); diff != "" {
		t.Errorf("unexpected events: got(-)/want(+):\n%s", diff)
	}
}

func TestAtoi(t *testing.T) {
	for _, test := range []struct {
		input string
		want  int
	}{
		{"", 0},
		{"0", 0},
		{"42", 42},
		{"-7", -7},
		{"+7", 7},
		{"  42", 42},
		{"12abc", 12},
		{"abc", 0},
		{"-", 0},
		{"--5", 0},
		{"3.7", 3},
	} {
		if got := atoi(test.input); got != test.want {
			t.Errorf("atoi(%q) = %d, want %d", test.input, got, test.want)
		}
	}
}

func TestSinks(t *testing.T) {
	a, b := &recordSink{}, &recordSink{}
	s := Sinks{a, b}
	s.Accepted(Command{1, 2})
	s.Rejected(RejectAngle, "1,999")
	for name, sink := range map[string]*recordSink{"first": a, "second": b} {
		if len(sink.events) != 2 {
			t.Errorf("%s sink saw %d events, want 2", name, len(sink.events))
		}
	}
}
