package stream

import (
	"testing"
)

func TestQueueEmpty(t *testing.T) {
	q := NewQueue(4)
	if b, ok := q.TryReadByte(); ok {
		t.Errorf("TryReadByte on empty queue = %q, want none", b)
	}
}

func TestQueueOrder(t *testing.T) {
	q := NewQueue(8)
	if n := q.Push([]byte("0,45")); n != 4 {
		t.Fatalf("Push = %d, want 4", n)
	}
	for _, want := range []byte("0,45") {
		b, ok := q.TryReadByte()
		if !ok || b != want {
			t.Fatalf("TryReadByte = %q, %v, want %q", b, ok, want)
		}
	}
	if _, ok := q.TryReadByte(); ok {
		t.Error("queue not empty after drain")
	}
}

func TestQueueOverflowDrops(t *testing.T) {
	q := NewQueue(4)
	if n := q.Push([]byte("abcdef")); n != 4 {
		t.Errorf("Push on full queue = %d, want 4", n)
	}
	var got []byte
	for {
		b, ok := q.TryReadByte()
		if !ok {
			break
		}
		got = append(got, b)
	}
	if string(got) != "abcd" {
		t.Errorf("queued bytes = %q, want abcd", got)
	}
}

func TestLines(t *testing.T) {
	l := NewLines(2)
	if _, ok := l.TryNext(); ok {
		t.Error("TryNext on empty queue returned a line")
	}
	if !l.Push("0,45\r") {
		t.Fatal("Push failed on empty queue")
	}
	line, ok := l.TryNext()
	if !ok || line != "0,45" {
		t.Errorf("TryNext = %q, %v, want sanitized 0,45", line, ok)
	}
}

func TestLinesFull(t *testing.T) {
	l := NewLines(1)
	if !l.Push("a,1") {
		t.Fatal("first Push failed")
	}
	if l.Push("b,2") {
		t.Error("Push on full queue succeeded")
	}
}
