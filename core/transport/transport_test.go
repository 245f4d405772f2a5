package transport

import "testing"

func TestParseStreamType(t *testing.T) {
	cases := []struct {
		b  byte
		ok bool
	}{
		{0x20, true},
		{0x21, true},
		{0x22, true},
		{0x23, true},
		{0x24, true},
		{0x25, false},
		{0xff, false},
		{0x00, false},
	}
	for _, c := range cases {
		got, ok := ParseStreamType(c.b)
		if ok != c.ok {
			t.Fatalf("ParseStreamType(0x%02x) ok = %v, want %v", c.b, ok, c.ok)
		}
		if ok && byte(got) != c.b {
			t.Fatalf("ParseStreamType(0x%02x) = 0x%02x, want roundtrip", c.b, byte(got))
		}
	}
}

func TestStreamTypeRoundtrip(t *testing.T) {
	all := []StreamType{StreamAudio, StreamVideo, StreamScreen, StreamRtcpFeedback, StreamData}
	for _, st := range all {
		got, ok := ParseStreamType(byte(st))
		if !ok || got != st {
			t.Fatalf("roundtrip failed for %v", st)
		}
	}
}

func TestPriorityFor(t *testing.T) {
	cases := []struct {
		st   StreamType
		want StreamPriority
	}{
		{StreamAudio, PriorityHigh},
		{StreamRtcpFeedback, PriorityHigh},
		{StreamVideo, PriorityMedium},
		{StreamScreen, PriorityLow},
		{StreamData, PriorityLow},
	}
	for _, c := range cases {
		if got := PriorityFor(c.st); got != c.want {
			t.Fatalf("PriorityFor(%v) = %v, want %v", c.st, got, c.want)
		}
	}
}

func TestPriorityForUnknownDefaultsLow(t *testing.T) {
	if got := PriorityFor(StreamType(0x99)); got != PriorityLow {
		t.Fatalf("unknown stream type priority = %v, want %v", got, PriorityLow)
	}
}
