package signaling

import "testing"

func TestPeekKindAndSessionID(t *testing.T) {
	data, err := Marshal(Message{Kind: KindOffer, SessionID: "s1", SDP: "v=0..."})
	if err != nil {
		t.Fatal(err)
	}
	kind, ok := PeekKind(data)
	if !ok || kind != KindOffer {
		t.Fatalf("PeekKind = %v, %v", kind, ok)
	}
	sid, ok := PeekSessionID(data)
	if !ok || sid != "s1" {
		t.Fatalf("PeekSessionID = %v, %v", sid, ok)
	}
}

func TestPeekKindMissingField(t *testing.T) {
	if _, ok := PeekKind([]byte(`{"session_id":"s1"}`)); ok {
		t.Fatal("expected PeekKind to report absence of type field")
	}
}

func TestExtractLegacyFields(t *testing.T) {
	data, err := Marshal(Message{
		Kind:          KindIceCandidate,
		SessionID:     "s2",
		Candidate:     "candidate:1 1 UDP 1 1.2.3.4 5000 typ host",
		SDPMid:        "0",
		SDPMLineIndex: ptrUint16(0),
	})
	if err != nil {
		t.Fatal(err)
	}
	fields := ExtractLegacyFields(data)
	if fields.Candidate == "" || fields.SDPMid != "0" {
		t.Fatalf("unexpected fields: %+v", fields)
	}
}

func ptrUint16(v uint16) *uint16 { return &v }
