package historylog

import "testing"

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open("file::memory:?cache=shared")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordLifecycle(t *testing.T) {
	s := openTestStore(t)

	if err := s.RecordInitiated("call-1", "alice", "bob"); err != nil {
		t.Fatal(err)
	}
	rec, err := s.Get("call-1")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Status != StatusInitiated || rec.RemotePeer != "bob" {
		t.Fatalf("unexpected record: %+v", rec)
	}

	if err := s.RecordConnected("call-1"); err != nil {
		t.Fatal(err)
	}
	rec, _ = s.Get("call-1")
	if rec.Status != StatusConnected {
		t.Fatalf("status = %q, want connected", rec.Status)
	}

	if err := s.RecordEnded("call-1", 1.5, 12.0, 40.0); err != nil {
		t.Fatal(err)
	}
	rec, _ = s.Get("call-1")
	if rec.Status != StatusEnded || rec.EndedAt == nil {
		t.Fatalf("expected ended record with EndedAt set, got %+v", rec)
	}
	if rec.JitterMs != 12.0 {
		t.Fatalf("jitter = %v, want 12.0", rec.JitterMs)
	}
}

func TestRecordFailed(t *testing.T) {
	s := openTestStore(t)
	if err := s.RecordInitiated("call-2", "alice", "carol"); err != nil {
		t.Fatal(err)
	}
	if err := s.RecordFailed("call-2", "transport lost"); err != nil {
		t.Fatal(err)
	}
	rec, err := s.Get("call-2")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Status != StatusFailed || rec.FailureReason != "transport lost" {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestListRecentOrdersNewestFirst(t *testing.T) {
	s := openTestStore(t)
	for _, id := range []string{"call-a", "call-b", "call-c"} {
		if err := s.RecordInitiated(id, "alice", "bob"); err != nil {
			t.Fatal(err)
		}
	}
	recs, err := s.ListRecent(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	if recs[0].StartedAt.Before(recs[1].StartedAt) {
		t.Fatalf("records not newest first: %v before %v", recs[0].StartedAt, recs[1].StartedAt)
	}
}
