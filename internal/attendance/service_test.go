package attendance

import (
	"context"
	"errors"
	"testing"
	"time"

	"govindo-backend/internal/partners"
)

type fakeRecordStore struct {
	seq     uint64
	records map[uint64]Record

	lastListQuery ListQuery
}

func newFakeRecordStore() *fakeRecordStore {
	return &fakeRecordStore{records: map[uint64]Record{}}
}

func (f *fakeRecordStore) Insert(ctx context.Context, date string, section Section, memberID string) (Record, error) {
	f.seq++
	rec := Record{ID: f.seq, Date: date, Section: section, MemberID: memberID, CreatedAt: time.Now().UTC()}
	f.records[rec.ID] = rec
	return rec, nil
}

func (f *fakeRecordStore) Delete(ctx context.Context, id uint64) error {
	if _, ok := f.records[id]; !ok {
		return errors.New("no such row")
	}
	delete(f.records, id)
	return nil
}

func (f *fakeRecordStore) Find(ctx context.Context, date string, section Section, memberID string) (*Record, error) {
	for _, r := range f.records {
		if r.Date == date && r.Section == section && r.MemberID == memberID {
			rec := r
			return &rec, nil
		}
	}
	return nil, nil
}

func (f *fakeRecordStore) ListByDate(ctx context.Context, date string, section Section) ([]Record, error) {
	var out []Record
	for _, r := range f.records {
		if r.Date == date && r.Section == section {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRecordStore) PresentSet(ctx context.Context, date string, section Section) (map[string]struct{}, error) {
	out := map[string]struct{}{}
	for _, r := range f.records {
		if r.Date == date && r.Section == section {
			out[r.MemberID] = struct{}{}
		}
	}
	return out, nil
}

func (f *fakeRecordStore) List(ctx context.Context, q ListQuery) ([]Record, int64, error) {
	f.lastListQuery = q
	return nil, 0, nil
}

func (f *fakeRecordStore) Stats(ctx context.Context, section Section, from, to time.Time, limit int) ([]StatsRow, error) {
	return nil, nil
}

func (f *fakeRecordStore) DeleteByMember(ctx context.Context, memberID string) ([]string, error) {
	dates := map[string]struct{}{}
	for id, r := range f.records {
		if r.MemberID != memberID {
			continue
		}
		if r.Section == SectionCarrom {
			dates[r.Date] = struct{}{}
		}
		delete(f.records, id)
	}
	out := make([]string, 0, len(dates))
	for d := range dates {
		out = append(out, d)
	}
	return out, nil
}

type fakeCascade struct {
	calls   []string // "date/member"
	pairs   []partners.Pair
	failure error
}

func (f *fakeCascade) OnAttendanceRemoved(ctx context.Context, date, memberID string) ([]partners.Pair, error) {
	f.calls = append(f.calls, date+"/"+memberID)
	return f.pairs, f.failure
}

func TestMarkPresent(t *testing.T) {
	store := newFakeRecordStore()
	svc := &Service{store: store, cascade: &fakeCascade{}}
	ctx := context.Background()

	rec, err := svc.MarkPresent(ctx, "2024-01-01", SectionAdda, "alice")
	if err != nil {
		t.Fatalf("MarkPresent: %v", err)
	}
	if rec.MemberID != "alice" || rec.Section != SectionAdda {
		t.Errorf("record = %+v", rec)
	}

	// same triple again
	_, err = svc.MarkPresent(ctx, "2024-01-01", SectionAdda, "alice")
	var api *APIError
	if !errors.As(err, &api) || api.Code != CodeDuplicate {
		t.Errorf("err = %v, want DUPLICATE", err)
	}

	// same member, other section, is fine
	if _, err := svc.MarkPresent(ctx, "2024-01-01", SectionCarrom, "alice"); err != nil {
		t.Errorf("other section: %v", err)
	}

	_, err = svc.MarkPresent(ctx, "01/01/2024", SectionAdda, "bob")
	if !errors.As(err, &api) || api.Code != CodeValidation {
		t.Errorf("bad date: err = %v, want VALIDATION", err)
	}

	_, err = svc.MarkPresent(ctx, "2024-01-01", SectionAdda, "")
	if !errors.As(err, &api) || api.Code != CodeValidation {
		t.Errorf("empty member: err = %v, want VALIDATION", err)
	}
}

func TestMarkAbsentNotFound(t *testing.T) {
	svc := &Service{store: newFakeRecordStore(), cascade: &fakeCascade{}}

	_, err := svc.MarkAbsent(context.Background(), "2024-01-01", SectionAdda, "alice")
	var api *APIError
	if !errors.As(err, &api) || api.Code != CodeNotFound {
		t.Errorf("err = %v, want NOT_FOUND", err)
	}
}

func TestMarkAbsentAddaSkipsCascade(t *testing.T) {
	store := newFakeRecordStore()
	cascade := &fakeCascade{}
	svc := &Service{store: store, cascade: cascade}
	ctx := context.Background()

	if _, err := svc.MarkPresent(ctx, "2024-01-01", SectionAdda, "alice"); err != nil {
		t.Fatal(err)
	}
	res, err := svc.MarkAbsent(ctx, "2024-01-01", SectionAdda, "alice")
	if err != nil {
		t.Fatalf("MarkAbsent: %v", err)
	}
	if len(cascade.calls) != 0 {
		t.Errorf("cascade ran for Adda: %v", cascade.calls)
	}
	if len(res.PairsCleared) != 0 {
		t.Errorf("PairsCleared = %+v, want empty", res.PairsCleared)
	}
}

func TestMarkAbsentCarromRunsCascade(t *testing.T) {
	store := newFakeRecordStore()
	bob := "bob"
	cascade := &fakeCascade{pairs: []partners.Pair{{ID: "pair-1", Date: "2024-01-01", Player2: &bob, State: partners.StateCommitted}}}
	svc := &Service{store: store, cascade: cascade}
	ctx := context.Background()

	if _, err := svc.MarkPresent(ctx, "2024-01-01", SectionCarrom, "alice"); err != nil {
		t.Fatal(err)
	}
	res, err := svc.MarkAbsent(ctx, "2024-01-01", SectionCarrom, "alice")
	if err != nil {
		t.Fatalf("MarkAbsent: %v", err)
	}
	if len(cascade.calls) != 1 || cascade.calls[0] != "2024-01-01/alice" {
		t.Errorf("cascade calls = %v", cascade.calls)
	}
	if len(res.PairsCleared) != 1 || res.PairsCleared[0].ID != "pair-1" {
		t.Errorf("PairsCleared = %+v", res.PairsCleared)
	}

	// the record really is gone
	present, err := svc.IsPresent(ctx, "2024-01-01", SectionCarrom, "alice")
	if err != nil || present {
		t.Errorf("IsPresent = %v, %v; want false, nil", present, err)
	}
}

func TestMarkAbsentSurfacesCascadeError(t *testing.T) {
	store := newFakeRecordStore()
	cascade := &fakeCascade{
		pairs:   []partners.Pair{{ID: "pair-1", Date: "2024-01-01", State: partners.StateCommitted}},
		failure: &partners.CascadeError{Failed: []partners.Pair{{ID: "pair-1"}}},
	}
	svc := &Service{store: store, cascade: cascade}
	ctx := context.Background()

	if _, err := svc.MarkPresent(ctx, "2024-01-01", SectionCarrom, "alice"); err != nil {
		t.Fatal(err)
	}
	res, err := svc.MarkAbsent(ctx, "2024-01-01", SectionCarrom, "alice")

	var ce *partners.CascadeError
	if !errors.As(err, &ce) {
		t.Fatalf("err = %v, want CascadeError", err)
	}
	if len(res.PairsCleared) != 1 {
		t.Errorf("PairsCleared = %+v, want the cleared pair despite the error", res.PairsCleared)
	}
	// the removal stands even though the cascade could not persist
	present, _ := svc.IsPresent(ctx, "2024-01-01", SectionCarrom, "alice")
	if present {
		t.Error("attendance should stay removed after a cascade failure")
	}
}

func TestListClampsLimit(t *testing.T) {
	store := newFakeRecordStore()
	svc := &Service{store: store, cascade: &fakeCascade{}}
	ctx := context.Background()

	if _, _, err := svc.List(ctx, ListQuery{}); err != nil {
		t.Fatal(err)
	}
	if store.lastListQuery.Limit != DefaultPageLimit {
		t.Errorf("default limit = %d, want %d", store.lastListQuery.Limit, DefaultPageLimit)
	}

	if _, _, err := svc.List(ctx, ListQuery{Limit: 10_000}); err != nil {
		t.Fatal(err)
	}
	if store.lastListQuery.Limit != MaxPageLimit {
		t.Errorf("clamped limit = %d, want %d", store.lastListQuery.Limit, MaxPageLimit)
	}
}

func TestStatsValidation(t *testing.T) {
	svc := &Service{store: newFakeRecordStore(), cascade: &fakeCascade{}}
	ctx := context.Background()

	tests := []struct {
		name string
		req  StatsRequest
	}{
		{"bad from", StatsRequest{From: "bad", To: "2024-01-31", Section: SectionAdda}},
		{"bad to", StatsRequest{From: "2024-01-01", To: "bad", Section: SectionAdda}},
		{"inverted range", StatsRequest{From: "2024-02-01", To: "2024-01-01", Section: SectionAdda}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Stats(ctx, tt.req)
			var api *APIError
			if !errors.As(err, &api) || api.Code != CodeValidation {
				t.Errorf("err = %v, want VALIDATION", err)
			}
		})
	}
}

func TestParseSection(t *testing.T) {
	if s, ok := ParseSection("Adda"); !ok || s != SectionAdda {
		t.Errorf("ParseSection(Adda) = %v, %v", s, ok)
	}
	if s, ok := ParseSection("Carrom"); !ok || s != SectionCarrom {
		t.Errorf("ParseSection(Carrom) = %v, %v", s, ok)
	}
	if _, ok := ParseSection("chess"); ok {
		t.Error("ParseSection(chess) should fail")
	}
}
