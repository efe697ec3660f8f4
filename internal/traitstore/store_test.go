package traitstore

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielpatrickdp/adaptive-profile/internal/evidence"
	"github.com/danielpatrickdp/adaptive-profile/internal/layer"
	"github.com/danielpatrickdp/adaptive-profile/internal/refine"
)

func tempDB(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := NewStore(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seed() refine.Vector {
	return refine.Seed([]string{"extraversion", "structure"})
}

func TestCreateInitialAndGetCurrent(t *testing.T) {
	s := tempDB(t)

	rec, err := s.CreateInitial("u1", seed())
	if err != nil {
		t.Fatalf("CreateInitial: %v", err)
	}
	if rec.VersionID == "" {
		t.Fatal("expected non-empty version ID")
	}
	if rec.ParentID != "" {
		t.Fatalf("expected empty parent, got %s", rec.ParentID)
	}

	cur, err := s.GetCurrent("u1")
	if err != nil {
		t.Fatalf("GetCurrent: %v", err)
	}
	if cur.VersionID != rec.VersionID {
		t.Fatalf("expected %s, got %s", rec.VersionID, cur.VersionID)
	}
	if len(cur.Traits) != 2 || cur.Traits[0].Score != refine.NeutralScore {
		t.Fatalf("unexpected traits: %+v", cur.Traits)
	}
}

func TestGetCurrentUnknownUser(t *testing.T) {
	s := tempDB(t)
	_, err := s.GetCurrent("nobody")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCommitAndRollback(t *testing.T) {
	s := tempDB(t)

	v1, err := s.CreateInitial("u1", seed())
	if err != nil {
		t.Fatalf("CreateInitial: %v", err)
	}

	v2 := Record{
		VersionID: "v2-test",
		ParentID:  v1.VersionID,
		UserID:    "u1",
		Traits:    v1.Traits.Clone(),
		CreatedAt: v1.CreatedAt.Add(time.Second),
	}
	v2.Traits[0].Score = 60.5
	v2.Traits[0].Confidence = 0.02

	if err := s.CommitState(v2); err != nil {
		t.Fatalf("CommitState: %v", err)
	}

	cur, _ := s.GetCurrent("u1")
	if cur.VersionID != "v2-test" {
		t.Fatalf("expected v2-test, got %s", cur.VersionID)
	}
	if cur.ParentID != v1.VersionID {
		t.Fatalf("expected parent %s, got %s", v1.VersionID, cur.ParentID)
	}
	if cur.Traits[0].Score != 60.5 {
		t.Fatalf("expected 60.5, got %f", cur.Traits[0].Score)
	}

	if err := s.Rollback("u1", v1.VersionID); err != nil {
		t.Fatalf("Rollback: %v", err)
	}
	cur, _ = s.GetCurrent("u1")
	if cur.VersionID != v1.VersionID {
		t.Fatalf("expected rollback to %s, got %s", v1.VersionID, cur.VersionID)
	}
}

func TestRollbackGuards(t *testing.T) {
	s := tempDB(t)
	v1, _ := s.CreateInitial("u1", seed())
	if _, err := s.CreateInitial("u2", seed()); err != nil {
		t.Fatalf("CreateInitial u2: %v", err)
	}

	if err := s.Rollback("u1", "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.Rollback("u2", v1.VersionID); err == nil {
		t.Fatal("expected error rolling back to another user's version")
	}
}

func TestUsersAreIsolated(t *testing.T) {
	s := tempDB(t)
	a, _ := s.CreateInitial("alice", seed())
	b, _ := s.CreateInitial("bob", seed())

	curA, _ := s.GetCurrent("alice")
	curB, _ := s.GetCurrent("bob")
	if curA.VersionID != a.VersionID || curB.VersionID != b.VersionID {
		t.Fatal("active pointers leaked across users")
	}

	users, err := s.Users()
	if err != nil {
		t.Fatalf("Users: %v", err)
	}
	if len(users) != 2 || users[0] != "alice" || users[1] != "bob" {
		t.Fatalf("unexpected users: %v", users)
	}
}

func TestListVersionsNewestFirst(t *testing.T) {
	s := tempDB(t)
	v1, _ := s.CreateInitial("u1", seed())
	prev := v1
	for i := 0; i < 3; i++ {
		next := Record{
			VersionID: "v" + string(rune('a'+i)),
			ParentID:  prev.VersionID,
			UserID:    "u1",
			Traits:    prev.Traits,
			CreatedAt: prev.CreatedAt.Add(time.Minute),
		}
		if err := s.CommitState(next); err != nil {
			t.Fatalf("CommitState: %v", err)
		}
		prev = next
	}

	recs, err := s.ListVersions("u1", 2)
	if err != nil {
		t.Fatalf("ListVersions: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if recs[0].VersionID != "vc" || recs[1].VersionID != "vb" {
		t.Fatalf("unexpected order: %s, %s", recs[0].VersionID, recs[1].VersionID)
	}
}

func TestCommitRequiresUser(t *testing.T) {
	s := tempDB(t)
	if err := s.CommitState(Record{VersionID: "x"}); err == nil {
		t.Fatal("expected error for empty user")
	}
}

func TestAnswersLastWriteWins(t *testing.T) {
	s := tempDB(t)
	t0 := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)

	answers := []evidence.Answer{
		{UserID: "u1", QuestionID: "BLUEPRINT.01", Value: "quiet careful maker", AnsweredAt: t0,
			Derived: map[string]float64{evidence.DerivedTokenCount: 3}},
		{UserID: "u1", QuestionID: "BLUEPRINT.02", Value: 1, AnsweredAt: t0},
		{UserID: "u1", QuestionID: "BLUEPRINT.02", Value: 4, AnsweredAt: t0.Add(time.Hour)},
		{UserID: "u2", QuestionID: "BLUEPRINT.02", Value: 0, AnsweredAt: t0},
	}
	for _, a := range answers {
		if err := s.SaveAnswer(a); err != nil {
			t.Fatalf("SaveAnswer: %v", err)
		}
	}

	set, err := s.Answers("u1")
	if err != nil {
		t.Fatalf("Answers: %v", err)
	}
	if set.Len() != 2 {
		t.Fatalf("expected 2 answers, got %d", set.Len())
	}
	a, _ := set.Get("BLUEPRINT.02")
	idx, err := a.Index()
	if err != nil || idx != 4 {
		t.Fatalf("expected latest index 4, got %d (%v)", idx, err)
	}
	first, _ := set.Get("BLUEPRINT.01")
	if n, ok := first.Feature(evidence.DerivedTokenCount); !ok || n != 3 {
		t.Fatalf("derived features not round-tripped: %v", first.Derived)
	}
	if text, _ := first.Text(); text != "quiet careful maker" {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestSaveAnswerRequiresIDs(t *testing.T) {
	s := tempDB(t)
	if err := s.SaveAnswer(evidence.Answer{QuestionID: "Q"}); err == nil {
		t.Fatal("expected error without user id")
	}
}

func TestValidations(t *testing.T) {
	s := tempDB(t)
	if err := s.SetValidation("u1", 3, layer.DoesntFit); err != nil {
		t.Fatalf("SetValidation: %v", err)
	}
	if err := s.SetValidation("u1", 3, layer.Resonates); err != nil {
		t.Fatalf("SetValidation overwrite: %v", err)
	}
	if err := s.SetValidation("u1", 5, layer.NotSure); err != nil {
		t.Fatalf("SetValidation: %v", err)
	}
	if err := s.SetValidation("u1", 5, layer.Unvalidated); err != nil {
		t.Fatalf("clear validation: %v", err)
	}
	if err := s.SetValidation("u1", 16, layer.NotSure); err == nil {
		t.Fatal("expected error for invalid layer")
	}
	if err := s.SetValidation("u1", 2, layer.Validation("meh")); err == nil {
		t.Fatal("expected error for unknown verdict")
	}

	got, err := s.Validations("u1")
	if err != nil {
		t.Fatalf("Validations: %v", err)
	}
	if len(got) != 1 || got[3] != layer.Resonates {
		t.Fatalf("unexpected validations: %v", got)
	}
}
