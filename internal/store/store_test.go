package store

import (
	"reflect"
	"testing"
	"time"

	"github.com/akanghida/soalgen/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("newTestStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testResult(id string) model.ExamResult {
	cfg := model.DefaultConfig()
	cfg.Subject = "Matematika"
	cfg.Grade = "Kelas 7"
	cfg.Topic = "Pecahan"

	return model.ExamResult{
		ID:        id,
		Timestamp: time.Now().UnixMilli(),
		Config:    cfg,
		Title:     "Paket " + id,
		Questions: []model.GeneratedQuestion{
			{
				Number:        1,
				Text:          "Berapakah 1/2 + 1/4?",
				Options:       []string{"1/4", "3/4"},
				CorrectAnswer: []string{"3/4"},
				Explanation:   "Samakan penyebut.",
				Type:          model.TypeMultipleChoice,
			},
		},
	}
}

func TestLoadEmpty(t *testing.T) {
	s := newTestStore(t)
	if history := s.Load(); len(history) != 0 {
		t.Errorf("expected empty history, got %d entries", len(history))
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)

	history := []model.ExamResult{testResult("2"), testResult("1")}
	if err := s.Save(history); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got := s.Load()
	if !reflect.DeepEqual(got, history) {
		t.Errorf("round trip mismatch:\ngot  %+v\nwant %+v", got, history)
	}

	// A second save-of-load leaves the content unchanged.
	if err := s.Save(got); err != nil {
		t.Fatalf("Save again: %v", err)
	}
	if again := s.Load(); !reflect.DeepEqual(again, history) {
		t.Error("save(load()) changed stored content")
	}
}

func TestSaveOverwrites(t *testing.T) {
	s := newTestStore(t)

	if err := s.Save([]model.ExamResult{testResult("1"), testResult("2")}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Save([]model.ExamResult{testResult("3")}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got := s.Load()
	if len(got) != 1 || got[0].ID != "3" {
		t.Errorf("expected single entry '3', got %+v", got)
	}
}

func TestSaveNilClearsHistory(t *testing.T) {
	s := newTestStore(t)

	if err := s.Save([]model.ExamResult{testResult("1")}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Save(nil); err != nil {
		t.Fatalf("Save nil: %v", err)
	}
	if history := s.Load(); len(history) != 0 {
		t.Errorf("expected empty history after clearing, got %d entries", len(history))
	}
}

func TestLoadCorruptedPayload(t *testing.T) {
	s := newTestStore(t)

	_, err := s.db.Exec(
		`INSERT INTO documents (name, payload, updated_at) VALUES (?, ?, ?)`,
		historyKey, `"{not json`, time.Now(),
	)
	if err != nil {
		t.Fatalf("inject corrupt payload: %v", err)
	}

	// Must degrade to empty without panicking or erroring.
	if history := s.Load(); len(history) != 0 {
		t.Errorf("expected empty history for corrupt payload, got %d entries", len(history))
	}
}

func TestLoadWrongShapePayload(t *testing.T) {
	s := newTestStore(t)

	_, err := s.db.Exec(
		`INSERT INTO documents (name, payload, updated_at) VALUES (?, ?, ?)`,
		historyKey, `{"not":"a list"}`, time.Now(),
	)
	if err != nil {
		t.Fatalf("inject payload: %v", err)
	}

	if history := s.Load(); len(history) != 0 {
		t.Errorf("expected empty history for wrong-shape payload, got %d entries", len(history))
	}
}
