package model

import "testing"

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		topic   string
		wantErr bool
	}{
		{"empty", "", true},
		{"whitespace only", "   ", true},
		{"set", "Pecahan", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Topic = tt.topic
			err := cfg.Validate()
			if tt.wantErr && err != ErrTopicRequired {
				t.Errorf("expected ErrTopicRequired, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestClampTotalQuestions(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{-3, 1},
		{0, 1},
		{1, 1},
		{25, 25},
		{50, 50},
		{51, 50},
		{1000, 50},
	}

	for _, tt := range tests {
		cfg := DefaultConfig()
		cfg.TotalQuestions = tt.in
		cfg.ClampTotalQuestions()
		if cfg.TotalQuestions != tt.want {
			t.Errorf("ClampTotalQuestions(%d) = %d, want %d", tt.in, cfg.TotalQuestions, tt.want)
		}
	}
}

func TestCurriculumName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Kurikulum Merdeka (Kemendikbudristek)", "Kurikulum Merdeka"},
		{"Kurikulum 2013", "Kurikulum 2013"},
		{"Cambridge", "Cambridge"},
		{"", ""},
	}

	for _, tt := range tests {
		cfg := ExamConfig{Curriculum: tt.in}
		if got := cfg.CurriculumName(); got != tt.want {
			t.Errorf("CurriculumName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDurationMinutes(t *testing.T) {
	cfg := ExamConfig{TotalQuestions: 5}
	if got := cfg.DurationMinutes(); got != 15 {
		t.Errorf("DurationMinutes() = %d, want 15", got)
	}
}

func TestQuestionTypeHasOptions(t *testing.T) {
	tests := []struct {
		qt   QuestionType
		want bool
	}{
		{TypeMultipleChoice, true},
		{TypeComplexMultipleChoice, true},
		{TypeTrueFalse, false},
		{TypeMatching, false},
		{TypeEssay, false},
	}

	for _, tt := range tests {
		if got := tt.qt.HasOptions(); got != tt.want {
			t.Errorf("%q.HasOptions() = %v, want %v", tt.qt, got, tt.want)
		}
	}
}

func TestEnumValidity(t *testing.T) {
	for _, qt := range QuestionTypes {
		if !qt.Valid() {
			t.Errorf("%q should be valid", qt)
		}
	}
	if QuestionType("Isian Singkat").Valid() {
		t.Error("unknown question type should be invalid")
	}

	for _, d := range DifficultyLevels {
		if !d.Valid() {
			t.Errorf("%q should be valid", d)
		}
	}
	if DifficultyLevel("Level 5").Valid() {
		t.Error("unknown difficulty should be invalid")
	}
}

func TestAnswerKey(t *testing.T) {
	tests := []struct {
		name string
		q    GeneratedQuestion
		want string
	}{
		{"empty", GeneratedQuestion{}, ""},
		{"single", GeneratedQuestion{CorrectAnswer: []string{"B"}}, "B"},
		{"multiple", GeneratedQuestion{CorrectAnswer: []string{"A", "C", "D"}}, "A, C, D"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.q.AnswerKey(); got != tt.want {
				t.Errorf("AnswerKey() = %q, want %q", got, tt.want)
			}
		})
	}
}
