package llm

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/akanghida/soalgen/internal/model"

	openai "github.com/sashabaranov/go-openai"
)

// fakeChatAPI returns canned responses without touching the network.
type fakeChatAPI struct {
	content   string
	err       error
	noChoices bool

	gotRequest openai.ChatCompletionRequest
}

func (f *fakeChatAPI) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.gotRequest = req
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	if f.noChoices {
		return openai.ChatCompletionResponse{}, nil
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: f.content}},
		},
	}, nil
}

func (f *fakeChatAPI) ListModels(context.Context) (openai.ModelsList, error) {
	return openai.ModelsList{}, f.err
}

func newTestClient(api chatAPI) *Client {
	return &Client{
		api:   api,
		model: "test-model",
		now:   func() time.Time { return time.UnixMilli(1700000000000) },
	}
}

func testConfig() model.ExamConfig {
	cfg := model.DefaultConfig()
	cfg.Level = "SMP / MTs"
	cfg.Grade = "Kelas 7"
	cfg.Subject = "Matematika"
	cfg.AssessmentType = "Ulangan Harian"
	cfg.Topic = "Pecahan"
	return cfg
}

const validPacket = `{
	"title": "Paket Soal Pecahan",
	"basicCompetency": "Memahami operasi pecahan",
	"questions": [
		{"number": 1, "text": "Berapakah 1/2 + 1/4?", "options": ["1/4", "2/4", "3/4", "4/4"], "correctAnswer": "3/4", "explanation": "Samakan penyebut.", "type": "essay"},
		{"number": 2, "text": "Berapakah 1/3 + 1/3?", "options": ["1/3", "2/3", "3/3", "1"], "correctAnswer": "2/3", "explanation": "Jumlahkan pembilang.", "type": ""}
	],
	"rubric": "Setiap soal bernilai 20 poin."
}`

func TestGenerate(t *testing.T) {
	api := &fakeChatAPI{content: validPacket}
	c := newTestClient(api)
	cfg := testConfig()

	result, err := c.Generate(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if result.Title != "Paket Soal Pecahan" {
		t.Errorf("unexpected title %q", result.Title)
	}
	if result.BasicCompetency != "Memahami operasi pecahan" {
		t.Errorf("unexpected competency %q", result.BasicCompetency)
	}
	if result.Rubric != "Setiap soal bernilai 20 poin." {
		t.Errorf("unexpected rubric %q", result.Rubric)
	}
	if !reflect.DeepEqual(result.Config, cfg) {
		t.Error("result config should deep-equal the input config")
	}
	if result.ID != "1700000000000" {
		t.Errorf("unexpected id %q", result.ID)
	}
	if result.Timestamp != 1700000000000 {
		t.Errorf("unexpected timestamp %d", result.Timestamp)
	}
	if len(result.Questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(result.Questions))
	}
	for i, q := range result.Questions {
		// The requested type wins over whatever the service labeled.
		if q.Type != cfg.QuestionType {
			t.Errorf("question %d type = %q, want %q", i, q.Type, cfg.QuestionType)
		}
	}
	if got := result.Questions[0].AnswerKey(); got != "3/4" {
		t.Errorf("unexpected answer key %q", got)
	}

	if api.gotRequest.Temperature != 0.7 {
		t.Errorf("temperature = %v, want 0.7", api.gotRequest.Temperature)
	}
	if api.gotRequest.ResponseFormat == nil ||
		api.gotRequest.ResponseFormat.Type != openai.ChatCompletionResponseFormatTypeJSONSchema {
		t.Error("request should ask for JSON-schema output")
	}
}

func TestGenerateErrors(t *testing.T) {
	tests := []struct {
		name string
		api  *fakeChatAPI
	}{
		{"call fails", &fakeChatAPI{err: errors.New("connection refused")}},
		{"no choices", &fakeChatAPI{noChoices: true}},
		{"empty text", &fakeChatAPI{content: "   "}},
		{"not json", &fakeChatAPI{content: "{not json"}},
		{"no questions", &fakeChatAPI{content: `{"title":"t","basicCompetency":"c","questions":[]}`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(tt.api)
			if _, err := c.Generate(context.Background(), testConfig()); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestGenerateRenumbersMissingNumbers(t *testing.T) {
	packet := `{"title":"t","basicCompetency":"c","questions":[
		{"number": 0, "text": "a", "explanation": "e", "type": "x"},
		{"number": 0, "text": "b", "explanation": "e", "type": "x"}
	]}`
	c := newTestClient(&fakeChatAPI{content: packet})

	result, err := c.Generate(context.Background(), testConfig())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if result.Questions[0].Number != 1 || result.Questions[1].Number != 2 {
		t.Errorf("expected sequential numbers, got %d and %d",
			result.Questions[0].Number, result.Questions[1].Number)
	}
}

func TestBuildPrompt(t *testing.T) {
	cfg := testConfig()
	cfg.SubTopic = "Pecahan campuran"
	cfg.Competency = "KD 3.1"

	prompt := buildPrompt(cfg)
	for _, want := range []string{
		"Mode: sekolah",
		"Bahasa: Bahasa Indonesia",
		"Jenjang: SMP / MTs",
		"Kelas: Kelas 7",
		"Mata Pelajaran: Matematika",
		"Kurikulum: Kurikulum Merdeka (Kemendikbudristek)",
		"Jenis Asesmen: Ulangan Harian",
		"Topik Materi: Pecahan",
		"Sub-Materi: Pecahan campuran",
		"Kompetensi Dasar (Manual): KD 3.1",
		"Tipe Soal: Pilihan Ganda",
		fmt.Sprintf("Jumlah Soal: %d", cfg.TotalQuestions),
		"Tingkat Kesulitan: Level 2: Sedang (Aplikasi)",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt should contain %q", want)
		}
	}
}

func TestBuildPromptDefaults(t *testing.T) {
	cfg := testConfig()
	cfg.SubTopic = ""
	cfg.Competency = ""

	prompt := buildPrompt(cfg)
	if !strings.Contains(prompt, "Sub-Materi: -") {
		t.Error("empty sub-topic should render as '-'")
	}
	if !strings.Contains(prompt, "Kompetensi Dasar (Manual): Tentukan Otomatis") {
		t.Error("empty competency should instruct automatic inference")
	}
}

func TestNormalizeAnswer(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		qt   model.QuestionType
		want []string
	}{
		{"empty", "", model.TypeMultipleChoice, nil},
		{"whitespace", "  ", model.TypeEssay, nil},
		{"single mc", "B", model.TypeMultipleChoice, []string{"B"}},
		{"mc with comma stays whole", "Karena a, maka b", model.TypeEssay, []string{"Karena a, maka b"}},
		{"complex split", "A, C, D", model.TypeComplexMultipleChoice, []string{"A", "C", "D"}},
		{"complex trims empties", "A,, C ,", model.TypeComplexMultipleChoice, []string{"A", "C"}},
		{"true false", "Benar", model.TypeTrueFalse, []string{"Benar"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeAnswer(tt.raw, tt.qt)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("normalizeAnswer(%q, %q) = %v, want %v", tt.raw, tt.qt, got, tt.want)
			}
		})
	}
}
