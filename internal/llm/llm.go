package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/akanghida/soalgen/internal/model"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
)

// packetTemperature balances variety against determinism for packet output.
const packetTemperature = 0.7

// chatAPI is the slice of the OpenAI client the generator uses.
type chatAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
	ListModels(ctx context.Context) (openai.ModelsList, error)
}

// Client wraps an OpenAI-compatible API client.
type Client struct {
	api   chatAPI
	model string
	now   func() time.Time
}

// New creates a new LLM client.
func New(baseURL, apiKey, modelName string) *Client {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &Client{
		api:   openai.NewClientWithConfig(config),
		model: modelName,
		now:   time.Now,
	}
}

// Ping verifies the endpoint is reachable before serving.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.api.ListModels(ctx); err != nil {
		return fmt.Errorf("LLM endpoint unreachable: %w", err)
	}
	return nil
}

// responseSchema is the strict output schema sent with every generation
// request. correctAnswer stays a single string on the wire (comma separated
// for complex multiple choice); the client normalizes it after parsing.
var responseSchema = jsonschema.Definition{
	Type: jsonschema.Object,
	Properties: map[string]jsonschema.Definition{
		"title": {
			Type:        jsonschema.String,
			Description: "Title of the exam packet",
		},
		"basicCompetency": {
			Type:        jsonschema.String,
			Description: "The relevant Basic Competency (KD) or Learning Achievement (CP/TP)",
		},
		"questions": {
			Type: jsonschema.Array,
			Items: &jsonschema.Definition{
				Type: jsonschema.Object,
				Properties: map[string]jsonschema.Definition{
					"number": {Type: jsonschema.Integer},
					"text": {
						Type:        jsonschema.String,
						Description: "The question stem",
					},
					"options": {
						Type:        jsonschema.Array,
						Items:       &jsonschema.Definition{Type: jsonschema.String},
						Description: "List of options if applicable (MC, Complex MC)",
					},
					"correctAnswer": {
						Type:        jsonschema.String,
						Description: "Correct answer. For Complex MC, use comma separated values.",
					},
					"explanation": {
						Type:        jsonschema.String,
						Description: "Detailed explanation of the answer",
					},
					"type": {Type: jsonschema.String},
				},
				Required: []string{"number", "text", "explanation", "type"},
			},
		},
		"rubric": {
			Type:        jsonschema.String,
			Description: "General scoring rubric or additional notes",
		},
	},
	Required: []string{"title", "basicCompetency", "questions"},
}

// packetOutput is the raw LLM response before normalization.
type packetOutput struct {
	Title           string           `json:"title"`
	BasicCompetency string           `json:"basicCompetency"`
	Questions       []questionOutput `json:"questions"`
	Rubric          string           `json:"rubric"`
}

type questionOutput struct {
	Number        int      `json:"number"`
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
	Type          string   `json:"type"`
}

// Generate issues one structured-output request for the given config and
// returns the finished result. It performs no retries: any failure is
// terminal for this invocation and the caller must not mutate history or
// the current result on error.
func (c *Client) Generate(ctx context.Context, cfg model.ExamConfig) (*model.ExamResult, error) {
	prompt := buildPrompt(cfg)

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "exam_packet",
				Schema: &responseSchema,
			},
		},
		Temperature: packetTemperature,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM API call: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("LLM returned no choices")
	}

	raw := resp.Choices[0].Message.Content
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("LLM returned empty response")
	}
	slog.Debug("LLM response", "raw", raw)

	var out packetOutput
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("parse LLM response: %w", err)
	}
	if len(out.Questions) == 0 {
		return nil, fmt.Errorf("LLM response contained no questions")
	}

	now := c.now()
	result := &model.ExamResult{
		ID:              strconv.FormatInt(now.UnixMilli(), 10),
		Timestamp:       now.UnixMilli(),
		Config:          cfg,
		Title:           out.Title,
		BasicCompetency: out.BasicCompetency,
		Rubric:          out.Rubric,
	}

	for i, q := range out.Questions {
		number := q.Number
		if number == 0 {
			number = i + 1
		}
		result.Questions = append(result.Questions, model.GeneratedQuestion{
			Number:        number,
			Text:          q.Text,
			Options:       q.Options,
			CorrectAnswer: normalizeAnswer(q.CorrectAnswer, cfg.QuestionType),
			Explanation:   q.Explanation,
			// The service's own type labeling is not trusted.
			Type: cfg.QuestionType,
		})
	}

	return result, nil
}

// buildPrompt embeds every config field verbatim into the instruction prompt.
func buildPrompt(cfg model.ExamConfig) string {
	subTopic := cfg.SubTopic
	if subTopic == "" {
		subTopic = "-"
	}
	competency := cfg.Competency
	if competency == "" {
		competency = "Tentukan Otomatis"
	}

	var sb strings.Builder
	sb.WriteString("Bertindaklah sebagai guru ahli dan pembuat soal profesional.\n")
	sb.WriteString("Buatlah paket soal ujian dengan spesifikasi berikut:\n\n")
	sb.WriteString("Mode: " + string(cfg.Mode) + "\n")
	sb.WriteString("Bahasa: " + cfg.Language + "\n")
	sb.WriteString("Jenjang: " + cfg.Level + "\n")
	sb.WriteString("Kelas: " + cfg.Grade + "\n")
	sb.WriteString("Mata Pelajaran: " + cfg.Subject + "\n")
	sb.WriteString("Kurikulum: " + cfg.Curriculum + "\n")
	sb.WriteString("Jenis Asesmen: " + cfg.AssessmentType + "\n")
	sb.WriteString("Topik Materi: " + cfg.Topic + "\n")
	sb.WriteString("Sub-Materi: " + subTopic + "\n")
	sb.WriteString("Kompetensi Dasar (Manual): " + competency + "\n")
	sb.WriteString("Tipe Soal: " + string(cfg.QuestionType) + "\n")
	sb.WriteString(fmt.Sprintf("Jumlah Soal: %d\n", cfg.TotalQuestions))
	sb.WriteString("Tingkat Kesulitan: " + string(cfg.Difficulty) + "\n\n")
	sb.WriteString("Instruksi Khusus:\n")
	sb.WriteString("1. Jika Kompetensi Dasar manual diisi, gunakan itu. Jika \"Tentukan Otomatis\", analisislah topik dan jenjang untuk menentukan KD (Kurikulum 2013) atau CP/TP (Kurikulum Merdeka) yang paling relevan. Masukkan ini ke field 'basicCompetency'.\n")
	sb.WriteString("2. Pastikan soal sesuai dengan kaidah penulisan soal yang benar.\n")
	sb.WriteString("3. Jika Tipe Soal adalah 'Pilihan Ganda Kompleks', pastikan opsi jawaban bisa dipilih lebih dari satu yang benar.\n")
	sb.WriteString("4. Sertakan pembahasan yang mendalam untuk setiap soal.\n")
	sb.WriteString("5. Output harus dalam format JSON yang valid sesuai skema.\n")

	return sb.String()
}

// normalizeAnswer converts the wire-format answer string into the ordered
// label list stored on GeneratedQuestion. Complex multiple choice answers
// arrive comma separated; every other type carries at most one label.
func normalizeAnswer(raw string, qt model.QuestionType) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if qt != model.TypeComplexMultipleChoice {
		return []string{raw}
	}

	var answers []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			answers = append(answers, part)
		}
	}
	return answers
}
