package model

import (
	"errors"
	"strings"
)

// Mode selects the teaching context the packet is generated for.
type Mode string

const (
	// ModeSekolah is the regular school-teacher mode.
	ModeSekolah Mode = "sekolah"
	// ModeBimbel is the tutoring-center mode.
	ModeBimbel Mode = "bimbel"
)

// QuestionType represents the type of generated questions.
// Values are the Indonesian labels used verbatim in prompts and documents.
type QuestionType string

const (
	TypeMultipleChoice        QuestionType = "Pilihan Ganda"
	TypeComplexMultipleChoice QuestionType = "Pilihan Ganda Kompleks"
	TypeTrueFalse             QuestionType = "Benar / Salah"
	TypeMatching              QuestionType = "Menjodohkan"
	TypeEssay                 QuestionType = "Uraian / Essay"
)

// QuestionTypes lists all supported question types in form order.
var QuestionTypes = []QuestionType{
	TypeMultipleChoice,
	TypeComplexMultipleChoice,
	TypeTrueFalse,
	TypeMatching,
	TypeEssay,
}

// HasOptions reports whether questions of this type carry an explicit
// option list. True/false questions use the fixed Benar/Salah pair and
// store no options.
func (t QuestionType) HasOptions() bool {
	return t == TypeMultipleChoice || t == TypeComplexMultipleChoice
}

// Valid reports whether t is one of the supported question types.
func (t QuestionType) Valid() bool {
	for _, qt := range QuestionTypes {
		if t == qt {
			return true
		}
	}
	return false
}

// DifficultyLevel represents the cognitive difficulty of a packet.
type DifficultyLevel string

const (
	DifficultyLevel1 DifficultyLevel = "Level 1: Mudah (Pemahaman Dasar)"
	DifficultyLevel2 DifficultyLevel = "Level 2: Sedang (Aplikasi)"
	DifficultyLevel3 DifficultyLevel = "Level 3: Sulit (Analisis)"
	DifficultyHOTS   DifficultyLevel = "HOTS (Evaluasi & Kreasi)"
)

// DifficultyLevels lists all difficulty levels in form order.
var DifficultyLevels = []DifficultyLevel{
	DifficultyLevel1,
	DifficultyLevel2,
	DifficultyLevel3,
	DifficultyHOTS,
}

// Valid reports whether d is one of the supported difficulty levels.
func (d DifficultyLevel) Valid() bool {
	for _, dl := range DifficultyLevels {
		if d == dl {
			return true
		}
	}
	return false
}

const (
	// MinQuestions is the smallest allowed packet size.
	MinQuestions = 1
	// MaxQuestions is the largest allowed packet size.
	MaxQuestions = 50
)

// ErrTopicRequired is returned when a config with an empty topic is submitted.
var ErrTopicRequired = errors.New("topic must not be empty")

// ExamConfig holds the user-chosen generation parameters. A snapshot of the
// config is embedded into every ExamResult at generation time.
type ExamConfig struct {
	Mode           Mode            `json:"mode"`
	Language       string          `json:"language"`
	Level          string          `json:"level"`
	Grade          string          `json:"grade"`
	Subject        string          `json:"subject"`
	Curriculum     string          `json:"curriculum"`
	AssessmentType string          `json:"assessmentType"`
	Topic          string          `json:"topic"`
	SubTopic       string          `json:"subTopic,omitempty"`
	Competency     string          `json:"competency,omitempty"`
	QuestionType   QuestionType    `json:"questionType"`
	TotalQuestions int             `json:"totalQuestions"`
	Difficulty     DifficultyLevel `json:"difficulty"`
}

// DefaultConfig returns the configuration the form starts from.
func DefaultConfig() ExamConfig {
	return ExamConfig{
		Mode:           ModeSekolah,
		Language:       "Bahasa Indonesia",
		Curriculum:     "Kurikulum Merdeka (Kemendikbudristek)",
		QuestionType:   TypeMultipleChoice,
		TotalQuestions: 5,
		Difficulty:     DifficultyLevel2,
	}
}

// Validate checks the single submission gate: a non-empty topic.
// All other fields are constrained by the input surface itself.
func (c ExamConfig) Validate() error {
	if strings.TrimSpace(c.Topic) == "" {
		return ErrTopicRequired
	}
	return nil
}

// ClampTotalQuestions forces TotalQuestions into [MinQuestions, MaxQuestions].
func (c *ExamConfig) ClampTotalQuestions() {
	if c.TotalQuestions < MinQuestions {
		c.TotalQuestions = MinQuestions
	}
	if c.TotalQuestions > MaxQuestions {
		c.TotalQuestions = MaxQuestions
	}
}

// CurriculumName returns the curriculum with any parenthetical suffix
// stripped, as printed on the exam paper header.
func (c ExamConfig) CurriculumName() string {
	name, _, _ := strings.Cut(c.Curriculum, "(")
	return strings.TrimSpace(name)
}

// DurationMinutes returns the suggested working time printed on the paper.
func (c ExamConfig) DurationMinutes() int {
	return c.TotalQuestions * 3
}

// GeneratedQuestion is one exam item.
//
// CorrectAnswer is always an ordered list of option labels: a singleton for
// single-answer types, one entry per correct option for complex multiple
// choice, and empty when the generator supplied no key. Documents join the
// entries with ", ".
type GeneratedQuestion struct {
	Number        int          `json:"number"`
	Text          string       `json:"text"`
	Options       []string     `json:"options,omitempty"`
	CorrectAnswer []string     `json:"correctAnswer,omitempty"`
	Explanation   string       `json:"explanation"`
	Type          QuestionType `json:"type"`
}

// AnswerKey returns the serialized answer key for documents.
func (q GeneratedQuestion) AnswerKey() string {
	return strings.Join(q.CorrectAnswer, ", ")
}

// ExamResult is one generation outcome. Immutable after creation; removed
// only by explicit deletion from history.
type ExamResult struct {
	ID              string              `json:"id"`
	Timestamp       int64               `json:"timestamp"`
	Config          ExamConfig          `json:"config"`
	Title           string              `json:"title"`
	BasicCompetency string              `json:"basicCompetency,omitempty"`
	Questions       []GeneratedQuestion `json:"questions"`
	Rubric          string              `json:"rubric,omitempty"`
}
