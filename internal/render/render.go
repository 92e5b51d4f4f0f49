// Package render turns an ExamResult into its four output representations:
// the interactive preview, the word-processor export, the plain-text copy,
// and the print view. All four are pure projections of (result, view mode).
package render

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/akanghida/soalgen/internal/model"
)

// ViewMode selects between the complete teacher document and the
// print-ready student document.
type ViewMode string

const (
	// ViewTeacher includes answer keys, explanations, and the rubric.
	ViewTeacher ViewMode = "teacher"
	// ViewStudent omits all teacher-only blocks.
	ViewStudent ViewMode = "student"
)

// ParseViewMode maps a raw string onto a view mode, defaulting to teacher.
func ParseViewMode(s string) ViewMode {
	if s == string(ViewStudent) {
		return ViewStudent
	}
	return ViewTeacher
}

// ShowsAnswers reports whether teacher-only blocks are visible in this mode.
func (m ViewMode) ShowsAnswers() bool {
	return m == ViewTeacher
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// FileName derives the export file name from subject and grade.
func FileName(result model.ExamResult) string {
	subject := whitespaceRun.ReplaceAllString(result.Config.Subject, "_")
	grade := whitespaceRun.ReplaceAllString(result.Config.Grade, "_")
	return "Soal_" + subject + "_" + grade + ".doc"
}

type headerRow struct {
	label string
	value string
}

func headerRows(result model.ExamResult) []headerRow {
	competency := result.BasicCompetency
	if competency == "" {
		competency = "-"
	}
	return []headerRow{
		{"Mata Pelajaran", result.Config.Subject},
		{"Kelas / Tingkat", result.Config.Grade},
		{"Jenjang", result.Config.Level},
		{"Kurikulum", result.Config.CurriculumName()},
		{"Kompetensi", competency},
		{"Waktu", fmt.Sprintf("%d Menit", result.Config.DurationMinutes())},
	}
}

func optionLetter(i int) string {
	return string(rune('A' + i))
}

// Preview renders the on-screen exam paper as an HTML fragment.
func Preview(result model.ExamResult, mode ViewMode) string {
	var sb strings.Builder

	sb.WriteString(`<div class="paper-header">`)
	sb.WriteString(`<h2>PAKET SOAL UJIAN ` + html.EscapeString(strings.ToUpper(result.Config.Subject)) + `</h2>`)
	sb.WriteString(`<h3>` + html.EscapeString(strings.ToUpper(result.Config.AssessmentType)) + `</h3>`)
	sb.WriteString(`</div>`)

	sb.WriteString(`<table class="paper-meta"><tbody>`)
	for _, row := range headerRows(result) {
		sb.WriteString(`<tr><td>` + row.label + `</td><td>: ` + html.EscapeString(row.value) + `</td></tr>`)
	}
	sb.WriteString(`</tbody></table>`)

	sb.WriteString(`<h4 class="section-title">SOAL ` + html.EscapeString(strings.ToUpper(string(result.Config.QuestionType))) + `</h4>`)

	for i, q := range result.Questions {
		sb.WriteString(`<div class="question">`)
		sb.WriteString(fmt.Sprintf(`<p class="stem"><b>%d.</b> %s</p>`, i+1, html.EscapeString(q.Text)))
		writePreviewInput(&sb, q)

		if mode.ShowsAnswers() {
			sb.WriteString(`<div class="answer-box">`)
			sb.WriteString(`<p><b>Kunci Jawaban:</b> ` + html.EscapeString(q.AnswerKey()) + `</p>`)
			sb.WriteString(`<p><b>Pembahasan:</b> ` + html.EscapeString(q.Explanation) + `</p>`)
			sb.WriteString(`</div>`)
		}
		sb.WriteString(`</div>`)
	}

	if mode.ShowsAnswers() && result.Rubric != "" {
		sb.WriteString(`<div class="rubric"><h4>Rubrik Penilaian &amp; Catatan</h4><p>` +
			html.EscapeString(result.Rubric) + `</p></div>`)
	}

	return sb.String()
}

// writePreviewInput writes the answer affordance matching the question type:
// single select for multiple choice and true/false, multi select for complex
// multiple choice, a free-text area otherwise.
func writePreviewInput(sb *strings.Builder, q model.GeneratedQuestion) {
	switch q.Type {
	case model.TypeMultipleChoice:
		sb.WriteString(`<div class="options">`)
		for _, opt := range q.Options {
			sb.WriteString(fmt.Sprintf(`<label><input type="radio" name="q-%d"> %s</label>`,
				q.Number, html.EscapeString(opt)))
		}
		sb.WriteString(`</div>`)
	case model.TypeComplexMultipleChoice:
		sb.WriteString(`<div class="options">`)
		for _, opt := range q.Options {
			sb.WriteString(`<label><input type="checkbox"> ` + html.EscapeString(opt) + `</label>`)
		}
		sb.WriteString(`</div>`)
	case model.TypeTrueFalse:
		sb.WriteString(fmt.Sprintf(`<div class="options"><label><input type="radio" name="q-%d"> Benar</label>`+
			`<label><input type="radio" name="q-%d"> Salah</label></div>`, q.Number, q.Number))
	default:
		sb.WriteString(`<textarea class="essay-answer" placeholder="Tulis jawaban disini..."></textarea>`)
	}
}

// WordDocument renders the packet as a standalone word-processor document.
// The caller prepends the UTF-8 byte-order mark when writing the file.
func WordDocument(result model.ExamResult, mode ViewMode) string {
	var sb strings.Builder

	sb.WriteString(`<html xmlns:o='urn:schemas-microsoft-com:office:office' xmlns:w='urn:schemas-microsoft-com:office:word' xmlns='http://www.w3.org/TR/REC-html40'>` + "\n")
	sb.WriteString("<head>\n<meta charset=\"utf-8\">\n")
	sb.WriteString(`<title>` + html.EscapeString(result.Title) + "</title>\n")
	sb.WriteString(`<style>
body { font-family: 'Calibri', 'Arial', sans-serif; font-size: 11pt; }
.header-table { width: 100%; border-collapse: collapse; margin-bottom: 20px; }
.header-table td { padding: 4px; vertical-align: top; }
.q-container { margin-bottom: 15px; page-break-inside: avoid; }
.answer-box { background-color: #fef9c3; padding: 10px; border: 1px solid #fde047; margin-top: 10px; font-size: 10pt; }
</style>
</head>
<body>
`)

	sb.WriteString(`<h2 style="text-align: center; margin-bottom: 5px; text-transform: uppercase;">PAKET SOAL UJIAN ` +
		html.EscapeString(result.Config.Subject) + "</h2>\n")
	sb.WriteString(`<h3 style="text-align: center; margin-top: 0; margin-bottom: 20px; text-transform: uppercase;">` +
		html.EscapeString(result.Config.AssessmentType) + "</h3>\n")

	sb.WriteString(`<table class="header-table">` + "\n")
	for i, row := range headerRows(result) {
		if i == 0 {
			sb.WriteString(`<tr><td width="150"><b>` + row.label + `</b></td><td>: ` + html.EscapeString(row.value) + "</td></tr>\n")
			continue
		}
		sb.WriteString(`<tr><td><b>` + row.label + `</b></td><td>: ` + html.EscapeString(row.value) + "</td></tr>\n")
	}
	sb.WriteString("</table>\n<hr/>\n")

	sb.WriteString(`<h3>SOAL ` + html.EscapeString(strings.ToUpper(string(result.Config.QuestionType))) + "</h3>\n")

	for i, q := range result.Questions {
		sb.WriteString(`<div class="q-container">` + "\n")
		sb.WriteString(fmt.Sprintf(`<p style="margin-bottom: 5px;"><b>%d.</b> %s</p>`+"\n", i+1, html.EscapeString(q.Text)))
		writeWordOptions(&sb, q)

		if mode.ShowsAnswers() {
			sb.WriteString(`<div class="answer-box">` + "\n")
			sb.WriteString(`<b>Kunci Jawaban:</b> ` + html.EscapeString(q.AnswerKey()) + "<br/>\n")
			sb.WriteString(`<b>Pembahasan:</b> ` + html.EscapeString(q.Explanation) + "\n")
			sb.WriteString("</div>\n")
		}
		sb.WriteString("</div>\n")
	}

	if mode.ShowsAnswers() && result.Rubric != "" {
		sb.WriteString("<br/><hr/>\n<h3>Rubrik Penilaian</h3>\n<div>" + html.EscapeString(result.Rubric) + "</div>\n")
	}

	sb.WriteString("</body>\n</html>\n")
	return sb.String()
}

func writeWordOptions(sb *strings.Builder, q model.GeneratedQuestion) {
	switch q.Type {
	case model.TypeMultipleChoice:
		for i, opt := range q.Options {
			sb.WriteString(`<p style="margin: 0 0 5px 20px; font-family: Calibri, sans-serif;">` +
				optionLetter(i) + `. ` + html.EscapeString(opt) + "</p>\n")
		}
	case model.TypeComplexMultipleChoice:
		for _, opt := range q.Options {
			sb.WriteString(`<p style="margin: 0 0 5px 20px; font-family: Calibri, sans-serif;">&#9744; ` +
				html.EscapeString(opt) + "</p>\n")
		}
	case model.TypeTrueFalse:
		sb.WriteString(`<p style="margin: 0 0 5px 20px; font-family: Calibri, sans-serif;">&#9711; Benar &nbsp;&nbsp;&nbsp;&nbsp; &#9711; Salah</p>` + "\n")
	default:
		sb.WriteString(`<p style="margin: 10px 0 20px 0;">__________________________________________________________________________________________</p>` + "\n")
	}
}

// PlainText renders the packet as the copyable text of the preview.
func PlainText(result model.ExamResult, mode ViewMode) string {
	var sb strings.Builder

	sb.WriteString("PAKET SOAL UJIAN " + strings.ToUpper(result.Config.Subject) + "\n")
	sb.WriteString(strings.ToUpper(result.Config.AssessmentType) + "\n\n")
	for _, row := range headerRows(result) {
		sb.WriteString(row.label + ": " + row.value + "\n")
	}
	sb.WriteString("\nSOAL " + strings.ToUpper(string(result.Config.QuestionType)) + "\n\n")

	for i, q := range result.Questions {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, q.Text))
		switch q.Type {
		case model.TypeMultipleChoice:
			for j, opt := range q.Options {
				sb.WriteString("   " + optionLetter(j) + ". " + opt + "\n")
			}
		case model.TypeComplexMultipleChoice:
			for _, opt := range q.Options {
				sb.WriteString("   [ ] " + opt + "\n")
			}
		case model.TypeTrueFalse:
			sb.WriteString("   ( ) Benar   ( ) Salah\n")
		default:
			sb.WriteString("   Jawaban: ____________________\n")
		}

		if mode.ShowsAnswers() {
			sb.WriteString("   Kunci Jawaban: " + q.AnswerKey() + "\n")
			sb.WriteString("   Pembahasan: " + q.Explanation + "\n")
		}
		sb.WriteString("\n")
	}

	if mode.ShowsAnswers() && result.Rubric != "" {
		sb.WriteString("Rubrik Penilaian & Catatan\n" + result.Rubric + "\n")
	}

	return sb.String()
}

// PrintDocument wraps the preview in a printable standalone page. Visibility
// follows the active view mode exactly as on screen.
func PrintDocument(result model.ExamResult, mode ViewMode) string {
	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	sb.WriteString(`<title>` + html.EscapeString(result.Title) + "</title>\n")
	sb.WriteString(`<style>
body { font-family: 'Calibri', 'Arial', sans-serif; font-size: 11pt; margin: 2cm; }
.paper-header { text-align: center; border-bottom: 2px solid #000; padding-bottom: 12px; margin-bottom: 18px; }
.paper-meta td { padding: 2px 4px; vertical-align: top; }
.question { margin-bottom: 15px; page-break-inside: avoid; }
.options label { display: block; margin-left: 20px; }
.answer-box { background-color: #fef9c3; padding: 10px; border: 1px solid #fde047; margin-top: 10px; font-size: 10pt; }
.rubric { margin-top: 30px; border-top: 1px solid #000; padding-top: 12px; }
textarea.essay-answer { width: 100%; height: 80px; }
</style>
</head>
<body onload="window.print()">
`)
	sb.WriteString(Preview(result, mode))
	sb.WriteString("\n</body>\n</html>\n")
	return sb.String()
}
