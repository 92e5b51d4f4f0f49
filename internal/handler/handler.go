package handler

import (
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/akanghida/soalgen/internal/app"
	appI18n "github.com/akanghida/soalgen/internal/i18n"
	"github.com/akanghida/soalgen/internal/model"
	"github.com/akanghida/soalgen/internal/render"
)

//go:embed page.tmpl
var templateFS embed.FS

// Form option lists. The widgets constrain these fields so out-of-range
// values are prevented rather than validated.
var (
	languages = []string{"Bahasa Indonesia", "Bahasa Inggris", "Bahasa Arab"}
	levels    = []string{"PAUD / TK", "SD / MI", "SMP / MTs", "SMA / MA / SMK"}
	subjects  = []string{
		"Matematika", "Bahasa Indonesia", "IPA (Terpadu)", "IPS (Terpadu)",
		"Biologi", "Fisika", "Kimia", "Sejarah", "Geografi", "Sosiologi",
		"Ekonomi", "Bahasa Inggris", "Bahasa Jawa", "PKN", "PAI",
		"Pendidikan Agama Kristen", "Pendidikan Agama Hindu", "Pendidikan Agama Budha",
	}
	curricula = []string{
		"Kurikulum Merdeka (Kemendikbudristek)", "Kurikulum 2013", "Cambridge",
	}
	assessmentTypes = []string{
		"Ulangan Harian", "PTS / STS (Tengah Semester)",
		"PAS / SAS (Akhir Semester)", "Asesmen Diagnostik", "AKM / ANBK",
	}
)

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	ctrl *app.Controller
	tmpl *template.Template
}

// New creates a new Handler.
func New(ctrl *app.Controller) (*Handler, error) {
	tmpl, err := template.ParseFS(templateFS, "page.tmpl")
	if err != nil {
		return nil, err
	}
	return &Handler{ctrl: ctrl, tmpl: tmpl}, nil
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.handleIndex)
	r.Post("/generate", h.handleGenerate)
	r.Get("/history/{id}", h.handleSelect)
	r.Post("/history/{id}/delete", h.handleDelete)
	r.Post("/history/clear", h.handleClear)
	r.Get("/result/{id}/doc", h.handleDoc)
	r.Get("/result/{id}/text", h.handleText)
	r.Get("/result/{id}/print", h.handlePrint)
	r.Get("/view/{mode}", h.handleView)
}

type historyItem struct {
	ID      string
	Title   string
	Subject string
	Grade   string
	When    string
}

type pageData struct {
	L               map[string]string
	Config          model.ExamConfig
	State           app.State
	PreviewHTML     template.HTML
	ResultID        string
	View            render.ViewMode
	OtherView       render.ViewMode
	ErrorMessage    string
	History         []historyItem
	Languages       []string
	Levels          []string
	Subjects        []string
	Curricula       []string
	AssessmentTypes []string
	QuestionTypes   []model.QuestionType
	Difficulties    []model.DifficultyLevel
	Modes           []model.Mode
}

// localized resolves every UI string the page needs up front.
func localized(r *http.Request) map[string]string {
	ids := []string{
		"AppTitle", "GenerateButton", "GeneratingTitle", "GeneratingHint",
		"EmptyTitle", "EmptyHint", "GenerationError", "HistoryTitle",
		"HistoryEmpty", "DeleteButton", "ClearAllButton", "ModeTeacher",
		"ModeStudent", "CopyText", "DownloadWord", "PrintButton",
		"FormMode", "FormModeSekolah", "FormModeBimbel", "FormLanguage",
		"FormLevel", "FormGrade", "FormSubject", "FormCurriculum",
		"FormAssessmentType", "FormTopic", "FormSubTopic", "FormCompetency",
		"FormQuestionType", "FormTotalQuestions", "FormDifficulty",
	}
	out := make(map[string]string, len(ids))
	for _, id := range ids {
		out[id] = appI18n.T(r.Context(), id)
	}
	return out
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	mode := render.ParseViewMode(r.URL.Query().Get("view"))
	other := render.ViewStudent
	if mode == render.ViewStudent {
		other = render.ViewTeacher
	}

	data := pageData{
		L:               localized(r),
		Config:          h.ctrl.Config(),
		State:           h.ctrl.State(),
		View:            mode,
		OtherView:       other,
		Languages:       languages,
		Levels:          levels,
		Subjects:        subjects,
		Curricula:       curricula,
		AssessmentTypes: assessmentTypes,
		QuestionTypes:   model.QuestionTypes,
		Difficulties:    model.DifficultyLevels,
		Modes:           []model.Mode{model.ModeSekolah, model.ModeBimbel},
	}

	if r.URL.Query().Get("error") != "" {
		data.ErrorMessage = data.L["GenerationError"]
	}

	if result := h.ctrl.Result(); result != nil {
		data.ResultID = result.ID
		data.PreviewHTML = template.HTML(render.Preview(*result, mode))
	}

	for _, entry := range h.ctrl.History() {
		data.History = append(data.History, historyItem{
			ID:      entry.ID,
			Title:   entry.Title,
			Subject: entry.Config.Subject,
			Grade:   entry.Config.Grade,
			When:    time.UnixMilli(entry.Timestamp).Format("02 Jan 2006 15:04"),
		})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.tmpl.Execute(w, data); err != nil {
		slog.Error("render error", "error", err)
	}
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	cfg := configFromForm(r)
	h.ctrl.SetConfig(cfg)

	view := render.ParseViewMode(r.FormValue("view"))
	if _, err := h.ctrl.Generate(r.Context()); err != nil {
		if errors.Is(err, app.ErrGenerationInFlight) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		slog.Error("generation failed", "error", err)
		http.Redirect(w, r, "/?view="+string(view)+"&error=1", http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, "/?view="+string(view), http.StatusSeeOther)
}

// configFromForm binds the submitted form onto an ExamConfig. The total is
// clamped here, before the config reaches the generation client.
func configFromForm(r *http.Request) model.ExamConfig {
	cfg := model.ExamConfig{
		Mode:           model.Mode(r.FormValue("mode")),
		Language:       r.FormValue("language"),
		Level:          r.FormValue("level"),
		Grade:          r.FormValue("grade"),
		Subject:        r.FormValue("subject"),
		Curriculum:     r.FormValue("curriculum"),
		AssessmentType: r.FormValue("assessmentType"),
		Topic:          r.FormValue("topic"),
		SubTopic:       r.FormValue("subTopic"),
		Competency:     r.FormValue("competency"),
		QuestionType:   model.QuestionType(r.FormValue("questionType")),
		Difficulty:     model.DifficultyLevel(r.FormValue("difficulty")),
	}
	if !cfg.QuestionType.Valid() {
		cfg.QuestionType = model.TypeMultipleChoice
	}
	if !cfg.Difficulty.Valid() {
		cfg.Difficulty = model.DifficultyLevel2
	}
	total, err := strconv.Atoi(r.FormValue("totalQuestions"))
	if err != nil {
		total = model.DefaultConfig().TotalQuestions
	}
	cfg.TotalQuestions = total
	cfg.ClampTotalQuestions()
	return cfg
}

// handleView switches between the teacher and student documents.
func (h *Handler) handleView(w http.ResponseWriter, r *http.Request) {
	mode := render.ParseViewMode(chi.URLParam(r, "mode"))
	http.Redirect(w, r, "/?view="+string(mode), http.StatusSeeOther)
}

func (h *Handler) handleSelect(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.ctrl.Select(id) {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, "/?view="+r.URL.Query().Get("view"), http.StatusSeeOther)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	h.ctrl.Delete(chi.URLParam(r, "id"))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) handleClear(w http.ResponseWriter, r *http.Request) {
	h.ctrl.Clear()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) resultForExport(w http.ResponseWriter, r *http.Request) (*model.ExamResult, render.ViewMode, bool) {
	id := chi.URLParam(r, "id")
	result, ok := h.ctrl.Get(id)
	if !ok {
		http.NotFound(w, r)
		return nil, "", false
	}
	return result, render.ParseViewMode(r.URL.Query().Get("view")), true
}

func (h *Handler) handleDoc(w http.ResponseWriter, r *http.Request) {
	result, mode, ok := h.resultForExport(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/msword")
	w.Header().Set("Content-Disposition", `attachment; filename="`+render.FileName(*result)+`"`)
	// Leading BOM so word processors pick up UTF-8.
	if _, err := w.Write([]byte("\ufeff" + render.WordDocument(*result, mode))); err != nil {
		slog.Error("write export", "error", err)
	}
}

func (h *Handler) handleText(w http.ResponseWriter, r *http.Request) {
	result, mode, ok := h.resultForExport(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if _, err := w.Write([]byte(render.PlainText(*result, mode))); err != nil {
		slog.Error("write text", "error", err)
	}
}

func (h *Handler) handlePrint(w http.ResponseWriter, r *http.Request) {
	result, mode, ok := h.resultForExport(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write([]byte(render.PrintDocument(*result, mode))); err != nil {
		slog.Error("write print view", "error", err)
	}
}
