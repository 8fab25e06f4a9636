// Package tui provides the Bubble Tea drawing interface.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/verte-zerg/digitpad/internal/canvas"
	"github.com/verte-zerg/digitpad/internal/generator"
	"github.com/verte-zerg/digitpad/internal/model"
	"github.com/verte-zerg/digitpad/internal/predict"
	"github.com/verte-zerg/digitpad/internal/stats"
)

const (
	title = "Handwritten Digit Recognizer"
	hint  = "Draw a digit (0-9) in the box above"
)

type drawState int

const (
	drawIdle drawState = iota
	drawActive
)

type predictState int

const (
	predictReady predictState = iota
	predictPending
)

// Predictor classifies an exported canvas snapshot.
type Predictor interface {
	Predict(ctx context.Context, image string) (predict.Prediction, error)
	Endpoint() string
}

// Recorder persists settled prediction attempts.
type Recorder interface {
	InsertPrediction(ctx context.Context, rec model.PredictionRecord) error
}

// Drill configures target digit prompts.
type Drill struct {
	Generator *generator.Generator
	Weak      map[int]struct{}
	Factor    float64
}

type predictionMsg struct {
	id         string
	prediction predict.Prediction
	err        error
	elapsed    time.Duration
}

// Model implements the Bubble Tea drawing UI.
type Model struct {
	surface   *canvas.Surface
	predictor Predictor
	recorder  Recorder
	logger    *slog.Logger

	draw    drawState
	pending predictState

	result  string
	outcome model.Outcome
	session []model.PredictionRecord

	drill      *Drill
	target     int
	drillHits  int
	drillTries int

	keys    keyMap
	help    help.Model
	spinner spinner.Model

	width  int
	height int
	layout layout
}

var (
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	previewStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	drawingBorderColor = lipgloss.Color("#C89A3A")
	buttonStyle        = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#F0F0F0")).
				Background(lipgloss.Color("#3A5A8C"))
	disabledButtonStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#8C8C8C")).
				Background(lipgloss.Color("#2E2E2E"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// NewModel constructs a drawing TUI model. A nil recorder disables history.
func NewModel(predictor Predictor, recorder Recorder, logger *slog.Logger) *Model {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Model{
		surface:   canvas.New(),
		predictor: predictor,
		recorder:  recorder,
		logger:    logger,
		keys:      defaultKeyMap(),
		help:      help.New(),
		spinner:   spinner.New(spinner.WithSpinner(spinner.MiniDot)),
		layout:    computeLayout(0, 0, 1),
	}
}

// relayout sizes the preview to whatever the window leaves after the
// chrome and the current help view.
func (m *Model) relayout() {
	m.layout = computeLayout(m.width, m.height, lipgloss.Height(m.help.View(m.keys)))
}

// EnableDrill prompts for target digits, favoring d.Weak.
func (m *Model) EnableDrill(d Drill) {
	if d.Generator == nil {
		d.Generator = generator.New()
	}
	m.drill = &d
	m.nextTarget()
}

func (m *Model) nextTarget() {
	m.target = m.drill.Generator.WeightedDigit(m.drill.Weak, m.drill.Factor)
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.relayout()
		return m, nil
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Predict):
			return m, m.predict()
		case key.Matches(msg, m.keys.Clear):
			m.clear()
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			m.relayout()
			return m, nil
		}
		return m, nil
	case tea.MouseMsg:
		return m, m.handleMouse(msg)
	case predictionMsg:
		m.settle(msg)
		return m, nil
	case spinner.TickMsg:
		if m.pending != predictPending {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	default:
		return m, nil
	}
}

func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	inCanvas := m.layout.preview.contains(msg.X, msg.Y)
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return nil
		}
		switch {
		case inCanvas:
			m.pointerDown(m.layout.toCanvas(msg.X, msg.Y))
		case m.layout.predictBtn.contains(msg.X, msg.Y):
			return m.predict()
		case m.layout.clearBtn.contains(msg.X, msg.Y):
			m.clear()
		}
	case tea.MouseActionMotion:
		if inCanvas {
			m.pointerMove(m.layout.toCanvas(msg.X, msg.Y))
		} else {
			m.pointerUp()
		}
	case tea.MouseActionRelease:
		m.pointerUp()
	}
	return nil
}

func (m *Model) pointerDown(p canvas.Point) {
	m.surface.BeginStroke(p)
	m.draw = drawActive
}

func (m *Model) pointerMove(p canvas.Point) {
	if m.draw != drawActive {
		return
	}
	if err := m.surface.ExtendStroke(p); err != nil {
		m.logger.Warn("stroke failed", "err", err)
	}
}

// pointerUp also covers the pointer leaving the canvas.
func (m *Model) pointerUp() {
	if m.draw != drawActive {
		return
	}
	m.draw = drawIdle
	m.surface.EndStroke()
}

func (m *Model) clear() {
	m.surface.Clear()
	m.result = ""
	m.outcome = ""
}

// predict starts a request unless one is pending. The returned command also
// drives the spinner.
func (m *Model) predict() tea.Cmd {
	req := m.startPrediction()
	if req == nil {
		return nil
	}
	return tea.Batch(m.spinner.Tick, req)
}

func (m *Model) startPrediction() tea.Cmd {
	if m.pending == predictPending {
		m.logger.Debug("prediction ignored while pending")
		return nil
	}
	m.pending = predictPending
	m.result = ""
	m.outcome = ""

	id := uuid.NewString()
	image, err := m.surface.ExportSnapshot()
	if err != nil {
		m.settle(predictionMsg{id: id, err: err})
		return nil
	}
	m.logger.Debug("prediction started", "id", id, "endpoint", m.predictor.Endpoint())
	predictor := m.predictor
	return func() tea.Msg {
		ctx := predict.WithRequestID(context.Background(), id)
		start := time.Now()
		p, err := predictor.Predict(ctx, image)
		return predictionMsg{id: id, prediction: p, err: err, elapsed: time.Since(start)}
	}
}

func (m *Model) settle(msg predictionMsg) {
	m.pending = predictReady
	m.result = predict.FormatResult(msg.prediction, msg.err)
	m.outcome = predict.Classify(msg.err)

	rec := predict.Record(msg.id, m.predictor.Endpoint(), msg.prediction, msg.err, msg.elapsed)
	rec.CreatedAt = time.Now()
	m.session = append(m.session, rec)
	if m.drill != nil && m.outcome == model.OutcomeSuccess {
		m.drillTries++
		if rec.Digit == m.target {
			m.drillHits++
		}
		m.nextTarget()
	}

	switch m.outcome {
	case model.OutcomeSuccess:
		m.logger.Info("prediction settled", "id", msg.id, "digit", rec.Digit, "confidence", rec.Confidence, "duration_ms", rec.DurationMs)
	default:
		m.logger.Warn("prediction failed", "id", msg.id, "outcome", rec.Outcome, "err", msg.err, "duration_ms", rec.DurationMs)
	}

	if m.recorder == nil {
		return
	}
	if err := m.recorder.InsertPrediction(context.Background(), rec); err != nil {
		m.logger.Error("failed to save prediction", "id", msg.id, "err", err)
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	lines := []string{
		indent(titleStyle.Render(title)),
		"",
		indent(m.renderPreview()),
		"",
		m.renderButtons(),
		"",
		indent(m.renderResult()),
		indent(hintStyle.Render(hint)),
		indent(m.renderFooter()),
		"",
		indent(m.help.View(m.keys)),
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderPreview() string {
	p := m.layout.preview
	content := strings.Join(renderPreview(m.surface.Image(), p.w, p.h), "\n")
	style := previewStyle
	if m.draw == drawActive {
		style = style.BorderForeground(drawingBorderColor)
	}
	return style.Render(content)
}

func (m *Model) renderButtons() string {
	predictText := buttonLabel("Predict")
	predictBtn := buttonStyle.Render(predictText)
	if m.pending == predictPending {
		predictText = buttonLabel(m.spinner.View() + " Predicting...")
		predictBtn = disabledButtonStyle.Render(predictText)
	}
	clearBtn := buttonStyle.Render(buttonLabel("Clear"))
	return strings.Repeat(" ", marginLeft) + predictBtn + strings.Repeat(" ", buttonGap) + clearBtn
}

func (m *Model) renderResult() string {
	switch {
	case m.result == "":
		return ""
	case m.outcome == model.OutcomeSuccess:
		return successStyle.Render(m.result)
	default:
		return errorStyle.Render(m.result)
	}
}

func (m *Model) renderFooter() string {
	var segments []string
	if m.drill != nil {
		segments = append(segments, fmt.Sprintf("Target %d", m.target))
		if m.drillTries > 0 {
			segments = append(segments, fmt.Sprintf("Hits %d/%d", m.drillHits, m.drillTries))
		}
	}
	if len(m.session) > 0 {
		s := stats.Summarize(m.session)
		segments = append(segments, fmt.Sprintf("Session %d attempts", s.Attempts))
		segments = append(segments, fmt.Sprintf("Predicted %d", s.Successes))
		if s.Successes > 0 {
			segments = append(segments, fmt.Sprintf("Avg %.1f%%", s.MeanConfidence*100))
		}
	}
	if len(segments) == 0 {
		return ""
	}
	return footerStyle.Render(strings.Join(segments, " · "))
}
