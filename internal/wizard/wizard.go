// Package wizard drives the four-step vehicle inspection checklist:
// vehicle data, verifications, photographed inspections and review.
//
// A Wizard is owned by a single operator session and is not safe for concurrent use.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"checklistapi/internal/media"
	"checklistapi/internal/model"
)

// DefaultTitle is the title given to every new checklist.
const DefaultTitle = "Checklist Basel"

// CreatedAtLayout formats the immutable creation label (day-month-year hour:minute:second).
const CreatedAtLayout = "02-01-2006 15:04:05"

type Step int

const (
	StepData Step = iota + 1
	StepVerifications
	StepInspections
	StepReview
)

func (s Step) String() string {
	switch s {
	case StepData:
		return "dados"
	case StepVerifications:
		return "verificações"
	case StepInspections:
		return "inspeções"
	case StepReview:
		return "revisão"
	}
	return fmt.Sprintf("step(%d)", int(s))
}

var (
	ErrNoSuchItem  = errors.New("no such checklist item")
	ErrNoSuchMedia = errors.New("no such media")
	ErrClosed      = errors.New("wizard is closed")
)

// ValidationError names the step whose rule blocked navigation or submission.
type ValidationError struct {
	Step   Step
	Title  string
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("etapa %d (%s): %s %s", int(e.Step), e.Step, e.Title, e.Detail)
}

var stepRules = map[Step]ValidationError{
	StepData: {
		Step:   StepData,
		Title:  "Complete os dados obrigatórios.",
		Detail: "Verifique placa, motorista, inspetor e quilometragem.",
	},
	StepVerifications: {
		Step:   StepVerifications,
		Title:  "Responda todas as verificações.",
		Detail: "Selecione um status para cada item da Etapa 2.",
	},
	StepInspections: {
		Step:   StepInspections,
		Title:  "Requisitos da Etapa 3 não atendidos.",
		Detail: "N/A não exige foto; Não conforme exige foto e observação; Conforme exige foto.",
	},
}

// Saver persists a finished checklist.
type Saver interface {
	Save(ctx context.Context, c *model.Checklist) (*model.Checklist, error)
}

// Progress is the share of catalog items that satisfy their completion rule.
type Progress struct {
	Answered int
	Total    int
	Percent  int
}

type photo struct {
	id      string
	preview Preview
}

type Option func(*Wizard)

func WithClock(now func() time.Time) Option { return func(w *Wizard) { w.now = now } }

func WithLocation(loc *time.Location) Option { return func(w *Wizard) { w.loc = loc } }

func WithTitle(title string) Option { return func(w *Wizard) { w.title = title } }

func WithPreviews(p PreviewStore) Option { return func(w *Wizard) { w.previews = p } }

func WithCamera(src CameraSource) Option { return func(w *Wizard) { w.camera = src } }

// WithIDGenerator overrides the record id assigned on submit.
func WithIDGenerator(gen func() string) Option { return func(w *Wizard) { w.newID = gen } }

type Wizard struct {
	now      func() time.Time
	loc      *time.Location
	title    string
	previews PreviewStore
	camera   CameraSource
	session  *CaptureSession
	newID    func() string

	step          Step
	createdAt     string
	data          model.InitialData
	verifications []model.VerificationItem
	inspections   []model.InspectionItem
	photos        [][]photo
	photoSeq      int
	closed        bool
}

// New starts a wizard on step 1 and stamps its creation time.
func New(opts ...Option) *Wizard {
	w := &Wizard{
		now:   time.Now,
		loc:   time.Local,
		title: DefaultTitle,
		newID: uuid.NewString,
		step:  StepData,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.previews == nil {
		w.previews = NewMemoryPreviews()
	}
	if w.camera != nil {
		w.session = NewCaptureSession(w.camera, w.previews)
	}
	w.createdAt = w.now().In(w.loc).Format(CreatedAtLayout)

	for _, e := range VerificationCatalog() {
		w.verifications = append(w.verifications, model.VerificationItem{Title: e.Title, Detail: e.Detail})
	}
	for _, e := range InspectionCatalog() {
		w.inspections = append(w.inspections, model.InspectionItem{Title: e.Title, Detail: e.Detail, Media: []model.MediaAsset{}})
	}
	w.photos = make([][]photo, len(w.inspections))
	return w
}

func (w *Wizard) Step() Step { return w.step }

func (w *Wizard) CreatedAt() string { return w.createdAt }

func (w *Wizard) Title() string { return w.title }

func (w *Wizard) VerificationCount() int { return len(w.verifications) }

func (w *Wizard) InspectionCount() int { return len(w.inspections) }

// SetInitialData stores the step 1 fields; the plate is normalized to uppercase.
func (w *Wizard) SetInitialData(d model.InitialData) {
	d.Plate = NormalizePlate(d.Plate)
	w.data = d
}

func (w *Wizard) InitialData() model.InitialData { return w.data }

// Verification returns a copy of verification item i.
func (w *Wizard) Verification(i int) (model.VerificationItem, error) {
	if i < 0 || i >= len(w.verifications) {
		return model.VerificationItem{}, fmt.Errorf("%w: verification %d", ErrNoSuchItem, i)
	}
	return w.verifications[i], nil
}

// Inspection returns a copy of inspection item i.
func (w *Wizard) Inspection(i int) (model.InspectionItem, error) {
	if i < 0 || i >= len(w.inspections) {
		return model.InspectionItem{}, fmt.Errorf("%w: inspection %d", ErrNoSuchItem, i)
	}
	it := w.inspections[i]
	it.Media = append([]model.MediaAsset{}, it.Media...)
	return it, nil
}

// SetVerification answers verification item i. A blank note clears it.
func (w *Wizard) SetVerification(i int, status model.Status, notes string) error {
	if i < 0 || i >= len(w.verifications) {
		return fmt.Errorf("%w: verification %d", ErrNoSuchItem, i)
	}
	if !status.Valid() {
		return fmt.Errorf("unknown status %q", status)
	}
	w.verifications[i].Status = status
	w.verifications[i].Notes = model.Notes(notes)
	return nil
}

// SetInspection answers inspection item i without touching its photos.
func (w *Wizard) SetInspection(i int, status model.Status, notes string) error {
	if i < 0 || i >= len(w.inspections) {
		return fmt.Errorf("%w: inspection %d", ErrNoSuchItem, i)
	}
	if !status.Valid() {
		return fmt.Errorf("unknown status %q", status)
	}
	w.inspections[i].Status = status
	w.inspections[i].Notes = model.Notes(notes)
	return nil
}

// CapturePhoto takes a frame from the camera and attaches it to inspection item i.
// The camera is started on first use and held until Close.
func (w *Wizard) CapturePhoto(ctx context.Context, i int) (string, error) {
	if w.session == nil {
		return "", ErrNoCamera
	}
	if w.closed {
		return "", ErrClosed
	}
	if i < 0 || i >= len(w.inspections) {
		return "", fmt.Errorf("%w: inspection %d", ErrNoSuchItem, i)
	}
	if err := w.session.Start(ctx); err != nil {
		return "", err
	}
	f, _, err := w.session.Capture(ctx)
	if err != nil {
		return "", err
	}
	return w.AddPhoto(i, f)
}

// AddPhoto attaches an already captured frame to inspection item i and returns its media id.
func (w *Wizard) AddPhoto(i int, f Frame) (string, error) {
	if w.closed {
		return "", ErrClosed
	}
	if i < 0 || i >= len(w.inspections) {
		return "", fmt.Errorf("%w: inspection %d", ErrNoSuchItem, i)
	}
	if len(f.Data) == 0 {
		return "", ErrNoFrame
	}
	mime := f.MimeType
	if mime == "" {
		mime = media.DefaultMimeType
	}

	p, err := w.previews.Create(f)
	if err != nil {
		return "", fmt.Errorf("create preview: %w", err)
	}

	now := w.now()
	w.photoSeq++
	id := fmt.Sprintf("%d-%d", now.UnixMilli(), w.photoSeq)
	name := f.Name
	if name == "" {
		name = fmt.Sprintf("captura-%d.%s", now.UnixMilli(), media.ExtForMime(mime))
	}

	w.inspections[i].Media = append(w.inspections[i].Media, model.MediaAsset{
		Name:      name,
		MimeType:  mime,
		SizeBytes: int64(len(f.Data)),
		Kind:      model.MediaKindImage,
		Content:   media.EncodeDataURL(mime, f.Data),
	})
	w.photos[i] = append(w.photos[i], photo{id: id, preview: p})
	return id, nil
}

// RemovePhoto detaches a photo from inspection item i and revokes its preview.
func (w *Wizard) RemovePhoto(i int, mediaID string) error {
	if i < 0 || i >= len(w.inspections) {
		return fmt.Errorf("%w: inspection %d", ErrNoSuchItem, i)
	}
	for j, ph := range w.photos[i] {
		if ph.id != mediaID {
			continue
		}
		if ph.preview != nil {
			ph.preview.Revoke()
		}
		w.photos[i] = append(w.photos[i][:j], w.photos[i][j+1:]...)
		it := &w.inspections[i]
		it.Media = append(it.Media[:j], it.Media[j+1:]...)
		return nil
	}
	return fmt.Errorf("%w: %s", ErrNoSuchMedia, mediaID)
}

// PhotoIDs lists the media ids of inspection item i in display order.
func (w *Wizard) PhotoIDs(i int) []string {
	if i < 0 || i >= len(w.photos) {
		return nil
	}
	ids := make([]string, len(w.photos[i]))
	for j, ph := range w.photos[i] {
		ids[j] = ph.id
	}
	return ids
}

// PreviewID returns the preview handle id of a photo, if it is still live.
func (w *Wizard) PreviewID(i int, mediaID string) (string, bool) {
	if i < 0 || i >= len(w.photos) {
		return "", false
	}
	for _, ph := range w.photos[i] {
		if ph.id == mediaID && ph.preview != nil {
			return ph.preview.ID(), true
		}
	}
	return "", false
}

// Validate checks the rule of step s. The review step has no rule of its own.
func (w *Wizard) Validate(s Step) error {
	ok := true
	switch s {
	case StepData:
		ok = w.dataValid()
	case StepVerifications:
		ok = w.verificationsValid()
	case StepInspections:
		ok = w.inspectionsValid()
	}
	if ok {
		return nil
	}
	e := stepRules[s]
	return &e
}

func (w *Wizard) dataValid() bool {
	d := w.data
	return strings.TrimSpace(d.Driver) != "" &&
		strings.TrimSpace(d.Inspector) != "" &&
		ValidatePlate(d.Plate) &&
		d.Odometer != ""
}

func (w *Wizard) verificationsValid() bool {
	for _, v := range w.verifications {
		if !v.Answered() {
			return false
		}
	}
	return true
}

func (w *Wizard) inspectionsValid() bool {
	for _, it := range w.inspections {
		if !it.IsComplete() {
			return false
		}
	}
	return true
}

// Next advances one step if the current one validates. On failure the step is unchanged.
func (w *Wizard) Next() error {
	if err := w.Validate(w.step); err != nil {
		return err
	}
	if w.step < StepReview {
		w.step++
	}
	return nil
}

// Back moves one step back, stopping at step 1.
func (w *Wizard) Back() {
	if w.step > StepData {
		w.step--
	}
}

// Progress counts answered verifications and complete inspections over the whole catalog.
func (w *Wizard) Progress() Progress {
	p := Progress{Total: len(w.verifications) + len(w.inspections)}
	for _, v := range w.verifications {
		if v.Answered() {
			p.Answered++
		}
	}
	for _, it := range w.inspections {
		if it.IsComplete() {
			p.Answered++
		}
	}
	if p.Total > 0 {
		p.Percent = int(math.Round(float64(p.Answered) / float64(p.Total) * 100))
	}
	return p
}

// Complete reports whether every step validates.
func (w *Wizard) Complete() bool {
	return w.dataValid() && w.verificationsValid() && w.inspectionsValid()
}

// Checklist snapshots the current answers into a record without an id.
func (w *Wizard) Checklist() *model.Checklist {
	c := &model.Checklist{
		Title:         w.title,
		CreatedAt:     w.createdAt,
		InitialData:   w.data,
		Verifications: append([]model.VerificationItem{}, w.verifications...),
		Inspections:   make([]model.InspectionItem, len(w.inspections)),
		Complete:      w.Complete(),
	}
	for i, it := range w.inspections {
		it.Media = append([]model.MediaAsset{}, it.Media...)
		c.Inspections[i] = it
	}
	return c
}

// Submit hands a complete checklist to s. Previews are released only after a successful save
// so a failed attempt can be retried.
func (w *Wizard) Submit(ctx context.Context, s Saver) (*model.Checklist, error) {
	if w.closed {
		return nil, ErrClosed
	}
	for _, step := range []Step{StepData, StepVerifications, StepInspections} {
		if err := w.Validate(step); err != nil {
			return nil, err
		}
	}

	rec := w.Checklist()
	rec.ID = w.newID()
	saved, err := s.Save(ctx, rec)
	if err != nil {
		return nil, err
	}
	w.releasePreviews()
	return saved, nil
}

// Close releases every outstanding preview and the camera. It is safe to call repeatedly.
func (w *Wizard) Close() error {
	w.closed = true
	w.releasePreviews()
	if w.session != nil {
		return w.session.Stop()
	}
	return nil
}

func (w *Wizard) releasePreviews() {
	for i := range w.photos {
		for j := range w.photos[i] {
			if w.photos[i][j].preview != nil {
				w.photos[i][j].preview.Revoke()
				w.photos[i][j].preview = nil
			}
		}
	}
}
