package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"checklistapi/internal/logging"
	"checklistapi/internal/media"
	"checklistapi/internal/model"
	"checklistapi/internal/repository"
	"checklistapi/internal/storage"
	"checklistapi/internal/textfold"
)

var (
	ErrIDRequired    = errors.New("id is required")
	ErrInvalidID     = errors.New("id must be 1-64 letters, digits, '-' or '_'")
	ErrNotFound      = errors.New("checklist not found")
	ErrUnavailable   = errors.New("checklist backend unavailable")
	ErrInvalidRecord = errors.New("invalid checklist")
)

// validID keeps ids usable as an object key prefix: "{id}/" never contains another record's namespace.
var validID = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// rollbackTimeout bounds cleanup that outlives the request context.
const rollbackTimeout = 10 * time.Second

// Health is the diagnostic report served by /health.
type Health struct {
	OK           bool   `json:"ok"`
	TableExists  bool   `json:"tableExists"`
	TableName    string `json:"tableName"`
	BucketExists bool   `json:"bucketExists"`
	BucketName   string `json:"bucketName"`
	Message      string `json:"message"`
}

// ChecklistService defines the record store use cases.
type ChecklistService interface {
	// List returns every checklist newest first, optionally filtered by a free text query
	// matched against title, driver, inspector and plate.
	List(ctx context.Context, query string) ([]model.Checklist, error)

	// Get returns a single checklist by its ID.
	Get(ctx context.Context, id string) (*model.Checklist, error)

	// Save uploads inline media to object storage, rewrites it to public URLs and upserts the record.
	// Media that cannot be decoded or uploaded is dropped from its item; the rest of the save proceeds.
	// Objects uploaded by this call are removed if the upsert fails.
	Save(ctx context.Context, c *model.Checklist) (*model.Checklist, error)

	// Delete removes the record, then best-effort removes every object under "{id}/".
	Delete(ctx context.Context, id string) error

	// Health probes the table and the bucket. It never fails; problems are reported in the result.
	Health(ctx context.Context) Health
}

// Option customizes a checklistService.
type Option func(*checklistService)

// WithClock overrides the time source used for object keys.
func WithClock(now func() time.Time) Option {
	return func(s *checklistService) { s.now = now }
}

// WithLogger sets the logger used for per-asset and cleanup warnings.
func WithLogger(l *zap.Logger) Option {
	return func(s *checklistService) { s.log = logging.Component(l, "checklist_service") }
}

// WithMaxMediaBytes caps the decoded size of a single inline photo. Zero disables the cap.
func WithMaxMediaBytes(n int) Option {
	return func(s *checklistService) { s.maxMediaBytes = n }
}

type checklistService struct {
	store         storage.Storage
	repo          repository.ChecklistRepository
	log           *zap.Logger
	now           func() time.Time
	maxMediaBytes int
}

// NewChecklistService constructs a new ChecklistService.
func NewChecklistService(store storage.Storage, repo repository.ChecklistRepository, opts ...Option) ChecklistService {
	s := &checklistService{
		store: store,
		repo:  repo,
		log:   zap.NewNop(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *checklistService) List(ctx context.Context, query string) ([]model.Checklist, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list checklists: %w", ErrUnavailable, err)
	}
	if strings.TrimSpace(query) == "" {
		return items, nil
	}

	out := make([]model.Checklist, 0, len(items))
	for _, c := range items {
		d := c.InitialData
		if textfold.Contains(query, c.Title, d.Driver, d.Inspector, d.Plate) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *checklistService) Get(ctx context.Context, id string) (*model.Checklist, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: find checklist: %w", ErrUnavailable, err)
	}
	return c, nil
}

func (s *checklistService) Save(ctx context.Context, in *model.Checklist) (*model.Checklist, error) {
	if err := validateRecord(in); err != nil {
		return nil, err
	}

	rec := cloneChecklist(in)
	rec.ID = strings.TrimSpace(rec.ID)
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}

	var uploaded []string
	for i := range rec.Inspections {
		item := &rec.Inspections[i]
		kept := make([]model.MediaAsset, 0, len(item.Media))
		for j, m := range item.Media {
			switch {
			case m.IsInline():
				resolved, key, err := s.upload(ctx, rec.ID, i, j, m)
				if err != nil {
					s.log.Warn("media upload skipped",
						zap.String("event", "media_skipped"),
						zap.String("id", rec.ID),
						zap.Int("item", i),
						zap.Int("media", j),
						zap.Error(err),
					)
					continue
				}
				uploaded = append(uploaded, key)
				kept = append(kept, resolved)
			case strings.TrimSpace(m.Content) == "":
				continue
			default:
				if m.Kind == "" {
					m.Kind = model.MediaKindImage
				}
				kept = append(kept, m)
			}
		}
		item.Media = kept
	}

	rec.Normalize()
	rec.Evaluate()

	stored, err := s.repo.Upsert(ctx, rec)
	if err != nil {
		s.rollback(ctx, rec.ID, uploaded)
		return nil, fmt.Errorf("%w: save checklist: %w", ErrUnavailable, err)
	}
	return stored, nil
}

func (s *checklistService) upload(ctx context.Context, id string, item, idx int, m model.MediaAsset) (model.MediaAsset, string, error) {
	payload, err := media.ParseImage(m.Content, s.maxMediaBytes)
	if err != nil {
		return m, "", err
	}
	key := fmt.Sprintf("%s/%d-%d-%d.%s", id, s.now().UnixMilli(), item, idx, payload.Ext())
	_, err = s.store.Put(ctx, key, bytes.NewReader(payload.Data), storage.PutObjectOptions{
		Size:        int64(len(payload.Data)),
		ContentType: payload.MimeType,
		Metadata:    map[string]string{"checklist-id": id},
	})
	if err != nil {
		return m, "", fmt.Errorf("upload %s: %w", key, err)
	}

	m.Content = s.store.PublicURL(key)
	m.MimeType = payload.MimeType
	m.SizeBytes = int64(len(payload.Data))
	m.Kind = model.MediaKindImage
	if m.Name == "" {
		m.Name = key[strings.LastIndex(key, "/")+1:]
	}
	return m, key, nil
}

// rollback runs detached from ctx so a canceled request still removes its uploads.
func (s *checklistService) rollback(ctx context.Context, id string, keys []string) {
	if len(keys) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), rollbackTimeout)
	defer cancel()
	for _, key := range keys {
		if err := s.store.Delete(ctx, key); err != nil {
			s.log.Warn("rollback delete failed",
				zap.String("event", "media_rollback_failed"),
				zap.String("id", id),
				zap.String("key", key),
				zap.Error(err),
			)
		}
	}
}

func (s *checklistService) Delete(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("%w: delete checklist: %w", ErrUnavailable, err)
	}

	objs, err := s.store.List(ctx, id+"/")
	if err != nil {
		s.log.Warn("media cleanup list failed",
			zap.String("event", "media_cleanup_failed"),
			zap.String("id", id),
			zap.Error(err),
		)
		return nil
	}
	for _, obj := range objs {
		if err := s.store.Delete(ctx, obj.Key); err != nil {
			s.log.Warn("media cleanup delete failed",
				zap.String("event", "media_cleanup_failed"),
				zap.String("id", id),
				zap.String("key", obj.Key),
				zap.Error(err),
			)
		}
	}
	return nil
}

func (s *checklistService) Health(ctx context.Context) Health {
	h := Health{TableName: s.repo.TableName(), BucketName: s.store.Bucket()}

	tableExists, err := s.repo.TableExists(ctx)
	if err != nil {
		s.log.Warn("table probe failed", zap.String("event", "health_table"), zap.Error(err))
	}
	h.TableExists = err == nil && tableExists

	bucketExists, err := s.store.BucketExists(ctx)
	if err != nil {
		s.log.Warn("bucket probe failed", zap.String("event", "health_bucket"), zap.Error(err))
	}
	h.BucketExists = err == nil && bucketExists

	// The bucket only backs photos; the table alone decides readiness.
	h.OK = h.TableExists
	if h.OK {
		h.Message = fmt.Sprintf("Conectado. Usando a tabela %s.", h.TableName)
	} else {
		h.Message = fmt.Sprintf("Tabela %s não encontrada. Execute as migrações ou verifique a conexão.", h.TableName)
	}
	return h
}

func validateRecord(c *model.Checklist) error {
	if c == nil {
		return fmt.Errorf("%w: empty body", ErrInvalidRecord)
	}
	if id := strings.TrimSpace(c.ID); id != "" && !validID.MatchString(id) {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrInvalidID)
	}
	var missing []string
	if strings.TrimSpace(c.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(c.CreatedAt) == "" {
		missing = append(missing, "createdAt")
	}
	if strings.TrimSpace(c.InitialData.Plate) == "" {
		missing = append(missing, "initialData.plate")
	}
	for i, v := range c.Verifications {
		if strings.TrimSpace(v.Title) == "" {
			missing = append(missing, fmt.Sprintf("verifications[%d].title", i))
		}
	}
	for i, it := range c.Inspections {
		if strings.TrimSpace(it.Title) == "" {
			missing = append(missing, fmt.Sprintf("inspections[%d].title", i))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidRecord, strings.Join(missing, ", "))
	}
	return nil
}

func checkID(id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrIDRequired
	}
	if !validID.MatchString(id) {
		return ErrInvalidID
	}
	return nil
}

func cloneChecklist(in *model.Checklist) *model.Checklist {
	out := *in
	out.Verifications = append([]model.VerificationItem(nil), in.Verifications...)
	out.Inspections = make([]model.InspectionItem, len(in.Inspections))
	for i, it := range in.Inspections {
		it.Media = append([]model.MediaAsset(nil), it.Media...)
		out.Inspections[i] = it
	}
	return &out
}
