package wizard

import (
	"context"
	"errors"
	"testing"
	"time"

	"checklistapi/internal/model"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type saverFunc func(ctx context.Context, c *model.Checklist) (*model.Checklist, error)

func (f saverFunc) Save(ctx context.Context, c *model.Checklist) (*model.Checklist, error) {
	return f(ctx, c)
}

func validData() model.InitialData {
	return model.InitialData{Plate: "ABC-1234", Driver: "J. Silva", Inspector: "M. Souza", Odometer: "12345"}
}

func jpegFrame() Frame {
	return Frame{Name: "f.jpg", MimeType: "image/jpeg", Data: []byte{0xff, 0xd8, 0xff, 0xe0}}
}

func TestCatalog(t *testing.T) {
	v := VerificationCatalog()
	assert.Len(t, v, 9)
	assert.Equal(t, 4, FrontSectionSize)
	assert.Len(t, InspectionCatalog(), 2)

	v[0].Title = "changed"
	assert.Equal(t, "Dianteiro amassado", VerificationCatalog()[0].Title)

	seen := map[string]bool{}
	for _, e := range append(v[1:], InspectionCatalog()...) {
		assert.NotEmpty(t, e.Detail, e.Title)
		assert.False(t, seen[e.Title], "duplicate title %q", e.Title)
		seen[e.Title] = true
	}
}

func TestValidatePlate(t *testing.T) {
	tests := []struct {
		plate string
		want  bool
	}{
		{"ABC-1234", true},
		{"ABC1234", true},
		{"abc-1234", true},
		{"  xyz9876 ", true},
		{"AB-1234", false},
		{"ABCD-1234", false},
		{"ABC-123", false},
		{"ABC--1234", false},
		{"ABC 1234", false},
		{"ABC1D23", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.plate, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidatePlate(tt.plate))
		})
	}
}

func TestValidatePlateProperties(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("well formed plates validate in any case", prop.ForAll(
		func(p string) bool { return ValidatePlate(p) },
		gen.RegexMatch(`[A-Za-z]{3}-?[0-9]{4}`),
	))

	properties.Property("wrong length never validates", prop.ForAll(
		func(p string) bool { return !ValidatePlate(p) },
		gen.AlphaString().SuchThat(func(s string) bool { return len(s) != 7 && len(s) != 8 }),
	))

	properties.Property("letters only never validate", prop.ForAll(
		func(p string) bool { return !ValidatePlate(p) },
		gen.RegexMatch(`[A-Za-z]{7,8}`),
	))

	properties.TestingRun(t)
}

func TestNavigation(t *testing.T) {
	w := New()
	assert.Equal(t, StepData, w.Step())

	w.Back()
	assert.Equal(t, StepData, w.Step())

	err := w.Next()
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, StepData, ve.Step)
	assert.Equal(t, "Complete os dados obrigatórios.", ve.Title)
	assert.Equal(t, StepData, w.Step())

	w.SetInitialData(model.InitialData{Plate: "abc1234", Driver: "J", Inspector: "M"})
	assert.Equal(t, "ABC1234", w.InitialData().Plate)
	assert.Error(t, w.Next(), "odometer is required")

	w.SetInitialData(validData())
	require.NoError(t, w.Next())
	assert.Equal(t, StepVerifications, w.Step())

	err = w.Next()
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, StepVerifications, ve.Step)
	assert.Equal(t, StepVerifications, w.Step())

	for i := 0; i < w.VerificationCount(); i++ {
		require.NoError(t, w.SetVerification(i, model.StatusNaoConforme, ""))
	}
	require.NoError(t, w.Next())
	assert.Equal(t, StepInspections, w.Step())

	require.NoError(t, w.SetInspection(0, model.StatusNaoConforme, "risco"))
	require.NoError(t, w.SetInspection(1, model.StatusNotApplicable, ""))
	err = w.Next()
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, StepInspections, ve.Step)
	assert.Contains(t, ve.Error(), "etapa 3")

	_, err = w.AddPhoto(0, jpegFrame())
	require.NoError(t, err)
	require.NoError(t, w.Next())
	assert.Equal(t, StepReview, w.Step())

	require.NoError(t, w.Next())
	assert.Equal(t, StepReview, w.Step(), "ceiling at review")

	w.Back()
	assert.Equal(t, StepInspections, w.Step())
}

func TestSetItemErrors(t *testing.T) {
	w := New()
	assert.ErrorIs(t, w.SetVerification(9, model.StatusConforme, ""), ErrNoSuchItem)
	assert.ErrorIs(t, w.SetInspection(-1, model.StatusConforme, ""), ErrNoSuchItem)
	assert.Error(t, w.SetVerification(0, model.Status("ok"), ""))

	require.NoError(t, w.SetVerification(0, model.StatusConforme, "  "))
	v, err := w.Verification(0)
	require.NoError(t, err)
	assert.Nil(t, v.Notes)
}

func TestEndToEndExample(t *testing.T) {
	clock := func() time.Time { return time.Date(2026, 10, 15, 11, 30, 5, 0, time.UTC) }
	loc := time.FixedZone("BRT", -3*3600)
	w := New(WithClock(clock), WithLocation(loc), WithIDGenerator(func() string { return "rec-1" }))

	assert.Equal(t, "15-10-2026 08:30:05", w.CreatedAt())

	w.SetInitialData(validData())
	for i := 0; i < w.VerificationCount(); i++ {
		require.NoError(t, w.SetVerification(i, model.StatusConforme, ""))
	}
	for i := 0; i < w.InspectionCount(); i++ {
		require.NoError(t, w.SetInspection(i, model.StatusNotApplicable, ""))
	}

	assert.True(t, w.Complete())
	assert.Equal(t, Progress{Answered: 11, Total: 11, Percent: 100}, w.Progress())

	var got *model.Checklist
	saved, err := w.Submit(context.Background(), saverFunc(func(_ context.Context, c *model.Checklist) (*model.Checklist, error) {
		got = c
		return c, nil
	}))
	require.NoError(t, err)
	assert.Same(t, got, saved)
	assert.Equal(t, "rec-1", got.ID)
	assert.Equal(t, DefaultTitle, got.Title)
	assert.Equal(t, "15-10-2026 08:30:05", got.CreatedAt)
	assert.True(t, got.Complete)
	assert.Len(t, got.Verifications, 9)
	assert.Len(t, got.Inspections, 2)

	c := *got
	assert.Equal(t, c.Complete, c.Evaluate(), "model predicate agrees with the wizard")
}

func TestProgressMonotonic(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("answering items never lowers progress", prop.ForAll(
		func(order []int) bool {
			w := New()
			last := w.Progress().Percent
			for _, idx := range order {
				if idx < w.VerificationCount() {
					_ = w.SetVerification(idx, model.StatusConforme, "")
				} else {
					_ = w.SetInspection(idx-w.VerificationCount(), model.StatusNotApplicable, "")
				}
				p := w.Progress().Percent
				if p < last {
					return false
				}
				last = p
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 10)),
	))

	properties.Property("every item answered means 100", prop.ForAll(
		func(status model.Status) bool {
			w := New()
			for i := 0; i < w.VerificationCount(); i++ {
				_ = w.SetVerification(i, status, "")
			}
			for i := 0; i < w.InspectionCount(); i++ {
				_ = w.SetInspection(i, model.StatusNotApplicable, "")
			}
			return w.Progress().Percent == 100
		},
		gen.OneConstOf(model.StatusConforme, model.StatusNaoConforme, model.StatusNotApplicable),
	))

	properties.TestingRun(t)
}

func TestProgressRounding(t *testing.T) {
	w := New()
	require.NoError(t, w.SetVerification(0, model.StatusConforme, ""))
	// 1/11 = 9.09%
	assert.Equal(t, Progress{Answered: 1, Total: 11, Percent: 9}, w.Progress())

	for i := 1; i < 6; i++ {
		require.NoError(t, w.SetVerification(i, model.StatusConforme, ""))
	}
	// 6/11 = 54.5%
	assert.Equal(t, 55, w.Progress().Percent)

	require.NoError(t, w.SetInspection(0, model.StatusConforme, ""))
	assert.Equal(t, 55, w.Progress().Percent, "conforme without photo does not count")
}

func TestPhotosAndPreviews(t *testing.T) {
	previews := NewMemoryPreviews()
	w := New(WithPreviews(previews))

	id1, err := w.AddPhoto(0, jpegFrame())
	require.NoError(t, err)
	id2, err := w.AddPhoto(0, Frame{Data: []byte{1, 2, 3}})
	require.NoError(t, err)
	_, err = w.AddPhoto(1, jpegFrame())
	require.NoError(t, err)
	assert.Equal(t, 3, previews.Outstanding())
	assert.NotEqual(t, id1, id2)

	it, err := w.Inspection(0)
	require.NoError(t, err)
	require.Len(t, it.Media, 2)
	assert.Equal(t, "data:image/jpeg;base64,/9j/4A==", it.Media[0].Content)
	assert.Equal(t, int64(4), it.Media[0].SizeBytes)
	assert.Equal(t, "image/jpeg", it.Media[1].MimeType)
	assert.Contains(t, it.Media[1].Name, "captura-")

	pid, ok := w.PreviewID(0, id1)
	require.True(t, ok)
	_, live := previews.Lookup(pid)
	assert.True(t, live)

	require.NoError(t, w.RemovePhoto(0, id1))
	_, live = previews.Lookup(pid)
	assert.False(t, live)
	assert.Equal(t, 2, previews.Outstanding())
	assert.Equal(t, []string{id2}, w.PhotoIDs(0))
	it, _ = w.Inspection(0)
	require.Len(t, it.Media, 1)
	assert.Equal(t, "image/jpeg", it.Media[0].MimeType)

	assert.ErrorIs(t, w.RemovePhoto(0, id1), ErrNoSuchMedia)
	_, err = w.AddPhoto(0, Frame{})
	assert.ErrorIs(t, err, ErrNoFrame)

	require.NoError(t, w.Close())
	assert.Equal(t, 0, previews.Outstanding())
	require.NoError(t, w.Close())

	_, err = w.AddPhoto(0, jpegFrame())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()

	t.Run("incomplete names the failing step", func(t *testing.T) {
		w := New()
		w.SetInitialData(validData())
		_, err := w.Submit(ctx, saverFunc(func(context.Context, *model.Checklist) (*model.Checklist, error) {
			t.Fatal("saver must not be called")
			return nil, nil
		}))
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, StepVerifications, ve.Step)
	})

	t.Run("failed save keeps previews for retry", func(t *testing.T) {
		previews := NewMemoryPreviews()
		w := New(WithPreviews(previews))
		w.SetInitialData(validData())
		for i := 0; i < w.VerificationCount(); i++ {
			require.NoError(t, w.SetVerification(i, model.StatusConforme, ""))
		}
		require.NoError(t, w.SetInspection(0, model.StatusConforme, ""))
		require.NoError(t, w.SetInspection(1, model.StatusNotApplicable, ""))
		_, err := w.AddPhoto(0, jpegFrame())
		require.NoError(t, err)

		boom := errors.New("backend down")
		_, err = w.Submit(ctx, saverFunc(func(context.Context, *model.Checklist) (*model.Checklist, error) {
			return nil, boom
		}))
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, previews.Outstanding())

		_, err = w.Submit(ctx, saverFunc(func(_ context.Context, c *model.Checklist) (*model.Checklist, error) {
			assert.True(t, c.Inspections[0].Media[0].IsInline())
			return c, nil
		}))
		require.NoError(t, err)
		assert.Equal(t, 0, previews.Outstanding())
	})
}
