package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"testing"

	"github.com/riskhound/riskhound/internal/model"
)

// recordingStep appends its name to a shared trace when executed.
type recordingStep struct {
	name  string
	err   error
	trace *[]string
}

func (s *recordingStep) Name() string { return s.name }

func (s *recordingStep) Do(_ context.Context, _ string, _ *model.FeatureVector) error {
	*s.trace = append(*s.trace, s.name)
	return s.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPipelineExecutesStepsInOrder(t *testing.T) {
	t.Parallel()

	var trace []string
	p := New(WithLogger(testLogger()))
	p.AddSteps(
		&recordingStep{name: "first", trace: &trace},
		&recordingStep{name: "second", trace: &trace},
		&recordingStep{name: "third", trace: &trace},
	)

	fv := model.NewFeatureVector("http://example.com/", nil)
	if err := p.Execute(context.Background(), "http://example.com/", fv); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	want := []string{"first", "second", "third"}
	if !slices.Equal(trace, want) {
		t.Errorf("trace = %v, want %v", trace, want)
	}
	if !slices.Equal(p.StepNames(), want) {
		t.Errorf("StepNames() = %v, want %v", p.StepNames(), want)
	}
	if p.StepCount() != 3 {
		t.Errorf("StepCount() = %d, want 3", p.StepCount())
	}
}

func TestPipelineContinuesOnErrorByDefault(t *testing.T) {
	t.Parallel()

	var trace []string
	p := New(WithLogger(testLogger()))
	p.AddSteps(
		&recordingStep{name: "failing", err: errors.New("boom"), trace: &trace},
		&recordingStep{name: "after", trace: &trace},
	)

	fv := model.NewFeatureVector("http://example.com/", nil)
	if err := p.Execute(context.Background(), "http://example.com/", fv); err != nil {
		t.Fatalf("Execute() error = %v, want nil", err)
	}

	if !slices.Equal(trace, []string{"failing", "after"}) {
		t.Errorf("trace = %v, want both steps executed", trace)
	}
}

func TestPipelineStopsOnErrorWhenConfigured(t *testing.T) {
	t.Parallel()

	var trace []string
	wantErr := errors.New("boom")
	p := New(WithLogger(testLogger()), WithContinueOnError(false))
	p.AddSteps(
		&recordingStep{name: "failing", err: wantErr, trace: &trace},
		&recordingStep{name: "after", trace: &trace},
	)

	fv := model.NewFeatureVector("http://example.com/", nil)
	if err := p.Execute(context.Background(), "http://example.com/", fv); !errors.Is(err, wantErr) {
		t.Fatalf("Execute() error = %v, want %v", err, wantErr)
	}

	if !slices.Equal(trace, []string{"failing"}) {
		t.Errorf("trace = %v, want only the failing step", trace)
	}
}

func TestPipelineRespectsCancellation(t *testing.T) {
	t.Parallel()

	var trace []string
	p := New(WithLogger(testLogger()))
	p.AddStep(&recordingStep{name: "never", trace: &trace})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fv := model.NewFeatureVector("http://example.com/", nil)
	if err := p.Execute(ctx, "http://example.com/", fv); !errors.Is(err, context.Canceled) {
		t.Fatalf("Execute() error = %v, want context.Canceled", err)
	}

	if len(trace) != 0 {
		t.Errorf("trace = %v, want no steps executed", trace)
	}
}
