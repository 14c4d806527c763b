package logging

import (
	"context"
	"testing"

	"github.com/goliatone/go-blog/pkg/interfaces"
)

type recordingLogger struct {
	fields   []map[string]any
	contexts []context.Context
}

func (r *recordingLogger) Trace(string, ...any) {}
func (r *recordingLogger) Debug(string, ...any) {}
func (r *recordingLogger) Info(string, ...any)  {}
func (r *recordingLogger) Warn(string, ...any)  {}
func (r *recordingLogger) Error(string, ...any) {}
func (r *recordingLogger) Fatal(string, ...any) {}

func (r *recordingLogger) WithFields(fields map[string]any) interfaces.Logger {
	copied := make(map[string]any, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	r.fields = append(r.fields, copied)
	return r
}

func (r *recordingLogger) WithContext(ctx context.Context) interfaces.Logger {
	r.contexts = append(r.contexts, ctx)
	return r
}

type stubProvider struct {
	requested []string
	logger    interfaces.Logger
}

func (s *stubProvider) GetLogger(name string) interfaces.Logger {
	s.requested = append(s.requested, name)
	return s.logger
}

func TestModuleLoggerFallsBackToNoOp(t *testing.T) {
	logger := ModuleLogger(nil, "blog.test")
	if _, ok := logger.(noopLogger); !ok {
		t.Fatalf("expected noopLogger fallback, got %T", logger)
	}
	logger = logger.WithContext(context.Background())
	logger.Debug("noop")
}

func TestModuleLoggerAttachesModuleField(t *testing.T) {
	recorder := &recordingLogger{}
	provider := &stubProvider{logger: recorder}

	PublishLogger(provider)

	if len(provider.requested) != 1 || provider.requested[0] != publishModule {
		t.Fatalf("expected provider to be asked for %q, got %v", publishModule, provider.requested)
	}
	if len(recorder.fields) != 1 || recorder.fields[0]["module"] != publishModule {
		t.Fatalf("expected module field, got %#v", recorder.fields)
	}
}

func TestModuleLoggerDefaultsToRoot(t *testing.T) {
	recorder := &recordingLogger{}
	provider := &stubProvider{logger: recorder}

	ModuleLogger(provider, "")

	if provider.requested[0] != rootModule {
		t.Fatalf("expected root module, got %q", provider.requested[0])
	}
}

func TestWithPostContextSkipsBlankValues(t *testing.T) {
	recorder := &recordingLogger{}

	WithPostContext(recorder, " hello-world ", "", "create")

	if len(recorder.fields) != 1 {
		t.Fatalf("expected a single WithFields call, got %d", len(recorder.fields))
	}
	fields := recorder.fields[0]
	if fields[fieldPostSlug] != "hello-world" {
		t.Fatalf("expected trimmed slug, got %#v", fields[fieldPostSlug])
	}
	if _, ok := fields[fieldPostID]; ok {
		t.Fatalf("expected blank id to be skipped, got %#v", fields)
	}
	if fields[fieldMode] != "create" {
		t.Fatalf("expected mode field, got %#v", fields)
	}
}

func TestWithFieldsHandlesNilLogger(t *testing.T) {
	if _, ok := WithFields(nil, map[string]any{"a": 1}).(noopLogger); !ok {
		t.Fatalf("expected noop logger for nil input")
	}
}

func TestContextFieldsMerge(t *testing.T) {
	ctx := ContextWithFields(context.Background(), map[string]any{"a": 1})
	ctx = ContextWithFields(ctx, map[string]any{"b": 2, "a": 3})

	fields := ContextFields(ctx)
	if fields["a"] != 3 || fields["b"] != 2 {
		t.Fatalf("unexpected merged fields %#v", fields)
	}

	fields["a"] = 99
	if ContextFields(ctx)["a"] != 3 {
		t.Fatalf("expected ContextFields to return a copy")
	}
}
