package translate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kailas-cloud/synthsearch/internal/domain"
)

// --- Mocks ---

type mockContexts struct {
	texts map[string]string
	err   error
}

func (m *mockContexts) Get(_ context.Context, key string) (string, bool, error) {
	if m.err != nil {
		return "", false, m.err
	}
	t, ok := m.texts[key]
	return t, ok, nil
}

type mockLLM struct {
	response   string
	err        error
	lastPrompt string
	calls      int
}

func (m *mockLLM) Complete(_ context.Context, prompt string) (string, error) {
	m.calls++
	m.lastPrompt = prompt
	return m.response, m.err
}

func ordersContexts() *mockContexts {
	return &mockContexts{texts: map[string]string{
		"orders": "This paragraph describes the MongoDB collection 'orders' in the database 'shop'.",
	}}
}

// --- Tests ---

func TestTranslate_FencedMapping(t *testing.T) {
	llm := &mockLLM{response: "```\n{\"user\": \"p\"}\n```"}
	svc := New(ordersContexts(), llm, nil)

	q, err := svc.Translate(context.Background(), "orders", "orders by p", "pymongo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.IsText() {
		t.Fatalf("expected structured query, got text %q", q.Text())
	}
	m, ok := q.Value().(map[string]any)
	if !ok || m["user"] != "p" {
		t.Errorf("unexpected query %#v", q.Value())
	}
}

func TestTranslate_PromptContents(t *testing.T) {
	llm := &mockLLM{response: `{"user": "p"}`}
	svc := New(ordersContexts(), llm, nil)

	if _, err := svc.Translate(context.Background(), "orders", "orders by p", "pymongo"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{
		"I need the query for collection : orders",
		"provided by the library pymongo",
		"describes the MongoDB collection 'orders'",
		"orders by p",
		`Generated query : {"username": "p"}`,
	} {
		if !strings.Contains(llm.lastPrompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, llm.lastPrompt)
		}
	}
}

func TestTranslate_TextFallback(t *testing.T) {
	llm := &mockLLM{response: "db.orders.find({user: 'p'})"}
	svc := New(ordersContexts(), llm, nil)

	q, err := svc.Translate(context.Background(), "orders", "orders by p", "pymongo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !q.IsText() {
		t.Fatalf("expected text fallback, got %s", q.Kind())
	}
	if q.Text() != "db.orders.find({user: 'p'})" {
		t.Errorf("unexpected text %q", q.Text())
	}
}

func TestTranslate_UnknownCollection(t *testing.T) {
	llm := &mockLLM{response: "{}"}
	svc := New(ordersContexts(), llm, nil)

	_, err := svc.Translate(context.Background(), "ghost", "anything", "pymongo")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	var nf *domain.NotFoundError
	if !errors.As(err, &nf) || nf.Collection != "ghost" {
		t.Errorf("expected NotFoundError naming ghost, got %v", err)
	}
	if llm.calls != 0 {
		t.Error("model must not be called without context")
	}
}

func TestTranslate_ModelFailure(t *testing.T) {
	llm := &mockLLM{err: domain.ErrModelUnavailable}
	svc := New(ordersContexts(), llm, nil)

	_, err := svc.Translate(context.Background(), "orders", "q", "pymongo")
	if !errors.Is(err, domain.ErrTranslation) {
		t.Fatalf("expected ErrTranslation, got %v", err)
	}
	if !errors.Is(err, domain.ErrModelUnavailable) {
		t.Errorf("cause should be preserved, got %v", err)
	}
}

func TestTranslate_EmptyResponse(t *testing.T) {
	llm := &mockLLM{response: " ``` \n"}
	svc := New(ordersContexts(), llm, nil)

	_, err := svc.Translate(context.Background(), "orders", "q", "pymongo")
	if !errors.Is(err, domain.ErrTranslation) {
		t.Fatalf("expected ErrTranslation, got %v", err)
	}
}

func TestTranslate_ContextStoreError(t *testing.T) {
	svc := New(&mockContexts{err: domain.ErrStore}, &mockLLM{}, nil)

	_, err := svc.Translate(context.Background(), "orders", "q", "pymongo")
	if !errors.Is(err, domain.ErrStore) {
		t.Fatalf("expected ErrStore, got %v", err)
	}
}

func TestTranslate_Validation(t *testing.T) {
	svc := New(ordersContexts(), &mockLLM{}, nil)

	if _, err := svc.Translate(context.Background(), "", "q", "pymongo"); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("empty collection: expected ErrValidation, got %v", err)
	}
	if _, err := svc.Translate(context.Background(), "orders", "  ", "pymongo"); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("blank question: expected ErrValidation, got %v", err)
	}
}
