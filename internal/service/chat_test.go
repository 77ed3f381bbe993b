package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"aula-rag/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func TestChatService_GroundedAnswer(t *testing.T) {
	ctx := context.Background()
	topicID := uuid.New()

	store := repository.NewMemoryVectorStore()
	embedder := newStubEmbedder(3)
	embedder.set("La fotosíntesis convierte luz en energía química.", []float32{1, 0, 0})
	embedder.set("¿Qué es la fotosíntesis?", []float32{1, 0, 0})

	rag := NewRAGService(store, embedder, testRAGConfig(), zap.NewNop())
	if _, err := rag.Add(ctx, topicID.String(), uuid.NewString(), "La fotosíntesis convierte luz en energía química."); err != nil {
		t.Fatalf("add: %v", err)
	}

	generator := &stubGenerator{response: "La fotosíntesis es el proceso..."}
	chat := NewChatService(rag, generator, testRAGConfig(), zap.NewNop())

	resp, err := chat.Answer(ctx, topicID, "¿Qué es la fotosíntesis?")
	if err != nil {
		t.Fatalf("answer: %v", err)
	}

	if !resp.HasContext {
		t.Error("expected grounded answer")
	}
	if resp.EntriesFound != 1 {
		t.Errorf("expected 1 entry, got %d", resp.EntriesFound)
	}
	if resp.Response != "La fotosíntesis es el proceso..." {
		t.Errorf("model output must be returned verbatim, got %q", resp.Response)
	}
	if !strings.Contains(generator.lastSystem, "La fotosíntesis convierte luz en energía química.") {
		t.Error("system prompt must embed the retrieved context")
	}
	if generator.lastUser != "¿Qué es la fotosíntesis?" {
		t.Errorf("user message must pass through, got %q", generator.lastUser)
	}
}

func TestChatService_NoMaterialsFallback(t *testing.T) {
	ctx := context.Background()
	rag := NewRAGService(repository.NewMemoryVectorStore(), newStubEmbedder(3), testRAGConfig(), zap.NewNop())
	generator := &stubGenerator{response: "Puedo ayudar con preguntas generales."}
	chat := NewChatService(rag, generator, testRAGConfig(), zap.NewNop())

	resp, err := chat.Answer(ctx, uuid.New(), "¿Qué es la fotosíntesis?")
	if err != nil {
		t.Fatalf("answer: %v", err)
	}

	if resp.HasContext {
		t.Error("expected no context for unindexed topic")
	}
	if resp.EntriesFound != 0 {
		t.Errorf("expected 0 entries, got %d", resp.EntriesFound)
	}
	if !strings.Contains(generator.lastSystem, "no hay materiales indexados") {
		t.Error("expected the no-materials system prompt")
	}
}

func TestChatService_GenerationFailureIsHardError(t *testing.T) {
	ctx := context.Background()
	rag := NewRAGService(repository.NewMemoryVectorStore(), newStubEmbedder(3), testRAGConfig(), zap.NewNop())
	generator := &stubGenerator{err: errors.New("upstream unavailable")}
	chat := NewChatService(rag, generator, testRAGConfig(), zap.NewNop())

	if _, err := chat.Answer(ctx, uuid.New(), "pregunta"); err == nil {
		t.Error("expected error when generation fails")
	}
}
