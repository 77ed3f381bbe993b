package service

import (
	"context"
	"errors"
	"testing"

	"aula-rag/internal/repository"
	"aula-rag/pkg/config"

	"go.uber.org/zap"
)

func testRAGConfig() *config.RAGConfig {
	return &config.RAGConfig{
		EmbeddingDimension: 3,
		ChunkSentences:     1,
		ChunkOverlap:       0,
		ChatLimit:          10,
		ChatThreshold:      0.3,
		ExamLimit:          20,
		ExamThreshold:      0.1,
	}
}

func TestRAGService_AddAndSearch(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryVectorStore()
	embedder := newStubEmbedder(3)
	embedder.set("El sol es una estrella.", []float32{1, 0, 0})
	embedder.set("La luna es un satélite.", []float32{0, 1, 0})
	embedder.set("qué es el sol", []float32{1, 0, 0})

	rag := NewRAGService(store, embedder, testRAGConfig(), zap.NewNop())

	n, err := rag.Add(ctx, "topic-1", "file-1", "El sol es una estrella. La luna es un satélite.")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 chunks, got %d", n)
	}

	result, err := rag.Search(ctx, "topic-1", "qué es el sol", 10, 0.3)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(result.Entries) != 1 {
		t.Fatalf("expected 1 entry above threshold, got %d", len(result.Entries))
	}
	if result.Entries[0].Content != "El sol es una estrella." {
		t.Errorf("unexpected match %q", result.Entries[0].Content)
	}
	if result.Text != "El sol es una estrella." {
		t.Errorf("unexpected context text %q", result.Text)
	}
}

func TestRAGService_AddEmptyText(t *testing.T) {
	ctx := context.Background()
	rag := NewRAGService(repository.NewMemoryVectorStore(), newStubEmbedder(3), testRAGConfig(), zap.NewNop())

	_, err := rag.Add(ctx, "topic-1", "file-1", "   ")
	if !errors.Is(err, ErrNoTextContent) {
		t.Errorf("expected ErrNoTextContent, got %v", err)
	}
}

func TestRAGService_ReindexReplacesEntries(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryVectorStore()
	embedder := newStubEmbedder(3)
	embedder.set("Versión vieja.", []float32{1, 0, 0})
	embedder.set("Versión nueva.", []float32{1, 0, 0})
	embedder.set("versión", []float32{1, 0, 0})

	rag := NewRAGService(store, embedder, testRAGConfig(), zap.NewNop())

	if _, err := rag.Add(ctx, "topic-1", "file-1", "Versión vieja."); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if _, err := rag.Add(ctx, "topic-1", "file-1", "Versión nueva."); err != nil {
		t.Fatalf("second add: %v", err)
	}

	result, err := rag.Search(ctx, "topic-1", "versión", 10, 0.3)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(result.Entries) != 1 {
		t.Fatalf("expected re-index to replace entries, got %d", len(result.Entries))
	}
	if result.Entries[0].Content != "Versión nueva." {
		t.Errorf("expected new content, got %q", result.Entries[0].Content)
	}
}

func TestRAGService_SearchIsNamespaceScoped(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryVectorStore()
	embedder := newStubEmbedder(3)
	embedder.set("Contenido del tema uno.", []float32{1, 0, 0})
	embedder.set("Contenido del tema dos.", []float32{1, 0, 0})
	embedder.set("contenido", []float32{1, 0, 0})

	rag := NewRAGService(store, embedder, testRAGConfig(), zap.NewNop())

	if _, err := rag.Add(ctx, "topic-1", "file-1", "Contenido del tema uno."); err != nil {
		t.Fatalf("add topic-1: %v", err)
	}
	if _, err := rag.Add(ctx, "topic-2", "file-2", "Contenido del tema dos."); err != nil {
		t.Fatalf("add topic-2: %v", err)
	}

	result, err := rag.Search(ctx, "topic-1", "contenido", 10, 0.3)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(result.Entries) != 1 {
		t.Fatalf("expected only topic-1 content, got %d entries", len(result.Entries))
	}
	if result.Entries[0].Content != "Contenido del tema uno." {
		t.Errorf("leaked foreign topic content: %q", result.Entries[0].Content)
	}
}

func TestRAGService_SearchMissingNamespace(t *testing.T) {
	ctx := context.Background()
	rag := NewRAGService(repository.NewMemoryVectorStore(), newStubEmbedder(3), testRAGConfig(), zap.NewNop())

	result, err := rag.Search(ctx, "topic-never-indexed", "pregunta", 10, 0.3)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if result.Text != "" || len(result.Entries) != 0 {
		t.Errorf("expected empty result, got %+v", result)
	}
}

func TestRAGService_RemoveMissingNamespaceIsNoop(t *testing.T) {
	ctx := context.Background()
	rag := NewRAGService(repository.NewMemoryVectorStore(), newStubEmbedder(3), testRAGConfig(), zap.NewNop())

	if err := rag.Remove(ctx, "topic-never-indexed", "file-1"); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}
