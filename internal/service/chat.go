package service

import (
	"context"
	"fmt"

	"aula-rag/internal/dto"
	"aula-rag/pkg/config"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Generator produces a completion for a system+user exchange. Implemented by
// LLMService.
type Generator interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

const chatGroundedPrompt = `Eres un asistente educativo que ayuda a estudiantes con preguntas sobre el tema. Usa el siguiente contexto de los materiales del tema para responder la pregunta del estudiante. Si la información no está en el contexto, di que no tienes esa información específica en los materiales disponibles.

Contexto de los materiales:
%s

Responde de manera clara, educativa y útil.`

const chatNoMaterialsPrompt = `Eres un asistente educativo que ayuda a estudiantes con preguntas sobre el tema. Actualmente no hay materiales indexados para este tema, pero puedes ayudar con preguntas generales.`

// ChatService answers student questions grounded in the topic's indexed
// materials.
type ChatService struct {
	rag       *RAGService
	generator Generator
	config    *config.RAGConfig
	logger    *zap.Logger
}

func NewChatService(rag *RAGService, generator Generator, cfg *config.RAGConfig, logger *zap.Logger) *ChatService {
	return &ChatService{
		rag:       rag,
		generator: generator,
		config:    cfg,
		logger:    logger,
	}
}

// Answer retrieves topic context for the message and generates a grounded
// response. With no indexed materials the assistant still answers, but says
// so through the fallback prompt.
func (s *ChatService) Answer(ctx context.Context, topicID uuid.UUID, message string) (*dto.ChatResponse, error) {
	result, err := s.rag.Search(ctx, topicID.String(), message, s.config.ChatLimit, s.config.ChatThreshold)
	if err != nil {
		return nil, fmt.Errorf("retrieval failed: %w", err)
	}

	hasContext := result.Text != ""
	systemMessage := chatNoMaterialsPrompt
	if hasContext {
		systemMessage = fmt.Sprintf(chatGroundedPrompt, result.Text)
	}

	s.logger.Info("Chat retrieval completed",
		zap.String("topic_id", topicID.String()),
		zap.Int("entries", len(result.Entries)),
		zap.Bool("has_context", hasContext),
	)

	response, err := s.generator.Complete(ctx, systemMessage, message)
	if err != nil {
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	return &dto.ChatResponse{
		Response:     response,
		HasContext:   hasContext,
		EntriesFound: len(result.Entries),
	}, nil
}
