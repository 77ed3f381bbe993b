package main

import (
	"context"
	"log"
	"time"

	"aula-rag/internal/models"
	"aula-rag/internal/repository"
	"aula-rag/pkg/auth"
	"aula-rag/pkg/config"
	"aula-rag/pkg/logger"
	"aula-rag/pkg/postgres"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Seeds a development database with a teacher, a student and a subject with
// one topic. Safe to re-run, existing users are kept.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Logger.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	userRepo := repository.NewUserRepository(db, appLogger)
	subjectRepo := repository.NewSubjectRepository(db, appLogger)
	topicRepo := repository.NewTopicRepository(db, appLogger)
	enrollmentRepo := repository.NewEnrollmentRepository(db, appLogger)

	appLogger.Info("Starting database seeding...")

	teacher, err := seedUser(ctx, userRepo, "teacher@example.com", "teacher123", "Ana", "García", models.RoleTeacher, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to seed teacher", zap.Error(err))
	}

	student, err := seedUser(ctx, userRepo, "student@example.com", "student123", "Luis", "Pérez", models.RoleStudent, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to seed student", zap.Error(err))
	}

	subjects, err := subjectRepo.ListByTeacher(ctx, teacher.ID)
	if err != nil {
		appLogger.Fatal("Failed to list subjects", zap.Error(err))
	}
	if len(subjects) > 0 {
		appLogger.Info("Teacher already has subjects, skipping subject seed")
		return
	}

	now := time.Now()
	subject := &models.Subject{
		ID:          uuid.New(),
		Name:        "Historia Universal",
		Description: "Curso introductorio de historia universal",
		TeacherID:   teacher.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := subjectRepo.Create(ctx, subject); err != nil {
		appLogger.Fatal("Failed to create subject", zap.Error(err))
	}

	topic := &models.Topic{
		ID:          uuid.New(),
		SubjectID:   subject.ID,
		Name:        "La Revolución Francesa",
		Description: "Causas, desarrollo y consecuencias",
		TeacherID:   teacher.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := topicRepo.Create(ctx, topic); err != nil {
		appLogger.Fatal("Failed to create topic", zap.Error(err))
	}

	enrollment := &models.SubjectEnrollment{
		ID:         uuid.New(),
		SubjectID:  subject.ID,
		UserID:     student.ID,
		EnrolledAt: now,
		EnrolledBy: teacher.ID,
	}
	if err := enrollmentRepo.Create(ctx, enrollment); err != nil {
		appLogger.Fatal("Failed to create enrollment", zap.Error(err))
	}

	appLogger.Info("Database seeding completed successfully!",
		zap.String("subject_id", subject.ID.String()),
		zap.String("topic_id", topic.ID.String()),
	)
}

func seedUser(ctx context.Context, repo *repository.UserRepository, email, password, firstName, lastName string, role models.UserRole, logger *zap.Logger) (*models.User, error) {
	if existing, err := repo.GetByEmail(ctx, email); err == nil {
		logger.Info("User already exists, skipping", zap.String("email", email))
		return existing, nil
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &models.User{
		ID:        uuid.New(),
		Email:     email,
		Password:  hashed,
		FirstName: firstName,
		LastName:  lastName,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := repo.Create(ctx, user); err != nil {
		return nil, err
	}

	logger.Info("Created user", zap.String("email", email), zap.String("role", string(role)))
	return user, nil
}
