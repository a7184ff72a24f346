package integration

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"docai-platform-be/internal/entity"
	"docai-platform-be/internal/repository/specification"
	"docai-platform-be/internal/repository/unitofwork"
	"docai-platform-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
)

func TestGormConnection(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	// Verify Wiring
	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(context.Background())

	assert.NotNil(t, uow.DocumentRepository())
	assert.NotNil(t, uow.DocumentChunkRepository())

	// Basic Ping
	sqlDB, _ := gormDB.DB()
	err = sqlDB.Ping()
	assert.NoError(t, err)
	t.Log("Successfully connected to DB and initialized UnitOfWork Factory")

	t.Run("Check Document Repository", func(t *testing.T) {
		count, err := uow.DocumentRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("Document count: %d", count)
	})

	t.Run("Check Document Chunk Repository", func(t *testing.T) {
		count, err := uow.DocumentChunkRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("DocumentChunk count: %d", count)
	})

	t.Run("Check Transactional Document Registration", func(t *testing.T) {
		ctx := context.Background()
		err := uow.Begin(ctx)
		assert.NoError(t, err)
		defer uow.Rollback()

		docId := uuid.New()
		doc := &entity.Document{
			Id:                 docId,
			Title:              "Integration Test Policy " + uuid.New().String(),
			DocType:            "policy",
			Summary:            "Integration test document",
			ContentFingerprint: uuid.New().String(),
			VersionLabel:       "v1.0",
			Status:             entity.VersionStatusActive,
			IsLatest:           true,
			ChunkCount:         1,
			CreatedAt:          time.Now(),
		}
		err = uow.DocumentRepository().Create(ctx, doc)
		assert.NoError(t, err)

		chunk := &entity.DocumentChunk{
			Id:          uuid.New(),
			DocumentId:  docId,
			SectionPath: "1. Scope",
			ChunkIndex:  0,
			Content:     "This policy applies to all employees.",
			CreatedAt:   time.Now(),
		}
		err = uow.DocumentChunkRepository().CreateBulk(ctx, []*entity.DocumentChunk{chunk})
		assert.NoError(t, err)

		found, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: docId})
		assert.NoError(t, err)
		if assert.NotNil(t, found) {
			assert.Equal(t, doc.Title, found.Title)
			assert.True(t, found.IsLatest)
		}

		// Rollback in defer keeps the database clean.
	})
}
