package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"arxiv-digest-api/internal/config"
	"arxiv-digest-api/internal/domain/entity"
	"arxiv-digest-api/internal/infrastructure/persistence/milvus"
	"arxiv-digest-api/internal/wire"
)

func main() {
	_ = godotenv.Load()

	fmt.Println("Starting system bootstrap...")

	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()

	// 2. 初始化存储层
	layer, cleanup, err := wire.InitializeBootstrap(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to initialize storage layer: %v", err)
	}
	defer cleanup()

	// 3. 迁移 PostgreSQL 表结构
	fmt.Println("Migrating postgres schema...")
	if err := layer.PgClient.DB().AutoMigrate(
		&entity.Paper{},
		&entity.Flashcard{},
	); err != nil {
		log.Fatalf("failed to migrate postgres schema: %v", err)
	}
	fmt.Println("Postgres schema up to date.")

	// 4. 创建 Milvus 分块集合与索引
	collName := layer.MilvusClient.CollectionName(milvus.CollectionPaperChunks)
	has, err := layer.MilvusClient.Milvus().HasCollection(ctx, collName)
	if err != nil {
		log.Fatalf("failed to check milvus collection: %v", err)
	}
	if has {
		fmt.Printf("Milvus collection %s already exists.\n", collName)
	} else {
		fmt.Printf("Creating milvus collection %s...\n", collName)
		if err := layer.ChunkRepo.CreateCollection(ctx); err != nil {
			log.Fatalf("failed to create milvus collection: %v", err)
		}
		if err := layer.ChunkRepo.CreateIndex(ctx); err != nil {
			log.Fatalf("failed to create milvus index: %v", err)
		}
		fmt.Println("Milvus collection and index created.")
	}

	fmt.Println("Bootstrap completed successfully.")
}
