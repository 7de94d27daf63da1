package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/openai/openai-go/v3"
	"go.uber.org/zap"

	"github.com/orchid-health/breastcare-backend/internal/azure"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	openaiEndpoint := os.Getenv("AZURE_OPENAI_ENDPOINT")
	openaiKey := os.Getenv("AZURE_OPENAI_API_KEY")
	openaiDeployment := os.Getenv("AZURE_OPENAI_DEPLOYMENT")

	storageAccountName := os.Getenv("AZURE_STORAGE_ACCOUNT_NAME")
	storageAccountKey := os.Getenv("AZURE_STORAGE_ACCOUNT_KEY")

	if openaiEndpoint == "" || openaiKey == "" || openaiDeployment == "" {
		logger.Fatal("Missing Azure OpenAI credentials. Set AZURE_OPENAI_ENDPOINT, AZURE_OPENAI_API_KEY, and AZURE_OPENAI_DEPLOYMENT")
	}

	if storageAccountName == "" || storageAccountKey == "" {
		logger.Fatal("Missing Azure Storage credentials. Set AZURE_STORAGE_ACCOUNT_NAME and AZURE_STORAGE_ACCOUNT_KEY")
	}

	ctx := context.Background()

	logger.Info("=== Checking Azure OpenAI Client ===")
	if err := checkOpenAIClient(ctx, openaiEndpoint, openaiKey, openaiDeployment, logger); err != nil {
		logger.Error("OpenAI client check failed", zap.Error(err))
	} else {
		logger.Info("OpenAI client check passed")
	}

	logger.Info("=== Checking Azure Blob Storage Client ===")
	if err := checkBlobStorageClient(ctx, storageAccountName, storageAccountKey, logger); err != nil {
		logger.Error("Blob storage client check failed", zap.Error(err))
	} else {
		logger.Info("Blob storage client check passed")
	}

	logger.Info("=== All checks completed ===")
}

func checkOpenAIClient(ctx context.Context, endpoint, apiKey, deployment string, logger *zap.Logger) error {
	client, err := azure.NewOpenAIClient(endpoint, apiKey, deployment, logger)
	if err != nil {
		return fmt.Errorf("failed to create OpenAI client: %w", err)
	}

	// A clarification-shaped request, like the self-check chat sends.
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage("You are a supportive assistant helping someone perform a breast self-examination. Answer briefly and never give a diagnosis."),
		openai.UserMessage("How firmly should I press during the standing palpation?"),
	}

	response, err := client.Complete(ctx, messages)
	if err != nil {
		return fmt.Errorf("chat completion failed: %w", err)
	}

	logger.Info("OpenAI response received",
		zap.String("response", response),
		zap.Int("response_length", len(response)),
	)

	return nil
}

func checkBlobStorageClient(ctx context.Context, accountName, accountKey string, logger *zap.Logger) error {
	containerName := os.Getenv("AZURE_STORAGE_REPORT_CONTAINER")
	if containerName == "" {
		containerName = "assessment-reports"
	}

	client, err := azure.NewBlobStorageClient(accountName, accountKey, containerName, logger)
	if err != nil {
		return fmt.Errorf("failed to create Blob Storage client: %w", err)
	}

	testData := []byte("%PDF-1.4 smoke test document")
	testFilename := fmt.Sprintf("check-%d.pdf", time.Now().Unix())

	logger.Info("Checking report upload", zap.String("filename", testFilename))

	blobName, err := client.UploadReport(ctx, testFilename, testData)
	if err != nil {
		return fmt.Errorf("report upload failed: %w", err)
	}

	logger.Info("Checking report download", zap.String("blob_name", blobName))

	downloaded, err := client.DownloadReport(ctx, blobName)
	if err != nil {
		return fmt.Errorf("report download failed: %w", err)
	}

	if !bytes.Equal(downloaded, testData) {
		return fmt.Errorf("downloaded report does not match uploaded data")
	}

	logger.Info("Report round-trip verified", zap.Int("size_bytes", len(downloaded)))
	return nil
}
