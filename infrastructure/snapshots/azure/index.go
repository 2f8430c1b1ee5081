package azure

import (
	"context"
	"fmt"
	"time"

	"facegate.io/infrastructure/logger"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

// AzureBlobArchiver offloads denied-frame snapshots to Azure Blob Storage
// with shared-key auth, for fleets that review attempts centrally.
type AzureBlobArchiver struct {
	AccountName   string
	AccountKey    string
	ContainerName string
}

func (archiver *AzureBlobArchiver) client() (*azblob.Client, error) {
	credential, err := azblob.NewSharedKeyCredential(archiver.AccountName, archiver.AccountKey)
	if err != nil {
		logger.Error("error creating azblob shared key credential", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return nil, err
	}
	serviceURL := fmt.Sprintf("https://%s.blob.core.windows.net/", archiver.AccountName)
	return azblob.NewClientWithSharedKeyCredential(serviceURL, credential, nil)
}

func (archiver *AzureBlobArchiver) Archive(attemptID string, jpegBytes []byte) error {
	client, err := archiver.client()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	_, err = client.UploadBuffer(ctx, archiver.ContainerName, attemptID+".jpg", jpegBytes, nil)
	if err != nil {
		logger.Error("error uploading snapshot to azure", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "attemptID",
			Data: attemptID,
		})
	}
	return err
}

func (archiver *AzureBlobArchiver) Delete(attemptID string) error {
	client, err := archiver.client()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	_, err = client.DeleteBlob(ctx, archiver.ContainerName, attemptID+".jpg", nil)
	return err
}
