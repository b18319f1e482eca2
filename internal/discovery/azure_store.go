package discovery

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"

	"filetable-gateway/internal/model"
)

// AzureBlobStore lists and reads data files in an Azure Blob container.
type AzureBlobStore struct {
	client    *azblob.Client
	container string
}

// NewAzureBlobStore creates an Azure Blob Storage backed store. AccessKey
// carries the account name and SecretKey the shared account key; Token, when
// set, is a SAS token and takes precedence.
func NewAzureBlobStore(cfg *StoreConfig) (*AzureBlobStore, error) {
	if cfg.Container == "" {
		return nil, fmt.Errorf("container is required")
	}

	accountURL := cfg.AccountURL
	if accountURL == "" {
		if cfg.AccessKey == "" {
			return nil, fmt.Errorf("account name is required")
		}
		accountURL = fmt.Sprintf("https://%s.blob.core.windows.net/", cfg.AccessKey)
	}

	var client *azblob.Client
	var err error
	if cfg.Token != "" {
		client, err = azblob.NewClientWithNoCredential(accountURL+"?"+cfg.Token, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create Azure Blob client with SAS: %w", err)
		}
	} else {
		credential, credErr := azblob.NewSharedKeyCredential(cfg.AccessKey, cfg.SecretKey)
		if credErr != nil {
			return nil, fmt.Errorf("failed to create shared key credential: %w", credErr)
		}
		client, err = azblob.NewClientWithSharedKeyCredential(accountURL, credential, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create Azure Blob client: %w", err)
		}
	}

	return &AzureBlobStore{client: client, container: cfg.Container}, nil
}

// List returns every blob under the given name prefix.
func (s *AzureBlobStore) List(ctx context.Context, root string) ([]model.FileRef, error) {
	prefix := strings.TrimPrefix(root, "/")

	var files []model.FileRef
	pager := s.client.NewListBlobsFlatPager(s.container, &azblob.ListBlobsFlatOptions{
		Prefix: &prefix,
	})

	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list blobs under %s: %w", prefix, err)
		}
		for _, blob := range page.Segment.BlobItems {
			ref := model.FileRef{Path: *blob.Name}
			if blob.Properties.ContentLength != nil {
				ref.Size = *blob.Properties.ContentLength
			}
			if blob.Properties.LastModified != nil {
				ref.ModTime = *blob.Properties.LastModified
			}
			if strings.HasSuffix(ref.Path, "/") && ref.Size == 0 {
				continue
			}
			files = append(files, ref)
		}
	}

	return files, nil
}

// Open downloads a single blob.
func (s *AzureBlobStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	resp, err := s.client.DownloadStream(ctx, s.container, strings.TrimPrefix(name, "/"), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to download blob %s: %w", name, err)
	}
	return resp.Body, nil
}
