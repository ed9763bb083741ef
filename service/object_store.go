package service

import (
	"bytes"
	"context"
	"fmt"
	"log"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// ObjectStore stores binary objects and returns a URL they can be fetched from
type ObjectStore interface {
	Put(ctx context.Context, name, contentType string, data []byte) (string, error)
}

// DriveObjectStore uploads objects to a Google Drive folder
type DriveObjectStore struct {
	client   *drive.Service
	folderID string
}

// NewDriveObjectStore creates a new DriveObjectStore
// credentialsPath should be the path to the Service Account JSON file
func NewDriveObjectStore(ctx context.Context, credentialsPath, folderID string) (*DriveObjectStore, error) {
	// option.WithCredentialsFile automatically handles Service Account authentication
	client, err := drive.NewService(ctx, option.WithCredentialsFile(credentialsPath), option.WithScopes(drive.DriveFileScope))
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}
	return &DriveObjectStore{client: client, folderID: folderID}, nil
}

// Put uploads data, makes it readable by link and returns its public URL
func (s *DriveObjectStore) Put(ctx context.Context, name, contentType string, data []byte) (string, error) {
	file := &drive.File{Name: name, MimeType: contentType}
	if s.folderID != "" {
		file.Parents = []string{s.folderID}
	}

	created, err := s.client.Files.Create(file).
		Media(bytes.NewReader(data)).
		SupportsAllDrives(true).
		Fields("id").
		Context(ctx).
		Do()
	if err != nil {
		log.Printf("❌ DriveObjectStore: Failed to upload %s: %v", name, err)
		return "", fmt.Errorf("failed to upload file: %w", err)
	}

	_, err = s.client.Permissions.Create(created.Id, &drive.Permission{Type: "anyone", Role: "reader"}).
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		log.Printf("⚠️ DriveObjectStore: Uploaded %s but could not share it: %v", name, err)
		return "", fmt.Errorf("failed to share file: %w", err)
	}

	// Build public URL
	url := fmt.Sprintf("https://drive.google.com/uc?id=%s", created.Id)
	log.Printf("✅ DriveObjectStore: Uploaded %s (%d bytes) as %s", name, len(data), created.Id)
	return url, nil
}
