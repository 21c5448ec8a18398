// Package gcp wraps the Google Cloud clients used by the provisioning
// lifecycle behind small interfaces so the lifecycle logic is testable
// without real cloud access.
package gcp

import (
	"context"
	"os"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"

	apperrors "github.com/wajahatashraf/gcp-setup/internal/errors"
)

// cloudPlatformScope covers every API this tool calls.
const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// Credentials is an authenticated service-account credential handle usable
// by all cloud clients.
type Credentials struct {
	path  string
	creds *google.Credentials
}

// LoadCredentials reads and validates a service-account key file.
// A missing file yields CREDENTIAL_NOT_FOUND; a file that cannot be parsed
// as a key yields CREDENTIAL_INVALID. Both are fatal for the invoking
// command.
func LoadCredentials(ctx context.Context, path string) (*Credentials, error) {
	if path == "" {
		return nil, apperrors.ErrCredentialNotFound("(not provided)", nil)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.ErrCredentialNotFound(path, err)
		}
		return nil, apperrors.ErrCredentialInvalid(path, err)
	}

	creds, err := google.CredentialsFromJSON(ctx, data, cloudPlatformScope)
	if err != nil {
		return nil, apperrors.ErrCredentialInvalid(path, err)
	}

	return &Credentials{path: path, creds: creds}, nil
}

// ProjectID returns the project recorded in the key file, which may be
// empty for user credentials.
func (c *Credentials) ProjectID() string {
	return c.creds.ProjectID
}

// Path returns the key file the credentials were loaded from.
func (c *Credentials) Path() string {
	return c.path
}

// ClientOptions returns the options every cloud client constructor needs.
func (c *Credentials) ClientOptions() []option.ClientOption {
	return []option.ClientOption{option.WithCredentials(c.creds)}
}
