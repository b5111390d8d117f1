package domain

// Credentials are the login credentials for the remote endpoint.
type Credentials struct {
	Email    string
	Password string
}

// IsSet returns true when both email and password are present.
func (c Credentials) IsSet() bool {
	return c.Email != "" && c.Password != ""
}

// UploadRequest asks the uploader to send export files.
type UploadRequest struct {
	// Files are the paths to upload, in order.
	Files []string

	// Token is an explicitly supplied API token. It takes precedence over
	// the cache and is never refreshed.
	Token string

	// Credentials are used to log in when no token is available.
	Credentials Credentials
}

// PayloadFile is one file inside an upload payload.
type PayloadFile struct {
	Name    string
	Content []byte
}

// Payload is the content sent to the remote, with its fingerprint.
type Payload struct {
	Files []PayloadFile
	Hash  string
}

// Remote response statuses.
const (
	RemoteStatusOK      = "ok"
	RemoteStatusSkipped = "skipped"
)

// RemoteResponse is what the remote answered for an accepted upload.
type RemoteResponse struct {
	Status      string `json:"status"`
	Reason      string `json:"reason,omitempty"`
	Message     string `json:"message,omitempty"`
	PayloadHash string `json:"payloadHash,omitempty"`
}

// UploadResult is the outcome of an upload.
type UploadResult struct {
	Skipped     bool
	Reason      string
	Status      string
	PayloadHash string
	Message     string
}
