package domain

import "context"

// BackupJob is one invocation's configuration. It is not modified after parsing.
type BackupJob struct {
	BucketName    string
	Prefix        *string
	Folders       []string
	AddTimestamp  bool
	Recipients    []string
	RetentionDays int
}

// Archive is a transient zip file produced for a single folder.
type Archive struct {
	Path       string
	ScratchDir string
	SourceDir  string
	FolderName string
}

// UploadRecord is the outcome of one folder's backup attempt.
type UploadRecord struct {
	Folder      string
	ArchivePath string
	Bucket      string
	RemoteName  string
	Success     bool
	Err         error
}

type BackupExecutor interface {
	Execute(ctx context.Context, job BackupJob) (*Report, error)
}

// Report collects the ordered upload records of a completed run.
type Report struct {
	Bucket  string
	Records []UploadRecord
}

func (r *Report) Failed() int {
	n := 0
	for _, rec := range r.Records {
		if !rec.Success {
			n++
		}
	}
	return n
}
