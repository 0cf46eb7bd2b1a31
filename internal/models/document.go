package models

type DocumentSource string

const (
	SourceUpload        DocumentSource = "upload"
	SourceDrive         DocumentSource = "drive"
	SourceObjectStorage DocumentSource = "object_storage"
)

// IngestedDocument is the extracted text of one resume. It lives for a
// single request and is dropped once the prompt is built.
type IngestedDocument struct {
	Text      string
	Source    DocumentSource
	Reference string
}

// ResumeInput carries every way a caller can hand over a resume. Exactly one
// of the upload, the Drive pair, or ObjectKey is expected to be set.
type ResumeInput struct {
	Data        []byte
	Filename    string
	ContentType string

	DriveFileID string
	AccessToken string

	ObjectKey string
}

func (r ResumeInput) HasUpload() bool {
	return r.Filename != "" || len(r.Data) > 0
}

func (r ResumeInput) HasDrive() bool {
	return r.DriveFileID != "" || r.AccessToken != ""
}

func (r ResumeInput) HasObjectKey() bool {
	return r.ObjectKey != ""
}
