// Package models defines the records exchanged with the Vimesta backend and
// kept in the local client database.
package models

import (
	"strings"
	"time"
)

// File kinds reported by the backend in File.FileType.
const (
	FileTypeImage    = "image"
	FileTypeVideo    = "video"
	FileTypeAudio    = "audio"
	FileTypeDocument = "document"
	FileTypeOther    = "other"
)

var FileTypes = []string{FileTypeImage, FileTypeVideo, FileTypeAudio, FileTypeDocument, FileTypeOther}

var extTypes = map[string]string{}

func init() {
	for t, exts := range map[string][]string{
		FileTypeImage:    {"jpg", "jpeg", "png", "gif", "bmp", "webp", "svg", "ico"},
		FileTypeVideo:    {"mp4", "avi", "mkv", "mov", "webm", "flv", "3gp"},
		FileTypeAudio:    {"mp3", "wav", "ogg", "flac", "m4a", "aac"},
		FileTypeDocument: {"pdf", "doc", "docx", "txt", "xlsx", "xls", "pptx", "ppt", "csv"},
	} {
		for _, e := range exts {
			extTypes[e] = t
		}
	}
}

// FileTypeOf classifies a filename by extension the same way the backend does.
func FileTypeOf(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return FileTypeOther
	}
	if t, ok := extTypes[strings.ToLower(name[i+1:])]; ok {
		return t
	}
	return FileTypeOther
}

// IsFileType reports whether s is one of the known file kinds.
func IsFileType(s string) bool {
	for _, t := range FileTypes {
		if t == s {
			return true
		}
	}
	return false
}

// File is a stored file as listed by /files/list.
type File struct {
	ID               string `json:"id"`
	OriginalFilename string `json:"original_filename"`
	FileSize         int64  `json:"file_size"`
	FileType         string `json:"file_type,omitempty"`
	MimeType         string `json:"mime_type,omitempty"`
	UploadDate       string `json:"upload_date,omitempty"`
	IsPublic         bool   `json:"is_public"`
	PublicLinkHash   string `json:"public_link_hash,omitempty"`
	DownloadCount    int    `json:"download_count"`
	PreviewURL       string `json:"preview_url,omitempty"`
}

// UploadResult is what a transport returns for a finished upload. File is
// set when the backend registered the upload; Key and Location are set by
// transports that write to object storage directly.
type UploadResult struct {
	File     *File  `json:"file,omitempty"`
	Key      string `json:"key,omitempty"`
	Location string `json:"location,omitempty"`
}

// RemoteID returns the identifier the upload is known by remotely.
func (r *UploadResult) RemoteID() string {
	if r == nil {
		return ""
	}
	if r.File != nil && r.File.ID != "" {
		return r.File.ID
	}
	return r.Key
}

// DownloadLink is the answer of /files/{id}/download.
type DownloadLink struct {
	URL      string `json:"download_url"`
	Filename string `json:"filename"`
}

// SharedFile is a publicly shared file resolved by its link hash.
type SharedFile struct {
	Filename    string `json:"filename"`
	Size        int64  `json:"size"`
	DownloadURL string `json:"download_url"`
}

// UploadRecord is one finished upload kept in the local history.
type UploadRecord struct {
	ID         string
	Filename   string
	Size       int64
	FolderID   string
	Status     string
	Message    string
	RemoteID   string
	FinishedAt time.Time
}
