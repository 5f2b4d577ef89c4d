package sftpclient

import (
	"io"
	"time"
)

// Entry is a single directory listing entry as reported by the remote server.
type Entry struct {
	Name    string
	Size    int64
	ModTime time.Time
	IsDir   bool
}

// Session is an open connection against one SFTP endpoint. All calls are
// blocking; a Session is not safe for concurrent use.
type Session interface {
	ListDir(path string) ([]Entry, error)
	Exists(path string) (bool, error)
	Download(remotePath string, dst io.Writer) error
	Upload(src io.Reader, remotePath string) error
	Remove(remotePath string) error
	MakeDir(path string) error
	Close() error
}

// Client opens authenticated sessions against a single endpoint.
type Client interface {
	OpenSession() (Session, error)
}

// Endpoint identifies one SFTP server and the credentials used against it.
type Endpoint struct {
	Host     string
	Port     int
	Username string
	Password string
}
