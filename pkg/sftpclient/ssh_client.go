package sftpclient

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

const dialTimeout = 30 * time.Second

// HostKeyPolicy returns the host key verification callback for outgoing
// connections. With verification disabled any server key is accepted;
// otherwise keys are checked against the given known_hosts file, which must
// exist. A leading ~ in the path is expanded.
func HostKeyPolicy(disabled bool, knownHostsPath string) (ssh.HostKeyCallback, error) {
	if disabled {
		return ssh.InsecureIgnoreHostKey(), nil
	}

	if knownHostsPath == "" {
		return nil, errors.New("host key verification enabled but no known_hosts file configured")
	}

	expanded, err := homedir.Expand(knownHostsPath)
	if err != nil {
		return nil, fmt.Errorf("expand known_hosts path: %w", err)
	}
	if _, err := os.Stat(expanded); err != nil {
		return nil, fmt.Errorf("known_hosts file %s: %w", knownHostsPath, err)
	}

	callback, err := knownhosts.New(expanded)
	if err != nil {
		return nil, fmt.Errorf("load known_hosts: %w", err)
	}
	return callback, nil
}

// SSHClient opens SFTP sessions over SSH using password authentication.
type SSHClient struct {
	endpoint Endpoint
	hostKey  ssh.HostKeyCallback
}

func NewSSHClient(endpoint Endpoint, hostKey ssh.HostKeyCallback) *SSHClient {
	return &SSHClient{
		endpoint: endpoint,
		hostKey:  hostKey,
	}
}

func (c *SSHClient) OpenSession() (Session, error) {
	addr := net.JoinHostPort(c.endpoint.Host, strconv.Itoa(c.endpoint.Port))

	conn, err := ssh.Dial("tcp", addr, &ssh.ClientConfig{
		User:            c.endpoint.Username,
		Auth:            []ssh.AuthMethod{ssh.Password(c.endpoint.Password)},
		HostKeyCallback: c.hostKey,
		Timeout:         dialTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}

	client, err := sftp.NewClient(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open sftp subsystem on %s: %w", addr, err)
	}

	return &sshSession{conn: conn, sftp: client}, nil
}

type sshSession struct {
	conn *ssh.Client
	sftp *sftp.Client
}

func (s *sshSession) ListDir(path string) ([]Entry, error) {
	infos, err := s.sftp.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", path, err)
	}

	entries := make([]Entry, 0, len(infos))
	for _, fi := range infos {
		entries = append(entries, Entry{
			Name:    fi.Name(),
			Size:    fi.Size(),
			ModTime: fi.ModTime(),
			IsDir:   fi.IsDir(),
		})
	}
	return entries, nil
}

func (s *sshSession) Exists(path string) (bool, error) {
	_, err := s.sftp.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
	return true, nil
}

func (s *sshSession) Download(remotePath string, dst io.Writer) error {
	f, err := s.sftp.Open(remotePath)
	if err != nil {
		return fmt.Errorf("open remote %s: %w", remotePath, err)
	}
	defer f.Close()

	if _, err := io.Copy(dst, f); err != nil {
		return fmt.Errorf("read remote %s: %w", remotePath, err)
	}
	return nil
}

func (s *sshSession) Upload(src io.Reader, remotePath string) error {
	f, err := s.sftp.Create(remotePath)
	if err != nil {
		return fmt.Errorf("create remote %s: %w", remotePath, err)
	}

	if _, err := io.Copy(f, src); err != nil {
		f.Close()
		return fmt.Errorf("write remote %s: %w", remotePath, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close remote %s: %w", remotePath, err)
	}
	return nil
}

func (s *sshSession) Remove(remotePath string) error {
	if err := s.sftp.Remove(remotePath); err != nil {
		return fmt.Errorf("remove remote %s: %w", remotePath, err)
	}
	return nil
}

func (s *sshSession) MakeDir(path string) error {
	if err := s.sftp.Mkdir(path); err != nil {
		return fmt.Errorf("mkdir remote %s: %w", path, err)
	}
	return nil
}

func (s *sshSession) Close() error {
	sftpErr := s.sftp.Close()
	connErr := s.conn.Close()
	if sftpErr != nil {
		return sftpErr
	}
	return connErr
}
