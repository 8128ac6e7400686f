// Package sftpsource serves ingestion files from the acquirer's SFTP
// drop zone.
package sftpsource

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"github.com/acquirex/reconcile/config"
	"github.com/acquirex/reconcile/pkg/ingest"
)

// Source lists and fetches files over one SFTP session.
type Source struct {
	cnf    config.SourceConfig
	conn   *ssh.Client
	client *sftp.Client
}

// Connect dials the drop zone and opens an SFTP session.
func Connect(cnf config.SourceConfig) (*Source, error) {
	sshCfg := &ssh.ClientConfig{
		User: cnf.User,
		Auth: []ssh.AuthMethod{ssh.Password(cnf.Password)},
		// The drop zone is an internal host reached over a private
		// link; its key is not pinned.
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
	}
	conn, err := ssh.Dial("tcp", fmt.Sprintf("%s:%d", cnf.Host, cnf.Port), sshCfg)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", cnf.Host, err)
	}
	client, err := sftp.NewClient(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("opening sftp session: %w", err)
	}
	return &Source{cnf: cnf, conn: conn, client: client}, nil
}

// Close tears down the session and the underlying connection.
func (s *Source) Close() error {
	if err := s.client.Close(); err != nil {
		s.conn.Close()
		return err
	}
	return s.conn.Close()
}

// List implements ingest.Lister.
func (s *Source) List(_ context.Context) ([]ingest.FileInfo, error) {
	entries, err := s.client.ReadDir(s.cnf.RemoteDir)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", s.cnf.RemoteDir, err)
	}
	var out []ingest.FileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		out = append(out, ingest.FileInfo{
			Name:         entry.Name(),
			Path:         path.Join(s.cnf.RemoteDir, entry.Name()),
			IsCompressed: strings.HasSuffix(entry.Name(), ".gz"),
			Size:         entry.Size(),
		})
	}
	return out, nil
}

// Fetch implements ingest.Fetcher.
func (s *Source) Fetch(_ context.Context, remotePath string) ([]byte, error) {
	f, err := s.client.Open(remotePath)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", remotePath, err)
	}
	defer f.Close()
	return io.ReadAll(f)
}
