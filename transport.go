package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/pkg/errors"
)

// Inbound is one message from a user. A non-empty Filename marks a document
// upload.
type Inbound struct {
	UserID   int64
	Text     string
	Filename string
	FileData []byte
}

// Outbound is one reply, optionally carrying a file attachment.
type Outbound struct {
	Text     string
	Filename string
	Data     []byte
}

// ChatTransport connects the bot to a messaging surface. Receive blocks until
// the next message arrives or the context is done; io.EOF ends the session.
type ChatTransport interface {
	Receive(ctx context.Context) (Inbound, error)
	Send(userID int64, out Outbound) error
}

// consoleTransport is the stdin/stdout surface. "/upload <path>" turns a local
// file into a document message; attachments on replies are written to outDir.
type consoleTransport struct {
	userID  int64
	scanner *bufio.Scanner
	out     io.Writer
	outDir  string
}

func newConsoleTransport(userID int64, outDir string) *consoleTransport {
	return &consoleTransport{
		userID:  userID,
		scanner: bufio.NewScanner(os.Stdin),
		out:     os.Stdout,
		outDir:  outDir,
	}
}

func (t *consoleTransport) Receive(ctx context.Context) (Inbound, error) {
	if err := ctx.Err(); err != nil {
		return Inbound{}, err
	}
	if !t.scanner.Scan() {
		if err := t.scanner.Err(); err != nil {
			return Inbound{}, errors.Wrap(err, "read console input")
		}
		return Inbound{}, io.EOF
	}
	line := strings.TrimSpace(t.scanner.Text())

	if path, ok := strings.CutPrefix(line, "/upload "); ok {
		path = strings.TrimSpace(path)
		data, err := os.ReadFile(path)
		if err != nil {
			return Inbound{}, errors.Wrapf(err, "upload %v", path)
		}
		return Inbound{
			UserID:   t.userID,
			Filename: filepath.Base(path),
			FileData: data,
		}, nil
	}
	return Inbound{UserID: t.userID, Text: line}, nil
}

func (t *consoleTransport) Send(userID int64, out Outbound) error {
	if out.Text != "" {
		color.New(color.FgGreen).Fprintln(t.out, out.Text)
	}
	if out.Filename == "" {
		return nil
	}
	path := filepath.Join(t.outDir, out.Filename)
	if err := os.WriteFile(path, out.Data, 0644); err != nil {
		return errors.Wrapf(err, "write attachment %v", out.Filename)
	}
	fmt.Fprintf(t.out, "[файл: %s]\n", path)
	return nil
}
