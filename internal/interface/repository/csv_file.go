package repository

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/gofrs/flock"
)

// csvAppender is a single-writer, append-only CSV file guarded by a lock file
type csvAppender struct {
	path   string
	lock   *flock.Flock
	file   *os.File
	writer *csv.Writer
	rows   int
}

// openCSVAppender locks path, truncates it when fresh is set and writes the
// header when the file is empty. rows counts every line, header included.
func openCSVAppender(path string, header []string, fresh bool) (*csvAppender, error) {
	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("%s is locked by another writer", path)
	}

	rows := 0
	if !fresh {
		rows, err = countCSVRows(path)
		if err != nil {
			lock.Unlock()
			return nil, err
		}
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_APPEND
	if fresh {
		flags = os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	}
	file, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		lock.Unlock()
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	a := &csvAppender{
		path:   path,
		lock:   lock,
		file:   file,
		writer: csv.NewWriter(file),
		rows:   rows,
	}
	if rows == 0 {
		if err := a.write(header); err != nil {
			a.close()
			return nil, err
		}
	}
	return a, nil
}

func (a *csvAppender) write(rows ...[]string) error {
	for _, row := range rows {
		if err := a.writer.Write(row); err != nil {
			return fmt.Errorf("write %s: %w", a.path, err)
		}
	}
	a.writer.Flush()
	if err := a.writer.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", a.path, err)
	}
	if err := a.file.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", a.path, err)
	}
	a.rows += len(rows)
	return nil
}

func (a *csvAppender) close() error {
	err := a.file.Close()
	if uerr := a.lock.Unlock(); err == nil {
		err = uerr
	}
	return err
}

func countCSVRows(path string) (int, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	n := 0
	for {
		_, err := r.Read()
		if err == io.EOF {
			return n, nil
		}
		if err != nil {
			return 0, fmt.Errorf("read %s: %w", path, err)
		}
		n++
	}
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	return r.ReadAll()
}
