package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"flightlink-service/internal/domain/entity"
	"flightlink-service/internal/domain/repository"
)

// LinkHeader is the header row of the link log
var LinkHeader = []string{"Id", "URL"}

// CSVLinkRepository implements LinkRepository on a two column CSV file.
// Failed links are written with an empty URL cell.
type CSVLinkRepository struct {
	mu  sync.Mutex
	out *csvAppender
}

// NewCSVLinkRepository opens the link log at path, truncating it when fresh is set
func NewCSVLinkRepository(path string, fresh bool) (repository.LinkRepository, error) {
	out, err := openCSVAppender(path, LinkHeader, fresh)
	if err != nil {
		return nil, err
	}
	return &CSVLinkRepository{out: out}, nil
}

// Append writes link with id = row count - 1
func (r *CSVLinkRepository) Append(ctx context.Context, link *entity.CapturedLink) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := int64(r.out.rows - 1)
	url := link.URL
	if link.Status == entity.LinkFailed {
		url = ""
	}
	if err := r.out.write([]string{strconv.FormatInt(id, 10), url}); err != nil {
		return err
	}
	link.ID = id
	return nil
}

// List reads every link back in file order
func (r *CSVLinkRepository) List(ctx context.Context) ([]*entity.CapturedLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := readCSV(r.out.path)
	if err != nil {
		return nil, err
	}

	links := make([]*entity.CapturedLink, 0, len(rows))
	for i, row := range rows {
		if i == 0 || len(row) == 0 {
			continue
		}
		id, err := strconv.ParseInt(strings.TrimSpace(row[0]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: bad id %q", r.out.path, i+1, row[0])
		}
		link := &entity.CapturedLink{ID: id, Status: entity.LinkFailed}
		if len(row) > 1 && strings.TrimSpace(row[1]) != "" {
			link.URL = strings.TrimSpace(row[1])
			link.Status = entity.LinkCaptured
		}
		links = append(links, link)
	}
	return links, nil
}

// Close releases the file and its lock
func (r *CSVLinkRepository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.out.close()
}
