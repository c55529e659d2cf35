package store

import (
	"database/sql"
	"time"

	"github.com/datallboy/rangefetch/internal/domain"
)

// downloadDBO mirrors a row of the downloads table.
type downloadDBO struct {
	ID             string
	URL            string
	Host           string
	Port           int
	Path           string
	Output         string
	Status         string
	DeclaredLength int64
	BytesReceived  int64
	Requests       int
	SHA256         sql.NullString
	Error          sql.NullString
	StartedAt      int64
	FinishedAt     int64
}

func toDownloadDBO(r *domain.DownloadRecord) downloadDBO {
	d := downloadDBO{
		ID:             r.ID,
		URL:            r.URL,
		Host:           r.Endpoint.Host,
		Port:           int(r.Endpoint.Port),
		Path:           r.Endpoint.Path,
		Output:         r.Output,
		Status:         string(r.Status),
		DeclaredLength: r.DeclaredLength,
		BytesReceived:  r.BytesReceived,
		Requests:       r.Requests,
		SHA256:         sql.NullString{String: r.SHA256, Valid: r.SHA256 != ""},
		Error:          sql.NullString{String: r.Error, Valid: r.Error != ""},
		StartedAt:      r.StartedAt.UnixNano(),
	}
	if !r.FinishedAt.IsZero() {
		d.FinishedAt = r.FinishedAt.UnixNano()
	}
	return d
}

func (d downloadDBO) toDomain() *domain.DownloadRecord {
	r := &domain.DownloadRecord{
		ID:  d.ID,
		URL: d.URL,
		Endpoint: domain.Endpoint{
			Host: d.Host,
			Port: uint16(d.Port),
			Path: d.Path,
		},
		Output:         d.Output,
		Status:         domain.DownloadStatus(d.Status),
		DeclaredLength: d.DeclaredLength,
		BytesReceived:  d.BytesReceived,
		Requests:       d.Requests,
		SHA256:         d.SHA256.String,
		Error:          d.Error.String,
		StartedAt:      time.Unix(0, d.StartedAt),
	}
	if d.FinishedAt != 0 {
		r.FinishedAt = time.Unix(0, d.FinishedAt)
	}
	return r
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDownload(row rowScanner) (*domain.DownloadRecord, error) {
	var d downloadDBO
	err := row.Scan(
		&d.ID, &d.URL, &d.Host, &d.Port, &d.Path, &d.Output, &d.Status,
		&d.DeclaredLength, &d.BytesReceived, &d.Requests,
		&d.SHA256, &d.Error, &d.StartedAt, &d.FinishedAt,
	)
	if err != nil {
		return nil, err
	}
	return d.toDomain(), nil
}
