// Package pdf renders bills to PDF and keeps the rendered files on disk,
// one file per bill named after its bill number.
package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Nishank-123/biller/internal/model"
)

const ContentType = "application/pdf"

// ErrNotFound is returned by Store.Read when no PDF exists for a bill.
var ErrNotFound = errors.New("pdf not found")

var unsafeFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)

// SanitizeFilename strips characters that are unsafe in file names and
// replaces spaces with underscores.
func SanitizeFilename(name string) string {
	return strings.ReplaceAll(unsafeFilenameChars.ReplaceAllString(name, ""), " ", "_")
}

// DownloadName is the attachment name offered to clients,
// fabrication_bill_<customer>_<YYYYMMDD>.pdf.
func DownloadName(b *model.Bill) string {
	return fmt.Sprintf("fabrication_bill_%s_%s.pdf", SanitizeFilename(b.CustomerName), b.Date.Format("20060102"))
}

type Store struct {
	dir string
}

// NewStore creates dir if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating pdf directory %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) Dir() string {
	return s.dir
}

// Path is where the PDF of billNumber lives.
func (s *Store) Path(billNumber string) string {
	return filepath.Join(s.dir, filepath.Base(billNumber)+".pdf")
}

// Render writes the PDF of b, replacing any previous one. The file is written
// under a temporary name first so readers never see a partial document.
func (s *Store) Render(b *model.Bill) error {
	var buf bytes.Buffer
	if err := Write(&buf, b); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, b.BillNumber+"-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp pdf for bill %s: %w", b.BillNumber, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("writing pdf for bill %s: %w", b.BillNumber, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing pdf for bill %s: %w", b.BillNumber, err)
	}

	if err := os.Rename(tmp.Name(), s.Path(b.BillNumber)); err != nil {
		return fmt.Errorf("publishing pdf for bill %s: %w", b.BillNumber, err)
	}
	return nil
}

func (s *Store) Read(billNumber string) ([]byte, error) {
	data, err := os.ReadFile(s.Path(billNumber))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading pdf for bill %s: %w", billNumber, err)
	}
	return data, nil
}

// Remove deletes the PDF of billNumber. A missing file is not an error.
func (s *Store) Remove(billNumber string) error {
	err := os.Remove(s.Path(billNumber))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing pdf for bill %s: %w", billNumber, err)
	}
	return nil
}

// Check verifies the directory is still writable. Used by the health check.
func (s *Store) Check() error {
	f, err := os.CreateTemp(s.dir, ".health-*")
	if err != nil {
		return err
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}
