package debitnote

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ContentTypePDF is the media type of a delivered debit note.
const ContentTypePDF = "application/pdf"

// Artifact is a named document ready to be handed to the user.
type Artifact struct {
	Name        string
	ContentType string
	Body        []byte
}

// Deliverer hands a named document to the user: a browser download, a file
// on disk, or anything else that accepts bytes under a name.
type Deliverer interface {
	Deliver(ctx context.Context, a Artifact) error
}

// DelivererFunc adapts a function to the Deliverer interface.
type DelivererFunc func(ctx context.Context, a Artifact) error

// Deliver calls f(ctx, a).
func (f DelivererFunc) Deliver(ctx context.Context, a Artifact) error {
	return f(ctx, a)
}

// FileDeliverer writes artifacts into Dir, replacing any file of the same name.
type FileDeliverer struct {
	Dir string
}

// Path returns where an artifact named name would be written.
func (d FileDeliverer) Path(name string) string {
	return filepath.Join(d.Dir, SafeName(name))
}

// Deliver writes a.Body to Dir/a.Name through a temp file and rename, so a
// failed write never leaves a partial document behind.
func (d FileDeliverer) Deliver(ctx context.Context, a Artifact) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(d.Dir, ".debitnote-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(a.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", a.Name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", a.Name, err)
	}

	dest := d.Path(a.Name)
	if err := os.Rename(tmpName, dest); err != nil {
		return fmt.Errorf("rename to %s: %w", dest, err)
	}
	return nil
}

// SafeName replaces path separators so a vehicle registration such as
// "KAA/123A" cannot escape the output directory.
func SafeName(name string) string {
	name = strings.NewReplacer("/", "-", `\`, "-").Replace(name)
	if name == "" || name == "." || name == ".." {
		return "DebitNote.pdf"
	}
	return name
}
