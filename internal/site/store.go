// internal/site/store.go
//
// Typed read/write access to the `site` table.
//
// Context
// -------
// Store is the only code that touches `site` rows.  Reads come from the
// resolver/assembly path (`GetBySubdomain`) and the editor (`Get`); writes
// come from the editor (`Create`, `UpsertContent`) and the publication
// state machine (`SetPublished`).
//
// Workflow
// --------
//  1. Callers supply a *sqlx.DB connected to the platform database.
//  2. Each operation executes one parameterised statement; `UpsertContent`
//     reads, merges, and writes the full content object so a failed write
//     leaves the prior row intact.
//  3. Transient connection errors are retried exactly once, then wrapped
//     in ErrUnavailable so the HTTP layer can answer 503 instead of a
//     bogus "not found".
//
// Notes
// -----
//   - Driver errors are matched on the MySQL error number in the message
//     (1062 duplicate key), without importing driver-specific types.
//   - Oxford commas, two spaces after periods.
package site

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

// Sentinel errors for the store's failure taxonomy.
var (
	// ErrNotFound is returned when no site row exists for the given key.
	ErrNotFound = errors.New("site not found")

	// ErrConflict is returned when a create collides with an existing
	// subdomain owned by a different tenant.  Subdomain uniqueness is
	// enforced at assignment time, so hitting this is a defensive check,
	// not a normal flow.
	ErrConflict = errors.New("subdomain already in use")

	// ErrUnavailable wraps a transient store failure that survived one
	// retry.  Never collapsed into ErrNotFound.
	ErrUnavailable = errors.New("site store unavailable")
)

const siteColumns = `tenant_id, subdomain, template_id, site_data,
               is_published, created_at, updated_at`

// Store provides typed access to site rows.
type Store struct {
	db *sqlx.DB
}

// NewStore wraps an open database handle.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Get fetches the site row for one tenant.
func (s *Store) Get(ctx context.Context, tenantID string) (*Record, error) {
	const q = `
        SELECT ` + siteColumns + `
        FROM   site
        WHERE  tenant_id = ?
        LIMIT  1`
	var rec Record
	err := withRetry(func() error {
		return s.db.GetContext(ctx, &rec, q, tenantID)
	})
	if err != nil {
		return nil, mapReadErr(err)
	}
	return &rec, nil
}

// GetBySubdomain fetches the site row behind a resolved subdomain.  The
// secondary unique index on `subdomain` makes this a point lookup.
func (s *Store) GetBySubdomain(ctx context.Context, subdomain string) (*Record, error) {
	const q = `
        SELECT ` + siteColumns + `
        FROM   site
        WHERE  subdomain = ?
        LIMIT  1`
	var rec Record
	err := withRetry(func() error {
		return s.db.GetContext(ctx, &rec, q, subdomain)
	})
	if err != nil {
		return nil, mapReadErr(err)
	}
	return &rec, nil
}

// Create provisions the site row for a tenant.  Called exactly once, on
// the first editor save.  The row starts unpublished.
func (s *Store) Create(ctx context.Context, tenantID, subdomain, templateID string, content Content) error {
	const q = `
        INSERT INTO site (tenant_id, subdomain, template_id, site_data, is_published)
        VALUES (?, ?, ?, ?, 0)`
	err := withRetry(func() error {
		_, err := s.db.ExecContext(ctx, q, tenantID, subdomain, templateID, content)
		return err
	})
	if err != nil {
		if isDuplicateKey(err) {
			return ErrConflict
		}
		if isTransient(err) {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return err
	}
	return nil
}

// UpsertContent merges a partial save into the stored content object and
// persists the result.  Scalar fields merge, list-valued fields replace
// wholesale (see Patch).  Concurrent saves are last-write-wins at the
// granularity of one full submission; callers serialise list-mutating
// edits per tenant through locking.Keyed.
func (s *Store) UpsertContent(ctx context.Context, tenantID string, patch Patch) (*Record, error) {
	rec, err := s.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	rec.Content = patch.Apply(rec.Content)
	rec.UpdatedAt = time.Now()

	const q = `
        UPDATE site
        SET    site_data = ?, updated_at = NOW()
        WHERE  tenant_id = ?`
	err = withRetry(func() error {
		_, err := s.db.ExecContext(ctx, q, rec.Content, tenantID)
		return err
	})
	if err != nil {
		if isTransient(err) {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return nil, err
	}
	return rec, nil
}

// SetPublished flips the publication flag.  Idempotent: setting the flag
// to its current value is a no-op success.
func (s *Store) SetPublished(ctx context.Context, tenantID string, published bool) (*Record, error) {
	rec, err := s.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if rec.IsPublished == published {
		return rec, nil
	}

	const q = `
        UPDATE site
        SET    is_published = ?, updated_at = NOW()
        WHERE  tenant_id = ?`
	err = withRetry(func() error {
		_, err := s.db.ExecContext(ctx, q, published, tenantID)
		return err
	})
	if err != nil {
		if isTransient(err) {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return nil, err
	}
	rec.IsPublished = published
	rec.UpdatedAt = time.Now()
	return rec, nil
}

//
// error mapping
//

// mapReadErr converts driver errors from a point read into the store's
// taxonomy.
func mapReadErr(err error) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return ErrNotFound
	case isTransient(err):
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	default:
		return err
	}
}

// withRetry runs fn, retrying exactly once on a transient connection
// error.  Anything else is returned as-is.
func withRetry(fn func() error) error {
	err := fn()
	if err == nil || !isTransient(err) {
		return err
	}
	time.Sleep(100 * time.Millisecond)
	return fn()
}

// isDuplicateKey recognises MariaDB/MySQL error 1062 without importing
// driver-specific types.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "1062") || strings.Contains(msg, "Duplicate entry")
}

// isTransient recognises connection-level failures worth one retry.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "invalid connection") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "broken pipe")
}
