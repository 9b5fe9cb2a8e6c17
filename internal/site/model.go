// internal/site/model.go
//
// `site` table row model.
//
// Context
// -------
// The `Record` struct mirrors one row in the persistent **site** table:
// one row per tenant, holding the tenant's chosen subdomain, template,
// the full structured content object (JSON column), and the publication
// flag.  A tenant with no row is "unprovisioned"; the first editor save
// creates the row with `is_published = 0`.
//
// Schema reference (2026-08-12)
//
//	CREATE TABLE site (
//	    tenant_id     CHAR(36)      PRIMARY KEY,
//	    subdomain     VARCHAR(20)   NOT NULL UNIQUE,
//	    template_id   VARCHAR(64)   NOT NULL DEFAULT 'classic',
//	    site_data     JSON          NOT NULL,
//	    is_published  TINYINT(1)    NOT NULL DEFAULT 0,
//	    created_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
//	    updated_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
//	                  ON UPDATE CURRENT_TIMESTAMP
//	);
//
// Notes
// -----
// • `site_data` scans through Content's driver.Valuer / sql.Scanner.
// • The UNIQUE index on `subdomain` backs the resolver lookup and is the
//   defensive backstop for creation-time collisions.
// • This struct contains no behaviour; pure data model for sqlx scans.
package site

import "time"

// Record mirrors one row in the `site` table.
type Record struct {
	TenantID    string    `db:"tenant_id"`
	Subdomain   string    `db:"subdomain"`
	TemplateID  string    `db:"template_id"`
	Content     Content   `db:"site_data"`
	IsPublished bool      `db:"is_published"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}
