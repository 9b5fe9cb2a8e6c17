// internal/site/content.go
//
// Structured site content and the partial-update patch.
//
// Context
// -------
// `Content` is the typed shape of the `site_data` JSON column: business
// info, weekly hours, ordered services, social handles, a color pair, and
// the ordered gallery URL list.  It is deliberately a closed schema, not
// an open map, so validation and round-trip behaviour are well-defined.
//
// `Patch` carries a partial save from the editor.  Scalar fields use
// pointers (nil = leave unchanged); list-valued fields (services, gallery,
// hours) are full-replace; the editor always submits the complete list it
// intends to persist, never a delta.  That keeps concurrent tabs at
// last-write-wins per submission instead of producing merged hybrids.
//
// Notes
// -----
// • Content implements driver.Valuer and sql.Scanner so sqlx can move it
//   through the JSON column without a helper type.
// • Validation tags are enforced by editor.Service before any write.
package site

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// Service is one bookable offering on a tenant's site.
type Service struct {
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description"`
	Duration    string  `json:"duration"`
	Price       float64 `json:"price" validate:"gte=0"`
}

// Social holds the tenant's social handles.  Empty strings mean "not set".
type Social struct {
	Instagram string `json:"instagram,omitempty"`
	Facebook  string `json:"facebook,omitempty"`
}

// Colors is the template's primary/secondary pair, hex strings.
type Colors struct {
	Primary   string `json:"primary,omitempty"`
	Secondary string `json:"secondary,omitempty"`
}

// Content is the full structured content object for one site.
type Content struct {
	BusinessName string            `json:"businessName" validate:"required"`
	Tagline      string            `json:"tagline"`
	Description  string            `json:"description"`
	Owner        string            `json:"owner"`
	Phone        string            `json:"phone"`
	Email        string            `json:"email" validate:"omitempty,email"`
	Address      string            `json:"address"`
	Hours        map[string]string `json:"hours"`
	Social       Social            `json:"social"`
	Services     []Service         `json:"services" validate:"dive"`
	Gallery      []string          `json:"gallery"`
	Colors       Colors            `json:"colors"`
}

// Value marshals Content for the JSON column.
func (c Content) Value() (driver.Value, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("site: marshal content: %w", err)
	}
	return b, nil
}

// Scan unmarshals the JSON column into Content.
func (c *Content) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, c)
	case string:
		return json.Unmarshal([]byte(v), c)
	case nil:
		*c = Content{}
		return nil
	default:
		return errors.New("site: unsupported site_data source type")
	}
}

// Patch is a partial content update.  Nil scalar pointers leave the stored
// value untouched; nil list fields leave the stored list untouched, while
// non-nil list fields replace the stored list wholesale.
type Patch struct {
	BusinessName *string           `json:"businessName,omitempty"`
	Tagline      *string           `json:"tagline,omitempty"`
	Description  *string           `json:"description,omitempty"`
	Owner        *string           `json:"owner,omitempty"`
	Phone        *string           `json:"phone,omitempty"`
	Email        *string           `json:"email,omitempty"`
	Address      *string           `json:"address,omitempty"`
	Hours        map[string]string `json:"hours,omitempty"`
	Social       *Social           `json:"social,omitempty"`
	Services     []Service         `json:"services,omitempty"`
	Gallery      []string          `json:"gallery,omitempty"`
	Colors       *Colors           `json:"colors,omitempty"`
}

// Apply merges p into c: scalar fields overwrite when set, list-valued
// fields replace wholesale when non-nil.
func (p Patch) Apply(c Content) Content {
	if p.BusinessName != nil {
		c.BusinessName = *p.BusinessName
	}
	if p.Tagline != nil {
		c.Tagline = *p.Tagline
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.Owner != nil {
		c.Owner = *p.Owner
	}
	if p.Phone != nil {
		c.Phone = *p.Phone
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.Address != nil {
		c.Address = *p.Address
	}
	if p.Hours != nil {
		c.Hours = p.Hours
	}
	if p.Social != nil {
		c.Social = *p.Social
	}
	if p.Services != nil {
		c.Services = p.Services
	}
	if p.Gallery != nil {
		c.Gallery = p.Gallery
	}
	if p.Colors != nil {
		c.Colors = *p.Colors
	}
	return c
}
