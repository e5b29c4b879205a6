// internal/domain/models/context.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ContextType enumerates the lenses a signed-in user can act through.
type ContextType string

const (
	ContextUser         ContextType = "user"
	ContextOrganization ContextType = "organization"
	ContextTeam         ContextType = "team"
	ContextPartner      ContextType = "partner"
)

// Context is the sealed "acting-as" variant. Exactly one context is active
// at a time; the variant carries the id and display name of the acted-as
// entity. Team and partner contexts additionally carry the organization
// they belong to, mirroring the membership invariant.
type Context interface {
	ContextType() ContextType
	ContextID() primitive.ObjectID
	DisplayName() string

	sealedContext()
}

// UserContext is the lens every session starts in.
type UserContext struct {
	UserID primitive.ObjectID
	Email  string
	Name   string
}

func (c UserContext) ContextType() ContextType        { return ContextUser }
func (c UserContext) ContextID() primitive.ObjectID   { return c.UserID }
func (c UserContext) DisplayName() string             { return c.Name }
func (UserContext) sealedContext()                    {}

// OrganizationContext is the lens for acting as an organization.
type OrganizationContext struct {
	OrganizationID primitive.ObjectID
	Name           string
}

func (c OrganizationContext) ContextType() ContextType      { return ContextOrganization }
func (c OrganizationContext) ContextID() primitive.ObjectID { return c.OrganizationID }
func (c OrganizationContext) DisplayName() string           { return c.Name }
func (OrganizationContext) sealedContext()                  {}

// TeamContext is the lens for acting through a team membership. The
// organization id is required: a team always belongs to exactly one
// organization and that scope travels with the lens.
type TeamContext struct {
	TeamID         primitive.ObjectID
	OrganizationID primitive.ObjectID
	Name           string
}

func (c TeamContext) ContextType() ContextType      { return ContextTeam }
func (c TeamContext) ContextID() primitive.ObjectID { return c.TeamID }
func (c TeamContext) DisplayName() string           { return c.Name }
func (TeamContext) sealedContext()                  {}

// PartnerContext is the lens for acting through a partner membership.
type PartnerContext struct {
	PartnerID      primitive.ObjectID
	OrganizationID primitive.ObjectID
	Name           string
}

func (c PartnerContext) ContextType() ContextType      { return ContextPartner }
func (c PartnerContext) ContextID() primitive.ObjectID { return c.PartnerID }
func (c PartnerContext) DisplayName() string           { return c.Name }
func (PartnerContext) sealedContext()                  {}

// ContextSwitchEvent is one entry in the append-only switch history.
type ContextSwitchEvent struct {
	EventID    string             `json:"event_id"`
	Type       ContextType        `json:"type"`
	ContextID  primitive.ObjectID `json:"context_id"`
	SwitchedAt time.Time          `json:"switched_at"`
}
