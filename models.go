package storefront

import (
	"time"

	"github.com/uptrace/bun"
)

// User is the user model. Records are immutable once registered: there is no
// update or delete path in this API.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            int64      `bun:"id,pk,autoincrement" json:"id,omitempty"`
	Username      string     `bun:"username,notnull,unique" json:"username,omitempty"`
	PasswordHash  string     `bun:"password_hash,notnull" json:"-"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// Item is the item model. The name doubles as the primary key, matching the
// public URL space (/item/:name).
type Item struct {
	bun.BaseModel `bun:"table:items,alias:itm"`
	Name          string     `bun:"name,pk" json:"name"`
	Price         float64    `bun:"price,notnull" json:"price"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"-"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"-"`
}

// authIdentity adapts a stored user to the Identity the token layer consumes.
type authIdentity struct {
	id       int64
	username string
}

func (a authIdentity) ID() int64 {
	return a.id
}

func (a authIdentity) Username() string {
	return a.username
}

var _ Identity = authIdentity{}

// IdentityFromUser exposes a snapshot of user as an Identity.
func IdentityFromUser(user *User) Identity {
	if user == nil {
		return nil
	}
	return authIdentity{id: user.ID, username: user.Username}
}
