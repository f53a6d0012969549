package userservice

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/sushihentaime/blogverse/internal/common"
)

type tokenScope string

type Role string

const (
	RoleUser   Role = "user"
	RoleEditor Role = "editor"
	RoleAdmin  Role = "admin"

	TokenScopePasswordReset tokenScope = "password-reset"

	PasswordResetTokenTime time.Duration = 45 * time.Minute
)

var (
	AnonymousUser = User{}
)

type UserService struct {
	m      *DBModel
	mb     common.MessageProducer
	tokens *TokenManager
	logger *slog.Logger
}

type DBModel struct {
	db *sql.DB
}

type User struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  Password  `json:"-"`
	Role      Role      `json:"role"`
	Bio       string    `json:"bio"`
	Avatar    string    `json:"avatar"`
	Website   string    `json:"website"`
	Location  string    `json:"location"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Version   int       `json:"-"`
}

// Profile is a user together with its relation sets and aggregate counters.
type Profile struct {
	User
	Followers []int       `json:"followers"`
	Following []int       `json:"following"`
	Bookmarks []int       `json:"bookmarks"`
	Stats     ProfileStats `json:"stats"`
}

type ProfileStats struct {
	BlogCount      int   `json:"blogCount"`
	TotalViews     int64 `json:"totalViews"`
	TotalLikes     int64 `json:"totalLikes"`
	FollowerCount  int   `json:"followerCount"`
	FollowingCount int   `json:"followingCount"`
}

type Password struct {
	Plain string `json:"-"`
	hash  []byte `json:"-"`
}

// Token is a single-use token stored hashed in the tokens table.
type Token struct {
	Plain  string     `json:"token"`
	Hash   []byte     `json:"-"`
	UserID int        `json:"-"`
	Expiry time.Time  `json:"expiry"`
	Scope  tokenScope `json:"-"`
}

// AuthToken is a signed access token handed to clients.
type AuthToken struct {
	Token  string    `json:"token"`
	Expiry time.Time `json:"expiry"`
}

type UpdateProfileRequest struct {
	Name     *string `json:"name"`
	Bio      *string `json:"bio"`
	Avatar   *string `json:"avatar"`
	Website  *string `json:"website"`
	Location *string `json:"location"`
}
