package socialservice

import (
	"database/sql"
	"log/slog"

	"github.com/sushihentaime/blogverse/internal/common"
)

type Relation string

const (
	RelationLikes     Relation = "likes"
	RelationFollowing Relation = "following"
	RelationBookmarks Relation = "bookmarks"
)

// relationTable describes the join table holding one relation. The owner row is locked for
// the duration of a toggle.
type relationTable struct {
	table       string
	ownerCol    string
	targetCol   string
	ownerTable  string
	targetTable string
	targetFKey  string
}

var relations = map[Relation]relationTable{
	RelationLikes: {
		table: "blog_likes", ownerCol: "blog_id", targetCol: "user_id",
		ownerTable: "blogs", targetTable: "users", targetFKey: "blog_likes_user_id_fkey",
	},
	RelationFollowing: {
		table: "follows", ownerCol: "follower_id", targetCol: "following_id",
		ownerTable: "users", targetTable: "users", targetFKey: "follows_following_id_fkey",
	},
	RelationBookmarks: {
		table: "bookmarks", ownerCol: "user_id", targetCol: "blog_id",
		ownerTable: "users", targetTable: "blogs", targetFKey: "bookmarks_blog_id_fkey",
	},
}

// ToggleResult reports the state of the edge after a toggle together with the owner's
// relation set.
type ToggleResult struct {
	Relation Relation `json:"relation"`
	OwnerID  int      `json:"ownerId"`
	TargetID int      `json:"targetId"`
	Active   bool     `json:"active"`
	Members  []int    `json:"members"`
}

// Member is the public view of a user in follower and following lists.
type Member struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	Bio    string `json:"bio"`
}

type SocialModel struct {
	db *sql.DB
}

type SocialService struct {
	m      *SocialModel
	mb     common.MessageProducer
	logger *slog.Logger
}
