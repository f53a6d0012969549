package commentservice

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/sushihentaime/blogverse/internal/common"
)

const MaxCommentLength = 1000

// Removal tells how a comment was removed.
type Removal string

const (
	RemovalDeleted Removal = "deleted"
	RemovalHidden  Removal = "hidden"
)

type Author struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

type Comment struct {
	ID        int       `json:"id"`
	BlogID    int       `json:"blog"`
	Author    Author    `json:"author"`
	Text      string    `json:"comment"`
	ParentID  *int      `json:"parentComment"`
	IsHidden  bool      `json:"isHidden"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Thread is a top-level comment with its direct replies, oldest reply first.
type Thread struct {
	Comment
	Replies []Comment `json:"replies"`
}

type CommentModel struct {
	db *sql.DB
}

type CommentService struct {
	m      *CommentModel
	mb     common.MessageProducer
	logger *slog.Logger
}
