package socialservice

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/sushihentaime/blogverse/internal/common"
)

var (
	ErrSelfFollow      = fmt.Errorf("%w: you cannot follow yourself", common.ErrInvalidOperation)
	ErrUnknownRelation = fmt.Errorf("%w: unknown relation", common.ErrInvalidOperation)
)

func NewSocialService(db *sql.DB, mb common.MessageProducer, logger *slog.Logger) *SocialService {
	return &SocialService{
		m:      newSocialModel(db),
		mb:     mb,
		logger: logger,
	}
}

// Toggle removes the edge owner -> target when present and adds it otherwise. The actor must
// be the user on the required side of the edge: the liker for likes, the owner for following
// and bookmarks. The edge change, the like counter and the returned relation set are read
// and written in one transaction.
func (s *SocialService) Toggle(ctx context.Context, rel Relation, ownerID, targetID, actorID int) (*ToggleResult, error) {
	t, ok := relations[rel]
	if !ok {
		return nil, ErrUnknownRelation
	}

	v := common.NewValidator()
	common.ValidateID(v, ownerID, "owner_id")
	common.ValidateID(v, targetID, "target_id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	switch rel {
	case RelationLikes:
		if actorID != targetID {
			return nil, common.ErrForbidden
		}
	default:
		if actorID != ownerID {
			return nil, common.ErrForbidden
		}
	}

	if rel == RelationFollowing && ownerID == targetID {
		return nil, ErrSelfFollow
	}

	tx, err := s.m.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	result, err := s.toggle(tx, ctx, rel, t, ownerID, targetID)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	if rel == RelationFollowing && result.Active {
		s.notifyFollow(ctx, ownerID, targetID)
	}

	return result, nil
}

func (s *SocialService) toggle(tx *sql.Tx, ctx context.Context, rel Relation, t relationTable, ownerID, targetID int) (*ToggleResult, error) {
	if err := s.m.lockOwner(tx, ctx, t, ownerID); err != nil {
		return nil, err
	}

	exists, err := s.m.targetExists(tx, ctx, t, targetID)
	if err != nil {
		return nil, err
	}

	if !exists {
		return nil, common.ErrRecordNotFound
	}

	removed, err := s.m.removeEdge(tx, ctx, t, ownerID, targetID)
	if err != nil {
		return nil, err
	}

	if !removed {
		if err := s.m.addEdge(tx, ctx, t, ownerID, targetID); err != nil {
			return nil, err
		}
	}

	if rel == RelationLikes {
		delta := 1
		if removed {
			delta = -1
		}

		if err := s.m.adjustLikeCount(tx, ctx, ownerID, delta); err != nil {
			return nil, err
		}
	}

	members, err := s.m.members(tx, ctx, t, ownerID)
	if err != nil {
		return nil, err
	}

	return &ToggleResult{
		Relation: rel,
		OwnerID:  ownerID,
		TargetID: targetID,
		Active:   !removed,
		Members:  members,
	}, nil
}

// ToggleLike likes or unlikes a blog on behalf of userID.
func (s *SocialService) ToggleLike(ctx context.Context, blogID, userID int) (*ToggleResult, error) {
	return s.Toggle(ctx, RelationLikes, blogID, userID, userID)
}

// ToggleFollow makes actorID follow or unfollow userID.
func (s *SocialService) ToggleFollow(ctx context.Context, actorID, userID int) (*ToggleResult, error) {
	return s.Toggle(ctx, RelationFollowing, actorID, userID, actorID)
}

// ToggleBookmark adds or removes blogID from actorID's bookmarks.
func (s *SocialService) ToggleBookmark(ctx context.Context, actorID, blogID int) (*ToggleResult, error) {
	return s.Toggle(ctx, RelationBookmarks, actorID, blogID, actorID)
}

func (s *SocialService) Followers(ctx context.Context, userID int) ([]Member, error) {
	return s.listMembers(ctx, userID, true)
}

func (s *SocialService) Following(ctx context.Context, userID int) ([]Member, error) {
	return s.listMembers(ctx, userID, false)
}

func (s *SocialService) listMembers(ctx context.Context, userID int, followers bool) ([]Member, error) {
	v := common.NewValidator()
	common.ValidateID(v, userID, "id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	exists, err := s.m.userExists(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !exists {
		return nil, common.ErrRecordNotFound
	}

	return s.m.listMembers(ctx, userID, followers)
}

// BookmarkIDs returns the ids of userID's bookmarks, most recent first.
func (s *SocialService) BookmarkIDs(ctx context.Context, userID int) ([]int, error) {
	v := common.NewValidator()
	common.ValidateID(v, userID, "id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	return s.m.bookmarkIDs(ctx, userID)
}

func (s *SocialService) notifyFollow(ctx context.Context, followerID, followingID int) {
	c, err := s.m.getFollowContact(ctx, followerID, followingID)
	if err == nil {
		err = common.PublishNotification(ctx, s.mb, common.UserFollowedKey, common.Notification{
			Email: c.email,
			Data:  map[string]string{"Name": c.name, "FollowerName": c.followerName},
		})
	}

	if err != nil && s.logger != nil {
		s.logger.Error("could not publish follow notification", slog.Int("follower_id", followerID), slog.String("error", err.Error()))
	}
}
