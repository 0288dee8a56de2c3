package access

import (
	"errors"

	"community-app/internal/domain/groups"
	"community-app/internal/domain/users"

	"gorm.io/gorm"
)

/*
	Group access policy
	-------------------
	- Responsible ONLY for answering "who may do what" against a group.
	- The Members row is the sole membership signal; no billing state is
	  consulted here.
*/

type Level string

const (
	LevelNone   Level = "none"
	LevelMember Level = "member"
	LevelOwner  Level = "owner"
	LevelAdmin  Level = "admin"
)

// LevelFor computes the caller's access level for a group.
func LevelFor(db *gorm.DB, userID uint, role string, g *groups.Group) (Level, error) {
	if role == users.RoleAdmin {
		return LevelAdmin, nil
	}
	if g.OwnerID == userID {
		return LevelOwner, nil
	}

	var member groups.Member
	err := db.Where("user_id = ? AND group_id = ?", userID, g.ID).First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LevelNone, nil
		}
		return LevelNone, err
	}
	return LevelMember, nil
}

// CanView reports whether the caller may read group content
// (courses, channels, member lists).
func (l Level) CanView() bool {
	return l != LevelNone
}

// CanManage reports whether the caller may mutate group content
// (plans, channels, courses, group settings).
func (l Level) CanManage() bool {
	return l == LevelOwner || l == LevelAdmin
}
