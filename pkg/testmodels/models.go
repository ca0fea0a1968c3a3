package testmodels

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/bitechdev/QuerySpec/pkg/modelregistry"
)

// User is an account that writes posts and comments.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u" gorm:"-" json:"-"`

	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement" bun:"id,pk,autoincrement"`
	Name      string    `json:"name" gorm:"column:name" bun:"name"`
	Email     string    `json:"email" gorm:"column:email;uniqueIndex" bun:"email,unique"`
	Role      string    `json:"role" gorm:"column:role" bun:"role"`
	Age       int       `json:"age" gorm:"column:age" bun:"age"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at" bun:"created_at"`

	// Relations
	Posts []*Post `json:"posts,omitempty" gorm:"foreignKey:UserID;references:ID" bun:"rel:has-many,join:id=user_id"`
}

func (User) TableName() string {
	return "users"
}

// Post is an article written by a user.
type Post struct {
	bun.BaseModel `bun:"table:posts,alias:p" gorm:"-" json:"-"`

	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement" bun:"id,pk,autoincrement"`
	UserID    int64     `json:"user_id" gorm:"column:user_id;index" bun:"user_id"`
	Title     string    `json:"title" gorm:"column:title" bun:"title"`
	Body      string    `json:"body" gorm:"column:body" bun:"body"`
	Status    string    `json:"status" gorm:"column:status" bun:"status"`
	Views     int       `json:"views" gorm:"column:views" bun:"views"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at" bun:"created_at"`

	// Relations
	User     *User      `json:"user,omitempty" gorm:"foreignKey:UserID;references:ID" bun:"rel:belongs-to,join:user_id=id"`
	Comments []*Comment `json:"comments,omitempty" gorm:"foreignKey:PostID;references:ID" bun:"rel:has-many,join:id=post_id"`
}

func (Post) TableName() string {
	return "posts"
}

// Comment is a reply to a post.
type Comment struct {
	bun.BaseModel `bun:"table:comments,alias:c" gorm:"-" json:"-"`

	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement" bun:"id,pk,autoincrement"`
	PostID    int64     `json:"post_id" gorm:"column:post_id;index" bun:"post_id"`
	UserID    int64     `json:"user_id" gorm:"column:user_id" bun:"user_id"`
	Body      string    `json:"body" gorm:"column:body" bun:"body"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at" bun:"created_at"`

	// Relations
	Post *Post `json:"post,omitempty" gorm:"foreignKey:PostID;references:ID" bun:"rel:belongs-to,join:post_id=id"`
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID;references:ID" bun:"rel:belongs-to,join:user_id=id"`
}

func (Comment) TableName() string {
	return "comments"
}

// RegisterTestModels registers all test models with the provided registry
func RegisterTestModels(registry *modelregistry.DefaultModelRegistry) {
	for name, model := range map[string]interface{}{
		"users":    User{},
		"posts":    Post{},
		"comments": Comment{},
	} {
		_ = registry.RegisterModel(name, model)
	}
}

// GetTestModels returns a list of all test model instances
func GetTestModels() []interface{} {
	return []interface{}{
		User{},
		Post{},
		Comment{},
	}
}
