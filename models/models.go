package models

import (
	"time"

	"gorm.io/gorm"
)

// Role enum
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// ProjectStatus enum
type ProjectStatus string

const (
	StatusPending  ProjectStatus = "pending"
	StatusApproved ProjectStatus = "approved"
	StatusRejected ProjectStatus = "rejected"
)

// User model
type User struct {
	ID           string    `gorm:"primaryKey;column:id" json:"id"`
	PasswordHash string    `gorm:"column:password_hash;not null" json:"-"`
	Username     *string   `gorm:"column:username" json:"username,omitempty"`
	Name         string    `gorm:"column:name;size:55;not null" json:"name"`
	LastName     string    `gorm:"column:last_name;size:55;not null" json:"lastName"`
	Email        string    `gorm:"column:email;size:100;not null" json:"email"`
	IsConfirmed  bool      `gorm:"column:is_confirmed;not null;default:false" json:"isConfirmed"`
	Token        *string   `gorm:"column:token" json:"-"`
	Role         Role      `gorm:"column:role;not null;default:user" json:"role"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"createdAt"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = NewID()
	}
	return nil
}

// Summary returns the author info exposed alongside projects and comments.
func (u User) Summary() UserSummary {
	return UserSummary{
		ID:       u.ID,
		Name:     u.Name,
		LastName: u.LastName,
		Role:     u.Role,
	}
}

// UserSummary is the minimal author view serialized into broadcast payloads
type UserSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	LastName string `json:"lastName"`
	Role     Role   `json:"role"`
}

// Session model, one row per issued login. A socket connection's identity is
// resolved from the session id carried in the auth cookie.
type Session struct {
	ID        string    `gorm:"primaryKey;column:id" json:"id"`
	UserID    string    `gorm:"column:user_id;not null" json:"userId"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null" json:"expiresAt"`
}

func (Session) TableName() string {
	return "sessions"
}

// ThesisProject model
type ThesisProject struct {
	ID          string        `gorm:"primaryKey;column:id" json:"id"`
	Title       string        `gorm:"column:title;not null" json:"title"`
	Description string        `gorm:"column:description;not null" json:"description"`
	URLPdf      string        `gorm:"column:url_pdf;not null" json:"urlPdf"`
	URLImg      *string       `gorm:"column:url_img" json:"urlImg"`
	Status      ProjectStatus `gorm:"column:status;not null;default:pending" json:"status"`
	CreatedAt   time.Time     `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt   *time.Time    `gorm:"column:updated_at;autoUpdateTime:false" json:"updatedAt"`

	// author
	UserID string `gorm:"column:user_id;not null" json:"userId"`
}

func (ThesisProject) TableName() string {
	return "thesis_projects"
}

func (p *ThesisProject) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = NewID()
	}
	return nil
}

// CommitteeMember grants a non-author user review visibility into a project.
// The schema carries no uniqueness constraint on (userId, thesisProjectId).
type CommitteeMember struct {
	ID              string    `gorm:"primaryKey;column:id" json:"id"`
	UserID          string    `gorm:"column:user_id;not null" json:"userId"`
	ThesisProjectID string    `gorm:"column:thesis_project_id;not null" json:"thesisProjectId"`
	CreatedAt       time.Time `gorm:"column:created_at" json:"createdAt"`
}

func (CommitteeMember) TableName() string {
	return "committee_members"
}

func (m *CommitteeMember) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = NewID()
	}
	return nil
}

// Comment model. CommentParentID self-references for threaded replies; reads
// return a flat list and leave thread building to clients.
type Comment struct {
	ID              string    `gorm:"primaryKey;column:id" json:"id"`
	Content         string    `gorm:"column:content;not null" json:"content"`
	UserID          string    `gorm:"column:user_id;not null" json:"userId"`
	IsVisible       bool      `gorm:"column:is_visible;not null;default:true" json:"isVisible"`
	ThesisProjectID string    `gorm:"column:thesis_project_id;not null" json:"thesisProjectId"`
	CommentParentID *string   `gorm:"column:comment_parent_id" json:"commentParentId"`
	CreatedAt       time.Time `gorm:"column:created_at" json:"createdAt"`
}

func (Comment) TableName() string {
	return "comments"
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = NewID()
	}
	return nil
}

// UserLike model. A user may like a given project at most once.
type UserLike struct {
	ID              string    `gorm:"primaryKey;column:id" json:"id"`
	UserID          string    `gorm:"column:user_id;not null;uniqueIndex:idx_user_likes_user_project" json:"userId"`
	ThesisProjectID string    `gorm:"column:thesis_project_id;not null;uniqueIndex:idx_user_likes_user_project" json:"thesisProjectId"`
	CreatedAt       time.Time `gorm:"column:created_at" json:"createdAt"`
}

func (UserLike) TableName() string {
	return "user_likes"
}

func (l *UserLike) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = NewID()
	}
	return nil
}
