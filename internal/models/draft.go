package models

import "time"

// Draft is a per-user markdown autosave document (MongoDB).
// One document per (user, draft key); overwritten on every save.
type Draft struct {
	UserID   string    `bson:"user_id" json:"user_id"`
	DraftKey string    `bson:"draft_key" json:"draft_key"`
	Content  string    `bson:"content" json:"content"`
	SavedAt  time.Time `bson:"saved_at" json:"saved_at"`
}

type SaveDraftRequest struct {
	DraftKey string `json:"draft_key" validate:"required,min=1,max=120"`
	Content  string `json:"content" validate:"max=100000"`
}
