package model

import "time"

const UserTableName = "users"

// User is the user master record. Only the fields the realtime core reads
// or writes are modeled here; profile editing, auth and media live in other
// services and may extend this document freely.
type User struct {
	UserID       string `bson:"user_id" json:"userId"`
	Name         string `bson:"name" json:"name"`
	UserName     string `bson:"user_name" json:"userName"`
	ProfileImage string `bson:"profile_image,omitempty" json:"profileImage,omitempty"`

	// Follow graph. Followers is read once at upload time to resolve the
	// fan-out receiver set.
	Followers []string `bson:"followers" json:"followers"`
	Following []string `bson:"following" json:"following"`

	// Online status record: durable mirror of presence, written on every
	// attach/detach. Display only; allowed to lag the in-memory registry.
	IsOnline bool      `bson:"is_online" json:"isOnline"`
	LastSeen time.Time `bson:"last_seen,omitempty" json:"lastSeen,omitempty"`

	CreateTime time.Time `bson:"create_time" json:"createdAt"`
	UpdateTime time.Time `bson:"update_time" json:"updatedAt"`
}

func (*User) TableName() string { return UserTableName }
