package domain

// User is one participant inside a room. Its ID is the identifier of the
// websocket connection that created it, so it is unique per live connection.
type User struct {
	ID            string
	Name          string
	IsScrumMaster bool
	vote          *string
}

func NewUser(id, name string, isScrumMaster bool) *User {
	return &User{
		ID:            id,
		Name:          name,
		IsScrumMaster: isScrumMaster,
	}
}

// SubmitVote records an estimate for the current round. Values are opaque
// strings; no scale validation is applied.
func (u *User) SubmitVote(value string) {
	u.vote = &value
}

func (u *User) ClearVote() {
	u.vote = nil
}

// Vote returns the current vote, or nil if the user has not voted this round.
func (u *User) Vote() *string {
	return u.vote
}

func (u *User) HasVoted() bool {
	return u.vote != nil
}

// Snapshot returns the wire representation of the user. The vote pointer is
// copied so the snapshot never aliases entity state.
func (u *User) Snapshot() UserSnapshot {
	var vote *string
	if u.vote != nil {
		v := *u.vote
		vote = &v
	}
	return UserSnapshot{
		ID:            u.ID,
		Name:          u.Name,
		IsScrumMaster: u.IsScrumMaster,
		Vote:          vote,
	}
}

// UserSnapshot is the serialized form of a User, both the wire representation
// broadcast to clients and the embedded document stored per room member.
type UserSnapshot struct {
	ID            string  `json:"id" bson:"id"`
	Name          string  `json:"name" bson:"name"`
	IsScrumMaster bool    `json:"isScrumMaster" bson:"isScrumMaster"`
	Vote          *string `json:"vote" bson:"vote,omitempty"`
}

// Restore rebuilds a User from its stored snapshot.
func (s UserSnapshot) Restore() *User {
	u := NewUser(s.ID, s.Name, s.IsScrumMaster)
	if s.Vote != nil {
		u.SubmitVote(*s.Vote)
	}
	return u
}
