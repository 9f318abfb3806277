package domain

import "time"

// ActiveWindow is the trailing window during which a room without users still
// counts as active, for cleanup and reporting.
const ActiveWindow = time.Hour

// Room is one estimation session. It owns its users exclusively and enforces
// membership uniqueness and facilitator gating; all mutation goes through the
// methods below so lastActivity stays current.
type Room struct {
	ID           string
	TeamName     string
	users        []*User
	showVotes    bool
	currentTask  *string
	lastActivity time.Time
}

func NewRoom(id, teamName string) *Room {
	return &Room{
		ID:           id,
		TeamName:     teamName,
		lastActivity: time.Now(),
	}
}

// AddUser appends a user to the room. Returns ErrUserExists if the id is
// already a member; the membership list is left unchanged in that case.
func (r *Room) AddUser(user *User) error {
	if r.FindUser(user.ID) != nil {
		return ErrUserExists
	}
	r.users = append(r.users, user)
	r.touch()
	return nil
}

// RemoveUser removes the user with the given id. Removing an absent user is a
// no-op, not an error.
func (r *Room) RemoveUser(userID string) {
	for i, u := range r.users {
		if u.ID == userID {
			r.users = append(r.users[:i], r.users[i+1:]...)
			break
		}
	}
	r.touch()
}

// ToggleVotes flips vote visibility. Only the Scrum Master may do this.
func (r *Room) ToggleVotes(userID string) error {
	user := r.FindUser(userID)
	if user == nil || !user.IsScrumMaster {
		return ErrNotScrumMasterToggle
	}
	r.showVotes = !r.showVotes
	r.touch()
	return nil
}

// StartNewTask begins a new estimation round: it sets the task label, hides
// votes and clears every member's vote. Only the Scrum Master may do this.
func (r *Room) StartNewTask(userID, taskName string) error {
	user := r.FindUser(userID)
	if user == nil || !user.IsScrumMaster {
		return ErrNotScrumMasterTask
	}
	r.currentTask = &taskName
	r.showVotes = false
	for _, u := range r.users {
		u.ClearVote()
	}
	r.touch()
	return nil
}

// FindUser returns the member with the given id, or nil.
func (r *Room) FindUser(userID string) *User {
	for _, u := range r.users {
		if u.ID == userID {
			return u
		}
	}
	return nil
}

func (r *Room) HasUser(userID string) bool {
	return r.FindUser(userID) != nil
}

// Users returns a copy of the membership list. Callers may reorder the slice
// but mutate members only through the room's own methods.
func (r *Room) Users() []*User {
	return append([]*User(nil), r.users...)
}

func (r *Room) UserCount() int {
	return len(r.users)
}

func (r *Room) ShowVotes() bool {
	return r.showVotes
}

func (r *Room) CurrentTask() *string {
	return r.currentTask
}

func (r *Room) LastActivity() time.Time {
	return r.lastActivity
}

// IsActive reports whether the room has members or saw activity within
// ActiveWindow.
func (r *Room) IsActive() bool {
	return len(r.users) > 0 || time.Since(r.lastActivity) < ActiveWindow
}

func (r *Room) touch() {
	r.lastActivity = time.Now()
}

// Snapshot produces an immutable copy of the room for broadcasting and
// persistence. Users are deep-copied, never aliased.
func (r *Room) Snapshot() RoomSnapshot {
	users := make([]UserSnapshot, len(r.users))
	for i, u := range r.users {
		users[i] = u.Snapshot()
	}
	var task *string
	if r.currentTask != nil {
		t := *r.currentTask
		task = &t
	}
	return RoomSnapshot{
		ID:           r.ID,
		TeamName:     r.TeamName,
		Users:        users,
		ShowVotes:    r.showVotes,
		CurrentTask:  task,
		LastActivity: r.lastActivity,
	}
}

// RoomSnapshot is the serialized form of a Room: the payload of roomCreated
// and roomUpdate events, and the per-room document in the store.
type RoomSnapshot struct {
	ID           string         `json:"id" bson:"id"`
	TeamName     string         `json:"teamName" bson:"teamName"`
	Users        []UserSnapshot `json:"users" bson:"users"`
	ShowVotes    bool           `json:"showVotes" bson:"showVotes"`
	CurrentTask  *string        `json:"currentTask" bson:"currentTask,omitempty"`
	LastActivity time.Time      `json:"lastActivity" bson:"lastActivity"`
}

// Restore rebuilds a Room entity from its stored snapshot.
func (s RoomSnapshot) Restore() *Room {
	users := make([]*User, len(s.Users))
	for i, u := range s.Users {
		users[i] = u.Restore()
	}
	var task *string
	if s.CurrentTask != nil {
		t := *s.CurrentTask
		task = &t
	}
	return &Room{
		ID:           s.ID,
		TeamName:     s.TeamName,
		users:        users,
		showVotes:    s.ShowVotes,
		currentTask:  task,
		lastActivity: s.LastActivity,
	}
}
